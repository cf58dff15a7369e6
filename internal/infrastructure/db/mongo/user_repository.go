package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/identitylab/account-service/internal/core/domain"
	"github.com/identitylab/account-service/internal/core/ports"
)

const collectionUsers = "users"

// UserRepository persists user records in MongoDB. Unique indexes on
// nickname and email make the store the single atomic enforcement point for
// the uniqueness invariants; duplicate-key errors surface as
// domain.ErrUserExists.
type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection(collectionUsers)}
}

// userDoc is the persistence shape of a user record. The UUID is stored as
// its string form in _id.
type userDoc struct {
	ID       string `bson:"_id"`
	Nickname string `bson:"nickname"`
	Email    string `bson:"email"`

	FirstName string `bson:"first_name,omitempty"`
	LastName  string `bson:"last_name,omitempty"`
	Bio       string `bson:"bio,omitempty"`
	Location  string `bson:"location,omitempty"`

	ProfilePictureURL  string `bson:"profile_picture_url,omitempty"`
	LinkedInProfileURL string `bson:"linkedin_profile_url,omitempty"`
	GitHubProfileURL   string `bson:"github_profile_url,omitempty"`

	HashedPassword string `bson:"hashed_password"`
	Role           string `bson:"role"`

	EmailVerified       bool   `bson:"email_verified"`
	VerificationToken   string `bson:"verification_token,omitempty"`
	FailedLoginAttempts int    `bson:"failed_login_attempts"`
	IsLocked            bool   `bson:"is_locked"`

	IsProfessional              bool       `bson:"is_professional"`
	ProfessionalStatusUpdatedAt *time.Time `bson:"professional_status_updated_at,omitempty"`

	LastLoginAt *time.Time `bson:"last_login_at,omitempty"`
	CreatedAt   time.Time  `bson:"created_at"`
	UpdatedAt   time.Time  `bson:"updated_at"`
}

func toDoc(u *domain.User) userDoc {
	return userDoc{
		ID:                          u.ID.String(),
		Nickname:                    u.Nickname,
		Email:                       u.Email,
		FirstName:                   u.FirstName,
		LastName:                    u.LastName,
		Bio:                         u.Bio,
		Location:                    u.Location,
		ProfilePictureURL:           u.ProfilePictureURL,
		LinkedInProfileURL:          u.LinkedInProfileURL,
		GitHubProfileURL:            u.GitHubProfileURL,
		HashedPassword:              u.HashedPassword,
		Role:                        string(u.Role),
		EmailVerified:               u.EmailVerified,
		VerificationToken:           u.VerificationToken,
		FailedLoginAttempts:         u.FailedLoginAttempts,
		IsLocked:                    u.IsLocked,
		IsProfessional:              u.IsProfessional,
		ProfessionalStatusUpdatedAt: u.ProfessionalStatusUpdatedAt,
		LastLoginAt:                 u.LastLoginAt,
		CreatedAt:                   u.CreatedAt,
		UpdatedAt:                   u.UpdatedAt,
	}
}

func (d userDoc) toDomain() (*domain.User, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("parse user id: %w", err)
	}
	role, err := domain.ParseRole(d.Role)
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", d.ID, err)
	}

	return &domain.User{
		ID:                          id,
		Nickname:                    d.Nickname,
		Email:                       d.Email,
		FirstName:                   d.FirstName,
		LastName:                    d.LastName,
		Bio:                         d.Bio,
		Location:                    d.Location,
		ProfilePictureURL:           d.ProfilePictureURL,
		LinkedInProfileURL:          d.LinkedInProfileURL,
		GitHubProfileURL:            d.GitHubProfileURL,
		HashedPassword:              d.HashedPassword,
		Role:                        role,
		EmailVerified:               d.EmailVerified,
		VerificationToken:           d.VerificationToken,
		FailedLoginAttempts:         d.FailedLoginAttempts,
		IsLocked:                    d.IsLocked,
		IsProfessional:              d.IsProfessional,
		ProfessionalStatusUpdatedAt: d.ProfessionalStatusUpdatedAt,
		LastLoginAt:                 d.LastLoginAt,
		CreatedAt:                   d.CreatedAt,
		UpdatedAt:                   d.UpdatedAt,
	}, nil
}

// Create inserts a new user document.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, toDoc(user))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrUserExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// FindByID retrieves a user by its UUID.
func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id.String()})
}

// FindByEmail retrieves a user by email address.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// FindByNickname retrieves a user by nickname.
func (r *UserRepository) FindByNickname(ctx context.Context, nickname string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"nickname": nickname})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var d userDoc
	if err := r.col.FindOne(ctx, filter).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return d.toDomain()
}

// Update replaces the stored document for the user. The unique indexes also
// guard email/nickname changes here; conflicts surface as ErrUserExists.
func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": user.ID.String()}, toDoc(user))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrUserExists
		}
		return fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// List returns one page of users ordered by creation time, plus the total
// count.
func (r *UserRepository) List(ctx context.Context, in ports.ListUsersInput) ([]*domain.User, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	total, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetSkip(int64((in.Page - 1) * in.Limit)).
		SetLimit(int64(in.Limit))

	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer cur.Close(ctx)

	var users []*domain.User
	for cur.Next(ctx) {
		var d userDoc
		if err := cur.Decode(&d); err != nil {
			return nil, 0, fmt.Errorf("decode user: %w", err)
		}
		u, err := d.toDomain()
		if err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	if err := cur.Err(); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}

	return users, total, nil
}

// EnsureIndexes creates the unique indexes backing the nickname/email
// uniqueness invariants.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "nickname", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
