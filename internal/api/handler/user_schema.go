package handler

import (
	"time"

	"github.com/identitylab/account-service/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request types ---

type registerRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Nickname string `json:"nickname" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=8"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type verifyEmailRequest struct {
	Token string `json:"token" validate:"required"`
}

// updateUserRequest mirrors ports.UpdateUserInput: absent fields are left
// untouched. Transport-level tags catch the obvious shape errors early; the
// service re-validates domain invariants before anything is applied.
type updateUserRequest struct {
	Email              *string `json:"email"                validate:"omitempty,email"`
	Nickname           *string `json:"nickname"             validate:"omitempty,min=3,max=50"`
	FirstName          *string `json:"first_name"`
	LastName           *string `json:"last_name"`
	Bio                *string `json:"bio"                  validate:"omitempty,max=500"`
	Location           *string `json:"location"`
	ProfilePictureURL  *string `json:"profile_picture_url"`
	LinkedInProfileURL *string `json:"linkedin_profile_url"`
	GitHubProfileURL   *string `json:"github_profile_url"`
	Password           *string `json:"password"             validate:"omitempty,min=8"`
	IsProfessional     *bool   `json:"is_professional"`
}

type changeRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=ANONYMOUS AUTHENTICATED MANAGER ADMIN"`
}

// --- Response types ---
// Owned by the transport layer so the JSON contract is not coupled to the
// domain struct. Security fields (hash, counters, verification token) never
// appear here.

type userResponse struct {
	ID                          string     `json:"id"`
	Nickname                    string     `json:"nickname"`
	Email                       string     `json:"email"`
	FirstName                   string     `json:"first_name,omitempty"`
	LastName                    string     `json:"last_name,omitempty"`
	Bio                         string     `json:"bio,omitempty"`
	Location                    string     `json:"location,omitempty"`
	ProfilePictureURL           string     `json:"profile_picture_url,omitempty"`
	LinkedInProfileURL          string     `json:"linkedin_profile_url,omitempty"`
	GitHubProfileURL            string     `json:"github_profile_url,omitempty"`
	Role                        string     `json:"role"`
	EmailVerified               bool       `json:"email_verified"`
	IsLocked                    bool       `json:"is_locked"`
	IsProfessional              bool       `json:"is_professional"`
	ProfessionalStatusUpdatedAt *time.Time `json:"professional_status_updated_at,omitempty"`
	LastLoginAt                 *time.Time `json:"last_login_at,omitempty"`
	CreatedAt                   time.Time  `json:"created_at"`
	UpdatedAt                   time.Time  `json:"updated_at"`
}

type authResponse struct {
	Token string       `json:"token,omitempty"`
	User  userResponse `json:"user"`
}

type paginationResponse struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

type listUsersResponse struct {
	Data       []userResponse     `json:"data"`
	Pagination paginationResponse `json:"pagination"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
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
		Role:                        string(u.Role),
		EmailVerified:               u.EmailVerified,
		IsLocked:                    u.IsLocked,
		IsProfessional:              u.IsProfessional,
		ProfessionalStatusUpdatedAt: u.ProfessionalStatusUpdatedAt,
		LastLoginAt:                 u.LastLoginAt,
		CreatedAt:                   u.CreatedAt,
		UpdatedAt:                   u.UpdatedAt,
	}
}
