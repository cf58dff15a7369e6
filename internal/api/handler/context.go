package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/identitylab/account-service/internal/core/ports"
)

// pathUserID parses the :id path parameter. A malformed id is a client error,
// not a lookup miss.
func pathUserID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	return id, nil
}

// toUpdateInput maps the transport changeset onto the service changeset.
// Pointer semantics carry over unchanged: nil means "leave untouched".
func toUpdateInput(req updateUserRequest) ports.UpdateUserInput {
	return ports.UpdateUserInput{
		Email:              req.Email,
		Nickname:           req.Nickname,
		FirstName:          req.FirstName,
		LastName:           req.LastName,
		Bio:                req.Bio,
		Location:           req.Location,
		ProfilePictureURL:  req.ProfilePictureURL,
		LinkedInProfileURL: req.LinkedInProfileURL,
		GitHubProfileURL:   req.GitHubProfileURL,
		Password:           req.Password,
		IsProfessional:     req.IsProfessional,
	}
}
