package users

import (
	"time"

	"github.com/dmarrero/stockpilot-backend/pkg/db/models"
	"github.com/google/uuid"
)

// Summary is the public representation of a user returned by the API.
type Summary struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// FromModel maps the persistence model onto the API summary.
func FromModel(user *models.User) Summary {
	if user == nil {
		return Summary{}
	}
	return Summary{
		ID:          user.ID,
		Email:       user.Email,
		Name:        user.Name,
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
	}
}
