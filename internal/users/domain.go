package users

import (
	"time"

	"github.com/examplanner/examplanner/internal/rbac"
)

// User represents a user account.
type User struct {
	ID           string
	UserName     string
	Email        string
	Name         string
	PasswordHash string
	Role         rbac.Role
	IsPaused     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
