package users

import (
	"context"
	"fmt"

	"github.com/examplanner/examplanner/internal/platform/httpx"
	"github.com/examplanner/examplanner/internal/rbac"
)

// Service implements the account lifecycle rules. Every operation resolves
// its effective target through the policy engine; ids supplied by
// unprivileged callers are never trusted.
type Service struct {
	repo Repository
}

// NewService builds Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// UpdateInput carries partial update fields. A nil pointer means the field
// was absent from the request and stays untouched; a present-but-empty
// value is rejected by validation rather than silently ignored.
type UpdateInput struct {
	UserName        *string
	Email           *string
	Name            *string
	Password        *string
	CurrentPassword string
}

func (in UpdateInput) touchesSensitive() bool {
	return in.UserName != nil || in.Email != nil || in.Password != nil
}

// Get returns the effective target account.
func (s *Service) Get(ctx context.Context, actor rbac.Actor, requestedID string) (*User, error) {
	targetID := rbac.EffectiveTarget(actor, requestedID)
	return s.repo.GetByID(ctx, targetID)
}

// List returns all accounts. Privileged callers only.
func (s *Service) List(ctx context.Context, actor rbac.Actor) ([]User, error) {
	if !actor.Role.IsPrivileged() {
		return nil, fmt.Errorf("%w: not authorized to view all users", httpx.ErrForbidden)
	}
	return s.repo.List(ctx)
}

// Update applies a partial update to the effective target account. An
// unprivileged caller changing username, email, or password must confirm
// with their current password first; privileged callers bypass the
// confirmation.
func (s *Service) Update(ctx context.Context, actor rbac.Actor, requestedID string, in UpdateInput) (*User, error) {
	targetID := rbac.EffectiveTarget(actor, requestedID)
	user, err := s.repo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	if err := rbac.CanModifyAccount(actor, user.Role); err != nil {
		return nil, err
	}

	if !actor.Role.IsPrivileged() && in.touchesSensitive() {
		if in.CurrentPassword == "" {
			return nil, fmt.Errorf("%w: current password is required to update sensitive fields", httpx.ErrValidation)
		}
		if !CheckPasswordHash(in.CurrentPassword, user.PasswordHash) {
			return nil, fmt.Errorf("%w: current password is incorrect", httpx.ErrUnauthorized)
		}
	}

	if in.UserName != nil {
		if *in.UserName == "" {
			return nil, fmt.Errorf("%w: userName cannot be empty", httpx.ErrValidation)
		}
		user.UserName = *in.UserName
	}
	if in.Email != nil {
		if *in.Email == "" {
			return nil, fmt.Errorf("%w: email cannot be empty", httpx.ErrValidation)
		}
		user.Email = *in.Email
	}
	if in.Name != nil {
		if *in.Name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", httpx.ErrValidation)
		}
		user.Name = *in.Name
	}
	if in.Password != nil {
		if err := ValidatePasswordStrength(*in.Password); err != nil {
			return nil, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error())
		}
		hash, err := HashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Delete removes the effective target account. Superadmin accounts are
// undeletable by anyone.
func (s *Service) Delete(ctx context.Context, actor rbac.Actor, requestedID string) error {
	targetID := rbac.EffectiveTarget(actor, requestedID)
	user, err := s.repo.GetByID(ctx, targetID)
	if err != nil {
		return err
	}
	if err := rbac.CanDeleteAccount(actor, user.ID, user.Role); err != nil {
		return err
	}
	return s.repo.Delete(ctx, user.ID)
}

// TogglePause flips the paused flag on the target account. Concurrent
// toggles race as plain read-modify-write; acceptable for this domain.
func (s *Service) TogglePause(ctx context.Context, actor rbac.Actor, targetID string) (*User, error) {
	if err := rbac.CanTogglePause(actor); err != nil {
		return nil, err
	}
	user, err := s.repo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if err := rbac.CanModifyAccount(actor, user.Role); err != nil {
		return nil, err
	}
	user.IsPaused = !user.IsPaused
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangeRole sets the target account's role. Superadmin only; there is no
// path to the superadmin role and a superadmin's own role is fixed.
func (s *Service) ChangeRole(ctx context.Context, actor rbac.Actor, targetID string, newRole string) (*User, error) {
	role, ok := rbac.ParseRole(newRole)
	if !ok {
		return nil, fmt.Errorf("%w: unknown role %q", httpx.ErrValidation, newRole)
	}
	user, err := s.repo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if err := rbac.CanChangeRole(actor, user.Role, role); err != nil {
		return nil, err
	}
	user.Role = role
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
