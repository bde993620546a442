package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/examplanner/examplanner/internal/platform/httpx"
	"github.com/examplanner/examplanner/internal/rbac"
	"github.com/examplanner/examplanner/internal/shared"
	"github.com/examplanner/examplanner/internal/token"
	"github.com/examplanner/examplanner/internal/users"
)

// Service wraps authentication and identity resolution rules.
type Service struct {
	repo   users.Repository
	codec  *token.Codec
	google AssertionVerifier
}

// NewService constructs a new Service. The assertion verifier may be nil
// when external login is not configured.
func NewService(repo users.Repository, codec *token.Codec, google AssertionVerifier) *Service {
	return &Service{repo: repo, codec: codec, google: google}
}

// Codec exposes the token codec for cookie lifetime wiring.
func (s *Service) Codec() *token.Codec {
	return s.codec
}

// RegisterInput carries a registration request.
type RegisterInput struct {
	UserName string
	Email    string
	Password string
	Name     string
}

// Register creates a user-role account and issues a session token. The
// role is always "user" here regardless of anything in the request.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*users.User, string, error) {
	return s.register(ctx, in, rbac.RoleUser)
}

// RegisterAdmin creates an admin-role account. Caller must be a superadmin.
func (s *Service) RegisterAdmin(ctx context.Context, actor rbac.Actor, in RegisterInput) (*users.User, string, error) {
	if err := rbac.CanCreateAdmin(actor); err != nil {
		return nil, "", err
	}
	return s.register(ctx, in, rbac.RoleAdmin)
}

func (s *Service) register(ctx context.Context, in RegisterInput, role rbac.Role) (*users.User, string, error) {
	if err := users.ValidatePasswordStrength(in.Password); err != nil {
		return nil, "", fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error())
	}
	hash, err := users.HashPassword(in.Password)
	if err != nil {
		return nil, "", err
	}
	user := &users.User{
		ID:           uuid.New().String(),
		UserName:     in.UserName,
		Email:        strings.ToLower(in.Email),
		Name:         in.Name,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, "", err
	}
	signed, err := s.codec.Issue(user.ID, user.Role, "")
	if err != nil {
		return nil, "", err
	}
	return user, signed, nil
}

// Authenticate validates login credentials and issues a session token.
// Unknown accounts and wrong passwords are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, emailOrUserName, password string) (*users.User, string, error) {
	user, err := s.repo.GetByLogin(ctx, emailOrUserName)
	if err != nil {
		return nil, "", fmt.Errorf("%w: invalid credentials", httpx.ErrUnauthorized)
	}
	if !users.CheckPasswordHash(password, user.PasswordHash) {
		return nil, "", fmt.Errorf("%w: invalid credentials", httpx.ErrUnauthorized)
	}
	signed, err := s.codec.Issue(user.ID, user.Role, "")
	if err != nil {
		return nil, "", err
	}
	return user, signed, nil
}

// LoginWithAssertion verifies an external identity assertion, provisioning
// a user-role account on first login. Accounts created this way get a
// random placeholder password usable only through the external path, and
// can never be provisioned as admins.
func (s *Service) LoginWithAssertion(ctx context.Context, rawAssertion string) (*users.User, string, error) {
	if s.google == nil {
		return nil, "", fmt.Errorf("%w: external login is not configured", httpx.ErrUpstream)
	}
	identity, err := s.google.Verify(ctx, rawAssertion)
	if err != nil {
		return nil, "", err
	}

	user, err := s.repo.GetByEmail(ctx, strings.ToLower(identity.Email))
	if err != nil {
		if !errors.Is(err, httpx.ErrNotFound) {
			return nil, "", err
		}
		user, err = s.provisionExternal(ctx, identity)
		if err != nil {
			return nil, "", err
		}
	}

	signed, err := s.codec.Issue(user.ID, user.Role, "")
	if err != nil {
		return nil, "", err
	}
	return user, signed, nil
}

func (s *Service) provisionExternal(ctx context.Context, identity *Identity) (*users.User, error) {
	placeholder, err := users.HashPassword(uuid.New().String() + "Aa@1")
	if err != nil {
		return nil, err
	}
	name := identity.Name
	if name == "" {
		name = identity.Email
	}
	user := &users.User{
		ID:           uuid.New().String(),
		UserName:     strings.Join(strings.Fields(name), "_"),
		Email:        strings.ToLower(identity.Email),
		Name:         name,
		PasswordHash: placeholder,
		Role:         rbac.RoleUser,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Impersonate issues a session token for the target identity with
// provenance pointing back at the impersonator. It is a login-as, not a
// permission delegation: the new token carries the target's own role.
func (s *Service) Impersonate(ctx context.Context, actor rbac.Actor, emailOrUserName string) (*users.User, string, error) {
	if err := rbac.CanImpersonate(actor); err != nil {
		return nil, "", err
	}
	target, err := s.repo.GetByLogin(ctx, emailOrUserName)
	if err != nil {
		return nil, "", err
	}
	signed, err := s.codec.Issue(target.ID, target.Role, actor.ID)
	if err != nil {
		return nil, "", err
	}
	return target, signed, nil
}

// Resolve turns a raw session token into a principal. The account record
// is re-read so suspensions and role changes are visible; the token is
// trusted only for identity and impersonation provenance. Paused accounts
// are rejected here so no protected operation ever sees one.
func (s *Service) Resolve(ctx context.Context, raw string) (*shared.Principal, error) {
	claims, err := s.codec.Decode(raw)
	if err != nil {
		if errors.Is(err, token.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: token expired", httpx.ErrUnauthorized)
		}
		return nil, fmt.Errorf("%w: invalid token", httpx.ErrUnauthorized)
	}

	user, err := s.repo.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return nil, fmt.Errorf("%w: user not found", httpx.ErrNotFound)
		}
		return nil, err
	}
	if user.IsPaused {
		return nil, fmt.Errorf("%w: account is paused", httpx.ErrForbidden)
	}

	return &shared.Principal{
		ID:             user.ID,
		UserName:       user.UserName,
		Email:          user.Email,
		Name:           user.Name,
		Role:           user.Role,
		IsPaused:       user.IsPaused,
		IsImpersonated: claims.ImpersonatedBy != "",
		ImpersonatedBy: claims.ImpersonatedBy,
	}, nil
}
