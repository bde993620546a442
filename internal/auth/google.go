package auth

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"

	"github.com/examplanner/examplanner/internal/platform/httpx"
)

// GoogleIssuer is the OIDC issuer for Google identity assertions.
const GoogleIssuer = "https://accounts.google.com"

// Identity is a verified external-identity assertion.
type Identity struct {
	Email   string
	Name    string
	Subject string
}

// AssertionVerifier validates an external identity token and extracts the
// asserted identity.
type AssertionVerifier interface {
	Verify(ctx context.Context, rawToken string) (*Identity, error)
}

// GoogleVerifier validates Google ID tokens against the configured client
// audience.
type GoogleVerifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewGoogleVerifier discovers Google's OIDC configuration and builds a
// verifier bound to the given audience.
func NewGoogleVerifier(ctx context.Context, clientID string) (*GoogleVerifier, error) {
	provider, err := oidc.NewProvider(ctx, GoogleIssuer)
	if err != nil {
		return nil, fmt.Errorf("auth: discover google oidc provider: %w", err)
	}
	return &GoogleVerifier{verifier: provider.Verifier(&oidc.Config{ClientID: clientID})}, nil
}

// Verify checks the assertion's signature and audience and returns the
// asserted identity.
func (g *GoogleVerifier) Verify(ctx context.Context, rawToken string) (*Identity, error) {
	idToken, err := g.verifier.Verify(ctx, rawToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", httpx.ErrUpstream, err.Error())
	}
	var claims struct {
		Email string `json:"email"`
		Name  string `json:"name"`
		Sub   string `json:"sub"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("%w: malformed assertion claims", httpx.ErrUpstream)
	}
	if claims.Email == "" {
		return nil, fmt.Errorf("%w: assertion carries no email", httpx.ErrUpstream)
	}
	return &Identity{Email: claims.Email, Name: claims.Name, Subject: claims.Sub}, nil
}

var _ AssertionVerifier = (*GoogleVerifier)(nil)
