package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
)

// GoogleIssuer is the OIDC issuer for Google ID tokens.
const GoogleIssuer = "https://accounts.google.com"

// Identity is the verified claim extracted from a federated ID token.
type Identity struct {
	Subject string
	Email   string
}

// IdentityVerifier validates an externally issued identity token.
type IdentityVerifier interface {
	Verify(ctx context.Context, rawToken string) (*Identity, error)
}

// GoogleOptions configures the Google ID-token verifier.
type GoogleOptions struct {
	HTTPClient *http.Client
	Timeout    time.Duration
}

// GoogleVerifier validates Google ID tokens against the configured OAuth
// client id.
type GoogleVerifier struct {
	verifier *oidc.IDTokenVerifier
	timeout  time.Duration
}

// NewGoogleVerifier performs OIDC discovery against Google and returns a
// verifier bound to the supplied client id. Discovery crosses a network
// boundary, so it honours the configured timeout.
func NewGoogleVerifier(ctx context.Context, clientID string, opts GoogleOptions) (*GoogleVerifier, error) {
	if strings.TrimSpace(clientID) == "" {
		return nil, errors.New("google verifier: client id is required")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}

	if opts.HTTPClient != nil {
		ctx = oidc.ClientContext(ctx, opts.HTTPClient)
	}

	discoveryCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	provider, err := oidc.NewProvider(discoveryCtx, GoogleIssuer)
	if err != nil {
		return nil, fmt.Errorf("google verifier: discovery failed: %w", err)
	}

	return &GoogleVerifier{
		verifier: provider.Verifier(&oidc.Config{ClientID: clientID}),
		timeout:  opts.Timeout,
	}, nil
}

// Verify checks the raw ID token's signature, audience and expiry, returning
// the stable subject identifier and email from the verified claim.
func (g *GoogleVerifier) Verify(ctx context.Context, rawToken string) (*Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	idToken, err := g.verifier.Verify(ctx, rawToken)
	if err != nil {
		return nil, fmt.Errorf("google verifier: verify id token: %w", err)
	}

	var claims struct {
		Email string `json:"email"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("google verifier: decode claims: %w", err)
	}

	return &Identity{
		Subject: idToken.Subject,
		Email:   claims.Email,
	}, nil
}
