package googleauth

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/idtoken"
)

// ErrDisabled is returned when no OAuth client id is configured.
var ErrDisabled = errors.New("google sign-in is not configured")

// Claims are the identity fields extracted from a validated Google ID token.
type Claims struct {
	Subject       string
	Email         string
	EmailVerified bool
	GivenName     string
	FamilyName    string
}

// Verifier validates a federated sign-in token and returns the identity it
// asserts.
type Verifier interface {
	Verify(ctx context.Context, idToken string) (*Claims, error)
}

type verifier struct {
	clientID string
}

// New creates a Verifier that accepts Google ID tokens issued for clientID.
func New(clientID string) Verifier {
	return &verifier{clientID: clientID}
}

func (v *verifier) Verify(ctx context.Context, rawToken string) (*Claims, error) {
	payload, err := idtoken.Validate(ctx, rawToken, v.clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to validate google id token: %w", err)
	}

	claims := &Claims{Subject: payload.Subject}
	if email, ok := payload.Claims["email"].(string); ok {
		claims.Email = email
	}
	if verified, ok := payload.Claims["email_verified"].(bool); ok {
		claims.EmailVerified = verified
	}
	if given, ok := payload.Claims["given_name"].(string); ok {
		claims.GivenName = given
	}
	if family, ok := payload.Claims["family_name"].(string); ok {
		claims.FamilyName = family
	}
	return claims, nil
}

// Disabled returns a Verifier that rejects every token. Wired when
// GOOGLE_CLIENT_ID is not set.
func Disabled() Verifier {
	return disabledVerifier{}
}

type disabledVerifier struct{}

func (disabledVerifier) Verify(context.Context, string) (*Claims, error) {
	return nil, ErrDisabled
}
