package oidc

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/benvon/career-coach/internal/models"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// ErrInvalidToken is returned for tokens that fail verification.
var ErrInvalidToken = errors.New("invalid token")

// Verifier verifies JWT tokens
type Verifier struct {
	jwksManager *JWKSManager
	issuer      string
	audience    string
}

// NewVerifier creates a verifier for tokens from issuer. A non-empty audience
// must appear in "aud" or, for Cognito access tokens, in "client_id".
func NewVerifier(jwksManager *JWKSManager, issuer, audience string) *Verifier {
	return &Verifier{
		jwksManager: jwksManager,
		issuer:      issuer,
		audience:    audience,
	}
}

// Verify verifies a JWT token and extracts claims
func (v *Verifier) Verify(ctx context.Context, tokenString string, jwksURL string) (*models.JWTClaims, error) {
	keys, err := v.jwksManager.GetJWKS(ctx, jwksURL)
	if err != nil {
		return nil, fmt.Errorf("failed to get JWKS: %w", err)
	}

	token, err := jwt.Parse([]byte(tokenString),
		jwt.WithKeySet(keys),
		jwt.WithValidate(true),
		jwt.WithIssuer(v.issuer),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if token.Subject() == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	if v.audience != "" && !slices.Contains(token.Audience(), v.audience) && stringClaim(token, "client_id") != v.audience {
		return nil, fmt.Errorf("%w: audience mismatch", ErrInvalidToken)
	}

	claims := &models.JWTClaims{
		Sub:   token.Subject(),
		Email: stringClaim(token, "email"),
		Name:  stringClaim(token, "name"),
		Iss:   token.Issuer(),
		Exp:   token.Expiration().Unix(),
		Iat:   token.IssuedAt().Unix(),
	}
	if aud := token.Audience(); len(aud) > 0 {
		claims.Aud = aud[0]
	}
	return claims, nil
}

func stringClaim(token jwt.Token, name string) string {
	v, ok := token.Get(name)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// Authenticator verifies bearer tokens against the stored provider config.
type Authenticator struct {
	provider     *Provider
	jwks         *JWKSManager
	providerName string
}

// NewAuthenticator creates an authenticator for the named provider.
func NewAuthenticator(provider *Provider, jwks *JWKSManager, providerName string) *Authenticator {
	return &Authenticator{provider: provider, jwks: jwks, providerName: providerName}
}

// Verify checks tokenString and returns its claims.
func (a *Authenticator) Verify(ctx context.Context, tokenString string) (*models.JWTClaims, error) {
	config, err := a.provider.GetConfig(ctx, a.providerName)
	if err != nil {
		return nil, err
	}
	return NewVerifier(a.jwks, config.Issuer, config.ClientID).Verify(ctx, tokenString, JWKSURL(config))
}
