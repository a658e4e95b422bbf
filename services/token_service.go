package services

import (
	"fmt"
	"time"

	jose "gopkg.in/go-jose/go-jose.v2"
	"gopkg.in/go-jose/go-jose.v2/jwt"

	appConfig "github.com/maintroute/maintenance-api/config"
)

// Session tokens expire after a working day; there is no refresh flow,
// operators simply log in again.
const sessionTokenLifetime = 12 * time.Hour

// sessionClaims carries the operator role alongside the registered claims
type sessionClaims struct {
	Role string `json:"role"`
}

// IssueSessionToken signs a JWT for an authenticated operator. The
// token subject is the username; the role claim drives RequireRole.
func IssueSessionToken(username, role string) (string, error) {
	cfg := appConfig.GetConfig()

	signer, err := jose.NewSigner(
		jose.SigningKey{Algorithm: jose.HS256, Key: []byte(cfg.JWTSecret)},
		(&jose.SignerOptions{}).WithType("JWT"),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create token signer: %w", err)
	}

	now := time.Now()
	claims := jwt.Claims{
		Subject:  username,
		Issuer:   cfg.JWTIssuer,
		Audience: jwt.Audience{cfg.JWTAudience},
		IssuedAt: jwt.NewNumericDate(now),
		Expiry:   jwt.NewNumericDate(now.Add(sessionTokenLifetime)),
	}

	token, err := jwt.Signed(signer).
		Claims(claims).
		Claims(sessionClaims{Role: role}).
		CompactSerialize()
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return token, nil
}
