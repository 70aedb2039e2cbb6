package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var signingMethod = jwt.SigningMethodHS256

// ErrInvalidToken is returned for any bearer token that fails verification.
var ErrInvalidToken = errors.New("invalid token")

// identityClaims carries the caller's role and owning chef next to the
// standard claims. Subject is the user id.
type identityClaims struct {
	jwt.RegisteredClaims
	Role   string `json:"role"`
	ChefID string `json:"chef_id,omitempty"`
}

// TokenVerifier validates HS256 identity tokens minted by the external auth
// service with a shared secret.
type TokenVerifier struct {
	secret []byte
	issuer string
}

// NewTokenVerifier creates a TokenVerifier for the given secret and issuer.
func NewTokenVerifier(secret, issuer string) *TokenVerifier {
	return &TokenVerifier{secret: []byte(secret), issuer: issuer}
}

// Verify parses tokenString and returns the identity it asserts.
func (v *TokenVerifier) Verify(tokenString string) (Identity, error) {
	if tokenString == "" {
		return Identity{}, fmt.Errorf("%w: token is empty", ErrInvalidToken)
	}

	claims := &identityClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (any, error) {
			return v.secret, nil
		},
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithIssuer(v.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: invalid subject: %w", ErrInvalidToken, err)
	}

	id := Identity{UserID: userID, Role: claims.Role}
	if claims.ChefID != "" {
		chefID, err := uuid.Parse(claims.ChefID)
		if err != nil {
			return Identity{}, fmt.Errorf("%w: invalid chef_id: %w", ErrInvalidToken, err)
		}
		id.ChefID = &chefID
	}
	return id, nil
}

// Issue mints a token for id valid for ttl. The API never issues tokens to
// clients; this exists for local tooling and tests.
func (v *TokenVerifier) Issue(id Identity, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := identityClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID.String(),
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role: id.Role,
	}
	if id.ChefID != nil {
		claims.ChefID = id.ChefID.String()
	}

	signed, err := jwt.NewWithClaims(signingMethod, claims).SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
