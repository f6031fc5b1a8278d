package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Role names carried by the identity provider.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Claims holds the typed JWT payload issued by the identity provider. The
// service trusts the user id in a valid token as the order's owning-user key.
type Claims struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
	jwt.RegisteredClaims
}

// Identity is the authenticated caller extracted from a token.
type Identity struct {
	UserID      string
	Email       string
	DisplayName string
	Role        string
}

// IsAdmin reports whether the caller may perform staff operations.
func (i *Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// GenerateToken creates a signed JWT for the given identity. Used by tests
// and local tooling; in production tokens come from the identity provider.
func GenerateToken(secret []byte, identity Identity, ttl time.Duration) (string, error) {
	claims := Claims{
		UserID:      identity.UserID,
		Email:       identity.Email,
		DisplayName: identity.DisplayName,
		Role:        identity.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ValidateToken parses and validates a JWT string.
func ValidateToken(secret []byte, t string) (*Identity, error) {
	token, err := jwt.ParseWithClaims(t, &Claims{}, func(tok *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}

	return &Identity{
		UserID:      claims.UserID,
		Email:       claims.Email,
		DisplayName: claims.DisplayName,
		Role:        claims.Role,
	}, nil
}
