package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"discovery-api/models"
)

// Claims is the JWT payload issued at login.
type Claims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 access tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	clock  clock
}

func NewTokenIssuer(secret string, expireHours int) *TokenIssuer {
	if expireHours <= 0 {
		expireHours = 24
	}
	return &TokenIssuer{secret: []byte(secret), ttl: time.Duration(expireHours) * time.Hour}
}

// Issue creates a signed token for user.
func (t *TokenIssuer) Issue(user models.User) (string, error) {
	if len(t.secret) == 0 {
		return "", errors.New("JWT_SECRET is not configured")
	}
	now := t.clock.now()
	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Parse verifies the signature and expiry and returns the claims. The role
// claim must name a known role.
func (t *TokenIssuer) Parse(tokenString string) (*Claims, models.Role, error) {
	if len(t.secret) == 0 {
		return nil, "", errors.New("JWT_SECRET is not configured")
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, "", err
	}
	if !token.Valid || claims.UserID == "" {
		return nil, "", errors.New("invalid token")
	}
	role, err := models.ParseRole(claims.Role)
	if err != nil {
		return nil, "", fmt.Errorf("invalid role claim: %w", err)
	}
	return claims, role, nil
}
