package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RoleReviewer is the only role allowed to act on feedback items.
const RoleReviewer = "reviewer"

// ErrInvalidToken is returned for any token that fails validation.
var ErrInvalidToken = errors.New("invalid token")

// JWTManager issues and validates reviewer tokens signed with HS256.
type JWTManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTManager creates a new JWT manager.
// secret must be at least 32 characters for HS256 security.
func NewJWTManager(secret string, issuer string, ttl time.Duration) *JWTManager {
	return &JWTManager{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// reviewerClaims extends standard JWT claims with the reviewer's role.
type reviewerClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role,omitempty"`
}

// GenerateReviewerToken creates a signed token with the reviewer name as subject.
func (m *JWTManager) GenerateReviewerToken(reviewer string) (string, error) {
	reviewer = strings.TrimSpace(reviewer)
	if reviewer == "" {
		return "", fmt.Errorf("reviewer is empty")
	}

	now := m.now()
	claims := reviewerClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   reviewer,
			Issuer:    m.issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Role: RoleReviewer,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateReviewerToken parses a token and returns the reviewer name.
func (m *JWTManager) ValidateReviewerToken(tokenString string) (string, error) {
	if tokenString == "" {
		return "", fmt.Errorf("token is empty: %w", ErrInvalidToken)
	}

	token, err := jwt.ParseWithClaims(tokenString, &reviewerClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithIssuer(m.issuer), jwt.WithTimeFunc(m.now))
	if err != nil {
		return "", fmt.Errorf("parse token: %w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*reviewerClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid token claims: %w", ErrInvalidToken)
	}
	if claims.Role != RoleReviewer {
		return "", fmt.Errorf("role %q is not allowed: %w", claims.Role, ErrInvalidToken)
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return "", fmt.Errorf("missing subject: %w", ErrInvalidToken)
	}

	return claims.Subject, nil
}
