package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AnonymousSubject is the subject of tokens issued to signed-out clients.
// The API never accepts them; clients use them to tell "signed out" apart
// from "not signed in yet".
const AnonymousSubject = "anonymous"

// ErrAnonymousToken is returned when an anonymous token is presented to
// an endpoint that needs a user.
var ErrAnonymousToken = errors.New("anonymous token")

// JWTManager handles JWT access token generation and validation.
type JWTManager struct {
	secret    []byte
	issuer    string
	accessTTL time.Duration
	now       func() time.Time
}

// NewJWTManager creates a new JWT manager.
// secret must be at least 32 characters for HS256 security.
func NewJWTManager(secret string, issuer string, accessTTL time.Duration) *JWTManager {
	return &JWTManager{
		secret:    []byte(secret),
		issuer:    issuer,
		accessTTL: accessTTL,
		now:       time.Now,
	}
}

// GenerateAccessToken creates a signed HS256 JWT with user ID as subject.
func (m *JWTManager) GenerateAccessToken(userID uuid.UUID) (string, error) {
	if userID == uuid.Nil {
		return "", fmt.Errorf("user id is nil")
	}
	return m.sign(userID.String())
}

// GenerateAnonymousToken creates a token whose subject is AnonymousSubject.
func (m *JWTManager) GenerateAnonymousToken() (string, error) {
	return m.sign(AnonymousSubject)
}

func (m *JWTManager) sign(subject string) (string, error) {
	now := m.now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    m.issuer,
		ExpiresAt: jwt.NewNumericDate(now.Add(m.accessTTL)),
		IssuedAt:  jwt.NewNumericDate(now),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// ValidateAccessToken parses and validates a JWT access token.
// Returns the user ID if valid. Anonymous tokens yield ErrAnonymousToken.
func (m *JWTManager) ValidateAccessToken(tokenString string) (uuid.UUID, error) {
	if tokenString == "" {
		return uuid.Nil, fmt.Errorf("token is empty")
	}

	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))

	if err != nil {
		return uuid.Nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		return uuid.Nil, fmt.Errorf("invalid token claims")
	}

	if claims.Issuer != m.issuer {
		return uuid.Nil, fmt.Errorf("invalid issuer: expected %s, got %s", m.issuer, claims.Issuer)
	}

	if claims.Subject == AnonymousSubject {
		return uuid.Nil, ErrAnonymousToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid subject UUID: %w", err)
	}

	return userID, nil
}

// ValidateToken adapts ValidateAccessToken to the HTTP auth middleware.
func (m *JWTManager) ValidateToken(_ context.Context, token string) (uuid.UUID, error) {
	return m.ValidateAccessToken(token)
}
