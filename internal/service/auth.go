package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenTypeSession is the expected token type for session tokens.
const TokenTypeSession = "session"

// Claims represents the JWT claims scoping a caller to one conversation.
type Claims struct {
	jwt.RegisteredClaims
	ConversationID string `json:"conversation_id"`
	TokenType      string `json:"token_type"`
}

// AuthService issues and validates session tokens.
type AuthService struct {
	jwtSecret []byte
	ttl       time.Duration
	now       func() time.Time
}

// NewAuthService creates a new AuthService with the given JWT secret and token lifetime.
func NewAuthService(secret string, ttl time.Duration) *AuthService {
	return &AuthService{jwtSecret: []byte(secret), ttl: ttl, now: time.Now}
}

// IssueToken signs a token bound to conversationID.
func (a *AuthService) IssueToken(conversationID string) (string, error) {
	if conversationID == "" {
		return "", errors.New("conversation id required")
	}
	now := a.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   conversationID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
		ConversationID: conversationID,
		TokenType:      TokenTypeSession,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken validates a JWT token and returns the claims.
func (a *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.jwtSecret, nil
	}, jwt.WithTimeFunc(a.now))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid or expired token")
	}
	if claims.ConversationID == "" {
		return nil, errors.New("token missing conversation id")
	}
	if claims.ID == "" {
		return nil, errors.New("token missing token ID")
	}
	if claims.TokenType != TokenTypeSession {
		return nil, errors.New("session token required")
	}
	return claims, nil
}
