// Package auth binds datastore requests to a user session issued by the hosted auth service.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"stackit/internal/utils"
)

// Claims are the access token claims issued by the hosted auth service.
type Claims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Session is an authenticated user's access token and the profile id it belongs to.
type Session struct {
	AccessToken string
	UserID      uuid.UUID
	Role        string
	ExpiresAt   time.Time
}

// Expired reports whether the token expiry has passed.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// ParseSession validates an access token and extracts the user id from its subject.
// With an empty secret the signature is not checked; the datastore still verifies it
// on every request, so this only serves to learn the user id. Expired tokens are
// rejected either way.
func ParseSession(tokenString, secret string) (*Session, error) {
	if tokenString == "" {
		return nil, utils.NewUnauthorizedError("missing access token")
	}

	claims := &Claims{}
	var err error
	if secret == "" {
		_, _, err = jwt.NewParser().ParseUnverified(tokenString, claims)
	} else {
		_, err = jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(secret), nil
		})
	}
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, utils.NewAppError(utils.ErrInvalidToken, "access token expired", err)
		}
		return nil, utils.NewAppError(utils.ErrInvalidToken, "invalid access token", err)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, utils.NewAppError(utils.ErrInvalidToken, "access token subject is not a user id", err)
	}

	session := &Session{
		AccessToken: tokenString,
		UserID:      userID,
		Role:        claims.Role,
	}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time
	}
	// ParseUnverified skips the exp check.
	if session.Expired(time.Now()) {
		return nil, utils.NewAppError(utils.ErrInvalidToken, "access token expired", jwt.ErrTokenExpired)
	}
	return session, nil
}

// Define a custom context key type to avoid collisions
type contextKey string

const sessionKey contextKey = "session"

// WithSession stores the session in the context.
func WithSession(ctx context.Context, session *Session) context.Context {
	return context.WithValue(ctx, sessionKey, session)
}

// SessionFromContext retrieves the session stored by WithSession.
func SessionFromContext(ctx context.Context) (*Session, bool) {
	session, ok := ctx.Value(sessionKey).(*Session)
	return session, ok && session != nil
}
