// Package auth models the authenticated session the Swiftink backend
// requires. The session token is issued and verified by the remote service;
// locally we only read its claims to derive the user identity and expiry.
package auth

import (
	"context"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"

	"github.com/skillsenselab/scribe/errors"
)

// Session holds the access token for one authenticated user.
type Session struct {
	// AccessToken is the bearer token presented to the transcription and
	// storage APIs.
	AccessToken string
}

// Source yields the current session. Implementations wrap whatever session
// store the host application uses.
type Source interface {
	// Session returns the active session, or an unauthorized error when
	// none exists.
	Session(ctx context.Context) (*Session, error)
}

// UserID returns the subject claim of the access token. The token is decoded
// without signature verification; the remote service is the verifier.
func (s *Session) UserID() (string, error) {
	claims, err := s.claims()
	if err != nil {
		return "", err
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", errors.Unauthorized("Session token carries no user identity.").WithCause(err)
	}
	return sub, nil
}

// Expired reports whether the token's expiry claim has passed. Tokens
// without an expiry claim are treated as live.
func (s *Session) Expired() bool {
	claims, err := s.claims()
	if err != nil {
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}

func (s *Session) claims() (*gojwt.RegisteredClaims, error) {
	claims := &gojwt.RegisteredClaims{}
	if _, _, err := gojwt.NewParser().ParseUnverified(s.AccessToken, claims); err != nil {
		return nil, errors.Unauthorized("Session token is not a valid JWT.").WithCause(err)
	}
	return claims, nil
}

// StaticSource serves a fixed access token, typically from configuration.
type StaticSource struct {
	AccessToken string
}

// Session returns the configured session or an unauthorized error when the
// token is absent or expired.
func (s *StaticSource) Session(_ context.Context) (*Session, error) {
	if s.AccessToken == "" {
		return nil, errors.Unauthorized("No Swiftink session. Please sign in first.")
	}
	sess := &Session{AccessToken: s.AccessToken}
	if sess.Expired() {
		return nil, errors.TokenExpired()
	}
	return sess, nil
}
