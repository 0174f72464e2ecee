// Package session carries the authenticated identity through a request. The
// identity provider issues HS256 bearer tokens; this package only verifies
// them.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"support-insights-go/internal/logger"
)

type State string

const (
	StateUninitialized State = "uninitialized"
	StateLoading       State = "loading"
	StateReady         State = "ready"
	StateAnonymous     State = "anonymous"
)

var ErrNoToken = errors.New("missing bearer token")

// Session is a verified identity.
type Session struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// Subject keys per-user state such as the latest insight.
func (s Session) Subject() string {
	if s.UserID != "" {
		return s.UserID
	}
	return s.Email
}

// Context tracks the session lifecycle:
// uninitialized -> loading -> ready | anonymous. SignOut moves a ready
// context to anonymous.
type Context struct {
	mu      sync.RWMutex
	state   State
	session *Session
}

func NewContext() *Context {
	return &Context{state: StateUninitialized}
}

func (c *Context) Begin() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateLoading
	c.session = nil
}

// Resolve ends loading; a nil session means anonymous.
func (c *Context) Resolve(s *Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = s
	if s == nil {
		c.state = StateAnonymous
		return
	}
	c.state = StateReady
}

func (c *Context) SignOut() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = nil
	c.state = StateAnonymous
}

func (c *Context) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Session returns the current session; ok is false unless the state is ready.
func (c *Context) Session() (Session, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.state != StateReady || c.session == nil {
		return Session{}, false
	}
	return *c.session, true
}

type ctxKey struct{}

func WithContext(ctx context.Context, c *Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

func FromContext(ctx context.Context) (*Context, bool) {
	c, ok := ctx.Value(ctxKey{}).(*Context)
	return c, ok
}

// Current returns the ready session stored in ctx, if any.
func Current(ctx context.Context) (Session, bool) {
	c, ok := FromContext(ctx)
	if !ok {
		return Session{}, false
	}
	return c.Session()
}

// Authenticator resolves the caller of a request.
type Authenticator interface {
	Authenticate(r *http.Request) (*Session, error)
}

// Verifier validates HS256 bearer tokens signed with a shared secret.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

func (v *Verifier) Authenticate(r *http.Request) (*Session, error) {
	raw := bearer(r)
	if raw == "" {
		return nil, ErrNoToken
	}
	return v.Verify(raw)
}

func (v *Verifier) Verify(tokenString string) (*Session, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	s := &Session{}
	s.UserID, _ = claims["sub"].(string)
	s.Email, _ = claims["email"].(string)
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		s.ExpiresAt = exp.Time
	}
	if s.Subject() == "" {
		return nil, errors.New("invalid token: no subject")
	}
	return s, nil
}

// Sign issues a token for s valid for ttl. Used by tooling and tests.
func (v *Verifier) Sign(s Session, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   s.UserID,
		"email": s.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secret)
}

// LocalUser is the fixed identity used when authentication is disabled.
var LocalUser = Session{UserID: "local", Email: "local@localhost"}

type noAuth struct{}

// NoAuth accepts every request as LocalUser.
func NoAuth() Authenticator { return noAuth{} }

func (noAuth) Authenticate(*http.Request) (*Session, error) {
	s := LocalUser
	return &s, nil
}

// Middleware resolves the caller and stores its Context in the request.
// Anonymous callers get 401.
func Middleware(a Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sc := NewContext()
			sc.Begin()
			s, err := a.Authenticate(r)
			if err != nil {
				logger.New().WithRequest(r).WithError(err).Debug("request not authenticated")
				s = nil
			}
			sc.Resolve(s)

			if sc.State() != StateReady {
				w.Header().Set("WWW-Authenticate", "Bearer")
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "authentication required"})
				return
			}
			next.ServeHTTP(w, r.WithContext(WithContext(r.Context(), sc)))
		})
	}
}

func bearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
