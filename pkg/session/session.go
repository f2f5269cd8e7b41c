// Package session holds the logged-in user and token, mirrored into the
// authToken and userData cookies.
package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
	userdto "github.com/fekuna/omnipos-inventory-service/internal/user/dto"
	"github.com/fekuna/omnipos-inventory-service/pkg/apiclient"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	CookieAuthToken = "authToken"
	CookieUserData  = "userData"

	DefaultTTL    = 8 * time.Hour
	DashboardPath = "/dashboard"
)

type Authenticator interface {
	Login(ctx context.Context, email, password string) (*userdto.Session, error)
	Logout(ctx context.Context) error
}

// Session implements apiclient.TokenSource and apiclient.SessionHandler.
type Session struct {
	mu    sync.RWMutex
	user  *model.User
	token string

	auth   Authenticator
	store  CookieStore
	nav    apiclient.Navigator
	ttl    time.Duration
	now    func() time.Time
	logger logger.ZapLogger
}

type Option func(*Session)

func WithTTL(ttl time.Duration) Option {
	return func(s *Session) { s.ttl = ttl }
}

func WithLogger(log logger.ZapLogger) Option {
	return func(s *Session) { s.logger = log }
}

func New(auth Authenticator, store CookieStore, nav apiclient.Navigator, opts ...Option) *Session {
	s := &Session{
		auth:   auth,
		store:  store,
		nav:    nav,
		ttl:    DefaultTTL,
		now:    time.Now,
		logger: logger.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login stores the token and user in memory and in the cookies, and only
// then navigates to the dashboard.
func (s *Session) Login(ctx context.Context, email, password string) (*userdto.Session, error) {
	res, err := s.auth.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	userJSON, err := json.Marshal(res.User)
	if err != nil {
		return nil, err
	}
	expires := s.now().Add(s.ttl)

	s.mu.Lock()
	s.token = res.Token
	s.user = res.User
	s.mu.Unlock()

	err = multierr.Combine(
		s.store.Set(Cookie{Name: CookieAuthToken, Value: res.Token, Expires: expires}),
		s.store.Set(Cookie{Name: CookieUserData, Value: string(userJSON), Expires: expires}),
	)
	if err != nil {
		s.clear()
		return nil, err
	}

	if s.nav != nil {
		s.nav.Navigate(DashboardPath)
	}
	return res, nil
}

// Logout tells the server, then clears local state regardless and goes to
// the login page.
func (s *Session) Logout(ctx context.Context) error {
	if s.Token() != "" {
		if err := s.auth.Logout(apiclient.WithToken(ctx, s.Token())); err != nil {
			s.logger.Warn("server logout failed", zap.Error(err))
		}
	}
	err := s.clear()
	if s.nav != nil {
		s.nav.Navigate(apiclient.LoginPath)
	}
	return err
}

// HandleSessionExpiry drops the session after the server rejected it. The
// API client does the redirect.
func (s *Session) HandleSessionExpiry() {
	if err := s.clear(); err != nil {
		s.logger.Warn("failed to clear session cookies", zap.Error(err))
	}
}

// Restore reloads the session from the cookies, e.g. at process start.
func (s *Session) Restore() bool {
	token, ok := s.store.Get(CookieAuthToken)
	if !ok || token == "" {
		return false
	}
	var user *model.User
	if raw, ok := s.store.Get(CookieUserData); ok {
		var u model.User
		if err := json.Unmarshal([]byte(raw), &u); err == nil {
			user = &u
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.user = user
	return true
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) User() *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// HasSession reports whether the authToken cookie is present.
func (s *Session) HasSession() bool {
	_, ok := s.store.Get(CookieAuthToken)
	return ok
}

func (s *Session) IsAuthenticated() bool {
	return s.Token() != "" && s.HasSession()
}

func (s *Session) clear() error {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()

	return multierr.Combine(
		s.store.Delete(CookieAuthToken),
		s.store.Delete(CookieUserData),
	)
}
