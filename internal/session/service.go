// Package session owns the authenticated session: the token pair and the
// user. Every other component reads the token through the accessors here
// and never keeps its own copy.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/singleflight"

	"financemonkey/fm-cli/internal/apierror"
	"financemonkey/fm-cli/internal/logging"
	"financemonkey/fm-cli/internal/models"
)

// Refresher exchanges a refresh token for a new pair. The gateway
// implements it with a bare request that never goes through 401 handling.
type Refresher interface {
	RefreshTokens(ctx context.Context, refreshToken string) (models.TokenPair, error)
}

// Status is what listeners see. It never carries the token.
type Status struct {
	Authenticated bool
	User          *models.User
}

// Service is the single source of truth for the session.
type Service struct {
	storage   Storage
	logger    logging.Logger
	refresher Refresher
	group     singleflight.Group

	mu           sync.RWMutex
	token        string
	refreshToken string
	user         *models.User

	listenersMu sync.Mutex
	listeners   map[int]func(Status)
	nextID      int
}

// NewService restores the session held in storage. A corrupt user entry
// is dropped with a warning; the token alone keeps the session alive.
func NewService(storage Storage, logger logging.Logger) (*Service, error) {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	s := &Service{
		storage:   storage,
		logger:    logger,
		listeners: map[int]func(Status){},
	}

	token, _, err := storage.Get(KeyToken)
	if err != nil {
		return nil, fmt.Errorf("failed to restore session: %w", err)
	}
	refresh, _, err := storage.Get(KeyRefreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to restore session: %w", err)
	}
	rawUser, ok, err := storage.Get(KeyUser)
	if err != nil {
		return nil, fmt.Errorf("failed to restore session: %w", err)
	}

	s.token = token
	s.refreshToken = refresh
	if ok && rawUser != "" {
		var u models.User
		if err := json.Unmarshal([]byte(rawUser), &u); err != nil {
			logger.WithError(err).Warn("Ignoring unreadable stored user")
		} else {
			s.user = &u
		}
	}
	return s, nil
}

// SetRefresher installs the token rotation backend.
func (s *Service) SetRefresher(r Refresher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresher = r
}

// Token returns the bearer token, or "" when logged out.
func (s *Service) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// RefreshToken returns the stored refresh token.
func (s *Service) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken
}

// User returns a copy of the cached identity.
func (s *Service) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// IsAuthenticated is true iff a token is held.
func (s *Service) IsAuthenticated() bool {
	return s.Token() != ""
}

// Status returns the listener view of the session.
func (s *Service) Status() Status {
	return Status{Authenticated: s.IsAuthenticated(), User: s.User()}
}

// Login stores a freshly issued session.
func (s *Service) Login(resp models.AuthResponse) error {
	if resp.Token == "" {
		return errors.New("login response carries no token")
	}
	userJSON, err := json.Marshal(resp.User)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}

	s.mu.Lock()
	s.token = resp.Token
	s.refreshToken = resp.RefreshToken
	u := resp.User
	s.user = &u
	s.mu.Unlock()

	if err := s.persist(map[string]string{
		KeyToken:        resp.Token,
		KeyRefreshToken: resp.RefreshToken,
		KeyUser:         string(userJSON),
	}); err != nil {
		return err
	}

	s.logger.WithFields(logging.F(logging.FieldUser, resp.User.Email)).Info("Logged in")
	s.notify()
	return nil
}

// Refresh rotates the token pair. Concurrent callers share one request.
func (s *Service) Refresh(ctx context.Context) error {
	_, err, shared := s.group.Do("refresh", func() (interface{}, error) {
		return nil, s.refresh(ctx)
	})
	if shared {
		s.logger.Debug("Joined in-flight token refresh")
	}
	return err
}

func (s *Service) refresh(ctx context.Context) error {
	s.mu.RLock()
	refresher, refreshToken := s.refresher, s.refreshToken
	s.mu.RUnlock()

	if refreshToken == "" {
		return apierror.ErrNotAuthenticated
	}
	if refresher == nil {
		return errors.New("no token refresher configured")
	}

	pair, err := refresher.RefreshTokens(ctx, refreshToken)
	if err != nil {
		return fmt.Errorf("token refresh failed: %w", err)
	}
	if pair.Token == "" {
		return errors.New("token refresh returned an empty token")
	}

	s.mu.Lock()
	s.token = pair.Token
	// Servers that do not rotate refresh tokens may omit it.
	if pair.RefreshToken != "" {
		s.refreshToken = pair.RefreshToken
	}
	newRefresh := s.refreshToken
	s.mu.Unlock()

	if err := s.persist(map[string]string{
		KeyToken:        pair.Token,
		KeyRefreshToken: newRefresh,
	}); err != nil {
		return err
	}

	s.logger.Debug("Token refreshed")
	s.notify()
	return nil
}

// Logout forgets the session in memory and in storage.
func (s *Service) Logout() error {
	s.mu.Lock()
	s.token = ""
	s.refreshToken = ""
	s.user = nil
	s.mu.Unlock()

	var errs []error
	for _, key := range Keys {
		if err := s.storage.Remove(key); err != nil {
			errs = append(errs, err)
		}
	}

	s.logger.Info("Logged out")
	s.notify()
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("failed to clear stored session: %w", err)
	}
	return nil
}

// OnChange registers fn to be called after every login, refresh and logout.
func (s *Service) OnChange(fn func(Status)) (unsubscribe func()) {
	s.listenersMu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.listenersMu.Unlock()

	return func() {
		s.listenersMu.Lock()
		delete(s.listeners, id)
		s.listenersMu.Unlock()
	}
}

func (s *Service) notify() {
	status := s.Status()

	s.listenersMu.Lock()
	fns := make([]func(Status), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.listenersMu.Unlock()

	for _, fn := range fns {
		fn(status)
	}
}

func (s *Service) persist(values map[string]string) error {
	for _, key := range Keys {
		v, ok := values[key]
		if !ok {
			continue
		}
		if err := s.storage.Set(key, v); err != nil {
			return fmt.Errorf("failed to persist %s: %w", key, err)
		}
	}
	return nil
}

// Claims is the unverified content of the access token.
type Claims struct {
	Subject   string
	Email     string
	IssuedAt  *time.Time
	ExpiresAt *time.Time
}

// Expired reports whether the token carries an expiry before now.
func (c Claims) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && !now.Before(*c.ExpiresAt)
}

// Claims decodes the access token without verifying its signature. The
// client cannot verify it and only uses the result for display.
func (s *Service) Claims() (Claims, error) {
	token := s.Token()
	if token == "" {
		return Claims{}, apierror.ErrNotAuthenticated
	}

	mapClaims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, mapClaims); err != nil {
		return Claims{}, fmt.Errorf("failed to decode token: %w", err)
	}

	var c Claims
	c.Subject, _ = mapClaims.GetSubject()
	if email, ok := mapClaims["email"].(string); ok {
		c.Email = email
	}
	if iat, err := mapClaims.GetIssuedAt(); err == nil && iat != nil {
		t := iat.Time
		c.IssuedAt = &t
	}
	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		t := exp.Time
		c.ExpiresAt = &t
	}
	return c, nil
}
