// Package credential persists the access/refresh token pair across process
// restarts and mirrors it into a cookie jar for the embedding layer.
package credential

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"campus/config"
	"campus/internal/domain/entity"
	"campus/internal/domain/service"
	"campus/internal/errors"
)

// Cookie names mirrored alongside the durable file, readable by a
// server-rendering or route-guard layer sharing the jar.
const (
	AccessCookie  = "campus_access"
	RefreshCookie = "campus_refresh"
)

// Store is the process-wide credential store. Tokens are opaque strings; no
// claim inspection happens here.
type Store struct {
	mu     sync.RWMutex
	pair   *entity.TokenPair
	path   string
	jar    http.CookieJar
	apiURL *url.URL
	logger *slog.Logger
}

var _ service.CredentialStore = (*Store)(nil)

// NewStore loads any previously persisted pair from disk and prepares the
// cookie mirror against the API base URL.
func NewStore(cfg *config.Config, logger *slog.Logger) (*Store, error) {
	apiURL, err := url.Parse(cfg.API.BaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "parse api base url")
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, errors.Wrap(err, "create cookie jar")
	}

	store := &Store{
		path:   cfg.Credentials.Path,
		jar:    jar,
		apiURL: apiURL,
		logger: logger,
	}
	if err := store.load(); err != nil {
		// A corrupt or unreadable file is not fatal: start unauthenticated.
		logger.Warn("failed to load persisted credentials", slog.Any("error", err))
	}

	return store, nil
}

// Jar exposes the cookie mirror so the HTTP client (and any embedding layer)
// can read the pair as cookies.
func (s *Store) Jar() http.CookieJar {
	return s.jar
}

// Get returns the current pair and whether one is present.
func (s *Store) Get() (entity.TokenPair, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.pair == nil || !s.pair.Valid() {
		return entity.TokenPair{}, false
	}

	return *s.pair, true
}

// Set replaces the pair wholesale, persists it to disk and refreshes the
// cookie mirror.
func (s *Store) Set(pair entity.TokenPair) error {
	if !pair.Valid() {
		return errors.New("both access and refresh tokens must be set")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pair = &pair
	s.setCookies(pair)

	if err := s.persist(&pair); err != nil {
		return errors.Wrap(err, "persist credentials")
	}

	return nil
}

// Clear removes the pair from memory, disk and the cookie mirror.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pair = nil
	s.expireCookies()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "remove credentials file")
	}

	return nil
}

func (s *Store) load() error {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}

		return errors.Wrap(err, "read credentials file")
	}

	var pair entity.TokenPair
	if err := json.Unmarshal(raw, &pair); err != nil {
		return errors.Wrap(err, "decode credentials file")
	}
	if !pair.Valid() {
		return nil
	}

	s.pair = &pair
	s.setCookies(pair)
	s.logger.Debug("loaded persisted credentials", slog.String("path", s.path))

	return nil
}

func (s *Store) persist(pair *entity.TokenPair) error {
	raw, err := json.Marshal(pair)
	if err != nil {
		return errors.Wrap(err, "encode credentials")
	}

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return errors.Wrap(err, "create credentials dir")
		}
	}

	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		return errors.Wrap(err, "write credentials file")
	}

	return nil
}

func (s *Store) setCookies(pair entity.TokenPair) {
	s.jar.SetCookies(s.apiURL, []*http.Cookie{
		{Name: AccessCookie, Value: pair.Access, Path: "/"},
		{Name: RefreshCookie, Value: pair.Refresh, Path: "/"},
	})
}

func (s *Store) expireCookies() {
	s.jar.SetCookies(s.apiURL, []*http.Cookie{
		{Name: AccessCookie, Value: "", Path: "/", MaxAge: -1},
		{Name: RefreshCookie, Value: "", Path: "/", MaxAge: -1},
	})
}
