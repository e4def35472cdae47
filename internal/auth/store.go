package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/ma-crm/crm-go/internal/domain"
)

// ErrNoRefreshToken is returned by Refresh when the store holds no session to
// refresh.
var ErrNoRefreshToken = errors.New("no refresh token available")

// AuthAPI is the slice of Service the store depends on.
type AuthAPI interface {
	Login(ctx context.Context, creds Credentials) (TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (TokenPair, error)
	CurrentUser(ctx context.Context, accessToken string) (*domain.User, error)
}

// Store is the single source of truth for the current session. Every
// mutating operation replaces its slice of the session atomically and writes
// the user/token pair through to durable storage; nothing else mutates
// session state.
type Store struct {
	mu      sync.RWMutex
	user    *domain.User
	tokens  *TokenPair
	loading bool

	api     AuthAPI
	storage Storage

	refreshMu sync.Mutex
	inflight  *refreshCall
}

// refreshCall lets concurrent Refresh callers share one in-flight exchange,
// so a rotated refresh token is never submitted twice.
type refreshCall struct {
	done chan struct{}
	err  error
}

// NewStore builds a store backed by the given auth API and storage, restoring
// a previously persisted session if the backend holds one.
func NewStore(api AuthAPI, storage Storage) (*Store, error) {
	store := &Store{
		api:     api,
		storage: storage,
	}

	session, err := storage.Load()
	if err != nil {
		return nil, fmt.Errorf("restore session: %w", err)
	}
	if session != nil && session.Tokens != nil {
		store.user = session.User
		store.tokens = session.Tokens
		log.Debug().Msg("Restored persisted session")
	}

	return store, nil
}

// Login obtains a token pair, fetches the user it belongs to with the new
// access token and commits both at once. On any failure the session is left
// exactly as it was and the error is returned; there is no partial commit.
func (s *Store) Login(ctx context.Context, creds Credentials) error {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	tokens, err := s.api.Login(ctx, creds)
	if err != nil {
		s.setLoading(false)
		return err
	}

	user, err := s.api.CurrentUser(ctx, tokens.Access)
	if err != nil {
		s.setLoading(false)
		return err
	}

	s.mu.Lock()
	s.user = user
	s.tokens = &tokens
	s.loading = false
	s.mu.Unlock()

	s.persist()
	log.Info().Str("email", user.Email).Msg("Session established")
	return nil
}

// Logout clears the session immediately and unconditionally. No network call
// is made.
func (s *Store) Logout() {
	s.mu.Lock()
	s.user = nil
	s.tokens = nil
	s.mu.Unlock()

	if err := s.storage.Clear(); err != nil {
		log.Error().Err(err).Msg("Failed to clear persisted session")
	}
}

// Refresh exchanges the held refresh token for a new access token, keeping
// the user untouched. A failed exchange clears the whole session before the
// error is returned, forcing a re-login. Concurrent callers are coalesced
// into a single in-flight refresh whose outcome they all share.
func (s *Store) Refresh(ctx context.Context) error {
	s.refreshMu.Lock()
	if call := s.inflight; call != nil {
		s.refreshMu.Unlock()
		select {
		case <-call.done:
			return call.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	call := &refreshCall{done: make(chan struct{})}
	s.inflight = call
	s.refreshMu.Unlock()

	call.err = s.doRefresh(ctx)

	s.refreshMu.Lock()
	s.inflight = nil
	s.refreshMu.Unlock()
	close(call.done)

	return call.err
}

func (s *Store) doRefresh(ctx context.Context) error {
	s.mu.RLock()
	tokens := s.tokens
	s.mu.RUnlock()

	if tokens == nil || tokens.Refresh == "" {
		return ErrNoRefreshToken
	}

	refreshed, err := s.api.Refresh(ctx, tokens.Refresh)
	if err != nil {
		log.Warn().Err(err).Msg("Token refresh failed - clearing session")
		s.mu.Lock()
		s.user = nil
		s.tokens = nil
		s.mu.Unlock()
		if clearErr := s.storage.Clear(); clearErr != nil {
			log.Error().Err(clearErr).Msg("Failed to clear persisted session")
		}
		return err
	}

	s.mu.Lock()
	next := TokenPair{Access: refreshed.Access, Refresh: tokens.Refresh}
	if refreshed.Refresh != "" {
		// Server rotated the refresh token.
		next.Refresh = refreshed.Refresh
	}
	s.tokens = &next
	s.mu.Unlock()

	s.persist()
	log.Debug().Msg("Access token refreshed")
	return nil
}

// SetUser replaces the user field only, after an out-of-band profile refetch.
func (s *Store) SetUser(user *domain.User) {
	s.mu.Lock()
	s.user = user
	s.mu.Unlock()

	s.persist()
}

// User returns the authenticated user, or nil.
func (s *Store) User() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Tokens returns a copy of the held token pair, or nil when unauthenticated.
func (s *Store) Tokens() *TokenPair {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.tokens == nil {
		return nil
	}
	tokens := *s.tokens
	return &tokens
}

// AccessToken returns the current access token, or the empty string when
// unauthenticated. Callers read it once per request; a concurrent refresh
// does not retroactively change a request already built.
func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.tokens == nil {
		return ""
	}
	return s.tokens.Access
}

// IsLoading reports whether a login is in flight.
func (s *Store) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Store) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

// persist writes the user/token pair to durable storage. Only those two
// fields are saved; transient flags are not.
func (s *Store) persist() {
	s.mu.RLock()
	session := Session{User: s.user, Tokens: s.tokens}
	s.mu.RUnlock()

	if err := s.storage.Save(&session); err != nil {
		log.Error().Err(err).Msg("Failed to persist session")
	}
}
