// Copyright (c) 2025 The sessionctl Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package auth

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"sessionctl/cli/internal/backend"
	errs "sessionctl/cli/internal/errors"
)

var (
	// ErrAlreadyLoggedIn is returned by Login when a session is present.
	ErrAlreadyLoggedIn = errs.New(errs.AlreadyLoggedIn, "already logged in")
	// ErrNotLoggedIn is returned by Logout and Token when no session is present.
	ErrNotLoggedIn = errs.New(errs.NotLoggedIn, "no user is logged in")
)

// Service holds the session state and keeps it synchronized with the auth API.
//
// Every token transition bumps a generation counter. Work started for one
// generation (a profile fetch, a scheduled refresh) is dropped when it completes
// after the tokens have changed again.
type Service struct {
	api      backend.API
	initial  InitialTokens
	onChange func(State[TokenSet])
	clock    clockwork.Clock
	leeway   time.Duration
	log      zerolog.Logger

	// ctx bounds background requests; cancelled by Close.
	ctx    context.Context
	cancel context.CancelFunc
	notify *dispatcher

	mu      sync.Mutex
	tokens  State[TokenSet]
	user    State[User]
	gen     uint64
	userGen uint64
	timer   clockwork.Timer
	changed chan struct{}
	started bool
	closed  bool

	resolved     chan struct{}
	resolvedOnce sync.Once
}

// NewService constructs a Service over api. Call Start to resolve the initial
// tokens and Close to release the timer and notification goroutine.
func NewService(api backend.API, opts ...Option) *Service {
	s := &Service{
		api:      api,
		clock:    clockwork.NewRealClock(),
		leeway:   DefaultRefreshLeeway,
		log:      zerolog.Nop(),
		changed:  make(chan struct{}),
		resolved: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.notify = newDispatcher(s.onChange)
	return s
}

// Start resolves the initial token source in the background. Until it
// completes the tokens are Unresolved. Calling Start more than once has no effect.
func (s *Service) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started || s.closed {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	go s.resolveInitial(ctx)
}

func (s *Service) resolveInitial(ctx context.Context) {
	t, err := resolveInitialTokens(ctx, s.initial)
	if err != nil {
		s.log.Warn().Err(err).Msg("initial tokens could not be resolved")
		t = nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// A login that completed first wins.
	if s.closed || s.tokens.IsResolved() {
		return
	}
	if t == nil {
		s.setTokensLocked(None[TokenSet]())
		return
	}
	s.setTokensLocked(Present(*t))
}

// Close stops the refresh timer, abandons in-flight work and waits until queued
// notifications were delivered. It must not be called from the change callback.
func (s *Service) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.gen++
	s.stopTimerLocked()
	s.cancel()
	s.broadcastLocked()
	s.mu.Unlock()

	s.notify.close()
}

// Tokens returns the current token state.
func (s *Service) Tokens() State[TokenSet] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens
}

// CurrentUser returns the current user state.
func (s *Service) CurrentUser() State[User] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// Snapshot is a consistent view of the session.
type Snapshot struct {
	Tokens State[TokenSet]
	User   State[User]
}

// Snapshot returns tokens and user read under the same lock.
func (s *Service) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{Tokens: s.tokens, User: s.user}
}

// Login exchanges credentials for tokens. It fails with ErrAlreadyLoggedIn,
// without contacting the service, while a session is present. A rejected login
// returns the *backend.APIError carrying the server message.
func (s *Service) Login(ctx context.Context, c Credentials) error {
	if s.Tokens().IsPresent() {
		return ErrAlreadyLoggedIn
	}

	t, err := s.api.Login(ctx, c.Email, c.Password)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return context.Canceled
	}
	s.log.Info().Msg("logged in")
	s.setTokensLocked(Present(tokensFromBackend(t)))
	return nil
}

// Logout clears the session. It fails with ErrNotLoggedIn, leaving the state
// untouched, when no session is present.
func (s *Service) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.tokens.IsPresent() {
		return ErrNotLoggedIn
	}
	s.log.Info().Msg("logged out")
	s.setTokensLocked(None[TokenSet]())
	return nil
}

// Token implements oauth2.TokenSource over the current session.
func (s *Service) Token() (*oauth2.Token, error) {
	t, ok := s.Tokens().Get()
	if !ok {
		return nil, ErrNotLoggedIn
	}
	return &oauth2.Token{
		AccessToken:  t.Access,
		TokenType:    "Bearer",
		RefreshToken: t.Refresh,
		Expiry:       t.AccessExpiresAt,
	}, nil
}

var _ oauth2.TokenSource = (*Service)(nil)

// Resolved is closed once the tokens first leave Unresolved.
func (s *Service) Resolved() <-chan struct{} { return s.resolved }

// Changed returns a channel closed on the next state change.
func (s *Service) Changed() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.changed
}

// Settled waits until the tokens are resolved and, when present, the profile
// for them has been loaded. It returns the snapshot at that point.
func (s *Service) Settled(ctx context.Context) (Snapshot, error) {
	for {
		s.mu.Lock()
		settled := s.tokens.Status() == StatusNone ||
			(s.tokens.IsPresent() && s.user.IsPresent() && s.userGen == s.gen)
		snap := Snapshot{Tokens: s.tokens, User: s.user}
		ch := s.changed
		closed := s.closed
		s.mu.Unlock()

		if settled {
			return snap, nil
		}
		if closed {
			return snap, context.Canceled
		}
		select {
		case <-ch:
		case <-ctx.Done():
			return snap, ctx.Err()
		}
	}
}

// setTokensLocked applies a token transition and runs its reactions: user
// loading, change notification and refresh scheduling. s.mu must be held.
func (s *Service) setTokensLocked(next State[TokenSet]) {
	prev := s.tokens
	if prev.Status() == next.Status() && !next.IsPresent() {
		return
	}
	s.tokens = next
	s.gen++
	gen := s.gen

	switch next.Status() {
	case StatusUnresolved:
		s.user = Unresolved[User]()
	case StatusNone:
		s.user = None[User]()
	case StatusPresent:
		go s.loadUser(gen)
	}

	if next.IsResolved() {
		s.notify.enqueue(next)
	}

	s.scheduleRefreshLocked(gen)
	s.broadcastLocked()

	if next.IsResolved() {
		s.resolvedOnce.Do(func() { close(s.resolved) })
	}
}

// loadUser fetches the profile for generation gen. Any failure forces logout.
func (s *Service) loadUser(gen uint64) {
	u, err := s.api.GetMe(s.ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.gen != gen {
		return
	}
	if err != nil {
		s.log.Warn().Err(err).Msg("current user could not be loaded; clearing session")
		s.setTokensLocked(None[TokenSet]())
		return
	}
	s.user = Present(userFromBackend(u))
	s.userGen = gen
	s.broadcastLocked()
}

func (s *Service) broadcastLocked() {
	close(s.changed)
	s.changed = make(chan struct{})
}
