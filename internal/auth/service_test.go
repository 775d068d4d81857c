package auth

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"sessionctl/cli/internal/backend"
	errs "sessionctl/cli/internal/errors"
)

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

// fakeAPI is an in-memory backend.API with call accounting.
type fakeAPI struct {
	mu           sync.Mutex
	meCalls      int
	loginCalls   int
	refreshCalls []string

	me      func() (*backend.User, error)
	login   func(email, password string) (*backend.Tokens, error)
	refresh func(refreshToken string) (*backend.Tokens, error)
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		me: func() (*backend.User, error) {
			return &backend.User{UserID: "u1", DisplayName: "Jane Doe", Email: "jane@example.com"}, nil
		},
		login: func(string, string) (*backend.Tokens, error) {
			return &backend.Tokens{AccessToken: "login-access"}, nil
		},
		refresh: func(string) (*backend.Tokens, error) {
			return nil, errors.New("refresh not configured")
		},
	}
}

func (f *fakeAPI) GetMe(ctx context.Context) (*backend.User, error) {
	f.mu.Lock()
	f.meCalls++
	fn := f.me
	f.mu.Unlock()
	return fn()
}

func (f *fakeAPI) Login(ctx context.Context, email, password string) (*backend.Tokens, error) {
	f.mu.Lock()
	f.loginCalls++
	fn := f.login
	f.mu.Unlock()
	return fn(email, password)
}

func (f *fakeAPI) RefreshToken(ctx context.Context, refreshToken string) (*backend.Tokens, error) {
	f.mu.Lock()
	f.refreshCalls = append(f.refreshCalls, refreshToken)
	fn := f.refresh
	f.mu.Unlock()
	return fn(refreshToken)
}

func (f *fakeAPI) counts() (me, login int, refresh []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.meCalls, f.loginCalls, append([]string(nil), f.refreshCalls...)
}

// recorder collects change notifications.
type recorder struct {
	mu  sync.Mutex
	got []State[TokenSet]
}

func (r *recorder) record(s State[TokenSet]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, s)
}

func (r *recorder) all() []State[TokenSet] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]State[TokenSet](nil), r.got...)
}

func (r *recorder) countAccess(access string) int {
	n := 0
	for _, s := range r.all() {
		if t, ok := s.Get(); ok && t.Access == access {
			n++
		}
	}
	return n
}

func waitResolved(t *testing.T, s *Service) {
	t.Helper()
	select {
	case <-s.Resolved():
	case <-time.After(waitFor):
		t.Fatal("tokens were not resolved in time")
	}
}

func settled(t *testing.T, s *Service) Snapshot {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), waitFor)
	defer cancel()
	snap, err := s.Settled(ctx)
	require.NoError(t, err)
	return snap
}

func TestInitialTokenSources(t *testing.T) {
	bundle := TokenSet{Access: "a0", Refresh: "r0"}

	tests := []struct {
		name string
		src  InitialTokens
		want State[TokenSet]
	}{
		{name: "literal", src: Static(&bundle), want: Present(bundle)},
		{name: "literal nil", src: Static(nil), want: None[TokenSet]()},
		{name: "producer", src: Producer(func() *TokenSet { return &bundle }), want: Present(bundle)},
		{name: "producer nil", src: Producer(func() *TokenSet { return nil }), want: None[TokenSet]()},
		{name: "loader", src: Loader(func(context.Context) (*TokenSet, error) { return &bundle, nil }), want: Present(bundle)},
		{name: "loader error", src: Loader(func(context.Context) (*TokenSet, error) { return nil, errors.New("locked") }), want: None[TokenSet]()},
		{name: "absent", src: nil, want: None[TokenSet]()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(newFakeAPI(), WithInitialTokens(tt.src))
			defer svc.Close()

			require.Equal(t, StatusUnresolved, svc.Tokens().Status())
			svc.Start(context.Background())
			waitResolved(t, svc)
			require.Equal(t, tt.want, svc.Tokens())
		})
	}
}

func TestDeferredInitialTokens(t *testing.T) {
	ch := make(chan *TokenSet, 1)
	svc := NewService(newFakeAPI(), WithInitialTokens(Deferred(ch)))
	defer svc.Close()

	svc.Start(context.Background())
	require.Never(t, func() bool { return svc.Tokens().IsResolved() }, 50*time.Millisecond, tick)
	require.Equal(t, StatusUnresolved, svc.CurrentUser().Status())

	ch <- &TokenSet{Access: "deferred"}
	waitResolved(t, svc)
	got, ok := svc.Tokens().Get()
	require.True(t, ok)
	require.Equal(t, "deferred", got.Access)
}

func TestDeferredClosedWithoutValueResolvesToNone(t *testing.T) {
	ch := make(chan *TokenSet)
	close(ch)
	svc := NewService(newFakeAPI(), WithInitialTokens(Deferred(ch)))
	defer svc.Close()

	svc.Start(context.Background())
	waitResolved(t, svc)
	require.Equal(t, None[TokenSet](), svc.Tokens())
	require.Equal(t, None[User](), svc.CurrentUser())
}

func TestUserLoadedForPresentTokens(t *testing.T) {
	api := newFakeAPI()
	api.me = func() (*backend.User, error) {
		return &backend.User{UserID: "u7", DisplayName: "Sam"}, nil
	}
	svc := NewService(api, WithInitialTokens(Static(&TokenSet{Access: "a"})))
	defer svc.Close()

	svc.Start(context.Background())
	snap := settled(t, svc)
	require.Equal(t, Present(User{UserID: "u7", Name: "Sam", Email: ""}), snap.User)
	me, _, _ := api.counts()
	require.Equal(t, 1, me)
}

func TestProfileFailureClearsSession(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "rejected", err: &backend.APIError{Status: http.StatusUnauthorized, Message: "token expired"}},
		{name: "transport", err: errors.New("connection reset")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeAPI()
			api.me = func() (*backend.User, error) { return nil, tt.err }
			rec := &recorder{}
			svc := NewService(api,
				WithInitialTokens(Static(&TokenSet{Access: "stale"})),
				WithOnChange(rec.record),
			)
			defer svc.Close()

			svc.Start(context.Background())
			snap := settled(t, svc)
			require.Equal(t, None[TokenSet](), snap.Tokens)
			require.Equal(t, None[User](), snap.User)
			require.Eventually(t, func() bool {
				got := rec.all()
				return len(got) == 2 && got[1].Status() == StatusNone
			}, waitFor, tick)
		})
	}
}

func TestLoginWhilePresentFailsWithoutRequest(t *testing.T) {
	api := newFakeAPI()
	svc := NewService(api, WithInitialTokens(Static(&TokenSet{Access: "a"})))
	defer svc.Close()
	svc.Start(context.Background())
	waitResolved(t, svc)

	err := svc.Login(context.Background(), Credentials{Email: "jane@example.com", Password: "pw"})
	require.ErrorIs(t, err, ErrAlreadyLoggedIn)
	require.Equal(t, errs.AlreadyLoggedIn, errs.KindOf(err))
	_, logins, _ := api.counts()
	require.Zero(t, logins)
}

func TestLoginReplacesTokensAndLoadsUserOnce(t *testing.T) {
	expires := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	api := newFakeAPI()
	api.login = func(email, password string) (*backend.Tokens, error) {
		require.Equal(t, "jane@example.com", email)
		require.Equal(t, "hunter2", password)
		return &backend.Tokens{
			AccessToken:           "a1",
			AccessTokenExpiresAt:  backend.Timestamp{Time: expires},
			RefreshTokenExpiresAt: backend.Timestamp{Time: expires.Add(24 * time.Hour)},
		}, nil
	}
	rec := &recorder{}
	svc := NewService(api, WithOnChange(rec.record))
	defer svc.Close()
	svc.Start(context.Background())
	waitResolved(t, svc)
	require.Equal(t, None[TokenSet](), svc.Tokens())

	require.NoError(t, svc.Login(context.Background(), Credentials{Email: "jane@example.com", Password: "hunter2"}))

	want := TokenSet{Access: "a1", AccessExpiresAt: expires, RefreshExpiresAt: expires.Add(24 * time.Hour)}
	require.Equal(t, Present(want), svc.Tokens())

	snap := settled(t, svc)
	require.True(t, snap.User.IsPresent())
	me, logins, _ := api.counts()
	require.Equal(t, 1, me)
	require.Equal(t, 1, logins)
	require.Eventually(t, func() bool { return len(rec.all()) == 2 }, waitFor, tick)
	require.Equal(t, []State[TokenSet]{None[TokenSet](), Present(want)}, rec.all())
}

func TestLoginBeforeInitialResolutionWins(t *testing.T) {
	ch := make(chan *TokenSet, 1)
	api := newFakeAPI()
	svc := NewService(api, WithInitialTokens(Deferred(ch)))
	defer svc.Close()
	svc.Start(context.Background())

	require.NoError(t, svc.Login(context.Background(), Credentials{Email: "e", Password: "p"}))
	waitResolved(t, svc)
	settled(t, svc)

	ch <- &TokenSet{Access: "late"}
	require.Never(t, func() bool {
		got, _ := svc.Tokens().Get()
		return got.Access == "late"
	}, 50*time.Millisecond, tick)
	me, _, _ := api.counts()
	require.Equal(t, 1, me)
}

func TestLoginRejectedKeepsStateAndReturnsServerMessage(t *testing.T) {
	api := newFakeAPI()
	api.login = func(string, string) (*backend.Tokens, error) {
		return nil, &backend.APIError{Status: http.StatusUnauthorized, Message: "Invalid email or password"}
	}
	svc := NewService(api)
	defer svc.Close()
	svc.Start(context.Background())
	waitResolved(t, svc)

	err := svc.Login(context.Background(), Credentials{Email: "e", Password: "bad"})
	require.EqualError(t, err, "Invalid email or password")
	require.Equal(t, None[TokenSet](), svc.Tokens())
}

func TestLogoutWithoutSession(t *testing.T) {
	t.Run("none", func(t *testing.T) {
		rec := &recorder{}
		svc := NewService(newFakeAPI(), WithOnChange(rec.record))
		defer svc.Close()
		svc.Start(context.Background())
		waitResolved(t, svc)
		require.Eventually(t, func() bool { return len(rec.all()) == 1 }, waitFor, tick)

		require.ErrorIs(t, svc.Logout(context.Background()), ErrNotLoggedIn)
		require.Equal(t, None[TokenSet](), svc.Tokens())
		require.Never(t, func() bool { return len(rec.all()) > 1 }, 50*time.Millisecond, tick)
	})

	t.Run("unresolved", func(t *testing.T) {
		svc := NewService(newFakeAPI())
		defer svc.Close()

		require.ErrorIs(t, svc.Logout(context.Background()), ErrNotLoggedIn)
		require.Equal(t, Unresolved[TokenSet](), svc.Tokens())
		require.Equal(t, Unresolved[User](), svc.CurrentUser())
	})
}

func TestLogoutClearsSession(t *testing.T) {
	rec := &recorder{}
	svc := NewService(newFakeAPI(),
		WithInitialTokens(Static(&TokenSet{Access: "a"})),
		WithOnChange(rec.record),
	)
	defer svc.Close()
	svc.Start(context.Background())
	settled(t, svc)

	require.NoError(t, svc.Logout(context.Background()))
	require.Equal(t, Snapshot{Tokens: None[TokenSet](), User: None[User]()}, svc.Snapshot())
	require.Eventually(t, func() bool {
		got := rec.all()
		return len(got) == 2 && got[1] == None[TokenSet]()
	}, waitFor, tick)
}

func TestStaleUserResponseIsDiscarded(t *testing.T) {
	release := make(chan struct{})
	api := newFakeAPI()
	api.me = func() (*backend.User, error) {
		<-release
		return &backend.User{UserID: "ghost"}, nil
	}
	svc := NewService(api, WithInitialTokens(Static(&TokenSet{Access: "a"})))
	defer svc.Close()
	svc.Start(context.Background())
	waitResolved(t, svc)
	require.Eventually(t, func() bool { me, _, _ := api.counts(); return me == 1 }, waitFor, tick)

	require.NoError(t, svc.Logout(context.Background()))
	close(release)

	require.Never(t, func() bool { return svc.CurrentUser().IsPresent() }, 50*time.Millisecond, tick)
	require.Equal(t, None[TokenSet](), svc.Tokens())
}

func TestRefreshDelay(t *testing.T) {
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		expires time.Time
		want    time.Duration
	}{
		{name: "one minute out", expires: now.Add(time.Minute), want: 30 * time.Second},
		{name: "ten seconds out", expires: now.Add(10 * time.Second), want: 0},
		{name: "exactly at leeway", expires: now.Add(30 * time.Second), want: 0},
		{name: "already expired", expires: now.Add(-time.Hour), want: 0},
		{name: "one hour out", expires: now.Add(time.Hour), want: 59*time.Minute + 30*time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := refreshDelay(now, tt.expires, DefaultRefreshLeeway); got != tt.want {
				t.Errorf("refreshDelay() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNearlyExpiredTokensRefreshImmediately(t *testing.T) {
	api := newFakeAPI()
	api.refresh = func(string) (*backend.Tokens, error) {
		return &backend.Tokens{AccessToken: "fresh"}, nil
	}
	svc := NewService(api, WithInitialTokens(Static(&TokenSet{
		Access:          "a",
		AccessExpiresAt: time.Now().Add(10 * time.Second),
		Refresh:         "r",
	})))
	defer svc.Close()
	svc.Start(context.Background())

	require.Eventually(t, func() bool {
		got, _ := svc.Tokens().Get()
		return got.Access == "fresh"
	}, waitFor, tick)
	_, _, refreshes := api.counts()
	require.Equal(t, []string{"r"}, refreshes)
}

func TestScheduledRefreshScenario(t *testing.T) {
	start := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	clock := clockwork.NewFakeClockAt(start)

	api := newFakeAPI()
	api.refresh = func(rt string) (*backend.Tokens, error) {
		return &backend.Tokens{
			AccessToken:          "a2",
			AccessTokenExpiresAt: backend.Timestamp{Time: clock.Now().Add(time.Minute)},
			RefreshToken:         "r2",
		}, nil
	}
	rec := &recorder{}
	svc := NewService(api,
		WithClock(clock),
		WithOnChange(rec.record),
		WithInitialTokens(Static(&TokenSet{
			Access:          "a1",
			AccessExpiresAt: start.Add(time.Minute),
			Refresh:         "r1",
		})),
	)
	defer svc.Close()
	svc.Start(context.Background())
	waitResolved(t, svc)

	clock.Advance(29 * time.Second)
	require.Never(t, func() bool { _, _, r := api.counts(); return len(r) > 0 }, 50*time.Millisecond, tick)

	clock.Advance(time.Second)
	require.Eventually(t, func() bool { return rec.countAccess("a2") == 2 }, waitFor, tick)
	require.Never(t, func() bool { return rec.countAccess("a2") > 2 }, 50*time.Millisecond, tick)

	_, _, refreshes := api.counts()
	require.Equal(t, []string{"r1"}, refreshes)
	got, ok := svc.Tokens().Get()
	require.True(t, ok)
	require.Equal(t, "r2", got.Refresh)
	require.Equal(t, 1, rec.countAccess("a1"))
}

func TestRefreshFailureClearsSession(t *testing.T) {
	start := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	clock := clockwork.NewFakeClockAt(start)
	api := newFakeAPI()
	api.refresh = func(string) (*backend.Tokens, error) {
		return nil, &backend.APIError{Status: http.StatusUnauthorized, Message: "refresh token revoked"}
	}
	rec := &recorder{}
	svc := NewService(api,
		WithClock(clock),
		WithOnChange(rec.record),
		WithInitialTokens(Static(&TokenSet{Access: "a1", AccessExpiresAt: start.Add(time.Minute), Refresh: "r1"})),
	)
	defer svc.Close()
	svc.Start(context.Background())
	settled(t, svc)

	clock.Advance(time.Minute)
	require.Eventually(t, func() bool {
		return svc.Snapshot() == Snapshot{Tokens: None[TokenSet](), User: None[User]()}
	}, waitFor, tick)
	require.Eventually(t, func() bool {
		got := rec.all()
		return len(got) == 2 && got[1] == None[TokenSet]()
	}, waitFor, tick)
}

func TestLogoutCancelsScheduledRefresh(t *testing.T) {
	start := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	clock := clockwork.NewFakeClockAt(start)
	api := newFakeAPI()
	svc := NewService(api,
		WithClock(clock),
		WithInitialTokens(Static(&TokenSet{Access: "a1", AccessExpiresAt: start.Add(time.Minute), Refresh: "r1"})),
	)
	defer svc.Close()
	svc.Start(context.Background())
	waitResolved(t, svc)

	require.NoError(t, svc.Logout(context.Background()))
	clock.Advance(time.Hour)
	require.Never(t, func() bool { _, _, r := api.counts(); return len(r) > 0 }, 50*time.Millisecond, tick)
}

func TestNoRefreshWithoutExpiryOrRefreshToken(t *testing.T) {
	start := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name   string
		tokens TokenSet
	}{
		{name: "no expiry", tokens: TokenSet{Access: "a", Refresh: "r"}},
		{name: "no refresh token", tokens: TokenSet{Access: "a", AccessExpiresAt: start.Add(time.Minute)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := clockwork.NewFakeClockAt(start)
			api := newFakeAPI()
			tokens := tt.tokens
			svc := NewService(api, WithClock(clock), WithInitialTokens(Static(&tokens)))
			defer svc.Close()
			svc.Start(context.Background())
			waitResolved(t, svc)

			clock.Advance(24 * time.Hour)
			require.Never(t, func() bool { _, _, r := api.counts(); return len(r) > 0 }, 50*time.Millisecond, tick)
		})
	}
}

func TestCloseStopsRefreshAndIsIdempotent(t *testing.T) {
	start := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	clock := clockwork.NewFakeClockAt(start)
	api := newFakeAPI()
	svc := NewService(api,
		WithClock(clock),
		WithInitialTokens(Static(&TokenSet{Access: "a1", AccessExpiresAt: start.Add(time.Minute), Refresh: "r1"})),
	)
	svc.Start(context.Background())
	waitResolved(t, svc)

	svc.Close()
	svc.Close()
	clock.Advance(time.Hour)
	require.Never(t, func() bool { _, _, r := api.counts(); return len(r) > 0 }, 50*time.Millisecond, tick)
}

func TestTokenSource(t *testing.T) {
	expires := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	svc := NewService(newFakeAPI())
	defer svc.Close()

	_, err := svc.Token()
	require.ErrorIs(t, err, ErrNotLoggedIn)

	svc2 := NewService(newFakeAPI(), WithInitialTokens(Static(&TokenSet{Access: "a", Refresh: "r", AccessExpiresAt: expires})))
	defer svc2.Close()
	svc2.Start(context.Background())
	waitResolved(t, svc2)

	tok, err := svc2.Token()
	require.NoError(t, err)
	require.Equal(t, "a", tok.AccessToken)
	require.Equal(t, "r", tok.RefreshToken)
	require.Equal(t, "Bearer", tok.Type())
	require.True(t, tok.Expiry.Equal(expires))
}
