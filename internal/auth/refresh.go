// Copyright (c) 2025 The sessionctl Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package auth

import "time"

// refreshDelay is how long to wait before refreshing a token expiring at
// expiresAt. Already-expired tokens refresh without delay.
func refreshDelay(now, expiresAt time.Time, leeway time.Duration) time.Duration {
	d := expiresAt.Sub(now) - leeway
	if d < 0 {
		return 0
	}
	return d
}

// scheduleRefreshLocked replaces the refresh timer for the current tokens.
// At most one timer exists. s.mu must be held.
func (s *Service) scheduleRefreshLocked(gen uint64) {
	s.stopTimerLocked()

	t, ok := s.tokens.Get()
	if !ok || !t.refreshable() || s.closed {
		return
	}

	delay := refreshDelay(s.clock.Now(), t.AccessExpiresAt, s.leeway)
	refreshToken := t.Refresh
	s.log.Debug().Dur("in", delay).Msg("refresh scheduled")
	s.timer = s.clock.AfterFunc(delay, func() { s.refresh(gen, refreshToken) })
}

func (s *Service) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// refresh runs when the timer for generation gen fires. Success replaces the
// tokens and notifies the callback directly on top of the regular change
// notification. Failure clears the session.
func (s *Service) refresh(gen uint64, refreshToken string) {
	s.mu.Lock()
	stale := s.closed || s.gen != gen
	s.mu.Unlock()
	if stale {
		return
	}

	t, err := s.api.RefreshToken(s.ctx, refreshToken)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.gen != gen {
		return
	}
	if err != nil {
		s.log.Warn().Err(err).Msg("token refresh failed; clearing session")
		s.setTokensLocked(None[TokenSet]())
		return
	}

	next := Present(tokensFromBackend(t))
	s.log.Debug().Stringer("tokens", next).Msg("tokens refreshed")
	s.setTokensLocked(next)
	s.notify.enqueue(next)
}
