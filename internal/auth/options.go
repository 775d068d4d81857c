package auth

import (
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// DefaultRefreshLeeway is how long before access expiry a refresh is attempted.
const DefaultRefreshLeeway = 30 * time.Second

// Option configures a Service.
type Option func(*Service)

// WithInitialTokens sets the source of the first TokenSet. Without it the
// service resolves to None.
func WithInitialTokens(src InitialTokens) Option {
	return func(s *Service) { s.initial = src }
}

// WithOnChange registers a callback invoked with the tokens every time they
// change to a resolved state. Callbacks run in order on a dedicated goroutine.
func WithOnChange(fn func(State[TokenSet])) Option {
	return func(s *Service) { s.onChange = fn }
}

// WithClock replaces the clock used for expiry arithmetic and the refresh timer.
func WithClock(c clockwork.Clock) Option {
	return func(s *Service) { s.clock = c }
}

// WithRefreshLeeway overrides DefaultRefreshLeeway. Negative values are ignored.
func WithRefreshLeeway(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.leeway = d
		}
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.log = l }
}
