package auth

import (
	"context"

	errs "sessionctl/cli/internal/errors"
)

// Session is the consumer-facing view of a Service.
type Session interface {
	CurrentUser() State[User]
	Tokens() State[TokenSet]
	Login(ctx context.Context, c Credentials) error
	Logout(ctx context.Context) error
}

var _ Session = (*Service)(nil)

type serviceKey struct{}

// NewContext returns a child of ctx carrying s.
func NewContext(ctx context.Context, s *Service) context.Context {
	return context.WithValue(ctx, serviceKey{}, s)
}

// FromContext returns the Service carried by ctx, if any.
func FromContext(ctx context.Context) (*Service, bool) {
	s, ok := ctx.Value(serviceKey{}).(*Service)
	return s, ok && s != nil
}

// MustFromContext returns the session in scope. Using it where no Service was
// attached with NewContext is a programming error and panics.
func MustFromContext(ctx context.Context) Session {
	s, ok := FromContext(ctx)
	if !ok {
		panic(errs.New(errs.OutsideScope, "auth.MustFromContext must be used within a context carrying an auth.Service"))
	}
	return s
}
