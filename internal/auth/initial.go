package auth

import "context"

// InitialTokens is the source the service resolves its first TokenSet from.
// A nil result (or a nil source) resolves to None.
type InitialTokens interface {
	Resolve(ctx context.Context) (*TokenSet, error)
}

// Loader adapts a context-aware function to InitialTokens.
type Loader func(ctx context.Context) (*TokenSet, error)

// Resolve calls f.
func (f Loader) Resolve(ctx context.Context) (*TokenSet, error) { return f(ctx) }

// Static resolves to t as given.
func Static(t *TokenSet) InitialTokens {
	return Loader(func(context.Context) (*TokenSet, error) { return t, nil })
}

// Producer resolves by calling fn once.
func Producer(fn func() *TokenSet) InitialTokens {
	return Loader(func(context.Context) (*TokenSet, error) { return fn(), nil })
}

// Deferred resolves to the first value received from ch. A channel closed
// without a value resolves to nil.
func Deferred(ch <-chan *TokenSet) InitialTokens {
	return Loader(func(ctx context.Context) (*TokenSet, error) {
		select {
		case t := <-ch:
			return t, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	})
}

func resolveInitialTokens(ctx context.Context, src InitialTokens) (*TokenSet, error) {
	if src == nil {
		return nil, nil
	}
	return src.Resolve(ctx)
}
