package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	errs "sessionctl/cli/internal/errors"
)

func TestMustFromContextOutsideScopePanics(t *testing.T) {
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected panic")
		err, ok := r.(error)
		require.True(t, ok)
		require.Equal(t, errs.OutsideScope, errs.KindOf(err))
	}()
	MustFromContext(context.Background())
}

func TestMustFromContextReturnsService(t *testing.T) {
	svc := NewService(newFakeAPI())
	defer svc.Close()

	ctx := NewContext(context.Background(), svc)
	got, ok := FromContext(ctx)
	require.True(t, ok)
	require.Same(t, svc, got)

	sess := MustFromContext(ctx)
	require.Equal(t, StatusUnresolved, sess.Tokens().Status())
	require.Equal(t, StatusUnresolved, sess.CurrentUser().Status())
}

func TestFromContextNilService(t *testing.T) {
	ctx := NewContext(context.Background(), nil)
	_, ok := FromContext(ctx)
	require.False(t, ok)
}
