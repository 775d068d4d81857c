package keychain

import (
	"sync/atomic"

	"github.com/rs/zerolog"
)

var pkgLogger atomic.Pointer[zerolog.Logger]

// SetLogger sets the logger used for keychain diagnostics. Values are never logged.
func SetLogger(l zerolog.Logger) {
	pkgLogger.Store(&l)
}

func logger() *zerolog.Logger {
	if l := pkgLogger.Load(); l != nil {
		return l
	}
	nop := zerolog.Nop()
	return &nop
}
