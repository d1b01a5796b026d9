package layer

import (
	"sync/atomic"

	"go.uber.org/zap"
)

var fallbackLog atomic.Pointer[zap.Logger]

// Logger returns the process-wide fallback logger. Layers built without
// Options.Logger log through it, and calls on handles no layer object owns
// report there at debug level. It is a no-op logger until SetLogger runs.
func Logger() *zap.Logger {
	if l := fallbackLog.Load(); l != nil {
		return l
	}
	return zap.NewNop()
}

// SetLogger replaces the fallback logger. Layers already built keep the
// logger they were given; unknown-handle reports switch immediately.
// A nil l restores the no-op logger.
func SetLogger(l *zap.Logger) {
	fallbackLog.Store(l)
}
