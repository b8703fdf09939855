package observability

import (
	"fmt"
	"runtime/debug"

	"github.com/sirupsen/logrus"
)

// RecoverPanic logs a recovered panic with its stack. Call it deferred; the
// panic is not re-raised.
//
//	defer observability.RecoverPanic(log, "watch callback")
func RecoverPanic(log *logrus.Logger, where string) {
	if r := recover(); r != nil {
		log.WithFields(logrus.Fields{
			"panic":   r,
			"stack":   string(debug.Stack()),
			"context": where,
		}).Error("PANIC recovered")
	}
}

// PanicError converts a value returned by recover into an error; nil stays nil
func PanicError(r any) error {
	switch v := r.(type) {
	case nil:
		return nil
	case error:
		return fmt.Errorf("panic: %w", v)
	default:
		return fmt.Errorf("panic: %v", v)
	}
}
