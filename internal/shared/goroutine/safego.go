// Package goroutine keeps a panicking background task from crashing the process.
package goroutine

import (
	"fmt"
	"runtime/debug"

	"github.com/devicehub/devicehub/internal/shared/logger"
)

// Recover logs a recovered panic. Must be deferred directly.
func Recover(log logger.Interface, name string) {
	if r := recover(); r != nil {
		log.Errorw("goroutine panicked",
			"goroutine", name,
			"panic", fmt.Sprintf("%v", r),
			"stack", string(debug.Stack()),
		)
	}
}
