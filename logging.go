package unistate

import (
	"github.com/joeycumines/go-unistate/internal/logging"
	"github.com/joeycumines/logiface"
)

// Logger is the structured logger accepted by this module.
type Logger = logiface.Logger[logiface.Event]

// SetLogger sets the package-level logger, used by every component of this
// module that was not configured with its own logger, including executors
// and reactive values. Passing nil disables logging, which is the default.
func SetLogger(logger *Logger) {
	logging.Set(logger)
}
