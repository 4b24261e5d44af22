package device

import (
	"go.uber.org/zap"

	"github.com/dverge/insteonplm/internal/logging"
	"github.com/dverge/insteonplm/internal/protocol"
)

// StatusTracker turns raw per-call error booleans into edge-triggered
// status events: one event when a device enters the error state, one when
// it recovers, and nothing while the status is unchanged. This keeps a
// persistently failing (or persistently healthy) device from flooding the
// log on every poll.
type StatusTracker struct {
	log *zap.Logger
}

// NewStatusTracker creates a tracker logging through the given logger.
// A nil logger uses the package-global one.
func NewStatusTracker(log *zap.Logger) *StatusTracker {
	if log == nil {
		log = logging.GetLogger()
	}
	return &StatusTracker{log: log}
}

// Report records the outcome of one operation on a device and returns the
// new error status (always failedNow). An event is emitted only on a
// transition from the previous status.
func (t *StatusTracker) Report(addr protocol.Address, context string, failedNow, previous bool) bool {
	if failedNow && !previous {
		t.log.Warn("device entered error state",
			zap.Stringer("address", addr),
			zap.String("context", context),
		)
	} else if !failedNow && previous {
		t.log.Info("device recovered",
			zap.Stringer("address", addr),
			zap.String("context", context),
		)
	}
	return failedNow
}
