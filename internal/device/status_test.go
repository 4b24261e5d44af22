package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dverge/insteonplm/internal/protocol"
)

func TestStatusTrackerEdgeTriggered(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	tracker := NewStatusTracker(zap.New(core))
	addr := protocol.Address{0x00, 0x2b, 0x8e}

	// Healthy device stays silent.
	status := tracker.Report(addr, "get state", false, false)
	assert.False(t, status)
	assert.Zero(t, logs.Len())

	// Entering the error state logs exactly once.
	status = tracker.Report(addr, "get state", true, status)
	assert.True(t, status)
	assert.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	assert.Equal(t, "device entered error state", entry.Message)

	// Staying failed produces no further events.
	status = tracker.Report(addr, "get state", true, status)
	status = tracker.Report(addr, "set off", true, status)
	assert.True(t, status)
	assert.Equal(t, 1, logs.Len())

	// Recovery logs exactly once.
	status = tracker.Report(addr, "get state", false, status)
	assert.False(t, status)
	assert.Equal(t, 2, logs.Len())
	entry = logs.All()[1]
	assert.Equal(t, zapcore.InfoLevel, entry.Level)
	assert.Equal(t, "device recovered", entry.Message)

	// Staying healthy is silent again.
	tracker.Report(addr, "get state", false, status)
	assert.Equal(t, 2, logs.Len())
}

func TestStatusTrackerEventFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	tracker := NewStatusTracker(zap.New(core))
	addr := protocol.Address{0x33, 0x46, 0x6f}

	tracker.Report(addr, "set on, level 80", true, false)
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "33.46.6f", fields["address"])
	assert.Equal(t, "set on, level 80", fields["context"])
}
