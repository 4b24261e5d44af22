package serialport

import (
	"fmt"
	"time"

	"go.bug.st/serial"
	"go.uber.org/zap"

	"github.com/dverge/insteonplm/internal/logging"
	"github.com/dverge/insteonplm/internal/transport"
)

// PLM serial line settings: 19200 baud, 8 data bits, no parity, one stop
// bit. These are fixed for Insteon PLMs; only the device path varies.
const (
	DefaultBaudRate    = 19200
	DefaultReadTimeout = 2 * time.Second

	DefaultOpenAttempts  = 10
	DefaultOpenRetryWait = 30 * time.Second
)

// Config describes how to reach the PLM.
type Config struct {
	// Device is the serial device path, e.g. /dev/ttyUSB0 or COM3.
	Device string

	// BaudRate defaults to 19200 when zero.
	BaudRate int

	// ReadTimeout bounds each blocking read; defaults to 2s when zero.
	ReadTimeout time.Duration

	// OpenAttempts and OpenRetryWait control the open-retry loop.
	// Zero values take the defaults.
	OpenAttempts  int
	OpenRetryWait time.Duration
}

func (c Config) withDefaults() Config {
	if c.BaudRate == 0 {
		c.BaudRate = DefaultBaudRate
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = DefaultReadTimeout
	}
	if c.OpenAttempts == 0 {
		c.OpenAttempts = DefaultOpenAttempts
	}
	if c.OpenRetryWait == 0 {
		c.OpenRetryWait = DefaultOpenRetryWait
	}
	return c
}

// Port adapts a go.bug.st serial port to the transport.Port interface.
type Port struct {
	inner serial.Port
}

var _ transport.Port = (*Port)(nil)

// Open opens the PLM serial device, retrying on failure. USB serial
// adapters can take a while to enumerate, so a failed open waits and
// tries again up to the configured attempt count.
func Open(cfg Config) (*Port, error) {
	cfg = cfg.withDefaults()
	if cfg.Device == "" {
		return nil, fmt.Errorf("serial device path not configured")
	}

	mode := &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	var lastErr error
	for attempt := 1; attempt <= cfg.OpenAttempts; attempt++ {
		inner, err := serial.Open(cfg.Device, mode)
		if err == nil {
			if err := inner.SetReadTimeout(cfg.ReadTimeout); err != nil {
				inner.Close()
				return nil, fmt.Errorf("setting read timeout on %s: %w", cfg.Device, err)
			}
			logging.Info("serial port opened",
				zap.String("device", cfg.Device),
				zap.Int("baud_rate", cfg.BaudRate))
			return &Port{inner: inner}, nil
		}
		lastErr = err
		logging.Warn("serial port open failed",
			zap.String("device", cfg.Device),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", cfg.OpenAttempts),
			zap.Error(err))
		if attempt < cfg.OpenAttempts {
			time.Sleep(cfg.OpenRetryWait)
		}
	}
	return nil, fmt.Errorf("opening %s after %d attempts: %w", cfg.Device, cfg.OpenAttempts, lastErr)
}

// Write writes the whole frame.
func (p *Port) Write(b []byte) error {
	n, err := p.inner.Write(b)
	if err != nil {
		return err
	}
	if n != len(b) {
		return fmt.Errorf("short write: %d of %d bytes", n, len(b))
	}
	return nil
}

// Read reads up to n bytes, accumulating partial reads until either n
// bytes arrived or the read timeout elapsed with nothing new. Returning
// fewer than n bytes is not an error here; the transport layer decides
// what a short read means.
func (p *Port) Read(n int) ([]byte, error) {
	buf := make([]byte, 0, n)
	chunk := make([]byte, n)
	for len(buf) < n {
		got, err := p.inner.Read(chunk[:n-len(buf)])
		if err != nil {
			return buf, err
		}
		if got == 0 {
			// Timeout with nothing more buffered.
			return buf, nil
		}
		buf = append(buf, chunk[:got]...)
	}
	return buf, nil
}

// FlushInput discards unread bytes buffered on the channel.
func (p *Port) FlushInput() error {
	return p.inner.ResetInputBuffer()
}

// FlushOutput discards unsent bytes buffered on the channel.
func (p *Port) FlushOutput() error {
	return p.inner.ResetOutputBuffer()
}

// Close closes the underlying device.
func (p *Port) Close() error {
	return p.inner.Close()
}
