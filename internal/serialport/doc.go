// Package serialport opens and adapts the physical serial channel the PLM
// is attached to.
//
// It wraps go.bug.st/serial behind the transport.Port interface the
// driver core exchanges against: exact-count reads that return short on
// timeout, and input/output buffer flushes. PLMs sit on USB adapters that
// enumerate late after boot, so Open retries with a wait between
// attempts before giving up.
package serialport
