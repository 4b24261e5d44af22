// Package transport drives single command/response exchanges against the
// PLM serial channel.
//
// Every PLM command follows the same strict shape: flush both channel
// buffers, write the frame, then read the fixed-length response segments
// in order (echo + ack byte, one or more 11-byte standard-message
// segments, optionally one 25-byte extended-message segment). A read that
// comes back short, a wrong marker byte, or a command echo that does not
// match what was sent all abort the exchange with a classified error, and
// both buffers are flushed again so the next exchange starts clean.
//
// A Session never retries; recovery policy belongs to the caller. The
// serial channel allows one in-flight exchange at a time, so callers must
// serialize access to a Session externally.
package transport
