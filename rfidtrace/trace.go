// Package rfidtrace provides hook-based tracing of connect, send, recv and
// dispatch events, in the style of netconf client tracing: a struct of
// optional function fields, installed on a context.Context, defaulted to a
// no-op implementation so callers never need a nil check.
package rfidtrace

import (
	"context"
	"log"
	"time"

	"github.com/imdario/mergo"
)

type traceContextKey struct{}

// Trace defines the set of events a caller may observe. Any field left nil
// is treated as a no-op.
type Trace struct {
	// ConnectStart is called before a Transport is acquired.
	ConnectStart func(key string)
	// ConnectDone is called after acquisition completes.
	ConnectDone func(key string, err error, d time.Duration)

	// SendStart is called before bytes are written to the Transport.
	SendStart func(key string, n int)
	// SendDone is called after the write completes.
	SendDone func(key string, n int, err error, d time.Duration)

	// RecvStart is called before a Transport read attempt.
	RecvStart func(key string)
	// RecvDone is called after a Transport read attempt completes.
	RecvDone func(key string, n int, err error, d time.Duration)

	// FrameDispatched is called for every frame handed to a callback.
	FrameDispatched func(key string, command byte, offset int)
	// FrameDropped is called when a frame's command code has no
	// registered callback slot.
	FrameDropped func(key string, command byte, offset int)

	// Error is called when a transport failure is surfaced (a failed
	// Recv in HandleRecv). Corrupt or truncated bytes that the codec's
	// scan skips are not reported through it.
	Error func(context, key string, err error)
}

// NoOpTrace discards every event. It is the default when no trace is
// installed on a context.
var NoOpTrace = &Trace{
	ConnectStart:    func(string) {},
	ConnectDone:     func(string, error, time.Duration) {},
	SendStart:       func(string, int) {},
	SendDone:        func(string, int, error, time.Duration) {},
	RecvStart:       func(string) {},
	RecvDone:        func(string, int, error, time.Duration) {},
	FrameDispatched: func(string, byte, int) {},
	FrameDropped:    func(string, byte, int) {},
	Error:           func(string, string, error) {},
}

// DiagnosticTrace logs every event via the standard logger. Useful for
// examples and integration tests.
var DiagnosticTrace = &Trace{
	ConnectStart: func(key string) { log.Printf("connect start key=%s", key) },
	ConnectDone: func(key string, err error, d time.Duration) {
		log.Printf("connect done key=%s err=%v took=%s", key, err, d)
	},
	SendStart: func(key string, n int) { log.Printf("send start key=%s n=%d", key, n) },
	SendDone: func(key string, n int, err error, d time.Duration) {
		log.Printf("send done key=%s n=%d err=%v took=%s", key, n, err, d)
	},
	RecvStart: func(key string) { log.Printf("recv start key=%s", key) },
	RecvDone: func(key string, n int, err error, d time.Duration) {
		log.Printf("recv done key=%s n=%d err=%v took=%s", key, n, err, d)
	},
	FrameDispatched: func(key string, command byte, offset int) {
		log.Printf("frame dispatched key=%s cmd=0x%02x offset=%d", key, command, offset)
	},
	FrameDropped: func(key string, command byte, offset int) {
		log.Printf("frame dropped key=%s cmd=0x%02x offset=%d", key, command, offset)
	},
	Error: func(context, key string, err error) {
		log.Printf("error context=%s key=%s err=%v", context, key, err)
	},
}

// With returns a new context carrying the supplied trace.
func With(ctx context.Context, t *Trace) context.Context {
	return context.WithValue(ctx, traceContextKey{}, t)
}

// From returns the Trace associated with ctx, merged over NoOpTrace so
// every field is safe to call. If ctx carries no trace, NoOpTrace itself
// is returned.
func From(ctx context.Context) *Trace {
	t, ok := ctx.Value(traceContextKey{}).(*Trace)
	if !ok || t == nil {
		return NoOpTrace
	}
	merged := *t
	_ = mergo.Merge(&merged, *NoOpTrace)
	return &merged
}
