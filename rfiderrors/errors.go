// Package rfiderrors defines the error taxonomy shared by every package in
// this module: transport, framing, session and multiplexer failures all
// surface as a *rfiderrors.Error so callers can classify them with Kind
// without parsing message text.
package rfiderrors

import "github.com/pkg/errors"

// Kind classifies the origin of an error, per the reader SDK's error
// taxonomy.
type Kind int

const (
	// TransportConfig indicates a bad port name, bad baud rate or bind
	// failure surfaced from Connect.
	TransportConfig Kind = iota
	// TransportIO indicates a runtime send/recv failure.
	TransportIO
	// NotConnected indicates a command was issued before Connect or after
	// the session faulted.
	NotConnected
	// Unsupported indicates the operation is not implemented by the
	// selected dialect.
	Unsupported
	// BufferOverflow indicates a frame build exceeded the fixed send
	// buffer.
	BufferOverflow
	// Internal indicates an unexpected dispatch-side failure.
	Internal
)

func (k Kind) String() string {
	switch k {
	case TransportConfig:
		return "transport_config"
	case TransportIO:
		return "transport_io"
	case NotConnected:
		return "not_connected"
	case Unsupported:
		return "unsupported"
	case BufferOverflow:
		return "buffer_overflow"
	case Internal:
		return "internal"
	default:
		return "unknown"
	}
}

// Error is a classified, wrapped error. It implements error and supports
// errors.Unwrap so callers can still inspect the underlying cause.
type Error struct {
	Kind Kind
	msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.msg + ": " + e.Err.Error()
	}
	return e.msg
}

// Unwrap allows errors.Is/errors.As to see through to the wrapped cause.
func (e *Error) Unwrap() error { return e.Err }

// New creates a classified error with no wrapped cause.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, msg: msg}
}

// Wrap classifies err under kind, attaching msg as context and preserving
// a stack trace via github.com/pkg/errors.
func Wrap(kind Kind, err error, msg string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, msg: msg, Err: errors.WithStack(err)}
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// ErrNotConnected is returned by command operations issued before Connect
// or after the session has Faulted.
var ErrNotConnected = New(NotConnected, "session is not connected")

// ErrUnsupported is returned by command operations the selected dialect
// does not implement.
var ErrUnsupported = New(Unsupported, "operation not supported by dialect")
