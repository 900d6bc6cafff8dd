// Package transport implements the three physical channels a Reader
// Session can be built on: a serial line, a UDP datagram socket, and a
// TCP client socket. All three share one capability set so a Reader
// Session can treat them uniformly; only the selectable variants (UDP,
// TCP) additionally expose a pollable readiness handle for the receive
// multiplexer's selector.
package transport

import (
	"errors"
	"net"
	"strconv"
	"syscall"
	"time"

	"github.com/uhfreader/sdk/rfiderrors"
)

// Status is a Transport's connection-state value.
type Status int

// Recognized connection states.
const (
	Disconnected Status = iota
	LocalResourceAcquired
	Connected
)

// String returns the status's name.
func (s Status) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case LocalResourceAcquired:
		return "local-resource-acquired"
	case Connected:
		return "connected"
	default:
		return "unknown"
	}
}

// ConnectType selects which Transport variant Connect builds, matching
// spec.md §6's connect_type enumeration.
type ConnectType int

// Recognized connect types.
const (
	ConnectSerial ConnectType = iota
	ConnectUDP
	ConnectTCPClient
	ConnectTCPServer // reserved; Connect returns ErrUnsupported
)

// Config describes how to acquire one Transport.
type Config struct {
	ConnectType ConnectType

	// Serial fields.
	PortName string
	BaudRate int

	// UDP / TCP client fields.
	RemoteAddr string
	RemotePort int
	LocalAddr  string
	LocalPort  int

	// ReadTimeout is carried for callers but no variant consults it:
	// serial reads always use serialReadTimeout and the TCP dial always
	// uses tcpDialTimeout.
	ReadTimeout time.Duration
}

// Transport is a handle to one physical channel.
type Transport interface {
	// Acquire opens/connects the underlying channel.
	Acquire() error
	// Send writes all of b to the channel.
	Send(b []byte) error
	// Recv reads into buf, returning the number of bytes read. It
	// never blocks longer than the underlying channel's own readiness
	// notification already guarantees; 0 bytes with a nil error means
	// "nothing available right now", not an error.
	Recv(buf []byte) (int, error)
	// Release closes the channel, freeing any OS resources.
	Release() error
	// Status reports the current connection state.
	Status() Status
}

// Pollable is implemented by selectable Transport variants (UDP, TCP)
// so the receive multiplexer can register them with an OS readiness
// selector instead of polling them on a timer, the way serial-backed
// sessions must be.
type Pollable interface {
	// File returns a reference suitable for registering with a
	// readiness selector. The returned value's concrete type matches
	// what the mux package's selector implementation expects.
	File() (fd int, ok bool)
}

// ByteCounter is implemented by the serial Transport variant, which
// cannot be registered with an OS readiness selector; the receive
// multiplexer instead polls BytesAvailable on a timer.
type ByteCounter interface {
	BytesAvailable() int
}

// New builds the Transport variant named by cfg.ConnectType.
func New(cfg Config) (Transport, error) {
	switch cfg.ConnectType {
	case ConnectSerial:
		return NewSerial(cfg), nil
	case ConnectUDP:
		return NewUDP(cfg), nil
	case ConnectTCPClient:
		return NewTCP(cfg), nil
	case ConnectTCPServer:
		return nil, rfiderrors.Wrap(rfiderrors.Unsupported, rfiderrors.ErrUnsupported, "tcp-server connect type is reserved")
	default:
		return nil, rfiderrors.New(rfiderrors.TransportConfig, "unrecognized connect type")
	}
}

// Key returns the stable session key spec.md §3/§4.D expects: a
// transport-scheme-qualified endpoint identifier.
func (cfg Config) Key() string {
	switch cfg.ConnectType {
	case ConnectSerial:
		return "serial:" + cfg.PortName
	case ConnectUDP:
		return udpTCPKey("udp", cfg)
	case ConnectTCPClient:
		return udpTCPKey("tcp", cfg)
	default:
		return "unsupported"
	}
}

func udpTCPKey(scheme string, cfg Config) string {
	key := scheme + ":"
	if cfg.LocalAddr != "" || cfg.LocalPort != 0 {
		key += cfg.LocalAddr + ":" + strconv.Itoa(cfg.LocalPort) + "->"
	}
	return key + cfg.RemoteAddr + ":" + strconv.Itoa(cfg.RemotePort)
}

// pollEpsilon is the near-zero deadline offset used to turn a blocking
// net.Conn.Read into the "0 bytes, no error" would-block result spec.md
// §4.A requires for UDP and TCP Recv.
const pollEpsilon = 1 * time.Millisecond

func nowPlusEpsilon() time.Time { return time.Now().Add(pollEpsilon) }

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// syscallFd reads a connection's underlying file descriptor without
// creating a dup via SyscallConn().Control, so the mux package can
// register it with a readiness selector.
func syscallFd(conn syscall.Conn) (int, bool) {
	raw, err := conn.SyscallConn()
	if err != nil {
		return 0, false
	}
	var fd int
	if err := raw.Control(func(descriptor uintptr) { fd = int(descriptor) }); err != nil {
		return 0, false
	}
	return fd, true
}
