package transport

import (
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/uhfreader/sdk/rfiderrors"
)

// tcpDialTimeout bounds how long Acquire's connect step may block.
const tcpDialTimeout = 10 * time.Second

// tcpTransport implements Transport over a TCP client socket. Acquire
// may block synchronously during connect, per spec.md §4.A, and Send may
// block on kernel buffer pressure; Recv never does, since every Recv
// call gets a near-zero read deadline and a resulting timeout is
// translated into (0, nil).
type tcpTransport struct {
	cfg Config

	mu     sync.Mutex
	conn   *net.TCPConn
	status Status
}

// NewTCP returns a Transport for a TCP client socket.
func NewTCP(cfg Config) Transport {
	return &tcpTransport{cfg: cfg, status: Disconnected}
}

func (t *tcpTransport) Acquire() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	remoteAddr := net.JoinHostPort(t.cfg.RemoteAddr, strconv.Itoa(t.cfg.RemotePort))

	var dialer net.Dialer
	dialer.Timeout = tcpDialTimeout
	if t.cfg.LocalAddr != "" || t.cfg.LocalPort != 0 {
		local, err := net.ResolveTCPAddr("tcp", net.JoinHostPort(t.cfg.LocalAddr, strconv.Itoa(t.cfg.LocalPort)))
		if err != nil {
			return rfiderrors.Wrap(rfiderrors.TransportConfig, err, "resolve tcp local address")
		}
		dialer.LocalAddr = local
	}

	conn, err := dialer.Dial("tcp", remoteAddr)
	if err != nil {
		return rfiderrors.Wrap(rfiderrors.TransportConfig, err, "dial tcp "+remoteAddr)
	}

	t.conn = conn.(*net.TCPConn)
	t.status = Connected
	return nil
}

func (t *tcpTransport) Send(b []byte) error {
	t.mu.Lock()
	conn := t.conn
	t.mu.Unlock()
	if conn == nil {
		return rfiderrors.ErrNotConnected
	}
	if _, err := conn.Write(b); err != nil {
		return rfiderrors.Wrap(rfiderrors.TransportIO, err, "tcp send")
	}
	return nil
}

func (t *tcpTransport) Recv(buf []byte) (int, error) {
	t.mu.Lock()
	conn := t.conn
	t.mu.Unlock()
	if conn == nil {
		return 0, rfiderrors.ErrNotConnected
	}

	if err := conn.SetReadDeadline(nowPlusEpsilon()); err != nil {
		return 0, rfiderrors.Wrap(rfiderrors.TransportIO, err, "tcp set read deadline")
	}
	n, err := conn.Read(buf)
	if err != nil {
		if isTimeout(err) {
			return 0, nil
		}
		// Peer close or other error: a permanent failure per
		// spec.md §4.A, surfaced so the session can fault.
		return 0, rfiderrors.Wrap(rfiderrors.TransportIO, err, "tcp recv")
	}
	return n, nil
}

func (t *tcpTransport) Release() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn == nil {
		return nil
	}
	err := t.conn.Close()
	t.conn = nil
	t.status = Disconnected
	if err != nil {
		return rfiderrors.Wrap(rfiderrors.TransportIO, err, "tcp close")
	}
	return nil
}

func (t *tcpTransport) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// File satisfies Pollable; see udpTransport.File for why SyscallConn is
// used instead of conn.File().
func (t *tcpTransport) File() (int, bool) {
	t.mu.Lock()
	conn := t.conn
	t.mu.Unlock()
	if conn == nil {
		return 0, false
	}
	return syscallFd(conn)
}
