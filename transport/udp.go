package transport

import (
	"net"
	"strconv"
	"sync"

	"github.com/uhfreader/sdk/rfiderrors"
)

// udpTransport implements Transport over a UDP datagram socket, in the
// style of elektrosoftlab's udpSockWrapper: one net.UDPConn, non-blocking
// reads translating "nothing pending" into (0, nil) rather than an error.
type udpTransport struct {
	cfg Config

	mu     sync.Mutex
	conn   *net.UDPConn
	remote *net.UDPAddr
	status Status
}

// NewUDP returns a Transport for a UDP datagram socket.
func NewUDP(cfg Config) Transport {
	return &udpTransport{cfg: cfg, status: Disconnected}
}

func (t *udpTransport) Acquire() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	remote, err := net.ResolveUDPAddr("udp", net.JoinHostPort(t.cfg.RemoteAddr, strconv.Itoa(t.cfg.RemotePort)))
	if err != nil {
		return rfiderrors.Wrap(rfiderrors.TransportConfig, err, "resolve udp remote address")
	}

	var local *net.UDPAddr
	if t.cfg.LocalAddr != "" || t.cfg.LocalPort != 0 {
		local, err = net.ResolveUDPAddr("udp", net.JoinHostPort(t.cfg.LocalAddr, strconv.Itoa(t.cfg.LocalPort)))
		if err != nil {
			return rfiderrors.Wrap(rfiderrors.TransportConfig, err, "resolve udp local address")
		}
	}

	conn, err := net.DialUDP("udp", local, remote)
	if err != nil {
		return rfiderrors.Wrap(rfiderrors.TransportConfig, err, "dial udp")
	}

	t.conn = conn
	t.remote = remote
	t.status = Connected
	return nil
}

func (t *udpTransport) Send(b []byte) error {
	t.mu.Lock()
	conn := t.conn
	t.mu.Unlock()
	if conn == nil {
		return rfiderrors.ErrNotConnected
	}
	if _, err := conn.Write(b); err != nil {
		return rfiderrors.Wrap(rfiderrors.TransportIO, err, "udp send")
	}
	return nil
}

func (t *udpTransport) Recv(buf []byte) (int, error) {
	t.mu.Lock()
	conn := t.conn
	t.mu.Unlock()
	if conn == nil {
		return 0, rfiderrors.ErrNotConnected
	}

	if err := conn.SetReadDeadline(nowPlusEpsilon()); err != nil {
		return 0, rfiderrors.Wrap(rfiderrors.TransportIO, err, "udp set read deadline")
	}
	n, err := conn.Read(buf)
	if err != nil {
		if isTimeout(err) {
			return 0, nil
		}
		return 0, rfiderrors.Wrap(rfiderrors.TransportIO, err, "udp recv")
	}
	return n, nil
}

func (t *udpTransport) Release() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn == nil {
		return nil
	}
	err := t.conn.Close()
	t.conn = nil
	t.status = Disconnected
	if err != nil {
		return rfiderrors.Wrap(rfiderrors.TransportIO, err, "udp close")
	}
	return nil
}

func (t *udpTransport) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// File satisfies Pollable: the receive multiplexer registers the
// underlying file descriptor with its readiness selector, reading it
// via SyscallConn rather than conn.File() so no duplicate descriptor is
// created (a dup'd fd would be invalidated the moment its *os.File
// wrapper were closed).
func (t *udpTransport) File() (int, bool) {
	t.mu.Lock()
	conn := t.conn
	t.mu.Unlock()
	if conn == nil {
		return 0, false
	}
	return syscallFd(conn)
}
