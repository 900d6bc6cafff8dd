package transport

import (
	"sync"
	"sync/atomic"
	"time"

	goserial "github.com/goburrow/serial"

	"github.com/uhfreader/sdk/rfiderrors"
)

// serialReadTimeout is the intrinsic per-read timeout spec.md §4.A
// mandates for the serial variant.
const serialReadTimeout = 500 * time.Millisecond

// serialTransport implements Transport over a named serial port at a
// configured baud rate, 8N1. Unlike UDP/TCP it cannot be registered
// with an OS readiness selector; the receive multiplexer instead polls
// BytesAvailable() on a timer, matching
// transport_serial_port.py's read_data, which checks in_waiting before
// reading.
type serialTransport struct {
	cfg Config

	mu     sync.Mutex
	port   goserial.Port
	status Status

	available int32 // atomic; set by the background reader goroutine
	stopRead  chan struct{}
	readBuf   chan []byte

	leftover []byte // unread tail of a chunk that didn't fit the caller's buf
}

// NewSerial returns a Transport for a serial line. Acquire must be
// called before Send/Recv.
func NewSerial(cfg Config) Transport {
	return &serialTransport{cfg: cfg, status: Disconnected}
}

func (t *serialTransport) Acquire() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	port, err := goserial.Open(&goserial.Config{
		Address:  t.cfg.PortName,
		BaudRate: t.cfg.BaudRate,
		DataBits: 8,
		Parity:   "N",
		StopBits: 1,
		Timeout:  serialReadTimeout,
	})
	if err != nil {
		return rfiderrors.Wrap(rfiderrors.TransportConfig, err, "open serial port "+t.cfg.PortName)
	}

	t.port = port
	t.status = Connected
	t.stopRead = make(chan struct{})
	t.readBuf = make(chan []byte, 64)
	go t.readLoop()
	return nil
}

// readLoop continuously reads from the serial port into small chunks,
// queuing them for Recv and maintaining an available-bytes counter the
// multiplexer's polling pass consults. This stands in for the
// underlying driver's in_waiting counter, which Go's serial library
// does not expose directly.
func (t *serialTransport) readLoop() {
	chunk := make([]byte, 256)
	for {
		select {
		case <-t.stopRead:
			return
		default:
		}

		n, err := t.port.Read(chunk)
		if err == goserial.ErrTimeout {
			continue
		}
		if err != nil {
			return
		}
		if n == 0 {
			continue
		}
		buf := make([]byte, n)
		copy(buf, chunk[:n])
		atomic.AddInt32(&t.available, int32(n))
		select {
		case t.readBuf <- buf:
		case <-t.stopRead:
			return
		}
	}
}

// BytesAvailable reports how many unread bytes the background reader
// has queued, the signal the multiplexer's serial-coalescing pass
// polls per spec.md §4.E step 3.
func (t *serialTransport) BytesAvailable() int {
	return int(atomic.LoadInt32(&t.available))
}

func (t *serialTransport) Send(b []byte) error {
	t.mu.Lock()
	port := t.port
	t.mu.Unlock()
	if port == nil {
		return rfiderrors.ErrNotConnected
	}
	if _, err := port.Write(b); err != nil {
		return rfiderrors.Wrap(rfiderrors.TransportIO, err, "serial write")
	}
	return nil
}

// Recv copies queued bytes into buf. A chunk larger than buf is only
// partially copied; the unread remainder is kept in leftover and served
// first on the next call, so a small caller buffer never loses bytes
// and desyncs the frame scanner.
func (t *serialTransport) Recv(buf []byte) (int, error) {
	if len(t.leftover) > 0 {
		n := copy(buf, t.leftover)
		t.leftover = t.leftover[n:]
		atomic.AddInt32(&t.available, -int32(n))
		return n, nil
	}

	select {
	case chunk := <-t.readBuf:
		n := copy(buf, chunk)
		if n < len(chunk) {
			t.leftover = chunk[n:]
		}
		atomic.AddInt32(&t.available, -int32(n))
		return n, nil
	default:
		return 0, nil
	}
}

func (t *serialTransport) Release() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.port == nil {
		return nil
	}
	close(t.stopRead)
	err := t.port.Close()
	t.port = nil
	t.status = Disconnected
	if err != nil {
		return rfiderrors.Wrap(rfiderrors.TransportIO, err, "serial close")
	}
	return nil
}

func (t *serialTransport) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}
