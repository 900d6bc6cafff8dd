package transport

import "sync"

// Fake is an in-memory Transport for tests: bytes written via Send are
// queued for the test to inspect, and bytes queued via Deliver are
// returned by Recv, letting reader/mux package tests drive a session
// without real sockets.
type Fake struct {
	mu      sync.Mutex
	status  Status
	sent    [][]byte
	pending []byte

	AcquireErr error
	SendErr    error
	RecvErr    error
}

// NewFake returns a disconnected Fake transport.
func NewFake() *Fake { return &Fake{status: Disconnected} }

func (f *Fake) Acquire() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.AcquireErr != nil {
		return f.AcquireErr
	}
	f.status = Connected
	return nil
}

func (f *Fake) Send(b []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SendErr != nil {
		return f.SendErr
	}
	cp := make([]byte, len(b))
	copy(cp, b)
	f.sent = append(f.sent, cp)
	return nil
}

func (f *Fake) Recv(buf []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.RecvErr != nil {
		return 0, f.RecvErr
	}
	if len(f.pending) == 0 {
		return 0, nil
	}
	n := copy(buf, f.pending)
	f.pending = f.pending[n:]
	return n, nil
}

func (f *Fake) Release() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = Disconnected
	return nil
}

func (f *Fake) Status() Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

// Deliver queues bytes for the next Recv call(s) to return.
func (f *Fake) Deliver(b []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending = append(f.pending, b...)
}

// SetRecvErr sets or clears the error the next Recv calls return,
// synchronized against concurrent Recv callers (a Multiplexer's
// background loop, typically) the same way Deliver is.
func (f *Fake) SetRecvErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.RecvErr = err
}

// BytesAvailable reports the number of undrained bytes queued by
// Deliver, so a Fake can stand in for a serial Transport in mux tests
// (see ByteCounter) as well as for UDP/TCP ones.
func (f *Fake) BytesAvailable() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pending)
}

// Sent returns every byte slice previously passed to Send, in order.
func (f *Fake) Sent() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]byte, len(f.sent))
	copy(out, f.sent)
	return out
}
