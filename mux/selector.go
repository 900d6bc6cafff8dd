package mux

import (
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

// selector wraps a readiness poll over the small set of pollable file
// descriptors a Multiplexer tracks, the Go analog of
// transport_thread_manager.py's selectors.DefaultSelector: sessions
// register a descriptor once (in Multiplexer.Add) and each wait() call
// reports which registered keys are ready to read.
//
// unix.Poll (not syscall.Select) is used so the descriptor set isn't
// bounded by FD_SETSIZE; registrations live in a map keyed by descriptor
// rather than in a select bitset.
type selector struct {
	mu      sync.Mutex
	keyByFd map[int]string
}

func newSelector() *selector {
	return &selector{keyByFd: make(map[int]string)}
}

func (s *selector) register(fd int, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keyByFd[fd] = key
}

func (s *selector) unregister(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for fd, k := range s.keyByFd {
		if k == key {
			delete(s.keyByFd, fd)
		}
	}
}

func (s *selector) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keyByFd = make(map[int]string)
}

// wait polls every registered descriptor for read-readiness for up to
// timeout, returning the session keys that are ready. An empty registry
// simply sleeps out the timeout and returns no keys, so a Multiplexer
// with only serial sessions still ticks at the expected cadence.
func (s *selector) wait(timeout time.Duration) []string {
	s.mu.Lock()
	if len(s.keyByFd) == 0 {
		s.mu.Unlock()
		time.Sleep(timeout)
		return nil
	}
	fds := make([]unix.PollFd, 0, len(s.keyByFd))
	keys := make([]string, 0, len(s.keyByFd))
	for fd, key := range s.keyByFd {
		fds = append(fds, unix.PollFd{Fd: int32(fd), Events: unix.POLLIN})
		keys = append(keys, key)
	}
	s.mu.Unlock()

	n, err := unix.Poll(fds, int(timeout/time.Millisecond))
	if err != nil || n == 0 {
		return nil
	}

	var ready []string
	for i, pfd := range fds {
		if pfd.Revents&(unix.POLLIN|unix.POLLHUP|unix.POLLERR) != 0 {
			ready = append(ready, keys[i])
		}
	}
	return ready
}
