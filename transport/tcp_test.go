package transport_test

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uhfreader/sdk/transport"
)

func listenTCPLoopback(t *testing.T) net.Listener {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })
	return ln
}

func TestTCPSendRecvRoundTrip(t *testing.T) {
	ln := listenTCPLoopback(t)
	addr := ln.Addr().(*net.TCPAddr)

	accepted := make(chan net.Conn, 1)
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			accepted <- conn
		}
	}()

	tr := transport.NewTCP(transport.Config{
		ConnectType: transport.ConnectTCPClient,
		RemoteAddr:  "127.0.0.1",
		RemotePort:  addr.Port,
	})
	require.NoError(t, tr.Acquire())
	defer tr.Release()

	server := <-accepted
	defer server.Close()

	_, err := server.Write([]byte{0xDE, 0xAD, 0xBE, 0xEF})
	require.NoError(t, err)

	var buf [16]byte
	var n int
	require.Eventually(t, func() bool {
		got, err := tr.Recv(buf[:])
		if err != nil {
			return false
		}
		n = got
		return n > 0
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []byte{0xDE, 0xAD, 0xBE, 0xEF}, buf[:n])

	require.NoError(t, tr.Send([]byte{0x01, 0x02}))
	var serverBuf [2]byte
	_, err = server.Read(serverBuf[:])
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02}, serverBuf[:])
}

func TestTCPRecvWithNoDataReturnsZeroNil(t *testing.T) {
	ln := listenTCPLoopback(t)
	addr := ln.Addr().(*net.TCPAddr)

	go func() {
		conn, err := ln.Accept()
		if err == nil {
			defer conn.Close()
			time.Sleep(50 * time.Millisecond)
		}
	}()

	tr := transport.NewTCP(transport.Config{
		ConnectType: transport.ConnectTCPClient,
		RemoteAddr:  "127.0.0.1",
		RemotePort:  addr.Port,
	})
	require.NoError(t, tr.Acquire())
	defer tr.Release()

	var buf [16]byte
	n, err := tr.Recv(buf[:])
	assert.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestTCPSendBeforeAcquireFails(t *testing.T) {
	tr := transport.NewTCP(transport.Config{ConnectType: transport.ConnectTCPClient, RemoteAddr: "127.0.0.1", RemotePort: 1})
	assert.Error(t, tr.Send([]byte{0x01}))
}

func TestTCPAcquireFailsOnUnreachablePort(t *testing.T) {
	tr := transport.NewTCP(transport.Config{
		ConnectType: transport.ConnectTCPClient,
		RemoteAddr:  "127.0.0.1",
		RemotePort:  1, // nothing listens on port 1
	})
	assert.Error(t, tr.Acquire())
}
