package transport_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uhfreader/sdk/transport"
)

func TestFakeTransportSendRecv(t *testing.T) {
	f := transport.NewFake()
	require.NoError(t, f.Acquire())
	assert.Equal(t, transport.Connected, f.Status())

	require.NoError(t, f.Send([]byte{0x01, 0x02}))
	assert.Equal(t, [][]byte{{0x01, 0x02}}, f.Sent())

	f.Deliver([]byte{0xAA, 0xBB, 0xCC})
	buf := make([]byte, 2)
	n, err := f.Recv(buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []byte{0xAA, 0xBB}, buf[:n])

	n, err = f.Recv(buf)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []byte{0xCC}, buf[:n])

	n, err = f.Recv(buf)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestConfigKeyDiffersByScheme(t *testing.T) {
	serial := transport.Config{ConnectType: transport.ConnectSerial, PortName: "/dev/ttyUSB0"}
	udp := transport.Config{ConnectType: transport.ConnectUDP, RemoteAddr: "10.0.0.5", RemotePort: 9000}
	tcp := transport.Config{ConnectType: transport.ConnectTCPClient, RemoteAddr: "10.0.0.5", RemotePort: 9000}

	assert.Equal(t, "serial:/dev/ttyUSB0", serial.Key())
	assert.Equal(t, "udp:10.0.0.5:9000", udp.Key())
	assert.Equal(t, "tcp:10.0.0.5:9000", tcp.Key())
	assert.NotEqual(t, udp.Key(), tcp.Key())
}

func TestNewRejectsTCPServerConnectType(t *testing.T) {
	_, err := transport.New(transport.Config{ConnectType: transport.ConnectTCPServer})
	assert.Error(t, err)
}
