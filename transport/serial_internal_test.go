package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// White-box: serialTransport.Acquire requires a real serial port, so
// these drive Recv's buffering directly against a hand-built instance.

func newTestSerialTransport() *serialTransport {
	return &serialTransport{
		status:  Connected,
		readBuf: make(chan []byte, 4),
	}
}

func TestSerialRecvReturnsWholeChunkWhenItFits(t *testing.T) {
	tr := newTestSerialTransport()
	tr.readBuf <- []byte{0x01, 0x02, 0x03}
	tr.available = 3

	buf := make([]byte, 8)
	n, err := tr.Recv(buf)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []byte{0x01, 0x02, 0x03}, buf[:n])
	assert.Equal(t, int32(0), tr.available)
	assert.Empty(t, tr.leftover)
}

func TestSerialRecvRequeuesUnreadRemainder(t *testing.T) {
	tr := newTestSerialTransport()
	tr.readBuf <- []byte{0x01, 0x02, 0x03, 0x04, 0x05}
	tr.available = 5

	buf := make([]byte, 2)
	n, err := tr.Recv(buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []byte{0x01, 0x02}, buf[:n])
	assert.Equal(t, []byte{0x03, 0x04, 0x05}, tr.leftover)
	assert.Equal(t, int32(3), tr.available)

	// The next Recv drains leftover before pulling a new chunk off
	// readBuf, so no byte of the original chunk is ever dropped.
	buf2 := make([]byte, 2)
	n, err = tr.Recv(buf2)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []byte{0x03, 0x04}, buf2[:n])
	assert.Equal(t, []byte{0x05}, tr.leftover)
	assert.Equal(t, int32(1), tr.available)

	buf3 := make([]byte, 4)
	n, err = tr.Recv(buf3)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, byte(0x05), buf3[0])
	assert.Empty(t, tr.leftover)
	assert.Equal(t, int32(0), tr.available)
}

func TestSerialRecvReturnsZeroWhenNothingQueued(t *testing.T) {
	tr := newTestSerialTransport()
	n, err := tr.Recv(make([]byte, 4))
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
