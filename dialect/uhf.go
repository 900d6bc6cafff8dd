package dialect

import "github.com/pkg/errors"

// uhfHeader is the 'R' 'F' magic shared by the UHF and M dialects.
var uhfHeader = [2]byte{'R', 'F'}

// uhfCodec implements Codec for the TLV-structured "UHF" dialect:
// 'R' 'F' [TYPE] [ADDR_HI] [ADDR_LO] [CMD] [LEN_HI] [LEN_LO] [payload...]
// [CKSUM], LEN counting the payload length alone, checksum the XOR rule
// over the header through the last payload byte.
type uhfCodec struct{}

// NewUHF returns a Codec for the UHF dialect.
func NewUHF() Codec { return uhfCodec{} }

func (uhfCodec) Kind() Kind { return UHF }

func (uhfCodec) BuildHeader(buf []byte, cmd byte, _ ReaderID) (int, error) {
	if len(buf) < 8 {
		return 0, errors.New("dialect: send buffer too small for uhf header")
	}
	buf[0], buf[1] = uhfHeader[0], uhfHeader[1]
	buf[2] = byte(DirectionCommand)
	buf[3] = 0 // ADDR_HI
	buf[4] = 0 // ADDR_LO
	buf[5] = cmd
	buf[6] = 0 // LEN_HI placeholder
	buf[7] = 0 // LEN_LO placeholder
	return 8, nil
}

func (uhfCodec) Finalize(buf []byte, cursor int, body []byte) (int, error) {
	total := cursor + len(body) + 1
	if total > MaxSendBuffer {
		return 0, errors.Errorf("dialect: uhf frame of %d bytes exceeds %d-byte send buffer", total, MaxSendBuffer)
	}
	copy(buf[cursor:], body)
	cursor += len(body)

	buf[6] = byte(len(body) >> 8)
	buf[7] = byte(len(body))

	cksum := xorChecksum(buf, 0, cursor)
	buf[cursor] = cksum
	return cursor + 1, nil
}

func (uhfCodec) Scan(buf []byte, n int) ([]Frame, int) {
	return scan(buf, n, uhfMatcher{})
}

type uhfMatcher struct{}

func (uhfMatcher) minEnvelope() int { return 9 }

func (uhfMatcher) matchStart(buf []byte, pos, remaining int) bool {
	if remaining < 2 {
		return false
	}
	return buf[pos] == uhfHeader[0] && buf[pos+1] == uhfHeader[1]
}

func (uhfMatcher) frameLength(buf []byte, pos int) (int, bool) {
	payloadLen := int(buf[pos+6])<<8 | int(buf[pos+7])
	total := 8 + payloadLen + 1
	if total > MaxRecvBuffer {
		return 0, false
	}
	return total, true
}

func (uhfMatcher) checksumIndex(length int) int { return length - 1 }

func (uhfMatcher) checksum(buf []byte, pos, n int) byte {
	return xorChecksum(buf, pos, n)
}

func (uhfMatcher) commandIndex() int { return 5 }

func (uhfMatcher) payloadRange(length int) (int, int) {
	return 8, length - 1
}

func (uhfMatcher) makeFrame(buf []byte, pos int, f Frame) Frame {
	f.Direction = FrameDirection(buf[pos+2])
	return f
}
