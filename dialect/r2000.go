package dialect

import "github.com/pkg/errors"

// R2000 dialect start tokens: 0xAA frames a command/response, 0xBB
// frames certain notification traffic. Both share one frame layout.
const (
	r2000StartPrimary   byte = 0xAA
	r2000StartSecondary byte = 0xBB
)

// r2000Codec implements Codec for the header-framed "R2000" dialect:
// [START][LEN_HI][LEN_LO][RID_HI][RID_LO][CMD][payload...][CKSUM].
//
// The original implementation read only the low length byte, silently
// truncating any response whose payload made the frame exceed 255
// bytes (see DESIGN.md). This codec reads the full 16-bit big-endian
// length and bounds it against MaxRecvBuffer instead.
type r2000Codec struct{}

// NewR2000 returns a Codec for the R2000 dialect.
func NewR2000() Codec { return r2000Codec{} }

func (r2000Codec) Kind() Kind { return R2000 }

func (r2000Codec) BuildHeader(buf []byte, cmd byte, readerID ReaderID) (int, error) {
	if len(buf) < 6 {
		return 0, errors.New("dialect: send buffer too small for r2000 header")
	}
	buf[0] = r2000StartPrimary
	buf[1] = 0 // LEN_HI placeholder
	buf[2] = 0 // LEN_LO placeholder
	buf[3] = readerID[0]
	buf[4] = readerID[1]
	buf[5] = cmd
	return 6, nil
}

func (r2000Codec) Finalize(buf []byte, cursor int, body []byte) (int, error) {
	total := cursor + len(body) + 1
	if total > MaxSendBuffer {
		return 0, errors.Errorf("dialect: r2000 frame of %d bytes exceeds %d-byte send buffer", total, MaxSendBuffer)
	}
	copy(buf[cursor:], body)
	cursor += len(body)

	// LEN counts from byte index 2 (LEN_LO itself) through the last
	// payload byte inclusive: LEN_LO+RID_HI+RID_LO+CMD (4 bytes fixed)
	// plus the payload already written.
	length := 4 + len(body)
	buf[1] = byte(length >> 8)
	buf[2] = byte(length)

	cksum := negateSumChecksum(buf, 0, cursor)
	buf[cursor] = cksum
	return cursor + 1, nil
}

func (r2000Codec) Scan(buf []byte, n int) ([]Frame, int) {
	return scan(buf, n, r2000Matcher{})
}

type r2000Matcher struct{}

func (r2000Matcher) minEnvelope() int { return 7 }

func (r2000Matcher) matchStart(buf []byte, pos, remaining int) bool {
	if remaining < 1 {
		return false
	}
	return buf[pos] == r2000StartPrimary || buf[pos] == r2000StartSecondary
}

func (r2000Matcher) frameLength(buf []byte, pos int) (int, bool) {
	lengthField := int(buf[pos+1])<<8 | int(buf[pos+2])
	if lengthField < 4 { // must cover LEN_LO, RID_HI, RID_LO, CMD
		return 0, false
	}
	// total frame length = START(1) + LEN_HI(1) + lengthField bytes
	// (LEN_LO..last-payload-byte) + CKSUM(1).
	total := 2 + lengthField + 1
	if total > MaxRecvBuffer {
		return 0, false
	}
	return total, true
}

func (r2000Matcher) checksumIndex(length int) int { return length - 1 }

func (r2000Matcher) checksum(buf []byte, pos, n int) byte {
	return negateSumChecksum(buf, pos, n)
}

func (r2000Matcher) commandIndex() int { return 5 }

func (r2000Matcher) payloadRange(length int) (int, int) {
	return 6, length - 1
}

func (r2000Matcher) makeFrame(_ []byte, _ int, f Frame) Frame { return f }

// R2000FrameReaderID extracts the two-byte reader address from a scanned R2000
// frame's enclosing buffer at the frame's offset.
func R2000FrameReaderID(buf []byte, offset int) ReaderID {
	return ReaderID{buf[offset+3], buf[offset+4]}
}
