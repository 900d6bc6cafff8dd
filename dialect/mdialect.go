package dialect

import "github.com/pkg/errors"

// mCodec implements Codec for the "M" dialect: the UHF header shape
// ('R' 'F' [TYPE] [ADDR_HI] [ADDR_LO] [CMD] [LEN_HI] [LEN_LO] [payload...]
// [CKSUM]) but with the General/R2000 negate-sum checksum, and LEN
// counting from LEN_HI itself through the last payload byte inclusive
// (rather than UHF's payload-length-only LEN).
//
// The original implementation's relay/write operations sometimes wrote
// additional payload bytes after the length field had already been
// patched, producing frames with a stale length. Finalize here is the
// only place the length is written, and it is always called after every
// payload byte has been appended to body — callers cannot reproduce
// that bug because Finalize takes the complete body in one call.
type mCodec struct{}

// NewM returns a Codec for the M dialect.
func NewM() Codec { return mCodec{} }

func (mCodec) Kind() Kind { return M }

func (mCodec) BuildHeader(buf []byte, cmd byte, _ ReaderID) (int, error) {
	if len(buf) < 8 {
		return 0, errors.New("dialect: send buffer too small for m-dialect header")
	}
	buf[0], buf[1] = uhfHeader[0], uhfHeader[1]
	buf[2] = byte(DirectionCommand)
	buf[3] = 0
	buf[4] = 0
	buf[5] = cmd
	buf[6] = 0 // LEN_HI placeholder
	buf[7] = 0 // LEN_LO placeholder
	return 8, nil
}

func (mCodec) Finalize(buf []byte, cursor int, body []byte) (int, error) {
	total := cursor + len(body) + 1
	if total > MaxSendBuffer {
		return 0, errors.Errorf("dialect: m-dialect frame of %d bytes exceeds %d-byte send buffer", total, MaxSendBuffer)
	}
	copy(buf[cursor:], body)
	cursor += len(body)

	// LEN counts from LEN_HI (index 6) through the last payload byte
	// inclusive: LEN_HI+LEN_LO (2) plus the payload already written.
	length := 2 + len(body)
	buf[6] = byte(length >> 8)
	buf[7] = byte(length)

	cksum := negateSumChecksum(buf, 0, cursor)
	buf[cursor] = cksum
	return cursor + 1, nil
}

func (mCodec) Scan(buf []byte, n int) ([]Frame, int) {
	return scan(buf, n, mMatcher{})
}

type mMatcher struct{}

func (mMatcher) minEnvelope() int { return 9 }

func (mMatcher) matchStart(buf []byte, pos, remaining int) bool {
	if remaining < 2 {
		return false
	}
	return buf[pos] == uhfHeader[0] && buf[pos+1] == uhfHeader[1]
}

func (mMatcher) frameLength(buf []byte, pos int) (int, bool) {
	lengthField := int(buf[pos+6])<<8 | int(buf[pos+7])
	if lengthField < 2 { // must cover LEN_HI, LEN_LO themselves
		return 0, false
	}
	// total = header-up-to-LEN_HI(6) + lengthField (LEN_HI..payload) + CKSUM(1)
	total := 6 + lengthField + 1
	if total > MaxRecvBuffer {
		return 0, false
	}
	return total, true
}

func (mMatcher) checksumIndex(length int) int { return length - 1 }

func (mMatcher) checksum(buf []byte, pos, n int) byte {
	return negateSumChecksum(buf, pos, n)
}

func (mMatcher) commandIndex() int { return 5 }

func (mMatcher) payloadRange(length int) (int, int) {
	return 8, length - 1
}

func (mMatcher) makeFrame(buf []byte, pos int, f Frame) Frame {
	f.Direction = FrameDirection(buf[pos+2])
	return f
}

// RelayTLVType is the 0x4C compound TLV type the M dialect's
// relay_operation builds: one entry of [id][op][time] per set bit in
// the caller's relay mask.
const RelayTLVType byte = 0x4C
