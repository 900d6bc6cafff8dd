package dialect

import "github.com/pkg/errors"

// General dialect start tokens: commands are sent with 0xA0; the reader
// echoes responses with 0xE4 and emits unsolicited notifications with
// 0xE0. All three share one frame layout and checksum rule.
const (
	generalStartCommand      byte = 0xA0
	generalStartResponse     byte = 0xE4
	generalStartNotification byte = 0xE0
)

// generalCodec implements Codec for the byte-oriented "GeneralReader"
// dialect: [START][LEN][CMD][payload...][CKSUM], LEN counting CMD
// through CKSUM inclusive, checksum the negate-sum rule over
// START..last-payload-byte.
type generalCodec struct{}

// NewGeneral returns a Codec for the General dialect.
func NewGeneral() Codec { return generalCodec{} }

func (generalCodec) Kind() Kind { return General }

func (generalCodec) BuildHeader(buf []byte, cmd byte, _ ReaderID) (int, error) {
	if len(buf) < 3 {
		return 0, errors.New("dialect: send buffer too small for general header")
	}
	buf[0] = generalStartCommand
	buf[1] = 0 // length placeholder, patched in Finalize
	buf[2] = cmd
	return 3, nil
}

func (generalCodec) Finalize(buf []byte, cursor int, body []byte) (int, error) {
	total := cursor + len(body) + 1 // +1 for checksum
	if total > MaxSendBuffer {
		return 0, errors.Errorf("dialect: general frame of %d bytes exceeds %d-byte send buffer", total, MaxSendBuffer)
	}
	copy(buf[cursor:], body)
	cursor += len(body)

	// LEN counts CMD through CKSUM inclusive: (cursor-2) payload+CMD
	// bytes already written after START+LEN, plus the checksum byte
	// still to come.
	length := (cursor - 2) + 1
	buf[1] = byte(length)

	cksum := negateSumChecksum(buf, 0, cursor)
	buf[cursor] = cksum
	return cursor + 1, nil
}

func (generalCodec) Scan(buf []byte, n int) ([]Frame, int) {
	return scan(buf, n, generalMatcher{})
}

type generalMatcher struct{}

func (generalMatcher) minEnvelope() int { return 4 }

func (generalMatcher) matchStart(buf []byte, pos, remaining int) bool {
	if remaining < 1 {
		return false
	}
	switch buf[pos] {
	case generalStartCommand, generalStartResponse, generalStartNotification:
		return true
	default:
		return false
	}
}

func (generalMatcher) frameLength(buf []byte, pos int) (int, bool) {
	lengthField := int(buf[pos+1])
	if lengthField < 2 { // must cover at least CMD + CKSUM
		return 0, false
	}
	return 2 + lengthField, true
}

func (generalMatcher) checksumIndex(length int) int { return length - 1 }

func (generalMatcher) checksum(buf []byte, pos, n int) byte {
	return negateSumChecksum(buf, pos, n)
}

func (generalMatcher) commandIndex() int { return 2 }

func (generalMatcher) payloadRange(length int) (int, int) {
	return 3, length - 1
}

func (generalMatcher) makeFrame(_ []byte, _ int, f Frame) Frame { return f }
