package dialect

// matcher describes one dialect's header layout and checksum rule to the
// shared scan loop below. All offsets are relative to pos, the candidate
// frame's first byte.
type matcher interface {
	// minEnvelope is the smallest possible complete frame, in bytes.
	minEnvelope() int

	// matchStart reports whether a frame could begin at buf[pos],
	// given that at least remaining bytes follow pos.
	matchStart(buf []byte, pos, remaining int) bool

	// frameLength reads the declared length field(s) at pos and
	// returns the full frame length (header through checksum,
	// inclusive) they imply, and whether that length is itself
	// plausible (within the dialect's bound). It does not require the
	// full frame to be present in buf yet.
	frameLength(buf []byte, pos int) (length int, lengthValid bool)

	// checksumIndex returns the offset of the checksum byte within a
	// frame of the given total length, relative to pos.
	checksumIndex(length int) int

	// checksum computes the expected checksum over buf[pos:pos+n]
	// where n == checksumIndex(length), i.e. every byte preceding the
	// checksum byte itself.
	checksum(buf []byte, pos, n int) byte

	// commandIndex returns the command byte's offset relative to pos.
	commandIndex() int

	// payloadRange returns the payload's [start,end) offsets relative
	// to pos, given the frame's total length.
	payloadRange(length int) (start, end int)

	// makeFrame lets a dialect enrich the generic Frame (e.g. UHF/M
	// attach a Direction) before it's appended to the result.
	makeFrame(buf []byte, pos int, f Frame) Frame
}

// scan implements spec §4.B's shared scan algorithm: advance byte by
// byte until a start token is found; read the declared length; if the
// frame isn't fully present yet, stop without consuming the start token
// (truncation tolerance); otherwise verify the checksum, emitting the
// frame and skipping past it on success, or advancing a single byte on
// mismatch (corruption resynchronization).
func scan(buf []byte, n int, m matcher) (frames []Frame, consumed int) {
	pos := 0
	for pos+m.minEnvelope() <= n {
		remaining := n - pos
		if !m.matchStart(buf, pos, remaining) {
			pos++
			continue
		}

		length, ok := m.frameLength(buf, pos)
		if !ok {
			pos++
			continue
		}

		if pos+length > n {
			// Not fully received yet; wait for more bytes without
			// skipping past this candidate start token.
			break
		}

		checksumOff := m.checksumIndex(length)
		want := buf[pos+checksumOff]
		got := m.checksum(buf, pos, checksumOff)
		if got != want {
			pos++
			continue
		}

		start, end := m.payloadRange(length)
		payload := make([]byte, end-start)
		copy(payload, buf[pos+start:pos+end])

		f := Frame{
			Offset:  pos,
			Command: buf[pos+m.commandIndex()],
			Payload: payload,
		}
		frames = append(frames, m.makeFrame(buf, pos, f))
		pos += length
	}
	return frames, pos
}

// negateSumChecksum computes the (~sum(bytes) + 1) & 0xFF rule shared by
// the General, R2000 and M dialects.
func negateSumChecksum(buf []byte, pos, n int) byte {
	var sum byte
	for i := 0; i < n; i++ {
		sum += buf[pos+i]
	}
	return ^sum + 1
}

// xorChecksum computes the UHF dialect's XOR-of-bytes checksum rule.
func xorChecksum(buf []byte, pos, n int) byte {
	var x byte
	for i := 0; i < n; i++ {
		x ^= buf[pos+i]
	}
	return x
}
