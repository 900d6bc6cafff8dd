// Package tlv implements the Type-Length-Value codec used by the UHF and
// M dialects: a flat [type:1][length:1][value...] encoding with a small
// set of registered types that nest (TypeTag) and a registry of typed
// accessors for the leaf types (EPC, RSSI, TIME, TID, STATUS,
// DEVICE_TYPE), grounded in tlv_structures.py's per-type TLV subclasses
// and protocol_base.py's TLVBase.from_bytes/to_bytes.
package tlv

import "github.com/pkg/errors"

// Recognized TLV type codes.
const (
	TypeEPC        byte = 0x01
	TypeAccessPwd  byte = 0x02
	TypeKillPwd    byte = 0x03
	TypeTID        byte = 0x04
	TypeRSSI       byte = 0x05
	TypeTime       byte = 0x06
	TypeStatus     byte = 0x07
	TypeVersion    byte = 0x20
	TypeDeviceType byte = 0x21
	TypeTag        byte = 0x50 // compound: value is a nested TLV sequence
)

// compoundTypes lists type codes whose value is itself a TLV sequence.
// Registered once at package init, avoiding the cyclic "TLV factory
// imports its peers" problem the original module works around with
// deferred imports in from_bytes/get_error_message.
var compoundTypes = map[byte]bool{
	TypeTag: true,
}

// IsCompound reports whether t's value should be parsed as a nested TLV
// sequence rather than an opaque byte string.
func IsCompound(t byte) bool { return compoundTypes[t] }

// TLV is one Type-Length-Value element. Value holds the raw encoded
// bytes for leaf types; Children holds the parsed nested TLVs for
// compound types (Value is left nil in that case).
type TLV struct {
	Type     byte
	Value    []byte
	Children []TLV
}

// ErrValueTooLarge is returned by Serialize when a leaf TLV's value
// exceeds the single-byte length field's range.
var ErrValueTooLarge = errors.New("tlv: value exceeds 255 bytes")

// ErrTruncated is returned by Parse when the enclosing window is smaller
// than a TLV's declared length.
var ErrTruncated = errors.New("tlv: truncated TLV")

// Serialize encodes t as [type][length][value...], recursing into
// Children for compound types.
func (t TLV) Serialize() ([]byte, error) {
	if IsCompound(t.Type) {
		var value []byte
		for _, child := range t.Children {
			cb, err := child.Serialize()
			if err != nil {
				return nil, err
			}
			value = append(value, cb...)
		}
		if len(value) > 255 {
			return nil, errors.Wrapf(ErrValueTooLarge, "type 0x%02x nested length %d", t.Type, len(value))
		}
		return append([]byte{t.Type, byte(len(value))}, value...), nil
	}
	if len(t.Value) > 255 {
		return nil, errors.Wrapf(ErrValueTooLarge, "type 0x%02x length %d", t.Type, len(t.Value))
	}
	return append([]byte{t.Type, byte(len(t.Value))}, t.Value...), nil
}

// SerializeAll concatenates the serialized form of every TLV in ts, the
// shape a dialect's command payload or a Tag notification's body takes.
func SerializeAll(ts []TLV) ([]byte, error) {
	var out []byte
	for _, t := range ts {
		b, err := t.Serialize()
		if err != nil {
			return nil, err
		}
		out = append(out, b...)
	}
	return out, nil
}

// Parse reads a flat sequence of TLVs from data[offset:offset+windowLen],
// recursing into compound types. The whole window is consumed: a
// trailing partial header, or a value running past the end of the
// window, fails with ErrTruncated.
func Parse(data []byte, offset, windowLen int) ([]TLV, error) {
	end := offset + windowLen
	if end > len(data) {
		return nil, errors.Wrap(ErrTruncated, "window exceeds buffer")
	}

	var out []TLV
	pos := offset
	for pos < end {
		if pos+2 > end {
			return nil, errors.Wrap(ErrTruncated, "missing TLV header")
		}
		typ := data[pos]
		length := int(data[pos+1])
		pos += 2
		if pos+length > end {
			return nil, errors.Wrapf(ErrTruncated, "type 0x%02x declares length %d beyond window", typ, length)
		}

		t := TLV{Type: typ}
		if IsCompound(typ) {
			children, err := Parse(data, pos, length)
			if err != nil {
				return nil, err
			}
			t.Children = children
		} else {
			value := make([]byte, length)
			copy(value, data[pos:pos+length])
			t.Value = value
		}
		out = append(out, t)
		pos += length
	}
	return out, nil
}

// Find returns the first top-level TLV of the given type, if present.
func Find(ts []TLV, typ byte) (TLV, bool) {
	for _, t := range ts {
		if t.Type == typ {
			return t, true
		}
	}
	return TLV{}, false
}
