package tlv

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// DeviceType enumerates the friendly device-type names carried by a
// TypeDeviceType TLV, matching the DEVICE_TYPE_NAMES table in
// tlv_structures.py.
type DeviceType byte

// Recognized device types.
const (
	DeviceTypeUnknown     DeviceType = 0x00
	DeviceTypeFixedReader DeviceType = 0x01
	DeviceTypeHandheld    DeviceType = 0x02
	DeviceTypeGate        DeviceType = 0x03
	DeviceTypeDesktop     DeviceType = 0x04
)

var deviceTypeNames = map[DeviceType]string{
	DeviceTypeUnknown:     "unknown",
	DeviceTypeFixedReader: "fixed-reader",
	DeviceTypeHandheld:    "handheld",
	DeviceTypeGate:        "gate",
	DeviceTypeDesktop:     "desktop",
}

// String returns the friendly name for d, or "unknown" if unrecognized.
func (d DeviceType) String() string {
	if name, ok := deviceTypeNames[d]; ok {
		return name
	}
	return "unknown"
}

// ErrWrongType is returned by the typed accessors when called against a
// TLV whose Type field does not match.
var ErrWrongType = errors.New("tlv: unexpected type")

// errWrongLen reports a fixed-width accessor call against a TLV whose
// Value is the wrong length.
func errWrongLen(typ byte, want, got int) error {
	return errors.Errorf("tlv: type 0x%02x expects %d-byte value, got %d", typ, want, got)
}

// EPC returns t.Value, the tag's Electronic Product Code, requiring
// t.Type == TypeEPC. EPC length varies by tag population so no fixed
// width is enforced, mirroring EPCTLV.value in tlv_structures.py.
func EPC(t TLV) ([]byte, error) {
	if t.Type != TypeEPC {
		return nil, errors.Wrapf(ErrWrongType, "want EPC got 0x%02x", t.Type)
	}
	return t.Value, nil
}

// NewEPC builds an EPC TLV from raw bytes.
func NewEPC(epc []byte) TLV { return TLV{Type: TypeEPC, Value: epc} }

// RSSI returns the signed received-signal-strength indicator carried by
// a single-byte TypeRSSI TLV, matching RSSITLV.value's int8 interpretation.
func RSSI(t TLV) (int8, error) {
	if t.Type != TypeRSSI {
		return 0, errors.Wrapf(ErrWrongType, "want RSSI got 0x%02x", t.Type)
	}
	if len(t.Value) != 1 {
		return 0, errWrongLen(t.Type, 1, len(t.Value))
	}
	return int8(t.Value[0]), nil
}

// NewRSSI builds a TypeRSSI TLV from a signed dBm value.
func NewRSSI(dBm int8) TLV { return TLV{Type: TypeRSSI, Value: []byte{byte(dBm)}} }

// Time returns the Unix timestamp carried by a 4-byte big-endian
// TypeTime TLV, matching TimeTLV's struct.pack(">I", ...) encoding.
func Time(t TLV) (uint32, error) {
	if t.Type != TypeTime {
		return 0, errors.Wrapf(ErrWrongType, "want TIME got 0x%02x", t.Type)
	}
	if len(t.Value) != 4 {
		return 0, errWrongLen(t.Type, 4, len(t.Value))
	}
	return binary.BigEndian.Uint32(t.Value), nil
}

// NewTime builds a TypeTime TLV from a Unix timestamp.
func NewTime(unixSeconds uint32) TLV {
	v := make([]byte, 4)
	binary.BigEndian.PutUint32(v, unixSeconds)
	return TLV{Type: TypeTime, Value: v}
}

// TID returns the tag identifier carried by a TypeTID TLV.
func TID(t TLV) ([]byte, error) {
	if t.Type != TypeTID {
		return nil, errors.Wrapf(ErrWrongType, "want TID got 0x%02x", t.Type)
	}
	return t.Value, nil
}

// NewTID builds a TID TLV from raw bytes.
func NewTID(tid []byte) TLV { return TLV{Type: TypeTID, Value: tid} }

// Status returns the single status byte carried by a TypeStatus TLV.
func Status(t TLV) (byte, error) {
	if t.Type != TypeStatus {
		return 0, errors.Wrapf(ErrWrongType, "want STATUS got 0x%02x", t.Type)
	}
	if len(t.Value) != 1 {
		return 0, errWrongLen(t.Type, 1, len(t.Value))
	}
	return t.Value[0], nil
}

// NewStatus builds a TypeStatus TLV from a status code byte.
func NewStatus(code byte) TLV { return TLV{Type: TypeStatus, Value: []byte{code}} }

// DeviceTypeOf returns the DeviceType carried by a TypeDeviceType TLV.
func DeviceTypeOf(t TLV) (DeviceType, error) {
	if t.Type != TypeDeviceType {
		return 0, errors.Wrapf(ErrWrongType, "want DEVICE_TYPE got 0x%02x", t.Type)
	}
	if len(t.Value) != 1 {
		return 0, errWrongLen(t.Type, 1, len(t.Value))
	}
	return DeviceType(t.Value[0]), nil
}

// NewDeviceType builds a TypeDeviceType TLV.
func NewDeviceType(d DeviceType) TLV { return TLV{Type: TypeDeviceType, Value: []byte{byte(d)}} }

// Version returns the raw version string bytes carried by a
// TypeVersion TLV.
func Version(t TLV) (string, error) {
	if t.Type != TypeVersion {
		return "", errors.Wrapf(ErrWrongType, "want VERSION got 0x%02x", t.Type)
	}
	return string(t.Value), nil
}

// NewVersion builds a TypeVersion TLV from a version string.
func NewVersion(v string) TLV { return TLV{Type: TypeVersion, Value: []byte(v)} }

// NewAccessPwd and NewKillPwd build the 4-byte password TLVs used by the
// tag memory-access commands. The original accepts passwords of any
// length; we preserve that laxity since some readers zero-pad shorter
// values themselves.
func NewAccessPwd(pwd []byte) TLV { return TLV{Type: TypeAccessPwd, Value: pwd} }
func NewKillPwd(pwd []byte) TLV   { return TLV{Type: TypeKillPwd, Value: pwd} }

// Tag wraps a set of per-tag TLVs (EPC, RSSI, TIME, ...) in the
// compound TypeTag container used by inventory notifications.
func Tag(children ...TLV) TLV { return TLV{Type: TypeTag, Children: children} }
