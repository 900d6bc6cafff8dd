package tlv_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uhfreader/sdk/tlv"
)

func TestParseSingleEPCMatchesScenarioS5(t *testing.T) {
	// 01 04 E2 80 11 22 -> one EPC TLV with value E2 80 11 22.
	data := []byte{0x01, 0x04, 0xE2, 0x80, 0x11, 0x22}

	ts, err := tlv.Parse(data, 0, len(data))
	require.NoError(t, err)
	require.Len(t, ts, 1)

	epc, err := tlv.EPC(ts[0])
	require.NoError(t, err)
	assert.Equal(t, []byte{0xE2, 0x80, 0x11, 0x22}, epc)
}

func TestSerializeParseRoundTrip(t *testing.T) {
	original := []tlv.TLV{
		tlv.NewEPC([]byte{0xE2, 0x80, 0x11, 0x22, 0x33, 0x44}),
		tlv.NewRSSI(-42),
		tlv.NewTime(1_700_000_000),
		tlv.NewStatus(0x00),
	}

	encoded, err := tlv.SerializeAll(original)
	require.NoError(t, err)

	decoded, err := tlv.Parse(encoded, 0, len(encoded))
	require.NoError(t, err)
	require.Len(t, decoded, len(original))

	epc, err := tlv.EPC(decoded[0])
	require.NoError(t, err)
	assert.Equal(t, []byte{0xE2, 0x80, 0x11, 0x22, 0x33, 0x44}, epc)

	rssi, err := tlv.RSSI(decoded[1])
	require.NoError(t, err)
	assert.Equal(t, int8(-42), rssi)

	ts, err := tlv.Time(decoded[2])
	require.NoError(t, err)
	assert.Equal(t, uint32(1_700_000_000), ts)

	status, err := tlv.Status(decoded[3])
	require.NoError(t, err)
	assert.Equal(t, byte(0x00), status)
}

func TestParseCompoundTag(t *testing.T) {
	tag := tlv.Tag(
		tlv.NewEPC([]byte{0xAA, 0xBB}),
		tlv.NewRSSI(-55),
	)

	encoded, err := tag.Serialize()
	require.NoError(t, err)

	decoded, err := tlv.Parse(encoded, 0, len(encoded))
	require.NoError(t, err)
	require.Len(t, decoded, 1)
	require.Equal(t, tlv.TypeTag, decoded[0].Type)
	require.Len(t, decoded[0].Children, 2)

	epc, err := tlv.EPC(decoded[0].Children[0])
	require.NoError(t, err)
	assert.Equal(t, []byte{0xAA, 0xBB}, epc)
}

func TestParseTruncatedTLVFails(t *testing.T) {
	// Declares a 4-byte value but only 2 bytes follow.
	data := []byte{0x01, 0x04, 0xE2, 0x80}

	_, err := tlv.Parse(data, 0, len(data))
	assert.ErrorIs(t, err, tlv.ErrTruncated)
}

func TestParseMissingHeaderFails(t *testing.T) {
	data := []byte{0x01}

	_, err := tlv.Parse(data, 0, len(data))
	assert.ErrorIs(t, err, tlv.ErrTruncated)
}

func TestParseEmptyWindowReturnsNoTLVs(t *testing.T) {
	ts, err := tlv.Parse([]byte{}, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, ts)
}

func TestParseMultipleTopLevelTLVsAtOffset(t *testing.T) {
	data := []byte{
		0xFF, 0xFF, // leading noise outside the window
		0x05, 0x01, 0x9A, // RSSI = -102
		0x06, 0x04, 0x00, 0x00, 0x00, 0x01, // TIME = 1
	}

	ts, err := tlv.Parse(data, 2, len(data)-2)
	require.NoError(t, err)
	require.Len(t, ts, 2)

	rssi, err := tlv.RSSI(ts[0])
	require.NoError(t, err)
	assert.Equal(t, int8(-102), rssi)

	ti, err := tlv.Time(ts[1])
	require.NoError(t, err)
	assert.Equal(t, uint32(1), ti)
}

func TestWrongTypeAccessorFails(t *testing.T) {
	rssiTLV := tlv.NewRSSI(1)
	_, err := tlv.EPC(rssiTLV)
	assert.ErrorIs(t, err, tlv.ErrWrongType)
}

func TestFindReturnsFirstMatch(t *testing.T) {
	ts := []tlv.TLV{tlv.NewStatus(0x01), tlv.NewStatus(0x02)}
	found, ok := tlv.Find(ts, tlv.TypeStatus)
	require.True(t, ok)
	status, err := tlv.Status(found)
	require.NoError(t, err)
	assert.Equal(t, byte(0x01), status)

	_, ok = tlv.Find(ts, tlv.TypeEPC)
	assert.False(t, ok)
}

func TestDeviceTypeString(t *testing.T) {
	assert.Equal(t, "handheld", tlv.DeviceTypeHandheld.String())
	assert.Equal(t, "unknown", tlv.DeviceType(0x99).String())
}

func TestSerializeValueTooLargeFails(t *testing.T) {
	big := make([]byte, 256)
	_, err := tlv.TLV{Type: tlv.TypeEPC, Value: big}.Serialize()
	assert.ErrorIs(t, err, tlv.ErrValueTooLarge)
}
