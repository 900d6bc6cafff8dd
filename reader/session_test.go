package reader_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uhfreader/sdk/dialect"
	"github.com/uhfreader/sdk/reader"
	"github.com/uhfreader/sdk/rfiderrors"
	"github.com/uhfreader/sdk/tlv"
	"github.com/uhfreader/sdk/transport"
)

func connectedSession(t *testing.T, codec dialect.Codec) (*reader.Session, *transport.Fake) {
	t.Helper()
	s := reader.NewSession(reader.Config{Dialect: codec.Kind()}, codec)
	fake := transport.NewFake()
	require.NoError(t, s.BindTransport(context.Background(), fake, "fake:0"))
	return s, fake
}

func TestCommandsFailBeforeConnect(t *testing.T) {
	s := reader.NewSession(reader.Config{}, dialect.NewGeneral())
	err := s.Reset(context.Background())
	assert.True(t, rfiderrors.Is(err, rfiderrors.NotConnected))
}

func TestGeneralResetSendsResetFrame(t *testing.T) {
	s, fake := connectedSession(t, dialect.NewGeneral())
	require.NoError(t, s.Reset(context.Background()))

	sent := fake.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, []byte{0xA0, 0x02, 0x65, 0xF9}, sent[0])
}

func TestGeneralInventoryOnceSendsIdentifyTagFrame(t *testing.T) {
	s, fake := connectedSession(t, dialect.NewGeneral())
	require.NoError(t, s.InventoryOnce(context.Background()))

	sent := fake.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, byte(0x82), sent[0][2]) // RFID_CMD_IDENTIFY_TAG
}

func TestR2000InventoryOnceIsUnsupported(t *testing.T) {
	s, _ := connectedSession(t, dialect.NewR2000())
	err := s.InventoryOnce(context.Background())
	assert.True(t, rfiderrors.Is(err, rfiderrors.Unsupported))
}

func TestR2000ReadTagBlockIsUnsupported(t *testing.T) {
	s, _ := connectedSession(t, dialect.NewR2000())
	err := s.ReadTagBlock(context.Background(), reader.BankEPC, 0, 4)
	assert.True(t, rfiderrors.Is(err, rfiderrors.Unsupported))
}

func TestGeneralHandleRecvDispatchesTagNotification(t *testing.T) {
	s, fake := connectedSession(t, dialect.NewGeneral())

	var gotKey string
	var gotOffset int
	s.SetCallback(&reader.CallbackSet{
		NotifyRecvTags: func(key string, frame []byte, offset int) {
			gotKey, gotOffset = key, offset
		},
	})

	// General notification frame: START_NOTIFY=0xE0, len=2, cmd=0xFF
	// (CMD_NOTIFY_TAG), checksum = (~(0xE0+0x02+0xFF)+1)&0xFF.
	sum := 0xE0 + 0x02 + 0xFF
	cksum := byte((-sum) & 0xFF)
	fake.Deliver([]byte{0xE0, 0x02, 0xFF, cksum})

	require.NoError(t, s.HandleRecv(context.Background()))
	assert.Equal(t, "fake:0", gotKey)
	assert.Equal(t, 0, gotOffset)
}

func TestGeneralHandleRecvDropsUnknownCommandSilently(t *testing.T) {
	s, fake := connectedSession(t, dialect.NewGeneral())

	called := false
	s.SetCallback(&reader.CallbackSet{
		NotifyRecvTags: func(string, []byte, int) { called = true },
	})

	sum := 0xE0 + 0x02 + 0x33
	cksum := byte((-sum) & 0xFF)
	fake.Deliver([]byte{0xE0, 0x02, 0x33, cksum})

	require.NoError(t, s.HandleRecv(context.Background()))
	assert.False(t, called)
}

func TestHandleRecvFaultsSessionOnTransportError(t *testing.T) {
	s, fake := connectedSession(t, dialect.NewGeneral())
	fake.SetRecvErr(assert.AnError)

	err := s.HandleRecv(context.Background())
	assert.Error(t, err)
	assert.Equal(t, reader.Faulted, s.State())

	// A faulted session refuses further commands.
	err = s.Reset(context.Background())
	assert.True(t, rfiderrors.Is(err, rfiderrors.NotConnected))
}

func TestUHFResetSendsResetCommand(t *testing.T) {
	s, fake := connectedSession(t, dialect.NewUHF())
	require.NoError(t, s.Reset(context.Background()))

	sent := fake.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, byte('R'), sent[0][0])
	assert.Equal(t, byte('F'), sent[0][1])
	assert.Equal(t, byte(0x01), sent[0][5]) // CMD byte: RESET
}

func TestUHFHandleRecvDispatchesNotificationTags(t *testing.T) {
	codec := dialect.NewUHF()
	s, fake := connectedSession(t, codec)

	var gotPayload []byte
	s.SetCallback(&reader.CallbackSet{
		NotifyRecvTags: func(_ string, frame []byte, _ int) { gotPayload = frame },
	})

	epc := tlv.NewEPC([]byte{0x11, 0x22})
	tagBody, err := tlv.SerializeAll([]tlv.TLV{tlv.Tag(epc)})
	require.NoError(t, err)

	buf := make([]byte, dialect.MaxSendBuffer)
	cursor, err := codec.BuildHeader(buf, 0x21, dialect.ReaderID{}) // START_INVENTORY
	require.NoError(t, err)
	buf[2] = byte(dialect.DirectionNotification)
	n, err := codec.Finalize(buf, cursor, tagBody)
	require.NoError(t, err)

	fake.Deliver(buf[:n])
	require.NoError(t, s.HandleRecv(context.Background()))
	assert.Equal(t, tagBody, gotPayload)
}

func TestWriteTagBlockRejectsShortData(t *testing.T) {
	s, _ := connectedSession(t, dialect.NewUHF())
	err := s.WriteTagBlock(context.Background(), reader.BankUser, 0, 4, []byte{0x01, 0x02}, 0)
	assert.Error(t, err)
}

func TestGeneralQueryParamSendsAndDispatchesAck(t *testing.T) {
	s, fake := connectedSession(t, dialect.NewGeneral())
	require.NoError(t, s.QueryParam(context.Background(), 0x10, 4))

	sent := fake.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, byte(0x63), sent[0][2]) // RFID_CMD_QUERY_MUTI_PARAM

	var gotStatus byte
	s.SetCallback(&reader.CallbackSet{
		NotifyQueryMutiParam: func(_ string, status byte, _ []byte) { gotStatus = status },
	})
	sum := 0xE4 + 0x03 + 0x63 + 0x00
	cksum := byte((-sum) & 0xFF)
	fake.Deliver([]byte{0xE4, 0x03, 0x63, 0x00, cksum})
	require.NoError(t, s.HandleRecv(context.Background()))
	assert.Equal(t, byte(0x00), gotStatus)
}

func TestR2000QueryParamIsUnsupported(t *testing.T) {
	s, _ := connectedSession(t, dialect.NewR2000())
	err := s.QueryParam(context.Background(), 0x10, 4)
	assert.True(t, rfiderrors.Is(err, rfiderrors.Unsupported))
}

func TestSetParamRejectsEmptyParams(t *testing.T) {
	s, _ := connectedSession(t, dialect.NewGeneral())
	err := s.SetParam(context.Background(), 0x10, nil)
	assert.Error(t, err)
}

func TestUHFSetParamSendsConfigCommand(t *testing.T) {
	s, fake := connectedSession(t, dialect.NewUHF())
	require.NoError(t, s.SetParam(context.Background(), 0x01, []byte{0xAA}))

	sent := fake.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, byte(0x12), sent[0][5]) // SET_CONFIG
}

func TestRelayOperationOnlySupportedByMDialect(t *testing.T) {
	ctx := context.Background()
	generalSession, _ := connectedSession(t, dialect.NewGeneral())
	assert.True(t, rfiderrors.Is(generalSession.RelayOperation(ctx, 0x03, 1, 5), rfiderrors.Unsupported))

	mSession, fake := connectedSession(t, dialect.NewM())
	require.NoError(t, mSession.RelayOperation(ctx, 0x03, 1, 5))
	sent := fake.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, byte(reader.RelayTLVType), sent[0][5])
}
