package reader

import (
	"context"
	"sync"
	"time"

	"github.com/uhfreader/sdk/dialect"
	"github.com/uhfreader/sdk/rfiderrors"
	"github.com/uhfreader/sdk/rfidtrace"
	"github.com/uhfreader/sdk/tlv"
	"github.com/uhfreader/sdk/transport"
)

// State is a Session's connection-state value.
type State int

// Recognized session states.
const (
	Disconnected State = iota
	Connected
	Faulted
)

// String returns the state's name.
func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connected:
		return "connected"
	case Faulted:
		return "faulted"
	default:
		return "unknown"
	}
}

// opCodes is the command-code table one dialect speaks: which byte value
// means RESET, START_INVENTORY and so on, and which operations the
// dialect simply does not implement. Grounded directly in each dialect
// reader's constant block (general_reader.py's RFID_CMD_*,
// r2000_reader.py's RFID_CMD_*, uhf_protocol/commands.py's CommandType).
type opCodes struct {
	reset           byte
	startInventory  byte
	stopInventory   byte
	inventoryOnce   byte
	readTagBlock    byte
	writeTagBlock   byte
	lockTag         byte
	killTag         byte
	queryParam      byte
	setParam        byte
	tagNotify       byte // General/R2000 only: dedicated notify command code
	inventoryOnceOK bool
	tagBlockOK      bool // read/write/lock/kill tag support
	paramOK         bool // query/set parameter support
}

var generalOps = opCodes{
	reset:          0x65, // RFID_CMD_RESET_DEVICE
	startInventory: 0x88, // not in the original enum; fills the stubbed-out inventory()
	stopInventory:  0xFE, // RFID_CMD_STOP_INVETORY
	inventoryOnce:  0x82, // RFID_CMD_IDENTIFY_TAG
	readTagBlock:   0x80, // RFID_CMD_READ_TAG_BLOCK
	writeTagBlock:  0x81, // RFID_CMD_WRITE_TAG_BLOCK
	lockTag:        0x87, // RFID_CMD_LOCK_TAG
	killTag:        0x86, // RFID_CMD_KILL_TAG
	// RFID_CMD_QUERY_MUTI_PARAM is what query_parameter() actually sends,
	// though handle_message's dispatch table names the unrelated
	// RFID_CMD_QUERY_SINGLE_PARAM (0x61) for the ack — a request/response
	// mismatch in the original that would leave every query ack
	// unroutable. Using one code for both send and dispatch here corrects
	// that.
	queryParam:      0x63, // RFID_CMD_QUERY_MUTI_PARAM
	setParam:        0x62, // RFID_CMD_SET_MUTI_PARAM
	tagNotify:       0xFF, // CMD_NOTIFY_TAG
	inventoryOnceOK: true,
	tagBlockOK:      true,
	paramOK:         true,
}

var r2000Ops = opCodes{
	reset:          0x65, // RFID_CMD_RESET_DEVICE
	startInventory: 0x32, // RFID_CMD_START_INVENTORY
	stopInventory:  0x31, // RFID_CMD_STOP_INVETORY
	tagNotify:      0x10, // RFID_CMD_TAG_NOTIFY
	// inventory_once, read/write/lock/kill_tag, and parameter get/set are
	// all unimplemented in the R2000 reader: every one of them prints
	// "does not support this function" and returns early.
	inventoryOnceOK: false,
	tagBlockOK:      false,
	paramOK:         false,
}

// uhfOps is shared by the UHF and M dialects: both speak
// uhf_protocol/commands.py's CommandType codes over the same 'R''F'
// header shape.
var uhfOps = opCodes{
	reset:           0x01,
	startInventory:  0x21,
	stopInventory:   0x22,
	inventoryOnce:   0x23,
	readTagBlock:    0x31,
	writeTagBlock:   0x32,
	lockTag:         0x33,
	killTag:         0x34,
	queryParam:      0x11, // GET_CONFIG
	setParam:        0x12, // SET_CONFIG
	inventoryOnceOK: true,
	tagBlockOK:      true,
	paramOK:         true,
}

func opsFor(kind dialect.Kind) opCodes {
	switch kind {
	case dialect.R2000:
		return r2000Ops
	case dialect.UHF, dialect.M:
		return uhfOps
	default:
		return generalOps
	}
}

// Session is one Transport, one dialect Codec and one application
// CallbackSet bound together: the command operations build and send
// frames, HandleRecv drains the Transport and dispatches whatever the
// codec scans out of it.
type Session struct {
	mu sync.Mutex

	cfg      Config
	codec    dialect.Codec
	ops      opCodes
	readerID dialect.ReaderID

	cb *CallbackSet

	t     transport.Transport
	key   string
	state State

	sendBuf []byte
	recvBuf []byte
	recvLen int
}

// NewSession builds a Session for the given dialect codec. Config is
// resolved against DefaultConfig; the session starts Disconnected with
// no Transport until Connect is called.
func NewSession(cfg Config, codec dialect.Codec) *Session {
	resolved := ResolveConfig(cfg)
	return &Session{
		cfg:     resolved,
		codec:   codec,
		ops:     opsFor(codec.Kind()),
		cb:      NoOpCallbacks,
		state:   Disconnected,
		sendBuf: make([]byte, resolved.SendBufferSize),
		recvBuf: make([]byte, resolved.RecvBufferSize),
	}
}

// Key returns the session's registry key, set by Connect.
func (s *Session) Key() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.key
}

// State returns the session's current connection state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Transport returns the session's underlying Transport, for the
// multiplexer to register a pollable handle against. Returns nil before
// Connect.
func (s *Session) Transport() transport.Transport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.t
}

// SetCallback replaces the dispatch target. Safe to call concurrently
// with HandleRecv: the receive loop always reads the callback set under
// the same lock.
func (s *Session) SetCallback(cb *CallbackSet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cb = withDefaults(cb)
}

// SetReaderID sets the two-byte reader address R2000 frames carry.
// Ignored by dialects that don't address a reader (General, UHF, M).
func (s *Session) SetReaderID(id dialect.ReaderID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readerID = id
}

// Connect constructs and acquires the Transport named by tcfg, and sets
// key to tcfg.Key(). On failure the session stays Disconnected. The
// rfidtrace.Trace installed on ctx, if any, observes the attempt via
// ConnectStart/ConnectDone.
func (s *Session) Connect(ctx context.Context, tcfg transport.Config) error {
	t, err := transport.New(tcfg)
	if err != nil {
		return rfiderrors.Wrap(rfiderrors.TransportConfig, err, "build transport")
	}
	return s.BindTransport(ctx, t, tcfg.Key())
}

// BindTransport acquires an already-constructed Transport and attaches
// it under key, bypassing Connect's Config-based construction. Used by
// tests (transport.Fake) and by callers that built their own Transport.
func (s *Session) BindTransport(ctx context.Context, t transport.Transport, key string) error {
	tr := rfidtrace.From(ctx)
	tr.ConnectStart(key)
	start := time.Now()
	err := t.Acquire()
	tr.ConnectDone(key, err, time.Since(start))
	if err != nil {
		return rfiderrors.Wrap(rfiderrors.TransportConfig, err, "acquire transport")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.t = t
	s.key = key
	s.state = Connected
	return nil
}

// Release tears down the Transport and returns the session to
// Disconnected. Safe to call on an already-disconnected session.
func (s *Session) Release() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.t == nil {
		s.state = Disconnected
		return nil
	}
	err := s.t.Release()
	s.t = nil
	s.state = Disconnected
	if err != nil {
		return rfiderrors.Wrap(rfiderrors.TransportIO, err, "release transport")
	}
	return nil
}

// send builds a frame for cmd/body via the codec and writes it to the
// Transport, under the session lock (BuildHeader/Finalize share the
// fixed sendBuf, so concurrent command calls must serialize). The
// rfidtrace.Trace installed on ctx, if any, observes the write via
// SendStart/SendDone.
func (s *Session) send(ctx context.Context, cmd byte, body []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Connected {
		return rfiderrors.ErrNotConnected
	}

	cursor, err := s.codec.BuildHeader(s.sendBuf, cmd, s.readerID)
	if err != nil {
		return rfiderrors.Wrap(rfiderrors.Internal, err, "build frame header")
	}
	if cursor+len(body)+1 > len(s.sendBuf) {
		return rfiderrors.New(rfiderrors.BufferOverflow, "finalize frame: frame exceeds send buffer")
	}
	n, err := s.codec.Finalize(s.sendBuf, cursor, body)
	if err != nil {
		return rfiderrors.Wrap(rfiderrors.BufferOverflow, err, "finalize frame")
	}

	tr := rfidtrace.From(ctx)
	tr.SendStart(s.key, n)
	start := time.Now()
	err = s.t.Send(s.sendBuf[:n])
	tr.SendDone(s.key, n, err, time.Since(start))
	if err != nil {
		return rfiderrors.Wrap(rfiderrors.TransportIO, err, "send frame")
	}
	return nil
}

// Inventory emits a dialect-specific START_INVENTORY frame.
func (s *Session) Inventory(ctx context.Context) error {
	return s.send(ctx, s.ops.startInventory, nil)
}

// InventoryOnce emits a one-shot inventory frame. Dialects that don't
// implement it (R2000) fail with ErrUnsupported, matching the reference
// reader's "does not support this function" responses.
func (s *Session) InventoryOnce(ctx context.Context) error {
	if !s.ops.inventoryOnceOK {
		return rfiderrors.ErrUnsupported
	}
	return s.send(ctx, s.ops.inventoryOnce, nil)
}

// Stop emits a STOP_INVENTORY frame.
func (s *Session) Stop(ctx context.Context) error {
	return s.send(ctx, s.ops.stopInventory, nil)
}

// Reset emits a RESET frame.
func (s *Session) Reset(ctx context.Context) error {
	return s.send(ctx, s.ops.reset, nil)
}

// ReadTagBlock emits a READ frame for the given bank/address/length
// (address and length in words). Unsupported on dialects whose tag-block
// operations are stubs in the reference implementation (R2000).
func (s *Session) ReadTagBlock(ctx context.Context, bank TagBank, addr, length uint16) error {
	if !s.ops.tagBlockOK {
		return rfiderrors.ErrUnsupported
	}
	body, err := tlv.SerializeAll(readTagBlockTLVs(bank, addr, length, nil))
	if err != nil {
		return rfiderrors.Wrap(rfiderrors.Internal, err, "build read-tag-block payload")
	}
	return s.send(ctx, s.ops.readTagBlock, body)
}

// WriteTagBlock emits a WRITE frame. data[dataOff:dataOff+length*2] is
// written starting at word address addr in bank.
func (s *Session) WriteTagBlock(ctx context.Context, bank TagBank, addr, length uint16, data []byte, dataOff int) error {
	if !s.ops.tagBlockOK {
		return rfiderrors.ErrUnsupported
	}
	need := int(length) * 2
	if dataOff < 0 || dataOff+need > len(data) {
		return rfiderrors.New(rfiderrors.Internal, "write-tag-block: len*2 exceeds data_len-data_off")
	}
	body, err := tlv.SerializeAll(writeTagBlockTLVs(bank, addr, data[dataOff:dataOff+need], nil))
	if err != nil {
		return rfiderrors.Wrap(rfiderrors.Internal, err, "build write-tag-block payload")
	}
	return s.send(ctx, s.ops.writeTagBlock, body)
}

// LockTag emits a LOCK frame for the given lock type, authorized by
// accessPwd (4 bytes; zero-filled if nil).
func (s *Session) LockTag(ctx context.Context, lockType LockType, accessPwd []byte) error {
	if !s.ops.tagBlockOK {
		return rfiderrors.ErrUnsupported
	}
	ts := []tlv.TLV{{Type: 0x45, Value: []byte{byte(lockType)}}}
	pwd := make([]byte, 4)
	copy(pwd, accessPwd)
	ts = append(ts, tlv.NewAccessPwd(pwd))
	body, err := tlv.SerializeAll(ts)
	if err != nil {
		return rfiderrors.Wrap(rfiderrors.Internal, err, "build lock-tag payload")
	}
	return s.send(ctx, s.ops.lockTag, body)
}

// KillTag emits a KILL frame, authorized by killPwd (4 bytes; a zero
// password by default, per spec.md §4.D).
func (s *Session) KillTag(ctx context.Context, killPwd []byte) error {
	if !s.ops.tagBlockOK {
		return rfiderrors.ErrUnsupported
	}
	pwd := make([]byte, 4)
	copy(pwd, killPwd)
	body, err := tlv.SerializeAll([]tlv.TLV{tlv.NewKillPwd(pwd)})
	if err != nil {
		return rfiderrors.Wrap(rfiderrors.Internal, err, "build kill-tag payload")
	}
	return s.send(ctx, s.ops.killTag, body)
}

// QueryParam emits a parameter-read frame for the given configuration
// memory address, requesting length bytes back. Unsupported on
// dialects that don't implement parameter access (R2000).
func (s *Session) QueryParam(ctx context.Context, addr byte, length byte) error {
	if !s.ops.paramOK {
		return rfiderrors.ErrUnsupported
	}
	ts := []tlv.TLV{
		{Type: tlvParamAddr, Value: []byte{addr}},
		{Type: tlvParamLen, Value: []byte{length}},
	}
	body, err := tlv.SerializeAll(ts)
	if err != nil {
		return rfiderrors.Wrap(rfiderrors.Internal, err, "build query-param payload")
	}
	return s.send(ctx, s.ops.queryParam, body)
}

// SetParam emits a parameter-write frame, writing params starting at
// the given configuration memory address.
func (s *Session) SetParam(ctx context.Context, addr byte, params []byte) error {
	if !s.ops.paramOK {
		return rfiderrors.ErrUnsupported
	}
	if len(params) == 0 {
		return rfiderrors.New(rfiderrors.Internal, "set-param: params must be non-empty")
	}
	ts := []tlv.TLV{
		{Type: tlvParamAddr, Value: []byte{addr}},
		{Type: tlvParamData, Value: params},
	}
	body, err := tlv.SerializeAll(ts)
	if err != nil {
		return rfiderrors.Wrap(rfiderrors.Internal, err, "build set-param payload")
	}
	return s.send(ctx, s.ops.setParam, body)
}

// RelayTLVType is the M-dialect relay command's compound TLV tag.
const RelayTLVType = 0x4C

// RelayOperation appends one [id][op][time] entry per set bit in mask
// (bit 0 = relay-1, bit 1 = relay-2) inside a 0x4C TLV, and sends it.
// Only the M dialect implements relay control.
func (s *Session) RelayOperation(ctx context.Context, mask byte, op byte, relayTime byte) error {
	if s.codec.Kind() != dialect.M {
		return rfiderrors.ErrUnsupported
	}
	var entries []byte
	for id := byte(0); id < 2; id++ {
		if mask&(1<<id) == 0 {
			continue
		}
		entries = append(entries, id+1, op, relayTime)
	}
	relay := tlv.TLV{Type: RelayTLVType, Value: entries}
	body, err := tlv.SerializeAll([]tlv.TLV{relay})
	if err != nil {
		return rfiderrors.Wrap(rfiderrors.Internal, err, "build relay payload")
	}
	return s.send(ctx, RelayTLVType, body)
}

// HandleRecv drains the Transport into the receive buffer, scans it with
// the dialect codec, and dispatches every complete frame found. Called
// by the Receive Multiplexer; also safe to call directly for
// serial-backed or single-session use without a Multiplexer. The
// rfidtrace.Trace installed on ctx, if any, observes the read via
// RecvStart/RecvDone and each frame via FrameDispatched/FrameDropped.
//
// A permanent Transport error transitions the session to Faulted; the
// caller (the multiplexer) is expected to unregister it. Parse failures
// never reach here as errors — the codec's scan already skips corrupt
// bytes internally.
func (s *Session) HandleRecv(ctx context.Context) error {
	s.mu.Lock()
	if s.state != Connected {
		s.mu.Unlock()
		return rfiderrors.ErrNotConnected
	}
	t := s.t
	codec := s.codec
	key := s.key
	s.mu.Unlock()

	tr := rfidtrace.From(ctx)
	tr.RecvStart(key)
	start := time.Now()
	n, err := t.Recv(s.recvBuf[s.recvLen:])
	tr.RecvDone(key, n, err, time.Since(start))
	if err != nil {
		s.mu.Lock()
		s.state = Faulted
		s.mu.Unlock()
		tr.Error("recv", key, err)
		return rfiderrors.Wrap(rfiderrors.TransportIO, err, "recv")
	}
	s.recvLen += n

	frames, consumed := codec.Scan(s.recvBuf, s.recvLen)

	s.mu.Lock()
	cb := s.cb
	s.mu.Unlock()

	for _, f := range frames {
		s.dispatch(tr, cb, f)
	}

	s.mu.Lock()
	copy(s.recvBuf, s.recvBuf[consumed:s.recvLen])
	s.recvLen -= consumed
	s.mu.Unlock()

	return nil
}

// dispatch maps one parsed Frame to a CallbackSet slot, per spec.md
// §4.D's command-code (General/R2000) or (direction, command) (UHF/M)
// table, reporting the outcome via tr's FrameDispatched/FrameDropped
// hooks. Unknown command codes are silently dropped.
func (s *Session) dispatch(tr *rfidtrace.Trace, cb *CallbackSet, f dialect.Frame) {
	key := s.key

	var handled bool
	switch s.codec.Kind() {
	case dialect.UHF, dialect.M:
		handled = s.dispatchUHF(cb, key, f)
	default:
		handled = s.dispatchGeneral(cb, key, f)
	}

	if handled {
		tr.FrameDispatched(key, f.Command, f.Offset)
	} else {
		tr.FrameDropped(key, f.Command, f.Offset)
	}
}

func (s *Session) dispatchGeneral(cb *CallbackSet, key string, f dialect.Frame) bool {
	// R2000 leaves the codes of the operations it lacks at zero; no
	// General or R2000 operation uses command byte 0x00.
	if f.Command == 0 {
		return false
	}
	switch f.Command {
	case s.ops.tagNotify:
		cb.NotifyRecvTags(key, f.Payload, f.Offset)
	case s.ops.stopInventory:
		cb.NotifyStopInventory(key, statusOf(f.Payload))
	case s.ops.startInventory:
		cb.NotifyStartInventory(key, statusOf(f.Payload))
	case s.ops.reset:
		cb.NotifyReset(key, statusOf(f.Payload))
	case s.ops.readTagBlock:
		cb.NotifyReadTagBlock(key, statusOf(f.Payload), f.Payload)
	case s.ops.writeTagBlock:
		cb.NotifyWriteTagBlock(key, statusOf(f.Payload))
	case s.ops.lockTag:
		cb.NotifyLockTag(key, statusOf(f.Payload))
	case s.ops.killTag:
		cb.NotifyKillTag(key, statusOf(f.Payload))
	case s.ops.inventoryOnce:
		cb.NotifyInventoryOnce(key, statusOf(f.Payload))
	case s.ops.queryParam:
		cb.NotifyQueryMutiParam(key, statusOf(f.Payload), f.Payload)
	case s.ops.setParam:
		cb.NotifySetMutiParam(key, statusOf(f.Payload))
	default:
		return false
	}
	return true
}

func (s *Session) dispatchUHF(cb *CallbackSet, key string, f dialect.Frame) bool {
	if f.Direction == dialect.DirectionNotification && f.Command == s.ops.startInventory {
		cb.NotifyRecvTags(key, f.Payload, f.Offset)
		return true
	}

	status := statusFromTLVs(f.Payload)
	switch f.Command {
	case s.ops.startInventory:
		cb.NotifyStartInventory(key, status)
	case s.ops.stopInventory:
		cb.NotifyStopInventory(key, status)
	case s.ops.reset:
		cb.NotifyReset(key, status)
	case s.ops.readTagBlock:
		cb.NotifyReadTagBlock(key, status, f.Payload)
	case s.ops.writeTagBlock:
		cb.NotifyWriteTagBlock(key, status)
	case s.ops.lockTag:
		cb.NotifyLockTag(key, status)
	case s.ops.killTag:
		cb.NotifyKillTag(key, status)
	case s.ops.inventoryOnce:
		cb.NotifyInventoryOnce(key, status)
	case s.ops.queryParam:
		cb.NotifyQueryMutiParam(key, status, f.Payload)
	case s.ops.setParam:
		cb.NotifySetMutiParam(key, status)
	default:
		return false
	}
	return true
}

// statusOf reads General/R2000's conventional first-payload-byte status
// code; payloads too short to carry one report 0xFF, the catalog's
// StatusInternalError.
func statusOf(payload []byte) byte {
	if len(payload) == 0 {
		return 0xFF
	}
	return payload[0]
}

// statusFromTLVs reads the STATUS TLV (0x07) out of a UHF/M response
// payload, defaulting to 0xFF if absent.
func statusFromTLVs(payload []byte) byte {
	ts, err := tlv.Parse(payload, 0, len(payload))
	if err != nil {
		return 0xFF
	}
	found, ok := tlv.Find(ts, tlv.TypeStatus)
	if !ok {
		return 0xFF
	}
	status, err := tlv.Status(found)
	if err != nil {
		return 0xFF
	}
	return status
}

// Memory-bank and word-pointer TLV types used by READ_TAG/WRITE_TAG,
// grounded in uhf_protocol/commands.py's custom TLV types (0x41-0x44).
const (
	tlvMemBank  = 0x41
	tlvWordPtr  = 0x42
	tlvWordCnt  = 0x43
	tlvWriteVal = 0x44
)

// Configuration-parameter TLV types used by QueryParam/SetParam,
// grounded in general_reader.py's query_parameter/set_muti_parameter
// and commands.py's GET_CONFIG/SET_CONFIG bodies.
const (
	tlvParamAddr = 0x46
	tlvParamLen  = 0x47
	tlvParamData = 0x48
)

func readTagBlockTLVs(bank TagBank, addr, length uint16, accessPwd []byte) []tlv.TLV {
	ts := []tlv.TLV{
		{Type: tlvMemBank, Value: []byte{byte(bank)}},
		{Type: tlvWordPtr, Value: be16(addr)},
		{Type: tlvWordCnt, Value: be16(length)},
	}
	if accessPwd != nil {
		ts = append(ts, tlv.NewAccessPwd(accessPwd))
	}
	return ts
}

func writeTagBlockTLVs(bank TagBank, addr uint16, data []byte, accessPwd []byte) []tlv.TLV {
	ts := []tlv.TLV{
		{Type: tlvMemBank, Value: []byte{byte(bank)}},
		{Type: tlvWordPtr, Value: be16(addr)},
		{Type: tlvWriteVal, Value: data},
	}
	if accessPwd != nil {
		ts = append(ts, tlv.NewAccessPwd(accessPwd))
	}
	return ts
}

func be16(v uint16) []byte {
	return []byte{byte(v >> 8), byte(v)}
}
