package raknet

import (
	"fmt"
	"time"
)

// SessionState is a position in the per-peer lifecycle:
// Connecting -> HandshakeCompleted -> ConnectionPending -> Connected ->
// Disconnected.
type SessionState int

const (
	StateConnecting SessionState = iota
	StateHandshakeCompleted
	StateConnectionPending
	StateConnected
	StateDisconnected
)

func (s SessionState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateHandshakeCompleted:
		return "handshake_completed"
	case StateConnectionPending:
		return "connection_pending"
	case StateConnected:
		return "connected"
	case StateDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// sentFrameSet is one outstanding (unACKed) datagram's worth of frames,
// kept so it can be rebuilt under a new sequence number on retransmit.
type sentFrameSet struct {
	sentAt time.Time
	frames []*Frame
}

// frameOverhead is the reserved per-frame header budget (flags + length +
// worst-case reliable/ordered/split fields) subtracted from the MTU before
// deciding whether a payload needs fragmenting.
const frameOverhead = 32

// Session is the per-peer state machine: lifecycle, send/retransmit
// queues, and the receive pipeline (dedup, reordering, reassembly).
type Session struct {
	Addr    Address
	GUID    int64
	TraceID string

	// Hints is an opaque pass-through for game-layer handshake hints
	// (e.g. NetworkSettings client_throttle_* fields) this transport
	// stores but never interprets.
	Hints []byte

	mtu   uint16
	state SessionState

	lastActivity  time.Time
	lastPingSent  time.Time

	// Send side.
	nextSequenceNumber uint32
	nextReliableIndex  uint32
	nextOrderedIndex   [MaxChannels]uint32
	nextSplitID        uint16
	sendQueue          []*Frame
	unacked            map[uint32]*sentFrameSet

	// Receive side.
	hasReceivedAny     bool
	highestReceivedSeq uint32
	receivedSeqs       map[uint32]struct{}
	receivedReliable   map[uint32]struct{}
	pendingACK         map[uint32]struct{}
	pendingNACK        map[uint32]struct{}
	recvChannels       orderingChannels
	fragments          *FragmentAssembler
	pendingReassembled int
}

// NewSession creates a session in the Connecting state, with the MTU from
// OpenConnectionRequest2 clamped to [MinMTU, MaxMTU].
func NewSession(addr Address, mtu int, clientGUID int64, traceID string) *Session {
	now := time.Now()
	return &Session{
		Addr:             addr,
		GUID:             clientGUID,
		TraceID:          traceID,
		mtu:              ClampMTU(mtu),
		state:            StateConnecting,
		lastActivity:     now,
		lastPingSent:     now,
		unacked:          make(map[uint32]*sentFrameSet),
		receivedSeqs:     make(map[uint32]struct{}),
		receivedReliable: make(map[uint32]struct{}),
		pendingACK:       make(map[uint32]struct{}),
		pendingNACK:      make(map[uint32]struct{}),
		recvChannels:     newOrderingChannels(),
		fragments:        NewFragmentAssembler(),
	}
}

// MTU returns the negotiated MTU.
func (s *Session) MTU() uint16 { return s.mtu }

// State returns the current lifecycle state.
func (s *Session) State() SessionState { return s.state }

// MarkHandshakeCompleted transitions Connecting -> HandshakeCompleted,
// triggered by sending OpenConnectionReply2.
func (s *Session) MarkHandshakeCompleted() { s.state = StateHandshakeCompleted }

// MarkConnectionPending transitions HandshakeCompleted -> ConnectionPending,
// triggered by receiving ConnectionRequest and sending
// ConnectionRequestAccepted.
func (s *Session) MarkConnectionPending() { s.state = StateConnectionPending }

// MarkConnected transitions ConnectionPending -> Connected, triggered by
// receiving NewIncomingConnection.
func (s *Session) MarkConnected() { s.state = StateConnected }

// MarkDisconnected moves the session to its terminal state.
func (s *Session) MarkDisconnected() { s.state = StateDisconnected }

// Touch records that a datagram was just received from this peer,
// regardless of its kind.
func (s *Session) Touch(now time.Time) { s.lastActivity = now }

// IsTimedOut reports whether the peer has been silent past SessionTimeout.
func (s *Session) IsTimedOut(now time.Time) bool {
	return now.Sub(s.lastActivity) > SessionTimeout
}

// Queue submits a payload for send with the given reliability class and
// ordering channel. Payloads larger than the MTU minus overhead are split
// into multiple frames sharing one split id, reliability class, channel,
// and ordered index; reliable classes get a fresh reliable index per
// fragment so each physical frame can be ACKed/deduped independently.
func (s *Session) Queue(payload []byte, reliability Reliability, channel byte) error {
	if channel >= MaxChannels {
		return fmt.Errorf("raknet: channel %d out of range", channel)
	}
	maxPayload := int(s.mtu) - frameOverhead - FrameSetHeaderLen
	if maxPayload <= 0 {
		return fmt.Errorf("raknet: MTU %d too small to carry any payload", s.mtu)
	}

	var orderedIndex uint32
	if reliability.HasOrderingChannel() {
		orderedIndex = s.nextOrderedIndex[channel]
		s.nextOrderedIndex[channel]++
	}

	if len(payload) <= maxPayload {
		f := &Frame{Reliability: reliability, Channel: channel, OrderedIndex: orderedIndex, Payload: payload}
		if reliability.IsReliable() {
			f.ReliableIndex = s.nextReliableIndex
			s.nextReliableIndex++
		}
		s.sendQueue = append(s.sendQueue, f)
		return nil
	}

	count := (len(payload) + maxPayload - 1) / maxPayload
	if count > MaxSplitCount {
		return fmt.Errorf("raknet: payload needs %d fragments, exceeds max %d", count, MaxSplitCount)
	}
	splitID := s.nextSplitID
	s.nextSplitID++

	for i := 0; i < count; i++ {
		start := i * maxPayload
		end := start + maxPayload
		if end > len(payload) {
			end = len(payload)
		}
		f := &Frame{
			Reliability:  reliability,
			Channel:      channel,
			OrderedIndex: orderedIndex,
			Split:        &SplitInfo{Count: uint32(count), ID: splitID, Index: uint32(i)},
			Payload:      payload[start:end],
		}
		if reliability.IsReliable() {
			f.ReliableIndex = s.nextReliableIndex
			s.nextReliableIndex++
		}
		s.sendQueue = append(s.sendQueue, f)
	}
	return nil
}

// Flush greedily packs the send queue into frame-set datagrams up to the
// negotiated MTU, records each one in the unACKed table, and returns the
// encoded datagrams ready for UDP send.
func (s *Session) Flush(now time.Time) [][]byte {
	var out [][]byte
	for len(s.sendQueue) > 0 {
		size := FrameSetHeaderLen
		var frames []*Frame
		for len(s.sendQueue) > 0 {
			next := s.sendQueue[0]
			sz := next.EncodedSize()
			if len(frames) > 0 && size+sz > int(s.mtu) {
				break
			}
			frames = append(frames, next)
			size += sz
			s.sendQueue = s.sendQueue[1:]
		}

		seq := s.nextSequenceNumber
		s.nextSequenceNumber++
		fs := &FrameSet{SequenceNumber: seq, Frames: frames}
		out = append(out, fs.Encode())
		s.unacked[seq] = &sentFrameSet{sentAt: now, frames: frames}
	}
	return out
}

// HandleACK removes every matching unACKed frame set from retransmit
// tracking and returns the number of frames those frame sets carried, for
// the caller to forward to metrics.
func (s *Session) HandleACK(records []Record) (framesAcked int) {
	for _, seq := range ExpandRecords(records) {
		entry, ok := s.unacked[seq]
		if !ok {
			continue
		}
		delete(s.unacked, seq)
		framesAcked += len(entry.frames)
	}
	return framesAcked
}

// HandleNACK removes every matching unACKed frame set and requeues its
// frames at the front of the send queue, preserving their original
// reliable indices so peer-side dedup still works on retransmission.
func (s *Session) HandleNACK(records []Record) {
	for _, seq := range ExpandRecords(records) {
		entry, ok := s.unacked[seq]
		if !ok {
			continue
		}
		delete(s.unacked, seq)
		s.sendQueue = append(append([]*Frame(nil), entry.frames...), s.sendQueue...)
	}
}

// RetransmitScan requeues the frames of any unACKed frame set older than
// RetransmitTimeout.
func (s *Session) RetransmitScan(now time.Time) {
	for seq, entry := range s.unacked {
		if now.Sub(entry.sentAt) <= RetransmitTimeout {
			continue
		}
		delete(s.unacked, seq)
		s.sendQueue = append(append([]*Frame(nil), entry.frames...), s.sendQueue...)
	}
}

// ProcessFrameSet runs the full receive pipeline for one incoming frame
// set: ACK/NACK bookkeeping, reliable dedup, fragment reassembly, and
// per-channel ordering/sequencing. It returns every payload released to
// the game layer by this arrival, in the order each became deliverable.
func (s *Session) ProcessFrameSet(fs *FrameSet, now time.Time) [][]byte {
	s.Touch(now)
	s.pendingACK[fs.SequenceNumber] = struct{}{}
	s.receivedSeqs[fs.SequenceNumber] = struct{}{}

	if !s.hasReceivedAny || fs.SequenceNumber > s.highestReceivedSeq {
		start := s.highestReceivedSeq + 1
		if !s.hasReceivedAny {
			start = 0 // the peer's sequence numbers start at 0
		}
		s.hasReceivedAny = true
		for missing := start; missing < fs.SequenceNumber; missing++ {
			if _, ok := s.receivedSeqs[missing]; !ok {
				s.pendingNACK[missing] = struct{}{}
			}
		}
		s.highestReceivedSeq = fs.SequenceNumber
	}

	var delivered [][]byte
	for _, f := range fs.Frames {
		if f.Reliability.HasOrderingChannel() && f.Channel >= MaxChannels {
			continue // malformed: drop the frame
		}

		if f.Reliability.IsReliable() {
			if _, dup := s.receivedReliable[f.ReliableIndex]; dup {
				continue
			}
			s.receivedReliable[f.ReliableIndex] = struct{}{}
		}

		payload := f.Payload
		if f.Split != nil {
			reassembled, complete, err := s.fragments.Insert(f.Split, f.Payload)
			if err != nil {
				continue
			}
			if !complete {
				continue
			}
			payload = reassembled
			s.pendingReassembled++
		}

		switch {
		case f.Reliability.IsOrdered():
			delivered = append(delivered, s.recvChannels[f.Channel].insertOrdered(f.OrderedIndex, payload)...)
		case f.Reliability.IsSequenced():
			if out, ok := s.recvChannels[f.Channel].insertSequenced(f.OrderedIndex, payload); ok {
				delivered = append(delivered, out)
			}
		default:
			delivered = append(delivered, payload)
		}
	}
	return delivered
}

// FlushACKNACK drains the pending ACK/NACK queues into wire datagrams.
// Either return value is nil if its queue was empty. These datagrams are
// not tracked for retransmission and consume no reliable sequence number.
func (s *Session) FlushACKNACK() (ack, nack []byte) {
	if len(s.pendingACK) > 0 {
		seqs := make([]uint32, 0, len(s.pendingACK))
		for seq := range s.pendingACK {
			seqs = append(seqs, seq)
		}
		ack = EncodeACK(CompressRecords(seqs))
		s.pendingACK = make(map[uint32]struct{})
	}
	if len(s.pendingNACK) > 0 {
		seqs := make([]uint32, 0, len(s.pendingNACK))
		for seq := range s.pendingNACK {
			seqs = append(seqs, seq)
		}
		nack = EncodeNACK(CompressRecords(seqs))
		s.pendingNACK = make(map[uint32]struct{})
	}
	return ack, nack
}

// Tick runs the per-tick maintenance the server drives every TickInterval:
// retransmit scanning, fragment buffer GC, and keepalive pings. It returns
// the number of payloads reassembled and the number of fragment buffers
// expired since the previous call, for the caller to forward to metrics.
func (s *Session) Tick(now time.Time) (reassembled, expired int) {
	s.RetransmitScan(now)
	expired = s.fragments.GC()
	reassembled = s.pendingReassembled
	s.pendingReassembled = 0
	if s.state >= StateConnected && now.Sub(s.lastPingSent) > KeepaliveInterval {
		_ = s.Queue(ConnectedPing{Timestamp: now.UnixNano() / int64(time.Millisecond)}.Encode(), Unreliable, 0)
		s.lastPingSent = now
	}
	return reassembled, expired
}

// PendingFragments reports the number of in-flight split buffers, for
// metrics.
func (s *Session) PendingFragments() int {
	return s.fragments.Pending()
}
