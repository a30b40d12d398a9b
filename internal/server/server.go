// Package server owns the UDP socket and the table of live sessions,
// grounded on ventosilenzioso-go-raknet's source/server/server.go: a
// single goroutine multiplexes socket reads, a fixed tick, and game-layer
// commands, so session state never needs a lock. A second goroutine only
// pumps ReadFromUDP into a channel; it never touches the session table.
package server

import (
	"context"
	"net"
	"time"

	"github.com/rs/xid"

	"github.com/ventosilenzioso/raknet-go/internal/config"
	"github.com/ventosilenzioso/raknet-go/internal/metrics"
	"github.com/ventosilenzioso/raknet-go/internal/raknet"
	"github.com/ventosilenzioso/raknet-go/pkg/logger"
)

// datagram is one received UDP packet, handed from the read pump to the
// event loop.
type datagram struct {
	data []byte
	addr *net.UDPAddr
}

// Server is the RakNet transport: one UDP socket, a peer-address-keyed
// session table, and the event/command channels connecting it to the
// game layer above.
type Server struct {
	cfg  config.Config
	conn *net.UDPConn

	sessions map[string]*raknet.Session

	incoming chan datagram
	events   chan Event
	commands chan Command
	stopRead chan struct{}
}

// New binds the UDP socket described by cfg and returns a Server ready
// for Run.
func New(cfg config.Config) (*Server, error) {
	addr := &net.UDPAddr{IP: net.ParseIP(cfg.BindHost), Port: cfg.BindPort}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		cfg:      cfg,
		conn:     conn,
		sessions: make(map[string]*raknet.Session),
		incoming: make(chan datagram, 256),
		events:   make(chan Event, 256),
		commands: make(chan Command, 256),
		stopRead: make(chan struct{}),
	}, nil
}

// Events returns the channel of upward notifications for the game layer.
func (s *Server) Events() <-chan Event { return s.events }

// LocalAddr returns the bound UDP address, useful when BindPort is 0 and
// the kernel assigns an ephemeral port.
func (s *Server) LocalAddr() *net.UDPAddr { return s.conn.LocalAddr().(*net.UDPAddr) }

// Submit enqueues a downward command. It blocks if the command queue is
// full, applying backpressure to the caller rather than silently dropping
// game-layer traffic.
func (s *Server) Submit(cmd Command) { s.commands <- cmd }

// Run drives the event loop until ctx is canceled. It is the only
// goroutine that ever reads or writes session state.
func (s *Server) Run(ctx context.Context) {
	go s.readPump()

	ticker := time.NewTicker(raknet.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.shutdown()
			return
		case dg := <-s.incoming:
			s.handleDatagram(dg.data, dg.addr)
		case now := <-ticker.C:
			s.tick(now)
		case cmd := <-s.commands:
			s.handleCommand(cmd)
		}
	}
}

// readPump blocks on ReadFromUDP and forwards every datagram to the event
// loop. It owns no session state, so it needs no synchronization with Run.
func (s *Server) readPump() {
	buf := make([]byte, 2048)
	for {
		n, addr, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			select {
			case <-s.stopRead:
				return
			default:
				logger.Warnf("udp read error: %v", err)
				continue
			}
		}
		data := make([]byte, n)
		copy(data, buf[:n])
		select {
		case s.incoming <- datagram{data: data, addr: addr}:
		case <-s.stopRead:
			return
		}
	}
}

// handleDatagram demultiplexes on the first byte: offline IDs (0x00-0x0F),
// frame-set headers (0x80-0x8D), NACK (0xA0), ACK (0xC0); anything else is
// dropped.
func (s *Server) handleDatagram(data []byte, addr *net.UDPAddr) {
	if len(data) == 0 {
		return
	}
	id := data[0]
	switch {
	case id <= 0x0F:
		s.handleOffline(id, data, addr)
	case raknet.FrameSetIDInRange(id):
		s.handleFrameSet(data, addr)
	case id == raknet.NACKHeaderByte:
		s.handleNACKDatagram(data, addr)
	case id == raknet.ACKHeaderByte:
		s.handleACKDatagram(data, addr)
	default:
		logger.Debugf("dropping unrecognized datagram 0x%02x from %s", id, addr)
	}
}

func (s *Server) handleOffline(id byte, data []byte, addr *net.UDPAddr) {
	switch id {
	case raknet.IDUnconnectedPing, raknet.IDUnconnectedPingOpenConns:
		s.handlePing(data, addr)
	case raknet.IDOpenConnectionRequest1:
		s.handleOCR1(data, addr)
	case raknet.IDOpenConnectionRequest2:
		s.handleOCR2(data, addr)
	default:
		logger.Debugf("dropping unrecognized offline packet 0x%02x from %s", id, addr)
	}
}

func (s *Server) handlePing(data []byte, addr *net.UDPAddr) {
	r := raknet.NewReader(data[1:])
	ping, err := raknet.DecodeUnconnectedPing(r)
	if err != nil {
		if !raknet.IsInvalidMagic(err) {
			logger.Debugf("malformed ping from %s: %v", addr, err)
		}
		return
	}
	pong := raknet.UnconnectedPong{
		Timestamp:  ping.Timestamp,
		ServerGUID: s.cfg.ServerGUID,
		MOTD:       raknet.BuildMOTD(s.motdFields()),
	}
	s.send(pong.Encode(), addr)
}

// handleOCR1 replies with the server's GUID and negotiated MTU. A new OCR1
// from an address that already has a session discards the stale session
// and restarts the handshake: the peer is reconnecting.
func (s *Server) handleOCR1(data []byte, addr *net.UDPAddr) {
	r := raknet.NewReader(data[1:])
	req, mtu, err := raknet.DecodeOpenConnectionRequest1(r, len(data))
	if err != nil {
		if !raknet.IsInvalidMagic(err) {
			logger.Debugf("malformed open-connection-request-1 from %s: %v", addr, err)
		}
		return
	}
	if req.ProtocolVersion != raknet.ProtocolVersion {
		reply := raknet.IncompatibleProtocolVersion{
			ServerProtocol: raknet.ProtocolVersion,
			ServerGUID:     s.cfg.ServerGUID,
		}
		s.send(reply.Encode(), addr)
		return
	}

	key := addr.String()
	if _, exists := s.sessions[key]; exists {
		s.removeSession(key, "restart")
	}

	reply := raknet.OpenConnectionReply1{
		ServerGUID: s.cfg.ServerGUID,
		Secure:     false,
		MTU:        raknet.ClampMTU(mtu),
	}
	s.send(reply.Encode(), addr)
}

// handleOCR2 creates the session and completes the transport handshake.
func (s *Server) handleOCR2(data []byte, addr *net.UDPAddr) {
	key := addr.String()
	if _, exists := s.sessions[key]; exists {
		return // duplicate OCR2 for an in-flight handshake; ignore
	}
	if s.atCapacity() {
		logger.Debugf("rejecting %s: at capacity (%d)", addr, s.cfg.MaxPlayers)
		return
	}

	r := raknet.NewReader(data[1:])
	req, err := raknet.DecodeOpenConnectionRequest2(r)
	if err != nil {
		if !raknet.IsInvalidMagic(err) {
			logger.Debugf("malformed open-connection-request-2 from %s: %v", addr, err)
		}
		return
	}

	mtu := raknet.ClampMTU(int(req.MTU))
	traceID := xid.New().String()
	sess := raknet.NewSession(raknet.AddressFromUDP(addr), int(mtu), req.ClientGUID, traceID)
	s.sessions[key] = sess
	metrics.SessionsActive.Set(float64(len(s.sessions)))
	logger.Infof("session %s opening from %s (mtu=%d guid=%d)", traceID, addr, mtu, req.ClientGUID)

	reply := raknet.OpenConnectionReply2{
		ServerGUID:    s.cfg.ServerGUID,
		ClientAddress: raknet.AddressFromUDP(addr),
		MTU:           mtu,
		EncryptionOn:  false,
	}
	s.send(reply.Encode(), addr)
	sess.MarkHandshakeCompleted()
}

func (s *Server) handleFrameSet(data []byte, addr *net.UDPAddr) {
	sess, ok := s.sessions[addr.String()]
	if !ok {
		return
	}
	fs, err := raknet.DecodeFrameSet(data)
	if err != nil {
		logger.Debugf("malformed frame set from %s: %v", addr, err)
		return
	}
	now := time.Now()
	for _, payload := range sess.ProcessFrameSet(fs, now) {
		s.handlePayload(sess, addr, payload)
	}
}

// handlePayload intercepts the handshake-completion packets this
// transport owns and forwards everything else to the game layer as
// EventPayloadReceived.
func (s *Server) handlePayload(sess *raknet.Session, addr *net.UDPAddr, payload []byte) {
	if len(payload) == 0 {
		return
	}
	switch payload[0] {
	case raknet.IDConnectedPing:
		ping, err := raknet.DecodeConnectedPing(raknet.NewReader(payload[1:]))
		if err != nil {
			return
		}
		pong := raknet.ConnectedPong{
			PingTimestamp: ping.Timestamp,
			PongTimestamp: nowMillis(),
		}
		_ = sess.Queue(pong.Encode(), raknet.Unreliable, 0)

	case raknet.IDConnectedPong:
		// RTT sample only; the transport tracks no latency statistics.

	case raknet.IDConnectionRequest:
		req, err := raknet.DecodeConnectionRequest(raknet.NewReader(payload[1:]))
		if err != nil {
			return
		}
		accepted := raknet.ConnectionRequestAccepted{
			ClientAddress:     sess.Addr,
			RequestTimestamp:  req.Timestamp,
			AcceptedTimestamp: nowMillis(),
		}
		_ = sess.Queue(accepted.Encode(), raknet.ReliableOrdered, 0)
		sess.MarkConnectionPending()

	case raknet.IDNewIncomingConnection:
		sess.MarkConnected()
		s.emit(Event{Kind: EventSessionOpened, Peer: addr, TraceID: sess.TraceID})

	case raknet.IDDisconnectionNotification:
		s.removeSession(addr.String(), "remote")

	default:
		s.emit(Event{Kind: EventPayloadReceived, Peer: addr, TraceID: sess.TraceID, Payload: payload})
	}
}

func (s *Server) handleACKDatagram(data []byte, addr *net.UDPAddr) {
	sess, ok := s.sessions[addr.String()]
	if !ok {
		return
	}
	records, err := raknet.DecodeRecords(raknet.NewReader(data[1:]))
	if err != nil {
		logger.Debugf("malformed ack from %s: %v", addr, err)
		return
	}
	sess.Touch(time.Now())
	framesAcked := sess.HandleACK(records)
	metrics.ACKsReceived.Inc()
	metrics.FramesAcked.Add(float64(framesAcked))
}

func (s *Server) handleNACKDatagram(data []byte, addr *net.UDPAddr) {
	sess, ok := s.sessions[addr.String()]
	if !ok {
		return
	}
	records, err := raknet.DecodeRecords(raknet.NewReader(data[1:]))
	if err != nil {
		logger.Debugf("malformed nack from %s: %v", addr, err)
		return
	}
	sess.Touch(time.Now())
	sess.HandleNACK(records)
	metrics.NACKsReceived.Inc()
	metrics.FramesRetransmitted.Add(float64(len(records)))
}

// tick drives every session's maintenance and flushes its outbound queues.
func (s *Server) tick(now time.Time) {
	for key, sess := range s.sessions {
		reassembled, expired := sess.Tick(now)
		metrics.FragmentsReassembled.Add(float64(reassembled))
		metrics.FragmentsExpired.Add(float64(expired))

		for _, dg := range sess.Flush(now) {
			s.send(dg, sess.Addr.UDPAddr())
			metrics.FramesSent.Inc()
		}

		if ack, nack := sess.FlushACKNACK(); ack != nil || nack != nil {
			if ack != nil {
				s.send(ack, sess.Addr.UDPAddr())
			}
			if nack != nil {
				s.send(nack, sess.Addr.UDPAddr())
			}
		}

		if sess.IsTimedOut(now) {
			metrics.SessionsTimedOut.Inc()
			s.removeSession(key, "timeout")
		}
	}
	metrics.SessionsActive.Set(float64(len(s.sessions)))
}

func (s *Server) handleCommand(cmd Command) {
	sess, ok := s.sessions[cmd.Peer.String()]
	if !ok {
		return
	}
	switch cmd.Kind {
	case CommandSendPayload:
		if err := sess.Queue(cmd.Payload, cmd.Reliability, cmd.Channel); err != nil {
			logger.Warnf("queue failed for %s: %v", cmd.Peer, err)
		}
	case CommandDisconnect:
		s.disconnect(sess, cmd.Peer, "local")
	}
}

func (s *Server) disconnect(sess *raknet.Session, addr *net.UDPAddr, reason string) {
	_ = sess.Queue(raknet.DisconnectionNotification{}.Encode(), raknet.ReliableOrdered, 0)
	for _, dg := range sess.Flush(time.Now()) {
		s.send(dg, addr)
	}
	s.removeSession(addr.String(), reason)
}

func (s *Server) removeSession(key string, reason string) {
	sess, ok := s.sessions[key]
	if !ok {
		return
	}
	delete(s.sessions, key)
	sess.MarkDisconnected()
	metrics.SessionsClosed.WithLabelValues(reason).Inc()
	logger.Infof("session %s closed (%s)", sess.TraceID, reason)
	s.emit(Event{Kind: EventSessionClosed, Peer: sess.Addr.UDPAddr(), TraceID: sess.TraceID, Reason: reason})
}

// shutdown notifies every connected peer before closing the socket.
func (s *Server) shutdown() {
	now := time.Now()
	for key, sess := range s.sessions {
		_ = sess.Queue(raknet.DisconnectionNotification{}.Encode(), raknet.ReliableOrdered, 0)
		for _, dg := range sess.Flush(now) {
			s.send(dg, sess.Addr.UDPAddr())
		}
		delete(s.sessions, key)
	}
	close(s.stopRead)
	s.conn.Close()
}

// send writes one datagram to addr. A write error is treated as fatal for
// that peer: Go's UDP sockets block inside the runtime netpoller rather
// than surfacing a retryable would-block error, so there is no partial-
// send case to requeue.
func (s *Server) send(data []byte, addr *net.UDPAddr) {
	if _, err := s.conn.WriteToUDP(data, addr); err != nil {
		logger.Warnf("send to %s failed: %v", addr, err)
		s.removeSession(addr.String(), "send_error")
	}
}

func (s *Server) emit(ev Event) {
	select {
	case s.events <- ev:
	default:
		logger.Warnf("event queue full, dropping %d event for %s", ev.Kind, ev.Peer)
	}
}

func (s *Server) atCapacity() bool {
	return s.cfg.MaxPlayers > 0 && len(s.sessions) >= s.cfg.MaxPlayers
}

func nowMillis() int64 { return time.Now().UnixNano() / int64(time.Millisecond) }
