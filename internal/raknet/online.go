package raknet

// ConnectedPing is periodic keepalive traffic and an RTT probe, sent
// inside a frame once a session exists.
type ConnectedPing struct {
	Timestamp int64
}

// Encode serializes the packet.
func (p ConnectedPing) Encode() []byte {
	w := NewWriter(9)
	w.Byte(IDConnectedPing)
	w.Int64(p.Timestamp)
	return w.Bytes()
}

// DecodeConnectedPing decodes the packet body.
func DecodeConnectedPing(r *Reader) (ConnectedPing, error) {
	ts, err := r.Int64()
	return ConnectedPing{Timestamp: ts}, err
}

// ConnectedPong echoes the ping timestamp plus the responder's own send
// timestamp.
type ConnectedPong struct {
	PingTimestamp int64
	PongTimestamp int64
}

// Encode serializes the packet.
func (p ConnectedPong) Encode() []byte {
	w := NewWriter(17)
	w.Byte(IDConnectedPong)
	w.Int64(p.PingTimestamp)
	w.Int64(p.PongTimestamp)
	return w.Bytes()
}

// DecodeConnectedPong decodes the packet body.
func DecodeConnectedPong(r *Reader) (ConnectedPong, error) {
	var p ConnectedPong
	ping, err := r.Int64()
	if err != nil {
		return p, err
	}
	pong, err := r.Int64()
	if err != nil {
		return p, err
	}
	return ConnectedPong{PingTimestamp: ping, PongTimestamp: pong}, nil
}

// ConnectionRequest is the first online-session packet a client sends.
type ConnectionRequest struct {
	ClientGUID int64
	Timestamp  int64
	Secure     bool
}

// Encode serializes the packet.
func (p ConnectionRequest) Encode() []byte {
	w := NewWriter(18)
	w.Byte(IDConnectionRequest)
	w.Int64(p.ClientGUID)
	w.Int64(p.Timestamp)
	w.Bool(p.Secure)
	return w.Bytes()
}

// DecodeConnectionRequest decodes the packet body.
func DecodeConnectionRequest(r *Reader) (ConnectionRequest, error) {
	var p ConnectionRequest
	guid, err := r.Int64()
	if err != nil {
		return p, err
	}
	ts, err := r.Int64()
	if err != nil {
		return p, err
	}
	secure, err := r.Bool()
	if err != nil {
		return p, err
	}
	return ConnectionRequest{ClientGUID: guid, Timestamp: ts, Secure: secure}, nil
}

// ConnectionRequestAccepted carries the client's observed address, the
// compatibility system-address array, and the handshake timestamps.
type ConnectionRequestAccepted struct {
	ClientAddress     Address
	SystemIndex       uint16
	SystemAddresses   [20]Address
	RequestTimestamp  int64
	AcceptedTimestamp int64
}

// Encode serializes the packet.
func (p ConnectionRequestAccepted) Encode() []byte {
	w := NewWriter(128)
	w.Byte(IDConnectionRequestAccepted)
	w.WriteAddress(p.ClientAddress)
	w.Uint16(p.SystemIndex)
	w.WriteSystemAddresses(p.SystemAddresses[:])
	w.Int64(p.RequestTimestamp)
	w.Int64(p.AcceptedTimestamp)
	return w.Bytes()
}

// DecodeConnectionRequestAccepted decodes the packet body.
func DecodeConnectionRequestAccepted(r *Reader) (ConnectionRequestAccepted, error) {
	var p ConnectionRequestAccepted
	addr, err := r.ReadAddress()
	if err != nil {
		return p, err
	}
	p.ClientAddress = addr
	idx, err := r.Uint16()
	if err != nil {
		return p, err
	}
	p.SystemIndex = idx
	sys, err := r.ReadSystemAddresses()
	if err != nil {
		return p, err
	}
	p.SystemAddresses = sys
	reqTS, err := r.Int64()
	if err != nil {
		return p, err
	}
	p.RequestTimestamp = reqTS
	accTS, err := r.Int64()
	if err != nil {
		return p, err
	}
	p.AcceptedTimestamp = accTS
	return p, nil
}

// NewIncomingConnection is the client's acknowledgement of
// ConnectionRequestAccepted; the session transitions to Connected on
// receipt.
type NewIncomingConnection struct {
	ServerAddress     Address
	SystemAddresses   [20]Address
	RequestTimestamp  int64
	AcceptedTimestamp int64
}

// Encode serializes the packet.
func (p NewIncomingConnection) Encode() []byte {
	w := NewWriter(128)
	w.Byte(IDNewIncomingConnection)
	w.WriteAddress(p.ServerAddress)
	w.WriteSystemAddresses(p.SystemAddresses[:])
	w.Int64(p.RequestTimestamp)
	w.Int64(p.AcceptedTimestamp)
	return w.Bytes()
}

// DecodeNewIncomingConnection decodes the packet body.
func DecodeNewIncomingConnection(r *Reader) (NewIncomingConnection, error) {
	var p NewIncomingConnection
	addr, err := r.ReadAddress()
	if err != nil {
		return p, err
	}
	p.ServerAddress = addr
	sys, err := r.ReadSystemAddresses()
	if err != nil {
		return p, err
	}
	p.SystemAddresses = sys
	reqTS, err := r.Int64()
	if err != nil {
		return p, err
	}
	p.RequestTimestamp = reqTS
	accTS, err := r.Int64()
	if err != nil {
		return p, err
	}
	p.AcceptedTimestamp = accTS
	return p, nil
}

// DisconnectionNotification is an empty-bodied unilateral termination
// signal.
type DisconnectionNotification struct{}

// Encode serializes the packet.
func (DisconnectionNotification) Encode() []byte {
	return []byte{IDDisconnectionNotification}
}
