package raknet

import "fmt"

// UnconnectedPing is sent by a client probing for a server before any
// session exists.
type UnconnectedPing struct {
	Timestamp   int64
	ClientGUID  int64
}

// Encode serializes the packet, including its leading ID byte.
func (p UnconnectedPing) Encode() []byte {
	w := NewWriter(1 + 8 + 16 + 8)
	w.Byte(IDUnconnectedPing)
	w.Int64(p.Timestamp)
	w.Magic()
	w.Int64(p.ClientGUID)
	return w.Bytes()
}

// DecodeUnconnectedPing decodes the packet body (ID byte already consumed).
func DecodeUnconnectedPing(r *Reader) (UnconnectedPing, error) {
	var p UnconnectedPing
	ts, err := r.Int64()
	if err != nil {
		return p, err
	}
	if err := r.Magic(); err != nil {
		return p, err
	}
	guid, err := r.Int64()
	if err != nil {
		return p, err
	}
	return UnconnectedPing{Timestamp: ts, ClientGUID: guid}, nil
}

// UnconnectedPong carries the MOTD response.
type UnconnectedPong struct {
	Timestamp  int64
	ServerGUID int64
	MOTD       string
}

// Encode serializes the packet.
func (p UnconnectedPong) Encode() []byte {
	w := NewWriter(1 + 8 + 8 + 16 + 2 + len(p.MOTD))
	w.Byte(IDUnconnectedPong)
	w.Int64(p.Timestamp)
	w.Int64(p.ServerGUID)
	w.Magic()
	w.String(p.MOTD)
	return w.Bytes()
}

// DecodeUnconnectedPong decodes the packet body.
func DecodeUnconnectedPong(r *Reader) (UnconnectedPong, error) {
	var p UnconnectedPong
	ts, err := r.Int64()
	if err != nil {
		return p, err
	}
	guid, err := r.Int64()
	if err != nil {
		return p, err
	}
	if err := r.Magic(); err != nil {
		return p, err
	}
	motd, err := r.String()
	if err != nil {
		return p, err
	}
	return UnconnectedPong{Timestamp: ts, ServerGUID: guid, MOTD: motd}, nil
}

// MOTDFields is the fixed schema behind the semicolon-delimited MOTD
// string: "MCPE;<name>;<protocol>;<game version>;<online>;<max>;<guid>;
// <world>;<gamemode>;<gamemode numeric>;<ipv4 port>;<ipv6 port>;
// <editor flag>;" — 13 semicolons total, every field present.
type MOTDFields struct {
	ServerName    string
	Protocol      int
	GameVersion   string
	OnlinePlayers int
	MaxPlayers    int
	ServerGUID    int64
	WorldName     string
	GameMode      string
	GameModeID    int
	IPv4Port      uint16
	IPv6Port      uint16
	EditorMode    bool
}

// BuildMOTD renders the MOTD string from its fields. Callers must sanitize
// input fields themselves: no semicolon is permitted inside any field.
func BuildMOTD(f MOTDFields) string {
	editor := 0
	if f.EditorMode {
		editor = 1
	}
	return fmt.Sprintf("MCPE;%s;%d;%s;%d;%d;%d;%s;%s;%d;%d;%d;%d;",
		f.ServerName, f.Protocol, f.GameVersion, f.OnlinePlayers, f.MaxPlayers,
		f.ServerGUID, f.WorldName, f.GameMode, f.GameModeID, f.IPv4Port,
		f.IPv6Port, editor)
}

// OpenConnectionRequest1 is the first MTU-discovery packet. The MTU is
// inferred from the total datagram length by the caller (the padding is
// not individually parsed); Padding is kept only for round-trip fidelity.
type OpenConnectionRequest1 struct {
	ProtocolVersion byte
	Padding         []byte
}

// Encode serializes the packet at the given total MTU, padding to fill it.
func (p OpenConnectionRequest1) Encode(mtu int) []byte {
	w := NewWriter(mtu)
	w.Byte(IDOpenConnectionRequest1)
	w.Magic()
	w.Byte(p.ProtocolVersion)
	padLen := mtu - w.Len()
	if padLen < 0 {
		padLen = 0
	}
	w.RawBytes(make([]byte, padLen))
	return w.Bytes()
}

// DecodeOpenConnectionRequest1 decodes the packet body and reports the
// inferred MTU (total datagram length).
func DecodeOpenConnectionRequest1(r *Reader, totalLen int) (OpenConnectionRequest1, int, error) {
	var p OpenConnectionRequest1
	if err := r.Magic(); err != nil {
		return p, 0, err
	}
	ver, err := r.Byte()
	if err != nil {
		return p, 0, err
	}
	p.ProtocolVersion = ver
	return p, totalLen, nil
}

// OpenConnectionReply1 answers OCR1 with the server's GUID and the MTU it
// is willing to negotiate (clamped to [MinMTU, MaxMTU]).
type OpenConnectionReply1 struct {
	ServerGUID int64
	Secure     bool
	MTU        uint16
}

// Encode serializes the packet.
func (p OpenConnectionReply1) Encode() []byte {
	w := NewWriter(1 + 16 + 8 + 1 + 2)
	w.Byte(IDOpenConnectionReply1)
	w.Magic()
	w.Int64(p.ServerGUID)
	w.Bool(p.Secure)
	w.Uint16(p.MTU)
	return w.Bytes()
}

// DecodeOpenConnectionReply1 decodes the packet body.
func DecodeOpenConnectionReply1(r *Reader) (OpenConnectionReply1, error) {
	var p OpenConnectionReply1
	if err := r.Magic(); err != nil {
		return p, err
	}
	guid, err := r.Int64()
	if err != nil {
		return p, err
	}
	secure, err := r.Bool()
	if err != nil {
		return p, err
	}
	mtu, err := r.Uint16()
	if err != nil {
		return p, err
	}
	return OpenConnectionReply1{ServerGUID: guid, Secure: secure, MTU: mtu}, nil
}

// OpenConnectionRequest2 proposes the final MTU and carries the client
// GUID.
type OpenConnectionRequest2 struct {
	ServerAddress Address
	MTU           uint16
	ClientGUID    int64
}

// Encode serializes the packet.
func (p OpenConnectionRequest2) Encode() []byte {
	w := NewWriter(64)
	w.Byte(IDOpenConnectionRequest2)
	w.Magic()
	w.WriteAddress(p.ServerAddress)
	w.Uint16(p.MTU)
	w.Int64(p.ClientGUID)
	return w.Bytes()
}

// DecodeOpenConnectionRequest2 decodes the packet body.
func DecodeOpenConnectionRequest2(r *Reader) (OpenConnectionRequest2, error) {
	var p OpenConnectionRequest2
	if err := r.Magic(); err != nil {
		return p, err
	}
	addr, err := r.ReadAddress()
	if err != nil {
		return p, err
	}
	mtu, err := r.Uint16()
	if err != nil {
		return p, err
	}
	guid, err := r.Int64()
	if err != nil {
		return p, err
	}
	return OpenConnectionRequest2{ServerAddress: addr, MTU: mtu, ClientGUID: guid}, nil
}

// OpenConnectionReply2 finalizes the handshake MTU and echoes the client's
// observed address.
type OpenConnectionReply2 struct {
	ServerGUID      int64
	ClientAddress   Address
	MTU             uint16
	EncryptionOn    bool
}

// Encode serializes the packet.
func (p OpenConnectionReply2) Encode() []byte {
	w := NewWriter(64)
	w.Byte(IDOpenConnectionReply2)
	w.Magic()
	w.Int64(p.ServerGUID)
	w.WriteAddress(p.ClientAddress)
	w.Uint16(p.MTU)
	w.Bool(p.EncryptionOn)
	return w.Bytes()
}

// DecodeOpenConnectionReply2 decodes the packet body.
func DecodeOpenConnectionReply2(r *Reader) (OpenConnectionReply2, error) {
	var p OpenConnectionReply2
	if err := r.Magic(); err != nil {
		return p, err
	}
	guid, err := r.Int64()
	if err != nil {
		return p, err
	}
	addr, err := r.ReadAddress()
	if err != nil {
		return p, err
	}
	mtu, err := r.Uint16()
	if err != nil {
		return p, err
	}
	enc, err := r.Bool()
	if err != nil {
		return p, err
	}
	return OpenConnectionReply2{ServerGUID: guid, ClientAddress: addr, MTU: mtu, EncryptionOn: enc}, nil
}

// IncompatibleProtocolVersion answers an OpenConnectionRequest1 carrying a
// protocol version the server does not speak. No session is created.
type IncompatibleProtocolVersion struct {
	ServerProtocol byte
	ServerGUID     int64
}

// Encode serializes the packet.
func (p IncompatibleProtocolVersion) Encode() []byte {
	w := NewWriter(1 + 1 + 16 + 8)
	w.Byte(IDIncompatibleProtocolVersion)
	w.Byte(p.ServerProtocol)
	w.Magic()
	w.Int64(p.ServerGUID)
	return w.Bytes()
}

// DecodeIncompatibleProtocolVersion decodes the packet body.
func DecodeIncompatibleProtocolVersion(r *Reader) (IncompatibleProtocolVersion, error) {
	var p IncompatibleProtocolVersion
	ver, err := r.Byte()
	if err != nil {
		return p, err
	}
	p.ServerProtocol = ver
	if err := r.Magic(); err != nil {
		return p, err
	}
	guid, err := r.Int64()
	if err != nil {
		return p, err
	}
	p.ServerGUID = guid
	return p, nil
}

// ClampMTU clamps an MTU proposal to the negotiable range.
func ClampMTU(mtu int) uint16 {
	if mtu < MinMTU {
		return MinMTU
	}
	if mtu > MaxMTU {
		return MaxMTU
	}
	return uint16(mtu)
}
