package raknet

import (
	"fmt"
	"net"
)

// Address is the RakNet wire representation of a peer: a tagged union of
// IPv4 (version 4, 1+4+2 = 7 bytes on the wire, octets bitwise inverted)
// and IPv6 (version 6, 29 bytes, carrying family/flowinfo/scope).
type Address struct {
	IP        net.IP
	Port      uint16
	FlowInfo  uint32
	ScopeID   uint32
}

// EmptyIPv4 is the RakNet placeholder address (0.0.0.0:0) used to pad the
// 20-system-address slots in online handshake packets.
var EmptyIPv4 = Address{IP: net.IPv4(0, 0, 0, 0).To4(), Port: 0}

// AddressFromUDP converts a net.UDPAddr into the wire Address type.
func AddressFromUDP(a *net.UDPAddr) Address {
	if v4 := a.IP.To4(); v4 != nil {
		return Address{IP: v4, Port: uint16(a.Port)}
	}
	return Address{IP: a.IP.To16(), Port: uint16(a.Port)}
}

// UDPAddr converts back to a net.UDPAddr.
func (a Address) UDPAddr() *net.UDPAddr {
	return &net.UDPAddr{IP: a.IP, Port: int(a.Port)}
}

// WriteAddress encodes a as a version-tagged address record.
func (w *Writer) WriteAddress(a Address) {
	if v4 := a.IP.To4(); v4 != nil {
		w.Byte(4)
		for _, b := range v4 {
			w.Byte(^b)
		}
		w.Uint16(a.Port)
		return
	}
	w.Byte(6)
	// family is always AF_INET6 (23 on Windows RakNet, but only the
	// client interprets this; we mirror what is commonly emitted). The
	// family tag is little-endian; every other field in the record is
	// big-endian.
	w.Uint16LE(23)
	w.Uint16(a.Port)
	w.Uint32(a.FlowInfo)
	v6 := a.IP.To16()
	w.RawBytes(v6)
	w.Uint32(a.ScopeID)
}

// ReadAddress decodes a version-tagged address record.
func (r *Reader) ReadAddress() (Address, error) {
	version, err := r.Byte()
	if err != nil {
		return Address{}, err
	}
	switch version {
	case 4:
		b, err := r.Bytes(4)
		if err != nil {
			return Address{}, err
		}
		ip := make(net.IP, 4)
		for i := range b {
			ip[i] = ^b[i]
		}
		port, err := r.Uint16()
		if err != nil {
			return Address{}, err
		}
		return Address{IP: ip.To4(), Port: port}, nil
	case 6:
		if _, err := r.Uint16LE(); err != nil { // family
			return Address{}, err
		}
		port, err := r.Uint16()
		if err != nil {
			return Address{}, err
		}
		flow, err := r.Uint32()
		if err != nil {
			return Address{}, err
		}
		raw, err := r.Bytes(16)
		if err != nil {
			return Address{}, err
		}
		ip := make(net.IP, 16)
		copy(ip, raw)
		scope, err := r.Uint32()
		if err != nil {
			return Address{}, err
		}
		return Address{IP: ip, Port: port, FlowInfo: flow, ScopeID: scope}, nil
	default:
		return Address{}, fmt.Errorf("raknet: invalid address version tag %d", version)
	}
}

// WriteSystemAddresses writes the 20-slot RakNet compatibility array,
// filling unused slots (beyond len(addrs), or with a nil IP) with
// EmptyIPv4.
func (w *Writer) WriteSystemAddresses(addrs []Address) {
	const slots = 20
	for i := 0; i < slots; i++ {
		if i < len(addrs) && addrs[i].IP != nil {
			w.WriteAddress(addrs[i])
		} else {
			w.WriteAddress(EmptyIPv4)
		}
	}
}

// ReadSystemAddresses reads the 20-slot array.
func (r *Reader) ReadSystemAddresses() ([20]Address, error) {
	var out [20]Address
	for i := 0; i < 20; i++ {
		a, err := r.ReadAddress()
		if err != nil {
			return out, err
		}
		out[i] = a
	}
	return out, nil
}
