package raknet

import (
	"net"
	"testing"
)

func TestConnectedPingPongRoundTrip(t *testing.T) {
	ping := ConnectedPing{Timestamp: 1000}
	data := ping.Encode()
	if data[0] != IDConnectedPing {
		t.Errorf("first byte = 0x%02X, want 0x%02X", data[0], IDConnectedPing)
	}
	gotPing, err := DecodeConnectedPing(NewReader(data[1:]))
	if err != nil || gotPing != ping {
		t.Errorf("DecodeConnectedPing() = %+v, %v, want %+v, nil", gotPing, err, ping)
	}

	pong := ConnectedPong{PingTimestamp: 1000, PongTimestamp: 1005}
	data = pong.Encode()
	gotPong, err := DecodeConnectedPong(NewReader(data[1:]))
	if err != nil || gotPong != pong {
		t.Errorf("DecodeConnectedPong() = %+v, %v, want %+v, nil", gotPong, err, pong)
	}
}

func TestConnectionRequestRoundTrip(t *testing.T) {
	req := ConnectionRequest{ClientGUID: 42, Timestamp: 9999, Secure: false}
	data := req.Encode()

	got, err := DecodeConnectionRequest(NewReader(data[1:]))
	if err != nil {
		t.Fatalf("DecodeConnectionRequest() error = %v", err)
	}
	if got != req {
		t.Errorf("got %+v, want %+v", got, req)
	}
}

func TestConnectionRequestAcceptedRoundTrip(t *testing.T) {
	p := ConnectionRequestAccepted{
		ClientAddress:     AddressFromUDP(&net.UDPAddr{IP: net.IPv4(203, 0, 113, 5), Port: 12345}),
		SystemIndex:       0,
		RequestTimestamp:  10,
		AcceptedTimestamp: 20,
	}
	data := p.Encode()

	got, err := DecodeConnectionRequestAccepted(NewReader(data[1:]))
	if err != nil {
		t.Fatalf("DecodeConnectionRequestAccepted() error = %v", err)
	}
	if got.RequestTimestamp != p.RequestTimestamp || got.AcceptedTimestamp != p.AcceptedTimestamp {
		t.Errorf("got %+v, want %+v", got, p)
	}
	if !got.ClientAddress.IP.Equal(p.ClientAddress.IP) {
		t.Errorf("ClientAddress.IP = %v, want %v", got.ClientAddress.IP, p.ClientAddress.IP)
	}
	if len(got.SystemAddresses) != 20 {
		t.Errorf("len(SystemAddresses) = %d, want 20", len(got.SystemAddresses))
	}
}

func TestNewIncomingConnectionRoundTrip(t *testing.T) {
	p := NewIncomingConnection{
		ServerAddress:     AddressFromUDP(&net.UDPAddr{IP: net.IPv4(198, 51, 100, 7), Port: 19132}),
		RequestTimestamp:  30,
		AcceptedTimestamp: 40,
	}
	data := p.Encode()

	got, err := DecodeNewIncomingConnection(NewReader(data[1:]))
	if err != nil {
		t.Fatalf("DecodeNewIncomingConnection() error = %v", err)
	}
	if got.RequestTimestamp != p.RequestTimestamp || got.AcceptedTimestamp != p.AcceptedTimestamp {
		t.Errorf("got %+v, want %+v", got, p)
	}
}

func TestDisconnectionNotificationEncode(t *testing.T) {
	data := DisconnectionNotification{}.Encode()
	if len(data) != 1 || data[0] != IDDisconnectionNotification {
		t.Errorf("Encode() = %v, want single byte 0x%02X", data, IDDisconnectionNotification)
	}
}
