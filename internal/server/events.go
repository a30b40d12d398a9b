package server

import (
	"net"

	"github.com/ventosilenzioso/raknet-go/internal/raknet"
)

// EventKind identifies what an Event reports to the game layer.
type EventKind int

const (
	// EventSessionOpened fires once a peer completes NewIncomingConnection
	// and the session reaches StateConnected.
	EventSessionOpened EventKind = iota
	// EventPayloadReceived carries one reassembled, ordered application
	// payload from a connected peer.
	EventPayloadReceived
	// EventSessionClosed fires once a session is removed from the table,
	// for any reason (Reason explains which).
	EventSessionClosed
)

// Event is a single upward notification from the transport to the game
// layer, delivered on Server.Events().
type Event struct {
	Kind    EventKind
	Peer    *net.UDPAddr
	TraceID string
	Payload []byte
	Reason  string
}

// CommandKind identifies what a Command asks the transport to do.
type CommandKind int

const (
	// CommandSendPayload queues an application payload for a connected
	// peer with the given Reliability and Channel.
	CommandSendPayload CommandKind = iota
	// CommandDisconnect sends DisconnectionNotification and removes the
	// session.
	CommandDisconnect
)

// Command is a single downward request from the game layer to the
// transport, submitted via Server.Submit.
type Command struct {
	Kind        CommandKind
	Peer        *net.UDPAddr
	Payload     []byte
	Reliability raknet.Reliability
	Channel     byte
}
