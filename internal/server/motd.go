package server

import "github.com/ventosilenzioso/raknet-go/internal/raknet"

// motdFields builds the MOTD schema for the current server state, per
// SPEC_FULL.md's configuration section: static identity from config, live
// player counts from the session table.
func (s *Server) motdFields() raknet.MOTDFields {
	port := uint16(s.cfg.BindPort)
	return raknet.MOTDFields{
		ServerName:    s.cfg.MOTD.ServerName,
		Protocol:      raknet.ProtocolVersion,
		GameVersion:   s.cfg.MOTD.GameVersion,
		OnlinePlayers: len(s.sessions),
		MaxPlayers:    s.cfg.MaxPlayers,
		ServerGUID:    s.cfg.ServerGUID,
		WorldName:     s.cfg.MOTD.WorldName,
		GameMode:      s.cfg.MOTD.GameMode,
		GameModeID:    s.cfg.MOTD.GameModeID,
		IPv4Port:      port,
		IPv6Port:      port,
		EditorMode:    s.cfg.MOTD.EditorMode,
	}
}
