// Package config loads the server's JSON configuration file, in the shape
// cppla-moto/config/setting.go reads setting.json: a package-level
// unmarshal into an exported struct, a MOTO_CONFIG-style environment
// override for the path, and a Reload entry point. Unlike the teacher
// (which prints load failures with fmt.Printf and keeps running on a nil
// config), load errors are returned to the caller so main can decide
// whether to fall back to defaults.
package config

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
)

// EnvPath is the environment variable the config path can be overridden
// with, mirroring cppla-moto's MOTO_CONFIG.
const EnvPath = "RAKNET_CONFIG"

// DefaultPath is used when EnvPath is unset.
const DefaultPath = "config/server.json"

// MOTD holds the fields rendered into the UnconnectedPong MOTD string.
type MOTD struct {
	ServerName  string `json:"server_name"`
	GameVersion string `json:"game_version"`
	WorldName   string `json:"world_name"`
	GameMode    string `json:"game_mode"`
	GameModeID  int    `json:"game_mode_id"`
	EditorMode  bool   `json:"editor_mode"`
}

// Config is the top-level server configuration.
type Config struct {
	BindHost      string `json:"bind_host"`
	BindPort      int    `json:"bind_port"`
	MetricsAddr   string `json:"metrics_addr"`
	ServerGUID    int64  `json:"server_guid"`
	MaxPlayers    int    `json:"max_players"`
	MOTD          MOTD   `json:"motd"`
	LogLevel      string `json:"log_level"`
	LogPath       string `json:"log_path"`
}

// Default returns the baseline configuration used when no file is present,
// with a freshly randomized server GUID.
func Default() Config {
	return Config{
		BindHost:    "0.0.0.0",
		BindPort:    19132,
		MetricsAddr: "127.0.0.1:9100",
		ServerGUID:  randomGUID(),
		MaxPlayers:  20,
		MOTD: MOTD{
			ServerName:  "RakNet Go Server",
			GameVersion: "1.21.0",
			WorldName:   "world",
			GameMode:    "Survival",
			GameModeID:  0,
		},
		LogLevel: "info",
		LogPath:  "logs/server.log",
	}
}

// Load reads and unmarshals the config file at path, filling any zero
// fields from Default().
func Load(path string) (Config, error) {
	cfg := Default()
	buf, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := json.Unmarshal(buf, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	applyDefaults(&cfg)
	return cfg, nil
}

// LoadFromEnv loads from EnvPath, or DefaultPath if unset.
func LoadFromEnv() (Config, error) {
	path := os.Getenv(EnvPath)
	if path == "" {
		path = DefaultPath
	}
	return Load(path)
}

// Reload re-reads path into a fresh Config, leaving the caller's existing
// config untouched on error.
func Reload(path string) (Config, error) {
	return Load(path)
}

func applyDefaults(cfg *Config) {
	d := Default()
	if cfg.BindHost == "" {
		cfg.BindHost = d.BindHost
	}
	if cfg.BindPort == 0 {
		cfg.BindPort = d.BindPort
	}
	if cfg.MetricsAddr == "" {
		cfg.MetricsAddr = d.MetricsAddr
	}
	if cfg.ServerGUID == 0 {
		cfg.ServerGUID = randomGUID()
	}
	if cfg.MaxPlayers == 0 {
		cfg.MaxPlayers = d.MaxPlayers
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = d.LogLevel
	}
	if cfg.LogPath == "" {
		cfg.LogPath = d.LogPath
	}
}

func randomGUID() int64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 1
	}
	v := int64(binary.BigEndian.Uint64(b[:]))
	if v < 0 {
		v = -v
	}
	return v
}
