package main

import (
	"strconv"
	"time"

	"github.com/pkg/errors"

	"mockircd.dev/server/internal/config"
)

// Config holds a server's configuration.
type Config struct {
	ListenHost string
	ListenPort string

	// TLSListenPort may be blank to disable the TLS listener.
	TLSListenPort string
	CertFile      string
	KeyFile       string

	ServerName  string
	ServerInfo  string
	Version     string
	CreatedDate string
	MOTD        string

	MaxNickLength int

	// PingTime is how long a registered client may be idle before we send it
	// a PING.
	PingTime time.Duration

	// PingFrequency is how often the liveness supervisor wakes up to issue
	// PINGs and sweep for dead clients.
	PingFrequency time.Duration

	// DeadTime is how long a client may go without answering a PING before we
	// consider it dead and evict it.
	DeadTime time.Duration

	// Oper name to password.
	Opers map[string]string
}

// defaultConfig returns the defaults named in the external interface section
// of the spec, used before any config file is overlaid on top.
func defaultConfig() Config {
	return Config{
		ListenHost:    "0.0.0.0",
		ListenPort:    "6667",
		ServerName:    "mock.server",
		ServerInfo:    "a mock IRC server",
		Version:       "mockircd-0.1",
		CreatedDate:   time.Now().Format(time.RFC1123),
		MaxNickLength: 9,
		PingTime:      30 * time.Second,
		PingFrequency: 100 * time.Second,
		DeadTime:      280 * time.Second,
		Opers:         map[string]string{},
	}
}

// loadConfig reads the config file at path, if non-empty, and overlays its
// keys on top of the defaults. An empty path runs with defaults only.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()

	if path == "" {
		return cfg, nil
	}

	raw, err := config.ReadStringMap(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "unable to read configuration")
	}

	if v, ok := raw["listen-host"]; ok && v != "" {
		cfg.ListenHost = v
	}
	if v, ok := raw["listen-port"]; ok {
		cfg.ListenPort = v
	}
	if v, ok := raw["listen-port-tls"]; ok {
		cfg.TLSListenPort = v
	}
	if v, ok := raw["tls-cert-file"]; ok {
		cfg.CertFile = v
	}
	if v, ok := raw["tls-key-file"]; ok {
		cfg.KeyFile = v
	}
	if v, ok := raw["server-name"]; ok && v != "" {
		cfg.ServerName = v
	}
	if v, ok := raw["server-info"]; ok && v != "" {
		cfg.ServerInfo = v
	}
	if v, ok := raw["version"]; ok && v != "" {
		cfg.Version = v
	}
	if v, ok := raw["created-date"]; ok && v != "" {
		cfg.CreatedDate = v
	}
	if v, ok := raw["motd"]; ok {
		cfg.MOTD = v
	}

	if v, ok := raw["max-nick-length"]; ok && v != "" {
		n, err := strconv.ParseInt(v, 10, 8)
		if err != nil {
			return Config{}, errors.Wrap(err, "max-nick-length is not valid")
		}
		cfg.MaxNickLength = int(n)
	}

	if v, ok := raw["ping-time"]; ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, errors.Wrap(err, "ping-time is in invalid format")
		}
		cfg.PingTime = d
	}
	if v, ok := raw["ping-frequency"]; ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, errors.Wrap(err, "ping-frequency is in invalid format")
		}
		cfg.PingFrequency = d
	}
	if v, ok := raw["dead-time"]; ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, errors.Wrap(err, "dead-time is in invalid format")
		}
		cfg.DeadTime = d
	}

	if v, ok := raw["opers-config"]; ok && v != "" {
		opers, err := config.ReadStringMap(v)
		if err != nil {
			return Config{}, errors.Wrap(err, "unable to load opers config")
		}
		cfg.Opers = opers
	}

	return cfg, nil
}
