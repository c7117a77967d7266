package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/muurk/zdb/internal/logging"
	"github.com/muurk/zdb/internal/mapfile"
	"github.com/muurk/zdb/internal/transport"
)

// CurrentVersion is the configuration file format version.
const CurrentVersion = 1

const (
	DefaultHost            = "localhost"
	DefaultPort            = 7340
	DefaultMapFile         = "build/z64.map"
	DefaultConnectRetries  = 3
	DefaultConnectTimeout  = 5 * time.Second
	DefaultDiscoverTimeout = 5 * time.Second
)

// Config is the whole zdb configuration file.
type Config struct {
	Version int `yaml:"version"`

	// Connection
	Host           string        `yaml:"host"`                    // Debug server host
	Port           int           `yaml:"port"`                    // Debug server TCP port
	Transport      string        `yaml:"transport"`               // "tcp" or "websocket"
	URL            string        `yaml:"url,omitempty"`           // ws:// endpoint when transport is websocket
	Framing        string        `yaml:"framing"`                 // "length-prefix" or "hex"
	Pipelined      bool          `yaml:"pipelined"`               // Keep bytes past a frame for the next one
	AwaitAcks      bool          `yaml:"await_acks"`              // Wait for a reply after every directive
	ConnectRetries int           `yaml:"connect_retries"`         // Extra attempts after a failed connect
	ConnectTimeout time.Duration `yaml:"connect_timeout"`         // Per-attempt connect limit
	ReplyTimeout   time.Duration `yaml:"reply_timeout,omitempty"` // Zero waits forever

	// Symbols
	MapFile       string   `yaml:"map_file"`       // Linker map of the running build
	OverlayPrefix string   `yaml:"overlay_prefix"` // Section name prefix marking overlays
	TableSymbols  []string `yaml:"table_symbols"`  // Overlay tables announced at startup

	// Discovery
	Discover        bool          `yaml:"discover"`         // Find the server over mDNS when host is unset
	DiscoverTimeout time.Duration `yaml:"discover_timeout"` // mDNS browse window

	LogLevel string `yaml:"log_level,omitempty"` // debug, info, warn, error; empty is silent
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Version:         CurrentVersion,
		Host:            DefaultHost,
		Port:            DefaultPort,
		Transport:       transport.NetworkTCP,
		Framing:         transport.LengthPrefixName,
		ConnectRetries:  DefaultConnectRetries,
		ConnectTimeout:  DefaultConnectTimeout,
		MapFile:         DefaultMapFile,
		OverlayPrefix:   mapfile.DefaultOverlayPrefix,
		TableSymbols:    append([]string(nil), mapfile.DefaultTableSymbols...),
		DiscoverTimeout: DefaultDiscoverTimeout,
	}
}

// Address returns host:port.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DialConfig returns the transport settings for connecting to the server.
func (c *Config) DialConfig() transport.DialConfig {
	return transport.DialConfig{
		Network: c.Transport,
		Address: c.Address(),
		URL:     c.URL,
		Timeout: c.ConnectTimeout,
		Retries: c.ConnectRetries,
	}
}

// Validate checks every field and reports all problems at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Version != CurrentVersion {
		errs = append(errs, fmt.Errorf("unsupported config version: %d (expected %d)", c.Version, CurrentVersion))
	}
	switch c.Transport {
	case transport.NetworkTCP:
		if c.Host == "" && !c.Discover {
			errs = append(errs, errors.New("host is required unless discover is enabled"))
		}
		if c.Port < 1 || c.Port > 65535 {
			errs = append(errs, fmt.Errorf("port %d out of range 1-65535", c.Port))
		}
	case transport.NetworkWebSocket:
		if !strings.HasPrefix(c.URL, "ws://") && !strings.HasPrefix(c.URL, "wss://") {
			errs = append(errs, fmt.Errorf("url %q must start with ws:// or wss:// for the websocket transport", c.URL))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown transport %q (valid: %s, %s)", c.Transport, transport.NetworkTCP, transport.NetworkWebSocket))
	}
	if _, err := transport.CodecByName(c.Framing); err != nil {
		errs = append(errs, err)
	}
	if c.MapFile == "" {
		errs = append(errs, errors.New("map_file is required"))
	}
	if c.OverlayPrefix == "" {
		errs = append(errs, errors.New("overlay_prefix must not be empty"))
	}
	if n := len(mapfile.DefaultTableSymbols); len(c.TableSymbols) != n {
		errs = append(errs, fmt.Errorf("table_symbols must name %d tables, got %d", n, len(c.TableSymbols)))
	}
	for i, name := range c.TableSymbols {
		if name == "" || strings.ContainsAny(name, " \t\r\n") {
			errs = append(errs, fmt.Errorf("table_symbols[%d] %q is not a symbol name", i, name))
		}
	}
	if c.ConnectRetries < 0 {
		errs = append(errs, fmt.Errorf("connect_retries %d must not be negative", c.ConnectRetries))
	}
	if c.ConnectTimeout < 0 || c.ReplyTimeout < 0 || c.DiscoverTimeout < 0 {
		errs = append(errs, errors.New("timeouts must not be negative"))
	}
	if c.LogLevel != "" {
		if _, err := logging.ParseLevel(c.LogLevel); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}
