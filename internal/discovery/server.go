package discovery

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Server represents a discovered debug server on the network
type Server struct {
	// Instance is the advertised service instance name (e.g., "Project64 on studio")
	Instance string

	// Hostname is the mDNS hostname (e.g., "studio.local.")
	Hostname string

	// IP is the preferred address, IPv4 when one was advertised
	IP string

	// Port is the advertised TCP port
	Port int

	// Metadata contains the mDNS TXT record data
	Metadata map[string]string

	// DiscoveredAt is when the server was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the server
func (s *Server) String() string {
	return fmt.Sprintf("%s (%s) at %s", s.Instance, s.Hostname, s.Address())
}

// Address returns host:port for a TCP dial.
func (s *Server) Address() string {
	return net.JoinHostPort(s.IP, strconv.Itoa(s.Port))
}

// Transport returns the advertised transport, "tcp" when none is given.
func (s *Server) Transport() string {
	if t := s.GetMetadata("transport"); t != "" {
		return t
	}
	return "tcp"
}

// Framing returns the advertised framing name, or "" for the default.
func (s *Server) Framing() string {
	return s.GetMetadata("framing")
}

// WebSocketURL returns the ws:// endpoint built from the address and the
// advertised path.
func (s *Server) WebSocketURL() string {
	path := s.GetMetadata("path")
	if path == "" {
		path = "/"
	}
	return "ws://" + s.Address() + path
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (s *Server) GetMetadata(key string) string {
	if s.Metadata == nil {
		return ""
	}
	return s.Metadata[key]
}
