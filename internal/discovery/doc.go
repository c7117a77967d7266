// Package discovery provides mDNS-based discovery of zdb debug servers.
//
// A debug server hosted by an emulator may advertise itself on the local
// network with the "_zdb._tcp" service type. The advertisement's TXT records
// describe how to talk to it:
//
//	transport=tcp|websocket   byte stream (default tcp)
//	framing=length-prefix|hex frame header format (default length-prefix)
//	path=/                    WebSocket request path
//	game=oot-gc-eu            free-form target description
//
// # Usage Example
//
//	scanner := discovery.NewScanner()
//	scanner.Timeout = 3 * time.Second
//	servers, err := scanner.Scan(ctx)
//	if err != nil {
//	    return err
//	}
//	for _, s := range servers {
//	    fmt.Println(s)
//	}
//
// # Network Requirements
//
// - Requires multicast support on the network interface
// - The emulator must be on the same local network segment
// - Firewall must allow mDNS (UDP port 5353)
package discovery
