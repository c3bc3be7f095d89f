// Package transport implements the bind/connect contract of a ZMTP socket
// over TCP and IPC (Unix-domain) byte streams. Transports expose only a
// bidirectional byte stream; framing is the codec's job.
package transport

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jabolina/go-zmtp/zmtp"
)

// Scheme identifies which net package dials/listens an Endpoint.
type Scheme string

const (
	SchemeTCP Scheme = "tcp"
	SchemeIPC Scheme = "ipc"
)

// Endpoint is a parsed tcp:// or ipc:// URI.
type Endpoint struct {
	Scheme Scheme
	Host   string // tcp only
	Port   int    // tcp only; 0 means OS-assigned
	Path   string // ipc only
}

// String renders the endpoint back into URI form.
func (e Endpoint) String() string {
	switch e.Scheme {
	case SchemeTCP:
		return fmt.Sprintf("tcp://%s:%d", e.Host, e.Port)
	case SchemeIPC:
		return fmt.Sprintf("ipc://%s", e.Path)
	default:
		return "invalid://"
	}
}

// Network returns the net.Listen/net.Dial network name for the endpoint.
func (e Endpoint) Network() string {
	if e.Scheme == SchemeIPC {
		return "unix"
	}
	return "tcp"
}

// Address returns the net.Listen/net.Dial address for the endpoint.
func (e Endpoint) Address() string {
	if e.Scheme == SchemeIPC {
		return e.Path
	}
	return fmt.Sprintf("%s:%d", normalizeHost(e.Host), e.Port)
}

// normalizeHost maps the wildcard host spellings accepted on bind to the
// form net.Listen expects; "*" becomes "" (all interfaces).
func normalizeHost(host string) string {
	if host == "*" {
		return ""
	}
	return host
}

// ParseEndpoint parses "tcp://HOST:PORT" or "ipc://PATH".
func ParseEndpoint(uri string) (Endpoint, error) {
	switch {
	case strings.HasPrefix(uri, "tcp://"):
		return parseTCP(strings.TrimPrefix(uri, "tcp://"))
	case strings.HasPrefix(uri, "ipc://"):
		path := strings.TrimPrefix(uri, "ipc://")
		if path == "" {
			return Endpoint{}, zmtp.ErrInvalidEndpoint
		}
		return Endpoint{Scheme: SchemeIPC, Path: path}, nil
	default:
		return Endpoint{}, zmtp.ErrInvalidEndpoint
	}
}

func parseTCP(hostport string) (Endpoint, error) {
	host, portStr, err := splitHostPort(hostport)
	if err != nil {
		return Endpoint{}, zmtp.ErrInvalidEndpoint
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 0 || port > 65535 {
		return Endpoint{}, zmtp.ErrInvalidEndpoint
	}
	return Endpoint{Scheme: SchemeTCP, Host: host, Port: port}, nil
}

// splitHostPort handles bracketed IPv6 literals ("[::1]:5555") in addition
// to the plain "host:port" form that net.SplitHostPort already supports,
// plus the bare "*" / "0.0.0.0" / "::" wildcard hosts.
func splitHostPort(hostport string) (host, port string, err error) {
	if strings.HasPrefix(hostport, "[") {
		idx := strings.Index(hostport, "]:")
		if idx < 0 {
			return "", "", fmt.Errorf("malformed ipv6 host:port %q", hostport)
		}
		return hostport[:idx+1], hostport[idx+2:], nil
	}
	idx := strings.LastIndex(hostport, ":")
	if idx < 0 {
		return "", "", fmt.Errorf("missing port in %q", hostport)
	}
	return hostport[:idx], hostport[idx+1:], nil
}
