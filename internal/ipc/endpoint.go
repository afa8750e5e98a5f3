package ipc

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

const (
	defaultServicePort = "127.0.0.1:47863"
	socketName         = "panbox.sock"
	dialTimeout        = 5 * time.Second
)

// Endpoint describes where the panbox bridge listens for local clients.
type Endpoint struct {
	Network string
	Address string
}

// DefaultEndpoint resolves the endpoint from addr, which may be empty, a
// socket path, host:port, or an explicit "unix://" or "tcp://" URL.
func DefaultEndpoint(addr string) Endpoint {
	addr = strings.TrimSpace(addr)
	switch {
	case addr == "":
	case strings.HasPrefix(addr, "unix://"):
		return Endpoint{Network: "unix", Address: strings.TrimPrefix(addr, "unix://")}
	case strings.HasPrefix(addr, "tcp://"):
		return Endpoint{Network: "tcp", Address: strings.TrimPrefix(addr, "tcp://")}
	case filepath.IsAbs(addr) || strings.HasSuffix(addr, ".sock"):
		return Endpoint{Network: "unix", Address: addr}
	default:
		return Endpoint{Network: "tcp", Address: addr}
	}

	if runtime.GOOS == "windows" {
		return Endpoint{Network: "tcp", Address: defaultServicePort}
	}

	dir := strings.TrimSpace(os.Getenv("XDG_RUNTIME_DIR"))
	if dir == "" {
		return Endpoint{Network: "unix", Address: filepath.Join(os.TempDir(), fmt.Sprintf("panbox-%d.sock", os.Getuid()))}
	}
	return Endpoint{Network: "unix", Address: filepath.Join(dir, socketName)}
}

// Listen binds to the configured endpoint. A stale unix socket left behind
// by a crashed bridge is replaced and the new one is private to the user.
func (e Endpoint) Listen() (net.Listener, error) {
	if e.Network != "unix" {
		return net.Listen(e.Network, e.Address)
	}

	if err := os.Remove(e.Address); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("remove stale socket: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(e.Address), 0o700); err != nil {
		return nil, fmt.Errorf("ensure socket dir: %w", err)
	}
	ln, err := net.Listen("unix", e.Address)
	if err != nil {
		return nil, err
	}
	if err := os.Chmod(e.Address, 0o600); err != nil {
		ln.Close()
		return nil, fmt.Errorf("restrict socket permissions: %w", err)
	}
	return ln, nil
}

// DialContext establishes a client connection with sensible timeouts.
func (e Endpoint) DialContext(ctx context.Context) (net.Conn, error) {
	d := &net.Dialer{Timeout: dialTimeout}
	return d.DialContext(ctx, e.Network, e.Address)
}

// String provides a readable representation for logs.
func (e Endpoint) String() string {
	return fmt.Sprintf("%s://%s", e.Network, e.Address)
}
