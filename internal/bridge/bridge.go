// Package bridge relays JSON IPC requests to another transport, normally
// the D-Bus session bus, so clients without bus access can reach the
// backend.
package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/example/panbox/internal/ipc"
	"github.com/example/panbox/internal/logging"
	"github.com/example/panbox/internal/protocol"
	"github.com/example/panbox/internal/remote"
)

// Bridge is an ipc.Handler forwarding every request to backend.
type Bridge struct {
	backend remote.Invoker
	timeout time.Duration
}

func New(backend remote.Invoker, timeout time.Duration) *Bridge {
	return &Bridge{backend: backend, timeout: timeout}
}

// Handle decodes args with the signature of method and forwards the call.
// Backend errors, including remote.ErrUnavailable, are passed through for
// the server to report.
func (b *Bridge) Handle(ctx context.Context, method string, args []json.RawMessage) (interface{}, error) {
	m, ok := protocol.Lookup(method, len(args))
	if !ok {
		return nil, fmt.Errorf("unknown method: %s with %d arguments", method, len(args))
	}
	decoded, err := m.DecodeArgs(args)
	if err != nil {
		return nil, err
	}

	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	reply := m.NewReply()
	logging.Debugf("bridge: forwarding %s%v", method, m.Mask(decoded))
	if err := b.backend.Invoke(ctx, method, decoded, reply); err != nil {
		return nil, err
	}
	return reply, nil
}

// Run serves endpoint until ctx is canceled.
func Run(ctx context.Context, endpoint ipc.Endpoint, token string, backend remote.Invoker, timeout time.Duration) error {
	srv, err := ipc.NewServer(token, New(backend, timeout))
	if err != nil {
		return err
	}
	return srv.Run(ctx, endpoint)
}
