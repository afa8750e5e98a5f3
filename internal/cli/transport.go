package cli

import (
	"errors"
	"fmt"

	"github.com/example/panbox/internal/bus"
	"github.com/example/panbox/internal/config"
	"github.com/example/panbox/internal/ipc"
	"github.com/example/panbox/internal/logging"
	"github.com/example/panbox/internal/remote"
	"github.com/example/panbox/internal/security"
)

var errNoToken = errors.New("no service token configured; set PANBOX_SERVICE_TOKEN or PANBOX_SECRET")

// newInvoker builds the transport selected by cfg.
func newInvoker(cfg *config.Config) (remote.Invoker, func() error, error) {
	switch cfg.Transport {
	case config.TransportDBus:
		logging.Debugf("using session bus transport to %s", bus.ClientName)
		c := bus.NewClient()
		return c, c.Close, nil
	case config.TransportIPC:
		token := security.ResolveServiceToken(cfg.Token, cfg.Secret)
		if token == "" {
			return nil, nil, errNoToken
		}
		endpoint := ipc.DefaultEndpoint(cfg.ServiceAddr)
		logging.Debugf("using ipc transport at %s (token %s)", endpoint, logging.MaskIdentifier(token))
		return ipc.NewClient(endpoint, token), nil, nil
	default:
		return nil, nil, fmt.Errorf("unsupported transport %q", cfg.Transport)
	}
}
