// Package bus talks to the panbox backend over the D-Bus session bus.
package bus

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"

	"github.com/example/panbox/internal/logging"
	"github.com/example/panbox/internal/remote"
)

const (
	ClientName                      = "org.panbox.client"
	ClientPath      dbus.ObjectPath = "/org/panbox/client"
	ClientInterface                 = "org.panbox.client"
)

// D-Bus error names meaning nobody answered on the backend's name.
const (
	errServiceUnknown = "org.freedesktop.DBus.Error.ServiceUnknown"
	errNameHasNoOwner = "org.freedesktop.DBus.Error.NameHasNoOwner"
	errNoReply        = "org.freedesktop.DBus.Error.NoReply"
	errDisconnected   = "org.freedesktop.DBus.Error.Disconnected"
)

type caller interface {
	CallWithContext(ctx context.Context, method string, flags dbus.Flags, args ...interface{}) *dbus.Call
}

// Client implements remote.Invoker on the session bus. The connection is
// opened on first use and reopened after it drops.
type Client struct {
	mu      sync.Mutex
	conn    *dbus.Conn
	obj     caller
	connect func() (*dbus.Conn, error)
}

func NewClient() *Client {
	return &Client{connect: func() (*dbus.Conn, error) { return dbus.ConnectSessionBus() }}
}

func newClientWithObject(obj caller) *Client {
	return &Client{obj: obj}
}

func (c *Client) object() (caller, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.obj != nil {
		return c.obj, nil
	}
	if c.connect == nil {
		return nil, fmt.Errorf("session bus: %w", remote.ErrUnavailable)
	}
	conn, err := c.connect()
	if err != nil {
		return nil, fmt.Errorf("connect session bus: %w: %w", remote.ErrUnavailable, err)
	}
	logging.Debugf("connected to session bus")
	c.conn = conn
	c.obj = conn.Object(ClientName, ClientPath)
	return c.obj, nil
}

func (c *Client) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
		c.obj = nil
	}
}

// Invoke calls method on the backend object and stores the reply.
func (c *Client) Invoke(ctx context.Context, method string, args []interface{}, reply interface{}) error {
	obj, err := c.object()
	if err != nil {
		return err
	}

	call := obj.CallWithContext(ctx, ClientInterface+"."+method, 0, args...)
	if call.Err != nil {
		return c.classify(method, call.Err)
	}
	if reply == nil {
		return nil
	}
	if err := call.Store(reply); err != nil {
		return &remote.CallError{Method: method, Message: fmt.Sprintf("decode reply: %v", err)}
	}
	return nil
}

// classify separates an absent backend from a failure it reported.
func (c *Client) classify(method string, err error) error {
	if errors.Is(err, dbus.ErrClosed) {
		c.reset()
		return fmt.Errorf("%s: %w: %w", method, remote.ErrUnavailable, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: backend did not answer: %w: %w", method, remote.ErrUnavailable, err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	var dbusErr dbus.Error
	if errors.As(err, &dbusErr) {
		switch dbusErr.Name {
		case errServiceUnknown, errNameHasNoOwner, errNoReply:
			return fmt.Errorf("%s: %w: %s", method, remote.ErrUnavailable, dbusErr.Name)
		case errDisconnected:
			c.reset()
			return fmt.Errorf("%s: %w: %s", method, remote.ErrUnavailable, dbusErr.Name)
		}
		return &remote.CallError{Method: method, Message: fmt.Sprintf("%s: %s", dbusErr.Name, dbusErr.Error())}
	}
	return &remote.CallError{Method: method, Message: err.Error()}
}

// Close releases the session bus connection, if one was opened.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	c.obj = nil
	return err
}
