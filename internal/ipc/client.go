package ipc

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/example/panbox/internal/logging"
	"github.com/example/panbox/internal/protocol"
	"github.com/example/panbox/internal/remote"
)

const defaultCallDeadline = 30 * time.Second

// Client reaches the backend through a panbox bridge listening on a local
// endpoint. It implements remote.Invoker.
type Client struct {
	endpoint Endpoint
	token    string
}

func NewClient(endpoint Endpoint, token string) *Client {
	return &Client{endpoint: endpoint, token: token}
}

// Invoke sends one request over a fresh connection and decodes the reply.
func (c *Client) Invoke(ctx context.Context, method string, args []interface{}, reply interface{}) error {
	req := protocol.Request{
		ID:     uuid.NewString(),
		Token:  c.token,
		Method: method,
		Args:   make([]json.RawMessage, len(args)),
	}
	for i, arg := range args {
		raw, err := json.Marshal(arg)
		if err != nil {
			return fmt.Errorf("encode argument %d of %s: %w", i, method, err)
		}
		req.Args[i] = raw
	}

	conn, err := c.endpoint.DialContext(ctx)
	if err != nil {
		return fmt.Errorf("dial %s: %w: %w", c.endpoint, remote.ErrUnavailable, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	} else {
		_ = conn.SetDeadline(time.Now().Add(defaultCallDeadline))
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	logging.Debugf("ipc request %s method=%s token=%s", req.ID, method, logging.MaskIdentifier(c.token))
	if err := json.NewEncoder(conn).Encode(req); err != nil {
		return c.connError(ctx, "send request", err)
	}

	var resp protocol.Response
	if err := json.NewDecoder(conn).Decode(&resp); err != nil {
		return c.connError(ctx, "read response", err)
	}
	if resp.ID != "" && resp.ID != req.ID {
		return &remote.CallError{Method: method, Message: fmt.Sprintf("response id %s does not match request %s", resp.ID, req.ID)}
	}
	if resp.Unavailable {
		return fmt.Errorf("%s via %s: %w: %s", method, c.endpoint, remote.ErrUnavailable, resp.Error)
	}
	if resp.Error != "" {
		return &remote.CallError{Method: method, Message: resp.Error}
	}
	if reply == nil || len(resp.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Result, reply); err != nil {
		return &remote.CallError{Method: method, Message: fmt.Sprintf("decode result: %v", err)}
	}
	return nil
}

// connError reports a broken exchange. The bridge going away mid-call is
// treated like it never answering.
func (c *Client) connError(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s: %w", op, ctxErr)
	}
	return fmt.Errorf("%s to %s: %w: %w", op, c.endpoint, remote.ErrUnavailable, err)
}
