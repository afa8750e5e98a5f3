package ipc

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/example/panbox/internal/logging"
	"github.com/example/panbox/internal/protocol"
	"github.com/example/panbox/internal/remote"
)

const connectionDeadline = 30 * time.Second

// Handler executes one decoded request and returns the value to encode as
// the result.
type Handler interface {
	Handle(ctx context.Context, method string, args []json.RawMessage) (interface{}, error)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, method string, args []json.RawMessage) (interface{}, error)

func (f HandlerFunc) Handle(ctx context.Context, method string, args []json.RawMessage) (interface{}, error) {
	return f(ctx, method, args)
}

// Server accepts one request per connection and answers it with handler.
type Server struct {
	token   string
	handler Handler
}

func NewServer(token string, handler Handler) (*Server, error) {
	if token == "" {
		return nil, errors.New("service token could not be resolved; set PANBOX_SERVICE_TOKEN or PANBOX_SECRET")
	}
	return &Server{token: token, handler: handler}, nil
}

// Run listens on endpoint and serves until ctx is canceled.
func (s *Server) Run(ctx context.Context, endpoint Endpoint) error {
	listener, err := endpoint.Listen()
	if err != nil {
		return fmt.Errorf("listen on %s: %w", endpoint, err)
	}
	logging.Infof("panbox bridge listening on %s", endpoint)
	return s.Serve(ctx, listener)
}

// Serve accepts connections on listener until ctx is canceled. The listener
// is closed on return.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	defer listener.Close()

	stop := context.AfterFunc(ctx, func() { _ = listener.Close() })
	defer stop()

	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				logging.Infof("panbox bridge shutting down")
				return context.Canceled
			default:
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				logging.Warnf("temporary accept error: %v", err)
				time.Sleep(250 * time.Millisecond)
				continue
			}
			return fmt.Errorf("accept connection: %w", err)
		}

		go s.handleConnection(ctx, conn)
	}
}

func (s *Server) handleConnection(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	} else {
		_ = conn.SetDeadline(time.Now().Add(connectionDeadline))
	}

	decoder := json.NewDecoder(conn)
	encoder := json.NewEncoder(conn)

	var req protocol.Request
	if err := decoder.Decode(&req); err != nil {
		logging.Warnf("ipc: failed to decode request: %v", err)
		return
	}

	if !s.authorize(req.Token) {
		logging.Warnf("ipc: rejected request %s with token %s", req.ID, logging.MaskIdentifier(req.Token))
		_ = encoder.Encode(protocol.Response{ID: req.ID, Error: "unauthorized"})
		return
	}

	resp := protocol.Response{ID: req.ID}
	result, err := s.handler.Handle(ctx, req.Method, req.Args)
	switch {
	case errors.Is(err, remote.ErrUnavailable):
		resp.Unavailable = true
		resp.Error = err.Error()
	case err != nil:
		resp.Error = err.Error()
	case result != nil:
		raw, err := json.Marshal(result)
		if err != nil {
			resp.Error = fmt.Sprintf("encode result: %v", err)
			break
		}
		resp.Result = raw
	}
	logging.Debugf("ipc: %s %s answered error=%q", req.ID, req.Method, resp.Error)
	if err := encoder.Encode(resp); err != nil {
		logging.Warnf("ipc: failed to write response: %v", err)
	}
}

func (s *Server) authorize(token string) bool {
	if token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(s.token)) == 1
}
