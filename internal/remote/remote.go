// Package remote exposes the operations of the panbox backend as typed Go
// methods on top of a pluggable transport.
package remote

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnavailable is returned when the backend cannot be reached at all.
// It is a transport condition and never a status code.
var ErrUnavailable = errors.New("panbox service unavailable")

// Invoker performs a single remote call. A transport stores the reply of
// the backend into reply, which is a pointer to the expected Go type or nil
// for operations without a result.
type Invoker interface {
	Invoke(ctx context.Context, method string, args []interface{}, reply interface{}) error
}

// InvokerFunc adapts a function to the Invoker interface.
type InvokerFunc func(ctx context.Context, method string, args []interface{}, reply interface{}) error

func (f InvokerFunc) Invoke(ctx context.Context, method string, args []interface{}, reply interface{}) error {
	return f(ctx, method, args, reply)
}

// CallError reports a failure raised by the backend or the transport while
// a reachable backend handled method.
type CallError struct {
	Method  string
	Message string
}

func (e *CallError) Error() string {
	return fmt.Sprintf("remote call %s failed: %s", e.Method, e.Message)
}

// IsUnavailable reports whether err means the backend could not be reached.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
