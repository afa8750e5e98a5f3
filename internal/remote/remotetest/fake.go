// Package remotetest provides an in-memory Invoker for tests.
package remotetest

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/example/panbox/internal/remote"
)

// Call records one invocation seen by a Fake.
type Call struct {
	Method string
	Args   []interface{}
}

// Fake answers remote calls from a table of canned replies keyed by method
// name. Replies are assigned to the caller's reply pointer by reflection.
type Fake struct {
	mu      sync.Mutex
	replies map[string][]interface{}
	errs    map[string]error
	calls   []Call

	// Down makes every call fail with remote.ErrUnavailable.
	Down bool
}

func New() *Fake {
	return &Fake{
		replies: make(map[string][]interface{}),
		errs:    make(map[string]error),
	}
}

// Reply queues value as the answer to the next call of method. The last
// queued value keeps answering once the queue is drained.
func (f *Fake) Reply(method string, value interface{}) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies[method] = append(f.replies[method], value)
	return f
}

// Fail makes calls of method return err.
func (f *Fake) Fail(method string, err error) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[method] = err
	return f
}

// SetDown toggles reachability of the fake backend.
func (f *Fake) SetDown(down bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Down = down
}

// Calls returns a copy of the calls received so far.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// Methods returns the method names received so far, in order.
func (f *Fake) Methods() []string {
	calls := f.Calls()
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.Method
	}
	return out
}

func (f *Fake) Invoke(ctx context.Context, method string, args []interface{}, reply interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.Down {
		return fmt.Errorf("dial fake backend: %w", remote.ErrUnavailable)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	f.calls = append(f.calls, Call{Method: method, Args: append([]interface{}(nil), args...)})
	if err, ok := f.errs[method]; ok {
		return err
	}

	queue := f.replies[method]
	if len(queue) == 0 {
		if reply == nil {
			return nil
		}
		return &remote.CallError{Method: method, Message: "no reply configured"}
	}
	value := queue[0]
	if len(queue) > 1 {
		f.replies[method] = queue[1:]
	}
	if reply == nil {
		return nil
	}

	dst := reflect.ValueOf(reply)
	if dst.Kind() != reflect.Ptr || dst.IsNil() {
		return fmt.Errorf("reply for %s must be a non-nil pointer", method)
	}
	src := reflect.ValueOf(value)
	if !src.Type().AssignableTo(dst.Elem().Type()) {
		if !src.Type().ConvertibleTo(dst.Elem().Type()) {
			return fmt.Errorf("reply for %s: cannot assign %T to %s", method, value, dst.Elem().Type())
		}
		src = src.Convert(dst.Elem().Type())
	}
	dst.Elem().Set(src)
	return nil
}
