package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/example/panbox/internal/ipc"
	"github.com/example/panbox/internal/logging"
	"github.com/example/panbox/internal/protocol"
	"github.com/example/panbox/internal/remote"
	"github.com/example/panbox/internal/remote/remotetest"
	"github.com/example/panbox/internal/selection"
	"github.com/example/panbox/internal/status"
)

func serveBridge(t *testing.T, backend remote.Invoker) *remote.Client {
	t.Helper()
	srv, err := ipc.NewServer("bridge-token", New(backend, time.Second))
	if err != nil {
		t.Fatalf("NewServer returned error: %v", err)
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = srv.Serve(ctx, ln)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	endpoint := ipc.Endpoint{Network: "tcp", Address: ln.Addr().String()}
	return remote.NewClient(ipc.NewClient(endpoint, "bridge-token"), 5*time.Second)
}

func TestRelaysTypedCalls(t *testing.T) {
	backend := remotetest.New().
		Reply(protocol.MethodAddShare, status.New(status.ShareManager, status.ShareExists).Byte()).
		Reply(protocol.MethodGetContacts, [][]string{{"a@x", "Alice"}}).
		Reply(protocol.MethodIsMounted, true)
	client := serveBridge(t, backend)
	ctx := context.Background()

	code, err := client.AddShare(ctx, "docs", "Dropbox", "/d", []byte("pw"))
	if err != nil {
		t.Fatalf("AddShare returned error: %v", err)
	}
	if code != status.New(status.ShareManager, status.ShareExists) {
		t.Fatalf("unexpected code %s", code)
	}

	items, err := client.VCardContacts(ctx, "/tmp/c.vcf")
	if err != nil {
		t.Fatalf("VCardContacts returned error: %v", err)
	}
	if diff := cmp.Diff([]selection.Item{{ID: "a@x", Label: "Alice"}}, items); diff != "" {
		t.Fatalf("unexpected items (-want +got):\n%s", diff)
	}

	mounted, err := client.IsMounted(ctx)
	if err != nil || !mounted {
		t.Fatalf("IsMounted = %t, %v", mounted, err)
	}

	calls := backend.Calls()
	wantArgs := []interface{}{"docs", "Dropbox", "/d", []byte("pw")}
	if diff := cmp.Diff(wantArgs, calls[0].Args); diff != "" {
		t.Fatalf("backend saw unexpected args (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]interface{}{"/tmp/c.vcf"}, calls[1].Args); diff != "" {
		t.Fatalf("backend saw unexpected args (-want +got):\n%s", diff)
	}
}

func TestUnavailableBackendPropagates(t *testing.T) {
	backend := remotetest.New()
	backend.SetDown(true)
	client := serveBridge(t, backend)

	if _, err := client.Version(context.Background()); !remote.IsUnavailable(err) {
		t.Fatalf("expected ErrUnavailable through the bridge, got %v", err)
	}
}

func TestHandleRejectsUnknownMethod(t *testing.T) {
	b := New(remotetest.New(), 0)
	if _, err := b.Handle(context.Background(), "formatDisk", nil); err == nil {
		t.Fatalf("expected unknown method error")
	}
	if _, err := b.Handle(context.Background(), protocol.MethodMount, []json.RawMessage{json.RawMessage(`1`)}); err == nil {
		t.Fatalf("expected arity error")
	}
}

func TestHandleDoesNotLogPin(t *testing.T) {
	var buf bytes.Buffer
	logging.SetOutput(&buf)
	t.Cleanup(func() { logging.SetOutput(os.Stderr) })
	logging.EnableDebug()

	backend := remotetest.New().Reply(protocol.MethodVerifyContacts, uint8(0))
	b := New(backend, time.Second)
	args := []json.RawMessage{json.RawMessage(`"/tmp/a.vcf"`), json.RawMessage(`"834211"`)}
	if _, err := b.Handle(context.Background(), protocol.MethodVerifyContacts, args); err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}
	if diff := cmp.Diff([]interface{}{"/tmp/a.vcf", "834211"}, backend.Calls()[0].Args); diff != "" {
		t.Fatalf("unexpected forwarded args (-want +got):\n%s", diff)
	}
	if out := buf.String(); strings.Contains(out, "834211") || !strings.Contains(out, "verifyContacts") {
		t.Fatalf("unexpected debug log %q", out)
	}
}
