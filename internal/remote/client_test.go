package remote_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/example/panbox/internal/logging"
	"github.com/example/panbox/internal/protocol"
	"github.com/example/panbox/internal/remote"
	"github.com/example/panbox/internal/remote/remotetest"
	"github.com/example/panbox/internal/selection"
	"github.com/example/panbox/internal/status"
)

func TestStatusOperationsDecodePackedByte(t *testing.T) {
	fake := remotetest.New().
		Reply(protocol.MethodAddShare, status.New(status.ShareManager, status.ShareExists).Byte()).
		Reply(protocol.MethodMount, uint8(0))
	client := remote.NewClient(fake, time.Second)

	code, err := client.AddShare(context.Background(), "docs", "Dropbox", "/tmp/docs", []byte("pw"))
	if err != nil {
		t.Fatalf("AddShare returned error: %v", err)
	}
	if code.Component != status.ShareManager || code.Outcome != status.ShareExists {
		t.Fatalf("unexpected code %s", code)
	}

	code, err = client.Mount(context.Background())
	if err != nil {
		t.Fatalf("Mount returned error: %v", err)
	}
	if code.IsError() {
		t.Fatalf("expected OK, got %s", code)
	}

	calls := fake.Calls()
	want := []interface{}{"docs", "Dropbox", "/tmp/docs", []byte("pw")}
	if diff := cmp.Diff(want, calls[0].Args); diff != "" {
		t.Fatalf("unexpected addShare args (-want +got):\n%s", diff)
	}
}

func TestContactsConvertRows(t *testing.T) {
	fake := remotetest.New().Reply(protocol.MethodGetContacts, [][]string{
		{"a@x", "Alice <a@x>"},
		{"b@x", "Bob <b@x>", "ignored"},
	})
	client := remote.NewClient(fake, 0)

	items, err := client.Contacts(context.Background())
	if err != nil {
		t.Fatalf("Contacts returned error: %v", err)
	}
	want := []selection.Item{{ID: "a@x", Label: "Alice <a@x>"}, {ID: "b@x", Label: "Bob <b@x>"}}
	if diff := cmp.Diff(want, items); diff != "" {
		t.Fatalf("unexpected items (-want +got):\n%s", diff)
	}
}

func TestShortRowIsCallError(t *testing.T) {
	fake := remotetest.New().Reply(protocol.MethodGetOwnIdentity, [][]string{{"Email"}})
	client := remote.NewClient(fake, 0)

	_, err := client.OwnIdentity(context.Background())
	var callErr *remote.CallError
	if !errors.As(err, &callErr) {
		t.Fatalf("expected CallError, got %v", err)
	}
	if callErr.Method != protocol.MethodGetOwnIdentity {
		t.Fatalf("unexpected method %q", callErr.Method)
	}
}

func TestOwnIdentityAttributes(t *testing.T) {
	fake := remotetest.New().Reply(protocol.MethodGetOwnIdentity, [][]string{
		{"Email", "a@x"},
		{"Name", "Alice"},
	})
	attrs, err := remote.NewClient(fake, 0).OwnIdentity(context.Background())
	if err != nil {
		t.Fatalf("OwnIdentity returned error: %v", err)
	}
	want := []remote.Attribute{{Name: "Email", Value: "a@x"}, {Name: "Name", Value: "Alice"}}
	if diff := cmp.Diff(want, attrs); diff != "" {
		t.Fatalf("unexpected attributes (-want +got):\n%s", diff)
	}
}

func TestUnavailableBackend(t *testing.T) {
	fake := remotetest.New()
	fake.SetDown(true)
	_, err := remote.NewClient(fake, 0).IsMounted(context.Background())
	if !remote.IsUnavailable(err) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestNilIDListsAreSentEmpty(t *testing.T) {
	fake := remotetest.New().Reply(protocol.MethodDeleteContact, uint8(0))
	if _, err := remote.NewClient(fake, 0).DeleteContacts(context.Background(), nil); err != nil {
		t.Fatalf("DeleteContacts returned error: %v", err)
	}
	ids, ok := fake.Calls()[0].Args[0].([]string)
	if !ok || ids == nil {
		t.Fatalf("expected non-nil id slice, got %#v", fake.Calls()[0].Args[0])
	}
}

func TestClientAppliesTimeout(t *testing.T) {
	var deadline time.Time
	inv := remote.InvokerFunc(func(ctx context.Context, method string, args []interface{}, reply interface{}) error {
		deadline, _ = ctx.Deadline()
		*(reply.(*string)) = "1.0"
		return nil
	})
	if _, err := remote.NewClient(inv, time.Minute).Version(context.Background()); err != nil {
		t.Fatalf("Version returned error: %v", err)
	}
	if deadline.IsZero() {
		t.Fatalf("expected the call context to carry a deadline")
	}
}

func TestDebugLogOmitsSecrets(t *testing.T) {
	var buf bytes.Buffer
	logging.SetOutput(&buf)
	t.Cleanup(func() { logging.SetOutput(os.Stderr) })
	logging.EnableDebug()

	fake := remotetest.New().
		Reply(protocol.MethodVerifyContacts, uint8(0)).
		Reply(protocol.MethodAddShare, uint8(0))
	client := remote.NewClient(fake, time.Second)
	ctx := context.Background()

	if _, err := client.VerifyContacts(ctx, "/tmp/a.vcf", "834211"); err != nil {
		t.Fatalf("VerifyContacts returned error: %v", err)
	}
	if _, err := client.AddShare(ctx, "docs", "Dropbox", "/tmp/docs", []byte("hunter2")); err != nil {
		t.Fatalf("AddShare returned error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "/tmp/a.vcf") {
		t.Fatalf("expected the call to be logged, got %q", out)
	}
	for _, secret := range []string{"834211", "hunter2"} {
		if strings.Contains(out, secret) {
			t.Fatalf("debug log contains %q: %q", secret, out)
		}
	}
}
