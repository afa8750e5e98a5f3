package menu

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/example/panbox/internal/protocol"
	"github.com/example/panbox/internal/remote"
	"github.com/example/panbox/internal/remote/remotetest"
	"github.com/example/panbox/internal/status"
)

func mountedBackend() *remotetest.Fake {
	return remotetest.New().
		Reply(protocol.MethodGetMountPoint, "/mnt/panbox").
		Reply(protocol.MethodIsMounted, true).
		Reply(protocol.MethodGetShares, []string{"docs", "photos"})
}

type testRunner struct {
	*Runner
	mu       sync.Mutex
	opened   []string
	notified []string
}

func newTestRunner(fake *remotetest.Fake, tray trayController) *testRunner {
	tr := &testRunner{}
	tr.Runner = newRunner(remote.NewClient(fake, time.Second), Options{
		MountPoint: "/home/u/Panbox",
		Notify: func(_ context.Context, message string) error {
			tr.mu.Lock()
			defer tr.mu.Unlock()
			tr.notified = append(tr.notified, message)
			return nil
		},
	}, tray)
	tr.open = func(path string) error {
		tr.mu.Lock()
		defer tr.mu.Unlock()
		tr.opened = append(tr.opened, path)
		return nil
	}
	return tr
}

func drainUpdate(t *testing.T, r *Runner) (UpdatePayload, bool) {
	t.Helper()
	select {
	case u := <-r.updates:
		return u, true
	default:
		return UpdatePayload{}, false
	}
}

func TestSyncPublishesAndDeduplicates(t *testing.T) {
	r := newTestRunner(mountedBackend(), nil)
	ctx := context.Background()

	if err := r.syncOnce(ctx); err != nil {
		t.Fatalf("syncOnce returned error: %v", err)
	}
	update, ok := drainUpdate(t, r.Runner)
	if !ok {
		t.Fatalf("expected an update after the first sync")
	}
	want := BuildMenu(State{Reachable: true, Mounted: true, Shares: []string{"docs", "photos"}, MountPoint: "/mnt/panbox"})
	if diff := cmp.Diff(want, update.Model); diff != "" {
		t.Fatalf("unexpected model (-want +got):\n%s", diff)
	}
	if len(update.Icon) == 0 {
		t.Fatalf("expected icon data")
	}

	if err := r.syncOnce(ctx); err != nil {
		t.Fatalf("syncOnce returned error: %v", err)
	}
	if _, ok := drainUpdate(t, r.Runner); ok {
		t.Fatalf("unchanged state must not publish again")
	}
}

func TestPublishKeepsOnlyLatest(t *testing.T) {
	r := newTestRunner(remotetest.New(), nil)
	r.publish(BuildMenu(State{}), nil)
	r.publish(BuildMenu(State{Reachable: true}), nil)

	update, ok := drainUpdate(t, r.Runner)
	if !ok || !update.Model.Connected {
		t.Fatalf("expected latest connected model, got %+v", update.Model)
	}
	if _, ok := drainUpdate(t, r.Runner); ok {
		t.Fatalf("stale update left in channel")
	}
}

func TestSyncOfflineNotifiesOnce(t *testing.T) {
	fake := remotetest.New()
	fake.SetDown(true)
	r := newTestRunner(fake, nil)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := r.syncOnce(ctx); err != nil {
			t.Fatalf("offline sync must not fail, got %v", err)
		}
	}
	update, ok := drainUpdate(t, r.Runner)
	if !ok {
		t.Fatalf("expected offline update")
	}
	if update.Model.Tooltip != TooltipDisconnected {
		t.Fatalf("unexpected tooltip %q", update.Model.Tooltip)
	}
	if diff := cmp.Diff([]string{TooltipDisconnected}, r.notified); diff != "" {
		t.Fatalf("unexpected notifications (-want +got):\n%s", diff)
	}
	if got := r.LatestState().MountPoint; got != "/home/u/Panbox" {
		t.Fatalf("expected configured mount point while offline, got %q", got)
	}
}

func TestHandleToggleMount(t *testing.T) {
	fake := mountedBackend().Reply(protocol.MethodUnmount, status.New(status.Filesystem, status.OK).Byte())
	r := newTestRunner(fake, nil)
	ctx := context.Background()
	if err := r.syncOnce(ctx); err != nil {
		t.Fatalf("syncOnce returned error: %v", err)
	}

	if quit := r.handle(ctx, ActionToggleMount, ""); quit {
		t.Fatalf("toggle mount must not quit")
	}
	methods := fake.Methods()
	if methods[len(methods)-1] != protocol.MethodUnmount {
		t.Fatalf("expected unmount when mounted, got %v", methods)
	}
	select {
	case <-r.refreshRequests:
	default:
		t.Fatalf("expected a refresh request after toggling")
	}
}

func TestHandleNotifiesFailedStatus(t *testing.T) {
	failed := status.New(status.Filesystem, status.StorageError)
	fake := mountedBackend().Reply(protocol.MethodOpenProperties, failed.Byte())
	r := newTestRunner(fake, nil)
	ctx := context.Background()

	r.handle(ctx, ActionProperties, "")
	r.handle(ctx, ActionAbout, "")
	if diff := cmp.Diff([]string{failed.Describe()}, r.notified); diff != "" {
		t.Fatalf("unexpected notifications (-want +got):\n%s", diff)
	}
}

func TestHandleOpenShare(t *testing.T) {
	r := newTestRunner(mountedBackend(), nil)
	ctx := context.Background()
	if err := r.syncOnce(ctx); err != nil {
		t.Fatalf("syncOnce returned error: %v", err)
	}
	r.handle(ctx, ActionOpenShare, "docs")
	r.handle(ctx, ActionOpenFolder, "/mnt/panbox")

	want := []string{filepath.Join("/mnt/panbox", "docs"), "/mnt/panbox"}
	if diff := cmp.Diff(want, r.opened); diff != "" {
		t.Fatalf("unexpected opened paths (-want +got):\n%s", diff)
	}
}

func TestHandleExit(t *testing.T) {
	fake := mountedBackend().Fail(protocol.MethodShutdown, errors.New("org.freedesktop.DBus.Error.NoReply"))
	r := newTestRunner(fake, nil)
	ctx := context.Background()
	if err := r.syncOnce(ctx); err != nil {
		t.Fatalf("syncOnce returned error: %v", err)
	}
	if !r.handle(ctx, ActionExit, "") {
		t.Fatalf("exit must quit the tray")
	}
	methods := fake.Methods()
	if methods[len(methods)-1] != protocol.MethodShutdown {
		t.Fatalf("expected shutdown when reachable, got %v", methods)
	}

	offline := remotetest.New()
	offline.SetDown(true)
	r = newTestRunner(offline, nil)
	_ = r.syncOnce(ctx)
	if !r.handle(ctx, ActionExit, "") {
		t.Fatalf("exit must quit the tray when offline")
	}
	if len(offline.Calls()) != 0 {
		t.Fatalf("offline exit must not call the backend, got %v", offline.Methods())
	}
}

type fakeTray struct {
	got chan UpdatePayload
}

func (f *fakeTray) Run(ctx context.Context, updates <-chan UpdatePayload, handle func(Action, string) bool) error {
	select {
	case u := <-updates:
		f.got <- u
	case <-ctx.Done():
		return ctx.Err()
	}
	if !handle(ActionExit, "") {
		return errors.New("exit did not quit")
	}
	return nil
}

func TestStartStopsWhenTrayExits(t *testing.T) {
	tray := &fakeTray{got: make(chan UpdatePayload, 1)}
	fake := mountedBackend().Reply(protocol.MethodShutdown, uint8(0))
	r := newTestRunner(fake, tray)
	r.mountPoint = ""

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.Start(ctx); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	u := <-tray.got
	if !u.Model.Connected {
		t.Fatalf("expected connected model, got %+v", u.Model)
	}
}

func TestMountWatcherSignalsNewShare(t *testing.T) {
	dir := t.TempDir()
	w, err := newMountWatcher(dir)
	if err != nil {
		t.Fatalf("newMountWatcher returned error: %v", err)
	}
	w.flushDuration = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Watch(ctx) }()
	defer func() {
		cancel()
		<-done
	}()

	if err := os.Mkdir(filepath.Join(dir, "docs"), 0o700); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	select {
	case <-w.Updates():
	case <-time.After(5 * time.Second):
		t.Fatalf("no update after creating a share directory")
	}
}

func TestMountWatcherRejectsMissingDir(t *testing.T) {
	if _, err := newMountWatcher(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Fatalf("expected error for missing mount point")
	}
	if _, err := newMountWatcher(""); err == nil {
		t.Fatalf("expected error for empty mount point")
	}
}
