package menu

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/example/panbox/internal/logging"
	"github.com/example/panbox/internal/remote"
	"github.com/example/panbox/internal/status"
)

const defaultRefreshInterval = 30 * time.Second

// trayController renders updates and reports clicks through handle. handle
// returns true when the tray should quit.
type trayController interface {
	Run(ctx context.Context, updates <-chan UpdatePayload, handle func(Action, string) bool) error
}

// UpdatePayload encapsulates tray menu updates and icon data.
type UpdatePayload struct {
	Model Model
	Icon  []byte
}

// Options tune a Runner.
type Options struct {
	// MountPoint is used until the backend reports its own.
	MountPoint      string
	RefreshInterval time.Duration
	// Notify, when set, shows desktop notifications.
	Notify func(ctx context.Context, message string) error
}

// Runner keeps the tray menu in sync with the backend.
type Runner struct {
	client          *remote.Client
	mountPoint      string
	refreshInterval time.Duration
	notify          func(ctx context.Context, message string) error
	open            func(path string) error

	mu             sync.RWMutex
	lastState      State
	lastDigest     string
	lastIconDigest string
	synced         bool

	tray            trayController
	updates         chan UpdatePayload
	refreshRequests chan struct{}
}

// NewRunner constructs a Runner talking to the backend through client.
func NewRunner(client *remote.Client, opts Options) *Runner {
	return newRunner(client, opts, newTrayController())
}

func newRunner(client *remote.Client, opts Options, tray trayController) *Runner {
	interval := opts.RefreshInterval
	if interval <= 0 {
		interval = defaultRefreshInterval
	}
	return &Runner{
		client:          client,
		mountPoint:      opts.MountPoint,
		refreshInterval: interval,
		notify:          opts.Notify,
		open:            openPath,
		tray:            tray,
		updates:         make(chan UpdatePayload, 1),
		refreshRequests: make(chan struct{}, 1),
	}
}

// Start runs the tray, the refresh loop and the mount point watcher until
// ctx is canceled or the user picks Exit.
func (r *Runner) Start(ctx context.Context) error {
	logging.Infof("panbox tray starting")
	logging.Debugf("tray runner initialising with refresh interval %s", r.refreshInterval)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	if r.tray != nil {
		g.Go(func() error {
			defer cancel()
			return r.tray.Run(ctx, r.updates, func(action Action, arg string) bool {
				return r.handle(ctx, action, arg)
			})
		})
	}

	g.Go(func() error {
		return r.loop(ctx)
	})

	if watcher, err := newMountWatcher(r.mountPoint); err != nil {
		logging.Debugf("mount point watcher disabled: %v", err)
	} else {
		g.Go(func() error {
			if err := watcher.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logging.Warnf("mount point watcher stopped: %v", err)
			}
			return nil
		})
		g.Go(func() error {
			for range watcher.Updates() {
				logging.Debugf("mount point changed; refreshing")
				r.requestRefresh()
			}
			return nil
		})
	}

	err := g.Wait()
	logging.Infof("panbox tray stopping")
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (r *Runner) loop(ctx context.Context) error {
	logging.Debugf("performing initial backend sync")
	if err := r.syncOnce(ctx); err != nil {
		logging.Warnf("initial sync failed: %v", err)
	}

	ticker := time.NewTicker(r.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := r.syncOnce(ctx); err != nil {
				logging.Warnf("tray refresh failed: %v", err)
			}
		case <-r.refreshRequests:
			logging.Debugf("manual refresh requested")
			if err := r.syncOnce(ctx); err != nil {
				logging.Warnf("manual tray refresh failed: %v", err)
			}
		}
	}
}

// LatestState returns what the last refresh learned about the backend.
func (r *Runner) LatestState() State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s := r.lastState
	s.Shares = append([]string(nil), r.lastState.Shares...)
	return s
}

func (r *Runner) syncOnce(ctx context.Context) error {
	state, err := r.fetchState(ctx)
	r.setTrayState(ctx, state)
	return err
}

func (r *Runner) fetchState(ctx context.Context) (State, error) {
	state := State{MountPoint: r.mountPoint}

	mountPoint, err := r.client.MountPoint(ctx)
	if err != nil {
		if remote.IsUnavailable(err) {
			logging.Debugf("backend unreachable: %v", err)
			return state, nil
		}
		return state, err
	}
	state.Reachable = true
	if mountPoint != "" {
		state.MountPoint = mountPoint
	}

	if state.Mounted, err = r.client.IsMounted(ctx); err != nil {
		return state, err
	}
	if state.Mounted {
		if state.Shares, err = r.client.Shares(ctx); err != nil {
			return state, err
		}
	}
	logging.Debugf("backend state: mounted=%t shares=%d", state.Mounted, len(state.Shares))
	return state, nil
}

func (r *Runner) setTrayState(ctx context.Context, state State) {
	model := BuildMenu(state)
	icon := trayIcon(state.Reachable)
	digest := hashModel(model)
	iconDigest := hashBytes(icon)

	r.mu.Lock()
	wasReachable := r.lastState.Reachable || !r.synced
	r.lastState = state
	r.synced = true
	if digest != "" && digest == r.lastDigest && iconDigest == r.lastIconDigest {
		r.mu.Unlock()
		return
	}
	r.lastDigest = digest
	r.lastIconDigest = iconDigest
	r.mu.Unlock()

	logging.Debugf("published tray state with %d items (digest=%s iconDigest=%s)", len(model.Items), digest, iconDigest)
	r.publish(model, icon)

	if wasReachable && !state.Reachable {
		r.showNotification(ctx, TooltipDisconnected)
	}
}

func (r *Runner) showNotification(ctx context.Context, message string) {
	if r.notify == nil {
		return
	}
	if err := r.notify(ctx, message); err != nil {
		logging.Debugf("notification failed: %v", err)
	}
}

func (r *Runner) requestRefresh() {
	if r.refreshRequests == nil {
		return
	}
	select {
	case r.refreshRequests <- struct{}{}:
	default:
	}
}

// publish hands update to the tray, replacing an update it has not picked
// up yet.
func (r *Runner) publish(model Model, icon []byte) {
	if r.updates == nil {
		return
	}

	update := UpdatePayload{
		Model: model,
		Icon:  cloneIcon(icon),
	}

	select {
	case r.updates <- update:
	default:
		select {
		case <-r.updates:
		default:
		}
		select {
		case r.updates <- update:
		default:
		}
	}
}

// handle executes a clicked menu action and reports whether the tray
// should quit.
func (r *Runner) handle(ctx context.Context, action Action, arg string) bool {
	logging.Debugf("menu action %s %q", action, arg)
	state := r.LatestState()

	switch action {
	case ActionToggleMount:
		var (
			code status.Code
			err  error
		)
		if state.Mounted {
			code, err = r.client.Unmount(ctx)
		} else {
			code, err = r.client.Mount(ctx)
		}
		r.report(ctx, string(action), callErr(code, err))
		r.requestRefresh()
	case ActionProperties:
		r.report(ctx, string(action), callErr(r.client.OpenProperties(ctx)))
	case ActionAbout:
		r.report(ctx, string(action), r.client.About(ctx))
	case ActionOpenFolder:
		if err := r.open(arg); err != nil {
			logging.Warnf("open panbox folder %q: %v", arg, err)
		}
	case ActionOpenShare:
		target := filepath.Join(state.MountPoint, arg)
		if err := r.open(target); err != nil {
			logging.Warnf("open share %q: %v", target, err)
		}
	case ActionExit:
		if state.Reachable {
			code, err := r.client.Shutdown(ctx)
			if !remote.IsUnavailable(err) {
				r.report(ctx, string(action), callErr(code, err))
			}
		}
		return true
	default:
		logging.Debugf("ignoring menu action %q", action)
	}
	return false
}

func (r *Runner) report(ctx context.Context, op string, err error) {
	var failed *status.Error
	switch {
	case err == nil:
	case remote.IsUnavailable(err):
		logging.Warnf("%s: %v", op, err)
		r.showNotification(ctx, TooltipDisconnected)
		r.requestRefresh()
	case errors.As(err, &failed):
		logging.Errorf("%s failed: %v", op, err)
		r.showNotification(ctx, failed.Code.Describe())
	default:
		logging.Errorf("%s failed: %v", op, err)
	}
}

// callErr folds a failed status code into the call error.
func callErr(code status.Code, err error) error {
	if err != nil {
		return err
	}
	return code.Err()
}

func hashModel(model Model) string {
	payload, err := json.Marshal(model)
	if err != nil {
		return ""
	}

	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

func hashBytes(icon []byte) string {
	normalized := normalizedIcon(icon)
	if len(normalized) == 0 {
		return ""
	}
	sum := sha256.Sum256(normalized)
	return hex.EncodeToString(sum[:])
}
