package menu

// mountWatcher watches the mount point for shares appearing or vanishing.

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"
)

// defaultFlushDuration groups the burst of events a mount produces.
const defaultFlushDuration time.Duration = 250 * time.Millisecond

type mountWatcher struct {
	dir           string
	watcher       *fsnotify.Watcher
	update        chan struct{}
	flushDuration time.Duration
}

func newMountWatcher(dir string) (*mountWatcher, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("no mount point configured")
	}
	dir = filepath.Clean(dir)
	check, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("dir %q not found: %w", dir, err)
	}
	if !check.IsDir() {
		return nil, fmt.Errorf("%q is not a directory", dir)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("fsnotify new watcher error: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("fsnotify add error for dir %q: %w", dir, err)
	}

	return &mountWatcher{
		dir:           dir,
		watcher:       watcher,
		update:        make(chan struct{}, 1),
		flushDuration: defaultFlushDuration,
	}, nil
}

// Watch blocks until ctx is done or the watcher fails, signalling Updates
// once per burst of create, remove or rename events.
func (w *mountWatcher) Watch(ctx context.Context) error {
	eventChan := make(chan struct{})

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return errors.New("unexpected close from watcher.Errors")
				}
				return fmt.Errorf("unexpected notify error: %w", err)
			case e, ok := <-w.watcher.Events:
				if !ok {
					return errors.New("unexpected close from watcher.Events")
				}
				if !e.Has(fsnotify.Create) && !e.Has(fsnotify.Remove) && !e.Has(fsnotify.Rename) {
					continue
				}
				// ignore dot files
				if base := filepath.Base(e.Name); len(base) > 0 && base[0] == '.' {
					continue
				}
				select {
				case eventChan <- struct{}{}:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
	})

	g.Go(func() error {
		flush := false
		timer := time.NewTicker(w.flushDuration)
		defer timer.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-eventChan:
				flush = true
				timer.Reset(w.flushDuration)
			case <-timer.C:
				if flush {
					select {
					case w.update <- struct{}{}:
					default:
					}
					flush = false
				}
			}
		}
	})

	err := g.Wait()
	close(w.update)
	_ = w.watcher.Close()
	return err
}

// Updates signals that the mount point content changed.
func (w *mountWatcher) Updates() <-chan struct{} {
	return w.update
}
