//go:build cgo || windows
// +build cgo windows

package menu

import (
	"context"
	"sync"

	"github.com/getlantern/systray"

	"github.com/example/panbox/internal/logging"
)

type systrayController struct {
	mu      sync.Mutex
	entries []trayEntry
}

type trayEntry struct {
	item   *systray.MenuItem
	cancel context.CancelFunc
}

func newTrayController() trayController {
	return &systrayController{}
}

func (c *systrayController) Run(ctx context.Context, updates <-chan UpdatePayload, handle func(Action, string) bool) error {
	done := make(chan struct{})

	go systray.Run(func() {
		setIcon(cloneDefaultIcon())
		systray.SetTitle("")
		systray.SetTooltip(TooltipConnected)
		go c.listen(ctx, updates, handle)
	}, func() {
		c.shutdown()
		close(done)
	})

	select {
	case <-ctx.Done():
		systray.Quit()
		<-done
		return ctx.Err()
	case <-done:
		return nil
	}
}

func (c *systrayController) listen(ctx context.Context, updates <-chan UpdatePayload, handle func(Action, string) bool) {
	for {
		select {
		case <-ctx.Done():
			systray.Quit()
			return
		case update, ok := <-updates:
			if !ok {
				systray.Quit()
				return
			}
			c.render(ctx, update, handle)
		}
	}
}

func (c *systrayController) render(ctx context.Context, update UpdatePayload, handle func(Action, string) bool) {
	setIcon(normalizedIcon(update.Icon))
	systray.SetTooltip(update.Model.Tooltip)

	c.mu.Lock()
	old := c.entries
	c.entries = nil
	c.mu.Unlock()

	// systray cannot remove entries, so stale ones are hidden.
	for _, entry := range old {
		entry.cancel()
		if entry.item != nil {
			entry.item.Hide()
		}
	}

	newEntries := c.renderGroup(ctx, update.Model.Items, nil, handle)

	c.mu.Lock()
	c.entries = newEntries
	c.mu.Unlock()
}

func (c *systrayController) renderGroup(ctx context.Context, items []Item, parent *systray.MenuItem, handle func(Action, string) bool) []trayEntry {
	entries := make([]trayEntry, 0, len(items))
	for _, item := range items {
		entries = append(entries, c.addMenuItem(ctx, item, parent, handle)...)
	}
	return entries
}

func (c *systrayController) addMenuItem(ctx context.Context, item Item, parent *systray.MenuItem, handle func(Action, string) bool) []trayEntry {
	switch item.Kind {
	case KindSeparator:
		if parent == nil {
			systray.AddSeparator()
		}
		return nil
	case KindSubmenu:
		mi := c.makeMenuItem(parent, item)
		ctxItem, cancel := context.WithCancel(ctx)
		go drainClicks(ctxItem, mi.ClickedCh)
		entries := []trayEntry{{item: mi, cancel: cancel}}
		return append(entries, c.renderGroup(ctx, item.Children, mi, handle)...)
	default:
		mi := c.makeMenuItem(parent, item)
		ctxItem, cancel := context.WithCancel(ctx)
		go func(ch <-chan struct{}, action Action, arg string) {
			for {
				select {
				case <-ctxItem.Done():
					return
				case _, ok := <-ch:
					if !ok {
						return
					}
					if handle(action, arg) {
						logging.Debugf("tray exit requested")
						systray.Quit()
						return
					}
				}
			}
		}(mi.ClickedCh, item.Action, item.Arg)
		return []trayEntry{{item: mi, cancel: cancel}}
	}
}

func (c *systrayController) makeMenuItem(parent *systray.MenuItem, item Item) *systray.MenuItem {
	var mi *systray.MenuItem
	if parent == nil {
		mi = systray.AddMenuItem(item.Label, "")
	} else {
		mi = parent.AddSubMenuItem(item.Label, "")
	}
	if item.Disabled {
		mi.Disable()
	}
	return mi
}

func drainClicks(ctx context.Context, ch <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-ch:
			if !ok {
				return
			}
		}
	}
}

func (c *systrayController) shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, entry := range c.entries {
		entry.cancel()
	}
	c.entries = nil
}
