// Package filemanager decides which Panbox entries a file manager shows in
// its context menu for paths below the mount point.
package filemanager

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/panbox/internal/logging"
)

// ActionID names a context-menu entry.
type ActionID string

const (
	ActionAddShare      ActionID = "add-share"
	ActionRemoveShare   ActionID = "remove-share"
	ActionShareFolder   ActionID = "share-folder"
	ActionShowRevisions ActionID = "show-revisions"
)

// Backend types as reported by getShareStorageBackendType.
const (
	BackendDropbox   = "Dropbox"
	BackendDirectory = "Directory"
)

// MenuLabel is the label of the submenu grouping all actions.
const MenuLabel = "Panbox"

// Action is one context-menu entry. Args are the panbox sub-command and its
// arguments to run when the entry is activated.
type Action struct {
	ID    ActionID `json:"id"`
	Label string   `json:"label"`
	Args  []string `json:"args"`
}

// Menu is the Panbox submenu. A nil *Menu means no entry at all.
type Menu struct {
	Label   string   `json:"label"`
	Actions []Action `json:"actions"`
}

// BackendTypes looks up the storage backend of a share.
type BackendTypes interface {
	ShareStorageBackendType(ctx context.Context, share string) (string, error)
}

// ResolveSelection returns the menu for files selected in the file manager.
// It returns nil when none of paths is mountPoint or lies inside it; the
// mount point alone yields an empty menu.
func ResolveSelection(ctx context.Context, mountPoint string, paths []string, types BackendTypes) (*Menu, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no paths selected")
	}
	root, err := normalize(mountPoint)
	if err != nil {
		return nil, fmt.Errorf("mount point: %w", err)
	}

	type entry struct {
		path  string
		share string
	}
	var (
		selected []entry
		inside   bool
		allRoots = true
	)
	for _, raw := range paths {
		p, err := normalize(raw)
		if err != nil {
			return nil, err
		}
		rel, ok := relativeTo(root, p)
		if ok {
			inside = true
		}
		parts := strings.Split(rel, string(filepath.Separator))
		if !ok || rel == "." || len(parts) != 1 {
			allRoots = false
		}
		e := entry{path: p}
		if ok && rel != "." {
			e.share = parts[0]
		}
		selected = append(selected, e)
	}
	if !inside {
		return nil, nil
	}

	menu := &Menu{Label: MenuLabel}
	if allRoots {
		label := "Remove Share"
		if len(selected) > 1 {
			label = "Remove Shares"
		}
		menu.Actions = append(menu.Actions, Action{ID: ActionRemoveShare, Label: label, Args: []string{"properties"}})

		if len(selected) == 1 && backendType(ctx, types, selected[0].share) == BackendDropbox {
			menu.Actions = append(menu.Actions, Action{ID: ActionShareFolder, Label: "Share Folder", Args: []string{"share-dir", selected[0].path}})
		}
	}

	if len(selected) == 1 && selected[0].share != "" && isRegularFile(selected[0].path) {
		if t := backendType(ctx, types, selected[0].share); t != "" && t != BackendDirectory {
			menu.Actions = append(menu.Actions, Action{ID: ActionShowRevisions, Label: "Show Revisions", Args: []string{"revisions", selected[0].path}})
		}
	}
	return menu, nil
}

// ResolveBackground returns the menu for a click on the empty area of dir.
func ResolveBackground(mountPoint, dir string) (*Menu, error) {
	root, err := normalize(mountPoint)
	if err != nil {
		return nil, fmt.Errorf("mount point: %w", err)
	}
	p, err := normalize(dir)
	if err != nil {
		return nil, err
	}
	rel, ok := relativeTo(root, p)
	if !ok {
		return nil, nil
	}
	menu := &Menu{Label: MenuLabel}
	if rel == "." {
		menu.Actions = append(menu.Actions, Action{ID: ActionAddShare, Label: "Add Share", Args: []string{"properties"}})
	}
	return menu, nil
}

func backendType(ctx context.Context, types BackendTypes, share string) string {
	if types == nil || share == "" {
		return ""
	}
	t, err := types.ShareStorageBackendType(ctx, share)
	if err != nil {
		logging.Debugf("backend type of share %q: %v", share, err)
		return ""
	}
	return t
}

// normalize accepts plain paths and file:// URIs.
func normalize(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty path")
	}
	if strings.HasPrefix(raw, "file://") {
		u, err := url.Parse(raw)
		if err != nil {
			return "", fmt.Errorf("parse %q: %w", raw, err)
		}
		raw = u.Path
	}
	return filepath.Clean(raw), nil
}

func relativeTo(root, p string) (string, bool) {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return "", false
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return rel, true
}

func isRegularFile(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}
