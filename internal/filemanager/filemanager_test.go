package filemanager

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type fakeTypes map[string]string

func (f fakeTypes) ShareStorageBackendType(_ context.Context, share string) (string, error) {
	t, ok := f[share]
	if !ok {
		return "", errors.New("unknown share")
	}
	return t, nil
}

func setupMount(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for _, dir := range []string{"dropbox", "local", "other"} {
		if err := os.Mkdir(filepath.Join(root, dir), 0o700); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
	}
	for _, file := range []string{"dropbox/report.txt", "local/notes.txt", "other/a.txt"} {
		if err := os.WriteFile(filepath.Join(root, file), []byte("x"), 0o600); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	return root
}

func actionIDs(m *Menu) []ActionID {
	if m == nil {
		return nil
	}
	ids := make([]ActionID, 0, len(m.Actions))
	for _, a := range m.Actions {
		ids = append(ids, a.ID)
	}
	return ids
}

func TestResolveSelection(t *testing.T) {
	root := setupMount(t)
	types := fakeTypes{"dropbox": BackendDropbox, "local": BackendDirectory}

	tests := []struct {
		name  string
		paths []string
		want  []ActionID
	}{
		{
			name:  "single dropbox share root",
			paths: []string{filepath.Join(root, "dropbox")},
			want:  []ActionID{ActionRemoveShare, ActionShareFolder},
		},
		{
			name:  "single directory share root",
			paths: []string{filepath.Join(root, "local")},
			want:  []ActionID{ActionRemoveShare},
		},
		{
			name:  "several share roots",
			paths: []string{filepath.Join(root, "dropbox"), filepath.Join(root, "local")},
			want:  []ActionID{ActionRemoveShare},
		},
		{
			name:  "file in dropbox share",
			paths: []string{filepath.Join(root, "dropbox", "report.txt")},
			want:  []ActionID{ActionShowRevisions},
		},
		{
			name:  "file in directory share",
			paths: []string{filepath.Join(root, "local", "notes.txt")},
			want:  []ActionID{},
		},
		{
			name:  "backend type lookup fails",
			paths: []string{filepath.Join(root, "other", "a.txt")},
			want:  []ActionID{},
		},
		{
			name:  "mount point itself",
			paths: []string{root},
			want:  []ActionID{},
		},
		{
			name:  "file uri",
			paths: []string{"file://" + filepath.ToSlash(filepath.Join(root, "dropbox"))},
			want:  []ActionID{ActionRemoveShare, ActionShareFolder},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			menu, err := ResolveSelection(context.Background(), root, tc.paths, types)
			if err != nil {
				t.Fatalf("ResolveSelection returned error: %v", err)
			}
			if menu == nil {
				t.Fatalf("expected a menu")
			}
			if menu.Label != MenuLabel {
				t.Fatalf("unexpected label %q", menu.Label)
			}
			if diff := cmp.Diff(tc.want, actionIDs(menu)); diff != "" {
				t.Fatalf("unexpected actions (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResolveSelectionLabelsAndArgs(t *testing.T) {
	root := setupMount(t)
	types := fakeTypes{"dropbox": BackendDropbox}
	share := filepath.Join(root, "dropbox")

	menu, err := ResolveSelection(context.Background(), root, []string{share}, types)
	if err != nil {
		t.Fatalf("ResolveSelection returned error: %v", err)
	}
	want := []Action{
		{ID: ActionRemoveShare, Label: "Remove Share", Args: []string{"properties"}},
		{ID: ActionShareFolder, Label: "Share Folder", Args: []string{"share-dir", share}},
	}
	if diff := cmp.Diff(want, menu.Actions); diff != "" {
		t.Fatalf("unexpected actions (-want +got):\n%s", diff)
	}

	menu, err = ResolveSelection(context.Background(), root, []string{share, filepath.Join(root, "local")}, types)
	if err != nil {
		t.Fatalf("ResolveSelection returned error: %v", err)
	}
	if menu.Actions[0].Label != "Remove Shares" {
		t.Fatalf("unexpected plural label %q", menu.Actions[0].Label)
	}
}

func TestResolveSelectionOutsideMountPoint(t *testing.T) {
	root := setupMount(t)
	outside := t.TempDir()

	menu, err := ResolveSelection(context.Background(), root, []string{outside, filepath.Join(outside, "x")}, fakeTypes{})
	if err != nil {
		t.Fatalf("ResolveSelection returned error: %v", err)
	}
	if menu != nil {
		t.Fatalf("expected no menu outside the mount point, got %+v", menu)
	}

	if _, err := ResolveSelection(context.Background(), root, nil, fakeTypes{}); err == nil {
		t.Fatalf("expected error for empty selection")
	}
}

func TestResolveBackground(t *testing.T) {
	root := setupMount(t)

	menu, err := ResolveBackground(root, root)
	if err != nil {
		t.Fatalf("ResolveBackground returned error: %v", err)
	}
	if diff := cmp.Diff([]ActionID{ActionAddShare}, actionIDs(menu)); diff != "" {
		t.Fatalf("unexpected actions (-want +got):\n%s", diff)
	}

	menu, err = ResolveBackground(root, filepath.Join(root, "dropbox"))
	if err != nil {
		t.Fatalf("ResolveBackground returned error: %v", err)
	}
	if menu == nil || len(menu.Actions) != 0 {
		t.Fatalf("expected empty panbox menu inside a share, got %+v", menu)
	}

	menu, err = ResolveBackground(root, t.TempDir())
	if err != nil {
		t.Fatalf("ResolveBackground returned error: %v", err)
	}
	if menu != nil {
		t.Fatalf("expected no menu outside the mount point")
	}
}
