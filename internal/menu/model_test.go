package menu

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func labels(items []Item) []string {
	out := make([]string, len(items))
	for i, item := range items {
		if item.Kind == KindSeparator {
			out[i] = "---"
			continue
		}
		out[i] = item.Label
	}
	return out
}

func TestBuildMenuMounted(t *testing.T) {
	m := BuildMenu(State{Reachable: true, Mounted: true, Shares: []string{"docs", "photos"}, MountPoint: "/home/u/Panbox"})

	want := []string{"Shares", "Unmount", "Properties", "---", "Open Panbox Folder", "---", "About", "Exit"}
	if diff := cmp.Diff(want, labels(m.Items)); diff != "" {
		t.Fatalf("unexpected top level (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"docs", "photos"}, labels(m.Items[0].Children)); diff != "" {
		t.Fatalf("unexpected shares (-want +got):\n%s", diff)
	}
	if m.Items[0].Children[1].Action != ActionOpenShare || m.Items[0].Children[1].Arg != "photos" {
		t.Fatalf("share entry not wired: %+v", m.Items[0].Children[1])
	}
	if m.Tooltip != TooltipConnected || !m.Connected {
		t.Fatalf("unexpected tooltip %q connected=%t", m.Tooltip, m.Connected)
	}
	if m.Items[4].Arg != "/home/u/Panbox" {
		t.Fatalf("open folder should target the mount point, got %q", m.Items[4].Arg)
	}
}

func TestBuildMenuUnmountedShowsNoShares(t *testing.T) {
	m := BuildMenu(State{Reachable: true, Mounted: false, Shares: []string{"docs"}})

	if m.Items[1].Label != "Mount" {
		t.Fatalf("expected Mount toggle, got %q", m.Items[1].Label)
	}
	children := m.Items[0].Children
	if len(children) != 1 || children[0].Label != "No Shares" || !children[0].Disabled {
		t.Fatalf("expected single disabled No Shares entry, got %+v", children)
	}
}

func TestBuildMenuEmptySharesShowsNoShares(t *testing.T) {
	m := BuildMenu(State{Reachable: true, Mounted: true})
	if got := labels(m.Items[0].Children); len(got) != 1 || got[0] != "No Shares" {
		t.Fatalf("expected No Shares, got %v", got)
	}
}

func TestBuildMenuOffline(t *testing.T) {
	m := BuildMenu(State{MountPoint: "/home/u/Panbox"})

	if m.Tooltip != TooltipDisconnected || m.Connected {
		t.Fatalf("unexpected offline tooltip %q", m.Tooltip)
	}
	enabled := map[string]bool{}
	for _, item := range m.Items {
		if item.Kind != KindSeparator {
			enabled[item.ID] = !item.Disabled
		}
	}
	want := map[string]bool{
		"shares":      false,
		"mount":       false,
		"properties":  false,
		"open-folder": true,
		"about":       false,
		"exit":        true,
	}
	if diff := cmp.Diff(want, enabled); diff != "" {
		t.Fatalf("unexpected enabled state (-want +got):\n%s", diff)
	}
}
