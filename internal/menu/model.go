package menu

// Action identifies what a menu entry does when clicked.
type Action string

const (
	ActionNone        Action = ""
	ActionOpenShare   Action = "open-share"
	ActionToggleMount Action = "toggle-mount"
	ActionProperties  Action = "properties"
	ActionOpenFolder  Action = "open-folder"
	ActionAbout       Action = "about"
	ActionExit        Action = "exit"
)

// ItemKind distinguishes entries, separators and submenus.
type ItemKind string

const (
	KindEntry     ItemKind = "entry"
	KindSeparator ItemKind = "separator"
	KindSubmenu   ItemKind = "submenu"
)

const (
	TooltipConnected    = "Panbox"
	TooltipDisconnected = "No connection to Panbox service"
)

// Item is one node of the tray menu.
type Item struct {
	ID       string   `json:"id"`
	Kind     ItemKind `json:"kind"`
	Label    string   `json:"label,omitempty"`
	Action   Action   `json:"action,omitempty"`
	Arg      string   `json:"arg,omitempty"`
	Disabled bool     `json:"disabled,omitempty"`
	Children []Item   `json:"children,omitempty"`
}

// State is what the tray knows about the backend after a refresh.
type State struct {
	Reachable  bool
	Mounted    bool
	Shares     []string
	MountPoint string
}

// Model is a complete tray rendering.
type Model struct {
	Tooltip   string `json:"tooltip"`
	Connected bool   `json:"connected"`
	Items     []Item `json:"items"`
}

// BuildMenu derives the tray menu from state. Entries that need the backend
// are disabled when it cannot be reached; Exit is always enabled.
func BuildMenu(s State) Model {
	offline := !s.Reachable

	shares := Item{ID: "shares", Kind: KindSubmenu, Label: "Shares", Disabled: offline}
	if s.Reachable && s.Mounted && len(s.Shares) > 0 {
		for _, name := range s.Shares {
			shares.Children = append(shares.Children, Item{
				ID:     "share:" + name,
				Kind:   KindEntry,
				Label:  name,
				Action: ActionOpenShare,
				Arg:    name,
			})
		}
	} else {
		shares.Children = []Item{{ID: "no-shares", Kind: KindEntry, Label: "No Shares", Disabled: true}}
	}

	mountLabel := "Mount"
	if s.Mounted {
		mountLabel = "Unmount"
	}

	m := Model{
		Tooltip:   TooltipConnected,
		Connected: s.Reachable,
		Items: []Item{
			shares,
			{ID: "mount", Kind: KindEntry, Label: mountLabel, Action: ActionToggleMount, Disabled: offline},
			{ID: "properties", Kind: KindEntry, Label: "Properties", Action: ActionProperties, Disabled: offline},
			{ID: "sep-1", Kind: KindSeparator},
			{ID: "open-folder", Kind: KindEntry, Label: "Open Panbox Folder", Action: ActionOpenFolder, Arg: s.MountPoint, Disabled: s.MountPoint == ""},
			{ID: "sep-2", Kind: KindSeparator},
			{ID: "about", Kind: KindEntry, Label: "About", Action: ActionAbout, Disabled: offline},
			{ID: "exit", Kind: KindEntry, Label: "Exit", Action: ActionExit},
		},
	}
	if offline {
		m.Tooltip = TooltipDisconnected
	}
	return m
}
