//go:build (cgo || windows) && !darwin

package menu

import "github.com/getlantern/systray"

func setIcon(icon []byte) {
	if len(icon) == 0 {
		return
	}
	systray.SetIcon(icon)
}
