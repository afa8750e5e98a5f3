//go:build darwin && cgo

package menu

import "github.com/getlantern/systray"

// setIcon uses a template icon so the menu bar tints the padlock for light
// and dark appearance.
func setIcon(icon []byte) {
	if len(icon) == 0 {
		return
	}
	systray.SetTemplateIcon(icon, icon)
}
