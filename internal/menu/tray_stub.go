//go:build !cgo && !windows
// +build !cgo,!windows

package menu

import (
	"context"
	"errors"
)

type stubController struct{}

func newTrayController() trayController {
	return stubController{}
}

// Run reports that tray functionality is unavailable without cgo.
func (stubController) Run(context.Context, <-chan UpdatePayload, func(Action, string) bool) error {
	return errors.New("system tray is unavailable without cgo support")
}
