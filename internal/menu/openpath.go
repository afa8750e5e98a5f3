package menu

import (
	"errors"
	"os"
)

// openPath checks the target exists before deferring to the platform
// specific file manager launcher.
func openPath(target string) error {
	if target == "" {
		return errors.New("no path to open")
	}
	if _, err := os.Stat(target); err != nil {
		return err
	}
	return launchPath(target)
}
