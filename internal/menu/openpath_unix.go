//go:build !windows && !darwin
// +build !windows,!darwin

package menu

import "os/exec"

func launchPath(target string) error {
	return exec.Command("xdg-open", target).Start()
}
