//go:build darwin
// +build darwin

package menu

import "os/exec"

func launchPath(target string) error {
	return exec.Command("open", target).Start()
}
