//go:build windows
// +build windows

package menu

import "os/exec"

func launchPath(target string) error {
	return exec.Command("rundll32", "url.dll,FileProtocolHandler", target).Start()
}
