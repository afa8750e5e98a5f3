//go:build windows

package main

import (
	"os"

	"golang.org/x/sys/windows"
)

func init() {
	if !shouldHideConsole(os.Args[1:]) {
		return
	}
	hideConsoleWindow()
}

func shouldHideConsole(args []string) bool {
	if os.Getenv("PANBOX_SHOW_CONSOLE") != "" {
		return false
	}
	return isTrayMode(args)
}

func hideConsoleWindow() {
	kernel32 := windows.NewLazySystemDLL("kernel32.dll")
	user32 := windows.NewLazySystemDLL("user32.dll")

	getConsoleWindow := kernel32.NewProc("GetConsoleWindow")
	showWindow := user32.NewProc("ShowWindow")
	freeConsole := kernel32.NewProc("FreeConsole")

	hwnd, _, _ := getConsoleWindow.Call()
	if hwnd == 0 {
		return
	}

	const swHide = 0
	showWindow.Call(hwnd, swHide)
	freeConsole.Call()
}
