package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/example/panbox/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx, resolveArgs(os.Args[1:]), cli.Options{})
	stop()
	os.Exit(code)
}

// resolveArgs starts the tray when panbox is launched without a command.
func resolveArgs(args []string) []string {
	if len(args) == 0 {
		return []string{"tray"}
	}
	return args
}

// isTrayMode reports whether args run the tray agent.
func isTrayMode(args []string) bool {
	skipValue := false
	for _, raw := range resolveArgs(args) {
		arg := strings.TrimSpace(raw)
		switch {
		case skipValue:
			skipValue = false
		case arg == "--config", arg == "--transport":
			skipValue = true
		case arg == "", strings.HasPrefix(arg, "-"):
		default:
			return arg == "tray"
		}
	}
	return false
}
