package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/panbox/internal/logging"
	"github.com/example/panbox/internal/remote"
	"github.com/example/panbox/internal/status"
)

func versionCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Aliases: []string{"v"},
		Short:   "Show the version number of the Panbox service",
		Args:    exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.backend()
			if err != nil {
				return err
			}
			version, err := client.Version(cmd.Context())
			if err != nil {
				return err
			}
			app.println(version)
			return nil
		},
	}
}

func cspsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "csps",
		Aliases: []string{"lc"},
		Short:   "List all supported cloud storage providers",
		Args:    exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.backend()
			if err != nil {
				return err
			}
			csps, err := client.CSPs(cmd.Context())
			if err != nil {
				return err
			}
			for _, csp := range csps {
				app.println(csp)
			}
			return nil
		},
	}
}

func mountCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "mount",
		Short: "Mount all shares",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.backend()
			if err != nil {
				return err
			}
			code, err := client.Mount(cmd.Context())
			if err != nil {
				return err
			}
			app.report(code, "Shares mounted successfully.", "Error on mount!")
			return nil
		},
	}
}

func unmountCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "unmount",
		Short: "Unmount all shares",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.backend()
			if err != nil {
				return err
			}
			code, err := client.Unmount(cmd.Context())
			if err != nil {
				return err
			}
			app.report(code, "Shares unmounted successfully.", "Error on unmount!")
			return nil
		},
	}
}

func closeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "close",
		Short: "Shut the local Panbox service down",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.backend()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			isRemote, err := client.IsRemote(ctx)
			if err != nil {
				return err
			}
			if isRemote {
				logging.Debugf("service is remote; not shutting it down")
				return nil
			}

			code, err := client.Shutdown(ctx)
			switch {
			case remote.IsUnavailable(err):
				// the service exits before it answers
				logging.Debugf("shutdown: %v", err)
				return nil
			case err != nil:
				return err
			}
			if code.IsError() {
				app.report(code, "", "Error on shutdown!")
			}
			return nil
		},
	}
}

func statusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check whether the Panbox service answers and is mounted",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			const (
				running    = "running..."
				notRunning = "not running..."
			)
			client, err := app.backend()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			app.printf("Transport:\t\t%s\n", app.cfg.Transport)
			version, err := client.Version(ctx)
			switch {
			case remote.IsUnavailable(err):
				app.printf("Panbox-Backend:\t\t%s\n", notRunning)
				return nil
			case err != nil:
				return err
			}
			app.printf("Panbox-Backend:\t\t%s (version %s)\n", running, version)

			locale, err := client.Locale(ctx)
			if err != nil {
				return err
			}
			app.printf("Panbox-Locale:\t\t%s\n", locale)

			mounted, err := client.IsMounted(ctx)
			if err != nil {
				return err
			}
			state := "not mounted"
			if mounted {
				state = "mounted"
			}
			app.printf("Panbox-Filesystem:\t%s\n", state)
			return nil
		},
	}
}

func propertiesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "properties",
		Short: "Open the Panbox settings window",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.backend()
			if err != nil {
				return err
			}
			code, err := client.OpenProperties(cmd.Context())
			if err != nil {
				return err
			}
			if code.IsError() {
				app.report(code, "", "Error on open properties!")
			}
			return nil
		},
	}
}

func explainCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "explain CODE",
		Short: "Describe a status code given as COMPONENT/OUTCOME or as a binary error-code",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := parseStatusCode(args[0])
			if err != nil {
				return usageErrorf("%v", err)
			}
			app.println(code.String())
			if code.IsError() {
				app.println(code.Describe())
			}
			return nil
		},
	}
}

// parseStatusCode accepts the error-code printed by the detailed policy,
// for example 10101, as well as the symbolic form.
func parseStatusCode(raw string) (status.Code, error) {
	raw = strings.TrimSpace(raw)
	if n, err := strconv.ParseUint(strings.TrimPrefix(raw, "0b"), 2, 8); err == nil {
		code := status.FromByte(uint8(n))
		if !code.Component.Valid() || !code.Outcome.Valid() {
			return status.Code{}, fmt.Errorf("status: %s is not a known error-code", raw)
		}
		return code, nil
	}
	return status.Parse(raw)
}
