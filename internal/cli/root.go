package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewRootCommand assembles the panbox command tree.
func NewRootCommand(opts Options) (*cobra.Command, *App) {
	app := &App{opts: opts.withDefaults()}

	root := &cobra.Command{
		Use:           "panbox",
		Short:         "Command-line client for the Panbox encryption service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			app.close()
		},
	}
	root.SetIn(app.opts.In)
	root.SetOut(app.opts.Out)
	root.SetErr(app.opts.Err)
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &usageError{msg: err.Error()}
	})

	flags := root.PersistentFlags()
	flags.StringVar(&app.configPath, "config", "", "config file (default $PANBOX_CONFIG_PATH or <user config dir>/panbox/config.yaml)")
	flags.StringVar(&app.transport, "transport", "", "backend transport: dbus or ipc")
	flags.BoolVar(&app.debug, "debug", false, "enable debug logging")
	flags.BoolVar(&app.plain, "plain", false, "report failures without the status diagnostic")
	flags.BoolVar(&app.noColor, "no-color", false, "disable coloured output")

	root.AddCommand(
		versionCmd(app),
		sharesCmd(app),
		cspsCmd(app),
		mountCmd(app),
		unmountCmd(app),
		closeCmd(app),
		statusCmd(app),
		propertiesCmd(app),
		explainCmd(app),
		identityCmd(app),
		contactsCmd(app),
		trayCmd(app),
		bridgeCmd(app),
		contextMenuCmd(app),
		shareDirCmd(app),
		revisionsCmd(app),
	)

	// short forms of the classic panboxcli options
	root.AddCommand(
		legacy("ls", sharesListCmd(app)),
		legacy("as", sharesAddCmd(app)),
		legacy("rs", sharesRemoveCmd(app)),
		legacy("ii", contactsImportCmd(app)),
		legacy("ei", identityExportCmd(app)),
		legacy("gc", contactsListCmd(app)),
		legacy("ac", contactsAddCmd(app)),
		legacy("dc", contactsDeleteCmd(app)),
	)
	return root, app
}

func legacy(name string, cmd *cobra.Command) *cobra.Command {
	if i := strings.IndexByte(cmd.Use, ' '); i >= 0 {
		cmd.Use = name + cmd.Use[i:]
	} else {
		cmd.Use = name
	}
	cmd.Hidden = true
	return cmd
}

// Execute runs the command line in args and returns the process exit code.
func Execute(ctx context.Context, args []string, opts Options) int {
	root, app := NewRootCommand(opts)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	app.close()
	if err != nil && strings.HasPrefix(err.Error(), "unknown command") {
		err = &usageError{msg: err.Error()}
	}
	if err != nil {
		fmt.Fprintln(app.opts.Err, "Error:", err)
		if code := ExitCode(err); code == ExitUsage {
			fmt.Fprintln(app.opts.Err, "for help use --help")
		}
	}
	return ExitCode(err)
}

func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return usageErrorf("%s expects %d argument(s), got %d", cmd.CommandPath(), n, len(args))
		}
		return nil
	}
}

func minArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < n {
			return usageErrorf("%s expects at least %d argument(s), got %d", cmd.CommandPath(), n, len(args))
		}
		return nil
	}
}
