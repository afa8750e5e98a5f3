package cli

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/example/panbox/internal/bridge"
	"github.com/example/panbox/internal/bus"
	"github.com/example/panbox/internal/filemanager"
	"github.com/example/panbox/internal/ipc"
	"github.com/example/panbox/internal/logging"
	"github.com/example/panbox/internal/menu"
	"github.com/example/panbox/internal/remote"
	"github.com/example/panbox/internal/security"
)

const trayIconName = "panbox"

// redirectTrayLog sends the log to <cacheDir>/panbox/tray.log unless stderr
// is a terminal, as when the tray is started by the desktop session. The
// returned func restores stderr and closes the file.
func redirectTrayLog(stderr io.Writer, cacheDir string) (func(), error) {
	if f, ok := stderr.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return func() {}, nil
	}
	dir := filepath.Join(cacheDir, "panbox")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(filepath.Join(dir, "tray.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, err
	}
	logging.SetOutput(f)
	return func() {
		logging.SetOutput(stderr)
		f.Close()
	}, nil
}

func trayCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tray",
		Short: "Run the Panbox system tray icon",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cacheDir, err := os.UserCacheDir(); err == nil {
				restore, err := redirectTrayLog(app.opts.Err, cacheDir)
				if err != nil {
					logging.Warnf("tray log: %v", err)
				} else {
					defer restore()
				}
			}
			client, err := app.backend()
			if err != nil {
				return err
			}
			opts := menu.Options{
				MountPoint:      app.cfg.MountPoint,
				RefreshInterval: app.cfg.RefreshInterval,
			}
			if svc, err := bus.ServeTray(trayIconName); err != nil {
				logging.Debugf("tray notifications disabled: %v", err)
			} else {
				defer svc.Close()
				opts.Notify = svc.Notifier().Notify
			}
			return menu.NewRunner(client, opts).Start(cmd.Context())
		},
	}
}

func bridgeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "bridge",
		Short: "Serve the IPC endpoint and relay requests to the session bus service",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			token := security.ResolveServiceToken(app.cfg.Token, app.cfg.Secret)
			if token == "" {
				return errNoToken
			}

			var backend remote.Invoker = app.opts.Invoker
			if backend == nil {
				c := bus.NewClient()
				defer c.Close()
				backend = c
			}
			endpoint := ipc.DefaultEndpoint(app.cfg.ServiceAddr)
			logging.Infof("relaying %s to %s", endpoint, bus.ClientName)
			return bridge.Run(cmd.Context(), endpoint, token, backend, app.cfg.CallTimeout)
		},
	}
}

func contextMenuCmd(app *App) *cobra.Command {
	var background bool
	cmd := &cobra.Command{
		Use:   "context-menu <path>...",
		Short: "Print the file manager context menu for the given paths as JSON",
		Args:  minArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			mountPoint := app.cfg.MountPoint

			var types filemanager.BackendTypes
			if client, err := app.backend(); err != nil {
				logging.Debugf("context menu without backend: %v", err)
			} else {
				types = client
				if mp, err := client.MountPoint(ctx); err != nil {
					logging.Debugf("mount point lookup failed: %v", err)
				} else if mp != "" {
					mountPoint = mp
				}
			}

			var (
				m   *filemanager.Menu
				err error
			)
			if background {
				if len(args) != 1 {
					return usageErrorf("--background expects exactly one directory")
				}
				m, err = filemanager.ResolveBackground(mountPoint, args[0])
			} else {
				m, err = filemanager.ResolveSelection(ctx, mountPoint, args, types)
			}
			if err != nil {
				return err
			}

			enc := json.NewEncoder(app.opts.Out)
			enc.SetIndent("", "  ")
			return enc.Encode(m)
		},
	}
	cmd.Flags().BoolVar(&background, "background", false, "resolve the menu for the empty area of a directory")
	return cmd
}

func shareDirCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "share-dir <path>",
		Short: "Share a directory of a Dropbox backed share",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.backend()
			if err != nil {
				return err
			}
			code, err := client.ShareDirectory(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			app.report(code, "Directory shared successfully.", "Error on share directory!")
			return nil
		},
	}
}

func revisionsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "revisions <path>",
		Short: "Open the revision window for a file",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.backend()
			if err != nil {
				return err
			}
			code, err := client.OpenRevisionGUI(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if code.IsError() {
				app.report(code, "", "Error on open revisions!")
			}
			return nil
		},
	}
}
