package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/panbox/internal/status"
)

func sharesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shares",
		Short: "Manage shares",
	}
	cmd.AddCommand(sharesListCmd(app), sharesAddCmd(app), sharesRemoveCmd(app), sharesEditCmd(app))
	return cmd
}

func sharesListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configured shares",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.backend()
			if err != nil {
				return err
			}
			shares, err := client.Shares(cmd.Context())
			if err != nil {
				return err
			}
			for _, share := range shares {
				app.println(share)
			}
			return nil
		},
	}
}

func sharesAddCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add <name> <csp> <path>",
		Short: "Add a new share for <csp> named <name> stored at <path>",
		Args:  exactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, csp, path := args[0], args[1], args[2]
			client, err := app.backend()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			shares, err := client.Shares(ctx)
			if err != nil {
				return err
			}
			for _, share := range shares {
				if share == name {
					app.println("Share already exists")
					return nil
				}
			}

			if info, err := os.Stat(path); err != nil || !info.IsDir() {
				app.reporter.Error(status.New(status.CLI, status.ShareNotExists),
					fmt.Sprintf("Parameter error: share-path '%s' does not exists!", path))
				return nil
			}

			password, err := app.prompt.Secret(fmt.Sprintf("Please insert identity-password to add share '%s':", name))
			if err != nil {
				return err
			}
			code, err := client.AddShare(ctx, name, csp, path, []byte(password))
			if err != nil {
				return err
			}
			app.report(code, "addShare successful", "Error on addShare!")
			return nil
		},
	}
}

func sharesRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove the share <name>",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			client, err := app.backend()
			if err != nil {
				return err
			}

			answer, err := app.prompt.YesNo(fmt.Sprintf("Do you really want to remove share '%s' ?", name))
			if err != nil {
				return err
			}
			if answer == "n" {
				return nil
			}
			answer, err = app.prompt.YesNo(fmt.Sprintf("Remove the share data source directory of share '%s', too ?", name))
			if err != nil {
				return err
			}

			code, err := client.RemoveShare(cmd.Context(), name, answer == "y")
			if err != nil {
				return err
			}
			app.report(code, "Share removed successful.", "Error on share remove!")
			return nil
		},
	}
}

func sharesEditCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <name> <new-name> <new-type> <new-path>",
		Short: "Rename a share or move it to another storage location",
		Args:  exactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.backend()
			if err != nil {
				return err
			}
			code, err := client.EditShare(cmd.Context(), args[0], args[1], args[2], args[3])
			if err != nil {
				return err
			}
			app.report(code, "Share edited successfully.", "Error on share edit!")
			return nil
		},
	}
}
