package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/example/panbox/internal/remote"
)

func identityCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "identity",
		Short: "Manage the own identity",
	}
	cmd.AddCommand(
		identityInitCmd(app),
		identityResetCmd(app),
		identityDeleteCmd(app),
		identityBackupCmd(app),
		identityRestoreCmd(app),
		identityShowCmd(app),
		identityExportCmd(app),
	)
	return cmd
}

// readIdentity prompts for the fields of a new identity.
func (a *App) readIdentity() (remote.Identity, error) {
	var (
		id  remote.Identity
		err error
	)
	if id.Email, err = a.prompt.Line("E-mail:"); err != nil {
		return id, err
	}
	if id.FirstName, err = a.prompt.Line("First name:"); err != nil {
		return id, err
	}
	if id.LastName, err = a.prompt.Line("Last name:"); err != nil {
		return id, err
	}
	if id.Device, err = a.prompt.Line("Device-name:"); err != nil {
		return id, err
	}
	password, err := a.prompt.NewPassword()
	if err != nil {
		return id, err
	}
	id.Password = []byte(password)
	return id, nil
}

func identityInitCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Generate a new identity",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.backend()
			if err != nil {
				return err
			}
			id, err := app.readIdentity()
			if err != nil {
				return err
			}
			code, err := client.CreateIdentity(cmd.Context(), id)
			if err != nil {
				return err
			}
			app.report(code, "Identity created successfully.", "Error on identity initialization!")
			return nil
		},
	}
}

func identityResetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Reset the Panbox configuration with a new identity",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.backend()
			if err != nil {
				return err
			}
			backup, err := app.prompt.Confirm("Backup old Identity (Y/N):")
			if err != nil {
				return err
			}
			id, err := app.readIdentity()
			if err != nil {
				return err
			}
			code, err := client.ResetIdentity(cmd.Context(), id, backup)
			if err != nil {
				return err
			}
			app.report(code, "Identity reset successfully.", "Error on reset identity!")
			return nil
		},
	}
}

func identityDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete",
		Short: "Delete the own identity",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.backend()
			if err != nil {
				return err
			}
			code, err := client.DeleteIdentity(cmd.Context())
			if err != nil {
				return err
			}
			app.report(code, "Identity deleted successfully.", "Error on delete identity!")
			return nil
		},
	}
}

func identityBackupCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Back the identity up into the hidden .pbbackup directory",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.backend()
			if err != nil {
				return err
			}
			code, err := client.BackupIdentity(cmd.Context())
			if err != nil {
				return err
			}
			app.report(code, "Identity backup successfully.", "Error on backup identity!")
			return nil
		},
	}
}

func identityRestoreCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <backup-file>",
		Short: "Restore an identity backup",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.backend()
			if err != nil {
				return err
			}
			backup, err := app.prompt.Confirm("backup old identity (Y/N):")
			if err != nil {
				return err
			}
			code, err := client.RestoreIdentity(cmd.Context(), args[0], backup)
			if err != nil {
				return err
			}
			app.report(code, "Identity restored successfully.", "Error on identity restore!")
			return nil
		},
	}
}

func identityShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display the own identity",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.backend()
			if err != nil {
				return err
			}
			attrs, err := client.OwnIdentity(cmd.Context())
			if err != nil {
				return err
			}
			for _, attr := range attrs {
				app.printf("%s: %s\n", attr.Name, attr.Value)
			}
			return nil
		},
	}
}

func identityExportCmd(app *App) *cobra.Command {
	var multiple bool
	cmd := &cobra.Command{
		Use:   "export <path>",
		Short: "Export the own identity, or selected contacts with --multiple",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.backend()
			if err != nil {
				return err
			}
			if multiple {
				return app.exportContacts(cmd.Context(), client, args[0])
			}
			code, err := client.ExportOwnIdentity(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			app.report(code, "Identity export successful.", "Identity export failed!")
			return nil
		},
	}
	cmd.Flags().BoolVar(&multiple, "multiple", false, "select the contacts to export")
	return cmd
}

func (a *App) exportContacts(ctx context.Context, client *remote.Client, path string) error {
	ids, err := a.selectContacts(ctx, client, "Insert ID's of contacts to extract (comma separated, interval x-y):")
	if err != nil {
		return err
	}
	code, err := client.ExportContacts(ctx, ids, path)
	if err != nil {
		return err
	}
	a.report(code, "Contact(s) export successful.", "Error on export contacts(s)!")
	return nil
}
