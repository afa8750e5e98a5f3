package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/example/panbox/internal/remote"
	"github.com/example/panbox/internal/selection"
	"github.com/example/panbox/internal/status"
)

func contactsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contacts",
		Short: "Manage the address book",
	}
	cmd.AddCommand(
		contactsListCmd(app),
		contactsAddCmd(app),
		contactsDeleteCmd(app),
		contactsExportCmd(app),
		contactsImportCmd(app),
	)
	return cmd
}

// listContacts fetches the address book and prints it with the indices a
// selection refers to.
func (a *App) listContacts(ctx context.Context, client *remote.Client) ([]selection.Item, error) {
	items, err := client.Contacts(ctx)
	if err != nil {
		return nil, err
	}
	if err := selection.Render(a.opts.Out, items); err != nil {
		return nil, err
	}
	return items, nil
}

func (a *App) selectContacts(ctx context.Context, client *remote.Client, question string) ([]string, error) {
	items, err := a.listContacts(ctx, client)
	if err != nil {
		return nil, err
	}
	return a.selectItems(items, question)
}

func (a *App) selectItems(items []selection.Item, question string) ([]string, error) {
	input, err := a.prompt.Line(question)
	if err != nil {
		return nil, err
	}
	return selection.Select(input, items)
}

func contactsListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all stored contacts",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.backend()
			if err != nil {
				return err
			}
			_, err = app.listContacts(cmd.Context(), client)
			return err
		},
	}
}

func contactsAddCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add",
		Short: "Add a new Panbox contact",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.backend()
			if err != nil {
				return err
			}
			mail, err := app.prompt.Line("E-mail: ")
			if err != nil {
				return err
			}
			first, err := app.prompt.Line("First name: ")
			if err != nil {
				return err
			}
			last, err := app.prompt.Line("Last name: ")
			if err != nil {
				return err
			}
			code, err := client.AddContact(cmd.Context(), mail, first, last)
			if err != nil {
				return err
			}
			app.report(code, "Contact added successfully.", "Error on add contact!")
			return nil
		},
	}
}

func contactsDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete",
		Short: "Delete selected contacts",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.backend()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			ids, err := app.selectContacts(ctx, client, "Insert ID's of contacts to delete (comma separated, interval x-y):")
			if err != nil {
				return err
			}
			code, err := client.DeleteContacts(ctx, ids)
			if err != nil {
				return err
			}
			app.report(code, "Contact(s) deleted successfully.", "Error on delete contact(s)!")
			return nil
		},
	}
}

func contactsExportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "export <path>",
		Short: "Export selected contacts to a vCard file",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.backend()
			if err != nil {
				return err
			}
			return app.exportContacts(cmd.Context(), client, args[0])
		},
	}
}

func contactsImportCmd(app *App) *cobra.Command {
	var noVerification bool
	cmd := &cobra.Command{
		Use:   "import <vcard>",
		Short: "Import contacts stored in a vCard file",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vcard := args[0]
			client, err := app.backend()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			verified := false
			if !noVerification {
				pin, err := app.prompt.Secret("Enter verification pin:")
				if err != nil {
					return err
				}
				code, err := client.VerifyContacts(ctx, vcard, pin)
				if err != nil {
					return err
				}
				app.reporter.Report(status.Plain, code, "vCard verification successful...", "Error on vCard pin verification!")
				verified = !code.IsError()
				if !verified {
					answer, err := app.prompt.Line("Continue import despite of verification fail (not recommended)? (Y/N)")
					if err != nil {
						return err
					}
					if answer == "n" || answer == "N" {
						return nil
					}
				}
			}

			items, err := client.VCardContacts(ctx, vcard)
			if err != nil {
				return err
			}
			if err := selection.Render(app.opts.Out, items); err != nil {
				return err
			}
			ids, err := app.selectItems(items, "Insert ID's of contacts to import (comma separated, interval x-y):")
			if err != nil {
				return err
			}
			code, err := client.ImportContacts(ctx, ids, vcard, verified)
			if err != nil {
				return err
			}
			app.report(code, "Contact(s) imported successfully.", "Error on import contact(s)!")
			return nil
		},
	}
	cmd.Flags().BoolVar(&noVerification, "no-verification", false, "import without verifying the vCard PIN")
	return cmd
}
