package cli

import (
	"github.com/spf13/cobra"

	"hdnotes-cli/internal/notes"
)

func newNotesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notes",
		Short: "Note commands (session required)",
	}
	cmd.AddCommand(newNotesListCmd(app))
	cmd.AddCommand(newNotesCreateCmd(app))
	cmd.AddCommand(newNotesDeleteCmd(app))
	return cmd
}

// notesClient gates every note command on a resolved session.
func notesClient(cmd *cobra.Command, app *App) (*notes.Client, func(), error) {
	auth, data, mgr, err := startSession(cmd, app)
	if err != nil {
		return nil, nil, err
	}
	if mgr.Identity() == nil {
		mgr.Close()
		return nil, nil, errNotSignedIn{}
	}
	return notes.NewClient(mgr, data, auth), mgr.Close, nil
}

func newNotesListCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your notes, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, done, err := notesClient(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer done()
			ns, err := client.List(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": ns})
		},
	}
	return cmd
}

func newNotesCreateCmd(app *App) *cobra.Command {
	var title string
	var content string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a note",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, done, err := notesClient(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer done()
			n, err := client.Create(cmd.Context(), title, content)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": n})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Note title (1-100 chars)")
	cmd.Flags().StringVar(&content, "content", "", "Note content (1-2000 chars)")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("content")
	return cmd
}

func newNotesDeleteCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <note-id>",
		Short: "Delete one of your notes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, done, err := notesClient(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer done()
			if err := client.Delete(cmd.Context(), args[0]); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"deleted": args[0]}})
		},
	}
	return cmd
}
