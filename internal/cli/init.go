package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"hdnotes-cli/internal/store"
)

func newInitCmd(app *App) *cobra.Command {
	var apiURL string
	var apiKey string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the provider endpoint config",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := &store.Config{
				APIURL: strings.TrimSpace(apiURL),
				APIKey: strings.TrimSpace(apiKey),
			}
			if err := store.SaveConfig(cfg); err != nil {
				return writeErr(cmd, err)
			}
			path, err := store.ConfigPath()
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"config": path}})
		},
	}

	cmd.Flags().StringVar(&apiURL, "api-url", "", "Provider base URL")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "Provider public API key")
	_ = cmd.MarkFlagRequired("api-url")
	_ = cmd.MarkFlagRequired("api-key")
	return cmd
}
