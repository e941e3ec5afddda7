package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"hdnotes-cli/internal/format"
	"hdnotes-cli/internal/provider"
	"hdnotes-cli/internal/session"
	"hdnotes-cli/internal/store"
	"hdnotes-cli/internal/tui"
)

type App struct {
	APIURL     string
	APIKey     string
	Demo       bool
	PrettyJSON bool
	Format     string
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "hdnotes",
		Short:        "Email-OTP authenticated notes, as a CLI + TUI",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  hdnotes

  # Try the TUI against a built-in in-memory provider (OTP is 123456)
  hdnotes --demo

  # Scriptable flow
  hdnotes login --email you@example.com
  hdnotes verify --email you@example.com --code 123456
  hdnotes notes list
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&app.APIURL, "api-url", envOr("HDNOTES_API_URL", ""), "Provider base URL (overrides config)")
	cmd.PersistentFlags().StringVar(&app.APIKey, "api-key", envOr("HDNOTES_API_KEY", ""), "Provider public API key (overrides config)")
	cmd.PersistentFlags().BoolVar(&app.Demo, "demo", false, "Use an in-memory provider (single process; intended for the TUI)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("HDNOTES_FORMAT", "json"), "Output format (json)")

	cmd.AddCommand(newInitCmd(app))
	cmd.AddCommand(newLoginCmd(app))
	cmd.AddCommand(newSignupCmd(app))
	cmd.AddCommand(newVerifyCmd(app))
	cmd.AddCommand(newWhoamiCmd(app))
	cmd.AddCommand(newLogoutCmd(app))
	cmd.AddCommand(newNotesCmd(app))

	return cmd
}

func runTUI(app *App) error {
	auth, data, err := buildProviders(app)
	if err != nil {
		return err
	}
	return tui.Run(auth, data)
}

// buildProviders resolves the provider pair from --demo, flags/env and
// the config file, in that order.
func buildProviders(app *App) (provider.Auth, provider.Data, error) {
	if app.Demo {
		f := provider.NewFake()
		f.FixedCode = "123456"
		return f, f, nil
	}

	apiURL, apiKey := app.APIURL, app.APIKey
	if apiURL == "" || apiKey == "" {
		cfg, err := store.LoadConfig()
		if err != nil {
			return nil, nil, err
		}
		if apiURL == "" {
			apiURL = cfg.APIURL
		}
		if apiKey == "" {
			apiKey = cfg.APIKey
		}
	}
	if strings.TrimSpace(apiURL) == "" {
		return nil, nil, errNotConfigured{}
	}
	c := provider.NewHTTPClient(apiURL, apiKey, store.SessionCache{})
	return c, c, nil
}

// startSession builds the providers plus a started session manager.
// Callers must Close the manager.
func startSession(cmd *cobra.Command, app *App) (provider.Auth, provider.Data, *session.Manager, error) {
	auth, data, err := buildProviders(app)
	if err != nil {
		return nil, nil, nil, err
	}
	mgr := session.NewManager(auth)
	if err := mgr.Start(cmd.Context()); err != nil {
		mgr.Close()
		return nil, nil, nil, err
	}
	return auth, data, mgr, nil
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
