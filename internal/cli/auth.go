package cli

import (
	"github.com/spf13/cobra"

	"hdnotes-cli/internal/authflow"
)

// The login/signup/verify commands are the scriptable face of the auth
// flow: the same validation rules as the interactive machine, split
// into one command per phase transition.

func newLoginCmd(app *App) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Request a one-time code for an existing account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return sendOTP(cmd, app, email)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newSignupCmd(app *App) *cobra.Command {
	var email string
	var name string
	var dob string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and request a one-time code",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Name and date of birth are accepted for parity with the
			// sign-up form but are not persisted; profile storage is a
			// separate extension.
			_ = name
			_ = dob
			return sendOTP(cmd, app, email)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&dob, "dob", "", "Date of birth (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func sendOTP(cmd *cobra.Command, app *App, email string) error {
	if err := authflow.ValidateEmail(email); err != nil {
		return writeErr(cmd, err)
	}
	auth, _, err := buildProviders(app)
	if err != nil {
		return writeErr(cmd, err)
	}
	if err := auth.SendOTP(cmd.Context(), email); err != nil {
		return writeErr(cmd, err)
	}
	return writeOut(cmd, app, map[string]any{"data": map[string]any{
		"email": email,
		"sent":  true,
		"next":  "hdnotes verify --email " + email + " --code XXXXXX",
	}})
}

func newVerifyCmd(app *App) *cobra.Command {
	var email string
	var code string

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify a one-time code and establish a session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := authflow.ValidateEmail(email); err != nil {
				return writeErr(cmd, err)
			}
			if err := authflow.ValidateOTP(code); err != nil {
				return writeErr(cmd, err)
			}
			auth, _, err := buildProviders(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			sess, err := auth.VerifyOTP(cmd.Context(), email, code)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"identity": sess.Identity,
			}})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&code, "code", "", "6-digit code from the email")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("code")
	return cmd
}

func newWhoamiCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the current identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _, mgr, err := startSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer mgr.Close()
			id := mgr.Identity()
			if id == nil {
				return writeErr(cmd, errNotSignedIn{})
			}
			return writeOut(cmd, app, map[string]any{"data": id})
		},
	}
	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Invalidate the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			auth, _, mgr, err := startSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer mgr.Close()
			if mgr.Current() == nil {
				return writeErr(cmd, errNotSignedIn{})
			}
			if err := auth.SignOut(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"signedOut": true}})
		},
	}
	return cmd
}
