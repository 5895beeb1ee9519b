package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"gallery-portal/internal/domain/auth"
)

func newLoginCmd(a func() *app) *cobra.Command {
	var creds auth.Credentials

	cmd := &cobra.Command{
		Use:     "login",
		Short:   "Log in and store the session tokens",
		Example: `  galleryctl login -u alice -p 'S3cret!pass'`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := a().auth.Login(cmd.Context(), creds)
			return err
		},
	}

	cmd.Flags().StringVarP(&creds.Username, "username", "u", "", "Username")
	cmd.Flags().StringVarP(&creds.Password, "password", "p", "", "Password")
	_ = cmd.MarkFlagRequired("username") //nolint:errcheck // Flag is defined above
	_ = cmd.MarkFlagRequired("password") //nolint:errcheck // Flag is defined above

	return cmd
}

func newRegisterCmd(a func() *app) *cobra.Command {
	var reg auth.Registration

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Long: `Creates an account on the backend. The form is checked locally first:
username 3-20 characters, a valid email, and a password of at least 8
characters with upper and lower case letters, a digit and a special character.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("confirm-password") {
				reg.ConfirmPassword = reg.Password
			}
			_, err := a().auth.Register(cmd.Context(), reg)
			return err
		},
	}

	cmd.Flags().StringVarP(&reg.Username, "username", "u", "", "Username")
	cmd.Flags().StringVarP(&reg.Email, "email", "e", "", "Email address")
	cmd.Flags().StringVarP(&reg.Password, "password", "p", "", "Password")
	cmd.Flags().StringVar(&reg.ConfirmPassword, "confirm-password", "", "Password confirmation (defaults to --password)")

	return cmd
}

func newLogoutCmd(a func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and forget the stored tokens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a().auth.Logout(cmd.Context())
			return nil
		},
	}
}

func newStatusCmd(a func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check whether the stored session is still valid",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := a()
			ok, err := app.client.CheckAuth(cmd.Context())
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(app.out, "Not logged in")
				return nil
			}
			fmt.Fprintf(app.out, "Logged in to %s\n", app.client.BaseURL())
			return nil
		},
	}
}
