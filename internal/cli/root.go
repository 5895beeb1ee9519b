package cli

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const defaultAPIURL = "http://localhost:5000"

// NewRootCmd builds the galleryctl command tree
func NewRootCmd() *cobra.Command {
	var opts options
	var a *app

	cmd := &cobra.Command{
		Use:   "galleryctl",
		Short: "Terminal client for the image gallery",
		Long: `galleryctl logs in to the image gallery backend, manages your images and
runs text or image similarity searches.

Tokens are kept in a local session file between invocations.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
			if !cmd.Flags().Changed("api-url") {
				if v := os.Getenv("API_BASE_URL"); v != "" {
					opts.apiURL = v
				}
			}

			var err error
			a, err = newApp(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
			return err
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.apiURL, "api-url", defaultAPIURL, "Gallery backend base URL (env API_BASE_URL)")
	flags.StringVar(&opts.sessionFile, "session-file", "", "Token file (default <user config dir>/galleryctl/session.json)")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	flags.IntVar(&opts.pageSize, "per-page", 10, "Items per page")

	appFn := func() *app { return a }
	cmd.AddCommand(
		newLoginCmd(appFn),
		newRegisterCmd(appFn),
		newLogoutCmd(appFn),
		newStatusCmd(appFn),
		newImagesCmd(appFn),
		newSearchCmd(appFn),
	)

	return cmd
}
