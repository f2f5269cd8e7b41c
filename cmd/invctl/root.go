package main

import (
	"fmt"

	"github.com/fekuna/omnipos-inventory-service/config"
	"github.com/spf13/cobra"
)

func newRootCmd(cfg *config.Config) *cobra.Command {
	a := &app{cfg: cfg}

	root := &cobra.Command{
		Use:          "invctl",
		Short:        "Operate the inventory service from the terminal",
		Version:      fmt.Sprintf("%s (%s)", version, commit),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.baseURL, "api-url", cfg.Client.BaseURL, "API base URL")
	flags.StringVar(&a.sessionFile, "session-file", cfg.Client.SessionFile, "where the session cookies are kept (default: user config dir)")
	flags.StringVar(&a.lang, "lang", "en", "language for error messages (en, id)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "log requests")

	root.AddCommand(
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newProductsCmd(a),
		newScanCmd(a),
		newReportCmd(a),
		newSeedCmd(a),
		newCheckCmd(a),
	)
	return root
}
