package main

import (
	"github.com/spf13/cobra"
)

// newRootCmd builds the command tree. The returned func releases whatever the
// executed subcommand opened.
func newRootCmd() (*cobra.Command, func()) {
	flags := &globalFlags{}
	var a *app

	root := &cobra.Command{
		Use:           "cardextract",
		Short:         "Extract fields from OCR'd health-insurance cards",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			a, err = newApp(cmd.Context(), cmd, flags)
			return err
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.dbURL, "db", "", "job store DSN (overrides DB_URL)")
	pf.BoolVar(&flags.inmem, "inmem", false, "use an in-memory SQLite job store")
	pf.StringVar(&flags.insurerList, "insurers", "", "known insurer list file (YAML or JSON)")
	pf.StringVar(&flags.fallbackKind, "kind", "", "card kind for documents that do not name one")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "log every extraction pass")

	appFn := func() *app { return a }
	root.AddCommand(
		newExtractCmd(appFn),
		newBatchCmd(appFn),
		newWatchCmd(appFn),
		newExportCmd(appFn),
		newHealthCmd(appFn),
		newShowCmd(appFn),
	)
	return root, func() { a.Close() }
}
