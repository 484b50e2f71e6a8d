// Package commands implements the apidefs command line.
package commands

import (
	"fmt"
	"io"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/apidefs/errors"
	"github.com/teranos/apidefs/idl"
	"github.com/teranos/apidefs/logger"
)

// NewRootCmd builds the apidefs command tree.
func NewRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:   "apidefs",
		Short: "Build browser-extension API catalogs from IDL",
		Long: `apidefs - Build browser-extension API catalogs from IDL and JSON definitions.

Definitions live below the API root, one file per namespace in a sub-API
directory (common/, chrome/). IDL definitions are converted to JSON schema;
JSON definitions are copied as they are. Manifest metadata from
_api_features.json is attached to every namespace and function.

Available commands:
  build    - Write the catalog file
  check    - Verify the catalog file is up to date
  convert  - Convert a single IDL file
  resolve  - Show where a namespace is defined
  watch    - Rebuild whenever definitions change
  am       - Manage configuration ("I am")
  db       - Manage the snapshot database

Examples:
  apidefs build                    # Build the default preset into api.json
  apidefs build -p experimental    # Build another preset
  apidefs check                    # Fail when api.json is stale
  apidefs convert alarms.idl       # Print the converted namespace`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := logger.Initialize(g.jsonLogs, g.verbosity); err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Cleanup()
		},
	}

	root.PersistentFlags().CountVarP(&g.verbosity, "verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv, -vvv)")
	root.PersistentFlags().BoolVar(&g.jsonLogs, "json-logs", false, "Write logs as JSON")
	root.PersistentFlags().BoolVar(&g.json, "json", false, "Write command output as JSON")
	root.PersistentFlags().StringVar(&g.configFile, "config", "", "Read configuration from this file only (defaults and APIDEFS_* still apply)")

	root.AddCommand(newBuildCmd(g))
	root.AddCommand(newCheckCmd(g))
	root.AddCommand(newConvertCmd(g))
	root.AddCommand(newResolveCmd(g))
	root.AddCommand(newWatchCmd(g))
	root.AddCommand(newAmCmd(g))
	root.AddCommand(newDbCmd(g))
	root.AddCommand(newVersionCmd())
	return root
}

// PrintError reports a command failure. Parse errors are shown with their
// source position; other errors are followed by their hints.
func PrintError(w io.Writer, err error) {
	var perr *idl.ParseError
	if errors.As(err, &perr) {
		fmt.Fprintln(w, perr.FormatError(idl.ErrorContextTerminal))
		return
	}
	fmt.Fprint(w, pterm.Error.Sprintln(err.Error()))
	for _, hint := range errors.GetAllHints(err) {
		fmt.Fprintf(w, "  %s %s\n", pterm.Yellow("hint:"), hint)
	}
}
