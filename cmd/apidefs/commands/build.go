package commands

import (
	"github.com/spf13/cobra"
)

func newBuildCmd(g *globalFlags) *cobra.Command {
	var (
		filter filterFlags
		output outputFlags
		sync   bool
	)
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the API catalog",
		Long: `Build the API catalog file from the definitions below the API root.

Namespaces are selected by a preset (catalog.default_preset unless -p is
given) or listed explicitly with -n. The catalog keeps the selection order.

Examples:
  apidefs build                          # Default preset into output.dest
  apidefs build -n alarms -n runtime     # Two namespaces only
  apidefs build --format yaml -o api.yaml
  apidefs build --sync                   # Also store snapshots in the database`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			dest, opts := output.resolve(cfg)
			rep := g.reporter(cmd)

			summary, defs, err := buildCatalog(cmd.Context(), cfg, filter.filter(), dest, opts)
			if err != nil {
				return err
			}
			if sync {
				result, err := syncStore(cmd.Context(), cfg, defs, false)
				if err != nil {
					return err
				}
				summary.Changed = result.Changed
			}
			rep.Built(*summary)
			return nil
		},
	}
	filter.register(cmd)
	output.register(cmd, true)
	cmd.Flags().BoolVar(&sync, "sync", false, "Also store namespace snapshots in the database")
	return cmd
}
