package commands

import (
	"fmt"
	"io"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/apidefs/display"
	"github.com/teranos/apidefs/errors"
)

func newCheckCmd(g *globalFlags) *cobra.Command {
	var (
		filter filterFlags
		output outputFlags
	)
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify the catalog file is up to date",
		Long: `Regenerate the catalog in memory and compare it with the catalog file.

The comparison ignores formatting. The command fails when namespaces were
added, removed, changed or reordered, which makes it suitable for CI.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			dest, opts := output.resolve(cfg)

			result, err := newCatalog(cfg).Check(cmd.Context(), filter.filter(), dest, opts)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if display.ShouldOutputJSON(cmd) {
				if err := display.OutputJSON(w, result); err != nil {
					return err
				}
			} else if result.UpToDate {
				display.Success(w, "%s is up to date", dest)
			} else {
				if result.Missing {
					display.Warning(w, "%s does not exist", dest)
				}
				printNames(w, "added", result.Added)
				printNames(w, "removed", result.Removed)
				printNames(w, "changed", result.Changed)
				if result.Reordered {
					fmt.Fprintf(w, "  %s namespace order differs\n", pterm.Yellow("~"))
				}
			}

			if !result.UpToDate {
				return errors.WithHint(
					errors.Mark(errors.Newf("%s is out of date", dest), errors.ErrOutOfDate),
					"run `apidefs build` to regenerate it")
			}
			return nil
		},
	}
	filter.register(cmd)
	output.register(cmd, true)
	return cmd
}

func printNames(w io.Writer, label string, names []string) {
	for _, name := range names {
		fmt.Fprintf(w, "  %s %s\n", pterm.Yellow(label+":"), name)
	}
}
