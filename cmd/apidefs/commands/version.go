package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teranos/apidefs/display"
	"github.com/teranos/apidefs/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show apidefs version information",
		Long:  `Display version, build time, commit hash, and platform information for the apidefs binary.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.Get()
			w := cmd.OutOrStdout()
			if display.ShouldOutputJSON(cmd) {
				return display.OutputJSON(w, info)
			}
			fmt.Fprintln(w, info.String())
			fmt.Fprintf(w, "Platform: %s\n", info.Platform)
			fmt.Fprintf(w, "Go: %s\n", info.GoVersion)
			return nil
		},
	}
}
