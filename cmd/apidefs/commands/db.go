package commands

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teranos/apidefs/display"
	"github.com/teranos/apidefs/errors"
)

func newDbCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Manage the snapshot database",
		Long: `db - Manage the snapshot database (database.path)

The database keeps the latest catalog entry of each namespace with its
SHA-256, so other tools can tell which namespaces changed between builds.

Examples:
  apidefs db sync               # Store the default preset
  apidefs db sync --prune       # ...and forget namespaces no longer built
  apidefs db ls                 # List stored namespaces
  apidefs db show alarms        # Print a stored namespace`,
	}
	cmd.AddCommand(newDbSyncCmd(g))
	cmd.AddCommand(newDbLsCmd(g))
	cmd.AddCommand(newDbShowCmd(g))
	cmd.AddCommand(newDbRmCmd(g))
	return cmd
}

func newDbSyncCmd(g *globalFlags) *cobra.Command {
	var (
		filter filterFlags
		prune  bool
	)
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Store the current catalog in the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			defs, err := newCatalog(cfg).Definitions(cmd.Context(), filter.filter())
			if err != nil {
				return err
			}
			result, err := syncStore(cmd.Context(), cfg, defs, prune)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if display.ShouldOutputJSON(cmd) {
				return display.OutputJSON(w, result)
			}
			display.Success(w, "Synced %d namespaces to %s: %d changed, %d unchanged, %d removed",
				len(defs), cfg.Database.Path, len(result.Changed), len(result.Unchanged), len(result.Removed))
			printNames(w, "changed", result.Changed)
			printNames(w, "removed", result.Removed)
			return nil
		},
	}
	filter.register(cmd)
	cmd.Flags().BoolVar(&prune, "prune", false, "Delete stored namespaces that are not part of this build")
	return cmd
}

func newDbLsCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List stored namespaces",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			s, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			records, err := s.List(cmd.Context())
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if display.ShouldOutputJSON(cmd) {
				type row struct {
					Namespace string `json:"namespace"`
					SHA256    string `json:"sha256"`
					UpdatedAt string `json:"updated_at"`
				}
				rows := make([]row, 0, len(records))
				for _, r := range records {
					rows = append(rows, row{r.Namespace, r.SHA256, r.UpdatedAt.Format("2006-01-02T15:04:05Z07:00")})
				}
				return display.OutputJSON(w, rows)
			}
			if len(records) == 0 {
				display.Warning(w, "No namespaces stored in %s", cfg.Database.Path)
				return nil
			}
			rows := make([][]string, 0, len(records))
			for _, r := range records {
				rows = append(rows, []string{r.Namespace, r.SHA256[:12], r.UpdatedAt.Local().Format("2006-01-02 15:04:05")})
			}
			return display.Table(w, []string{"NAMESPACE", "SHA256", "UPDATED"}, rows)
		},
	}
}

func newDbShowCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show <namespace>",
		Short: "Print a stored namespace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			s, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			rec, err := s.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			var buf bytes.Buffer
			if err := json.Indent(&buf, rec.Definition, "", "  "); err != nil {
				return errors.Wrapf(err, "stored definition of %s is corrupt", args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), buf.String())
			return nil
		},
	}
}

func newDbRmCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <namespace>...",
		Short: "Delete stored namespaces",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			s, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			w := cmd.OutOrStdout()
			for _, name := range args {
				deleted, err := s.Delete(cmd.Context(), name)
				if err != nil {
					return err
				}
				if deleted {
					display.Success(w, "Deleted %s", name)
				} else {
					display.Warning(w, "%s was not stored", name)
				}
			}
			return nil
		},
	}
}
