package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/teranos/apidefs/am"
	"github.com/teranos/apidefs/display"
	"github.com/teranos/apidefs/errors"
)

func newAmCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "am",
		Short: "Manage apidefs configuration",
		Long: `am - Manage apidefs configuration ("I am")

Configuration sources (later overrides earlier):
1. Default values
2. System config (/etc/apidefs/am.toml)
3. User config (~/.apidefs/am.toml)
4. Project config (am.toml, searched upward from the working directory)
5. Environment variables (APIDEFS_* prefix, e.g. APIDEFS_OUTPUT_DEST)

Examples:
  apidefs am show                     # Effective configuration as TOML
  apidefs am where                    # Which source provided each setting
  apidefs am validate am.toml         # Strictly check a config file
  apidefs am set output.indent 4      # Write to ~/.apidefs/am.toml`,
	}
	cmd.AddCommand(newAmShowCmd(g))
	cmd.AddCommand(newAmWhereCmd())
	cmd.AddCommand(newAmValidateCmd(g))
	cmd.AddCommand(newAmSetCmd())
	return cmd
}

func newAmShowCmd(g *globalFlags) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if display.ShouldOutputJSON(cmd) {
				format = "json"
			}

			switch format {
			case "json":
				return display.OutputJSON(w, cfg)
			case "yaml":
				data, err := yaml.Marshal(cfg)
				if err != nil {
					return errors.Wrap(err, "failed to marshal config to YAML")
				}
				fmt.Fprintf(w, "# apidefs configuration\n%s", data)
			case "toml":
				data, err := am.Render(cfg)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "# apidefs configuration\n%s", data)
			default:
				return errors.Newf("unsupported format: %s (supported: toml, json, yaml)", format)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "toml", "Output format: toml, json, yaml")
	return cmd
}

func newAmWhereCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "where",
		Short: "Show which source provided each setting",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := am.Introspect()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if display.ShouldOutputJSON(cmd) {
				return display.OutputJSON(w, settings)
			}

			fmt.Fprintln(w, "Configuration files (later overrides earlier):")
			for _, src := range am.ConfigPaths() {
				state := pterm.Gray("missing")
				if _, err := os.Stat(src.Path); err == nil {
					state = pterm.Green("found")
				}
				fmt.Fprintf(w, "  [%s] %s (%s)\n", src.Source, src.Path, state)
			}
			fmt.Fprintln(w)

			rows := make([][]string, 0, len(settings))
			for _, s := range settings {
				source := string(s.Source)
				if s.SourcePath != "" {
					source += " " + s.SourcePath
				}
				rows = append(rows, []string{s.Key, fmt.Sprintf("%v", s.Value), source})
			}
			return display.Table(w, []string{"KEY", "VALUE", "SOURCE"}, rows)
		},
	}
}

func newAmValidateCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file]",
		Short: "Validate the configuration",
		Long: `Validate the effective configuration, or strictly check one config file.

A file is checked for TOML syntax and for keys apidefs does not know, which
would otherwise be ignored silently.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if len(args) == 1 {
				if err := am.CheckFile(args[0]); err != nil {
					return err
				}
				display.Success(w, "%s is valid", args[0])
				return nil
			}
			if _, err := g.loadConfig(); err != nil {
				return err
			}
			display.Success(w, "Configuration is valid")
			return nil
		},
	}
}

func newAmSetCmd() *cobra.Command {
	var project bool
	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a value in the user or project config file",
		Long: `Set a dotted key in ~/.apidefs/am.toml, or in ./am.toml with --project.

Integers and booleans are stored as such; anything else as a string. The
previous file is kept as am.toml.back1 (up to three backups).`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := am.ConfigFileName
			if !project {
				home, err := os.UserHomeDir()
				if err != nil {
					return errors.Wrap(err, "failed to locate home directory")
				}
				path = filepath.Join(home, am.UserConfigDir, am.ConfigFileName)
			}

			if err := am.SetValue(path, args[0], am.ParseValue(args[1])); err != nil {
				return err
			}
			am.Reset()
			display.Success(cmd.OutOrStdout(), "Set %s in %s", args[0], path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&project, "project", false, "Write ./am.toml instead of the user config")
	return cmd
}
