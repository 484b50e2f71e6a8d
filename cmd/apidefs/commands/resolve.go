package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teranos/apidefs/display"
	"github.com/teranos/apidefs/errors"
)

// resolution is what resolve reports about one namespace.
type resolution struct {
	Namespace     string   `json:"namespace"`
	File          string   `json:"file"`
	Channel       string   `json:"channel,omitempty"`
	ContentScript bool     `json:"content_script"`
	Dependencies  []string `json:"dependencies,omitempty"`
	Functions     []string `json:"functions,omitempty"`
}

func newResolveCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <namespace>",
		Short: "Show where a namespace is defined and its manifest metadata",
		Long: `Resolve a namespace to its definition file and manifest entry.

Dotted namespaces map to directories: devtools.inspectedWindow is looked up
as devtools/inspected_window.json or .idl in each sub-API.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			c := newCatalog(cfg)
			name := args[0]

			path, ok := c.DefinitionPath(name)
			if !ok {
				return errors.NewNotFoundError("no definition for namespace %s below %s", name, c.Root())
			}
			def, err := c.Definition(name)
			if err != nil {
				return err
			}
			entry, err := c.ManifestEntry(name)
			if err != nil {
				return err
			}

			r := resolution{Namespace: name, File: path}
			if entry != nil {
				r.Channel = entry.Channel()
				r.ContentScript = entry.ContentScript()
				r.Dependencies = entry.Dependencies()
			}
			for _, ns := range def {
				r.Functions = append(r.Functions, ns.FunctionNames()...)
			}

			w := cmd.OutOrStdout()
			if display.ShouldOutputJSON(cmd) {
				return display.OutputJSON(w, r)
			}
			if entry == nil {
				display.Warning(w, "%s has no manifest entry", name)
			}
			return display.Table(w, []string{"FIELD", "VALUE"}, [][]string{
				{"Namespace", r.Namespace},
				{"File", r.File},
				{"Channel", r.Channel},
				{"Content script", fmt.Sprintf("%t", r.ContentScript)},
				{"Dependencies", strings.Join(r.Dependencies, ", ")},
				{"Functions", strings.Join(r.Functions, ", ")},
			})
		},
	}
}
