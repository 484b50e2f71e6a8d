package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/teranos/apidefs/catalog"
	"github.com/teranos/apidefs/convert"
	"github.com/teranos/apidefs/idl"
	"github.com/teranos/apidefs/logger"
)

func newConvertCmd(g *globalFlags) *cobra.Command {
	var (
		name   string
		output outputFlags
	)
	cmd := &cobra.Command{
		Use:   "convert <file.idl>",
		Short: "Convert one IDL file and print the result",
		Long: `Parse one IDL file, convert it and print the namespace schema.

The namespace name defaults to the camel-cased file name, so
browser_action.idl converts as browserAction. No manifest metadata is
attached; use build or resolve for that.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			_, opts := output.resolve(cfg)

			path := args[0]
			if name == "" {
				name = catalog.Camelize(filepath.Base(path))
			}

			doc, err := idl.ParseFile(path)
			if err != nil {
				return err
			}
			converted, err := convert.New(logger.ComponentLogger("convert")).Convert(name, doc)
			if err != nil {
				return err
			}

			namespaces := make([]*catalog.Namespace, 0, len(converted))
			for _, ns := range converted {
				namespaces = append(namespaces, catalog.FromSchema(ns))
			}
			w := cmd.OutOrStdout()
			if err := catalog.Encode(w, namespaces, opts); err != nil {
				return err
			}
			fmt.Fprintln(w)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Namespace name (default from the file name)")
	output.register(cmd, false)
	return cmd
}
