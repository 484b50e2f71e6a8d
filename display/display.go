// Package display renders command output: pretty terminal output via pterm
// for people, structured JSON events for scripts.
package display

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// ShouldOutputJSON reports whether the command should print JSON: its own
// --json flag when set, otherwise a persistent --json flag on the root.
func ShouldOutputJSON(cmd *cobra.Command) bool {
	if cmd == nil {
		return false
	}
	if f := cmd.Flags().Lookup("json"); f != nil && f.Changed {
		v, _ := cmd.Flags().GetBool("json")
		return v
	}
	if f := cmd.Root().PersistentFlags().Lookup("json"); f != nil {
		v, _ := cmd.Root().PersistentFlags().GetBool("json")
		return v
	}
	return false
}

// OutputJSON writes v to w as indented JSON.
func OutputJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// Table renders rows under a header row.
func Table(w io.Writer, header []string, rows [][]string) error {
	data := pterm.TableData{header}
	data = append(data, rows...)
	out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, out)
	return err
}

// Success prints a success line.
func Success(w io.Writer, format string, args ...interface{}) {
	fmt.Fprint(w, pterm.Success.Sprintfln(format, args...))
}

// Warning prints a warning line.
func Warning(w io.Writer, format string, args ...interface{}) {
	fmt.Fprint(w, pterm.Warning.Sprintfln(format, args...))
}

// Failure prints an error line.
func Failure(w io.Writer, format string, args ...interface{}) {
	fmt.Fprint(w, pterm.Error.Sprintfln(format, args...))
}
