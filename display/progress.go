package display

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/pterm/pterm"
)

// Reporter reports the progress of catalog builds.
//
// Implementations:
// - CLIReporter: pretty-printed terminal output using pterm
// - JSONReporter: one JSON event per line, for scripts and editors
type Reporter interface {
	Stage(stage, message string)
	Built(summary BuildSummary)
	Error(stage string, err error)
	Info(message string)
}

// BuildSummary describes one finished build.
type BuildSummary struct {
	Dest       string   `json:"dest,omitempty"`
	Namespaces int      `json:"namespaces"`
	Changed    []string `json:"changed,omitempty"`
	DurationMS int64    `json:"duration_ms"`
}

// Event is one structured progress event.
type Event struct {
	Type      string                 `json:"type"` // "stage", "built", "error", "info"
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
}

// CLIReporter prints progress for people.
type CLIReporter struct {
	w         io.Writer
	verbosity int
}

// NewCLIReporter returns a terminal reporter. Info messages need verbosity >= 1.
func NewCLIReporter(w io.Writer, verbosity int) *CLIReporter {
	return &CLIReporter{w: w, verbosity: verbosity}
}

func (r *CLIReporter) Stage(stage, message string) {
	fmt.Fprintf(r.w, "%s %s: %s\n", pterm.Gray("→"), pterm.LightCyan(stage), message)
}

func (r *CLIReporter) Built(s BuildSummary) {
	where := ""
	if s.Dest != "" {
		where = " to " + s.Dest
	}
	fmt.Fprint(r.w, pterm.Success.Sprintfln("Wrote %s namespaces%s (%dms)",
		pterm.Green(fmt.Sprintf("%d", s.Namespaces)), where, s.DurationMS))
	if r.verbosity >= 1 {
		for _, name := range s.Changed {
			fmt.Fprintf(r.w, "  %s %s\n", pterm.LightGreen("✓ changed:"), name)
		}
	}
}

func (r *CLIReporter) Error(stage string, err error) {
	fmt.Fprint(r.w, pterm.Error.Sprintfln("%s: %v", stage, err))
}

func (r *CLIReporter) Info(message string) {
	if r.verbosity >= 1 {
		fmt.Fprint(r.w, pterm.Info.Sprintln(message))
	}
}

// JSONReporter writes one JSON event per line.
type JSONReporter struct {
	enc *json.Encoder
	now func() time.Time
}

// NewJSONReporter returns a reporter writing events to w.
func NewJSONReporter(w io.Writer) *JSONReporter {
	return &JSONReporter{enc: json.NewEncoder(w), now: time.Now}
}

func (r *JSONReporter) emit(typ string, data map[string]interface{}) {
	r.enc.Encode(Event{Type: typ, Timestamp: r.now(), Data: data})
}

func (r *JSONReporter) Stage(stage, message string) {
	r.emit("stage", map[string]interface{}{"stage": stage, "message": message})
}

func (r *JSONReporter) Built(s BuildSummary) {
	data := map[string]interface{}{
		"namespaces":  s.Namespaces,
		"duration_ms": s.DurationMS,
	}
	if s.Dest != "" {
		data["dest"] = s.Dest
	}
	if len(s.Changed) > 0 {
		data["changed"] = s.Changed
	}
	r.emit("built", data)
}

func (r *JSONReporter) Error(stage string, err error) {
	r.emit("error", map[string]interface{}{"stage": stage, "error": err.Error()})
}

func (r *JSONReporter) Info(message string) {
	r.emit("info", map[string]interface{}{"message": message})
}

// NewReporter picks the JSON or terminal reporter.
func NewReporter(w io.Writer, jsonOutput bool, verbosity int) Reporter {
	if jsonOutput {
		return NewJSONReporter(w)
	}
	return NewCLIReporter(w, verbosity)
}
