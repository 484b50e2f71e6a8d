package idl

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"

	"github.com/teranos/apidefs/errors"
)

// ErrorContext selects how a ParseError is rendered.
type ErrorContext string

const (
	// ErrorContextPlain renders without ANSI codes (logs, files)
	ErrorContextPlain ErrorContext = "plain"
	// ErrorContextTerminal renders with pterm colors
	ErrorContextTerminal ErrorContext = "terminal"
)

// Position is a location in IDL source: 1-based line, 1-based column.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
	Offset int `json:"offset"`
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// ParseError is a syntax error in IDL source.
// errors.Is(err, errors.ErrSyntax) holds for every ParseError.
type ParseError struct {
	File        string   // Source file, empty when parsing a string
	Message     string   // Human-readable message
	Pos         Position // Where the offending token starts
	Token       string   // Offending token text, empty at end of input
	Suggestions []string // Possible fixes
}

// Error implements error with the plain rendering.
func (e *ParseError) Error() string {
	return e.FormatError(ErrorContextPlain)
}

// FormatError renders the error for the given context.
func (e *ParseError) FormatError(ctx ErrorContext) string {
	if ctx == ErrorContextTerminal {
		return e.formatTerminalError()
	}
	return e.formatPlainError()
}

func (e *ParseError) location() string {
	if e.File != "" {
		return e.File + ":" + e.Pos.String()
	}
	return e.Pos.String()
}

func (e *ParseError) formatPlainError() string {
	msg := fmt.Sprintf("%s: %s", e.location(), e.Message)
	if e.Token != "" {
		msg += fmt.Sprintf(" (near %q)", e.Token)
	}
	if len(e.Suggestions) > 0 {
		msg += ". Suggestions: " + strings.Join(e.Suggestions, ", ")
	}
	return msg
}

func (e *ParseError) formatTerminalError() string {
	var b strings.Builder
	b.WriteString(pterm.Red(e.Message))
	b.WriteString("\n\n")
	b.WriteString(pterm.LightCyan("Context:"))
	b.WriteString(fmt.Sprintf("\n  %s %s", pterm.Yellow("Location:"), e.location()))
	if e.Token != "" {
		b.WriteString(fmt.Sprintf("\n  %s '%s'", pterm.Yellow("Token:"), e.Token))
	}
	if len(e.Suggestions) > 0 {
		b.WriteString("\n\n")
		b.WriteString(pterm.Green("Suggestions:"))
		for _, s := range e.Suggestions {
			b.WriteString("\n  • " + s)
		}
	}
	return b.String()
}

// Unwrap lets errors.Is match ErrSyntax.
func (e *ParseError) Unwrap() error {
	return errors.ErrSyntax
}

// WithSuggestion adds a suggestion for fixing the error.
func (e *ParseError) WithSuggestion(s string) *ParseError {
	e.Suggestions = append(e.Suggestions, s)
	return e
}

func newParseError(pos Position, token, format string, args ...interface{}) *ParseError {
	return &ParseError{
		Message: fmt.Sprintf(format, args...),
		Pos:     pos,
		Token:   token,
	}
}
