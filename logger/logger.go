package logger

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global logger instance
	Logger *zap.SugaredLogger
	// Flag to track if JSON output is enabled
	JSONOutput bool
)

func init() {
	// No-op until Initialize is called, so library callers never see a nil logger
	Logger = zap.NewNop().Sugar()
}

// Initialize sets up the global logger. Console output goes to stderr so that
// catalog JSON written to stdout stays machine readable.
func Initialize(jsonOutput bool, verbosity int) error {
	return InitializeWriter(os.Stderr, jsonOutput, verbosity)
}

// InitializeWriter is Initialize with an explicit destination.
func InitializeWriter(w io.Writer, jsonOutput bool, verbosity int) error {
	JSONOutput = jsonOutput
	level := VerbosityToLevel(verbosity)

	if theme := os.Getenv("APIDEFS_LOG_THEME"); theme != "" {
		SetTheme(theme)
	}

	var encoder zapcore.Encoder
	if jsonOutput {
		// JSON structured output for machine consumption
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	} else {
		// Human-readable console output with minimal, calm formatting
		encoder = newMinimalEncoder()
	}

	Logger = zap.New(zapcore.NewCore(encoder, zapcore.AddSync(w), level)).Sugar()
	return nil
}

// Cleanup flushes any buffered log entries
func Cleanup() {
	if Logger != nil {
		_ = Logger.Sync()
	}
}

// Infow logs an info message with structured fields
func Infow(msg string, keysAndValues ...interface{}) {
	if Logger != nil {
		Logger.Infow(msg, keysAndValues...)
	}
}

// Warnw logs a warning message with structured fields
func Warnw(msg string, keysAndValues ...interface{}) {
	if Logger != nil {
		Logger.Warnw(msg, keysAndValues...)
	}
}

// Errorw logs an error message with structured fields
func Errorw(msg string, keysAndValues ...interface{}) {
	if Logger != nil {
		Logger.Errorw(msg, keysAndValues...)
	}
}

// Debugw logs a debug message with structured fields
func Debugw(msg string, keysAndValues ...interface{}) {
	if Logger != nil {
		Logger.Debugw(msg, keysAndValues...)
	}
}
