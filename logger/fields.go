package logger

import (
	"go.uber.org/zap"
)

// Standard field names for structured logging.
// Use these constants instead of raw strings to keep keys consistent.
const (
	// Components
	FieldComponent = "component"
	FieldOperation = "operation"

	// Catalog
	FieldNamespace   = "namespace"
	FieldPreset      = "preset"
	FieldDeclaration = "declaration"
	FieldMember      = "member"
	FieldParameter   = "parameter"
	FieldCallback    = "callback"
	FieldReference   = "ref"

	// Timing
	FieldDurationMS = "duration_ms"

	// Errors
	FieldError = "error"

	// Counts and sizes
	FieldCount   = "count"
	FieldWorkers = "workers"
	FieldChanged = "changed"

	// Files and paths
	FieldFile = "file"
	FieldPath = "path"
	FieldLine = "line"

	// Store
	FieldMigration = "migration"
	FieldVersion   = "version"
	FieldDigest    = "sha256"

	// Watch
	FieldEvent = "event"
	FieldHook  = "hook"
)

// ComponentLogger returns a named logger for a specific component.
// This is the preferred way to get a logger for dependency injection.
//
// Example:
//
//	type Builder struct {
//	    logger *zap.SugaredLogger
//	}
//
//	func NewBuilder() *Builder {
//	    return &Builder{logger: logger.ComponentLogger("catalog.build")}
//	}
func ComponentLogger(name string) *zap.SugaredLogger {
	return Logger.Named(name)
}

// ChildLogger creates a child logger with additional context.
//
// Example:
//
//	nsLogger := logger.ChildLogger(base, logger.FieldNamespace, "alarms")
func ChildLogger(parent *zap.SugaredLogger, keysAndValues ...interface{}) *zap.SugaredLogger {
	return parent.With(keysAndValues...)
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *zap.SugaredLogger) *zap.SugaredLogger {
	if l == nil {
		return zap.NewNop().Sugar()
	}
	return l
}
