// Package convert turns a parsed IDL document into the schema of one API
// namespace.
//
// Conversion folds the document in source order. Enums and dictionaries
// become types, the Functions and Events interfaces become functions and
// events, and callbacks are collected and inlined into the parameters that
// reference them. Any other interface is ignored. A declaration missing a
// required field aborts the whole document with errors.ErrMalformedAST.
package convert

import (
	"time"

	"go.uber.org/zap"

	"github.com/teranos/apidefs/errors"
	"github.com/teranos/apidefs/idl"
	"github.com/teranos/apidefs/logger"
	"github.com/teranos/apidefs/schema"
)

// Converter converts IDL documents. It holds no per-document state and is
// safe for concurrent use.
type Converter struct {
	log *zap.SugaredLogger
}

// New returns a Converter that reports warnings to log. A nil log discards them.
func New(log *zap.SugaredLogger) *Converter {
	return &Converter{log: logger.OrNop(log)}
}

// Convert converts doc into the schema for namespace using the global logger.
func Convert(namespace string, doc idl.Document) ([]*schema.Namespace, error) {
	return New(logger.ComponentLogger("convert")).Convert(namespace, doc)
}

// ConvertFile parses the IDL file at path and converts it.
func ConvertFile(namespace, path string) ([]*schema.Namespace, error) {
	doc, err := idl.ParseFile(path)
	if err != nil {
		return nil, err
	}
	return Convert(namespace, doc)
}

// Convert converts doc into the schema for namespace. The result always has
// exactly one element.
func (c *Converter) Convert(namespace string, doc idl.Document) ([]*schema.Namespace, error) {
	start := time.Now()
	log := logger.ChildLogger(c.log, logger.FieldNamespace, namespace)
	scoped := &Converter{log: log}

	ns := &schema.Namespace{Namespace: namespace}
	var callbacks []*idl.Callback

	for i, decl := range doc {
		if isNil(decl) {
			return nil, errors.NewMalformedError("%s: declaration %d is nil", namespace, i)
		}
		switch d := decl.(type) {
		case *idl.Enum:
			ns.Types = append(ns.Types, convertEnum(d))
		case *idl.Dictionary:
			td, err := scoped.convertDictionary(d)
			if err != nil {
				return nil, errors.Wrapf(err, "namespace %s", namespace)
			}
			ns.Types = append(ns.Types, td)
		case *idl.Callback:
			callbacks = append(callbacks, d)
		case *idl.Interface:
			switch d.Name {
			case idl.FunctionsInterface:
				fns, err := scoped.convertFunctions(d)
				if err != nil {
					return nil, errors.Wrapf(err, "namespace %s", namespace)
				}
				if ns.Functions != nil {
					log.Warnw("Repeated interface replaces the earlier one", logger.FieldDeclaration, d.Name)
				}
				ns.Functions = fns
			case idl.EventsInterface:
				events, err := scoped.convertEvents(d)
				if err != nil {
					return nil, errors.Wrapf(err, "namespace %s", namespace)
				}
				if ns.Events != nil {
					log.Warnw("Repeated interface replaces the earlier one", logger.FieldDeclaration, d.Name)
				}
				ns.Events = events
			default:
				log.Debugw("Ignoring interface", logger.FieldDeclaration, d.Name)
			}
		default:
			log.Debugw("Ignoring declaration", logger.FieldDeclaration, decl.DeclName())
		}
	}

	table, err := scoped.buildCallbackTable(callbacks)
	if err != nil {
		return nil, errors.Wrapf(err, "namespace %s", namespace)
	}
	ns.Functions = scoped.expandCallbacks(ns.Functions, table)
	ns.Events = scoped.expandCallbacks(ns.Events, table)

	log.Debugw("Converted namespace",
		logger.FieldCount, len(ns.Types)+len(ns.Functions)+len(ns.Events),
		logger.FieldDurationMS, time.Since(start).Milliseconds())

	return []*schema.Namespace{ns.Clean()}, nil
}

func isNil(decl idl.Declaration) bool {
	switch d := decl.(type) {
	case *idl.Enum:
		return d == nil
	case *idl.Dictionary:
		return d == nil
	case *idl.Callback:
		return d == nil
	case *idl.Interface:
		return d == nil
	}
	return decl == nil
}
