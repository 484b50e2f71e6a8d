// Package schema defines the normalized API catalog form produced from IDL
// declarations: one Namespace per API, holding its types, functions and events.
//
// Absent fields are represented by nil pointers, nil slices and nil maps and
// are omitted when encoded. Clean normalizes empty sequences to nil so that
// semantically equal descriptors always serialize identically.
package schema

// Type names used in descriptors.
const (
	TypeArray    = "array"
	TypeFunction = "function"
	TypeObject   = "object"
	TypeString   = "string"
	TypeInteger  = "integer"
	TypeNumber   = "number"
)

// Namespace is the schema of one API namespace.
//
// ContentScript and Dependencies are never set by the converter; they are
// attached afterwards from the manifest by the catalog package.
type Namespace struct {
	Namespace     string                `json:"namespace"`
	Types         []*TypeDescriptor     `json:"types,omitempty"`
	Functions     []*FunctionDescriptor `json:"functions,omitempty"`
	Events        []*FunctionDescriptor `json:"events,omitempty"`
	ContentScript *bool                 `json:"content_script,omitempty"`
	Dependencies  []string              `json:"dependencies,omitempty"`
}

// TypeDescriptor describes a named type: an enum (Type "string" with Enum)
// or a dictionary (Type "object" with Properties).
type TypeDescriptor struct {
	ID   string   `json:"id"`
	Type string   `json:"type"`
	Enum []string `json:"enum,omitempty"`
	// A dictionary without members keeps an empty, non-nil map and encodes as {}.
	Properties PropertyMap `json:"properties,omitzero"`
}

// FunctionDescriptor describes a function or an event.
type FunctionDescriptor struct {
	Name          string                `json:"name"`
	Type          string                `json:"type"`
	Parameters    []*PropertyDescriptor `json:"parameters,omitempty"`
	Static        *bool                 `json:"static,omitempty"`
	ContentScript *bool                 `json:"content_script,omitempty"`
	Dependencies  []string              `json:"dependencies,omitempty"`
}

// PropertyMap maps a dictionary field name to its descriptor.
type PropertyMap map[string]*PropertyDescriptor

// PropertyDescriptor describes a dictionary field, a function parameter or an
// array element. Exactly one of Type and Ref is set at the level that carries
// the element type; Items is set only when Type is "array".
type PropertyDescriptor struct {
	Name       string                `json:"name,omitempty"`
	Type       string                `json:"type,omitempty"`
	Items      *PropertyDescriptor   `json:"items,omitempty"`
	Ref        string                `json:"$ref,omitempty"`
	Optional   *bool                 `json:"optional,omitempty"`
	Nullable   *bool                 `json:"nullable,omitempty"`
	Parameters []*PropertyDescriptor `json:"parameters,omitempty"`
}

// IsRef reports whether d is a named reference at its top level.
func (d *PropertyDescriptor) IsRef() bool {
	return d != nil && d.Ref != ""
}

// Bool returns a pointer to b, for the tri-state fields above.
func Bool(b bool) *bool {
	return &b
}
