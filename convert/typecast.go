package convert

import "github.com/teranos/apidefs/schema"

// TypeMapping maps IDL primitive keywords to schema type names.
// Matching is exact and case-sensitive.
var TypeMapping = map[string]string{
	"byte":               schema.TypeInteger,
	"octet":              schema.TypeInteger,
	"short":              schema.TypeInteger,
	"unsigned short":     schema.TypeInteger,
	"long":               schema.TypeInteger,
	"unsigned long":      schema.TypeInteger,
	"long long":          schema.TypeInteger,
	"unsigned long long": schema.TypeInteger,

	"float":               schema.TypeNumber,
	"unrestricted float":  schema.TypeNumber,
	"double":              schema.TypeNumber,
	"unrestricted double": schema.TypeNumber,

	"DOMString": schema.TypeString,

	// Already schema type names
	"any":     "any",
	"boolean": "boolean",
	"object":  schema.TypeObject,
}

// CastType returns the schema type for a primitive IDL keyword. ok is false
// when keyword is not a primitive; callers then treat it as a reference to a
// declared type. An unknown keyword is never an error.
func CastType(keyword string) (typ string, ok bool) {
	typ, ok = TypeMapping[keyword]
	return typ, ok
}
