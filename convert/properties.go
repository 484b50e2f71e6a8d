package convert

import (
	"github.com/teranos/apidefs/errors"
	"github.com/teranos/apidefs/idl"
	"github.com/teranos/apidefs/logger"
	"github.com/teranos/apidefs/schema"
)

// propertyDescriptor builds the canonical descriptor for one argument or
// dictionary field. Name is left unset; positional callers add it.
func propertyDescriptor(arg *idl.Argument) (*schema.PropertyDescriptor, error) {
	if arg == nil {
		return nil, errors.NewMalformedError("nil argument")
	}
	if arg.Name == "" {
		return nil, errors.NewMalformedError("argument without a name")
	}
	if arg.IDLType == nil || arg.IDLType.IDLType == "" {
		return nil, errors.NewMalformedError("argument %q has no type", arg.Name)
	}

	d := &schema.PropertyDescriptor{}
	// The element type lives under items for arrays, on the descriptor otherwise.
	target := d
	if arg.IDLType.Array {
		d.Type = schema.TypeArray
		d.Items = &schema.PropertyDescriptor{}
		target = d.Items
	}
	if typ, ok := CastType(arg.IDLType.IDLType); ok {
		target.Type = typ
	} else {
		target.Ref = arg.IDLType.IDLType
	}
	if arg.Optional != nil {
		d.Optional = schema.Bool(*arg.Optional)
	}
	if arg.IDLType.Nullable {
		d.Nullable = schema.Bool(true)
	}
	return d.Clean(), nil
}

// keyedProperties converts args into a name-keyed map. A repeated name
// overwrites the earlier entry. The result is never nil.
func (c *Converter) keyedProperties(args []*idl.Argument) (schema.PropertyMap, error) {
	props := make(schema.PropertyMap, len(args))
	for _, arg := range args {
		d, err := propertyDescriptor(arg)
		if err != nil {
			return nil, err
		}
		if _, dup := props[arg.Name]; dup {
			c.log.Warnw("Duplicate name, last declaration wins", logger.FieldParameter, arg.Name)
		}
		props[arg.Name] = d
	}
	return props, nil
}

// positionalProperties converts args into a list in declaration order, each
// descriptor carrying its name. Entries are resolved through the keyed map,
// so a repeated name yields the last declaration at every position it occupies;
// each position gets its own copy.
func (c *Converter) positionalProperties(args []*idl.Argument) ([]*schema.PropertyDescriptor, error) {
	props, err := c.keyedProperties(args)
	if err != nil {
		return nil, err
	}
	params := make([]*schema.PropertyDescriptor, 0, len(args))
	for _, arg := range args {
		d := props[arg.Name].Clone()
		d.Name = arg.Name
		params = append(params, d)
	}
	return params, nil
}
