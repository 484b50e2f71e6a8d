package convert

import (
	"github.com/teranos/apidefs/errors"
	"github.com/teranos/apidefs/idl"
	"github.com/teranos/apidefs/schema"
)

func convertEnum(e *idl.Enum) *schema.TypeDescriptor {
	return (&schema.TypeDescriptor{
		ID:   e.Name,
		Type: schema.TypeString,
		Enum: append([]string(nil), e.Values...),
	}).Clean()
}

func (c *Converter) convertDictionary(d *idl.Dictionary) (*schema.TypeDescriptor, error) {
	props, err := c.keyedProperties(d.Members)
	if err != nil {
		return nil, errors.Wrapf(err, "dictionary %s", d.Name)
	}
	return (&schema.TypeDescriptor{
		ID:         d.Name,
		Type:       schema.TypeObject,
		Properties: props,
	}).Clean(), nil
}

// convertFunctions converts the members of the Functions interface.
func (c *Converter) convertFunctions(iface *idl.Interface) ([]*schema.FunctionDescriptor, error) {
	return c.convertMembers(iface, true)
}

// convertEvents converts the members of the Events interface. Events have the
// shape of functions without static.
func (c *Converter) convertEvents(iface *idl.Interface) ([]*schema.FunctionDescriptor, error) {
	return c.convertMembers(iface, false)
}

func (c *Converter) convertMembers(iface *idl.Interface, withStatic bool) ([]*schema.FunctionDescriptor, error) {
	fns := make([]*schema.FunctionDescriptor, 0, len(iface.Members))
	for _, m := range iface.Members {
		if m == nil || m.Name == "" {
			return nil, errors.NewMalformedError("interface %s has a member without a name", iface.Name)
		}
		params, err := c.positionalProperties(m.Arguments)
		if err != nil {
			return nil, errors.Wrapf(err, "%s.%s", iface.Name, m.Name)
		}
		fn := &schema.FunctionDescriptor{
			Name:       m.Name,
			Type:       schema.TypeFunction,
			Parameters: params,
		}
		if withStatic && m.Static != nil {
			fn.Static = schema.Bool(*m.Static)
		}
		fns = append(fns, fn.Clean())
	}
	return fns, nil
}
