package convert

import (
	"github.com/teranos/apidefs/errors"
	"github.com/teranos/apidefs/idl"
	"github.com/teranos/apidefs/logger"
	"github.com/teranos/apidefs/schema"
)

// callbackTable maps a callback name to its converted parameter list.
type callbackTable map[string][]*schema.PropertyDescriptor

// buildCallbackTable converts callbacks positionally. When two callbacks share
// a name the first declaration wins and the later one is ignored.
func (c *Converter) buildCallbackTable(callbacks []*idl.Callback) (callbackTable, error) {
	table := make(callbackTable, len(callbacks))
	for _, cb := range callbacks {
		if _, seen := table[cb.Name]; seen {
			c.log.Warnw("Duplicate callback ignored, first declaration wins", logger.FieldCallback, cb.Name)
			continue
		}
		params, err := c.positionalProperties(cb.Arguments)
		if err != nil {
			return nil, errors.Wrapf(err, "callback %s", cb.Name)
		}
		table[cb.Name] = params
	}
	return table, nil
}

// expandCallbacks returns copies of fns in which every parameter that
// references a callback is replaced by an inline function descriptor. Only
// the parameters of fns are visited; references inside an inlined parameter
// list are left as they are. fns is not modified.
func (c *Converter) expandCallbacks(fns []*schema.FunctionDescriptor, table callbackTable) []*schema.FunctionDescriptor {
	if fns == nil {
		return nil
	}
	out := make([]*schema.FunctionDescriptor, len(fns))
	for i, fn := range fns {
		expanded := fn.Clone()
		for j, p := range expanded.Parameters {
			params, ok := table[p.Ref]
			if !p.IsRef() || !ok {
				continue
			}
			inlined := p.Clone()
			inlined.Ref = ""
			inlined.Type = schema.TypeFunction
			inlined.Parameters = schema.CloneParameters(params)
			c.warnNestedCallbacks(fn.Name, p.Name, inlined.Parameters, table)
			expanded.Parameters[j] = inlined.Clean()
		}
		out[i] = expanded
	}
	return out
}

// warnNestedCallbacks reports callback references that remain unresolved
// inside an inlined parameter list.
func (c *Converter) warnNestedCallbacks(fn, param string, params []*schema.PropertyDescriptor, table callbackTable) {
	for _, p := range params {
		ref := p.Ref
		if p.Items != nil {
			ref = p.Items.Ref
		}
		if _, ok := table[ref]; ok && ref != "" {
			c.log.Warnw("Nested callback reference left unexpanded",
				logger.FieldMember, fn,
				logger.FieldParameter, param+"."+p.Name,
				logger.FieldReference, ref)
		}
	}
}
