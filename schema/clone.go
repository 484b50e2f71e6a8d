package schema

// Clone returns a deep copy of d. The copy shares no pointers or slices with d.
func (d *PropertyDescriptor) Clone() *PropertyDescriptor {
	if d == nil {
		return nil
	}
	out := *d
	out.Items = d.Items.Clone()
	out.Optional = cloneBool(d.Optional)
	out.Nullable = cloneBool(d.Nullable)
	out.Parameters = CloneParameters(d.Parameters)
	return &out
}

// CloneParameters deep copies a parameter list, preserving nil.
func CloneParameters(params []*PropertyDescriptor) []*PropertyDescriptor {
	if params == nil {
		return nil
	}
	out := make([]*PropertyDescriptor, len(params))
	for i, p := range params {
		out[i] = p.Clone()
	}
	return out
}

// Clone returns a deep copy of f.
func (f *FunctionDescriptor) Clone() *FunctionDescriptor {
	if f == nil {
		return nil
	}
	out := *f
	out.Parameters = CloneParameters(f.Parameters)
	out.Static = cloneBool(f.Static)
	out.ContentScript = cloneBool(f.ContentScript)
	out.Dependencies = cloneStrings(f.Dependencies)
	return &out
}

func cloneBool(b *bool) *bool {
	if b == nil {
		return nil
	}
	v := *b
	return &v
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s...)
}
