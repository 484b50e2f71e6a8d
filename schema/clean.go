package schema

// Clean returns a copy of d without empty sequences. Nested descriptors are
// not visited; each is cleaned where it is constructed.
func (d *PropertyDescriptor) Clean() *PropertyDescriptor {
	out := *d
	out.Parameters = cleanSeq(d.Parameters)
	return &out
}

// Clean returns a copy of t without empty sequences. An empty Properties map
// is a record, not a sequence, and is kept.
func (t *TypeDescriptor) Clean() *TypeDescriptor {
	out := *t
	out.Enum = cleanSeq(t.Enum)
	return &out
}

// Clean returns a copy of f without empty sequences.
func (f *FunctionDescriptor) Clean() *FunctionDescriptor {
	out := *f
	out.Parameters = cleanSeq(f.Parameters)
	out.Dependencies = cleanSeq(f.Dependencies)
	return &out
}

// Clean returns a copy of n without empty sequences.
func (n *Namespace) Clean() *Namespace {
	out := *n
	out.Types = cleanSeq(n.Types)
	out.Functions = cleanSeq(n.Functions)
	out.Events = cleanSeq(n.Events)
	out.Dependencies = cleanSeq(n.Dependencies)
	return &out
}

func cleanSeq[T any](s []T) []T {
	if len(s) == 0 {
		return nil
	}
	return s
}
