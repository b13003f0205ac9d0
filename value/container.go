package value

// List is an ordered sequence of values.
type List struct {
	Values []Value
}

func NewListOf(vals ...Value) *List {
	return &List{Values: vals}
}

func (l *List) Size() int { return len(l.Values) }

func (l *List) Equal(o *List) bool {
	if len(l.Values) != len(o.Values) {
		return false
	}
	for i := range l.Values {
		if !l.Values[i].Equal(o.Values[i]) {
			return false
		}
	}
	return true
}

// Set is an unordered collection. Duplicates are tolerated here; the row codec removes them on
// encode.
type Set struct {
	Values []Value
}

func NewSetOf(vals ...Value) *Set {
	return &Set{Values: vals}
}

func (s *Set) Size() int { return len(s.Values) }

func (s *Set) Contains(v Value) bool {
	for _, e := range s.Values {
		if e.Equal(v) {
			return true
		}
	}
	return false
}

func (s *Set) Equal(o *Set) bool {
	for _, e := range s.Values {
		if !o.Contains(e) {
			return false
		}
	}
	for _, e := range o.Values {
		if !s.Contains(e) {
			return false
		}
	}
	return true
}
