package identified

// View is a read-only, filtered subsequence of an Array.
//
// A view is computed once from the array's contents at the time Filter is
// called. Positions within the view are view positions; use TrueOffsets and
// TrueDestination to translate them into storage positions of the array the
// view was taken from.
type View[ID comparable, T any] struct {
	ids    []ID
	values []T
}

// Filter returns the entries matching pred, in array order.
// A nil pred matches every entry.
func (a Array[ID, T]) Filter(pred func(T) bool) View[ID, T] {
	v := View[ID, T]{}
	for _, e := range a.elems {
		if pred == nil || pred(e) {
			v.ids = append(v.ids, a.idOf(e))
			v.values = append(v.values, e)
		}
	}
	return v
}

// Where returns a new Array holding the entries matching pred, in order.
// Unlike Filter the result is a full Array addressable by identity.
func (a Array[ID, T]) Where(pred func(T) bool) Array[ID, T] {
	out := New(a.idOf)
	for _, e := range a.elems {
		if pred(e) {
			out.index[a.idOf(e)] = len(out.elems)
			out.elems = append(out.elems, e)
		}
	}
	return out
}

// Len returns the number of entries in the view.
func (v View[ID, T]) Len() int {
	return len(v.values)
}

// At returns the value at view position i.
// Panics if i is out of range.
func (v View[ID, T]) At(i int) T {
	return v.values[i]
}

// ID returns the identity at view position i.
// Panics if i is out of range.
func (v View[ID, T]) ID(i int) ID {
	return v.ids[i]
}

// Values returns a copy of the view's values in order.
func (v View[ID, T]) Values() []T {
	out := make([]T, len(v.values))
	copy(out, v.values)
	return out
}

// IDs returns a copy of the view's identities in order.
func (v View[ID, T]) IDs() []ID {
	out := make([]ID, len(v.ids))
	copy(out, v.ids)
	return out
}

// TrueOffsets maps view positions to the storage positions in a.
//
// Every offset must be a valid view position. An identity that is no longer
// present in a is dropped from the result, which makes removing or moving an
// element deleted since the view was taken a no-op for that element.
func (v View[ID, T]) TrueOffsets(a *Array[ID, T], offsets []int) ([]int, error) {
	out := make([]int, 0, len(offsets))
	for _, off := range offsets {
		if off < 0 || off >= len(v.ids) {
			return nil, &BoundsError{Op: "view", Offset: off, Len: len(v.ids)}
		}
		if i, ok := a.index[v.ids[off]]; ok {
			out = append(out, i)
		}
	}
	return out, nil
}

// TrueDestination maps a view insertion offset to a storage insertion offset
// in a.
//
// The destination resolves to the storage position of the identity currently
// at that view position. When the view has no identity there (moving past the
// last visible entry) or that identity has left a, the destination is the
// true end of a, after every element the filter hides.
func (v View[ID, T]) TrueDestination(a *Array[ID, T], to int) int {
	if to >= 0 && to < len(v.ids) {
		if i, ok := a.index[v.ids[to]]; ok {
			return i
		}
	}
	return a.Len()
}

// MoveInView moves entries addressed by view positions.
// from and to are positions in view; both are remapped through identity
// before the array is mutated.
func (a *Array[ID, T]) MoveInView(view View[ID, T], from []int, to int) error {
	if to < 0 || to > view.Len() {
		return &BoundsError{Op: "view", Offset: to, Len: view.Len()}
	}
	source, err := view.TrueOffsets(a, from)
	if err != nil {
		return err
	}
	return a.Move(source, view.TrueDestination(a, to))
}

// RemoveInView removes entries addressed by view positions.
func (a *Array[ID, T]) RemoveInView(view View[ID, T], offsets []int) error {
	source, err := view.TrueOffsets(a, offsets)
	if err != nil {
		return err
	}
	return a.RemoveAt(source...)
}
