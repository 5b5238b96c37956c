// Package identified implements an ordered collection whose elements carry a
// stable identity.
//
// An Array keeps its own order, independent of identity, and never holds two
// elements with the same identity. Elements can be addressed by position or
// by identity. Filtered views expose a subsequence of entries; positions
// within a view are never storage positions and are remapped through
// identity before any mutation.
//
// Storage is copy-on-write. Every mutating method installs a fresh backing
// slice, so a copy of an Array taken before a mutation (for example a state
// snapshot handed to a listener) keeps reading the old contents.
package identified

import (
	"slices"
	"sort"
)

// Array is an ordered, identity-unique collection.
//
// Array is meant to be held by value inside a state struct. Copying the
// struct copies the Array cheaply, and the copy-on-write storage keeps the
// two copies independent. The zero value has no identity function and is not
// usable; construct with New or Of.
type Array[ID comparable, T any] struct {
	idOf  func(T) ID
	elems []T
	index map[ID]int
}

// New creates an empty Array that identifies elements with idOf.
func New[ID comparable, T any](idOf func(T) ID) Array[ID, T] {
	return Array[ID, T]{
		idOf:  idOf,
		index: make(map[ID]int),
	}
}

// Of creates an Array holding values in order.
// Returns ErrDuplicateID if two values share an identity.
func Of[ID comparable, T any](idOf func(T) ID, values ...T) (Array[ID, T], error) {
	a := New(idOf)
	elems := make([]T, 0, len(values))
	for _, v := range values {
		id := idOf(v)
		if _, exists := a.index[id]; exists {
			return Array[ID, T]{}, duplicateError(id)
		}
		a.index[id] = len(elems)
		elems = append(elems, v)
	}
	a.elems = elems
	return a, nil
}

// Len returns the number of elements.
func (a Array[ID, T]) Len() int {
	return len(a.elems)
}

// At returns the element at position i.
// Panics if i is out of range, like slice indexing.
func (a Array[ID, T]) At(i int) T {
	return a.elems[i]
}

// IDOf returns the identity of v as computed by this array.
func (a Array[ID, T]) IDOf(v T) ID {
	return a.idOf(v)
}

// Get returns the element with the given identity.
func (a Array[ID, T]) Get(id ID) (T, bool) {
	i, ok := a.index[id]
	if !ok {
		var zero T
		return zero, false
	}
	return a.elems[i], true
}

// Index returns the storage position of the element with the given identity.
func (a Array[ID, T]) Index(id ID) (int, bool) {
	i, ok := a.index[id]
	return i, ok
}

// Contains reports whether an element with the given identity is present.
func (a Array[ID, T]) Contains(id ID) bool {
	_, ok := a.index[id]
	return ok
}

// Values returns a copy of the elements in order.
func (a Array[ID, T]) Values() []T {
	return slices.Clone(a.elems)
}

// IDs returns the identities in order.
func (a Array[ID, T]) IDs() []ID {
	ids := make([]ID, len(a.elems))
	for i, v := range a.elems {
		ids[i] = a.idOf(v)
	}
	return ids
}

// Clone returns an independent copy.
func (a Array[ID, T]) Clone() Array[ID, T] {
	return Array[ID, T]{
		idOf:  a.idOf,
		elems: slices.Clone(a.elems),
		index: cloneIndex(a.index),
	}
}

// Insert places v at position at, shifting later elements back.
// at may equal Len() to append.
func (a *Array[ID, T]) Insert(v T, at int) error {
	if at < 0 || at > len(a.elems) {
		return &BoundsError{Op: "insert", Offset: at, Len: len(a.elems)}
	}
	id := a.idOf(v)
	if _, exists := a.index[id]; exists {
		return duplicateError(id)
	}

	elems := make([]T, 0, len(a.elems)+1)
	elems = append(elems, a.elems[:at]...)
	elems = append(elems, v)
	elems = append(elems, a.elems[at:]...)
	a.replace(elems)
	return nil
}

// Append adds v at the end.
func (a *Array[ID, T]) Append(v T) error {
	return a.Insert(v, len(a.elems))
}

// Update applies fn to the element with the given identity and stores the
// result in place. fn must not change the element's identity.
//
// Returns false, without calling fn, if the identity is absent.
// Returns ErrIdentityChanged if fn altered the identity; the array is left
// unchanged in that case.
func (a *Array[ID, T]) Update(id ID, fn func(*T)) (bool, error) {
	i, ok := a.index[id]
	if !ok {
		return false, nil
	}

	v := a.elems[i]
	fn(&v)
	if got := a.idOf(v); got != id {
		return true, identityChangedError(id, got)
	}

	elems := slices.Clone(a.elems)
	elems[i] = v
	a.elems = elems
	return true, nil
}

// RemoveAll removes every element matching pred, keeping the rest in order.
// Returns the number of elements removed.
func (a *Array[ID, T]) RemoveAll(pred func(T) bool) int {
	kept := make([]T, 0, len(a.elems))
	for _, v := range a.elems {
		if !pred(v) {
			kept = append(kept, v)
		}
	}
	removed := len(a.elems) - len(kept)
	if removed > 0 {
		a.replace(kept)
	}
	return removed
}

// RemoveAt removes the elements at the given positions.
// Positions are treated as a set; duplicates collapse. Nothing is removed if
// any position is out of range.
func (a *Array[ID, T]) RemoveAt(offsets ...int) error {
	drop, err := a.offsetSet("remove", offsets)
	if err != nil {
		return err
	}
	if len(drop) == 0 {
		return nil
	}

	kept := make([]T, 0, len(a.elems)-len(drop))
	for i, v := range a.elems {
		if !drop[i] {
			kept = append(kept, v)
		}
	}
	a.replace(kept)
	return nil
}

// Move relocates the elements at positions from so they sit before the
// element that was at position to, keeping their relative order.
//
// to is an insertion offset into the array as it is before the move and may
// equal Len() to move to the end. Positions in from are treated as a set.
func (a *Array[ID, T]) Move(from []int, to int) error {
	moving, err := a.offsetSet("move", from)
	if err != nil {
		return err
	}
	if to < 0 || to > len(a.elems) {
		return &BoundsError{Op: "move", Offset: to, Len: len(a.elems)}
	}
	if len(moving) == 0 {
		return nil
	}

	var before, picked, after []T
	for i, v := range a.elems {
		switch {
		case moving[i]:
			picked = append(picked, v)
		case i < to:
			before = append(before, v)
		default:
			after = append(after, v)
		}
	}

	elems := make([]T, 0, len(a.elems))
	elems = append(elems, before...)
	elems = append(elems, picked...)
	elems = append(elems, after...)
	a.replace(elems)
	return nil
}

// Sort orders the elements by less. The sort is stable: elements for which
// neither less(a, b) nor less(b, a) holds keep their relative order.
func (a *Array[ID, T]) Sort(less func(x, y T) bool) {
	elems := slices.Clone(a.elems)
	sort.SliceStable(elems, func(i, j int) bool { return less(elems[i], elems[j]) })
	a.replace(elems)
}

// replace installs elems as the new backing slice and rebuilds the index.
// Callers must pass a slice they own.
func (a *Array[ID, T]) replace(elems []T) {
	index := make(map[ID]int, len(elems))
	for i, v := range elems {
		index[a.idOf(v)] = i
	}
	a.elems = elems
	a.index = index
}

// offsetSet validates offsets and returns them as a set.
func (a *Array[ID, T]) offsetSet(op string, offsets []int) (map[int]bool, error) {
	set := make(map[int]bool, len(offsets))
	for _, off := range offsets {
		if off < 0 || off >= len(a.elems) {
			return nil, &BoundsError{Op: op, Offset: off, Len: len(a.elems)}
		}
		set[off] = true
	}
	return set, nil
}

func cloneIndex[ID comparable](m map[ID]int) map[ID]int {
	out := make(map[ID]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
