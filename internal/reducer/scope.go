package reducer

import (
	"github.com/roach88/reflux/internal/effect"
	"github.com/roach88/reflux/internal/identified"
)

// Lens gives read/write access to a child state C inside a parent state P.
//
// Get returns a pointer into the parent, so writes through it are the set
// half of the accessor.
type Lens[P, C any] struct {
	Get func(*P) *C
}

// Case matches and builds the child-action case of a parent action type.
type Case[P, C any] struct {
	// Extract returns the child action if the parent action is this case.
	Extract func(P) (C, bool)

	// Embed wraps a child action back into the parent action type.
	Embed func(C) P
}

// ElementCase matches and builds the element-addressed case of a parent
// action: an element identity paired with an element action.
type ElementCase[P any, ID comparable, EA any] struct {
	// Extract returns the target identity and element action if the parent
	// action is this case.
	Extract func(P) (ID, EA, bool)

	// Embed wraps an element action for the given identity.
	Embed func(ID, EA) P
}

// Scope lifts child, a reducer over (C, CA), into a reducer over (P, PA).
//
// For a parent action that does not match actionCase the returned reducer is
// a no-op. Otherwise child runs against the state selected by lens, and the
// actions its effect produces are wrapped with actionCase.Embed.
func Scope[P, PA, C, CA any](child Reducer[C, CA], lens Lens[P, C], actionCase Case[PA, CA]) Reducer[P, PA] {
	return func(state *P, action PA) (effect.Effect[PA], error) {
		childAction, ok := actionCase.Extract(action)
		if !ok {
			return effect.None[PA](), nil
		}

		e, err := child(lens.Get(state), childAction)
		if err != nil {
			return effect.None[PA](), err
		}
		return effect.Map(e, actionCase.Embed), nil
	}
}

// ForEach lifts elem, a reducer over one element of an identified.Array,
// into a reducer over the parent state holding the array.
//
// The parent action must match elementCase. If the addressed identity is not
// in the array, the reducer is a no-op with no effect; stale identities are
// expected when an element is deleted while effects aimed at it are still in
// flight. Otherwise elem runs on a copy of the element, the copy is written
// back at the same identity, and the effect's actions are wrapped with
// elementCase.Embed for that identity.
//
// Every cancellation key in the element effect is namespaced by the element
// identity, so the same key used by two elements never collides.
func ForEach[P, PA any, ID comparable, T, EA any](
	elem Reducer[T, EA],
	collection Lens[P, identified.Array[ID, T]],
	elementCase ElementCase[PA, ID, EA],
) Reducer[P, PA] {
	return func(state *P, action PA) (effect.Effect[PA], error) {
		id, elementAction, ok := elementCase.Extract(action)
		if !ok {
			return effect.None[PA](), nil
		}

		arr := collection.Get(state)
		value, found := arr.Get(id)
		if !found {
			return effect.None[PA](), nil
		}

		e, err := elem(&value, elementAction)
		if err != nil {
			return effect.None[PA](), err
		}
		if _, err := arr.Update(id, func(v *T) { *v = value }); err != nil {
			return effect.None[PA](), err
		}

		embed := func(a EA) PA { return elementCase.Embed(id, a) }
		return effect.Map(effect.Namespace(e, id), embed), nil
	}
}
