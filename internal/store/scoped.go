package store

import (
	"sync"

	"github.com/roach88/reflux/internal/identified"
)

// Scoped is a child-shaped view of a parent store: it exposes a slice of the
// parent state and accepts a sub-case of the parent actions.
//
// A Scoped owns nothing. State reads derive from the parent snapshot, and
// Send embeds the child action and forwards it to the parent, so every
// dispatch still goes through the parent's single queue.
type Scoped[CS, CA any] struct {
	state     func() CS
	send      func(CA) error
	subscribe func(func(CS)) func()
}

// Scope derives a child store from parent.
//
// toChild selects the child state from a parent snapshot and must not
// mutate it. embed wraps a child action into the parent action type.
func Scope[S, A, CS, CA any](parent StoreOf[S, A], toChild func(S) CS, embed func(CA) A) *Scoped[CS, CA] {
	return &Scoped[CS, CA]{
		state: func() CS {
			return toChild(parent.State())
		},
		send: func(a CA) error {
			return parent.Send(embed(a))
		},
		subscribe: func(fn func(CS)) func() {
			return parent.Subscribe(func(s S) {
				fn(toChild(s))
			})
		},
	}
}

// State returns the child slice of the parent's current state.
func (c *Scoped[CS, CA]) State() CS {
	return c.state()
}

// Send embeds a and dispatches it to the parent.
func (c *Scoped[CS, CA]) Send(a CA) error {
	return c.send(a)
}

// Subscribe receives the child slice of every snapshot the parent publishes.
func (c *Scoped[CS, CA]) Subscribe(fn func(CS)) func() {
	return c.subscribe(fn)
}

// Element is a store scoped to one element of an identified collection.
//
// The element is tracked by identity, not position: after reorders State
// still returns the same element. If the element is removed, State keeps
// returning the last value seen, subscribers stop being notified, and Send
// still forwards. The parent's forEach reducer treats such sends as
// addressing misses.
type Element[ID comparable, T, EA any] struct {
	id      ID
	lookup  func() (T, bool)
	send    func(EA) error
	observe func(func(T)) func()

	mu   sync.Mutex
	last T
}

// ForEach returns one element store per entry of the collection selected by
// elements, in collection order at the time of the call.
//
// elements must return the collection held in the parent snapshot it is
// given. embed wraps an element action for an identity into the parent
// action type.
func ForEach[S, A any, ID comparable, T, EA any](
	parent StoreOf[S, A],
	elements func(S) identified.Array[ID, T],
	embed func(ID, EA) A,
) []*Element[ID, T, EA] {
	arr := elements(parent.State())
	out := make([]*Element[ID, T, EA], 0, arr.Len())

	for i := 0; i < arr.Len(); i++ {
		v := arr.At(i)
		id := arr.IDOf(v)
		el := &Element[ID, T, EA]{
			id:   id,
			last: v,
		}
		el.lookup = func() (T, bool) {
			coll := elements(parent.State())
			return coll.Get(id)
		}
		el.send = func(a EA) error {
			return parent.Send(embed(id, a))
		}
		el.observe = func(fn func(T)) func() {
			return parent.Subscribe(func(s S) {
				coll := elements(s)
				v, ok := coll.Get(id)
				if !ok {
					return
				}
				el.remember(v)
				fn(v)
			})
		}
		out = append(out, el)
	}

	return out
}

// ID returns the identity the element store is bound to.
func (e *Element[ID, T, EA]) ID() ID {
	return e.id
}

// State returns the element's current value, or the last value seen if the
// element has left the collection.
func (e *Element[ID, T, EA]) State() T {
	if v, ok := e.lookup(); ok {
		e.remember(v)
		return v
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.last
}

// Present reports whether the element is still in the collection.
func (e *Element[ID, T, EA]) Present() bool {
	_, ok := e.lookup()
	return ok
}

// Send dispatches a for this element through the parent store.
func (e *Element[ID, T, EA]) Send(a EA) error {
	return e.send(a)
}

// Subscribe receives the element's value from every parent snapshot that
// still contains it.
func (e *Element[ID, T, EA]) Subscribe(fn func(T)) func() {
	return e.observe(fn)
}

func (e *Element[ID, T, EA]) remember(v T) {
	e.mu.Lock()
	e.last = v
	e.mu.Unlock()
}
