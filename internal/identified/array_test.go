package identified

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID   string
	Done bool
	Rank int
}

func itemID(it item) string { return it.ID }

func ids(a *Array[string, item]) []string { return a.IDs() }

func mustOf(t *testing.T, items ...item) Array[string, item] {
	t.Helper()
	a, err := Of(itemID, items...)
	require.NoError(t, err)
	return a
}

func TestOf_RejectsDuplicates(t *testing.T) {
	_, err := Of(itemID, item{ID: "a"}, item{ID: "b"}, item{ID: "a"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateID)
	assert.Contains(t, err.Error(), "a")
}

func TestArray_Accessors(t *testing.T) {
	a := mustOf(t, item{ID: "a"}, item{ID: "b", Done: true}, item{ID: "c"})

	assert.Equal(t, 3, a.Len())
	assert.Equal(t, "b", a.At(1).ID)

	got, ok := a.Get("b")
	require.True(t, ok)
	assert.True(t, got.Done)

	_, ok = a.Get("missing")
	assert.False(t, ok)

	i, ok := a.Index("c")
	require.True(t, ok)
	assert.Equal(t, 2, i)

	assert.True(t, a.Contains("a"))
	assert.False(t, a.Contains("z"))
	assert.Equal(t, []string{"a", "b", "c"}, ids(&a))
}

func TestArray_Insert(t *testing.T) {
	a := New(itemID)

	require.NoError(t, a.Insert(item{ID: "b"}, 0))
	require.NoError(t, a.Insert(item{ID: "a"}, 0))
	require.NoError(t, a.Append(item{ID: "d"}))
	require.NoError(t, a.Insert(item{ID: "c"}, 2))

	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(&a))

	i, _ := a.Index("d")
	assert.Equal(t, 3, i, "index rebuilt after insert")
}

func TestArray_InsertDuplicateIsRejected(t *testing.T) {
	a := mustOf(t, item{ID: "a"}, item{ID: "b"})

	err := a.Insert(item{ID: "a", Done: true}, 0)
	require.ErrorIs(t, err, ErrDuplicateID)
	assert.Equal(t, []string{"a", "b"}, ids(&a), "collection unchanged")

	got, _ := a.Get("a")
	assert.False(t, got.Done)
}

func TestArray_InsertOutOfBounds(t *testing.T) {
	a := mustOf(t, item{ID: "a"})

	for _, at := range []int{-1, 2} {
		err := a.Insert(item{ID: "x"}, at)
		require.Error(t, err)
		assert.True(t, IsBoundsError(err))
		assert.ErrorIs(t, err, ErrOutOfBounds)
	}
	assert.Equal(t, 1, a.Len())
}

func TestArray_Update(t *testing.T) {
	a := mustOf(t, item{ID: "a"}, item{ID: "b"})

	found, err := a.Update("b", func(it *item) { it.Done = true })
	require.NoError(t, err)
	assert.True(t, found)
	got, _ := a.Get("b")
	assert.True(t, got.Done)

	found, err = a.Update("zzz", func(it *item) { t.Fatal("must not be called") })
	require.NoError(t, err)
	assert.False(t, found)
}

func TestArray_UpdateCannotChangeIdentity(t *testing.T) {
	a := mustOf(t, item{ID: "a"})

	_, err := a.Update("a", func(it *item) { it.ID = "b" })
	require.ErrorIs(t, err, ErrIdentityChanged)
	assert.Equal(t, []string{"a"}, ids(&a))
}

func TestArray_RemoveAllKeepsOrder(t *testing.T) {
	var items []item
	for i := 0; i < 10; i++ {
		items = append(items, item{ID: fmt.Sprintf("t%d", i), Done: i%3 == 0})
	}
	a := mustOf(t, items...)

	removed := a.RemoveAll(func(it item) bool { return it.Done })

	assert.Equal(t, 4, removed)
	assert.Equal(t, []string{"t1", "t2", "t4", "t5", "t7", "t8"}, ids(&a))
	for _, it := range a.Values() {
		assert.False(t, it.Done)
	}
}

func TestArray_RemoveAt(t *testing.T) {
	a := mustOf(t, item{ID: "a"}, item{ID: "b"}, item{ID: "c"}, item{ID: "d"})

	require.NoError(t, a.RemoveAt(3, 1, 1))
	assert.Equal(t, []string{"a", "c"}, ids(&a))

	err := a.RemoveAt(0, 5)
	require.True(t, IsBoundsError(err))
	assert.Equal(t, []string{"a", "c"}, ids(&a), "nothing removed on bounds error")

	require.NoError(t, a.RemoveAt())
	assert.Equal(t, 2, a.Len())
}

func TestArray_Move(t *testing.T) {
	tests := []struct {
		name string
		from []int
		to   int
		want []string
	}{
		{"forward one", []int{0}, 2, []string{"b", "a", "c", "d"}},
		{"to end", []int{0}, 4, []string{"b", "c", "d", "a"}},
		{"backward", []int{3}, 0, []string{"d", "a", "b", "c"}},
		{"in place", []int{1}, 1, []string{"a", "b", "c", "d"}},
		{"in place after", []int{1}, 2, []string{"a", "b", "c", "d"}},
		{"several keep order", []int{3, 0}, 2, []string{"b", "a", "d", "c"}},
		{"empty source", nil, 1, []string{"a", "b", "c", "d"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := mustOf(t, item{ID: "a"}, item{ID: "b"}, item{ID: "c"}, item{ID: "d"})
			require.NoError(t, a.Move(tt.from, tt.to))
			assert.Equal(t, tt.want, ids(&a))
		})
	}
}

func TestArray_MoveOutOfBounds(t *testing.T) {
	a := mustOf(t, item{ID: "a"}, item{ID: "b"})

	err := a.Move([]int{2}, 0)
	require.True(t, IsBoundsError(err))

	err = a.Move([]int{0}, 3)
	var be *BoundsError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, "move", be.Op)
	assert.Equal(t, 3, be.Offset)
	assert.Equal(t, 2, be.Len)

	assert.Equal(t, []string{"a", "b"}, ids(&a))
}

func TestArray_SortIsStable(t *testing.T) {
	a := mustOf(t,
		item{ID: "a", Rank: 2},
		item{ID: "b", Rank: 1},
		item{ID: "c", Rank: 2},
		item{ID: "d", Rank: 1},
		item{ID: "e", Rank: 2},
	)

	a.Sort(func(x, y item) bool { return x.Rank < y.Rank })

	assert.Equal(t, []string{"b", "d", "a", "c", "e"}, ids(&a))
	i, _ := a.Index("a")
	assert.Equal(t, 2, i, "index rebuilt after sort")
}

func TestArray_SortAllEqualIsIdentity(t *testing.T) {
	a := mustOf(t, item{ID: "x"}, item{ID: "y"}, item{ID: "z"})
	a.Sort(func(x, y item) bool { return false })
	assert.Equal(t, []string{"x", "y", "z"}, ids(&a))
}

func TestArray_CopyIsIndependent(t *testing.T) {
	a := mustOf(t, item{ID: "a"}, item{ID: "b"})
	snapshot := a

	require.NoError(t, a.Insert(item{ID: "c"}, 0))
	_, err := a.Update("a", func(it *item) { it.Done = true })
	require.NoError(t, err)
	a.Sort(func(x, y item) bool { return x.ID > y.ID })

	assert.Equal(t, []string{"a", "b"}, ids(&snapshot))
	got, _ := snapshot.Get("a")
	assert.False(t, got.Done)
	assert.False(t, snapshot.Contains("c"))
}

func TestArray_Clone(t *testing.T) {
	a := mustOf(t, item{ID: "a"})
	b := a.Clone()
	require.NoError(t, b.Append(item{ID: "b"}))

	assert.Equal(t, 1, a.Len())
	assert.Equal(t, 2, b.Len())
}
