package queue

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPopOrdersByPriorityThenSeq(t *testing.T) {
	q := New()

	low := Item{ID: uuid.New(), Priority: 2, Seq: 1}
	high := Item{ID: uuid.New(), Priority: 9, Seq: 2}
	mid := Item{ID: uuid.New(), Priority: 5, Seq: 3}

	q.Push(low)
	q.Push(high)
	q.Push(mid)
	require.Equal(t, 3, q.Len())

	got, ok := q.Pop()
	require.True(t, ok)
	assert.Equal(t, high.ID, got.ID)

	got, _ = q.Pop()
	assert.Equal(t, mid.ID, got.ID)

	got, _ = q.Pop()
	assert.Equal(t, low.ID, got.ID)

	_, ok = q.Pop()
	assert.False(t, ok)
}

func TestEqualPriorityIsFIFO(t *testing.T) {
	q := New()

	var want []uuid.UUID
	for seq := uint64(1); seq <= 20; seq++ {
		it := Item{ID: uuid.New(), Priority: 5, Seq: seq}
		q.Push(it)
		want = append(want, it.ID)
	}

	var got []uuid.UUID
	for {
		it, ok := q.Pop()
		if !ok {
			break
		}
		got = append(got, it.ID)
	}
	assert.Equal(t, want, got)
}

func TestInterleavedPrioritiesKeepPerLevelOrder(t *testing.T) {
	q := New()

	a := Item{ID: uuid.New(), Priority: 3, Seq: 1}
	b := Item{ID: uuid.New(), Priority: 8, Seq: 2}
	c := Item{ID: uuid.New(), Priority: 3, Seq: 3}
	d := Item{ID: uuid.New(), Priority: 8, Seq: 4}
	for _, it := range []Item{a, b, c, d} {
		q.Push(it)
	}

	var got []uuid.UUID
	for {
		it, ok := q.Pop()
		if !ok {
			break
		}
		got = append(got, it.ID)
	}
	assert.Equal(t, []uuid.UUID{b.ID, d.ID, a.ID, c.ID}, got)
}

func TestRemoveDropsFromMiddle(t *testing.T) {
	q := New()

	keep1 := Item{ID: uuid.New(), Priority: 9, Seq: 1}
	victim := Item{ID: uuid.New(), Priority: 5, Seq: 2}
	keep2 := Item{ID: uuid.New(), Priority: 1, Seq: 3}
	q.Push(keep1)
	q.Push(victim)
	q.Push(keep2)

	assert.True(t, q.Remove(victim.ID))
	assert.False(t, q.Remove(victim.ID), "second remove finds nothing")
	assert.Equal(t, 2, q.Len())

	got, _ := q.Pop()
	assert.Equal(t, keep1.ID, got.ID)
	got, _ = q.Pop()
	assert.Equal(t, keep2.ID, got.ID)
}

func TestRemoveKeepsHeapOrdering(t *testing.T) {
	q := New()

	items := make([]Item, 0, 50)
	for seq := uint64(1); seq <= 50; seq++ {
		it := Item{ID: uuid.New(), Priority: int(seq%10) + 1, Seq: seq}
		items = append(items, it)
		q.Push(it)
	}

	// drop every third item, then verify pops stay sorted
	removed := make(map[uuid.UUID]bool)
	for i := 0; i < len(items); i += 3 {
		require.True(t, q.Remove(items[i].ID))
		removed[items[i].ID] = true
	}

	var prev *Item
	for {
		it, ok := q.Pop()
		if !ok {
			break
		}
		assert.False(t, removed[it.ID], "removed item popped")
		if prev != nil {
			higher := it.Priority < prev.Priority ||
				(it.Priority == prev.Priority && it.Seq > prev.Seq)
			assert.True(t, higher, "pop order violated: %+v after %+v", it, *prev)
		}
		cp := it
		prev = &cp
	}
}

func TestPushDuplicateIsNoOp(t *testing.T) {
	q := New()

	it := Item{ID: uuid.New(), Priority: 5, Seq: 1}
	q.Push(it)
	q.Push(Item{ID: it.ID, Priority: 9, Seq: 2})

	assert.Equal(t, 1, q.Len())
	got, ok := q.Pop()
	require.True(t, ok)
	assert.Equal(t, 5, got.Priority)
}

func TestSnapshotIsACopy(t *testing.T) {
	q := New()
	q.Push(Item{ID: uuid.New(), Priority: 5, Seq: 1})

	snap := q.Snapshot()
	require.Len(t, snap, 1)
	snap[0].Priority = 99

	got, _ := q.Pop()
	assert.Equal(t, 5, got.Priority)
}
