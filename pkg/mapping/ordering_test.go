package mapping

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func protocols(m *Mapping) []string {
	var out []string
	for _, r := range m.Responses {
		out = append(out, r.Protocol)
	}
	return out
}

func sequences(m *Mapping) []int {
	var out []int
	for _, r := range m.Responses {
		out = append(out, r.Sequence)
	}
	return out
}

func unordered(protocol string) Response {
	r := NewResponse(protocol)
	r.Ordered = false
	return r
}

func TestMapping_AppendAndInsert(t *testing.T) {
	m := &Mapping{}

	assert.Equal(t, 0, m.Append(NewResponse("A")))
	m.Append(unordered("B"))
	m.Append(NewResponse("C"))
	require.NoError(t, m.Insert(0, NewResponse("Z")))

	assert.Equal(t, []string{"Z", "A", "B", "C"}, protocols(m))
	assert.Equal(t, []int{1, 2, 0, 3}, sequences(m))

	require.NoError(t, m.Insert(4, NewResponse("END")))
	assert.Equal(t, 4, m.Responses[4].Sequence)

	err := m.Insert(9, NewResponse("X"))
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestMapping_Remove(t *testing.T) {
	m := &Mapping{}
	m.Append(NewResponse("A"))
	m.Append(NewResponse("B"))
	m.Append(NewResponse("C"))
	require.NoError(t, m.AssignGroup(1, "G"))

	removed, err := m.Remove(1)

	require.NoError(t, err)
	assert.Equal(t, "B", removed.Protocol)
	assert.Equal(t, []int{1, 2}, sequences(m))
	_, ok := m.Group("G")
	assert.True(t, ok, "groups survive removal of their last member")

	_, err = m.Remove(5)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	_, _ = m.Remove(0)
	_, _ = m.Remove(0)
	assert.Nil(t, m.Responses)
}

func TestMapping_Moves(t *testing.T) {
	m := &Mapping{}
	m.Append(NewResponse("A"))
	m.Append(unordered("B"))
	m.Append(NewResponse("C"))

	t.Run("move up swaps and renumbers", func(t *testing.T) {
		moved, err := m.MoveUp(2)
		require.NoError(t, err)
		assert.True(t, moved)
		assert.Equal(t, []string{"A", "C", "B"}, protocols(m))
		assert.Equal(t, []int{1, 2, 0}, sequences(m))
	})

	t.Run("move up at top is a no-op", func(t *testing.T) {
		moved, err := m.MoveUp(0)
		require.NoError(t, err)
		assert.False(t, moved)
	})

	t.Run("move down", func(t *testing.T) {
		moved, err := m.MoveDown(0)
		require.NoError(t, err)
		assert.True(t, moved)
		assert.Equal(t, []string{"C", "A", "B"}, protocols(m))
		assert.Equal(t, []int{1, 2, 0}, sequences(m))

		moved, err = m.MoveDown(2)
		require.NoError(t, err)
		assert.False(t, moved)
	})

	t.Run("move across several positions", func(t *testing.T) {
		require.NoError(t, m.Move(2, 0))
		assert.Equal(t, []string{"B", "C", "A"}, protocols(m))
		assert.Equal(t, []int{0, 1, 2}, sequences(m))

		require.NoError(t, m.Move(0, 2))
		assert.Equal(t, []string{"C", "A", "B"}, protocols(m))
	})

	t.Run("out of range", func(t *testing.T) {
		_, err := m.MoveDown(-1)
		assert.ErrorIs(t, err, ErrIndexOutOfRange)
		assert.ErrorIs(t, m.Move(0, 3), ErrIndexOutOfRange)
	})
}

func TestMapping_SetOrderedAndEdit(t *testing.T) {
	m := &Mapping{}
	m.Append(NewResponse("A"))
	m.Append(NewResponse("B"))
	m.Append(NewResponse("C"))

	require.NoError(t, m.SetOrdered(0, false))
	assert.Equal(t, []int{0, 1, 2}, sequences(m))

	require.NoError(t, m.Edit(1, func(r *Response) {
		r.Kind = Conditional
		r.Condition = "if the hero exists"
		r.Repetition = Many
		r.Ordered = false
		r.Group = "A"
	}))
	assert.Equal(t, []int{0, 0, 1}, sequences(m))
	assert.Equal(t, Conditional, m.Responses[1].Kind)
	_, ok := m.Group("A")
	assert.True(t, ok)

	assert.ErrorIs(t, m.SetOrdered(3, true), ErrIndexOutOfRange)
}

func TestMapping_Groups(t *testing.T) {
	m := &Mapping{}
	m.Append(NewResponse("Login"))
	m.Append(NewResponse("Heroes"))
	m.Append(NewResponse("Bag"))
	m.Append(NewResponse("Done"))

	require.NoError(t, m.AssignGroup(1, "A"))
	require.NoError(t, m.AssignGroup(2, "A"))

	t.Run("grouping never renumbers", func(t *testing.T) {
		assert.Equal(t, []int{1, 2, 3, 4}, sequences(m))
		assert.Len(t, m.Groups, 1)
		assert.Equal(t, []int{1, 2}, m.GroupMembers("A"))
		assert.Nil(t, m.GroupMembers(""))
	})

	t.Run("relations", func(t *testing.T) {
		rel, err := m.Relation(1, 2)
		require.NoError(t, err)
		assert.Equal(t, RelationIndeterminate, rel)

		rel, _ = m.Relation(0, 2)
		assert.Equal(t, RelationBefore, rel)
		rel, _ = m.Relation(3, 1)
		assert.Equal(t, RelationAfter, rel)
		rel, _ = m.Relation(2, 2)
		assert.Equal(t, RelationSame, rel)
		assert.Equal(t, "indeterminate", RelationIndeterminate.String())

		_, err = m.Relation(0, 9)
		assert.ErrorIs(t, err, ErrIndexOutOfRange)
	})

	t.Run("stages collapse groups", func(t *testing.T) {
		assert.Equal(t, [][]int{{0}, {1, 2}, {3}}, m.Stages())
	})

	t.Run("split group keeps storage order", func(t *testing.T) {
		split := &Mapping{}
		split.Append(NewResponse("G1"))
		split.Append(NewResponse("X"))
		split.Append(NewResponse("Y"))
		split.Append(NewResponse("G2"))
		require.NoError(t, split.AssignGroup(0, "A"))
		require.NoError(t, split.AssignGroup(3, "A"))

		assert.Equal(t, [][]int{{0}, {1}, {2}, {3}}, split.Stages())

		rel, err := split.Relation(0, 3)
		require.NoError(t, err)
		assert.Equal(t, RelationIndeterminate, rel)
		rel, _ = split.Relation(1, 3)
		assert.Equal(t, RelationBefore, rel)
		rel, _ = split.Relation(0, 1)
		assert.Equal(t, RelationBefore, rel)

		var order []int
		for _, stage := range split.Stages() {
			for _, i := range stage {
				order = append(order, split.Responses[i].Sequence)
			}
		}
		assert.Equal(t, []int{1, 2, 3, 4}, order)
	})

	t.Run("labels", func(t *testing.T) {
		require.NoError(t, m.SetOrdered(2, false))
		assert.Equal(t, "2[A]", m.Responses[1].Label())
		assert.Equal(t, "x[A]", m.Responses[2].Label())
		assert.Equal(t, "3", m.Responses[3].Label())
	})

	t.Run("descriptions", func(t *testing.T) {
		require.NoError(t, m.SetGroupDescription("A", "heroes and bag arrive in any order"))
		g, ok := m.Group("A")
		require.True(t, ok)
		assert.Equal(t, "heroes and bag arrive in any order", g.Description)

		require.NoError(t, m.SetGroupDescription("B", "declared ahead of use"))
		assert.Len(t, m.Groups, 2)
		assert.Error(t, m.SetGroupDescription("", "x"))
	})

	t.Run("orphans kept until pruned", func(t *testing.T) {
		require.NoError(t, m.ClearGroup(1))
		require.NoError(t, m.ClearGroup(2))
		assert.ElementsMatch(t, []string{"A", "B"}, m.UnusedGroups())
		assert.Len(t, m.Groups, 2)

		pruned := m.PruneGroups()
		assert.ElementsMatch(t, []string{"A", "B"}, pruned)
		assert.Empty(t, m.Groups)
		assert.Nil(t, m.PruneGroups())
	})
}

func TestMapping_OrderingInvariantUnderRandomMutation(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	groups := []string{"", "", "A", "B"}

	for round := 0; round < 200; round++ {
		m := &Mapping{}
		for step := 0; step < 40; step++ {
			n := m.Len()
			switch op := rng.Intn(7); {
			case op == 0 || n == 0:
				r := NewResponse("S2C")
				r.Ordered = rng.Intn(3) > 0
				r.Group = groups[rng.Intn(len(groups))]
				m.Append(r)
			case op == 1:
				require.NoError(t, m.Insert(rng.Intn(n+1), unordered("S2C")))
			case op == 2:
				_, err := m.Remove(rng.Intn(n))
				require.NoError(t, err)
			case op == 3:
				_, err := m.MoveUp(rng.Intn(n))
				require.NoError(t, err)
			case op == 4:
				_, err := m.MoveDown(rng.Intn(n))
				require.NoError(t, err)
			case op == 5:
				require.NoError(t, m.SetOrdered(rng.Intn(n), rng.Intn(2) == 0))
			default:
				require.NoError(t, m.AssignGroup(rng.Intn(n), groups[rng.Intn(len(groups))]))
			}

			require.NoError(t, m.CheckSequence())
			seen := make(map[int]bool)
			ordered := 0
			for _, r := range m.Responses {
				if !r.Ordered {
					require.Zero(t, r.Sequence)
					continue
				}
				ordered++
				require.False(t, seen[r.Sequence], "duplicate sequence %d", r.Sequence)
				seen[r.Sequence] = true
			}
			for k := 1; k <= ordered; k++ {
				require.True(t, seen[k], "missing sequence %d", k)
			}
		}
	}
}

func TestMapping_CheckSequence(t *testing.T) {
	m := &Mapping{Responses: []Response{
		{Protocol: "A", Ordered: true, Sequence: 1},
		{Protocol: "B", Ordered: true, Sequence: 3},
	}}

	assert.Error(t, m.CheckSequence())
	m.Renumber()
	assert.NoError(t, m.CheckSequence())
}
