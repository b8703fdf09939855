package mapping

import (
	"errors"
	"fmt"
)

// ErrIndexOutOfRange is returned for a response or trigger index outside the list
var ErrIndexOutOfRange = errors.New("index out of range")

// Relation is the relative order of two responses in one mapping
type Relation int

const (
	RelationSame Relation = iota
	RelationBefore
	RelationAfter
	RelationIndeterminate
)

func (r Relation) String() string {
	switch r {
	case RelationBefore:
		return "before"
	case RelationAfter:
		return "after"
	case RelationIndeterminate:
		return "indeterminate"
	default:
		return "same"
	}
}

func (m *Mapping) checkIndex(i int) error {
	if i < 0 || i >= len(m.Responses) {
		return fmt.Errorf("%w: response %d of %d", ErrIndexOutOfRange, i, len(m.Responses))
	}
	return nil
}

// Len returns the number of responses
func (m *Mapping) Len() int {
	return len(m.Responses)
}

// Renumber assigns 1..N to ordered responses in storage order and 0 to
// unordered ones
func (m *Mapping) Renumber() {
	next := 1
	for i := range m.Responses {
		if m.Responses[i].Ordered {
			m.Responses[i].Sequence = next
			next++
		} else {
			m.Responses[i].Sequence = 0
		}
	}
}

// Append adds r at the end and returns its index
func (m *Mapping) Append(r Response) int {
	m.Responses = append(m.Responses, r)
	m.EnsureGroup(r.Group)
	m.Renumber()
	return len(m.Responses) - 1
}

// Insert places r at index i, 0 <= i <= Len()
func (m *Mapping) Insert(i int, r Response) error {
	if i < 0 || i > len(m.Responses) {
		return fmt.Errorf("%w: insert at %d of %d", ErrIndexOutOfRange, i, len(m.Responses))
	}
	m.Responses = append(m.Responses, Response{})
	copy(m.Responses[i+1:], m.Responses[i:])
	m.Responses[i] = r
	m.EnsureGroup(r.Group)
	m.Renumber()
	return nil
}

// Remove deletes the response at i. Its group, if any, is kept.
func (m *Mapping) Remove(i int) (Response, error) {
	if err := m.checkIndex(i); err != nil {
		return Response{}, err
	}
	removed := m.Responses[i]
	m.Responses = append(m.Responses[:i], m.Responses[i+1:]...)
	if len(m.Responses) == 0 {
		m.Responses = nil
	}
	m.Renumber()
	return removed, nil
}

// MoveUp swaps the response at i with its predecessor. It reports false when
// i is already first.
func (m *Mapping) MoveUp(i int) (bool, error) {
	if err := m.checkIndex(i); err != nil {
		return false, err
	}
	if i == 0 {
		return false, nil
	}
	m.Responses[i-1], m.Responses[i] = m.Responses[i], m.Responses[i-1]
	m.Renumber()
	return true, nil
}

// MoveDown swaps the response at i with its successor. It reports false when
// i is already last.
func (m *Mapping) MoveDown(i int) (bool, error) {
	if err := m.checkIndex(i); err != nil {
		return false, err
	}
	if i == len(m.Responses)-1 {
		return false, nil
	}
	m.Responses[i], m.Responses[i+1] = m.Responses[i+1], m.Responses[i]
	m.Renumber()
	return true, nil
}

// Move relocates the response at from to index to by adjacent swaps
func (m *Mapping) Move(from, to int) error {
	if err := m.checkIndex(from); err != nil {
		return err
	}
	if err := m.checkIndex(to); err != nil {
		return err
	}
	for i := from; i > to; i-- {
		m.Responses[i-1], m.Responses[i] = m.Responses[i], m.Responses[i-1]
	}
	for i := from; i < to; i++ {
		m.Responses[i], m.Responses[i+1] = m.Responses[i+1], m.Responses[i]
	}
	m.Renumber()
	return nil
}

// SetOrdered toggles whether the response at i takes part in numbering
func (m *Mapping) SetOrdered(i int, ordered bool) error {
	if err := m.checkIndex(i); err != nil {
		return err
	}
	m.Responses[i].Ordered = ordered
	m.Renumber()
	return nil
}

// Edit applies fn to the response at i, then restores the group and
// numbering invariants
func (m *Mapping) Edit(i int, fn func(r *Response)) error {
	if err := m.checkIndex(i); err != nil {
		return err
	}
	fn(&m.Responses[i])
	m.EnsureGroup(m.Responses[i].Group)
	m.Renumber()
	return nil
}

// AssignGroup puts the response at i into the named group, creating the
// group if needed. An empty name clears membership. Numbering is unchanged.
func (m *Mapping) AssignGroup(i int, name string) error {
	if err := m.checkIndex(i); err != nil {
		return err
	}
	m.Responses[i].Group = name
	m.EnsureGroup(name)
	return nil
}

// ClearGroup removes the response at i from its group
func (m *Mapping) ClearGroup(i int) error {
	return m.AssignGroup(i, "")
}

// Group returns the named group
func (m *Mapping) Group(name string) (*OrderGroup, bool) {
	for i := range m.Groups {
		if m.Groups[i].Name == name {
			return &m.Groups[i], true
		}
	}
	return nil, false
}

// EnsureGroup returns the named group, creating it when absent. It returns
// nil for an empty name.
func (m *Mapping) EnsureGroup(name string) *OrderGroup {
	if name == "" {
		return nil
	}
	if g, ok := m.Group(name); ok {
		return g
	}
	m.Groups = append(m.Groups, OrderGroup{Name: name})
	return &m.Groups[len(m.Groups)-1]
}

// SetGroupDescription describes the named group, creating it when absent
func (m *Mapping) SetGroupDescription(name, description string) error {
	if name == "" {
		return fmt.Errorf("group name is required")
	}
	m.EnsureGroup(name).Description = description
	return nil
}

// GroupMembers returns the indices of responses in the named group
func (m *Mapping) GroupMembers(name string) []int {
	if name == "" {
		return nil
	}
	var members []int
	for i, r := range m.Responses {
		if r.Group == name {
			members = append(members, i)
		}
	}
	return members
}

// UnusedGroups returns the names of groups no response references
func (m *Mapping) UnusedGroups() []string {
	used := make(map[string]bool, len(m.Groups))
	for _, r := range m.Responses {
		used[r.Group] = true
	}
	var unused []string
	for _, g := range m.Groups {
		if !used[g.Name] {
			unused = append(unused, g.Name)
		}
	}
	return unused
}

// PruneGroups removes groups no response references and returns their names
func (m *Mapping) PruneGroups() []string {
	unused := m.UnusedGroups()
	if len(unused) == 0 {
		return nil
	}
	drop := make(map[string]bool, len(unused))
	for _, name := range unused {
		drop[name] = true
	}
	kept := m.Groups[:0]
	for _, g := range m.Groups {
		if !drop[g.Name] {
			kept = append(kept, g)
		}
	}
	if len(kept) == 0 {
		kept = nil
	}
	m.Groups = kept
	return unused
}

// Relation reports how the response at i is ordered relative to j. Members
// of the same group are indeterminate; otherwise storage order decides.
func (m *Mapping) Relation(i, j int) (Relation, error) {
	if err := m.checkIndex(i); err != nil {
		return RelationSame, err
	}
	if err := m.checkIndex(j); err != nil {
		return RelationSame, err
	}
	switch {
	case i == j:
		return RelationSame, nil
	case m.Responses[i].Group != "" && m.Responses[i].Group == m.Responses[j].Group:
		return RelationIndeterminate, nil
	case i < j:
		return RelationBefore, nil
	default:
		return RelationAfter, nil
	}
}

// Stages groups response indices into sequential steps in storage order.
// Consecutive members of one order group share a step; a member separated
// from its group by an outside entry starts a new step, so steps never
// contradict Relation or the numbering.
func (m *Mapping) Stages() [][]int {
	var stages [][]int
	for i := range m.Responses {
		if n := len(stages); n > 0 {
			if rel, _ := m.Relation(stages[n-1][0], i); rel == RelationIndeterminate {
				stages[n-1] = append(stages[n-1], i)
				continue
			}
		}
		stages = append(stages, []int{i})
	}
	return stages
}

// CheckSequence verifies the numbering invariant without changing anything
func (m *Mapping) CheckSequence() error {
	next := 1
	for i, r := range m.Responses {
		want := 0
		if r.Ordered {
			want = next
			next++
		}
		if r.Sequence != want {
			return fmt.Errorf("response %d (%s): sequence %d, want %d", i, r.Protocol, r.Sequence, want)
		}
	}
	return nil
}
