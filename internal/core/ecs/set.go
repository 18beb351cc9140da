package ecs

import (
	"iter"
	"sort"
)

// EntitySet is an ordered set of entities. Iteration order is defined by the
// implementation: insertion order for NewLinkedSet, comparator order for
// NewSortedSet.
type EntitySet interface {
	Add(e *Entity) bool
	Remove(e *Entity) bool
	Contains(e *Entity) bool
	Len() int
	Clear()
	// RemoveIf drops every member for which pred returns true and returns
	// how many were dropped.
	RemoveIf(pred func(*Entity) bool) int
	// View returns a read-only snapshot in iteration order.
	View() View
}

// View is a read-only snapshot of an entity collection. Later changes to
// the collection it was taken from never show up in the view.
type View struct {
	items []*Entity
}

// NewView copies items into a view.
func NewView(items ...*Entity) View {
	if len(items) == 0 {
		return View{}
	}
	out := make([]*Entity, len(items))
	copy(out, items)
	return View{items: out}
}

func (v View) Len() int         { return len(v.items) }
func (v View) At(i int) *Entity { return v.items[i] }
func (v View) IsEmpty() bool    { return len(v.items) == 0 }

// Each calls fn for every entity in order.
func (v View) Each(fn func(*Entity)) {
	for _, e := range v.items {
		fn(e)
	}
}

// All iterates index/entity pairs in order.
func (v View) All() iter.Seq2[int, *Entity] {
	return func(yield func(int, *Entity) bool) {
		for i, e := range v.items {
			if !yield(i, e) {
				return
			}
		}
	}
}

// Contains is a linear scan; views are for iteration, not lookup.
func (v View) Contains(e *Entity) bool {
	for _, x := range v.items {
		if x == e {
			return true
		}
	}
	return false
}

// linkedSet keeps insertion order. Removal leaves a hole that is compacted
// lazily once holes outnumber members.
type linkedSet struct {
	index map[*Entity]int
	items []*Entity
	holes int
}

func NewLinkedSet() EntitySet {
	return &linkedSet{index: make(map[*Entity]int, 64)}
}

func (s *linkedSet) Add(e *Entity) bool {
	if _, ok := s.index[e]; ok {
		return false
	}
	s.index[e] = len(s.items)
	s.items = append(s.items, e)
	return true
}

func (s *linkedSet) Remove(e *Entity) bool {
	i, ok := s.index[e]
	if !ok {
		return false
	}
	delete(s.index, e)
	s.items[i] = nil
	s.holes++
	if s.holes > len(s.index) {
		s.compact()
	}
	return true
}

func (s *linkedSet) compact() {
	n := 0
	for _, e := range s.items {
		if e == nil {
			continue
		}
		s.items[n] = e
		s.index[e] = n
		n++
	}
	clear(s.items[n:])
	s.items = s.items[:n]
	s.holes = 0
}

func (s *linkedSet) Contains(e *Entity) bool {
	_, ok := s.index[e]
	return ok
}

func (s *linkedSet) Len() int { return len(s.index) }

func (s *linkedSet) Clear() {
	clear(s.index)
	clear(s.items)
	s.items = s.items[:0]
	s.holes = 0
}

func (s *linkedSet) RemoveIf(pred func(*Entity) bool) int {
	removed := 0
	for i, e := range s.items {
		if e == nil || !pred(e) {
			continue
		}
		delete(s.index, e)
		s.items[i] = nil
		s.holes++
		removed++
	}
	if s.holes > 0 {
		s.compact()
	}
	return removed
}

func (s *linkedSet) View() View {
	if s.holes > 0 {
		s.compact()
	}
	return NewView(s.items...)
}

// sortedSet keeps members ordered by less. Entities comparing equal are
// ordered by insertion sequence, so distinct entities never collapse into one.
// The order is fixed at insertion; callers whose sort keys change must
// Remove and re-Add.
type sortedSet struct {
	less  func(a, b *Entity) bool
	seq   map[*Entity]uint64
	items []*Entity
	next  uint64
}

func NewSortedSet(less func(a, b *Entity) bool) EntitySet {
	return &sortedSet{less: less, seq: make(map[*Entity]uint64, 64)}
}

func (s *sortedSet) before(a, b *Entity) bool {
	if s.less(a, b) {
		return true
	}
	if s.less(b, a) {
		return false
	}
	return s.seq[a] < s.seq[b]
}

func (s *sortedSet) search(e *Entity) int {
	return sort.Search(len(s.items), func(i int) bool {
		return !s.before(s.items[i], e)
	})
}

func (s *sortedSet) Add(e *Entity) bool {
	if _, ok := s.seq[e]; ok {
		return false
	}
	s.seq[e] = s.next
	s.next++
	i := s.search(e)
	s.items = append(s.items, nil)
	copy(s.items[i+1:], s.items[i:])
	s.items[i] = e
	return true
}

func (s *sortedSet) Remove(e *Entity) bool {
	if _, ok := s.seq[e]; !ok {
		return false
	}
	i := s.search(e)
	if i >= len(s.items) || s.items[i] != e {
		// Sort key changed since insertion; fall back to a scan.
		i = -1
		for j, x := range s.items {
			if x == e {
				i = j
				break
			}
		}
	}
	delete(s.seq, e)
	if i < 0 {
		return true
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return true
}

func (s *sortedSet) Contains(e *Entity) bool {
	_, ok := s.seq[e]
	return ok
}

func (s *sortedSet) Len() int { return len(s.items) }

func (s *sortedSet) Clear() {
	clear(s.seq)
	clear(s.items)
	s.items = s.items[:0]
}

func (s *sortedSet) RemoveIf(pred func(*Entity) bool) int {
	n := 0
	for _, e := range s.items {
		if pred(e) {
			delete(s.seq, e)
			continue
		}
		s.items[n] = e
		n++
	}
	removed := len(s.items) - n
	clear(s.items[n:])
	s.items = s.items[:n]
	return removed
}

func (s *sortedSet) View() View {
	return NewView(s.items...)
}
