package world

import (
	"fmt"
	"slices"
	"time"
)

// Contact is an unordered pair of overlapping fixtures. NewContact orders
// the pair by fixture id, so Contact values compare equal and hash the same
// regardless of argument order.
type Contact struct {
	a, b *Fixture
}

func NewContact(f1, f2 *Fixture) Contact {
	if f2.id < f1.id {
		f1, f2 = f2, f1
	}
	return Contact{a: f1, b: f2}
}

func (c Contact) A() *Fixture { return c.a }
func (c Contact) B() *Fixture { return c.b }

func (c Contact) Involves(f *Fixture) bool { return c.a == f || c.b == f }

// Other returns the fixture paired with f, or nil if f is not part of c.
func (c Contact) Other(f *Fixture) *Fixture {
	switch f {
	case c.a:
		return c.b
	case c.b:
		return c.a
	}
	return nil
}

// Match returns the fixtures of c ordered as (t1, t2). ok is false if c is
// not a t1/t2 pair.
func (c Contact) Match(t1, t2 FixtureType) (f1, f2 *Fixture, ok bool) {
	switch {
	case c.a.Type == t1 && c.b.Type == t2:
		return c.a, c.b, true
	case c.b.Type == t1 && c.a.Type == t2:
		return c.b, c.a, true
	}
	return nil, nil, false
}

func (c Contact) String() string {
	return fmt.Sprintf("contact(%s, %s)", c.a, c.b)
}

// ContactListener receives the contact lifecycle once per fixed step.
// BeginContact fires on the first step a pair overlaps, ContinueContact on
// every following step it still does, EndContact on the first step it no
// longer does.
type ContactListener interface {
	BeginContact(c Contact, dt time.Duration)
	ContinueContact(c Contact, dt time.Duration)
	EndContact(c Contact, dt time.Duration)
}

// ContactListenerFuncs adapts plain functions to ContactListener. Nil
// functions are skipped.
type ContactListenerFuncs struct {
	Begin    func(c Contact, dt time.Duration)
	Continue func(c Contact, dt time.Duration)
	End      func(c Contact, dt time.Duration)
}

func (l ContactListenerFuncs) BeginContact(c Contact, dt time.Duration) {
	if l.Begin != nil {
		l.Begin(c, dt)
	}
}

func (l ContactListenerFuncs) ContinueContact(c Contact, dt time.Duration) {
	if l.Continue != nil {
		l.Continue(c, dt)
	}
}

func (l ContactListenerFuncs) EndContact(c Contact, dt time.Duration) {
	if l.End != nil {
		l.End(c, dt)
	}
}

// NopContactListener ignores every contact.
var NopContactListener ContactListener = ContactListenerFuncs{}

// ContactListeners fans every callback out to ls in order.
func ContactListeners(ls ...ContactListener) ContactListener {
	ls = slices.DeleteFunc(slices.Clone(ls), func(l ContactListener) bool { return l == nil })
	switch len(ls) {
	case 0:
		return NopContactListener
	case 1:
		return ls[0]
	}
	return multiListener(ls)
}

type multiListener []ContactListener

func (m multiListener) BeginContact(c Contact, dt time.Duration) {
	for _, l := range m {
		l.BeginContact(c, dt)
	}
}

func (m multiListener) ContinueContact(c Contact, dt time.Duration) {
	for _, l := range m {
		l.ContinueContact(c, dt)
	}
}

func (m multiListener) EndContact(c Contact, dt time.Duration) {
	for _, l := range m {
		l.EndContact(c, dt)
	}
}

// ContactFilter lists, per fixture type, the types it raises contacts with.
// A pair is tested if either side lists the other. A type that appears
// nowhere in the filter never takes part in contacts; a nil filter raises
// none at all.
type ContactFilter map[FixtureType][]FixtureType

// Allows reports whether a pair of types should be tested.
func (f ContactFilter) Allows(a, b FixtureType) bool {
	return slices.Contains(f[a], b) || slices.Contains(f[b], a)
}

// compiledFilter is ContactFilter with set lookups, built once per system.
type compiledFilter map[FixtureType]map[FixtureType]struct{}

func (f ContactFilter) compile() compiledFilter {
	out := make(compiledFilter, len(f))
	for a, others := range f {
		for _, b := range others {
			out.link(a, b)
			out.link(b, a)
		}
	}
	return out
}

func (f compiledFilter) link(a, b FixtureType) {
	set := f[a]
	if set == nil {
		set = make(map[FixtureType]struct{})
		f[a] = set
	}
	set[b] = struct{}{}
}

func (f compiledFilter) raises(t FixtureType) bool {
	return len(f[t]) > 0
}

func (f compiledFilter) allows(a, b FixtureType) bool {
	_, ok := f[a][b]
	return ok
}

// contactSet is an insertion-ordered set of contacts so listener callbacks
// fire in a reproducible order.
type contactSet struct {
	index map[Contact]struct{}
	list  []Contact
}

func newContactSet() *contactSet {
	return &contactSet{index: make(map[Contact]struct{})}
}

func (s *contactSet) add(c Contact) {
	if _, ok := s.index[c]; ok {
		return
	}
	s.index[c] = struct{}{}
	s.list = append(s.list, c)
}

func (s *contactSet) contains(c Contact) bool {
	_, ok := s.index[c]
	return ok
}

func (s *contactSet) reset() {
	clear(s.index)
	clear(s.list)
	s.list = s.list[:0]
}
