package world

import (
	"testing"
	"time"

	"github.com/l1jgo/tilecore/internal/core/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContactIsCommutative(t *testing.T) {
	a := NewFixture("hit", NewRect(0, 0, 1, 1))
	b := NewFixture("hurt", NewRect(0, 0, 1, 1))

	ab, ba := NewContact(a, b), NewContact(b, a)
	assert.Equal(t, ab, ba)
	assert.True(t, ab == ba)

	seen := map[Contact]int{}
	seen[ab]++
	seen[ba]++
	assert.Equal(t, map[Contact]int{ab: 2}, seen)
	assert.Same(t, a, ba.A(), "lower id first")
}

func TestContactAccessors(t *testing.T) {
	hit := NewFixture("hit", NewRect(0, 0, 1, 1))
	hurt := NewFixture("hurt", NewRect(0, 0, 1, 1))
	stray := NewFixture("hit", NewRect(0, 0, 1, 1))
	c := NewContact(hurt, hit)

	assert.True(t, c.Involves(hit))
	assert.False(t, c.Involves(stray))
	assert.Same(t, hurt, c.Other(hit))
	assert.Same(t, hit, c.Other(hurt))
	assert.Nil(t, c.Other(stray))

	f1, f2, ok := c.Match("hurt", "hit")
	require.True(t, ok)
	assert.Same(t, hurt, f1)
	assert.Same(t, hit, f2)

	_, _, ok = c.Match("hit", "feet")
	assert.False(t, ok)
}

func TestContactFilter(t *testing.T) {
	f := ContactFilter{"hit": {"hurt"}, "feet": {"ground"}}

	assert.True(t, f.Allows("hit", "hurt"))
	assert.True(t, f.Allows("hurt", "hit"), "either side may list the other")
	assert.False(t, f.Allows("hit", "ground"))
	assert.False(t, f.Allows("coin", "coin"))

	var none ContactFilter
	assert.False(t, none.Allows("hit", "hurt"))

	c := f.compile()
	assert.True(t, c.raises("hurt"))
	assert.False(t, c.raises("coin"))
	assert.True(t, c.allows("ground", "feet"))
}

func TestContactListenersFanOut(t *testing.T) {
	var got []string
	l := ContactListeners(
		ContactListenerFuncs{Begin: func(Contact, time.Duration) { got = append(got, "first") }},
		nil,
		ContactListenerFuncs{Begin: func(Contact, time.Duration) { got = append(got, "second") }},
	)
	c := NewContact(NewFixture("a", Circle{}), NewFixture("b", Circle{}))

	l.BeginContact(c, 0)
	l.ContinueContact(c, 0)
	l.EndContact(c, 0)

	assert.Equal(t, []string{"first", "second"}, got)
	assert.Equal(t, NopContactListener, ContactListeners())
}

func TestContactRelay(t *testing.T) {
	bus := event.NewBus()
	relay := NewContactRelay(bus)
	c := NewContact(NewFixture("a", Circle{}), NewFixture("b", Circle{}))

	relay.BeginContact(c, time.Millisecond)
	relay.ContinueContact(c, time.Millisecond)
	relay.EndContact(c, time.Millisecond)

	var began, continued, ended []Contact
	event.Subscribe(bus, func(ev ContactBegan) { began = append(began, ev.Contact) })
	event.Subscribe(bus, func(ev ContactContinued) { continued = append(continued, ev.Contact) })
	event.Subscribe(bus, func(ev ContactEnded) { ended = append(ended, ev.Contact) })
	bus.SwapBuffers()
	bus.DispatchAll()

	assert.Equal(t, []Contact{c}, began)
	assert.Empty(t, continued, "continue is skipped by default")
	assert.Equal(t, []Contact{c}, ended)
}
