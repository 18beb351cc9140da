package scripting

import (
	"time"

	"github.com/l1jgo/tilecore/internal/component"
	"github.com/l1jgo/tilecore/internal/world"
	lua "github.com/yuin/gopher-lua"
)

// ContactListener forwards world contacts to the Lua functions
// begin_contact, continue_contact and end_contact. Each receives
//
//	{ a = fixture, b = fixture, dt = seconds }
//
// where a fixture is { id, type, body = { id, type, label, x, y, width,
// height, vx, vy } }. Returning { kill_a = true } or { kill_b = true } kills
// the entity owning that fixture's body. Undefined functions are skipped.
type ContactListener struct {
	e *Engine
}

func (e *Engine) ContactListener() *ContactListener {
	return &ContactListener{e: e}
}

func (l *ContactListener) BeginContact(c world.Contact, dt time.Duration) {
	l.dispatch("begin_contact", c, dt)
}

func (l *ContactListener) ContinueContact(c world.Contact, dt time.Duration) {
	l.dispatch("continue_contact", c, dt)
}

func (l *ContactListener) EndContact(c world.Contact, dt time.Duration) {
	l.dispatch("end_contact", c, dt)
}

func (l *ContactListener) dispatch(name string, c world.Contact, dt time.Duration) {
	fn, ok := l.e.vm.GetGlobal(name).(*lua.LFunction)
	if !ok {
		return
	}
	vm := l.e.vm
	t := vm.NewTable()
	t.RawSetString("a", l.e.fixtureTable(c.A()))
	t.RawSetString("b", l.e.fixtureTable(c.B()))
	t.RawSetString("dt", lua.LNumber(dt.Seconds()))

	result, ok := l.e.call(name, fn, t)
	if !ok {
		return
	}
	rt, ok := result.(*lua.LTable)
	if !ok {
		return
	}
	if rt.RawGetString("kill_a") == lua.LTrue {
		killOwner(c.A())
	}
	if rt.RawGetString("kill_b") == lua.LTrue {
		killOwner(c.B())
	}
}

func killOwner(f *world.Fixture) {
	if f.Body != nil && f.Body.Entity != nil {
		f.Body.Entity.Kill()
	}
}

func (e *Engine) fixtureTable(f *world.Fixture) *lua.LTable {
	t := e.vm.NewTable()
	t.RawSetString("id", lua.LNumber(f.ID()))
	t.RawSetString("type", lua.LString(f.Type))
	if f.Body != nil {
		t.RawSetString("body", e.bodyTable(f.Body))
	}
	return t
}

func (e *Engine) bodyTable(b *world.Body) *lua.LTable {
	t := e.vm.NewTable()
	r := b.RotatedBounds()
	t.RawSetString("id", lua.LNumber(b.ID()))
	t.RawSetString("type", lua.LString(b.Type.String()))
	if b.Entity != nil {
		t.RawSetString("label", lua.LString(component.NameOf(b.Entity)))
	}
	t.RawSetString("x", lua.LNumber(r.X))
	t.RawSetString("y", lua.LNumber(r.Y))
	t.RawSetString("width", lua.LNumber(r.Width))
	t.RawSetString("height", lua.LNumber(r.Height))
	t.RawSetString("vx", lua.LNumber(b.Physics.Velocity.X))
	t.RawSetString("vy", lua.LNumber(b.Physics.Velocity.Y))
	return t
}
