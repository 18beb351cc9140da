package scripting

import (
	"fmt"
	"time"

	"github.com/l1jgo/tilecore/internal/world"
	lua "github.com/yuin/gopher-lua"
)

// BodyHook returns a per-step callback that calls the Lua function name
// with { body = {...}, dt = seconds }. The function may return a table with
// vx and/or vy to set the body velocity, or dead = true to kill the owner.
func (e *Engine) BodyHook(name string) (world.UpdateFunc, error) {
	fn, ok := e.vm.GetGlobal(name).(*lua.LFunction)
	if !ok {
		return nil, fmt.Errorf("lua function %s not found", name)
	}
	return func(b *world.Body, dt time.Duration) {
		t := e.vm.NewTable()
		t.RawSetString("body", e.bodyTable(b))
		t.RawSetString("dt", lua.LNumber(dt.Seconds()))

		result, ok := e.call(name, fn, t)
		if !ok {
			return
		}
		rt, ok := result.(*lua.LTable)
		if !ok {
			return
		}
		if v, ok := rt.RawGetString("vx").(lua.LNumber); ok {
			b.Physics.Velocity.X = float64(v)
		}
		if v, ok := rt.RawGetString("vy").(lua.LNumber); ok {
			b.Physics.Velocity.Y = float64(v)
		}
		if rt.RawGetString("dead") == lua.LTrue && b.Entity != nil {
			b.Entity.Kill()
		}
	}, nil
}
