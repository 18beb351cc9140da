package scripting

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/l1jgo/tilecore/internal/component"
	"github.com/l1jgo/tilecore/internal/core/ecs"
	"github.com/l1jgo/tilecore/internal/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap/zaptest"
)

// newTestEngine writes scripts (relative path -> source) into a temp dir and
// loads them.
func newTestEngine(t *testing.T, scripts map[string]string) *Engine {
	t.Helper()
	dir := t.TempDir()
	for rel, src := range scripts {
		p := filepath.Join(dir, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(src), 0o644))
	}
	e, err := NewEngine(dir, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(e.Close)
	return e
}

func labelledBody(name string, bt world.BodyType) (*ecs.Entity, *world.Body) {
	e := ecs.NewEntity(&component.Label{Name: name})
	b := world.NewBody(world.NewRect(0, 0, 8, 8), bt)
	world.AttachBody(e, b)
	e.SetDead(false)
	return e, b
}

func TestNewEngineLoadsDirsInOrder(t *testing.T) {
	e := newTestEngine(t, map[string]string{
		"core/base.lua":     `order = "core"`,
		"contact/hits.lua":  `order = order .. ",contact"`,
		"body/patrol.lua":   `order = order .. ",body"`,
		"body/notes.txt":    `this is not lua`,
		"ignored/other.lua": `order = "wrong"`,
	})

	assert.Equal(t, lua.LString("core,contact,body"), e.Global("order"))
	assert.Equal(t, lua.LNumber(1), e.Global("API_VERSION"))
}

func TestNewEngineReportsScriptErrors(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "core"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "core", "bad.lua"), []byte(`this is not lua`), 0o644))

	_, err := NewEngine(dir, zaptest.NewLogger(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load core scripts")
}

func TestContactListenerCallsLua(t *testing.T) {
	e := newTestEngine(t, map[string]string{
		"contact/coins.lua": `
begins, ends = 0, 0
last_label = ""
function begin_contact(c)
  begins = begins + 1
  if c.b.type == "coin" then
    last_label = c.b.body.label
    return { kill_b = true }
  end
end
function end_contact(c)
  ends = ends + 1
end
`,
	})
	_, player := labelledBody("hero", world.Dynamic)
	coinEntity, coin := labelledBody("gold", world.Static)
	feet := player.AddFixture(world.NewFixture("player", world.NewRect(0, 0, 8, 8)))
	pick := coin.AddFixture(world.NewFixture("coin", world.NewRect(0, 0, 4, 4)))

	l := e.ContactListener()
	c := world.NewContact(feet, pick)
	l.BeginContact(c, 10*time.Millisecond)
	l.ContinueContact(c, 10*time.Millisecond)
	l.EndContact(c, 10*time.Millisecond)

	assert.Equal(t, lua.LNumber(1), e.Global("begins"))
	assert.Equal(t, lua.LNumber(1), e.Global("ends"))
	assert.Equal(t, lua.LString("gold"), e.Global("last_label"))
	assert.True(t, coinEntity.Dead())
}

func TestContactListenerSurvivesScriptErrors(t *testing.T) {
	e := newTestEngine(t, map[string]string{
		"contact/broken.lua": `function begin_contact(c) error("boom") end`,
	})
	a := world.NewFixture("a", world.NewRect(0, 0, 1, 1))
	b := world.NewFixture("b", world.NewRect(0, 0, 1, 1))

	assert.NotPanics(t, func() {
		e.ContactListener().BeginContact(world.NewContact(a, b), time.Millisecond)
	})
}

func TestBodyHookSetsVelocity(t *testing.T) {
	e := newTestEngine(t, map[string]string{
		"body/patrol.lua": `
function patrol(ctx)
  if ctx.body.x > 100 then
    return { vx = -ctx.body.vx }
  end
  return { vy = 5 }
end
function expire(ctx)
  return { dead = true }
end
`,
	})
	ent, b := labelledBody("guard", world.Dynamic)
	b.Physics.Velocity = world.Vector{X: 20, Y: 1}

	hook, err := e.BodyHook("patrol")
	require.NoError(t, err)

	hook(b, time.Millisecond)
	assert.Equal(t, world.Vector{X: 20, Y: 5}, b.Physics.Velocity)

	b.Bounds.X = 150
	hook(b, time.Millisecond)
	assert.Equal(t, world.Vector{X: -20, Y: 5}, b.Physics.Velocity)

	expire, err := e.BodyHook("expire")
	require.NoError(t, err)
	expire(b, time.Millisecond)
	assert.True(t, ent.Dead())

	_, err = e.BodyHook("missing")
	assert.Error(t, err)
	assert.True(t, e.HasFunction("patrol"))
	assert.False(t, e.HasFunction("missing"))
}
