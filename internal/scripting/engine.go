package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM for game logic execution.
// Single-goroutine access only (game loop).
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// scriptDirs are loaded in order; missing directories are skipped.
var scriptDirs = []string{"core", "contact", "body"}

// NewEngine creates a Lua engine and loads all scripts from the given directory.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}
	e.registerAPI()

	for _, sub := range scriptDirs {
		p := filepath.Join(scriptsDir, sub)
		if err := e.loadDir(p); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load %s scripts: %w", sub, err)
		}
	}

	return e, nil
}

// registerAPI exposes host functions to scripts.
func (e *Engine) registerAPI() {
	e.vm.SetGlobal("log_info", e.vm.NewFunction(func(L *lua.LState) int {
		e.log.Info("lua", zap.String("msg", L.CheckString(1)))
		return 0
	}))
	e.vm.SetGlobal("log_debug", e.vm.NewFunction(func(L *lua.LState) int {
		e.log.Debug("lua", zap.String("msg", L.CheckString(1)))
		return 0
	}))
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// HasFunction reports whether a global Lua function named name exists.
func (e *Engine) HasFunction(name string) bool {
	_, ok := e.vm.GetGlobal(name).(*lua.LFunction)
	return ok
}

// Global returns a global Lua value, mostly for tests and debugging.
func (e *Engine) Global(name string) lua.LValue {
	return e.vm.GetGlobal(name)
}

// call invokes fn with one argument and returns its single result. Script
// errors are logged and reported as ok=false.
func (e *Engine) call(name string, fn lua.LValue, arg lua.LValue) (lua.LValue, bool) {
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, arg); err != nil {
		e.log.Error("lua "+name+" error", zap.Error(err))
		return lua.LNil, false
	}
	result := e.vm.Get(-1)
	e.vm.Pop(1)
	return result, true
}

func (e *Engine) Close() {
	e.vm.Close()
}
