package scripting

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/dice"
)

// EntityInfo is a snapshot of a combatant's state passed to Lua callbacks.
type EntityInfo struct {
	ID    string
	Team  string
	HP    float64
	MaxHP float64
	SP    float64
	MaxSP float64
	Flags []string
}

// Manager owns one sandboxed LState and exposes hook dispatch.
//
// Manager is safe for concurrent CallHook after Load completes; calls are
// serialised because an LState is single-threaded.
type Manager struct {
	mu        sync.Mutex
	state     *lua.LState
	instLimit int
	roller    *dice.Roller
	logger    *zap.Logger

	// Injected after construction. nil = no-op in engine.* modules.
	GetEntity func(id string) *EntityInfo
}

// NewManager creates a Manager with no scripts loaded.
//
// Precondition: roller and logger must be non-nil.
func NewManager(roller *dice.Roller, logger *zap.Logger) *Manager {
	if roller == nil || logger == nil {
		panic("scripting.NewManager: roller and logger must not be nil")
	}
	return &Manager{roller: roller, logger: logger}
}

// Load creates a sandboxed VM, registers all engine.* modules, then executes
// every *.lua file in scriptDir in lexicographic order. A previous VM is
// closed on success.
//
// Precondition: scriptDir must be a readable directory.
// Postcondition: returns error on read or Lua load failure; the previous VM
// is kept in that case.
func (m *Manager) Load(scriptDir string, instLimit int) error {
	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		return fmt.Errorf("scripting: reading script dir %q: %w", scriptDir, err)
	}
	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(scriptDir, e.Name()))
		}
	}
	sort.Strings(luaFiles)

	L := NewSandboxedState()
	m.RegisterModules(L)
	for _, path := range luaFiles {
		if err := Metered(L, instLimit, func() error { return L.DoFile(path) }); err != nil {
			L.Close()
			return fmt.Errorf("scripting: loading %q: %w", path, err)
		}
	}

	m.mu.Lock()
	if m.state != nil {
		m.state.Close()
	}
	m.state = L
	m.instLimit = instLimit
	m.mu.Unlock()
	m.logger.Info("scripts loaded", zap.String("dir", scriptDir), zap.Int("files", len(luaFiles)))
	return nil
}

// Close releases the VM.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != nil {
		m.state.Close()
		m.state = nil
	}
}

// HasHook reports whether a global function named hook is defined.
func (m *Manager) HasHook(hook string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == nil {
		return false
	}
	return m.state.GetGlobal(hook).Type() == lua.LTFunction
}

// CallHook calls the named Lua global function with a fresh instruction
// budget. Returns (LNil, nil) if no VM is loaded or the hook is not defined.
// Lua runtime errors, including an exhausted budget, are logged at Warn
// level and never propagated.
//
// Precondition: args must be valid lua.LValue instances.
// Postcondition: Returns the first return value of the hook, or LNil.
func (m *Manager) CallHook(hook string, args ...lua.LValue) (lua.LValue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == nil {
		m.logger.Info("scripting: no VM loaded", zap.String("hook", hook))
		return lua.LNil, nil
	}
	return m.call(hook, args...), nil
}

// Check calls hook with info as a table and reports whether it returned
// true. Missing VMs, missing hooks, runtime errors and non-boolean results
// all count as false.
func (m *Manager) Check(hook string, info *EntityInfo) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	L := m.state
	if L == nil {
		m.logger.Debug("precondition refused: no VM", zap.String("hook", hook))
		return false
	}
	if L.GetGlobal(hook).Type() != lua.LTFunction {
		m.logger.Warn("precondition hook not defined", zap.String("hook", hook))
		return false
	}
	return m.call(hook, entityToTable(L, info)) == lua.LTrue
}

// call runs hook on the loaded VM.
// Precondition: m.mu is held and m.state is non-nil.
func (m *Manager) call(hook string, args ...lua.LValue) lua.LValue {
	L := m.state
	fn := L.GetGlobal(hook)
	if fn.Type() != lua.LTFunction {
		return lua.LNil
	}

	err := Metered(L, m.instLimit, func() error {
		return L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, args...)
	})
	switch {
	case errors.Is(err, ErrBudgetExhausted):
		m.logger.Warn("scripting: hook exceeded instruction budget",
			zap.String("hook", hook),
			zap.Int("limit", m.instLimit),
		)
		return lua.LNil
	case err != nil:
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil
	}

	ret := L.Get(-1)
	L.Pop(1)
	return ret
}
