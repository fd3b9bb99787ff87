// Package scripting provides a sandboxed GopherLua execution environment
// for content hooks such as skill preconditions. It has no dependency on
// game domain packages; game state is injected via Manager callback fields.
package scripting

import (
	"context"
	"errors"
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// DefaultInstructionLimit is the opcode budget of one metered run when no
// override is configured.
const DefaultInstructionLimit = 100_000

// ErrBudgetExhausted reports a metered run stopped for using up its opcodes.
var ErrBudgetExhausted = errors.New("scripting: instruction budget exhausted")

// blockedGlobals are base-library functions that reach outside the sandbox
// or bypass the loader.
var blockedGlobals = []string{"dofile", "loadfile", "load", "loadstring", "collectgarbage", "require", "print"}

// meter is the context a metered run installs on the VM. GopherLua polls
// Done once per opcode, so counting polls counts instructions.
type meter struct {
	context.Context
	cancel context.CancelFunc
	left   int
	spent  bool
}

func (m *meter) Done() <-chan struct{} {
	if m.left--; m.left < 0 && !m.spent {
		m.spent = true
		m.cancel()
	}
	return m.Context.Done()
}

// Metered runs fn with L limited to limit opcodes, then detaches the limit.
// An fn error caused by the limit is reported as ErrBudgetExhausted.
//
// Precondition: limit >= 0; 0 uses DefaultInstructionLimit. L is not used
// concurrently.
func Metered(L *lua.LState, limit int, fn func() error) error {
	if limit <= 0 {
		limit = DefaultInstructionLimit
	}
	ctx, cancel := context.WithCancel(context.Background())
	m := &meter{Context: ctx, cancel: cancel, left: limit}
	L.SetContext(m)
	defer func() {
		L.RemoveContext()
		cancel()
	}()
	err := fn()
	if err != nil && m.spent {
		return fmt.Errorf("%w after %d opcodes", ErrBudgetExhausted, limit)
	}
	return err
}

// NewSandboxedState creates a GopherLua LState with only the base, table,
// string and math libraries, and without the blocked base globals. Run
// untrusted code through Metered.
//
// Postcondition: Returns a non-nil LState the caller must Close.
func NewSandboxedState() *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, open := range []lua.LGFunction{lua.OpenBase, lua.OpenTable, lua.OpenString, lua.OpenMath} {
		open(L)
	}
	for _, name := range blockedGlobals {
		L.SetGlobal(name, lua.LNil)
	}
	return L
}
