package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// RegisterModules registers all engine.* Lua tables into L:
//
//	engine.log.debug/info/warn(msg)
//	engine.dice.uniform(min, max) and engine.dice.chance(percent)
//	engine.entity.get(id) → entity table or nil
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: engine global is defined in L.
func (m *Manager) RegisterModules(L *lua.LState) {
	engine := L.NewTable()

	logT := L.NewTable()
	logFn := func(level func(string, ...zap.Field)) lua.LGFunction {
		return func(L *lua.LState) int {
			level("lua", zap.String("msg", L.CheckString(1)))
			return 0
		}
	}
	L.SetField(logT, "debug", L.NewFunction(logFn(m.logger.Debug)))
	L.SetField(logT, "info", L.NewFunction(logFn(m.logger.Info)))
	L.SetField(logT, "warn", L.NewFunction(logFn(m.logger.Warn)))
	L.SetField(engine, "log", logT)

	diceT := L.NewTable()
	L.SetField(diceT, "uniform", L.NewFunction(func(L *lua.LState) int {
		lo, hi := float64(L.CheckNumber(1)), float64(L.CheckNumber(2))
		L.Push(lua.LNumber(m.roller.Uniform("lua", lo, hi)))
		return 1
	}))
	L.SetField(diceT, "chance", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LBool(m.roller.Chance("lua", float64(L.CheckNumber(1)))))
		return 1
	}))
	L.SetField(engine, "dice", diceT)

	entityT := L.NewTable()
	L.SetField(entityT, "get", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		if m.GetEntity == nil {
			L.Push(lua.LNil)
			return 1
		}
		info := m.GetEntity(id)
		if info == nil {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(entityToTable(L, info))
		return 1
	}))
	L.SetField(engine, "entity", entityT)

	L.SetGlobal("engine", engine)
}

// entityToTable converts info to a Lua table. flags is a set keyed by flag
// name.
func entityToTable(L *lua.LState, info *EntityInfo) *lua.LTable {
	t := L.NewTable()
	if info == nil {
		return t
	}
	L.SetField(t, "id", lua.LString(info.ID))
	L.SetField(t, "team", lua.LString(info.Team))
	L.SetField(t, "hp", lua.LNumber(info.HP))
	L.SetField(t, "max_hp", lua.LNumber(info.MaxHP))
	L.SetField(t, "sp", lua.LNumber(info.SP))
	L.SetField(t, "max_sp", lua.LNumber(info.MaxSP))
	flags := L.NewTable()
	for _, f := range info.Flags {
		L.SetField(flags, f, lua.LTrue)
	}
	L.SetField(t, "flags", flags)
	return t
}
