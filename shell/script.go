package shell

import (
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
	lua "github.com/yuin/gopher-lua"
	luajson "layeh.com/gopher-json"
)

func getShell(L *lua.LState) *ShellController {
	shell := L.GetGlobal("pentago_shell")
	ud, ok := shell.(*lua.LUserData)
	if !ok {
		panic("luserdata not right type")
	}
	sc, ok := ud.Value.(*ShellController)
	if !ok {
		panic("shellcontroller not right type")
	}
	return sc
}

// luaCommand wraps a shell command as a Lua function. The function takes
// the rest of the command line as a string and returns the output, or
// "ERROR: ..." on failure.
func luaCommand(name string, run func(*ShellController, *shellcmd) (*Response, error)) lua.LGFunction {
	return func(L *lua.LState) int {
		lv := L.ToString(1)
		sc := getShell(L)
		cmd, err := extractFields(name + " " + lv)
		if err != nil {
			log.Err(err).Str("cmd", name).Msg("error-parsing-script-command")
			L.Push(lua.LString("ERROR: " + err.Error()))
			return 1
		}
		r, err := run(sc, cmd)
		if err != nil {
			log.Err(err).Str("cmd", name).Msg("error-executing-script-command")
			L.Push(lua.LString("ERROR: " + err.Error()))
			return 1
		}
		if r == nil {
			L.Push(lua.LString(""))
		} else {
			L.Push(lua.LString(r.message))
		}
		// return number of results pushed to stack.
		return 1
	}
}

var luaBindings = map[string]func(*ShellController, *shellcmd) (*Response, error){
	"pentago_new":   (*ShellController).newGame,
	"pentago_play":  (*ShellController).play,
	"pentago_ai":    (*ShellController).aiplay,
	"pentago_show":  (*ShellController).show,
	"pentago_eval":  (*ShellController).eval,
	"pentago_save":  (*ShellController).save,
	"pentago_load":  (*ShellController).load,
	"pentago_arena": (*ShellController).arena,
}

func (sc *ShellController) newLuaState() *lua.LState {
	L := lua.NewState()
	luajson.Preload(L)

	lsc := L.NewUserData()
	lsc.Value = sc
	L.SetGlobal("pentago_shell", lsc)
	for name, run := range luaBindings {
		L.SetGlobal(name, L.NewFunction(luaCommand(strings.TrimPrefix(name, "pentago_"), run)))
	}
	return L
}

func (sc *ShellController) script(cmd *shellcmd) (*Response, error) {
	if cmd.args == nil {
		return nil, errors.New("need arguments for script")
	}
	filepath := cmd.args[0]

	L := sc.newLuaState()
	defer L.Close()

	if err := L.DoFile(filepath); err != nil {
		log.Err(err).Msg("there was a error")
		return nil, err
	}
	return nil, nil
}
