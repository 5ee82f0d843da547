package demo

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	lua "github.com/yuin/gopher-lua"

	"github.com/boss6825/pharmintel/internal/timeline"
)

// LoadScript reads a Lua schedule script and evaluates it against the agent names.
func LoadScript(path string, names []string) (timeline.Schedule, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return timeline.Schedule{}, fmt.Errorf("failed to read script: %w", err)
	}
	sched, err := ParseScript(string(src), names)
	if err != nil {
		return timeline.Schedule{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return sched, nil
}

// ParseScript evaluates a schedule script. Scripts describe the timeline with
// two functions, offsets in milliseconds from run start:
//
//	begin{at = 300, message = "Analyzing query..."}
//	step{agent = "Master Agent", at = 1000, message = "Query decomposed"}
//	step{agent = 2, at = 2500, fail = "Source unavailable"}
//
// Agents are referenced by name or by 1-based position; the global table
// agents lists the names in order. Every agent needs exactly one step.
func ParseScript(src string, names []string) (timeline.Schedule, error) {
	b := &scriptBuilder{names: names, seen: make(map[int]bool)}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()

	openSafeLibs(L)
	L.SetGlobal("begin", L.NewFunction(b.luaBegin))
	L.SetGlobal("step", L.NewFunction(b.luaStep))

	agents := L.NewTable()
	for i, name := range names {
		agents.RawSetInt(i+1, lua.LString(name))
	}
	L.SetGlobal("agents", agents)

	if err := L.DoString(src); err != nil {
		return timeline.Schedule{}, fmt.Errorf("failed to run script: %w", err)
	}

	sort.Slice(b.steps, func(i, j int) bool {
		return b.steps[i].Task < b.steps[j].Task
	})

	sched := timeline.Schedule{
		Begin:        b.begin,
		BeginMessage: b.beginMessage,
		Steps:        b.steps,
	}
	if err := sched.Validate(len(names)); err != nil {
		return timeline.Schedule{}, err
	}
	return sched, nil
}

// openSafeLibs loads the libraries a schedule script may use. Nothing that
// touches the filesystem, the process, or loads more code is exposed.
func openSafeLibs(L *lua.LState) {
	lua.OpenBase(L)
	for _, name := range []string{"loadfile", "dofile", "load", "loadstring", "print", "require"} {
		L.SetGlobal(name, lua.LNil)
	}
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

type scriptBuilder struct {
	names        []string
	begin        time.Duration
	beginMessage string
	steps        []timeline.Step
	seen         map[int]bool
}

func (b *scriptBuilder) luaBegin(L *lua.LState) int {
	switch v := L.Get(1).(type) {
	case lua.LNumber:
		b.begin = millis(v)
	case *lua.LTable:
		at, ok := v.RawGetString("at").(lua.LNumber)
		if !ok {
			L.ArgError(1, "begin needs a numeric 'at'")
			return 0
		}
		b.begin = millis(at)
		b.beginMessage = lua.LVAsString(v.RawGetString("message"))
	default:
		L.ArgError(1, "begin expects a table or a number")
	}
	return 0
}

func (b *scriptBuilder) luaStep(L *lua.LState) int {
	tbl := L.CheckTable(1)

	idx := -1
	switch v := tbl.RawGetString("agent").(type) {
	case lua.LNumber:
		if float64(v) != float64(int(v)) {
			L.ArgError(1, "step 'agent' index must be a whole number")
			return 0
		}
		idx = int(v) - 1
	case lua.LString:
		for i, name := range b.names {
			if name == string(v) {
				idx = i
				break
			}
		}
	default:
		L.ArgError(1, "step needs an agent name or index")
		return 0
	}
	if idx < 0 || idx >= len(b.names) {
		L.RaiseError("unknown agent %s", tbl.RawGetString("agent").String())
		return 0
	}
	if b.seen[idx] {
		L.RaiseError("duplicate step for agent %q", b.names[idx])
		return 0
	}

	at, ok := tbl.RawGetString("at").(lua.LNumber)
	if !ok {
		L.ArgError(1, "step needs a numeric 'at'")
		return 0
	}

	b.seen[idx] = true
	b.steps = append(b.steps, timeline.Step{
		Task:    idx,
		Offset:  millis(at),
		Message: lua.LVAsString(tbl.RawGetString("message")),
		Fail:    lua.LVAsString(tbl.RawGetString("fail")),
	})
	return 0
}

func millis(n lua.LNumber) time.Duration {
	return time.Duration(float64(n) * float64(time.Millisecond))
}

// FindScripts returns every .lua file below dir, sorted. A missing directory
// yields no scripts.
func FindScripts(dir string) ([]string, error) {
	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read scenario directory: %w", err)
	}

	matches, err := doublestar.Glob(os.DirFS(dir), "**/*.lua")
	if err != nil {
		return nil, fmt.Errorf("failed to glob scenario scripts: %w", err)
	}

	paths := make([]string, len(matches))
	for i, m := range matches {
		paths[i] = filepath.Join(dir, filepath.FromSlash(m))
	}
	sort.Strings(paths)
	return paths, nil
}
