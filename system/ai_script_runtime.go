package system

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/milk9111/stalker/common"
	"github.com/milk9111/stalker/component"
	"github.com/milk9111/stalker/prefabs"
)

// ScriptHooks runs the optional tengo lifecycle script of an agent. Scripts
// observe the engine and may add memories or raise noises, but they never
// choose states. Script errors are logged and do not stop the engine.
type ScriptHooks struct {
	Path string

	compiled  *tengo.Compiled
	stateData *tengo.Map
	hooks     map[string]bool
	failures  int
}

var hookPattern = regexp.MustCompile(`(?m)^\s*(onEnter|update|onExit)\s*:?=\s*func`)

// LoadScriptHooks compiles the named script from the prefab scripts.
func LoadScriptHooks(path string) (*ScriptHooks, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("ai: empty script path")
	}
	src, err := prefabs.LoadScript(path)
	if err != nil {
		return nil, fmt.Errorf("ai: load script %s: %w", path, err)
	}
	return CompileScriptHooks(path, src)
}

// CompileScriptHooks compiles script source. Only the hooks the script
// defines are dispatched.
func CompileScriptHooks(name string, src []byte) (*ScriptHooks, error) {
	hooks := map[string]bool{}
	for _, m := range hookPattern.FindAllStringSubmatch(string(src), -1) {
		hooks[m[1]] = true
	}

	var dispatch strings.Builder
	dispatch.WriteString("\n")
	for _, h := range []struct{ phase, fn string }{{"enter", "onEnter"}, {"update", "update"}, {"exit", "onExit"}} {
		if !hooks[h.fn] {
			continue
		}
		fmt.Fprintf(&dispatch, "if __phase == %q {\n\t%s(__engine, __state, __current_state)\n}\n", h.phase, h.fn)
	}

	script := tengo.NewScript(append(append([]byte{}, src...), dispatch.String()...))
	_ = script.Add("__phase", "")
	_ = script.Add("__engine", map[string]any{})
	_ = script.Add("__state", map[string]any{})
	_ = script.Add("__current_state", "")
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("ai: compile script %s: %w", name, err)
	}
	return &ScriptHooks{
		Path:      name,
		compiled:  compiled,
		stateData: &tengo.Map{Value: map[string]tengo.Object{}},
		hooks:     hooks,
	}, nil
}

// Defines reports whether the script defines the named hook.
func (s *ScriptHooks) Defines(hook string) bool {
	return s != nil && s.hooks[hook]
}

// Failures counts the hook runs that returned an error.
func (s *ScriptHooks) Failures() int {
	if s == nil {
		return 0
	}
	return s.failures
}

// Global returns a script global after the last run, converted to Go.
func (s *ScriptHooks) Global(name string) any {
	if s == nil || s.compiled == nil || !s.compiled.IsDefined(name) {
		return nil
	}
	return s.compiled.Get(name).Value()
}

// StateValue reads an entry of the script's persistent state map.
func (s *ScriptHooks) StateValue(key string) any {
	if s == nil || s.stateData == nil {
		return nil
	}
	return objectToAny(s.stateData.Value[key])
}

func (s *ScriptHooks) enter(e *Engine, state component.StateID) {
	s.run(e, "enter", "onEnter", state)
}

func (s *ScriptHooks) update(e *Engine, state component.StateID) {
	s.run(e, "update", "update", state)
}

func (s *ScriptHooks) exit(e *Engine, state component.StateID) {
	s.run(e, "exit", "onExit", state)
}

func (s *ScriptHooks) run(e *Engine, phase, hook string, state component.StateID) {
	if s == nil || s.compiled == nil || !s.hooks[hook] {
		return
	}
	if err := s.runPhase(phase, state, buildScriptEngine(e)); err != nil {
		s.failures++
		e.log.Warn("ai: script hook failed", "script", s.Path, "hook", hook, "state", state, "error", err)
	}
}

// runPhase turns VM panics (integer division by zero among them) into errors.
func (s *ScriptHooks) runPhase(phase string, current component.StateID, engine *tengo.ImmutableMap) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("ai: script panic: %v", r)
		}
	}()

	if err := s.compiled.Set("__phase", phase); err != nil {
		return err
	}
	if err := s.compiled.Set("__engine", engine); err != nil {
		return err
	}
	if err := s.compiled.Set("__state", s.stateData); err != nil {
		return err
	}
	if err := s.compiled.Set("__current_state", string(current)); err != nil {
		return err
	}
	return s.compiled.Run()
}

func buildScriptEngine(e *Engine) *tengo.ImmutableMap {
	values := map[string]tengo.Object{}

	values["get_position"] = &tengo.UserFunction{Name: "get_position", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return vecToObject(e.Position()), nil
	}}

	values["get_target_position"] = &tengo.UserFunction{Name: "get_target_position", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if e.deps.Target == nil {
			return vecToObject(common.Vec3{}), nil
		}
		return vecToObject(e.deps.Target.Position()), nil
	}}

	values["get_state"] = &tengo.UserFunction{Name: "get_state", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.String{Value: string(e.state)}, nil
	}}

	values["detected"] = &tengo.UserFunction{Name: "detected", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if e.detected {
			return tengo.TrueValue, nil
		}
		return tengo.FalseValue, nil
	}}

	values["hot_zones"] = &tengo.UserFunction{Name: "hot_zones", Value: func(args ...tengo.Object) (tengo.Object, error) {
		zones := e.memory.All()
		out := make([]tengo.Object, 0, len(zones))
		for _, z := range zones {
			out = append(out, vecToObject(z))
		}
		return &tengo.Array{Value: out}, nil
	}}

	values["record_hot_zone"] = &tengo.UserFunction{Name: "record_hot_zone", Value: func(args ...tengo.Object) (tengo.Object, error) {
		p, ok := vecFromArgs(args)
		if !ok {
			return tengo.FalseValue, nil
		}
		e.memory.Record(p)
		return tengo.TrueValue, nil
	}}

	values["hear_noise"] = &tengo.UserFunction{Name: "hear_noise", Value: func(args ...tengo.Object) (tengo.Object, error) {
		p, ok := vecFromArgs(args)
		if !ok {
			return tengo.FalseValue, nil
		}
		e.HearNoise(p)
		return tengo.TrueValue, nil
	}}

	values["log"] = &tengo.UserFunction{Name: "log", Value: func(args ...tengo.Object) (tengo.Object, error) {
		parts := make([]string, 0, len(args))
		for _, a := range args {
			parts = append(parts, objectAsString(a))
		}
		e.log.Info("ai: script", "msg", strings.Join(parts, " "), "state", e.state)
		return tengo.UndefinedValue, nil
	}}

	return &tengo.ImmutableMap{Value: values}
}

func vecToObject(v common.Vec3) tengo.Object {
	return &tengo.Array{Value: []tengo.Object{
		&tengo.Float{Value: v.X},
		&tengo.Float{Value: v.Y},
		&tengo.Float{Value: v.Z},
	}}
}

// vecFromArgs accepts either three numbers or one [x, y, z] array.
func vecFromArgs(args []tengo.Object) (common.Vec3, bool) {
	if len(args) == 1 {
		if arr, ok := args[0].(*tengo.Array); ok {
			args = arr.Value
		}
	}
	if len(args) < 3 {
		return common.Vec3{}, false
	}
	var xyz [3]float64
	for i := 0; i < 3; i++ {
		f, ok := tengo.ToFloat64(args[i])
		if !ok {
			return common.Vec3{}, false
		}
		xyz[i] = f
	}
	return common.V3(xyz[0], xyz[1], xyz[2]), true
}

func objectAsString(obj tengo.Object) string {
	if obj == nil {
		return ""
	}
	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	default:
		return strings.Trim(v.String(), "\"")
	}
}

func objectToAny(obj tengo.Object) any {
	if obj == nil {
		return nil
	}

	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	case *tengo.Int:
		return int(v.Value)
	case *tengo.Float:
		return v.Value
	case *tengo.Bool:
		return !v.IsFalsy()
	case *tengo.Array:
		out := make([]any, 0, len(v.Value))
		for _, item := range v.Value {
			out = append(out, objectToAny(item))
		}
		return out
	case *tengo.Map:
		out := make(map[string]any, len(v.Value))
		for k, item := range v.Value {
			out[k] = objectToAny(item)
		}
		return out
	case *tengo.Undefined:
		return nil
	default:
		return v.String()
	}
}
