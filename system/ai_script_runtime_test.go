package system

import (
	"testing"

	"github.com/milk9111/stalker/common"
	"github.com/milk9111/stalker/component"
)

func withScript(s *ScriptHooks) func(*component.AITuning, *Deps) {
	return func(_ *component.AITuning, d *Deps) {
		d.Script = s
	}
}

func TestCompileScriptHooks(t *testing.T) {
	cases := []struct {
		name    string
		src     string
		defines []string
		missing []string
		wantErr bool
	}{
		{
			name:    "update_only",
			src:     "update := func(engine, state, current) {}\n",
			defines: []string{"update"},
			missing: []string{"onEnter", "onExit"},
		},
		{
			name: "all_hooks",
			src: `onEnter := func(engine, state, current) {}
update := func(engine, state, current) {}
onExit := func(engine, state, current) {}
`,
			defines: []string{"onEnter", "update", "onExit"},
		},
		{
			name:    "syntax_error",
			src:     "update := func(engine, state, current) {\n",
			wantErr: true,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s, err := CompileScriptHooks(c.name+".tengo", []byte(c.src))
			if c.wantErr {
				if err == nil {
					t.Fatalf("expected compile error")
				}
				return
			}
			if err != nil {
				t.Fatalf("CompileScriptHooks: %v", err)
			}
			for _, h := range c.defines {
				if !s.Defines(h) {
					t.Fatalf("hook %s not detected", h)
				}
			}
			for _, h := range c.missing {
				if s.Defines(h) {
					t.Fatalf("hook %s detected but not defined", h)
				}
			}
		})
	}
}

func TestLoadScriptHooks(t *testing.T) {
	if _, err := LoadScriptHooks(" "); err == nil {
		t.Fatalf("expected error for empty path")
	}
	if _, err := LoadScriptHooks("missing.tengo"); err == nil {
		t.Fatalf("expected error for missing script")
	}

	s, err := LoadScriptHooks("stalker.tengo")
	if err != nil {
		t.Fatalf("LoadScriptHooks: %v", err)
	}
	for _, h := range []string{"onEnter", "update", "onExit"} {
		if !s.Defines(h) {
			t.Fatalf("stalker.tengo should define %s", h)
		}
	}
}

func TestScriptHooksObserveEngine(t *testing.T) {
	s, err := LoadScriptHooks("stalker.tengo")
	if err != nil {
		t.Fatalf("LoadScriptHooks: %v", err)
	}
	r := newRig(t, common.V3(40, 0, 40), withScript(s))
	if got := s.StateValue("entered"); got != "patrol" {
		t.Fatalf("entered = %v, want patrol", got)
	}

	r.target.pos = common.V3(10, 0, 0)
	r.tick(3, 0.1)
	if r.e.State() != component.StateChase {
		t.Fatalf("state = %s, want chase", r.e.State())
	}
	if got := s.StateValue("entered"); got != "chase" {
		t.Fatalf("entered = %v, want chase", got)
	}
	if got := s.StateValue("chases"); got != 1 {
		t.Fatalf("chases = %v, want 1", got)
	}
	if got := s.StateValue("ticks"); got != 3 {
		t.Fatalf("ticks = %v, want 3", got)
	}
	if s.Failures() != 0 {
		t.Fatalf("script failures = %d", s.Failures())
	}
}

func TestScriptHooksMayRecordMemories(t *testing.T) {
	src := `update := func(engine, state, current) {
	state.ticks = (is_undefined(state.ticks) ? 0 : state.ticks) + 1
	if state.ticks == 2 {
		engine.record_hot_zone(1, 2, 3)
		engine.record_hot_zone([4, 5, 6])
		engine.record_hot_zone("nope")
	}
	state.zones = len(engine.hot_zones())
	state.where = engine.get_state()
}
`
	s, err := CompileScriptHooks("memory.tengo", []byte(src))
	if err != nil {
		t.Fatalf("CompileScriptHooks: %v", err)
	}
	r := newRig(t, common.V3(40, 0, 40), withScript(s))
	r.target.concealed = true
	r.tick(3, 0.1)

	zones := r.e.HotZones()
	if len(zones) != 2 || !near(zones[0], common.V3(4, 5, 6)) || !near(zones[1], common.V3(1, 2, 3)) {
		t.Fatalf("hot zones = %v", zones)
	}
	if got := s.StateValue("zones"); got != 2 {
		t.Fatalf("script saw %v zones, want 2", got)
	}
	if got := s.StateValue("where"); got != "patrol" {
		t.Fatalf("script saw state %v, want patrol", got)
	}
	// scripts never pick states
	if r.e.State() != component.StatePatrol {
		t.Fatalf("state = %s, want patrol", r.e.State())
	}
}

func TestScriptHookFailuresAreContained(t *testing.T) {
	cases := []struct {
		name         string
		src          string
		wantFailures int
		wantTicks    any
	}{
		{
			name: "update_divides_by_zero",
			src: `update := func(engine, state, current) {
	state.zero = 0
	state.bad = 1 / state.zero
}
`,
			wantFailures: 2,
		},
		{
			// the enter hook runs at construction and on entering chase
			name: "enter_divides_by_zero",
			src: `onEnter := func(engine, state, current) {
	zero := 0
	state.bad = 1 / zero
}
update := func(engine, state, current) {
	state.ticks = is_undefined(state.ticks) ? 1 : state.ticks + 1
}
`,
			wantFailures: 2,
			wantTicks:    2,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s, err := CompileScriptHooks(c.name+".tengo", []byte(c.src))
			if err != nil {
				t.Fatalf("CompileScriptHooks: %v", err)
			}
			r := newRig(t, common.V3(10, 0, 0), withScript(s))
			r.tick(2, 0.1)

			if s.Failures() != c.wantFailures {
				t.Fatalf("failures = %d, want %d", s.Failures(), c.wantFailures)
			}
			if r.e.Ticks() != 2 || r.e.State() != component.StateChase {
				t.Fatalf("engine stalled: ticks=%d state=%s", r.e.Ticks(), r.e.State())
			}
			if c.wantTicks != nil && s.StateValue("ticks") != c.wantTicks {
				t.Fatalf("update ran %v times, want %v", s.StateValue("ticks"), c.wantTicks)
			}
		})
	}
}

func TestScriptHooksNil(t *testing.T) {
	var s *ScriptHooks
	if s.Defines("update") || s.Failures() != 0 || s.StateValue("x") != nil || s.Global("x") != nil {
		t.Fatalf("nil hooks should be inert")
	}
}
