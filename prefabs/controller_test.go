package prefabs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/milk9111/skelanim/animation"
)

func TestDecodeEmbeddedHumanoid(t *testing.T) {
	ctrl, err := DecodeController("humanoid.controller.yaml")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if err := ctrl.Validate(); err != nil {
		t.Fatalf("embedded controller should validate: %v", err)
	}
	if ctrl.StateAt(ctrl.EntryIndex()).Name != "Entry" {
		t.Fatalf("unexpected entry state")
	}

	walk, ok := ctrl.State("Walk")
	if !ok {
		t.Fatalf("missing Walk state")
	}
	if !walk.Loop || walk.MotionName != "walk" || len(walk.Events) != 2 {
		t.Fatalf("unexpected Walk state %+v", walk)
	}
	if foot, _ := walk.Events[1].Parameters[0].AsString(); foot != "right" {
		t.Fatalf("event parameter = %q, want right", foot)
	}
	if len(ctrl.AnyState) != 1 || ctrl.AnyState[0].Conditions[0].Mode != animation.Trigger {
		t.Fatalf("expected the Jump any-state trigger, got %+v", ctrl.AnyState)
	}
	if v, _ := ctrl.Parameter("Steps"); v != animation.Int(0) {
		t.Fatalf("Steps = %v", v)
	}
}

func TestEncodeControllerRoundTrip(t *testing.T) {
	orig, err := DecodeController("humanoid.controller.yaml")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	data, err := EncodeController(orig)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	back, err := ParseController(data)
	if err != nil {
		t.Fatalf("parse encoded: %v", err)
	}

	if back.Name != orig.Name || back.EntryState != orig.EntryState || back.NumStates() != orig.NumStates() {
		t.Fatalf("header changed: %q/%q/%d", back.Name, back.EntryState, back.NumStates())
	}
	for _, name := range orig.StateNames() {
		a, _ := orig.State(name)
		b, ok := back.State(name)
		if !ok {
			t.Fatalf("state %q lost", name)
		}
		if a.MotionName != b.MotionName || a.Loop != b.Loop || a.Multiplier != b.Multiplier ||
			len(a.Events) != len(b.Events) || len(a.Transitions) != len(b.Transitions) {
			t.Fatalf("state %q changed: %+v vs %+v", name, a, b)
		}
	}
	for name, v := range orig.Parameters {
		if back.Parameters[name] != v {
			t.Fatalf("parameter %q changed", name)
		}
	}
}

func TestParseControllerErrors(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"bad_yaml", "stateMap: ["},
		{"bad_mode", `
stateMap:
  A:
    transitions:
      - destinationState: A
        conditions:
          - {mode: Sometimes, parameter: X}
`},
		{"bad_parameter_payload", `
parameters:
  Speed: {type: float, value: fast}
`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := ParseController([]byte(c.yaml)); err == nil {
				t.Fatalf("expected an error")
			}
		})
	}

	_, err := ParseController([]byte(`
stateMap:
  A:
    transitions:
      - destinationState: A
        conditions:
          - {mode: Sometimes, parameter: X}
`))
	if !errors.Is(err, animation.ErrUnsupportedMode) {
		t.Fatalf("expected ErrUnsupportedMode, got %v", err)
	}
}

func TestMultiplierDefaultsToOne(t *testing.T) {
	ctrl, err := ParseController([]byte(`
stateMap:
  Idle: {motionName: idle}
  Fast: {motionName: idle, multiplier: 2.5}
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	idle, _ := ctrl.State("Idle")
	fast, _ := ctrl.State("Fast")
	if idle.Multiplier != 1 || fast.Multiplier != 2.5 {
		t.Fatalf("multipliers = %g, %g", idle.Multiplier, fast.Multiplier)
	}
}

func TestDiskOverridesEmbedded(t *testing.T) {
	dir := t.TempDir()
	prev := DiskRoot
	DiskRoot = dir
	t.Cleanup(func() { DiskRoot = prev })

	override := []byte(`
animatorName: disk
stateMap:
  Only: {motionName: idle}
`)
	if err := os.WriteFile(filepath.Join(dir, "humanoid.controller.yaml"), override, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	ctrl, err := DecodeController(filepath.Join(dir, "humanoid.controller.yaml"))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ctrl.Name != "disk" || ctrl.NumStates() != 1 {
		t.Fatalf("expected the disk copy, got %q with %d states", ctrl.Name, ctrl.NumStates())
	}
	if _, ok := ModTime("humanoid.controller.yaml"); !ok {
		t.Fatalf("expected a disk mod time")
	}
}
