package animation

import (
	"errors"
	"testing"
)

func TestAddParameterSuffixesDuplicates(t *testing.T) {
	c := NewController("c")
	names := []string{
		c.AddParameter("Speed", Float(0)),
		c.AddParameter("Speed", Float(1)),
		c.AddParameter("Speed", Float(2)),
	}
	want := []string{"Speed", "Speed 1", "Speed 2"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("name %d = %q, want %q", i, names[i], want[i])
		}
	}
	if v, _ := c.Parameter("Speed 2"); v != Float(2) {
		t.Fatalf("unexpected value %v", v)
	}
}

func TestAddStateReplacesInPlace(t *testing.T) {
	c := NewController("c")
	c.AddState("Idle").Loop = true
	c.AddState("Walk")
	replaced := c.AddState("Idle")

	if c.NumStates() != 2 {
		t.Fatalf("expected 2 states, got %d", c.NumStates())
	}
	idx, ok := c.StateIndex("Idle")
	if !ok || idx != 0 {
		t.Fatalf("Idle should keep index 0, got %d", idx)
	}
	if c.StateAt(0) != replaced || replaced.Loop || replaced.Multiplier != 1 {
		t.Fatalf("replacement should be a fresh default state: %+v", replaced)
	}
	if c.StateAt(5) != nil || c.StateAt(-1) != nil {
		t.Fatalf("out of range StateAt should be nil")
	}
}

func TestEntryIndex(t *testing.T) {
	cases := []struct {
		name   string
		states []string
		entry  string
		want   string
	}{
		{"configured", []string{"A", "B", "Entry"}, "B", "B"},
		{"fallback_entry", []string{"A", "Entry"}, "Missing", "Entry"},
		{"first_sorted", []string{"Walk", "Idle"}, "", "Idle"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ctrl := NewController("c")
			ctrl.EntryState = c.entry
			for _, s := range c.states {
				ctrl.AddState(s)
			}
			if got := ctrl.StateAt(ctrl.EntryIndex()).Name; got != c.want {
				t.Fatalf("entry = %q, want %q", got, c.want)
			}
		})
	}

	if NewController("empty").EntryIndex() != -1 {
		t.Fatalf("empty controller should have no entry")
	}
}

func TestValidate(t *testing.T) {
	build := func() *Controller {
		c := NewController("c")
		c.AddParameter("Speed", Float(0))
		c.AddParameter("Jump", Bool(false))
		c.AddState("Idle")
		c.AddState("Walk")
		return c
	}

	t.Run("clean", func(t *testing.T) {
		c := build()
		idle, _ := c.State("Idle")
		idle.Transitions = []Transition{{
			Destination: "Walk",
			BlendTime:   0.2,
			Conditions:  []Condition{{Mode: Greater, Parameter: "Speed", Threshold: Float(0.1)}},
		}}
		c.AnyState = []Transition{{Destination: "Idle", Conditions: []Condition{{Mode: Trigger, Parameter: "Jump"}}}}
		if err := c.Validate(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	cases := []struct {
		name string
		tr   Transition
		want error
	}{
		{"unknown_destination", Transition{Destination: "Run"}, ErrUnknownState},
		{"unknown_parameter", Transition{Destination: "Walk", Conditions: []Condition{{Mode: If, Parameter: "Crouch", Threshold: Bool(true)}}}, ErrUnknownParameter},
		{"threshold_kind", Transition{Destination: "Walk", Conditions: []Condition{{Mode: Greater, Parameter: "Speed", Threshold: Int(1)}}}, ErrTypeMismatch},
		{"trigger_on_float", Transition{Destination: "Walk", Conditions: []Condition{{Mode: Trigger, Parameter: "Speed"}}}, ErrUnsupportedMode},
		{"greater_on_bool", Transition{Destination: "Walk", Conditions: []Condition{{Mode: Greater, Parameter: "Jump", Threshold: Bool(true)}}}, ErrUnsupportedMode},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := build()
			idle, _ := c.State("Idle")
			idle.Transitions = []Transition{tc.tr}
			if err := c.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	t.Run("ranges", func(t *testing.T) {
		c := build()
		walk, _ := c.State("Walk")
		walk.Events = []Event{{Time: 1.5, Function: "late"}}
		walk.Transitions = []Transition{{Destination: "Idle", BlendTime: -1, ExitTime: 2}}
		if err := c.Validate(); err == nil {
			t.Fatalf("expected range errors")
		}
	})

	t.Run("missing_entry", func(t *testing.T) {
		c := build()
		c.EntryState = "Nowhere"
		if err := c.Validate(); !errors.Is(err, ErrUnknownState) {
			t.Fatalf("expected ErrUnknownState, got %v", err)
		}
	})
}

func TestCloneParametersIsPrivate(t *testing.T) {
	c := NewController("c")
	c.AddParameter("Speed", Float(0))
	a := c.CloneParameters()
	b := c.CloneParameters()
	a["Speed"] = Float(5)
	if b["Speed"] != Float(0) || c.Parameters["Speed"] != Float(0) {
		t.Fatalf("clones must not share storage")
	}
}
