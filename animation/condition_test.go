package animation

import (
	"errors"
	"testing"
)

func TestCompare(t *testing.T) {
	cases := []struct {
		name      string
		mode      ConditionMode
		threshold Value
		live      Value
		want      bool
		err       error
	}{
		{"float_greater", Greater, Float(0.1), Float(1), true, nil},
		{"float_not_greater", Greater, Float(0.1), Float(0.1), false, nil},
		{"float_less", Less, Float(0.1), Float(0), true, nil},
		{"int_equals", Equals, Int(3), Int(3), true, nil},
		{"int_not_equal", NotEqual, Int(3), Int(4), true, nil},
		{"string_ordered", Less, String("b"), String("a"), true, nil},
		{"bool_if", If, Bool(true), Bool(true), true, nil},
		{"bool_ifnot", IfNot, Bool(true), Bool(false), true, nil},
		{"entity_equals", Equals, Entity(7), Entity(7), true, nil},
		{"trigger_set", Trigger, Bool(true), Bool(true), true, nil},
		{"trigger_unset", Trigger, Bool(true), Bool(false), false, nil},
		{"trigger_without_threshold", Trigger, Value{}, Bool(true), true, nil},
		{"kind_mismatch", Greater, Int(1), Float(2), false, ErrTypeMismatch},
		{"bool_greater_unsupported", Greater, Bool(true), Bool(false), false, ErrUnsupportedMode},
		{"trigger_on_float", Trigger, Value{}, Float(1), false, ErrUnsupportedMode},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := Compare(c.mode, c.threshold, c.live)
			if c.err != nil {
				if !errors.Is(err, c.err) {
					t.Fatalf("expected %v, got %v", c.err, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != c.want {
				t.Fatalf("Compare = %v, want %v", got, c.want)
			}
		})
	}
}

func TestEvaluateConditions(t *testing.T) {
	t.Run("empty_passes", func(t *testing.T) {
		ok, err := EvaluateConditions(nil, map[string]Value{})
		if err != nil || !ok {
			t.Fatalf("no conditions should pass, got %v %v", ok, err)
		}
	})

	t.Run("trigger_consumed_when_later_condition_fails", func(t *testing.T) {
		params := map[string]Value{"Jump": Bool(true), "Grounded": Bool(false)}
		conds := []Condition{
			{Mode: Trigger, Parameter: "Jump"},
			{Mode: If, Parameter: "Grounded", Threshold: Bool(true)},
		}
		ok, err := EvaluateConditions(conds, params)
		if err != nil || ok {
			t.Fatalf("expected a failing evaluation, got %v %v", ok, err)
		}
		if b, _ := params["Jump"].AsBool(); b {
			t.Fatalf("trigger should be reset after passing")
		}
	})

	t.Run("short_circuit_leaves_later_trigger", func(t *testing.T) {
		params := map[string]Value{"Speed": Float(0), "Jump": Bool(true)}
		conds := []Condition{
			{Mode: Greater, Parameter: "Speed", Threshold: Float(1)},
			{Mode: Trigger, Parameter: "Jump"},
		}
		if ok, _ := EvaluateConditions(conds, params); ok {
			t.Fatalf("expected failure")
		}
		if b, _ := params["Jump"].AsBool(); !b {
			t.Fatalf("trigger after a failed condition must stay armed")
		}
	})

	t.Run("unknown_parameter", func(t *testing.T) {
		_, err := EvaluateConditions([]Condition{{Mode: If, Parameter: "Nope", Threshold: Bool(true)}}, map[string]Value{})
		if !errors.Is(err, ErrUnknownParameter) {
			t.Fatalf("expected ErrUnknownParameter, got %v", err)
		}
	})

	t.Run("mismatch_is_error", func(t *testing.T) {
		params := map[string]Value{"Speed": Int(2)}
		_, err := EvaluateConditions([]Condition{{Mode: Greater, Parameter: "Speed", Threshold: Float(1)}}, params)
		if !errors.Is(err, ErrTypeMismatch) {
			t.Fatalf("expected ErrTypeMismatch, got %v", err)
		}
	})
}

func TestParseConditionMode(t *testing.T) {
	m, err := ParseConditionMode("greater")
	if err != nil || m != Greater {
		t.Fatalf("ParseConditionMode(greater) = %v, %v", m, err)
	}
	if _, err := ParseConditionMode("sometimes"); err == nil {
		t.Fatalf("expected an error for an unknown mode")
	}
}
