package prefabs

import (
	"fmt"
	"sort"

	"github.com/milk9111/skelanim/animation"
	"gopkg.in/yaml.v3"
)

// DecodeController loads and converts the controller prefab at name. Its
// signature matches animation.DecodeFunc.
func DecodeController(name string) (*animation.Controller, error) {
	data, err := Load(name)
	if err != nil {
		return nil, fmt.Errorf("prefabs: load %s: %w", name, err)
	}
	ctrl, err := ParseController(data)
	if err != nil {
		return nil, fmt.Errorf("prefabs: %s: %w", name, err)
	}
	return ctrl, nil
}

// ParseController converts yaml controller data.
func ParseController(data []byte) (*animation.Controller, error) {
	var spec ControllerSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("unmarshal controller: %w", err)
	}
	return BuildController(spec)
}

// BuildController converts a decoded spec. States are registered in name order
// so state indices are stable across loads.
func BuildController(spec ControllerSpec) (*animation.Controller, error) {
	ctrl := animation.NewController(spec.AnimatorName)
	ctrl.EntryState = spec.EntryStateName

	for _, name := range sortedKeys(spec.Parameters) {
		v, err := spec.Parameters[name].toValue()
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", name, err)
		}
		ctrl.AddParameter(name, v)
	}

	for _, name := range sortedKeys(spec.StateMap) {
		ss := spec.StateMap[name]
		s := ctrl.AddState(name)
		s.MotionName = ss.MotionName
		s.Loop = ss.IsLoop
		if ss.Multiplier != nil {
			s.Multiplier = *ss.Multiplier
		}

		for i, es := range ss.AnimationEvents {
			ev := animation.Event{Time: es.Time, Function: es.FunctionName}
			for j, ps := range es.Parameters {
				v, err := ps.toValue()
				if err != nil {
					return nil, fmt.Errorf("state %q: event %d: parameter %d: %w", name, i, j, err)
				}
				ev.Parameters = append(ev.Parameters, v)
			}
			s.Events = append(s.Events, ev)
		}

		ts, err := buildTransitions(ss.Transitions)
		if err != nil {
			return nil, fmt.Errorf("state %q: %w", name, err)
		}
		s.Transitions = ts
	}

	if spec.AnyState != nil {
		ts, err := buildTransitions(spec.AnyState.Transitions)
		if err != nil {
			return nil, fmt.Errorf("any state: %w", err)
		}
		ctrl.AnyState = ts
	}

	return ctrl, nil
}

func buildTransitions(specs []TransitionSpec) ([]animation.Transition, error) {
	out := make([]animation.Transition, 0, len(specs))
	for i, ts := range specs {
		t := animation.Transition{
			Destination: ts.DestinationState,
			BlendTime:   ts.BlendTime,
			ExitTime:    ts.ExitTime,
		}
		for j, cs := range ts.Conditions {
			mode, err := animation.ParseConditionMode(cs.Mode)
			if err != nil {
				return nil, fmt.Errorf("transition %d: condition %d: %w", i, j, err)
			}
			threshold, err := cs.Threshold.toValue()
			if err != nil {
				return nil, fmt.Errorf("transition %d: condition %d: %w", i, j, err)
			}
			t.Conditions = append(t.Conditions, animation.Condition{
				Mode:      mode,
				Parameter: cs.Parameter,
				Threshold: threshold,
			})
		}
		out = append(out, t)
	}
	return out, nil
}

// EncodeController writes ctrl in the persisted yaml schema.
func EncodeController(ctrl *animation.Controller) ([]byte, error) {
	if ctrl == nil {
		return nil, fmt.Errorf("prefabs: encode nil controller")
	}
	spec := ControllerSpec{
		AnimatorName:   ctrl.Name,
		EntryStateName: ctrl.EntryState,
		StateMap:       make(map[string]StateSpec, ctrl.NumStates()),
		Parameters:     make(map[string]ValueSpec, len(ctrl.Parameters)),
	}
	for name, v := range ctrl.Parameters {
		spec.Parameters[name] = valueSpec(v)
	}
	for i := 0; i < ctrl.NumStates(); i++ {
		s := ctrl.StateAt(i)
		mult := s.Multiplier
		ss := StateSpec{
			MotionName:  s.MotionName,
			Multiplier:  &mult,
			IsLoop:      s.Loop,
			Transitions: transitionSpecs(s.Transitions),
		}
		for _, ev := range s.Events {
			es := EventSpec{Time: ev.Time, FunctionName: ev.Function}
			for _, p := range ev.Parameters {
				es.Parameters = append(es.Parameters, valueSpec(p))
			}
			ss.AnimationEvents = append(ss.AnimationEvents, es)
		}
		spec.StateMap[s.Name] = ss
	}
	if len(ctrl.AnyState) > 0 {
		spec.AnyState = &AnyStateSpec{Transitions: transitionSpecs(ctrl.AnyState)}
	}

	data, err := yaml.Marshal(spec)
	if err != nil {
		return nil, fmt.Errorf("prefabs: marshal controller %q: %w", ctrl.Name, err)
	}
	return data, nil
}

func transitionSpecs(ts []animation.Transition) []TransitionSpec {
	out := make([]TransitionSpec, 0, len(ts))
	for _, t := range ts {
		spec := TransitionSpec{
			DestinationState: t.Destination,
			BlendTime:        t.BlendTime,
			ExitTime:         t.ExitTime,
		}
		for _, c := range t.Conditions {
			spec.Conditions = append(spec.Conditions, ConditionSpec{
				Mode:      c.Mode.String(),
				Parameter: c.Parameter,
				Threshold: valueSpec(c.Threshold),
			})
		}
		out = append(out, spec)
	}
	return out
}

func (v ValueSpec) toValue() (animation.Value, error) {
	return animation.ParseValue(v.Type, v.Value)
}

func valueSpec(v animation.Value) ValueSpec {
	return ValueSpec{Type: v.Tag(), Value: v.Payload()}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
