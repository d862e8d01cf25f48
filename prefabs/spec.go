package prefabs

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

// ControllerSpec is the persisted form of an animation controller.
type ControllerSpec struct {
	AnimatorName   string               `yaml:"animatorName"`
	EntryStateName string               `yaml:"entryStateName"`
	StateMap       map[string]StateSpec `yaml:"stateMap"`
	AnyState       *AnyStateSpec        `yaml:"anyState,omitempty"`
	Parameters     map[string]ValueSpec `yaml:"parameters"`
}

type AnyStateSpec struct {
	Transitions []TransitionSpec `yaml:"transitions"`
}

type StateSpec struct {
	Transitions     []TransitionSpec `yaml:"transitions"`
	MotionName      string           `yaml:"motionName"`
	Multiplier      *float64         `yaml:"multiplier,omitempty"`
	IsLoop          bool             `yaml:"isLoop"`
	AnimationEvents []EventSpec      `yaml:"animationEvents"`
}

type TransitionSpec struct {
	DestinationState string          `yaml:"destinationState"`
	BlendTime        float64         `yaml:"blendTime"`
	ExitTime         float64         `yaml:"exitTime"`
	Conditions       []ConditionSpec `yaml:"conditions"`
}

type ConditionSpec struct {
	Mode      string    `yaml:"mode"`
	Parameter string    `yaml:"parameter"`
	Threshold ValueSpec `yaml:"threshold"`
}

type EventSpec struct {
	Time         float64     `yaml:"time"`
	FunctionName string      `yaml:"functionName"`
	Parameters   []ValueSpec `yaml:"parameters"`
}

// ValueSpec is a type tag plus a string-encoded payload.
type ValueSpec struct {
	Type  string `yaml:"type"`
	Value string `yaml:"value"`
}

// ClipSpec is the persisted form of a motion clip.
type ClipSpec struct {
	Name     string                    `yaml:"name"`
	Duration float64                   `yaml:"duration"`
	Bones    map[string][]KeyframeSpec `yaml:"bones"`
}

type KeyframeSpec struct {
	Time        float64   `yaml:"time"`
	Translation []float64 `yaml:"translation"`
	Rotation    []float64 `yaml:"rotation"`
	// Euler is XYZ degrees, used when Rotation is absent.
	Euler []float64 `yaml:"euler"`
	Scale []float64 `yaml:"scale"`
}
