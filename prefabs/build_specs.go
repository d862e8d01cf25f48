package prefabs

import (
	"fmt"

	"github.com/milk9111/skelanim/animation"
	"gopkg.in/yaml.v3"
)

type EntityBuildSpec struct {
	Name       string         `yaml:"name"`
	Components map[string]any `yaml:"components"`
}

func LoadEntityBuildSpec(filename string) (EntityBuildSpec, error) {
	return LoadSpec[EntityBuildSpec](filename)
}

func DecodeComponentSpec[T any](raw any) (T, error) {
	var zero T
	if raw == nil {
		return zero, nil
	}
	b, err := yaml.Marshal(raw)
	if err != nil {
		return zero, err
	}
	var out T
	if err := yaml.Unmarshal(b, &out); err != nil {
		return zero, err
	}
	return out, nil
}

type TransformComponentSpec struct {
	Translation []float64 `yaml:"translation"`
	Rotation    []float64 `yaml:"rotation"`
	Euler       []float64 `yaml:"euler"`
	Scale       []float64 `yaml:"scale"`
}

type AnimatorComponentSpec struct {
	Controller string               `yaml:"controller"`
	Parameters map[string]ValueSpec `yaml:"parameters"`
}

// Values converts the parameter overrides.
func (s AnimatorComponentSpec) Values() (map[string]animation.Value, error) {
	if len(s.Parameters) == 0 {
		return nil, nil
	}
	out := make(map[string]animation.Value, len(s.Parameters))
	for name, vs := range s.Parameters {
		v, err := vs.toValue()
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", name, err)
		}
		out[name] = v
	}
	return out, nil
}

type BoneSpec struct {
	Name                   string `yaml:"name"`
	Parent                 string `yaml:"parent"`
	TransformComponentSpec `yaml:",inline"`
}

type SkeletonComponentSpec struct {
	Bones []BoneSpec `yaml:"bones"`
}

type SceneClockComponentSpec struct {
	Paused bool `yaml:"paused"`
}

// Pose converts the spec; omitted fields default to the identity.
func (s TransformComponentSpec) Pose() (animation.Pose, error) {
	k, err := KeyframeSpec{
		Translation: s.Translation,
		Rotation:    s.Rotation,
		Euler:       s.Euler,
		Scale:       s.Scale,
	}.keyframe()
	if err != nil {
		return animation.Pose{}, err
	}
	return animation.Pose{Translation: k.Translation, Rotation: k.Rotation, Scale: k.Scale}, nil
}
