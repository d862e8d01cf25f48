package prefabs

import (
	"fmt"
	"log"
	"math"
	"path"
	"strings"
	"sync"

	"github.com/milk9111/skelanim/animation"
	"github.com/milk9111/skelanim/common"
	"gopkg.in/yaml.v3"
)

// ClipLibrary lazily loads motion clips from <Dir>/<name>.yaml and shares each
// clip between every controller that references it.
type ClipLibrary struct {
	Dir string

	mu      sync.Mutex
	clips   map[string]*animation.Clip
	missing map[string]bool
}

func NewClipLibrary(dir string) *ClipLibrary {
	if dir == "" {
		dir = "clips"
	}
	return &ClipLibrary{
		Dir:     dir,
		clips:   map[string]*animation.Clip{},
		missing: map[string]bool{},
	}
}

// ResolveClip implements animation.ClipResolver.
func (l *ClipLibrary) ResolveClip(name string) (*animation.Clip, bool) {
	if l == nil || strings.TrimSpace(name) == "" {
		return nil, false
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if clip, ok := l.clips[name]; ok {
		return clip, true
	}
	if l.missing[name] {
		return nil, false
	}

	clip, err := l.load(name)
	if err != nil {
		log.Printf("prefabs: clip %q: %v", name, err)
		l.missing[name] = true
		return nil, false
	}
	l.clips[name] = clip
	return clip, true
}

// Forget drops a cached clip so the next lookup reads it again.
func (l *ClipLibrary) Forget(name string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	delete(l.clips, name)
	delete(l.missing, name)
	l.mu.Unlock()
}

func (l *ClipLibrary) load(name string) (*animation.Clip, error) {
	file := name
	if !strings.HasSuffix(file, ".yaml") {
		file += ".yaml"
	}
	data, err := Load(path.Join(l.Dir, file))
	if err != nil {
		return nil, err
	}
	return ParseClip(name, data)
}

// ParseClip converts yaml clip data. fallbackName is used when the file does
// not name the clip.
func ParseClip(fallbackName string, data []byte) (*animation.Clip, error) {
	var spec ClipSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("unmarshal clip: %w", err)
	}
	name := spec.Name
	if name == "" {
		name = fallbackName
	}

	nodes := make([]animation.NodeClip, 0, len(spec.Bones))
	for _, bone := range sortedKeys(spec.Bones) {
		node := animation.NodeClip{Bone: bone}
		for i, ks := range spec.Bones[bone] {
			k, err := ks.keyframe()
			if err != nil {
				return nil, fmt.Errorf("bone %q: key %d: %w", bone, i, err)
			}
			node.Keys = append(node.Keys, k)
		}
		nodes = append(nodes, node)
	}
	return animation.NewClip(name, spec.Duration, nodes), nil
}

func (k KeyframeSpec) keyframe() (animation.Keyframe, error) {
	out := animation.Keyframe{
		Time:     k.Time,
		Rotation: common.QuatIdentity(),
		Scale:    common.One,
	}
	var err error
	if k.Translation != nil {
		if out.Translation, err = vec3(k.Translation); err != nil {
			return out, fmt.Errorf("translation: %w", err)
		}
	}
	if k.Scale != nil {
		if out.Scale, err = vec3(k.Scale); err != nil {
			return out, fmt.Errorf("scale: %w", err)
		}
	}
	switch {
	case k.Rotation != nil:
		if len(k.Rotation) != 4 {
			return out, fmt.Errorf("rotation: want 4 components, got %d", len(k.Rotation))
		}
		out.Rotation = common.Quat{k.Rotation[0], k.Rotation[1], k.Rotation[2], k.Rotation[3]}.Normalize()
	case k.Euler != nil:
		e, err := vec3(k.Euler)
		if err != nil {
			return out, fmt.Errorf("euler: %w", err)
		}
		rad := math.Pi / 180
		out.Rotation = common.EulerToQuat(e[0]*rad, e[1]*rad, e[2]*rad)
	}
	return out, nil
}

func vec3(v []float64) (common.Vec3, error) {
	if len(v) != 3 {
		return common.Vec3{}, fmt.Errorf("want 3 components, got %d", len(v))
	}
	return common.Vec3{v[0], v[1], v[2]}, nil
}
