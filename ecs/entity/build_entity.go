package entity

import (
	"fmt"
	"sort"

	"github.com/milk9111/skelanim/animation"
	"github.com/milk9111/skelanim/ecs"
	"github.com/milk9111/skelanim/ecs/component"
	"github.com/milk9111/skelanim/prefabs"
)

type entityPrefabSpec = prefabs.EntityBuildSpec

type buildContext struct {
	PrefabPath string
}

type componentBuildFn func(w *ecs.World, e ecs.Entity, raw any, ctx *buildContext) error

var componentRegistry = map[string]componentBuildFn{
	"transform":   addTransform,
	"animator":    addAnimator,
	"skeleton":    addSkeleton,
	"scene_clock": addSceneClock,
}

// Bones attach under the root transform, so transform goes first.
var componentBuildOrder = []string{
	"transform",
	"animator",
	"skeleton",
	"scene_clock",
}

func BuildEntity(w *ecs.World, prefabPath string) (ecs.Entity, error) {
	if w == nil {
		return 0, fmt.Errorf("build entity: world is nil")
	}

	spec, err := prefabs.LoadEntityBuildSpec(prefabPath)
	if err != nil {
		return 0, fmt.Errorf("build entity: load %q: %w", prefabPath, err)
	}
	return BuildEntityFromSpec(w, prefabPath, spec)
}

// BuildEntityFromSpec creates an entity from an already decoded prefab. On
// failure nothing it created is left in the world.
func BuildEntityFromSpec(w *ecs.World, prefabPath string, spec entityPrefabSpec) (ecs.Entity, error) {
	if w == nil {
		return 0, fmt.Errorf("build entity: world is nil")
	}
	if len(spec.Components) == 0 {
		return 0, fmt.Errorf("build entity: prefab %q does not define components", prefabPath)
	}

	e := ecs.CreateEntity(w)
	ctx := &buildContext{PrefabPath: prefabPath}

	remaining := make(map[string]any, len(spec.Components))
	for k, v := range spec.Components {
		remaining[k] = v
	}

	build := func(name string, raw any) error {
		builder, ok := componentRegistry[name]
		if !ok {
			DestroyHierarchy(w, e)
			return fmt.Errorf("build entity: %q: no builder for component %q", prefabPath, name)
		}
		if err := builder(w, e, raw, ctx); err != nil {
			DestroyHierarchy(w, e)
			return fmt.Errorf("build entity: %q: add %q: %w", prefabPath, name, err)
		}
		return nil
	}

	for _, name := range componentBuildOrder {
		raw, ok := remaining[name]
		if !ok {
			continue
		}
		if err := build(name, raw); err != nil {
			return 0, err
		}
		delete(remaining, name)
	}

	names := make([]string, 0, len(remaining))
	for name := range remaining {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := build(name, remaining[name]); err != nil {
			return 0, err
		}
	}

	return e, nil
}

// SetEntityTransform replaces e's local transform and flags it changed.
func SetEntityTransform(w *ecs.World, e ecs.Entity, t component.Transform) error {
	if err := ecs.Add(w, e, component.TransformComponent.Kind(), t); err != nil {
		return err
	}
	ecs.MarkChanged(w, e, component.TransformComponent.Kind())
	return nil
}

func transformFromPose(p animation.Pose) component.Transform {
	return component.Transform{Translation: p.Translation, Rotation: p.Rotation, Scale: p.Scale}
}

func addTransform(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.TransformComponentSpec](raw)
	if err != nil {
		return err
	}
	pose, err := spec.Pose()
	if err != nil {
		return err
	}
	return SetEntityTransform(w, e, transformFromPose(pose))
}

func addAnimator(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.AnimatorComponentSpec](raw)
	if err != nil {
		return err
	}
	if spec.Controller == "" {
		return fmt.Errorf("animator: controller is required")
	}
	params, err := spec.Values()
	if err != nil {
		return fmt.Errorf("animator: %w", err)
	}
	return ecs.Add(w, e, component.AnimatorComponent.Kind(), component.Animator{
		Controller: spec.Controller,
		Parameters: params,
	})
}

func addSkeleton(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.SkeletonComponentSpec](raw)
	if err != nil {
		return err
	}
	if !ecs.Has(w, e, component.TransformComponent.Kind()) {
		if err := SetEntityTransform(w, e, component.IdentityTransform()); err != nil {
			return err
		}
	}

	byName := make(map[string]ecs.Entity, len(spec.Bones))
	for i, b := range spec.Bones {
		if b.Name == "" {
			return fmt.Errorf("skeleton: bone %d has no name", i)
		}
		if _, dup := byName[b.Name]; dup {
			return fmt.Errorf("skeleton: duplicate bone %q", b.Name)
		}
		parent := e
		if b.Parent != "" {
			p, ok := byName[b.Parent]
			if !ok {
				return fmt.Errorf("skeleton: bone %q: parent %q must be declared first", b.Name, b.Parent)
			}
			parent = p
		}
		pose, err := b.Pose()
		if err != nil {
			return fmt.Errorf("skeleton: bone %q: %w", b.Name, err)
		}

		bone := ecs.CreateEntity(w)
		if err := Attach(w, parent, bone); err != nil {
			ecs.DestroyEntity(w, bone)
			return err
		}
		if err := ecs.Add(w, bone, component.BoneComponent.Kind(), component.Bone{Name: b.Name}); err != nil {
			return err
		}
		if err := SetEntityTransform(w, bone, transformFromPose(pose)); err != nil {
			return err
		}
		byName[b.Name] = bone
	}
	return nil
}

func addSceneClock(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.SceneClockComponentSpec](raw)
	if err != nil {
		return err
	}
	return ecs.Add(w, e, component.SceneClockComponent.Kind(), component.SceneClock{Paused: spec.Paused})
}
