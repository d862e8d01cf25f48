package system

import (
	"github.com/milk9111/skelanim/common"
	"github.com/milk9111/skelanim/ecs"
	"github.com/milk9111/skelanim/ecs/component"
)

// SkeletonPoseSystem composes each node's model-space matrix from its parent
// chain. Subtrees whose transforms did not change this frame keep their cached
// matrices.
type SkeletonPoseSystem struct{}

func NewSkeletonPoseSystem() *SkeletonPoseSystem {
	return &SkeletonPoseSystem{}
}

func (s *SkeletonPoseSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	for _, root := range w.Query(component.ChildrenComponent.Kind()) {
		if ecs.Has(w, root, component.ParentComponent.Kind()) {
			continue
		}
		s.walk(w, root, common.Mat4Identity(), false, map[ecs.Entity]bool{})
	}
}

func (s *SkeletonPoseSystem) walk(w *ecs.World, e ecs.Entity, parent common.Mat4, parentDirty bool, visited map[ecs.Entity]bool) {
	if visited[e] || !ecs.IsAlive(w, e) {
		return
	}
	visited[e] = true

	pose, hasPose := ecs.Get(w, e, component.BonePoseComponent.Kind())
	dirty := parentDirty || !hasPose || ecs.IsChanged(w, e, component.TransformComponent.Kind())

	var world common.Mat4
	if dirty {
		local := component.IdentityTransform()
		if t, ok := ecs.Get(w, e, component.TransformComponent.Kind()); ok {
			local = *t
		}
		world = common.Mat4Mul(parent, local.Matrix())
		if hasPose {
			pose.World = world
		} else if err := ecs.Add(w, e, component.BonePoseComponent.Kind(), component.BonePose{World: world}); err != nil {
			return
		}
		ecs.MarkChanged(w, e, component.BonePoseComponent.Kind())
	} else {
		world = pose.World
	}

	children, ok := ecs.Get(w, e, component.ChildrenComponent.Kind())
	if !ok {
		return
	}
	for _, c := range children.Entities {
		s.walk(w, ecs.Entity(c), world, dirty, visited)
	}
}
