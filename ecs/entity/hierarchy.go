package entity

import (
	"fmt"

	"github.com/milk9111/skelanim/ecs"
	"github.com/milk9111/skelanim/ecs/component"
)

// Attach makes child a direct child of parent.
func Attach(w *ecs.World, parent, child ecs.Entity) error {
	if !ecs.IsAlive(w, parent) || !ecs.IsAlive(w, child) {
		return component.ErrEntityNotAlive
	}
	if parent == child {
		return fmt.Errorf("attach: entity %d cannot parent itself", child)
	}
	if err := ecs.Add(w, child, component.ParentComponent.Kind(), component.Parent{Entity: uint64(parent)}); err != nil {
		return err
	}
	children, ok := ecs.Get(w, parent, component.ChildrenComponent.Kind())
	if !ok {
		return ecs.Add(w, parent, component.ChildrenComponent.Kind(), component.Children{Entities: []uint64{uint64(child)}})
	}
	children.Entities = append(children.Entities, uint64(child))
	return nil
}

// Descendants lists every node below root in depth-first order.
func Descendants(w *ecs.World, root ecs.Entity) []ecs.Entity {
	var out []ecs.Entity
	visited := map[ecs.Entity]bool{root: true}
	var walk func(e ecs.Entity)
	walk = func(e ecs.Entity) {
		children, ok := ecs.Get(w, e, component.ChildrenComponent.Kind())
		if !ok {
			return
		}
		for _, raw := range children.Entities {
			c := ecs.Entity(raw)
			if visited[c] || !ecs.IsAlive(w, c) {
				continue
			}
			visited[c] = true
			out = append(out, c)
			walk(c)
		}
	}
	walk(root)
	return out
}

// DestroyHierarchy destroys root and everything below it.
func DestroyHierarchy(w *ecs.World, root ecs.Entity) {
	for _, e := range Descendants(w, root) {
		ecs.DestroyEntity(w, e)
	}
	ecs.DestroyEntity(w, root)
}

// FindBone returns the first node named name below root.
func FindBone(w *ecs.World, root ecs.Entity, name string) (ecs.Entity, bool) {
	for _, e := range Descendants(w, root) {
		if b, ok := ecs.Get(w, e, component.BoneComponent.Kind()); ok && b.Name == name {
			return e, true
		}
	}
	return 0, false
}
