package ecs

import (
	"fmt"

	"github.com/milk9111/skelanim/ecs/component"
)

// CreateEntity allocates a new entity.
func CreateEntity(w *World) Entity {
	return w.entities.create()
}

// DestroyEntity removes every component of e and invalidates the handle.
func DestroyEntity(w *World, e Entity) bool {
	if w == nil || !w.entities.isAlive(e) {
		return false
	}
	for _, s := range w.stores {
		if s.Has(e) {
			s.Remove(e)
		}
	}
	w.changes.forget(e)
	return w.entities.destroy(e)
}

func IsAlive(w *World, e Entity) bool {
	return w != nil && w.entities.isAlive(e)
}

// Entities lists every live entity in id order.
func Entities(w *World) []Entity {
	if w == nil {
		return nil
	}
	return w.entities.all()
}

// Add stores a copy of value for e, replacing any existing component of the kind.
func Add[T any](w *World, e Entity, kind component.ComponentKind[T], value T) error {
	if w == nil {
		return component.ErrEntityNotAlive
	}
	v := value
	if err := w.addComponent(e, kind.ID(), &v); err != nil {
		return fmt.Errorf("add %s to entity %s: %w", kind.Name(), e, err)
	}
	return nil
}

func Remove[T any](w *World, e Entity, kind component.ComponentKind[T]) bool {
	return w.removeComponent(e, kind.ID())
}

func Has[T any](w *World, e Entity, kind component.ComponentKind[T]) bool {
	_, ok := w.component(e, kind.ID())
	return ok
}

// Get returns a pointer to e's component; writes through it are visible to
// every later reader.
func Get[T any](w *World, e Entity, kind component.ComponentKind[T]) (*T, bool) {
	value, ok := w.component(e, kind.ID())
	if !ok {
		return nil, false
	}
	cast, ok := value.(*T)
	return cast, ok
}

// ForEach visits every live entity owning kind.
func ForEach[T any](w *World, kind component.ComponentKind[T], fn func(Entity, *T)) {
	if w == nil || fn == nil {
		return
	}
	s := w.stores[kind.ID()]
	for _, e := range s.Entities() {
		if v, ok := Get(w, e, kind); ok {
			fn(e, v)
		}
	}
}

// ForEach2 visits every live entity owning both kinds.
func ForEach2[A, B any](w *World, ka component.ComponentKind[A], kb component.ComponentKind[B], fn func(Entity, *A, *B)) {
	if w == nil || fn == nil {
		return
	}
	for _, e := range w.Query(ka, kb) {
		a, okA := Get(w, e, ka)
		b, okB := Get(w, e, kb)
		if okA && okB {
			fn(e, a, b)
		}
	}
}

// First returns any live entity owning kind.
func First[T any](w *World, kind component.ComponentKind[T]) (Entity, bool) {
	if w == nil {
		return 0, false
	}
	for _, e := range w.stores[kind.ID()].Entities() {
		if w.entities.isAlive(e) {
			return e, true
		}
	}
	return 0, false
}

// MarkChanged flags e's component of kind as modified this frame.
func MarkChanged[T any](w *World, e Entity, kind component.ComponentKind[T]) {
	if w == nil || !w.entities.isAlive(e) {
		return
	}
	w.changes.mark(kind.ID(), e)
}

func IsChanged[T any](w *World, e Entity, kind component.ComponentKind[T]) bool {
	return w != nil && w.changes.has(kind.ID(), e)
}

// Changed lists the entities flagged for kind since the last World.Update.
func Changed[T any](w *World, kind component.ComponentKind[T]) []Entity {
	if w == nil {
		return nil
	}
	return w.changes.list(kind.ID())
}
