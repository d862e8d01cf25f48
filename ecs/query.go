package ecs

import "github.com/milk9111/skelanim/ecs/component"

type componentKey interface {
	ID() component.ComponentID
}

// Query returns the entities that own every listed component kind. The
// smallest store drives the iteration.
func (w *World) Query(kinds ...componentKey) []Entity {
	if w == nil || len(kinds) == 0 {
		return nil
	}
	sets := make([]*SparseSet, 0, len(kinds))
	for _, k := range kinds {
		s := w.stores[k.ID()]
		if s == nil || s.Len() == 0 {
			return nil
		}
		sets = append(sets, s)
	}

	smallest := sets[0]
	for _, s := range sets[1:] {
		if s.Len() < smallest.Len() {
			smallest = s
		}
	}

	out := make([]Entity, 0, smallest.Len())
	for _, e := range smallest.denseEntities {
		if !w.entities.isAlive(e) {
			continue
		}
		match := true
		for _, s := range sets {
			if !s.Has(e) {
				match = false
				break
			}
		}
		if match {
			out = append(out, e)
		}
	}
	return out
}
