package ecs

import (
	"sort"

	"github.com/milk9111/skelanim/ecs/component"
)

// Event is a generic ECS event payload.
type Event struct {
	Type string
	Data any
}

// EventQueue is a simple FIFO queue.
type EventQueue struct {
	items []Event
}

// Push adds an event.
func (q *EventQueue) Push(evt Event) {
	if q == nil {
		return
	}
	q.items = append(q.items, evt)
}

// Drain returns all events and clears the queue.
func (q *EventQueue) Drain() []Event {
	if q == nil || len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}

func (q *EventQueue) flush() {
	if q == nil {
		return
	}
	q.items = nil
}

// changeSet records per-kind modified entities for one frame.
type changeSet struct {
	byKind map[component.ComponentID]map[Entity]struct{}
}

func (c *changeSet) mark(id component.ComponentID, e Entity) {
	if c.byKind == nil {
		c.byKind = map[component.ComponentID]map[Entity]struct{}{}
	}
	set, ok := c.byKind[id]
	if !ok {
		set = map[Entity]struct{}{}
		c.byKind[id] = set
	}
	set[e] = struct{}{}
}

func (c *changeSet) has(id component.ComponentID, e Entity) bool {
	_, ok := c.byKind[id][e]
	return ok
}

func (c *changeSet) list(id component.ComponentID) []Entity {
	set := c.byKind[id]
	out := make([]Entity, 0, len(set))
	for e := range set {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (c *changeSet) forget(e Entity) {
	for _, set := range c.byKind {
		delete(set, e)
	}
}

func (c *changeSet) flush() {
	c.byKind = nil
}
