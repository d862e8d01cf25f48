package ecs

import (
	"fmt"
	"strconv"
)

// Entity is a generational handle. The low 32 bits index the entity store and
// the high 32 bits count how often that slot has been recycled, so a stale
// handle never matches the slot's next occupant.
type Entity uint64

type entityID uint32
type generation uint32

const entityIDBits = 32

func makeEntity(id entityID, gen generation) Entity {
	return Entity(uint64(gen)<<entityIDBits | uint64(id))
}

func (e Entity) id() entityID {
	return entityID(uint32(e))
}

func (e Entity) generation() generation {
	return generation(uint32(uint64(e) >> entityIDBits))
}

// String prints the slot, plus the generation once the slot was reused.
func (e Entity) String() string {
	if e.generation() == 0 {
		return strconv.FormatUint(uint64(e.id()), 10)
	}
	return fmt.Sprintf("%d@%d", e.id(), e.generation())
}

// Valid reports whether e can name an entity at all. It says nothing about
// liveness; use IsAlive for that.
func (e Entity) Valid() bool {
	return e.id() != 0
}
