package component

// Children lists the direct children of a node. Entities are stored as raw
// handles to keep this package free of an ecs import.
type Children struct {
	Entities []uint64
}

// Parent points at the owning node.
type Parent struct {
	Entity uint64
}

var ChildrenComponent = NewComponent[Children]()
var ParentComponent = NewComponent[Parent]()
