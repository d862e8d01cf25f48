package component

import "github.com/milk9111/skelanim/animation"

// Animator plays a controller on the entity's bone hierarchy.
type Animator struct {
	// Controller is the prefab path of the controller asset.
	Controller string
	// Parameters seed the entity's private parameter copy on activation.
	Parameters map[string]animation.Value
}

var AnimatorComponent = NewComponent[Animator]()
