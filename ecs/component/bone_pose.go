package component

import "github.com/milk9111/skelanim/common"

// BonePose caches a bone's model-space matrix.
type BonePose struct {
	World common.Mat4
}

var BonePoseComponent = NewComponent[BonePose]()
