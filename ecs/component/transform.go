package component

import "github.com/milk9111/skelanim/common"

// Transform is a node's local translation, rotation and scale relative to its
// parent. Bone transforms are written by the animation system only.
type Transform struct {
	Translation common.Vec3
	Rotation    common.Quat
	Scale       common.Vec3
}

// IdentityTransform returns a transform with unit scale and no rotation.
func IdentityTransform() Transform {
	return Transform{Rotation: common.QuatIdentity(), Scale: common.One}
}

// Matrix composes the local transform.
func (t Transform) Matrix() common.Mat4 {
	return common.Compose(t.Translation, t.Rotation, t.Scale)
}

var TransformComponent = NewComponent[Transform]()
