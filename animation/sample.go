package animation

import "github.com/milk9111/skelanim/common"

// Pose is a bone's local translation, rotation and scale.
type Pose struct {
	Translation common.Vec3
	Rotation    common.Quat
	Scale       common.Vec3
}

func IdentityPose() Pose {
	return Pose{Rotation: common.QuatIdentity(), Scale: common.One}
}

func keyPose(k Keyframe) Pose {
	return Pose{Translation: k.Translation, Rotation: k.Rotation, Scale: k.Scale}
}

// Sample evaluates track at time t. Times outside the keyed range clamp to the
// boundary key. It reports false for an empty track.
func Sample(track *NodeClip, t float64) (Pose, bool) {
	if track == nil || len(track.Keys) == 0 {
		return IdentityPose(), false
	}
	keys := track.Keys

	if t <= keys[0].Time {
		return keyPose(keys[0]), true
	}
	last := keys[len(keys)-1]
	if t >= last.Time {
		return keyPose(last), true
	}

	for i := 0; i < len(keys)-1; i++ {
		a, b := keys[i], keys[i+1]
		if t < a.Time || t >= b.Time {
			continue
		}
		span := b.Time - a.Time
		if t == a.Time || span <= 0 {
			return keyPose(a), true
		}
		f := (t - a.Time) / span
		return Pose{
			Translation: common.LerpVec3(a.Translation, b.Translation, f),
			Rotation:    common.Slerp(a.Rotation, b.Rotation, f),
			Scale:       common.LerpVec3(a.Scale, b.Scale, f),
		}, true
	}

	return keyPose(last), true
}

// BlendPose mixes a towards b by f and renormalizes the rotation.
func BlendPose(a, b Pose, f float64) Pose {
	return Pose{
		Translation: common.LerpVec3(a.Translation, b.Translation, f),
		Rotation:    common.Slerp(a.Rotation, b.Rotation, f).Normalize(),
		Scale:       common.LerpVec3(a.Scale, b.Scale, f),
	}
}

// BlendBone samples bone in both clips at their own times and blends the two
// poses. It reports false when either clip has no track for bone.
func BlendBone(clipA *Clip, tA float64, clipB *Clip, tB float64, bone string, f float64) (Pose, bool) {
	na, ok := clipA.Node(bone)
	if !ok {
		return IdentityPose(), false
	}
	nb, ok := clipB.Node(bone)
	if !ok {
		return IdentityPose(), false
	}
	pa, _ := Sample(na, tA)
	pb, _ := Sample(nb, tB)
	return BlendPose(pa, pb, f), true
}
