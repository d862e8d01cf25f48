package component

// Bone names a skeleton node so motion tracks can target it.
type Bone struct {
	Name string
}

var BoneComponent = NewComponent[Bone]()
