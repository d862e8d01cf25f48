package animation

import (
	"sort"

	"github.com/milk9111/skelanim/common"
)

// Keyframe is one sample of a bone's local transform.
type Keyframe struct {
	Time        float64
	Translation common.Vec3
	Rotation    common.Quat
	Scale       common.Vec3
}

// NodeClip is the keyframe track of a single bone, ordered by time.
type NodeClip struct {
	Bone string
	Keys []Keyframe
}

// Clip is a read-only motion shared by every state that references it.
type Clip struct {
	Name     string
	Duration float64

	nodes  []NodeClip
	byBone map[string]int
}

// NewClip sorts every track by time and indexes tracks by bone name. When
// duration is not positive it is taken from the latest key.
func NewClip(name string, duration float64, nodes []NodeClip) *Clip {
	c := &Clip{
		Name:   name,
		nodes:  make([]NodeClip, 0, len(nodes)),
		byBone: make(map[string]int, len(nodes)),
	}

	last := 0.0
	for _, n := range nodes {
		keys := append([]Keyframe(nil), n.Keys...)
		sort.SliceStable(keys, func(i, j int) bool { return keys[i].Time < keys[j].Time })
		if len(keys) > 0 && keys[len(keys)-1].Time > last {
			last = keys[len(keys)-1].Time
		}
		if idx, ok := c.byBone[n.Bone]; ok {
			c.nodes[idx] = NodeClip{Bone: n.Bone, Keys: keys}
			continue
		}
		c.byBone[n.Bone] = len(c.nodes)
		c.nodes = append(c.nodes, NodeClip{Bone: n.Bone, Keys: keys})
	}

	if duration <= 0 {
		duration = last
	}
	c.Duration = duration
	return c
}

// Node returns the track for bone.
func (c *Clip) Node(bone string) (*NodeClip, bool) {
	if c == nil {
		return nil, false
	}
	idx, ok := c.byBone[bone]
	if !ok {
		return nil, false
	}
	return &c.nodes[idx], true
}

// Bones lists the animated bones in track order.
func (c *Clip) Bones() []string {
	if c == nil {
		return nil
	}
	out := make([]string, 0, len(c.nodes))
	for _, n := range c.nodes {
		out = append(out, n.Bone)
	}
	return out
}
