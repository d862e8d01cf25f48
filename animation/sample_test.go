package animation

import (
	"math"
	"testing"

	"github.com/milk9111/skelanim/common"
)

func linearTrack() *NodeClip {
	return &NodeClip{Bone: "hips", Keys: []Keyframe{
		{Time: 0, Translation: common.Vec3{0, 0, 0}, Rotation: common.QuatIdentity(), Scale: common.One},
		{Time: 1, Translation: common.Vec3{10, 0, 0}, Rotation: common.EulerToQuat(0, 0, math.Pi/2), Scale: common.Vec3{3, 3, 3}},
	}}
}

func TestSample(t *testing.T) {
	track := linearTrack()
	cases := []struct {
		name  string
		t     float64
		wantX float64
		wantS float64
	}{
		{"first_key", 0, 0, 1},
		{"midpoint", 0.5, 5, 2},
		{"last_key", 1, 10, 3},
		{"before_start_clamps", -1, 0, 1},
		{"after_end_clamps", 5, 10, 3},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p, ok := Sample(track, c.t)
			if !ok {
				t.Fatalf("expected a sample")
			}
			if math.Abs(p.Translation[0]-c.wantX) > 1e-9 {
				t.Fatalf("translation x = %g, want %g", p.Translation[0], c.wantX)
			}
			if math.Abs(p.Scale[1]-c.wantS) > 1e-9 {
				t.Fatalf("scale y = %g, want %g", p.Scale[1], c.wantS)
			}
		})
	}

	mid, _ := Sample(track, 0.5)
	if want := common.EulerToQuat(0, 0, math.Pi/4); !mid.Rotation.ApproxEqual(want, 1e-9) {
		t.Fatalf("rotation midpoint = %v, want %v", mid.Rotation, want)
	}
}

func TestSampleExactKeyIsUnblended(t *testing.T) {
	track := &NodeClip{Bone: "b", Keys: []Keyframe{
		{Time: 0, Translation: common.Vec3{1, 0, 0}, Rotation: common.QuatIdentity(), Scale: common.One},
		{Time: 0.5, Translation: common.Vec3{2, 0, 0}, Rotation: common.QuatIdentity(), Scale: common.One},
		{Time: 1, Translation: common.Vec3{4, 0, 0}, Rotation: common.QuatIdentity(), Scale: common.One},
	}}
	p, _ := Sample(track, 0.5)
	if p.Translation != (common.Vec3{2, 0, 0}) {
		t.Fatalf("expected the exact key value, got %v", p.Translation)
	}
}

func TestSampleEmptyTrack(t *testing.T) {
	if _, ok := Sample(&NodeClip{Bone: "b"}, 0.3); ok {
		t.Fatalf("empty track should not sample")
	}
	if _, ok := Sample(nil, 0.3); ok {
		t.Fatalf("nil track should not sample")
	}
}

func TestBlendBone(t *testing.T) {
	a := NewClip("a", 1, []NodeClip{{Bone: "hips", Keys: []Keyframe{
		{Time: 0, Translation: common.Vec3{0, 0, 0}, Rotation: common.QuatIdentity(), Scale: common.One},
	}}})
	b := NewClip("b", 1, []NodeClip{
		{Bone: "hips", Keys: []Keyframe{
			{Time: 0, Translation: common.Vec3{0, 8, 0}, Rotation: common.QuatIdentity(), Scale: common.One},
		}},
		{Bone: "head", Keys: []Keyframe{
			{Time: 0, Rotation: common.QuatIdentity(), Scale: common.One},
		}},
	})

	p, ok := BlendBone(a, 0, b, 0, "hips", 0.25)
	if !ok {
		t.Fatalf("hips is in both clips")
	}
	if !p.Translation.ApproxEqual(common.Vec3{0, 2, 0}, 1e-9) {
		t.Fatalf("blend = %v, want (0, 2, 0)", p.Translation)
	}
	if _, ok := BlendBone(a, 0, b, 0, "head", 0.5); ok {
		t.Fatalf("head is missing from a and must not blend")
	}
}

func TestNewClip(t *testing.T) {
	c := NewClip("walk", 0, []NodeClip{
		{Bone: "leg", Keys: []Keyframe{{Time: 0.8}, {Time: 0.2}}},
		{Bone: "arm", Keys: []Keyframe{{Time: 0.5}}},
		{Bone: "leg", Keys: []Keyframe{{Time: 0.9}, {Time: 0.1}}},
	})
	if c.Duration != 0.9 {
		t.Fatalf("duration should come from the latest key, got %g", c.Duration)
	}
	bones := c.Bones()
	if len(bones) != 2 || bones[0] != "leg" || bones[1] != "arm" {
		t.Fatalf("unexpected bones %v", bones)
	}
	leg, _ := c.Node("leg")
	if len(leg.Keys) != 2 || leg.Keys[0].Time != 0.1 {
		t.Fatalf("duplicate track should replace and sort, got %+v", leg.Keys)
	}
}
