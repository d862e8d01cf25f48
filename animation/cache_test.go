package animation

import (
	"errors"
	"testing"
)

type fakeClips map[string]*Clip

func (f fakeClips) ResolveClip(name string) (*Clip, bool) {
	c, ok := f[name]
	return c, ok
}

func TestNormalizePath(t *testing.T) {
	cases := []struct{ in, want string }{
		{"humanoid.controller.yaml", "humanoid.controller.yaml"},
		{"./humanoid.controller.yaml", "humanoid.controller.yaml"},
		{`chars\humanoid.controller.yaml`, "chars/humanoid.controller.yaml"},
		{"chars/../humanoid.controller.yaml", "humanoid.controller.yaml"},
		{"", ""},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			if got := NormalizePath(c.in); got != c.want {
				t.Fatalf("NormalizePath(%q) = %q, want %q", c.in, got, c.want)
			}
		})
	}
}

func TestControllerCache(t *testing.T) {
	decodes := 0
	decode := func(p string) (*Controller, error) {
		if p == "broken.yaml" {
			return nil, errors.New("boom")
		}
		decodes++
		c := NewController(p)
		s := c.AddState("Idle")
		s.MotionName = "idle"
		m := c.AddState("Missing")
		m.MotionName = "nope"
		return c, nil
	}
	idle := NewClip("idle", 1, nil)
	cache := NewControllerCache(decode, fakeClips{"idle": idle})

	if _, ok := cache.Get("a.yaml"); ok {
		t.Fatalf("Get must not load")
	}

	first, err := cache.Load("a.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	again, err := cache.Load(`.\a.yaml`)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if first != again || decodes != 1 {
		t.Fatalf("expected one shared instance, decodes=%d", decodes)
	}

	s, _ := first.State("Idle")
	if s.Motion != idle {
		t.Fatalf("motion should resolve through the clip resolver")
	}
	m, _ := first.State("Missing")
	if m.Motion != nil {
		t.Fatalf("missing clip should stay nil")
	}

	reloaded, err := cache.Reload("a.yaml")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded == first || decodes != 2 {
		t.Fatalf("reload should decode a new instance")
	}
	if got, _ := cache.Get("a.yaml"); got != reloaded {
		t.Fatalf("cache should hand out the reloaded instance")
	}
	if first.NumStates() != 2 {
		t.Fatalf("old instance must stay intact")
	}

	if _, err := cache.Load("broken.yaml"); err == nil {
		t.Fatalf("expected decode error")
	}
	if _, ok := cache.Get("broken.yaml"); ok {
		t.Fatalf("failed loads must not be cached")
	}
	if paths := cache.Paths(); len(paths) != 1 || paths[0] != "a.yaml" {
		t.Fatalf("unexpected paths %v", paths)
	}
}
