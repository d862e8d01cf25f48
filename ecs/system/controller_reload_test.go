package system

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/milk9111/skelanim/animation"
	"github.com/milk9111/skelanim/ecs"
	"github.com/milk9111/skelanim/ecs/component"
	"github.com/milk9111/skelanim/prefabs"
)

const humanoidController = "humanoid.controller.yaml"

func newReloadSystem(t *testing.T) *ControllerReloadSystem {
	t.Helper()
	clips := prefabs.NewClipLibrary("clips")
	cache := animation.NewControllerCache(prefabs.DecodeController, clips)
	if _, err := cache.Load(humanoidController); err != nil {
		t.Fatalf("load: %v", err)
	}
	return &ControllerReloadSystem{
		Cache:     cache,
		Clips:     clips,
		Animation: NewAnimationSystem(cache, nil),
		Callbacks: NewCallbackRegistry(),
		Scripts:   map[string]string{"footstep": "footstep.tengo"},
	}
}

func TestReloadController(t *testing.T) {
	s := newReloadSystem(t)
	before, _ := s.Cache.Get(humanoidController)

	s.Apply("./" + humanoidController)
	after, ok := s.Cache.Get(humanoidController)
	if !ok || after == before {
		t.Fatalf("expected a fresh controller after reload")
	}
}

func TestReloadClipRefreshesControllers(t *testing.T) {
	s := newReloadSystem(t)
	ctrl, _ := s.Cache.Get(humanoidController)
	walk, _ := ctrl.State("Walk")
	if walk.Motion == nil {
		t.Fatalf("walk clip was not resolved")
	}

	s.Apply("clips/walk.yaml")
	ctrl, _ = s.Cache.Get(humanoidController)
	reloaded, _ := ctrl.State("Walk")
	if reloaded.Motion == nil || reloaded.Motion == walk.Motion {
		t.Fatalf("expected the walk clip to be read again")
	}
}

func TestReloadScriptRebindsCallbacks(t *testing.T) {
	s := newReloadSystem(t)
	if err := s.Callbacks.RegisterScript("footstep", []byte(`on_event := func(e, s, ev, p) {}`)); err != nil {
		t.Fatalf("register: %v", err)
	}

	s.Apply("scripts/footstep.tengo")

	fn, ok := s.Callbacks.Lookup("footstep")
	if !ok {
		t.Fatalf("footstep callback missing")
	}
	ctx := &EventContext{params: map[string]animation.Value{"Steps": animation.Int(0)}}
	fn(ctx, []animation.Value{animation.String("left")})
	if v, _ := ctx.Parameter("Steps"); v != animation.Int(1) {
		t.Fatalf("reloaded script should count steps, got %v", v)
	}
}

func TestReloadRetriesFailedControllers(t *testing.T) {
	var reports int
	cache := animation.NewControllerCache(prefabs.DecodeController, nil)
	anim := NewAnimationSystem(cache, nil, WithErrorHandler(func(ecs.Entity, error) { reports++ }))
	s := &ControllerReloadSystem{Cache: cache, Animation: anim}

	w := ecs.NewWorld()
	e := ecs.CreateEntity(w)
	_ = ecs.Add(w, e, component.AnimatorComponent.Kind(), component.Animator{Controller: "missing.controller.yaml"})

	anim.Update(w)
	anim.Update(w)
	if reports != 1 {
		t.Fatalf("failed load should be reported once, got %d", reports)
	}

	s.Apply("missing.controller.yaml")
	anim.Update(w)
	if reports != 2 {
		t.Fatalf("load should be retried after a change, got %d reports", reports)
	}
}

func TestReloadDrainsChanges(t *testing.T) {
	s := newReloadSystem(t)
	before, _ := s.Cache.Get(humanoidController)

	ch := make(chan string, 2)
	ch <- humanoidController
	close(ch)
	s.Changes = ch

	s.Update(nil)
	after, _ := s.Cache.Get(humanoidController)
	if after == before {
		t.Fatalf("queued change was not applied")
	}
	if s.Changes != nil {
		t.Fatalf("closed channel should be dropped")
	}
}

func TestReloadRemovedControllerKeepsPlaying(t *testing.T) {
	dir := t.TempDir()
	prev := prefabs.DiskRoot
	prefabs.DiskRoot = dir
	t.Cleanup(func() { prefabs.DiskRoot = prev })

	file := filepath.Join(dir, "scratch.controller.yaml")
	data := []byte("animatorName: scratch\nstateMap:\n  Idle:\n    isLoop: true\n")
	if err := os.WriteFile(file, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	var reports int
	cache := animation.NewControllerCache(prefabs.DecodeController, nil)
	anim := NewAnimationSystem(cache, nil, WithErrorHandler(func(ecs.Entity, error) { reports++ }))
	s := &ControllerReloadSystem{Cache: cache, Animation: anim}

	w := ecs.NewWorld()
	e := ecs.CreateEntity(w)
	_ = ecs.Add(w, e, component.AnimatorComponent.Kind(), component.Animator{Controller: "scratch.controller.yaml"})
	anim.Update(w)
	before, ok := cache.Get("scratch.controller.yaml")
	if !ok {
		t.Fatalf("controller was not loaded")
	}

	if err := os.Remove(file); err != nil {
		t.Fatalf("remove: %v", err)
	}
	s.Apply("scratch.controller.yaml")
	anim.Update(w)

	if after, _ := cache.Get("scratch.controller.yaml"); after != before {
		t.Fatalf("failed reload should keep the previous controller")
	}
	if info, ok := anim.Playback(e); !ok || info.State != "Idle" {
		t.Fatalf("entity should keep playing, got %+v", info)
	}
	if reports != 0 {
		t.Fatalf("unexpected reports: %d", reports)
	}
}
