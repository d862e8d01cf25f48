package system

import (
	"testing"

	"github.com/milk9111/skelanim/ecs"
	"github.com/milk9111/skelanim/ecs/component"
)

func TestSceneClockAdvances(t *testing.T) {
	w := ecs.NewWorld()
	sys := NewSceneClockSystem(0.5)
	sys.Update(w)
	sys.Update(w)

	e, ok := ecs.First(w, component.SceneClockComponent.Kind())
	if !ok {
		t.Fatalf("clock was not created")
	}
	clock, _ := ecs.Get(w, e, component.SceneClockComponent.Kind())
	if clock.Delta != 0.5 || clock.Elapsed != 1 || clock.Frame != 2 {
		t.Fatalf("unexpected clock %+v", *clock)
	}

	SetPaused(w, true)
	sys.Update(w)
	if clock.Delta != 0 || clock.Elapsed != 1 || clock.Frame != 2 {
		t.Fatalf("paused clock moved: %+v", *clock)
	}

	SetPaused(w, false)
	sys.Update(w)
	if clock.Delta != 0.5 || clock.Frame != 3 {
		t.Fatalf("resumed clock %+v", *clock)
	}
}

func TestSceneClockDefaultStep(t *testing.T) {
	if got := NewSceneClockSystem(0).Step; got != DefaultAnimationTick {
		t.Fatalf("step = %g, want %g", got, DefaultAnimationTick)
	}
}

func TestAnimationWithoutClockUsesDefaultTick(t *testing.T) {
	w := ecs.NewWorld()
	cache := newTestCache(loopController(true, 1))
	anim := NewAnimationSystem(cache, nil, WithDefaultTick(0.25))
	e := ecs.CreateEntity(w)
	_ = ecs.Add(w, e, component.AnimatorComponent.Kind(), component.Animator{Controller: "test.yaml"})

	anim.Update(w)
	info, ok := anim.Playback(e)
	if !ok || info.StateTime != 0.25 {
		t.Fatalf("expected 0.25 with no clock, got %+v", info)
	}
}
