package system

import (
	"github.com/milk9111/skelanim/ecs"
	"github.com/milk9111/skelanim/ecs/component"
)

// SceneClockSystem advances the world's SceneClock by a fixed Step each
// frame, creating the clock on first use.
type SceneClockSystem struct {
	Step float64
}

func NewSceneClockSystem(step float64) *SceneClockSystem {
	if step <= 0 {
		step = DefaultAnimationTick
	}
	return &SceneClockSystem{Step: step}
}

func (s *SceneClockSystem) Update(w *ecs.World) {
	if s == nil || w == nil {
		return
	}
	e, ok := ecs.First(w, component.SceneClockComponent.Kind())
	if !ok {
		e = ecs.CreateEntity(w)
		if err := ecs.Add(w, e, component.SceneClockComponent.Kind(), component.SceneClock{}); err != nil {
			return
		}
	}
	clock, ok := ecs.Get(w, e, component.SceneClockComponent.Kind())
	if !ok {
		return
	}
	if clock.Paused {
		clock.Delta = 0
		return
	}
	clock.Delta = s.Step
	clock.Elapsed += s.Step
	clock.Frame++
}

// SetPaused freezes or resumes the world's clock.
func SetPaused(w *ecs.World, paused bool) {
	e, ok := ecs.First(w, component.SceneClockComponent.Kind())
	if !ok {
		return
	}
	if clock, ok := ecs.Get(w, e, component.SceneClockComponent.Kind()); ok {
		clock.Paused = paused
	}
}
