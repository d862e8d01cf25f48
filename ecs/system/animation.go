package system

import (
	"errors"
	"fmt"
	"log"

	"github.com/milk9111/skelanim/animation"
	"github.com/milk9111/skelanim/ecs"
	"github.com/milk9111/skelanim/ecs/component"
)

// DefaultAnimationTick is used when the world carries no SceneClock.
const DefaultAnimationTick = 1.0 / 60.0

var ErrNoAnimator = errors.New("animation: entity has no animator")

// ErrorHandler receives content errors. Each distinct message is delivered
// once per entity.
type ErrorHandler func(e ecs.Entity, err error)

// AnimationSystem drives every entity owning an Animator through its
// controller and writes the sampled poses to the bone transforms.
type AnimationSystem struct {
	cache     *animation.ControllerCache
	callbacks *CallbackRegistry

	defaultTick float64
	onError     ErrorHandler

	runtimes map[ecs.Entity]*animatorRuntime
	failed   map[ecs.Entity]failedLoad
	reported map[ecs.Entity]map[string]struct{}
}

type failedLoad struct {
	path string
	err  error
}

type AnimationOption func(*AnimationSystem)

// WithDefaultTick overrides the step used without a SceneClock.
func WithDefaultTick(dt float64) AnimationOption {
	return func(a *AnimationSystem) {
		a.defaultTick = dt
	}
}

func WithErrorHandler(fn ErrorHandler) AnimationOption {
	return func(a *AnimationSystem) {
		if fn != nil {
			a.onError = fn
		}
	}
}

func NewAnimationSystem(cache *animation.ControllerCache, callbacks *CallbackRegistry, opts ...AnimationOption) *AnimationSystem {
	if callbacks == nil {
		callbacks = NewCallbackRegistry()
	}
	a := &AnimationSystem{
		cache:       cache,
		callbacks:   callbacks,
		defaultTick: DefaultAnimationTick,
		onError: func(e ecs.Entity, err error) {
			log.Printf("animation: entity=%d %v", e, err)
		},
		runtimes: map[ecs.Entity]*animatorRuntime{},
		failed:   map[ecs.Entity]failedLoad{},
		reported: map[ecs.Entity]map[string]struct{}{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *AnimationSystem) Update(w *ecs.World) {
	if a == nil || w == nil {
		return
	}

	tick, paused := a.sceneTick(w)
	a.prune(w)

	for _, e := range w.Query(component.AnimatorComponent.Kind()) {
		rt, err := a.runtime(w, e)
		if err != nil {
			a.report(e, err)
			continue
		}
		if paused {
			continue
		}
		rt.update(w, e, tick)
	}
}

func (a *AnimationSystem) sceneTick(w *ecs.World) (float64, bool) {
	if e, ok := ecs.First(w, component.SceneClockComponent.Kind()); ok {
		if clock, ok := ecs.Get(w, e, component.SceneClockComponent.Kind()); ok {
			return clock.Delta, clock.Paused
		}
	}
	return a.defaultTick, false
}

// prune drops runtimes whose entity died or lost its Animator.
func (a *AnimationSystem) prune(w *ecs.World) {
	for e := range a.runtimes {
		if !ecs.IsAlive(w, e) || !ecs.Has(w, e, component.AnimatorComponent.Kind()) {
			a.Release(e)
		}
	}
	for e := range a.failed {
		if !ecs.IsAlive(w, e) {
			a.Release(e)
		}
	}
}

// runtime returns e's playback state, activating it on first use and again
// whenever the Animator points at a different controller or the cache holds a
// reloaded one.
func (a *AnimationSystem) runtime(w *ecs.World, e ecs.Entity) (*animatorRuntime, error) {
	anim, ok := ecs.Get(w, e, component.AnimatorComponent.Kind())
	if !ok {
		return nil, ErrNoAnimator
	}
	if a.cache == nil {
		return nil, errors.New("animation: no controller cache")
	}
	path := animation.NormalizePath(anim.Controller)

	if rt, ok := a.runtimes[e]; ok && rt.path == path {
		if ctrl, ok := a.cache.Get(path); !ok || ctrl == rt.controller {
			return rt, nil
		}
	}
	if f, ok := a.failed[e]; ok && f.path == path {
		return nil, f.err
	}

	ctrl, err := a.cache.Load(path)
	if err != nil {
		a.failed[e] = failedLoad{path: path, err: err}
		return nil, err
	}
	delete(a.failed, e)

	rt, err := newAnimatorRuntime(w, e, path, ctrl, anim.Parameters, a.callbacks, func(err error) { a.report(e, err) })
	if err != nil {
		a.failed[e] = failedLoad{path: path, err: err}
		return nil, err
	}
	a.runtimes[e] = rt
	return rt, nil
}

func (a *AnimationSystem) report(e ecs.Entity, err error) {
	if err == nil {
		return
	}
	seen, ok := a.reported[e]
	if !ok {
		seen = map[string]struct{}{}
		a.reported[e] = seen
	}
	msg := err.Error()
	if _, dup := seen[msg]; dup {
		return
	}
	seen[msg] = struct{}{}
	a.onError(e, err)
}

// Invalidate forgets failed loads of path so the next Update retries them.
func (a *AnimationSystem) Invalidate(path string) {
	if a == nil {
		return
	}
	path = animation.NormalizePath(path)
	for e, f := range a.failed {
		if f.path == path {
			delete(a.failed, e)
			delete(a.reported, e)
		}
	}
}

// SetParameter writes one of e's live parameters. The name must exist on the
// controller and the value must keep its kind.
func (a *AnimationSystem) SetParameter(w *ecs.World, e ecs.Entity, name string, v animation.Value) error {
	rt, err := a.runtime(w, e)
	if err != nil {
		return err
	}
	return setParameter(rt.params, name, v)
}

// SetTrigger arms a trigger parameter until a transition consumes it.
func (a *AnimationSystem) SetTrigger(w *ecs.World, e ecs.Entity, name string) error {
	return a.SetParameter(w, e, name, animation.Bool(true))
}

func (a *AnimationSystem) Parameter(e ecs.Entity, name string) (animation.Value, bool) {
	rt, ok := a.runtimes[e]
	if !ok {
		return animation.Value{}, false
	}
	v, ok := rt.params[name]
	return v, ok
}

// PlaybackInfo is a snapshot of an entity's playback.
type PlaybackInfo struct {
	Controller    string
	State         string
	StateTime     float64
	StateDuration float64
	Blending      bool
	Next          string
	NextTime      float64
	BlendProgress float64
}

func (a *AnimationSystem) Playback(e ecs.Entity) (PlaybackInfo, bool) {
	rt, ok := a.runtimes[e]
	if !ok {
		return PlaybackInfo{}, false
	}
	return rt.info(), true
}

// Release discards e's playback state. The next Update re-activates the
// entity from its entry state if it still owns an Animator.
func (a *AnimationSystem) Release(e ecs.Entity) {
	delete(a.runtimes, e)
	delete(a.failed, e)
	delete(a.reported, e)
}

func setParameter(params map[string]animation.Value, name string, v animation.Value) error {
	cur, ok := params[name]
	if !ok {
		return fmt.Errorf("%w: %q", animation.ErrUnknownParameter, name)
	}
	if cur.Kind() != v.Kind() {
		return fmt.Errorf("%w: %q is %s, got %s", animation.ErrTypeMismatch, name, cur.Kind(), v.Kind())
	}
	params[name] = v
	return nil
}
