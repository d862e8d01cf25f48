package system

import (
	"errors"
	"fmt"
	"sort"

	"github.com/milk9111/skelanim/animation"
	"github.com/milk9111/skelanim/common"
	"github.com/milk9111/skelanim/ecs"
	"github.com/milk9111/skelanim/ecs/component"
)

// blendEpsilon absorbs float drift in accumulated blend time.
const blendEpsilon = 1e-9

// anyStateOwner marks transitions from the controller's any-state list.
const anyStateOwner = -1

// AnimationEventType tags AnimationEvent payloads on the world event queue.
const AnimationEventType = "animation.event"

// AnimationEvent records a fired timeline event for other systems to observe
// during the same frame.
type AnimationEvent struct {
	Entity     ecs.Entity
	State      string
	Function   string
	Parameters []animation.Value
}

type boneTrack struct {
	bone   string
	entity ecs.Entity
	node   *animation.NodeClip
}

type boundEvent struct {
	event     *animation.Event
	callback  EventCallback
	processed bool
}

type transitionRef struct {
	owner int
	index int
}

// animatorRuntime is one entity's mutable playback state. States are
// addressed by their index in the shared controller.
type animatorRuntime struct {
	path       string
	controller *animation.Controller
	params     map[string]animation.Value
	report     func(error)

	current         int
	currentTime     float64
	currentDuration float64

	next         int
	nextTime     float64
	nextDuration float64
	blendElapsed float64
	active       transitionRef

	bones  map[string]ecs.Entity
	tracks [][]boneTrack
	// trackOf indexes each state's tracks by bone name.
	trackOf []map[string]int
	events  [][]boundEvent
}

func newAnimatorRuntime(
	w *ecs.World,
	root ecs.Entity,
	path string,
	ctrl *animation.Controller,
	seed map[string]animation.Value,
	callbacks *CallbackRegistry,
	report func(error),
) (*animatorRuntime, error) {
	if ctrl == nil {
		return nil, errNoController
	}
	entry := ctrl.EntryIndex()
	if entry < 0 {
		return nil, fmt.Errorf("animation: controller %q has no states", path)
	}

	rt := &animatorRuntime{
		path:       path,
		controller: ctrl,
		params:     ctrl.CloneParameters(),
		report:     report,
		next:       -1,
		bones:      mapBones(w, root),
	}

	for _, name := range sortedKeys(seed) {
		if err := setParameter(rt.params, name, seed[name]); err != nil {
			report(fmt.Errorf("animator parameter: %w", err))
		}
	}

	n := ctrl.NumStates()
	rt.tracks = make([][]boneTrack, n)
	rt.trackOf = make([]map[string]int, n)
	rt.events = make([][]boundEvent, n)
	for i := 0; i < n; i++ {
		st := ctrl.StateAt(i)
		rt.tracks[i] = rt.bindTracks(st)
		rt.trackOf[i] = make(map[string]int, len(rt.tracks[i]))
		for j, tr := range rt.tracks[i] {
			rt.trackOf[i][tr.bone] = j
		}
		rt.events[i] = rt.bindEvents(st, callbacks)
	}

	rt.enter(entry)
	return rt, nil
}

// mapBones walks the hierarchy below root and indexes every named bone. The
// first bone found for a name wins.
func mapBones(w *ecs.World, root ecs.Entity) map[string]ecs.Entity {
	bones := map[string]ecs.Entity{}
	visited := map[ecs.Entity]bool{}
	var walk func(e ecs.Entity)
	walk = func(e ecs.Entity) {
		if visited[e] || !ecs.IsAlive(w, e) {
			return
		}
		visited[e] = true
		if bone, ok := ecs.Get(w, e, component.BoneComponent.Kind()); ok && bone.Name != "" {
			if _, dup := bones[bone.Name]; !dup {
				bones[bone.Name] = e
			}
		}
		children, ok := ecs.Get(w, e, component.ChildrenComponent.Kind())
		if !ok {
			return
		}
		for _, c := range children.Entities {
			walk(ecs.Entity(c))
		}
	}
	walk(root)
	return bones
}

func (rt *animatorRuntime) bindTracks(st *animation.State) []boneTrack {
	if st == nil || st.Motion == nil {
		return nil
	}
	names := st.Motion.Bones()
	tracks := make([]boneTrack, 0, len(names))
	for _, name := range names {
		e, ok := rt.bones[name]
		if !ok {
			continue
		}
		node, _ := st.Motion.Node(name)
		tracks = append(tracks, boneTrack{bone: name, entity: e, node: node})
	}
	return tracks
}

func (rt *animatorRuntime) bindEvents(st *animation.State, callbacks *CallbackRegistry) []boundEvent {
	if st == nil || len(st.Events) == 0 {
		return nil
	}
	bound := make([]boundEvent, len(st.Events))
	for i := range st.Events {
		ev := &st.Events[i]
		fn, ok := callbacks.Lookup(ev.Function)
		if !ok {
			rt.report(fmt.Errorf("state %q: no callback registered for event %q", st.Name, ev.Function))
		}
		bound[i] = boundEvent{event: ev, callback: fn}
	}
	return bound
}

func (rt *animatorRuntime) enter(idx int) {
	rt.current = idx
	rt.currentTime = 0
	rt.currentDuration = rt.controller.StateAt(idx).Duration()
	rt.next = -1
	rt.resetEvents(idx)
}

func (rt *animatorRuntime) resetEvents(idx int) {
	for i := range rt.events[idx] {
		rt.events[idx][i].processed = false
	}
}

// rearmPending clears the flags of events still ahead of t. Events the
// playhead already crossed keep their flag, so an event fired during a blend
// does not fire again once the blend commits.
func (rt *animatorRuntime) rearmPending(idx int, t, duration float64) {
	for i := range rt.events[idx] {
		ev := &rt.events[idx][i]
		if t < ev.event.Time*duration {
			ev.processed = false
		}
	}
}

// update advances playback by tick seconds.
func (rt *animatorRuntime) update(w *ecs.World, e ecs.Entity, tick float64) {
	cur := rt.controller.StateAt(rt.current)
	rt.currentTime += tick * cur.Multiplier
	rt.fireEvents(w, e, rt.current, rt.currentTime, rt.currentDuration)
	rt.currentTime = rt.wrapOrClamp(rt.current, rt.currentTime, rt.currentDuration)

	// A running cross-fade is never interrupted.
	if rt.next < 0 {
		if !rt.scan(rt.current, cur.Transitions) {
			rt.scan(anyStateOwner, rt.controller.AnyState)
		}
	}

	if rt.next >= 0 {
		rt.blend(w, e, tick)
		return
	}
	for _, tr := range rt.tracks[rt.current] {
		if pose, ok := animation.Sample(tr.node, rt.currentTime); ok {
			writePose(w, tr.entity, pose)
		}
	}
}

func (rt *animatorRuntime) fireEvents(w *ecs.World, e ecs.Entity, idx int, t, duration float64) {
	events := rt.events[idx]
	if len(events) == 0 {
		return
	}
	state := rt.controller.StateAt(idx)
	for i := range events {
		ev := &events[i]
		if ev.processed || t < ev.event.Time*duration {
			continue
		}
		ev.processed = true
		w.Events().Push(ecs.Event{Type: AnimationEventType, Data: AnimationEvent{
			Entity:     e,
			State:      state.Name,
			Function:   ev.event.Function,
			Parameters: ev.event.Parameters,
		}})
		if ev.callback == nil {
			continue
		}
		ctx := &EventContext{
			World:    w,
			Entity:   e,
			State:    state.Name,
			Function: ev.event.Function,
			params:   rt.params,
		}
		ev.callback(ctx, ev.event.Parameters)
	}
}

// wrapOrClamp keeps a playhead inside [0, duration]. Looping states wrap and
// re-arm their events.
func (rt *animatorRuntime) wrapOrClamp(idx int, t, duration float64) float64 {
	if duration <= 0 {
		return 0
	}
	if rt.controller.StateAt(idx).Loop {
		if t >= duration || t < 0 {
			rt.resetEvents(idx)
			return common.Wrap(t, duration)
		}
		return t
	}
	return common.Clamp(t, 0, duration)
}

func (rt *animatorRuntime) normalizedTime() float64 {
	if rt.currentDuration <= 0 {
		return 1
	}
	return rt.currentTime / rt.currentDuration
}

// scan fires the first passing transition of ts. Conditions are evaluated in
// order, so a trigger is consumed even when a later condition fails.
func (rt *animatorRuntime) scan(owner int, ts []animation.Transition) bool {
	for i := range ts {
		tr := &ts[i]
		if tr.ExitTime > 0 && rt.normalizedTime() < tr.ExitTime {
			continue
		}
		pass, err := animation.EvaluateConditions(tr.Conditions, rt.params)
		if err != nil {
			rt.report(fmt.Errorf("transition %s -> %s: %w", rt.ownerName(owner), tr.Destination, err))
			continue
		}
		if !pass {
			continue
		}
		dest, ok := rt.controller.StateIndex(tr.Destination)
		if !ok {
			rt.report(fmt.Errorf("transition %s -> %s: %w", rt.ownerName(owner), tr.Destination, animation.ErrUnknownState))
			continue
		}
		if dest == rt.current {
			continue
		}

		rt.next = dest
		rt.nextTime = 0
		rt.nextDuration = rt.controller.StateAt(dest).Duration()
		rt.blendElapsed = 0
		rt.active = transitionRef{owner: owner, index: i}
		rt.resetEvents(dest)
		return true
	}
	return false
}

func (rt *animatorRuntime) ownerName(owner int) string {
	if owner == anyStateOwner {
		return "AnyState"
	}
	return rt.controller.StateAt(owner).Name
}

func (rt *animatorRuntime) activeTransition() *animation.Transition {
	if rt.active.owner == anyStateOwner {
		return &rt.controller.AnyState[rt.active.index]
	}
	return &rt.controller.StateAt(rt.active.owner).Transitions[rt.active.index]
}

// blend advances the incoming state and cross-fades the bones both states
// animate. The transition commits on the tick the blend completes.
func (rt *animatorRuntime) blend(w *ecs.World, e ecs.Entity, tick float64) {
	next := rt.controller.StateAt(rt.next)
	rt.nextTime += tick * next.Multiplier
	rt.fireEvents(w, e, rt.next, rt.nextTime, rt.nextDuration)
	rt.nextTime = rt.wrapOrClamp(rt.next, rt.nextTime, rt.nextDuration)

	rt.blendElapsed += tick
	tr := rt.activeTransition()
	factor := 1.0
	if tr.BlendTime > 0 {
		factor = common.Clamp(rt.blendElapsed/tr.BlendTime, 0, 1)
	}

	nextTracks := rt.tracks[rt.next]
	for _, ct := range rt.tracks[rt.current] {
		j, ok := rt.trackOf[rt.next][ct.bone]
		if !ok {
			continue
		}
		a, okA := animation.Sample(ct.node, rt.currentTime)
		b, okB := animation.Sample(nextTracks[j].node, rt.nextTime)
		if !okA || !okB {
			continue
		}
		writePose(w, ct.entity, animation.BlendPose(a, b, factor))
	}

	if tr.BlendTime <= 0 || rt.blendElapsed >= tr.BlendTime-blendEpsilon {
		rt.current = rt.next
		rt.currentTime = rt.nextTime
		rt.currentDuration = rt.nextDuration
		rt.next = -1
		rt.blendElapsed = 0
		rt.rearmPending(rt.current, rt.currentTime, rt.currentDuration)
	}
}

func (rt *animatorRuntime) info() PlaybackInfo {
	info := PlaybackInfo{
		Controller:    rt.path,
		State:         rt.controller.StateAt(rt.current).Name,
		StateTime:     rt.currentTime,
		StateDuration: rt.currentDuration,
	}
	if rt.next >= 0 {
		info.Blending = true
		info.Next = rt.controller.StateAt(rt.next).Name
		info.NextTime = rt.nextTime
		if bt := rt.activeTransition().BlendTime; bt > 0 {
			info.BlendProgress = common.Clamp(rt.blendElapsed/bt, 0, 1)
		} else {
			info.BlendProgress = 1
		}
	}
	return info
}

func writePose(w *ecs.World, e ecs.Entity, pose animation.Pose) {
	t, ok := ecs.Get(w, e, component.TransformComponent.Kind())
	if !ok {
		if err := ecs.Add(w, e, component.TransformComponent.Kind(), component.IdentityTransform()); err != nil {
			return
		}
		t, ok = ecs.Get(w, e, component.TransformComponent.Kind())
		if !ok {
			return
		}
	}
	t.Translation = pose.Translation
	t.Rotation = pose.Rotation
	t.Scale = pose.Scale
	ecs.MarkChanged(w, e, component.TransformComponent.Kind())
}

var errNoController = errors.New("animation: controller is nil")

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
