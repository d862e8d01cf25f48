package animation

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
)

// EntryStateName is the fallback entry state when none is configured.
const EntryStateName = "Entry"

// Transition is a guarded edge to Destination.
type Transition struct {
	Destination string
	Conditions  []Condition
	// BlendTime is the cross-fade length in seconds.
	BlendTime float64
	// ExitTime gates evaluation until the normalized playhead reaches it. Zero
	// means the transition is always evaluated.
	ExitTime float64
}

// Event is a timeline callback at a normalized Time of its state's clip.
type Event struct {
	Time       float64
	Function   string
	Parameters []Value
}

// State is one playback unit of a controller.
type State struct {
	Name        string
	MotionName  string
	Motion      *Clip
	Multiplier  float64
	Loop        bool
	Events      []Event
	Transitions []Transition
}

// Duration is the length of the state's clip, or 0 without one.
func (s *State) Duration() float64 {
	if s == nil || s.Motion == nil {
		return 0
	}
	return s.Motion.Duration
}

// Controller is the authored behavior graph of one character. Once loaded it is
// shared read-only by every entity that plays it.
type Controller struct {
	Name       string
	EntryState string
	AnyState   []Transition
	Parameters map[string]Value

	states []*State
	byName map[string]int
}

func NewController(name string) *Controller {
	return &Controller{
		Name:       name,
		Parameters: map[string]Value{},
		byName:     map[string]int{},
	}
}

// AddState registers a default state under name. A duplicate name replaces the
// existing state at the same index.
func (c *Controller) AddState(name string) *State {
	if c.byName == nil {
		c.byName = map[string]int{}
	}
	s := &State{Name: name, Multiplier: 1}
	if idx, ok := c.byName[name]; ok {
		c.states[idx] = s
		return s
	}
	c.byName[name] = len(c.states)
	c.states = append(c.states, s)
	return s
}

// AddParameter stores v under name, appending " <n>" until the name is unique.
// It returns the name actually used.
func (c *Controller) AddParameter(name string, v Value) string {
	if c.Parameters == nil {
		c.Parameters = map[string]Value{}
	}
	final := name
	for n := 1; ; n++ {
		if _, taken := c.Parameters[final]; !taken {
			break
		}
		final = name + " " + strconv.Itoa(n)
	}
	c.Parameters[final] = v
	return final
}

func (c *Controller) Parameter(name string) (Value, bool) {
	v, ok := c.Parameters[name]
	return v, ok
}

// CloneParameters returns a private copy of the parameter map.
func (c *Controller) CloneParameters() map[string]Value {
	out := make(map[string]Value, len(c.Parameters))
	for k, v := range c.Parameters {
		out[k] = v
	}
	return out
}

func (c *Controller) State(name string) (*State, bool) {
	idx, ok := c.StateIndex(name)
	if !ok {
		return nil, false
	}
	return c.states[idx], true
}

func (c *Controller) StateIndex(name string) (int, bool) {
	if c == nil {
		return -1, false
	}
	idx, ok := c.byName[name]
	if !ok {
		return -1, false
	}
	return idx, true
}

func (c *Controller) StateAt(idx int) *State {
	if c == nil || idx < 0 || idx >= len(c.states) {
		return nil
	}
	return c.states[idx]
}

func (c *Controller) NumStates() int {
	if c == nil {
		return 0
	}
	return len(c.states)
}

// StateNames returns every state name in sorted order.
func (c *Controller) StateNames() []string {
	names := make([]string, 0, len(c.byName))
	for name := range c.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// EntryIndex resolves the starting state: EntryState if it exists, then a state
// named "Entry", then the first state by name. It returns -1 when the controller
// has no states.
func (c *Controller) EntryIndex() int {
	if c.NumStates() == 0 {
		return -1
	}
	if c.EntryState != "" {
		if idx, ok := c.byName[c.EntryState]; ok {
			return idx
		}
	}
	if idx, ok := c.byName[EntryStateName]; ok {
		return idx
	}
	return c.byName[c.StateNames()[0]]
}

// Validate reports every malformed reference in the controller.
func (c *Controller) Validate() error {
	var errs []error
	if c.EntryState != "" {
		if _, ok := c.byName[c.EntryState]; !ok {
			errs = append(errs, fmt.Errorf("entry %q: %w", c.EntryState, ErrUnknownState))
		}
	}
	for _, name := range c.StateNames() {
		s := c.states[c.byName[name]]
		for i, ev := range s.Events {
			if ev.Time < 0 || ev.Time > 1 {
				errs = append(errs, fmt.Errorf("state %q: event %d (%s): time %g outside [0,1]", name, i, ev.Function, ev.Time))
			}
		}
		errs = append(errs, c.validateTransitions(fmt.Sprintf("state %q", name), s.Transitions)...)
	}
	errs = append(errs, c.validateTransitions("any state", c.AnyState)...)
	return errors.Join(errs...)
}

func (c *Controller) validateTransitions(owner string, ts []Transition) []error {
	var errs []error
	for i, t := range ts {
		where := fmt.Sprintf("%s: transition %d", owner, i)
		if _, ok := c.byName[t.Destination]; !ok {
			errs = append(errs, fmt.Errorf("%s: destination %q: %w", where, t.Destination, ErrUnknownState))
		}
		if t.BlendTime < 0 {
			errs = append(errs, fmt.Errorf("%s: negative blend time %g", where, t.BlendTime))
		}
		if t.ExitTime < 0 || t.ExitTime > 1 {
			errs = append(errs, fmt.Errorf("%s: exit time %g outside [0,1]", where, t.ExitTime))
		}
		for _, cond := range t.Conditions {
			p, ok := c.Parameters[cond.Parameter]
			if !ok {
				errs = append(errs, fmt.Errorf("%s: %w %q", where, ErrUnknownParameter, cond.Parameter))
				continue
			}
			if cond.Mode == Trigger {
				if p.Kind() != KindBool {
					errs = append(errs, fmt.Errorf("%s: Trigger on %s parameter %q: %w", where, p.Kind(), cond.Parameter, ErrUnsupportedMode))
				}
				continue
			}
			if cond.Threshold.Kind() != p.Kind() {
				errs = append(errs, fmt.Errorf("%s: parameter %q is %s, threshold is %s: %w", where, cond.Parameter, p.Kind(), cond.Threshold.Kind(), ErrTypeMismatch))
				continue
			}
			if _, err := Compare(cond.Mode, cond.Threshold, p); errors.Is(err, ErrUnsupportedMode) {
				errs = append(errs, fmt.Errorf("%s: parameter %q: %w", where, cond.Parameter, err))
			}
		}
	}
	return errs
}
