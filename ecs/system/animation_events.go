package system

import (
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/milk9111/skelanim/animation"
	"github.com/milk9111/skelanim/ecs"
)

// EventContext is handed to animation event callbacks. World is the scene
// handle; it travels beside the event parameters, so events without
// parameters are safe to dispatch.
type EventContext struct {
	World    *ecs.World
	Entity   ecs.Entity
	State    string
	Function string

	params map[string]animation.Value
}

// Parameter reads the entity's live parameter.
func (c *EventContext) Parameter(name string) (animation.Value, bool) {
	if c == nil {
		return animation.Value{}, false
	}
	v, ok := c.params[name]
	return v, ok
}

// SetParameter writes the entity's live parameter.
func (c *EventContext) SetParameter(name string, v animation.Value) error {
	if c == nil {
		return fmt.Errorf("%w: %q", animation.ErrUnknownParameter, name)
	}
	return setParameter(c.params, name, v)
}

// EventCallback handles a timeline event.
type EventCallback func(ctx *EventContext, params []animation.Value)

// CallbackRegistry maps event function names to callbacks.
type CallbackRegistry struct {
	mu        sync.RWMutex
	callbacks map[string]EventCallback
	scripts   map[string]*eventScript
}

func NewCallbackRegistry() *CallbackRegistry {
	return &CallbackRegistry{
		callbacks: map[string]EventCallback{},
		scripts:   map[string]*eventScript{},
	}
}

// Register binds name to fn, replacing any earlier binding.
func (r *CallbackRegistry) Register(name string, fn EventCallback) {
	if r == nil || fn == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.callbacks == nil {
		r.callbacks = map[string]EventCallback{}
	}
	r.callbacks[name] = fn
	delete(r.scripts, name)
}

func (r *CallbackRegistry) Lookup(name string) (EventCallback, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.callbacks[name]
	return fn, ok
}

const eventDispatchScript = `
on_event(__entity, __state, __event, __params)
`

// RegisterScript compiles a tengo script defining
// `on_event := func(entity, state, event, params) {...}` and binds it to name.
// Registering a name again swaps the script in place, so runtimes that
// already resolved the callback pick up the new code.
func (r *CallbackRegistry) RegisterScript(name string, src []byte) error {
	if r == nil {
		return fmt.Errorf("animation event script %q: nil registry", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.scripts == nil {
		r.scripts = map[string]*eventScript{}
	}
	if r.callbacks == nil {
		r.callbacks = map[string]EventCallback{}
	}
	if prev, ok := r.scripts[name]; ok {
		return prev.compile(src)
	}
	sc := &eventScript{name: name}
	if err := sc.compile(src); err != nil {
		return err
	}
	r.scripts[name] = sc
	r.callbacks[name] = sc.call
	return nil
}

type eventScript struct {
	name     string
	compiled *tengo.Compiled
	ctx      *EventContext
}

// compile replaces the script's code. On failure the previous code stays.
func (s *eventScript) compile(src []byte) error {
	script := tengo.NewScript([]byte(string(src) + "\n" + eventDispatchScript))
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))
	_ = script.Add("__entity", 0)
	_ = script.Add("__state", "")
	_ = script.Add("__event", "")
	_ = script.Add("__params", []any{})
	for fnName, fn := range s.hostFunctions() {
		if err := script.Add(fnName, fn); err != nil {
			return fmt.Errorf("animation event script %q: add %s: %w", s.name, fnName, err)
		}
	}

	compiled, err := script.Compile()
	if err != nil {
		return fmt.Errorf("animation event script %q: %w", s.name, err)
	}
	s.compiled = compiled
	return nil
}

func (s *eventScript) call(ctx *EventContext, params []animation.Value) {
	if s.compiled == nil || ctx == nil {
		return
	}
	s.ctx = ctx
	defer func() { s.ctx = nil }()

	args := make([]any, 0, len(params))
	for _, p := range params {
		args = append(args, valueToAny(p))
	}

	set := func(name string, v any) error {
		if err := s.compiled.Set(name, v); err != nil {
			return fmt.Errorf("set %s: %w", name, err)
		}
		return nil
	}
	err := set("__entity", int64(ctx.Entity))
	if err == nil {
		err = set("__state", ctx.State)
	}
	if err == nil {
		err = set("__event", ctx.Function)
	}
	if err == nil {
		err = set("__params", args)
	}
	if err == nil {
		err = s.compiled.Run()
	}
	if err != nil {
		log.Printf("animation: entity=%d script %q error: %v", ctx.Entity, s.name, err)
	}
}

func (s *eventScript) hostFunctions() map[string]*tengo.UserFunction {
	setter := func(fnName string, convert func(tengo.Object) (animation.Value, bool)) *tengo.UserFunction {
		return &tengo.UserFunction{Name: fnName, Value: func(args ...tengo.Object) (tengo.Object, error) {
			if s.ctx == nil || len(args) < 2 {
				return tengo.FalseValue, nil
			}
			name, _ := tengo.ToString(args[0])
			v, ok := convert(args[1])
			if !ok {
				return tengo.FalseValue, nil
			}
			if err := s.ctx.SetParameter(name, v); err != nil {
				log.Printf("animation: entity=%d script %q %s: %v", s.ctx.Entity, s.name, fnName, err)
				return tengo.FalseValue, nil
			}
			return tengo.TrueValue, nil
		}}
	}
	getter := func(fnName string) *tengo.UserFunction {
		return &tengo.UserFunction{Name: fnName, Value: func(args ...tengo.Object) (tengo.Object, error) {
			if s.ctx == nil || len(args) < 1 {
				return tengo.UndefinedValue, nil
			}
			name, _ := tengo.ToString(args[0])
			v, ok := s.ctx.Parameter(name)
			if !ok {
				return tengo.UndefinedValue, nil
			}
			return tengo.FromInterface(valueToAny(v))
		}}
	}

	return map[string]*tengo.UserFunction{
		"set_int": setter("set_int", func(o tengo.Object) (animation.Value, bool) {
			n, ok := tengo.ToInt64(o)
			return animation.Int(n), ok
		}),
		"set_float": setter("set_float", func(o tengo.Object) (animation.Value, bool) {
			f, ok := tengo.ToFloat64(o)
			return animation.Float(f), ok
		}),
		"set_bool": setter("set_bool", func(o tengo.Object) (animation.Value, bool) {
			b, ok := tengo.ToBool(o)
			return animation.Bool(b), ok
		}),
		"set_string": setter("set_string", func(o tengo.Object) (animation.Value, bool) {
			str, ok := tengo.ToString(o)
			return animation.String(str), ok
		}),
		"set_trigger": {Name: "set_trigger", Value: func(args ...tengo.Object) (tengo.Object, error) {
			if s.ctx == nil || len(args) < 1 {
				return tengo.FalseValue, nil
			}
			name, _ := tengo.ToString(args[0])
			if err := s.ctx.SetParameter(name, animation.Bool(true)); err != nil {
				return tengo.FalseValue, nil
			}
			return tengo.TrueValue, nil
		}},
		"get_int":    getter("get_int"),
		"get_float":  getter("get_float"),
		"get_bool":   getter("get_bool"),
		"get_string": getter("get_string"),
		"log": {Name: "log", Value: func(args ...tengo.Object) (tengo.Object, error) {
			parts := make([]string, 0, len(args))
			for _, a := range args {
				str, _ := tengo.ToString(a)
				parts = append(parts, str)
			}
			log.Printf("animation: script %q: %s", s.name, strings.Join(parts, " "))
			return tengo.UndefinedValue, nil
		}},
	}
}

func valueToAny(v animation.Value) any {
	switch v.Kind() {
	case animation.KindInt:
		n, _ := v.AsInt()
		return n
	case animation.KindFloat:
		f, _ := v.AsFloat()
		return f
	case animation.KindBool:
		b, _ := v.AsBool()
		return b
	case animation.KindString:
		str, _ := v.AsString()
		return str
	case animation.KindEntity:
		ref, _ := v.AsEntity()
		return int64(ref)
	default:
		return nil
	}
}
