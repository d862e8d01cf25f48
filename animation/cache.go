package animation

import (
	"fmt"
	"log"
	"path"
	"sort"
	"strings"
	"sync"
)

// DecodeFunc reads the persisted controller stored at a normalized path.
type DecodeFunc func(path string) (*Controller, error)

// ClipResolver looks up motion clips by name.
type ClipResolver interface {
	ResolveClip(name string) (*Clip, bool)
}

// ControllerCache loads each controller path once and hands out the same
// instance to every caller until the path is reloaded.
type ControllerCache struct {
	decode DecodeFunc
	clips  ClipResolver

	mu          sync.RWMutex
	controllers map[string]*Controller
}

func NewControllerCache(decode DecodeFunc, clips ClipResolver) *ControllerCache {
	return &ControllerCache{
		decode:      decode,
		clips:       clips,
		controllers: map[string]*Controller{},
	}
}

// NormalizePath converts separators to '/', cleans the path and drops any
// leading "./".
func NormalizePath(p string) string {
	if p == "" {
		return ""
	}
	s := path.Clean(strings.ReplaceAll(p, "\\", "/"))
	return strings.TrimPrefix(s, "./")
}

// Load returns the cached controller for p, decoding it on first use.
func (c *ControllerCache) Load(p string) (*Controller, error) {
	if c == nil {
		return nil, fmt.Errorf("animation: load %q: nil cache", p)
	}
	key := NormalizePath(p)

	c.mu.RLock()
	ctrl, ok := c.controllers[key]
	c.mu.RUnlock()
	if ok {
		return ctrl, nil
	}

	ctrl, err := c.read(key)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.controllers[key]; ok {
		return existing, nil
	}
	c.controllers[key] = ctrl
	return ctrl, nil
}

// Get returns a cached controller without loading it.
func (c *ControllerCache) Get(p string) (*Controller, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	ctrl, ok := c.controllers[NormalizePath(p)]
	return ctrl, ok
}

// Reload decodes p again and replaces the cached instance. Holders of the
// previous instance keep a valid, unchanged controller.
func (c *ControllerCache) Reload(p string) (*Controller, error) {
	if c == nil {
		return nil, fmt.Errorf("animation: reload %q: nil cache", p)
	}
	key := NormalizePath(p)
	ctrl, err := c.read(key)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.controllers[key] = ctrl
	c.mu.Unlock()
	return ctrl, nil
}

// Paths lists the cached keys in sorted order.
func (c *ControllerCache) Paths() []string {
	if c == nil {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.controllers))
	for k := range c.controllers {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (c *ControllerCache) read(key string) (*Controller, error) {
	if c.decode == nil {
		return nil, fmt.Errorf("animation: load %q: no decoder", key)
	}
	ctrl, err := c.decode(key)
	if err != nil {
		return nil, fmt.Errorf("animation: load %q: %w", key, err)
	}
	if ctrl == nil {
		return nil, fmt.Errorf("animation: load %q: decoder returned no controller", key)
	}

	c.resolveMotions(key, ctrl)
	if err := ctrl.Validate(); err != nil {
		log.Printf("animation: controller %q: %v", key, err)
	}
	return ctrl, nil
}

func (c *ControllerCache) resolveMotions(key string, ctrl *Controller) {
	if c.clips == nil {
		return
	}
	for i := 0; i < ctrl.NumStates(); i++ {
		s := ctrl.StateAt(i)
		if s.MotionName == "" {
			continue
		}
		clip, ok := c.clips.ResolveClip(s.MotionName)
		if !ok {
			log.Printf("animation: controller %q: state %q: motion %q not found", key, s.Name, s.MotionName)
			continue
		}
		s.Motion = clip
	}
}
