package system

import (
	"log"
	"path"
	"strings"

	"github.com/milk9111/skelanim/animation"
	"github.com/milk9111/skelanim/ecs"
	"github.com/milk9111/skelanim/prefabs"
)

// ControllerReloadSystem applies file changes reported by a prefabs.Watcher on
// the update thread. Edited controllers are decoded again, edited clips are
// dropped from the library and every cached controller re-resolves its motions,
// and edited scripts are recompiled for the callback names bound to them.
type ControllerReloadSystem struct {
	Changes   <-chan string
	Cache     *animation.ControllerCache
	Clips     *prefabs.ClipLibrary
	Animation *AnimationSystem
	Callbacks *CallbackRegistry
	// Scripts maps callback names to script files under scripts/.
	Scripts map[string]string
}

func (s *ControllerReloadSystem) Update(w *ecs.World) {
	if s == nil || s.Changes == nil {
		return
	}
	for {
		select {
		case name, ok := <-s.Changes:
			if !ok {
				s.Changes = nil
				return
			}
			s.Apply(name)
		default:
			return
		}
	}
}

// Apply reloads whatever depends on the prefab-relative file name.
func (s *ControllerReloadSystem) Apply(name string) {
	name = animation.NormalizePath(name)
	switch {
	case strings.HasPrefix(name, "scripts/"):
		s.reloadScript(name)
	case prefabs.IsClipPath(name):
		s.reloadClip(name)
	default:
		s.reloadController(name)
	}
}

func (s *ControllerReloadSystem) reloadController(name string) {
	if s.Cache == nil {
		return
	}
	if _, ok := s.Cache.Get(name); !ok {
		if s.Animation != nil {
			s.Animation.Invalidate(name)
		}
		return
	}
	if _, err := s.Cache.Reload(name); err != nil {
		// the previous controller keeps playing until the file is readable again
		log.Printf("animation: reload %s: %v", name, err)
		if s.Animation != nil {
			s.Animation.Invalidate(name)
		}
		return
	}
	log.Printf("animation: reloaded %s", name)
}

func (s *ControllerReloadSystem) reloadClip(name string) {
	clip := strings.TrimSuffix(path.Base(name), path.Ext(name))
	s.Clips.Forget(clip)
	if s.Cache == nil {
		return
	}
	for _, p := range s.Cache.Paths() {
		if _, err := s.Cache.Reload(p); err != nil {
			log.Printf("animation: reload %s after clip %s: %v", p, clip, err)
		}
	}
}

func (s *ControllerReloadSystem) reloadScript(name string) {
	if s.Callbacks == nil {
		return
	}
	for _, callback := range sortedKeys(s.Scripts) {
		file := s.Scripts[callback]
		if animation.NormalizePath("scripts/"+strings.TrimPrefix(file, "scripts/")) != name {
			continue
		}
		src, err := prefabs.LoadScript(file)
		if err != nil {
			log.Printf("animation: reload script %s: %v", file, err)
			continue
		}
		if err := s.Callbacks.RegisterScript(callback, src); err != nil {
			log.Printf("animation: reload script %s: %v", file, err)
		}
	}
}
