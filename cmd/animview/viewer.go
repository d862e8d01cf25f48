package main

import (
	"fmt"
	"image/color"
	"log"
	"strings"

	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	ebtext "github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/skelanim/animation"
	"github.com/milk9111/skelanim/ecs"
	"github.com/milk9111/skelanim/ecs/component"
	"github.com/milk9111/skelanim/ecs/entity"
	"github.com/milk9111/skelanim/ecs/system"
	"github.com/milk9111/skelanim/prefabs"
	"golang.org/x/image/colornames"
	"golang.org/x/image/font/basicfont"
)

const (
	speedStep = 0.25
	maxSpeed  = 3.0
	maxEvents = 6
)

type viewer struct {
	cfg config

	world     *ecs.World
	character ecs.Entity
	anim      *system.AnimationSystem
	watcher   *prefabs.Watcher

	face   ebtext.Face
	ui     *ebitenui.UI
	paused bool
	events []string
}

func newViewer(cfg config) (*viewer, error) {
	clips := prefabs.NewClipLibrary("clips")
	cache := animation.NewControllerCache(prefabs.DecodeController, clips)

	callbacks := system.NewCallbackRegistry()
	for name, file := range cfg.Scripts {
		src, err := prefabs.LoadScript(file)
		if err != nil {
			return nil, fmt.Errorf("load script %s: %w", file, err)
		}
		if err := callbacks.RegisterScript(name, src); err != nil {
			return nil, err
		}
	}
	callbacks.Register("jump_start", func(ctx *system.EventContext, _ []animation.Value) {
		log.Printf("animview: entity=%d jump started in %s", ctx.Entity, ctx.State)
	})

	v := &viewer{
		cfg:   cfg,
		world: ecs.NewWorld(),
		face:  ebtext.NewGoXFace(basicfont.Face7x13),
	}
	v.anim = system.NewAnimationSystem(cache, callbacks)

	if cfg.Watch {
		w, err := prefabs.NewWatcher()
		if err != nil {
			log.Printf("animview: watcher disabled: %v", err)
		} else {
			v.watcher = w
			go func() {
				for err := range w.Errors {
					log.Printf("animview: watch: %v", err)
				}
			}()
		}
	}

	reload := &system.ControllerReloadSystem{
		Cache:     cache,
		Clips:     clips,
		Animation: v.anim,
		Callbacks: callbacks,
		Scripts:   cfg.Scripts,
	}
	if v.watcher != nil {
		reload.Changes = v.watcher.Events
	}

	v.world.AddSystem(system.NewSceneClockSystem(1 / float64(ebiten.TPS())))
	v.world.AddSystem(reload)
	v.world.AddSystem(v.anim)
	v.world.AddSystem(system.NewSkeletonPoseSystem())
	v.world.AddSystem(ecs.SystemFunc(v.collectEvents))

	e, err := entity.BuildEntity(v.world, cfg.Prefab)
	if err != nil {
		return nil, err
	}
	v.character = e
	v.ui = newControlPanel(v)
	return v, nil
}

func (v *viewer) Close() {
	if v.watcher != nil {
		_ = v.watcher.Close()
	}
}

func (v *viewer) Update() error {
	v.handleInput()
	v.ui.Update()
	v.world.Update()
	return nil
}

func (v *viewer) handleInput() {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyUp), inpututil.IsKeyJustPressed(ebiten.KeyRight):
		v.adjustSpeed(speedStep)
	case inpututil.IsKeyJustPressed(ebiten.KeyDown), inpututil.IsKeyJustPressed(ebiten.KeyLeft):
		v.adjustSpeed(-speedStep)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		v.jump()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyG) {
		v.toggleGrounded()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		v.togglePause()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		v.anim.Release(v.character)
	}
}

func (v *viewer) adjustSpeed(delta float64) {
	cur, _ := v.anim.Parameter(v.character, "Speed")
	speed, _ := cur.AsFloat()
	speed += delta
	if speed < 0 {
		speed = 0
	}
	if speed > maxSpeed {
		speed = maxSpeed
	}
	v.setParam("Speed", animation.Float(speed))
}

func (v *viewer) jump() {
	if err := v.anim.SetTrigger(v.world, v.character, "Jump"); err != nil {
		log.Printf("animview: %v", err)
	}
}

func (v *viewer) toggleGrounded() {
	cur, _ := v.anim.Parameter(v.character, "Grounded")
	grounded, _ := cur.AsBool()
	v.setParam("Grounded", animation.Bool(!grounded))
}

func (v *viewer) togglePause() {
	v.paused = !v.paused
	system.SetPaused(v.world, v.paused)
}

func (v *viewer) setParam(name string, val animation.Value) {
	if err := v.anim.SetParameter(v.world, v.character, name, val); err != nil {
		log.Printf("animview: %v", err)
	}
}

// collectEvents keeps the latest fired timeline events for the overlay.
func (v *viewer) collectEvents(w *ecs.World) {
	for _, evt := range w.Events().Drain() {
		fired, ok := evt.Data.(system.AnimationEvent)
		if !ok {
			continue
		}
		params := make([]string, 0, len(fired.Parameters))
		for _, p := range fired.Parameters {
			params = append(params, p.String())
		}
		line := fmt.Sprintf("%s/%s(%s)", fired.State, fired.Function, strings.Join(params, ", "))
		v.events = append(v.events, line)
		if len(v.events) > maxEvents {
			v.events = v.events[len(v.events)-maxEvents:]
		}
	}
}

func (v *viewer) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{0x18, 0x1c, 0x24, 0xff})

	w, h := float64(v.cfg.Width), float64(v.cfg.Height)
	originX, groundY := w/2, h*0.8
	vector.StrokeLine(screen, 0, float32(groundY), float32(w), float32(groundY), 1, colornames.Dimgray, true)

	toScreen := func(x, y float64) (float32, float32) {
		return float32(originX + x*v.cfg.Zoom), float32(groundY - y*v.cfg.Zoom)
	}

	for _, e := range entity.Descendants(v.world, v.character) {
		pose, ok := ecs.Get(v.world, e, component.BonePoseComponent.Kind())
		if !ok {
			continue
		}
		parent, ok := ecs.Get(v.world, e, component.ParentComponent.Kind())
		if !ok {
			continue
		}
		joint := pose.World.Translation()
		x1, y1 := toScreen(joint[0], joint[1])
		if p := ecs.Entity(parent.Entity); p != v.character {
			if pp, ok := ecs.Get(v.world, p, component.BonePoseComponent.Kind()); ok {
				from := pp.World.Translation()
				x0, y0 := toScreen(from[0], from[1])
				vector.StrokeLine(screen, x0, y0, x1, y1, 4, colornames.Lightgrey, true)
			}
		}
		vector.FillRect(screen, x1-3, y1-3, 6, 6, colornames.Orange, true)
		if bone, ok := ecs.Get(v.world, e, component.BoneComponent.Kind()); ok {
			v.drawText(screen, bone.Name, float64(x1)+6, float64(y1)-6, colornames.Gray)
		}
	}

	v.drawText(screen, v.status(), 12, 12, colornames.White)
	for i, line := range v.events {
		v.drawText(screen, line, 12, h-24-float64(len(v.events)-1-i)*16, colornames.Lightgreen)
	}
	v.ui.Draw(screen)
}

func (v *viewer) status() string {
	var b strings.Builder
	fmt.Fprintf(&b, "FPS %.1f", ebiten.ActualFPS())
	info, ok := v.anim.Playback(v.character)
	if !ok {
		b.WriteString("\nno playback")
		return b.String()
	}
	fmt.Fprintf(&b, "\n%s  %s %.2f/%.2f", info.Controller, info.State, info.StateTime, info.StateDuration)
	if info.Blending {
		fmt.Fprintf(&b, "  -> %s %.0f%%", info.Next, info.BlendProgress*100)
	}
	for _, name := range []string{"Speed", "Grounded", "Steps"} {
		if val, ok := v.anim.Parameter(v.character, name); ok {
			fmt.Fprintf(&b, "\n%s = %s", name, val)
		}
	}
	if v.paused {
		b.WriteString("\nPAUSED")
	}
	b.WriteString("\narrows speed  space jump  g grounded  p pause  r restart")
	return b.String()
}

func (v *viewer) drawText(screen *ebiten.Image, msg string, x, y float64, clr color.Color) {
	op := &ebtext.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(clr)
	op.LineSpacing = 16
	ebtext.Draw(screen, msg, v.face, op)
}

func (v *viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return v.cfg.Width, v.cfg.Height
}
