package main

import (
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/skelanim/prefabs"
)

func main() {
	cfg, err := loadConfig(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
	prefabs.DiskRoot = cfg.PrefabDir

	viewer, err := newViewer(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer viewer.Close()

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowTitle("animview - " + cfg.Prefab)

	if err := ebiten.RunGame(viewer); err != nil {
		log.Fatal(err)
	}
}
