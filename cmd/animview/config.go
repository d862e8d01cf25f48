package main

import (
	"flag"
	"fmt"

	"github.com/caarlos0/env/v11"
)

type config struct {
	Prefab    string  `env:"SKELANIM_PREFAB" envDefault:"humanoid.yaml"`
	PrefabDir string  `env:"SKELANIM_PREFAB_DIR" envDefault:"prefabs"`
	Watch     bool    `env:"SKELANIM_WATCH" envDefault:"true"`
	Zoom      float64 `env:"SKELANIM_ZOOM" envDefault:"2"`
	Width     int     `env:"SKELANIM_WIDTH" envDefault:"960"`
	Height    int     `env:"SKELANIM_HEIGHT" envDefault:"640"`
	// Scripts binds event names to tengo files, e.g. "footstep:footstep.tengo".
	Scripts map[string]string `env:"SKELANIM_SCRIPTS" envDefault:"footstep:footstep.tengo" envSeparator:"," envKeyValSeparator:":"`
}

// loadConfig reads the environment, then lets flags override it.
func loadConfig(args []string) (config, error) {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}

	fs := flag.NewFlagSet("animview", flag.ContinueOnError)
	fs.StringVar(&cfg.Prefab, "prefab", cfg.Prefab, "character prefab under the prefab dir")
	fs.StringVar(&cfg.PrefabDir, "dir", cfg.PrefabDir, "prefab directory checked before the embedded copies")
	fs.BoolVar(&cfg.Watch, "watch", cfg.Watch, "reload controllers, clips and scripts when they change on disk")
	fs.Float64Var(&cfg.Zoom, "zoom", cfg.Zoom, "pixels per skeleton unit")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	if cfg.Zoom <= 0 {
		cfg.Zoom = 1
	}
	return cfg, nil
}
