package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/milk9111/skelanim/prefabs"
)

type config struct {
	PrefabDir string `env:"SKELANIM_PREFAB_DIR" envDefault:"prefabs"`
	// Strict also fails on motions that name a missing clip.
	Strict bool `env:"SKELANIM_STRICT" envDefault:"false"`
}

func main() {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("parse env: %v", err)
	}
	flag.StringVar(&cfg.PrefabDir, "dir", cfg.PrefabDir, "prefab directory checked before the embedded copies")
	flag.BoolVar(&cfg.Strict, "strict", cfg.Strict, "fail when a state's motion clip cannot be loaded")
	flag.Parse()
	prefabs.DiskRoot = cfg.PrefabDir

	paths := flag.Args()
	if len(paths) == 0 {
		embedded, err := prefabs.List("*.controller.yaml")
		if err != nil {
			log.Fatal(err)
		}
		paths = embedded
	}
	if len(paths) == 0 {
		log.Fatal("animcheck: no controllers to check")
	}

	failed := 0
	clips := prefabs.NewClipLibrary("clips")
	for _, p := range paths {
		if err := check(p, clips, cfg.Strict); err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "%s:\n", p)
			for _, line := range strings.Split(err.Error(), "\n") {
				fmt.Fprintf(os.Stderr, "  %s\n", line)
			}
			continue
		}
		fmt.Printf("%s: ok\n", p)
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func check(p string, clips *prefabs.ClipLibrary, strict bool) error {
	ctrl, err := prefabs.DecodeController(path.Clean(p))
	if err != nil {
		return err
	}
	var errs []error
	if err := ctrl.Validate(); err != nil {
		errs = append(errs, err)
	}
	if strict {
		for _, name := range ctrl.StateNames() {
			st, _ := ctrl.State(name)
			if st.MotionName == "" {
				continue
			}
			if _, ok := clips.ResolveClip(st.MotionName); !ok {
				errs = append(errs, fmt.Errorf("state %q: motion clip %q not found", name, st.MotionName))
			}
		}
	}
	return errors.Join(errs...)
}
