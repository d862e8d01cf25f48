package prefabs

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

//go:embed scripts/*.tengo
var ScriptsFS embed.FS

func LoadScript(name string) ([]byte, error) {
	clean := cleanScriptPath(name)
	if data, err := os.ReadFile(diskPrefabPath(clean)); err == nil {
		return data, nil
	}
	return ScriptsFS.ReadFile(clean)
}

//go:embed *.yaml clips/*.yaml
var PrefabsFS embed.FS

// DiskRoot is checked before the embedded copy so edited prefabs win.
var DiskRoot = "prefabs"

func Load(name string) ([]byte, error) {
	clean := cleanPrefabPath(name)
	if data, err := os.ReadFile(diskPrefabPath(clean)); err == nil {
		return data, nil
	}
	return PrefabsFS.ReadFile(clean)
}

func ModTime(name string) (time.Time, bool) {
	clean := cleanPrefabPath(name)
	info, err := os.Stat(diskPrefabPath(clean))
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime(), true
}

// List returns the prefab-relative names matching pattern in the embedded set.
func List(pattern string) ([]string, error) {
	matches, err := fs.Glob(PrefabsFS, pattern)
	if err != nil {
		return nil, fmt.Errorf("prefabs: glob %s: %w", pattern, err)
	}
	return matches, nil
}

// CleanPath maps an on-disk or prefab-relative path to its prefab name.
func CleanPath(path string) string {
	return cleanPrefabPath(path)
}

func cleanPrefabPath(path string) string {
	if path == "" {
		return ""
	}
	s := filepath.ToSlash(strings.ReplaceAll(path, "\\", "/"))
	s = strings.TrimPrefix(s, "./")
	root := filepath.ToSlash(filepath.Clean(DiskRoot)) + "/"
	if after, ok := strings.CutPrefix(s, root); ok {
		return after
	}
	if after, ok := strings.CutPrefix(s, "prefabs/"); ok {
		return after
	}
	return s
}

func cleanScriptPath(path string) string {
	if path == "" {
		return ""
	}

	s := filepath.ToSlash(path)

	if after, ok := strings.CutPrefix(s, "prefabs/scripts/"); ok {
		s = after
	}

	if after, ok := strings.CutPrefix(s, "prefabs/"); ok {
		s = after
	}

	if after, ok := strings.CutPrefix(s, "scripts/"); ok {
		s = after
	}

	return fmt.Sprintf("scripts/%s", s)
}

func diskPrefabPath(clean string) string {
	return filepath.Join(DiskRoot, filepath.FromSlash(clean))
}
