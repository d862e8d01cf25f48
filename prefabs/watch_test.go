package prefabs

import (
	"testing"

	"github.com/fsnotify/fsnotify"
)

func TestWatchedOp(t *testing.T) {
	tests := []struct {
		name string
		op   fsnotify.Op
		want bool
	}{
		{name: "write", op: fsnotify.Write, want: true},
		{name: "create", op: fsnotify.Create, want: true},
		{name: "rename", op: fsnotify.Rename, want: true},
		{name: "remove", op: fsnotify.Remove, want: true},
		{name: "chmod", op: fsnotify.Chmod, want: false},
		{name: "remove_and_chmod", op: fsnotify.Remove | fsnotify.Chmod, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := watchedOp(tt.op); got != tt.want {
				t.Fatalf("watchedOp(%v) = %v, want %v", tt.op, got, tt.want)
			}
		})
	}
}
