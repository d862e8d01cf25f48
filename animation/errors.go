package animation

import "errors"

var (
	ErrUnknownState     = errors.New("animation: unknown state")
	ErrUnknownParameter = errors.New("animation: unknown parameter")
	ErrTypeMismatch     = errors.New("animation: type mismatch")
	ErrUnsupportedMode  = errors.New("animation: unsupported condition mode")
)
