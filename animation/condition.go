package animation

import (
	"fmt"
	"strings"
)

// ConditionMode selects how a Condition compares its threshold.
type ConditionMode int

const (
	If ConditionMode = iota
	IfNot
	Greater
	Less
	Equals
	NotEqual
	Trigger
)

var conditionModeNames = [...]string{
	If:       "If",
	IfNot:    "IfNot",
	Greater:  "Greater",
	Less:     "Less",
	Equals:   "Equals",
	NotEqual: "NotEqual",
	Trigger:  "Trigger",
}

func (m ConditionMode) String() string {
	if m >= 0 && int(m) < len(conditionModeNames) {
		return conditionModeNames[m]
	}
	return fmt.Sprintf("ConditionMode(%d)", int(m))
}

// ParseConditionMode accepts the persisted mode names, case-insensitively.
func ParseConditionMode(s string) (ConditionMode, error) {
	s = strings.TrimSpace(s)
	for i, name := range conditionModeNames {
		if strings.EqualFold(name, s) {
			return ConditionMode(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedMode, s)
}

// Condition is one comparison against a named parameter.
type Condition struct {
	Mode      ConditionMode
	Parameter string
	Threshold Value
}

// Compare tests live against threshold under mode.
func Compare(mode ConditionMode, threshold, live Value) (bool, error) {
	if mode == Trigger {
		// a trigger threshold may be omitted; only the live bool matters
		if live.kind != KindBool || (threshold.kind != KindNone && threshold.kind != KindBool) {
			return false, fmt.Errorf("%w: Trigger on %s", ErrUnsupportedMode, live.kind)
		}
		return live.b, nil
	}

	if threshold.kind != live.kind {
		return false, fmt.Errorf("%w: threshold %s, parameter %s", ErrTypeMismatch, threshold.kind, live.kind)
	}

	var cmp int
	ordered := false
	switch live.kind {
	case KindInt:
		cmp, ordered = compareOrdered(live.i, threshold.i), true
	case KindFloat:
		cmp, ordered = compareOrdered(live.f, threshold.f), true
	case KindString:
		cmp, ordered = strings.Compare(live.s, threshold.s), true
	case KindBool:
		if live.b != threshold.b {
			cmp = 1
		}
	case KindEntity:
		if live.e != threshold.e {
			cmp = 1
		}
	default:
		return false, fmt.Errorf("%w: empty value", ErrTypeMismatch)
	}

	switch mode {
	case If, Equals:
		return cmp == 0, nil
	case IfNot, NotEqual:
		return cmp != 0, nil
	case Greater:
		if !ordered {
			return false, fmt.Errorf("%w: Greater on %s", ErrUnsupportedMode, live.kind)
		}
		return cmp > 0, nil
	case Less:
		if !ordered {
			return false, fmt.Errorf("%w: Less on %s", ErrUnsupportedMode, live.kind)
		}
		return cmp < 0, nil
	default:
		return false, fmt.Errorf("%w: %s", ErrUnsupportedMode, mode)
	}
}

func compareOrdered[T int64 | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// EvaluateConditions ANDs conds against params, stopping at the first failure.
// A passing Trigger condition resets its parameter to false immediately, even
// when a later condition fails.
func EvaluateConditions(conds []Condition, params map[string]Value) (bool, error) {
	for _, c := range conds {
		live, ok := params[c.Parameter]
		if !ok {
			return false, fmt.Errorf("%w: %q", ErrUnknownParameter, c.Parameter)
		}
		pass, err := Compare(c.Mode, c.Threshold, live)
		if err != nil {
			return false, fmt.Errorf("animation: condition on %q: %w", c.Parameter, err)
		}
		if !pass {
			return false, nil
		}
		if c.Mode == Trigger {
			params[c.Parameter] = Bool(false)
		}
	}
	return true, nil
}
