package codec

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/platinummonkey/dnetmap/pkg/mapping"
)

const (
	kindUnconditional       = "unconditional"
	kindConditional         = "conditional"
	legacyKindUnconditional = "必然回包"
	legacyKindConditional   = "按条件回包"

	repeatOnce       = "once"
	repeatMany       = "many"
	legacyRepeatOnce = "一次"
	legacyRepeatMany = "多次"
)

func kindLabel(k mapping.ResponseKind, legacy bool) string {
	switch {
	case k == mapping.Conditional && legacy:
		return legacyKindConditional
	case k == mapping.Conditional:
		return kindConditional
	case legacy:
		return legacyKindUnconditional
	default:
		return kindUnconditional
	}
}

// parseKind maps a stored type label; an unrecognized label yields the
// default kind and ok false
func parseKind(s string) (kind mapping.ResponseKind, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", kindUnconditional, legacyKindUnconditional:
		return mapping.Unconditional, true
	case kindConditional, legacyKindConditional:
		return mapping.Conditional, true
	}
	return mapping.Unconditional, false
}

func repetitionLabel(r mapping.Repetition, legacy bool) string {
	switch {
	case r == mapping.Many && legacy:
		return legacyRepeatMany
	case r == mapping.Many:
		return repeatMany
	case legacy:
		return legacyRepeatOnce
	default:
		return repeatOnce
	}
}

func parseRepetition(s string) (rep mapping.Repetition, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", repeatOnce, legacyRepeatOnce:
		return mapping.Once, true
	case repeatMany, legacyRepeatMany:
		return mapping.Many, true
	}
	return mapping.Once, false
}

// storedLabel writes back an unrecognized label in place of the known one
func storedLabel(raw, known string) string {
	if raw != "" {
		return raw
	}
	return known
}

func orderedOrDefault(v *bool) bool {
	if v == nil {
		return true
	}
	return *v
}

// coerceOrderGroup turns a stored order_group value into a group name.
// Strings pass through; positive integers map to spreadsheet-style letters
// (1 is "A", 27 is "AA"); zero, negatives and null mean no group.
func coerceOrderGroup(v any) (string, error) {
	switch g := v.(type) {
	case nil:
		return "", nil
	case string:
		return strings.TrimSpace(g), nil
	case json.Number:
		n, err := g.Int64()
		if err != nil {
			f, ferr := g.Float64()
			if ferr != nil {
				return "", fmt.Errorf("invalid order_group %q", g.String())
			}
			return groupFromFloat(f)
		}
		return groupLetters(n), nil
	case int:
		return groupLetters(int64(g)), nil
	case int64:
		return groupLetters(g), nil
	case uint64:
		if g > math.MaxInt64 {
			return "", fmt.Errorf("order_group %d out of range", g)
		}
		return groupLetters(int64(g)), nil
	case float64:
		return groupFromFloat(g)
	}
	return "", fmt.Errorf("order_group has unsupported type %T", v)
}

func groupFromFloat(f float64) (string, error) {
	if f != math.Trunc(f) || math.IsInf(f, 0) || f > math.MaxInt64 || f < math.MinInt64 {
		return "", fmt.Errorf("order_group %v is not an integer", f)
	}
	return groupLetters(int64(f)), nil
}

func groupLetters(n int64) string {
	if n <= 0 {
		return ""
	}
	var b []byte
	for n > 0 {
		n--
		b = append([]byte{byte('A' + n%26)}, b...)
		n /= 26
	}
	return string(b)
}
