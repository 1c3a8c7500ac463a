package oilconfig

import (
	"encoding/json"
	"math"

	"oil-config/internal/model"
)

// asInt accepts the integer encodings a decoded record can carry.
// Fractional numbers and numbers outside the int range are rejected.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) || n >= math.MaxInt || n < math.MinInt {
			return 0, false
		}
		return int(n), true
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), true
		}
		if f, err := n.Float64(); err == nil {
			return asInt(f)
		}
	}
	return 0, false
}

// intList converts a vendor ID list. Non-list values are treated as absent;
// entries that are not integers are skipped.
func intList(v any) ([]int, bool) {
	switch t := v.(type) {
	case []int:
		return append([]int{}, t...), true
	case []any:
		out := make([]int, 0, len(t))
		for _, e := range t {
			if n, ok := asInt(e); ok {
				out = append(out, n)
			}
		}
		return out, true
	case []float64:
		out := make([]int, 0, len(t))
		for _, e := range t {
			if n, ok := asInt(e); ok {
				out = append(out, n)
			}
		}
		return out, true
	}
	return nil, false
}

// purposeList converts customPurposes through its JSON form, which covers both
// decoded documents and records built in Go.
func purposeList(v any) ([]model.CustomPurpose, bool) {
	if p, ok := v.([]model.CustomPurpose); ok {
		return append([]model.CustomPurpose{}, p...), true
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, false
	}
	var out []model.CustomPurpose
	if err := json.Unmarshal(data, &out); err != nil || out == nil {
		return nil, false
	}
	return out, true
}
