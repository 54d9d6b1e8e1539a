package subscription

import (
	"encoding/json"
	"math"
)

// Intent is a key-value message addressed to a target component.
type Intent struct {
	Target string         `json:"target"`
	Extras map[string]any `json:"extras,omitempty"`
}

func NewIntent(target string) *Intent {
	return &Intent{Target: target, Extras: map[string]any{}}
}

func (i *Intent) PutExtra(key string, v any) {
	if i.Extras == nil {
		i.Extras = map[string]any{}
	}
	i.Extras[key] = v
}

func (i *Intent) HasExtra(key string) bool {
	if i == nil {
		return false
	}
	_, ok := i.Extras[key]
	return ok
}

// IntExtra returns the integer stored under key, or def when the key is
// missing or holds something that is not an integer.
func (i *Intent) IntExtra(key string, def int) int {
	if i == nil {
		return def
	}
	switch v := i.Extras[key].(type) {
	case int:
		if v < math.MinInt32 || v > math.MaxInt32 {
			return def
		}
		return v
	case int32:
		return int(v)
	case int64:
		if v < math.MinInt32 || v > math.MaxInt32 {
			return def
		}
		return int(v)
	case float64:
		// encoding/json decodes every number into float64.
		if v != math.Trunc(v) || v < math.MinInt32 || v > math.MaxInt32 {
			return def
		}
		return int(v)
	case json.Number:
		n, err := v.Int64()
		if err != nil || n < math.MinInt32 || n > math.MaxInt32 {
			return def
		}
		return int(n)
	default:
		return def
	}
}

// StringExtra returns the string stored under key. ok is false when the key is
// missing or not a string.
func (i *Intent) StringExtra(key string) (s string, ok bool) {
	if i == nil {
		return "", false
	}
	s, ok = i.Extras[key].(string)
	return s, ok
}
