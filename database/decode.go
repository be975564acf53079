package database

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Backends hand numbers back as int64 (firestore), int32 (mongo), float64 or
// json.Number (jsonb, cache), and lists as []interface{}. These helpers read
// every one of those shapes; a missing field decodes to its zero value.

func stringField(f Fields, key string) string {
	switch v := f[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func intField(f Fields, key string) int {
	n, _ := toInt(f[key])
	return n
}

func stringsField(f Fields, key string) []string {
	switch v := f[key].(type) {
	case []string:
		out := make([]string, len(v))
		copy(out, v)
		return out
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, stringField(Fields{"v": item}, "v"))
		}
		return out
	default:
		return []string{}
	}
}

func intsField(f Fields, key string) []int {
	switch v := f[key].(type) {
	case []int:
		out := make([]int, len(v))
		copy(out, v)
		return out
	case []int64:
		out := make([]int, 0, len(v))
		for _, n := range v {
			out = append(out, int(n))
		}
		return out
	case []interface{}:
		out := make([]int, 0, len(v))
		for _, item := range v {
			if n, ok := toInt(item); ok {
				out = append(out, n)
			}
		}
		return out
	default:
		return []int{}
	}
}

func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	case string:
		i, err := strconv.Atoi(n)
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}
