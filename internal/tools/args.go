package tools

import "fmt"

func stringArg(input map[string]any, key string) string {
	s, _ := input[key].(string)
	return s
}

func boolArg(input map[string]any, key string) bool {
	b, _ := input[key].(bool)
	return b
}

// intPairArg reads a two-element integer array such as view_range.
func intPairArg(input map[string]any, key string) ([2]int, bool, error) {
	raw, ok := input[key]
	if !ok || raw == nil {
		return [2]int{}, false, nil
	}
	list, ok := raw.([]any)
	if !ok || len(list) != 2 {
		return [2]int{}, true, fmt.Errorf("%v", raw)
	}
	var out [2]int
	for i, v := range list {
		f, ok := v.(float64)
		if !ok || f != float64(int(f)) {
			return [2]int{}, true, fmt.Errorf("%v", raw)
		}
		out[i] = int(f)
	}
	return out, true, nil
}

func stringSliceArg(input map[string]any, key string) ([]string, bool) {
	raw, ok := input[key].([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		out = append(out, fmt.Sprint(v))
	}
	return out, true
}

func truncateOutput(s string, limit int) string {
	if limit > 0 && len(s) > limit {
		return s[:limit] + "\n... (output truncated)"
	}
	return s
}
