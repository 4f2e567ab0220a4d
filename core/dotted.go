package core

import "strings"

// dottedLookup walks root top-down following the '.'-separated
// segments of expr, propagating "nullish" (nil) for both a missing key
// and a traversal through a non-container value, per spec §4.3/§4.4
// and the §9 design note that dotted paths and pointer-form get share
// only this walker.
func dottedLookup(root map[string]interface{}, expr string) interface{} {
	segs := strings.Split(expr, ".")
	var cur interface{} = root
	for _, seg := range segs {
		if seg == "" {
			return nil
		}
		cur = step(cur, seg)
		if cur == nil {
			return nil
		}
	}
	return cur
}

// step resolves a single dotted segment against cur, which may be a
// map, a slice (numeric segment), or anything else (yielding nil).
func step(cur interface{}, seg string) interface{} {
	switch v := cur.(type) {
	case map[string]interface{}:
		val, have := v[seg]
		if !have {
			return nil
		}
		return val
	case []interface{}:
		i, ok := parseIndex(seg)
		if !ok || i < 0 || i >= len(v) {
			return nil
		}
		return v[i]
	default:
		return nil
	}
}

func parseIndex(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}
