package script

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// SplitVec3 parses a slash-delimited vector argument ("x/y/z" or
// "pitch/yaw/roll") into exactly three floats. Missing trailing fields
// default to 0. Scientific notation and signs are accepted.
//
// Postcondition: on success the returned array always has three finite
// components; a non-numeric or non-finite field or more than three fields
// is an error.
func SplitVec3(s string) ([3]float64, error) {
	var v [3]float64
	fields := strings.Split(s, "/")
	if len(fields) > 3 {
		return v, fmt.Errorf("vector %q has %d fields, want at most 3", s, len(fields))
	}
	for i, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		n, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return v, fmt.Errorf("vector %q field %d: %w", s, i+1, err)
		}
		// ParseFloat accepts "nan" and "inf"; neither is a coordinate.
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return v, fmt.Errorf("vector %q field %d: non-finite value %q", s, i+1, f)
		}
		v[i] = n
	}
	return v, nil
}

// FormatVec3 renders a vector back into the slash-delimited source form.
// FormatVec3 and SplitVec3 round-trip within 1e-4 for any finite input.
func FormatVec3(v [3]float64) string {
	return fmt.Sprintf("%s/%s/%s",
		strconv.FormatFloat(v[0], 'g', -1, 64),
		strconv.FormatFloat(v[1], 'g', -1, 64),
		strconv.FormatFloat(v[2], 'g', -1, 64),
	)
}
