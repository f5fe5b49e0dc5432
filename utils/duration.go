package utils

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var durationPattern = regexp.MustCompile(`^(?:(\d+)d)?\s*(?:(\d+)h)?\s*(?:(\d+)m)?\s*(?:(\d+)s)?`)

// ParseMuteDuration converts strings like "1d 2h 3m 4s" into a duration.
// Every unit is optional but they must appear in d, h, m, s order.
// Input that does not start with a unit token yields zero. Oversized values saturate.
func ParseMuteDuration(input string) time.Duration {
	match := durationPattern.FindStringSubmatch(strings.TrimSpace(input))
	if match == nil {
		return 0
	}

	part := func(i int) int64 {
		if match[i] == "" {
			return 0
		}
		n, err := strconv.ParseInt(match[i], 10, 64)
		if err != nil || n > maxDurationSeconds {
			// only digits reach here, so err is a range error
			return maxDurationSeconds
		}
		return n
	}

	seconds := saturatingAdd(saturatingMul(saturatingAdd(saturatingMul(saturatingAdd(saturatingMul(part(1), 24), part(2)), 60), part(3)), 60), part(4))
	return time.Duration(seconds) * time.Second
}

// maxDurationSeconds is the largest whole-second count a time.Duration can hold
const maxDurationSeconds = math.MaxInt64 / int64(time.Second)

func saturatingMul(a, b int64) int64 {
	if a > maxDurationSeconds/b {
		return maxDurationSeconds
	}
	return a * b
}

func saturatingAdd(a, b int64) int64 {
	if a > maxDurationSeconds-b {
		return maxDurationSeconds
	}
	return a + b
}

// FormatDuration renders d as compact units, e.g. "1d 2h 3m"
func FormatDuration(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}
	total := int64(d / time.Second)
	units := []struct {
		suffix string
		size   int64
	}{
		{"d", 86400},
		{"h", 3600},
		{"m", 60},
		{"s", 1},
	}

	parts := make([]string, 0, len(units))
	for _, u := range units {
		if n := total / u.size; n > 0 {
			parts = append(parts, strconv.FormatInt(n, 10)+u.suffix)
			total %= u.size
		}
	}
	return strings.Join(parts, " ")
}
