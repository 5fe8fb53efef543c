package util

import "strconv"

const (
	DefaultCount = 10
	MaxCount     = 100
)

func ParseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

// Window turns the count/after query pair into an offset and limit. after is
// the number of leading records to skip.
func Window(after, count int) (offset int, limit int) {
	if after < 0 {
		after = 0
	}
	if count < 1 {
		count = DefaultCount
	}
	if count > MaxCount {
		count = MaxCount
	}
	return after, count
}
