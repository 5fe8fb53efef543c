package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseIntDefault(t *testing.T) {
	assert.Equal(t, 7, ParseIntDefault("", 7))
	assert.Equal(t, 7, ParseIntDefault("abc", 7))
	assert.Equal(t, 3, ParseIntDefault("3", 7))
	assert.Equal(t, -2, ParseIntDefault("-2", 7))
}

func TestWindow(t *testing.T) {
	cases := []struct {
		name          string
		after, count  int
		offset, limit int
	}{
		{"defaults", 0, 0, 0, DefaultCount},
		{"explicit", 20, 5, 20, 5},
		{"negative after", -3, 5, 0, 5},
		{"negative count", 0, -1, 0, DefaultCount},
		{"capped", 0, 1000, 0, MaxCount},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			offset, limit := Window(tc.after, tc.count)
			assert.Equal(t, tc.offset, offset)
			assert.Equal(t, tc.limit, limit)
		})
	}
}
