package service

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfirmCount(t *testing.T) {
	cases := []struct {
		name     string
		typed    string
		expected int
		want     bool
	}{
		{"exact match", "7", 7, true},
		{"surrounding whitespace tolerated", " 7 ", 7, true},
		{"off by one", "6", 7, false},
		{"not a number", "seven", 7, false},
		{"empty input", "", 7, false},
		{"zero expected never confirms", "0", 0, false},
		{"negative expected never confirms", "-1", -1, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, ConfirmCount(tc.typed, tc.expected))
		})
	}
}
