package service

import (
	"strconv"
	"strings"
)

// ConfirmCount reports whether the operator's typed confirmation strictly
// equals the expected eligible count. A zero or negative expected count can
// never be confirmed: there is nothing to confirm. Pure, no side effects;
// callers own button state and the in-flight guard.
func ConfirmCount(typed string, expected int) bool {
	if expected <= 0 {
		return false
	}
	n, err := strconv.Atoi(strings.TrimSpace(typed))
	if err != nil {
		return false
	}
	return n == expected
}
