package utils

import (
	"strconv"
)

// ParseIntOption parses an optional numeric query value, returning 0
// when the value is empty or not a number.
func ParseIntOption(value string) int {
	if value == "" {
		return 0
	}
	num, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return num
}
