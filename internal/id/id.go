// Package id parses record ids given on the command line.
package id

import (
	"fmt"
	"strconv"
	"strings"
)

// Parse accepts "12" or "#12". Ids are assigned by the server and are
// always positive.
func Parse(s string) (int, error) {
	raw := strings.TrimPrefix(strings.TrimSpace(s), "#")
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: must be a number", s)
	}
	if n <= 0 {
		return 0, fmt.Errorf("invalid id %q: must be positive", s)
	}
	return n, nil
}

// Format renders an id the way tables and messages show it.
func Format(n int) string {
	return "#" + strconv.Itoa(n)
}
