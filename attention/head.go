// head.go - Beschraenkter Head-Index fuer den Head-Selector
package attention

import (
	"fmt"
	"strconv"
	"strings"
)

// Head is a 0-based head index. Its text form is 1-based, matching the
// selector shown to users.
type Head int

// ParseHead parses a 1-based selector value. Values outside [1, heads] are
// clamped; text that is not an integer is rejected.
func ParseHead(s string, heads int) (Head, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid head %q: %w", s, err)
	}

	return Head(n - 1).Clamp(heads), nil
}

// Clamp returns h limited to [0, heads). With no heads it returns 0.
func (h Head) Clamp(heads int) Head {
	switch {
	case heads <= 0, h < 0:
		return 0
	case int(h) >= heads:
		return Head(heads - 1)
	default:
		return h
	}
}

// String returns the 1-based label.
func (h Head) String() string {
	return strconv.Itoa(int(h) + 1)
}

// Heads enumerates all heads of a tensor with the given head count.
func Heads(heads int) []Head {
	hs := make([]Head, 0, max(heads, 0))
	for i := range heads {
		hs = append(hs, Head(i))
	}
	return hs
}
