package list

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	leadingQuantityPattern  = regexp.MustCompile(`^(\d+)\s+(.+)$`)
	trailingQuantityPattern = regexp.MustCompile(`(?i)^(.+)\s+x(\d+)$`)
)

// ParseEntry splits a raw input line into an item name and quantity.
// "2 milk" and "milk x3" carry a quantity; anything else defaults to 1.
func ParseEntry(raw string) (string, int) {
	trimmed := strings.TrimSpace(raw)

	if m := leadingQuantityPattern.FindStringSubmatch(trimmed); m != nil {
		if quantity, err := strconv.Atoi(m[1]); err == nil && quantity > 0 {
			return m[2], quantity
		}
	}
	if m := trailingQuantityPattern.FindStringSubmatch(trimmed); m != nil {
		if quantity, err := strconv.Atoi(m[2]); err == nil && quantity > 0 {
			return m[1], quantity
		}
	}

	return trimmed, 1
}
