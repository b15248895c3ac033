package callgrind

import (
	"fmt"
	"strconv"
	"strings"
)

// decodeSubPosition resolves one sub-position token against axis i of the
// running vector s, updating s in place. The running vector is
// file-global, not entry-scoped: callers must share one s across the whole
// parse.
func decodeSubPosition(token string, i int, s []uint64) (uint64, error) {
	switch {
	case token == "*":
		return s[i], nil
	case strings.HasPrefix(token, "+"):
		n, err := parseUint(token[1:])
		if err != nil {
			return 0, err
		}
		s[i] += n
		return s[i], nil
	case strings.HasPrefix(token, "-"):
		n, err := parseUint(token[1:])
		if err != nil {
			return 0, err
		}
		s[i] -= n
		return s[i], nil
	default:
		n, err := parseUint(token)
		if err != nil {
			return 0, err
		}
		s[i] = n
		return s[i], nil
	}
}

// parseUint parses a decimal or 0x-prefixed hexadecimal unsigned 64-bit
// integer, the two numeric token shapes the Callgrind grammar allows.
func parseUint(token string) (uint64, error) {
	if strings.HasPrefix(token, "0x") || strings.HasPrefix(token, "0X") {
		n, err := strconv.ParseUint(token[2:], 16, 64)
		if err != nil {
			return 0, fmt.Errorf("malformed hex number %q: %w", token, err)
		}
		return n, nil
	}
	n, err := strconv.ParseUint(token, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed number %q: %w", token, err)
	}
	return n, nil
}
