package callgrind

import "regexp"

// lineKind tags the outcome of classifying one input line.
type lineKind int

const (
	kindEmpty lineKind = iota
	kindHeaderPositions
	kindHeaderEvents
	kindCostPosition
	kindFiFePosition
	kindCalledPosition
	kindCostLine
	kindCallHeader
	kindUnknown
)

var (
	headerPositionsRe = regexp.MustCompile(`^positions:\s*(.*)$`)
	headerEventsRe    = regexp.MustCompile(`^events:\s*(.*)$`)
	costPositionRe    = regexp.MustCompile(`^(ob|fl|fn|fi|fe)=[ \t]*(?:\((\d+)\))?[ \t]*(.*)$`)
	calledPositionRe  = regexp.MustCompile(`^c(ob|fl|fi|fn)=[ \t]*(?:\((\d+)\))?[ \t]*(.*)$`)
	callHeaderRe      = regexp.MustCompile(`^calls=\s*(\d+)\s+(.+)$`)
	emptyLineRe       = regexp.MustCompile(`^\s*$`)
	costTokenRe       = regexp.MustCompile(`^(\*|[+-]?\d+|0[xX][0-9a-fA-F]+)$`)
)

// classifiedLine is the tagged-variant result of classifying one line.
type classifiedLine struct {
	kind lineKind

	axisNames []string // header kinds

	posKey   string // cost-position / fi-fe / called-position: key with leading "c" stripped
	aliasIdx int     // -1 if no alias index present
	value    string  // "" if no value token present

	tokens []string // cost line tokens, in order

	ncalls   uint64 // call header
	callSpec string // call header sub-position token group, unsplit
}

// classify tags one raw line (no trailing newline) according to the fixed,
// first-match-wins order in which Callgrind line kinds are distinguished.
func classify(line string) classifiedLine {
	if m := headerPositionsRe.FindStringSubmatch(line); m != nil {
		return classifiedLine{kind: kindHeaderPositions, axisNames: splitFields(m[1])}
	}
	if m := headerEventsRe.FindStringSubmatch(line); m != nil {
		return classifiedLine{kind: kindHeaderEvents, axisNames: splitFields(m[1])}
	}
	if m := costPositionRe.FindStringSubmatch(line); m != nil {
		key := m[1]
		kind := kindCostPosition
		if key == "fi" || key == "fe" {
			kind = kindFiFePosition
		}
		return classifiedLine{kind: kind, posKey: key, aliasIdx: parseAliasIdx(m[2]), value: m[3]}
	}
	if m := calledPositionRe.FindStringSubmatch(line); m != nil {
		return classifiedLine{kind: kindCalledPosition, posKey: m[1], aliasIdx: parseAliasIdx(m[2]), value: m[3]}
	}
	if isCostLine(line) {
		return classifiedLine{kind: kindCostLine, tokens: splitFields(line)}
	}
	if m := callHeaderRe.FindStringSubmatch(line); m != nil {
		n, err := parseUint(m[1])
		if err == nil {
			return classifiedLine{kind: kindCallHeader, ncalls: n, callSpec: m[2]}
		}
	}
	if emptyLineRe.MatchString(line) {
		return classifiedLine{kind: kindEmpty}
	}
	return classifiedLine{kind: kindUnknown}
}

// isCostLine reports whether every whitespace-separated token in line is a
// sub-position/number token. An empty token list (blank line) does not
// qualify; classify then tags such a line kindEmpty.
func isCostLine(line string) bool {
	tokens := splitFields(line)
	if len(tokens) == 0 {
		return false
	}
	for _, t := range tokens {
		if !costTokenRe.MatchString(t) {
			return false
		}
	}
	return true
}

func parseAliasIdx(s string) int {
	if s == "" {
		return -1
	}
	n, err := parseUint(s)
	if err != nil {
		return -1
	}
	return int(n)
}

func splitFields(s string) []string {
	var fields []string
	start := -1
	for i, r := range s {
		if r == ' ' || r == '\t' {
			if start >= 0 {
				fields = append(fields, s[start:i])
				start = -1
			}
		} else if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		fields = append(fields, s[start:])
	}
	return fields
}
