// Package callgrind parses Valgrind Callgrind profile dumps and assembles
// an in-memory call graph: one Entry per observed function, its aggregated
// cost rows, its outbound Calls, and its inbound callers.
package callgrind

// Position identifies a code site: the binary it lives in, the source file,
// and the function symbol. Positions are interned so that two Entries with
// the same (object, source, symbol) triple share the exact same *Position.
type Position struct {
	Object string
	Source string
	Symbol string
}

// CostRow is one line of per-event cost, aligned to the file's declared
// positions axis and events axis.
type CostRow struct {
	SubPositions []uint64
	Costs        []uint64
}

// Call is one outbound call recorded inside an Entry: how many times it was
// invoked, the sub-positions at the call site, the cost rows charged to the
// callee along that edge, and the resolved target.
//
// Target starts out pointing at a placeholder Entry carrying only the
// call's Position; the stitch phase rebinds it to the canonical Entry
// sharing that position, if one was observed as a top-level entry.
type Call struct {
	NCalls       uint64
	SubPositions []uint64
	Costs        []*CostRow
	Target       *Entry
}

// TotalCost sums this call's cost rows for every event index.
func (c *Call) TotalCost(nEvents int) []uint64 {
	return sumCostRows(c.Costs, nEvents)
}

// Entry is one function's aggregated record: its identity, its own cost
// rows, the calls it makes, and the entries that call it.
//
// Callers are non-owning back-references installed by the stitcher; they
// never prevent an Entry from being collected and are deduplicated by
// identity, not by value.
type Entry struct {
	Position *Position
	Costs    []*CostRow
	Calls    []*Call
	Callers  []*Entry

	// placeholder marks an Entry manufactured only to carry a call target's
	// Position before stitching resolves it to a real, observed entry.
	placeholder bool
}

// TotalCost for event index i is the sum of this entry's own cost rows plus
// the sum of every outbound call's cost rows, for i in [0, nEvents).
func (e *Entry) TotalCost(nEvents int) []uint64 {
	total := sumCostRows(e.Costs, nEvents)
	for _, c := range e.Calls {
		callTotal := c.TotalCost(nEvents)
		for i := range total {
			total[i] += callTotal[i]
		}
	}
	return total
}

func sumCostRows(rows []*CostRow, nEvents int) []uint64 {
	total := make([]uint64, nEvents)
	for _, row := range rows {
		for i := 0; i < nEvents && i < len(row.Costs); i++ {
			total[i] += row.Costs[i]
		}
	}
	return total
}

// Summary is the headline count the facade reports after a parse.
type Summary struct {
	NEntries         int
	NUniquePositions int
}
