package callgrind

import "sort"

// rank sorts entries by total cost at event index 0 descending, stable on
// ties so parse order survives among equal-cost entries.
func rank(entries []*Entry, nEvents int) {
	type ranked struct {
		entry *Entry
		total uint64
	}

	scored := make([]ranked, len(entries))
	for i, e := range entries {
		var total uint64
		if t := e.TotalCost(nEvents); len(t) > 0 {
			total = t[0]
		}
		scored[i] = ranked{entry: e, total: total}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].total > scored[j].total
	})

	for i, r := range scored {
		entries[i] = r.entry
	}
}
