package callgrind

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRank_SortsDescendingByFirstEvent(t *testing.T) {
	in := newInterner()
	low := &Entry{Position: in.intern("", "a.c", "low"), Costs: []*CostRow{{Costs: []uint64{5}}}}
	high := &Entry{Position: in.intern("", "a.c", "high"), Costs: []*CostRow{{Costs: []uint64{50}}}}
	mid := &Entry{Position: in.intern("", "a.c", "mid"), Costs: []*CostRow{{Costs: []uint64{20}}}}

	entries := []*Entry{low, high, mid}
	rank(entries, 1)

	assert.Equal(t, []*Entry{high, mid, low}, entries)
}

func TestRank_StableOnTies(t *testing.T) {
	in := newInterner()
	first := &Entry{Position: in.intern("", "a.c", "first"), Costs: []*CostRow{{Costs: []uint64{10}}}}
	second := &Entry{Position: in.intern("", "a.c", "second"), Costs: []*CostRow{{Costs: []uint64{10}}}}

	entries := []*Entry{first, second}
	rank(entries, 1)

	assert.Equal(t, []*Entry{first, second}, entries)
}

func TestRank_EntryWithNoCostRowsIsZero(t *testing.T) {
	in := newInterner()
	zero := &Entry{Position: in.intern("", "a.c", "zero")}
	nonzero := &Entry{Position: in.intern("", "a.c", "nonzero"), Costs: []*CostRow{{Costs: []uint64{1}}}}

	entries := []*Entry{zero, nonzero}
	rank(entries, 1)

	assert.Equal(t, []*Entry{nonzero, zero}, entries)
}
