package callgrind

import (
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perfsight/cgviewer/internal/testutil"
)

func mustParse(t *testing.T, input string) *Parser {
	t.Helper()
	p := NewParser("", nil)
	err := p.ParseReader(strings.NewReader(input))
	require.NoError(t, err)
	return p
}

func TestParser_MinimalSingleEntry(t *testing.T) {
	p := mustParse(t, testutil.CallgrindMinimalEntry)
	entries := p.Entries()
	require.Len(t, entries, 1)

	e := entries[0]
	assert.Equal(t, "", e.Position.Object)
	assert.Equal(t, "main.c", e.Position.Source)
	assert.Equal(t, "main", e.Position.Symbol)
	require.Len(t, e.Costs, 1)
	assert.Equal(t, []uint64{42}, e.Costs[0].SubPositions)
	assert.Equal(t, []uint64{100}, e.Costs[0].Costs)
	assert.Empty(t, e.Calls)
	assert.Equal(t, []uint64{100}, p.TotalCost(e))
}

func TestParser_DifferentialSubPositions(t *testing.T) {
	p := mustParse(t, testutil.CallgrindDifferentialSubPositions)
	entries := p.Entries()
	require.Len(t, entries, 1)

	e := entries[0]
	require.Len(t, e.Costs, 4)
	assert.Equal(t, []uint64{10}, e.Costs[0].SubPositions)
	assert.Equal(t, []uint64{12}, e.Costs[1].SubPositions)
	assert.Equal(t, []uint64{12}, e.Costs[2].SubPositions)
	assert.Equal(t, []uint64{11}, e.Costs[3].SubPositions)

	var costs []uint64
	for _, row := range e.Costs {
		costs = append(costs, row.Costs[0])
	}
	assert.Equal(t, []uint64{5, 3, 7, 2}, costs)
	assert.Equal(t, []uint64{17}, p.TotalCost(e))
}

func TestParser_CompressionAliasing(t *testing.T) {
	p := mustParse(t, testutil.CallgrindCompressionAliasing)
	entries := p.Entries()
	require.Len(t, entries, 2)

	for _, e := range entries {
		assert.Equal(t, "", e.Position.Object)
		assert.Equal(t, "a.c", e.Position.Source)
		assert.Equal(t, "foo", e.Position.Symbol)
	}
	assert.Same(t, entries[0].Position, entries[1].Position)

	// Ranker outputs the 20-cost entry first.
	assert.Equal(t, []uint64{20}, p.TotalCost(entries[0]))
	assert.Equal(t, []uint64{10}, p.TotalCost(entries[1]))
}

func TestParser_CallGroupWithInheritance(t *testing.T) {
	p := mustParse(t, testutil.CallgrindCallGroupWithInheritance)
	entries := p.Entries()
	require.Len(t, entries, 1)

	e := entries[0]
	assert.Equal(t, "caller", e.Position.Symbol)
	require.Len(t, e.Calls, 1)

	c := e.Calls[0]
	assert.Equal(t, uint64(3), c.NCalls)
	assert.Equal(t, []uint64{5}, c.SubPositions)
	require.Len(t, c.Costs, 1)
	assert.Equal(t, []uint64{5}, c.Costs[0].SubPositions)
	assert.Equal(t, []uint64{30}, c.Costs[0].Costs)

	assert.Equal(t, "prog", c.Target.Position.Object)
	assert.Equal(t, "a.c", c.Target.Position.Source)
	assert.Equal(t, "callee", c.Target.Position.Symbol)
	assert.True(t, c.Target.placeholder, "no top-level callee entry was observed, target stays a placeholder")
}

func TestParser_CallerReciprocityAcrossEntries(t *testing.T) {
	p := mustParse(t, testutil.CallgrindCallerReciprocity)
	entries := p.Entries()
	require.Len(t, entries, 2)

	// Rank order: B (total 20) precedes A (total 10 + 5 = 15).
	assert.Equal(t, "B", entries[0].Position.Symbol)
	assert.Equal(t, "A", entries[1].Position.Symbol)

	entryB, entryA := entries[0], entries[1]
	require.Len(t, entryA.Calls, 1)
	assert.Same(t, entryB, entryA.Calls[0].Target)
	require.Len(t, entryB.Callers, 1)
	assert.Same(t, entryA, entryB.Callers[0])
}

func TestParser_EmptyFile(t *testing.T) {
	p := mustParse(t, testutil.CallgrindEmptyFile)
	assert.Empty(t, p.Entries())
	s := p.Summary()
	assert.Equal(t, 0, s.NEntries)
	assert.Equal(t, 0, s.NUniquePositions)
}

func TestParser_WrongColumnCountIsFatalWithLineNumber(t *testing.T) {
	input := "positions: line\n" +
		"events: Ir Dr\n" +
		"fl=a.c\n" +
		"fn=f\n" +
		"1 2\n"

	p := NewParser("", nil)
	err := p.ParseReader(strings.NewReader(input))
	require.Error(t, err)

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, KindWrongColumnCount, pe.Kind)
	assert.Equal(t, 5, pe.Line)
}

func TestParser_MissingCompressionIsFatal(t *testing.T) {
	input := "positions: line\n" +
		"events: Ir\n" +
		"fn=(9)\n" +
		"fl=a.c\n" +
		"1 10\n"

	p := NewParser("", nil)
	err := p.ParseReader(strings.NewReader(input))
	require.Error(t, err)

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, KindMissingCompression, pe.Kind)
}

func TestParser_SummaryVerboseWritesRankingToStderr(t *testing.T) {
	input := "positions: line\n" +
		"events: Ir\n" +
		"fl=a.c\n" +
		"fn=hot\n" +
		"1 100\n" +
		"\n" +
		"fl=a.c\n" +
		"fn=cold\n" +
		"2 10\n" +
		"\n"

	opts := DefaultParserOptions()
	opts.Verbose = true
	opts.SummaryTopN = 1

	p := NewParser("", opts)
	require.NoError(t, p.ParseReader(strings.NewReader(input)))

	r, w, err := os.Pipe()
	require.NoError(t, err)
	orig := os.Stderr
	os.Stderr = w

	s := p.Summary()

	os.Stderr = orig
	w.Close()
	captured, err := io.ReadAll(r)
	require.NoError(t, err)

	assert.Equal(t, 2, s.NEntries)
	assert.Contains(t, string(captured), "Top 1 Functions (Ir)")
	assert.Contains(t, string(captured), "hot")
	assert.NotContains(t, string(captured), "cold")
}

func TestParser_SummaryQuietWritesNothingToStderr(t *testing.T) {
	input := "positions: line\n" +
		"events: Ir\n" +
		"fl=a.c\n" +
		"fn=f\n" +
		"1 10\n" +
		"\n"

	p := mustParse(t, input)

	r, w, err := os.Pipe()
	require.NoError(t, err)
	orig := os.Stderr
	os.Stderr = w

	p.Summary()

	os.Stderr = orig
	w.Close()
	captured, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Empty(t, captured)
}

func TestParser_CompressionIdempotence(t *testing.T) {
	input := "positions: line\n" +
		"events: Ir\n" +
		"fl=a.c\n" +
		"fn=f\n" +
		"1 10\n" +
		"\n"

	p1 := mustParse(t, input)
	p2 := mustParse(t, input)

	require.Len(t, p1.Entries(), len(p2.Entries()))
	assert.Equal(t, p1.Summary(), p2.Summary())
	for i := range p1.Entries() {
		assert.Equal(t, p1.TotalCost(p1.Entries()[i]), p2.TotalCost(p2.Entries()[i]))
	}
}
