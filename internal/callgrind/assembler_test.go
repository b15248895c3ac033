package callgrind

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func feedLines(t *testing.T, a *assembler, lines []string) error {
	t.Helper()
	for i, l := range lines {
		if err := a.process(classify(l), i+1, l); err != nil {
			return err
		}
	}
	a.finish()
	return nil
}

func TestAssembler_ConsecutivePositionLinesUpdateSameEntry(t *testing.T) {
	a := newAssembler()
	err := feedLines(t, a, []string{
		"positions: line",
		"events: Ir",
		"fn=foo",
		"fl=old.c",
		"fl=a.c",
		"1 10",
		"",
	})
	require.NoError(t, err)
	require.Len(t, a.completed, 1)
	assert.Equal(t, "a.c", a.completed[0].Position.Source)
	assert.Equal(t, "foo", a.completed[0].Position.Symbol)
}

func TestAssembler_AliasedPositionBlocksProduceDistinctEntriesSharedPosition(t *testing.T) {
	a := newAssembler()
	err := feedLines(t, a, []string{
		"positions: line",
		"events: Ir",
		"fn=(1) foo",
		"fl=(1) a.c",
		"1 10",
		"fn=(1)",
		"fl=(1)",
		"2 20",
		"",
	})
	require.NoError(t, err)
	require.Len(t, a.completed, 2)
	assert.Same(t, a.completed[0].Position, a.completed[1].Position)
}

func TestAssembler_MissingHeaderIsFatal(t *testing.T) {
	a := newAssembler()
	err := feedLines(t, a, []string{
		"fl=a.c",
		"fn=main",
		"1 10",
	})
	require.Error(t, err)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, KindMissingHeader, pe.Kind)
}

func TestAssembler_WrongColumnCount(t *testing.T) {
	a := newAssembler()
	err := feedLines(t, a, []string{
		"positions: line",
		"events: Ir Dr",
		"fl=a.c",
		"fn=main",
		"1 10",
	})
	require.Error(t, err)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, KindWrongColumnCount, pe.Kind)
}

func TestAssembler_CallLineWithNoPrecedingCallPosition(t *testing.T) {
	a := newAssembler()
	err := feedLines(t, a, []string{
		"positions: line",
		"events: Ir",
		"fl=a.c",
		"fn=main",
		"1 10",
		"calls=1 1",
	})
	require.Error(t, err)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, KindUnexpectedLine, pe.Kind)
}

func TestAssembler_BarePositionBlockDroppedSilently(t *testing.T) {
	a := newAssembler()
	err := feedLines(t, a, []string{
		"positions: line",
		"events: Ir",
		"fl=a.c",
		"fn=main",
		"",
	})
	require.NoError(t, err)
	assert.Empty(t, a.completed)
}

func TestAssembler_CalledPositionInheritsEnclosingEntry(t *testing.T) {
	a := newAssembler()
	err := feedLines(t, a, []string{
		"positions: line",
		"events: Ir",
		"ob=prog",
		"fl=a.c",
		"fn=caller",
		"1 100",
		"cfn=callee",
		"calls=3 5",
		"5 30",
		"",
	})
	require.NoError(t, err)
	require.Len(t, a.completed, 1)
	entry := a.completed[0]
	require.Len(t, entry.Calls, 1)
	call := entry.Calls[0]
	assert.Equal(t, uint64(3), call.NCalls)
	assert.Equal(t, "prog", call.Target.Position.Object)
	assert.Equal(t, "a.c", call.Target.Position.Source)
	assert.Equal(t, "callee", call.Target.Position.Symbol)
}
