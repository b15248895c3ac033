package callgrind

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify_Headers(t *testing.T) {
	cl := classify("positions: line")
	assert.Equal(t, kindHeaderPositions, cl.kind)
	assert.Equal(t, []string{"line"}, cl.axisNames)

	cl = classify("events: Ir Dr Dw")
	assert.Equal(t, kindHeaderEvents, cl.kind)
	assert.Equal(t, []string{"Ir", "Dr", "Dw"}, cl.axisNames)
}

func TestClassify_CostPosition(t *testing.T) {
	cl := classify("fl=main.c")
	assert.Equal(t, kindCostPosition, cl.kind)
	assert.Equal(t, "fl", cl.posKey)
	assert.Equal(t, -1, cl.aliasIdx)
	assert.Equal(t, "main.c", cl.value)

	cl = classify("fn=(1) foo")
	assert.Equal(t, kindCostPosition, cl.kind)
	assert.Equal(t, "fn", cl.posKey)
	assert.Equal(t, 1, cl.aliasIdx)
	assert.Equal(t, "foo", cl.value)

	cl = classify("fn=(1)")
	assert.Equal(t, 1, cl.aliasIdx)
	assert.Equal(t, "", cl.value)
}

func TestClassify_FiFePosition(t *testing.T) {
	cl := classify("fi=inline.c")
	assert.Equal(t, kindFiFePosition, cl.kind)
	assert.Equal(t, "fi", cl.posKey)

	cl = classify("fe=other.c")
	assert.Equal(t, kindFiFePosition, cl.kind)
	assert.Equal(t, "fe", cl.posKey)
}

func TestClassify_CalledPosition(t *testing.T) {
	cl := classify("cfn=callee")
	assert.Equal(t, kindCalledPosition, cl.kind)
	assert.Equal(t, "fn", cl.posKey)
	assert.Equal(t, "callee", cl.value)

	cl = classify("cob=(2) libc.so")
	assert.Equal(t, kindCalledPosition, cl.kind)
	assert.Equal(t, "ob", cl.posKey)
	assert.Equal(t, 2, cl.aliasIdx)
}

func TestClassify_CostLine(t *testing.T) {
	cl := classify("42 100")
	assert.Equal(t, kindCostLine, cl.kind)
	assert.Equal(t, []string{"42", "100"}, cl.tokens)

	cl = classify("+2 3")
	assert.Equal(t, kindCostLine, cl.kind)

	cl = classify("* 7")
	assert.Equal(t, kindCostLine, cl.kind)

	cl = classify("0x1A 5")
	assert.Equal(t, kindCostLine, cl.kind)
}

func TestClassify_CallHeader(t *testing.T) {
	cl := classify("calls=3 5")
	assert.Equal(t, kindCallHeader, cl.kind)
	assert.Equal(t, uint64(3), cl.ncalls)
	assert.Equal(t, "5", cl.callSpec)
}

func TestClassify_EmptyAndUnknown(t *testing.T) {
	assert.Equal(t, kindEmpty, classify("").kind)
	assert.Equal(t, kindEmpty, classify("   ").kind)
	assert.Equal(t, kindUnknown, classify("summary: 100").kind)
	assert.Equal(t, kindUnknown, classify("# a comment").kind)
	assert.Equal(t, kindUnknown, classify("cmd: ./a.out").kind)
}
