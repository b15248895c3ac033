package callgrind

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInterner_DedupesByValue(t *testing.T) {
	in := newInterner()

	p1 := in.intern("", "a.c", "foo")
	p2 := in.intern("", "a.c", "foo")
	p3 := in.intern("", "a.c", "bar")

	assert.Same(t, p1, p2)
	assert.NotSame(t, p1, p3)
	assert.Equal(t, 2, in.count())
}

func TestInterner_DistinguishesObjectFileSymbol(t *testing.T) {
	in := newInterner()

	p1 := in.intern("prog", "a.c", "f")
	p2 := in.intern("prog2", "a.c", "f")

	assert.NotSame(t, p1, p2)
	assert.Equal(t, 2, in.count())
}
