package callgrind

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSubPosition(t *testing.T) {
	s := []uint64{10}

	v, err := decodeSubPosition("10", 0, s)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), v)
	assert.Equal(t, uint64(10), s[0])

	v, err = decodeSubPosition("+2", 0, s)
	require.NoError(t, err)
	assert.Equal(t, uint64(12), v)
	assert.Equal(t, uint64(12), s[0])

	v, err = decodeSubPosition("*", 0, s)
	require.NoError(t, err)
	assert.Equal(t, uint64(12), v)
	assert.Equal(t, uint64(12), s[0])

	v, err = decodeSubPosition("-1", 0, s)
	require.NoError(t, err)
	assert.Equal(t, uint64(11), v)
	assert.Equal(t, uint64(11), s[0])
}

func TestDecodeSubPosition_Hex(t *testing.T) {
	s := []uint64{0}
	v, err := decodeSubPosition("0x1A", 0, s)
	require.NoError(t, err)
	assert.Equal(t, uint64(26), v)
}

func TestDecodeSubPosition_Malformed(t *testing.T) {
	s := []uint64{0}
	_, err := decodeSubPosition("+xyz", 0, s)
	assert.Error(t, err)
}

func TestParseUint(t *testing.T) {
	v, err := parseUint("100")
	require.NoError(t, err)
	assert.Equal(t, uint64(100), v)

	v, err = parseUint("0xff")
	require.NoError(t, err)
	assert.Equal(t, uint64(255), v)

	_, err = parseUint("nope")
	assert.Error(t, err)
}
