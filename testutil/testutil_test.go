package testutil

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	assert.Equal(t, []int{4, 3, 3}, Split(10, 3))
	assert.Equal(t, []int{19, 19, 19, 18, 18}, Split(93, 5))
	assert.Equal(t, []int{5, 5}, Split(10, 2))
}

func TestBuild_Size(t *testing.T) {
	l := Layout{NX: 10, NY: 10, NZ: 1, P: 3, Q: 3, R: 1}
	data := Build(l, nil)

	require.Len(t, data, 68+9*36+100*8)
	assert.Equal(t, uint32(10), binary.BigEndian.Uint32(data[24:]))
	assert.Equal(t, uint32(0), binary.BigEndian.Uint32(data[60:]), "padding")
	assert.Equal(t, uint32(9), binary.BigEndian.Uint32(data[64:]))
	// First subgrid header: origin 0,0,0 then extent 4x4x1.
	assert.Equal(t, uint32(4), binary.BigEndian.Uint32(data[68+12:]))

	offs := TileOffsets(l)
	require.Len(t, offs, 9)
	assert.Equal(t, int64(68), offs[0])
	assert.Equal(t, int64(68+36+16*8), offs[1])
}

func TestBuild_Packed(t *testing.T) {
	l := Layout{NX: 10, NY: 10, NZ: 1, P: 3, Q: 3, R: 1, Packed: true}
	data := Build(l, nil)

	require.Len(t, data, 64+9*36+100*8)
	assert.Equal(t, uint32(9), binary.BigEndian.Uint32(data[60:]))
	assert.Equal(t, uint32(0), binary.BigEndian.Uint32(data[64:]), "first subgrid x origin")
	assert.Equal(t, uint32(4), binary.BigEndian.Uint32(data[64+12:]))

	offs := TileOffsets(l)
	assert.Equal(t, int64(64), offs[0])
	assert.Equal(t, int64(64+36+16*8), offs[1])
	assert.Equal(t, int64(64), l.HeaderSize())
}

func TestRNG_Field(t *testing.T) {
	rng := NewRNG(4711)
	v := rng.Field(4, 3, 2, 250, 310)

	assert.Len(t, v, 24)
	for _, x := range v {
		assert.GreaterOrEqual(t, x, 250.0)
		assert.Less(t, x, 310.0)
	}
	assert.Equal(t, int64(4711), rng.Seed())
}
