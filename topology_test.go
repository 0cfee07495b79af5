package pfb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAxis(t *testing.T) {
	a := Axis{Count: 5, Full: 19, Remainder: 3}

	assert.Equal(t, 19, a.Size(0))
	assert.Equal(t, 19, a.Size(2))
	assert.Equal(t, 18, a.Size(3))
	assert.Equal(t, 18, a.Size(4))
	assert.Equal(t, 57, a.Span(3))
	assert.Equal(t, 75, a.Span(4))
	assert.Equal(t, 93, a.Total())

	assert.Equal(t, 2, a.Tile(56))
	assert.Equal(t, 3, a.Tile(57))
	assert.Equal(t, 3, a.Tile(74))
	assert.Equal(t, 4, a.Tile(75))
	assert.Equal(t, 4, a.Tile(92))
}

func TestAxis_TileMatchesSpan(t *testing.T) {
	for _, a := range []Axis{
		{Count: 5, Full: 19, Remainder: 3},
		{Count: 3, Full: 4, Remainder: 1},
		{Count: 4, Full: 3, Remainder: 4},
		{Count: 3, Full: 1, Remainder: 3},
		{Count: 6, Full: 2, Remainder: 4},
		{Count: 1, Full: 7, Remainder: 1},
	} {
		for i := 0; i < a.Count; i++ {
			for c := a.Span(i); c < a.Span(i+1); c++ {
				require.Equal(t, i, a.Tile(c), "axis %+v cell %d", a, c)
			}
		}
	}
}

func TestDeriveTopology(t *testing.T) {
	tests := []struct {
		name    string
		nx, ny  int
		nz      int
		count   int
		first   [3]int
		want    Topology
		wantErr bool
	}{
		{
			name: "uneven 10 by 4", nx: 10, ny: 10, nz: 1, count: 9, first: [3]int{4, 4, 1},
			want: Topology{P: 3, Q: 3, R: 1,
				X: Axis{Count: 3, Full: 4, Remainder: 1},
				Y: Axis{Count: 3, Full: 4, Remainder: 1},
				Z: Axis{Count: 1, Full: 1, Remainder: 1}},
		},
		{
			name: "93 by 19", nx: 93, ny: 1, nz: 1, count: 5, first: [3]int{19, 1, 1},
			want: Topology{P: 5, Q: 1, R: 1,
				X: Axis{Count: 5, Full: 19, Remainder: 3},
				Y: Axis{Count: 1, Full: 1, Remainder: 1},
				Z: Axis{Count: 1, Full: 1, Remainder: 1}},
		},
		{
			name: "even split", nx: 10, ny: 6, nz: 4, count: 12, first: [3]int{5, 2, 2},
			want: Topology{P: 2, Q: 3, R: 2,
				X: Axis{Count: 2, Full: 5, Remainder: 2},
				Y: Axis{Count: 3, Full: 2, Remainder: 3},
				Z: Axis{Count: 2, Full: 2, Remainder: 2}},
		},
		{
			name: "unit tiles", nx: 3, ny: 1, nz: 1, count: 3, first: [3]int{1, 1, 1},
			want: Topology{P: 3, Q: 1, R: 1,
				X: Axis{Count: 3, Full: 1, Remainder: 3},
				Y: Axis{Count: 1, Full: 1, Remainder: 1},
				Z: Axis{Count: 1, Full: 1, Remainder: 1}},
		},
		{name: "93 by 20 cannot tile", nx: 93, ny: 1, nz: 1, count: 5, first: [3]int{20, 1, 1}, wantErr: true},
		{name: "first wider than grid", nx: 10, ny: 1, nz: 1, count: 1, first: [3]int{12, 1, 1}, wantErr: true},
		{name: "count mismatch", nx: 10, ny: 10, nz: 1, count: 8, first: [3]int{4, 4, 1}, wantErr: true},
		{name: "zero first extent", nx: 10, ny: 10, nz: 1, count: 9, first: [3]int{0, 4, 1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fh := FileHeader{NX: tt.nx, NY: tt.ny, NZ: tt.nz, NumSubgrids: tt.count}
			first := SubgridHeader{NX: tt.first[0], NY: tt.first[1], NZ: tt.first[2], RX: 1, RY: 1, RZ: 1}

			got, err := DeriveTopology(fh, first)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.nx, got.X.Total())
			assert.Equal(t, tt.ny, got.Y.Total())
			assert.Equal(t, tt.nz, got.Z.Total())
		})
	}
}

func TestDeriveTopology_RemainderBoundary(t *testing.T) {
	// 4 tiles led by a 5-cell tile cover 17 through 20 cells.
	for nx := 17; nx <= 20; nx++ {
		fh := FileHeader{NX: nx, NY: 1, NZ: 1, NumSubgrids: 4}
		topo, err := DeriveTopology(fh, SubgridHeader{NX: 5, NY: 1, NZ: 1})
		require.NoError(t, err, "nx=%d", nx)
		assert.Equal(t, nx-16, topo.X.Remainder, "nx=%d", nx)

		last := topo.X.Remainder - 1
		assert.Equal(t, 5, topo.X.Size(last), "nx=%d", nx)
		if topo.X.Remainder < topo.P {
			assert.Equal(t, 4, topo.X.Size(topo.X.Remainder), "nx=%d", nx)
		}
	}
}

func TestDeriveTopology_TooFewCells(t *testing.T) {
	fh := FileHeader{NX: 16, NY: 1, NZ: 1, NumSubgrids: 4}
	_, err := DeriveTopology(fh, SubgridHeader{NX: 5, NY: 1, NZ: 1})
	assert.ErrorIs(t, err, ErrFormat)
}

func TestNewTopology(t *testing.T) {
	fh := FileHeader{NX: 10, NY: 1, NZ: 1, NumSubgrids: 6}

	topo, err := NewTopology(fh, 6, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, Axis{Count: 6, Full: 2, Remainder: 4}, topo.X)
	var sizes []int
	for i := 0; i < topo.P; i++ {
		sizes = append(sizes, topo.X.Size(i))
	}
	assert.Equal(t, []int{2, 2, 2, 2, 1, 1}, sizes)

	// Ceiling division from the first subgrid gives 5 tiles, not 6.
	_, err = DeriveTopology(fh, SubgridHeader{NX: 2, NY: 1, NZ: 1})
	assert.ErrorIs(t, err, ErrFormat)

	_, err = NewTopology(fh, 11, 1, 1)
	assert.ErrorIs(t, err, ErrFormat)
	_, err = NewTopology(fh, 0, 1, 1)
	assert.ErrorIs(t, err, ErrFormat)
	_, err = NewTopology(fh, 5, 1, 1)
	assert.ErrorIs(t, err, ErrFormat)
}

func TestTopology_SizeClasses(t *testing.T) {
	uneven := Topology{P: 3, Q: 3, R: 1,
		X: Axis{Count: 3, Full: 4, Remainder: 1},
		Y: Axis{Count: 3, Full: 4, Remainder: 1},
		Z: Axis{Count: 1, Full: 1, Remainder: 1}}
	assert.Equal(t, [][2]int{{4, 4}, {3, 4}, {4, 3}, {3, 3}}, uneven.SizeClasses())

	even := Topology{P: 2, Q: 2, R: 1,
		X: Axis{Count: 2, Full: 5, Remainder: 2},
		Y: Axis{Count: 2, Full: 5, Remainder: 2},
		Z: Axis{Count: 1, Full: 1, Remainder: 1}}
	assert.Equal(t, [][2]int{{5, 5}}, even.SizeClasses())

	xOnly := Topology{P: 5, Q: 2, R: 1,
		X: Axis{Count: 5, Full: 19, Remainder: 3},
		Y: Axis{Count: 2, Full: 4, Remainder: 2},
		Z: Axis{Count: 1, Full: 1, Remainder: 1}}
	assert.Equal(t, [][2]int{{19, 4}, {18, 4}}, xOnly.SizeClasses())
}

func TestTopology_String(t *testing.T) {
	topo := Topology{P: 3, Q: 3, R: 1,
		X: Axis{Count: 3, Full: 4, Remainder: 1},
		Y: Axis{Count: 3, Full: 4, Remainder: 1},
		Z: Axis{Count: 1, Full: 1, Remainder: 1}}
	assert.Equal(t, "3x3x1 (full 4x4x1, remainder 1/1/1)", topo.String())
	assert.Equal(t, 9, topo.NumSubgrids())
}
