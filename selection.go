package pfb

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
)

// Bounds is a half-open box of global cells: [X0,X1) x [Y0,Y1) x [Z0,Z1).
type Bounds struct {
	X0, Y0, Z0 int
	X1, Y1, Z1 int
}

// Extent returns the box size along each axis.
func (b Bounds) Extent() (int, int, int) { return b.X1 - b.X0, b.Y1 - b.Y0, b.Z1 - b.Z0 }

// Validate checks that b is non-empty and inside a grid of fh's extent.
func (b Bounds) Validate(fh FileHeader) error {
	if b.X0 < 0 || b.Y0 < 0 || b.Z0 < 0 || b.X1 > fh.NX || b.Y1 > fh.NY || b.Z1 > fh.NZ ||
		b.X0 >= b.X1 || b.Y0 >= b.Y1 || b.Z0 >= b.Z1 {
		return fmt.Errorf("pfb: bounds [%d,%d)x[%d,%d)x[%d,%d) outside grid %dx%dx%d: %w",
			b.X0, b.X1, b.Y0, b.Y1, b.Z0, b.Z1, fh.NX, fh.NY, fh.NZ, ErrIndex)
	}
	return nil
}

// Selection is a set of subgrids identified by storage index.
type Selection struct {
	bm *roaring.Bitmap
}

// NewSelection returns an empty selection.
func NewSelection() *Selection {
	return &Selection{bm: roaring.New()}
}

// SelectBounds returns the subgrids of t that intersect b. b must already
// be valid for the grid t tiles.
func SelectBounds(t Topology, b Bounds) *Selection {
	s := NewSelection()
	x0, x1 := t.X.Tile(b.X0), t.X.Tile(b.X1-1)
	y0, y1 := t.Y.Tile(b.Y0), t.Y.Tile(b.Y1-1)
	z0, z1 := t.Z.Tile(b.Z0), t.Z.Tile(b.Z1-1)
	for gz := z0; gz <= z1; gz++ {
		for gy := y0; gy <= y1; gy++ {
			row := uint64(gz*t.P*t.Q + gy*t.P)
			s.bm.AddRange(row+uint64(x0), row+uint64(x1)+1)
		}
	}
	return s
}

// Add inserts storage index n.
func (s *Selection) Add(n int) { s.bm.Add(uint32(n)) }

// Contains reports whether storage index n is selected.
func (s *Selection) Contains(n int) bool { return n >= 0 && s.bm.Contains(uint32(n)) }

// Len returns the number of selected subgrids.
func (s *Selection) Len() int { return int(s.bm.GetCardinality()) }

// Union adds every subgrid of o to s.
func (s *Selection) Union(o *Selection) { s.bm.Or(o.bm) }

// Indices returns the selected storage indices in increasing order, which
// is also increasing file offset.
func (s *Selection) Indices() []int {
	out := make([]int, 0, s.Len())
	it := s.bm.Iterator()
	for it.HasNext() {
		out = append(out, int(it.Next()))
	}
	return out
}
