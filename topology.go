package pfb

import "fmt"

// Axis describes how one global extent is split into tiles.
//
// The first Remainder tiles have Full cells and the remaining Count-Remainder
// tiles have Full-1 cells. When the extent divides evenly, Remainder == Count.
type Axis struct {
	Count     int
	Full      int
	Remainder int
}

// Size returns the number of cells in tile i.
func (a Axis) Size(i int) int {
	if i < a.Remainder {
		return a.Full
	}
	return a.Full - 1
}

// Span returns the number of cells covered by the first k tiles, which is
// also the global start index of tile k.
func (a Axis) Span(k int) int {
	full := min(k, a.Remainder)
	short := max(k-a.Remainder, 0)
	return full*a.Full + short*(a.Full-1)
}

// Total returns the number of cells covered by all tiles.
func (a Axis) Total() int { return a.Span(a.Count) }

// Tile returns the index of the tile containing global cell c.
func (a Axis) Tile(c int) int {
	split := a.Remainder * a.Full
	if c < split {
		return c / a.Full
	}
	if a.Full == 1 {
		// Only reachable when Remainder == Count.
		return a.Count - 1
	}
	return a.Remainder + (c-split)/(a.Full-1)
}

// Topology is the P x Q x R tiling of a PFB file, derived from the file
// header and the first subgrid header. It is an immutable value.
type Topology struct {
	P, Q, R int
	X, Y, Z Axis
}

// NumSubgrids returns P*Q*R.
func (t Topology) NumSubgrids() int { return t.P * t.Q * t.R }

// SizeClasses returns the distinct (nx, ny) horizontal tile shapes, at most
// four, in storage order of first appearance.
func (t Topology) SizeClasses() [][2]int {
	var out [][2]int
	seen := make(map[[2]int]bool, 4)
	for _, h := range []int{t.Y.Full, t.Y.Full - 1} {
		for _, w := range []int{t.X.Full, t.X.Full - 1} {
			c := [2]int{w, h}
			if seen[c] {
				continue
			}
			if (w == t.X.Full || t.X.Remainder < t.P) && (h == t.Y.Full || t.Y.Remainder < t.Q) {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	return out
}

func (t Topology) String() string {
	return fmt.Sprintf("%dx%dx%d (full %dx%dx%d, remainder %d/%d/%d)",
		t.P, t.Q, t.R, t.X.Full, t.Y.Full, t.Z.Full, t.X.Remainder, t.Y.Remainder, t.Z.Remainder)
}

// DeriveTopology computes the tiling implied by the first subgrid's extent:
// each count is the ceiling of global/first, and the remainder is the
// number of tiles that keep the first subgrid's size.
func DeriveTopology(fh FileHeader, first SubgridHeader) (Topology, error) {
	x, err := deriveAxis("x", fh.NX, first.NX, fh.SubgridsOffset())
	if err != nil {
		return Topology{}, err
	}
	y, err := deriveAxis("y", fh.NY, first.NY, fh.SubgridsOffset())
	if err != nil {
		return Topology{}, err
	}
	z, err := deriveAxis("z", fh.NZ, first.NZ, fh.SubgridsOffset())
	if err != nil {
		return Topology{}, err
	}
	return newTopology(fh, x, y, z)
}

// NewTopology builds the tiling for a known process grid p x q x r, as used
// by ParFlow's Process.Topology keys. The first nx%p tiles of each axis get
// one extra cell.
func NewTopology(fh FileHeader, p, q, r int) (Topology, error) {
	x, err := splitAxis("x", fh.NX, p, fh.SubgridsOffset())
	if err != nil {
		return Topology{}, err
	}
	y, err := splitAxis("y", fh.NY, q, fh.SubgridsOffset())
	if err != nil {
		return Topology{}, err
	}
	z, err := splitAxis("z", fh.NZ, r, fh.SubgridsOffset())
	if err != nil {
		return Topology{}, err
	}
	return newTopology(fh, x, y, z)
}

func newTopology(fh FileHeader, x, y, z Axis) (Topology, error) {
	t := Topology{P: x.Count, Q: y.Count, R: z.Count, X: x, Y: y, Z: z}
	if t.NumSubgrids() != fh.NumSubgrids {
		return Topology{}, malformed("derive topology", fh.countOffset(),
			"topology %dx%dx%d implies %d subgrids, header declares %d", t.P, t.Q, t.R, t.NumSubgrids(), fh.NumSubgrids)
	}
	return t, nil
}

func deriveAxis(name string, global, first int, off int64) (Axis, error) {
	if first <= 0 || global <= 0 {
		return Axis{}, malformed("derive topology", off, "axis %s: non-positive extent (global %d, first subgrid %d)", name, global, first)
	}
	count := (global + first - 1) / first
	rem := global - count*(first-1)
	if rem <= 0 {
		rem = count
	}
	a := Axis{Count: count, Full: first, Remainder: rem}
	if count == 0 || a.Total() != global {
		return Axis{}, malformed("derive topology", off,
			"axis %s: %d tiles of %d or %d cells cannot cover %d", name, count, first, first-1, global)
	}
	return a, nil
}

func splitAxis(name string, global, count int, off int64) (Axis, error) {
	if count <= 0 || count > global {
		return Axis{}, malformed("derive topology", off, "axis %s: cannot split %d cells into %d tiles", name, global, count)
	}
	full := (global + count - 1) / count
	rem := global - count*(full-1)
	return Axis{Count: count, Full: full, Remainder: rem}, nil
}
