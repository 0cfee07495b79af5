package testutil

import (
	"encoding/binary"
	"math"
	"math/rand"
	"sync"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Field returns nx*ny*nz values uniformly distributed in [minVal, maxVal).
func (r *RNG) Field(nx, ny, nz int, minVal, maxVal float64) []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]float64, nx*ny*nz)
	for i := range out {
		out[i] = minVal + r.rand.Float64()*(maxVal-minVal)
	}
	return out
}

// CellValue is a value that encodes the cell's global coordinate, so a
// misplaced read shows up as a wrong number rather than a plausible one.
func CellValue(x, y, z int) float64 {
	return float64(x) + 1000*float64(y) + 1e6*float64(z)
}

// CoordField returns CellValue for every cell of an nx*ny*nz grid, x fastest.
func CoordField(nx, ny, nz int) []float64 {
	out := make([]float64, 0, nx*ny*nz)
	for z := 0; z < nz; z++ {
		for y := 0; y < ny; y++ {
			for x := 0; x < nx; x++ {
				out = append(out, CellValue(x, y, z))
			}
		}
	}
	return out
}

// Layout describes a synthetic PFB file.
type Layout struct {
	NX, NY, NZ int
	// P, Q, R split each axis the way ParFlow does: the first n%p tiles get
	// one extra cell.
	P, Q, R int

	// XSizes, YSizes, ZSizes override the split with explicit tile sizes.
	XSizes, YSizes, ZSizes []int

	Origin  [3]float64
	Spacing [3]float64

	// Packed writes the subgrid count right after the spacing, as ParFlow
	// does, instead of after four bytes of padding.
	Packed bool
}

// HeaderSize returns the offset of the first subgrid header.
func (l Layout) HeaderSize() int64 {
	if l.Packed {
		return 64
	}
	return 68
}

// Split returns the tile sizes ParFlow uses for n cells over p tiles.
func Split(n, p int) []int {
	out := make([]int, p)
	for i := range out {
		out[i] = n / p
		if i < n%p {
			out[i]++
		}
	}
	return out
}

func (l Layout) sizes() (xs, ys, zs []int) {
	xs, ys, zs = l.XSizes, l.YSizes, l.ZSizes
	if xs == nil {
		xs = Split(l.NX, l.P)
	}
	if ys == nil {
		ys = Split(l.NY, l.Q)
	}
	if zs == nil {
		zs = Split(l.NZ, l.R)
	}
	return xs, ys, zs
}

// Build encodes a PFB file for layout l. values holds the global grid, x
// fastest; nil means CoordField. Subgrids are written z-major, then y, then
// x, each as a header followed by its cells, x fastest.
func Build(l Layout, values []float64) []byte {
	if values == nil {
		values = CoordField(l.NX, l.NY, l.NZ)
	}
	xs, ys, zs := l.sizes()

	var buf []byte
	for _, v := range l.Origin {
		buf = appendF64(buf, v)
	}
	buf = appendI32(buf, l.NX, l.NY, l.NZ)
	for _, v := range l.Spacing {
		buf = appendF64(buf, v)
	}
	if !l.Packed {
		buf = appendI32(buf, 0)
	}
	buf = appendI32(buf, len(xs)*len(ys)*len(zs))

	iz := 0
	for _, nz := range zs {
		iy := 0
		for _, ny := range ys {
			ix := 0
			for _, nx := range xs {
				buf = appendI32(buf, ix, iy, iz, nx, ny, nz, 1, 1, 1)
				for z := iz; z < iz+nz; z++ {
					for y := iy; y < iy+ny; y++ {
						for x := ix; x < ix+nx; x++ {
							buf = appendF64(buf, values[(z*l.NY+y)*l.NX+x])
						}
					}
				}
				ix += nx
			}
			iy += ny
		}
		iz += nz
	}
	return buf
}

// TileOffsets returns the header offset of every subgrid in storage order,
// found by walking the layout rather than by arithmetic.
func TileOffsets(l Layout) []int64 {
	xs, ys, zs := l.sizes()
	var out []int64
	off := l.HeaderSize()
	for _, nz := range zs {
		for _, ny := range ys {
			for _, nx := range xs {
				out = append(out, off)
				off += 36 + int64(nx*ny*nz)*8
			}
		}
	}
	return out
}

func appendI32(b []byte, vs ...int) []byte {
	for _, v := range vs {
		b = binary.BigEndian.AppendUint32(b, uint32(int32(v)))
	}
	return b
}

func appendF64(b []byte, v float64) []byte {
	return binary.BigEndian.AppendUint64(b, math.Float64bits(v))
}
