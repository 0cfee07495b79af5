package pfb

import "fmt"

// Grid is a dense block of cell values. X varies fastest, matching the order
// in which ParFlow writes a subgrid: Data[(z*NY+y)*NX+x].
type Grid struct {
	NX, NY, NZ int
	Data       []float64
}

// NewGrid allocates a zeroed grid.
func NewGrid(nx, ny, nz int) *Grid {
	return &Grid{NX: nx, NY: ny, NZ: nz, Data: make([]float64, nx*ny*nz)}
}

// At returns the value of cell (x, y, z).
func (g *Grid) At(x, y, z int) float64 { return g.Data[g.offset(x, y, z)] }

// Set stores v at cell (x, y, z).
func (g *Grid) Set(x, y, z int, v float64) { g.Data[g.offset(x, y, z)] = v }

func (g *Grid) offset(x, y, z int) int {
	if x < 0 || x >= g.NX || y < 0 || y >= g.NY || z < 0 || z >= g.NZ {
		panic(fmt.Sprintf("pfb: cell (%d,%d,%d) outside grid %dx%dx%d", x, y, z, g.NX, g.NY, g.NZ))
	}
	return (z*g.NY+y)*g.NX + x
}

// Plane returns z-plane k as a grid with NZ == 1. The data is shared.
func (g *Grid) Plane(k int) *Grid {
	if k < 0 || k >= g.NZ {
		panic(fmt.Sprintf("pfb: plane %d outside grid depth %d", k, g.NZ))
	}
	n := g.NX * g.NY
	return &Grid{NX: g.NX, NY: g.NY, NZ: 1, Data: g.Data[k*n : (k+1)*n : (k+1)*n]}
}

// Shape returns (NX, NY, NZ).
func (g *Grid) Shape() (int, int, int) { return g.NX, g.NY, g.NZ }

// paste copies the box of src starting at (sx,sy,sz) with extent (nx,ny,nz)
// into g at (dx,dy,dz). Rows are copied whole.
func (g *Grid) paste(src *Grid, sx, sy, sz, dx, dy, dz, nx, ny, nz int) {
	for z := 0; z < nz; z++ {
		for y := 0; y < ny; y++ {
			from := src.offset(sx, sy+y, sz+z)
			to := g.offset(dx, dy+y, dz+z)
			copy(g.Data[to:to+nx], src.Data[from:from+nx])
		}
	}
}
