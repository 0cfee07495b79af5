package pfb

// SubgridLocation is where one subgrid lives in a PFB file.
type SubgridLocation struct {
	GridX, GridY, GridZ int
	// Index is the storage position of the subgrid: z-major, then y, then x.
	Index int

	HeaderOffset int64
	DataOffset   int64

	// IX, IY, IZ is the subgrid's origin in global cell coordinates.
	IX, IY, IZ int
	NX, NY, NZ int
}

// Cells returns NX*NY*NZ.
func (l SubgridLocation) Cells() int { return l.NX * l.NY * l.NZ }

// DataLen is the size of the subgrid's data block in bytes.
func (l SubgridLocation) DataLen() int64 { return int64(l.Cells()) * CellSize }

// End is the offset one past the subgrid's last data byte.
func (l SubgridLocation) End() int64 { return l.DataOffset + l.DataLen() }

// Locate computes the header and data offsets of subgrid (gx, gy, gz) from
// the topology alone. No subgrid bytes are read.
func Locate(fh FileHeader, t Topology, gx, gy, gz int) (SubgridLocation, error) {
	if gx < 0 || gx >= t.P || gy < 0 || gy >= t.Q || gz < 0 || gz >= t.R {
		return SubgridLocation{}, &IndexError{X: gx, Y: gy, Z: gz, P: t.P, Q: t.Q, R: t.R}
	}

	index := gz*t.P*t.Q + gy*t.P + gx

	w, rx := t.X.Full, t.X.Remainder
	h, ry := t.Y.Full, t.Y.Remainder
	depth := int64(t.Z.Size(gz))

	// Whole z layers before the target tile each cover the full horizontal
	// extent, whatever their size classes.
	cells := int64(fh.NX) * int64(fh.NY) * int64(t.Z.Span(gz))

	// Complete rows before gy, split into the four size classes.
	fullRows := int64(min(gy, ry))
	shortRows := int64(max(gy-ry, 0))
	fullCols := int64(rx)
	shortCols := int64(t.P - rx)
	cells += depth * int64(w) * int64(h) * fullRows * fullCols
	cells += depth * int64(w-1) * int64(h) * fullRows * shortCols
	cells += depth * int64(w) * int64(h-1) * shortRows * fullCols
	cells += depth * int64(w-1) * int64(h-1) * shortRows * shortCols

	// Tiles before gx in the target row.
	rowHeight := int64(t.Y.Size(gy))
	cells += depth * rowHeight * int64(w) * int64(min(gx, rx))
	cells += depth * rowHeight * int64(w-1) * int64(max(gx-rx, 0))

	hdr := fh.SubgridsOffset() + int64(index)*SubgridHeaderSize + cells*CellSize
	return SubgridLocation{
		GridX:        gx,
		GridY:        gy,
		GridZ:        gz,
		Index:        index,
		HeaderOffset: hdr,
		DataOffset:   hdr + SubgridHeaderSize,
		IX:           t.X.Span(gx),
		IY:           t.Y.Span(gy),
		IZ:           t.Z.Span(gz),
		NX:           t.X.Size(gx),
		NY:           t.Y.Size(gy),
		NZ:           t.Z.Size(gz),
	}, nil
}

// LocateIndex is Locate addressed by storage index.
// Indices outside [0, P*Q*R) map to coordinates Locate rejects.
func LocateIndex(fh FileHeader, t Topology, n int) (SubgridLocation, error) {
	pq := t.P * t.Q
	gz := n / pq
	gy := (n % pq) / t.P
	gx := n % t.P
	return Locate(fh, t, gx, gy, gz)
}

// checkBounds reports a *FormatError when loc's block extends past size.
func checkBounds(loc SubgridLocation, size int64) error {
	if loc.End() > size {
		return truncated("locate subgrid", loc.HeaderOffset, SubgridHeaderSize+loc.DataLen(), size)
	}
	return nil
}
