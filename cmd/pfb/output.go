package main

import (
	"fmt"
	"io"
	"math"

	"github.com/hydroframe/pfb"
	"github.com/hydroframe/pfb/codec"
	"github.com/olekukonko/tablewriter"
)

// render writes v as JSON, or rows as a table under header.
func (c *cli) render(w io.Writer, v any, header []string, rows [][]string) error {
	if c.format == "json" {
		enc, ok := codec.ByName(c.codecName)
		if !ok {
			return fmt.Errorf("unknown codec %q", c.codecName)
		}
		return codec.Encode(w, enc, v)
	}
	tbl := tablewriter.NewWriter(w)
	tbl.SetHeader(header)
	tbl.SetAutoWrapText(false)
	tbl.AppendBulk(rows)
	tbl.Render()
	return nil
}

type gridStats struct {
	NX    int     `json:"nx"`
	NY    int     `json:"ny"`
	NZ    int     `json:"nz"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Mean  float64 `json:"mean"`
	First float64 `json:"first"`
}

func statsOf(g *pfb.Grid) gridStats {
	s := gridStats{NX: g.NX, NY: g.NY, NZ: g.NZ, Min: math.Inf(1), Max: math.Inf(-1)}
	if len(g.Data) == 0 {
		return s
	}
	var sum float64
	for _, v := range g.Data {
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
		sum += v
	}
	s.Mean = sum / float64(len(g.Data))
	s.First = g.Data[0]
	return s
}

func (s gridStats) rows() [][]string {
	return [][]string{
		{"shape", fmt.Sprintf("%dx%dx%d", s.NX, s.NY, s.NZ)},
		{"min", fmt.Sprintf("%g", s.Min)},
		{"max", fmt.Sprintf("%g", s.Max)},
		{"mean", fmt.Sprintf("%g", s.Mean)},
		{"first", fmt.Sprintf("%g", s.First)},
	}
}
