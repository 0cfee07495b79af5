package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/hydroframe/pfb"
	"github.com/spf13/cobra"
)

type readReport struct {
	Location pfb.SubgridLocation `json:"location"`
	Stats    gridStats           `json:"stats"`
	Duration time.Duration       `json:"duration_ns"`
	Verified bool                `json:"verified,omitempty"`
}

func (c *cli) readCmd() *cobra.Command {
	var (
		plane int
		full  bool
	)
	cmd := &cobra.Command{
		Use:   "read <file> <x> <y> <z>",
		Short: "read one subgrid and print value statistics",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.checkFormat(); err != nil {
				return err
			}
			x, y, z, err := parseCoords(args[1:])
			if err != nil {
				return err
			}
			defer c.close()
			f, err := c.openFile(args[0])
			if err != nil {
				return err
			}
			defer closeFile(f, cmd.ErrOrStderr())

			loc, err := f.Locate(x, y, z)
			if err != nil {
				return err
			}
			start := time.Now()
			var g *pfb.Grid
			if plane >= 0 {
				g, err = f.ReadPlane(c.ctx, x, y, z, plane)
			} else {
				var sg *pfb.Subgrid
				sg, err = f.ReadSubgrid(c.ctx, x, y, z)
				if sg != nil {
					g = sg.Grid
				}
			}
			if err != nil {
				return err
			}
			r := readReport{Location: loc, Stats: statsOf(g), Duration: time.Since(start)}

			if full {
				all, err := f.ReadAll(c.ctx)
				if err != nil {
					return err
				}
				if err := compareSubgrid(all, g, loc, plane); err != nil {
					return err
				}
				r.Verified = true
			}

			rows := append([][]string{
				{"offset", fmt.Sprintf("%d", loc.DataOffset)},
				{"duration", r.Duration.String()},
			}, r.Stats.rows()...)
			if r.Verified {
				rows = append(rows, []string{"sequential read", "matches"})
			}
			return c.render(cmd.OutOrStdout(), r, []string{"field", "value"}, rows)
		},
	}
	cmd.Flags().IntVar(&plane, "plane", -1, "read only z-plane k of the subgrid")
	cmd.Flags().BoolVar(&full, "full", false, "also read the whole file sequentially and check the subgrid against it")
	return cmd
}

// compareSubgrid checks g against the cells of loc in the global grid.
func compareSubgrid(all, g *pfb.Grid, loc pfb.SubgridLocation, plane int) error {
	z0, nz := 0, loc.NZ
	if plane >= 0 {
		z0, nz = plane, 1
	}
	for z := 0; z < nz; z++ {
		for y := 0; y < loc.NY; y++ {
			for x := 0; x < loc.NX; x++ {
				want := all.At(loc.IX+x, loc.IY+y, loc.IZ+z0+z)
				if got := g.At(x, y, z); got != want {
					return fmt.Errorf("cell (%d,%d,%d): located read %g, sequential read %g",
						loc.IX+x, loc.IY+y, loc.IZ+z0+z, got, want)
				}
			}
		}
	}
	return nil
}

func (c *cli) subsetCmd() *cobra.Command {
	var (
		bounds      string
		concurrency int
	)
	cmd := &cobra.Command{
		Use:   "subset <file>",
		Short: "read a global cell box from the subgrids it touches",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.checkFormat(); err != nil {
				return err
			}
			if bounds == "" {
				return errors.New("--bounds is required")
			}
			v, err := parseInts(bounds, 6)
			if err != nil {
				return fmt.Errorf("--bounds: %w", err)
			}
			b := pfb.Bounds{X0: v[0], Y0: v[1], Z0: v[2], X1: v[3], Y1: v[4], Z1: v[5]}

			defer c.close()
			f, err := c.openFile(args[0], pfb.WithConcurrency(concurrency))
			if err != nil {
				return err
			}
			defer closeFile(f, cmd.ErrOrStderr())
			if err := b.Validate(f.Header()); err != nil {
				return err
			}

			start := time.Now()
			g, err := f.ReadBounds(c.ctx, b)
			if err != nil {
				return err
			}
			sel := pfb.SelectBounds(f.Topology(), b)
			r := struct {
				Bounds   pfb.Bounds    `json:"bounds"`
				Subgrids []int         `json:"subgrids"`
				Stats    gridStats     `json:"stats"`
				Duration time.Duration `json:"duration_ns"`
			}{b, sel.Indices(), statsOf(g), time.Since(start)}

			rows := append([][]string{
				{"subgrids", fmt.Sprintf("%d", sel.Len())},
				{"duration", r.Duration.String()},
			}, r.Stats.rows()...)
			return c.render(cmd.OutOrStdout(), r, []string{"field", "value"}, rows)
		},
	}
	cmd.Flags().StringVar(&bounds, "bounds", "", "half-open cell box x0,y0,z0,x1,y1,z1")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "c", 4, "number of subgrids read at once")
	return cmd
}
