package main

import (
	"fmt"

	"github.com/hydroframe/pfb"
	"github.com/spf13/cobra"
)

type infoReport struct {
	Name        string            `json:"name"`
	Size        int64             `json:"size"`
	Layout      string            `json:"layout"`
	Header      pfb.FileHeader    `json:"header"`
	First       pfb.SubgridHeader `json:"first_subgrid"`
	P           int               `json:"p"`
	Q           int               `json:"q"`
	R           int               `json:"r"`
	Full        [3]int            `json:"full"`
	Remainder   [3]int            `json:"remainder"`
	SizeClasses [][2]int          `json:"size_classes"`
}

func (c *cli) infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <file>",
		Short: "print the file header, topology and subgrid size classes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.checkFormat(); err != nil {
				return err
			}
			defer c.close()
			f, err := c.openFile(args[0])
			if err != nil {
				return err
			}
			defer closeFile(f, cmd.ErrOrStderr())

			fh, t := f.Header(), f.Topology()
			r := infoReport{
				Name:        args[0],
				Size:        f.Size(),
				Layout:      fh.Layout().String(),
				Header:      fh,
				First:       f.First(),
				P:           t.P,
				Q:           t.Q,
				R:           t.R,
				Full:        [3]int{t.X.Full, t.Y.Full, t.Z.Full},
				Remainder:   [3]int{t.X.Remainder, t.Y.Remainder, t.Z.Remainder},
				SizeClasses: t.SizeClasses(),
			}
			rows := [][]string{
				{"size", fmt.Sprintf("%d", r.Size)},
				{"header layout", r.Layout},
				{"origin", fmt.Sprintf("%g, %g, %g", fh.X0, fh.Y0, fh.Z0)},
				{"extent", fmt.Sprintf("%dx%dx%d", fh.NX, fh.NY, fh.NZ)},
				{"spacing", fmt.Sprintf("%g, %g, %g", fh.DX, fh.DY, fh.DZ)},
				{"subgrids", fmt.Sprintf("%d", fh.NumSubgrids)},
				{"topology", t.String()},
			}
			for i, sc := range r.SizeClasses {
				rows = append(rows, []string{fmt.Sprintf("size class %d", i), fmt.Sprintf("%dx%d", sc[0], sc[1])})
			}
			return c.render(cmd.OutOrStdout(), r, []string{"field", "value"}, rows)
		},
	}
}
