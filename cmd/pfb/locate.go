package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *cli) locateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "locate <file> <x> <y> <z>",
		Short: "compute where subgrid (x, y, z) is stored without reading it",
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
			rows := [][]string{
				{"index", fmt.Sprintf("%d", loc.Index)},
				{"header offset", fmt.Sprintf("%d", loc.HeaderOffset)},
				{"data offset", fmt.Sprintf("%d", loc.DataOffset)},
				{"data bytes", fmt.Sprintf("%d", loc.DataLen())},
				{"origin", fmt.Sprintf("%d, %d, %d", loc.IX, loc.IY, loc.IZ)},
				{"extent", fmt.Sprintf("%dx%dx%d", loc.NX, loc.NY, loc.NZ)},
			}
			return c.render(cmd.OutOrStdout(), loc, []string{"field", "value"}, rows)
		},
	}
}
