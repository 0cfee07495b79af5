package main

import (
	"fmt"
	"sort"

	"github.com/hydroframe/pfb"
	"github.com/hydroframe/pfb/batch"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

type benchReport struct {
	Summary batch.Summary  `json:"summary"`
	Results []batch.Result `json:"results,omitempty"`
}

func (c *cli) benchCmd() *cobra.Command {
	var (
		cfg         = batch.DefaultForcingConfig()
		x, y, z     int
		mode        string
		workers     int
		skipMissing bool
		listAll     bool
		metricsAddr string
	)
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "read one subgrid from every file of a forcing plan",
		Long: `Reads the file header, the first subgrid header and one subgrid from
each daily forcing file of the plan, WY<year>/<dataset>.<variable>.<day>.pfb
under --plan-root, and reports how long the whole plan took.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.checkFormat(); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			m, err := batch.ParseMode(mode)
			if err != nil {
				return err
			}
			defer c.close()
			store, err := c.openStore(".")
			if err != nil {
				return err
			}
			fileOpts, err := c.fileOptions()
			if err != nil {
				return err
			}

			var mc pfb.MetricsCollector
			if metricsAddr != "" {
				reg := prometheus.NewRegistry()
				mc = newPromCollector(reg)
				addr, err := serveMetrics(c.ctx, metricsAddr, reg)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "serving metrics on http://%s/metrics\n", addr)
			}

			r := batch.NewRunner(store,
				batch.WithWorkers(workers),
				batch.WithResourceController(c.controller()),
				batch.WithLogger(c.logger()),
				batch.WithMetricsCollector(mc),
				batch.WithSkipMissing(skipMissing),
				batch.WithFileOptions(fileOpts...),
			)
			results, sum, err := r.Run(c.ctx, batch.Jobs(batch.ForcingNames(cfg), x, y, z, m))
			if err != nil {
				return err
			}

			rep := benchReport{Summary: sum}
			for _, res := range results {
				if listAll || (res.Status != batch.StatusOK && res.Status != batch.StatusSkipped) {
					rep.Results = append(rep.Results, res)
				}
			}
			if c.format == "json" {
				if err := c.render(cmd.OutOrStdout(), rep, nil, nil); err != nil {
					return err
				}
			} else {
				if len(rep.Results) > 0 {
					rows := make([][]string, 0, len(rep.Results))
					for _, res := range rep.Results {
						rows = append(rows, []string{res.Name, string(res.Status), res.Duration.String(), res.Message})
					}
					if err := c.render(cmd.OutOrStdout(), nil, []string{"file", "status", "duration", "message"}, rows); err != nil {
						return err
					}
				}
				if err := c.render(cmd.OutOrStdout(), nil, []string{"status", "files"}, statusRows(sum)); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), sum)
			}
			return sum.Err()
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&cfg.Root, "plan-root", cfg.Root, "directory or key prefix holding the WY<year> directories")
	fs.StringVar(&cfg.Dataset, "dataset", cfg.Dataset, "dataset name in the file names")
	fs.IntSliceVar(&cfg.WaterYears, "years", cfg.WaterYears, "water years to read")
	fs.StringSliceVar(&cfg.Variables, "variables", cfg.Variables, "forcing variables to read")
	fs.IntVar(&cfg.Days, "days", cfg.Days, "number of days per water year, starting at day 1")
	fs.IntVar(&x, "x", 24, "subgrid x coordinate")
	fs.IntVar(&y, "y", 24, "subgrid y coordinate")
	fs.IntVar(&z, "z", 0, "subgrid z coordinate")
	fs.StringVar(&mode, "mode", "subgrid", "what to read from each file: subgrid, full or header")
	fs.IntVarP(&workers, "workers", "w", 4, "number of files read at once")
	fs.BoolVar(&skipMissing, "skip-missing", true, "skip files that do not exist instead of reporting them")
	fs.BoolVar(&listAll, "list", false, "list every file, not only failures")
	fs.StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while running")
	return cmd
}

func statusRows(s batch.Summary) [][]string {
	counts := map[string]int{
		string(batch.StatusOK):      s.OK,
		string(batch.StatusSkipped): s.Skipped,
		string(batch.StatusMissing): s.Missing,
		string(batch.StatusFailed):  s.Failed,
	}
	keys := make([]string, 0, len(counts))
	for k, n := range counts {
		if n > 0 {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, []string{k, fmt.Sprintf("%d", counts[k])})
	}
	return rows
}
