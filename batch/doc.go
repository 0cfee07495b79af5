// Package batch reads one subgrid (or header, or whole grid) from many PFB
// files concurrently and reports per-file status and throughput.
//
// It is the Go form of the forcing-file read benchmark: a plan of water
// years, variables and days expands into file names, each file becomes a
// Job, and a Runner works the jobs with a bounded number of workers.
//
//	cfg := batch.DefaultForcingConfig()
//	jobs := batch.Jobs(batch.ForcingNames(cfg), 24, 24, 0, batch.ModeSubgrid)
//	r := batch.NewRunner(store, batch.WithWorkers(4), batch.WithSkipMissing(true))
//	results, sum, err := r.Run(ctx, jobs)
//	fmt.Println(sum)
package batch
