package batch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hydroframe/pfb"
	"github.com/hydroframe/pfb/blobstore"
	"golang.org/x/sync/errgroup"
)

// Runner reads jobs from a store.
type Runner struct {
	store blobstore.Store
	opts  options
}

// NewRunner returns a Runner over store.
func NewRunner(store blobstore.Store, optFns ...Option) *Runner {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Runner{store: store, opts: opts}
}

// Run reads every job and returns one Result per job, in job order. A
// failing file does not stop the run; the returned error is non-nil only
// when ctx ends first.
func (r *Runner) Run(ctx context.Context, jobs []Job) ([]Result, Summary, error) {
	start := time.Now()
	results := make([]Result, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.workers)
	for i, job := range jobs {
		g.Go(func() error {
			if err := r.opts.rc.AcquireWorker(gctx); err != nil {
				return err
			}
			defer r.opts.rc.ReleaseWorker()
			results[i] = r.runJob(gctx, job)
			return nil
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	sum := CollectStatus(results)
	sum.Elapsed = time.Since(start)
	if err != nil {
		r.opts.logger.ErrorContext(ctx, "batch aborted", "error", err, "files", sum.Files)
		return results, sum, err
	}
	r.opts.logger.InfoContext(ctx, "batch completed",
		"files", sum.Files,
		"ok", sum.OK,
		"skipped", sum.Skipped,
		"missing", sum.Missing,
		"failed", sum.Failed,
		"bytes", sum.Bytes,
		"elapsed", sum.Elapsed,
	)
	return results, sum, nil
}

func (r *Runner) runJob(ctx context.Context, job Job) Result {
	start := time.Now()
	res := Result{Name: job.Name}

	n, msg, err := r.read(ctx, job)
	res.Duration = time.Since(start)
	switch {
	case err == nil:
		res.Status, res.Bytes, res.Message = StatusOK, n, msg
	case errors.Is(err, blobstore.ErrNotFound) && r.opts.skipMissing:
		res.Status = StatusSkipped
	case errors.Is(err, blobstore.ErrNotFound):
		res.Status, res.Message = StatusMissing, err.Error()
	default:
		res.Status, res.Message = StatusFailed, err.Error()
	}
	return res
}

func (r *Runner) read(ctx context.Context, job Job) (int64, string, error) {
	logger := r.opts.logger
	if job.Mode == ModeSubgrid {
		logger = logger.WithSubgrid(job.X, job.Y, job.Z)
	}
	opts := append([]pfb.Option{
		pfb.WithLogger(logger),
		pfb.WithMetricsCollector(r.opts.metrics),
		pfb.WithResourceController(r.opts.rc),
	}, r.opts.fileOpts...)

	f, err := pfb.Open(ctx, r.store, job.Name, opts...)
	if err != nil {
		return 0, "", err
	}
	defer f.Close()

	headers := f.Header().Size() + pfb.SubgridHeaderSize
	switch job.Mode {
	case ModeHeader:
		return headers, f.Topology().String(), nil

	case ModeSubgrid:
		loc, err := f.Locate(job.X, job.Y, job.Z)
		if err != nil {
			return 0, "", err
		}
		if err := r.opts.rc.AcquireMemory(ctx, loc.DataLen()); err != nil {
			return 0, "", err
		}
		defer r.opts.rc.ReleaseMemory(loc.DataLen())
		g, err := f.ReadSubgridData(ctx, job.X, job.Y, job.Z)
		if err != nil {
			return 0, "", err
		}
		return headers + loc.DataLen(), fmt.Sprintf("%dx%dx%d at offset %d", g.NX, g.NY, g.NZ, loc.DataOffset), nil

	case ModeFull:
		fh := f.Header()
		size := int64(fh.Cells()) * pfb.CellSize
		if err := r.opts.rc.AcquireMemory(ctx, size); err != nil {
			return 0, "", err
		}
		defer r.opts.rc.ReleaseMemory(size)
		if _, err := f.ReadAll(ctx); err != nil {
			return 0, "", err
		}
		return f.Size(), fmt.Sprintf("%dx%dx%d in %d subgrids", fh.NX, fh.NY, fh.NZ, fh.NumSubgrids), nil

	default:
		return 0, "", fmt.Errorf("batch: unknown mode %v", job.Mode)
	}
}
