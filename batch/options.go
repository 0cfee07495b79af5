package batch

import (
	"github.com/hydroframe/pfb"
	"github.com/hydroframe/pfb/resource"
)

type options struct {
	workers     int
	rc          *resource.Controller
	logger      *pfb.Logger
	metrics     pfb.MetricsCollector
	skipMissing bool
	fileOpts    []pfb.Option
}

func defaultOptions() options {
	return options{
		workers: 4,
		logger:  pfb.NoopLogger(),
		metrics: pfb.NoopMetricsCollector{},
	}
}

// Option configures a Runner.
type Option func(*options)

// WithWorkers sets how many files are read at once. Default 4.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithResourceController shares rc with every opened file and charges
// decoded subgrids against its memory budget. Its worker slots further
// bound concurrency.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.rc = rc
	}
}

// WithLogger sets the logger for the runner and the files it opens.
func WithLogger(l *pfb.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetricsCollector sets the collector passed to every opened file.
func WithMetricsCollector(mc pfb.MetricsCollector) Option {
	return func(o *options) {
		if mc != nil {
			o.metrics = mc
		}
	}
}

// WithSkipMissing reports files that do not exist as skipped rather than
// missing, so they do not count against the run.
func WithSkipMissing(skip bool) Option {
	return func(o *options) {
		o.skipMissing = skip
	}
}

// WithFileOptions appends options used for every pfb.Open, such as
// pfb.WithTopology.
func WithFileOptions(opts ...pfb.Option) Option {
	return func(o *options) {
		o.fileOpts = append(o.fileOpts, opts...)
	}
}
