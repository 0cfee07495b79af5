package pfb

import (
	"log/slog"

	"github.com/hydroframe/pfb/resource"
)

type options struct {
	logger           *Logger
	metricsCollector MetricsCollector
	topology         *[3]int
	concurrency      int
	rc               *resource.Controller
	verifyHeaders    bool
	layout           HeaderLayout
}

func defaultOptions() options {
	return options{
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
		concurrency:      4,
		verifyHeaders:    true,
	}
}

// Option configures how a File is opened and read.
type Option func(*options)

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := pfb.NewJSONLogger(slog.LevelDebug)
//	f, _ := pfb.Open(ctx, store, "press.00010.pfb", pfb.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector configures a metrics collector for monitoring reads.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &pfb.BasicMetricsCollector{}
//	f, _ := pfb.Open(ctx, store, name, pfb.WithMetricsCollector(metrics))
//	// ... read subgrids ...
//	stats := metrics.GetStats()
//	fmt.Printf("Reads: %d, Bytes: %d\n", stats.ReadCount, stats.ReadBytes)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithTopology uses a known p x q x r process grid instead of deriving the
// topology from the first subgrid's extent. The first subgrid header must
// still agree with the resulting tiling.
//
// Ceiling division cannot recover every decomposition: 10 cells over 6
// tiles (2,2,2,2,1,1) looks like 5 tiles of 2 from the first subgrid alone.
func WithTopology(p, q, r int) Option {
	return func(o *options) {
		o.topology = &[3]int{p, q, r}
	}
}

// WithConcurrency bounds the number of subgrid reads in flight for
// multi-subgrid operations such as ReadBounds. Values < 1 mean 1.
func WithConcurrency(n int) Option {
	return func(o *options) {
		if n < 1 {
			n = 1
		}
		o.concurrency = n
	}
}

// WithResourceController applies the controller's IO rate limit to every
// read issued through the File.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.rc = rc
	}
}

// WithHeaderCheck controls whether ReadSubgrid reads the target's own header
// along with its data and verifies it against the computed location.
// Enabled by default.
func WithHeaderCheck(enabled bool) Option {
	return func(o *options) {
		o.verifyHeaders = enabled
	}
}

// WithHeaderLayout fixes the file header layout instead of detecting it.
// ParFlow writes LayoutPacked.
func WithHeaderLayout(l HeaderLayout) Option {
	return func(o *options) {
		o.layout = l
	}
}
