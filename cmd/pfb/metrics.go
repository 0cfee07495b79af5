package main

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// promCollector exports file metrics to Prometheus.
type promCollector struct {
	opens    *prometheus.CounterVec
	reads    *prometheus.CounterVec
	bytes    prometheus.Counter
	latency  *prometheus.HistogramVec
	subgrids prometheus.Counter
}

func newPromCollector(reg prometheus.Registerer) *promCollector {
	p := &promCollector{
		opens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pfb",
			Name:      "opens_total",
			Help:      "Files opened, by result.",
		}, []string{"result"}),
		reads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pfb",
			Name:      "reads_total",
			Help:      "Subgrid reads, by result.",
		}, []string{"result"}),
		bytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pfb",
			Name:      "read_bytes_total",
			Help:      "Bytes decoded by successful subgrid reads.",
		}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pfb",
			Name:      "op_duration_seconds",
			Help:      "Latency of open, read and scan operations.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"op"}),
		subgrids: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pfb",
			Name:      "scanned_subgrids_total",
			Help:      "Subgrids read by sequential and bounds scans.",
		}),
	}
	reg.MustRegister(p.opens, p.reads, p.bytes, p.latency, p.subgrids)
	return p
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (p *promCollector) RecordOpen(d time.Duration, err error) {
	p.opens.WithLabelValues(result(err)).Inc()
	p.latency.WithLabelValues("open").Observe(d.Seconds())
}

func (p *promCollector) RecordRead(n int64, d time.Duration, err error) {
	p.reads.WithLabelValues(result(err)).Inc()
	p.latency.WithLabelValues("read").Observe(d.Seconds())
	if err == nil {
		p.bytes.Add(float64(n))
	}
}

func (p *promCollector) RecordScan(n int, d time.Duration, err error) {
	p.latency.WithLabelValues("scan").Observe(d.Seconds())
	if err == nil {
		p.subgrids.Add(float64(n))
	}
}

// serveMetrics serves reg on addr until ctx ends.
func serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry) (net.Addr, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() { _ = srv.Serve(ln) }()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	return ln.Addr(), nil
}
