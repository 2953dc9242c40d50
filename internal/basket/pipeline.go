package basket

import (
	"context"
	"time"

	"github.com/gsatlink/pos-backend/internal/scan"
	"github.com/gsatlink/pos-backend/pkg/logger"
	"github.com/gsatlink/pos-backend/pkg/metrics"
)

// Pipeline consumes the scan stream and feeds events through the basket
// service. One goroutine per process; scans arrive far slower than they are
// processed, so there is no worker fan-out.
type Pipeline struct {
	stream  *scan.Stream
	svc     Service
	logg    *logger.Logger
	metrics *metrics.PipelineMetrics
}

// NewPipeline wires the stream to the service. The dropped-scan hook is
// installed here so producers see the counter without knowing the metrics.
func NewPipeline(stream *scan.Stream, svc Service, logg *logger.Logger, m *metrics.PipelineMetrics) *Pipeline {
	p := &Pipeline{stream: stream, svc: svc, logg: logg, metrics: m}
	stream.DroppedHook = func(scan.Event) { m.IncDropped() }
	return p
}

// Run processes events until the context is canceled or the stream closes.
func (p *Pipeline) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-p.stream.Events():
			if !ok {
				return
			}
			p.handle(ctx, ev)
		}
	}
}

func (p *Pipeline) handle(ctx context.Context, ev scan.Event) {
	start := time.Now()
	if p.logg != nil {
		ctx = p.logg.WithSessionID(ctx, ev.SessionID)
		ctx = p.logg.WithScanSource(ctx, string(ev.Source))
	}

	result, err := p.svc.ProcessScan(ctx, ev)
	p.metrics.ObserveScan(string(ev.Source), time.Since(start))

	if err != nil {
		if p.logg != nil {
			p.logg.Error(ctx, "scan.process_failed", err)
		}
		return
	}
	if p.logg != nil {
		ctx = p.logg.WithFields(ctx, map[string]any{
			"outcome": string(result.Outcome),
			"matched": result.Matched,
		})
		p.logg.Info(ctx, "scan.processed")
	}
}
