// Package profiler collects timing and value statistics during a batch run
// and reports them through logrus, periodically and on demand.
package profiler

import (
	"context"
	"runtime"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"
)

// Options configures a Profiler.
type Options struct {
	// ReportInterval specifies how often Start emits a report (default: 5s).
	ReportInterval time.Duration
	// MaxSamples caps the samples each average is taken over (default: 1000).
	MaxSamples int
}

// Profiler tracks operation timings and named metrics. All methods are safe
// for concurrent use.
type Profiler struct {
	logger         logrus.FieldLogger
	reportInterval time.Duration
	maxSamples     int

	mu         sync.Mutex
	startTime  time.Time
	metrics    map[string]*tracker
	operations map[string]*tracker

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// tracker keeps a bounded window of samples plus all-time extremes.
type tracker struct {
	values []float64
	min    float64
	max    float64
	count  int64
}

func (t *tracker) add(v float64, maxSamples int) {
	if t.count == 0 || v < t.min {
		t.min = v
	}
	if t.count == 0 || v > t.max {
		t.max = v
	}
	t.values = append(t.values, v)
	if len(t.values) > maxSamples {
		t.values = t.values[1:]
	}
	t.count++
}

// Summary is a snapshot of one tracker. For operations the values are
// seconds.
type Summary struct {
	Name string
	// Avg is the mean of the last MaxSamples values only.
	Avg float64
	// Min, Max and Count cover every value ever recorded.
	Min   float64
	Max   float64
	Count int64
	// Window is the number of values Avg was taken over.
	Window int
}

// New creates a profiler that reports to logger.
//
// Arguments:
// - logger: Destination of reports. Nil discards them.
// - opts: Configuration options for the profiler.
//
// Returns:
// - A configured Profiler; call Start for periodic reports.
func New(logger logrus.FieldLogger, opts Options) *Profiler {
	if opts.ReportInterval <= 0 {
		opts.ReportInterval = 5 * time.Second
	}
	if opts.MaxSamples <= 0 {
		opts.MaxSamples = 1000
	}
	if logger == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		logger = l
	}
	return &Profiler{
		logger:         logger,
		reportInterval: opts.ReportInterval,
		maxSamples:     opts.MaxSamples,
		startTime:      time.Now(),
		metrics:        make(map[string]*tracker),
		operations:     make(map[string]*tracker),
	}
}

// Start emits a report every ReportInterval until ctx is done or Stop is
// called. Calling Start on a running profiler does nothing.
func (p *Profiler) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return
	}
	ctx, p.cancel = context.WithCancel(ctx)

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ticker := time.NewTicker(p.reportInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.Report()
			}
		}
	}()
}

// Stop ends periodic reporting and waits for the reporter to exit.
func (p *Profiler) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	p.cancel = nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
		p.wg.Wait()
	}
}

// RecordMetric records a value of the named metric.
func (p *Profiler) RecordMetric(name string, value float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	record(p.metrics, name, value, p.maxSamples)
}

// StartOperation begins timing an operation.
//
// Returns:
// - A function to call when the operation completes.
//
// Example:
//
//	done := p.StartOperation("process")
//	defer done()
func (p *Profiler) StartOperation(name string) func() {
	start := time.Now()
	return func() {
		d := time.Since(start)
		p.mu.Lock()
		defer p.mu.Unlock()
		record(p.operations, name, d.Seconds(), p.maxSamples)
	}
}

func record(m map[string]*tracker, name string, v float64, maxSamples int) {
	t, ok := m[name]
	if !ok {
		t = &tracker{}
		m[name] = t
	}
	t.add(v, maxSamples)
}

// Metrics returns a snapshot of every metric, sorted by name.
func (p *Profiler) Metrics() []Summary {
	p.mu.Lock()
	defer p.mu.Unlock()
	return summaries(p.metrics)
}

// Operations returns a snapshot of every operation timing in seconds, sorted
// by name.
func (p *Profiler) Operations() []Summary {
	p.mu.Lock()
	defer p.mu.Unlock()
	return summaries(p.operations)
}

func summaries(m map[string]*tracker) []Summary {
	out := make([]Summary, 0, len(m))
	for name, t := range m {
		if len(t.values) == 0 {
			continue
		}
		out = append(out, Summary{
			Name:   name,
			Avg:    stat.Mean(t.values, nil),
			Min:    t.min,
			Max:    t.max,
			Count:  t.count,
			Window: len(t.values),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Report logs memory usage, every operation timing and every metric at info
// level.
func (p *Profiler) Report() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	p.mu.Lock()
	uptime := time.Since(p.startTime)
	ops := summaries(p.operations)
	metrics := summaries(p.metrics)
	p.mu.Unlock()

	p.logger.WithFields(logrus.Fields{
		"uptime":     uptime.Truncate(time.Millisecond),
		"goroutines": runtime.NumGoroutine(),
		"heap_alloc": formatBytes(ms.HeapAlloc),
		"sys":        formatBytes(ms.Sys),
		"gc_cycles":  ms.NumGC,
	}).Info("runtime")

	for _, s := range ops {
		p.logger.WithFields(logrus.Fields{
			"operation": s.Name,
			"avg":       seconds(s.Avg),
			"window":    s.Window,
			"min":       seconds(s.Min),
			"max":       seconds(s.Max),
			"count":     s.Count,
		}).Info("timing")
	}
	for _, s := range metrics {
		p.logger.WithFields(logrus.Fields{
			"metric": s.Name,
			"avg":    s.Avg,
			"window": s.Window,
			"min":    s.Min,
			"max":    s.Max,
			"count":  s.Count,
		}).Info("metric")
	}
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second)).Truncate(time.Microsecond)
}

// formatBytes formats byte counts in human-readable format.
func formatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return strconv.FormatUint(bytes, 10) + " B"
	}
	div, exp := uint64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return strconv.FormatFloat(float64(bytes)/float64(div), 'f', 1, 64) + " " + string("KMGTPE"[exp]) + "B"
}
