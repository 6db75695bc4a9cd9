package stay

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/jengzang/taste-records-go/internal/geolocation"
	"github.com/jengzang/taste-records-go/internal/spatial"
)

// ErrAlreadyRunning is returned by Start on a tracker that is already watching
var ErrAlreadyRunning = errors.New("stay tracker already running")

// Reporter delivers a detected stay to the server
type Reporter interface {
	ReportStay(ctx context.Context, r Report) error
}

// ReporterFunc adapts a function to Reporter
type ReporterFunc func(ctx context.Context, r Report) error

// ReportStay calls f(ctx, r)
func (f ReporterFunc) ReportStay(ctx context.Context, r Report) error {
	return f(ctx, r)
}

// TrackerOptions configures a Tracker
type TrackerOptions struct {
	Config       Config
	WatchOptions geolocation.WatchOptions
	Logger       *zap.Logger

	// OnMessage receives user-facing messages such as a denied location permission.
	// Like OnReport it runs on the tracking goroutine.
	OnMessage func(msg string)

	// OnReport is called on the tracking goroutine when a stay is detected,
	// before the report is sent
	OnReport func(r Report)
}

// Tracker drives a Detector from a geolocation feed and sends each detected
// stay to a Reporter. Samples are processed one at a time on a single
// goroutine. Reports are sent in the background and are never retried.
type Tracker struct {
	source   geolocation.Source
	reporter Reporter
	opts     TrackerOptions
	logger   *zap.Logger
	detector *Detector

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}

	inflight sync.WaitGroup
}

// NewTracker creates a tracker that is not yet watching
func NewTracker(source geolocation.Source, reporter Reporter, opts TrackerOptions) (*Tracker, error) {
	if source == nil {
		return nil, errors.New("geolocation source is required")
	}
	if reporter == nil {
		return nil, errors.New("stay reporter is required")
	}
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Tracker{
		source:   source,
		reporter: reporter,
		opts:     opts,
		logger:   logger.Named("stay"),
		detector: NewDetector(opts.Config),
	}, nil
}

// Start subscribes to the geolocation feed
func (t *Tracker) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cancel != nil {
		return ErrAlreadyRunning
	}

	watchCtx, cancel := context.WithCancel(ctx)
	updates, err := t.source.Watch(watchCtx, t.opts.WatchOptions)
	if err != nil {
		cancel()
		return fmt.Errorf("watch position: %w", err)
	}

	t.cancel = cancel
	t.done = make(chan struct{})
	go t.run(watchCtx, updates, t.done)

	t.logger.Info("Tracking started",
		zap.Float64("radius_m", t.opts.Config.RadiusMeters),
		zap.Duration("dwell_threshold", t.opts.Config.DwellThreshold))
	return nil
}

// Stop releases the geolocation subscription, waits for the tracking
// goroutine to exit and drops the open window. Reports already in flight
// are left to finish. Stop must not be called from OnReport or OnMessage,
// which run on the tracking goroutine; Done may be.
func (t *Tracker) Stop() {
	t.mu.Lock()
	cancel, done := t.cancel, t.done
	t.mu.Unlock()

	if cancel == nil {
		return
	}

	cancel()
	<-done

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done != done {
		return
	}
	t.cancel = nil
	t.done = nil
	t.detector.Reset()

	t.logger.Info("Tracking stopped")
}

// Done is closed when the tracking goroutine exits, either because the feed
// ended or because Stop was called. It returns nil when not started.
func (t *Tracker) Done() <-chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done
}

// Wait blocks until all in-flight reports have completed
func (t *Tracker) Wait() {
	t.inflight.Wait()
}

func (t *Tracker) run(ctx context.Context, updates <-chan geolocation.Update, done chan struct{}) {
	defer close(done)

	// Reports outlive the subscription; the HTTP client applies its own timeout.
	reportCtx := context.WithoutCancel(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case u, ok := <-updates:
			if !ok {
				t.logger.Debug("Geolocation feed closed")
				return
			}
			t.handle(reportCtx, u)
		}
	}
}

func (t *Tracker) handle(ctx context.Context, u geolocation.Update) {
	if u.Err != nil {
		t.logger.Warn("Geolocation error", zap.Error(u.Err))
		t.notify(geolocation.UserMessage(u.Err))
		return
	}

	p := u.Position
	if !spatial.ValidCoordinate(p.Coords.Latitude, p.Coords.Longitude) {
		t.logger.Warn("Ignoring invalid position",
			zap.Float64("lat", p.Coords.Latitude),
			zap.Float64("lng", p.Coords.Longitude))
		t.notify(geolocation.UserMessage(geolocation.ErrPositionUnavailable))
		return
	}

	r := t.detector.Observe(Sample{
		Lat:         p.Coords.Latitude,
		Lng:         p.Coords.Longitude,
		TimestampMs: p.Timestamp,
	})
	if r == nil {
		return
	}

	t.logger.Info("Stay detected",
		zap.Float64("lat", r.Lat),
		zap.Float64("lng", r.Lng),
		zap.Int64("start_ms", r.StartTimeMs),
		zap.Int64("end_ms", r.EndTimeMs))

	if t.opts.OnReport != nil {
		t.opts.OnReport(*r)
	}

	report := *r
	t.inflight.Add(1)
	go func() {
		defer t.inflight.Done()
		if err := t.reporter.ReportStay(ctx, report); err != nil {
			t.logger.Warn("Stay report failed, dropping", zap.Error(err))
			return
		}
		t.logger.Debug("Stay reported", zap.Int64("start_ms", report.StartTimeMs))
	}()
}

func (t *Tracker) notify(msg string) {
	if t.opts.OnMessage != nil && msg != "" {
		t.opts.OnMessage(msg)
	}
}
