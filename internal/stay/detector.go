// Package stay turns a stream of location samples into dwell reports.
//
// A window is anchored at the first sample and grows while every following
// sample stays within RadiusMeters of the anchor. Once the window has lasted
// DwellThreshold it is reported exactly once. A sample outside the radius
// discards the window, reported or not, and anchors a new one.
package stay

import (
	"errors"
	"time"

	"github.com/jengzang/taste-records-go/internal/spatial"
)

// Default detection parameters
const (
	DefaultRadiusMeters   = 50.0
	DefaultDwellThreshold = 30 * time.Second
)

// Sample is a single location reading
type Sample struct {
	Lat         float64
	Lng         float64
	TimestampMs int64
}

// Window is the dwell candidate currently being tracked.
// A nil *Window means no window is open.
type Window struct {
	AnchorLat   float64
	AnchorLng   float64
	StartTimeMs int64
	LastTimeMs  int64
	Reported    bool
}

// DurationMs returns how long the window has been open
func (w Window) DurationMs() int64 {
	return w.LastTimeMs - w.StartTimeMs
}

// Report describes a window that crossed the dwell threshold
type Report struct {
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	StartTimeMs int64   `json:"startTime"`
	EndTimeMs   int64   `json:"endTime"`
}

// Config holds detection parameters
type Config struct {
	RadiusMeters   float64
	DwellThreshold time.Duration
}

// DefaultConfig returns the detection parameters used when none are configured
func DefaultConfig() Config {
	return Config{
		RadiusMeters:   DefaultRadiusMeters,
		DwellThreshold: DefaultDwellThreshold,
	}
}

// Validate checks that the parameters are usable
func (c Config) Validate() error {
	if !(c.RadiusMeters > 0) {
		return errors.New("stay radius must be positive")
	}
	if c.DwellThreshold < 0 {
		return errors.New("stay dwell threshold must not be negative")
	}
	return nil
}

func newWindow(s Sample) *Window {
	return &Window{
		AnchorLat:   s.Lat,
		AnchorLng:   s.Lng,
		StartTimeMs: s.TimestampMs,
		LastTimeMs:  s.TimestampMs,
	}
}

// Observe advances the window with one sample and returns the window to keep.
// The returned report is non-nil only on the sample that first carries the
// window to the dwell threshold.
//
// A sample with invalid coordinates leaves the window untouched. An in-radius
// sample older than the window start is ignored so that LastTimeMs never
// precedes StartTimeMs.
func Observe(cfg Config, w *Window, s Sample) (*Window, *Report) {
	if !spatial.ValidCoordinate(s.Lat, s.Lng) {
		return w, nil
	}
	if w == nil {
		return newWindow(s), nil
	}

	d := spatial.HaversineDistance(w.AnchorLat, w.AnchorLng, s.Lat, s.Lng)
	if d > cfg.RadiusMeters {
		return newWindow(s), nil
	}

	if s.TimestampMs < w.StartTimeMs {
		return w, nil
	}

	w.LastTimeMs = s.TimestampMs
	if w.Reported || w.DurationMs() < cfg.DwellThreshold.Milliseconds() {
		return w, nil
	}

	w.Reported = true
	return w, &Report{
		Lat:         w.AnchorLat,
		Lng:         w.AnchorLng,
		StartTimeMs: w.StartTimeMs,
		EndTimeMs:   w.LastTimeMs,
	}
}

// Detector owns the single window slot of one tracking session.
// It is not safe for concurrent use; feed it from one goroutine.
type Detector struct {
	cfg     Config
	current *Window
}

// NewDetector creates a detector with no open window
func NewDetector(cfg Config) *Detector {
	return &Detector{cfg: cfg}
}

// Config returns the detection parameters
func (d *Detector) Config() Config {
	return d.cfg
}

// Observe feeds one sample and returns a report when a stay is detected
func (d *Detector) Observe(s Sample) *Report {
	var r *Report
	d.current, r = Observe(d.cfg, d.current, s)
	return r
}

// Current returns a copy of the open window, if any
func (d *Detector) Current() (Window, bool) {
	if d.current == nil {
		return Window{}, false
	}
	return *d.current, true
}

// Reset drops the open window
func (d *Detector) Reset() {
	d.current = nil
}
