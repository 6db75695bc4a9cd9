package stay

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/taste-records-go/internal/spatial"
)

const (
	cityHallLat = 37.5665
	cityHallLng = 126.9780
)

func testConfig() Config {
	return Config{RadiusMeters: 50, DwellThreshold: 30 * time.Second}
}

func north(meters float64) (float64, float64) {
	return spatial.DestinationPoint(cityHallLat, cityHallLng, 0, meters)
}

func TestObserve_FirstSampleAnchorsWindow(t *testing.T) {
	w, r := Observe(testConfig(), nil, Sample{Lat: cityHallLat, Lng: cityHallLng, TimestampMs: 1000})

	require.NotNil(t, w)
	assert.Nil(t, r)
	assert.Equal(t, Window{
		AnchorLat:   cityHallLat,
		AnchorLng:   cityHallLng,
		StartTimeMs: 1000,
		LastTimeMs:  1000,
	}, *w)
}

func TestObserve_AccumulatesWithinRadius(t *testing.T) {
	d := NewDetector(Config{RadiusMeters: 50, DwellThreshold: time.Hour})
	d.Observe(Sample{Lat: cityHallLat, Lng: cityHallLng, TimestampMs: 0})

	for i, meters := range []float64{10, 20, 45, 5, 0} {
		lat, lng := north(meters)
		ts := int64(i+1) * 1000
		assert.Nil(t, d.Observe(Sample{Lat: lat, Lng: lng, TimestampMs: ts}))

		w, ok := d.Current()
		require.True(t, ok)
		assert.Equal(t, int64(0), w.StartTimeMs)
		assert.Equal(t, ts, w.LastTimeMs)
		assert.Equal(t, cityHallLat, w.AnchorLat)
	}
}

func TestObserve_ThresholdFiresExactlyOnce(t *testing.T) {
	d := NewDetector(testConfig())
	lat, lng := north(10)

	assert.Nil(t, d.Observe(Sample{Lat: cityHallLat, Lng: cityHallLng, TimestampMs: 0}))
	assert.Nil(t, d.Observe(Sample{Lat: lat, Lng: lng, TimestampMs: 29_999}))

	r := d.Observe(Sample{Lat: lat, Lng: lng, TimestampMs: 30_000})
	require.NotNil(t, r)
	assert.Equal(t, Report{Lat: cityHallLat, Lng: cityHallLng, StartTimeMs: 0, EndTimeMs: 30_000}, *r)

	assert.Nil(t, d.Observe(Sample{Lat: lat, Lng: lng, TimestampMs: 31_000}))

	w, ok := d.Current()
	require.True(t, ok)
	assert.True(t, w.Reported)
	assert.Equal(t, int64(31_000), w.LastTimeMs)
}

func TestObserve_RadiusBoundary(t *testing.T) {
	lat, lng := north(50)
	dist := spatial.HaversineDistance(cityHallLat, cityHallLng, lat, lng)
	anchor := Sample{Lat: cityHallLat, Lng: cityHallLng, TimestampMs: 0}
	edge := Sample{Lat: lat, Lng: lng, TimestampMs: 1000}

	t.Run("exactly on the radius stays", func(t *testing.T) {
		cfg := Config{RadiusMeters: dist, DwellThreshold: time.Hour}
		w, _ := Observe(cfg, nil, anchor)
		w, _ = Observe(cfg, w, edge)
		assert.Equal(t, cityHallLat, w.AnchorLat)
		assert.Equal(t, int64(1000), w.LastTimeMs)
	})

	t.Run("just beyond the radius abandons", func(t *testing.T) {
		cfg := Config{RadiusMeters: dist - 1e-6, DwellThreshold: time.Hour}
		w, _ := Observe(cfg, nil, anchor)
		w, _ = Observe(cfg, w, edge)
		assert.Equal(t, lat, w.AnchorLat)
		assert.Equal(t, int64(1000), w.StartTimeMs)
	})
}

func TestObserve_AbandonDiscardsUnprocessedDwell(t *testing.T) {
	d := NewDetector(testConfig())
	inLat, inLng := north(10)
	farLat, farLng := north(500)

	d.Observe(Sample{Lat: cityHallLat, Lng: cityHallLng, TimestampMs: 0})
	d.Observe(Sample{Lat: inLat, Lng: inLng, TimestampMs: 20_000})

	// 60s have passed, but this sample is outside the radius
	assert.Nil(t, d.Observe(Sample{Lat: farLat, Lng: farLng, TimestampMs: 60_000}))

	w, ok := d.Current()
	require.True(t, ok)
	assert.Equal(t, Window{AnchorLat: farLat, AnchorLng: farLng, StartTimeMs: 60_000, LastTimeMs: 60_000}, w)
}

func TestObserve_ReturningCreatesNewWindow(t *testing.T) {
	d := NewDetector(testConfig())
	farLat, farLng := north(500)

	d.Observe(Sample{Lat: cityHallLat, Lng: cityHallLng, TimestampMs: 0})
	require.NotNil(t, d.Observe(Sample{Lat: cityHallLat, Lng: cityHallLng, TimestampMs: 30_000}))

	d.Observe(Sample{Lat: farLat, Lng: farLng, TimestampMs: 40_000})
	assert.Nil(t, d.Observe(Sample{Lat: cityHallLat, Lng: cityHallLng, TimestampMs: 50_000}))

	r := d.Observe(Sample{Lat: cityHallLat, Lng: cityHallLng, TimestampMs: 80_000})
	require.NotNil(t, r)
	assert.Equal(t, int64(50_000), r.StartTimeMs)
	assert.Equal(t, int64(80_000), r.EndTimeMs)
}

func TestObserve_NoDuplicateReportsInLongWindow(t *testing.T) {
	d := NewDetector(testConfig())
	reports := 0
	for ts := int64(0); ts <= 24*60*60*1000; ts += 15_000 {
		if d.Observe(Sample{Lat: cityHallLat, Lng: cityHallLng, TimestampMs: ts}) != nil {
			reports++
		}
	}
	assert.Equal(t, 1, reports)
}

func TestObserve_ReportCarriesAnchorNotLatestSample(t *testing.T) {
	d := NewDetector(testConfig())
	lat, lng := north(30)

	d.Observe(Sample{Lat: cityHallLat, Lng: cityHallLng, TimestampMs: 5_000})
	r := d.Observe(Sample{Lat: lat, Lng: lng, TimestampMs: 45_000})

	require.NotNil(t, r)
	assert.Equal(t, cityHallLat, r.Lat)
	assert.Equal(t, cityHallLng, r.Lng)
	assert.Equal(t, int64(5_000), r.StartTimeMs)
	assert.Equal(t, int64(45_000), r.EndTimeMs)
}

func TestObserve_ZeroThresholdReportsOnSecondSample(t *testing.T) {
	cfg := Config{RadiusMeters: 50}
	w, r := Observe(cfg, nil, Sample{Lat: cityHallLat, Lng: cityHallLng, TimestampMs: 100})
	assert.Nil(t, r)
	_, r = Observe(cfg, w, Sample{Lat: cityHallLat, Lng: cityHallLng, TimestampMs: 100})
	assert.NotNil(t, r)
}

func TestObserve_IgnoresSampleOlderThanWindow(t *testing.T) {
	d := NewDetector(testConfig())
	d.Observe(Sample{Lat: cityHallLat, Lng: cityHallLng, TimestampMs: 10_000})
	d.Observe(Sample{Lat: cityHallLat, Lng: cityHallLng, TimestampMs: 5_000})

	w, _ := d.Current()
	assert.Equal(t, int64(10_000), w.LastTimeMs)
	assert.GreaterOrEqual(t, w.LastTimeMs, w.StartTimeMs)
}

func TestObserve_InvalidCoordinatesLeaveWindowUntouched(t *testing.T) {
	cfg := testConfig()

	w, r := Observe(cfg, nil, Sample{Lat: math.NaN(), Lng: 0, TimestampMs: 0})
	assert.Nil(t, w)
	assert.Nil(t, r)

	w, _ = Observe(cfg, nil, Sample{Lat: cityHallLat, Lng: cityHallLng, TimestampMs: 1000})
	before := *w
	for _, s := range []Sample{
		{Lat: math.NaN(), Lng: cityHallLng, TimestampMs: 60000},
		{Lat: cityHallLat, Lng: math.Inf(1), TimestampMs: 60000},
		{Lat: 91, Lng: cityHallLng, TimestampMs: 60000},
	} {
		var r *Report
		w, r = Observe(cfg, w, s)
		assert.Nil(t, r)
		require.NotNil(t, w)
		assert.Equal(t, before, *w)
	}

	d := NewDetector(cfg)
	assert.Nil(t, d.Observe(Sample{Lat: math.NaN(), Lng: 0, TimestampMs: 0}))
	assert.Nil(t, d.Observe(Sample{Lat: 37.5, Lng: 127, TimestampMs: 60000}))
	cur, ok := d.Current()
	require.True(t, ok)
	assert.Equal(t, 37.5, cur.AnchorLat)
	assert.Equal(t, int64(60000), cur.StartTimeMs)
}

func TestDetector_Reset(t *testing.T) {
	d := NewDetector(testConfig())
	d.Observe(Sample{Lat: cityHallLat, Lng: cityHallLng, TimestampMs: 0})
	d.Reset()

	_, ok := d.Current()
	assert.False(t, ok)
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	assert.Error(t, Config{RadiusMeters: 0, DwellThreshold: time.Second}.Validate())
	assert.Error(t, Config{RadiusMeters: 10, DwellThreshold: -time.Second}.Validate())
}
