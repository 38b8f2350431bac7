package telemetry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	agtmodels "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Models"
)

func tsAgo(now time.Time, d time.Duration) *time.Time {
	t := now.Add(-d)
	return &t
}

func TestStatusBoundaries(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		age  time.Duration
		want agtmodels.SensorStatus
	}{
		{"fresh", 30 * time.Second, agtmodels.StatusOnline},
		{"exactly 10 min", 10 * time.Minute, agtmodels.StatusOnline},
		{"10.1 min", 10*time.Minute + 6*time.Second, agtmodels.StatusWarning},
		{"exactly 60 min", 60 * time.Minute, agtmodels.StatusWarning},
		{"60.1 min", 60*time.Minute + 6*time.Second, agtmodels.StatusOffline},
		{"hours stale", 5 * time.Hour, agtmodels.StatusOffline},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Status(now, tsAgo(now, tc.age)))
		})
	}
}

func TestStatusNoReadingIsOffline(t *testing.T) {
	assert.Equal(t, agtmodels.StatusOffline, Status(time.Now(), nil))
}

func TestLastSeenLabel(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "—", LastSeenLabel(now, nil))
	assert.Equal(t, "just now", LastSeenLabel(now, tsAgo(now, 20*time.Second)))
	assert.Equal(t, "5 min ago", LastSeenLabel(now, tsAgo(now, 5*time.Minute)))
	assert.Equal(t, "59 min ago", LastSeenLabel(now, tsAgo(now, 59*time.Minute)))
	assert.Equal(t, "1 hr ago", LastSeenLabel(now, tsAgo(now, 61*time.Minute)))
	assert.Equal(t, "47 hr ago", LastSeenLabel(now, tsAgo(now, 47*time.Hour)))
	assert.Equal(t, "2 days ago", LastSeenLabel(now, tsAgo(now, 49*time.Hour)))
}

func TestSeriesPointsReversesAndLabels(t *testing.T) {
	base := time.Date(2026, 3, 14, 9, 5, 0, 0, time.Local)
	m1, m2, m3 := 30.0, 40.0, 50.0

	// Newest first, as the store returns them.
	readings := []agtmodels.Reading{
		{Timestamp: timePtr(base.Add(2 * time.Hour)), SoilMoisture: &m3},
		{Timestamp: timePtr(base.Add(1 * time.Hour)), SoilMoisture: &m2},
		{Timestamp: timePtr(base), SoilMoisture: &m1},
	}

	points := SeriesPoints(readings)
	require.Len(t, points, 3)

	assert.Equal(t, "09:05", points[0].Label)
	assert.Equal(t, "10:05", points[1].Label)
	assert.Equal(t, "11:05", points[2].Label)
	assert.Equal(t, 30.0, points[0].Moisture)
	assert.Equal(t, 50.0, points[2].Moisture)
	assert.True(t, points[0].Timestamp.Before(*points[2].Timestamp))
}

func TestSeriesPointsSubstitutesZeroForMissing(t *testing.T) {
	ts := time.Date(2026, 3, 14, 9, 0, 0, 0, time.Local)
	temp := 21.5

	readings := []agtmodels.Reading{
		{Timestamp: &ts, SoilMoisture: nil, TempC: &temp},
	}

	points := SeriesPoints(readings)
	require.Len(t, points, 1)
	assert.Equal(t, 0.0, points[0].Moisture)
	assert.Equal(t, 21.5, points[0].TempC)
}

func TestViewDerivesStatusAndLastSeen(t *testing.T) {
	now := time.Now()
	moist := 37.0

	v := View(now, agtmodels.Sensor{
		ID:     "s-1",
		FarmID: "f-1",
		Name:   "North field",
		Latest: &agtmodels.LatestReading{
			SoilMoisture: &moist,
			Timestamp:    tsAgo(now, 3*time.Minute),
		},
	})

	assert.Equal(t, agtmodels.StatusOnline, v.Status)
	assert.Equal(t, "3 min ago", v.LastSeen)
	assert.Equal(t, "s-1", v.ID)
}

func TestAverageMoisture(t *testing.T) {
	assert.Nil(t, AverageMoisture(nil))

	points := []agtmodels.ReadingPoint{
		{Moisture: 20}, {Moisture: 30}, {Moisture: 41},
	}
	avg := AverageMoisture(points)
	require.NotNil(t, avg)
	assert.InDelta(t, 30.3, *avg, 0.0001)
}

func timePtr(t time.Time) *time.Time { return &t }
