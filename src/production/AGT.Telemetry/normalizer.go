// Package telemetry derives presentation state from raw sensor records.
// Everything here is a pure function of its inputs and the supplied
// clock value; nothing is persisted.
package telemetry

import (
	"fmt"
	"math"
	"time"

	agtmodels "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Models"
)

const (
	// A sensor is online while its latest reading is at most this old.
	onlineWindow = 10 * time.Minute
	// Between onlineWindow and warningWindow the sensor is degraded but
	// not yet considered gone.
	warningWindow = 60 * time.Minute
)

// Status derives the sensor status from the latest reading timestamp.
// A sensor with no reading at all is offline.
func Status(now time.Time, latest *time.Time) agtmodels.SensorStatus {
	if latest == nil {
		return agtmodels.StatusOffline
	}
	age := now.Sub(*latest)
	switch {
	case age <= onlineWindow:
		return agtmodels.StatusOnline
	case age <= warningWindow:
		return agtmodels.StatusWarning
	default:
		return agtmodels.StatusOffline
	}
}

// LastSeenLabel renders the human "last seen" string for a reading
// timestamp: "just now" under a minute, then minutes, then hours up to
// 48, then days. A sensor that never reported renders as "—".
func LastSeenLabel(now time.Time, latest *time.Time) string {
	if latest == nil {
		return "—"
	}
	m := int(now.Sub(*latest).Minutes())
	if m < 1 {
		return "just now"
	}
	if m < 60 {
		return fmt.Sprintf("%d min ago", m)
	}
	h := m / 60
	if h < 48 {
		return fmt.Sprintf("%d hr ago", h)
	}
	return fmt.Sprintf("%d days ago", h/24)
}

// View wraps a canonical sensor with its derived status and last-seen
// label as of now.
func View(now time.Time, s agtmodels.Sensor) agtmodels.SensorView {
	var ts *time.Time
	if s.Latest != nil {
		ts = s.Latest.Timestamp
	}
	return agtmodels.SensorView{
		Sensor:   s,
		Status:   Status(now, ts),
		LastSeen: LastSeenLabel(now, ts),
	}
}

// Views maps a sensor set to views, preserving order.
func Views(now time.Time, sensors []agtmodels.Sensor) []agtmodels.SensorView {
	views := make([]agtmodels.SensorView, 0, len(sensors))
	for _, s := range sensors {
		views = append(views, View(now, s))
	}
	return views
}

// SeriesPoints converts a page of readings ordered newest-first into
// chart points ordered oldest-first. Labels are local HH:MM. A missing
// moisture or temperature value becomes 0 rather than dropping the
// point, so both series keep the same length as the input page.
func SeriesPoints(readings []agtmodels.Reading) []agtmodels.ReadingPoint {
	points := make([]agtmodels.ReadingPoint, 0, len(readings))
	for i := len(readings) - 1; i >= 0; i-- {
		r := readings[i]
		label := "—"
		if r.Timestamp != nil {
			local := r.Timestamp.Local()
			label = fmt.Sprintf("%02d:%02d", local.Hour(), local.Minute())
		}
		points = append(points, agtmodels.ReadingPoint{
			Label:     label,
			Moisture:  valueOrZero(r.SoilMoisture),
			TempC:     valueOrZero(r.TempC),
			Timestamp: r.Timestamp,
		})
	}
	return points
}

// AverageMoisture returns the mean moisture of a series rounded to one
// decimal, or nil for an empty series.
func AverageMoisture(points []agtmodels.ReadingPoint) *float64 {
	if len(points) == 0 {
		return nil
	}
	var sum float64
	for _, p := range points {
		sum += p.Moisture
	}
	avg := math.Round(sum/float64(len(points))*10) / 10
	return &avg
}

func valueOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
