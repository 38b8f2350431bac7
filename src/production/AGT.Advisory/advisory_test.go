package advisory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func f(v float64) *float64 { return &v }

func TestAdviseNoData(t *testing.T) {
	// Humidity on its own never changes the no-data outcome.
	for _, humidity := range []*float64{nil, f(0), f(55), f(100)} {
		adv := Advise(nil, nil, humidity)
		assert.Equal(t, ToneDefault, adv.Tone)
		assert.Contains(t, adv.Message, "Not enough data")
	}
}

func TestAdvisePrecipitationDominatesMoisture(t *testing.T) {
	// Good soil, but heavy rain: the rain rule must win.
	adv := Advise(f(50), f(6), nil)
	assert.Equal(t, ToneWarn, adv.Tone)
	assert.Contains(t, adv.Message, "Heavy rain")
}

func TestAdviseRainHoldsWatering(t *testing.T) {
	adv := Advise(f(10), f(1.0), nil)
	assert.Equal(t, ToneGood, adv.Tone)
	assert.Contains(t, adv.Message, "Rain detected")
}

func TestAdviseDrySoil(t *testing.T) {
	adv := Advise(f(10), f(0), nil)
	assert.Equal(t, ToneBad, adv.Tone)
	assert.Contains(t, adv.Message, "Water today")
}

func TestAdviseModerateSoilIncludesHumidityBullet(t *testing.T) {
	adv := Advise(f(30), f(0), f(62))
	assert.Equal(t, ToneWarn, adv.Tone)
	assert.Contains(t, adv.Bullets[0], "62%")

	adv = Advise(f(30), f(0), nil)
	assert.Contains(t, adv.Bullets[0], "not available")
}

func TestAdviseGoodSoil(t *testing.T) {
	adv := Advise(f(45), f(0), nil)
	assert.Equal(t, ToneGood, adv.Tone)
	assert.Contains(t, adv.Message, "Maintain schedule")
}

func TestAdviseMoistureUnknownButPrecipKnownFallsThrough(t *testing.T) {
	// Dry weather with no moisture data: none of the moisture rules can
	// fire, so the engine lands on the monitoring fallback.
	adv := Advise(nil, f(0), nil)
	assert.Equal(t, ToneDefault, adv.Tone)
	assert.Contains(t, adv.Message, "Monitor conditions")
}

func TestAdviseThresholdBoundaries(t *testing.T) {
	assert.Equal(t, ToneBad, Advise(f(24.9), f(0), nil).Tone)
	assert.Equal(t, ToneWarn, Advise(f(25.0), f(0), nil).Tone)
	assert.Equal(t, ToneWarn, Advise(f(44.9), f(0), nil).Tone)
	assert.Equal(t, ToneGood, Advise(f(45.0), f(0), nil).Tone)
	assert.Equal(t, ToneGood, Advise(f(50), f(0.9), nil).Tone)
	assert.Contains(t, Advise(f(50), f(1.0), nil).Message, "Rain detected")
	assert.Contains(t, Advise(f(50), f(4.9), nil).Message, "Rain detected")
	assert.Contains(t, Advise(f(50), f(5.0), nil).Message, "Heavy rain")
}

func TestSoilLabelBoundaries(t *testing.T) {
	assert.Equal(t, "—", SoilLabel(nil).Label)
	assert.Equal(t, "Dry", SoilLabel(f(24.9)).Label)
	assert.Equal(t, "Fair", SoilLabel(f(25.0)).Label)
	assert.Equal(t, "Fair", SoilLabel(f(44.9)).Label)
	assert.Equal(t, "Good", SoilLabel(f(45.0)).Label)
	assert.Equal(t, "Good", SoilLabel(f(69.9)).Label)
	assert.Equal(t, "Excellent", SoilLabel(f(70.0)).Label)
}
