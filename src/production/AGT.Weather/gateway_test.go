package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	config "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Config"
	logger "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Logger"
	agtmodels "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Models"
)

func testGateway(t *testing.T, geocodeJSON, currentJSON string, status int) *Gateway {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/geo":
			w.Write([]byte(geocodeJSON))
		case "/current":
			w.Write([]byte(currentJSON))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)

	cfg := &config.WeatherConfig{
		APIKey:     "test-key",
		GeocodeURL: srv.URL + "/geo",
		CurrentURL: srv.URL + "/current",
		Timeout:    2 * time.Second,
	}
	log := logger.NewLogger(&config.LoggingConfig{Level: "error", Format: "console"})
	return NewGateway(cfg, log)
}

func TestCurrentRequiresLocation(t *testing.T) {
	g := testGateway(t, "[]", "{}", http.StatusOK)

	_, err := g.Current(context.Background(), "")

	assert.Equal(t, agtmodels.KindInvalidInput, agtmodels.KindOf(err))
}

func TestCurrentRequiresAPIKey(t *testing.T) {
	g := testGateway(t, "[]", "{}", http.StatusOK)
	g.cfg.APIKey = ""

	_, err := g.Current(context.Background(), "Hamilton")

	assert.Equal(t, agtmodels.KindConfig, agtmodels.KindOf(err))
}

func TestCurrentLocationNotFound(t *testing.T) {
	g := testGateway(t, "[]", "{}", http.StatusOK)

	_, err := g.Current(context.Background(), "Nowhereville")

	assert.Equal(t, agtmodels.KindNotFound, agtmodels.KindOf(err))
}

func TestCurrentUpstreamFailure(t *testing.T) {
	g := testGateway(t, "", "", http.StatusInternalServerError)

	_, err := g.Current(context.Background(), "Hamilton")

	assert.Equal(t, agtmodels.KindUnavailable, agtmodels.KindOf(err))
}

func TestCurrentSumsRainAndSnow(t *testing.T) {
	geocode := `[{"name":"Hamilton","country":"NZ","lat":-37.78,"lon":175.28}]`
	current := `{
		"dt": 1767225600,
		"main": {"temp": 14.2, "humidity": 81},
		"weather": [{"description": "light rain"}],
		"rain": {"1h": 2.0},
		"snow": {"3h": 1.0}
	}`
	g := testGateway(t, geocode, current, http.StatusOK)

	snap, err := g.Current(context.Background(), "Hamilton")

	require.NoError(t, err)
	assert.Equal(t, "Hamilton, NZ", snap.LocationLabel)
	require.NotNil(t, snap.TempC)
	assert.Equal(t, 14.2, *snap.TempC)
	require.NotNil(t, snap.HumidityPercent)
	assert.Equal(t, 81.0, *snap.HumidityPercent)
	require.NotNil(t, snap.PrecipitationMm)
	assert.Equal(t, 3.0, *snap.PrecipitationMm)
	require.NotNil(t, snap.Description)
	assert.Equal(t, "light rain", *snap.Description)
	require.NotNil(t, snap.ObservedAt)
}

func TestCurrentMissingFieldsStayNull(t *testing.T) {
	geocode := `[{"name":"Hamilton","state":"Waikato","country":"NZ","lat":-37.78,"lon":175.28}]`
	g := testGateway(t, geocode, `{}`, http.StatusOK)

	snap, err := g.Current(context.Background(), "Hamilton")

	require.NoError(t, err)
	assert.Equal(t, "Hamilton, Waikato, NZ", snap.LocationLabel)
	assert.Nil(t, snap.TempC)
	assert.Nil(t, snap.HumidityPercent)
	assert.Nil(t, snap.Description)
	assert.Nil(t, snap.ObservedAt)
	require.NotNil(t, snap.PrecipitationMm)
	assert.Equal(t, 0.0, *snap.PrecipitationMm)
}
