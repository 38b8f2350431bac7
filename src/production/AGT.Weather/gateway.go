package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	config "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Config"
	logger "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Logger"
	agtmodels "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Models"
)

// Gateway resolves a free-text location to current conditions. Both
// upstream hops (geocode, then conditions) share one circuit breaker:
// they hit the same provider, so they trip together.
type Gateway struct {
	cfg     *config.WeatherConfig
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
	logger  *logger.Logger
}

func NewGateway(cfg *config.WeatherConfig, log *logger.Logger) *Gateway {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "weather-upstream",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})
	return &Gateway{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		circuit: cb,
		logger:  log,
	}
}

type geocodeResult struct {
	Name    string  `json:"name"`
	Country string  `json:"country"`
	State   string  `json:"state"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

type currentConditions struct {
	Dt   int64 `json:"dt"`
	Main struct {
		Temp     *float64 `json:"temp"`
		Humidity *float64 `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Rain struct {
		OneH   *float64 `json:"1h"`
		ThreeH *float64 `json:"3h"`
	} `json:"rain"`
	Snow struct {
		OneH   *float64 `json:"1h"`
		ThreeH *float64 `json:"3h"`
	} `json:"snow"`
}

// Current resolves location and fetches metric conditions there.
func (g *Gateway) Current(ctx context.Context, location string) (*agtmodels.WeatherSnapshot, error) {
	if location == "" {
		return nil, agtmodels.E(agtmodels.KindInvalidInput, "location is required")
	}
	if g.cfg.APIKey == "" {
		return nil, agtmodels.E(agtmodels.KindConfig, "weather api key is not configured")
	}

	place, err := g.geocode(ctx, location)
	if err != nil {
		return nil, err
	}

	cond, err := g.conditions(ctx, place.Lat, place.Lon)
	if err != nil {
		return nil, err
	}

	snapshot := &agtmodels.WeatherSnapshot{
		LocationLabel:   placeLabel(place),
		TempC:           cond.Main.Temp,
		HumidityPercent: cond.Main.Humidity,
		PrecipitationMm: precipitation(cond),
	}
	if len(cond.Weather) > 0 && cond.Weather[0].Description != "" {
		desc := cond.Weather[0].Description
		snapshot.Description = &desc
	}
	if cond.Dt > 0 {
		asOf := time.Unix(cond.Dt, 0).UTC().Format(time.RFC3339)
		snapshot.ObservedAt = &asOf
	}
	return snapshot, nil
}

func (g *Gateway) geocode(ctx context.Context, location string) (*geocodeResult, error) {
	values := url.Values{}
	values.Set("q", location)
	values.Set("limit", "1")
	values.Set("appid", g.cfg.APIKey)

	var results []geocodeResult
	if err := g.getJSON(ctx, g.cfg.GeocodeURL+"?"+values.Encode(), &results); err != nil {
		return nil, agtmodels.Wrap(agtmodels.KindUnavailable, "geocoding failed", err)
	}
	if len(results) == 0 {
		return nil, agtmodels.E(agtmodels.KindNotFound, fmt.Sprintf("location %q not found", location))
	}
	return &results[0], nil
}

func (g *Gateway) conditions(ctx context.Context, lat, lon float64) (*currentConditions, error) {
	values := url.Values{}
	values.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	values.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	values.Set("units", "metric")
	values.Set("appid", g.cfg.APIKey)

	var cond currentConditions
	if err := g.getJSON(ctx, g.cfg.CurrentURL+"?"+values.Encode(), &cond); err != nil {
		return nil, agtmodels.Wrap(agtmodels.KindUnavailable, "conditions fetch failed", err)
	}
	return &cond, nil
}

func (g *Gateway) getJSON(ctx context.Context, rawURL string, out interface{}) error {
	result, err := g.circuit.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, err
		}
		resp, err := g.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("upstream status %d", resp.StatusCode)
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return nil, err
		}
		return nil, nil
	})
	_ = result

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		g.logger.Warn("weather circuit open, failing fast")
	}
	return err
}

// precipitation sums rain and snow liquid equivalent, preferring the
// 1h window and falling back to 3h per component. Absent fields count
// as zero but the result is always present.
func precipitation(cond *currentConditions) *float64 {
	total := windowValue(cond.Rain.OneH, cond.Rain.ThreeH) + windowValue(cond.Snow.OneH, cond.Snow.ThreeH)
	return &total
}

func windowValue(oneH, threeH *float64) float64 {
	if oneH != nil {
		return *oneH
	}
	if threeH != nil {
		return *threeH
	}
	return 0
}

func placeLabel(place *geocodeResult) string {
	label := place.Name
	if place.State != "" {
		label += ", " + place.State
	}
	if place.Country != "" {
		label += ", " + place.Country
	}
	return label
}
