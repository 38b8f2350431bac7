package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jwtservice "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.ApiService/implementation/jwt"
	"gitlab.com/agrisense1/agt.farm_server/src/production/AGT.ApiService/middleware"
	config "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Config"
	gate "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Gate"
	logger "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Logger"
	agtmodels "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Models"
	api_models "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Models/api"
	session "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Session"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testLogger() *logger.Logger {
	return logger.NewLogger(&config.LoggingConfig{Level: "error", Format: "console"})
}

type fakeFarmRepo struct {
	farms map[string]*agtmodels.Farm
}

func newFakeFarmRepo(farms ...*agtmodels.Farm) *fakeFarmRepo {
	repo := &fakeFarmRepo{farms: map[string]*agtmodels.Farm{}}
	for _, farm := range farms {
		repo.farms[farm.ID] = farm
	}
	return repo
}

func (r *fakeFarmRepo) Create(_ context.Context, ownerID string, input *agtmodels.FarmInput) (*agtmodels.Farm, error) {
	farm := &agtmodels.Farm{
		ID:               "farm-new",
		OwnerID:          ownerID,
		Name:             input.Name,
		Location:         input.Location,
		SizeSquareMeters: input.SizeSquareMeters,
		Crops:            input.Crops,
		ZoneCount:        input.ZoneCount,
	}
	r.farms[farm.ID] = farm
	return farm, nil
}

func (r *fakeFarmRepo) Get(_ context.Context, farmID string) (*agtmodels.Farm, error) {
	farm, ok := r.farms[farmID]
	if !ok {
		return nil, agtmodels.E(agtmodels.KindNotFound, "farm not found")
	}
	return farm, nil
}

func (r *fakeFarmRepo) ListByOwner(_ context.Context, ownerID string) ([]agtmodels.Farm, error) {
	out := []agtmodels.Farm{}
	for _, farm := range r.farms {
		if farm.OwnerID == ownerID {
			out = append(out, *farm)
		}
	}
	return out, nil
}

func (r *fakeFarmRepo) Update(_ context.Context, farmID, ownerID string, patch *agtmodels.FarmUpdate) (*agtmodels.Farm, error) {
	farm, ok := r.farms[farmID]
	if !ok {
		return nil, agtmodels.E(agtmodels.KindNotFound, "farm not found")
	}
	if farm.OwnerID != ownerID {
		return nil, agtmodels.E(agtmodels.KindPermissionDenied, "farm belongs to another user")
	}
	if patch.Name != nil {
		farm.Name = *patch.Name
	}
	return farm, nil
}

type fakeSensorRepo struct {
	sensors map[string]*agtmodels.Sensor
	updated map[string]time.Time
}

func newFakeSensorRepo(sensors ...*agtmodels.Sensor) *fakeSensorRepo {
	repo := &fakeSensorRepo{sensors: map[string]*agtmodels.Sensor{}, updated: map[string]time.Time{}}
	for _, sensor := range sensors {
		repo.sensors[sensor.ID] = sensor
	}
	return repo
}

func (r *fakeSensorRepo) Get(_ context.Context, sensorID string) (*agtmodels.Sensor, error) {
	sensor, ok := r.sensors[sensorID]
	if !ok {
		return nil, agtmodels.E(agtmodels.KindNotFound, "sensor not found")
	}
	return sensor, nil
}

func (r *fakeSensorRepo) ListByFarm(_ context.Context, farmID string) ([]agtmodels.Sensor, error) {
	out := []agtmodels.Sensor{}
	for _, sensor := range r.sensors {
		if sensor.FarmID == farmID {
			out = append(out, *sensor)
		}
	}
	return out, nil
}

func (r *fakeSensorRepo) UpdateLatest(_ context.Context, sensorID string, _, _ *float64, at time.Time) error {
	if _, ok := r.sensors[sensorID]; !ok {
		return agtmodels.E(agtmodels.KindNotFound, "sensor not found")
	}
	r.updated[sensorID] = at
	return nil
}

type fakeReadingRepo struct {
	bySensor map[string][]agtmodels.Reading
	inserted []agtmodels.Reading
}

func newFakeReadingRepo() *fakeReadingRepo {
	return &fakeReadingRepo{bySensor: map[string][]agtmodels.Reading{}}
}

func (r *fakeReadingRepo) Insert(_ context.Context, reading *agtmodels.Reading) error {
	r.inserted = append(r.inserted, *reading)
	return nil
}

func (r *fakeReadingRepo) InsertMany(_ context.Context, readings []agtmodels.Reading) error {
	r.inserted = append(r.inserted, readings...)
	return nil
}

func (r *fakeReadingRepo) LatestPage(_ context.Context, sensorID string, window int) ([]agtmodels.Reading, error) {
	readings := r.bySensor[sensorID]
	if len(readings) > window {
		readings = readings[:window]
	}
	return readings, nil
}

func testJWT(t *testing.T) (*jwtservice.Service, *middleware.AuthMiddleware) {
	t.Helper()
	svc := jwtservice.NewService(api_models.Config{
		SecretKey:            "test-secret",
		AccessTokenDuration:  time.Hour,
		RefreshTokenDuration: 24 * time.Hour,
		Issuer:               "test",
	})
	return svc, middleware.NewAuthMiddleware(svc, middleware.DefaultConfig())
}

func bearerFor(t *testing.T, svc *jwtservice.Service, userID string) string {
	t.Helper()
	pair, err := svc.GenerateTokens(userID, "user")
	require.NoError(t, err)
	return "Bearer " + pair.AccessToken
}

func floatPtr(v float64) *float64 { return &v }

func TestSessionResolutionAnonymousRedirectsToLogin(t *testing.T) {
	_, authMW := testJWT(t)
	resolver := gate.NewResolver(newFakeFarmRepo(), session.NewMemoryStore(), testLogger())
	router := gin.New()
	NewSessionController(resolver, testLogger(), authMW).RegisterRoutes(router)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/session/resolution?route=/dashboard", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resolution gate.Resolution
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resolution))
	assert.Equal(t, gate.StateUnauthenticated, resolution.State)
	assert.Equal(t, gate.LoginRoute, resolution.Redirect)
}

func TestSessionResolutionRequiresRoute(t *testing.T) {
	_, authMW := testJWT(t)
	resolver := gate.NewResolver(newFakeFarmRepo(), session.NewMemoryStore(), testLogger())
	router := gin.New()
	NewSessionController(resolver, testLogger(), authMW).RegisterRoutes(router)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/session/resolution", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSwitchFarmRejectsForeignFarm(t *testing.T) {
	jwtSvc, authMW := testJWT(t)
	farms := newFakeFarmRepo(&agtmodels.Farm{ID: "farm-1", OwnerID: "someone-else"})
	resolver := gate.NewResolver(farms, session.NewMemoryStore(), testLogger())
	router := gin.New()
	NewSessionController(resolver, testLogger(), authMW).RegisterRoutes(router)

	body := bytes.NewBufferString(`{"farm_id":"farm-1"}`)
	req := httptest.NewRequest(http.MethodPut, "/session/farm", body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearerFor(t, jwtSvc, "user-1"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestListFarmSensorsDerivesStatus(t *testing.T) {
	jwtSvc, authMW := testJWT(t)
	now := time.Now()
	farms := newFakeFarmRepo(&agtmodels.Farm{ID: "farm-1", OwnerID: "user-1"})
	fresh := now.Add(-2 * time.Minute)
	sensors := newFakeSensorRepo(&agtmodels.Sensor{
		ID:     "sensor-1",
		FarmID: "farm-1",
		Name:   "Zone A",
		Latest: &agtmodels.LatestReading{SoilMoisture: floatPtr(40), Timestamp: &fresh},
	})
	router := gin.New()
	NewSensorController(farms, sensors, testLogger(), authMW).RegisterRoutes(router)

	req := httptest.NewRequest(http.MethodGet, "/farms/farm-1/sensors", nil)
	req.Header.Set("Authorization", bearerFor(t, jwtSvc, "user-1"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var payload struct {
		Sensors []agtmodels.SensorView `json:"sensors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	require.Len(t, payload.Sensors, 1)
	assert.Equal(t, agtmodels.StatusOnline, payload.Sensors[0].Status)
	assert.Equal(t, "2 min ago", payload.Sensors[0].LastSeen)
}

func TestListFarmSensorsForeignFarmForbidden(t *testing.T) {
	jwtSvc, authMW := testJWT(t)
	farms := newFakeFarmRepo(&agtmodels.Farm{ID: "farm-1", OwnerID: "someone-else"})
	router := gin.New()
	NewSensorController(farms, newFakeSensorRepo(), testLogger(), authMW).RegisterRoutes(router)

	req := httptest.NewRequest(http.MethodGet, "/farms/farm-1/sensors", nil)
	req.Header.Set("Authorization", bearerFor(t, jwtSvc, "user-1"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGetSeriesReordersAscending(t *testing.T) {
	jwtSvc, authMW := testJWT(t)
	farms := newFakeFarmRepo(&agtmodels.Farm{ID: "farm-1", OwnerID: "user-1"})
	sensors := newFakeSensorRepo(&agtmodels.Sensor{ID: "sensor-1", FarmID: "farm-1"})
	readings := newFakeReadingRepo()
	later := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	earlier := time.Date(2026, 5, 1, 8, 30, 0, 0, time.UTC)
	readings.bySensor["sensor-1"] = []agtmodels.Reading{
		{SensorID: "sensor-1", Timestamp: &later, SoilMoisture: floatPtr(42)},
		{SensorID: "sensor-1", Timestamp: &earlier, SoilMoisture: floatPtr(40)},
	}
	router := gin.New()
	NewReadingController(farms, sensors, readings, testLogger(), authMW).RegisterRoutes(router)

	req := httptest.NewRequest(http.MethodGet, "/sensors/sensor-1/readings", nil)
	req.Header.Set("Authorization", bearerFor(t, jwtSvc, "user-1"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var payload struct {
		Points []agtmodels.ReadingPoint `json:"points"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	require.Len(t, payload.Points, 2)
	assert.Equal(t, 40.0, payload.Points[0].Moisture)
	assert.Equal(t, 42.0, payload.Points[1].Moisture)
}

func TestGetSeriesRejectsBadWindow(t *testing.T) {
	jwtSvc, authMW := testJWT(t)
	farms := newFakeFarmRepo(&agtmodels.Farm{ID: "farm-1", OwnerID: "user-1"})
	sensors := newFakeSensorRepo(&agtmodels.Sensor{ID: "sensor-1", FarmID: "farm-1"})
	router := gin.New()
	NewReadingController(farms, sensors, newFakeReadingRepo(), testLogger(), authMW).RegisterRoutes(router)

	req := httptest.NewRequest(http.MethodGet, "/sensors/sensor-1/readings?window=abc", nil)
	req.Header.Set("Authorization", bearerFor(t, jwtSvc, "user-1"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInternalReadingsRequiresSecret(t *testing.T) {
	router := gin.New()
	NewInternalController(newFakeSensorRepo(), newFakeReadingRepo(), testLogger(), "hush").RegisterRoutes(router)

	body := bytes.NewBufferString(`{"readings":[{"sensor_id":"sensor-1","ts":"2026-05-01T08:30:00Z"}]}`)
	req := httptest.NewRequest(http.MethodPost, "/internal/readings", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestInternalReadingsIngestsBatch(t *testing.T) {
	sensors := newFakeSensorRepo(&agtmodels.Sensor{ID: "sensor-1", FarmID: "farm-1"})
	readings := newFakeReadingRepo()
	router := gin.New()
	NewInternalController(sensors, readings, testLogger(), "hush").RegisterRoutes(router)

	body := bytes.NewBufferString(`{"readings":[
		{"sensor_id":"sensor-1","ts":"2026-05-01T08:30:00Z","soil_moisture":41.5},
		{"sensor_id":"ghost","ts":"2026-05-01T08:31:00Z","soil_moisture":10},
		{"sensor_id":"sensor-1","ts":"not-a-time","soil_moisture":12}
	]}`)
	req := httptest.NewRequest(http.MethodPost, "/internal/readings", body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer hush")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var result CreateReadingsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 1, result.Accepted)
	assert.Equal(t, 2, result.Rejected)
	require.Len(t, readings.inserted, 1)
	assert.Contains(t, sensors.updated, "sensor-1")
}

func TestGetAdviceDrySoilWithoutWeather(t *testing.T) {
	jwtSvc, authMW := testJWT(t)
	farms := newFakeFarmRepo(&agtmodels.Farm{ID: "farm-1", OwnerID: "user-1"})
	sensors := newFakeSensorRepo(&agtmodels.Sensor{ID: "sensor-1", FarmID: "farm-1"})
	readings := newFakeReadingRepo()
	at := time.Date(2026, 5, 1, 8, 30, 0, 0, time.UTC)
	readings.bySensor["sensor-1"] = []agtmodels.Reading{
		{SensorID: "sensor-1", Timestamp: &at, SoilMoisture: floatPtr(10)},
	}
	router := gin.New()
	NewFarmController(farms, sensors, readings, nil, testLogger(), authMW).RegisterRoutes(router)

	req := httptest.NewRequest(http.MethodGet, "/farms/farm-1/advice", nil)
	req.Header.Set("Authorization", bearerFor(t, jwtSvc, "user-1"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var payload struct {
		AvgMoisture *float64 `json:"avg_moisture"`
		SoilStatus  struct {
			Label string `json:"label"`
		} `json:"soil_status"`
		Advice struct {
			Tone    string `json:"tone"`
			Message string `json:"message"`
		} `json:"advice"`
		Weather interface{} `json:"weather"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	require.NotNil(t, payload.AvgMoisture)
	assert.Equal(t, 10.0, *payload.AvgMoisture)
	assert.Equal(t, "Dry", payload.SoilStatus.Label)
	assert.Equal(t, "bad", payload.Advice.Tone)
	assert.Nil(t, payload.Weather)
}

func TestListFarmsAnonymousGetsEmptyList(t *testing.T) {
	_, authMW := testJWT(t)
	farms := newFakeFarmRepo(&agtmodels.Farm{ID: "farm-1", OwnerID: "user-1"})
	router := gin.New()
	NewFarmController(farms, newFakeSensorRepo(), newFakeReadingRepo(), nil, testLogger(), authMW).RegisterRoutes(router)

	req := httptest.NewRequest(http.MethodGet, "/farms", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var payload struct {
		Farms []agtmodels.Farm `json:"farms"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.Empty(t, payload.Farms)
}

func TestUpdateFarmForeignOwnerForbidden(t *testing.T) {
	jwtSvc, authMW := testJWT(t)
	farms := newFakeFarmRepo(&agtmodels.Farm{ID: "farm-1", OwnerID: "someone-else", Name: "Original"})
	router := gin.New()
	NewFarmController(farms, newFakeSensorRepo(), newFakeReadingRepo(), nil, testLogger(), authMW).RegisterRoutes(router)

	body := bytes.NewBufferString(`{"name":"Taken Over"}`)
	req := httptest.NewRequest(http.MethodPatch, "/farms/farm-1", body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearerFor(t, jwtSvc, "user-1"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Original", farms.farms["farm-1"].Name)
}
