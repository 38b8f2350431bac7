package agtingestor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	config "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Config"
	logger "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Logger"
	hardware_models "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Models/hardware"
)

func testIngestor() *Ingestor {
	cfg := &config.IngestorConfig{BatchSize: 10, BatchWindow: time.Second}
	log := logger.NewLogger(&config.LoggingConfig{Level: "error", Format: "console"})
	return New(cfg, nil, log)
}

func TestToIngestReadingUsesPayloadTimestamp(t *testing.T) {
	ing := testIngestor()
	queued := hardware_models.ReadingWithTopic{
		FarmID:   "farm-1",
		SensorID: "sensor-1",
		Payload: map[string]interface{}{
			"soil_moisture": 41.5,
			"temp_c":        19.0,
			"timestamp":     "2026-05-01T08:30:00Z",
		},
		ReceivedAt: time.Date(2026, 5, 1, 8, 35, 0, 0, time.UTC),
	}

	reading, err := ing.toIngestReading(queued)

	require.NoError(t, err)
	assert.Equal(t, "sensor-1", reading.SensorID)
	assert.Equal(t, "2026-05-01T08:30:00Z", reading.Ts)
	require.NotNil(t, reading.SoilMoisture)
	assert.Equal(t, 41.5, *reading.SoilMoisture)
	require.NotNil(t, reading.TempC)
	assert.Equal(t, 19.0, *reading.TempC)
}

func TestToIngestReadingFallsBackToReceiptTime(t *testing.T) {
	ing := testIngestor()
	queued := hardware_models.ReadingWithTopic{
		SensorID:   "sensor-1",
		Payload:    map[string]interface{}{"moisture": 33.0},
		ReceivedAt: time.Date(2026, 5, 1, 8, 35, 0, 0, time.UTC),
	}

	reading, err := ing.toIngestReading(queued)

	require.NoError(t, err)
	assert.Equal(t, "2026-05-01T08:35:00Z", reading.Ts)
	require.NotNil(t, reading.SoilMoisture)
	assert.Equal(t, 33.0, *reading.SoilMoisture)
	assert.Nil(t, reading.TempC)
}

func TestToIngestReadingRejectsEmptyPayload(t *testing.T) {
	ing := testIngestor()
	queued := hardware_models.ReadingWithTopic{
		SensorID:   "sensor-1",
		Payload:    map[string]interface{}{"raw": "garbage"},
		ReceivedAt: time.Now().UTC(),
	}

	_, err := ing.toIngestReading(queued)

	assert.Error(t, err)
}
