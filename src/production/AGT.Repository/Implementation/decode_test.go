package implementation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestDecodeFarmLegacyAliases(t *testing.T) {
	doc := bson.M{
		"_id":                "farm-1",
		"userId":             "user-1",
		"farmName":           "North Paddock",
		"name":               "stale canonical value",
		"location":           "Waikato",
		"sizeInSquareMeters": int32(4200),
		"crops":              bson.A{"maize", "clover"},
		"zones":              int64(3),
	}

	farm := decodeFarm(doc)

	assert.Equal(t, "farm-1", farm.ID)
	assert.Equal(t, "user-1", farm.OwnerID)
	assert.Equal(t, "North Paddock", farm.Name)
	assert.Equal(t, 4200, farm.SizeSquareMeters)
	assert.Equal(t, []string{"maize", "clover"}, farm.Crops)
	assert.Equal(t, 3, farm.ZoneCount)
}

func TestDecodeFarmCanonicalOnly(t *testing.T) {
	farm := decodeFarm(bson.M{
		"_id":    primitive.NewObjectID(),
		"userId": "user-2",
		"name":   "South Field",
	})

	assert.Equal(t, "South Field", farm.Name)
	assert.NotEmpty(t, farm.ID)
	assert.Empty(t, farm.Location)
	assert.NotNil(t, farm.Crops)
	assert.Equal(t, 1, farm.ZoneCount)
}

func TestDecodeSensorLegacyAliases(t *testing.T) {
	at := time.Date(2026, 5, 1, 8, 30, 0, 0, time.UTC)
	doc := bson.M{
		"_id":        "sensor-1",
		"farmId":     "farm-1",
		"sensorName": "Zone A probe",
		"sensorType": "soil",
		"zoneId":     "A",
		"latest": bson.M{
			"soilMoisture": 41.5,
			"tempC":        int32(19),
			"timestamp":    primitive.NewDateTimeFromTime(at),
		},
	}

	sensor := decodeSensor(doc)

	assert.Equal(t, "Zone A probe", sensor.Name)
	assert.Equal(t, "soil", sensor.Type)
	assert.Equal(t, "A", sensor.ZoneLabel)
	require.NotNil(t, sensor.Latest)
	require.NotNil(t, sensor.Latest.SoilMoisture)
	assert.Equal(t, 41.5, *sensor.Latest.SoilMoisture)
	require.NotNil(t, sensor.Latest.TempC)
	assert.Equal(t, 19.0, *sensor.Latest.TempC)
	require.NotNil(t, sensor.Latest.Timestamp)
	assert.True(t, sensor.Latest.Timestamp.Equal(at))
}

func TestDecodeSensorWithoutLatest(t *testing.T) {
	sensor := decodeSensor(bson.M{
		"_id":    "sensor-2",
		"farmId": "farm-1",
		"name":   "bare",
	})

	assert.Equal(t, "bare", sensor.Name)
	assert.Nil(t, sensor.Latest)
}

func TestDecodeReadingPartialFields(t *testing.T) {
	reading := decodeReading(bson.M{
		"sensorId":     "sensor-1",
		"timestamp":    "2026-05-01T08:30:00Z",
		"soilMoisture": int64(37),
	})

	assert.Equal(t, "sensor-1", reading.SensorID)
	require.NotNil(t, reading.Timestamp)
	assert.Equal(t, 2026, reading.Timestamp.Year())
	require.NotNil(t, reading.SoilMoisture)
	assert.Equal(t, 37.0, *reading.SoilMoisture)
	assert.Nil(t, reading.TempC)
}
