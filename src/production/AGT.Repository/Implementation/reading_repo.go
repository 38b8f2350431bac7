package implementation

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	agtmodels "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Models"
)

const readingsCollection = "readings"

type MongoReadingRepository struct {
	coll *mongo.Collection
}

func NewMongoReadingRepository(db *mongo.Database) *MongoReadingRepository {
	return &MongoReadingRepository{coll: db.Collection(readingsCollection)}
}

// Create readings
func (r *MongoReadingRepository) Insert(ctx context.Context, reading *agtmodels.Reading) error {
	_, err := r.coll.InsertOne(ctx, encodeReading(reading))
	return mapMongoError(err, "reading not found")
}

func (r *MongoReadingRepository) InsertMany(ctx context.Context, readings []agtmodels.Reading) error {
	if len(readings) == 0 {
		return nil
	}
	docs := make([]interface{}, 0, len(readings))
	for i := range readings {
		docs = append(docs, encodeReading(&readings[i]))
	}
	// Unordered so one bad document does not sink the batch.
	_, err := r.coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	return mapMongoError(err, "reading not found")
}

// LatestPage returns the window most recent readings for a sensor,
// newest first.
func (r *MongoReadingRepository) LatestPage(ctx context.Context, sensorID string, window int) ([]agtmodels.Reading, error) {
	if window < 1 {
		window = 1
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(window))
	cursor, err := r.coll.Find(ctx, bson.M{"sensorId": sensorID}, opts)
	if err != nil {
		return nil, mapMongoError(err, "reading not found")
	}
	defer cursor.Close(ctx)

	readings := []agtmodels.Reading{}
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return nil, mapMongoError(err, "reading not found")
		}
		readings = append(readings, decodeReading(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, mapMongoError(err, "reading not found")
	}
	return readings, nil
}

func encodeReading(reading *agtmodels.Reading) bson.M {
	doc := bson.M{"sensorId": reading.SensorID}
	if reading.Timestamp != nil {
		doc["timestamp"] = reading.Timestamp.UTC()
	} else {
		doc["timestamp"] = time.Now().UTC()
	}
	if reading.SoilMoisture != nil {
		doc["soilMoisture"] = *reading.SoilMoisture
	}
	if reading.TempC != nil {
		doc["tempC"] = *reading.TempC
	}
	return doc
}

func decodeReading(doc bson.M) agtmodels.Reading {
	return agtmodels.Reading{
		SensorID:     docString(doc, "sensorId"),
		Timestamp:    docTime(doc, "timestamp"),
		SoilMoisture: docFloat(doc, "soilMoisture", "soil_moisture"),
		TempC:        docFloat(doc, "tempC", "temp_c", "temperature"),
	}
}
