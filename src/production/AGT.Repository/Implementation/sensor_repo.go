package implementation

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	agtmodels "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Models"
)

const sensorsCollection = "sensors"

type MongoSensorRepository struct {
	coll *mongo.Collection
}

func NewMongoSensorRepository(db *mongo.Database) *MongoSensorRepository {
	return &MongoSensorRepository{coll: db.Collection(sensorsCollection)}
}

// Read sensors
func (r *MongoSensorRepository) Get(ctx context.Context, sensorID string) (*agtmodels.Sensor, error) {
	var doc bson.M
	err := r.coll.FindOne(ctx, bson.M{"_id": sensorID}).Decode(&doc)
	if err != nil {
		return nil, mapMongoError(err, "sensor not found")
	}
	sensor := decodeSensor(doc)
	return &sensor, nil
}

func (r *MongoSensorRepository) ListByFarm(ctx context.Context, farmID string) ([]agtmodels.Sensor, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{"farmId": farmID}, opts)
	if err != nil {
		return nil, mapMongoError(err, "sensor not found")
	}
	defer cursor.Close(ctx)

	sensors := []agtmodels.Sensor{}
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return nil, mapMongoError(err, "sensor not found")
		}
		sensors = append(sensors, decodeSensor(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, mapMongoError(err, "sensor not found")
	}
	return sensors, nil
}

// UpdateLatest overwrites the embedded latest-reading block. Called on
// every ingested reading, so it has to stay a single write.
func (r *MongoSensorRepository) UpdateLatest(ctx context.Context, sensorID string, soilMoisture, tempC *float64, at time.Time) error {
	latest := bson.M{"timestamp": at.UTC()}
	if soilMoisture != nil {
		latest["soilMoisture"] = *soilMoisture
	}
	if tempC != nil {
		latest["tempC"] = *tempC
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": sensorID}, bson.M{"$set": bson.M{"latest": latest}})
	if err != nil {
		return mapMongoError(err, "sensor not found")
	}
	if res.MatchedCount == 0 {
		return agtmodels.E(agtmodels.KindNotFound, "sensor not found")
	}
	return nil
}

// decodeSensor maps a stored document onto the canonical shape,
// probing the alias keys older writers used.
func decodeSensor(doc bson.M) agtmodels.Sensor {
	sensor := agtmodels.Sensor{
		ID:        docID(doc, "_id", "sensorId"),
		FarmID:    docString(doc, "farmId"),
		Name:      docString(doc, "sensorName", "name"),
		Type:      docString(doc, "sensorType", "type"),
		ZoneLabel: docString(doc, "zoneId", "zone"),
	}
	if latest := docSub(doc, "latest"); latest != nil {
		sensor.Latest = &agtmodels.LatestReading{
			SoilMoisture: docFloat(latest, "soilMoisture", "soil_moisture"),
			TempC:        docFloat(latest, "tempC", "temp_c", "temperature"),
			Timestamp:    docTime(latest, "timestamp"),
		}
	}
	return sensor
}
