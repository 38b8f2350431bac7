package realtime

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	logger "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Logger"
	agtmodels "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Models"
	interfaces "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Repository/Interfaces"
)

// MongoSource backs subscriptions with Mongo change streams. Snapshots
// go through the repositories so document normalization stays in one
// place.
type MongoSource struct {
	db          *mongo.Database
	sensorRepo  interfaces.SensorRepository
	readingRepo interfaces.ReadingRepository
	logger      *logger.Logger
}

func NewMongoSource(db *mongo.Database, sensorRepo interfaces.SensorRepository, readingRepo interfaces.ReadingRepository, log *logger.Logger) *MongoSource {
	return &MongoSource{db: db, sensorRepo: sensorRepo, readingRepo: readingRepo, logger: log}
}

func (s *MongoSource) ListFarmSensors(ctx context.Context, farmID string) ([]agtmodels.Sensor, error) {
	return s.sensorRepo.ListByFarm(ctx, farmID)
}

func (s *MongoSource) LatestReadings(ctx context.Context, sensorID string, window int) ([]agtmodels.Reading, error) {
	return s.readingRepo.LatestPage(ctx, sensorID, window)
}

func (s *MongoSource) WatchFarmSensors(ctx context.Context, farmID string) (<-chan struct{}, error) {
	match := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{{Key: "fullDocument.farmId", Value: farmID}}}},
	}
	return s.watch(ctx, "sensors", match)
}

func (s *MongoSource) WatchSensorReadings(ctx context.Context, sensorID string) (<-chan struct{}, error) {
	match := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{{Key: "fullDocument.sensorId", Value: sensorID}}}},
	}
	return s.watch(ctx, "readings", match)
}

// watch opens a change stream and coalesces its events into signals.
// The channel closes when the stream ends, whether by cancellation or
// by a stream error; the manager decides which it was.
func (s *MongoSource) watch(ctx context.Context, collection string, pipeline mongo.Pipeline) (<-chan struct{}, error) {
	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)
	stream, err := s.db.Collection(collection).Watch(ctx, pipeline, opts)
	if err != nil {
		return nil, agtmodels.Wrap(agtmodels.KindUnavailable, "opening change stream", err)
	}

	ch := make(chan struct{}, 1)
	go func() {
		defer close(ch)
		defer stream.Close(context.Background())

		for stream.Next(ctx) {
			select {
			case ch <- struct{}{}:
			default:
				// A pending signal already covers this change.
			}
		}
		if err := stream.Err(); err != nil && ctx.Err() == nil {
			s.logger.WithError(err).WithField("collection", collection).Warn("change stream terminated")
		}
	}()
	return ch, nil
}
