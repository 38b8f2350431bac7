package implementation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	agtmodels "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Models"
)

const farmsCollection = "farms"

type MongoFarmRepository struct {
	coll *mongo.Collection
}

func NewMongoFarmRepository(db *mongo.Database) *MongoFarmRepository {
	return &MongoFarmRepository{coll: db.Collection(farmsCollection)}
}

// Create farm
func (r *MongoFarmRepository) Create(ctx context.Context, ownerID string, input *agtmodels.FarmInput) (*agtmodels.Farm, error) {
	now := time.Now().UTC()
	farm := &agtmodels.Farm{
		ID:               uuid.New().String(),
		OwnerID:          ownerID,
		Name:             input.Name,
		Location:         input.Location,
		SizeSquareMeters: input.SizeSquareMeters,
		Crops:            input.Crops,
		ZoneCount:        input.ZoneCount,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if farm.ZoneCount < 1 {
		farm.ZoneCount = 1
	}
	if farm.Crops == nil {
		farm.Crops = []string{}
	}

	doc := bson.M{
		"_id":                farm.ID,
		"farmId":             farm.ID,
		"userId":             farm.OwnerID,
		"name":               farm.Name,
		"location":           farm.Location,
		"sizeInSquareMeters": farm.SizeSquareMeters,
		"crops":              farm.Crops,
		"zones":              farm.ZoneCount,
		"createdAt":          farm.CreatedAt,
		"updatedAt":          farm.UpdatedAt,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, mapMongoError(err, "farm not found")
	}
	return farm, nil
}

// Read farms
func (r *MongoFarmRepository) Get(ctx context.Context, farmID string) (*agtmodels.Farm, error) {
	var doc bson.M
	err := r.coll.FindOne(ctx, bson.M{"_id": farmID}).Decode(&doc)
	if err != nil {
		return nil, mapMongoError(err, "farm not found")
	}
	farm := decodeFarm(doc)
	return &farm, nil
}

func (r *MongoFarmRepository) ListByOwner(ctx context.Context, ownerID string) ([]agtmodels.Farm, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{"userId": ownerID}, opts)
	if err != nil {
		return nil, mapMongoError(err, "farm not found")
	}
	defer cursor.Close(ctx)

	farms := []agtmodels.Farm{}
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return nil, mapMongoError(err, "farm not found")
		}
		farms = append(farms, decodeFarm(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, mapMongoError(err, "farm not found")
	}
	return farms, nil
}

// Update farm. Only the editable subset is ever written; identity and
// ownership fields never appear in the $set document.
func (r *MongoFarmRepository) Update(ctx context.Context, farmID, ownerID string, patch *agtmodels.FarmUpdate) (*agtmodels.Farm, error) {
	current, err := r.Get(ctx, farmID)
	if err != nil {
		return nil, err
	}
	if current.OwnerID != ownerID {
		return nil, agtmodels.E(agtmodels.KindPermissionDenied, "farm belongs to another user")
	}

	set := bson.M{"updatedAt": time.Now().UTC()}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Location != nil {
		set["location"] = *patch.Location
	}
	if patch.SizeSquareMeters != nil {
		set["sizeInSquareMeters"] = *patch.SizeSquareMeters
	}
	if patch.Crops != nil {
		set["crops"] = *patch.Crops
	}

	// Clear the legacy alias on any update so the canonical key wins
	// on the next read.
	update := bson.M{"$set": set}
	if patch.Name != nil {
		update["$unset"] = bson.M{"farmName": ""}
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc bson.M
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": farmID, "userId": ownerID}, update, opts).Decode(&doc)
	if err != nil {
		return nil, mapMongoError(err, "farm not found")
	}
	farm := decodeFarm(doc)
	return &farm, nil
}

// decodeFarm maps a stored document onto the canonical shape. Older
// documents use "farmName" instead of "name", so both are probed.
func decodeFarm(doc bson.M) agtmodels.Farm {
	farm := agtmodels.Farm{
		ID:               docID(doc, "_id", "farmId"),
		OwnerID:          docString(doc, "userId", "ownerId"),
		Name:             docString(doc, "farmName", "name"),
		Location:         docString(doc, "location"),
		SizeSquareMeters: docInt(doc, "sizeInSquareMeters", "size"),
		Crops:            docStringSlice(doc, "crops"),
		ZoneCount:        docInt(doc, "zones", "zoneCount"),
	}
	if farm.Crops == nil {
		farm.Crops = []string{}
	}
	if farm.ZoneCount < 1 {
		farm.ZoneCount = 1
	}
	if t := docTime(doc, "createdAt"); t != nil {
		farm.CreatedAt = *t
	}
	if t := docTime(doc, "updatedAt"); t != nil {
		farm.UpdatedAt = *t
	}
	return farm
}
