package implementation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	agtmodels "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Models"
	auth_models "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Models/auth"
)

const usersCollection = "users"

type MongoUserRepository struct {
	coll *mongo.Collection
}

func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{coll: db.Collection(usersCollection)}
}

// Create user
func (r *MongoUserRepository) Create(ctx context.Context, user *auth_models.User) (*auth_models.User, error) {
	if user.UserID == "" {
		user.UserID = uuid.New().String()
	}
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt

	if _, err := r.coll.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, agtmodels.E(agtmodels.KindInvalidInput, "username or email already taken")
		}
		return nil, mapMongoError(err, "user not found")
	}
	return user, nil
}

// Read users
func (r *MongoUserRepository) GetByID(ctx context.Context, userID string) (*auth_models.User, error) {
	return r.findOne(ctx, bson.M{"_id": userID})
}

func (r *MongoUserRepository) GetByUsername(ctx context.Context, username string) (*auth_models.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *MongoUserRepository) GetByEmail(ctx context.Context, email string) (*auth_models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// Update user
func (r *MongoUserRepository) Update(ctx context.Context, user *auth_models.User) error {
	user.UpdatedAt = time.Now().UTC()
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": user.UserID}, user)
	if err != nil {
		return mapMongoError(err, "user not found")
	}
	if res.MatchedCount == 0 {
		return agtmodels.E(agtmodels.KindNotFound, "user not found")
	}
	return nil
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*auth_models.User, error) {
	var user auth_models.User
	if err := r.coll.FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, mapMongoError(err, "user not found")
	}
	return &user, nil
}
