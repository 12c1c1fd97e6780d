package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/quiniela/internal/domain/user"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// userDocument is the flattened projection read by the betting frontends,
// keyed by username.
// The password hash never leaves the relational store.
type userDocument struct {
	UserID              int64                `bson:"user_id"`
	Username            string               `bson:"username"`
	Email               string               `bson:"email"`
	FirstName           string               `bson:"first_name"`
	LastName            string               `bson:"last_name"`
	IsActive            bool                 `bson:"is_active"`
	IsStaff             bool                 `bson:"is_staff"`
	VirtualCoins        primitive.Decimal128 `bson:"virtual_coins"`
	LastCoinsAssignment *time.Time           `bson:"last_coins_assignment"`
	DateJoined          time.Time            `bson:"date_joined"`
	LastUpdated         time.Time            `bson:"last_updated"`
	Version             int64                `bson:"version"`
}

type UserMirrorRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewUserMirrorRepository(db *mongo.Database) *UserMirrorRepository {
	return &UserMirrorRepository{coll: db.Collection(CollectionUsers), now: time.Now}
}

func (r *UserMirrorRepository) Upsert(ctx context.Context, item user.User) error {
	coins, err := primitive.ParseDecimal128(item.VirtualCoins.StringFixed(2))
	if err != nil {
		return fmt.Errorf("encode virtual coins %s: %w", item.VirtualCoins, err)
	}

	var last *time.Time
	if item.LastCoinsAssignment != nil {
		utc := item.LastCoinsAssignment.UTC()
		last = &utc
	}

	doc := userDocument{
		UserID:              item.ID,
		Username:            item.Username,
		Email:               item.Email,
		FirstName:           item.FirstName,
		LastName:            item.LastName,
		IsActive:            item.IsActive,
		IsStaff:             item.IsStaff,
		VirtualCoins:        coins,
		LastCoinsAssignment: last,
		DateJoined:          item.CreatedAt.UTC(),
		LastUpdated:         r.now().UTC(),
		Version:             item.Version,
	}

	_, err = r.coll.UpdateOne(ctx,
		newerSnapshotFilter(item.Username, item.Version),
		bson.M{"$set": doc},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		// The filter misses a document holding the same or a newer version,
		// so the upsert collides with the unique username index.
		if mongo.IsDuplicateKeyError(err) {
			return nil
		}
		return fmt.Errorf("upsert user mirror %d: %w", item.ID, err)
	}
	return nil
}

// newerSnapshotFilter matches the projection only while it is older than
// version. Documents written before versioning count as oldest.
func newerSnapshotFilter(username string, version int64) bson.M {
	return bson.M{
		"username": username,
		"$or": bson.A{
			bson.M{"version": bson.M{"$lt": version}},
			bson.M{"version": bson.M{"$exists": false}},
		},
	}
}
