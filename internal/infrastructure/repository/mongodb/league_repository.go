package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/riskibarqy/quiniela/internal/domain/league"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type leagueDocument struct {
	LeagueID    int64     `bson:"league_id"`
	Name        string    `bson:"name"`
	Country     string    `bson:"country"`
	Logo        string    `bson:"logo"`
	Type        string    `bson:"type"`
	Season      int       `bson:"season"`
	IsActive    bool      `bson:"is_active"`
	LastUpdated time.Time `bson:"last_updated"`
}

func (d leagueDocument) toDomain() league.League {
	return league.League{
		LeagueID:    d.LeagueID,
		Name:        d.Name,
		Country:     d.Country,
		Logo:        d.Logo,
		Type:        d.Type,
		Season:      d.Season,
		IsActive:    d.IsActive,
		LastUpdated: d.LastUpdated.UTC(),
	}
}

type LeagueRepository struct {
	coll *mongo.Collection
}

func NewLeagueRepository(db *mongo.Database) *LeagueRepository {
	return &LeagueRepository{coll: db.Collection(CollectionLeagues)}
}

func (r *LeagueRepository) ListActive(ctx context.Context) ([]league.League, error) {
	opts := options.Find().SetSort(bson.D{{Key: "league_id", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{"is_active": true}, opts)
	if err != nil {
		return nil, fmt.Errorf("find active leagues: %w", err)
	}

	var docs []leagueDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode leagues: %w", err)
	}

	out := make([]league.League, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.toDomain())
	}
	return out, nil
}

func (r *LeagueRepository) GetByID(ctx context.Context, leagueID int64) (league.League, bool, error) {
	var doc leagueDocument
	err := r.coll.FindOne(ctx, bson.M{"league_id": leagueID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return league.League{}, false, nil
	}
	if err != nil {
		return league.League{}, false, fmt.Errorf("find league %d: %w", leagueID, err)
	}

	return doc.toDomain(), true, nil
}

func (r *LeagueRepository) Upsert(ctx context.Context, item league.League) (league.League, error) {
	doc := leagueDocument{
		LeagueID:    item.LeagueID,
		Name:        item.Name,
		Country:     item.Country,
		Logo:        item.Logo,
		Type:        item.Type,
		Season:      item.Season,
		IsActive:    item.IsActive,
		LastUpdated: item.LastUpdated.UTC(),
	}

	var stored leagueDocument
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"league_id": item.LeagueID},
		bson.M{"$set": doc},
		upsertReturningAfter(),
	).Decode(&stored)
	if err != nil {
		return league.League{}, fmt.Errorf("upsert league %d: %w", item.LeagueID, err)
	}

	return stored.toDomain(), nil
}

func upsertReturningAfter() *options.FindOneAndUpdateOptions {
	return options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
}
