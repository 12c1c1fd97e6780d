package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/riskibarqy/quiniela/internal/domain/team"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type teamDocument struct {
	TeamID      int64     `bson:"team_id"`
	Name        string    `bson:"name"`
	Logo        string    `bson:"logo"`
	Country     string    `bson:"country"`
	Founded     *int      `bson:"founded"`
	LeagueIDs   []int64   `bson:"league_ids,omitempty"`
	LastUpdated time.Time `bson:"last_updated"`
}

func (d teamDocument) toDomain() team.Team {
	return team.Team{
		TeamID:      d.TeamID,
		Name:        d.Name,
		Logo:        d.Logo,
		Country:     d.Country,
		Founded:     d.Founded,
		LeagueIDs:   d.LeagueIDs,
		LastUpdated: d.LastUpdated.UTC(),
	}
}

type TeamRepository struct {
	coll *mongo.Collection
}

func NewTeamRepository(db *mongo.Database) *TeamRepository {
	return &TeamRepository{coll: db.Collection(CollectionTeams)}
}

func (r *TeamRepository) List(ctx context.Context, leagueID int64) ([]team.Team, error) {
	filter := bson.M{}
	if leagueID != 0 {
		filter["league_ids"] = leagueID
	}

	opts := options.Find().SetSort(bson.D{{Key: "team_id", Value: 1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find teams: %w", err)
	}

	var docs []teamDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode teams: %w", err)
	}

	out := make([]team.Team, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.toDomain())
	}
	return out, nil
}

func (r *TeamRepository) GetByID(ctx context.Context, teamID int64) (team.Team, bool, error) {
	var doc teamDocument
	err := r.coll.FindOne(ctx, bson.M{"team_id": teamID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return team.Team{}, false, nil
	}
	if err != nil {
		return team.Team{}, false, fmt.Errorf("find team %d: %w", teamID, err)
	}

	return doc.toDomain(), true, nil
}

// Upsert sets the tracked fields and adds item.LeagueIDs to the stored set.
func (r *TeamRepository) Upsert(ctx context.Context, item team.Team) (team.Team, error) {
	update := bson.M{
		"$set": bson.M{
			"team_id":      item.TeamID,
			"name":         item.Name,
			"logo":         item.Logo,
			"country":      item.Country,
			"founded":      item.Founded,
			"last_updated": item.LastUpdated.UTC(),
		},
	}
	if len(item.LeagueIDs) > 0 {
		update["$addToSet"] = bson.M{"league_ids": bson.M{"$each": item.LeagueIDs}}
	}

	var stored teamDocument
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"team_id": item.TeamID}, update, upsertReturningAfter()).Decode(&stored)
	if err != nil {
		return team.Team{}, fmt.Errorf("upsert team %d: %w", item.TeamID, err)
	}

	return stored.toDomain(), nil
}
