package mongodb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/quiniela/internal/domain/match"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// matchDocument keeps the flat layout the matches collection has always
// used: team and league fields are prefixed instead of nested.
type matchDocument struct {
	FixtureID     int64         `bson:"fixture_id"`
	LeagueID      int64         `bson:"league_id"`
	LeagueName    string        `bson:"league_name"`
	LeagueCountry string        `bson:"league_country"`
	LeagueLogo    string        `bson:"league_logo"`
	Season        int           `bson:"season"`
	Round         string        `bson:"round"`
	HomeTeamID    int64         `bson:"home_team_id"`
	HomeTeamName  string        `bson:"home_team_name"`
	HomeTeamLogo  string        `bson:"home_team_logo"`
	AwayTeamID    int64         `bson:"away_team_id"`
	AwayTeamName  string        `bson:"away_team_name"`
	AwayTeamLogo  string        `bson:"away_team_logo"`
	Date          time.Time     `bson:"date"`
	Timestamp     int64         `bson:"timestamp"`
	Venue         string        `bson:"venue"`
	Status        string        `bson:"status"`
	Elapsed       *int          `bson:"elapsed"`
	Score         scoreDocument `bson:"score"`
	Odds          oddsDocument  `bson:"odds"`
	IsActive      bool          `bson:"is_active"`
	Jornada       string        `bson:"jornada,omitempty"`
	LastUpdated   time.Time     `bson:"last_updated"`
}

type scoreDocument struct {
	Home *int `bson:"home"`
	Away *int `bson:"away"`
}

type oddsDocument struct {
	Home float64 `bson:"home"`
	Draw float64 `bson:"draw"`
	Away float64 `bson:"away"`
}

type jornadaDocument struct {
	Name         string    `bson:"_id"`
	FirstKickoff time.Time `bson:"first_kickoff"`
	MatchCount   int       `bson:"match_count"`
}

func newMatchDocument(item match.Match) matchDocument {
	return matchDocument{
		FixtureID:     item.FixtureID,
		LeagueID:      item.LeagueID,
		LeagueName:    item.LeagueName,
		LeagueCountry: item.LeagueCountry,
		LeagueLogo:    item.LeagueLogo,
		Season:        item.Season,
		Round:         item.Round,
		HomeTeamID:    item.HomeTeam.ID,
		HomeTeamName:  item.HomeTeam.Name,
		HomeTeamLogo:  item.HomeTeam.Logo,
		AwayTeamID:    item.AwayTeam.ID,
		AwayTeamName:  item.AwayTeam.Name,
		AwayTeamLogo:  item.AwayTeam.Logo,
		Date:          item.KickoffAt.UTC(),
		Timestamp:     item.Timestamp,
		Venue:         item.Venue,
		Status:        item.Status,
		Elapsed:       item.Elapsed,
		Score:         scoreDocument{Home: item.Score.Home, Away: item.Score.Away},
		Odds:          oddsDocument{Home: item.Odds.Home, Draw: item.Odds.Draw, Away: item.Odds.Away},
		IsActive:      item.IsActive,
		Jornada:       strings.TrimSpace(item.Jornada),
		LastUpdated:   item.LastUpdated.UTC(),
	}
}

func (d matchDocument) toDomain() match.Match {
	return match.Match{
		FixtureID:     d.FixtureID,
		LeagueID:      d.LeagueID,
		LeagueName:    d.LeagueName,
		LeagueCountry: d.LeagueCountry,
		LeagueLogo:    d.LeagueLogo,
		Season:        d.Season,
		Round:         d.Round,
		HomeTeam:      match.TeamRef{ID: d.HomeTeamID, Name: d.HomeTeamName, Logo: d.HomeTeamLogo},
		AwayTeam:      match.TeamRef{ID: d.AwayTeamID, Name: d.AwayTeamName, Logo: d.AwayTeamLogo},
		KickoffAt:     d.Date.UTC(),
		Timestamp:     d.Timestamp,
		Venue:         d.Venue,
		Status:        d.Status,
		Elapsed:       d.Elapsed,
		Score:         match.Score{Home: d.Score.Home, Away: d.Score.Away},
		Odds:          match.Odds{Home: d.Odds.Home, Draw: d.Odds.Draw, Away: d.Odds.Away},
		IsActive:      d.IsActive,
		Jornada:       d.Jornada,
		LastUpdated:   d.LastUpdated.UTC(),
	}
}

type MatchRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewMatchRepository(db *mongo.Database) *MatchRepository {
	return &MatchRepository{coll: db.Collection(CollectionMatches), now: time.Now}
}

func (r *MatchRepository) List(ctx context.Context, filter match.Filter) ([]match.Match, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "fixture_id", Value: 1}})
	cursor, err := r.coll.Find(ctx, matchFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("find matches: %w", err)
	}

	var docs []matchDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode matches: %w", err)
	}

	out := make([]match.Match, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.toDomain())
	}
	return out, nil
}

func (r *MatchRepository) GetByFixtureID(ctx context.Context, fixtureID int64) (match.Match, bool, error) {
	var doc matchDocument
	err := r.coll.FindOne(ctx, bson.M{"fixture_id": fixtureID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return match.Match{}, false, nil
	}
	if err != nil {
		return match.Match{}, false, fmt.Errorf("find match %d: %w", fixtureID, err)
	}

	return doc.toDomain(), true, nil
}

// Upsert writes the match keyed by fixture_id. An empty jornada is left out
// of $set so the stored label survives; new documents get the default.
func (r *MatchRepository) Upsert(ctx context.Context, item match.Match) (match.Match, error) {
	var stored matchDocument
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"fixture_id": item.FixtureID}, matchUpsertUpdate(newMatchDocument(item)), upsertReturningAfter()).Decode(&stored)
	if err != nil {
		return match.Match{}, fmt.Errorf("upsert match %d: %w", item.FixtureID, err)
	}

	return stored.toDomain(), nil
}

func (r *MatchRepository) UpdateStatus(ctx context.Context, fixtureID int64, status string, score *match.Score) (bool, error) {
	set := bson.M{
		"status":       status,
		"last_updated": r.now().UTC(),
	}
	if score != nil {
		set["score"] = scoreDocument{Home: score.Home, Away: score.Away}
	}

	result, err := r.coll.UpdateOne(ctx, bson.M{"fixture_id": fixtureID}, bson.M{"$set": set})
	if err != nil {
		return false, fmt.Errorf("update match %d status: %w", fixtureID, err)
	}

	return result.ModifiedCount > 0, nil
}

func (r *MatchRepository) Deactivate(ctx context.Context, fixtureIDs []int64) (int64, error) {
	filter := bson.M{"is_active": true}
	if len(fixtureIDs) > 0 {
		filter["fixture_id"] = bson.M{"$in": fixtureIDs}
	}

	result, err := r.coll.UpdateMany(ctx, filter, bson.M{"$set": bson.M{
		"is_active":    false,
		"last_updated": r.now().UTC(),
	}})
	if err != nil {
		return 0, fmt.Errorf("deactivate matches: %w", err)
	}

	return result.ModifiedCount, nil
}

func (r *MatchRepository) SetJornadaActive(ctx context.Context, jornada string, active bool) (int64, error) {
	filter := bson.M{"jornada": jornada, "is_active": !active}
	result, err := r.coll.UpdateMany(ctx, filter, bson.M{"$set": bson.M{
		"is_active":    active,
		"last_updated": r.now().UTC(),
	}})
	if err != nil {
		return 0, fmt.Errorf("set jornada %q active=%t: %w", jornada, active, err)
	}

	return result.ModifiedCount, nil
}

func (r *MatchRepository) TouchJornada(ctx context.Context, jornada string) (int64, error) {
	result, err := r.coll.UpdateMany(ctx, bson.M{"jornada": jornada}, bson.M{"$set": bson.M{
		"last_updated": r.now().UTC(),
	}})
	if err != nil {
		return 0, fmt.Errorf("touch jornada %q: %w", jornada, err)
	}

	return result.MatchedCount, nil
}

func (r *MatchRepository) ListActiveJornadas(ctx context.Context) ([]match.JornadaSummary, error) {
	cursor, err := r.coll.Aggregate(ctx, activeJornadasPipeline())
	if err != nil {
		return nil, fmt.Errorf("aggregate active jornadas: %w", err)
	}

	var docs []jornadaDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode active jornadas: %w", err)
	}

	out := make([]match.JornadaSummary, 0, len(docs))
	for _, doc := range docs {
		out = append(out, match.JornadaSummary{
			Name:         doc.Name,
			FirstKickoff: doc.FirstKickoff.UTC(),
			MatchCount:   doc.MatchCount,
		})
	}
	return out, nil
}

func matchUpsertUpdate(doc matchDocument) bson.M {
	update := bson.M{"$set": doc}
	if doc.Jornada == "" {
		update["$setOnInsert"] = bson.M{"jornada": match.DefaultJornada}
	}
	return update
}

// activeJornadasPipeline groups active labelled matches by jornada, earliest
// kickoff first and then by name.
func activeJornadasPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"is_active": true, "jornada": bson.M{"$nin": bson.A{nil, ""}}}}},
		{{Key: "$group", Value: bson.M{
			"_id":           "$jornada",
			"first_kickoff": bson.M{"$min": "$date"},
			"match_count":   bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "first_kickoff", Value: 1}, {Key: "_id", Value: 1}}}},
	}
}

func matchFilter(filter match.Filter) bson.M {
	query := bson.M{}
	if filter.LeagueID != 0 {
		query["league_id"] = filter.LeagueID
	}
	if jornada := strings.TrimSpace(filter.Jornada); jornada != "" {
		query["jornada"] = jornada
	}
	if filter.IsActive != nil {
		query["is_active"] = *filter.IsActive
	} else if filter.ActiveOnly {
		query["is_active"] = true
	}

	dateRange := bson.M{}
	if filter.From != nil {
		dateRange["$gte"] = filter.From.UTC()
	}
	if filter.To != nil {
		dateRange["$lt"] = filter.To.UTC()
	}
	if len(dateRange) > 0 {
		query["date"] = dateRange
	}
	return query
}
