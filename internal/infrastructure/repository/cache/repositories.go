// Package cache decorates the league and team repositories with read-through
// caching. Every upsert purges the decorator's reads.
package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/riskibarqy/quiniela/internal/domain/league"
	"github.com/riskibarqy/quiniela/internal/domain/team"
	basecache "github.com/riskibarqy/quiniela/internal/platform/cache"
)

const activeLeaguesKey = "active"

type lookup[T any] struct {
	value  T
	exists bool
}

type LeagueRepository struct {
	next  league.Repository
	lists *basecache.Store[[]league.League]
	byID  *basecache.Store[lookup[league.League]]
}

var _ league.Repository = (*LeagueRepository)(nil)

func NewLeagueRepository(next league.Repository, ttl time.Duration) *LeagueRepository {
	return &LeagueRepository{
		next:  next,
		lists: basecache.NewStore[[]league.League](ttl),
		byID:  basecache.NewStore[lookup[league.League]](ttl),
	}
}

func (r *LeagueRepository) ListActive(ctx context.Context) ([]league.League, error) {
	items, err := r.lists.GetOrLoad(ctx, activeLeaguesKey, r.next.ListActive)
	if err != nil {
		return nil, err
	}
	return append([]league.League(nil), items...), nil
}

func (r *LeagueRepository) GetByID(ctx context.Context, leagueID int64) (league.League, bool, error) {
	found, err := r.byID.GetOrLoad(ctx, strconv.FormatInt(leagueID, 10), func(ctx context.Context) (lookup[league.League], error) {
		item, exists, err := r.next.GetByID(ctx, leagueID)
		return lookup[league.League]{value: item, exists: exists}, err
	})
	if err != nil {
		return league.League{}, false, err
	}
	return found.value, found.exists, nil
}

func (r *LeagueRepository) Upsert(ctx context.Context, item league.League) (league.League, error) {
	stored, err := r.next.Upsert(ctx, item)
	if err != nil {
		return league.League{}, err
	}
	r.lists.Purge(ctx)
	r.byID.Delete(ctx, strconv.FormatInt(stored.LeagueID, 10))
	return stored, nil
}

type TeamRepository struct {
	next  team.Repository
	lists *basecache.Store[[]team.Team]
	byID  *basecache.Store[lookup[team.Team]]
}

var _ team.Repository = (*TeamRepository)(nil)

func NewTeamRepository(next team.Repository, ttl time.Duration) *TeamRepository {
	return &TeamRepository{
		next:  next,
		lists: basecache.NewStore[[]team.Team](ttl),
		byID:  basecache.NewStore[lookup[team.Team]](ttl),
	}
}

func (r *TeamRepository) List(ctx context.Context, leagueID int64) ([]team.Team, error) {
	items, err := r.lists.GetOrLoad(ctx, strconv.FormatInt(leagueID, 10), func(ctx context.Context) ([]team.Team, error) {
		return r.next.List(ctx, leagueID)
	})
	if err != nil {
		return nil, err
	}
	return cloneTeams(items), nil
}

func (r *TeamRepository) GetByID(ctx context.Context, teamID int64) (team.Team, bool, error) {
	found, err := r.byID.GetOrLoad(ctx, strconv.FormatInt(teamID, 10), func(ctx context.Context) (lookup[team.Team], error) {
		item, exists, err := r.next.GetByID(ctx, teamID)
		return lookup[team.Team]{value: item, exists: exists}, err
	})
	if err != nil {
		return team.Team{}, false, err
	}
	item := found.value
	item.LeagueIDs = append([]int64(nil), item.LeagueIDs...)
	return item, found.exists, nil
}

// Upsert writes through. A team can join several league lists, so every
// cached list is dropped.
func (r *TeamRepository) Upsert(ctx context.Context, item team.Team) (team.Team, error) {
	stored, err := r.next.Upsert(ctx, item)
	if err != nil {
		return team.Team{}, err
	}
	r.lists.Purge(ctx)
	r.byID.Delete(ctx, strconv.FormatInt(stored.TeamID, 10))
	return stored, nil
}

func cloneTeams(items []team.Team) []team.Team {
	out := make([]team.Team, 0, len(items))
	for _, item := range items {
		item.LeagueIDs = append([]int64(nil), item.LeagueIDs...)
		out = append(out, item)
	}
	return out
}
