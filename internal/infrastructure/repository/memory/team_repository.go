package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/quiniela/internal/domain/team"
)

type TeamRepository struct {
	mu    sync.RWMutex
	items map[int64]team.Team
}

func NewTeamRepository(teams []team.Team) *TeamRepository {
	items := make(map[int64]team.Team, len(teams))
	for _, item := range teams {
		items[item.TeamID] = cloneTeam(item)
	}

	return &TeamRepository{items: items}
}

func (r *TeamRepository) List(_ context.Context, leagueID int64) ([]team.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]team.Team, 0, len(r.items))
	for _, item := range r.items {
		if leagueID != 0 && !item.InLeague(leagueID) {
			continue
		}
		out = append(out, cloneTeam(item))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].TeamID < out[j].TeamID
	})

	return out, nil
}

func (r *TeamRepository) GetByID(_ context.Context, teamID int64) (team.Team, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[teamID]
	if !ok {
		return team.Team{}, false, nil
	}

	return cloneTeam(item), true, nil
}

func (r *TeamRepository) Upsert(_ context.Context, item team.Team) (team.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	merged := cloneTeam(item)
	if existing, ok := r.items[item.TeamID]; ok {
		merged.LeagueIDs = append([]int64(nil), existing.LeagueIDs...)
		for _, leagueID := range item.LeagueIDs {
			if !merged.InLeague(leagueID) {
				merged.LeagueIDs = append(merged.LeagueIDs, leagueID)
			}
		}
	}
	r.items[item.TeamID] = merged

	return cloneTeam(merged), nil
}

func cloneTeam(item team.Team) team.Team {
	item.LeagueIDs = append([]int64(nil), item.LeagueIDs...)
	if item.Founded != nil {
		founded := *item.Founded
		item.Founded = &founded
	}
	return item
}
