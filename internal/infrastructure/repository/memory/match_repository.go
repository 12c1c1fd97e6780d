package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/quiniela/internal/domain/match"
)

type MatchRepository struct {
	mu    sync.RWMutex
	items map[int64]match.Match
	now   func() time.Time
}

func NewMatchRepository(matches []match.Match) *MatchRepository {
	items := make(map[int64]match.Match, len(matches))
	for _, item := range matches {
		if strings.TrimSpace(item.Jornada) == "" {
			item.Jornada = match.DefaultJornada
		}
		items[item.FixtureID] = item
	}

	return &MatchRepository{items: items, now: time.Now}
}

func (r *MatchRepository) List(_ context.Context, filter match.Filter) ([]match.Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]match.Match, 0, len(r.items))
	for _, item := range r.items {
		if matchesFilter(item, filter) {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].KickoffAt.Equal(out[j].KickoffAt) {
			return out[i].KickoffAt.Before(out[j].KickoffAt)
		}
		return out[i].FixtureID < out[j].FixtureID
	})

	return out, nil
}

func (r *MatchRepository) GetByFixtureID(_ context.Context, fixtureID int64) (match.Match, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[fixtureID]
	return item, ok, nil
}

func (r *MatchRepository) Upsert(_ context.Context, item match.Match) (match.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(item.Jornada) == "" {
		item.Jornada = match.DefaultJornada
		if existing, ok := r.items[item.FixtureID]; ok {
			item.Jornada = existing.Jornada
		}
	}
	r.items[item.FixtureID] = item

	return item, nil
}

func (r *MatchRepository) UpdateStatus(_ context.Context, fixtureID int64, status string, score *match.Score) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[fixtureID]
	if !ok {
		return false, nil
	}

	updated := item
	updated.Status = status
	if score != nil {
		updated.Score = *score
	}
	if updated.Status == item.Status && sameScore(updated.Score, item.Score) {
		return false, nil
	}
	updated.LastUpdated = r.now().UTC()
	r.items[fixtureID] = updated

	return true, nil
}

func (r *MatchRepository) Deactivate(_ context.Context, fixtureIDs []int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var modified int64
	now := r.now().UTC()
	deactivate := func(id int64) {
		item, ok := r.items[id]
		if !ok || !item.IsActive {
			return
		}
		item.IsActive = false
		item.LastUpdated = now
		r.items[id] = item
		modified++
	}

	if len(fixtureIDs) == 0 {
		for id := range r.items {
			deactivate(id)
		}
		return modified, nil
	}
	for _, id := range fixtureIDs {
		deactivate(id)
	}

	return modified, nil
}

func (r *MatchRepository) SetJornadaActive(_ context.Context, jornada string, active bool) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var modified int64
	now := r.now().UTC()
	for id, item := range r.items {
		if item.Jornada != jornada || item.IsActive == active {
			continue
		}
		item.IsActive = active
		item.LastUpdated = now
		r.items[id] = item
		modified++
	}

	return modified, nil
}

func (r *MatchRepository) TouchJornada(_ context.Context, jornada string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var touched int64
	now := r.now().UTC()
	for id, item := range r.items {
		if item.Jornada != jornada {
			continue
		}
		item.LastUpdated = now
		r.items[id] = item
		touched++
	}

	return touched, nil
}

// SetClock replaces the time source used for last_updated stamps.
func (r *MatchRepository) SetClock(now func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.now = now
}

func (r *MatchRepository) ListActiveJornadas(_ context.Context) ([]match.JornadaSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	byName := make(map[string]*match.JornadaSummary)
	for _, item := range r.items {
		if !item.IsActive || item.Jornada == "" {
			continue
		}
		summary, ok := byName[item.Jornada]
		if !ok {
			summary = &match.JornadaSummary{Name: item.Jornada, FirstKickoff: item.KickoffAt}
			byName[item.Jornada] = summary
		}
		if item.KickoffAt.Before(summary.FirstKickoff) {
			summary.FirstKickoff = item.KickoffAt
		}
		summary.MatchCount++
	}

	out := make([]match.JornadaSummary, 0, len(byName))
	for _, summary := range byName {
		out = append(out, *summary)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].FirstKickoff.Equal(out[j].FirstKickoff) {
			return out[i].FirstKickoff.Before(out[j].FirstKickoff)
		}
		return out[i].Name < out[j].Name
	})

	return out, nil
}

func matchesFilter(item match.Match, filter match.Filter) bool {
	if filter.LeagueID != 0 && item.LeagueID != filter.LeagueID {
		return false
	}
	if filter.Jornada != "" && item.Jornada != filter.Jornada {
		return false
	}
	if filter.IsActive != nil {
		if item.IsActive != *filter.IsActive {
			return false
		}
	} else if filter.ActiveOnly && !item.IsActive {
		return false
	}
	if filter.From != nil && item.KickoffAt.Before(*filter.From) {
		return false
	}
	if filter.To != nil && !item.KickoffAt.Before(*filter.To) {
		return false
	}
	return true
}

func sameScore(a, b match.Score) bool {
	return sameGoals(a.Home, b.Home) && sameGoals(a.Away, b.Away)
}

func sameGoals(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
