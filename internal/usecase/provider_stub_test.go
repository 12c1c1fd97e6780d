package usecase

import (
	"context"
	"sync"
)

type stubProvider struct {
	mu sync.Mutex

	leagues  []ExternalLeague
	teams    []ExternalTeam
	fixtures []ExternalFixture
	err      error

	teamCalls    []teamCall
	fixtureCalls []FixtureQuery
}

type teamCall struct {
	leagueID int64
	season   int
}

func (p *stubProvider) ListLeagues(_ context.Context, _ LeagueQuery) ([]ExternalLeague, error) {
	return p.leagues, p.err
}

func (p *stubProvider) ListTeams(_ context.Context, leagueID int64, season int) ([]ExternalTeam, error) {
	p.mu.Lock()
	p.teamCalls = append(p.teamCalls, teamCall{leagueID: leagueID, season: season})
	p.mu.Unlock()
	return p.teams, p.err
}

func (p *stubProvider) ListFixtures(_ context.Context, query FixtureQuery) ([]ExternalFixture, error) {
	p.mu.Lock()
	p.fixtureCalls = append(p.fixtureCalls, query)
	p.mu.Unlock()
	return p.fixtures, p.err
}

func (p *stubProvider) GetFixture(_ context.Context, fixtureID int64) (ExternalFixture, bool, error) {
	for _, item := range p.fixtures {
		if item.FixtureID == fixtureID {
			return item, true, p.err
		}
	}
	return ExternalFixture{}, false, p.err
}

func (p *stubProvider) ListOdds(_ context.Context, fixtureID int64) ([]ExternalOdds, error) {
	for _, item := range p.fixtures {
		if item.FixtureID == fixtureID {
			return item.Odds, p.err
		}
	}
	return []ExternalOdds{}, p.err
}

func (p *stubProvider) ListFixturesWithOdds(ctx context.Context, query FixtureQuery) ([]ExternalFixture, error) {
	return p.ListFixtures(ctx, query)
}

func intPtr(v int) *int {
	return &v
}
