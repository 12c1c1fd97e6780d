package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/quiniela/internal/domain/match"
	"github.com/riskibarqy/quiniela/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/quiniela/internal/platform/logging"
)

func TestJornadaService_CreateLabelsMatchesAndParsesOdds(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	kickoff := time.Date(2024, 9, 14, 14, 0, 0, 0, time.UTC)
	fixture := externalFixture(2001, kickoff, "NS", nil, nil)
	fixture.Odds = []ExternalOdds{{
		FixtureID: 2001,
		Bookmakers: []ExternalBookmaker{{
			ID:   8,
			Name: "Bet365",
			Bets: []ExternalBet{{ID: 1, Name: "Match Winner", Values: []ExternalBetValue{
				{Value: "Home", Odd: "1.85"},
				{Value: "Draw", Odd: "3.60"},
				{Value: "Away", Odd: "4.20"},
			}}},
		}},
	}}
	repo := memory.NewMatchRepository(nil)
	service := NewJornadaService(repo, &stubProvider{fixtures: []ExternalFixture{fixture}}, logging.NewNop())

	got, err := service.Create(ctx, CreateJornadaInput{
		LeagueID:  39,
		Season:    2024,
		StartDate: time.Date(2024, 9, 13, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 9, 16, 0, 0, 0, 0, time.UTC),
		Name:      "jornada-4",
	})
	if err != nil {
		t.Fatalf("create jornada: %v", err)
	}
	if len(got) != 1 || got[0].Jornada != "jornada-4" || !got[0].IsActive {
		t.Fatalf("unexpected created matches: %+v", got)
	}
	if got[0].Odds != (match.Odds{Home: 1.85, Draw: 3.6, Away: 4.2}) {
		t.Fatalf("unexpected odds: %+v", got[0].Odds)
	}

	current, err := service.Current(ctx)
	if err != nil {
		t.Fatalf("current jornada: %v", err)
	}
	if current.Name != "jornada-4" || current.MatchCount != 1 || !current.FirstKickoff.Equal(kickoff) {
		t.Fatalf("unexpected current jornada: %+v", current)
	}
}

func TestJornadaService_CreateValidatesInput(t *testing.T) {
	t.Parallel()

	service := NewJornadaService(memory.NewMatchRepository(nil), &stubProvider{}, logging.NewNop())
	_, err := service.Create(context.Background(), CreateJornadaInput{LeagueID: 39, Name: "jornada-1"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestJornadaService_CurrentPicksEarliestKickoffThenLabel(t *testing.T) {
	t.Parallel()

	early := time.Date(2024, 9, 14, 12, 0, 0, 0, time.UTC)
	repo := memory.NewMatchRepository([]match.Match{
		{FixtureID: 1, LeagueID: 39, KickoffAt: early.Add(48 * time.Hour), IsActive: true, Jornada: "a-later"},
		{FixtureID: 2, LeagueID: 39, KickoffAt: early, IsActive: true, Jornada: "z-early"},
		{FixtureID: 3, LeagueID: 39, KickoffAt: early, IsActive: true, Jornada: "m-early"},
		{FixtureID: 4, LeagueID: 39, KickoffAt: early.Add(-time.Hour), IsActive: false, Jornada: "inactive"},
	})
	service := NewJornadaService(repo, nil, logging.NewNop())

	current, err := service.Current(context.Background())
	if err != nil {
		t.Fatalf("current jornada: %v", err)
	}
	if current.Name != "m-early" {
		t.Fatalf("expected m-early, got %q", current.Name)
	}
}

func TestJornadaService_SetActiveAndDeactivate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := memory.NewMatchRepository([]match.Match{
		{FixtureID: 1, LeagueID: 39, IsActive: true, Jornada: "jornada-1"},
		{FixtureID: 2, LeagueID: 39, IsActive: true, Jornada: "jornada-1"},
		{FixtureID: 3, LeagueID: 39, IsActive: true, Jornada: "jornada-2"},
	})
	service := NewJornadaService(repo, nil, logging.NewNop())

	modified, err := service.Deactivate(ctx, "jornada-1")
	if err != nil {
		t.Fatalf("deactivate jornada: %v", err)
	}
	if modified != 2 {
		t.Fatalf("expected 2 modified, got %d", modified)
	}

	if _, err := service.Deactivate(ctx, "jornada-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second deactivate, got %v", err)
	}
	if _, err := service.SetActive(ctx, "missing", true); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown jornada, got %v", err)
	}

	modified, err = service.SetActive(ctx, "jornada-1", true)
	if err != nil || modified != 2 {
		t.Fatalf("expected reactivation of 2 matches, got modified=%d err=%v", modified, err)
	}
}

func TestJornadaService_TouchKeepsActiveFlag(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := memory.NewMatchRepository([]match.Match{
		{FixtureID: 1, LeagueID: 39, IsActive: false, Jornada: "jornada-1"},
		{FixtureID: 2, LeagueID: 39, IsActive: true, Jornada: "jornada-1"},
	})
	stamp := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	repo.SetClock(func() time.Time { return stamp })
	service := NewJornadaService(repo, nil, logging.NewNop())

	touched, err := service.Touch(ctx, "jornada-1")
	if err != nil || touched != 2 {
		t.Fatalf("expected 2 touched, got touched=%d err=%v", touched, err)
	}

	inactive, _, _ := repo.GetByFixtureID(ctx, 1)
	if inactive.IsActive {
		t.Fatalf("expected inactive match to stay inactive")
	}
	if !inactive.LastUpdated.Equal(stamp) {
		t.Fatalf("expected last_updated=%s, got %s", stamp, inactive.LastUpdated)
	}

	if _, err := service.Touch(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown jornada, got %v", err)
	}
	if _, err := service.Touch(ctx, "  "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for blank jornada, got %v", err)
	}
}

func TestJornadaService_CreateRejectsLoginKeyName(t *testing.T) {
	t.Parallel()

	service := NewJornadaService(memory.NewMatchRepository(nil), &stubProvider{}, logging.NewNop())
	_, err := service.Create(context.Background(), CreateJornadaInput{
		LeagueID:  39,
		Season:    2024,
		StartDate: time.Date(2024, 9, 13, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 9, 16, 0, 0, 0, 0, time.UTC),
		Name:      "login:2024-09-14",
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
