package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/quiniela/internal/domain/league"
	leaguemock "github.com/riskibarqy/quiniela/internal/mocks/domain/league"
	"github.com/riskibarqy/quiniela/internal/platform/logging"
	"github.com/stretchr/testify/mock"
)

func TestLeagueService_SyncLeagues_UpsertsEachLeagueUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	leagueRepo := leaguemock.NewRepository(t)
	provider := &stubProvider{
		leagues: []ExternalLeague{
			{LeagueID: 39, Name: "Premier League", Type: "League", Country: "England", Seasons: []ExternalSeason{{Year: 2024, Current: true}}},
			{LeagueID: 140, Name: "La Liga", Type: "League", Country: "Spain"},
		},
	}

	service := NewLeagueService(leagueRepo, provider, logging.NewNop())
	service.now = func() time.Time { return time.Date(2024, 9, 1, 10, 0, 0, 0, time.UTC) }

	for _, id := range []int64{39, 140} {
		leagueID := id
		leagueRepo.
			On("Upsert", mock.Anything, mock.MatchedBy(func(v league.League) bool {
				return v.LeagueID == leagueID && v.IsActive && v.Season == 2024
			})).
			Return(func(_ context.Context, v league.League) (league.League, error) { return v, nil }).
			Once()
	}

	got, err := service.SyncLeagues(ctx, SyncLeaguesInput{})
	if err != nil {
		t.Fatalf("sync leagues: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("unexpected league count: got=%d want=2", len(got))
	}
	if got[0].Name != "Premier League" || got[1].Country != "Spain" {
		t.Fatalf("unexpected leagues: %+v", got)
	}
}

func TestLeagueService_SyncLeagues_SkipsFailedUpsertUsingMockery(t *testing.T) {
	t.Parallel()

	leagueRepo := leaguemock.NewRepository(t)
	provider := &stubProvider{
		leagues: []ExternalLeague{
			{LeagueID: 39, Name: "Premier League"},
			{LeagueID: 140, Name: "La Liga"},
		},
	}
	service := NewLeagueService(leagueRepo, provider, logging.NewNop())

	leagueRepo.
		On("Upsert", mock.Anything, mock.MatchedBy(func(v league.League) bool { return v.LeagueID == 39 })).
		Return(league.League{}, errors.New("write conflict")).
		Once()
	leagueRepo.
		On("Upsert", mock.Anything, mock.MatchedBy(func(v league.League) bool { return v.LeagueID == 140 })).
		Return(league.League{LeagueID: 140, Name: "La Liga"}, nil).
		Once()

	got, err := service.SyncLeagues(context.Background(), SyncLeaguesInput{Season: 2024})
	if err != nil {
		t.Fatalf("sync leagues: %v", err)
	}
	if len(got) != 1 || got[0].LeagueID != 140 {
		t.Fatalf("expected only league 140 to be synced, got %+v", got)
	}
}

func TestLeagueService_SyncLeagues_ProviderUnavailable(t *testing.T) {
	t.Parallel()

	service := NewLeagueService(leaguemock.NewRepository(t), nil, logging.NewNop())
	_, err := service.SyncLeagues(context.Background(), SyncLeaguesInput{})
	if !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
}

func TestLeagueService_ListLeaguesUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.WithValue(context.Background(), "trace_id", "trace-456")
	leagueRepo := leaguemock.NewRepository(t)
	service := NewLeagueService(leagueRepo, nil, logging.NewNop())

	leagueRepo.
		On("ListActive", mock.Anything).
		Return([]league.League{{LeagueID: 39, Name: "Premier League", IsActive: true}}, nil).
		Once()

	got, err := service.ListLeagues(ctx)
	if err != nil {
		t.Fatalf("list leagues: %v", err)
	}
	if len(got) != 1 || got[0].LeagueID != 39 {
		t.Fatalf("unexpected leagues: %+v", got)
	}
}
