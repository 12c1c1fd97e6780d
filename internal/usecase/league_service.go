package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/quiniela/internal/domain/league"
	"github.com/riskibarqy/quiniela/internal/platform/logging"
)

type SyncLeaguesInput struct {
	Country string
	// Season defaults to the current year.
	Season int
}

type LeagueService struct {
	leagueRepo league.Repository
	provider   FootballProvider
	logger     *logging.Logger
	now        func() time.Time
}

func NewLeagueService(leagueRepo league.Repository, provider FootballProvider, logger *logging.Logger) *LeagueService {
	if logger == nil {
		logger = logging.Default()
	}

	return &LeagueService{
		leagueRepo: leagueRepo,
		provider:   provider,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *LeagueService) ListLeagues(ctx context.Context) ([]league.League, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.ListLeagues")
	defer span.End()

	leagues, err := s.leagueRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list leagues: %w", err)
	}

	return leagues, nil
}

// SyncLeagues pulls leagues from the provider and upserts each one. A
// failing item is logged and skipped.
func (s *LeagueService) SyncLeagues(ctx context.Context, input SyncLeaguesInput) ([]league.League, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.SyncLeagues")
	defer span.End()

	if s.provider == nil {
		return nil, fmt.Errorf("%w: football provider is not configured", ErrDependencyUnavailable)
	}
	if input.Season < 0 {
		return nil, fmt.Errorf("%w: season must be >= 0", ErrInvalidInput)
	}

	now := s.now().UTC()
	season := input.Season
	if season == 0 {
		season = now.Year()
	}

	items, err := s.provider.ListLeagues(ctx, LeagueQuery{
		Country: strings.TrimSpace(input.Country),
		Season:  season,
	})
	if err != nil {
		return nil, fmt.Errorf("fetch leagues: %w", err)
	}

	synced := make([]league.League, 0, len(items))
	for _, item := range items {
		candidate := league.League{
			LeagueID:    item.LeagueID,
			Name:        strings.TrimSpace(item.Name),
			Country:     strings.TrimSpace(item.Country),
			Logo:        item.Logo,
			Type:        item.Type,
			Season:      season,
			IsActive:    true,
			LastUpdated: now,
		}
		if err := candidate.Validate(); err != nil {
			s.logger.WarnContext(ctx, "skip invalid league from provider", "league_id", item.LeagueID, "error", err)
			continue
		}

		stored, err := s.leagueRepo.Upsert(ctx, candidate)
		if err != nil {
			s.logger.ErrorContext(ctx, "upsert league failed", "league_id", candidate.LeagueID, "error", err)
			continue
		}
		synced = append(synced, stored)
	}

	s.logger.InfoContext(ctx, "leagues synced",
		"country", input.Country,
		"season", season,
		"received", len(items),
		"synced", len(synced),
	)
	return synced, nil
}
