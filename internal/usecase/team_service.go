package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/quiniela/internal/domain/team"
	"github.com/riskibarqy/quiniela/internal/platform/logging"
)

type SyncTeamsInput struct {
	LeagueID int64
	// Season defaults to the current year.
	Season int
}

type TeamService struct {
	teamRepo team.Repository
	provider FootballProvider
	logger   *logging.Logger
	now      func() time.Time
}

func NewTeamService(teamRepo team.Repository, provider FootballProvider, logger *logging.Logger) *TeamService {
	if logger == nil {
		logger = logging.Default()
	}

	return &TeamService{
		teamRepo: teamRepo,
		provider: provider,
		logger:   logger,
		now:      time.Now,
	}
}

// ListTeams returns every stored team, or only those synced under leagueID
// when it is non-zero.
func (s *TeamService) ListTeams(ctx context.Context, leagueID int64) ([]team.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamService.ListTeams")
	defer span.End()

	if leagueID < 0 {
		return nil, fmt.Errorf("%w: league id must be > 0", ErrInvalidInput)
	}

	teams, err := s.teamRepo.List(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}

	return teams, nil
}

func (s *TeamService) SyncTeams(ctx context.Context, input SyncTeamsInput) ([]team.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamService.SyncTeams")
	defer span.End()

	if input.LeagueID <= 0 {
		return nil, fmt.Errorf("%w: league_id is required", ErrInvalidInput)
	}
	if input.Season < 0 {
		return nil, fmt.Errorf("%w: season must be >= 0", ErrInvalidInput)
	}
	if s.provider == nil {
		return nil, fmt.Errorf("%w: football provider is not configured", ErrDependencyUnavailable)
	}

	now := s.now().UTC()
	season := input.Season
	if season == 0 {
		season = now.Year()
	}

	items, err := s.provider.ListTeams(ctx, input.LeagueID, season)
	if err != nil {
		return nil, fmt.Errorf("fetch teams league=%d season=%d: %w", input.LeagueID, season, err)
	}

	synced := make([]team.Team, 0, len(items))
	for _, item := range items {
		candidate := team.Team{
			TeamID:      item.TeamID,
			Name:        strings.TrimSpace(item.Name),
			Logo:        item.Logo,
			Country:     strings.TrimSpace(item.Country),
			Founded:     item.Founded,
			LeagueIDs:   []int64{input.LeagueID},
			LastUpdated: now,
		}
		if err := candidate.Validate(); err != nil {
			s.logger.WarnContext(ctx, "skip invalid team from provider", "team_id", item.TeamID, "error", err)
			continue
		}

		stored, err := s.teamRepo.Upsert(ctx, candidate)
		if err != nil {
			s.logger.ErrorContext(ctx, "upsert team failed", "team_id", candidate.TeamID, "error", err)
			continue
		}
		synced = append(synced, stored)
	}

	s.logger.InfoContext(ctx, "teams synced",
		"league_id", input.LeagueID,
		"season", season,
		"received", len(items),
		"synced", len(synced),
	)
	return synced, nil
}
