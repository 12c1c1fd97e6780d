package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/quiniela/internal/domain/match"
	"github.com/riskibarqy/quiniela/internal/platform/logging"

	"go.opentelemetry.io/otel/attribute"
)

const defaultSyncDaysRange = 7

type ListMatchesInput struct {
	LeagueID int64
	Jornada  string
	// IsActive defaults to true when nil.
	IsActive *bool
	From     *time.Time
	To       *time.Time
}

type SyncMatchesInput struct {
	LeagueID int64
	Season   int
	// Date is the first day of the sync window; today (UTC) when zero.
	Date time.Time
	// DaysRange is the window length in days; 7 when zero.
	DaysRange int
}

type UpdateMatchInput struct {
	Status *string
	Score  *match.Score
}

// MatchListing is a set of matches with the active jornada labels at the
// time of the read.
type MatchListing struct {
	Matches        []match.Match
	ActiveJornadas []string
}

type MatchService struct {
	matchRepo match.Repository
	provider  FootballProvider
	logger    *logging.Logger
	now       func() time.Time
}

func NewMatchService(matchRepo match.Repository, provider FootballProvider, logger *logging.Logger) *MatchService {
	if logger == nil {
		logger = logging.Default()
	}

	return &MatchService{
		matchRepo: matchRepo,
		provider:  provider,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *MatchService) ListMatches(ctx context.Context, input ListMatchesInput) (MatchListing, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.ListMatches")
	defer span.End()

	if input.LeagueID < 0 {
		return MatchListing{}, fmt.Errorf("%w: league id must be > 0", ErrInvalidInput)
	}
	if input.From != nil && input.To != nil && input.To.Before(*input.From) {
		return MatchListing{}, fmt.Errorf("%w: to must not be before from", ErrInvalidInput)
	}

	filter := match.Filter{
		LeagueID: input.LeagueID,
		Jornada:  strings.TrimSpace(input.Jornada),
		IsActive: input.IsActive,
		From:     input.From,
		To:       input.To,
	}
	if filter.IsActive == nil {
		filter.ActiveOnly = true
	}

	matches, err := s.matchRepo.List(ctx, filter)
	if err != nil {
		return MatchListing{}, fmt.Errorf("list matches: %w", err)
	}

	jornadas, err := s.activeJornadaNames(ctx)
	if err != nil {
		return MatchListing{}, err
	}

	return MatchListing{Matches: matches, ActiveJornadas: jornadas}, nil
}

// SyncMatches pulls fixtures with odds for the league over the requested
// window and upserts them. Stored jornada labels are kept.
func (s *MatchService) SyncMatches(ctx context.Context, input SyncMatchesInput) (_ MatchListing, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.SyncMatches", attribute.Int64("league_id", input.LeagueID))
	defer func() {
		recordSpanError(span, err)
		span.End()
	}()

	if input.LeagueID <= 0 {
		return MatchListing{}, fmt.Errorf("%w: league_id is required", ErrInvalidInput)
	}
	if input.DaysRange < 0 {
		return MatchListing{}, fmt.Errorf("%w: days_range must be >= 0", ErrInvalidInput)
	}
	if s.provider == nil {
		return MatchListing{}, fmt.Errorf("%w: football provider is not configured", ErrDependencyUnavailable)
	}

	now := s.now().UTC()
	from := input.Date
	if from.IsZero() {
		from = now
	}
	from = truncateDay(from)
	daysRange := input.DaysRange
	if daysRange == 0 {
		daysRange = defaultSyncDaysRange
	}
	to := from.AddDate(0, 0, daysRange)

	fixtures, err := s.provider.ListFixturesWithOdds(ctx, FixtureQuery{
		LeagueID: input.LeagueID,
		Season:   input.Season,
		From:     from,
		To:       to,
	})
	if err != nil {
		return MatchListing{}, fmt.Errorf("fetch fixtures league=%d: %w", input.LeagueID, err)
	}
	if len(fixtures) == 0 {
		return MatchListing{}, fmt.Errorf("%w: no matches found for league=%d between %s and %s",
			ErrNotFound, input.LeagueID, from.Format(time.DateOnly), to.Format(time.DateOnly))
	}

	synced := upsertFixtures(ctx, s.matchRepo, s.logger, fixtures, "", now)

	jornadas, err := s.activeJornadaNames(ctx)
	if err != nil {
		return MatchListing{}, err
	}

	s.logger.InfoContext(ctx, "matches synced",
		"league_id", input.LeagueID,
		"from", from.Format(time.DateOnly),
		"to", to.Format(time.DateOnly),
		"received", len(fixtures),
		"synced", len(synced),
	)
	return MatchListing{Matches: synced, ActiveJornadas: jornadas}, nil
}

func (s *MatchService) GetMatch(ctx context.Context, fixtureID int64) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.GetMatch")
	defer span.End()

	if fixtureID <= 0 {
		return match.Match{}, fmt.Errorf("%w: fixture id is required", ErrInvalidInput)
	}

	item, exists, err := s.matchRepo.GetByFixtureID(ctx, fixtureID)
	if err != nil {
		return match.Match{}, fmt.Errorf("get match: %w", err)
	}
	if !exists {
		return match.Match{}, fmt.Errorf("%w: match with fixture_id %d not found", ErrNotFound, fixtureID)
	}

	return item, nil
}

// UpdateMatch sets status and score of a stored match. The current status is
// kept when only the score is given.
func (s *MatchService) UpdateMatch(ctx context.Context, fixtureID int64, input UpdateMatchInput) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.UpdateMatch")
	defer span.End()

	current, err := s.GetMatch(ctx, fixtureID)
	if err != nil {
		return match.Match{}, err
	}

	status := current.Status
	statusProvided := false
	if input.Status != nil {
		if normalized := match.NormalizeStatus(*input.Status); normalized != "" {
			status = normalized
			statusProvided = true
		}
	}
	if !statusProvided && input.Score == nil {
		return match.Match{}, fmt.Errorf("%w: no updates provided", ErrInvalidInput)
	}

	modified, err := s.matchRepo.UpdateStatus(ctx, fixtureID, status, input.Score)
	if err != nil {
		return match.Match{}, fmt.Errorf("update match status: %w", err)
	}
	if !modified {
		s.logger.InfoContext(ctx, "match update was a no-op", "fixture_id", fixtureID)
	}

	return s.GetMatch(ctx, fixtureID)
}

func (s *MatchService) DeactivateMatch(ctx context.Context, fixtureID int64) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.DeactivateMatch")
	defer span.End()

	if _, err := s.GetMatch(ctx, fixtureID); err != nil {
		return err
	}

	if _, err := s.matchRepo.Deactivate(ctx, []int64{fixtureID}); err != nil {
		return fmt.Errorf("deactivate match: %w", err)
	}

	return nil
}

func (s *MatchService) activeJornadaNames(ctx context.Context) ([]string, error) {
	summaries, err := s.matchRepo.ListActiveJornadas(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active jornadas: %w", err)
	}

	out := make([]string, 0, len(summaries))
	for _, item := range summaries {
		out = append(out, item.Name)
	}
	return out, nil
}

// upsertFixtures maps provider fixtures onto matches and writes each one.
// An empty jornada keeps the stored label.
func upsertFixtures(
	ctx context.Context,
	repo match.Repository,
	logger *logging.Logger,
	fixtures []ExternalFixture,
	jornada string,
	now time.Time,
) []match.Match {
	synced := make([]match.Match, 0, len(fixtures))
	for _, fixture := range fixtures {
		candidate := matchFromExternal(fixture, jornada, now)
		if err := candidate.Validate(); err != nil {
			logger.WarnContext(ctx, "skip invalid fixture from provider", "fixture_id", fixture.FixtureID, "error", err)
			continue
		}

		stored, err := repo.Upsert(ctx, candidate)
		if err != nil {
			logger.ErrorContext(ctx, "upsert match failed", "fixture_id", candidate.FixtureID, "error", err)
			continue
		}
		synced = append(synced, stored)
	}
	return synced
}

func matchFromExternal(f ExternalFixture, jornada string, now time.Time) match.Match {
	return match.Match{
		FixtureID:     f.FixtureID,
		LeagueID:      f.League.ID,
		LeagueName:    f.League.Name,
		LeagueCountry: f.League.Country,
		LeagueLogo:    f.League.Logo,
		Season:        f.League.Season,
		Round:         f.League.Round,
		HomeTeam:      match.TeamRef{ID: f.Home.ID, Name: f.Home.Name, Logo: f.Home.Logo},
		AwayTeam:      match.TeamRef{ID: f.Away.ID, Name: f.Away.Name, Logo: f.Away.Logo},
		KickoffAt:     f.KickoffAt.UTC(),
		Timestamp:     f.Timestamp,
		Venue:         f.Venue,
		Status:        match.NormalizeStatus(f.Status),
		Elapsed:       f.Elapsed,
		Score:         match.Score{Home: f.HomeGoals, Away: f.AwayGoals},
		Odds:          ParseMatchWinnerOdds(f.Odds),
		IsActive:      true,
		Jornada:       strings.TrimSpace(jornada),
		LastUpdated:   now,
	}
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
