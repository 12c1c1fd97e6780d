package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/quiniela/internal/domain/coinledger"
	"github.com/riskibarqy/quiniela/internal/domain/match"
	"github.com/riskibarqy/quiniela/internal/platform/logging"
)

type CreateJornadaInput struct {
	LeagueID  int64
	Season    int
	StartDate time.Time
	EndDate   time.Time
	Name      string
}

// JornadaService manages jornada labels, which only exist as the jornada
// field of stored matches.
type JornadaService struct {
	matchRepo match.Repository
	provider  FootballProvider
	logger    *logging.Logger
	now       func() time.Time
}

func NewJornadaService(matchRepo match.Repository, provider FootballProvider, logger *logging.Logger) *JornadaService {
	if logger == nil {
		logger = logging.Default()
	}

	return &JornadaService{
		matchRepo: matchRepo,
		provider:  provider,
		logger:    logger,
		now:       time.Now,
	}
}

// ListActive returns distinct jornadas of active matches, earliest kickoff
// first and ties broken by label.
func (s *JornadaService) ListActive(ctx context.Context) ([]match.JornadaSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.JornadaService.ListActive")
	defer span.End()

	items, err := s.matchRepo.ListActiveJornadas(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active jornadas: %w", err)
	}
	return items, nil
}

// Current resolves the first active jornada.
func (s *JornadaService) Current(ctx context.Context) (match.JornadaSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.JornadaService.Current")
	defer span.End()

	items, err := s.ListActive(ctx)
	if err != nil {
		return match.JornadaSummary{}, err
	}
	if len(items) == 0 {
		return match.JornadaSummary{}, fmt.Errorf("%w: no active jornadas found", ErrNotFound)
	}
	return items[0], nil
}

// Create syncs every fixture of the league in [StartDate, EndDate] with its
// 1X2 odds and labels the matches with the jornada name.
func (s *JornadaService) Create(ctx context.Context, input CreateJornadaInput) ([]match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.JornadaService.Create")
	defer span.End()

	name := strings.TrimSpace(input.Name)
	switch {
	case input.LeagueID <= 0, input.StartDate.IsZero(), input.EndDate.IsZero(), name == "":
		return nil, fmt.Errorf("%w: league_id, start_date, end_date, and jornada_name are required", ErrInvalidInput)
	case input.EndDate.Before(input.StartDate):
		return nil, fmt.Errorf("%w: end_date must not be before start_date", ErrInvalidInput)
	case coinledger.IsReservedJornada(name):
		return nil, fmt.Errorf("%w: jornada name %q uses a reserved prefix", ErrInvalidInput, name)
	}
	if s.provider == nil {
		return nil, fmt.Errorf("%w: football provider is not configured", ErrDependencyUnavailable)
	}

	fixtures, err := s.provider.ListFixturesWithOdds(ctx, FixtureQuery{
		LeagueID: input.LeagueID,
		Season:   input.Season,
		From:     truncateDay(input.StartDate),
		To:       truncateDay(input.EndDate),
	})
	if err != nil {
		return nil, fmt.Errorf("fetch fixtures for jornada %q: %w", name, err)
	}
	if len(fixtures) == 0 {
		return nil, fmt.Errorf("%w: no fixtures found for league=%d between %s and %s",
			ErrNotFound, input.LeagueID, input.StartDate.Format(time.DateOnly), input.EndDate.Format(time.DateOnly))
	}

	synced := upsertFixtures(ctx, s.matchRepo, s.logger, fixtures, name, s.now().UTC())

	s.logger.InfoContext(ctx, "jornada created",
		"jornada", name,
		"league_id", input.LeagueID,
		"received", len(fixtures),
		"synced", len(synced),
	)
	return synced, nil
}

// SetActive flips is_active on every match of the jornada and returns how
// many documents changed.
func (s *JornadaService) SetActive(ctx context.Context, name string, active bool) (int64, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.JornadaService.SetActive")
	defer span.End()

	name = strings.TrimSpace(name)
	if name == "" {
		return 0, fmt.Errorf("%w: jornada_name is required", ErrInvalidInput)
	}

	modified, err := s.matchRepo.SetJornadaActive(ctx, name, active)
	if err != nil {
		return 0, fmt.Errorf("set jornada active: %w", err)
	}
	if modified == 0 {
		return 0, fmt.Errorf("%w: no matches found for jornada %q or no updates needed", ErrNotFound, name)
	}

	return modified, nil
}

// Touch stamps last_updated on every match of the jornada without changing
// whether it is active.
func (s *JornadaService) Touch(ctx context.Context, name string) (int64, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.JornadaService.Touch")
	defer span.End()

	name = strings.TrimSpace(name)
	if name == "" {
		return 0, fmt.Errorf("%w: jornada_name is required", ErrInvalidInput)
	}

	touched, err := s.matchRepo.TouchJornada(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("touch jornada: %w", err)
	}
	if touched == 0 {
		return 0, fmt.Errorf("%w: no matches found for jornada %q", ErrNotFound, name)
	}

	return touched, nil
}

func (s *JornadaService) Deactivate(ctx context.Context, name string) (int64, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.JornadaService.Deactivate")
	defer span.End()

	name = strings.TrimSpace(name)
	if name == "" {
		return 0, fmt.Errorf("%w: jornada_name is required", ErrInvalidInput)
	}

	modified, err := s.matchRepo.SetJornadaActive(ctx, name, false)
	if err != nil {
		return 0, fmt.Errorf("deactivate jornada: %w", err)
	}
	if modified == 0 {
		return 0, fmt.Errorf("%w: no matches found for jornada %q or they are already deactivated", ErrNotFound, name)
	}

	return modified, nil
}
