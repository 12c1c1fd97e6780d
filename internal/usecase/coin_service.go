package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/quiniela/internal/domain/coinledger"
	"github.com/riskibarqy/quiniela/internal/domain/match"
	"github.com/riskibarqy/quiniela/internal/domain/user"
	idgen "github.com/riskibarqy/quiniela/internal/platform/id"
	"github.com/riskibarqy/quiniela/internal/platform/logging"
	"github.com/shopspring/decimal"

	"go.opentelemetry.io/otel/attribute"
)

type CoinServiceConfig struct {
	DefaultAmount decimal.Decimal
	LoginCooldown time.Duration
}

func DefaultCoinServiceConfig() CoinServiceConfig {
	return CoinServiceConfig{
		DefaultAmount: decimal.NewFromInt(100),
		LoginCooldown: 24 * time.Hour,
	}
}

type AssignJornadaInput struct {
	// Jornada defaults to the first active jornada.
	Jornada string
	// Amount defaults to the configured default amount.
	Amount decimal.Decimal
	Force  bool
}

type UserCredit struct {
	UserID   int64           `json:"user_id"`
	Username string          `json:"username"`
	Previous decimal.Decimal `json:"previous"`
	Current  decimal.Decimal `json:"current"`
}

type AssignJornadaResult struct {
	Jornada         string
	Amount          decimal.Decimal
	Forced          bool
	MatchCount      int
	EarliestKickoff time.Time
	Credited        []UserCredit
	Skipped         []string
	Failed          []string
}

type GrantInput struct {
	// Jornada defaults to match.DefaultJornada.
	Jornada string
	Amount  decimal.Decimal
}

type GrantResult struct {
	Jornada       string
	Amount        decimal.Decimal
	AssignedCount int
}

// CoinService credits virtual coins. The relational ledger is authoritative;
// every applied credit is mirrored best-effort afterwards.
type CoinService struct {
	cfg       CoinServiceConfig
	users     user.Repository
	ledger    coinledger.Repository
	matchRepo match.Repository
	mirror    *UserMirrorService
	idGen     idgen.Generator
	metrics   MetricsRecorder
	logger    *logging.Logger
	now       func() time.Time
}

func NewCoinService(
	cfg CoinServiceConfig,
	users user.Repository,
	ledger coinledger.Repository,
	matchRepo match.Repository,
	mirror *UserMirrorService,
	idGen idgen.Generator,
	metrics MetricsRecorder,
	logger *logging.Logger,
) *CoinService {
	defaults := DefaultCoinServiceConfig()
	if !cfg.DefaultAmount.IsPositive() {
		cfg.DefaultAmount = defaults.DefaultAmount
	}
	if cfg.LoginCooldown <= 0 {
		cfg.LoginCooldown = defaults.LoginCooldown
	}
	if logger == nil {
		logger = logging.Default()
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}

	return &CoinService{
		cfg:       cfg,
		users:     users,
		ledger:    ledger,
		matchRepo: matchRepo,
		mirror:    mirror,
		idGen:     idGen,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// AssignForJornada credits every active user once for a jornada. Unless
// forced it refuses the whole batch when any match of the jornada has
// started, and skips users credited after the jornada's first kickoff or
// already holding a ledger entry for it.
func (s *CoinService) AssignForJornada(ctx context.Context, input AssignJornadaInput) (_ AssignJornadaResult, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CoinService.AssignForJornada",
		attribute.String("jornada", input.Jornada),
		attribute.Bool("forced", input.Force),
	)
	defer func() {
		recordSpanError(span, err)
		span.End()
	}()

	amount, err := s.resolveAmount(input.Amount)
	if err != nil {
		return AssignJornadaResult{}, err
	}

	jornada := strings.TrimSpace(input.Jornada)
	if coinledger.IsReservedJornada(jornada) {
		return AssignJornadaResult{}, fmt.Errorf("%w: jornada name %q uses a reserved prefix", ErrInvalidInput, jornada)
	}
	if jornada == "" {
		summaries, err := s.matchRepo.ListActiveJornadas(ctx)
		if err != nil {
			return AssignJornadaResult{}, fmt.Errorf("list active jornadas: %w", err)
		}
		if len(summaries) == 0 {
			return AssignJornadaResult{}, fmt.Errorf("%w: no active jornadas found", ErrNotFound)
		}
		jornada = summaries[0].Name
	}

	matches, err := s.matchRepo.List(ctx, match.Filter{Jornada: jornada, ActiveOnly: true})
	if err != nil {
		return AssignJornadaResult{}, fmt.Errorf("list matches for jornada %q: %w", jornada, err)
	}
	if len(matches) == 0 {
		return AssignJornadaResult{}, fmt.Errorf("%w: no active matches found for jornada %q", ErrNotFound, jornada)
	}
	// Undated fixtures give no cutoff, so nobody is skipped by date.
	earliest, dated := match.EarliestKickoff(matches)

	if !input.Force {
		started := make([]int64, 0)
		for _, item := range matches {
			if item.HasStarted() {
				started = append(started, item.FixtureID)
			}
		}
		if len(started) > 0 {
			return AssignJornadaResult{}, fmt.Errorf("%w: jornada %q has %d started matches %v; use force to assign anyway",
				ErrConflict, jornada, len(started), started)
		}
	}

	users, err := s.users.ListActive(ctx)
	if err != nil {
		return AssignJornadaResult{}, fmt.Errorf("list active users: %w", err)
	}

	result := AssignJornadaResult{
		Jornada:         jornada,
		Amount:          amount,
		Forced:          input.Force,
		MatchCount:      len(matches),
		EarliestKickoff: earliest,
	}
	for _, item := range users {
		if !input.Force && dated && item.AssignedAfter(earliest) {
			s.logger.DebugContext(ctx, "skip user already credited for jornada",
				"user_id", item.ID,
				"jornada", jornada,
				"last_assignment", item.LastCoinsAssignment,
			)
			result.Skipped = append(result.Skipped, item.Username)
			continue
		}

		credit, applied, err := s.apply(ctx, item, jornada, coinledger.SourceJornada, amount, input.Force)
		if err != nil {
			s.logger.ErrorContext(ctx, "credit user failed", "user_id", item.ID, "jornada", jornada, "error", err)
			result.Failed = append(result.Failed, item.Username)
			continue
		}
		if !applied {
			result.Skipped = append(result.Skipped, item.Username)
			continue
		}

		result.Credited = append(result.Credited, UserCredit{
			UserID:   credit.User.ID,
			Username: credit.User.Username,
			Previous: credit.Previous,
			Current:  credit.User.VirtualCoins,
		})
	}

	s.logger.InfoContext(ctx, "jornada coins assigned",
		"jornada", jornada,
		"amount", amount.StringFixed(2),
		"forced", input.Force,
		"credited", len(result.Credited),
		"skipped", len(result.Skipped),
		"failed", len(result.Failed),
	)
	return result, nil
}

// GrantAll credits every active user unconditionally. Entries are recorded
// as forced so repeated grants are never deduplicated.
func (s *CoinService) GrantAll(ctx context.Context, input GrantInput) (GrantResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CoinService.GrantAll")
	defer span.End()

	amount, err := s.resolveAmount(input.Amount)
	if err != nil {
		return GrantResult{}, err
	}
	jornada := strings.TrimSpace(input.Jornada)
	if coinledger.IsReservedJornada(jornada) {
		return GrantResult{}, fmt.Errorf("%w: jornada name %q uses a reserved prefix", ErrInvalidInput, jornada)
	}
	if jornada == "" {
		jornada = match.DefaultJornada
	}

	users, err := s.users.ListActive(ctx)
	if err != nil {
		return GrantResult{}, fmt.Errorf("list active users: %w", err)
	}

	result := GrantResult{Jornada: jornada, Amount: amount}
	for _, item := range users {
		_, applied, err := s.apply(ctx, item, jornada, coinledger.SourceAdmin, amount, true)
		if err != nil {
			s.logger.ErrorContext(ctx, "grant coins failed", "user_id", item.ID, "jornada", jornada, "error", err)
			continue
		}
		if applied {
			result.AssignedCount++
		}
	}

	s.logger.InfoContext(ctx, "coins granted",
		"jornada", jornada,
		"amount", amount.StringFixed(2),
		"assigned", result.AssignedCount,
	)
	return result, nil
}

// AssignOnLogin credits the default amount when the user was never credited
// or the last credit is at least the login cooldown old.
func (s *CoinService) AssignOnLogin(ctx context.Context, item user.User) (_ user.User, _ bool, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CoinService.AssignOnLogin", attribute.Int64("user_id", item.ID))
	defer func() {
		recordSpanError(span, err)
		span.End()
	}()

	now := s.now().UTC()
	if !item.DueLoginCoins(now, s.cfg.LoginCooldown) {
		return item, false, nil
	}

	credit, applied, err := s.applyAt(ctx, item, coinledger.LoginKey(now), coinledger.SourceLogin, s.cfg.DefaultAmount, false, now)
	if err != nil {
		return item, false, err
	}
	if !applied {
		return item, false, nil
	}

	s.logger.InfoContext(ctx, "login coins assigned",
		"user_id", credit.User.ID,
		"amount", s.cfg.DefaultAmount.StringFixed(2),
		"balance", credit.User.VirtualCoins.StringFixed(2),
	)
	return credit.User, true, nil
}

func (s *CoinService) apply(
	ctx context.Context,
	item user.User,
	jornada string,
	source coinledger.Source,
	amount decimal.Decimal,
	forced bool,
) (coinledger.Credit, bool, error) {
	return s.applyAt(ctx, item, jornada, source, amount, forced, s.now().UTC())
}

func (s *CoinService) applyAt(
	ctx context.Context,
	item user.User,
	jornada string,
	source coinledger.Source,
	amount decimal.Decimal,
	forced bool,
	at time.Time,
) (coinledger.Credit, bool, error) {
	entryID, err := s.idGen.NewID()
	if err != nil {
		return coinledger.Credit{}, false, fmt.Errorf("generate ledger entry id: %w", err)
	}

	entry := coinledger.Entry{
		ID:         entryID,
		UserID:     item.ID,
		Jornada:    jornada,
		Source:     source,
		Amount:     amount,
		Forced:     forced,
		AssignedAt: at,
	}
	if err := entry.Validate(); err != nil {
		return coinledger.Credit{}, false, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	credit, applied, err := s.ledger.Apply(ctx, entry)
	if err != nil {
		return coinledger.Credit{}, false, fmt.Errorf("apply ledger entry: %w", err)
	}
	if !applied {
		return credit, false, nil
	}
	amountValue, _ := amount.Float64()
	s.metrics.CoinsCredited(string(source), amountValue)

	if s.mirror != nil {
		// Failure stays queued in the outbox.
		_ = s.mirror.Sync(ctx, credit.User)
	}
	return credit, true, nil
}

func (s *CoinService) resolveAmount(amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.IsZero() {
		return s.cfg.DefaultAmount, nil
	}
	if amount.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: amount must be > 0", ErrInvalidInput)
	}
	if !amount.Equal(amount.Round(2)) {
		return decimal.Zero, fmt.Errorf("%w: amount must have at most 2 decimal places", ErrInvalidInput)
	}
	return amount, nil
}
