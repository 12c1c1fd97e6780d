package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/quiniela/internal/domain/coinledger"
	"github.com/riskibarqy/quiniela/internal/domain/match"
	"github.com/riskibarqy/quiniela/internal/domain/user"
	"github.com/riskibarqy/quiniela/internal/infrastructure/repository/memory"
	usermock "github.com/riskibarqy/quiniela/internal/mocks/domain/user"
	idgen "github.com/riskibarqy/quiniela/internal/platform/id"
	"github.com/riskibarqy/quiniela/internal/platform/logging"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type coinFixture struct {
	users   *memory.UserRepository
	mirror  *memory.UserMirror
	matches *memory.MatchRepository
	service *CoinService
	now     time.Time
}

func newCoinFixture(t *testing.T, users []user.User, matches []match.Match) coinFixture {
	t.Helper()

	now := time.Date(2024, 9, 10, 9, 0, 0, 0, time.UTC)
	userRepo := memory.NewUserRepository(users)
	mirror := memory.NewUserMirror()
	matchRepo := memory.NewMatchRepository(matches)
	mirrorSvc := NewUserMirrorService(userRepo, mirror, userRepo, 2, nil, logging.NewNop())

	service := NewCoinService(DefaultCoinServiceConfig(), userRepo, userRepo, matchRepo, mirrorSvc, idgen.NewUUIDGenerator(), nil, logging.NewNop())
	service.now = func() time.Time { return now }

	return coinFixture{users: userRepo, mirror: mirror, matches: matchRepo, service: service, now: now}
}

func timePtr(v time.Time) *time.Time {
	return &v
}

func TestCoinService_AssignForJornada_RefusesWhenMatchStarted(t *testing.T) {
	t.Parallel()

	kickoff := time.Date(2024, 9, 10, 8, 0, 0, 0, time.UTC)
	fx := newCoinFixture(t,
		[]user.User{{ID: 1, Username: "ana", IsActive: true, VirtualCoins: decimal.NewFromInt(50)}},
		[]match.Match{
			{FixtureID: 10, LeagueID: 39, KickoffAt: kickoff, Status: "1H", IsActive: true, Jornada: "jornada-2"},
			{FixtureID: 11, LeagueID: 39, KickoffAt: kickoff.Add(4 * time.Hour), Status: "NS", IsActive: true, Jornada: "jornada-2"},
		},
	)

	_, err := fx.service.AssignForJornada(context.Background(), AssignJornadaInput{Jornada: "jornada-2"})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	got, _, _ := fx.users.GetByID(context.Background(), 1)
	if !got.VirtualCoins.Equal(decimal.NewFromInt(50)) || got.LastCoinsAssignment != nil {
		t.Fatalf("expected no balance change, got coins=%s last=%v", got.VirtualCoins, got.LastCoinsAssignment)
	}
}

func TestCoinService_AssignForJornada_SkipsUsersCreditedAfterEarliestKickoff(t *testing.T) {
	t.Parallel()

	kickoff := time.Date(2024, 9, 14, 14, 0, 0, 0, time.UTC)
	matches := []match.Match{{FixtureID: 10, LeagueID: 39, KickoffAt: kickoff, Status: "NS", IsActive: true, Jornada: "jornada-3"}}
	users := []user.User{
		{ID: 1, Username: "ana", IsActive: true, VirtualCoins: decimal.NewFromInt(100), LastCoinsAssignment: timePtr(kickoff.Add(time.Hour))},
		{ID: 2, Username: "ben", IsActive: true, VirtualCoins: decimal.NewFromInt(20), LastCoinsAssignment: timePtr(kickoff.Add(-72 * time.Hour))},
		{ID: 3, Username: "cleo", IsActive: false},
	}

	t.Run("without force", func(t *testing.T) {
		t.Parallel()

		fx := newCoinFixture(t, users, matches)
		result, err := fx.service.AssignForJornada(context.Background(), AssignJornadaInput{})
		if err != nil {
			t.Fatalf("assign coins: %v", err)
		}
		if result.Jornada != "jornada-3" || result.MatchCount != 1 || !result.EarliestKickoff.Equal(kickoff) {
			t.Fatalf("unexpected result header: %+v", result)
		}
		if len(result.Skipped) != 1 || result.Skipped[0] != "ana" {
			t.Fatalf("expected ana skipped, got %v", result.Skipped)
		}
		if len(result.Credited) != 1 || result.Credited[0].Username != "ben" {
			t.Fatalf("expected ben credited, got %+v", result.Credited)
		}
		credit := result.Credited[0]
		if !credit.Previous.Equal(decimal.NewFromInt(20)) || !credit.Current.Equal(decimal.NewFromInt(120)) {
			t.Fatalf("unexpected credit: %+v", credit)
		}

		ben, _, _ := fx.users.GetByID(context.Background(), 2)
		if ben.LastCoinsAssignment == nil || !ben.LastCoinsAssignment.Equal(fx.now) {
			t.Fatalf("expected last assignment stamped at now, got %v", ben.LastCoinsAssignment)
		}
		mirrored, ok := fx.mirror.Get(2)
		if !ok || !mirrored.VirtualCoins.Equal(decimal.NewFromInt(120)) {
			t.Fatalf("expected mirrored balance 120, got %+v ok=%v", mirrored, ok)
		}

		again, err := fx.service.AssignForJornada(context.Background(), AssignJornadaInput{Jornada: "jornada-3"})
		if err != nil {
			t.Fatalf("second assign: %v", err)
		}
		if len(again.Credited) != 0 || len(again.Skipped) != 2 {
			t.Fatalf("expected second run to credit nobody, got %+v", again)
		}
	})

	t.Run("with force", func(t *testing.T) {
		t.Parallel()

		fx := newCoinFixture(t, users, matches)
		result, err := fx.service.AssignForJornada(context.Background(), AssignJornadaInput{
			Jornada: "jornada-3",
			Amount:  decimal.RequireFromString("25.50"),
			Force:   true,
		})
		if err != nil {
			t.Fatalf("assign coins: %v", err)
		}
		if len(result.Credited) != 2 || len(result.Skipped) != 0 {
			t.Fatalf("expected both active users credited, got %+v", result)
		}

		ana, _, _ := fx.users.GetByID(context.Background(), 1)
		if !ana.VirtualCoins.Equal(decimal.RequireFromString("125.50")) {
			t.Fatalf("unexpected balance for ana: %s", ana.VirtualCoins)
		}
		entries, _ := fx.users.ListByUser(context.Background(), 1)
		if len(entries) != 1 || !entries[0].Forced || entries[0].Source != coinledger.SourceJornada {
			t.Fatalf("unexpected ledger entries: %+v", entries)
		}
	})
}

func TestCoinService_AssignForJornada_UndatedMatchesDoNotSkipUsers(t *testing.T) {
	t.Parallel()

	matches := []match.Match{
		{FixtureID: 20, LeagueID: 140, Status: "TBD", IsActive: true, Jornada: "jornada-9"},
		{FixtureID: 21, LeagueID: 140, KickoffAt: time.Unix(0, 0).UTC(), Status: "TBD", IsActive: true, Jornada: "jornada-9"},
	}
	users := []user.User{
		{ID: 1, Username: "ana", IsActive: true, VirtualCoins: decimal.NewFromInt(10), LastCoinsAssignment: timePtr(time.Date(2026, 8, 1, 8, 0, 0, 0, time.UTC))},
	}

	fx := newCoinFixture(t, users, matches)
	result, err := fx.service.AssignForJornada(context.Background(), AssignJornadaInput{Jornada: "jornada-9"})
	if err != nil {
		t.Fatalf("assign coins: %v", err)
	}
	if !result.EarliestKickoff.IsZero() || result.MatchCount != 2 {
		t.Fatalf("expected no earliest kickoff for undated jornada, got %+v", result)
	}
	if len(result.Skipped) != 0 || len(result.Credited) != 1 || result.Credited[0].Username != "ana" {
		t.Fatalf("expected ana credited, got credited=%+v skipped=%v", result.Credited, result.Skipped)
	}
}

func TestCoinService_AssignForJornada_ForceIgnoresStartedMatches(t *testing.T) {
	t.Parallel()

	kickoff := time.Date(2024, 9, 10, 8, 0, 0, 0, time.UTC)
	fx := newCoinFixture(t,
		[]user.User{{ID: 1, Username: "ana", IsActive: true}},
		[]match.Match{{FixtureID: 10, LeagueID: 39, KickoffAt: kickoff, Status: "HT", IsActive: true, Jornada: "jornada-2"}},
	)

	result, err := fx.service.AssignForJornada(context.Background(), AssignJornadaInput{Jornada: "jornada-2", Force: true})
	if err != nil {
		t.Fatalf("assign coins: %v", err)
	}
	if len(result.Credited) != 1 || !result.Credited[0].Current.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected forced credit of 100, got %+v", result.Credited)
	}
}

func TestCoinService_AssignForJornada_Errors(t *testing.T) {
	t.Parallel()

	fx := newCoinFixture(t, nil, nil)

	if _, err := fx.service.AssignForJornada(context.Background(), AssignJornadaInput{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound without active jornadas, got %v", err)
	}
	if _, err := fx.service.AssignForJornada(context.Background(), AssignJornadaInput{Jornada: "missing"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for empty jornada, got %v", err)
	}
	_, err := fx.service.AssignForJornada(context.Background(), AssignJornadaInput{Jornada: "x", Amount: decimal.NewFromInt(-5)})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for negative amount, got %v", err)
	}
}

func TestCoinService_RejectsLoginKeyAsJornada(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fx := newCoinFixture(t,
		[]user.User{{ID: 1, Username: "ana", IsActive: true}},
		[]match.Match{{FixtureID: 10, LeagueID: 39, Status: "NS", IsActive: true, Jornada: "login:2024-09-10"}},
	)
	loginKey := coinledger.LoginKey(fx.now)

	if _, err := fx.service.AssignForJornada(ctx, AssignJornadaInput{Jornada: loginKey}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for login key jornada, got %v", err)
	}
	if _, err := fx.service.GrantAll(ctx, GrantInput{Jornada: "LOGIN:today"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for login key grant, got %v", err)
	}

	ana, _, _ := fx.users.GetByID(ctx, 1)
	if _, assigned, err := fx.service.AssignOnLogin(ctx, ana); err != nil || !assigned {
		t.Fatalf("expected login credit to stay available, got assigned=%v err=%v", assigned, err)
	}
}

func TestCoinService_AssignOnLogin(t *testing.T) {
	t.Parallel()

	fx := newCoinFixture(t, []user.User{
		{ID: 1, Username: "ana", IsActive: true},
		{ID: 2, Username: "ben", IsActive: true, VirtualCoins: decimal.NewFromInt(10)},
	}, nil)
	ctx := context.Background()

	ana, _, _ := fx.users.GetByID(ctx, 1)
	updated, assigned, err := fx.service.AssignOnLogin(ctx, ana)
	if err != nil {
		t.Fatalf("assign on login: %v", err)
	}
	if !assigned || !updated.VirtualCoins.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected +100, got assigned=%v coins=%s", assigned, updated.VirtualCoins)
	}
	if updated.LastCoinsAssignment == nil || !updated.LastCoinsAssignment.Equal(fx.now) {
		t.Fatalf("expected last assignment = now, got %v", updated.LastCoinsAssignment)
	}

	_, assigned, err = fx.service.AssignOnLogin(ctx, updated)
	if err != nil || assigned {
		t.Fatalf("expected no credit within cooldown, got assigned=%v err=%v", assigned, err)
	}

	// A stale snapshot still cannot double credit the same day.
	_, assigned, err = fx.service.AssignOnLogin(ctx, ana)
	if err != nil || assigned {
		t.Fatalf("expected ledger to dedupe same-day login, got assigned=%v err=%v", assigned, err)
	}

	fx.service.now = func() time.Time { return fx.now.Add(24 * time.Hour) }
	updated, assigned, err = fx.service.AssignOnLogin(ctx, updated)
	if err != nil || !assigned || !updated.VirtualCoins.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("expected second credit after one day, got assigned=%v coins=%s err=%v", assigned, updated.VirtualCoins, err)
	}
}

func TestCoinService_GrantAllIsUnconditional(t *testing.T) {
	t.Parallel()

	fx := newCoinFixture(t, []user.User{
		{ID: 1, Username: "ana", IsActive: true, LastCoinsAssignment: timePtr(time.Now())},
		{ID: 2, Username: "ben", IsActive: true},
	}, nil)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		result, err := fx.service.GrantAll(ctx, GrantInput{})
		if err != nil {
			t.Fatalf("grant all: %v", err)
		}
		if result.AssignedCount != 2 || result.Jornada != match.DefaultJornada {
			t.Fatalf("unexpected grant result: %+v", result)
		}
	}

	ana, _, _ := fx.users.GetByID(ctx, 1)
	if !ana.VirtualCoins.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("expected two grants of 100, got %s", ana.VirtualCoins)
	}
	entries, _ := fx.users.ListByUser(ctx, 1)
	if len(entries) != 2 || entries[0].Source != coinledger.SourceAdmin || !entries[0].Forced {
		t.Fatalf("unexpected ledger entries: %+v", entries)
	}
}

func TestCoinService_MirrorFailureKeepsAuthoritativeCreditUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2024, 9, 10, 9, 0, 0, 0, time.UTC)
	userRepo := memory.NewUserRepository([]user.User{{ID: 7, Username: "dora", IsActive: true}})
	mirrorRepo := usermock.NewMirrorRepository(t)
	mirrorRepo.
		On("Upsert", mock.Anything, mock.MatchedBy(func(v user.User) bool { return v.ID == 7 })).
		Return(errors.New("mongo: no reachable servers")).
		Once()

	mirrorSvc := NewUserMirrorService(userRepo, mirrorRepo, userRepo, 1, nil, logging.NewNop())
	service := NewCoinService(DefaultCoinServiceConfig(), userRepo, userRepo, memory.NewMatchRepository(nil), mirrorSvc, idgen.NewUUIDGenerator(), nil, logging.NewNop())
	service.now = func() time.Time { return now }

	result, err := service.GrantAll(ctx, GrantInput{Jornada: "jornada-1", Amount: decimal.NewFromInt(40)})
	if err != nil {
		t.Fatalf("grant all: %v", err)
	}
	if result.AssignedCount != 1 {
		t.Fatalf("expected one credit, got %d", result.AssignedCount)
	}

	dora, _, _ := userRepo.GetByID(ctx, 7)
	if !dora.VirtualCoins.Equal(decimal.NewFromInt(40)) {
		t.Fatalf("expected authoritative balance 40, got %s", dora.VirtualCoins)
	}
	pending, _ := userRepo.ListPending(ctx, 10)
	if len(pending) != 1 || pending[0] != 7 {
		t.Fatalf("expected user 7 to stay in the outbox, got %v", pending)
	}
}
