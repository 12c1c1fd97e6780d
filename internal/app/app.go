package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/riskibarqy/quiniela/external/apifootball"
	"github.com/riskibarqy/quiniela/internal/config"
	"github.com/riskibarqy/quiniela/internal/domain/coinledger"
	"github.com/riskibarqy/quiniela/internal/domain/league"
	"github.com/riskibarqy/quiniela/internal/domain/match"
	"github.com/riskibarqy/quiniela/internal/domain/team"
	"github.com/riskibarqy/quiniela/internal/domain/user"
	"github.com/riskibarqy/quiniela/internal/infrastructure/account/token"
	cacherepo "github.com/riskibarqy/quiniela/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/quiniela/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/quiniela/internal/infrastructure/repository/mongodb"
	"github.com/riskibarqy/quiniela/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/quiniela/internal/interfaces/httpapi"
	"github.com/riskibarqy/quiniela/internal/observability"
	"github.com/riskibarqy/quiniela/internal/platform/dburl"
	idgen "github.com/riskibarqy/quiniela/internal/platform/id"
	"github.com/riskibarqy/quiniela/internal/platform/logging"
	"github.com/riskibarqy/quiniela/internal/platform/resilience"
	"github.com/riskibarqy/quiniela/internal/usecase"
)

// Runtime holds the wired services of one process. Close releases the
// storage connections it opened.
type Runtime struct {
	Config  config.Config
	Logger  *logging.Logger
	Metrics *observability.Metrics

	Leagues  *usecase.LeagueService
	Teams    *usecase.TeamService
	Matches  *usecase.MatchService
	Jornadas *usecase.JornadaService
	Coins    *usecase.CoinService
	Mirror   *usecase.UserMirrorService
	Auth     *usecase.AuthService

	closers []func(context.Context) error
}

type repositories struct {
	leagues league.Repository
	teams   team.Repository
	matches match.Repository
	users   user.Repository
	ledger  coinledger.Repository
	outbox  user.MirrorOutbox
	mirror  user.MirrorRepository
}

func Build(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Runtime, error) {
	if logger == nil {
		logger = logging.Default()
	}

	rt := &Runtime{Config: cfg, Logger: logger}
	var businessMetrics usecase.MetricsRecorder
	var providerMetrics apifootball.Metrics
	if cfg.MetricsEnabled {
		rt.Metrics = observability.NewMetrics()
		businessMetrics = rt.Metrics
		providerMetrics = rt.Metrics
	}

	repos, err := rt.openRepositories(ctx)
	if err != nil {
		_ = rt.Close(context.Background())
		return nil, err
	}
	if cfg.CacheEnabled {
		repos.leagues = cacherepo.NewLeagueRepository(repos.leagues, cfg.CacheTTL)
		repos.teams = cacherepo.NewTeamRepository(repos.teams, cfg.CacheTTL)
	}

	provider := apifootball.NewClient(apifootball.ClientConfig{
		BaseURL:     cfg.APIFootballBaseURL,
		Host:        cfg.APIFootballHost,
		APIKey:      cfg.APIFootballKey,
		Timeout:     cfg.APIFootballTimeout,
		MaxRetries:  cfg.APIFootballMaxRetries,
		OddsWorkers: cfg.APIFootballOddsWorkers,
		Logger:      logger,
		Metrics:     providerMetrics,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.APIFootballCircuitEnabled,
			FailureThreshold: cfg.APIFootballCircuitFailures,
			OpenTimeout:      cfg.APIFootballCircuitOpen,
			HalfOpenMaxReq:   cfg.APIFootballCircuitHalfOpen,
		},
	})

	issuer, err := token.NewIssuer(token.Config{
		Secret:     cfg.JWTSecret,
		Issuer:     cfg.JWTIssuer,
		AccessTTL:  cfg.JWTAccessTTL,
		RefreshTTL: cfg.JWTRefreshTTL,
	})
	if err != nil {
		_ = rt.Close(context.Background())
		return nil, fmt.Errorf("build token issuer: %w", err)
	}

	rt.Leagues = usecase.NewLeagueService(repos.leagues, provider, logger)
	rt.Teams = usecase.NewTeamService(repos.teams, provider, logger)
	rt.Matches = usecase.NewMatchService(repos.matches, provider, logger)
	rt.Jornadas = usecase.NewJornadaService(repos.matches, provider, logger)
	rt.Mirror = usecase.NewUserMirrorService(repos.users, repos.mirror, repos.outbox, cfg.MirrorWorkers, businessMetrics, logger)
	rt.Coins = usecase.NewCoinService(
		usecase.CoinServiceConfig{
			DefaultAmount: cfg.CoinsDefaultAmount,
			LoginCooldown: cfg.CoinsLoginCooldown,
		},
		repos.users,
		repos.ledger,
		repos.matches,
		rt.Mirror,
		idgen.NewUUIDGenerator(),
		businessMetrics,
		logger,
	)
	rt.Auth = usecase.NewAuthService(repos.users, token.NewBcryptHasher(cfg.BcryptCost), issuer, rt.Coins, rt.Mirror, logger)

	return rt, nil
}

func (rt *Runtime) openRepositories(ctx context.Context) (repositories, error) {
	cfg := rt.Config
	if cfg.Storage == config.StorageMemory {
		rt.Logger.Warn("using in-memory storage", "reason", "APP_STORAGE=memory")
		users := memory.NewUserRepository(nil)
		return repositories{
			leagues: memory.NewLeagueRepository(memory.SeedLeagues()),
			teams:   memory.NewTeamRepository(memory.SeedTeams()),
			matches: memory.NewMatchRepository(memory.SeedMatches(time.Now().UTC())),
			users:   users,
			ledger:  users,
			outbox:  users,
			mirror:  memory.NewUserMirror(),
		}, nil
	}

	db, err := openPostgres(cfg)
	if err != nil {
		return repositories{}, err
	}
	rt.closers = append(rt.closers, func(context.Context) error { return db.Close() })

	client, mongoDB, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.MongoURI,
		Database: cfg.MongoDatabase,
		Timeout:  cfg.MongoTimeout,
	})
	if err != nil {
		return repositories{}, err
	}
	rt.closers = append(rt.closers, client.Disconnect)
	if err := mongodb.EnsureIndexes(ctx, mongoDB); err != nil {
		return repositories{}, fmt.Errorf("ensure mongo indexes: %w", err)
	}

	rt.Logger.Info("storage connected",
		"postgres", dburl.Redact(cfg.DBURL),
		"mongo_db", cfg.MongoDatabase,
	)

	return repositories{
		leagues: mongodb.NewLeagueRepository(mongoDB),
		teams:   mongodb.NewTeamRepository(mongoDB),
		matches: mongodb.NewMatchRepository(mongoDB),
		users:   postgres.NewUserRepository(db),
		ledger:  postgres.NewCoinLedgerRepository(db),
		outbox:  postgres.NewMirrorOutboxRepository(db),
		mirror:  mongodb.NewUserMirrorRepository(mongoDB),
	}, nil
}

// Close runs the registered closers in reverse order.
func (rt *Runtime) Close(ctx context.Context) error {
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	rt.closers = nil
	return errors.Join(errs...)
}

func NewHTTPServer(rt *Runtime) (*http.Server, error) {
	cfg := rt.Config
	handler := httpapi.NewHandler(rt.Leagues, rt.Teams, rt.Matches, rt.Jornadas, rt.Coins, rt.Auth, rt.Logger)

	routerCfg := httpapi.RouterConfig{
		ServiceName:        cfg.ServiceName,
		SwaggerEnabled:     cfg.SwaggerEnabled,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	}
	if rt.Metrics != nil {
		routerCfg.Metrics = rt.Metrics
		routerCfg.MetricsHandler = rt.Metrics.Handler()
	}

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      httpapi.NewRouter(handler, rt.Auth, rt.Logger, routerCfg),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, nil
}
