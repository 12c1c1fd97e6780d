package config

import (
	"testing"
	"time"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_BetterStackRequiresEndpointWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("BETTERSTACK_ENABLED", "true")
	t.Setenv("BETTERSTACK_ENDPOINT", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when BETTERSTACK_ENABLED=true without BETTERSTACK_ENDPOINT")
	}
}

func TestLoad_BetterStackConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("BETTERSTACK_ENABLED", "true")
	t.Setenv("BETTERSTACK_ENDPOINT", "s1765114.eu-fsn-3.betterstackdata.com")
	t.Setenv("BETTERSTACK_TOKEN", "token-123")
	t.Setenv("BETTERSTACK_TIMEOUT", "4s")
	t.Setenv("BETTERSTACK_MIN_LEVEL", "warn")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !cfg.BetterStackEnabled {
		t.Fatalf("expected BetterStackEnabled=true")
	}
	if cfg.BetterStackEndpoint != "s1765114.eu-fsn-3.betterstackdata.com" {
		t.Fatalf("unexpected BetterStackEndpoint: %q", cfg.BetterStackEndpoint)
	}
	if cfg.BetterStackToken != "token-123" {
		t.Fatalf("unexpected BetterStackToken")
	}
	if cfg.BetterStackTimeout != 4*time.Second {
		t.Fatalf("unexpected BetterStackTimeout: %s", cfg.BetterStackTimeout)
	}
	if cfg.BetterStackMinLevel.String() != "warn" {
		t.Fatalf("unexpected BetterStackMinLevel: %s", cfg.BetterStackMinLevel.String())
	}
}

func TestLoad_DefaultsByEnv(t *testing.T) {
	t.Run("prod disables swagger by default", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvProd)
		t.Setenv("UPTRACE_ENABLED", "false")
		t.Setenv("SWAGGER_ENABLED", "")
		t.Setenv("JWT_SECRET", "prod-secret")
		t.Setenv("APIFOOTBALL_KEY", "rapidapi-key")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.SwaggerEnabled {
			t.Fatalf("expected SwaggerEnabled=false in prod by default")
		}
	})

	t.Run("dev enables swagger by default", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvDev)
		t.Setenv("UPTRACE_ENABLED", "false")
		t.Setenv("SWAGGER_ENABLED", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.SwaggerEnabled {
			t.Fatalf("expected SwaggerEnabled=true in dev by default")
		}
	})
}

func TestLoad_PprofDefaultsAddrWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("PPROF_ENABLED", "true")
	t.Setenv("PPROF_ADDR", "  ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PprofAddr != ":6060" {
		t.Fatalf("expected default pprof addr :6060, got %q", cfg.PprofAddr)
	}
}

func TestLoad_PyroscopeRequiresServerAddressWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when PYROSCOPE_ENABLED=true without PYROSCOPE_SERVER_ADDRESS")
	}
}

func TestLoad_PyroscopeAppNameDefaultsToServiceName(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("APP_SERVICE_NAME", "quiniela-api-test")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "http://localhost:4040")
	t.Setenv("PYROSCOPE_APP_NAME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PyroscopeAppName != "quiniela-api-test" {
		t.Fatalf("unexpected pyroscope app name: %q", cfg.PyroscopeAppName)
	}
}

func TestLoad_CORSOriginsDefaultAndParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("default wildcard", func(t *testing.T) {
		t.Setenv("CORS_ALLOWED_ORIGINS", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
			t.Fatalf("unexpected default CORS origins: %+v", cfg.CORSAllowedOrigins)
		}
	})

	t.Run("comma separated parsing", func(t *testing.T) {
		t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example.com, http://localhost:5173 ")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if len(cfg.CORSAllowedOrigins) != 2 {
			t.Fatalf("unexpected CORS origins length: %d", len(cfg.CORSAllowedOrigins))
		}
		if cfg.CORSAllowedOrigins[0] != "https://a.example.com" {
			t.Fatalf("unexpected first CORS origin: %s", cfg.CORSAllowedOrigins[0])
		}
		if cfg.CORSAllowedOrigins[1] != "http://localhost:5173" {
			t.Fatalf("unexpected second CORS origin: %s", cfg.CORSAllowedOrigins[1])
		}
	})
}

func TestLoad_DBDisablePreparedBinaryResultParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("default true", func(t *testing.T) {
		t.Setenv("DB_DISABLE_PREPARED_BINARY_RESULT", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.DBDisablePreparedBinary {
			t.Fatalf("expected DBDisablePreparedBinary=true by default")
		}
	})

	t.Run("invalid value", func(t *testing.T) {
		t.Setenv("DB_DISABLE_PREPARED_BINARY_RESULT", "not-bool")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for invalid DB_DISABLE_PREPARED_BINARY_RESULT")
		}
	})
}

func TestLoad_CacheConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("defaults", func(t *testing.T) {
		t.Setenv("CACHE_ENABLED", "")
		t.Setenv("CACHE_TTL", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.CacheEnabled {
			t.Fatalf("expected cache enabled by default")
		}
		if cfg.CacheTTL != 60*time.Second {
			t.Fatalf("unexpected default cache ttl: %s", cfg.CacheTTL)
		}
	})

	t.Run("invalid ttl", func(t *testing.T) {
		t.Setenv("CACHE_TTL", "bad")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for invalid CACHE_TTL")
		}
	})
}

func TestLoad_StorageValidation(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)

	t.Run("defaults to postgres", func(t *testing.T) {
		t.Setenv("APP_STORAGE", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.Storage != StoragePostgres {
			t.Fatalf("expected postgres storage, got %q", cfg.Storage)
		}
		if cfg.MongoDatabase != "quiniela" {
			t.Fatalf("unexpected default mongo database: %q", cfg.MongoDatabase)
		}
	})

	t.Run("memory accepted case-insensitively", func(t *testing.T) {
		t.Setenv("APP_STORAGE", " Memory ")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.Storage != StorageMemory {
			t.Fatalf("expected memory storage, got %q", cfg.Storage)
		}
	})

	t.Run("unknown rejected", func(t *testing.T) {
		t.Setenv("APP_STORAGE", "sqlite")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for unknown APP_STORAGE")
		}
	})
}

func TestLoad_JWTSecretRequiredOutsideDev(t *testing.T) {
	t.Run("dev falls back to development secret", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvDev)
		t.Setenv("JWT_SECRET", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.JWTSecret == "" {
			t.Fatalf("expected a development secret")
		}
		if cfg.JWTAccessTTL != time.Hour || cfg.JWTRefreshTTL != 7*24*time.Hour {
			t.Fatalf("unexpected token ttls: access=%s refresh=%s", cfg.JWTAccessTTL, cfg.JWTRefreshTTL)
		}
	})

	t.Run("stage requires secret", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvStage)
		t.Setenv("JWT_SECRET", "")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error when JWT_SECRET is empty in stage")
		}
	})

	t.Run("refresh ttl shorter than access rejected", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvDev)
		t.Setenv("JWT_ACCESS_TTL", "2h")
		t.Setenv("JWT_REFRESH_TTL", "1h")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error when JWT_REFRESH_TTL < JWT_ACCESS_TTL")
		}
	})
}

func TestLoad_APIFootballConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)

	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.APIFootballHost != "api-football-v1.p.rapidapi.com" {
			t.Fatalf("unexpected default host: %q", cfg.APIFootballHost)
		}
		if cfg.APIFootballTimeout != 20*time.Second {
			t.Fatalf("unexpected default timeout: %s", cfg.APIFootballTimeout)
		}
		if !cfg.APIFootballCircuitEnabled || cfg.APIFootballCircuitFailures != 5 {
			t.Fatalf("unexpected circuit defaults: enabled=%v failures=%d", cfg.APIFootballCircuitEnabled, cfg.APIFootballCircuitFailures)
		}
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("APIFOOTBALL_KEY", "rapidapi-key")
		t.Setenv("APIFOOTBALL_MAX_RETRIES", "3")
		t.Setenv("APIFOOTBALL_ODDS_WORKERS", "8")
		t.Setenv("APIFOOTBALL_BASE_URL", "http://localhost:9090/v3")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.APIFootballKey != "rapidapi-key" || cfg.APIFootballMaxRetries != 3 || cfg.APIFootballOddsWorkers != 8 {
			t.Fatalf("unexpected api-football config: %+v", cfg)
		}
		if cfg.APIFootballBaseURL != "http://localhost:9090/v3" {
			t.Fatalf("unexpected base url: %q", cfg.APIFootballBaseURL)
		}
	})

	t.Run("zero odds workers rejected", func(t *testing.T) {
		t.Setenv("APIFOOTBALL_ODDS_WORKERS", "0")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for APIFOOTBALL_ODDS_WORKERS=0")
		}
	})

	t.Run("prod requires key", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvProd)
		t.Setenv("JWT_SECRET", "prod-secret")
		t.Setenv("APIFOOTBALL_KEY", "")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error when APIFOOTBALL_KEY is empty in prod")
		}
	})
}

func TestLoad_CoinsAndMirrorConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)

	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.CoinsDefaultAmount.String() != "100" {
			t.Fatalf("unexpected default coin amount: %s", cfg.CoinsDefaultAmount)
		}
		if cfg.CoinsLoginCooldown != 24*time.Hour {
			t.Fatalf("unexpected login cooldown: %s", cfg.CoinsLoginCooldown)
		}
		if cfg.MirrorReconcileInterval != time.Minute || cfg.MirrorReconcileBatch != 100 {
			t.Fatalf("unexpected mirror defaults: interval=%s batch=%d", cfg.MirrorReconcileInterval, cfg.MirrorReconcileBatch)
		}
	})

	t.Run("decimal amount", func(t *testing.T) {
		t.Setenv("COINS_DEFAULT_AMOUNT", "12.50")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.CoinsDefaultAmount.StringFixed(2) != "12.50" {
			t.Fatalf("unexpected coin amount: %s", cfg.CoinsDefaultAmount)
		}
	})

	t.Run("non positive amount rejected", func(t *testing.T) {
		t.Setenv("COINS_DEFAULT_AMOUNT", "0")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for COINS_DEFAULT_AMOUNT=0")
		}
	})

	t.Run("invalid batch rejected", func(t *testing.T) {
		t.Setenv("MIRROR_RECONCILE_BATCH", "0")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for MIRROR_RECONCILE_BATCH=0")
		}
	})
}
