package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	supabasego "github.com/supabase-community/supabase-go"
	"go.uber.org/zap"

	"example.com/mentalreset/internal/auth"
	"example.com/mentalreset/internal/config"
	"example.com/mentalreset/internal/domain"
	"example.com/mentalreset/internal/drafts"
	"example.com/mentalreset/internal/persistence"
	"example.com/mentalreset/internal/persistence/memory"
	"example.com/mentalreset/internal/persistence/postgres"
	"example.com/mentalreset/internal/persistence/sqlite"
	"example.com/mentalreset/internal/persistence/supabase"
)

// backend is the configured session repository plus whatever must be
// released on shutdown.
type backend struct {
	repo    domain.SessionRepository
	pool    *pgxpool.Pool
	ping    func(context.Context) error
	closers []func()
}

// Ping reports whether the underlying store answers. Backends without a
// direct connection always report healthy.
func (b *backend) Ping(ctx context.Context) error {
	if b.ping == nil {
		return nil
	}
	return b.ping(ctx)
}

func (b *backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

func openBackend(ctx context.Context, cfg config.Config, logger *zap.Logger) (*backend, error) {
	b := &backend{}

	switch cfg.StorageBackend {
	case config.StorageMemory:
		b.repo = memory.NewRepository()
	case config.StoragePostgres:
		pool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		b.pool = pool
		b.closers = append(b.closers, pool.Close)
		repo := postgres.NewRepository(pool, postgres.WithOutbox(cfg.OutboxEnabled))
		b.repo = repo
		b.ping = repo.Ping
	case config.StorageSQLite:
		repo, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, func() { _ = repo.Close() })
		b.repo = repo
		b.ping = repo.Ping
	case config.StorageSupabase:
		repo, err := supabase.NewRepository(cfg.SupabaseURL, cfg.SupabaseKey)
		if err != nil {
			return nil, err
		}
		b.repo = repo
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}

	if cfg.StorageBreaker {
		b.repo = persistence.NewBreakerRepository(b.repo, persistence.DefaultBreakerConfig(cfg.StorageBackend), logger)
	}
	logger.Info("session storage ready", zap.String("backend", cfg.StorageBackend), zap.Bool("breaker", cfg.StorageBreaker))
	return b, nil
}

func openDraftStore(ctx context.Context, cfg config.Config) (drafts.Store, func(), error) {
	switch cfg.DraftStore {
	case config.DraftsMemory:
		return drafts.NewMemoryStore(cfg.DraftTTL), func() {}, nil
	case config.DraftsRedis:
		store, err := drafts.NewRedisStore(ctx, cfg.RedisAddr, cfg.DraftTTL)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown draft store %q", cfg.DraftStore)
}

func newVerifier(cfg config.Config) (auth.Verifier, error) {
	switch cfg.AuthProvider {
	case config.AuthJWT:
		return auth.NewJWTVerifier(auth.JWTConfig{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer}), nil
	case config.AuthSupabase:
		client, err := supabasego.NewClient(cfg.SupabaseURL, cfg.SupabaseKey, nil)
		if err != nil {
			return nil, fmt.Errorf("create supabase client: %w", err)
		}
		return auth.NewSupabaseVerifier(client), nil
	}
	return nil, errors.New("no auth provider configured")
}
