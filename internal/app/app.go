// Package app wires configuration, storage, cache and services together for
// the server and scheduler binaries.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/segyhp/savings-ledger/internal/cache"
	"github.com/segyhp/savings-ledger/internal/config"
	"github.com/segyhp/savings-ledger/internal/repository"
	"github.com/segyhp/savings-ledger/internal/repository/memory"
	"github.com/segyhp/savings-ledger/internal/service"
)

// Storage is one repository set plus its lifecycle hooks
type Storage struct {
	Members  repository.MemberRepository
	Meetings repository.MeetingRepository
	Shares   repository.ShareRepository
	Loans    repository.LoanRepository
	Welfare  repository.WelfareRepository
	Ping     func(ctx context.Context) error
	Close    func() error
}

// OpenStorage connects to the configured backend. For postgres, pending
// migrations are applied first.
func OpenStorage(cfg *config.Config) (*Storage, error) {
	if cfg.Database.Backend == config.BackendMemory {
		store := memory.NewStore()
		return &Storage{
			Members:  store.Members(),
			Meetings: store.Meetings(),
			Shares:   store.Shares(),
			Loans:    store.Loans(),
			Welfare:  store.Welfare(),
			Ping:     store.Ping,
			Close:    func() error { return nil },
		}, nil
	}

	if err := repository.RunMigrations(cfg.Database.URL); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := initDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	return &Storage{
		Members:  repository.NewMemberRepository(db),
		Meetings: repository.NewMeetingRepository(db),
		Shares:   repository.NewShareRepository(db),
		Loans:    repository.NewLoanRepository(db),
		Welfare:  repository.NewWelfareRepository(db),
		Ping:     db.PingContext,
		Close:    db.Close,
	}, nil
}

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	return db, nil
}

// SummaryCache is the meeting summary cache. Ping is nil when redis is disabled.
type SummaryCache struct {
	cache.SummaryCache
	Ping   func(ctx context.Context) error
	client *redis.Client
}

// Close releases the redis client, if any
func (c *SummaryCache) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

// OpenSummaryCache returns a redis backed cache when REDIS_ENABLED is set and a
// no-op cache otherwise
func OpenSummaryCache(cfg *config.Config) *SummaryCache {
	if !cfg.Redis.Enabled {
		return &SummaryCache{SummaryCache: cache.NoopSummaryCache{}}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	redisCache := cache.NewRedisSummaryCache(client, cfg.Redis.SummaryTTL)
	return &SummaryCache{
		SummaryCache: redisCache,
		Ping:         redisCache.Ping,
		client:       client,
	}
}

// Services holds every domain service built over one storage
type Services struct {
	Members  *service.MemberService
	Meetings *service.MeetingService
	Shares   *service.ShareService
	Loans    *service.LoanService
	Welfare  *service.WelfareService
}

func NewServices(cfg *config.Config, storage *Storage, summaryCache cache.SummaryCache, logger *slog.Logger) *Services {
	meetings := service.NewMeetingService(storage.Meetings, storage.Shares, storage.Loans, storage.Welfare, summaryCache, logger)

	return &Services{
		Members:  service.NewMemberService(storage.Members, logger),
		Meetings: meetings,
		Shares:   service.NewShareService(storage.Shares, storage.Members, storage.Meetings, meetings, logger),
		Loans:    service.NewLoanService(storage.Loans, storage.Members, storage.Meetings, meetings, cfg, logger),
		Welfare:  service.NewWelfareService(storage.Welfare, storage.Members, storage.Meetings, meetings, logger),
	}
}
