package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	testRedis "github.com/testcontainers/testcontainers-go/modules/redis"

	inCart "github.com/khalidaziz/dukkan/internal/cart"
	"github.com/khalidaziz/dukkan/internal/repository"
	"github.com/khalidaziz/dukkan/pricing"
)

func mustDecimal(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

type cartEnv struct {
	service     *CartService
	store       *inCart.Store
	pool        *pgxpool.Pool
	cache       *redis.Client
	pgContainer *postgres.PostgresContainer
	rdContainer *testRedis.RedisContainer
}

func setupCart(t *testing.T, c context.Context) *cartEnv {
	pgContainer, err := postgres.Run(
		c,
		"postgres:16.6-alpine3.21",
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		postgres.WithDatabase("postgres"),
		postgres.BasicWaitStrategies(),
		postgres.WithInitScripts(
			filepath.Join("testdata", "schema.sql"),
			filepath.Join("testdata", "seed.sql"),
		),
	)
	if err != nil {
		t.Fatalf("failed running postgres container with error: %s", err)
	}

	pgConnStr, err := pgContainer.ConnectionString(c)
	if err != nil {
		t.Fatalf("failed getting postgres connection string with error: %s", err)
	}
	pool, err := pgxpool.New(c, pgConnStr)
	if err != nil {
		t.Fatalf("failed creating postgres pool with error: %s", err)
	}
	if err = pool.Ping(c); err != nil {
		t.Fatalf("failed pinging postgres pool with error: %s", err)
	}

	rdContainer, err := testRedis.Run(c, "redis:7.4.2-alpine3.21")
	if err != nil {
		t.Fatalf("failed running redis container with error: %s", err)
	}
	redisConnStr, err := rdContainer.ConnectionString(c)
	if err != nil {
		t.Fatalf("failed getting redis connection string with error: %s", err)
	}
	redisOpt, err := redis.ParseURL(redisConnStr)
	if err != nil {
		t.Fatalf("failed parsing redis connection string with error: %s", err)
	}
	cache := redis.NewClient(redisOpt)
	if err = cache.Ping(c).Err(); err != nil {
		t.Fatalf("failed pinging redis client with error: %s", err)
	}

	rule := pricing.Rule{
		FreeShippingThreshold: mustDecimal("200"),
		FlatShippingFee:       mustDecimal("25"),
		TaxRate:               mustDecimal("0.05"),
	}
	store := inCart.NewStore(cache)
	cartService := NewCartService(repository.New(pool), store, pricing.NewCalculator(rule))

	return &cartEnv{
		service:     cartService,
		store:       store,
		pool:        pool,
		cache:       cache,
		pgContainer: pgContainer,
		rdContainer: rdContainer,
	}
}

func (env *cartEnv) teardown(t *testing.T) {
	env.cache.Close()
	env.pool.Close()
	if err := testcontainers.TerminateContainer(env.pgContainer); err != nil {
		t.Fatalf("failed to terminate container: %s", err)
	}
	if err := testcontainers.TerminateContainer(env.rdContainer); err != nil {
		t.Fatalf("failed to terminate container: %s", err)
	}
}
