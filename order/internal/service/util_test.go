package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/khalidaziz/dukkan/internal/repository"
	"github.com/khalidaziz/dukkan/pricing"
)

type (
	setupFunc    func(context.Context) (*pgxpool.Pool, *postgres.PostgresContainer, *repository.Queries, *OrderService)
	teardownFunc func(*pgxpool.Pool, *postgres.PostgresContainer)
)

func testRule() pricing.Rule {
	return pricing.Rule{
		FreeShippingThreshold: decimalFromString("200"),
		FlatShippingFee:       decimalFromString("25"),
		TaxRate:               decimalFromString("0.05"),
	}
}

func setup(t *testing.T) setupFunc {
	return func(c context.Context) (*pgxpool.Pool, *postgres.PostgresContainer, *repository.Queries, *OrderService) {
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

		queries := repository.New(pool)
		orderService := NewOrderService(pool, queries, pricing.NewCalculator(testRule()))
		return pool, pgContainer, queries, orderService
	}
}

func teardown(t *testing.T) teardownFunc {
	return func(pool *pgxpool.Pool, pgContainer *postgres.PostgresContainer) {
		pool.Close()
		if err := testcontainers.TerminateContainer(pgContainer); err != nil {
			t.Fatalf("failed to terminate container: %s", err)
		}
	}
}
