package service

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	testRedis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/khalidaziz/dukkan/checkout/internal/session"
	inCart "github.com/khalidaziz/dukkan/internal/cart"
	"github.com/khalidaziz/dukkan/internal/payment"
	"github.com/khalidaziz/dukkan/internal/repository"
	orderRequest "github.com/khalidaziz/dukkan/order/pkg/request"
	orderResponse "github.com/khalidaziz/dukkan/order/pkg/response"
	"github.com/khalidaziz/dukkan/pricing"
)

// fakeGateway mimics the processor's idempotency layer the way Stripe
// documents it: a repeated idempotency key replays the recorded response of
// the FIRST create call, not the intent's current status, and confirming an
// intent that already succeeded is rejected outright.
type fakeGateway struct {
	mu            sync.Mutex
	firstResponse map[string]payment.Intent
	status        map[string]string
	createCalls   int
	confirmCalls  int
	confirmErr    error
	nextIntentSeq int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		firstResponse: map[string]payment.Intent{},
		status:        map[string]string{},
	}
}

func (g *fakeGateway) CreateIntent(
	_ context.Context,
	param payment.CreateIntentParams,
) (payment.Intent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.createCalls++
	if intent, ok := g.firstResponse[param.IdempotencyKey]; ok {
		return intent, nil
	}
	g.nextIntentSeq++
	intent := payment.Intent{
		ID:           fmt.Sprintf("pi_fake_%d", g.nextIntentSeq),
		ClientSecret: fmt.Sprintf("pi_fake_%d_secret", g.nextIntentSeq),
		Amount:       param.Amount,
		Currency:     param.Currency,
		Status:       payment.IntentStatusRequiresConfirmation,
	}
	g.firstResponse[param.IdempotencyKey] = intent
	g.status[intent.ID] = intent.Status
	return intent, nil
}

func (g *fakeGateway) ConfirmIntent(
	_ context.Context,
	param payment.ConfirmIntentParams,
) (payment.Intent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.confirmCalls++
	current, ok := g.status[param.IntentID]
	if !ok {
		return payment.Intent{}, fmt.Errorf("no such intent %s", param.IntentID)
	}
	if current == payment.IntentStatusSucceeded {
		return payment.Intent{}, fmt.Errorf(
			"payment intent %s has already succeeded", param.IntentID)
	}
	if g.confirmErr != nil {
		return payment.Intent{}, g.confirmErr
	}
	g.status[param.IntentID] = payment.IntentStatusSucceeded
	return payment.Intent{
		ID:     param.IntentID,
		Status: payment.IntentStatusSucceeded,
	}, nil
}

// fakeSaver stands in for the order service, including its idempotent
// replay on a repeated order id.
type fakeSaver struct {
	mu       sync.Mutex
	saved    map[string]orderRequest.SaveOrder
	attempts []orderRequest.SaveOrder
	failNext int
}

func newFakeSaver() *fakeSaver {
	return &fakeSaver{saved: map[string]orderRequest.SaveOrder{}}
}

func (s *fakeSaver) SaveOrder(
	_ context.Context,
	param orderRequest.SaveOrder,
) (orderResponse.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts = append(s.attempts, param)
	if s.failNext > 0 {
		s.failNext--
		return orderResponse.Order{}, fmt.Errorf("order service unavailable")
	}
	if _, ok := s.saved[param.ID]; !ok {
		s.saved[param.ID] = param
	}
	saved := s.saved[param.ID]
	return orderResponse.Order{
		ID:              saved.ID,
		PaymentIntentID: saved.PaymentIntentID,
		UserID:          saved.UserID,
		Summary: pricing.Summary{
			Subtotal:    saved.Summary.Subtotal,
			ShippingFee: saved.Summary.Shipping,
			Tax:         saved.Summary.Tax,
			Total:       saved.Summary.Total,
			TotalItems:  saved.Summary.TotalItems,
		},
		Status: "confirmed",
	}, nil
}

func mustDecimal(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

type checkoutEnv struct {
	service     *CheckoutService
	gateway     *fakeGateway
	saver       *fakeSaver
	carts       *inCart.Store
	sessions    *session.Store
	pool        *pgxpool.Pool
	cache       *redis.Client
	pgContainer *postgres.PostgresContainer
	rdContainer *testRedis.RedisContainer
}

func setupCheckout(t *testing.T, c context.Context) *checkoutEnv {
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
	gateway := newFakeGateway()
	saver := newFakeSaver()
	carts := inCart.NewStore(cache)
	sessions := session.NewStore(cache)
	checkoutService := NewCheckoutService(
		repository.New(pool),
		carts,
		sessions,
		gateway,
		saver,
		pricing.NewCalculator(rule),
		"aed",
		30*time.Second,
	)

	return &checkoutEnv{
		service:     checkoutService,
		gateway:     gateway,
		saver:       saver,
		carts:       carts,
		sessions:    sessions,
		pool:        pool,
		cache:       cache,
		pgContainer: pgContainer,
		rdContainer: rdContainer,
	}
}

func (env *checkoutEnv) teardown(t *testing.T) {
	env.cache.Close()
	env.pool.Close()
	if err := testcontainers.TerminateContainer(env.pgContainer); err != nil {
		t.Fatalf("failed to terminate container: %s", err)
	}
	if err := testcontainers.TerminateContainer(env.rdContainer); err != nil {
		t.Fatalf("failed to terminate container: %s", err)
	}
}
