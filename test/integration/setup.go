package integration

import (
	"context"
	"testing"
	"time"

	"storefront/internal/database"
	"storefront/internal/email"
	"storefront/internal/followup"
	"storefront/internal/repository"
	"storefront/internal/service"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container, applies the embedded
// migrations and opens a connection pool.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	// The same migration path production runs at startup.
	if err := database.Migrate(connStr, zerolog.Nop()); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("failed to ping database: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// testEnv wires the full service stack against the test database, the same
// way cmd/api does.
type testEnv struct {
	Pool     *pgxpool.Pool
	Queue    *followup.Queue
	Products repository.ProductRepository
	Vouchers repository.VoucherRepository
	Orders   repository.OrderRepository
	Invoices repository.InvoiceRepository
	Carts    repository.CartRepository
	CartSvc  service.CartService
	OrderSvc service.OrderService
	PaySvc   service.PaymentService
}

func newTestEnv(t *testing.T, db *TestDB) *testEnv {
	t.Helper()

	logger := zerolog.Nop()

	productRepo := repository.NewProductRepository(db.Pool, logger)
	cartRepo := repository.NewCartRepository(db.Pool, logger)
	voucherRepo := repository.NewVoucherRepository(db.Pool, logger)
	orderRepo := repository.NewOrderRepository(db.Pool, logger)
	invoiceRepo := repository.NewInvoiceRepository(db.Pool, logger)

	queue := followup.NewQueue(64, 1, logger)
	queue.Start(context.Background())
	t.Cleanup(queue.Close)

	cartSvc := service.NewCartService(cartRepo, productRepo, logger)
	orderSvc := service.NewOrderService(orderRepo, productRepo, voucherRepo, cartSvc, queue, logger)
	paySvc := service.NewPaymentService(orderRepo, invoiceRepo, email.NewLogSender(logger), queue, logger)

	return &testEnv{
		Pool:     db.Pool,
		Queue:    queue,
		Products: productRepo,
		Vouchers: voucherRepo,
		Orders:   orderRepo,
		Invoices: invoiceRepo,
		Carts:    cartRepo,
		CartSvc:  cartSvc,
		OrderSvc: orderSvc,
		PaySvc:   paySvc,
	}
}

// seedProduct inserts a product row.
func seedProduct(t *testing.T, pool *pgxpool.Pool, id, name string, price float64, stock int) {
	t.Helper()

	_, err := pool.Exec(context.Background(), `
		INSERT INTO products (id, name, image_url, price, stock)
		VALUES ($1, $2, '', $3, $4)
	`, id, name, price, stock)
	if err != nil {
		t.Fatalf("failed to seed product %s: %v", id, err)
	}
}

// seedVoucher inserts an active voucher valid for the next 24 hours and
// returns its id.
func seedVoucher(t *testing.T, pool *pgxpool.Pool, code, discountType string, value, minPurchase float64, maxDiscount *float64, perUser int, totalLimit *int) uuid.UUID {
	t.Helper()

	id := uuid.New()
	now := time.Now()
	_, err := pool.Exec(context.Background(), `
		INSERT INTO vouchers (id, code, discount_type, discount_value, min_purchase_amount,
			max_discount_amount, start_date, end_date, usage_limit_per_user, total_usage_limit, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, TRUE)
	`, id, code, discountType, value, minPurchase, maxDiscount, now.Add(-time.Hour), now.Add(24*time.Hour), perUser, totalLimit)
	if err != nil {
		t.Fatalf("failed to seed voucher %s: %v", code, err)
	}

	return id
}

func productStock(t *testing.T, pool *pgxpool.Pool, id string) int {
	t.Helper()

	var stock int
	if err := pool.QueryRow(context.Background(), `SELECT stock FROM products WHERE id = $1`, id).Scan(&stock); err != nil {
		t.Fatalf("failed to read stock for %s: %v", id, err)
	}
	return stock
}

func countRows(t *testing.T, pool *pgxpool.Pool, table string) int {
	t.Helper()

	var count int
	if err := pool.QueryRow(context.Background(), `SELECT COUNT(*) FROM `+table).Scan(&count); err != nil {
		t.Fatalf("failed to count %s: %v", table, err)
	}
	return count
}

func voucherUsageCount(t *testing.T, pool *pgxpool.Pool, voucherID uuid.UUID) int {
	t.Helper()

	var count int
	if err := pool.QueryRow(context.Background(), `
		SELECT current_usage_count FROM vouchers WHERE id = $1
	`, voucherID).Scan(&count); err != nil {
		t.Fatalf("failed to read voucher usage count: %v", err)
	}
	return count
}

func ptrString(s string) *string  { return &s }
func ptrFloat(f float64) *float64 { return &f }
func ptrInt(i int) *int           { return &i }
