//go:build ignore

// Seeds the database with sample products and vouchers for local
// development. Run with: go run scripts/seed_data.go
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"storefront/internal/config"
	"storefront/internal/database"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	ctx := context.Background()

	if err := database.Migrate(cfg.Database.ConnectionString(), logger); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer pool.Close()

	products := []struct {
		id    string
		name  string
		image string
		price float64
		stock int
	}{
		{"P001", "Canvas Tote Bag", "/images/p001.jpg", 24.50, 120},
		{"P002", "Stainless Water Bottle", "/images/p002.jpg", 18.00, 200},
		{"P003", "Wireless Earbuds", "/images/p003.jpg", 89.99, 35},
		{"P004", "Desk Lamp", "/images/p004.jpg", 42.00, 60},
		{"P005", "Notebook Set", "/images/p005.jpg", 12.75, 300},
	}

	for _, p := range products {
		_, err := pool.Exec(ctx, `
			INSERT INTO products (id, name, image_url, price, stock)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO NOTHING
		`, p.id, p.name, p.image, p.price, p.stock)
		if err != nil {
			return fmt.Errorf("failed to seed product %s: %w", p.id, err)
		}
	}

	now := time.Now()
	year := now.AddDate(1, 0, 0)

	vouchers := []struct {
		code       string
		kind       string
		value      float64
		minAmount  float64
		maxAmount  *float64
		perUser    int
		totalLimit *int
	}{
		{"WELCOME10", "percentage", 10, 0, nil, 1, nil},
		{"SAVE20", "percentage", 20, 50, ptrFloat(15), 3, ptrInt(500)},
		{"FLAT5", "fixed", 5, 25, nil, 5, nil},
	}

	for _, v := range vouchers {
		_, err := pool.Exec(ctx, `
			INSERT INTO vouchers (id, code, discount_type, discount_value, min_purchase_amount,
				max_discount_amount, start_date, end_date, usage_limit_per_user, total_usage_limit, is_active)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, TRUE)
			ON CONFLICT (code) DO NOTHING
		`, uuid.New(), v.code, v.kind, v.value, v.minAmount, v.maxAmount, now, year, v.perUser, v.totalLimit)
		if err != nil {
			return fmt.Errorf("failed to seed voucher %s: %w", v.code, err)
		}
	}

	logger.Info().
		Int("products", len(products)).
		Int("vouchers", len(vouchers)).
		Msg("sample data seeded")

	return nil
}

func ptrFloat(f float64) *float64 { return &f }
func ptrInt(i int) *int           { return &i }
