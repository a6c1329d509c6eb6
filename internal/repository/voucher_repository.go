package repository

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// voucherRepository implements the VoucherRepository interface using PostgreSQL.
type voucherRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewVoucherRepository creates a new PostgreSQL-backed voucher repository.
func NewVoucherRepository(pool *pgxpool.Pool, logger zerolog.Logger) VoucherRepository {
	return &voucherRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "voucher").Logger(),
	}
}

const voucherColumns = `id, code, discount_type, discount_value, min_purchase_amount, max_discount_amount,
		start_date, end_date, usage_limit_per_user, total_usage_limit, current_usage_count, is_active, created_at`

func scanVoucher(row pgx.Row, v *model.Voucher) error {
	return row.Scan(
		&v.ID,
		&v.Code,
		&v.DiscountType,
		&v.DiscountValue,
		&v.MinPurchaseAmount,
		&v.MaxDiscountAmount,
		&v.StartDate,
		&v.EndDate,
		&v.UsageLimitPerUser,
		&v.TotalUsageLimit,
		&v.CurrentUsageCount,
		&v.IsActive,
		&v.CreatedAt,
	)
}

// GetByCode retrieves a voucher by its code.
func (r *voucherRepository) GetByCode(ctx context.Context, code string) (*model.Voucher, error) {
	query := `
		SELECT ` + voucherColumns + `
		FROM vouchers
		WHERE code = $1
	`

	var v model.Voucher
	err := scanVoucher(r.pool.QueryRow(ctx, query, code), &v)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("code", code).Msg("voucher not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("code", code).Msg("failed to query voucher")
		return nil, fmt.Errorf("failed to query voucher: %w", err)
	}

	return &v, nil
}

// CountUsageByUser counts the user's prior redemptions of the voucher.
func (r *voucherRepository) CountUsageByUser(ctx context.Context, voucherID, userID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM voucher_usages
		WHERE voucher_id = $1 AND user_id = $2
	`

	var count int
	err := r.pool.QueryRow(ctx, query, voucherID, userID).Scan(&count)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("voucher_id", voucherID.String()).
			Str("user_id", userID.String()).
			Msg("failed to count voucher usage")
		return 0, fmt.Errorf("failed to count voucher usage: %w", err)
	}

	return count, nil
}

// Redeem records one redemption inside the order transaction. The voucher row
// is locked FOR UPDATE first, so the cap re-checks and the counter increment
// are serialized across concurrent checkouts; a lost race surfaces as a
// domain error that aborts the caller's whole transaction.
func (r *voucherRepository) Redeem(ctx context.Context, tx pgx.Tx, voucherID, userID, orderID uuid.UUID) error {
	lockQuery := `
		SELECT usage_limit_per_user, total_usage_limit, current_usage_count
		FROM vouchers
		WHERE id = $1
		FOR UPDATE
	`

	var (
		perUserLimit int
		totalLimit   *int
		currentCount int
	)
	err := tx.QueryRow(ctx, lockQuery, voucherID).Scan(&perUserLimit, &totalLimit, &currentCount)
	if err != nil {
		if err == pgx.ErrNoRows {
			return model.ErrVoucherNotFound
		}
		r.logger.Error().Err(err).Str("voucher_id", voucherID.String()).Msg("failed to lock voucher row")
		return fmt.Errorf("failed to lock voucher row: %w", err)
	}

	if totalLimit != nil && currentCount >= *totalLimit {
		r.logger.Warn().Str("voucher_id", voucherID.String()).Msg("voucher exhausted at redemption time")
		return model.ErrVoucherExhausted
	}

	countQuery := `
		SELECT COUNT(*)
		FROM voucher_usages
		WHERE voucher_id = $1 AND user_id = $2
	`
	var userCount int
	if err := tx.QueryRow(ctx, countQuery, voucherID, userID).Scan(&userCount); err != nil {
		r.logger.Error().Err(err).Str("voucher_id", voucherID.String()).Msg("failed to count user redemptions")
		return fmt.Errorf("failed to count user redemptions: %w", err)
	}

	if userCount >= perUserLimit {
		r.logger.Warn().
			Str("voucher_id", voucherID.String()).
			Str("user_id", userID.String()).
			Msg("per-user voucher limit reached at redemption time")
		return model.ErrVoucherUserLimit
	}

	insertQuery := `
		INSERT INTO voucher_usages (id, voucher_id, user_id, order_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := tx.Exec(ctx, insertQuery, uuid.New(), voucherID, userID, orderID, time.Now()); err != nil {
		r.logger.Error().
			Err(err).
			Str("voucher_id", voucherID.String()).
			Str("order_id", orderID.String()).
			Msg("failed to insert voucher usage")
		return fmt.Errorf("failed to insert voucher usage: %w", err)
	}

	incrementQuery := `
		UPDATE vouchers
		SET current_usage_count = current_usage_count + 1
		WHERE id = $1
	`
	if _, err := tx.Exec(ctx, incrementQuery, voucherID); err != nil {
		r.logger.Error().Err(err).Str("voucher_id", voucherID.String()).Msg("failed to increment voucher usage count")
		return fmt.Errorf("failed to increment voucher usage count: %w", err)
	}

	r.logger.Debug().
		Str("voucher_id", voucherID.String()).
		Str("user_id", userID.String()).
		Str("order_id", orderID.String()).
		Msg("voucher redeemed")

	return nil
}

// Release decrements the global usage counter inside the caller's
// transaction, mirroring the increment made at redemption time. GREATEST
// keeps the counter from going negative if the voucher row was reset
// out of band.
func (r *voucherRepository) Release(ctx context.Context, tx pgx.Tx, voucherID uuid.UUID) error {
	query := `
		UPDATE vouchers
		SET current_usage_count = GREATEST(current_usage_count - 1, 0)
		WHERE id = $1
	`

	if _, err := tx.Exec(ctx, query, voucherID); err != nil {
		r.logger.Error().Err(err).Str("voucher_id", voucherID.String()).Msg("failed to release voucher usage")
		return fmt.Errorf("failed to release voucher usage: %w", err)
	}

	r.logger.Debug().Str("voucher_id", voucherID.String()).Msg("voucher usage released")

	return nil
}
