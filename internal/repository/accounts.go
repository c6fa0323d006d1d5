package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"

	"packpay/internal/model"
	"packpay/internal/receipt"
)

// GetReceipt derives the receipt address for (buyer, tag) and reads the
// record, Redis first. On a cache miss it falls back to Postgres and warms
// the cache.
func (r *LedgerRepo) GetReceipt(ctx context.Context, buyer model.Key, tag string) (*receipt.Receipt, error) {
	addr, _, err := receipt.DeriveAddress(buyer, tag)
	if err != nil {
		return nil, err
	}

	data, err := r.redisClient.Get(ctx, receiptCacheKey(addr)).Bytes()
	if err == nil {
		return receipt.Decode(data)
	}
	if !errors.Is(err, redis.Nil) {
		slog.Warn("receipt cache read failed, falling back to database",
			"address", addr.String(), "error", err)
	}

	err = r.dbPool.QueryRow(ctx,
		`SELECT data FROM receipts WHERE address = $1`, addr.Bytes()).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrReceiptNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load receipt %s: %w", addr, err)
	}

	r.cacheReceipt(ctx, addr, data)
	return receipt.Decode(data)
}

// VerifyReceipt recomputes the address for (buyer, tag) at the bump stored
// in the committed receipt and reports whether it matches.
func (r *LedgerRepo) VerifyReceipt(ctx context.Context, buyer model.Key, tag string) (bool, error) {
	rec, err := r.GetReceipt(ctx, buyer, tag)
	if err != nil {
		return false, err
	}
	addr, _, err := receipt.DeriveAddress(buyer, tag)
	if err != nil {
		return false, err
	}
	return receipt.VerifyAddress(addr, rec.Buyer, rec.CorrelationTag, rec.Bump), nil
}

func (r *LedgerRepo) GetBalance(ctx context.Context, address model.Key) (uint64, error) {
	var balance int64
	err := r.dbPool.QueryRow(ctx,
		`SELECT balance FROM token_accounts WHERE address = $1`, address.Bytes()).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrAccountNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("load balance %s: %w", address, err)
	}
	return uint64(balance), nil
}

func (r *LedgerRepo) CreateAccount(ctx context.Context, acct model.TokenAccount) error {
	_, err := r.dbPool.Exec(ctx,
		`INSERT INTO token_accounts (address, mint, owner, balance) VALUES ($1, $2, $3, $4)`,
		acct.Address.Bytes(), acct.Mint.Bytes(), acct.Owner.Bytes(), int64(acct.Balance))
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAccountExists
		}
		return fmt.Errorf("create token account %s: %w", acct.Address, err)
	}
	return nil
}

// SyncPurchase records a committed purchase event in the audit table.
// Idempotent on the receipt address, so bus redeliveries are harmless.
func (r *LedgerRepo) SyncPurchase(ctx context.Context, event model.PurchaseEvent) error {
	_, err := r.dbPool.Exec(ctx,
		`INSERT INTO purchase_events (receipt_address, buyer, correlation_tag, amount, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (receipt_address) DO NOTHING`,
		event.ReceiptAddress.Bytes(),
		event.Buyer.Bytes(),
		event.CorrelationTag,
		int64(event.Amount),
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sync purchase event %s: %w", event.ReceiptAddress, err)
	}
	return nil
}
