package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"packpay/internal/model"
	"packpay/internal/receipt"
)

var (
	ErrZeroAmount        = errors.New("amount must be > 0")
	ErrInvalidMint       = errors.New("holding account is not for the canonical mint")
	ErrInvalidTreasury   = errors.New("treasury account owner is not the canonical treasury")
	ErrBadAuthority      = errors.New("buyer is not the authority of the source account")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrReceiptExists     = errors.New("receipt already exists for this buyer and tag")
	ErrReceiptNotFound   = errors.New("receipt not found")
	ErrAccountNotFound   = errors.New("token account not found")
	ErrAccountExists     = errors.New("token account already exists")
)

type LedgerRepo struct {
	redisClient *redis.Client
	dbPool      *pgxpool.Pool
	bus         MessageBus
	gateway     TransferGateway
}

func NewLedgerRepo(rdb *redis.Client, db *pgxpool.Pool, bus MessageBus, gw TransferGateway) *LedgerRepo {
	return &LedgerRepo{
		redisClient: rdb,
		dbPool:      db,
		bus:         bus,
		gateway:     gw,
	}
}

// Purchase charges the buyer and records a uniquely-addressed receipt, all
// inside one serializable transaction. The transfer runs before the receipt
// insert; if the insert hits an existing address the rollback undoes the
// transfer too, so tokens never move without a receipt.
func (r *LedgerRepo) Purchase(ctx context.Context, req model.PurchaseRequest) (*model.PurchaseResult, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	tx, err := r.dbPool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return nil, fmt.Errorf("begin purchase tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	buyerAcct, err := lockAccount(ctx, tx, req.BuyerAccount)
	if err != nil {
		return nil, err
	}
	treasuryAcct, err := lockAccount(ctx, tx, req.TreasuryAccount)
	if err != nil {
		return nil, err
	}

	if err := validateAccounts(buyerAcct, treasuryAcct); err != nil {
		return nil, err
	}

	if err := r.gateway.Transfer(ctx, tx, req.Amount, buyerAcct.Address, treasuryAcct.Address, req.Buyer); err != nil {
		return nil, err
	}

	addr, bump, err := receipt.DeriveAddress(req.Buyer, req.CorrelationTag)
	if err != nil {
		return nil, err
	}

	var ts int64
	if err := tx.QueryRow(ctx, `SELECT floor(extract(epoch FROM now()))::bigint`).Scan(&ts); err != nil {
		return nil, fmt.Errorf("read ledger clock: %w", err)
	}

	rec := &receipt.Receipt{
		Buyer:          req.Buyer,
		Amount:         req.Amount,
		CorrelationTag: req.CorrelationTag,
		Timestamp:      ts,
		Bump:           bump,
	}
	data, err := rec.Encode()
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO receipts (address, data, created_at) VALUES ($1, $2, now())`,
		addr.Bytes(), data)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrReceiptExists
		}
		return nil, fmt.Errorf("allocate receipt storage: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit purchase: %w", err)
	}

	// Best effort after commit: the cache and the bus are not part of the
	// atomic operation.
	r.cacheReceipt(ctx, addr, data)
	r.publishPurchase(addr, rec)

	return &model.PurchaseResult{
		ReceiptAddress: addr,
		Bump:           bump,
		Amount:         req.Amount,
		Timestamp:      ts,
		Status:         "SUCCESS",
	}, nil
}

// validateRequest covers the checks that need no ledger state. Order
// matters: tag length first, then amount.
func validateRequest(req model.PurchaseRequest) error {
	if len(req.CorrelationTag) > receipt.MaxTagLen {
		return receipt.ErrSeedTooLong
	}
	if req.Amount == 0 {
		return ErrZeroAmount
	}
	return nil
}

// validateAccounts covers the identity checks against the canonical
// constants. Pure: no state is touched until all checks pass.
func validateAccounts(buyerAcct, treasuryAcct *model.TokenAccount) error {
	if buyerAcct.Mint != model.CanonicalMint || treasuryAcct.Mint != model.CanonicalMint {
		return ErrInvalidMint
	}
	if treasuryAcct.Owner != model.TreasuryOwner {
		return ErrInvalidTreasury
	}
	return nil
}

// lockAccount reads a holding account under FOR UPDATE so both sides of the
// transfer stay exclusively locked until the transaction ends.
func lockAccount(ctx context.Context, tx pgx.Tx, address model.Key) (*model.TokenAccount, error) {
	acct := &model.TokenAccount{Address: address}
	var mint, owner []byte
	var balance int64

	err := tx.QueryRow(ctx,
		`SELECT mint, owner, balance FROM token_accounts WHERE address = $1 FOR UPDATE`,
		address.Bytes()).Scan(&mint, &owner, &balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load token account %s: %w", address, err)
	}

	copy(acct.Mint[:], mint)
	copy(acct.Owner[:], owner)
	acct.Balance = uint64(balance)
	return acct, nil
}

func (r *LedgerRepo) cacheReceipt(ctx context.Context, addr model.Key, data []byte) {
	// Receipts are immutable, so the cached copy never goes stale and
	// carries no TTL.
	if err := r.redisClient.Set(ctx, receiptCacheKey(addr), data, 0).Err(); err != nil {
		slog.Warn("failed to cache receipt", "address", addr.String(), "error", err)
	}
}

func (r *LedgerRepo) publishPurchase(addr model.Key, rec *receipt.Receipt) {
	event := model.PurchaseEvent{
		ReceiptAddress: addr,
		Buyer:          rec.Buyer,
		CorrelationTag: rec.CorrelationTag,
		Amount:         rec.Amount,
		CreatedAt:      time.Unix(rec.Timestamp, 0).UTC(),
	}
	data, _ := json.Marshal(event)
	if err := r.bus.Publish("purchases.created", data); err != nil {
		slog.Warn("failed to publish purchase event", "address", addr.String(), "error", err)
	}
}

func receiptCacheKey(addr model.Key) string {
	return fmt.Sprintf("receipt:%s", addr)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
