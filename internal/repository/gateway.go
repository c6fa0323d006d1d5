package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"packpay/internal/model"
)

// TransferGateway moves tokens between holding accounts inside the caller's
// transaction. It is all-or-nothing by construction: both balance updates
// ride the same tx, and any error aborts the whole enclosing operation.
type TransferGateway interface {
	Transfer(ctx context.Context, tx pgx.Tx, amount uint64, from, to, authority model.Key) error
}

type tokenGateway struct{}

func NewTokenGateway() TransferGateway {
	return tokenGateway{}
}

// Transfer debits from and credits to, authorized by authority. The caller
// is trusted to have locked both accounts; the debit re-checks ownership and
// balance itself rather than relying on the caller.
func (tokenGateway) Transfer(ctx context.Context, tx pgx.Tx, amount uint64, from, to, authority model.Key) error {
	var owner []byte
	var balance int64
	err := tx.QueryRow(ctx,
		`SELECT owner, balance FROM token_accounts WHERE address = $1`,
		from.Bytes()).Scan(&owner, &balance)
	if err != nil {
		return fmt.Errorf("transfer source %s: %w", from, err)
	}

	var ownerKey model.Key
	copy(ownerKey[:], owner)
	if ownerKey != authority {
		return ErrBadAuthority
	}
	if uint64(balance) < amount {
		return ErrInsufficientFunds
	}

	if _, err := tx.Exec(ctx,
		`UPDATE token_accounts SET balance = balance - $1 WHERE address = $2`,
		int64(amount), from.Bytes()); err != nil {
		return fmt.Errorf("debit %s: %w", from, err)
	}
	if _, err := tx.Exec(ctx,
		`UPDATE token_accounts SET balance = balance + $1 WHERE address = $2`,
		int64(amount), to.Bytes()); err != nil {
		return fmt.Errorf("credit %s: %w", to, err)
	}
	return nil
}
