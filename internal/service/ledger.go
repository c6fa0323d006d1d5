package service

import (
	"context"

	"packpay/internal/model"
	"packpay/internal/receipt"
)

// LedgerService defines the business operations for the purchase ledger.
// All transport layers (HTTP, gRPC, NATS) depend on this interface, not on
// the concrete repo.
type LedgerService interface {
	Purchase(ctx context.Context, req model.PurchaseRequest) (*model.PurchaseResult, error)
	GetReceipt(ctx context.Context, buyer model.Key, tag string) (*receipt.Receipt, error)
	VerifyReceipt(ctx context.Context, buyer model.Key, tag string) (bool, error)
	GetBalance(ctx context.Context, address model.Key) (uint64, error)
	CreateAccount(ctx context.Context, acct model.TokenAccount) error
	SyncPurchase(ctx context.Context, event model.PurchaseEvent) error
}
