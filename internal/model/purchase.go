package model

import "time"

type PurchaseRequest struct {
	Buyer           Key    `json:"buyer"`
	BuyerAccount    Key    `json:"buyer_account"`
	TreasuryAccount Key    `json:"treasury_account"`
	CorrelationTag  string `json:"correlation_tag"`
	Amount          uint64 `json:"amount"`
}

type PurchaseResult struct {
	ReceiptAddress Key    `json:"receipt_address"`
	Bump           uint8  `json:"bump"`
	Amount         uint64 `json:"amount"`
	Timestamp      int64  `json:"timestamp"`
	Status         string `json:"status"`
}

// TokenAccount holds a balance of one mint for one owner.
type TokenAccount struct {
	Address Key    `json:"address"`
	Mint    Key    `json:"mint"`
	Owner   Key    `json:"owner"`
	Balance uint64 `json:"balance"`
}

type PurchaseEvent struct {
	ReceiptAddress Key       `json:"receipt_address"`
	Buyer          Key       `json:"buyer"`
	CorrelationTag string    `json:"correlation_tag"`
	Amount         uint64    `json:"amount"`
	CreatedAt      time.Time `json:"created_at"`
}
