package grpc

import "packpay/internal/model"

// Wire messages for the Ledger gRPC service. Failed operations report
// Success=false with a message instead of a transport error, so callers can
// tell a rejected purchase from a broken connection.

type PurchaseResponse struct {
	Success      bool                  `json:"success"`
	ErrorMessage string                `json:"error_message,omitempty"`
	Result       *model.PurchaseResult `json:"result,omitempty"`
}

type BalanceRequest struct {
	Address model.Key `json:"address"`
}

type BalanceResponse struct {
	Success      bool   `json:"success"`
	ErrorMessage string `json:"error_message,omitempty"`
	Balance      uint64 `json:"balance"`
}

type EventRequest struct {
	Topic   string `json:"topic"`
	Payload []byte `json:"payload"`
}

type EventResponse struct {
	Success bool `json:"success"`
}
