package nats

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/nats-io/nats.go"

	"packpay/internal/model"
	"packpay/internal/service"
)

// Handler subscribes to NATS command topics and delegates to the ledger
// service.
type Handler struct {
	svc  service.LedgerService
	nc   *nats.Conn
	subs []*nats.Subscription
}

func NewHandler(svc service.LedgerService, nc *nats.Conn) *Handler {
	return &Handler{svc: svc, nc: nc}
}

// Start subscribes to command topics and blocks until ctx is cancelled
// (graceful shutdown).
func (h *Handler) Start(ctx context.Context) error {
	s1, err := h.nc.QueueSubscribe("commands.purchase", "ledger_group", func(m *nats.Msg) {
		var req model.PurchaseRequest
		if err := json.Unmarshal(m.Data, &req); err != nil {
			slog.Error("nats: failed to unmarshal purchase command", "error", err)
			return
		}
		if _, err := h.svc.Purchase(ctx, req); err != nil {
			slog.Error("nats: purchase failed",
				"error", err,
				"buyer", req.Buyer.String(),
				"tag", req.CorrelationTag,
			)
		}
	})
	if err != nil {
		return err
	}
	h.subs = append(h.subs, s1)

	s2, err := h.nc.QueueSubscribe("commands.create_account", "ledger_group", func(m *nats.Msg) {
		var acct model.TokenAccount
		if err := json.Unmarshal(m.Data, &acct); err != nil {
			slog.Error("nats: failed to unmarshal create_account command", "error", err)
			return
		}
		if err := h.svc.CreateAccount(ctx, acct); err != nil {
			slog.Error("nats: create_account failed", "error", err, "address", acct.Address.String())
		}
	})
	if err != nil {
		return err
	}
	h.subs = append(h.subs, s2)

	slog.Info("NATS command handler is running")

	// Block until context is cancelled.
	<-ctx.Done()
	slog.Info("NATS command handler shutting down, draining subscriptions...")

	for _, s := range h.subs {
		_ = s.Drain()
	}
	return nil
}

func (h *Handler) Stop(ctx context.Context) error {
	for _, s := range h.subs {
		_ = s.Unsubscribe()
	}
	return nil
}
