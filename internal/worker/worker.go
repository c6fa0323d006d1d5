package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"packpay/internal/model"
	"packpay/internal/service"
)

// PurchaseWorker listens on the "purchases.created" NATS topic and syncs
// committed purchases to the purchase_events audit table.
type PurchaseWorker struct {
	svc      service.LedgerService
	natsConn *nats.Conn
}

func NewPurchaseWorker(svc service.LedgerService, nc *nats.Conn) *PurchaseWorker {
	return &PurchaseWorker{
		svc:      svc,
		natsConn: nc,
	}
}

// Start subscribes to "purchases.created" and blocks until ctx is cancelled.
func (w *PurchaseWorker) Start(ctx context.Context) error {
	// QueueSubscribe so that with multiple instances each event is handled
	// by exactly one worker in the group.
	sub, err := w.natsConn.QueueSubscribe("purchases.created", "worker_group", func(m *nats.Msg) {
		var event model.PurchaseEvent
		if err := json.Unmarshal(m.Data, &event); err != nil {
			slog.Error("worker: failed to unmarshal nats message", "error", err)
			return
		}

		// SyncPurchase is idempotent on the receipt address, so a
		// redelivered event is a no-op.
		if err := w.svc.SyncPurchase(ctx, event); err != nil {
			slog.Error("worker: failed to sync purchase event",
				"receipt_address", event.ReceiptAddress.String(),
				"buyer", event.Buyer.String(),
				"error", err,
			)
			return
		}

		slog.Info("worker: purchase event synced",
			"receipt_address", event.ReceiptAddress.String(),
			"buyer", event.Buyer.String(),
		)
	})

	if err != nil {
		return fmt.Errorf("worker: failed to subscribe to NATS: %w", err)
	}

	slog.Info("Purchase worker is running")

	// Wait for shutdown signal.
	<-ctx.Done()

	slog.Info("Worker received shutdown signal, draining subscription...")
	// Close subscription gracefully, waiting for current processing to complete.
	return sub.Drain()
}

// Stop implements the infrastructure.Server interface (no-op, shutdown is via ctx).
func (w *PurchaseWorker) Stop(ctx context.Context) error {
	return nil
}
