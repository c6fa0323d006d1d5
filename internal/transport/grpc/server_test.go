package grpc

import (
	"context"
	"encoding/json"
	"testing"

	"packpay/internal/model"
	"packpay/internal/receipt"
)

type mockService struct {
	syncCalled bool
	syncErr    error
}

func (m *mockService) Purchase(ctx context.Context, req model.PurchaseRequest) (*model.PurchaseResult, error) {
	return &model.PurchaseResult{Amount: req.Amount, Status: "SUCCESS"}, nil
}
func (m *mockService) GetReceipt(ctx context.Context, buyer model.Key, tag string) (*receipt.Receipt, error) {
	return nil, nil
}
func (m *mockService) VerifyReceipt(ctx context.Context, buyer model.Key, tag string) (bool, error) {
	return false, nil
}
func (m *mockService) GetBalance(ctx context.Context, address model.Key) (uint64, error) {
	return 0, nil
}
func (m *mockService) CreateAccount(ctx context.Context, acct model.TokenAccount) error {
	return nil
}
func (m *mockService) SyncPurchase(ctx context.Context, event model.PurchaseEvent) error {
	m.syncCalled = true
	return m.syncErr
}

func TestServer_Publish(t *testing.T) {
	svc := &mockService{}
	server := &Server{svc: svc}

	event := model.PurchaseEvent{Buyer: model.Key{0x01}, Amount: 100}
	payload, _ := json.Marshal(event)

	req := &EventRequest{
		Topic:   "purchases.created",
		Payload: payload,
	}

	res, err := server.Publish(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !res.Success {
		t.Error("expected success")
	}

	if !svc.syncCalled {
		t.Error("expected SyncPurchase to be called")
	}
}

func TestServer_PublishIgnoresForeignTopics(t *testing.T) {
	svc := &mockService{}
	server := &Server{svc: svc}

	res, err := server.Publish(context.Background(), &EventRequest{Topic: "other.topic"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Success {
		t.Error("expected success for ignored topic")
	}
	if svc.syncCalled {
		t.Error("foreign topic must not trigger a sync")
	}
}

func TestServer_Purchase(t *testing.T) {
	svc := &mockService{}
	server := &Server{svc: svc}

	res, err := server.Purchase(context.Background(), &model.PurchaseRequest{
		Buyer:          model.Key{0x01},
		CorrelationTag: "order-1",
		Amount:         40,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Success {
		t.Fatalf("expected success, got %q", res.ErrorMessage)
	}
	if res.Result == nil || res.Result.Amount != 40 {
		t.Errorf("unexpected result: %+v", res.Result)
	}
}
