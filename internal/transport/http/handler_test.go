package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"packpay/internal/model"
	"packpay/internal/receipt"
	"packpay/internal/repository"
)

type mockService struct {
	purchaseErr error
	result      *model.PurchaseResult
	rec         *receipt.Receipt
}

func (m *mockService) Purchase(ctx context.Context, req model.PurchaseRequest) (*model.PurchaseResult, error) {
	if m.purchaseErr != nil {
		return nil, m.purchaseErr
	}
	return m.result, nil
}
func (m *mockService) GetReceipt(ctx context.Context, buyer model.Key, tag string) (*receipt.Receipt, error) {
	if m.rec == nil {
		return nil, repository.ErrReceiptNotFound
	}
	return m.rec, nil
}
func (m *mockService) VerifyReceipt(ctx context.Context, buyer model.Key, tag string) (bool, error) {
	return m.rec != nil, nil
}
func (m *mockService) GetBalance(ctx context.Context, address model.Key) (uint64, error) {
	return 60, nil
}
func (m *mockService) CreateAccount(ctx context.Context, acct model.TokenAccount) error {
	return nil
}
func (m *mockService) SyncPurchase(ctx context.Context, event model.PurchaseEvent) error {
	return nil
}

func newTestMux(svc *mockService) *http.ServeMux {
	mux := http.NewServeMux()
	NewHandler(svc).Register(mux)
	return mux
}

func purchaseBody() string {
	req := model.PurchaseRequest{
		Buyer:           model.Key{0x01},
		BuyerAccount:    model.Key{0x02},
		TreasuryAccount: model.Key{0x03},
		CorrelationTag:  "order-1",
		Amount:          40,
	}
	b, _ := json.Marshal(req)
	return string(b)
}

func TestPurchase_Success(t *testing.T) {
	svc := &mockService{result: &model.PurchaseResult{Amount: 40, Status: "SUCCESS"}}
	mux := newTestMux(svc)

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/purchase", strings.NewReader(purchaseBody())))

	if rr.Code != http.StatusOK {
		t.Fatalf("want 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var res model.PurchaseResult
	if err := json.Unmarshal(rr.Body.Bytes(), &res); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if res.Amount != 40 || res.Status != "SUCCESS" {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestPurchase_ErrorStatuses(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"duplicate receipt", repository.ErrReceiptExists, http.StatusConflict},
		{"missing account", repository.ErrAccountNotFound, http.StatusNotFound},
		{"tag too long", receipt.ErrSeedTooLong, http.StatusUnprocessableEntity},
		{"zero amount", repository.ErrZeroAmount, http.StatusUnprocessableEntity},
		{"insufficient funds", repository.ErrInsufficientFunds, http.StatusUnprocessableEntity},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mux := newTestMux(&mockService{purchaseErr: tc.err})

			rr := httptest.NewRecorder()
			mux.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/purchase", strings.NewReader(purchaseBody())))

			if rr.Code != tc.want {
				t.Errorf("want %d, got %d: %s", tc.want, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestPurchase_InvalidJSON(t *testing.T) {
	mux := newTestMux(&mockService{})

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/purchase", strings.NewReader("{not json")))

	if rr.Code != http.StatusBadRequest {
		t.Errorf("want 400, got %d", rr.Code)
	}
}

func TestGetReceipt(t *testing.T) {
	buyer := model.Key{0x01}
	svc := &mockService{rec: &receipt.Receipt{Buyer: buyer, Amount: 40, CorrelationTag: "order-1"}}
	mux := newTestMux(svc)

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/receipt?buyer="+buyer.String()+"&tag=order-1", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("want 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var rec receipt.Receipt
	if err := json.Unmarshal(rr.Body.Bytes(), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if rec.Amount != 40 || rec.CorrelationTag != "order-1" {
		t.Errorf("unexpected receipt: %+v", rec)
	}
}

func TestGetReceipt_BadParams(t *testing.T) {
	mux := newTestMux(&mockService{})
	buyer := model.Key{0x01}

	for name, target := range map[string]string{
		"missing tag":   "/receipt?buyer=" + buyer.String(),
		"bad buyer":     "/receipt?buyer=nothex&tag=order-1",
		"oversized tag": "/receipt?buyer=" + buyer.String() + "&tag=" + strings.Repeat("x", 33),
	} {
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
		if rr.Code != http.StatusBadRequest {
			t.Errorf("%s: want 400, got %d", name, rr.Code)
		}
	}
}

func TestHealth(t *testing.T) {
	mux := newTestMux(&mockService{})

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rr.Code != http.StatusOK {
		t.Errorf("want 200, got %d", rr.Code)
	}
}
