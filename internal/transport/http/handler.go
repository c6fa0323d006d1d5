package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"packpay/internal/model"
	"packpay/internal/receipt"
	"packpay/internal/repository"
	"packpay/internal/service"
)

type Handler struct {
	svc service.LedgerService
}

func NewHandler(svc service.LedgerService) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("POST /accounts", h.CreateAccount)
	mux.HandleFunc("GET /balance", h.GetBalance)
	mux.HandleFunc("POST /purchase", h.Purchase)
	mux.HandleFunc("GET /receipt", h.GetReceipt)
	mux.HandleFunc("GET /receipt/verify", h.VerifyReceipt)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (h *Handler) Purchase(w http.ResponseWriter, r *http.Request) {
	var req model.PurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	res, err := h.svc.Purchase(r.Context(), req)
	if err != nil {
		h.respondError(w, purchaseStatus(err), err.Error())
		return
	}
	h.respondJSON(w, http.StatusOK, res)
}

// purchaseStatus maps the purchase error taxonomy onto HTTP statuses. Every
// failure already aborted the whole operation; the status only classifies it
// for the caller.
func purchaseStatus(err error) int {
	switch {
	case errors.Is(err, repository.ErrReceiptExists):
		return http.StatusConflict
	case errors.Is(err, repository.ErrAccountNotFound):
		return http.StatusNotFound
	default:
		return http.StatusUnprocessableEntity
	}
}

func (h *Handler) GetReceipt(w http.ResponseWriter, r *http.Request) {
	buyer, tag, ok := h.receiptParams(w, r)
	if !ok {
		return
	}
	rec, err := h.svc.GetReceipt(r.Context(), buyer, tag)
	if err != nil {
		h.respondError(w, http.StatusNotFound, err.Error())
		return
	}
	h.respondJSON(w, http.StatusOK, rec)
}

func (h *Handler) VerifyReceipt(w http.ResponseWriter, r *http.Request) {
	buyer, tag, ok := h.receiptParams(w, r)
	if !ok {
		return
	}
	valid, err := h.svc.VerifyReceipt(r.Context(), buyer, tag)
	if err != nil {
		h.respondError(w, http.StatusNotFound, err.Error())
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]bool{"valid": valid})
}

func (h *Handler) receiptParams(w http.ResponseWriter, r *http.Request) (model.Key, string, bool) {
	buyerHex := r.URL.Query().Get("buyer")
	tag := r.URL.Query().Get("tag")
	if buyerHex == "" || tag == "" {
		h.respondError(w, http.StatusBadRequest, "missing_params")
		return model.Key{}, "", false
	}
	buyer, err := model.ParseKey(buyerHex)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_buyer")
		return model.Key{}, "", false
	}
	if len(tag) > receipt.MaxTagLen {
		h.respondError(w, http.StatusBadRequest, receipt.ErrSeedTooLong.Error())
		return model.Key{}, "", false
	}
	return buyer, tag, true
}

func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var acct model.TokenAccount
	if err := json.NewDecoder(r.Body).Decode(&acct); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if err := h.svc.CreateAccount(r.Context(), acct); err != nil {
		h.respondError(w, http.StatusConflict, err.Error())
		return
	}
	h.respondJSON(w, http.StatusCreated, map[string]string{"status": "created"})
}

func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	addrHex := r.URL.Query().Get("address")
	if addrHex == "" {
		h.respondError(w, http.StatusBadRequest, "missing_params")
		return
	}
	addr, err := model.ParseKey(addrHex)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_address")
		return
	}
	bal, err := h.svc.GetBalance(r.Context(), addr)
	if err != nil {
		h.respondError(w, http.StatusNotFound, err.Error())
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"balance": bal})
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

func (h *Handler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
