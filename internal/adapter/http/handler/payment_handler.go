package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/goinvoice/internal/adapter/http/dto"
	"github.com/iho/goinvoice/internal/domain"
	"github.com/iho/goinvoice/internal/usecase"
)

// PaymentService defines the behavior needed by PaymentHandler.
type PaymentService interface {
	RecordPayment(ctx context.Context, input usecase.RecordPaymentInput) (*domain.Invoice, error)
	UpdatePayment(ctx context.Context, input usecase.UpdatePaymentInput) (*domain.Invoice, error)
	RemovePayment(ctx context.Context, invoiceID, installmentID, paymentID string) (*domain.Invoice, error)
}

// PaymentHandler handles payment-related HTTP requests.
type PaymentHandler struct {
	paymentUC PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentUC PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentUC: paymentUC}
}

// Record records a payment against an installment.
func (h *PaymentHandler) Record(w http.ResponseWriter, r *http.Request) {
	invoiceID := chi.URLParam(r, "id")
	installmentID := chi.URLParam(r, "installmentID")

	var req dto.RecordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	invoice, err := h.paymentUC.RecordPayment(r.Context(), req.ToUseCaseInput(invoiceID, installmentID))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to record payment", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.InvoiceFromDomain(invoice))
}

// Update updates a payment's amount and date.
func (h *PaymentHandler) Update(w http.ResponseWriter, r *http.Request) {
	invoiceID := chi.URLParam(r, "id")
	installmentID := chi.URLParam(r, "installmentID")
	paymentID := chi.URLParam(r, "paymentID")

	var req dto.UpdatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	invoice, err := h.paymentUC.UpdatePayment(r.Context(), req.ToUseCaseInput(invoiceID, installmentID, paymentID))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to update payment", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.InvoiceFromDomain(invoice))
}

// Remove removes a payment.
func (h *PaymentHandler) Remove(w http.ResponseWriter, r *http.Request) {
	invoiceID := chi.URLParam(r, "id")
	installmentID := chi.URLParam(r, "installmentID")
	paymentID := chi.URLParam(r, "paymentID")

	invoice, err := h.paymentUC.RemovePayment(r.Context(), invoiceID, installmentID, paymentID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to remove payment", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.InvoiceFromDomain(invoice))
}
