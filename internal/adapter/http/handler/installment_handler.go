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

// InstallmentService defines the behavior needed by InstallmentHandler.
type InstallmentService interface {
	AddInstallment(ctx context.Context, input usecase.AddInstallmentInput) (*domain.Invoice, error)
	UpdateInstallment(ctx context.Context, input usecase.UpdateInstallmentInput) (*domain.Invoice, error)
	RemoveInstallment(ctx context.Context, invoiceID, installmentID string) (*domain.Invoice, error)
	GetInstallment(ctx context.Context, invoiceID, installmentID string) (*domain.Installment, error)
}

// InstallmentHandler handles installment-related HTTP requests.
type InstallmentHandler struct {
	installmentUC InstallmentService
}

// NewInstallmentHandler creates a new InstallmentHandler.
func NewInstallmentHandler(installmentUC InstallmentService) *InstallmentHandler {
	return &InstallmentHandler{installmentUC: installmentUC}
}

// Add adds an installment to an invoice. The response is the updated
// aggregate so the caller sees the new totals without a second round trip.
func (h *InstallmentHandler) Add(w http.ResponseWriter, r *http.Request) {
	invoiceID := chi.URLParam(r, "id")

	var req dto.AddInstallmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	invoice, err := h.installmentUC.AddInstallment(r.Context(), req.ToUseCaseInput(invoiceID))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to add installment", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.InvoiceFromDomain(invoice))
}

// Get retrieves a single installment.
func (h *InstallmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	invoiceID := chi.URLParam(r, "id")
	installmentID := chi.URLParam(r, "installmentID")

	installment, err := h.installmentUC.GetInstallment(r.Context(), invoiceID, installmentID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get installment", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.InstallmentFromDomain(installment))
}

// Update updates an installment's amount due and/or due date.
func (h *InstallmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	invoiceID := chi.URLParam(r, "id")
	installmentID := chi.URLParam(r, "installmentID")

	var req dto.UpdateInstallmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	invoice, err := h.installmentUC.UpdateInstallment(r.Context(), req.ToUseCaseInput(invoiceID, installmentID))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to update installment", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.InvoiceFromDomain(invoice))
}

// Remove removes an installment and its payments.
func (h *InstallmentHandler) Remove(w http.ResponseWriter, r *http.Request) {
	invoiceID := chi.URLParam(r, "id")
	installmentID := chi.URLParam(r, "installmentID")

	invoice, err := h.installmentUC.RemoveInstallment(r.Context(), invoiceID, installmentID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to remove installment", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.InvoiceFromDomain(invoice))
}
