package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/goinvoice/internal/domain"
	"github.com/iho/goinvoice/internal/usecase"
)

// PaymentResponse represents a payment in API responses.
type PaymentResponse struct {
	ID            string          `json:"id"`
	InstallmentID string          `json:"installment_id"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentDate   time.Time       `json:"payment_date"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// PaymentFromDomain converts a domain payment to a response.
func PaymentFromDomain(p *domain.Payment) *PaymentResponse {
	return &PaymentResponse{
		ID:            p.ID,
		InstallmentID: p.InstallmentID,
		Amount:        p.Amount.Decimal(),
		PaymentDate:   p.PaymentDate,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// InstallmentResponse represents an installment in API responses. The
// amounts and status are derived from the payment collection at render time.
type InstallmentResponse struct {
	ID              string             `json:"id"`
	InvoiceID       string             `json:"invoice_id"`
	AmountDue       decimal.Decimal    `json:"amount_due"`
	AmountPaid      decimal.Decimal    `json:"amount_paid"`
	RemainingAmount decimal.Decimal    `json:"remaining_amount"`
	Status          domain.Status      `json:"status"`
	DueDate         time.Time          `json:"due_date"`
	Payments        []*PaymentResponse `json:"payments"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// InstallmentFromDomain converts a domain installment to a response.
func InstallmentFromDomain(ins *domain.Installment) *InstallmentResponse {
	payments := ins.Payments()

	resp := &InstallmentResponse{
		ID:              ins.ID,
		InvoiceID:       ins.InvoiceID,
		AmountDue:       ins.AmountDue.Decimal(),
		AmountPaid:      ins.AmountPaid().Decimal(),
		RemainingAmount: ins.RemainingAmount().Decimal(),
		Status:          ins.Status(),
		DueDate:         ins.DueDate,
		Payments:        make([]*PaymentResponse, 0, len(payments)),
		CreatedAt:       ins.CreatedAt,
		UpdatedAt:       ins.UpdatedAt,
	}

	for _, p := range payments {
		resp.Payments = append(resp.Payments, PaymentFromDomain(p))
	}

	return resp
}

// InvoiceResponse represents an invoice in API responses.
type InvoiceResponse struct {
	ID              string                 `json:"id"`
	CustomerID      string                 `json:"customer_id"`
	Reference       string                 `json:"reference"`
	Currency        string                 `json:"currency"`
	Status          domain.Status          `json:"status"`
	TotalAmount     decimal.Decimal        `json:"total_amount"`
	TotalPaid       decimal.Decimal        `json:"total_paid"`
	RemainingAmount decimal.Decimal        `json:"remaining_amount"`
	Archived        bool                   `json:"archived"`
	Version         int64                  `json:"version"`
	Installments    []*InstallmentResponse `json:"installments"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

// InvoiceFromDomain converts a domain invoice to a response.
func InvoiceFromDomain(inv *domain.Invoice) *InvoiceResponse {
	installments := inv.Installments()

	resp := &InvoiceResponse{
		ID:              inv.ID,
		CustomerID:      inv.CustomerID,
		Reference:       inv.Reference,
		Currency:        inv.Currency,
		Status:          inv.Status(),
		TotalAmount:     inv.TotalAmount().Decimal(),
		TotalPaid:       inv.TotalPaid().Decimal(),
		RemainingAmount: inv.RemainingAmount().Decimal(),
		Archived:        inv.IsArchived(),
		Version:         inv.Version,
		Installments:    make([]*InstallmentResponse, 0, len(installments)),
		CreatedAt:       inv.CreatedAt,
		UpdatedAt:       inv.UpdatedAt,
	}

	for _, ins := range installments {
		resp.Installments = append(resp.Installments, InstallmentFromDomain(ins))
	}

	return resp
}

// InvoicesFromDomain converts domain invoices to responses.
func InvoicesFromDomain(invoices []*domain.Invoice) []*InvoiceResponse {
	result := make([]*InvoiceResponse, len(invoices))
	for i, inv := range invoices {
		result[i] = InvoiceFromDomain(inv)
	}
	return result
}

// ListInvoicesResponse represents a paginated invoice list.
type ListInvoicesResponse struct {
	Invoices []*InvoiceResponse `json:"invoices"`
	Total    int64              `json:"total"`
}

// SummaryResponse represents an invoice summary in API responses.
type SummaryResponse struct {
	InvoiceID        string          `json:"invoice_id"`
	CustomerID       string          `json:"customer_id"`
	Reference        string          `json:"reference"`
	Currency         string          `json:"currency"`
	Status           domain.Status   `json:"status"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	TotalPaid        decimal.Decimal `json:"total_paid"`
	RemainingAmount  decimal.Decimal `json:"remaining_amount"`
	Overdue          bool            `json:"overdue"`
	FullyPaid        bool            `json:"fully_paid"`
	Archived         bool            `json:"archived"`
	InstallmentCount int             `json:"installment_count"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// SummaryFromUseCase converts a use case summary to a response.
func SummaryFromUseCase(s *usecase.InvoiceSummary) *SummaryResponse {
	return &SummaryResponse{
		InvoiceID:        s.InvoiceID,
		CustomerID:       s.CustomerID,
		Reference:        s.Reference,
		Currency:         s.Currency,
		Status:           s.Status,
		TotalAmount:      s.TotalAmount.Decimal(),
		TotalPaid:        s.TotalPaid.Decimal(),
		RemainingAmount:  s.RemainingAmount.Decimal(),
		Overdue:          s.Overdue,
		FullyPaid:        s.FullyPaid,
		Archived:         s.Archived,
		InstallmentCount: s.InstallmentCount,
		UpdatedAt:        s.UpdatedAt,
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
