package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/goinvoice/internal/domain"
	"github.com/iho/goinvoice/internal/usecase"
)

// CreateInvoiceRequest represents a request to create an invoice.
type CreateInvoiceRequest struct {
	CustomerID string `json:"customer_id"`
	Reference  string `json:"reference"`
	Currency   string `json:"currency"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateInvoiceRequest) ToUseCaseInput() usecase.CreateInvoiceInput {
	return usecase.CreateInvoiceInput{
		CustomerID: r.CustomerID,
		Reference:  r.Reference,
		Currency:   r.Currency,
	}
}

// UpdateInvoiceRequest represents a request to update invoice details.
// Omitted fields are left unchanged.
type UpdateInvoiceRequest struct {
	Reference *string `json:"reference,omitempty"`
	Currency  *string `json:"currency,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdateInvoiceRequest) ToUseCaseInput(invoiceID string) usecase.UpdateInvoiceDetailsInput {
	return usecase.UpdateInvoiceDetailsInput{
		InvoiceID: invoiceID,
		Reference: r.Reference,
		Currency:  r.Currency,
	}
}

// AddInstallmentRequest represents a request to add an installment.
type AddInstallmentRequest struct {
	AmountDue decimal.Decimal `json:"amount_due"`
	DueDate   time.Time       `json:"due_date"`
}

// ToUseCaseInput converts to use case input.
func (r *AddInstallmentRequest) ToUseCaseInput(invoiceID string) usecase.AddInstallmentInput {
	return usecase.AddInstallmentInput{
		InvoiceID: invoiceID,
		AmountDue: domain.NewMoney(r.AmountDue),
		DueDate:   r.DueDate,
	}
}

// UpdateInstallmentRequest represents a request to update an installment.
// Omitted fields are left unchanged.
type UpdateInstallmentRequest struct {
	AmountDue *decimal.Decimal `json:"amount_due,omitempty"`
	DueDate   *time.Time       `json:"due_date,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdateInstallmentRequest) ToUseCaseInput(invoiceID, installmentID string) usecase.UpdateInstallmentInput {
	input := usecase.UpdateInstallmentInput{
		InvoiceID:     invoiceID,
		InstallmentID: installmentID,
		DueDate:       r.DueDate,
	}

	if r.AmountDue != nil {
		amount := domain.NewMoney(*r.AmountDue)
		input.AmountDue = &amount
	}

	return input
}

// RecordPaymentRequest represents a request to record a payment.
type RecordPaymentRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate time.Time       `json:"payment_date"`
}

// ToUseCaseInput converts to use case input.
func (r *RecordPaymentRequest) ToUseCaseInput(invoiceID, installmentID string) usecase.RecordPaymentInput {
	return usecase.RecordPaymentInput{
		InvoiceID:     invoiceID,
		InstallmentID: installmentID,
		Amount:        domain.NewMoney(r.Amount),
		PaymentDate:   r.PaymentDate,
	}
}

// UpdatePaymentRequest represents a request to update a payment.
type UpdatePaymentRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate time.Time       `json:"payment_date"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdatePaymentRequest) ToUseCaseInput(invoiceID, installmentID, paymentID string) usecase.UpdatePaymentInput {
	return usecase.UpdatePaymentInput{
		InvoiceID:     invoiceID,
		InstallmentID: installmentID,
		PaymentID:     paymentID,
		Amount:        domain.NewMoney(r.Amount),
		PaymentDate:   r.PaymentDate,
	}
}

// PaginationRequest represents pagination parameters.
type PaginationRequest struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}
