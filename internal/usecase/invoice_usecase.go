package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/iho/goinvoice/internal/domain"
	"github.com/iho/goinvoice/internal/infrastructure/metrics"
)

const (
	summaryCachePrefix = "invoice-summary:"
	summaryCacheTTL    = 5 * time.Minute
)

// InvoiceUseCase handles invoice-level business logic. Every mutating method
// is one load-mutate-save unit; a version conflict on save is surfaced as
// domain.ErrVersionConflict and never retried here.
type InvoiceUseCase struct {
	invoiceRepo InvoiceRepository
	idGen       IDGenerator
	cache       Cache
	metrics     *metrics.Metrics
}

// NewInvoiceUseCase creates a new InvoiceUseCase. cache and metrics are
// optional.
func NewInvoiceUseCase(invoiceRepo InvoiceRepository, idGen IDGenerator, cache Cache, m *metrics.Metrics) *InvoiceUseCase {
	return &InvoiceUseCase{
		invoiceRepo: invoiceRepo,
		idGen:       idGen,
		cache:       cache,
		metrics:     m,
	}
}

// CreateInvoiceInput represents input for creating an invoice.
type CreateInvoiceInput struct {
	CustomerID string
	Reference  string
	Currency   string
}

// CreateInvoice creates a new invoice with no installments.
func (uc *InvoiceUseCase) CreateInvoice(ctx context.Context, input CreateInvoiceInput) (*domain.Invoice, error) {
	if input.CustomerID == "" {
		return nil, fmt.Errorf("%w: customer id cannot be empty", domain.ErrInvalidProperty)
	}

	invoice, err := domain.NewInvoice(uc.idGen.Generate(), input.CustomerID, input.Reference, input.Currency)
	if err != nil {
		return nil, err
	}

	if err := uc.invoiceRepo.Create(ctx, invoice); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.InvoicesCreated.Inc()
	}

	return invoice, nil
}

// GetInvoice retrieves the full invoice aggregate by ID.
func (uc *InvoiceUseCase) GetInvoice(ctx context.Context, id string) (*domain.Invoice, error) {
	return uc.invoiceRepo.GetByID(ctx, id)
}

// ListInvoicesInput represents input for listing invoices.
type ListInvoicesInput struct {
	CustomerID string
	Limit      int
	Offset     int
}

// ListInvoices lists a customer's invoices with pagination.
func (uc *InvoiceUseCase) ListInvoices(ctx context.Context, input ListInvoicesInput) ([]*domain.Invoice, error) {
	if input.CustomerID == "" {
		return nil, fmt.Errorf("%w: customer id cannot be empty", domain.ErrInvalidProperty)
	}

	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)

	return uc.invoiceRepo.ListByCustomer(ctx, input.CustomerID, limit, offset)
}

// InvoiceSummary is the answer to "how much is owed, how much has been paid,
// is it overdue" for one invoice.
type InvoiceSummary struct {
	InvoiceID        string        `json:"invoice_id"`
	CustomerID       string        `json:"customer_id"`
	Reference        string        `json:"reference"`
	Currency         string        `json:"currency"`
	Status           domain.Status `json:"status"`
	TotalAmount      domain.Money  `json:"total_amount"`
	TotalPaid        domain.Money  `json:"total_paid"`
	RemainingAmount  domain.Money  `json:"remaining_amount"`
	Overdue          bool          `json:"overdue"`
	FullyPaid        bool          `json:"fully_paid"`
	Archived         bool          `json:"archived"`
	InstallmentCount int           `json:"installment_count"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// GetInvoiceSummary returns the derived totals for an invoice, served from
// the cache when possible. Every write path invalidates the cached entry.
func (uc *InvoiceUseCase) GetInvoiceSummary(ctx context.Context, id string) (*InvoiceSummary, error) {
	if uc.cache != nil {
		if data, err := uc.cache.Get(ctx, summaryCachePrefix+id); err == nil {
			var summary InvoiceSummary
			if err := json.Unmarshal(data, &summary); err == nil {
				if uc.metrics != nil {
					uc.metrics.SummaryCacheHits.Inc()
				}

				return &summary, nil
			}
		}

		if uc.metrics != nil {
			uc.metrics.SummaryCacheMisses.Inc()
		}
	}

	invoice, err := uc.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	summary := summarize(invoice, time.Now().UTC())

	if uc.cache != nil {
		if data, err := json.Marshal(summary); err == nil {
			_ = uc.cache.Set(ctx, summaryCachePrefix+id, data, summaryCacheTTL)
		}
	}

	return summary, nil
}

// UpdateInvoiceDetailsInput represents input for updating invoice details.
// Nil fields are left unchanged.
type UpdateInvoiceDetailsInput struct {
	InvoiceID string
	Reference *string
	Currency  *string
}

// UpdateInvoiceDetails updates the business reference and/or currency.
func (uc *InvoiceUseCase) UpdateInvoiceDetails(ctx context.Context, input UpdateInvoiceDetailsInput) (*domain.Invoice, error) {
	invoice, err := uc.invoiceRepo.GetByID(ctx, input.InvoiceID)
	if err != nil {
		return nil, err
	}

	if err := invoice.UpdateDetails(input.Reference, input.Currency); err != nil {
		return nil, err
	}

	if err := uc.save(ctx, invoice); err != nil {
		return nil, err
	}

	return invoice, nil
}

// ArchiveInvoice freezes the invoice against further mutation.
func (uc *InvoiceUseCase) ArchiveInvoice(ctx context.Context, id string) (*domain.Invoice, error) {
	invoice, err := uc.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	invoice.Archive()

	if err := uc.save(ctx, invoice); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.InvoicesArchived.Inc()
	}

	return invoice, nil
}

// UnarchiveInvoice restores full mutability.
func (uc *InvoiceUseCase) UnarchiveInvoice(ctx context.Context, id string) (*domain.Invoice, error) {
	invoice, err := uc.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	invoice.Unarchive()

	if err := uc.save(ctx, invoice); err != nil {
		return nil, err
	}

	return invoice, nil
}

// DeleteInvoice deletes the invoice, cascading to its installments and
// payments.
func (uc *InvoiceUseCase) DeleteInvoice(ctx context.Context, id string) error {
	if err := uc.invoiceRepo.Delete(ctx, id); err != nil {
		return err
	}

	uc.invalidateSummary(ctx, id)

	if uc.metrics != nil {
		uc.metrics.InvoicesDeleted.Inc()
	}

	return nil
}

func (uc *InvoiceUseCase) save(ctx context.Context, invoice *domain.Invoice) error {
	err := uc.invoiceRepo.Save(ctx, invoice)
	if err != nil {
		if errors.Is(err, domain.ErrVersionConflict) && uc.metrics != nil {
			uc.metrics.VersionConflicts.Inc()
		}

		return err
	}

	uc.invalidateSummary(ctx, invoice.ID)

	return nil
}

func (uc *InvoiceUseCase) invalidateSummary(ctx context.Context, invoiceID string) {
	if uc.cache != nil {
		_ = uc.cache.Delete(ctx, summaryCachePrefix+invoiceID)
	}
}

// summarize builds the derived view of an invoice at a point in time.
func summarize(invoice *domain.Invoice, now time.Time) *InvoiceSummary {
	return &InvoiceSummary{
		InvoiceID:        invoice.ID,
		CustomerID:       invoice.CustomerID,
		Reference:        invoice.Reference,
		Currency:         invoice.Currency,
		Status:           invoice.Status(),
		TotalAmount:      invoice.TotalAmount(),
		TotalPaid:        invoice.TotalPaid(),
		RemainingAmount:  invoice.RemainingAmount(),
		Overdue:          invoice.IsOverdue(now),
		FullyPaid:        invoice.IsFullyPaid(),
		Archived:         invoice.IsArchived(),
		InstallmentCount: len(invoice.Installments()),
		UpdatedAt:        invoice.UpdatedAt,
	}
}
