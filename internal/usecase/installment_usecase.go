package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/iho/goinvoice/internal/domain"
	"github.com/iho/goinvoice/internal/infrastructure/metrics"
)

// InstallmentUseCase handles installment scheduling inside an invoice.
type InstallmentUseCase struct {
	invoiceRepo InvoiceRepository
	idGen       IDGenerator
	cache       Cache
	metrics     *metrics.Metrics
}

// NewInstallmentUseCase creates a new InstallmentUseCase.
func NewInstallmentUseCase(invoiceRepo InvoiceRepository, idGen IDGenerator, cache Cache, m *metrics.Metrics) *InstallmentUseCase {
	return &InstallmentUseCase{
		invoiceRepo: invoiceRepo,
		idGen:       idGen,
		cache:       cache,
		metrics:     m,
	}
}

// AddInstallmentInput represents input for adding an installment.
type AddInstallmentInput struct {
	InvoiceID string
	AmountDue domain.Money
	DueDate   time.Time
}

// AddInstallment adds a new installment to the invoice.
func (uc *InstallmentUseCase) AddInstallment(ctx context.Context, input AddInstallmentInput) (*domain.Invoice, error) {
	invoice, err := uc.invoiceRepo.GetByID(ctx, input.InvoiceID)
	if err != nil {
		return nil, err
	}

	installment, err := domain.NewInstallment(uc.idGen.Generate(), input.InvoiceID, input.AmountDue, input.DueDate)
	if err != nil {
		return nil, err
	}

	if err := invoice.AddInstallment(installment); err != nil {
		return nil, err
	}

	if err := uc.save(ctx, invoice); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.InstallmentsAdded.Inc()
	}

	return invoice, nil
}

// UpdateInstallmentInput represents input for updating an installment.
// Nil fields are left unchanged.
type UpdateInstallmentInput struct {
	InvoiceID     string
	InstallmentID string
	AmountDue     *domain.Money
	DueDate       *time.Time
}

// UpdateInstallment updates the amount due and/or due date of an
// installment. Payments already recorded against it are preserved.
func (uc *InstallmentUseCase) UpdateInstallment(ctx context.Context, input UpdateInstallmentInput) (*domain.Invoice, error) {
	invoice, err := uc.invoiceRepo.GetByID(ctx, input.InvoiceID)
	if err != nil {
		return nil, err
	}

	if err := invoice.UpdateInstallment(input.InstallmentID, input.AmountDue, input.DueDate); err != nil {
		return nil, err
	}

	if err := uc.save(ctx, invoice); err != nil {
		return nil, err
	}

	return invoice, nil
}

// RemoveInstallment removes an installment and all of its payments.
func (uc *InstallmentUseCase) RemoveInstallment(ctx context.Context, invoiceID, installmentID string) (*domain.Invoice, error) {
	invoice, err := uc.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	if err := invoice.RemoveInstallment(installmentID); err != nil {
		return nil, err
	}

	if err := uc.save(ctx, invoice); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.InstallmentsRemoved.Inc()
	}

	return invoice, nil
}

// GetInstallment retrieves a single installment from an invoice.
func (uc *InstallmentUseCase) GetInstallment(ctx context.Context, invoiceID, installmentID string) (*domain.Installment, error) {
	invoice, err := uc.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	return invoice.FindInstallmentByID(installmentID)
}

func (uc *InstallmentUseCase) save(ctx context.Context, invoice *domain.Invoice) error {
	err := uc.invoiceRepo.Save(ctx, invoice)
	if err != nil {
		if errors.Is(err, domain.ErrVersionConflict) && uc.metrics != nil {
			uc.metrics.VersionConflicts.Inc()
		}

		return err
	}

	if uc.cache != nil {
		_ = uc.cache.Delete(ctx, summaryCachePrefix+invoice.ID)
	}

	return nil
}
