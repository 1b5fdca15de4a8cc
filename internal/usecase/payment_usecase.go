package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/iho/goinvoice/internal/domain"
	"github.com/iho/goinvoice/internal/infrastructure/metrics"
)

// PaymentUseCase records and amends payments against installments. The
// no-overpayment rule is enforced twice: by the aggregate when the payment is
// applied, and by the version check on save when two writers race.
type PaymentUseCase struct {
	invoiceRepo InvoiceRepository
	idGen       IDGenerator
	cache       Cache
	metrics     *metrics.Metrics
}

// NewPaymentUseCase creates a new PaymentUseCase.
func NewPaymentUseCase(invoiceRepo InvoiceRepository, idGen IDGenerator, cache Cache, m *metrics.Metrics) *PaymentUseCase {
	return &PaymentUseCase{
		invoiceRepo: invoiceRepo,
		idGen:       idGen,
		cache:       cache,
		metrics:     m,
	}
}

// RecordPaymentInput represents input for recording a payment.
type RecordPaymentInput struct {
	InvoiceID     string
	InstallmentID string
	Amount        domain.Money
	PaymentDate   time.Time
}

// RecordPayment records a payment against an installment of the invoice.
func (uc *PaymentUseCase) RecordPayment(ctx context.Context, input RecordPaymentInput) (*domain.Invoice, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		uc.countError("invalid_amount")
		return nil, err
	}

	invoice, err := uc.invoiceRepo.GetByID(ctx, input.InvoiceID)
	if err != nil {
		return nil, err
	}

	payment, err := domain.NewPayment(uc.idGen.Generate(), input.InstallmentID, input.Amount, input.PaymentDate)
	if err != nil {
		uc.countError("invalid_amount")
		return nil, err
	}

	if err := invoice.AddPayment(input.InstallmentID, payment); err != nil {
		uc.countApplyError(err)
		return nil, err
	}

	if err := uc.save(ctx, invoice); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.PaymentsRecorded.Inc()
		uc.metrics.PaymentAmount.Observe(input.Amount.Decimal().InexactFloat64())
	}

	return invoice, nil
}

// UpdatePaymentInput represents input for updating a payment.
type UpdatePaymentInput struct {
	InvoiceID     string
	InstallmentID string
	PaymentID     string
	Amount        domain.Money
	PaymentDate   time.Time
}

// UpdatePayment replaces the amount and date of an existing payment.
func (uc *PaymentUseCase) UpdatePayment(ctx context.Context, input UpdatePaymentInput) (*domain.Invoice, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		uc.countError("invalid_amount")
		return nil, err
	}

	invoice, err := uc.invoiceRepo.GetByID(ctx, input.InvoiceID)
	if err != nil {
		return nil, err
	}

	payment := domain.RehydratePayment(input.PaymentID, input.InstallmentID, input.Amount, input.PaymentDate, time.Time{}, time.Time{})

	if err := invoice.UpdatePayment(input.InstallmentID, payment); err != nil {
		uc.countApplyError(err)
		return nil, err
	}

	if err := uc.save(ctx, invoice); err != nil {
		return nil, err
	}

	return invoice, nil
}

// RemovePayment removes a payment from an installment.
func (uc *PaymentUseCase) RemovePayment(ctx context.Context, invoiceID, installmentID, paymentID string) (*domain.Invoice, error) {
	invoice, err := uc.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	if err := invoice.RemovePayment(installmentID, paymentID); err != nil {
		uc.countApplyError(err)
		return nil, err
	}

	if err := uc.save(ctx, invoice); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.PaymentsRemoved.Inc()
	}

	return invoice, nil
}

func (uc *PaymentUseCase) save(ctx context.Context, invoice *domain.Invoice) error {
	err := uc.invoiceRepo.Save(ctx, invoice)
	if err != nil {
		if errors.Is(err, domain.ErrVersionConflict) {
			uc.countError("version_conflict")

			if uc.metrics != nil {
				uc.metrics.VersionConflicts.Inc()
			}
		}

		return err
	}

	if uc.cache != nil {
		_ = uc.cache.Delete(ctx, summaryCachePrefix+invoice.ID)
	}

	return nil
}

func (uc *PaymentUseCase) countApplyError(err error) {
	switch {
	case errors.Is(err, domain.ErrInvoiceArchived):
		uc.countError("invoice_archived")
	case errors.Is(err, domain.ErrInvalidMoneyValue):
		uc.countError("overpayment")
	case errors.Is(err, domain.ErrInstallmentNotOwned):
		uc.countError("installment_not_owned")
	default:
		uc.countError("invalid")
	}
}

func (uc *PaymentUseCase) countError(errType string) {
	if uc.metrics != nil {
		uc.metrics.PaymentErrors.WithLabelValues(errType).Inc()
	}
}
