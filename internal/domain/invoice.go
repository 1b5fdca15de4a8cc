package domain

import (
	"fmt"
	"time"
)

// Invoice is the aggregate root owning installments, which in turn own
// payments. It is a plain in-memory object without internal locking;
// concurrency safety comes from the persistence layer's compare-and-set on
// Version. Every use case works on its own copy obtained from a fresh load.
//
// Totals and status are recomputed from the installment collection on every
// read. While archived, every mutating operation fails before any other
// validation; reads stay available.
type Invoice struct {
	ID         string
	CustomerID string
	Reference  string
	Currency   string
	Version    int64
	CreatedAt  time.Time
	UpdatedAt  time.Time

	archived     bool
	installments []*Installment
}

// NewInvoice creates an invoice with no installments.
func NewInvoice(id, customerID, reference, currency string) (*Invoice, error) {
	if err := ValidateReference(reference); err != nil {
		return nil, err
	}

	if err := ValidateCurrency(currency); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	return &Invoice{
		ID:         id,
		CustomerID: customerID,
		Reference:  reference,
		Currency:   currency,
		Version:    1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// RehydrateInvoice rebuilds an invoice from stored state without
// revalidating.
func RehydrateInvoice(id, customerID, reference, currency string, archived bool, version int64, installments []*Installment, createdAt, updatedAt time.Time) *Invoice {
	inv := &Invoice{
		ID:           id,
		CustomerID:   customerID,
		Reference:    reference,
		Currency:     currency,
		Version:      version,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
		archived:     archived,
		installments: make([]*Installment, 0, len(installments)),
	}

	for _, ins := range installments {
		inv.installments = append(inv.installments, ins.clone())
	}

	return inv
}

// Equal reports identity equality on the invoice id.
func (inv *Invoice) Equal(other *Invoice) bool {
	if other == nil || inv.ID == "" || other.ID == "" {
		return false
	}

	return inv.ID == other.ID
}

// IsArchived reports whether the invoice is frozen against mutation.
func (inv *Invoice) IsArchived() bool {
	return inv.archived
}

// Archive freezes the invoice against further mutation. Calling it on an
// already archived invoice is harmless.
func (inv *Invoice) Archive() {
	if inv.archived {
		return
	}

	inv.archived = true
	inv.touch()
}

// Unarchive restores full mutability.
func (inv *Invoice) Unarchive() {
	if !inv.archived {
		return
	}

	inv.archived = false
	inv.touch()
}

// TotalAmount is the sum of all installment due amounts.
func (inv *Invoice) TotalAmount() Money {
	total := Zero
	for _, ins := range inv.installments {
		total = total.Add(ins.AmountDue)
	}

	return total
}

// TotalPaid is the sum of all installment paid amounts.
func (inv *Invoice) TotalPaid() Money {
	total := Zero
	for _, ins := range inv.installments {
		total = total.Add(ins.AmountPaid())
	}

	return total
}

// RemainingAmount is the total amount minus the total paid.
func (inv *Invoice) RemainingAmount() Money {
	return inv.TotalAmount().Sub(inv.TotalPaid())
}

// Status derives the invoice-level payment progress. An invoice without
// installments is PENDING.
func (inv *Invoice) Status() Status {
	return statusOf(inv.TotalPaid(), inv.TotalAmount())
}

// IsOverdue reports whether any owned installment is overdue.
func (inv *Invoice) IsOverdue(now time.Time) bool {
	for _, ins := range inv.installments {
		if ins.IsOverdue(now) {
			return true
		}
	}

	return false
}

// IsFullyPaid reports whether a non-zero total has been paid in full.
func (inv *Invoice) IsFullyPaid() bool {
	due := inv.TotalAmount()

	return !due.IsZero() && inv.TotalPaid().Equal(due)
}

// Installments returns deep copies of the owned installments in insertion
// order. Mutating the copies does not affect the invoice.
func (inv *Invoice) Installments() []*Installment {
	result := make([]*Installment, len(inv.installments))
	for idx, ins := range inv.installments {
		result[idx] = ins.clone()
	}

	return result
}

// FindInstallmentByID returns a copy of the installment with the given id.
func (inv *Invoice) FindInstallmentByID(id string) (*Installment, error) {
	ins := inv.findInstallment(id)
	if ins == nil {
		return nil, fmt.Errorf("%w: installment %s", ErrInstallmentNotOwned, id)
	}

	return ins.clone(), nil
}

// AddInstallment appends an installment. It must reference this invoice and
// must not collide with an existing installment's id or due date. A due date
// freed by RemoveInstallment may be reused.
func (inv *Invoice) AddInstallment(ins *Installment) error {
	if err := inv.guardMutable(); err != nil {
		return err
	}

	if ins.InvoiceID != inv.ID {
		return fmt.Errorf("%w: installment %s references invoice %s", ErrInstallmentNotOwned, ins.ID, ins.InvoiceID)
	}

	if inv.findInstallment(ins.ID) != nil {
		return fmt.Errorf("%w: installment %s already exists", ErrInvalidProperty, ins.ID)
	}

	if inv.hasDueDate(ins.DueDate, ins.ID) {
		return fmt.Errorf("%w: due date %s is already taken by another installment", ErrInvalidProperty, ins.DueDate.Format(time.RFC3339))
	}

	inv.installments = append(inv.installments, ins.clone())
	inv.touch()

	return nil
}

// UpdateInstallment changes the due amount and/or due date of the named
// installment in place, preserving its position and payments. A call that
// changes nothing is a no-op without a timestamp bump.
func (inv *Invoice) UpdateInstallment(installmentID string, newAmountDue *Money, newDueDate *time.Time) error {
	if err := inv.guardMutable(); err != nil {
		return err
	}

	target := inv.findInstallment(installmentID)
	if target == nil {
		return fmt.Errorf("%w: installment %s", ErrInstallmentNotOwned, installmentID)
	}

	if newDueDate != nil && inv.hasDueDate(*newDueDate, installmentID) {
		return fmt.Errorf("%w: due date %s is already taken by another installment", ErrInvalidProperty, newDueDate.Format(time.RFC3339))
	}

	changed := (newAmountDue != nil && !newAmountDue.Equal(target.AmountDue)) ||
		(newDueDate != nil && !newDueDate.Equal(target.DueDate))

	if err := target.UpdateDetails(newAmountDue, newDueDate); err != nil {
		return err
	}

	if changed {
		inv.touch()
	}

	return nil
}

// RemoveInstallment removes the named installment together with its
// payments.
func (inv *Invoice) RemoveInstallment(installmentID string) error {
	if err := inv.guardMutable(); err != nil {
		return err
	}

	for idx, ins := range inv.installments {
		if ins.ID == installmentID {
			inv.installments = append(inv.installments[:idx], inv.installments[idx+1:]...)
			inv.touch()

			return nil
		}
	}

	return fmt.Errorf("%w: installment %s", ErrInstallmentNotOwned, installmentID)
}

// AddPayment records a payment against the named installment and keeps the
// invoice's own UpdatedAt monotonic with the nested change.
func (inv *Invoice) AddPayment(installmentID string, p *Payment) error {
	if err := inv.guardMutable(); err != nil {
		return err
	}

	target := inv.findInstallment(installmentID)
	if target == nil {
		return fmt.Errorf("%w: installment %s", ErrInstallmentNotOwned, installmentID)
	}

	if err := target.AddPayment(p); err != nil {
		return err
	}

	inv.touch()

	return nil
}

// UpdatePayment updates a payment on the named installment. An update that
// changes nothing numerically leaves every timestamp untouched.
func (inv *Invoice) UpdatePayment(installmentID string, p *Payment) error {
	if err := inv.guardMutable(); err != nil {
		return err
	}

	target := inv.findInstallment(installmentID)
	if target == nil {
		return fmt.Errorf("%w: installment %s", ErrInstallmentNotOwned, installmentID)
	}

	existing := target.findPayment(p.ID)
	changed := existing == nil ||
		!existing.Amount.Equal(p.Amount) ||
		!existing.PaymentDate.Equal(p.PaymentDate)

	if err := target.UpdatePayment(p); err != nil {
		return err
	}

	if changed {
		inv.touch()
	}

	return nil
}

// RemovePayment removes a payment from the named installment.
func (inv *Invoice) RemovePayment(installmentID, paymentID string) error {
	if err := inv.guardMutable(); err != nil {
		return err
	}

	target := inv.findInstallment(installmentID)
	if target == nil {
		return fmt.Errorf("%w: installment %s", ErrInstallmentNotOwned, installmentID)
	}

	if err := target.RemovePayment(paymentID); err != nil {
		return err
	}

	inv.touch()

	return nil
}

// UpdateDetails changes the business reference and/or currency. Nil
// arguments leave the field untouched; a call that changes nothing is a
// no-op without a timestamp bump.
func (inv *Invoice) UpdateDetails(newReference, newCurrency *string) error {
	if err := inv.guardMutable(); err != nil {
		return err
	}

	refChanged := newReference != nil && *newReference != inv.Reference
	curChanged := newCurrency != nil && *newCurrency != inv.Currency

	if !refChanged && !curChanged {
		return nil
	}

	if refChanged {
		if err := ValidateReference(*newReference); err != nil {
			return err
		}
	}

	if curChanged {
		if err := ValidateCurrency(*newCurrency); err != nil {
			return err
		}
	}

	if refChanged {
		inv.Reference = *newReference
	}

	if curChanged {
		inv.Currency = *newCurrency
	}

	inv.touch()

	return nil
}

func (inv *Invoice) guardMutable() error {
	if inv.archived {
		return fmt.Errorf("%w: invoice %s", ErrInvoiceArchived, inv.ID)
	}

	return nil
}

func (inv *Invoice) findInstallment(id string) *Installment {
	for _, ins := range inv.installments {
		if ins.ID == id {
			return ins
		}
	}

	return nil
}

func (inv *Invoice) hasDueDate(dueDate time.Time, excludeID string) bool {
	for _, ins := range inv.installments {
		if ins.ID != excludeID && ins.DueDate.Equal(dueDate) {
			return true
		}
	}

	return false
}

func (inv *Invoice) touch() {
	inv.UpdatedAt = time.Now().UTC()
}
