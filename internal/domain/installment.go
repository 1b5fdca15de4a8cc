package domain

import (
	"fmt"
	"time"
)

// Installment is a scheduled portion of an invoice's total amount, with its
// own due date and payment history. The payment collection is unexported so
// that every mutation flows through the methods below and the invariants
// (unique payment ids, paid amount never above the due amount) cannot be
// bypassed. AmountPaid and Status are recomputed from the collection on
// every read instead of being cached.
type Installment struct {
	ID        string
	InvoiceID string
	AmountDue Money
	DueDate   time.Time
	CreatedAt time.Time
	UpdatedAt time.Time

	payments []*Payment
}

// NewInstallment creates an installment with no payments. The due amount
// must be strictly positive.
func NewInstallment(id, invoiceID string, amountDue Money, dueDate time.Time) (*Installment, error) {
	if !amountDue.IsPositive() {
		return nil, fmt.Errorf("%w: amount due must be positive", ErrInvalidMoneyValue)
	}

	now := time.Now().UTC()

	return &Installment{
		ID:        id,
		InvoiceID: invoiceID,
		AmountDue: amountDue,
		DueDate:   dueDate,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// RehydrateInstallment rebuilds an installment from stored state, payments
// included, without revalidating.
func RehydrateInstallment(id, invoiceID string, amountDue Money, dueDate time.Time, payments []*Payment, createdAt, updatedAt time.Time) *Installment {
	ins := &Installment{
		ID:        id,
		InvoiceID: invoiceID,
		AmountDue: amountDue,
		DueDate:   dueDate,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
		payments:  make([]*Payment, 0, len(payments)),
	}

	for _, p := range payments {
		ins.payments = append(ins.payments, p.clone())
	}

	return ins
}

// AmountPaid is the sum of all recorded payment amounts.
func (i *Installment) AmountPaid() Money {
	total := Zero
	for _, p := range i.payments {
		total = total.Add(p.Amount)
	}

	return total
}

// RemainingAmount is the due amount minus the paid amount.
func (i *Installment) RemainingAmount() Money {
	return i.AmountDue.Sub(i.AmountPaid())
}

// Status derives the payment progress from the current amounts.
func (i *Installment) Status() Status {
	return statusOf(i.AmountPaid(), i.AmountDue)
}

// Payments returns copies of the recorded payments in insertion order.
// Mutating the copies does not affect the installment.
func (i *Installment) Payments() []*Payment {
	result := make([]*Payment, len(i.payments))
	for idx, p := range i.payments {
		result[idx] = p.clone()
	}

	return result
}

// FindPaymentByID returns a copy of the payment with the given id.
func (i *Installment) FindPaymentByID(id string) (*Payment, error) {
	p := i.findPayment(id)
	if p == nil {
		return nil, fmt.Errorf("%w: payment %s not found for installment", ErrInvalidProperty, id)
	}

	return p.clone(), nil
}

// AddPayment records a payment against this installment. The payment must
// reference this installment, carry a new id, and fit within the remaining
// amount.
func (i *Installment) AddPayment(p *Payment) error {
	if p.InstallmentID != i.ID {
		return fmt.Errorf("%w: payment %s does not belong to installment %s", ErrInvalidProperty, p.ID, i.ID)
	}

	if i.findPayment(p.ID) != nil {
		return fmt.Errorf("%w: payment %s already exists", ErrInvalidProperty, p.ID)
	}

	if !p.Amount.IsPositive() {
		return fmt.Errorf("%w: payment amount must be positive", ErrInvalidMoneyValue)
	}

	if p.Amount.GreaterThan(i.RemainingAmount()) {
		return fmt.Errorf("%w: payment exceeds remaining installment amount", ErrInvalidMoneyValue)
	}

	i.payments = append(i.payments, p.clone())
	i.UpdatedAt = time.Now().UTC()

	return nil
}

// UpdatePayment replaces the amount and date of the stored payment carrying
// the same id. The ceiling for the new amount is the remaining amount as if
// this payment did not yet exist. An update that changes nothing numerically
// is a no-op and touches no timestamp.
func (i *Installment) UpdatePayment(p *Payment) error {
	existing := i.findPayment(p.ID)
	if existing == nil {
		return fmt.Errorf("%w: payment %s not found", ErrInvalidProperty, p.ID)
	}

	if !p.Amount.IsPositive() {
		return fmt.Errorf("%w: payment amount must be positive", ErrInvalidMoneyValue)
	}

	ceiling := i.RemainingAmount().Add(existing.Amount)
	if p.Amount.GreaterThan(ceiling) {
		return fmt.Errorf("%w: payment exceeds remaining installment amount", ErrInvalidMoneyValue)
	}

	if existing.Amount.Equal(p.Amount) && existing.PaymentDate.Equal(p.PaymentDate) {
		return nil
	}

	now := time.Now().UTC()
	existing.Amount = p.Amount
	existing.PaymentDate = p.PaymentDate
	existing.UpdatedAt = now
	i.UpdatedAt = now

	return nil
}

// RemovePayment removes the payment with the given id. Status may regress
// toward PENDING.
func (i *Installment) RemovePayment(paymentID string) error {
	for idx, p := range i.payments {
		if p.ID == paymentID {
			i.payments = append(i.payments[:idx], i.payments[idx+1:]...)
			i.UpdatedAt = time.Now().UTC()

			return nil
		}
	}

	return fmt.Errorf("%w: payment %s not found", ErrInvalidProperty, paymentID)
}

// UpdateDetails changes the due amount and/or due date. Nil arguments leave
// the field untouched; a call that changes nothing numerically is a no-op
// without a timestamp bump. The due amount cannot shrink below what is
// already paid.
func (i *Installment) UpdateDetails(newAmountDue *Money, newDueDate *time.Time) error {
	amountChanged := newAmountDue != nil && !newAmountDue.Equal(i.AmountDue)
	dateChanged := newDueDate != nil && !newDueDate.Equal(i.DueDate)

	if !amountChanged && !dateChanged {
		return nil
	}

	if amountChanged {
		if !newAmountDue.IsPositive() {
			return fmt.Errorf("%w: amount due must be positive", ErrInvalidMoneyValue)
		}

		if newAmountDue.LessThan(i.AmountPaid()) {
			return fmt.Errorf("%w: amount due cannot drop below amount already paid", ErrInvalidMoneyValue)
		}

		i.AmountDue = *newAmountDue
	}

	if dateChanged {
		i.DueDate = *newDueDate
	}

	i.UpdatedAt = time.Now().UTC()

	return nil
}

// IsOverdue reports whether the due date has passed without full payment.
func (i *Installment) IsOverdue(now time.Time) bool {
	return i.DueDate.Before(now) && i.Status() != StatusPaid
}

// LastPaymentDate is the UpdatedAt of the most recently touched payment, or
// nil when no payments exist.
func (i *Installment) LastPaymentDate() *time.Time {
	var last *time.Time

	for _, p := range i.payments {
		if last == nil || p.UpdatedAt.After(*last) {
			t := p.UpdatedAt
			last = &t
		}
	}

	return last
}

func (i *Installment) findPayment(id string) *Payment {
	for _, p := range i.payments {
		if p.ID == id {
			return p
		}
	}

	return nil
}

func (i *Installment) clone() *Installment {
	c := *i
	c.payments = make([]*Payment, len(i.payments))

	for idx, p := range i.payments {
		c.payments[idx] = p.clone()
	}

	return &c
}
