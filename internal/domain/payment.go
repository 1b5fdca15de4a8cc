package domain

import (
	"fmt"
	"time"
)

// Payment is a single monetary movement against one installment. The
// InstallmentID back-reference is a plain id, not an object pointer;
// ownership flows one way, from Invoice through Installment to Payment.
type Payment struct {
	ID            string
	InstallmentID string
	Amount        Money
	PaymentDate   time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewPayment creates a payment. The amount must be strictly positive.
func NewPayment(id, installmentID string, amount Money, paymentDate time.Time) (*Payment, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: payment amount must be positive", ErrInvalidMoneyValue)
	}

	now := time.Now().UTC()

	return &Payment{
		ID:            id,
		InstallmentID: installmentID,
		Amount:        amount,
		PaymentDate:   paymentDate,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// RehydratePayment rebuilds a payment from stored state. It performs no
// validation; persistence is trusted to return state that passed the
// invariants when it was written.
func RehydratePayment(id, installmentID string, amount Money, paymentDate, createdAt, updatedAt time.Time) *Payment {
	return &Payment{
		ID:            id,
		InstallmentID: installmentID,
		Amount:        amount,
		PaymentDate:   paymentDate,
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
	}
}

// Equal reports identity equality. A payment without an id equals nothing,
// including another payment without an id.
func (p *Payment) Equal(other *Payment) bool {
	if other == nil || p.ID == "" || other.ID == "" {
		return false
	}

	return p.ID == other.ID
}

func (p *Payment) clone() *Payment {
	c := *p

	return &c
}
