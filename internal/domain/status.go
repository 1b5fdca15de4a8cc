package domain

// Status is the payment progress of an installment or invoice. It is always
// derived fresh from the paid and due amounts, never stored as an
// independently settable field, so it can regress (PAID back to
// PARTIALLY_PAID) when payments are removed or new installments are added.
type Status string

const (
	StatusPending       Status = "PENDING"
	StatusPartiallyPaid Status = "PARTIALLY_PAID"
	StatusPaid          Status = "PAID"
)

// statusOf derives the status from the paid amount against the due amount.
// A zero due amount yields PENDING because the paid amount is then also zero.
func statusOf(paid, due Money) Status {
	switch {
	case paid.IsZero():
		return StatusPending
	case paid.Equal(due):
		return StatusPaid
	default:
		return StatusPartiallyPaid
	}
}
