package domain

import (
	"errors"
	"testing"
	"time"
)

func newTestInstallment(t *testing.T, amountDue string) *Installment {
	t.Helper()

	ins, err := NewInstallment("ins-1", "inv-1", money(t, amountDue), time.Now().UTC().AddDate(0, 0, 10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	return ins
}

func newTestPayment(t *testing.T, id, amount string) *Payment {
	t.Helper()

	p, err := NewPayment(id, "ins-1", money(t, amount), time.Now().UTC())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	return p
}

func TestNewInstallment_RejectsNonPositiveAmount(t *testing.T) {
	tests := []struct {
		name   string
		amount string
	}{
		{name: "zero", amount: "0"},
		{name: "negative", amount: "-10.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewInstallment("ins-1", "inv-1", money(t, tt.amount), time.Now())
			if !errors.Is(err, ErrInvalidMoneyValue) {
				t.Errorf("expected ErrInvalidMoneyValue, got %v", err)
			}
		})
	}
}

func TestInstallment_StatusTransitions(t *testing.T) {
	ins := newTestInstallment(t, "100.00")

	if ins.Status() != StatusPending {
		t.Errorf("expected PENDING, got %s", ins.Status())
	}

	if err := ins.AddPayment(newTestPayment(t, "pay-1", "60.00")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ins.Status() != StatusPartiallyPaid {
		t.Errorf("expected PARTIALLY_PAID, got %s", ins.Status())
	}

	if !ins.RemainingAmount().Equal(money(t, "40.00")) {
		t.Errorf("expected remaining 40.00, got %s", ins.RemainingAmount())
	}

	if err := ins.AddPayment(newTestPayment(t, "pay-2", "40.00")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ins.Status() != StatusPaid {
		t.Errorf("expected PAID, got %s", ins.Status())
	}

	if !ins.RemainingAmount().IsZero() {
		t.Errorf("expected remaining 0, got %s", ins.RemainingAmount())
	}
}

func TestInstallment_AddPayment(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T, ins *Installment)
		payment *Payment
		wantErr error
	}{
		{
			name:    "exceeds remaining amount",
			payment: func() *Payment { p, _ := NewPayment("pay-1", "ins-1", mustMoney("150.00"), time.Now()); return p }(),
			wantErr: ErrInvalidMoneyValue,
		},
		{
			name: "duplicate id",
			setup: func(t *testing.T, ins *Installment) {
				if err := ins.AddPayment(newTestPayment(t, "pay-1", "10.00")); err != nil {
					t.Fatalf("setup: %v", err)
				}
			},
			payment: func() *Payment { p, _ := NewPayment("pay-1", "ins-1", mustMoney("10.00"), time.Now()); return p }(),
			wantErr: ErrInvalidProperty,
		},
		{
			name: "wrong installment back-reference",
			payment: &Payment{
				ID:            "pay-1",
				InstallmentID: "ins-other",
				Amount:        mustMoney("10.00"),
			},
			wantErr: ErrInvalidProperty,
		},
		{
			name: "second payment exceeds what remains",
			setup: func(t *testing.T, ins *Installment) {
				if err := ins.AddPayment(newTestPayment(t, "pay-1", "60.00")); err != nil {
					t.Fatalf("setup: %v", err)
				}
			},
			payment: func() *Payment { p, _ := NewPayment("pay-2", "ins-1", mustMoney("50.00"), time.Now()); return p }(),
			wantErr: ErrInvalidMoneyValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ins := newTestInstallment(t, "100.00")
			if tt.setup != nil {
				tt.setup(t, ins)
			}

			before := ins.AmountPaid()

			err := ins.AddPayment(tt.payment)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}

			// Failed operations leave the installment unchanged.
			if !ins.AmountPaid().Equal(before) {
				t.Errorf("amount paid changed on failure: %s -> %s", before, ins.AmountPaid())
			}
		})
	}
}

func TestInstallment_UpdatePayment_Ceiling(t *testing.T) {
	// Installment of 200.00 with a recorded payment of 100.00: the ceiling
	// for updating that payment is remaining (100.00) + old amount (100.00).
	ins, err := NewInstallment("ins-1", "inv-1", mustMoney("200.00"), time.Now().AddDate(0, 0, 10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := ins.AddPayment(newTestPayment(t, "pay-a", "100.00")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	over := &Payment{ID: "pay-a", InstallmentID: "ins-1", Amount: mustMoney("250.00"), PaymentDate: time.Now()}
	if err := ins.UpdatePayment(over); !errors.Is(err, ErrInvalidMoneyValue) {
		t.Errorf("expected ErrInvalidMoneyValue, got %v", err)
	}

	atCeiling := &Payment{ID: "pay-a", InstallmentID: "ins-1", Amount: mustMoney("200.00"), PaymentDate: time.Now()}
	if err := ins.UpdatePayment(atCeiling); err != nil {
		t.Errorf("unexpected error at ceiling: %v", err)
	}

	if ins.Status() != StatusPaid {
		t.Errorf("expected PAID after update to full amount, got %s", ins.Status())
	}
}

func TestInstallment_UpdatePayment_NotFound(t *testing.T) {
	ins := newTestInstallment(t, "100.00")

	missing := &Payment{ID: "pay-x", InstallmentID: "ins-1", Amount: mustMoney("10.00")}
	if err := ins.UpdatePayment(missing); !errors.Is(err, ErrInvalidProperty) {
		t.Errorf("expected ErrInvalidProperty, got %v", err)
	}
}

func TestInstallment_UpdatePayment_NoOpKeepsTimestamps(t *testing.T) {
	ins := newTestInstallment(t, "100.00")

	paymentDate := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	p, err := NewPayment("pay-1", "ins-1", mustMoney("50.00"), paymentDate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := ins.AddPayment(p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	insBefore := ins.UpdatedAt
	payBefore := ins.Payments()[0].UpdatedAt

	same := &Payment{ID: "pay-1", InstallmentID: "ins-1", Amount: mustMoney("50.000"), PaymentDate: paymentDate}
	if err := ins.UpdatePayment(same); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !ins.UpdatedAt.Equal(insBefore) {
		t.Error("installment UpdatedAt changed on numerically identical update")
	}

	if !ins.Payments()[0].UpdatedAt.Equal(payBefore) {
		t.Error("payment UpdatedAt changed on numerically identical update")
	}
}

func TestInstallment_RemovePayment_RegressesStatus(t *testing.T) {
	ins := newTestInstallment(t, "100.00")

	if err := ins.AddPayment(newTestPayment(t, "pay-1", "100.00")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ins.Status() != StatusPaid {
		t.Fatalf("expected PAID, got %s", ins.Status())
	}

	if err := ins.RemovePayment("pay-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ins.Status() != StatusPending {
		t.Errorf("expected status to regress to PENDING, got %s", ins.Status())
	}

	if err := ins.RemovePayment("pay-1"); !errors.Is(err, ErrInvalidProperty) {
		t.Errorf("expected ErrInvalidProperty for absent payment, got %v", err)
	}
}

func TestInstallment_UpdateDetails(t *testing.T) {
	t.Run("cannot shrink below amount paid", func(t *testing.T) {
		ins := newTestInstallment(t, "100.00")
		if err := ins.AddPayment(newTestPayment(t, "pay-1", "60.00")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		lower := mustMoney("50.00")
		if err := ins.UpdateDetails(&lower, nil); !errors.Is(err, ErrInvalidMoneyValue) {
			t.Errorf("expected ErrInvalidMoneyValue, got %v", err)
		}
	})

	t.Run("shrinking to amount paid transitions to PAID", func(t *testing.T) {
		ins := newTestInstallment(t, "100.00")
		if err := ins.AddPayment(newTestPayment(t, "pay-1", "60.00")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		exact := mustMoney("60.00")
		if err := ins.UpdateDetails(&exact, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if ins.Status() != StatusPaid {
			t.Errorf("expected PAID, got %s", ins.Status())
		}
	})

	t.Run("no-op keeps UpdatedAt", func(t *testing.T) {
		ins := newTestInstallment(t, "100.00")
		before := ins.UpdatedAt

		same := mustMoney("100.000")
		if err := ins.UpdateDetails(&same, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !ins.UpdatedAt.Equal(before) {
			t.Error("UpdatedAt changed on numerically identical update")
		}
	})

	t.Run("nil arguments are a no-op", func(t *testing.T) {
		ins := newTestInstallment(t, "100.00")
		before := ins.UpdatedAt

		if err := ins.UpdateDetails(nil, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !ins.UpdatedAt.Equal(before) {
			t.Error("UpdatedAt changed on empty update")
		}
	})
}

func TestInstallment_IsOverdue(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		dueDate time.Time
		paid    string
		overdue bool
	}{
		{name: "past due and unpaid", dueDate: now.AddDate(0, 0, -1), overdue: true},
		{name: "past due but paid", dueDate: now.AddDate(0, 0, -1), paid: "100.00", overdue: false},
		{name: "not yet due", dueDate: now.AddDate(0, 0, 1), overdue: false},
		{name: "past due and partially paid", dueDate: now.AddDate(0, 0, -1), paid: "50.00", overdue: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ins, err := NewInstallment("ins-1", "inv-1", mustMoney("100.00"), tt.dueDate)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if tt.paid != "" {
				if err := ins.AddPayment(newTestPayment(t, "pay-1", tt.paid)); err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
			}

			if got := ins.IsOverdue(now); got != tt.overdue {
				t.Errorf("IsOverdue = %v, want %v", got, tt.overdue)
			}
		})
	}
}

func TestInstallment_LastPaymentDate(t *testing.T) {
	ins := newTestInstallment(t, "100.00")

	if ins.LastPaymentDate() != nil {
		t.Error("expected nil with no payments")
	}

	if err := ins.AddPayment(newTestPayment(t, "pay-1", "30.00")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	last := ins.LastPaymentDate()
	if last == nil {
		t.Fatal("expected last payment date, got nil")
	}

	if !last.Equal(ins.Payments()[0].UpdatedAt) {
		t.Errorf("expected %s, got %s", ins.Payments()[0].UpdatedAt, last)
	}
}

func TestInstallment_PaymentsIsDefensiveCopy(t *testing.T) {
	ins := newTestInstallment(t, "100.00")

	if err := ins.AddPayment(newTestPayment(t, "pay-1", "30.00")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ins.Payments()[0].Amount = mustMoney("999.00")

	if !ins.AmountPaid().Equal(mustMoney("30.00")) {
		t.Error("mutating the returned slice changed aggregate state")
	}
}
