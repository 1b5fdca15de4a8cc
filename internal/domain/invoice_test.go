package domain

import (
	"errors"
	"testing"
	"time"
)

func newTestInvoice(t *testing.T) *Invoice {
	t.Helper()

	inv, err := NewInvoice("inv-1", "cust-1", "INV-2026-001", "USD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	return inv
}

func addInstallment(t *testing.T, inv *Invoice, id, amountDue string, dueDate time.Time) {
	t.Helper()

	ins, err := NewInstallment(id, inv.ID, mustMoney(amountDue), dueDate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := inv.AddInstallment(ins); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func addPayment(t *testing.T, inv *Invoice, installmentID, paymentID, amount string) {
	t.Helper()

	p, err := NewPayment(paymentID, installmentID, mustMoney(amount), time.Now().UTC())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := inv.AddPayment(installmentID, p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNewInvoice_Validation(t *testing.T) {
	tests := []struct {
		name      string
		reference string
		currency  string
		wantErr   error
	}{
		{name: "valid", reference: "INV-001", currency: "USD"},
		{name: "empty reference", reference: "  ", currency: "USD", wantErr: ErrInvalidProperty},
		{name: "unknown currency", reference: "INV-001", currency: "XXX", wantErr: ErrInvalidProperty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv, err := NewInvoice("inv-1", "cust-1", tt.reference, tt.currency)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}

				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if inv.Status() != StatusPending {
				t.Errorf("expected PENDING, got %s", inv.Status())
			}

			if inv.IsArchived() {
				t.Error("new invoice should not be archived")
			}

			if inv.Version != 1 {
				t.Errorf("expected version 1, got %d", inv.Version)
			}
		})
	}
}

func TestInvoice_PaymentScenario(t *testing.T) {
	// Create invoice -> installment of 100.00 -> pay 60.00 -> pay 40.00.
	inv := newTestInvoice(t)
	due := time.Now().UTC().AddDate(0, 0, 10)

	addInstallment(t, inv, "ins-1", "100.00", due)

	if inv.Status() != StatusPending {
		t.Errorf("expected PENDING, got %s", inv.Status())
	}

	if !inv.TotalAmount().Equal(mustMoney("100.00")) {
		t.Errorf("expected total 100.00, got %s", inv.TotalAmount())
	}

	addPayment(t, inv, "ins-1", "pay-1", "60.00")

	if inv.Status() != StatusPartiallyPaid {
		t.Errorf("expected PARTIALLY_PAID, got %s", inv.Status())
	}

	if !inv.TotalPaid().Equal(mustMoney("60.00")) {
		t.Errorf("expected paid 60.00, got %s", inv.TotalPaid())
	}

	if !inv.RemainingAmount().Equal(mustMoney("40.00")) {
		t.Errorf("expected remaining 40.00, got %s", inv.RemainingAmount())
	}

	addPayment(t, inv, "ins-1", "pay-2", "40.00")

	if inv.Status() != StatusPaid {
		t.Errorf("expected PAID, got %s", inv.Status())
	}

	if !inv.RemainingAmount().IsZero() {
		t.Errorf("expected remaining 0, got %s", inv.RemainingAmount())
	}

	if !inv.IsFullyPaid() {
		t.Error("expected IsFullyPaid")
	}
}

func TestInvoice_AddInstallment(t *testing.T) {
	due := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)

	t.Run("foreign invoice id", func(t *testing.T) {
		inv := newTestInvoice(t)

		ins, err := NewInstallment("ins-1", "inv-other", mustMoney("50.00"), due)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if err := inv.AddInstallment(ins); !errors.Is(err, ErrInstallmentNotOwned) {
			t.Errorf("expected ErrInstallmentNotOwned, got %v", err)
		}
	})

	t.Run("duplicate id", func(t *testing.T) {
		inv := newTestInvoice(t)
		addInstallment(t, inv, "ins-1", "50.00", due)

		dup, err := NewInstallment("ins-1", inv.ID, mustMoney("60.00"), due.AddDate(0, 1, 0))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if err := inv.AddInstallment(dup); !errors.Is(err, ErrInvalidProperty) {
			t.Errorf("expected ErrInvalidProperty, got %v", err)
		}
	})

	t.Run("duplicate due date", func(t *testing.T) {
		inv := newTestInvoice(t)
		addInstallment(t, inv, "ins-1", "50.00", due)

		other, err := NewInstallment("ins-2", inv.ID, mustMoney("60.00"), due)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if err := inv.AddInstallment(other); !errors.Is(err, ErrInvalidProperty) {
			t.Errorf("expected ErrInvalidProperty, got %v", err)
		}
	})

	t.Run("freed due date is reusable", func(t *testing.T) {
		inv := newTestInvoice(t)
		addInstallment(t, inv, "ins-1", "50.00", due)

		if err := inv.RemoveInstallment("ins-1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		replacement, err := NewInstallment("ins-2", inv.ID, mustMoney("75.00"), due)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if err := inv.AddInstallment(replacement); err != nil {
			t.Errorf("expected freed due date to be reusable, got %v", err)
		}
	})
}

func TestInvoice_StatusRegressionOnNewInstallment(t *testing.T) {
	inv := newTestInvoice(t)
	due := time.Now().UTC().AddDate(0, 0, 10)

	addInstallment(t, inv, "ins-1", "100.00", due)
	addPayment(t, inv, "ins-1", "pay-1", "100.00")

	if inv.Status() != StatusPaid {
		t.Fatalf("expected PAID, got %s", inv.Status())
	}

	paidBefore := inv.TotalPaid()

	addInstallment(t, inv, "ins-2", "50.00", due.AddDate(0, 1, 0))

	if inv.Status() != StatusPartiallyPaid {
		t.Errorf("expected status to regress to PARTIALLY_PAID, got %s", inv.Status())
	}

	if !inv.TotalPaid().Equal(paidBefore) {
		t.Errorf("total paid changed: %s -> %s", paidBefore, inv.TotalPaid())
	}

	if !inv.TotalAmount().Equal(mustMoney("150.00")) {
		t.Errorf("expected total 150.00, got %s", inv.TotalAmount())
	}
}

func TestInvoice_ArchiveBlocksAllMutation(t *testing.T) {
	inv := newTestInvoice(t)
	due := time.Now().UTC().AddDate(0, 0, 10)
	addInstallment(t, inv, "ins-1", "100.00", due)
	addPayment(t, inv, "ins-1", "pay-1", "25.00")

	inv.Archive()
	inv.Archive() // idempotent

	if !inv.IsArchived() {
		t.Fatal("expected archived")
	}

	newIns, _ := NewInstallment("ins-2", inv.ID, mustMoney("10.00"), due.AddDate(0, 1, 0))
	newPay, _ := NewPayment("pay-2", "ins-1", mustMoney("10.00"), time.Now())
	amount := mustMoney("75.00")
	ref := "INV-NEW"

	mutations := map[string]error{
		"AddInstallment":    inv.AddInstallment(newIns),
		"UpdateInstallment": inv.UpdateInstallment("ins-1", &amount, nil),
		"RemoveInstallment": inv.RemoveInstallment("ins-1"),
		"AddPayment":        inv.AddPayment("ins-1", newPay),
		"UpdatePayment":     inv.UpdatePayment("ins-1", &Payment{ID: "pay-1", Amount: mustMoney("30.00")}),
		"RemovePayment":     inv.RemovePayment("ins-1", "pay-1"),
		"UpdateDetails":     inv.UpdateDetails(&ref, nil),
	}

	for op, err := range mutations {
		if !errors.Is(err, ErrInvoiceArchived) {
			t.Errorf("%s: expected ErrInvoiceArchived, got %v", op, err)
		}
	}

	// Reads stay available.
	if !inv.TotalPaid().Equal(mustMoney("25.00")) {
		t.Errorf("expected paid 25.00, got %s", inv.TotalPaid())
	}

	inv.Unarchive()

	if err := inv.UpdateDetails(&ref, nil); err != nil {
		t.Errorf("expected mutation to succeed after unarchive, got %v", err)
	}
}

func TestInvoice_UpdateInstallment(t *testing.T) {
	due := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)

	t.Run("unknown installment", func(t *testing.T) {
		inv := newTestInvoice(t)

		amount := mustMoney("10.00")
		if err := inv.UpdateInstallment("ins-x", &amount, nil); !errors.Is(err, ErrInstallmentNotOwned) {
			t.Errorf("expected ErrInstallmentNotOwned, got %v", err)
		}
	})

	t.Run("due date collision with another installment", func(t *testing.T) {
		inv := newTestInvoice(t)
		addInstallment(t, inv, "ins-1", "50.00", due)
		addInstallment(t, inv, "ins-2", "60.00", due.AddDate(0, 1, 0))

		collide := due
		if err := inv.UpdateInstallment("ins-2", nil, &collide); !errors.Is(err, ErrInvalidProperty) {
			t.Errorf("expected ErrInvalidProperty, got %v", err)
		}
	})

	t.Run("keeping own due date is not a collision", func(t *testing.T) {
		inv := newTestInvoice(t)
		addInstallment(t, inv, "ins-1", "50.00", due)

		amount := mustMoney("80.00")
		sameDate := due
		if err := inv.UpdateInstallment("ins-1", &amount, &sameDate); err != nil {
			t.Errorf("unexpected error: %v", err)
		}

		if !inv.TotalAmount().Equal(mustMoney("80.00")) {
			t.Errorf("expected total 80.00, got %s", inv.TotalAmount())
		}
	})

	t.Run("payments survive an update", func(t *testing.T) {
		inv := newTestInvoice(t)
		addInstallment(t, inv, "ins-1", "100.00", due)
		addPayment(t, inv, "ins-1", "pay-1", "40.00")

		amount := mustMoney("120.00")
		if err := inv.UpdateInstallment("ins-1", &amount, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !inv.TotalPaid().Equal(mustMoney("40.00")) {
			t.Errorf("expected paid 40.00 after update, got %s", inv.TotalPaid())
		}
	})
}

func TestInvoice_UpdateDetails_NoOpKeepsUpdatedAt(t *testing.T) {
	inv := newTestInvoice(t)
	before := inv.UpdatedAt

	sameRef := inv.Reference
	sameCur := inv.Currency

	if err := inv.UpdateDetails(&sameRef, &sameCur); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !inv.UpdatedAt.Equal(before) {
		t.Error("UpdatedAt changed on identical update")
	}

	if err := inv.UpdateDetails(nil, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !inv.UpdatedAt.Equal(before) {
		t.Error("UpdatedAt changed on empty update")
	}
}

func TestInvoice_TotalsInvariant(t *testing.T) {
	inv := newTestInvoice(t)
	due := time.Now().UTC().AddDate(0, 0, 10)

	addInstallment(t, inv, "ins-1", "100.00", due)
	addInstallment(t, inv, "ins-2", "200.00", due.AddDate(0, 1, 0))
	addPayment(t, inv, "ins-1", "pay-1", "100.00")
	addPayment(t, inv, "ins-2", "pay-2", "50.00")

	sumDue := Zero
	sumPaid := Zero

	for _, ins := range inv.Installments() {
		sumDue = sumDue.Add(ins.AmountDue)
		sumPaid = sumPaid.Add(ins.AmountPaid())
	}

	if !inv.TotalAmount().Equal(sumDue) {
		t.Errorf("TotalAmount %s != sum of due %s", inv.TotalAmount(), sumDue)
	}

	if !inv.TotalPaid().Equal(sumPaid) {
		t.Errorf("TotalPaid %s != sum of paid %s", inv.TotalPaid(), sumPaid)
	}

	if inv.TotalPaid().GreaterThan(inv.TotalAmount()) {
		t.Error("total paid exceeds total amount")
	}
}

func TestInvoice_IsOverdue(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

	inv := newTestInvoice(t)
	addInstallment(t, inv, "ins-1", "100.00", now.AddDate(0, 0, 5))

	if inv.IsOverdue(now) {
		t.Error("nothing due yet, should not be overdue")
	}

	addInstallment(t, inv, "ins-2", "50.00", now.AddDate(0, 0, -1))

	if !inv.IsOverdue(now) {
		t.Error("expected overdue with a past-due unpaid installment")
	}

	addPayment(t, inv, "ins-2", "pay-1", "50.00")

	if inv.IsOverdue(now) {
		t.Error("fully paid installment should not count as overdue")
	}
}

func TestInvoice_InstallmentsIsDefensiveCopy(t *testing.T) {
	inv := newTestInvoice(t)
	addInstallment(t, inv, "ins-1", "100.00", time.Now().UTC().AddDate(0, 0, 10))

	inv.Installments()[0].AmountDue = mustMoney("999.00")

	if !inv.TotalAmount().Equal(mustMoney("100.00")) {
		t.Error("mutating the returned slice changed aggregate state")
	}
}

func TestInvoice_NestedPaymentOpsBumpInvoiceUpdatedAt(t *testing.T) {
	inv := newTestInvoice(t)
	due := time.Now().UTC().AddDate(0, 0, 10)
	addInstallment(t, inv, "ins-1", "100.00", due)

	before := inv.UpdatedAt
	time.Sleep(time.Millisecond)

	addPayment(t, inv, "ins-1", "pay-1", "30.00")

	if !inv.UpdatedAt.After(before) {
		t.Error("expected invoice UpdatedAt to advance with nested payment change")
	}
}

func TestInvoice_FindInstallmentByID(t *testing.T) {
	inv := newTestInvoice(t)
	addInstallment(t, inv, "ins-1", "100.00", time.Now().UTC().AddDate(0, 0, 10))

	if _, err := inv.FindInstallmentByID("ins-1"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	if _, err := inv.FindInstallmentByID("ins-x"); !errors.Is(err, ErrInstallmentNotOwned) {
		t.Errorf("expected ErrInstallmentNotOwned, got %v", err)
	}
}
