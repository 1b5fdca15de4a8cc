package domain

import "errors"

var (
	// ErrInvalidMoneyValue signals an amount that violates a numeric rule:
	// not positive, exceeding remaining capacity, or shrinking a due amount
	// below what is already paid.
	ErrInvalidMoneyValue = errors.New("invalid money value")

	// ErrInvalidProperty signals a structural rule violation that is not
	// about an amount: duplicate ids, duplicate due dates, or an entity not
	// found within its expected owner.
	ErrInvalidProperty = errors.New("invalid property")

	// ErrInstallmentNotOwned signals an ownership check failure: the
	// installment carries a foreign invoice id or is not present among the
	// invoice's installments.
	ErrInstallmentNotOwned = errors.New("installment does not belong to invoice")

	// ErrInvoiceArchived signals a mutating call against an archived invoice.
	ErrInvoiceArchived = errors.New("invoice is archived")

	ErrInvoiceNotFound = errors.New("invoice not found")

	// ErrVersionConflict signals that the stored aggregate changed between
	// load and save. Retrying is the caller's decision.
	ErrVersionConflict = errors.New("invoice was modified concurrently")
)
