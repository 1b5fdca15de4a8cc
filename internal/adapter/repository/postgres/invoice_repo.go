package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/goinvoice/internal/domain"
)

// InvoiceRepository persists the invoice aggregate. An aggregate is written
// as one transaction: the invoice row is updated with an optimistic version
// check, then the child rows are replaced wholesale. Readers never observe a
// partially applied aggregate.
type InvoiceRepository struct {
	pool    *pgxpool.Pool
	retrier *Retrier
}

// NewInvoiceRepository creates a new invoice repository. retrier is optional;
// when set, transient transaction failures (deadlock, serialization) are
// retried. Version conflicts are never retried here.
func NewInvoiceRepository(pool *pgxpool.Pool, retrier *Retrier) *InvoiceRepository {
	return &InvoiceRepository{pool: pool, retrier: retrier}
}

// Create inserts a new aggregate. The invoice keeps the version it was
// constructed with.
func (r *InvoiceRepository) Create(ctx context.Context, invoice *domain.Invoice) error {
	return r.withRetry(ctx, func() error {
		return r.inTx(ctx, func(tx pgx.Tx) error {
			query := `
				INSERT INTO invoices (id, customer_id, reference, currency, archived, version, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			`

			_, err := tx.Exec(ctx, query,
				invoice.ID,
				invoice.CustomerID,
				invoice.Reference,
				invoice.Currency,
				invoice.IsArchived(),
				invoice.Version,
				invoice.CreatedAt,
				invoice.UpdatedAt,
			)
			if err != nil {
				return fmt.Errorf("insert invoice: %w", err)
			}

			return r.insertChildren(ctx, tx, invoice)
		})
	})
}

// GetByID loads the full aggregate.
func (r *InvoiceRepository) GetByID(ctx context.Context, id string) (*domain.Invoice, error) {
	query := `
		SELECT id, customer_id, reference, currency, archived, version, created_at, updated_at
		FROM invoices
		WHERE id = $1
	`

	var (
		invoiceID, customerID, reference, currency string
		archived                                   bool
		version                                    int64
		createdAt, updatedAt                       time.Time
	)

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&invoiceID,
		&customerID,
		&reference,
		&currency,
		&archived,
		&version,
		&createdAt,
		&updatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrInvoiceNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("select invoice: %w", err)
	}

	installments, err := r.loadInstallments(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	return domain.RehydrateInvoice(invoiceID, customerID, reference, currency, archived, version, installments, createdAt, updatedAt), nil
}

// ListByCustomer retrieves a customer's invoices, newest first, children
// included.
func (r *InvoiceRepository) ListByCustomer(ctx context.Context, customerID string, limit, offset int) ([]*domain.Invoice, error) {
	query := `
		SELECT id, customer_id, reference, currency, archived, version, created_at, updated_at
		FROM invoices
		WHERE customer_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, customerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	type header struct {
		id, customerID, reference, currency string
		archived                            bool
		version                             int64
		createdAt, updatedAt                time.Time
	}

	var headers []header

	for rows.Next() {
		var h header
		if err := rows.Scan(&h.id, &h.customerID, &h.reference, &h.currency, &h.archived, &h.version, &h.createdAt, &h.updatedAt); err != nil {
			return nil, err
		}

		headers = append(headers, h)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	invoices := make([]*domain.Invoice, 0, len(headers))

	for _, h := range headers {
		installments, err := r.loadInstallments(ctx, h.id)
		if err != nil {
			return nil, err
		}

		invoices = append(invoices, domain.RehydrateInvoice(h.id, h.customerID, h.reference, h.currency, h.archived, h.version, installments, h.createdAt, h.updatedAt))
	}

	return invoices, nil
}

// Save writes the mutated aggregate back. The invoice row update carries a
// version predicate; zero rows affected means either a concurrent writer won
// the race or the invoice is gone, and the two cases are told apart with an
// existence probe. On success the in-memory version is advanced to match the
// stored one.
func (r *InvoiceRepository) Save(ctx context.Context, invoice *domain.Invoice) error {
	err := r.withRetry(ctx, func() error {
		return r.inTx(ctx, func(tx pgx.Tx) error {
			query := `
				UPDATE invoices
				SET customer_id = $3, reference = $4, currency = $5, archived = $6, updated_at = $7, version = version + 1
				WHERE id = $1 AND version = $2
			`

			tag, err := tx.Exec(ctx, query,
				invoice.ID,
				invoice.Version,
				invoice.CustomerID,
				invoice.Reference,
				invoice.Currency,
				invoice.IsArchived(),
				invoice.UpdatedAt,
			)
			if err != nil {
				return fmt.Errorf("update invoice: %w", err)
			}

			if tag.RowsAffected() == 0 {
				var exists bool
				if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM invoices WHERE id = $1)`, invoice.ID).Scan(&exists); err != nil {
					return fmt.Errorf("probe invoice: %w", err)
				}

				if exists {
					return domain.ErrVersionConflict
				}

				return domain.ErrInvoiceNotFound
			}

			// Replacing the children wholesale keeps the write path simple
			// and the aggregate is small enough that diffing is not worth it.
			// The FK cascade removes the payments with the installments.
			if _, err := tx.Exec(ctx, `DELETE FROM installments WHERE invoice_id = $1`, invoice.ID); err != nil {
				return fmt.Errorf("clear installments: %w", err)
			}

			return r.insertChildren(ctx, tx, invoice)
		})
	})
	if err != nil {
		return err
	}

	invoice.Version++

	return nil
}

// Delete removes the invoice and, through the FK cascade, its installments
// and payments.
func (r *InvoiceRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM invoices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrInvoiceNotFound
	}

	return nil
}

func (r *InvoiceRepository) insertChildren(ctx context.Context, tx pgx.Tx, invoice *domain.Invoice) error {
	insQuery := `
		INSERT INTO installments (id, invoice_id, amount_due, due_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	payQuery := `
		INSERT INTO payments (id, installment_id, amount, payment_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	for _, ins := range invoice.Installments() {
		_, err := tx.Exec(ctx, insQuery,
			ins.ID,
			ins.InvoiceID,
			decimalToNumeric(ins.AmountDue.Decimal()),
			ins.DueDate,
			ins.CreatedAt,
			ins.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert installment %s: %w", ins.ID, err)
		}

		for _, p := range ins.Payments() {
			_, err := tx.Exec(ctx, payQuery,
				p.ID,
				p.InstallmentID,
				decimalToNumeric(p.Amount.Decimal()),
				p.PaymentDate,
				p.CreatedAt,
				p.UpdatedAt,
			)
			if err != nil {
				return fmt.Errorf("insert payment %s: %w", p.ID, err)
			}
		}
	}

	return nil
}

// loadInstallments loads an invoice's installments and their payments in
// insertion order.
func (r *InvoiceRepository) loadInstallments(ctx context.Context, invoiceID string) ([]*domain.Installment, error) {
	insQuery := `
		SELECT id, invoice_id, amount_due, due_date, created_at, updated_at
		FROM installments
		WHERE invoice_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.pool.Query(ctx, insQuery, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("select installments: %w", err)
	}
	defer rows.Close()

	type insRow struct {
		id, invoiceID        string
		amountDue            pgtype.Numeric
		dueDate              time.Time
		createdAt, updatedAt time.Time
	}

	var insRows []insRow

	for rows.Next() {
		var row insRow
		if err := rows.Scan(&row.id, &row.invoiceID, &row.amountDue, &row.dueDate, &row.createdAt, &row.updatedAt); err != nil {
			return nil, err
		}

		insRows = append(insRows, row)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	payments, err := r.loadPayments(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	installments := make([]*domain.Installment, 0, len(insRows))

	for _, row := range insRows {
		installments = append(installments, domain.RehydrateInstallment(
			row.id,
			row.invoiceID,
			domain.NewMoney(numericToDecimal(row.amountDue)),
			row.dueDate,
			payments[row.id],
			row.createdAt,
			row.updatedAt,
		))
	}

	return installments, nil
}

// loadPayments loads every payment under an invoice, grouped by installment.
func (r *InvoiceRepository) loadPayments(ctx context.Context, invoiceID string) (map[string][]*domain.Payment, error) {
	query := `
		SELECT p.id, p.installment_id, p.amount, p.payment_date, p.created_at, p.updated_at
		FROM payments p
		JOIN installments i ON i.id = p.installment_id
		WHERE i.invoice_id = $1
		ORDER BY p.created_at, p.id
	`

	rows, err := r.pool.Query(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("select payments: %w", err)
	}
	defer rows.Close()

	payments := make(map[string][]*domain.Payment)

	for rows.Next() {
		var (
			id, installmentID    string
			amount               pgtype.Numeric
			paymentDate          time.Time
			createdAt, updatedAt time.Time
		)

		if err := rows.Scan(&id, &installmentID, &amount, &paymentDate, &createdAt, &updatedAt); err != nil {
			return nil, err
		}

		payments[installmentID] = append(payments[installmentID],
			domain.RehydratePayment(id, installmentID, domain.NewMoney(numericToDecimal(amount)), paymentDate, createdAt, updatedAt))
	}

	return payments, rows.Err()
}

func (r *InvoiceRepository) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *InvoiceRepository) withRetry(ctx context.Context, operation func() error) error {
	if r.retrier == nil {
		return operation()
	}

	return r.retrier.Retry(ctx, operation)
}

// Type conversion helpers.
func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric

	_ = n.Scan(d.String())

	return n
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}

	d, _ := decimal.NewFromString(n.Int.String())
	if n.Exp != 0 {
		d = d.Shift(n.Exp)
	}

	return d
}
