package usecase

import (
	"context"
	"time"

	"github.com/iho/goinvoice/internal/domain"
)

// InvoiceRepository defines persistence for the invoice aggregate. The
// aggregate is loaded, mutated, and saved as one consistency unit; Save is a
// compare-and-set against the version loaded with the aggregate and returns
// domain.ErrVersionConflict when another writer committed in between. The
// repository never retries a conflict; that decision belongs to the caller.
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *domain.Invoice) error
	GetByID(ctx context.Context, id string) (*domain.Invoice, error)
	ListByCustomer(ctx context.Context, customerID string, limit, offset int) ([]*domain.Invoice, error)
	Save(ctx context.Context, invoice *domain.Invoice) error
	Delete(ctx context.Context, id string) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
