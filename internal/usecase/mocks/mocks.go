// Package mocks provides hand-written test doubles for the usecase ports.
package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/iho/goinvoice/internal/domain"
)

// MockInvoiceRepository is a func-field mock of usecase.InvoiceRepository.
// Unset fields make the corresponding call fail loudly.
type MockInvoiceRepository struct {
	CreateFunc         func(ctx context.Context, invoice *domain.Invoice) error
	GetByIDFunc        func(ctx context.Context, id string) (*domain.Invoice, error)
	ListByCustomerFunc func(ctx context.Context, customerID string, limit, offset int) ([]*domain.Invoice, error)
	SaveFunc           func(ctx context.Context, invoice *domain.Invoice) error
	DeleteFunc         func(ctx context.Context, id string) error
}

func (m *MockInvoiceRepository) Create(ctx context.Context, invoice *domain.Invoice) error {
	if m.CreateFunc == nil {
		return fmt.Errorf("unexpected call to Create")
	}

	return m.CreateFunc(ctx, invoice)
}

func (m *MockInvoiceRepository) GetByID(ctx context.Context, id string) (*domain.Invoice, error) {
	if m.GetByIDFunc == nil {
		return nil, fmt.Errorf("unexpected call to GetByID")
	}

	return m.GetByIDFunc(ctx, id)
}

func (m *MockInvoiceRepository) ListByCustomer(ctx context.Context, customerID string, limit, offset int) ([]*domain.Invoice, error) {
	if m.ListByCustomerFunc == nil {
		return nil, fmt.Errorf("unexpected call to ListByCustomer")
	}

	return m.ListByCustomerFunc(ctx, customerID, limit, offset)
}

func (m *MockInvoiceRepository) Save(ctx context.Context, invoice *domain.Invoice) error {
	if m.SaveFunc == nil {
		return fmt.Errorf("unexpected call to Save")
	}

	return m.SaveFunc(ctx, invoice)
}

func (m *MockInvoiceRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc == nil {
		return fmt.Errorf("unexpected call to Delete")
	}

	return m.DeleteFunc(ctx, id)
}

// InMemoryInvoiceRepository is a map-backed repository that emulates the
// version compare-and-set of the real store. Safe for concurrent use, so
// tests can race writers against each other.
type InMemoryInvoiceRepository struct {
	mu       sync.Mutex
	invoices map[string]*domain.Invoice
}

func NewInMemoryInvoiceRepository() *InMemoryInvoiceRepository {
	return &InMemoryInvoiceRepository{invoices: make(map[string]*domain.Invoice)}
}

func (r *InMemoryInvoiceRepository) Create(_ context.Context, invoice *domain.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.invoices[invoice.ID]; ok {
		return fmt.Errorf("%w: invoice %s already exists", domain.ErrInvalidProperty, invoice.ID)
	}

	r.invoices[invoice.ID] = cloneInvoice(invoice)

	return nil
}

func (r *InMemoryInvoiceRepository) GetByID(_ context.Context, id string) (*domain.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	invoice, ok := r.invoices[id]
	if !ok {
		return nil, domain.ErrInvoiceNotFound
	}

	return cloneInvoice(invoice), nil
}

func (r *InMemoryInvoiceRepository) ListByCustomer(_ context.Context, customerID string, limit, offset int) ([]*domain.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []*domain.Invoice
	for _, invoice := range r.invoices {
		if invoice.CustomerID == customerID {
			result = append(result, cloneInvoice(invoice))
		}
	}

	if offset >= len(result) {
		return nil, nil
	}

	result = result[offset:]
	if limit < len(result) {
		result = result[:limit]
	}

	return result, nil
}

// Save succeeds only when the caller's version matches the stored version,
// then stores the aggregate with the version incremented.
func (r *InMemoryInvoiceRepository) Save(_ context.Context, invoice *domain.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.invoices[invoice.ID]
	if !ok {
		return domain.ErrInvoiceNotFound
	}

	if stored.Version != invoice.Version {
		return domain.ErrVersionConflict
	}

	invoice.Version++
	r.invoices[invoice.ID] = cloneInvoice(invoice)

	return nil
}

func (r *InMemoryInvoiceRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.invoices[id]; !ok {
		return domain.ErrInvoiceNotFound
	}

	delete(r.invoices, id)

	return nil
}

func cloneInvoice(invoice *domain.Invoice) *domain.Invoice {
	return domain.RehydrateInvoice(
		invoice.ID,
		invoice.CustomerID,
		invoice.Reference,
		invoice.Currency,
		invoice.IsArchived(),
		invoice.Version,
		invoice.Installments(),
		invoice.CreatedAt,
		invoice.UpdatedAt,
	)
}

// MockIDGenerator returns sequential ids with a fixed prefix.
type MockIDGenerator struct {
	mu     sync.Mutex
	Prefix string
	n      int
}

func (g *MockIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.n++
	prefix := g.Prefix
	if prefix == "" {
		prefix = "id"
	}

	return fmt.Sprintf("%s-%d", prefix, g.n)
}

// MockCache is an in-memory cache without TTL expiry.
type MockCache struct {
	mu      sync.Mutex
	entries map[string][]byte

	Hits      int
	Sets      int
	Deletes   int
	GetErr    error
	SetErr    error
	DeleteErr error
}

func NewMockCache() *MockCache {
	return &MockCache{entries: make(map[string][]byte)}
}

func (c *MockCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.GetErr != nil {
		return nil, c.GetErr
	}

	data, ok := c.entries[key]
	if !ok {
		return nil, fmt.Errorf("cache miss: %s", key)
	}

	c.Hits++

	return data, nil
}

func (c *MockCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.SetErr != nil {
		return c.SetErr
	}

	c.entries[key] = value
	c.Sets++

	return nil
}

func (c *MockCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.DeleteErr != nil {
		return c.DeleteErr
	}

	delete(c.entries, key)
	c.Deletes++

	return nil
}

// Has reports whether the key is currently cached.
func (c *MockCache) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.entries[key]

	return ok
}
