// Package memory keeps every repository in process memory. It backs local
// runs without a database and the service and handler tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/guccio85/proximasuite-sub000/internal/domain/availability"
	"github.com/guccio85/proximasuite-sub000/internal/domain/order"
	"github.com/guccio85/proximasuite-sub000/internal/pkg/database"
)

// Store is the shared state behind all memory repositories.
type Store struct {
	mu sync.RWMutex
	// txMu serialises transactions; plain repository calls only take mu.
	txMu sync.Mutex

	orders     map[string]order.Order
	records    map[string]availability.Record
	rules      map[string]availability.RecurringRule
	globalDays map[time.Time]availability.GlobalDay

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		orders:     make(map[string]order.Order),
		records:    make(map[string]availability.Record),
		rules:      make(map[string]availability.RecurringRule),
		globalDays: make(map[time.Time]availability.GlobalDay),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

type transactor struct {
	store *Store
}

func NewTransactor(store *Store) database.Transactor {
	return &transactor{store: store}
}

type txKey struct{}

// WithinTransaction implements database.Transactor. Writes are not rolled
// back on error; it only guarantees that transactions do not interleave.
func (t *transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}
	t.store.txMu.Lock()
	defer t.store.txMu.Unlock()
	return fn(context.WithValue(ctx, txKey{}, true))
}
