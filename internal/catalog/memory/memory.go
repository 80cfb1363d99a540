package memory

import (
	"context"
	"fmt"
	"sync"

	"chatbot/internal/catalog"
	"chatbot/internal/domain"
)

// Storage is an in-process service catalog. It is filled by seeding at
// start-up and lost on exit.
type Storage struct {
	mu      sync.RWMutex
	records []domain.ServiceRecord
}

// NewStorage returns a catalog holding records in the given order.
func NewStorage(records ...domain.ServiceRecord) *Storage {
	s := &Storage{}
	s.records = append(s.records, records...)
	return s
}

// Services returns the embedded records in insertion order.
func (s *Storage) Services(ctx context.Context) ([]domain.ServiceRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return catalog.Embedded(s.records), nil
}

// Insert appends a record. Ids must be unique.
func (s *Storage) Insert(ctx context.Context, record domain.ServiceRecord) error {
	if err := catalog.Validate(record); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.records {
		if r.ID == record.ID {
			return fmt.Errorf("service %s already exists", record.ID)
		}
	}
	s.records = append(s.records, record)
	return nil
}

// Len returns the number of stored records, embedded or not.
func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Close is a no-op.
func (s *Storage) Close() error { return nil }
