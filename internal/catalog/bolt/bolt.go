package bolt

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"chatbot/internal/catalog"
	"chatbot/internal/domain"
)

var (
	bucketServices = []byte("services")
	bucketIDs      = []byte("service_ids")
)

// Storage keeps service records in a bbolt file. Records are keyed by an
// insertion sequence so iteration follows insertion order.
type Storage struct {
	db *bbolt.DB
}

// NewStorage opens (or creates) the database at path.
func NewStorage(path string) (*Storage, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create catalog dir: %w", err)
	}
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketServices, bucketIDs} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Storage{db: db}, nil
}

// Services returns the embedded records in insertion order.
func (s *Storage) Services(ctx context.Context) ([]domain.ServiceRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var records []domain.ServiceRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketServices).ForEach(func(k, v []byte) error {
			var doc catalog.Document
			if err := json.Unmarshal(v, &doc); err != nil {
				return fmt.Errorf("decode service %x: %w", k, err)
			}
			records = append(records, doc.Record())
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrCatalog, err)
	}
	return catalog.Embedded(records), nil
}

// Insert stores a new record. Ids must be unique.
func (s *Storage) Insert(ctx context.Context, record domain.ServiceRecord) error {
	if err := catalog.Validate(record); err != nil {
		return err
	}
	data, err := json.Marshal(catalog.FromRecord(record))
	if err != nil {
		return fmt.Errorf("encode service %s: %w", record.ID, err)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		ids := tx.Bucket(bucketIDs)
		if ids.Get([]byte(record.ID)) != nil {
			return fmt.Errorf("service %s already exists", record.ID)
		}
		b := tx.Bucket(bucketServices)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		key := make([]byte, 8)
		binary.BigEndian.PutUint64(key, seq)
		if err := b.Put(key, data); err != nil {
			return err
		}
		return ids.Put([]byte(record.ID), key)
	})
}

// Close releases the database file.
func (s *Storage) Close() error {
	return s.db.Close()
}
