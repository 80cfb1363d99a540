package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/rueidis"

	"chatbot/internal/catalog"
	"chatbot/internal/domain"
)

// Config holds connection parameters for a Redis catalog.
type Config struct {
	Addrs     []string
	Username  string
	Password  string
	DB        int
	KeyPrefix string
}

// Storage keeps each service in a hash "<prefix>service:<id>" and the
// insertion order in the list "<prefix>services".
type Storage struct {
	client rueidis.Client
	prefix string
}

// NewStorage connects to Redis via rueidis.
func NewStorage(cfg Config) (*Storage, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return newStorageWithClient(client, cfg.KeyPrefix), nil
}

func newStorageWithClient(client rueidis.Client, prefix string) *Storage {
	return &Storage{client: client, prefix: prefix}
}

func (s *Storage) listKey() string { return s.prefix + "services" }

func (s *Storage) serviceKey(id string) string { return s.prefix + "service:" + id }

// Ping checks connectivity.
func (s *Storage) Ping(ctx context.Context) error {
	if err := s.client.Do(ctx, s.client.B().Ping().Build()).Error(); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Services returns the embedded records in insertion order.
func (s *Storage) Services(ctx context.Context) ([]domain.ServiceRecord, error) {
	ids, err := s.client.Do(ctx, s.client.B().Lrange().Key(s.listKey()).Start(0).Stop(-1).Build()).AsStrSlice()
	if err != nil {
		return nil, fmt.Errorf("%w: list services: %w", domain.ErrCatalog, err)
	}
	if len(ids) == 0 {
		return []domain.ServiceRecord{}, nil
	}

	cmds := make([]rueidis.Completed, len(ids))
	for i, id := range ids {
		cmds[i] = s.client.B().Hgetall().Key(s.serviceKey(id)).Build()
	}
	results := s.client.DoMulti(ctx, cmds...)

	records := make([]domain.ServiceRecord, 0, len(ids))
	for i, res := range results {
		fields, err := res.AsStrMap()
		if err != nil {
			return nil, fmt.Errorf("%w: load service %s: %w", domain.ErrCatalog, ids[i], err)
		}
		if len(fields) == 0 {
			continue
		}
		r, err := decodeFields(fields)
		if err != nil {
			return nil, fmt.Errorf("%w: service %s: %w", domain.ErrCatalog, ids[i], err)
		}
		records = append(records, r)
	}
	return catalog.Embedded(records), nil
}

// Insert stores a new record. Ids must be unique.
func (s *Storage) Insert(ctx context.Context, record domain.ServiceRecord) error {
	if err := catalog.Validate(record); err != nil {
		return err
	}
	key := s.serviceKey(record.ID)
	exists, err := s.client.Do(ctx, s.client.B().Exists().Key(key).Build()).AsInt64()
	if err != nil {
		return fmt.Errorf("check service %s: %w", record.ID, err)
	}
	if exists > 0 {
		return fmt.Errorf("service %s already exists", record.ID)
	}

	fields, err := encodeFields(record)
	if err != nil {
		return err
	}
	hset := s.client.B().Hset().Key(key).FieldValue()
	for _, f := range fieldOrder {
		hset = hset.FieldValue(f, fields[f])
	}
	cmds := []rueidis.Completed{
		hset.Build(),
		s.client.B().Rpush().Key(s.listKey()).Element(record.ID).Build(),
	}
	for _, res := range s.client.DoMulti(ctx, cmds...) {
		if err := res.Error(); err != nil {
			return fmt.Errorf("insert service %s: %w", record.ID, err)
		}
	}
	return nil
}

// Close shuts down the client.
func (s *Storage) Close() error {
	s.client.Close()
	return nil
}

var fieldOrder = []string{"id", "title", "description", "cost", "link", "imgSrc", "embedding", "createdAt", "updatedAt"}

func encodeFields(r domain.ServiceRecord) (map[string]string, error) {
	emb, err := catalog.EncodeEmbedding(r.Embedding)
	if err != nil {
		return nil, err
	}
	return map[string]string{
		"id":          r.ID,
		"title":       r.Title,
		"description": r.Description,
		"cost":        strconv.FormatFloat(r.Cost, 'f', -1, 64),
		"link":        r.Link,
		"imgSrc":      r.ImageURL,
		"embedding":   emb,
		"createdAt":   r.CreatedAt.UTC().Format(time.RFC3339Nano),
		"updatedAt":   r.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}, nil
}

func decodeFields(f map[string]string) (domain.ServiceRecord, error) {
	r := domain.ServiceRecord{
		ID:          f["id"],
		Title:       f["title"],
		Description: f["description"],
		Link:        f["link"],
		ImageURL:    f["imgSrc"],
	}
	if c := f["cost"]; c != "" {
		cost, err := strconv.ParseFloat(c, 64)
		if err != nil {
			return r, fmt.Errorf("parse cost %q: %w", c, err)
		}
		r.Cost = cost
	}
	emb, err := catalog.DecodeEmbedding(f["embedding"])
	if err != nil {
		return r, err
	}
	r.Embedding = emb
	r.CreatedAt, _ = time.Parse(time.RFC3339Nano, f["createdAt"])
	r.UpdatedAt, _ = time.Parse(time.RFC3339Nano, f["updatedAt"])
	return r, nil
}
