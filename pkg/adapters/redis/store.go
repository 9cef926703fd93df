// Package redis stores workshop documents in Redis and provides a Redis
// backed ports.DistributedLocker.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aretw0/eventstorm/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key written by the store and the locker.
const DefaultPrefix = "eventstorm:"

// Store implements ports.WorkshopStore using Redis.
//
// Documents are stored as JSON strings under <prefix>workshop:<id>, and the
// summary of each workshop is kept in the hash <prefix>index so List never
// reads full documents.
type Store struct {
	client *backend.Client
	prefix string
	owned  bool // client was created by New and is closed by Close
}

// Option configures a Store.
type Option func(*Store)

// WithPrefix sets the key prefix for workshops.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	store := NewFromClient(rdb, opts...)
	store.owned = true
	return store
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: DefaultPrefix,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Client exposes the underlying client, e.g. to share it with a Locker.
func (s *Store) Client() *backend.Client {
	return s.client
}

func (s *Store) key(id string) string {
	return s.prefix + "workshop:" + id
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

// Save persists the document and its summary in one transaction.
func (s *Store) Save(ctx context.Context, doc *domain.Document) error {
	if doc == nil || doc.Metadata.ID == "" {
		return domain.Validation("workshop id cannot be empty")
	}
	out := doc.Clone()
	out.Normalize()

	data, err := json.Marshal(out)
	if err != nil {
		return domain.Storage("save", fmt.Errorf("failed to marshal workshop: %w", err))
	}
	summary, err := json.Marshal(out.Summarize())
	if err != nil {
		return domain.Storage("save", fmt.Errorf("failed to marshal summary: %w", err))
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(out.Metadata.ID), data, 0)
	pipe.HSet(ctx, s.indexKey(), out.Metadata.ID, summary)
	if _, err := pipe.Exec(ctx); err != nil {
		return domain.Storage("save", fmt.Errorf("failed to save to redis: %w", err))
	}
	return nil
}

// Load retrieves the document from Redis.
func (s *Store) Load(ctx context.Context, id string) (*domain.Document, error) {
	val, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, domain.NotFound("workshop", id)
		}
		return nil, domain.Storage("load", fmt.Errorf("failed to get from redis: %w", err))
	}

	var doc domain.Document
	if err := json.Unmarshal(val, &doc); err != nil {
		return nil, domain.Storage("load", fmt.Errorf("failed to unmarshal workshop %s: %w", id, err))
	}
	doc.Normalize()
	return &doc, nil
}

// Delete removes the document and its summary.
func (s *Store) Delete(ctx context.Context, id string) error {
	pipe := s.client.TxPipeline()
	del := pipe.Del(ctx, s.key(id))
	pipe.HDel(ctx, s.indexKey(), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return domain.Storage("delete", fmt.Errorf("failed to delete from redis: %w", err))
	}
	if del.Val() == 0 {
		return domain.NotFound("workshop", id)
	}
	return nil
}

// List returns the summaries recorded in the index hash.
func (s *Store) List(ctx context.Context) ([]domain.Summary, error) {
	entries, err := s.client.HGetAll(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, domain.Storage("list", fmt.Errorf("failed to list workshops: %w", err))
	}

	summaries := make([]domain.Summary, 0, len(entries))
	for id, raw := range entries {
		var sum domain.Summary
		if err := json.Unmarshal([]byte(raw), &sum); err != nil {
			return nil, domain.Storage("list", fmt.Errorf("corrupt index entry %s: %w", id, err))
		}
		summaries = append(summaries, sum)
	}
	domain.SortSummaries(summaries)
	return summaries, nil
}

// Close closes the redis client if the store created it.
func (s *Store) Close() error {
	if !s.owned {
		return nil
	}
	return s.client.Close()
}
