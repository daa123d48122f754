// Package entity implements the CRUD orchestration shared by the product and order services.
// A Service persists one aggregate type as JSON documents in whichever store the
// docstore.Switch reports as authoritative.
package entity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Apurer/go-gin-storefront/internal/platform/docstore"
)

// ErrNotFound is returned when the identifier is unknown to the authoritative store.
var ErrNotFound = errors.New("entity not found")

// Entity is the capability set an aggregate needs to be managed by a Service. P is the
// pointer type of the aggregate struct T.
type Entity[T any] interface {
	*T
	EntityID() string
	SetEntityID(id string)
	Validate() error
}

// Metadata captures persistence timestamps.
type Metadata struct {
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Record is an aggregate plus its persistence metadata.
type Record[P any] struct {
	Entity   P
	Metadata Metadata
}

// Service is instantiated once per aggregate type.
type Service[T any, P Entity[T]] struct {
	sw         *docstore.Switch
	collection string
	newID      func() string
	now        func() time.Time
	logger     *slog.Logger
}

type options struct {
	newID  func() string
	now    func() time.Time
	logger *slog.Logger
}

type Option func(*options)

// WithIDGenerator replaces the default random UUID identifiers.
func WithIDGenerator(fn func() string) Option {
	return func(o *options) {
		if fn != nil {
			o.newID = fn
		}
	}
}

func WithClock(fn func() time.Time) Option {
	return func(o *options) {
		if fn != nil {
			o.now = fn
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func NewService[T any, P Entity[T]](sw *docstore.Switch, collection string, opts ...Option) *Service[T, P] {
	o := options{
		newID:  uuid.NewString,
		now:    time.Now,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if sw == nil {
		sw = docstore.NewSwitch(nil)
	}
	return &Service[T, P]{
		sw:         sw,
		collection: collection,
		newID:      o.newID,
		now:        o.now,
		logger:     o.logger,
	}
}

// Collection names the document collection backing the service.
func (s *Service[T, P]) Collection() string {
	return s.collection
}

// List returns every record of the collection.
func (s *Service[T, P]) List(ctx context.Context) ([]*Record[P], error) {
	return s.Find(ctx, nil)
}

// Find returns the records whose top-level string fields equal the filter values. A
// remote query failure degrades to the fallback content instead of failing.
func (s *Service[T, P]) Find(ctx context.Context, filter docstore.Filter) ([]*Record[P], error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	store, mode := s.sw.Active()
	docs, err := store.Find(ctx, s.collection, filter)
	if err != nil {
		if mode != docstore.Connected {
			return nil, err
		}
		s.logger.LogAttrs(ctx, slog.LevelWarn, "remote query failed, serving fallback data",
			slog.String("collection", s.collection),
			slog.String("error", err.Error()),
		)
		docs, err = s.sw.Fallback().Find(ctx, s.collection, filter)
		if err != nil {
			return nil, err
		}
	}
	records := make([]*Record[P], 0, len(docs))
	for _, doc := range docs {
		record, err := decode[T, P](doc)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

// Get looks the identifier up in the authoritative store. When the remote lookup fails
// for any reason other than a missing document, the fallback store is scanned instead.
func (s *Service[T, P]) Get(ctx context.Context, id string) (*Record[P], error) {
	store, mode := s.sw.Active()
	doc, err := store.FindOne(ctx, s.collection, id)
	if err != nil && !errors.Is(err, docstore.ErrNotFound) && mode == docstore.Connected {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "remote lookup failed, scanning fallback data",
			slog.String("collection", s.collection),
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		doc, err = s.sw.Fallback().FindOne(ctx, s.collection, id)
	}
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return decode[T, P](doc)
}

// Create validates the aggregate, assigns a fresh identifier and both timestamps, and
// writes it to the authoritative store.
func (s *Service[T, P]) Create(ctx context.Context, entity P) (*Record[P], error) {
	if entity == nil {
		return nil, errors.New("entity is nil")
	}
	if err := entity.Validate(); err != nil {
		return nil, err
	}
	entity.SetEntityID(s.newID())
	now := s.now().UTC()
	body, err := json.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("encode %s document: %w", s.collection, err)
	}
	doc := docstore.Document{ID: entity.EntityID(), Body: body, CreatedAt: now, UpdatedAt: now}
	store, _ := s.sw.Active()
	if err := store.Insert(ctx, s.collection, doc); err != nil {
		return nil, fmt.Errorf("insert %s document: %w", s.collection, err)
	}
	return &Record[P]{Entity: entity, Metadata: Metadata{CreatedAt: now, UpdatedAt: now}}, nil
}

// Update loads the aggregate, applies mutate and re-validates the result before
// persisting it with a fresh updatedAt. The identifier cannot be changed by mutate.
func (s *Service[T, P]) Update(ctx context.Context, id string, mutate func(P) error) (*Record[P], error) {
	store, _ := s.sw.Active()
	doc, err := store.FindOne(ctx, s.collection, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s document: %w", s.collection, err)
	}
	record, err := decode[T, P](doc)
	if err != nil {
		return nil, err
	}
	if mutate != nil {
		if err := mutate(record.Entity); err != nil {
			return nil, err
		}
	}
	if err := record.Entity.Validate(); err != nil {
		return nil, err
	}
	record.Entity.SetEntityID(id)
	body, err := json.Marshal(record.Entity)
	if err != nil {
		return nil, fmt.Errorf("encode %s document: %w", s.collection, err)
	}
	doc.Body = body
	doc.UpdatedAt = s.now().UTC()
	if err := store.Update(ctx, s.collection, doc); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("update %s document: %w", s.collection, err)
	}
	record.Metadata.UpdatedAt = doc.UpdatedAt
	return record, nil
}

// Delete removes the identifier from the authoritative store.
func (s *Service[T, P]) Delete(ctx context.Context, id string) error {
	store, _ := s.sw.Active()
	deleted, err := store.Delete(ctx, s.collection, id)
	if err != nil {
		return fmt.Errorf("delete %s document: %w", s.collection, err)
	}
	if !deleted {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Documents encodes fixed aggregates, keeping their identifiers, for seeding a store.
func Documents[T any, P Entity[T]](now time.Time, entities ...P) ([]docstore.Document, error) {
	docs := make([]docstore.Document, 0, len(entities))
	for _, entity := range entities {
		body, err := json.Marshal(entity)
		if err != nil {
			return nil, err
		}
		docs = append(docs, docstore.Document{
			ID:        entity.EntityID(),
			Body:      body,
			CreatedAt: now.UTC(),
			UpdatedAt: now.UTC(),
		})
	}
	return docs, nil
}

func decode[T any, P Entity[T]](doc docstore.Document) (*Record[P], error) {
	entity := P(new(T))
	if err := json.Unmarshal(doc.Body, entity); err != nil {
		return nil, fmt.Errorf("decode document %s: %w", doc.ID, err)
	}
	entity.SetEntityID(doc.ID)
	return &Record[P]{
		Entity:   entity,
		Metadata: Metadata{CreatedAt: doc.CreatedAt, UpdatedAt: doc.UpdatedAt},
	}, nil
}
