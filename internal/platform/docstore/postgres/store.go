// Package postgres stores document collections as JSONB rows, one table per collection.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/Apurer/go-gin-storefront/internal/platform/docstore"
	"github.com/Apurer/go-gin-storefront/internal/platform/migrations"
	platformpostgres "github.com/Apurer/go-gin-storefront/internal/platform/postgres"
)

var _ docstore.Remote = (*Store)(nil)

// Store persists documents in PostgreSQL using GORM.
type Store struct {
	db *gorm.DB
}

// documentRecord maps a document onto its collection table.
type documentRecord struct {
	ID        string    `gorm:"primaryKey;column:id"`
	Body      string    `gorm:"column:body;type:jsonb"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime:false"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime:false"`
}

// Open connects to dsn and makes sure every collection table exists.
func Open(ctx context.Context, dsn string, collections ...string) (*Store, error) {
	db, err := platformpostgres.Connect(ctx, dsn)
	if err != nil {
		return nil, err
	}
	store, err := New(db, collections...)
	if err != nil {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			_ = sqlDB.Close()
		}
		return nil, err
	}
	return store, nil
}

// New wraps an existing connection. Caller manages the DB lifecycle unless Close is called.
func New(db *gorm.DB, collections ...string) (*Store, error) {
	if db == nil {
		return nil, errors.New("postgres document store not configured")
	}
	if err := migrations.Run(db, collections...); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Find(ctx context.Context, collection string, filter docstore.Filter) ([]docstore.Document, error) {
	if err := checkCollection(collection); err != nil {
		return nil, err
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	query := s.db.WithContext(ctx).Table(collection)
	for _, key := range filter.Keys() {
		query = query.Where("body ->> ? = ?", key, filter[key])
	}
	var records []documentRecord
	if err := query.Order("created_at, id").Find(&records).Error; err != nil {
		return nil, err
	}
	docs := make([]docstore.Document, 0, len(records))
	for i := range records {
		docs = append(docs, records[i].toDocument())
	}
	return docs, nil
}

func (s *Store) FindOne(ctx context.Context, collection, id string) (docstore.Document, error) {
	if err := checkCollection(collection); err != nil {
		return docstore.Document{}, err
	}
	var record documentRecord
	if err := s.db.WithContext(ctx).Table(collection).Where("id = ?", id).Take(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return docstore.Document{}, docstore.ErrNotFound
		}
		return docstore.Document{}, err
	}
	return record.toDocument(), nil
}

func (s *Store) Insert(ctx context.Context, collection string, doc docstore.Document) error {
	if err := checkCollection(collection); err != nil {
		return err
	}
	record := toRecord(doc)
	if err := s.db.WithContext(ctx).Table(collection).Create(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return docstore.ErrConflict
		}
		return err
	}
	return nil
}

func (s *Store) Update(ctx context.Context, collection string, doc docstore.Document) error {
	if err := checkCollection(collection); err != nil {
		return err
	}
	result := s.db.WithContext(ctx).Table(collection).
		Where("id = ?", doc.ID).
		Updates(map[string]any{
			"body":       string(doc.Body),
			"updated_at": doc.UpdatedAt.UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return docstore.ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) (bool, error) {
	if err := checkCollection(collection); err != nil {
		return false, err
	}
	result := s.db.WithContext(ctx).Table(collection).Where("id = ?", id).Delete(&documentRecord{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (s *Store) Count(ctx context.Context, collection string) (int64, error) {
	if err := checkCollection(collection); err != nil {
		return 0, err
	}
	var count int64
	if err := s.db.WithContext(ctx).Table(collection).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func checkCollection(name string) error {
	if !migrations.ValidCollection(name) {
		return fmt.Errorf("invalid collection name %q", name)
	}
	return nil
}

func toRecord(doc docstore.Document) documentRecord {
	return documentRecord{
		ID:        doc.ID,
		Body:      string(doc.Body),
		CreatedAt: doc.CreatedAt.UTC(),
		UpdatedAt: doc.UpdatedAt.UTC(),
	}
}

func (r documentRecord) toDocument() docstore.Document {
	return docstore.Document{
		ID:        r.ID,
		Body:      []byte(r.Body),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}
