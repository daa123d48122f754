// Package docstore abstracts the document collections behind the storefront services.
// A Switch selects between a remote backend and the in-process FallbackStore, and the
// Supervisor keeps retrying the remote connection.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when no document carries the requested identifier.
	ErrNotFound = errors.New("document not found")
	// ErrConflict is returned when inserting an identifier that already exists.
	ErrConflict = errors.New("document already exists")
)

// Document is a JSON body stored under a logical identifier.
type Document struct {
	ID        string          `json:"id"`
	Body      json.RawMessage `json:"body"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Clone returns a copy that does not share the body buffer.
func (d Document) Clone() Document {
	clone := d
	if d.Body != nil {
		clone.Body = append(json.RawMessage(nil), d.Body...)
	}
	return clone
}

// Store is the collection-level CRUD contract shared by every backend.
type Store interface {
	Find(ctx context.Context, collection string, filter Filter) ([]Document, error)
	FindOne(ctx context.Context, collection, id string) (Document, error)
	Insert(ctx context.Context, collection string, doc Document) error
	Update(ctx context.Context, collection string, doc Document) error
	Delete(ctx context.Context, collection, id string) (bool, error)
	Count(ctx context.Context, collection string) (int64, error)
}

// Remote is a Store reached over the network.
type Remote interface {
	Store
	Ping(ctx context.Context) error
	Close() error
}

// Dialer opens a Remote. Implementations must honour the context deadline.
type Dialer func(ctx context.Context) (Remote, error)

// Connection timeouts applied by the remote backends.
const (
	ConnectTimeout         = 10 * time.Second
	ServerSelectionTimeout = 5 * time.Second
)
