// Package docstoretest provides an in-memory docstore.Remote whose failures can be
// switched on, for exercising degraded paths in tests.
package docstoretest

import (
	"context"
	"errors"
	"sync"

	"github.com/Apurer/go-gin-storefront/internal/platform/docstore"
)

// ErrUnavailable is the default injected failure.
var ErrUnavailable = errors.New("remote store unavailable")

var _ docstore.Remote = (*Remote)(nil)

type Remote struct {
	store  *docstore.FallbackStore
	mu     sync.Mutex
	err    error
	closed bool
}

func NewRemote() *Remote {
	return &Remote{store: docstore.NewFallbackStore()}
}

// Fail makes every subsequent call return err; nil restores normal behaviour.
func (r *Remote) Fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

func (r *Remote) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

func (r *Remote) failure() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

func (r *Remote) Find(ctx context.Context, collection string, filter docstore.Filter) ([]docstore.Document, error) {
	if err := r.failure(); err != nil {
		return nil, err
	}
	return r.store.Find(ctx, collection, filter)
}

func (r *Remote) FindOne(ctx context.Context, collection, id string) (docstore.Document, error) {
	if err := r.failure(); err != nil {
		return docstore.Document{}, err
	}
	return r.store.FindOne(ctx, collection, id)
}

func (r *Remote) Insert(ctx context.Context, collection string, doc docstore.Document) error {
	if err := r.failure(); err != nil {
		return err
	}
	return r.store.Insert(ctx, collection, doc)
}

func (r *Remote) Update(ctx context.Context, collection string, doc docstore.Document) error {
	if err := r.failure(); err != nil {
		return err
	}
	return r.store.Update(ctx, collection, doc)
}

func (r *Remote) Delete(ctx context.Context, collection, id string) (bool, error) {
	if err := r.failure(); err != nil {
		return false, err
	}
	return r.store.Delete(ctx, collection, id)
}

func (r *Remote) Count(ctx context.Context, collection string) (int64, error) {
	if err := r.failure(); err != nil {
		return 0, err
	}
	return r.store.Count(ctx, collection)
}

func (r *Remote) Ping(context.Context) error {
	return r.failure()
}

func (r *Remote) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

// Connected returns a switch already promoted to a fresh Remote.
func Connected() (*docstore.Switch, *Remote) {
	remote := NewRemote()
	sw := docstore.NewSwitch(nil)
	sw.Promote(remote)
	return sw, remote
}
