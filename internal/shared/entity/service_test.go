package entity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-gin-storefront/internal/platform/docstore"
	"github.com/Apurer/go-gin-storefront/internal/platform/docstore/docstoretest"
)

var errNoLabel = errors.New("label is required")

type widget struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Kind  string `json:"kind"`
}

func (w *widget) EntityID() string      { return w.ID }
func (w *widget) SetEntityID(id string) { w.ID = id }
func (w *widget) Validate() error {
	if strings.TrimSpace(w.Label) == "" {
		return errNoLabel
	}
	return nil
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("w-%d", n)
	}
}

func newWidgets(sw *docstore.Switch, clock func() time.Time) *Service[widget, *widget] {
	return NewService[widget, *widget](sw, "widgets", WithIDGenerator(sequentialIDs()), WithClock(clock))
}

func TestService_CreateAssignsIdentifierAndTimestamps(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc := newWidgets(docstore.NewSwitch(nil), func() time.Time { return now })

	first, err := svc.Create(context.Background(), &widget{ID: "ignored", Label: "a"})
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), &widget{Label: "b"})
	require.NoError(t, err)

	assert.Equal(t, "w-1", first.Entity.ID)
	assert.Equal(t, "w-2", second.Entity.ID)
	assert.Equal(t, now, first.Metadata.CreatedAt)
	assert.Equal(t, now, first.Metadata.UpdatedAt)
}

func TestService_CreateRejectsInvalidEntity(t *testing.T) {
	svc := newWidgets(docstore.NewSwitch(nil), time.Now)

	_, err := svc.Create(context.Background(), &widget{Label: "  "})
	require.ErrorIs(t, err, errNoLabel)

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestService_DefaultIdentifiersAreUnique(t *testing.T) {
	svc := NewService[widget, *widget](nil, "widgets")
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		rec, err := svc.Create(context.Background(), &widget{Label: "x"})
		require.NoError(t, err)
		require.NotEmpty(t, rec.Entity.ID)
		require.False(t, seen[rec.Entity.ID], "duplicate id %s", rec.Entity.ID)
		seen[rec.Entity.ID] = true
	}
}

func TestService_WritesGoToTheAuthoritativeStore(t *testing.T) {
	sw, remote := docstoretest.Connected()
	svc := newWidgets(sw, time.Now)

	_, err := svc.Create(context.Background(), &widget{Label: "remote"})
	require.NoError(t, err)

	count, err := remote.Count(context.Background(), "widgets")
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
	fallbackCount, err := sw.Fallback().Count(context.Background(), "widgets")
	require.NoError(t, err)
	assert.Zero(t, fallbackCount)
}

func TestService_ListDegradesToFallbackOnRemoteError(t *testing.T) {
	sw, remote := docstoretest.Connected()
	docs, err := Documents[widget, *widget](time.Now(), &widget{ID: "seed", Label: "seeded"})
	require.NoError(t, err)
	sw.Fallback().Seed("widgets", docs)
	svc := newWidgets(sw, time.Now)

	remote.Fail(docstoretest.ErrUnavailable)
	list, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "seeded", list[0].Entity.Label)
}

func TestService_GetScansFallbackOnRemoteError(t *testing.T) {
	sw, remote := docstoretest.Connected()
	docs, err := Documents[widget, *widget](time.Now(), &widget{ID: "seed", Label: "seeded"})
	require.NoError(t, err)
	sw.Fallback().Seed("widgets", docs)
	svc := newWidgets(sw, time.Now)

	remote.Fail(docstoretest.ErrUnavailable)
	rec, err := svc.Get(context.Background(), "seed")
	require.NoError(t, err)
	assert.Equal(t, "seeded", rec.Entity.Label)

	_, err = svc.Get(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestService_WritesSurfaceRemoteErrors(t *testing.T) {
	sw, remote := docstoretest.Connected()
	svc := newWidgets(sw, time.Now)
	created, err := svc.Create(context.Background(), &widget{Label: "a"})
	require.NoError(t, err)

	remote.Fail(docstoretest.ErrUnavailable)

	_, err = svc.Create(context.Background(), &widget{Label: "b"})
	require.ErrorIs(t, err, docstoretest.ErrUnavailable)
	_, err = svc.Update(context.Background(), created.Entity.ID, nil)
	require.ErrorIs(t, err, docstoretest.ErrUnavailable)
	err = svc.Delete(context.Background(), created.Entity.ID)
	require.ErrorIs(t, err, docstoretest.ErrUnavailable)
	assert.Equal(t, docstore.Connected, sw.Mode())
}

func TestService_FindFiltersByField(t *testing.T) {
	svc := newWidgets(docstore.NewSwitch(nil), time.Now)
	for _, w := range []*widget{{Label: "a", Kind: "gear"}, {Label: "b", Kind: "bolt"}, {Label: "c", Kind: "gear"}} {
		_, err := svc.Create(context.Background(), w)
		require.NoError(t, err)
	}

	gears, err := svc.Find(context.Background(), docstore.Filter{"kind": "gear"})
	require.NoError(t, err)
	require.Len(t, gears, 2)
	assert.Equal(t, "a", gears[0].Entity.Label)
	assert.Equal(t, "c", gears[1].Entity.Label)

	none, err := svc.Find(context.Background(), docstore.Filter{"kind": "spring"})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	_, err = svc.Find(context.Background(), docstore.Filter{"kind'); --": "x"})
	var fieldErr *docstore.InvalidFieldError
	require.ErrorAs(t, err, &fieldErr)
}

func TestService_UpdateAppliesMutationAndRestamps(t *testing.T) {
	current := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc := newWidgets(docstore.NewSwitch(nil), func() time.Time { return current })
	created, err := svc.Create(context.Background(), &widget{Label: "a", Kind: "gear"})
	require.NoError(t, err)

	current = current.Add(time.Minute)
	updated, err := svc.Update(context.Background(), created.Entity.ID, func(w *widget) error {
		w.Label = "renamed"
		w.ID = "hijacked"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, created.Entity.ID, updated.Entity.ID)
	assert.Equal(t, "renamed", updated.Entity.Label)
	assert.Equal(t, "gear", updated.Entity.Kind)
	assert.Equal(t, created.Metadata.CreatedAt, updated.Metadata.CreatedAt)
	assert.True(t, updated.Metadata.UpdatedAt.After(created.Metadata.UpdatedAt))

	stored, err := svc.Get(context.Background(), created.Entity.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", stored.Entity.Label)
	assert.Equal(t, updated.Metadata.UpdatedAt, stored.Metadata.UpdatedAt)
}

func TestService_UpdateRevalidates(t *testing.T) {
	svc := newWidgets(docstore.NewSwitch(nil), time.Now)
	created, err := svc.Create(context.Background(), &widget{Label: "a"})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), created.Entity.ID, func(w *widget) error {
		w.Label = ""
		return nil
	})
	require.ErrorIs(t, err, errNoLabel)

	stored, err := svc.Get(context.Background(), created.Entity.ID)
	require.NoError(t, err)
	assert.Equal(t, "a", stored.Entity.Label)
}

func TestService_UpdateAndDeleteUnknownIdentifier(t *testing.T) {
	svc := newWidgets(docstore.NewSwitch(nil), time.Now)

	_, err := svc.Update(context.Background(), "missing", nil)
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, svc.Delete(context.Background(), "missing"), ErrNotFound)
}

func TestService_DeleteTwice(t *testing.T) {
	svc := newWidgets(docstore.NewSwitch(nil), time.Now)
	created, err := svc.Create(context.Background(), &widget{Label: "a"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), created.Entity.ID))
	require.ErrorIs(t, svc.Delete(context.Background(), created.Entity.ID), ErrNotFound)
}
