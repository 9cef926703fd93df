package ports

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aretw0/eventstorm/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunWorkshopStoreContract runs a suite of tests to verify that a WorkshopStore
// implementation adheres to the defined interface contract.
func RunWorkshopStoreContract(t *testing.T, store WorkshopStore) {
	ctx := context.Background()
	prefix := "contract-" + time.Now().Format("20060102150405")
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	sample := func(id string, updated time.Time) *domain.Document {
		doc := domain.NewDocument(id, "Workshop "+id, base)
		doc.Metadata.UpdatedAt = updated
		doc.Metadata.Domain = "E-commerce"
		doc.Metadata.Facilitators = []string{"alice", "bob"}
		doc.Elements = []domain.Element{
			{ID: id + "-a", Type: domain.TypeCommand, Name: "Place Order", CreatedAt: base, UpdatedAt: base,
				Triggers: []string{id + "-b"}, TriggeredBy: []string{}, BoundedContextID: id + "-c"},
			{ID: id + "-b", Type: domain.TypeEvent, Name: "Order Placed", Position: 1, CreatedAt: base, UpdatedAt: base,
				Triggers: []string{}, TriggeredBy: []string{id + "-a"}, BoundedContextID: id + "-c"},
		}
		doc.BoundedContexts = []domain.BoundedContext{
			{ID: id + "-c", Name: "Order Mgmt", Color: "#ff0000", ElementIDs: []string{id + "-a", id + "-b"}},
		}
		return doc
	}

	t.Run("Save and Load", func(t *testing.T) {
		id := prefix + "-save"
		doc := sample(id, base)
		require.NoError(t, store.Save(ctx, doc), "Save should not return error")
		defer func() { _ = store.Delete(ctx, id) }()

		loaded, err := store.Load(ctx, id)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, doc, loaded)
	})

	t.Run("Save Overwrites", func(t *testing.T) {
		id := prefix + "-overwrite"
		require.NoError(t, store.Save(ctx, sample(id, base)))
		defer func() { _ = store.Delete(ctx, id) }()

		doc := sample(id, base.Add(time.Hour))
		doc.Metadata.Name = "Renamed"
		doc.Elements = doc.Elements[:0]
		doc.BoundedContexts[0].ElementIDs = []string{}
		require.NoError(t, store.Save(ctx, doc))

		loaded, err := store.Load(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "Renamed", loaded.Metadata.Name)
		assert.Empty(t, loaded.Elements)
	})

	t.Run("Stored Copy Is Isolated", func(t *testing.T) {
		id := prefix + "-isolated"
		doc := sample(id, base)
		require.NoError(t, store.Save(ctx, doc))
		defer func() { _ = store.Delete(ctx, id) }()

		doc.Elements[0].Name = "mutated after save"
		loaded, err := store.Load(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "Place Order", loaded.Elements[0].Name)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, prefix+"-missing")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		id := prefix + "-delete"
		require.NoError(t, store.Save(ctx, sample(id, base)))

		require.NoError(t, store.Delete(ctx, id), "Delete should not return error")

		_, err := store.Load(ctx, id)
		assert.ErrorIs(t, err, domain.ErrNotFound, "Load after Delete should return ErrNotFound")

		err = store.Delete(ctx, id)
		assert.ErrorIs(t, err, domain.ErrNotFound, "Delete of a missing workshop should return ErrNotFound")
	})

	t.Run("List", func(t *testing.T) {
		ids := make([]string, 3)
		for i := range ids {
			ids[i] = fmt.Sprintf("%s-list-%d", prefix, i)
			require.NoError(t, store.Save(ctx, sample(ids[i], base.Add(time.Duration(i)*time.Minute))))
		}
		defer func() {
			for _, id := range ids {
				_ = store.Delete(ctx, id)
			}
		}()

		summaries, err := store.List(ctx)
		require.NoError(t, err)

		var got []domain.Summary
		for _, s := range summaries {
			for _, id := range ids {
				if s.ID == id {
					got = append(got, s)
				}
			}
		}
		require.Len(t, got, 3)
		assert.Equal(t, ids[2], got[0].ID, "most recently updated first")
		assert.Equal(t, ids[0], got[2].ID)
		assert.Equal(t, domain.Summary{
			ID:           ids[1],
			Name:         "Workshop " + ids[1],
			Domain:       "E-commerce",
			CreatedAt:    base,
			UpdatedAt:    base.Add(time.Minute),
			ElementCount: 2,
			ContextCount: 1,
		}, got[1])
	})
}
