package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/makkenzo/content-cms-api/internal/auth"
	"github.com/makkenzo/content-cms-api/internal/domain/collection"
	"github.com/makkenzo/content-cms-api/internal/domain/schema"
	"github.com/makkenzo/content-cms-api/internal/handler/dto"
	"github.com/makkenzo/content-cms-api/internal/ierr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type collectionFixture struct {
	svc         *CollectionService
	collections *mockCollectionRepo
	schemas     *mockSchemaRepo
	profiles    *mockProfileRepo
	owner       uuid.UUID
	schema      *schema.Schema
	container   *collection.Collection
}

func newCollectionFixture(t *testing.T) *collectionFixture {
	t.Helper()
	owner := uuid.New()
	sc := &schema.Schema{ID: uuid.New(), OwnerID: owner, Slug: "products", Title: "Products"}
	require.NoError(t, sc.SetFields([]schema.Field{
		{Name: "title", Type: schema.FieldText, Required: true},
		{Name: "price", Type: schema.FieldNumber},
	}))

	collections := &mockCollectionRepo{}
	schemas := &mockSchemaRepo{}
	profiles := &mockProfileRepo{}
	f := &collectionFixture{
		collections: collections,
		schemas:     schemas,
		profiles:    profiles,
		owner:       owner,
		schema:      sc,
		container: &collection.Collection{
			ID:       uuid.New(),
			OwnerID:  owner,
			SchemaID: sc.ID,
			Data:     collection.EmptyData(),
		},
	}
	f.svc = NewCollectionService(collections, schemas, NewProfileService(profiles, zap.NewNop()), zap.NewNop())
	return f
}

func (f *collectionFixture) apiKeyPrincipal() *auth.Principal {
	return &auth.Principal{
		OwnerID: f.owner,
		Method:  auth.MethodAPIKey,
		KeyID:   uuid.New(),
		Scopes:  []string{"write"},
	}
}

func TestCollectionService_CreateCollection(t *testing.T) {
	ctx := context.Background()

	t.Run("Should create empty unpublished container", func(t *testing.T) {
		f := newCollectionFixture(t)
		p := &auth.Principal{OwnerID: f.owner, Method: auth.MethodSession, Email: "a@b.c"}
		f.profiles.On("FindOrCreate", ctx, mock.Anything).Return(nil, nil)
		f.schemas.On("FindByID", ctx, f.owner, f.schema.ID).Return(f.schema, nil)
		f.collections.On("Create", ctx, mock.MatchedBy(func(c *collection.Collection) bool {
			return c.OwnerID == f.owner && c.SchemaID == f.schema.ID && !c.Published && !c.HasData()
		})).Return(nil)

		c, err := f.svc.CreateCollection(ctx, p, &dto.CreateCollectionRequest{SchemaID: f.schema.ID})
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, c.ID)
		f.collections.AssertExpectations(t)
	})

	t.Run("Should refuse schemas of other owners", func(t *testing.T) {
		f := newCollectionFixture(t)
		p := &auth.Principal{OwnerID: uuid.New(), Method: auth.MethodSession}
		f.profiles.On("FindOrCreate", ctx, mock.Anything).Return(nil, nil)
		f.schemas.On("FindByID", ctx, p.OwnerID, f.schema.ID).Return(nil, ierr.ErrNotFound)

		_, err := f.svc.CreateCollection(ctx, p, &dto.CreateCollectionRequest{SchemaID: f.schema.ID})
		assert.ErrorIs(t, err, ierr.ErrNotFound)
		f.collections.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestCollectionService_CreateItem(t *testing.T) {
	ctx := context.Background()

	t.Run("Should create unpublished item via api key without profile upsert", func(t *testing.T) {
		f := newCollectionFixture(t)
		f.collections.On("FindByID", ctx, f.owner, f.container.ID).Return(f.container, nil)
		f.schemas.On("FindByID", ctx, f.owner, f.schema.ID).Return(f.schema, nil)
		f.collections.On("Create", ctx, mock.AnythingOfType("*collection.Collection")).Return(nil)

		item, err := f.svc.CreateItem(ctx, f.apiKeyPrincipal(), f.container.ID, &dto.CreateItemRequest{
			Data: json.RawMessage(`{"title":"Shirt","price":10}`),
		})
		require.NoError(t, err)
		assert.False(t, item.Published)
		assert.Equal(t, f.schema.ID, item.SchemaID)
		assert.Equal(t, f.owner, item.OwnerID)
		f.profiles.AssertNotCalled(t, "FindOrCreate", mock.Anything, mock.Anything)
	})

	t.Run("Should honour explicit published flag", func(t *testing.T) {
		f := newCollectionFixture(t)
		f.collections.On("FindByID", ctx, f.owner, f.container.ID).Return(f.container, nil)
		f.schemas.On("FindByID", ctx, f.owner, f.schema.ID).Return(f.schema, nil)
		f.collections.On("Create", ctx, mock.Anything).Return(nil)

		published := true
		item, err := f.svc.CreateItem(ctx, f.apiKeyPrincipal(), f.container.ID, &dto.CreateItemRequest{
			Data:      json.RawMessage(`{"title":"Shirt"}`),
			Published: &published,
		})
		require.NoError(t, err)
		assert.True(t, item.Published)
	})

	t.Run("Should reject data not matching the schema", func(t *testing.T) {
		f := newCollectionFixture(t)
		f.collections.On("FindByID", ctx, f.owner, f.container.ID).Return(f.container, nil)
		f.schemas.On("FindByID", ctx, f.owner, f.schema.ID).Return(f.schema, nil)

		_, err := f.svc.CreateItem(ctx, f.apiKeyPrincipal(), f.container.ID, &dto.CreateItemRequest{
			Data: json.RawMessage(`{"price":"cheap"}`),
		})
		assert.ErrorIs(t, err, ierr.ErrValidation)
		f.collections.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Should reject an empty data object", func(t *testing.T) {
		f := newCollectionFixture(t)
		require.NoError(t, f.schema.SetFields([]schema.Field{{Name: "price", Type: schema.FieldNumber}}))
		f.collections.On("FindByID", ctx, f.owner, f.container.ID).Return(f.container, nil)
		f.schemas.On("FindByID", ctx, f.owner, f.schema.ID).Return(f.schema, nil)

		_, err := f.svc.CreateItem(ctx, f.apiKeyPrincipal(), f.container.ID, &dto.CreateItemRequest{
			Data: json.RawMessage(`{}`),
		})
		assert.ErrorIs(t, err, ierr.ErrValidation)
		f.collections.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Should report a vanished schema as conflict", func(t *testing.T) {
		f := newCollectionFixture(t)
		f.collections.On("FindByID", ctx, f.owner, f.container.ID).Return(f.container, nil)
		f.schemas.On("FindByID", ctx, f.owner, f.schema.ID).Return(nil, ierr.ErrNotFound)

		_, err := f.svc.CreateItem(ctx, f.apiKeyPrincipal(), f.container.ID, &dto.CreateItemRequest{
			Data: json.RawMessage(`{"title":"Shirt"}`),
		})
		assert.ErrorIs(t, err, ierr.ErrConflict)
	})

	t.Run("Should not reach containers of another owner", func(t *testing.T) {
		f := newCollectionFixture(t)
		p := f.apiKeyPrincipal()
		p.OwnerID = uuid.New()
		f.collections.On("FindByID", ctx, p.OwnerID, f.container.ID).Return(nil, ierr.ErrNotFound)

		_, err := f.svc.CreateItem(ctx, p, f.container.ID, &dto.CreateItemRequest{Data: json.RawMessage(`{"title":"x"}`)})
		assert.ErrorIs(t, err, ierr.ErrNotFound)
	})
}

func TestCollectionService_ListItems(t *testing.T) {
	ctx := context.Background()
	f := newCollectionFixture(t)
	published := true
	f.collections.On("FindByID", ctx, f.owner, f.container.ID).Return(f.container, nil)
	f.collections.On("List", ctx, collection.ListFilter{
		OwnerID:   f.owner,
		SchemaID:  &f.container.SchemaID,
		Published: &published,
		ExcludeID: &f.container.ID,
		ItemsOnly: true,
	}).Return([]*collection.Collection{}, nil)

	items, err := f.svc.ListItems(ctx, f.owner, f.container.ID, &published)
	require.NoError(t, err)
	assert.Empty(t, items)
	f.collections.AssertExpectations(t)
}

func TestCollectionService_GetItem(t *testing.T) {
	ctx := context.Background()

	t.Run("Should hide items of another schema", func(t *testing.T) {
		f := newCollectionFixture(t)
		other := &collection.Collection{ID: uuid.New(), OwnerID: f.owner, SchemaID: uuid.New()}
		f.collections.On("FindByID", ctx, f.owner, f.container.ID).Return(f.container, nil)
		f.collections.On("FindByID", ctx, f.owner, other.ID).Return(other, nil)

		_, err := f.svc.GetItem(ctx, f.owner, f.container.ID, other.ID)
		assert.ErrorIs(t, err, ierr.ErrNotFound)
	})

	t.Run("Should not treat the container as its own item", func(t *testing.T) {
		f := newCollectionFixture(t)
		f.collections.On("FindByID", ctx, f.owner, f.container.ID).Return(f.container, nil)

		_, err := f.svc.GetItem(ctx, f.owner, f.container.ID, f.container.ID)
		assert.ErrorIs(t, err, ierr.ErrNotFound)
	})

	t.Run("Should not treat a sibling container as an item", func(t *testing.T) {
		f := newCollectionFixture(t)
		sibling := &collection.Collection{
			ID:       uuid.New(),
			OwnerID:  f.owner,
			SchemaID: f.schema.ID,
			Data:     collection.EmptyData(),
		}
		f.collections.On("FindByID", ctx, f.owner, f.container.ID).Return(f.container, nil)
		f.collections.On("FindByID", ctx, f.owner, sibling.ID).Return(sibling, nil)

		_, err := f.svc.GetItem(ctx, f.owner, f.container.ID, sibling.ID)
		assert.ErrorIs(t, err, ierr.ErrNotFound)
	})

	t.Run("Should pass store failures through", func(t *testing.T) {
		f := newCollectionFixture(t)
		boom := errors.New("boom")
		f.collections.On("FindByID", ctx, f.owner, f.container.ID).Return(nil, boom)

		_, err := f.svc.GetItem(ctx, f.owner, f.container.ID, uuid.New())
		assert.ErrorIs(t, err, boom)
	})
}

func TestCollectionService_UpdateCollection(t *testing.T) {
	ctx := context.Background()

	t.Run("Should require at least one field", func(t *testing.T) {
		f := newCollectionFixture(t)
		_, err := f.svc.UpdateCollection(ctx, f.owner, f.container.ID, &dto.UpdateCollectionRequest{})
		assert.ErrorIs(t, err, ierr.ErrValidation)
	})

	t.Run("Should publish without revalidating data", func(t *testing.T) {
		f := newCollectionFixture(t)
		published := true
		want := *f.container
		want.Published = true
		f.collections.On("Update", ctx, f.owner, f.container.ID, collection.Update{Published: &published}).Return(&want, nil)

		got, err := f.svc.UpdateCollection(ctx, f.owner, f.container.ID, &dto.UpdateCollectionRequest{Published: &published})
		require.NoError(t, err)
		assert.True(t, got.Published)
		f.schemas.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything, mock.Anything)
	})
}
