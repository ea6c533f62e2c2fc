package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/makkenzo/content-cms-api/internal/domain/apikey"
	"github.com/makkenzo/content-cms-api/internal/domain/collection"
	"github.com/makkenzo/content-cms-api/internal/domain/popup"
	"github.com/makkenzo/content-cms-api/internal/domain/profile"
	"github.com/makkenzo/content-cms-api/internal/domain/schema"
	"github.com/makkenzo/content-cms-api/internal/domain/submission"
	"github.com/stretchr/testify/mock"
)

type mockAPIKeyRepo struct{ mock.Mock }

func (m *mockAPIKeyRepo) FindByHash(ctx context.Context, keyHash string) (*apikey.APIKey, error) {
	args := m.Called(ctx, keyHash)
	k, _ := args.Get(0).(*apikey.APIKey)
	return k, args.Error(1)
}

func (m *mockAPIKeyRepo) FindByID(ctx context.Context, owner, id uuid.UUID) (*apikey.APIKey, error) {
	args := m.Called(ctx, owner, id)
	k, _ := args.Get(0).(*apikey.APIKey)
	return k, args.Error(1)
}

func (m *mockAPIKeyRepo) Create(ctx context.Context, key *apikey.APIKey) error {
	return m.Called(ctx, key).Error(0)
}

func (m *mockAPIKeyRepo) ListByOwner(ctx context.Context, owner uuid.UUID) ([]*apikey.APIKey, error) {
	args := m.Called(ctx, owner)
	keys, _ := args.Get(0).([]*apikey.APIKey)
	return keys, args.Error(1)
}

func (m *mockAPIKeyRepo) Update(ctx context.Context, owner, id uuid.UUID, upd apikey.Update) (*apikey.APIKey, error) {
	args := m.Called(ctx, owner, id, upd)
	k, _ := args.Get(0).(*apikey.APIKey)
	return k, args.Error(1)
}

func (m *mockAPIKeyRepo) Delete(ctx context.Context, owner, id uuid.UUID) (*apikey.APIKey, error) {
	args := m.Called(ctx, owner, id)
	k, _ := args.Get(0).(*apikey.APIKey)
	return k, args.Error(1)
}

func (m *mockAPIKeyRepo) UpdateLastUsed(ctx context.Context, id uuid.UUID, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func (m *mockAPIKeyRepo) DeactivateExpired(ctx context.Context, now time.Time) ([]*apikey.APIKey, error) {
	args := m.Called(ctx, now)
	keys, _ := args.Get(0).([]*apikey.APIKey)
	return keys, args.Error(1)
}

type mockSchemaRepo struct{ mock.Mock }

func (m *mockSchemaRepo) Create(ctx context.Context, s *schema.Schema) error {
	return m.Called(ctx, s).Error(0)
}

func (m *mockSchemaRepo) FindByID(ctx context.Context, owner, id uuid.UUID) (*schema.Schema, error) {
	args := m.Called(ctx, owner, id)
	s, _ := args.Get(0).(*schema.Schema)
	return s, args.Error(1)
}

func (m *mockSchemaRepo) ListByOwner(ctx context.Context, owner uuid.UUID) ([]*schema.Schema, error) {
	args := m.Called(ctx, owner)
	list, _ := args.Get(0).([]*schema.Schema)
	return list, args.Error(1)
}

func (m *mockSchemaRepo) Update(ctx context.Context, s *schema.Schema) error {
	return m.Called(ctx, s).Error(0)
}

func (m *mockSchemaRepo) Delete(ctx context.Context, owner, id uuid.UUID) error {
	return m.Called(ctx, owner, id).Error(0)
}

func (m *mockSchemaRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	args := m.Called(ctx, slug)
	return args.Bool(0), args.Error(1)
}

type mockCollectionRepo struct{ mock.Mock }

func (m *mockCollectionRepo) Create(ctx context.Context, c *collection.Collection) error {
	return m.Called(ctx, c).Error(0)
}

func (m *mockCollectionRepo) FindByID(ctx context.Context, owner, id uuid.UUID) (*collection.Collection, error) {
	args := m.Called(ctx, owner, id)
	c, _ := args.Get(0).(*collection.Collection)
	return c, args.Error(1)
}

func (m *mockCollectionRepo) FindPublished(ctx context.Context, owner, id uuid.UUID) (*collection.Collection, error) {
	args := m.Called(ctx, owner, id)
	c, _ := args.Get(0).(*collection.Collection)
	return c, args.Error(1)
}

func (m *mockCollectionRepo) List(ctx context.Context, filter collection.ListFilter) ([]*collection.Collection, error) {
	args := m.Called(ctx, filter)
	list, _ := args.Get(0).([]*collection.Collection)
	return list, args.Error(1)
}

func (m *mockCollectionRepo) Update(ctx context.Context, owner, id uuid.UUID, upd collection.Update) (*collection.Collection, error) {
	args := m.Called(ctx, owner, id, upd)
	c, _ := args.Get(0).(*collection.Collection)
	return c, args.Error(1)
}

func (m *mockCollectionRepo) Delete(ctx context.Context, owner, id uuid.UUID) error {
	return m.Called(ctx, owner, id).Error(0)
}

type mockPopupRepo struct{ mock.Mock }

func (m *mockPopupRepo) Create(ctx context.Context, p *popup.Popup) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockPopupRepo) FindByID(ctx context.Context, owner, id uuid.UUID) (*popup.Popup, error) {
	args := m.Called(ctx, owner, id)
	p, _ := args.Get(0).(*popup.Popup)
	return p, args.Error(1)
}

func (m *mockPopupRepo) ListByOwner(ctx context.Context, owner uuid.UUID, activeOnly bool) ([]*popup.Popup, error) {
	args := m.Called(ctx, owner, activeOnly)
	list, _ := args.Get(0).([]*popup.Popup)
	return list, args.Error(1)
}

func (m *mockPopupRepo) Update(ctx context.Context, owner, id uuid.UUID, upd popup.Update) (*popup.Popup, error) {
	args := m.Called(ctx, owner, id, upd)
	p, _ := args.Get(0).(*popup.Popup)
	return p, args.Error(1)
}

func (m *mockPopupRepo) Delete(ctx context.Context, owner, id uuid.UUID) error {
	return m.Called(ctx, owner, id).Error(0)
}

type mockProfileRepo struct{ mock.Mock }

func (m *mockProfileRepo) FindOrCreate(ctx context.Context, p *profile.Profile) (*profile.Profile, error) {
	args := m.Called(ctx, p)
	out, _ := args.Get(0).(*profile.Profile)
	return out, args.Error(1)
}

type mockSubmissionRepo struct{ mock.Mock }

func (m *mockSubmissionRepo) Create(ctx context.Context, s *submission.Submission) error {
	return m.Called(ctx, s).Error(0)
}

func (m *mockSubmissionRepo) List(ctx context.Context, filter submission.ListFilter) ([]*submission.Submission, error) {
	args := m.Called(ctx, filter)
	list, _ := args.Get(0).([]*submission.Submission)
	return list, args.Error(1)
}
