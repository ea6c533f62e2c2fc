package handler

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/makkenzo/content-cms-api/internal/domain/apikey"
	"github.com/makkenzo/content-cms-api/internal/domain/collection"
	"github.com/makkenzo/content-cms-api/internal/domain/popup"
	"github.com/makkenzo/content-cms-api/internal/domain/profile"
	"github.com/makkenzo/content-cms-api/internal/domain/schema"
	"github.com/makkenzo/content-cms-api/internal/domain/submission"
	"github.com/makkenzo/content-cms-api/internal/ierr"
)

type memStore struct {
	mu          sync.Mutex
	keys        map[uuid.UUID]*apikey.APIKey
	schemas     map[uuid.UUID]*schema.Schema
	collections map[uuid.UUID]*collection.Collection
	popups      map[uuid.UUID]*popup.Popup
	profiles    map[uuid.UUID]*profile.Profile
	submissions []*submission.Submission
}

func newMemStore() *memStore {
	return &memStore{
		keys:        map[uuid.UUID]*apikey.APIKey{},
		schemas:     map[uuid.UUID]*schema.Schema{},
		collections: map[uuid.UUID]*collection.Collection{},
		popups:      map[uuid.UUID]*popup.Popup{},
		profiles:    map[uuid.UUID]*profile.Profile{},
	}
}

type memKeys struct{ *memStore }

func (m memKeys) FindByHash(_ context.Context, keyHash string) (*apikey.APIKey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range m.keys {
		if k.KeyHash == keyHash {
			cp := *k
			return &cp, nil
		}
	}
	return nil, ierr.ErrNotFound
}

func (m memKeys) FindByID(_ context.Context, owner, id uuid.UUID) (*apikey.APIKey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k, ok := m.keys[id]
	if !ok || k.OwnerID != owner {
		return nil, ierr.ErrNotFound
	}
	cp := *k
	return &cp, nil
}

func (m memKeys) Create(_ context.Context, key *apikey.APIKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *key
	m.keys[key.ID] = &cp
	return nil
}

func (m memKeys) ListByOwner(_ context.Context, owner uuid.UUID) ([]*apikey.APIKey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*apikey.APIKey{}
	for _, k := range m.keys {
		if k.OwnerID == owner {
			cp := *k
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m memKeys) Update(_ context.Context, owner, id uuid.UUID, upd apikey.Update) (*apikey.APIKey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k, ok := m.keys[id]
	if !ok || k.OwnerID != owner {
		return nil, ierr.ErrNotFound
	}
	if upd.Active != nil {
		k.Active = *upd.Active
	}
	if upd.Description != nil {
		k.Description = *upd.Description
	}
	cp := *k
	return &cp, nil
}

func (m memKeys) Delete(_ context.Context, owner, id uuid.UUID) (*apikey.APIKey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k, ok := m.keys[id]
	if !ok || k.OwnerID != owner {
		return nil, ierr.ErrNotFound
	}
	delete(m.keys, id)
	return k, nil
}

func (m memKeys) UpdateLastUsed(_ context.Context, id uuid.UUID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if k, ok := m.keys[id]; ok {
		k.LastUsedAt = &at
	}
	return nil
}

func (m memKeys) DeactivateExpired(_ context.Context, now time.Time) ([]*apikey.APIKey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*apikey.APIKey{}
	for _, k := range m.keys {
		if k.Active && k.Expired(now) {
			k.Active = false
			out = append(out, k)
		}
	}
	return out, nil
}

type memSchemas struct{ *memStore }

func (m memSchemas) Create(_ context.Context, s *schema.Schema) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, other := range m.schemas {
		if other.Slug == s.Slug {
			return ierr.ErrSlugTaken
		}
	}
	cp := *s
	m.schemas[s.ID] = &cp
	return nil
}

func (m memSchemas) FindByID(_ context.Context, owner, id uuid.UUID) (*schema.Schema, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.schemas[id]
	if !ok || s.OwnerID != owner {
		return nil, ierr.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m memSchemas) ListByOwner(_ context.Context, owner uuid.UUID) ([]*schema.Schema, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*schema.Schema{}
	for _, s := range m.schemas {
		if s.OwnerID == owner {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m memSchemas) Update(_ context.Context, s *schema.Schema) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.schemas[s.ID]
	if !ok || cur.OwnerID != s.OwnerID {
		return ierr.ErrNotFound
	}
	cp := *s
	m.schemas[s.ID] = &cp
	return nil
}

func (m memSchemas) Delete(_ context.Context, owner, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.schemas[id]
	if !ok || s.OwnerID != owner {
		return ierr.ErrNotFound
	}
	delete(m.schemas, id)
	for cid, c := range m.collections {
		if c.SchemaID == id {
			delete(m.collections, cid)
		}
	}
	return nil
}

func (m memSchemas) SlugExists(_ context.Context, slug string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.schemas {
		if s.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

type memCollections struct{ *memStore }

func (m memCollections) Create(_ context.Context, c *collection.Collection) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.collections[c.ID] = &cp
	return nil
}

func (m memCollections) FindByID(_ context.Context, owner, id uuid.UUID) (*collection.Collection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.collections[id]
	if !ok || c.OwnerID != owner {
		return nil, ierr.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m memCollections) FindPublished(ctx context.Context, owner, id uuid.UUID) (*collection.Collection, error) {
	c, err := m.FindByID(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	if !c.Published {
		return nil, ierr.ErrNotFound
	}
	return c, nil
}

func (m memCollections) List(_ context.Context, f collection.ListFilter) ([]*collection.Collection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*collection.Collection{}
	for _, c := range m.collections {
		if c.OwnerID != f.OwnerID ||
			(f.SchemaID != nil && c.SchemaID != *f.SchemaID) ||
			(f.Published != nil && c.Published != *f.Published) ||
			(f.ExcludeID != nil && c.ID == *f.ExcludeID) ||
			(f.ItemsOnly && !c.HasData()) {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m memCollections) Update(_ context.Context, owner, id uuid.UUID, upd collection.Update) (*collection.Collection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.collections[id]
	if !ok || c.OwnerID != owner {
		return nil, ierr.ErrNotFound
	}
	if upd.Data != nil {
		c.Data = upd.Data
	}
	if upd.Published != nil {
		c.Published = *upd.Published
	}
	cp := *c
	return &cp, nil
}

func (m memCollections) Delete(_ context.Context, owner, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.collections[id]
	if !ok || c.OwnerID != owner {
		return ierr.ErrNotFound
	}
	delete(m.collections, id)
	return nil
}

type memPopups struct{ *memStore }

func (m memPopups) Create(_ context.Context, p *popup.Popup) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.popups[p.ID] = &cp
	return nil
}

func (m memPopups) FindByID(_ context.Context, owner, id uuid.UUID) (*popup.Popup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.popups[id]
	if !ok || p.OwnerID != owner {
		return nil, ierr.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m memPopups) ListByOwner(_ context.Context, owner uuid.UUID, activeOnly bool) ([]*popup.Popup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*popup.Popup{}
	for _, p := range m.popups {
		if p.OwnerID == owner && (!activeOnly || p.IsActive) {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m memPopups) Update(_ context.Context, owner, id uuid.UUID, upd popup.Update) (*popup.Popup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.popups[id]
	if !ok || p.OwnerID != owner {
		return nil, ierr.ErrNotFound
	}
	if upd.Name != nil {
		p.Name = *upd.Name
	}
	if upd.IsActive != nil {
		p.IsActive = *upd.IsActive
	}
	if upd.DisplayRules != nil {
		p.DisplayRules = *upd.DisplayRules
	}
	cp := *p
	return &cp, nil
}

func (m memPopups) Delete(_ context.Context, owner, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.popups[id]
	if !ok || p.OwnerID != owner {
		return ierr.ErrNotFound
	}
	delete(m.popups, id)
	return nil
}

type memProfiles struct{ *memStore }

func (m memProfiles) FindOrCreate(_ context.Context, p *profile.Profile) (*profile.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.profiles[p.ID]; ok {
		cp := *existing
		return &cp, nil
	}
	cp := *p
	m.profiles[p.ID] = &cp
	return p, nil
}

type memSubmissions struct{ *memStore }

func (m memSubmissions) Create(_ context.Context, s *submission.Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.submissions = append(m.submissions, &cp)
	return nil
}

func (m memSubmissions) List(_ context.Context, f submission.ListFilter) ([]*submission.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*submission.Submission{}
	for _, s := range m.submissions {
		if s.OwnerID != f.OwnerID || (f.FormName != "" && s.FormName != f.FormName) {
			continue
		}
		cp := *s
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SubmittedAt.After(out[j].SubmittedAt) })
	if f.Offset >= len(out) {
		return []*submission.Submission{}, nil
	}
	out = out[f.Offset:]
	if f.Limit > 0 && f.Limit < len(out) {
		out = out[:f.Limit]
	}
	return out, nil
}
