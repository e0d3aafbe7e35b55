package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/patrickassako/triomphe-immobilier/cache"
	"github.com/patrickassako/triomphe-immobilier/models"
	"github.com/patrickassako/triomphe-immobilier/storage"
)

type fakePropertyStore struct {
	searchCalls   int
	countCalls    int
	featuredCalls int

	properties  []models.Property
	total       int
	featured    []models.Property
	featuredErr error

	created *models.Property
	updated *models.Property
	byID    map[uuid.UUID]*models.Property
	views   int
	images  []models.ImageInput
	feats   []uuid.UUID
}

func (f *fakePropertyStore) SearchProperties(ctx context.Context, _ storage.PropertyFilter) ([]models.Property, error) {
	f.searchCalls++
	return f.properties, nil
}

func (f *fakePropertyStore) CountProperties(ctx context.Context, _ storage.PropertyFilter) (int, error) {
	f.countCalls++
	return f.total, nil
}

func (f *fakePropertyStore) FeaturedProperties(ctx context.Context, limit int) ([]models.Property, error) {
	f.featuredCalls++
	if f.featuredErr != nil {
		return nil, f.featuredErr
	}
	return f.featured, nil
}

func (f *fakePropertyStore) GetPropertyByID(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	return f.byID[id], nil
}

func (f *fakePropertyStore) GetPropertyBySlug(ctx context.Context, slug string) (*models.Property, error) {
	for _, p := range f.byID {
		if p.Slug == slug {
			return p, nil
		}
	}
	return nil, nil
}

func (f *fakePropertyStore) CreateProperty(ctx context.Context, p *models.Property) error {
	f.created = p
	return nil
}

func (f *fakePropertyStore) UpdateProperty(ctx context.Context, p *models.Property) error {
	f.updated = p
	return nil
}

func (f *fakePropertyStore) DeleteProperty(ctx context.Context, id uuid.UUID) error { return nil }

func (f *fakePropertyStore) IncrementViews(ctx context.Context, id uuid.UUID) error {
	f.views++
	return nil
}

func (f *fakePropertyStore) ReplaceImages(ctx context.Context, _ uuid.UUID, images []models.ImageInput) error {
	f.images = images
	return nil
}

func (f *fakePropertyStore) ReplaceFeatures(ctx context.Context, _ uuid.UUID, ids []uuid.UUID) error {
	f.feats = ids
	return nil
}

func newListing(store *fakePropertyStore) *ListingService {
	return NewListingService(store,
		cache.NewTTL(5*time.Minute, nil),
		cache.NewStaleTTL(5*time.Minute, nil),
		nil)
}

func TestSearchCachesIdenticalFilters(t *testing.T) {
	store := &fakePropertyStore{total: 1, properties: []models.Property{{Title: "Villa"}}}
	svc := newListing(store)
	f := storage.PropertyFilter{Search: "villa", Page: 1, Limit: 12}

	for i := 0; i < 3; i++ {
		res, err := svc.Search(context.Background(), f)
		if err != nil {
			t.Fatalf("search: %v", err)
		}
		if res.Total != 1 {
			t.Fatalf("total = %d, want 1", res.Total)
		}
	}

	if store.searchCalls != 1 || store.countCalls != 1 {
		t.Fatalf("store hit %d/%d times, want 1/1", store.searchCalls, store.countCalls)
	}

	// A different filter must miss.
	f.Page = 2
	if _, err := svc.Search(context.Background(), f); err != nil {
		t.Fatalf("search page 2: %v", err)
	}
	if store.searchCalls != 2 {
		t.Fatalf("store hit %d times after new filter, want 2", store.searchCalls)
	}
}

func TestSearchTotalPages(t *testing.T) {
	cases := []struct {
		total, limit, want int
	}{
		{0, 12, 0},
		{1, 12, 1},
		{12, 12, 1},
		{13, 12, 2},
		{25, 12, 3},
	}
	for _, c := range cases {
		store := &fakePropertyStore{total: c.total}
		res, err := newListing(store).Search(context.Background(), storage.PropertyFilter{Limit: c.limit})
		if err != nil {
			t.Fatalf("search: %v", err)
		}
		if res.TotalPages != c.want {
			t.Errorf("totalPages(%d/%d) = %d, want %d", c.total, c.limit, res.TotalPages, c.want)
		}
	}
}

func TestSearchPageBeyondEnd(t *testing.T) {
	store := &fakePropertyStore{total: 5, properties: nil}
	res, err := newListing(store).Search(context.Background(), storage.PropertyFilter{Page: 99, Limit: 12})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if res.Data == nil || len(res.Data) != 0 {
		t.Fatalf("data = %v, want empty slice", res.Data)
	}
	if res.Page != 99 || res.Total != 5 || res.TotalPages != 1 {
		t.Fatalf("envelope = %+v", res)
	}
}

func TestFeaturedServesStaleOnError(t *testing.T) {
	store := &fakePropertyStore{featured: []models.Property{{Title: "Villa Bastos"}}}
	clock := &fakeClock{t: time.Now()}
	svc := NewListingService(store, cache.NewTTL(5*time.Minute, clock), cache.NewStaleTTL(5*time.Minute, clock), nil)

	first, err := svc.Featured(context.Background(), 6)
	if err != nil || len(first) != 1 {
		t.Fatalf("featured = %v, %v", first, err)
	}

	// Entry expires, then the backend starts failing.
	clock.advance(6 * time.Minute)
	store.featuredErr = errors.New("connection refused")

	again, err := svc.Featured(context.Background(), 6)
	if err != nil {
		t.Fatalf("expected stale fallback, got error: %v", err)
	}
	if len(again) != 1 || again[0].Title != "Villa Bastos" {
		t.Fatalf("stale = %v", again)
	}
}

func TestFeaturedStaleFallbackSurvivesSweep(t *testing.T) {
	store := &fakePropertyStore{featured: []models.Property{{Title: "Villa Bastos"}}}
	clock := &fakeClock{t: time.Now()}
	featured := cache.NewStaleTTL(5*time.Minute, clock)
	svc := NewListingService(store, cache.NewTTL(5*time.Minute, clock), featured, nil)

	if _, err := svc.Featured(context.Background(), 6); err != nil {
		t.Fatalf("featured: %v", err)
	}

	// Entry expires and the janitor sweeps before the outage begins.
	clock.advance(6 * time.Minute)
	featured.Sweep()
	store.featuredErr = errors.New("connection refused")

	again, err := svc.Featured(context.Background(), 6)
	if err != nil {
		t.Fatalf("stale fallback lost after sweep: %v", err)
	}
	if len(again) != 1 || again[0].Title != "Villa Bastos" {
		t.Fatalf("stale = %v", again)
	}
}

func TestFeaturedErrorWithNoStaleEntry(t *testing.T) {
	store := &fakePropertyStore{featuredErr: errors.New("down")}
	if _, err := newListing(store).Featured(context.Background(), 6); err == nil {
		t.Fatal("expected error with empty cache")
	}
}

func TestCreateDerivesSlug(t *testing.T) {
	store := &fakePropertyStore{}
	title := "Villa moderne à Bastos"
	price := 150000.0
	p, err := newListing(store).Create(context.Background(), PropertyInput{Title: &title, Price: &price}, nil, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.Slug != "villa-moderne-a-bastos" {
		t.Fatalf("slug = %q", p.Slug)
	}
	if store.created == nil {
		t.Fatal("store insert not called")
	}
	if p.Currency != "XAF" || p.Status != models.PropertyStatusAvailable {
		t.Fatalf("defaults not applied: %+v", p)
	}
}

func TestCreateRequiresTitleAndPrice(t *testing.T) {
	store := &fakePropertyStore{}
	svc := newListing(store)
	title := "Ok"

	if _, err := svc.Create(context.Background(), PropertyInput{}, nil, nil); err == nil {
		t.Fatal("expected validation error for missing title")
	}
	if _, err := svc.Create(context.Background(), PropertyInput{Title: &title}, nil, nil); err == nil {
		t.Fatal("expected validation error for missing price")
	}
	var verr *ValidationError
	_, err := svc.Create(context.Background(), PropertyInput{Title: &title}, nil, nil)
	if !errors.As(err, &verr) {
		t.Fatalf("error type = %T", err)
	}
}

func TestUpdateReslugsOnTitleChange(t *testing.T) {
	id := uuid.New()
	store := &fakePropertyStore{byID: map[uuid.UUID]*models.Property{
		id: {ID: id, Title: "Ancien titre", Slug: "ancien-titre"},
	}}
	title := "Nouveau titre"
	p, err := newListing(store).Update(context.Background(), id, PropertyInput{Title: &title})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if p.Slug != "nouveau-titre" {
		t.Fatalf("slug = %q", p.Slug)
	}
}

func TestGetBySlugBumpsViews(t *testing.T) {
	id := uuid.New()
	store := &fakePropertyStore{byID: map[uuid.UUID]*models.Property{
		id: {ID: id, Slug: "villa", ViewsCount: 3},
	}}
	p, err := newListing(store).GetBySlug(context.Background(), "villa")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if store.views != 1 {
		t.Fatalf("increment called %d times", store.views)
	}
	if p.ViewsCount != 4 {
		t.Fatalf("views = %d, want 4", p.ViewsCount)
	}
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }
