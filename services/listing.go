package services

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/patrickassako/triomphe-immobilier/cache"
	"github.com/patrickassako/triomphe-immobilier/identity"
	"github.com/patrickassako/triomphe-immobilier/models"
	"github.com/patrickassako/triomphe-immobilier/storage"
)

// PropertyStore is the slice of the Postgres store the listing service needs.
type PropertyStore interface {
	SearchProperties(ctx context.Context, f storage.PropertyFilter) ([]models.Property, error)
	CountProperties(ctx context.Context, f storage.PropertyFilter) (int, error)
	FeaturedProperties(ctx context.Context, limit int) ([]models.Property, error)
	GetPropertyByID(ctx context.Context, id uuid.UUID) (*models.Property, error)
	GetPropertyBySlug(ctx context.Context, slug string) (*models.Property, error)
	CreateProperty(ctx context.Context, p *models.Property) error
	UpdateProperty(ctx context.Context, p *models.Property) error
	DeleteProperty(ctx context.Context, id uuid.UUID) error
	IncrementViews(ctx context.Context, id uuid.UUID) error
	ReplaceImages(ctx context.Context, propertyID uuid.UUID, images []models.ImageInput) error
	ReplaceFeatures(ctx context.Context, propertyID uuid.UUID, featureIDs []uuid.UUID) error
}

// ListingService handles catalog search, the result caches and property CRUD.
type ListingService struct {
	store    PropertyStore
	results  *cache.TTL
	featured *cache.TTL
	audit    *AuditService
}

func NewListingService(store PropertyStore, results, featured *cache.TTL, audit *AuditService) *ListingService {
	return &ListingService{
		store:    store,
		results:  results,
		featured: featured,
		audit:    audit,
	}
}

// SearchResult is one page of the catalog plus its pagination envelope.
type SearchResult struct {
	Data       []models.Property `json:"data"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"totalPages"`
}

// Search returns one filtered page. Identical filters within the cache TTL are
// answered from memory without touching storage; mutations never purge
// entries, so a page can be up to one TTL stale.
func (s *ListingService) Search(ctx context.Context, f storage.PropertyFilter) (*SearchResult, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 12
	}

	key := searchCacheKey(f)
	if s.results != nil {
		if cached, ok := s.results.Get(key); ok {
			return cached.(*SearchResult), nil
		}
	}

	data, err := s.store.SearchProperties(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("search properties: %w", err)
	}
	total, err := s.store.CountProperties(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("count properties: %w", err)
	}

	if data == nil {
		data = []models.Property{}
	}

	result := &SearchResult{
		Data:       data,
		Total:      total,
		Page:       f.Page,
		Limit:      f.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(f.Limit))),
	}

	if s.results != nil {
		s.results.Set(key, result)
	}
	return result, nil
}

// searchCacheKey serializes the full filter in a fixed field order so equal
// filters always share an entry.
func searchCacheKey(f storage.PropertyFilter) string {
	loc := ""
	if f.LocationID != nil {
		loc = f.LocationID.String()
	}
	return fmt.Sprintf("properties_s=%s|t=%s|minp=%g|maxp=%g|l=%s|bed=%d|bath=%d|sort=%s|p=%d|n=%d",
		f.Search, f.PropertyType, f.MinPrice, f.MaxPrice, loc, f.Bedrooms, f.Bathrooms, f.SortBy, f.Page, f.Limit)
}

// Featured returns the featured strip for the home page. On a storage error
// an expired cache entry is served rather than the error, so the home page
// survives short backend outages.
func (s *ListingService) Featured(ctx context.Context, limit int) ([]models.Property, error) {
	if limit < 1 {
		limit = 6
	}
	key := fmt.Sprintf("featured_%d", limit)

	if s.featured != nil {
		if cached, ok := s.featured.Get(key); ok {
			return cached.([]models.Property), nil
		}
	}

	data, err := s.store.FeaturedProperties(ctx, limit)
	if err != nil {
		if s.featured != nil {
			if stale, present, _ := s.featured.GetStale(key); present {
				log.Printf("Warning: serving stale featured properties after fetch error: %v", err)
				return stale.([]models.Property), nil
			}
		}
		return nil, fmt.Errorf("featured properties: %w", err)
	}

	if data == nil {
		data = []models.Property{}
	}
	if s.featured != nil {
		s.featured.Set(key, data)
	}
	return data, nil
}

// GetByID fetches one property with relations, nil when absent.
func (s *ListingService) GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	return s.store.GetPropertyByID(ctx, id)
}

// GetBySlug fetches one property for the public detail page and bumps its
// view counter, best effort.
func (s *ListingService) GetBySlug(ctx context.Context, slug string) (*models.Property, error) {
	p, err := s.store.GetPropertyBySlug(ctx, slug)
	if err != nil || p == nil {
		return p, err
	}
	if err := s.store.IncrementViews(ctx, p.ID); err != nil {
		log.Printf("Warning: failed to increment views for %s: %v", p.ID, err)
	} else {
		p.ViewsCount++
	}
	return p, nil
}

// PropertyInput is the create/update payload from the admin form. Pointer
// fields distinguish "absent" from zero on update.
type PropertyInput struct {
	Title        *string    `json:"title"`
	Description  *string    `json:"description"`
	Price        *float64   `json:"price"`
	Currency     *string    `json:"currency"`
	PriceType    *string    `json:"price_type"`
	PropertyType *string    `json:"property_type"`
	Status       *string    `json:"status"`
	Bedrooms     *int       `json:"bedrooms"`
	Bathrooms    *int       `json:"bathrooms"`
	SurfaceArea  *int       `json:"surface_area"`
	LandSize     *int       `json:"land_size"`
	Address      *string    `json:"address"`
	LocationID   *uuid.UUID `json:"location_id"`
	CategoryID   *uuid.UUID `json:"category_id"`
	AgentID      *uuid.UUID `json:"agent_id"`
	MetaTitle    *string    `json:"meta_title"`
	MetaDesc     *string    `json:"meta_description"`
	IsPublished  *bool      `json:"is_published"`
	IsFeatured   *bool      `json:"is_featured"`
}

// Create inserts a property. The slug derives once from the title; inline
// images and features are attached after the insert with no rollback on
// partial failure.
func (s *ListingService) Create(ctx context.Context, in PropertyInput, images []models.ImageInput, featureIDs []uuid.UUID) (*models.Property, error) {
	if in.Title == nil || *in.Title == "" {
		return nil, ErrValidation("Le titre est requis")
	}
	if in.Price == nil || *in.Price <= 0 {
		return nil, ErrValidation("Le prix est requis")
	}

	now := time.Now()
	p := &models.Property{
		ID:           uuid.New(),
		Title:        *in.Title,
		Slug:         identity.Slug(*in.Title),
		Price:        *in.Price,
		Currency:     "XAF",
		PriceType:    models.PriceTypeFixed,
		PropertyType: models.PropertyTypeHouse,
		Status:       models.PropertyStatusAvailable,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	applyPropertyInput(p, in)

	if p.MetaDesc == "" && p.Description != "" {
		p.MetaDesc = Excerpt(p.Description, 160)
	}

	if err := s.store.CreateProperty(ctx, p); err != nil {
		return nil, fmt.Errorf("create property: %w", err)
	}

	if len(images) > 0 {
		if err := s.store.ReplaceImages(ctx, p.ID, images); err != nil {
			log.Printf("Warning: property %s created but images failed: %v", p.ID, err)
		}
	}
	if len(featureIDs) > 0 {
		if err := s.store.ReplaceFeatures(ctx, p.ID, featureIDs); err != nil {
			log.Printf("Warning: property %s created but features failed: %v", p.ID, err)
		}
	}

	s.audit.Record("property.create", p.ID.String(), p.Title)
	return p, nil
}

// Update applies the provided fields to an existing property. The slug is
// re-derived when the title changes.
func (s *ListingService) Update(ctx context.Context, id uuid.UUID, in PropertyInput) (*models.Property, error) {
	p, err := s.store.GetPropertyByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get property: %w", err)
	}
	if p == nil {
		return nil, nil
	}

	if in.Title != nil && *in.Title != p.Title {
		p.Slug = identity.Slug(*in.Title)
	}
	applyPropertyInput(p, in)

	if in.MetaDesc == nil && in.Description != nil {
		p.MetaDesc = Excerpt(p.Description, 160)
	}

	if err := s.store.UpdateProperty(ctx, p); err != nil {
		return nil, fmt.Errorf("update property: %w", err)
	}

	s.audit.Record("property.update", p.ID.String(), p.Title)
	return p, nil
}

func (s *ListingService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.store.DeleteProperty(ctx, id); err != nil {
		return fmt.Errorf("delete property: %w", err)
	}
	s.audit.Record("property.delete", id.String(), "")
	return nil
}

// AttachImages replaces a property's image set.
func (s *ListingService) AttachImages(ctx context.Context, id uuid.UUID, images []models.ImageInput) error {
	if err := s.store.ReplaceImages(ctx, id, images); err != nil {
		return fmt.Errorf("replace images: %w", err)
	}
	s.audit.Record("property.images", id.String(), fmt.Sprintf("%d images", len(images)))
	return nil
}

// AttachFeatures replaces a property's feature set.
func (s *ListingService) AttachFeatures(ctx context.Context, id uuid.UUID, featureIDs []uuid.UUID) error {
	if err := s.store.ReplaceFeatures(ctx, id, featureIDs); err != nil {
		return fmt.Errorf("replace features: %w", err)
	}
	s.audit.Record("property.features", id.String(), fmt.Sprintf("%d features", len(featureIDs)))
	return nil
}

func applyPropertyInput(p *models.Property, in PropertyInput) {
	if in.Title != nil {
		p.Title = *in.Title
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Currency != nil {
		p.Currency = *in.Currency
	}
	if in.PriceType != nil {
		p.PriceType = *in.PriceType
	}
	if in.PropertyType != nil {
		p.PropertyType = *in.PropertyType
	}
	if in.Status != nil {
		p.Status = *in.Status
	}
	if in.Bedrooms != nil {
		p.Bedrooms = in.Bedrooms
	}
	if in.Bathrooms != nil {
		p.Bathrooms = in.Bathrooms
	}
	if in.SurfaceArea != nil {
		p.SurfaceArea = in.SurfaceArea
	}
	if in.LandSize != nil {
		p.LandSize = in.LandSize
	}
	if in.Address != nil {
		p.Address = *in.Address
	}
	if in.LocationID != nil {
		p.LocationID = in.LocationID
	}
	if in.CategoryID != nil {
		p.CategoryID = in.CategoryID
	}
	if in.AgentID != nil {
		p.AgentID = in.AgentID
	}
	if in.MetaTitle != nil {
		p.MetaTitle = *in.MetaTitle
	}
	if in.MetaDesc != nil {
		p.MetaDesc = *in.MetaDesc
	}
	if in.IsPublished != nil {
		p.IsPublished = *in.IsPublished
	}
	if in.IsFeatured != nil {
		p.IsFeatured = *in.IsFeatured
	}
}
