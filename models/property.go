package models

import (
	"time"

	"github.com/google/uuid"
)

// Property is a catalog listing (a physical good offered for sale or rent).
type Property struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	Title        string     `json:"title" db:"title"`
	Slug         string     `json:"slug" db:"slug"`
	Description  string     `json:"description" db:"description"`
	Price        float64    `json:"price" db:"price"`
	Currency     string     `json:"currency" db:"currency"`
	PriceType    string     `json:"price_type" db:"price_type"`       // fixed, per_month, per_sqm_per_month
	PropertyType string     `json:"property_type" db:"property_type"` // apartment, house, villa, land, commercial, office
	Status       string     `json:"status" db:"status"`               // available, sold, rented, pending
	Bedrooms     *int       `json:"bedrooms" db:"bedrooms"`
	Bathrooms    *int       `json:"bathrooms" db:"bathrooms"`
	SurfaceArea  *int       `json:"surface_area" db:"surface_area"`
	LandSize     *int       `json:"land_size" db:"land_size"`
	Address      string     `json:"address" db:"address"`
	LocationID   *uuid.UUID `json:"location_id" db:"location_id"`
	CategoryID   *uuid.UUID `json:"category_id" db:"category_id"`
	AgentID      *uuid.UUID `json:"agent_id" db:"agent_id"`
	MetaTitle    string     `json:"meta_title,omitempty" db:"meta_title"`
	MetaDesc     string     `json:"meta_description,omitempty" db:"meta_description"`
	IsPublished  bool       `json:"is_published" db:"is_published"`
	IsFeatured   bool       `json:"is_featured" db:"is_featured"`
	ViewsCount   int        `json:"views_count" db:"views_count"`
	SharesCount  *int       `json:"shares_count,omitempty" db:"shares_count"` // nil until the shares migration lands
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`

	// Loaded relations (nil unless requested)
	Location *Location       `json:"location,omitempty"`
	Category *Category       `json:"category,omitempty"`
	Images   []PropertyImage `json:"images,omitempty"`
	Features []Feature       `json:"features,omitempty"`
}

// PropertyImage links an image URL to a property. Exactly one image per
// property is expected to be primary; the attach logic reassigns it, the
// schema does not enforce it.
type PropertyImage struct {
	ID             uuid.UUID `json:"id" db:"id"`
	PropertyID     uuid.UUID `json:"property_id" db:"property_id"`
	URL            string    `json:"url" db:"url"`
	AltText        string    `json:"alt_text" db:"alt_text"`
	IsPrimary      bool      `json:"is_primary" db:"is_primary"`
	SortOrder      int       `json:"sort_order" db:"sort_order"`
	MirrorURL      *string   `json:"mirror_url,omitempty" db:"mirror_url"` // set once mirrored to object storage
	MirrorStatus   string    `json:"mirror_status" db:"mirror_status"`     // pending, uploading, uploaded, failed
	MirrorAttempts int       `json:"mirror_attempts" db:"mirror_attempts"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// ImageInput is the attach payload used by the admin property form.
type ImageInput struct {
	URL       string `json:"url"`
	AltText   string `json:"alt_text"`
	IsPrimary bool   `json:"is_primary"`
}

// Property type (canonical English vocabulary at the API boundary)
const (
	PropertyTypeApartment  = "apartment"
	PropertyTypeHouse      = "house"
	PropertyTypeVilla      = "villa"
	PropertyTypeLand       = "land"
	PropertyTypeCommercial = "commercial"
	PropertyTypeOffice     = "office"
)

// Property status
const (
	PropertyStatusAvailable = "available"
	PropertyStatusSold      = "sold"
	PropertyStatusRented    = "rented"
	PropertyStatusPending   = "pending"
)

// Price types
const (
	PriceTypeFixed          = "fixed"
	PriceTypePerMonth       = "per_month"
	PriceTypePerSqmPerMonth = "per_sqm_per_month"
)

// Listing sort keys
const (
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortDateAsc   = "date_asc"
	SortDateDesc  = "date_desc"
)

// Image mirror status
const (
	MirrorStatusPending   = "pending"
	MirrorStatusUploading = "uploading"
	MirrorStatusUploaded  = "uploaded"
	MirrorStatusFailed    = "failed"
)
