package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patrickassako/triomphe-immobilier/models"
)

// FavoriteStore is the slice of the Postgres store the favorite service needs.
type FavoriteStore interface {
	CountFavorites(ctx context.Context, propertyID uuid.UUID) (int, error)
	GetFavorite(ctx context.Context, userID, propertyID uuid.UUID) (*models.Favorite, error)
	InsertFavorite(ctx context.Context, f *models.Favorite) error
	DeleteFavorite(ctx context.Context, userID, propertyID uuid.UUID) error
	GetShares(ctx context.Context, propertyID uuid.UUID) (int, error)
	IncrementShares(ctx context.Context, propertyID uuid.UUID) (int, error)
}

// FavoriteService handles likes and, when enabled, the share counter.
type FavoriteService struct {
	store           FavoriteStore
	sharesSupported bool
}

func NewFavoriteService(store FavoriteStore, sharesSupported bool) *FavoriteService {
	return &FavoriteService{store: store, sharesSupported: sharesSupported}
}

// Likes returns the like count for a property.
func (s *FavoriteService) Likes(ctx context.Context, propertyID uuid.UUID) (int, error) {
	return s.store.CountFavorites(ctx, propertyID)
}

// IsLiked reports whether the user has liked the property.
func (s *FavoriteService) IsLiked(ctx context.Context, userID, propertyID uuid.UUID) (bool, error) {
	fav, err := s.store.GetFavorite(ctx, userID, propertyID)
	if err != nil {
		return false, err
	}
	return fav != nil, nil
}

// Toggle flips the like state for one user on one property and returns the
// resulting action, "liked" or "unliked", with the new count.
func (s *FavoriteService) Toggle(ctx context.Context, userID, propertyID uuid.UUID) (string, int, error) {
	fav, err := s.store.GetFavorite(ctx, userID, propertyID)
	if err != nil {
		return "", 0, fmt.Errorf("get favorite: %w", err)
	}

	action := "liked"
	if fav != nil {
		if err := s.store.DeleteFavorite(ctx, userID, propertyID); err != nil {
			return "", 0, fmt.Errorf("delete favorite: %w", err)
		}
		action = "unliked"
	} else {
		err := s.store.InsertFavorite(ctx, &models.Favorite{
			ID:         uuid.New(),
			UserID:     userID,
			PropertyID: propertyID,
			CreatedAt:  time.Now(),
		})
		if err != nil {
			return "", 0, fmt.Errorf("insert favorite: %w", err)
		}
	}

	count, err := s.store.CountFavorites(ctx, propertyID)
	if err != nil {
		return "", 0, fmt.Errorf("count favorites: %w", err)
	}
	return action, count, nil
}

// SharesSupported reports whether the share counter is enabled. When it is
// not, handlers advertise the capability as absent instead of failing.
func (s *FavoriteService) SharesSupported() bool {
	return s.sharesSupported
}

// Shares returns the share count for a property.
func (s *FavoriteService) Shares(ctx context.Context, propertyID uuid.UUID) (int, error) {
	return s.store.GetShares(ctx, propertyID)
}

// RecordShare increments the share counter and returns the new value.
func (s *FavoriteService) RecordShare(ctx context.Context, propertyID uuid.UUID) (int, error) {
	return s.store.IncrementShares(ctx, propertyID)
}
