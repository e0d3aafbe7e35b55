package services

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickassako/triomphe-immobilier/cache"
	"github.com/patrickassako/triomphe-immobilier/storage"
)

// AnalyticsStore is the slice of the Postgres store the analytics service
// needs.
type AnalyticsStore interface {
	GetOverviewCounts(ctx context.Context, since time.Time) (*storage.OverviewCounts, error)
	PropertiesByType(ctx context.Context, since *time.Time) (map[string]int, error)
	PropertiesByStatus(ctx context.Context, since time.Time) (map[string]int, error)
	UsersByRole(ctx context.Context, since *time.Time) (map[string]int, error)
	ContactsByStatusSince(ctx context.Context, since time.Time) (map[string]int, error)
	CreatedOverTime(ctx context.Context, table string, since time.Time, groupBy string) (map[string]int, error)
	AvgPriceByType(ctx context.Context, since time.Time) (map[string]int, error)
}

// AnalyticsService serves the admin analytics screens. Every report takes a
// named period; unknown periods fall back to the default.
type AnalyticsService struct {
	store AnalyticsStore
	clock cache.Clock
}

func NewAnalyticsService(store AnalyticsStore) *AnalyticsService {
	return &AnalyticsService{store: store, clock: cache.RealClock{}}
}

// periodStart maps a report period name to its start time and the bucket
// granularity for the over-time series. Unknown periods fall back to a month.
func periodStart(now time.Time, period string) (time.Time, string) {
	switch period {
	case "week", "7d":
		return now.AddDate(0, 0, -7), "day"
	case "year", "1y":
		return now.AddDate(-1, 0, 0), "month"
	default: // month
		return now.AddDate(0, 0, -30), "day"
	}
}

// Overview returns the headline counts for the analytics dashboard.
func (s *AnalyticsService) Overview(ctx context.Context, period string) (map[string]interface{}, error) {
	since, _ := periodStart(s.clock.Now(), period)

	counts, err := s.store.GetOverviewCounts(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("overview counts: %w", err)
	}
	byType, err := s.store.PropertiesByType(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("properties by type: %w", err)
	}
	byRole, err := s.store.UsersByRole(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("users by role: %w", err)
	}

	return map[string]interface{}{
		"total_properties":   counts.TotalProperties,
		"active_properties":  counts.ActiveProperties,
		"total_users":        counts.TotalUsers,
		"total_contacts":     counts.TotalContacts,
		"recent_contacts":    counts.RecentContacts,
		"total_views":        counts.TotalViews,
		"properties_by_type": byType,
		"users_by_role":      byRole,
	}, nil
}

// Properties returns the property breakdowns for the period.
func (s *AnalyticsService) Properties(ctx context.Context, period string) (map[string]interface{}, error) {
	since, groupBy := periodStart(s.clock.Now(), period)

	byType, err := s.store.PropertiesByType(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("properties by type: %w", err)
	}
	byStatus, err := s.store.PropertiesByStatus(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("properties by status: %w", err)
	}
	overTime, err := s.store.CreatedOverTime(ctx, "properties", since, groupBy)
	if err != nil {
		return nil, fmt.Errorf("properties over time: %w", err)
	}
	avgPrice, err := s.store.AvgPriceByType(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("avg price by type: %w", err)
	}

	return map[string]interface{}{
		"by_type":           byType,
		"by_status":         byStatus,
		"over_time":         overTime,
		"avg_price_by_type": avgPrice,
	}, nil
}

// Users returns the account breakdowns for the period.
func (s *AnalyticsService) Users(ctx context.Context, period string) (map[string]interface{}, error) {
	since, groupBy := periodStart(s.clock.Now(), period)

	byRole, err := s.store.UsersByRole(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("users by role: %w", err)
	}
	overTime, err := s.store.CreatedOverTime(ctx, "users", since, groupBy)
	if err != nil {
		return nil, fmt.Errorf("users over time: %w", err)
	}

	return map[string]interface{}{
		"by_role":   byRole,
		"over_time": overTime,
	}, nil
}

// Contacts returns the lead breakdowns for the period.
func (s *AnalyticsService) Contacts(ctx context.Context, period string) (map[string]interface{}, error) {
	since, groupBy := periodStart(s.clock.Now(), period)

	byStatus, err := s.store.ContactsByStatusSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("contacts by status: %w", err)
	}
	overTime, err := s.store.CreatedOverTime(ctx, "contacts", since, groupBy)
	if err != nil {
		return nil, fmt.Errorf("contacts over time: %w", err)
	}

	return map[string]interface{}{
		"by_status": byStatus,
		"over_time": overTime,
	}, nil
}
