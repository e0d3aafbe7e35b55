package services

import (
	"context"
	"testing"
	"time"

	"github.com/patrickassako/triomphe-immobilier/storage"
)

type fakeAnalyticsStore struct {
	lastSince   time.Time
	lastGroupBy string
	lastTable   string
}

func (f *fakeAnalyticsStore) GetOverviewCounts(ctx context.Context, since time.Time) (*storage.OverviewCounts, error) {
	f.lastSince = since
	return &storage.OverviewCounts{TotalProperties: 10, TotalViews: 250}, nil
}

func (f *fakeAnalyticsStore) PropertiesByType(ctx context.Context, since *time.Time) (map[string]int, error) {
	return map[string]int{"villa": 4}, nil
}

func (f *fakeAnalyticsStore) PropertiesByStatus(ctx context.Context, since time.Time) (map[string]int, error) {
	return map[string]int{"available": 8}, nil
}

func (f *fakeAnalyticsStore) UsersByRole(ctx context.Context, since *time.Time) (map[string]int, error) {
	return map[string]int{"client": 5}, nil
}

func (f *fakeAnalyticsStore) ContactsByStatusSince(ctx context.Context, since time.Time) (map[string]int, error) {
	return map[string]int{"new": 2}, nil
}

func (f *fakeAnalyticsStore) CreatedOverTime(ctx context.Context, table string, since time.Time, groupBy string) (map[string]int, error) {
	f.lastTable = table
	f.lastSince = since
	f.lastGroupBy = groupBy
	return map[string]int{"2026-08-01": 3}, nil
}

func (f *fakeAnalyticsStore) AvgPriceByType(ctx context.Context, since time.Time) (map[string]int, error) {
	return map[string]int{"villa": 120000}, nil
}

func TestPeriodStart(t *testing.T) {
	now := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		period  string
		days    int
		groupBy string
	}{
		{"week", 7, "day"},
		{"month", 30, "day"},
		{"", 30, "day"},
		{"nonsense", 30, "day"},
	}
	for _, c := range cases {
		since, groupBy := periodStart(now, c.period)
		if got := int(now.Sub(since).Hours() / 24); got != c.days {
			t.Errorf("periodStart(%q) span = %d days, want %d", c.period, got, c.days)
		}
		if groupBy != c.groupBy {
			t.Errorf("periodStart(%q) groupBy = %q, want %q", c.period, groupBy, c.groupBy)
		}
	}

	since, groupBy := periodStart(now, "year")
	if since.Year() != 2025 || groupBy != "month" {
		t.Errorf("periodStart(year) = %v, %q", since, groupBy)
	}
}

func TestPropertiesReportShape(t *testing.T) {
	store := &fakeAnalyticsStore{}
	svc := NewAnalyticsService(store)

	data, err := svc.Properties(context.Background(), "year")
	if err != nil {
		t.Fatalf("properties: %v", err)
	}
	for _, key := range []string{"by_type", "by_status", "over_time", "avg_price_by_type"} {
		if _, ok := data[key]; !ok {
			t.Errorf("missing %q in report", key)
		}
	}
	if store.lastTable != "properties" || store.lastGroupBy != "month" {
		t.Fatalf("over-time call = %q/%q", store.lastTable, store.lastGroupBy)
	}
}

func TestOverviewReport(t *testing.T) {
	svc := NewAnalyticsService(&fakeAnalyticsStore{})

	data, err := svc.Overview(context.Background(), "30d")
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if data["total_properties"] != 10 || data["total_views"] != 250 {
		t.Fatalf("data = %v", data)
	}
	for _, key := range []string{"properties_by_type", "users_by_role"} {
		if _, ok := data[key]; !ok {
			t.Errorf("missing %q in overview", key)
		}
	}
}
