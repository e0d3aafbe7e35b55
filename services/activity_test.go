package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/patrickassako/triomphe-immobilier/models"
)

type fakeActivityStore struct {
	properties []models.Property
	contacts   []models.Contact
	users      []models.User
}

func (f *fakeActivityStore) RecentProperties(ctx context.Context, limit int) ([]models.Property, error) {
	return f.properties, nil
}

func (f *fakeActivityStore) RecentContacts(ctx context.Context, limit int) ([]models.Contact, error) {
	return f.contacts, nil
}

func (f *fakeActivityStore) RecentUsers(ctx context.Context, limit int) ([]models.User, error) {
	return f.users, nil
}

func TestRecentMergesNewestFirst(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	store := &fakeActivityStore{
		properties: []models.Property{
			{ID: uuid.New(), Title: "Villa", CreatedAt: now.Add(-1 * time.Hour)},
		},
		contacts: []models.Contact{
			{ID: uuid.New(), FirstName: "Jean", LastName: "Mbarga", CreatedAt: now.Add(-10 * time.Minute)},
		},
		users: []models.User{
			{ID: uuid.New(), FirstName: "Alice", LastName: "Ngo", CreatedAt: now.Add(-3 * time.Hour)},
		},
	}
	svc := NewActivityService(store)
	svc.clock = &fakeClock{t: now}

	items, err := svc.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("got %d items, want 3", len(items))
	}
	if items[0].Type != models.ActivityTypeContact || items[1].Type != models.ActivityTypeProperty || items[2].Type != models.ActivityTypeUser {
		t.Fatalf("order = %s, %s, %s", items[0].Type, items[1].Type, items[2].Type)
	}
	if items[0].Time != "Il y a 10 minutes" {
		t.Fatalf("time label = %q", items[0].Time)
	}
}

func TestRecentHonorsLimit(t *testing.T) {
	now := time.Now()
	store := &fakeActivityStore{}
	for i := 0; i < 5; i++ {
		store.properties = append(store.properties, models.Property{
			ID: uuid.New(), CreatedAt: now.Add(-time.Duration(i) * time.Minute),
		})
	}
	items, err := NewActivityService(store).Recent(context.Background(), 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
}

func TestTimeAgoFrench(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		ago  time.Duration
		want string
	}{
		{30 * time.Second, "À l'instant"},
		{1 * time.Minute, "Il y a 1 minute"},
		{45 * time.Minute, "Il y a 45 minutes"},
		{2 * time.Hour, "Il y a 2 heures"},
		{26 * time.Hour, "Il y a 1 jour"},
		{75 * time.Hour, "Il y a 3 jours"},
	}
	for _, c := range cases {
		if got := timeAgo(now, now.Add(-c.ago)); got != c.want {
			t.Errorf("timeAgo(-%v) = %q, want %q", c.ago, got, c.want)
		}
	}
}
