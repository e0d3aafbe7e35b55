package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/patrickassako/triomphe-immobilier/cache"
	"github.com/patrickassako/triomphe-immobilier/models"
)

// ActivityStore is the slice of the Postgres store the activity feed needs.
type ActivityStore interface {
	RecentProperties(ctx context.Context, limit int) ([]models.Property, error)
	RecentContacts(ctx context.Context, limit int) ([]models.Contact, error)
	RecentUsers(ctx context.Context, limit int) ([]models.User, error)
}

// ActivityService assembles the dashboard activity feed from the newest
// properties, leads and accounts.
type ActivityService struct {
	store ActivityStore
	clock cache.Clock
}

func NewActivityService(store ActivityStore) *ActivityService {
	return &ActivityService{store: store, clock: cache.RealClock{}}
}

// Recent merges the newest rows of each source, newest first, capped at
// limit. Per-source fetch sizes are fixed so one chatty source cannot crowd
// out the others before the merge.
func (s *ActivityService) Recent(ctx context.Context, limit int) ([]models.ActivityItem, error) {
	if limit < 1 {
		limit = 10
	}

	props, err := s.store.RecentProperties(ctx, 5)
	if err != nil {
		return nil, fmt.Errorf("recent properties: %w", err)
	}
	contacts, err := s.store.RecentContacts(ctx, 5)
	if err != nil {
		return nil, fmt.Errorf("recent contacts: %w", err)
	}
	users, err := s.store.RecentUsers(ctx, 3)
	if err != nil {
		return nil, fmt.Errorf("recent users: %w", err)
	}

	now := s.clock.Now()
	items := make([]models.ActivityItem, 0, len(props)+len(contacts)+len(users))

	for _, p := range props {
		items = append(items, models.ActivityItem{
			ID:          "property-" + p.ID.String(),
			Type:        models.ActivityTypeProperty,
			Title:       "Nouvelle propriété ajoutée",
			Description: p.Title,
			Time:        timeAgo(now, p.CreatedAt),
			Status:      p.Status,
			CreatedAt:   p.CreatedAt,
			Metadata:    map[string]interface{}{"slug": p.Slug, "price": p.Price},
		})
	}
	for _, c := range contacts {
		items = append(items, models.ActivityItem{
			ID:          "contact-" + c.ID.String(),
			Type:        models.ActivityTypeContact,
			Title:       "Nouveau message de contact",
			Description: c.FirstName + " " + c.LastName,
			Time:        timeAgo(now, c.CreatedAt),
			Status:      c.Status,
			CreatedAt:   c.CreatedAt,
			Metadata:    map[string]interface{}{"email": c.Email, "subject": c.Subject},
		})
	}
	for _, u := range users {
		items = append(items, models.ActivityItem{
			ID:          "user-" + u.ID.String(),
			Type:        models.ActivityTypeUser,
			Title:       "Nouvel utilisateur inscrit",
			Description: u.FirstName + " " + u.LastName,
			Time:        timeAgo(now, u.CreatedAt),
			Status:      u.Role,
			CreatedAt:   u.CreatedAt,
			Metadata:    map[string]interface{}{"email": u.Email},
		})
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

// timeAgo renders a relative French timestamp the way the dashboard shows it.
func timeAgo(now, t time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "À l'instant"
	case d < time.Hour:
		n := int(d.Minutes())
		if n == 1 {
			return "Il y a 1 minute"
		}
		return fmt.Sprintf("Il y a %d minutes", n)
	case d < 24*time.Hour:
		n := int(d.Hours())
		if n == 1 {
			return "Il y a 1 heure"
		}
		return fmt.Sprintf("Il y a %d heures", n)
	default:
		n := int(d.Hours() / 24)
		if n == 1 {
			return "Il y a 1 jour"
		}
		return fmt.Sprintf("Il y a %d jours", n)
	}
}
