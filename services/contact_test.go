package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/patrickassako/triomphe-immobilier/models"
	"github.com/patrickassako/triomphe-immobilier/storage"
)

type fakeContactStore struct {
	inserted *models.Contact
	updated  *models.Contact
	byID     map[uuid.UUID]*models.Contact
	list     []models.Contact
	total    int
	statuses map[string]int
	recent   int
}

func (f *fakeContactStore) InsertContact(ctx context.Context, c *models.Contact) error {
	f.inserted = c
	return nil
}

func (f *fakeContactStore) ListContacts(ctx context.Context, _ storage.ContactFilter) ([]models.Contact, error) {
	return f.list, nil
}

func (f *fakeContactStore) CountContacts(ctx context.Context, _ storage.ContactFilter) (int, error) {
	return f.total, nil
}

func (f *fakeContactStore) GetContactByID(ctx context.Context, id uuid.UUID) (*models.Contact, error) {
	return f.byID[id], nil
}

func (f *fakeContactStore) UpdateContact(ctx context.Context, c *models.Contact) error {
	f.updated = c
	return nil
}

func (f *fakeContactStore) DeleteContact(ctx context.Context, id uuid.UUID) error { return nil }

func (f *fakeContactStore) ContactStatusCounts(ctx context.Context) (map[string]int, error) {
	return f.statuses, nil
}

func (f *fakeContactStore) CountContactsSince(ctx context.Context, since time.Time) (int, error) {
	return f.recent, nil
}

func validInput() ContactInput {
	return ContactInput{
		FirstName: "Jean",
		LastName:  "Mbarga",
		Email:     "jean@example.com",
		Phone:     "+237 6 99 88 77 66",
		Message:   "Je suis intéressé par cette villa.",
	}
}

func TestSubmitValid(t *testing.T) {
	store := &fakeContactStore{}
	svc := NewContactService(store, nil)

	c, err := svc.Submit(context.Background(), validInput())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if c.Status != models.ContactStatusNew {
		t.Fatalf("status = %q, want new", c.Status)
	}
	if store.inserted == nil {
		t.Fatal("store insert not called")
	}
}

func TestSubmitMessageLengthBoundary(t *testing.T) {
	svc := NewContactService(&fakeContactStore{}, nil)

	in := validInput()
	in.Message = "123456789" // 9 chars
	if _, err := svc.Submit(context.Background(), in); err == nil {
		t.Fatal("9-char message should fail")
	}

	in.Message = "1234567890" // 10 chars
	if _, err := svc.Submit(context.Background(), in); err != nil {
		t.Fatalf("10-char message should pass: %v", err)
	}
}

func TestSubmitJoinsAllErrors(t *testing.T) {
	svc := NewContactService(&fakeContactStore{}, nil)

	_, err := svc.Submit(context.Background(), ContactInput{Email: "pas-un-email", Message: "court"})
	if err == nil {
		t.Fatal("expected validation error")
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error type = %T", err)
	}
	if len(verr.Messages) != 4 {
		t.Fatalf("got %d messages, want 4: %v", len(verr.Messages), verr.Messages)
	}
	joined := verr.Error()
	if !strings.Contains(joined, ", ") {
		t.Fatalf("messages not comma-joined: %q", joined)
	}
	if !strings.Contains(joined, "Le prénom est requis") || !strings.Contains(joined, "L'adresse email est invalide") {
		t.Fatalf("missing expected message: %q", joined)
	}
}

func TestSubmitAcceptsLegacyNameSpellings(t *testing.T) {
	store := &fakeContactStore{}
	svc := NewContactService(store, nil)

	in := validInput()
	in.FirstName, in.LastName = "", ""
	in.LegacyFirstName, in.LegacyLastName = "Jean", "Mbarga"

	c, err := svc.Submit(context.Background(), in)
	if err != nil {
		t.Fatalf("legacy spellings should pass: %v", err)
	}
	if c.FirstName != "Jean" || c.LastName != "Mbarga" {
		t.Fatalf("names not folded: %+v", c)
	}

	// Canonical fields win when both spellings are present.
	in = validInput()
	in.LegacyFirstName = "Autre"
	c, err = svc.Submit(context.Background(), in)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if c.FirstName != "Jean" {
		t.Fatalf("first name = %q", c.FirstName)
	}
}

func TestSubmitPhoneOptional(t *testing.T) {
	svc := NewContactService(&fakeContactStore{}, nil)

	in := validInput()
	in.Phone = ""
	if _, err := svc.Submit(context.Background(), in); err != nil {
		t.Fatalf("empty phone should pass: %v", err)
	}

	in.Phone = "abc"
	if _, err := svc.Submit(context.Background(), in); err == nil {
		t.Fatal("malformed phone should fail")
	}
}

func TestUpdateStatusRejectsUnknown(t *testing.T) {
	id := uuid.New()
	store := &fakeContactStore{byID: map[uuid.UUID]*models.Contact{
		id: {ID: id, Status: models.ContactStatusNew},
	}}
	svc := NewContactService(store, nil)

	if _, err := svc.UpdateStatus(context.Background(), id, "archived", nil); err == nil {
		t.Fatal("unknown status should fail")
	}

	c, err := svc.UpdateStatus(context.Background(), id, models.ContactStatusInProgress, nil)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if c.Status != models.ContactStatusInProgress {
		t.Fatalf("status = %q", c.Status)
	}
}

func TestUpdateStatusMissingContact(t *testing.T) {
	svc := NewContactService(&fakeContactStore{byID: map[uuid.UUID]*models.Contact{}}, nil)
	c, err := svc.UpdateStatus(context.Background(), uuid.New(), models.ContactStatusCompleted, nil)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if c != nil {
		t.Fatalf("want nil for missing contact, got %+v", c)
	}
}

func TestStats(t *testing.T) {
	store := &fakeContactStore{
		statuses: map[string]int{
			models.ContactStatusNew:        4,
			models.ContactStatusInProgress: 2,
			models.ContactStatusCompleted:  1,
		},
		recent: 3,
	}
	svc := NewContactService(store, nil)

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Total != 7 || stats.New != 4 || stats.InProgress != 2 || stats.Cancelled != 0 {
		t.Fatalf("stats = %+v", stats)
	}
	if stats.Recent24h != 3 {
		t.Fatalf("recent = %d", stats.Recent24h)
	}
}
