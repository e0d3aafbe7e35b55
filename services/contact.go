package services

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patrickassako/triomphe-immobilier/models"
	"github.com/patrickassako/triomphe-immobilier/storage"
)

// ContactStore is the slice of the Postgres store the contact service needs.
type ContactStore interface {
	InsertContact(ctx context.Context, c *models.Contact) error
	ListContacts(ctx context.Context, f storage.ContactFilter) ([]models.Contact, error)
	CountContacts(ctx context.Context, f storage.ContactFilter) (int, error)
	GetContactByID(ctx context.Context, id uuid.UUID) (*models.Contact, error)
	UpdateContact(ctx context.Context, c *models.Contact) error
	DeleteContact(ctx context.Context, id uuid.UUID) error
	ContactStatusCounts(ctx context.Context) (map[string]int, error)
	CountContactsSince(ctx context.Context, since time.Time) (int, error)
}

// ContactService handles contact form intake and the lead workflow.
type ContactService struct {
	store ContactStore
	audit *AuditService
}

func NewContactService(store ContactStore, audit *AuditService) *ContactService {
	return &ContactService{store: store, audit: audit}
}

var (
	emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)
	phonePattern = regexp.MustCompile(`^[+]?[0-9\s\-()]{8,}$`)
)

// ContactInput is the public contact form payload. Older cached pages still
// send the name fields in camelCase; both spellings are accepted.
type ContactInput struct {
	FirstName  string     `json:"first_name"`
	LastName   string     `json:"last_name"`
	Email      string     `json:"email"`
	Phone      string     `json:"phone"`
	Subject    string     `json:"subject"`
	Message    string     `json:"message"`
	PropertyID *uuid.UUID `json:"property_id"`

	LegacyFirstName string `json:"firstName"`
	LegacyLastName  string `json:"lastName"`
}

// normalize folds the legacy spellings into the canonical fields.
func (in *ContactInput) normalize() {
	if in.FirstName == "" {
		in.FirstName = in.LegacyFirstName
	}
	if in.LastName == "" {
		in.LastName = in.LegacyLastName
	}
}

// validate returns the user-facing messages for every failed rule, in form
// order. Messages are in French because they render directly on the site.
func (in ContactInput) validate() []string {
	var msgs []string
	if strings.TrimSpace(in.FirstName) == "" {
		msgs = append(msgs, "Le prénom est requis")
	}
	if strings.TrimSpace(in.LastName) == "" {
		msgs = append(msgs, "Le nom est requis")
	}
	if !emailPattern.MatchString(in.Email) {
		msgs = append(msgs, "L'adresse email est invalide")
	}
	if in.Phone != "" && !phonePattern.MatchString(in.Phone) {
		msgs = append(msgs, "Le numéro de téléphone est invalide")
	}
	if len(strings.TrimSpace(in.Message)) < 10 {
		msgs = append(msgs, "Le message doit contenir au moins 10 caractères")
	}
	return msgs
}

// Submit validates and stores a new lead in status "new".
func (s *ContactService) Submit(ctx context.Context, in ContactInput) (*models.Contact, error) {
	in.normalize()
	if msgs := in.validate(); len(msgs) > 0 {
		return nil, ErrValidation(msgs...)
	}

	now := time.Now()
	c := &models.Contact{
		ID:         uuid.New(),
		FirstName:  strings.TrimSpace(in.FirstName),
		LastName:   strings.TrimSpace(in.LastName),
		Email:      strings.TrimSpace(in.Email),
		Phone:      strings.TrimSpace(in.Phone),
		Subject:    strings.TrimSpace(in.Subject),
		Message:    strings.TrimSpace(in.Message),
		PropertyID: in.PropertyID,
		Status:     models.ContactStatusNew,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.InsertContact(ctx, c); err != nil {
		return nil, fmt.Errorf("insert contact: %w", err)
	}
	return c, nil
}

// ContactPage is one admin page of leads plus its pagination envelope.
type ContactPage struct {
	Data       []models.Contact `json:"data"`
	Total      int              `json:"total"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"totalPages"`
}

// List returns one filtered page of leads for the back office.
func (s *ContactService) List(ctx context.Context, f storage.ContactFilter) (*ContactPage, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 20
	}

	data, err := s.store.ListContacts(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	total, err := s.store.CountContacts(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("count contacts: %w", err)
	}
	if data == nil {
		data = []models.Contact{}
	}
	return &ContactPage{
		Data:       data,
		Total:      total,
		Page:       f.Page,
		Limit:      f.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(f.Limit))),
	}, nil
}

// Get fetches one lead, nil when absent.
func (s *ContactService) Get(ctx context.Context, id uuid.UUID) (*models.Contact, error) {
	return s.store.GetContactByID(ctx, id)
}

// UpdateStatus moves a lead through the workflow and/or replaces its notes.
// Empty status keeps the current one; a notes pointer distinguishes "leave
// alone" from "clear".
func (s *ContactService) UpdateStatus(ctx context.Context, id uuid.UUID, status string, notes *string) (*models.Contact, error) {
	if status != "" && !models.ValidContactStatus(status) {
		return nil, ErrValidation("Le statut est invalide")
	}

	c, err := s.store.GetContactByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get contact: %w", err)
	}
	if c == nil {
		return nil, nil
	}

	if status != "" {
		c.Status = status
	}
	if notes != nil {
		c.Notes = *notes
	}

	if err := s.store.UpdateContact(ctx, c); err != nil {
		return nil, fmt.Errorf("update contact: %w", err)
	}

	s.audit.Record("contact.update", id.String(), c.Status)
	return c, nil
}

func (s *ContactService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.store.DeleteContact(ctx, id); err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	s.audit.Record("contact.delete", id.String(), "")
	return nil
}

// Stats aggregates the per-status breakdown plus the last-24h intake.
func (s *ContactService) Stats(ctx context.Context) (*models.ContactStats, error) {
	counts, err := s.store.ContactStatusCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("contact status counts: %w", err)
	}
	recent, err := s.store.CountContactsSince(ctx, time.Now().Add(-24*time.Hour))
	if err != nil {
		return nil, fmt.Errorf("count recent contacts: %w", err)
	}

	stats := &models.ContactStats{
		New:        counts[models.ContactStatusNew],
		InProgress: counts[models.ContactStatusInProgress],
		Completed:  counts[models.ContactStatusCompleted],
		Cancelled:  counts[models.ContactStatusCancelled],
		Recent24h:  recent,
	}
	for _, n := range counts {
		stats.Total += n
	}
	return stats, nil
}
