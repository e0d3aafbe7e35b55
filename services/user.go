package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patrickassako/triomphe-immobilier/models"
	"github.com/patrickassako/triomphe-immobilier/storage"
)

// UserStore is the slice of the Postgres store the user service needs.
type UserStore interface {
	ListUsers(ctx context.Context, f storage.UserFilter) ([]models.User, error)
	CountUsers(ctx context.Context, f storage.UserFilter) (int, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string, excludeID *uuid.UUID) (*models.User, error)
	InsertUser(ctx context.Context, u *models.User) error
	UpdateUser(ctx context.Context, u *models.User) error
	DeleteUser(ctx context.Context, id uuid.UUID) error
	CountActiveUsersByRole(ctx context.Context, role string) (int, error)
}

// UserService manages back-office accounts.
type UserService struct {
	store UserStore
	audit *AuditService
}

func NewUserService(store UserStore, audit *AuditService) *UserService {
	return &UserService{store: store, audit: audit}
}

// UserPage is one admin page of accounts plus its pagination envelope.
type UserPage struct {
	Data       []models.User `json:"data"`
	Total      int           `json:"total"`
	Page       int           `json:"page"`
	Limit      int           `json:"limit"`
	TotalPages int           `json:"totalPages"`
}

// List returns one filtered page of accounts.
func (s *UserService) List(ctx context.Context, f storage.UserFilter) (*UserPage, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 10
	}

	data, err := s.store.ListUsers(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	total, err := s.store.CountUsers(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	if data == nil {
		data = []models.User{}
	}
	return &UserPage{
		Data:       data,
		Total:      total,
		Page:       f.Page,
		Limit:      f.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(f.Limit))),
	}, nil
}

// Get fetches one account, nil when absent.
func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.store.GetUserByID(ctx, id)
}

// UserInput is the create/update payload from the admin. Pointer fields
// distinguish "absent" from zero on update.
type UserInput struct {
	Email     *string `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
	Role      *string `json:"role"`
	IsActive  *bool   `json:"is_active"`
}

// Create inserts an account. Email must be present, shaped like an email and
// unused; first and last name are required; the role defaults to client.
func (s *UserService) Create(ctx context.Context, in UserInput) (*models.User, error) {
	var msgs []string
	if in.Email == nil || !emailPattern.MatchString(*in.Email) {
		msgs = append(msgs, "L'adresse email est invalide")
	}
	if in.FirstName == nil || strings.TrimSpace(*in.FirstName) == "" {
		msgs = append(msgs, "Le prénom est requis")
	}
	if in.LastName == nil || strings.TrimSpace(*in.LastName) == "" {
		msgs = append(msgs, "Le nom est requis")
	}
	if len(msgs) > 0 {
		return nil, ErrValidation(msgs...)
	}
	role := models.RoleClient
	if in.Role != nil {
		if !models.ValidRole(*in.Role) {
			return nil, ErrValidation("Le rôle est invalide")
		}
		role = *in.Role
	}

	existing, err := s.store.GetUserByEmail(ctx, strings.ToLower(*in.Email), nil)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if existing != nil {
		return nil, ErrValidation("Cette adresse email est déjà utilisée")
	}

	now := time.Now()
	u := &models.User{
		ID:        uuid.New(),
		Email:     strings.ToLower(strings.TrimSpace(*in.Email)),
		Role:      role,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.FirstName != nil {
		u.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		u.LastName = *in.LastName
	}
	if in.Phone != nil {
		u.Phone = *in.Phone
	}
	if in.IsActive != nil {
		u.IsActive = *in.IsActive
	}

	if err := s.store.InsertUser(ctx, u); err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	s.audit.Record("user.create", u.ID.String(), u.Email)
	return u, nil
}

// Update applies the provided fields. Demoting the last active admin off the
// admin role is refused.
func (s *UserService) Update(ctx context.Context, id uuid.UUID, in UserInput) (*models.User, error) {
	u, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if u == nil {
		return nil, nil
	}

	if in.Email != nil && !strings.EqualFold(*in.Email, u.Email) {
		if !emailPattern.MatchString(*in.Email) {
			return nil, ErrValidation("L'adresse email est invalide")
		}
		existing, err := s.store.GetUserByEmail(ctx, strings.ToLower(*in.Email), &id)
		if err != nil {
			return nil, fmt.Errorf("check email: %w", err)
		}
		if existing != nil {
			return nil, ErrValidation("Cette adresse email est déjà utilisée")
		}
		u.Email = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	if in.Role != nil && *in.Role != u.Role {
		if !models.ValidRole(*in.Role) {
			return nil, ErrValidation("Le rôle est invalide")
		}
		if u.Role == models.RoleAdmin && u.IsActive {
			if err := s.guardLastAdmin(ctx); err != nil {
				return nil, err
			}
		}
		u.Role = *in.Role
	}
	if in.FirstName != nil {
		u.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		u.LastName = *in.LastName
	}
	if in.Phone != nil {
		u.Phone = *in.Phone
	}
	if in.IsActive != nil {
		if !*in.IsActive && u.Role == models.RoleAdmin && u.IsActive {
			if err := s.guardLastAdmin(ctx); err != nil {
				return nil, err
			}
		}
		u.IsActive = *in.IsActive
	}

	if err := s.store.UpdateUser(ctx, u); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.audit.Record("user.update", u.ID.String(), u.Email)
	return u, nil
}

// Delete removes an account. Removing the last admin is refused. The first
// return reports whether the row existed.
func (s *UserService) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	u, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		return false, fmt.Errorf("get user: %w", err)
	}
	if u == nil {
		return false, nil
	}
	if u.Role == models.RoleAdmin && u.IsActive {
		if err := s.guardLastAdmin(ctx); err != nil {
			return true, err
		}
	}

	if err := s.store.DeleteUser(ctx, id); err != nil {
		return true, fmt.Errorf("delete user: %w", err)
	}
	s.audit.Record("user.delete", id.String(), u.Email)
	return true, nil
}

// guardLastAdmin refuses the mutation when at most one active admin remains.
// Inactive admin rows do not keep the back office reachable, so they do not
// count.
func (s *UserService) guardLastAdmin(ctx context.Context) error {
	n, err := s.store.CountActiveUsersByRole(ctx, models.RoleAdmin)
	if err != nil {
		return fmt.Errorf("count admins: %w", err)
	}
	if n <= 1 {
		return ErrValidation("Impossible de supprimer le dernier administrateur")
	}
	return nil
}
