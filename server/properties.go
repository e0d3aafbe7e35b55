package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/patrickassako/triomphe-immobilier/models"
	"github.com/patrickassako/triomphe-immobilier/services"
	"github.com/patrickassako/triomphe-immobilier/storage"
)

func (s *Server) handleSearchProperties(w http.ResponseWriter, r *http.Request) {
	// Old clients fetch a single property with ?id= on the list route.
	if raw := r.URL.Query().Get("id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Identifiant invalide")
			return
		}
		p, err := s.listings.GetByID(r.Context(), id)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		if p == nil {
			respondError(w, http.StatusNotFound, "Propriété introuvable")
			return
		}
		respondJSON(w, http.StatusOK, p)
		return
	}

	f := propertyFilterFromQuery(r)

	result, err := s.listings.Search(r.Context(), f)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondPage(w, result.Data, result.Total, result.Page, result.Limit, result.TotalPages)
}

// propertyFilterFromQuery parses the public catalog filters. Malformed
// numeric values are ignored rather than rejected, matching the permissive
// public surface.
func propertyFilterFromQuery(r *http.Request) storage.PropertyFilter {
	q := r.URL.Query()
	f := storage.PropertyFilter{
		Search:       q.Get("search"),
		PropertyType: q.Get("property_type"),
		SortBy:       q.Get("sort_by"),
		Page:         queryInt(r, "page", 1),
		Limit:        queryInt(r, "limit", 12),
	}
	if v, err := strconv.ParseFloat(q.Get("min_price"), 64); err == nil {
		f.MinPrice = v
	}
	if v, err := strconv.ParseFloat(q.Get("max_price"), 64); err == nil {
		f.MaxPrice = v
	}
	if id, err := uuid.Parse(q.Get("location_id")); err == nil {
		f.LocationID = &id
	}
	f.Bedrooms = queryInt(r, "bedrooms", 0)
	f.Bathrooms = queryInt(r, "bathrooms", 0)
	return f
}

func (s *Server) handleFeaturedProperties(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 6)
	data, err := s.listings.Featured(r.Context(), limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, data)
}

func (s *Server) handleGetProperty(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	p, err := s.listings.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if p == nil {
		respondError(w, http.StatusNotFound, "Propriété introuvable")
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (s *Server) handleGetPropertyBySlug(w http.ResponseWriter, r *http.Request) {
	p, err := s.listings.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if p == nil {
		respondError(w, http.StatusNotFound, "Propriété introuvable")
		return
	}
	respondJSON(w, http.StatusOK, p)
}

// createPropertyBody accepts both the flat payload and the older nested
// {property, images, features} shape still sent by the admin form.
type createPropertyBody struct {
	services.PropertyInput
	Property *services.PropertyInput `json:"property"`
	Images   []models.ImageInput     `json:"images"`
	Features []uuid.UUID             `json:"features"`
}

func (s *Server) handleCreateProperty(w http.ResponseWriter, r *http.Request) {
	var body createPropertyBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Corps de requête invalide")
		return
	}

	input := body.PropertyInput
	if body.Property != nil {
		input = *body.Property
	}

	p, err := s.listings.Create(r.Context(), input, body.Images, body.Features)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondMessage(w, http.StatusCreated, p, "Propriété créée avec succès")
}

func (s *Server) handleUpdateProperty(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var input services.PropertyInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, http.StatusBadRequest, "Corps de requête invalide")
		return
	}

	p, err := s.listings.Update(r.Context(), id, input)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if p == nil {
		respondError(w, http.StatusNotFound, "Propriété introuvable")
		return
	}
	respondMessage(w, http.StatusOK, p, "Propriété mise à jour")
}

func (s *Server) handleDeleteProperty(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := s.listings.Delete(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, nil, "Propriété supprimée")
}

func (s *Server) handleReplaceImages(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var body struct {
		Images []models.ImageInput `json:"images"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Corps de requête invalide")
		return
	}
	if err := s.listings.AttachImages(r.Context(), id, body.Images); err != nil {
		respondServiceError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, nil, "Images mises à jour")
}

func (s *Server) handleReplaceFeatures(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var body struct {
		Features []uuid.UUID `json:"features"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Corps de requête invalide")
		return
	}
	if err := s.listings.AttachFeatures(r.Context(), id, body.Features); err != nil {
		respondServiceError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, nil, "Caractéristiques mises à jour")
}

// =============================================================================
// Likes and shares
// =============================================================================

// Likes and shares answer with flat bodies rather than the data envelope;
// the public site reads these fields at the top level.

func (s *Server) handleGetLikes(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	count, err := s.favorites.Likes(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	body := map[string]interface{}{"success": true, "likes": count}
	if userID, ok := requestUserID(r); ok {
		liked, err := s.favorites.IsLiked(r.Context(), userID, id)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		body["is_liked"] = liked
	}
	writeJSON(w, http.StatusOK, body)
}

// toggleLikeBody carries the acting user when the auth proxy header is not
// set, plus the non-mutating check variant used on page load.
type toggleLikeBody struct {
	UserID    *uuid.UUID `json:"user_id"`
	CheckOnly bool       `json:"check_only"`
}

func (s *Server) handleToggleLike(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var body toggleLikeBody
	if r.Body != nil {
		// An empty or absent body is fine; the header can carry the user.
		_ = json.NewDecoder(r.Body).Decode(&body)
	}

	userID, ok := requestUserID(r)
	if body.UserID != nil {
		userID, ok = *body.UserID, true
	}
	if !ok {
		respondError(w, http.StatusBadRequest, "user_id requis")
		return
	}

	if body.CheckOnly {
		liked, err := s.favorites.IsLiked(r.Context(), userID, id)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success":  true,
			"is_liked": liked,
		})
		return
	}

	action, count, err := s.favorites.Toggle(r.Context(), userID, id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	message := "Ajouté aux favoris"
	if action == "unliked" {
		message = "Retiré des favoris"
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"action":  action,
		"likes":   count,
		"message": message,
	})
}

func (s *Server) handleGetShares(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	if !s.favorites.SharesSupported() {
		// Zero with the flag down, so old clients reading shares keep working.
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success":          true,
			"shares":           0,
			"shares_supported": false,
		})
		return
	}

	count, err := s.favorites.Shares(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":          true,
		"shares_supported": true,
		"shares":           count,
	})
}

func (s *Server) handleRecordShare(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	if !s.favorites.SharesSupported() {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success":          true,
			"shares":           0,
			"shares_supported": false,
		})
		return
	}

	count, err := s.favorites.RecordShare(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":          true,
		"shares_supported": true,
		"shares":           count,
	})
}
