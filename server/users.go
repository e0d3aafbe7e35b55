package server

import (
	"encoding/json"
	"net/http"

	"github.com/patrickassako/triomphe-immobilier/services"
	"github.com/patrickassako/triomphe-immobilier/storage"
)

// The users list keeps its historical shape with a nested pagination object,
// unlike the flat envelope of the other list endpoints.
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := storage.UserFilter{
		Search:    q.Get("search"),
		Role:      q.Get("role"),
		SortBy:    q.Get("sort_by"),
		SortOrder: q.Get("sort_order"),
		Page:      queryInt(r, "page", 1),
		Limit:     queryInt(r, "limit", 10),
	}

	page, err := s.users.List(r.Context(), f)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    page.Data,
		"pagination": map[string]int{
			"total":      page.Total,
			"page":       page.Page,
			"limit":      page.Limit,
			"totalPages": page.TotalPages,
		},
	})
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	u, err := s.users.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if u == nil {
		respondError(w, http.StatusNotFound, "Utilisateur introuvable")
		return
	}
	respondJSON(w, http.StatusOK, u)
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var input services.UserInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, http.StatusBadRequest, "Corps de requête invalide")
		return
	}

	u, err := s.users.Create(r.Context(), input)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondMessage(w, http.StatusCreated, u, "Utilisateur créé")
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var input services.UserInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, http.StatusBadRequest, "Corps de requête invalide")
		return
	}

	u, err := s.users.Update(r.Context(), id, input)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if u == nil {
		respondError(w, http.StatusNotFound, "Utilisateur introuvable")
		return
	}
	respondMessage(w, http.StatusOK, u, "Utilisateur mis à jour")
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	found, err := s.users.Delete(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if !found {
		respondError(w, http.StatusNotFound, "Utilisateur introuvable")
		return
	}
	respondMessage(w, http.StatusOK, nil, "Utilisateur supprimé")
}
