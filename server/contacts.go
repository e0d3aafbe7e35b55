package server

import (
	"encoding/json"
	"net/http"

	"github.com/patrickassako/triomphe-immobilier/services"
	"github.com/patrickassako/triomphe-immobilier/storage"
)

func (s *Server) handleSubmitContact(w http.ResponseWriter, r *http.Request) {
	var input services.ContactInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, http.StatusBadRequest, "Corps de requête invalide")
		return
	}

	c, err := s.contacts.Submit(r.Context(), input)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondMessage(w, http.StatusCreated, c, "Votre message a bien été envoyé")
}

func (s *Server) handleListContacts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := storage.ContactFilter{
		Status:    q.Get("status"),
		SortBy:    q.Get("sort_by"),
		SortOrder: q.Get("sort_order"),
		Page:      queryInt(r, "page", 1),
		Limit:     queryInt(r, "limit", 20),
	}

	page, err := s.contacts.List(r.Context(), f)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondPage(w, page.Data, page.Total, page.Page, page.Limit, page.TotalPages)
}

func (s *Server) handleGetContact(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	c, err := s.contacts.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if c == nil {
		respondError(w, http.StatusNotFound, "Message introuvable")
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (s *Server) handleUpdateContact(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var body struct {
		Status string  `json:"status"`
		Notes  *string `json:"notes"`
		// Old admin screens send the notes under admin_notes.
		AdminNotes *string `json:"admin_notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Corps de requête invalide")
		return
	}
	notes := body.Notes
	if notes == nil {
		notes = body.AdminNotes
	}

	c, err := s.contacts.UpdateStatus(r.Context(), id, body.Status, notes)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if c == nil {
		respondError(w, http.StatusNotFound, "Message introuvable")
		return
	}
	respondMessage(w, http.StatusOK, c, "Message mis à jour")
}

func (s *Server) handleDeleteContact(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := s.contacts.Delete(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, nil, "Message supprimé")
}

func (s *Server) handleContactStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.contacts.Stats(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}
