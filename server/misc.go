package server

import (
	"context"
	"net/http"

	"github.com/patrickassako/triomphe-immobilier/models"
)

// LocationLister is the slice of the Postgres store the locations endpoint
// needs.
type LocationLister interface {
	ListLocations(ctx context.Context) ([]models.Location, error)
}

func (s *Server) handleListLocations(w http.ResponseWriter, r *http.Request) {
	locations, err := s.locations.ListLocations(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if locations == nil {
		locations = []models.Location{}
	}
	respondJSON(w, http.StatusOK, locations)
}

func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 10)
	items, err := s.activity.Recent(r.Context(), limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	total := len(items)
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: items, Total: &total})
}

// handleAnalytics keeps the historical single endpoint that dispatches on the
// type parameter. The typed subroutes are the preferred surface.
func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Query().Get("type") {
	case "properties":
		s.respondAnalytics(w, r, s.analytics.Properties)
	case "users":
		s.respondAnalytics(w, r, s.analytics.Users)
	case "contacts":
		s.respondAnalytics(w, r, s.analytics.Contacts)
	default:
		s.respondAnalytics(w, r, s.analytics.Overview)
	}
}

func (s *Server) handleAnalyticsOverview(w http.ResponseWriter, r *http.Request) {
	s.respondAnalytics(w, r, s.analytics.Overview)
}

func (s *Server) handleAnalyticsProperties(w http.ResponseWriter, r *http.Request) {
	s.respondAnalytics(w, r, s.analytics.Properties)
}

func (s *Server) handleAnalyticsUsers(w http.ResponseWriter, r *http.Request) {
	s.respondAnalytics(w, r, s.analytics.Users)
}

func (s *Server) handleAnalyticsContacts(w http.ResponseWriter, r *http.Request) {
	s.respondAnalytics(w, r, s.analytics.Contacts)
}

func (s *Server) respondAnalytics(w http.ResponseWriter, r *http.Request, report func(context.Context, string) (map[string]interface{}, error)) {
	data, err := report(r.Context(), r.URL.Query().Get("period"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, data)
}

func (s *Server) handleAuditLog(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	entries, err := s.audit.Recent(limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, entries)
}
