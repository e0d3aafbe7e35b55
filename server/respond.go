package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/patrickassako/triomphe-immobilier/services"
)

// envelope is the uniform success shape. List endpoints add the pagination
// fields; detail endpoints carry data alone.
type envelope struct {
	Success    bool        `json:"success"`
	Data       interface{} `json:"data,omitempty"`
	Total      *int        `json:"total,omitempty"`
	Page       *int        `json:"page,omitempty"`
	Limit      *int        `json:"limit,omitempty"`
	TotalPages *int        `json:"totalPages,omitempty"`
	Message    string      `json:"message,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

func respondMessage(w http.ResponseWriter, status int, data interface{}, message string) {
	writeJSON(w, status, envelope{Success: true, Data: data, Message: message})
}

func respondPage(w http.ResponseWriter, data interface{}, total, page, limit, totalPages int) {
	writeJSON(w, http.StatusOK, envelope{
		Success:    true,
		Data:       data,
		Total:      &total,
		Page:       &page,
		Limit:      &limit,
		TotalPages: &totalPages,
	})
}

func respondError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}

// respondServiceError maps a service failure to the right status. Validation
// errors become a 400 with the joined user-facing message; anything else is
// logged and hidden behind a generic 500.
func respondServiceError(w http.ResponseWriter, err error) {
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		respondError(w, http.StatusBadRequest, verr.Error())
		return
	}
	log.Printf("Error: %v", err)
	respondError(w, http.StatusInternalServerError, "Une erreur interne s'est produite")
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("Error: encoding response: %v", err)
	}
}
