//go:build !devauth

package server

import (
	"net/http"

	"github.com/google/uuid"
)

// requestUserID resolves the acting user from the X-User-ID header set by the
// auth proxy in front of this service.
func requestUserID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.Header.Get("X-User-ID"))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
