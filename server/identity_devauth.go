//go:build devauth

package server

import (
	"net/http"

	"github.com/google/uuid"
)

// devUserID stands in for the auth proxy during local development.
var devUserID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

func requestUserID(r *http.Request) (uuid.UUID, bool) {
	if id, err := uuid.Parse(r.Header.Get("X-User-ID")); err == nil {
		return id, true
	}
	return devUserID, true
}
