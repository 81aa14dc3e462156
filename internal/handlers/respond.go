package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/ukydev/report-map/internal/models"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) error {
	msg := err.Error()
	if msg == "" {
		msg = http.StatusText(status)
	}
	return writeJSON(w, status, models.ErrorResponse{Message: msg})
}
