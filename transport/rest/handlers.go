package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tictactussle/tictactussle-backend/internal/repository"
)

func pingHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
}

// matchHandler serves archived match records: GET /match?id=<uuid>.
func matchHandler(archive repository.MatchArchive) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("id")
		if id == "" {
			http.Error(w, "id is required", http.StatusBadRequest)
			return
		}

		record, err := archive.GetByID(r.Context(), id)
		if errors.Is(err, repository.ErrMatchNotFound) {
			http.Error(w, "match not found", http.StatusNotFound)
			return
		}

		if err != nil {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err = json.NewEncoder(w).Encode(record); err != nil {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		}
	}
}
