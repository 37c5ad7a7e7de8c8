package blacklist

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
)

// Upload is the body of POST /api/blacklist.
type Upload struct {
	MethodNames []string `json:"methodNames"`
}

// RegisterRoutes mounts blacklist endpoints on the given router.
func RegisterRoutes(r chi.Router, store *Store) {
	r.Get("/api/blacklist", getHandler(store))
	r.Post("/api/blacklist", replaceHandler(store))
}

func getHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		names, err := store.List(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(names)
	}
}

func replaceHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body Upload
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if err := store.Replace(r.Context(), body.MethodNames); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}
