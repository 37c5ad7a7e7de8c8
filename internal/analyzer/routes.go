package analyzer

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/ziadkadry99/callscope/internal/state"
)

// SnapshotHeader carries the id of the snapshot saved for an analysis.
const SnapshotHeader = "X-Snapshot-ID"

// RegisterRoutes mounts the analysis endpoint on the given router.
func RegisterRoutes(r chi.Router, svc *Service) {
	r.Post("/api/analyze", analyzeHandler(svc))
}

func analyzeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimSpace(r.URL.Query().Get("path"))
		if path == "" {
			http.Error(w, state.MsgEnterPath, http.StatusBadRequest)
			return
		}
		res, snap, err := svc.Run(r.Context(), path)
		if err != nil {
			http.Error(w, "Error: "+err.Error(), http.StatusInternalServerError)
			return
		}
		if snap != nil {
			w.Header().Set(SnapshotHeader, snap.ID)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(res)
	}
}
