package snapshots

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/ziadkadry99/callscope/internal/diagrams"
	"github.com/ziadkadry99/callscope/internal/graph"
	"github.com/ziadkadry99/callscope/internal/ingest"
	"github.com/ziadkadry99/callscope/internal/state"
)

// Limits holds the view defaults applied when a request omits them.
type Limits struct {
	CallTreeDepth  int
	HeatmapSize    int
	ChordThreshold int
}

// DefaultLimits matches the built-in view constants.
func DefaultLimits() Limits {
	return Limits{
		CallTreeDepth:  graph.DefaultCallTreeDepth,
		HeatmapSize:    graph.HeatmapSize,
		ChordThreshold: graph.DefaultChordThreshold,
	}
}

// maxUploadBytes caps uploaded graph documents.
const maxUploadBytes = 64 << 20

// RegisterRoutes mounts snapshot and view endpoints on the given router.
func RegisterRoutes(r chi.Router, store *Store, limits Limits) {
	h := &handlers{store: store, limits: limits}
	r.Post("/api/graphs", h.upload)
	r.Get("/api/graphs", h.list)
	r.Route("/api/graphs/{id}", func(r chi.Router) {
		r.Get("/", h.get)
		r.Delete("/", h.delete)
		r.Get("/degrees", h.view(h.degrees))
		r.Get("/top", h.view(h.top))
		r.Get("/network", h.view(h.network))
		r.Get("/details", h.view(h.details))
		r.Get("/calltree", h.view(h.callTree))
		r.Get("/chord", h.view(h.chord))
		r.Get("/chord/top", h.view(h.topChord))
		r.Get("/treemap", h.view(h.treemap))
		r.Get("/bundle", h.view(h.bundle))
		r.Get("/heatmap", h.view(h.heatmap))
		r.Get("/nodes", h.view(h.nodes))
		r.Get("/mermaid", h.view(h.mermaid))
	})
}

type handlers struct {
	store  *Store
	limits Limits
}

// badRequest marks view errors that should map to 400.
type badRequest struct{ msg string }

func (e badRequest) Error() string { return e.msg }

// viewFunc computes a view body from a loaded snapshot.
type viewFunc func(r *http.Request, snap *Snapshot) (any, error)

func (h *handlers) view(fn viewFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, ok := h.load(w, r)
		if !ok {
			return
		}
		body, err := fn(r, snap)
		var br badRequest
		switch {
		case errors.As(err, &br):
			http.Error(w, br.msg, http.StatusBadRequest)
		case errors.Is(err, graph.ErrNodeNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		case err != nil:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		default:
			if s, isText := body.(string); isText {
				w.Header().Set("Content-Type", "text/plain; charset=utf-8")
				w.Write([]byte(s))
				return
			}
			writeJSON(w, http.StatusOK, body)
		}
	}
}

func (h *handlers) load(w http.ResponseWriter, r *http.Request) (*Snapshot, bool) {
	snap, err := h.store.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, ErrNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return nil, false
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return nil, false
	}
	return snap, true
}

func (h *handlers) upload(w http.ResponseWriter, r *http.Request) {
	g, err := ingest.DecodeGraph(http.MaxBytesReader(w, r.Body, maxUploadBytes))
	if err != nil {
		http.Error(w, state.FailureMessage("Error parsing JSON", err), http.StatusBadRequest)
		return
	}
	source := r.URL.Query().Get("source")
	if source == "" {
		source = "upload"
	}
	snap, err := h.store.Save(r.Context(), source, g, Meta{Delimiter: r.URL.Query().Get("delim")})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	snap.Graph = nil
	writeJSON(w, http.StatusCreated, snap)
}

func (h *handlers) list(w http.ResponseWriter, r *http.Request) {
	result, err := h.store.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handlers) get(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *handlers) delete(w http.ResponseWriter, r *http.Request) {
	err := h.store.Delete(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, ErrNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) degrees(_ *http.Request, snap *Snapshot) (any, error) {
	return snap.Graph.Degrees(), nil
}

func (h *handlers) top(r *http.Request, snap *Snapshot) (any, error) {
	k, err := intParam(r, "k", h.limits.HeatmapSize)
	if err != nil {
		return nil, err
	}
	return graph.TopK(snap.Graph.Degrees(), k), nil
}

func (h *handlers) network(_ *http.Request, snap *Snapshot) (any, error) {
	return graph.Network(snap.Graph), nil
}

func (h *handlers) details(r *http.Request, snap *Snapshot) (any, error) {
	id, err := nodeParam(r)
	if err != nil {
		return nil, err
	}
	depth, err := h.depthParam(r)
	if err != nil {
		return nil, err
	}
	return graph.Details(snap.Graph, id, depth)
}

func (h *handlers) callTree(r *http.Request, snap *Snapshot) (any, error) {
	id, err := nodeParam(r)
	if err != nil {
		return nil, err
	}
	depth, err := h.depthParam(r)
	if err != nil {
		return nil, err
	}
	return graph.WalkCallTree(snap.Graph, id, depth), nil
}

func (h *handlers) chord(_ *http.Request, snap *Snapshot) (any, error) {
	return graph.Chord(snap.Graph), nil
}

func (h *handlers) topChord(r *http.Request, snap *Snapshot) (any, error) {
	k, err := intParam(r, "k", h.limits.ChordThreshold)
	if err != nil {
		return nil, err
	}
	if !graph.ValidThreshold(k) {
		return nil, badRequest{fmt.Sprintf("k must be one of %v", graph.ChordThresholds)}
	}
	return graph.TopChord(snap.Graph, k), nil
}

func (h *handlers) treemap(r *http.Request, snap *Snapshot) (any, error) {
	return graph.Treemap(snap.Graph, delimiter(r, snap)), nil
}

func (h *handlers) bundle(r *http.Request, snap *Snapshot) (any, error) {
	return graph.Bundle(snap.Graph, delimiter(r, snap)), nil
}

func (h *handlers) heatmap(r *http.Request, snap *Snapshot) (any, error) {
	k, err := intParam(r, "k", h.limits.HeatmapSize)
	if err != nil {
		return nil, err
	}
	return graph.Heatmap(snap.Graph, k), nil
}

func (h *handlers) nodes(r *http.Request, snap *Snapshot) (any, error) {
	return graph.Filter(snap.Graph, r.URL.Query().Get("filter")), nil
}

// mermaid renders the call tree of ?node= or, without it, the top-k subgraph.
func (h *handlers) mermaid(r *http.Request, snap *Snapshot) (any, error) {
	id := r.URL.Query().Get("node")
	if id == "" {
		k, err := intParam(r, "k", h.limits.HeatmapSize)
		if err != nil {
			return nil, err
		}
		return diagrams.TopDiagram(snap.Graph, k), nil
	}
	n, ok := snap.Graph.Index()[id]
	if !ok {
		return nil, graph.ErrNodeNotFound
	}
	depth, err := h.depthParam(r)
	if err != nil {
		return nil, err
	}
	return diagrams.CallTreeDiagram(id, n.DisplayName(), graph.WalkCallTree(snap.Graph, id, depth)), nil
}

func delimiter(r *http.Request, snap *Snapshot) string {
	if d := r.URL.Query().Get("delim"); d != "" {
		return d
	}
	if snap.Delimiter != "" {
		return snap.Delimiter
	}
	return graph.DefaultDelimiter
}

func nodeParam(r *http.Request) (string, error) {
	id := r.URL.Query().Get("node")
	if id == "" {
		return "", badRequest{"node is required"}
	}
	return id, nil
}

func intParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, badRequest{fmt.Sprintf("%s must be a non-negative integer", name)}
	}
	return v, nil
}

func (h *handlers) depthParam(r *http.Request) (int, error) {
	depth, err := intParam(r, "depth", h.limits.CallTreeDepth)
	if err != nil {
		return 0, err
	}
	if err := graph.CheckCallTreeDepth(depth); err != nil {
		return 0, badRequest{err.Error()}
	}
	return depth, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
