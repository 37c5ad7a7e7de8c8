package snapshots

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/ziadkadry99/callscope/internal/db"
	"github.com/ziadkadry99/callscope/internal/graph"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	d, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return NewStore(d)
}

func sampleGraph() *graph.Graph {
	return graph.New(
		[]graph.Node{{ID: "pkg/a/foo"}, {ID: "pkg/a/bar"}, {ID: "pkg/b/baz", Label: "baz"}},
		[]graph.Edge{
			{Source: "pkg/a/foo", Target: "pkg/a/bar"},
			{Source: "pkg/a/foo", Target: "pkg/b/baz"},
			{Source: "pkg/a/bar", Target: "pkg/b/baz"},
		},
	)
}

// --- Store tests ---

func TestSaveAndGet(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	snap, err := store.Save(ctx, "/src/app", sampleGraph(), Meta{Language: "java", Delimiter: "."})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if snap.ID == "" {
		t.Fatal("expected snapshot ID to be set")
	}

	got, err := store.Get(ctx, snap.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Source != "/src/app" || got.Language != "java" || got.Delimiter != "." {
		t.Errorf("metadata = %+v", got)
	}
	if got.NodeCount != 3 || got.LinkCount != 3 {
		t.Errorf("counts = %d/%d, want 3/3", got.NodeCount, got.LinkCount)
	}
	if len(got.Graph.Nodes) != 3 || got.Graph.Nodes[2].Label != "baz" {
		t.Errorf("graph nodes = %+v", got.Graph.Nodes)
	}
	if got.Graph.Links[1].Target != "pkg/b/baz" {
		t.Errorf("graph links = %+v", got.Graph.Links)
	}
}

func TestSaveDefaultsDelimiter(t *testing.T) {
	store := setupTestStore(t)
	snap, err := store.Save(context.Background(), "upload", sampleGraph(), Meta{})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if snap.Delimiter != "/" {
		t.Errorf("delimiter = %q, want /", snap.Delimiter)
	}
}

func TestGetMissing(t *testing.T) {
	store := setupTestStore(t)
	if _, err := store.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if _, err := store.Latest(context.Background()); !errors.Is(err, ErrNotFound) {
		t.Errorf("Latest err = %v, want ErrNotFound", err)
	}
}

func TestListLatestDelete(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	first, _ := store.Save(ctx, "one", sampleGraph(), Meta{})
	second, _ := store.Save(ctx, "two", sampleGraph(), Meta{})

	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("got %d snapshots, want 2", len(list))
	}
	if list[0].Graph != nil {
		t.Error("listing should not carry graphs")
	}

	latest, err := store.Latest(ctx)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if latest.ID != second.ID {
		t.Errorf("Latest = %s, want %s", latest.ID, second.ID)
	}

	if err := store.Delete(ctx, first.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := store.Delete(ctx, first.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete err = %v, want ErrNotFound", err)
	}
	list, _ = store.List(ctx)
	if len(list) != 1 {
		t.Errorf("got %d snapshots after delete, want 1", len(list))
	}
}

// --- HTTP tests ---

func setupRouter(t *testing.T) (chi.Router, *Store, string) {
	t.Helper()
	store := setupTestStore(t)
	snap, err := store.Save(context.Background(), "test", sampleGraph(), Meta{})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	r := chi.NewRouter()
	RegisterRoutes(r, store, DefaultLimits())
	return r, store, snap.ID
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestUploadGraph(t *testing.T) {
	r, _, _ := setupRouter(t)

	w := do(r, http.MethodPost, "/api/graphs?source=dump.json", `{"nodes":[{"id":"A"}],"links":[]}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var snap Snapshot
	if err := json.Unmarshal(w.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.Source != "dump.json" || snap.NodeCount != 1 {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestUploadInvalidStructure(t *testing.T) {
	r, _, _ := setupRouter(t)

	w := do(r, http.MethodPost, "/api/graphs", `{"nodes":[{"id":"A"}]}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if got := strings.TrimSpace(w.Body.String()); got != "Invalid JSON structure" {
		t.Errorf("body = %q", got)
	}

	w = do(r, http.MethodPost, "/api/graphs", `{nodes`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if !strings.HasPrefix(w.Body.String(), "Error parsing JSON: ") {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestListAndGetRoutes(t *testing.T) {
	r, _, id := setupRouter(t)

	w := do(r, http.MethodGet, "/api/graphs", "")
	var list []Snapshot
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil || len(list) != 1 {
		t.Fatalf("list = %s (%v)", w.Body.String(), err)
	}

	w = do(r, http.MethodGet, "/api/graphs/"+id, "")
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	w = do(r, http.MethodGet, "/api/graphs/missing", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("missing status = %d, want 404", w.Code)
	}
	w = do(r, http.MethodDelete, "/api/graphs/"+id, "")
	if w.Code != http.StatusNoContent {
		t.Errorf("delete status = %d, want 204", w.Code)
	}
	w = do(r, http.MethodGet, "/api/graphs/"+id+"/network", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("view of deleted status = %d, want 404", w.Code)
	}
}

func TestTopView(t *testing.T) {
	r, _, id := setupRouter(t)

	w := do(r, http.MethodGet, "/api/graphs/"+id+"/top?k=1", "")
	var ranked []graph.RankedNode
	if err := json.Unmarshal(w.Body.Bytes(), &ranked); err != nil {
		t.Fatalf("decode: %v", err)
	}
	// Every node totals 2, so node order decides.
	if len(ranked) != 1 || ranked[0].ID != "pkg/a/foo" {
		t.Errorf("top = %+v", ranked)
	}

	w = do(r, http.MethodGet, "/api/graphs/"+id+"/top?k=abc", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad k status = %d, want 400", w.Code)
	}
}

func TestDetailsView(t *testing.T) {
	r, _, id := setupRouter(t)

	w := do(r, http.MethodGet, "/api/graphs/"+id+"/details?node=pkg/b/baz", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var d graph.NodeDetails
	if err := json.Unmarshal(w.Body.Bytes(), &d); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if d.Incoming != 2 || d.Outgoing != 0 || len(d.Callers) != 2 {
		t.Errorf("details = %+v", d)
	}

	for _, path := range []string{
		"/details?node=pkg/b/baz&depth=100",
		"/calltree?node=pkg/a/foo&depth=100",
		"/mermaid?node=pkg/a/foo&depth=100",
	} {
		if w := do(r, http.MethodGet, "/api/graphs/"+id+path, ""); w.Code != http.StatusBadRequest {
			t.Errorf("%s status = %d, want 400", path, w.Code)
		}
	}
	w = do(r, http.MethodGet, fmt.Sprintf("/api/graphs/%s/calltree?node=pkg/a/foo&depth=%d", id, graph.MaxCallTreeDepth), "")
	if w.Code != http.StatusOK {
		t.Errorf("max depth status = %d, want 200", w.Code)
	}

	w = do(r, http.MethodGet, "/api/graphs/"+id+"/details?node=ghost", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown node status = %d, want 404", w.Code)
	}
	w = do(r, http.MethodGet, "/api/graphs/"+id+"/details", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing node status = %d, want 400", w.Code)
	}
}

func TestChordTopThreshold(t *testing.T) {
	r, _, id := setupRouter(t)

	w := do(r, http.MethodGet, "/api/graphs/"+id+"/chord/top?k=25", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var view graph.ChordView
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if view.Threshold != 25 || len(view.Groups) != 3 {
		t.Errorf("view threshold %d groups %d", view.Threshold, len(view.Groups))
	}

	w = do(r, http.MethodGet, "/api/graphs/"+id+"/chord/top?k=30", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("odd threshold status = %d, want 400", w.Code)
	}
}

func TestTreemapDelimiterOverride(t *testing.T) {
	r, _, id := setupRouter(t)

	w := do(r, http.MethodGet, "/api/graphs/"+id+"/treemap", "")
	var view struct {
		Total  int                 `json:"total"`
		Leaves []graph.TreemapLeaf `json:"leaves"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if view.Total != 6 || len(view.Leaves) != 3 {
		t.Errorf("treemap total %d leaves %d", view.Total, len(view.Leaves))
	}
	for _, l := range view.Leaves {
		if !strings.HasPrefix(l.Path, "root/pkg/") {
			t.Errorf("leaf path %q", l.Path)
		}
	}

	w = do(r, http.MethodGet, "/api/graphs/"+id+"/treemap?delim=.", "")
	view.Leaves = nil
	json.Unmarshal(w.Body.Bytes(), &view)
	for _, l := range view.Leaves {
		if l.Label != l.ID {
			t.Errorf("leaf %q should sit directly under root, got label %q", l.ID, l.Label)
		}
	}
}

func TestNodesFilterAndMermaid(t *testing.T) {
	r, _, id := setupRouter(t)

	w := do(r, http.MethodGet, "/api/graphs/"+id+"/nodes?filter=BA", "")
	var nodes []graph.Node
	if err := json.Unmarshal(w.Body.Bytes(), &nodes); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(nodes) != 2 {
		t.Errorf("filter matched %d nodes, want 2", len(nodes))
	}

	w = do(r, http.MethodGet, "/api/graphs/"+id+"/mermaid?node=pkg/a/foo", "")
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("content type = %q", ct)
	}
	if !strings.HasPrefix(w.Body.String(), "graph TD\n") {
		t.Errorf("mermaid = %q", w.Body.String())
	}

	w = do(r, http.MethodGet, "/api/graphs/"+id+"/mermaid", "")
	if !strings.HasPrefix(w.Body.String(), "graph LR\n") {
		t.Errorf("top mermaid = %q", w.Body.String())
	}
}

func TestHeatmapAndBundleViews(t *testing.T) {
	r, _, id := setupRouter(t)

	w := do(r, http.MethodGet, "/api/graphs/"+id+"/heatmap?k=2", "")
	var rows []graph.HeatmapRow
	if err := json.Unmarshal(w.Body.Bytes(), &rows); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("heatmap rows = %d, want 2", len(rows))
	}

	for _, view := range []string{"degrees", "network", "chord", "bundle", "calltree?node=pkg/a/foo"} {
		w = do(r, http.MethodGet, "/api/graphs/"+id+"/"+view, "")
		if w.Code != http.StatusOK {
			t.Errorf("%s status = %d", view, w.Code)
		}
	}
}
