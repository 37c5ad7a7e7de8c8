package analyzer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/ziadkadry99/callscope/internal/blacklist"
	"github.com/ziadkadry99/callscope/internal/db"
	"github.com/ziadkadry99/callscope/internal/snapshots"
)

func setupService(t *testing.T) (*Service, *blacklist.Store, *snapshots.Store) {
	t.Helper()
	d, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	bl := blacklist.NewStore(d)
	snaps := snapshots.NewStore(d)
	return &Service{Blacklist: bl, Snapshots: snaps}, bl, snaps
}

func postAnalyze(svc *Service, path string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	RegisterRoutes(r, svc)
	req := httptest.NewRequest(http.MethodPost, "/api/analyze?path="+url.QueryEscape(path), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAnalyzeRoute(t *testing.T) {
	svc, _, snaps := setupService(t)

	w := postAnalyze(svc, strutsRoot)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var res Result
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(res.Nodes) != 9 || len(res.Links) != 9 {
		t.Errorf("got %d nodes %d links, want 9/9", len(res.Nodes), len(res.Links))
	}

	id := w.Header().Get(SnapshotHeader)
	if id == "" {
		t.Fatal("missing snapshot header")
	}
	snap, err := snaps.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("Get snapshot: %v", err)
	}
	if snap.Delimiter != "." || snap.Language != "java" || snap.LinkCount != 9 {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestAnalyzeRouteUsesStoredBlacklist(t *testing.T) {
	svc, bl, _ := setupService(t)
	if err := bl.Replace(context.Background(), []string{"audit"}); err != nil {
		t.Fatalf("Replace: %v", err)
	}

	w := postAnalyze(svc, strutsRoot)
	var res Result
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(res.Links) != 6 {
		t.Errorf("got %d links, want 6", len(res.Links))
	}
}

func TestAnalyzeRouteErrors(t *testing.T) {
	svc, _, _ := setupService(t)

	w := postAnalyze(svc, "  ")
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty path status = %d, want 400", w.Code)
	}
	if got := strings.TrimSpace(w.Body.String()); got != "Please enter a path" {
		t.Errorf("empty path body = %q", got)
	}

	w = postAnalyze(svc, filepath.Join(t.TempDir(), "missing"))
	if w.Code != http.StatusInternalServerError {
		t.Errorf("missing dir status = %d, want 500", w.Code)
	}
	if !strings.HasPrefix(w.Body.String(), "Error: ") {
		t.Errorf("missing dir body = %q", w.Body.String())
	}
}

func TestServiceWithoutStores(t *testing.T) {
	svc := &Service{Options: Options{Blacklist: NewBlacklist("log")}}
	res, snap, err := svc.Run(context.Background(), strutsRoot)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if snap != nil {
		t.Error("expected no snapshot without a saver")
	}
	if len(res.Links) != 8 {
		t.Errorf("got %d links, want 8", len(res.Links))
	}
}
