package influencer

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/rpattn/influencer-api/internal/domain"
	"github.com/rpattn/influencer-api/internal/middleware"
)

func newTestHandler(repo *stubInfluencerRepo) http.Handler {
	service := NewService(repo, WithLogger(quietLogger()))
	return NewHTTPHandler(service, quietLogger())
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dest any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dest); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
}

func TestHandlerRejectsNonGetMethods(t *testing.T) {
	handler := newTestHandler(&stubInfluencerRepo{})

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(method, "/api/influencers", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("%s: expected 405, got %d", method, rec.Code)
		}
		var body map[string]string
		decodeBody(t, rec, &body)
		if body["error"] != "Method not allowed" {
			t.Fatalf("unexpected body %v", body)
		}
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/influencers", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for OPTIONS, got %d", rec.Code)
	}
}

func TestHandlerListShape(t *testing.T) {
	repo := &stubInfluencerRepo{summaries: []domain.Record{
		{"id": "1", "username": "ana"},
		{"id": "2", "username": "bo"},
	}}
	rec := httptest.NewRecorder()
	newTestHandler(repo).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/influencers", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("Content-Type") != "application/json" {
		t.Fatalf("unexpected content type %q", rec.Header().Get("Content-Type"))
	}
	var body []map[string]any
	decodeBody(t, rec, &body)
	if len(body) != 2 || body[1]["username"] != "bo" {
		t.Fatalf("unexpected list body %v", body)
	}
}

func TestHandlerPageShape(t *testing.T) {
	repo := &stubInfluencerRepo{page: domain.PageResult{
		Rows:       []domain.Record{{"id": "1", "username": "ana"}},
		TotalCount: 33,
		Page:       1,
		TotalPages: 3,
		HasMore:    true,
	}}
	rec := httptest.NewRecorder()
	newTestHandler(repo).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/influencers?category=fitness&limit=16", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]any
	decodeBody(t, rec, &body)
	for _, key := range []string{"rows", "totalCount", "page", "totalPages", "hasMore", "limit", "offset"} {
		if _, ok := body[key]; !ok {
			t.Fatalf("expected %q in page envelope %v", key, body)
		}
	}
	if body["totalCount"] != float64(33) || body["hasMore"] != true {
		t.Fatalf("unexpected metadata %v", body)
	}
	call := repo.listPageCalls[0]
	if call.filters[domain.FilterCategory] != "fitness" || call.page.Limit != 16 {
		t.Fatalf("unexpected repository call %+v", call)
	}
}

func TestHandlerSingleShapeThroughProfileLoader(t *testing.T) {
	repo := &stubInfluencerRepo{profiles: map[string]domain.Record{
		"username:ana": fencedProfile("1", "ana"),
	}}
	service := NewService(repo, WithLogger(quietLogger()))
	handler := middleware.ProfileLoaderMiddleware(repo)(NewHTTPHandler(service, quietLogger()))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/influencers?username=ana", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]any
	decodeBody(t, rec, &body)
	parsed, ok := body["ai_analysis"].(map[string]any)
	if !ok || parsed["niche"] != "fitness" {
		t.Fatalf("expected parsed analysis, got %#v", body["ai_analysis"])
	}
	if repo.findCalls != 1 || repo.getCalls != 0 {
		t.Fatalf("expected lookup through the loader, got find=%d get=%d", repo.findCalls, repo.getCalls)
	}
}

func TestHandlerNotFound(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestHandler(&stubInfluencerRepo{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/influencers?id=404", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	var body map[string]string
	decodeBody(t, rec, &body)
	if body["error"] != "Influencer not found" {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestHandlerHidesStoreErrors(t *testing.T) {
	repo := &stubInfluencerRepo{err: errors.New(`relation "scrapped.secret" does not exist`)}
	rec := httptest.NewRecorder()
	newTestHandler(repo).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/influencers?search=x", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "scrapped") {
		t.Fatalf("store error leaked: %s", rec.Body.String())
	}
	var body map[string]string
	decodeBody(t, rec, &body)
	if body["error"] != "Internal server error" {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestHandlerExportWritesWorkbook(t *testing.T) {
	repo := &stubInfluencerRepo{page: domain.PageResult{Rows: []domain.Record{
		{"id": "1", "username": "ana", "category": "fitness", "ai_analysis": `{"a":1}`},
		{"id": "1", "username": "ana", "category": "food"},
		{"id": "2", "username": "bo", "category": nil},
	}}}
	rec := httptest.NewRecorder()
	newTestHandler(repo).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/influencers/export?category=fitness", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("Content-Type") != xlsxContentType {
		t.Fatalf("unexpected content type %q", rec.Header().Get("Content-Type"))
	}

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(exportSheet)
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 deduplicated rows, got %d: %v", len(rows), rows)
	}
	wantHeader := []string{"ai_analysis", "category", "id", "username"}
	if strings.Join(rows[0], ",") != strings.Join(wantHeader, ",") {
		t.Fatalf("unexpected header %v", rows[0])
	}
	if rows[1][0] != `{"a":1}` || rows[1][1] != "fitness" {
		t.Fatalf("unexpected first row %v", rows[1])
	}
	if rows[2][2] != "2" || rows[2][3] != "bo" {
		t.Fatalf("unexpected second row %v", rows[2])
	}
}

func TestHandlerUnknownSubpathsAreNotFound(t *testing.T) {
	repo := &stubInfluencerRepo{}
	handler := newTestHandler(repo)

	for _, path := range []string{"/api/influencers/42", "/api/influencers/42/export", "/api/influencers/export/extra"} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusNotFound {
			t.Fatalf("%s: expected 404, got %d", path, rec.Code)
		}
		var body map[string]string
		decodeBody(t, rec, &body)
		if body["error"] != "Not found" {
			t.Fatalf("%s: unexpected body %v", path, body)
		}
	}
	if len(repo.listPageCalls) != 0 || repo.findCalls != 0 || repo.getCalls != 0 {
		t.Fatalf("expected no repository calls for unknown paths")
	}
}
