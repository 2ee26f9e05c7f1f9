package markup

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"markpin/kit"
)

func newTestRouter(t *testing.T) (*Service, http.Handler) {
	t.Helper()
	svc := newTestService(t)
	r := chi.NewRouter()
	svc.Routes(r)
	return svc, r
}

const ingestBody = `{
	"scrapedDataId": "s1",
	"projectName": "Proj",
	"threads": [{
		"threadName": "T1",
		"imageIndex": "",
		"imagePath": "/img/a.png",
		"imageFilename": "a.png",
		"comments": [{"index": 1, "content": "looks good", "user": "bob"}]
	}]
}`

func TestAPIIngestAndFetch(t *testing.T) {
	// WHAT: POST /api/markup/ingest persists the payload; GET serves it back.
	_, r := newTestRouter(t)

	req := httptest.NewRequest("POST", "/api/markup/ingest", strings.NewReader(ingestBody))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != 201 {
		t.Fatalf("ingest status = %d, body %s", w.Code, w.Body)
	}
	var created map[string]string
	if err := json.NewDecoder(w.Body).Decode(&created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created["projectId"] == "" {
		t.Fatal("empty projectId in response")
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/api/markup/projects/s1", nil))
	if w.Code != 200 {
		t.Fatalf("get status = %d, body %s", w.Code, w.Body)
	}
	var tree struct {
		Name    string `json:"name"`
		Threads []struct {
			Name       string          `json:"name"`
			ImageIndex json.RawMessage `json:"imageIndex"`
		} `json:"threads"`
	}
	if err := json.NewDecoder(w.Body).Decode(&tree); err != nil {
		t.Fatalf("decode tree: %v", err)
	}
	if tree.Name != "Proj" || len(tree.Threads) != 1 || tree.Threads[0].Name != "T1" {
		t.Errorf("tree = %+v", tree)
	}
	// The blank imageIndex must not resurface as 0.
	if string(tree.Threads[0].ImageIndex) != "" && string(tree.Threads[0].ImageIndex) != "null" {
		t.Errorf("imageIndex = %s, want omitted or null", tree.Threads[0].ImageIndex)
	}
}

func TestAPIIngestRejectsBadPayloads(t *testing.T) {
	// WHAT: Malformed JSON and invalid payloads both map to 400.
	_, r := newTestRouter(t)

	for name, body := range map[string]string{
		"bad json":    `{"scrapedDataId": `,
		"missing ref": `{"projectName": "P", "threads": []}`,
	} {
		t.Run(name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest("POST", "/api/markup/ingest", strings.NewReader(body)))
			if w.Code != 400 {
				t.Errorf("status = %d, want 400 (body %s)", w.Code, w.Body)
			}
		})
	}
}

func TestAPIProjectNotFound(t *testing.T) {
	_, r := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/api/markup/projects/nope", nil))
	if w.Code != 404 {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestAPIListProjects(t *testing.T) {
	_, r := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/api/markup/ingest", strings.NewReader(ingestBody)))
	if w.Code != 201 {
		t.Fatalf("ingest status = %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/api/markup/projects", nil))
	if w.Code != 200 {
		t.Fatalf("list status = %d", w.Code)
	}
	var projects []struct {
		ScrapedDataID string `json:"scrapedDataId"`
	}
	if err := json.NewDecoder(w.Body).Decode(&projects); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(projects) != 1 || projects[0].ScrapedDataID != "s1" {
		t.Errorf("projects = %+v", projects)
	}
}

func TestStatusForTaxonomy(t *testing.T) {
	// WHAT: Each sentinel maps to its HTTP code; unknown errors are 500.
	tests := []struct {
		err  error
		want int
	}{
		{ErrValidation, 400},
		{ErrNotFound, 404},
		{ErrConstraint, 409},
		{ErrTransientStore, 503},
		{http.ErrBodyNotAllowed, 500},
	}
	for _, tc := range tests {
		if got := statusFor(tc.err); got != tc.want {
			t.Errorf("statusFor(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestKitContextTagsRequests(t *testing.T) {
	// WHAT: The router middleware stamps transport, request id, and remote
	// address into the kit context so Ingest's log lines can identify callers.
	var gotTransport, gotReqID, gotRemote string
	h := kitContext(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTransport = kit.GetTransport(r.Context())
		gotReqID = kit.GetRequestID(r.Context())
		gotRemote = kit.GetRemoteAddr(r.Context())
	}))

	req := httptest.NewRequest("GET", "/health", nil)
	req = req.WithContext(context.WithValue(req.Context(), chimw.RequestIDKey, "req-1"))
	h.ServeHTTP(httptest.NewRecorder(), req)

	if gotTransport != "http" {
		t.Errorf("transport = %q, want http", gotTransport)
	}
	if gotReqID != "req-1" {
		t.Errorf("request id = %q, want req-1", gotReqID)
	}
	if gotRemote == "" {
		t.Error("remote addr not propagated")
	}
}

func TestRequestAttrsSkipsAbsentFields(t *testing.T) {
	attrs := requestAttrs(context.Background())
	if len(attrs) != 2 || attrs[0] != "transport" || attrs[1] != "http" {
		t.Fatalf("bare context attrs = %v", attrs)
	}

	ctx := kit.WithTransport(context.Background(), "mcp_quic")
	ctx = kit.WithSessionID(ctx, "quic_abc")
	attrs = requestAttrs(ctx)
	if len(attrs) != 4 || attrs[1] != "mcp_quic" || attrs[3] != "quic_abc" {
		t.Fatalf("quic context attrs = %v", attrs)
	}
}
