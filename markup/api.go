package markup

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"markpin/kit"
)

// Routes mounts the HTTP API onto a chi router.
//
//	POST /api/markup/ingest        — ingest one scraped project payload
//	GET  /api/markup/projects      — list stored projects
//	GET  /api/markup/projects/{id} — full tree by scraped-data reference
//	GET  /health
func (svc *Service) Routes(r chi.Router) {
	r.Use(kitContext)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, 200, map[string]string{"status": "ok"})
	})

	r.Post("/api/markup/ingest", func(w http.ResponseWriter, r *http.Request) {
		var req IngestRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, 400, err)
			return
		}
		projectID, err := svc.Ingest(r.Context(), req.ScrapedDataID, req.ProjectName, req.Threads)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, 201, map[string]string{"projectId": projectID})
	})

	r.Get("/api/markup/projects", func(w http.ResponseWriter, r *http.Request) {
		projects, err := svc.ListProjects(r.Context())
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, 200, projects)
	})

	r.Get("/api/markup/projects/{ref}", func(w http.ResponseWriter, r *http.Request) {
		ref := chi.URLParam(r, "ref")
		tree, err := svc.GetProject(r.Context(), ref)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, 200, tree)
	})
}

// kitContext tags the request context with its transport identity so the
// service's log lines carry it. The request id comes from chi's RequestID
// middleware when the server mounts it.
func kitContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := kit.WithTransport(r.Context(), "http")
		if id := chimw.GetReqID(r.Context()); id != "" {
			ctx = kit.WithRequestID(ctx, id)
		}
		ctx = kit.WithRemoteAddr(ctx, r.RemoteAddr)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// statusFor maps the error taxonomy onto HTTP codes. Callers can retry 503s;
// 409 means the payload collided with existing data in a way a retry won't fix.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return 400
	case errors.Is(err, ErrNotFound):
		return 404
	case errors.Is(err, ErrConstraint):
		return 409
	case errors.Is(err, ErrTransientStore):
		return 503
	default:
		return 500
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
