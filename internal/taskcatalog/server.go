package taskcatalog

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iehaus/buildboard/internal/employee"
	"github.com/iehaus/buildboard/pkg/cerr"
)

// Authorizer gates the catalog management surface.
type Authorizer interface {
	CanManageTaskMasters(actor *employee.Employee) bool
}

type Server struct {
	catalog      *Catalog
	employeeRepo employee.Repository
	authz        Authorizer
}

func NewServer(catalog *Catalog, employeeRepo employee.Repository, authz Authorizer) *Server {
	return &Server{catalog: catalog, employeeRepo: employeeRepo, authz: authz}
}

func (s *Server) Routes(r chi.Router) {
	r.Get("/task-templates", s.list)
	r.Post("/task-templates/reload", s.reload)
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	templates, err := s.catalog.List(ctx)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, map[string]any{"templates": templates})
}

// reload re-reads the catalog files on demand. The catalog itself stays
// read-only over HTTP; edits happen in the deployed files.
func (s *Server) reload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, err := employee.ActorFromRequest(ctx, s.employeeRepo, r)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	if !s.authz.CanManageTaskMasters(actor) {
		cerr.SetNewJSONError(ctx, cerr.PermissionDenied, "not allowed to manage task templates", nil)
		return
	}
	if err := s.catalog.Load(ctx); err != nil {
		cerr.SetNewJSONError(ctx, cerr.Internal, "failed to reload catalog", err)
		return
	}
	cerr.SetJSONResponse(ctx, map[string]any{"templates_loaded": s.catalog.Len()})
}
