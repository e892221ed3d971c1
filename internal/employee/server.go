package employee

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"

	"github.com/iehaus/buildboard/internal/department"
	"github.com/iehaus/buildboard/pkg/cerr"
)

// Authorizer gates the master-data management endpoints.
type Authorizer interface {
	CanManageEmployees(actor *Employee) bool
}

type Server struct {
	repo  Repository
	authz Authorizer
}

func NewServer(repo Repository, authz Authorizer) *Server {
	return &Server{repo: repo, authz: authz}
}

func (s *Server) Routes(r chi.Router) {
	r.Get("/employees", s.list)
	r.Get("/employees/{id}", s.get)
	r.Post("/employees", s.create)
	r.Put("/employees/{id}", s.update)
	r.Delete("/employees/{id}", s.delete)
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	employees, err := s.repo.List(ctx)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, map[string]any{"employees": employees})
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	e, err := s.repo.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, map[string]any{"employee": e})
}

type employeeRequest struct {
	Name     string `json:"name"`
	Role     string `json:"role"`
	Position string `json:"position"`
	Branch   string `json:"branch"`
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, err := ActorFromRequest(ctx, s.repo, r)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	if !s.authz.CanManageEmployees(actor) {
		cerr.SetNewJSONError(ctx, cerr.PermissionDenied, "not allowed to manage employees", nil)
		return
	}

	var req employeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "invalid request body", err)
		return
	}
	if req.Name == "" {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "name is required", nil)
		return
	}

	now := time.Now()
	e := &Employee{
		ID:        ulid.Make().String(),
		Name:      req.Name,
		Role:      Role(req.Role),
		Position:  department.Position(req.Position),
		Branch:    req.Branch,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, e); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, map[string]any{"employee": e})
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, err := ActorFromRequest(ctx, s.repo, r)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	if !s.authz.CanManageEmployees(actor) {
		cerr.SetNewJSONError(ctx, cerr.PermissionDenied, "not allowed to manage employees", nil)
		return
	}

	e, err := s.repo.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}

	var req employeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "invalid request body", err)
		return
	}
	if req.Name != "" {
		e.Name = req.Name
	}
	if req.Role != "" {
		e.Role = Role(req.Role)
	}
	if req.Position != "" {
		e.Position = department.Position(req.Position)
	}
	if req.Branch != "" {
		e.Branch = req.Branch
	}
	e.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, e); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, map[string]any{"employee": e})
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, err := ActorFromRequest(ctx, s.repo, r)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	if !s.authz.CanManageEmployees(actor) {
		cerr.SetNewJSONError(ctx, cerr.PermissionDenied, "not allowed to manage employees", nil)
		return
	}
	if err := s.repo.Delete(ctx, chi.URLParam(r, "id")); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, map[string]any{})
}
