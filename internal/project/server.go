package project

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"

	"github.com/iehaus/buildboard/internal/employee"
	"github.com/iehaus/buildboard/internal/eventbus"
	"github.com/iehaus/buildboard/pkg/cerr"
)

// Authorizer decides whether the acting employee may mutate a project.
type Authorizer interface {
	CanEdit(actor *employee.Employee, p *Project) bool
}

// TaskPurger removes all task instances owned by a project. Tasks are
// exclusively owned, so deleting a project must take them along.
type TaskPurger interface {
	DeleteByProject(ctx context.Context, projectID string) error
}

type Server struct {
	repo         Repository
	employeeRepo employee.Repository
	authz        Authorizer
	tasks        TaskPurger
	bus          *eventbus.Bus
}

func NewServer(repo Repository, employeeRepo employee.Repository, authz Authorizer, tasks TaskPurger, bus *eventbus.Bus) *Server {
	return &Server{
		repo:         repo,
		employeeRepo: employeeRepo,
		authz:        authz,
		tasks:        tasks,
		bus:          bus,
	}
}

func (s *Server) Routes(r chi.Router) {
	r.Get("/projects", s.list)
	r.Get("/projects/{id}", s.get)
	r.Post("/projects", s.create)
	r.Put("/projects/{id}", s.update)
	r.Delete("/projects/{id}", s.delete)
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	projects, err := s.repo.List(ctx)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, map[string]any{"projects": projects})
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, err := s.repo.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, map[string]any{"project": p})
}

type projectRequest struct {
	CustomerName           *string    `json:"customer_name"`
	AnchorDate             *time.Time `json:"anchor_date"`
	Status                 *string    `json:"status"`
	AssignedSalesID        *string    `json:"assigned_sales_id"`
	AssignedDesignID       *string    `json:"assigned_design_id"`
	AssignedConstructionID *string    `json:"assigned_construction_id"`
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, err := employee.ActorFromRequest(ctx, s.employeeRepo, r); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}

	var req projectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "invalid request body", err)
		return
	}
	if req.CustomerName == nil || *req.CustomerName == "" {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "customer_name is required", nil)
		return
	}

	now := time.Now()
	p := &Project{
		ID:           ulid.Make().String(),
		CustomerName: *req.CustomerName,
		AnchorDate:   req.AnchorDate,
		Status:       StatusPreContract,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if req.Status != nil {
		p.Status = Status(*req.Status)
	}
	if req.AssignedSalesID != nil {
		p.AssignedSalesID = *req.AssignedSalesID
	}
	if req.AssignedDesignID != nil {
		p.AssignedDesignID = *req.AssignedDesignID
	}
	if req.AssignedConstructionID != nil {
		p.AssignedConstructionID = *req.AssignedConstructionID
	}

	if err := s.repo.Create(ctx, p); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	s.bus.PublishNew(eventbus.TypeProjectCreated, p.ID, nil)
	cerr.SetJSONResponse(ctx, map[string]any{"project": p})
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, err := employee.ActorFromRequest(ctx, s.employeeRepo, r)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}

	p, err := s.repo.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	if !s.authz.CanEdit(actor, p) {
		cerr.SetNewJSONError(ctx, cerr.PermissionDenied, "not allowed to edit this project", nil)
		return
	}

	var req projectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "invalid request body", err)
		return
	}
	if req.CustomerName != nil {
		p.CustomerName = *req.CustomerName
	}
	if req.AnchorDate != nil {
		// Moving the anchor date does not touch materialized tasks; the
		// regeneration endpoint exists for that.
		p.AnchorDate = req.AnchorDate
	}
	if req.Status != nil {
		p.Status = Status(*req.Status)
	}
	if req.AssignedSalesID != nil {
		p.AssignedSalesID = *req.AssignedSalesID
	}
	if req.AssignedDesignID != nil {
		p.AssignedDesignID = *req.AssignedDesignID
	}
	if req.AssignedConstructionID != nil {
		p.AssignedConstructionID = *req.AssignedConstructionID
	}
	p.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, p); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	s.bus.PublishNew(eventbus.TypeProjectUpdated, p.ID, nil)
	cerr.SetJSONResponse(ctx, map[string]any{"project": p})
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, err := employee.ActorFromRequest(ctx, s.employeeRepo, r)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}

	id := chi.URLParam(r, "id")
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	if !s.authz.CanEdit(actor, p) {
		cerr.SetNewJSONError(ctx, cerr.PermissionDenied, "not allowed to edit this project", nil)
		return
	}

	if err := s.tasks.DeleteByProject(ctx, id); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	s.bus.PublishNew(eventbus.TypeProjectDeleted, id, nil)
	cerr.SetJSONResponse(ctx, map[string]any{})
}
