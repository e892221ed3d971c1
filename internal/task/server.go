package task

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"

	"github.com/iehaus/buildboard/internal/department"
	"github.com/iehaus/buildboard/internal/employee"
	"github.com/iehaus/buildboard/internal/eventbus"
	"github.com/iehaus/buildboard/internal/project"
	"github.com/iehaus/buildboard/pkg/cerr"
)

// Authorizer decides whether the acting employee may mutate tasks of a project.
type Authorizer interface {
	CanEdit(actor *employee.Employee, p *project.Project) bool
}

type Server struct {
	repo         Repository
	projectRepo  project.Repository
	employeeRepo employee.Repository
	authz        Authorizer
	regenerator  *Regenerator
	bus          *eventbus.Bus
	now          func() time.Time
}

func NewServer(repo Repository, projectRepo project.Repository, employeeRepo employee.Repository, authz Authorizer, regenerator *Regenerator, bus *eventbus.Bus, now func() time.Time) *Server {
	if now == nil {
		now = time.Now
	}
	return &Server{
		repo:         repo,
		projectRepo:  projectRepo,
		employeeRepo: employeeRepo,
		authz:        authz,
		regenerator:  regenerator,
		bus:          bus,
		now:          now,
	}
}

func (s *Server) Routes(r chi.Router) {
	r.Get("/projects/{projectID}/tasks", s.listByProject)
	r.Post("/projects/{projectID}/tasks", s.create)
	r.Post("/projects/{projectID}/tasks/regenerate", s.regenerate)
	r.Get("/tasks/{id}", s.get)
	r.Put("/tasks/{id}", s.update)
	r.Post("/tasks/{id}/status", s.changeStatus)
	r.Delete("/tasks/{id}", s.delete)
}

// taskView decorates a task with its derived temporal status so that no
// client ever recomputes overdue-ness on its own.
type taskView struct {
	*Task
	Bucket      Bucket `json:"bucket"`
	Overdue     bool   `json:"overdue"`
	OverdueDays int    `json:"overdue_days"`
	DueToday    bool   `json:"due_today"`
	DueThisWeek bool   `json:"due_this_week"`
}

func (s *Server) view(t *Task) taskView {
	now := s.now()
	return taskView{
		Task:        t,
		Bucket:      BucketOf(t, now),
		Overdue:     IsOverdue(t, now),
		OverdueDays: OverdueDays(t, now),
		DueToday:    IsDueToday(t, now),
		DueThisWeek: IsDueThisWeek(t, now),
	}
}

func (s *Server) views(tasks []*Task) []taskView {
	out := make([]taskView, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, s.view(t))
	}
	return out
}

func (s *Server) listByProject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tasks, err := s.repo.ListByProject(ctx, chi.URLParam(r, "projectID"))
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, map[string]any{"tasks": s.views(tasks)})
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	t, err := s.repo.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, map[string]any{"task": s.view(t)})
}

type createTaskRequest struct {
	Title                 string     `json:"title"`
	Description           string     `json:"description"`
	ResponsibleDepartment string     `json:"responsible_department"`
	DueDate               *time.Time `json:"due_date"`
	AssignedTo            string     `json:"assigned_to"`
	Priority              string     `json:"priority"`
}

// create adds an ad-hoc task outside the template catalog.
func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	_, p, ok := s.editableProject(w, r, chi.URLParam(r, "projectID"))
	if !ok {
		return
	}

	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "invalid request body", err)
		return
	}
	if req.Title == "" {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "title is required", nil)
		return
	}

	now := s.now()
	priority := Priority(req.Priority)
	if priority == "" {
		priority = PriorityLow
	}
	t := &Task{
		ID:                    ulid.Make().String(),
		ProjectID:             p.ID,
		Title:                 req.Title,
		Description:           req.Description,
		ResponsibleDepartment: department.Position(req.ResponsibleDepartment),
		DueDate:               req.DueDate,
		AssignedTo:            req.AssignedTo,
		Status:                StatusNotStarted,
		Priority:              priority,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	s.bus.PublishNew(eventbus.TypeTaskCreated, t.ID, map[string]string{"project_id": t.ProjectID})
	cerr.SetJSONResponse(ctx, map[string]any{"task": s.view(t)})
}

type updateTaskRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	DueDate     *time.Time `json:"due_date"`
	ClearDue    bool       `json:"clear_due_date"`
	AssignedTo  *string    `json:"assigned_to"`
	Priority    *string    `json:"priority"`
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	t, err := s.repo.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	if _, _, ok := s.editableProject(w, r, t.ProjectID); !ok {
		return
	}

	var req updateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "invalid request body", err)
		return
	}
	if req.Title != nil {
		t.Title = *req.Title
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.DueDate != nil {
		t.DueDate = req.DueDate
	} else if req.ClearDue {
		t.DueDate = nil
	}
	if req.AssignedTo != nil {
		t.AssignedTo = *req.AssignedTo
	}
	if req.Priority != nil {
		t.Priority = Priority(*req.Priority)
	}
	t.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, t); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	s.bus.PublishNew(eventbus.TypeTaskUpdated, t.ID, map[string]string{"project_id": t.ProjectID})
	cerr.SetJSONResponse(ctx, map[string]any{"task": s.view(t)})
}

type changeStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) changeStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	t, err := s.repo.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	if _, _, ok := s.editableProject(w, r, t.ProjectID); !ok {
		return
	}

	var req changeStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "invalid request body", err)
		return
	}
	next := Status(req.Status)
	switch next {
	case StatusNotStarted, StatusRequested, StatusCompleted, StatusDelayed, StatusNotApplicable:
	default:
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "unknown task status", nil)
		return
	}
	// Closed tasks stay closed; regeneration is the only way back.
	if t.Closed() {
		cerr.SetNewJSONError(ctx, cerr.FailedPrecondition, "task is already closed", nil)
		return
	}

	now := s.now()
	t.Status = next
	if next == StatusCompleted {
		t.ActualCompletionDate = &now
	}
	t.UpdatedAt = now

	if err := s.repo.Update(ctx, t); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	s.bus.PublishNew(eventbus.TypeTaskStatusChanged, t.ID, map[string]string{
		"project_id": t.ProjectID,
		"status":     string(next),
	})
	cerr.SetJSONResponse(ctx, map[string]any{"task": s.view(t)})
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	t, err := s.repo.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	if _, _, ok := s.editableProject(w, r, t.ProjectID); !ok {
		return
	}
	if err := s.repo.Delete(ctx, t.ID); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	s.bus.PublishNew(eventbus.TypeTaskUpdated, t.ID, map[string]string{"project_id": t.ProjectID})
	cerr.SetJSONResponse(ctx, map[string]any{})
}

type regenerateRequest struct {
	Confirm bool `json:"confirm"`
}

func (s *Server) regenerate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	projectID := chi.URLParam(r, "projectID")
	actor, _, ok := s.editableProject(w, r, projectID)
	if !ok {
		return
	}

	var req regenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "invalid request body", err)
		return
	}

	tasks, err := s.regenerator.Regenerate(ctx, projectID, actor.ID, req.Confirm)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, map[string]any{"tasks": s.views(tasks)})
}

// editableProject resolves the actor and the project and enforces edit
// permission. On failure the error response is already set.
func (s *Server) editableProject(w http.ResponseWriter, r *http.Request, projectID string) (*employee.Employee, *project.Project, bool) {
	ctx := r.Context()
	actor, err := employee.ActorFromRequest(ctx, s.employeeRepo, r)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return nil, nil, false
	}
	p, err := s.projectRepo.Get(ctx, projectID)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return nil, nil, false
	}
	if !s.authz.CanEdit(actor, p) {
		cerr.SetNewJSONError(ctx, cerr.PermissionDenied, "not allowed to edit this project's tasks", nil)
		return nil, nil, false
	}
	return actor, p, true
}
