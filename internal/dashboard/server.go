package dashboard

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/iehaus/buildboard/internal/authz"
	"github.com/iehaus/buildboard/internal/employee"
	"github.com/iehaus/buildboard/internal/fiscal"
	"github.com/iehaus/buildboard/pkg/cerr"
)

type Server struct {
	builder      *Builder
	refresher    *Refresher
	employeeRepo employee.Repository
}

func NewServer(builder *Builder, refresher *Refresher, employeeRepo employee.Repository) *Server {
	return &Server{
		builder:      builder,
		refresher:    refresher,
		employeeRepo: employeeRepo,
	}
}

func (s *Server) Routes(r chi.Router) {
	r.Get("/dashboard", s.get)
}

// get serves a snapshot. fiscal_year defaults to the running fiscal year,
// scope defaults to company. The company/current-year combination is served
// from the refresher's warm cache when available; everything else is built
// on demand.
func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	scope, err := authz.ParseScope(r.URL.Query().Get("scope"))
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}

	now := s.builder.now().In(s.builder.loc)
	year := fiscal.YearOf(now)
	if raw := r.URL.Query().Get("fiscal_year"); raw != "" {
		year, err = strconv.Atoi(raw)
		if err != nil {
			cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "fiscal_year must be an integer", err)
			return
		}
	}

	var actor *employee.Employee
	if scope != authz.ScopeCompany {
		// Personal and branch views are relative to the caller.
		actor, err = employee.ActorFromRequest(ctx, s.employeeRepo, r)
		if err != nil {
			cerr.SetJSONError(ctx, err)
			return
		}
	}

	if scope == authz.ScopeCompany && year == fiscal.YearOf(now) {
		if cached := s.refresher.Current(); cached != nil {
			cerr.SetJSONResponse(ctx, map[string]any{"dashboard": cached})
			return
		}
	}

	snap, err := s.builder.Build(ctx, actor, year, scope)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, map[string]any{"dashboard": snap})
}
