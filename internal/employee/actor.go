package employee

import (
	"context"
	"net/http"

	"github.com/iehaus/buildboard/pkg/cerr"
)

// ActorHeader carries the acting employee's id. Authentication itself is
// terminated upstream; the header is trusted input here.
const ActorHeader = "X-Employee-ID"

// ActorFromRequest resolves the acting employee from the request header.
// A missing header or unknown id yields Unauthenticated so that mutation
// endpoints deny by default.
func ActorFromRequest(ctx context.Context, repo Repository, r *http.Request) (*Employee, error) {
	id := r.Header.Get(ActorHeader)
	if id == "" {
		return nil, cerr.NewError(cerr.Unauthenticated, "missing employee header", nil)
	}
	e, err := repo.Get(ctx, id)
	if err != nil {
		if cerr.IsCode(err, cerr.NotFound) {
			return nil, cerr.NewError(cerr.Unauthenticated, "unknown employee", err)
		}
		return nil, err
	}
	return e, nil
}
