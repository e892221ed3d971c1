package task

import "context"

type Repository interface {
	Create(ctx context.Context, t *Task) error
	Get(ctx context.Context, id string) (*Task, error)
	ListByProject(ctx context.Context, projectID string) ([]*Task, error)
	ListByProjects(ctx context.Context, projectIDs []string) ([]*Task, error)
	Update(ctx context.Context, t *Task) error
	Delete(ctx context.Context, id string) error
	DeleteByProject(ctx context.Context, projectID string) error
	// ReplaceForProject deletes every task of the project and inserts the
	// given batch in a single transaction. Either the full batch is written
	// or nothing changes.
	ReplaceForProject(ctx context.Context, projectID string, tasks []*Task) error
	CountByProject(ctx context.Context, projectID string) (int64, error)
}
