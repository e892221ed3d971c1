package repositoryimpl

import (
	"context"

	"gorm.io/gorm"

	"github.com/iehaus/buildboard/internal/task"
	"github.com/iehaus/buildboard/pkg/cerr"
)

type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) Create(ctx context.Context, t *task.Task) error {
	if err := r.db.WithContext(ctx).Create(t).Error; err != nil {
		return cerr.WrapDBWriteError("task", err)
	}
	return nil
}

func (r *GormRepository) Get(ctx context.Context, id string) (*task.Task, error) {
	var t task.Task
	if err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, cerr.WrapDBReadError("task", err)
	}
	return &t, nil
}

func (r *GormRepository) ListByProject(ctx context.Context, projectID string) ([]*task.Task, error) {
	var tasks []*task.Task
	if err := r.db.WithContext(ctx).Where("project_id = ?", projectID).
		Order("template_id, created_at").Find(&tasks).Error; err != nil {
		return nil, cerr.WrapDBReadError("tasks", err)
	}
	return tasks, nil
}

func (r *GormRepository) ListByProjects(ctx context.Context, projectIDs []string) ([]*task.Task, error) {
	if len(projectIDs) == 0 {
		return nil, nil
	}
	var tasks []*task.Task
	if err := r.db.WithContext(ctx).Where("project_id IN ?", projectIDs).
		Order("project_id, template_id, created_at").Find(&tasks).Error; err != nil {
		return nil, cerr.WrapDBReadError("tasks", err)
	}
	return tasks, nil
}

func (r *GormRepository) Update(ctx context.Context, t *task.Task) error {
	res := r.db.WithContext(ctx).Model(&task.Task{}).Where("id = ?", t.ID).
		Select("*").Omit("id", "project_id", "created_at").Updates(t)
	if res.Error != nil {
		return cerr.WrapDBWriteError("task", res.Error)
	}
	if res.RowsAffected == 0 {
		return cerr.NewError(cerr.NotFound, "task not found", nil)
	}
	return nil
}

func (r *GormRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&task.Task{}, "id = ?", id)
	if res.Error != nil {
		return cerr.WrapDBDeleteError("task", res.Error)
	}
	if res.RowsAffected == 0 {
		return cerr.NewError(cerr.NotFound, "task not found", nil)
	}
	return nil
}

func (r *GormRepository) DeleteByProject(ctx context.Context, projectID string) error {
	if err := r.db.WithContext(ctx).Delete(&task.Task{}, "project_id = ?", projectID).Error; err != nil {
		return cerr.WrapDBDeleteError("tasks", err)
	}
	return nil
}

// ReplaceForProject runs delete+insert in one transaction so regeneration can
// never leave a project half-materialized.
func (r *GormRepository) ReplaceForProject(ctx context.Context, projectID string, tasks []*task.Task) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&task.Task{}, "project_id = ?", projectID).Error; err != nil {
			return err
		}
		if len(tasks) == 0 {
			return nil
		}
		return tx.Create(tasks).Error
	})
	if err != nil {
		return cerr.WrapDBWriteError("tasks", err)
	}
	return nil
}

func (r *GormRepository) CountByProject(ctx context.Context, projectID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&task.Task{}).
		Where("project_id = ?", projectID).Count(&count).Error; err != nil {
		return 0, cerr.WrapDBReadError("tasks", err)
	}
	return count, nil
}
