package repositoryimpl

import (
	"context"

	"gorm.io/gorm"

	"github.com/iehaus/buildboard/internal/project"
	"github.com/iehaus/buildboard/pkg/cerr"
)

type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) Create(ctx context.Context, p *project.Project) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return cerr.WrapDBWriteError("project", err)
	}
	return nil
}

func (r *GormRepository) Get(ctx context.Context, id string) (*project.Project, error) {
	var p project.Project
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, cerr.WrapDBReadError("project", err)
	}
	return &p, nil
}

func (r *GormRepository) List(ctx context.Context) ([]*project.Project, error) {
	var projects []*project.Project
	if err := r.db.WithContext(ctx).Order("created_at").Find(&projects).Error; err != nil {
		return nil, cerr.WrapDBReadError("projects", err)
	}
	return projects, nil
}

func (r *GormRepository) Update(ctx context.Context, p *project.Project) error {
	res := r.db.WithContext(ctx).Model(&project.Project{}).Where("id = ?", p.ID).
		Select("*").Omit("id", "created_at").Updates(p)
	if res.Error != nil {
		return cerr.WrapDBWriteError("project", res.Error)
	}
	if res.RowsAffected == 0 {
		return cerr.NewError(cerr.NotFound, "project not found", nil)
	}
	return nil
}

func (r *GormRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&project.Project{}, "id = ?", id)
	if res.Error != nil {
		return cerr.WrapDBDeleteError("project", res.Error)
	}
	if res.RowsAffected == 0 {
		return cerr.NewError(cerr.NotFound, "project not found", nil)
	}
	return nil
}
