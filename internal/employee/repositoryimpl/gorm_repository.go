package repositoryimpl

import (
	"context"

	"gorm.io/gorm"

	"github.com/iehaus/buildboard/internal/employee"
	"github.com/iehaus/buildboard/pkg/cerr"
)

type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) Create(ctx context.Context, e *employee.Employee) error {
	if err := r.db.WithContext(ctx).Create(e).Error; err != nil {
		return cerr.WrapDBWriteError("employee", err)
	}
	return nil
}

func (r *GormRepository) Get(ctx context.Context, id string) (*employee.Employee, error) {
	var e employee.Employee
	if err := r.db.WithContext(ctx).First(&e, "id = ?", id).Error; err != nil {
		return nil, cerr.WrapDBReadError("employee", err)
	}
	return &e, nil
}

func (r *GormRepository) List(ctx context.Context) ([]*employee.Employee, error) {
	var employees []*employee.Employee
	if err := r.db.WithContext(ctx).Order("id").Find(&employees).Error; err != nil {
		return nil, cerr.WrapDBReadError("employees", err)
	}
	return employees, nil
}

func (r *GormRepository) Update(ctx context.Context, e *employee.Employee) error {
	res := r.db.WithContext(ctx).Model(&employee.Employee{}).Where("id = ?", e.ID).Updates(e)
	if res.Error != nil {
		return cerr.WrapDBWriteError("employee", res.Error)
	}
	if res.RowsAffected == 0 {
		return cerr.NewError(cerr.NotFound, "employee not found", nil)
	}
	return nil
}

func (r *GormRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&employee.Employee{}, "id = ?", id)
	if res.Error != nil {
		return cerr.WrapDBDeleteError("employee", res.Error)
	}
	if res.RowsAffected == 0 {
		return cerr.NewError(cerr.NotFound, "employee not found", nil)
	}
	return nil
}
