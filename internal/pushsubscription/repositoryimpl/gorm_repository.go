package repositoryimpl

import (
	"context"

	"gorm.io/gorm"

	"github.com/iehaus/buildboard/internal/pushsubscription"
	"github.com/iehaus/buildboard/pkg/cerr"
)

type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) Create(ctx context.Context, s *pushsubscription.Subscription) error {
	if err := r.db.WithContext(ctx).Create(s).Error; err != nil {
		return cerr.WrapDBWriteError("push subscription", err)
	}
	return nil
}

func (r *GormRepository) Get(ctx context.Context, id string) (*pushsubscription.Subscription, error) {
	var s pushsubscription.Subscription
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, cerr.WrapDBReadError("push subscription", err)
	}
	return &s, nil
}

func (r *GormRepository) List(ctx context.Context) ([]*pushsubscription.Subscription, error) {
	var subs []*pushsubscription.Subscription
	if err := r.db.WithContext(ctx).Order("created_at").Find(&subs).Error; err != nil {
		return nil, cerr.WrapDBReadError("push subscriptions", err)
	}
	return subs, nil
}

func (r *GormRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Delete(&pushsubscription.Subscription{}, "id = ?", id).Error; err != nil {
		return cerr.WrapDBDeleteError("push subscription", err)
	}
	return nil
}

func (r *GormRepository) FindByEndpoint(ctx context.Context, endpoint string) (*pushsubscription.Subscription, error) {
	var s pushsubscription.Subscription
	if err := r.db.WithContext(ctx).First(&s, "endpoint = ?", endpoint).Error; err != nil {
		return nil, cerr.WrapDBReadError("push subscription", err)
	}
	return &s, nil
}

func (r *GormRepository) DeleteByEndpoint(ctx context.Context, endpoint string) error {
	if err := r.db.WithContext(ctx).Delete(&pushsubscription.Subscription{}, "endpoint = ?", endpoint).Error; err != nil {
		return cerr.WrapDBDeleteError("push subscription", err)
	}
	return nil
}
