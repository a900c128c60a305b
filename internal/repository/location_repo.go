package repository

import (
	"context"

	"gorm.io/gorm"

	"hospitality-ops/backend/internal/model"
)

// LocationRepository 门店数据访问接口
type LocationRepository interface {
	Create(ctx context.Context, loc *model.Location) error
	GetByID(ctx context.Context, id string) (*model.Location, error)
	ListByOrg(ctx context.Context, orgID string) ([]model.Location, error)
}

type locationRepo struct {
	db *gorm.DB
}

func NewLocationRepo(db *gorm.DB) LocationRepository {
	return &locationRepo{db: db}
}

func (r *locationRepo) Create(ctx context.Context, loc *model.Location) error {
	return r.db.WithContext(ctx).Create(loc).Error
}

func (r *locationRepo) GetByID(ctx context.Context, id string) (*model.Location, error) {
	var loc model.Location
	if err := r.db.WithContext(ctx).Where("location_id = ?", id).First(&loc).Error; err != nil {
		return nil, err
	}
	return &loc, nil
}

func (r *locationRepo) ListByOrg(ctx context.Context, orgID string) ([]model.Location, error) {
	var locs []model.Location
	err := r.db.WithContext(ctx).
		Where("org_id = ? AND is_active = ?", orgID, true).
		Order("name ASC").
		Find(&locs).Error
	return locs, err
}
