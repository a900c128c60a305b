package repository

import (
	"context"

	"gorm.io/gorm"

	"hospitality-ops/backend/internal/model"
)

// OrgRepository 组织数据访问接口
type OrgRepository interface {
	Create(ctx context.Context, org *model.Org) error
	GetByID(ctx context.Context, id string) (*model.Org, error)
}

type orgRepo struct {
	db *gorm.DB
}

func NewOrgRepo(db *gorm.DB) OrgRepository {
	return &orgRepo{db: db}
}

func (r *orgRepo) Create(ctx context.Context, org *model.Org) error {
	return r.db.WithContext(ctx).Create(org).Error
}

func (r *orgRepo) GetByID(ctx context.Context, id string) (*model.Org, error) {
	var org model.Org
	if err := r.db.WithContext(ctx).Where("org_id = ?", id).First(&org).Error; err != nil {
		return nil, err
	}
	return &org, nil
}
