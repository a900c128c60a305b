package repository

import (
	"context"

	"gorm.io/gorm"

	"hospitality-ops/backend/internal/model"
)

// JobTagRepository 岗位标签数据访问接口
type JobTagRepository interface {
	Create(ctx context.Context, tag *model.JobTag) error
	GetByID(ctx context.Context, id string) (*model.JobTag, error)
}

type jobTagRepo struct {
	db *gorm.DB
}

func NewJobTagRepo(db *gorm.DB) JobTagRepository {
	return &jobTagRepo{db: db}
}

func (r *jobTagRepo) Create(ctx context.Context, tag *model.JobTag) error {
	return r.db.WithContext(ctx).Create(tag).Error
}

func (r *jobTagRepo) GetByID(ctx context.Context, id string) (*model.JobTag, error) {
	var tag model.JobTag
	if err := r.db.WithContext(ctx).Where("job_tag_id = ?", id).First(&tag).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}
