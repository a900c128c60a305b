package repository

import (
	"context"

	"gorm.io/gorm"

	"hospitality-ops/backend/internal/model"
)

// ShiftAssignmentRepository 班次指派数据访问接口
type ShiftAssignmentRepository interface {
	Create(ctx context.Context, a *model.ShiftAssignment) error
	GetByID(ctx context.Context, id string) (*model.ShiftAssignment, error)
	UpdateStatus(ctx context.Context, id, status, updatedBy string) error
}

type shiftAssignmentRepo struct {
	db *gorm.DB
}

func NewShiftAssignmentRepo(db *gorm.DB) ShiftAssignmentRepository {
	return &shiftAssignmentRepo{db: db}
}

func (r *shiftAssignmentRepo) Create(ctx context.Context, a *model.ShiftAssignment) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *shiftAssignmentRepo) GetByID(ctx context.Context, id string) (*model.ShiftAssignment, error) {
	var a model.ShiftAssignment
	if err := r.db.WithContext(ctx).Where("assignment_id = ?", id).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *shiftAssignmentRepo) UpdateStatus(ctx context.Context, id, status, updatedBy string) error {
	result := r.db.WithContext(ctx).
		Model(&model.ShiftAssignment{}).
		Where("assignment_id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_by": model.StrPtr(updatedBy),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
