package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"hospitality-ops/backend/internal/model"
)

// ShiftRepository 班次数据访问接口
type ShiftRepository interface {
	// BatchCreate 单条 INSERT 批量写入，任一行失败则整体失败
	BatchCreate(ctx context.Context, shifts []model.Shift) error
	GetByID(ctx context.Context, id string) (*model.Shift, error)
	ListByRota(ctx context.Context, rotaID string) ([]model.Shift, error)
	// ListAssignedForUser 查询用户在门店 [from, to) 内、指派状态属于 statuses 的班次
	ListAssignedForUser(ctx context.Context, userID, locationID string, from, to time.Time, statuses []string) ([]model.Shift, error)
}

type shiftRepo struct {
	db *gorm.DB
}

func NewShiftRepo(db *gorm.DB) ShiftRepository {
	return &shiftRepo{db: db}
}

func (r *shiftRepo) BatchCreate(ctx context.Context, shifts []model.Shift) error {
	if len(shifts) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&shifts).Error
}

func (r *shiftRepo) GetByID(ctx context.Context, id string) (*model.Shift, error) {
	var shift model.Shift
	if err := r.db.WithContext(ctx).Where("shift_id = ?", id).First(&shift).Error; err != nil {
		return nil, err
	}
	return &shift, nil
}

func (r *shiftRepo) ListByRota(ctx context.Context, rotaID string) ([]model.Shift, error) {
	var shifts []model.Shift
	err := r.db.WithContext(ctx).
		Preload("JobTag").
		Preload("Assignments").
		Where("rota_id = ?", rotaID).
		Order("start_at ASC").
		Find(&shifts).Error
	return shifts, err
}

func (r *shiftRepo) ListAssignedForUser(ctx context.Context, userID, locationID string, from, to time.Time, statuses []string) ([]model.Shift, error) {
	var shifts []model.Shift
	err := r.db.WithContext(ctx).
		Joins("JOIN shift_assignments sa ON sa.shift_id = shifts.shift_id").
		Where("sa.user_id = ? AND sa.status IN ?", userID, statuses).
		Where("shifts.location_id = ? AND shifts.start_at >= ? AND shifts.start_at < ?", locationID, from.UTC(), to.UTC()).
		Order("shifts.start_at ASC").
		Find(&shifts).Error
	return shifts, err
}
