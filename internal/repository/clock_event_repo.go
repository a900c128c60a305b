package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"hospitality-ops/backend/internal/model"
)

// ClockEventFilter 打卡事件筛选条件，From/To 为半开区间 [From, To)
type ClockEventFilter struct {
	OrgID      string
	UserID     string
	LocationID string
	From       *time.Time
	To         *time.Time
}

// ClockEventRepository 打卡事件数据访问接口（只追加）
type ClockEventRepository interface {
	Create(ctx context.Context, e *model.TimeClockEvent) error
	ListForUser(ctx context.Context, userID, locationID string, from, to time.Time) ([]model.TimeClockEvent, error)
	List(ctx context.Context, filter ClockEventFilter, offset, limit int) ([]model.TimeClockEvent, int64, error)
}

type clockEventRepo struct {
	db *gorm.DB
}

func NewClockEventRepo(db *gorm.DB) ClockEventRepository {
	return &clockEventRepo{db: db}
}

func (r *clockEventRepo) Create(ctx context.Context, e *model.TimeClockEvent) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *clockEventRepo) ListForUser(ctx context.Context, userID, locationID string, from, to time.Time) ([]model.TimeClockEvent, error) {
	var events []model.TimeClockEvent
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND location_id = ?", userID, locationID).
		Where("occurred_at >= ? AND occurred_at < ?", from.UTC(), to.UTC()).
		Order("occurred_at ASC").
		Find(&events).Error
	return events, err
}

func (r *clockEventRepo) List(ctx context.Context, filter ClockEventFilter, offset, limit int) ([]model.TimeClockEvent, int64, error) {
	var events []model.TimeClockEvent
	var total int64

	db := r.db.WithContext(ctx).Model(&model.TimeClockEvent{}).Where("org_id = ?", filter.OrgID)
	if filter.UserID != "" {
		db = db.Where("user_id = ?", filter.UserID)
	}
	if filter.LocationID != "" {
		db = db.Where("location_id = ?", filter.LocationID)
	}
	if filter.From != nil {
		db = db.Where("occurred_at >= ?", filter.From.UTC())
	}
	if filter.To != nil {
		db = db.Where("occurred_at < ?", filter.To.UTC())
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Offset(offset).Limit(limit).
		Order("occurred_at ASC").
		Find(&events).Error; err != nil {
		return nil, 0, err
	}

	return events, total, nil
}
