package repository

import (
	"context"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hospitality-ops/backend/internal/model"
	pkgerrors "hospitality-ops/backend/pkg/errors"
)

// TimesheetKey 工时单唯一键
type TimesheetKey struct {
	UserID      string
	LocationID  string
	PeriodStart time.Time
	PeriodEnd   time.Time
}

// TimesheetFilter 工时单列表筛选条件
// PeriodStart / PeriodEnd 筛选周期完全落在区间内的工时单
type TimesheetFilter struct {
	OrgID       string
	LocationID  string
	UserID      string
	Status      string
	PeriodStart *time.Time
	PeriodEnd   *time.Time
}

// TimesheetRepository 工时单数据访问接口
type TimesheetRepository interface {
	GetByID(ctx context.Context, id string) (*model.Timesheet, error)
	// GetByKey 按唯一键查询；forUpdate 为 true 时加行锁（需在事务内调用）
	GetByKey(ctx context.Context, key TimesheetKey, forUpdate bool) (*model.Timesheet, error)
	// CreateIfAbsent 插入工时单，唯一键已存在时不插入并返回 false
	CreateIfAbsent(ctx context.Context, ts *model.Timesheet) (bool, error)
	// UpdateTotals 写入重算结果，状态重置为 draft 并清除审批信息
	UpdateTotals(ctx context.Context, ts *model.Timesheet) error
	// UpdateStatus 仅当当前状态为 fromStatus 时迁移，否则返回 ErrOptimisticLock
	UpdateStatus(ctx context.Context, ts *model.Timesheet, fromStatus string) error
	List(ctx context.Context, filter TimesheetFilter, offset, limit int) ([]model.Timesheet, int64, error)
}

type timesheetRepo struct {
	db *gorm.DB
}

func NewTimesheetRepo(db *gorm.DB) TimesheetRepository {
	return &timesheetRepo{db: db}
}

func (r *timesheetRepo) GetByID(ctx context.Context, id string) (*model.Timesheet, error) {
	var ts model.Timesheet
	if err := r.db.WithContext(ctx).Where("timesheet_id = ?", id).First(&ts).Error; err != nil {
		return nil, err
	}
	return &ts, nil
}

func (r *timesheetRepo) GetByKey(ctx context.Context, key TimesheetKey, forUpdate bool) (*model.Timesheet, error) {
	var ts model.Timesheet
	db := r.db.WithContext(ctx)
	if forUpdate {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	err := db.
		Where("user_id = ? AND location_id = ?", key.UserID, key.LocationID).
		Where("period_start = ? AND period_end = ?", datatypes.Date(key.PeriodStart), datatypes.Date(key.PeriodEnd)).
		First(&ts).Error
	if err != nil {
		return nil, err
	}
	return &ts, nil
}

func (r *timesheetRepo) CreateIfAbsent(ctx context.Context, ts *model.Timesheet) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "user_id"}, {Name: "location_id"}, {Name: "period_start"}, {Name: "period_end"},
			},
			DoNothing: true,
		}).
		Create(ts)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *timesheetRepo) UpdateTotals(ctx context.Context, ts *model.Timesheet) error {
	result := r.db.WithContext(ctx).
		Model(&model.Timesheet{}).
		Where("timesheet_id = ?", ts.TimesheetID).
		Updates(map[string]interface{}{
			"totals":      ts.Totals,
			"status":      model.TimesheetStatusDraft,
			"approved_by": nil,
			"approved_at": nil,
			"updated_by":  ts.UpdatedBy,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	ts.Status = model.TimesheetStatusDraft
	ts.ApprovedBy = nil
	ts.ApprovedAt = nil
	ts.UpdatedAt = r.db.NowFunc()
	return nil
}

func (r *timesheetRepo) UpdateStatus(ctx context.Context, ts *model.Timesheet, fromStatus string) error {
	result := r.db.WithContext(ctx).
		Model(&model.Timesheet{}).
		Where("timesheet_id = ? AND status = ?", ts.TimesheetID, fromStatus).
		Updates(map[string]interface{}{
			"status":      ts.Status,
			"approved_by": ts.ApprovedBy,
			"approved_at": ts.ApprovedAt,
			"updated_by":  ts.UpdatedBy,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	return nil
}

func (r *timesheetRepo) List(ctx context.Context, filter TimesheetFilter, offset, limit int) ([]model.Timesheet, int64, error) {
	var sheets []model.Timesheet
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Timesheet{}).Where("org_id = ?", filter.OrgID)
	if filter.LocationID != "" {
		db = db.Where("location_id = ?", filter.LocationID)
	}
	if filter.UserID != "" {
		db = db.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.PeriodStart != nil {
		db = db.Where("period_start >= ?", datatypes.Date(*filter.PeriodStart))
	}
	if filter.PeriodEnd != nil {
		db = db.Where("period_end <= ?", datatypes.Date(*filter.PeriodEnd))
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("User").Preload("Location").
		Offset(offset).Limit(limit).
		Order("period_start DESC, created_at DESC").
		Find(&sheets).Error; err != nil {
		return nil, 0, err
	}

	return sheets, total, nil
}
