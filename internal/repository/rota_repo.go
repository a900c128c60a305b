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

// RotaFilter 排班周列表筛选条件
type RotaFilter struct {
	OrgID      string
	LocationID string
	WeekStart  *time.Time
	Status     string
}

// RotaRepository 排班周数据访问接口
type RotaRepository interface {
	GetByID(ctx context.Context, id string) (*model.Rota, error)
	GetWithShifts(ctx context.Context, id string) (*model.Rota, error)
	GetByLocationAndWeek(ctx context.Context, locationID string, weekStart time.Time) (*model.Rota, error)
	// CreateIfAbsent 插入排班周，(location_id, week_start_date) 已存在时不插入并返回 false
	CreateIfAbsent(ctx context.Context, rota *model.Rota) (bool, error)
	List(ctx context.Context, filter RotaFilter, offset, limit int) ([]model.Rota, int64, error)
	UpdateStatus(ctx context.Context, rota *model.Rota, status string, updatedBy string) error
}

type rotaRepo struct {
	db *gorm.DB
}

func NewRotaRepo(db *gorm.DB) RotaRepository {
	return &rotaRepo{db: db}
}

func (r *rotaRepo) GetByID(ctx context.Context, id string) (*model.Rota, error) {
	var rota model.Rota
	if err := r.db.WithContext(ctx).Where("rota_id = ?", id).First(&rota).Error; err != nil {
		return nil, err
	}
	return &rota, nil
}

func (r *rotaRepo) GetWithShifts(ctx context.Context, id string) (*model.Rota, error) {
	var rota model.Rota
	err := r.db.WithContext(ctx).
		Preload("Shifts", func(db *gorm.DB) *gorm.DB {
			return db.Order("start_at ASC")
		}).
		Preload("Shifts.Assignments").
		Where("rota_id = ?", id).
		First(&rota).Error
	if err != nil {
		return nil, err
	}
	return &rota, nil
}

func (r *rotaRepo) GetByLocationAndWeek(ctx context.Context, locationID string, weekStart time.Time) (*model.Rota, error) {
	var rota model.Rota
	err := r.db.WithContext(ctx).
		Where("location_id = ? AND week_start_date = ?", locationID, datatypes.Date(weekStart)).
		First(&rota).Error
	if err != nil {
		return nil, err
	}
	return &rota, nil
}

func (r *rotaRepo) CreateIfAbsent(ctx context.Context, rota *model.Rota) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "location_id"}, {Name: "week_start_date"}},
			DoNothing: true,
		}).
		Create(rota)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *rotaRepo) List(ctx context.Context, filter RotaFilter, offset, limit int) ([]model.Rota, int64, error) {
	var rotas []model.Rota
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Rota{}).Where("org_id = ?", filter.OrgID)
	if filter.LocationID != "" {
		db = db.Where("location_id = ?", filter.LocationID)
	}
	if filter.WeekStart != nil {
		db = db.Where("week_start_date = ?", datatypes.Date(*filter.WeekStart))
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Offset(offset).Limit(limit).
		Order("week_start_date DESC").
		Find(&rotas).Error; err != nil {
		return nil, 0, err
	}

	return rotas, total, nil
}

// UpdateStatus 基于 version 的乐观锁更新状态
func (r *rotaRepo) UpdateStatus(ctx context.Context, rota *model.Rota, status string, updatedBy string) error {
	oldVersion := rota.Version
	result := r.db.WithContext(ctx).
		Model(&model.Rota{}).
		Where("rota_id = ? AND version = ?", rota.RotaID, oldVersion).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_by": model.StrPtr(updatedBy),
			"version":    oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	rota.Status = status
	rota.Version = oldVersion + 1
	return nil
}
