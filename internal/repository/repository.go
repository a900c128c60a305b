package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db *gorm.DB

	Org             OrgRepository
	Location        LocationRepository
	User            UserRepository
	JobTag          JobTagRepository
	Rota            RotaRepository
	Shift           ShiftRepository
	ShiftAssignment ShiftAssignmentRepository
	ClockEvent      ClockEventRepository
	Timesheet       TimesheetRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:              db,
		Org:             NewOrgRepo(db),
		Location:        NewLocationRepo(db),
		User:            NewUserRepo(db),
		JobTag:          NewJobTagRepo(db),
		Rota:            NewRotaRepo(db),
		Shift:           NewShiftRepo(db),
		ShiftAssignment: NewShiftAssignmentRepo(db),
		ClockEvent:      NewClockEventRepo(db),
		Timesheet:       NewTimesheetRepo(db),
	}
}

// WithTx 返回绑定到事务 tx 的 Repository 聚合
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return NewRepository(tx)
}

// Transaction 在单个数据库事务内执行 fn，fn 返回错误时整体回滚。
// 未绑定数据库（单元测试中手工组装的聚合）时直接在当前聚合上执行 fn。
func (r *Repository) Transaction(ctx context.Context, fn func(txRepo *Repository) error) error {
	if r.db == nil {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(r.WithTx(tx))
	})
}
