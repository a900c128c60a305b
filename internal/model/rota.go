package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// 排班周状态
const (
	RotaStatusDraft     = "draft"
	RotaStatusPublished = "published"
	RotaStatusLocked    = "locked"
)

// rotaTransitions 允许的状态迁移
var rotaTransitions = map[string][]string{
	RotaStatusDraft:     {RotaStatusPublished},
	RotaStatusPublished: {RotaStatusDraft, RotaStatusLocked},
}

// Rota 排班周表：对应 rotas
// 同一门店同一周（location_id, week_start_date）至多一条
type Rota struct {
	RotaID        string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"rota_id"`
	OrgID         string         `gorm:"type:uuid;not null"                             json:"org_id"`
	LocationID    string         `gorm:"type:uuid;not null"                             json:"location_id"`
	WeekStartDate datatypes.Date `gorm:"type:date;not null"                             json:"week_start_date"` // 周一
	Status        string         `gorm:"type:varchar(20);not null;default:'draft'"      json:"status"`          // draft | published | locked
	LaborBudget   *float64       `gorm:"type:numeric(12,2)"                             json:"labor_budget,omitempty"`
	Notes         string         `gorm:"type:text"                                      json:"notes,omitempty"`
	Version       int            `gorm:"not null;default:1"                             json:"version"`
	BaseModel

	// 关联
	Location *Location `gorm:"foreignKey:LocationID;references:LocationID" json:"location,omitempty"`
	Shifts   []Shift   `gorm:"foreignKey:RotaID"                           json:"shifts,omitempty"`
}

// TableName 指定表名
func (Rota) TableName() string { return "rotas" }

func (r *Rota) BeforeCreate(*gorm.DB) error {
	ensureID(&r.RotaID)
	return nil
}

// WeekStart 周一日期（UTC 零点）
func (r *Rota) WeekStart() time.Time {
	return time.Time(r.WeekStartDate)
}

// IsLocked 已锁定的排班周不再接受新班次
func (r *Rota) IsLocked() bool {
	return r.Status == RotaStatusLocked
}

// CanTransitionTo 判断状态迁移是否合法
func (r *Rota) CanTransitionTo(status string) bool {
	for _, s := range rotaTransitions[r.Status] {
		if s == status {
			return true
		}
	}
	return false
}
