package model

import (
	"time"

	"gorm.io/gorm"
)

// 排班指派状态
const (
	AssignmentStatusProposed = "proposed"
	AssignmentStatusAssigned = "assigned"
	AssignmentStatusAccepted = "accepted"
	AssignmentStatusDeclined = "declined"
)

// Shift 班次表：对应 shifts
type Shift struct {
	ShiftID      string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"shift_id"`
	OrgID        string    `gorm:"type:uuid;not null"                             json:"org_id"`
	LocationID   string    `gorm:"type:uuid;not null"                             json:"location_id"`
	RotaID       string    `gorm:"type:uuid;not null"                             json:"rota_id"`
	JobTagID     *string   `gorm:"type:uuid"                                      json:"job_tag_id,omitempty"`
	StartAt      time.Time `gorm:"type:timestamptz;not null"                      json:"start_at"`
	EndAt        time.Time `gorm:"type:timestamptz;not null"                      json:"end_at"`
	BreakMinutes int       `gorm:"not null;default:0"                             json:"break_minutes"`
	Notes        string    `gorm:"type:text"                                      json:"notes,omitempty"`
	BaseModel

	// 关联
	JobTag      *JobTag           `gorm:"foreignKey:JobTagID;references:JobTagID" json:"job_tag,omitempty"`
	Assignments []ShiftAssignment `gorm:"foreignKey:ShiftID"                      json:"assignments,omitempty"`
}

// TableName 指定表名
func (Shift) TableName() string { return "shifts" }

func (s *Shift) BeforeCreate(*gorm.DB) error {
	ensureID(&s.ShiftID)
	return nil
}

// ShiftAssignment 班次指派表：对应 shift_assignments
// 同一班次同一员工至多一条
type ShiftAssignment struct {
	AssignmentID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"assignment_id"`
	OrgID        string `gorm:"type:uuid;not null"                             json:"org_id"`
	ShiftID      string `gorm:"type:uuid;not null"                             json:"shift_id"`
	UserID       string `gorm:"type:uuid;not null"                             json:"user_id"`
	Status       string `gorm:"type:varchar(20);not null;default:'proposed'"   json:"status"` // proposed | assigned | accepted | declined
	BaseModel

	// 关联
	Shift *Shift `gorm:"foreignKey:ShiftID;references:ShiftID" json:"shift,omitempty"`
	User  *User  `gorm:"foreignKey:UserID;references:UserID"   json:"user,omitempty"`
}

// TableName 指定表名
func (ShiftAssignment) TableName() string { return "shift_assignments" }

func (a *ShiftAssignment) BeforeCreate(*gorm.DB) error {
	ensureID(&a.AssignmentID)
	return nil
}

// IsValidAssignmentStatus 校验指派状态取值
func IsValidAssignmentStatus(status string) bool {
	switch status {
	case AssignmentStatusProposed, AssignmentStatusAssigned, AssignmentStatusAccepted, AssignmentStatusDeclined:
		return true
	}
	return false
}
