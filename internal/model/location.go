package model

import (
	"time"

	"gorm.io/gorm"

	"hospitality-ops/backend/pkg/calendar"
)

// Location 门店表：对应 locations
type Location struct {
	LocationID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"location_id"`
	OrgID      string `gorm:"type:uuid;not null"                             json:"org_id"`
	Name       string `gorm:"type:varchar(120);not null"                     json:"name"`
	Address    string `gorm:"type:varchar(255)"                              json:"address,omitempty"`
	Timezone   string `gorm:"type:varchar(64);not null;default:'UTC'"        json:"timezone"` // IANA 名称
	IsActive   bool   `gorm:"not null;default:true"                          json:"is_active"`
	SoftDeleteModel
}

// TableName 指定表名
func (Location) TableName() string { return "locations" }

func (l *Location) BeforeCreate(*gorm.DB) error {
	ensureID(&l.LocationID)
	return nil
}

// TimeLocation 门店时区，无效时回退 UTC
func (l *Location) TimeLocation() *time.Location {
	return calendar.LoadLocation(l.Timezone)
}
