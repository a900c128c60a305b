package model

import "gorm.io/gorm"

// Org 组织（租户）表：对应 orgs
type Org struct {
	OrgID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"org_id"`
	Name  string `gorm:"type:varchar(120);not null"                     json:"name"`
	BaseModel
}

// TableName 指定表名
func (Org) TableName() string { return "orgs" }

func (o *Org) BeforeCreate(*gorm.DB) error {
	ensureID(&o.OrgID)
	return nil
}
