package model

import "gorm.io/gorm"

// JobTag 岗位标签表：对应 job_tags（如 吧台、后厨）
type JobTag struct {
	JobTagID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"job_tag_id"`
	OrgID    string `gorm:"type:uuid;not null"                             json:"org_id"`
	Name     string `gorm:"type:varchar(60);not null"                      json:"name"`
	Color    string `gorm:"type:varchar(16)"                               json:"color,omitempty"`
	BaseModel
}

// TableName 指定表名
func (JobTag) TableName() string { return "job_tags" }

func (j *JobTag) BeforeCreate(*gorm.DB) error {
	ensureID(&j.JobTagID)
	return nil
}
