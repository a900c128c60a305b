// Package repotest 为 repository / service 测试提供内存 SQLite 数据库与基础数据。
package repotest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"hospitality-ops/backend/internal/model"
)

// schema 与 PostgreSQL 迁移保持相同的唯一约束与检查约束
var schema = []string{
	`CREATE TABLE orgs (
		org_id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		created_at DATETIME, created_by TEXT,
		updated_at DATETIME, updated_by TEXT
	);`,
	`CREATE TABLE locations (
		location_id TEXT PRIMARY KEY,
		org_id TEXT NOT NULL,
		name TEXT NOT NULL,
		address TEXT,
		timezone TEXT NOT NULL DEFAULT 'UTC',
		is_active BOOLEAN NOT NULL DEFAULT 1,
		created_at DATETIME, created_by TEXT,
		updated_at DATETIME, updated_by TEXT,
		deleted_at DATETIME, deleted_by TEXT
	);`,
	`CREATE TABLE users (
		user_id TEXT PRIMARY KEY,
		org_id TEXT NOT NULL,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'staff',
		is_active BOOLEAN NOT NULL DEFAULT 1,
		created_at DATETIME, created_by TEXT,
		updated_at DATETIME, updated_by TEXT,
		deleted_at DATETIME, deleted_by TEXT
	);`,
	`CREATE TABLE job_tags (
		job_tag_id TEXT PRIMARY KEY,
		org_id TEXT NOT NULL,
		name TEXT NOT NULL,
		color TEXT,
		created_at DATETIME, created_by TEXT,
		updated_at DATETIME, updated_by TEXT,
		UNIQUE (org_id, name)
	);`,
	`CREATE TABLE rotas (
		rota_id TEXT PRIMARY KEY,
		org_id TEXT NOT NULL,
		location_id TEXT NOT NULL,
		week_start_date DATE NOT NULL,
		status TEXT NOT NULL DEFAULT 'draft',
		labor_budget REAL,
		notes TEXT,
		version INTEGER NOT NULL DEFAULT 1,
		created_at DATETIME, created_by TEXT,
		updated_at DATETIME, updated_by TEXT,
		UNIQUE (location_id, week_start_date)
	);`,
	`CREATE TABLE shifts (
		shift_id TEXT PRIMARY KEY,
		org_id TEXT NOT NULL,
		location_id TEXT NOT NULL,
		rota_id TEXT NOT NULL,
		job_tag_id TEXT,
		start_at DATETIME NOT NULL,
		end_at DATETIME NOT NULL,
		break_minutes INTEGER NOT NULL DEFAULT 0 CHECK (break_minutes >= 0),
		notes TEXT,
		created_at DATETIME, created_by TEXT,
		updated_at DATETIME, updated_by TEXT,
		CHECK (end_at > start_at)
	);`,
	`CREATE TABLE shift_assignments (
		assignment_id TEXT PRIMARY KEY,
		org_id TEXT NOT NULL,
		shift_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'proposed',
		created_at DATETIME, created_by TEXT,
		updated_at DATETIME, updated_by TEXT,
		UNIQUE (shift_id, user_id)
	);`,
	`CREATE TABLE time_clock_events (
		event_id TEXT PRIMARY KEY,
		org_id TEXT NOT NULL,
		location_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		occurred_at DATETIME NOT NULL,
		source TEXT NOT NULL DEFAULT 'app',
		created_at DATETIME, created_by TEXT
	);`,
	`CREATE TABLE timesheets (
		timesheet_id TEXT PRIMARY KEY,
		org_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		location_id TEXT NOT NULL,
		period_start DATE NOT NULL,
		period_end DATE NOT NULL,
		totals TEXT NOT NULL DEFAULT '{}',
		status TEXT NOT NULL DEFAULT 'draft',
		approved_by TEXT,
		approved_at DATETIME,
		created_at DATETIME, created_by TEXT,
		updated_at DATETIME, updated_by TEXT,
		UNIQUE (user_id, location_id, period_start, period_end)
	);`,
}

// NewDB 创建带完整表结构的内存 SQLite 数据库。
// 连接池限制为 1：每个 :memory: 连接都是独立的数据库。
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sqlite sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	for _, stmt := range schema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	return db
}

// FailShiftInsertsAfter 安装触发器：同一排班周已有 n 个班次时拒绝继续插入，
// 用于验证批量写入的原子性
func FailShiftInsertsAfter(t testing.TB, db *gorm.DB, n int) {
	t.Helper()
	stmt := fmt.Sprintf(`CREATE TRIGGER shifts_cap BEFORE INSERT ON shifts
		WHEN (SELECT COUNT(*) FROM shifts WHERE rota_id = NEW.rota_id) >= %d
		BEGIN
			SELECT RAISE(ABORT, 'shift cap reached');
		END;`, n)
	if err := db.Exec(stmt).Error; err != nil {
		t.Fatalf("create trigger: %v", err)
	}
}

// Fixture 基础数据：一个组织、一个门店、一名经理、一名员工、一个岗位标签
type Fixture struct {
	Org      *model.Org
	Location *model.Location
	Manager  *model.User
	Staff    *model.User
	JobTag   *model.JobTag
}

// Seed 写入一套基础数据，name 用于区分多套数据（如跨租户用例）
func Seed(t testing.TB, db *gorm.DB, name string) *Fixture {
	t.Helper()
	ctx := context.Background()

	f := &Fixture{
		Org: &model.Org{Name: name},
	}
	mustCreate(t, db.WithContext(ctx), f.Org)

	f.Location = &model.Location{OrgID: f.Org.OrgID, Name: name + " 门店", Timezone: "UTC", IsActive: true}
	mustCreate(t, db.WithContext(ctx), f.Location)

	f.Manager = &model.User{
		OrgID: f.Org.OrgID, Name: name + " 经理", Email: name + "-manager@example.com",
		PasswordHash: "$2a$10$placeholder", Role: model.RoleManager, IsActive: true,
	}
	mustCreate(t, db.WithContext(ctx), f.Manager)

	f.Staff = &model.User{
		OrgID: f.Org.OrgID, Name: name + " 员工", Email: name + "-staff@example.com",
		PasswordHash: "$2a$10$placeholder", Role: model.RoleStaff, IsActive: true,
	}
	mustCreate(t, db.WithContext(ctx), f.Staff)

	f.JobTag = &model.JobTag{OrgID: f.Org.OrgID, Name: "吧台"}
	mustCreate(t, db.WithContext(ctx), f.JobTag)

	return f
}

func mustCreate(t testing.TB, db *gorm.DB, v interface{}) {
	t.Helper()
	if err := db.Create(v).Error; err != nil {
		t.Fatalf("seed %T: %v", v, err)
	}
}
