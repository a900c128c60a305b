//go:build integration

package repository_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"hospitality-ops/backend/internal/model"
	"hospitality-ops/backend/internal/repository"
	"hospitality-ops/backend/internal/repository/repotest"
	"hospitality-ops/backend/pkg/database"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=postgres password=postgres dbname=hospitality_ops_test sslmode=disable TimeZone=UTC"
	}

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法连接测试数据库: %v\n", err)
		os.Exit(1)
	}

	sqlDB, err := testDB.DB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "获取 sql.DB 失败: %v\n", err)
		os.Exit(1)
	}
	if err := database.RunMigrations(sqlDB, zap.NewNop()); err != nil {
		fmt.Fprintf(os.Stderr, "数据库迁移失败: %v\n", err)
		os.Exit(1)
	}

	os.Exit(m.Run())
}

func seed(t *testing.T) *repotest.Fixture {
	t.Helper()
	return repotest.Seed(t, testDB, fmt.Sprintf("it-%d", time.Now().UnixNano()))
}

// ═══════════════════════════════════════════════════════════
// 排班周：并发创建只产生一条
// ═══════════════════════════════════════════════════════════

func TestIntegration_RotaCreateIfAbsent_Concurrent(t *testing.T) {
	f := seed(t)
	repo := repository.NewRepository(testDB)
	ctx := context.Background()
	week := datatypes.Date(time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC))

	const workers = 10
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
		errs    []error
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rota := &model.Rota{OrgID: f.Org.OrgID, LocationID: f.Location.LocationID, WeekStartDate: week, Status: model.RotaStatusDraft}
			ok, err := repo.Rota.CreateIfAbsent(ctx, rota)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
			}
			if ok {
				created++
			}
		}()
	}
	wg.Wait()

	if len(errs) > 0 {
		t.Fatalf("并发插入出错: %v", errs)
	}
	if created != 1 {
		t.Fatalf("应恰好创建 1 条，实际 %d", created)
	}

	got, err := repo.Rota.GetByLocationAndWeek(ctx, f.Location.LocationID, time.Time(week))
	if err != nil {
		t.Fatalf("查询排班周失败: %v", err)
	}
	if got.Status != model.RotaStatusDraft {
		t.Errorf("新建排班周应为 draft，实际 %s", got.Status)
	}
}

// ═══════════════════════════════════════════════════════════
// 班次：事务回滚后不留数据
// ═══════════════════════════════════════════════════════════

func TestIntegration_ShiftBatch_RollbackLeavesNothing(t *testing.T) {
	f := seed(t)
	repo := repository.NewRepository(testDB)
	ctx := context.Background()
	week := datatypes.Date(time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC))

	var rotaID string
	err := repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		rota := &model.Rota{OrgID: f.Org.OrgID, LocationID: f.Location.LocationID, WeekStartDate: week, Status: model.RotaStatusDraft}
		if _, err := txRepo.Rota.CreateIfAbsent(ctx, rota); err != nil {
			return err
		}
		rotaID = rota.RotaID

		start := time.Date(2025, 2, 4, 9, 0, 0, 0, time.UTC)
		shifts := make([]model.Shift, 3)
		for i := range shifts {
			shifts[i] = model.Shift{
				OrgID: f.Org.OrgID, LocationID: f.Location.LocationID, RotaID: rota.RotaID,
				StartAt: start, EndAt: start.Add(8 * time.Hour), BreakMinutes: 30,
			}
		}
		if err := txRepo.Shift.BatchCreate(ctx, shifts); err != nil {
			return err
		}
		return fmt.Errorf("强制回滚")
	})
	if err == nil {
		t.Fatal("期望事务返回错误")
	}

	var count int64
	testDB.Model(&model.Shift{}).Where("rota_id = ?", rotaID).Count(&count)
	if count != 0 {
		t.Errorf("回滚后不应有班次，实际 %d", count)
	}
	if _, err := repo.Rota.GetByLocationAndWeek(ctx, f.Location.LocationID, time.Time(week)); err == nil {
		t.Error("回滚后不应有排班周")
	}
}

// ═══════════════════════════════════════════════════════════
// 工时单：唯一键 + 行锁重算
// ═══════════════════════════════════════════════════════════

func TestIntegration_Timesheet_UpsertAndLock(t *testing.T) {
	f := seed(t)
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	key := repository.TimesheetKey{
		UserID:      f.Staff.UserID,
		LocationID:  f.Location.LocationID,
		PeriodStart: time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2025, 1, 12, 0, 0, 0, 0, time.UTC),
	}
	newSheet := func(regular int) *model.Timesheet {
		return &model.Timesheet{
			OrgID: f.Org.OrgID, UserID: key.UserID, LocationID: key.LocationID,
			PeriodStart: datatypes.Date(key.PeriodStart), PeriodEnd: datatypes.Date(key.PeriodEnd),
			Totals: datatypes.NewJSONType(model.TimesheetTotals{RegularMinutes: regular}),
			Status: model.TimesheetStatusDraft,
		}
	}

	created, err := repo.Timesheet.CreateIfAbsent(ctx, newSheet(480))
	if err != nil || !created {
		t.Fatalf("首次创建失败: created=%v err=%v", created, err)
	}
	created, err = repo.Timesheet.CreateIfAbsent(ctx, newSheet(999))
	if err != nil || created {
		t.Fatalf("重复键不应插入: created=%v err=%v", created, err)
	}

	err = repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		ts, err := txRepo.Timesheet.GetByKey(ctx, key, true)
		if err != nil {
			return err
		}
		ts.Totals = datatypes.NewJSONType(model.TimesheetTotals{RegularMinutes: 510})
		return txRepo.Timesheet.UpdateTotals(ctx, ts)
	})
	if err != nil {
		t.Fatalf("事务内重算失败: %v", err)
	}

	got, err := repo.Timesheet.GetByKey(ctx, key, false)
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if got.Totals.Data().RegularMinutes != 510 {
		t.Errorf("期望 510，实际 %d", got.Totals.Data().RegularMinutes)
	}
}
