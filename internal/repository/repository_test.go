package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"hospitality-ops/backend/internal/model"
	"hospitality-ops/backend/internal/repository"
	"hospitality-ops/backend/internal/repository/repotest"
	pkgerrors "hospitality-ops/backend/pkg/errors"
)

var monday = time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)

func newRota(f *repotest.Fixture, week time.Time) *model.Rota {
	return &model.Rota{
		OrgID:         f.Org.OrgID,
		LocationID:    f.Location.LocationID,
		WeekStartDate: datatypes.Date(week),
		Status:        model.RotaStatusDraft,
		Version:       1,
	}
}

func newShift(rota *model.Rota, start time.Time) model.Shift {
	return model.Shift{
		OrgID:        rota.OrgID,
		LocationID:   rota.LocationID,
		RotaID:       rota.RotaID,
		StartAt:      start,
		EndAt:        start.Add(8 * time.Hour),
		BreakMinutes: 30,
	}
}

// ── Rota ──

func TestRotaRepo_CreateIfAbsent(t *testing.T) {
	db := repotest.NewDB(t)
	f := repotest.Seed(t, db, "acme")
	repo := repository.NewRepository(db)
	ctx := context.Background()

	first := newRota(f, monday)
	created, err := repo.Rota.CreateIfAbsent(ctx, first)
	if err != nil || !created {
		t.Fatalf("首次插入应成功: created=%v err=%v", created, err)
	}

	second := newRota(f, monday)
	created, err = repo.Rota.CreateIfAbsent(ctx, second)
	if err != nil {
		t.Fatalf("冲突插入不应报错: %v", err)
	}
	if created {
		t.Fatal("同一门店同一周不应再次插入")
	}

	got, err := repo.Rota.GetByLocationAndWeek(ctx, f.Location.LocationID, monday)
	if err != nil {
		t.Fatalf("GetByLocationAndWeek 失败: %v", err)
	}
	if got.RotaID != first.RotaID {
		t.Errorf("期望返回首个排班周 %s，实际 %s", first.RotaID, got.RotaID)
	}

	var count int64
	db.Model(&model.Rota{}).Count(&count)
	if count != 1 {
		t.Errorf("期望 1 条排班周，实际 %d", count)
	}
}

func TestRotaRepo_UpdateStatus_OptimisticLock(t *testing.T) {
	db := repotest.NewDB(t)
	f := repotest.Seed(t, db, "acme")
	repo := repository.NewRepository(db)
	ctx := context.Background()

	rota := newRota(f, monday)
	if _, err := repo.Rota.CreateIfAbsent(ctx, rota); err != nil {
		t.Fatalf("插入失败: %v", err)
	}

	stale := *rota
	if err := repo.Rota.UpdateStatus(ctx, rota, model.RotaStatusPublished, f.Manager.UserID); err != nil {
		t.Fatalf("UpdateStatus 失败: %v", err)
	}
	if rota.Version != 2 {
		t.Errorf("期望 version=2，实际 %d", rota.Version)
	}

	err := repo.Rota.UpdateStatus(ctx, &stale, model.RotaStatusLocked, f.Manager.UserID)
	if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
		t.Errorf("过期版本应返回 ErrOptimisticLock，实际: %v", err)
	}
}

func TestRotaRepo_List(t *testing.T) {
	db := repotest.NewDB(t)
	f := repotest.Seed(t, db, "acme")
	other := repotest.Seed(t, db, "globex")
	repo := repository.NewRepository(db)
	ctx := context.Background()

	for _, r := range []*model.Rota{newRota(f, monday), newRota(f, monday.AddDate(0, 0, 7)), newRota(other, monday)} {
		if _, err := repo.Rota.CreateIfAbsent(ctx, r); err != nil {
			t.Fatalf("插入失败: %v", err)
		}
	}

	rotas, total, err := repo.Rota.List(ctx, repository.RotaFilter{OrgID: f.Org.OrgID}, 0, 20)
	if err != nil {
		t.Fatalf("List 失败: %v", err)
	}
	if total != 2 || len(rotas) != 2 {
		t.Fatalf("期望本组织 2 条，实际 total=%d len=%d", total, len(rotas))
	}
	if !rotas[0].WeekStart().After(rotas[1].WeekStart()) {
		t.Error("期望按周倒序")
	}

	week := monday
	_, total, _ = repo.Rota.List(ctx, repository.RotaFilter{OrgID: f.Org.OrgID, WeekStart: &week}, 0, 20)
	if total != 1 {
		t.Errorf("按周筛选期望 1 条，实际 %d", total)
	}
}

// ── Shift ──

func TestShiftRepo_BatchCreate_AllOrNothing(t *testing.T) {
	db := repotest.NewDB(t)
	f := repotest.Seed(t, db, "acme")
	repo := repository.NewRepository(db)
	ctx := context.Background()

	repotest.FailShiftInsertsAfter(t, db, 3)

	err := repo.Transaction(ctx, func(tx *repository.Repository) error {
		rota := newRota(f, monday)
		if _, err := tx.Rota.CreateIfAbsent(ctx, rota); err != nil {
			return err
		}
		shifts := make([]model.Shift, 5)
		for i := range shifts {
			shifts[i] = newShift(rota, monday.Add(9*time.Hour))
		}
		return tx.Shift.BatchCreate(ctx, shifts)
	})
	if err == nil {
		t.Fatal("第 4 行被拒绝时批量写入应失败")
	}

	var shifts, rotas int64
	db.Model(&model.Shift{}).Count(&shifts)
	db.Model(&model.Rota{}).Count(&rotas)
	if shifts != 0 {
		t.Errorf("期望 0 个班次残留，实际 %d", shifts)
	}
	if rotas != 0 {
		t.Errorf("事务回滚后排班周也不应残留，实际 %d", rotas)
	}
}

func TestShiftRepo_ListAssignedForUser(t *testing.T) {
	db := repotest.NewDB(t)
	f := repotest.Seed(t, db, "acme")
	repo := repository.NewRepository(db)
	ctx := context.Background()

	rota := newRota(f, monday)
	if _, err := repo.Rota.CreateIfAbsent(ctx, rota); err != nil {
		t.Fatalf("插入排班周失败: %v", err)
	}
	shifts := []model.Shift{
		newShift(rota, monday.Add(9*time.Hour)),
		newShift(rota, monday.Add(33*time.Hour)),
		newShift(rota, monday.Add(57*time.Hour)),
	}
	if err := repo.Shift.BatchCreate(ctx, shifts); err != nil {
		t.Fatalf("BatchCreate 失败: %v", err)
	}

	statuses := []string{model.AssignmentStatusAssigned, model.AssignmentStatusProposed, model.AssignmentStatusAccepted}
	for i, s := range shifts {
		a := &model.ShiftAssignment{OrgID: f.Org.OrgID, ShiftID: s.ShiftID, UserID: f.Staff.UserID, Status: statuses[i]}
		if err := repo.ShiftAssignment.Create(ctx, a); err != nil {
			t.Fatalf("创建指派失败: %v", err)
		}
	}

	got, err := repo.Shift.ListAssignedForUser(ctx, f.Staff.UserID, f.Location.LocationID,
		monday, monday.AddDate(0, 0, 7), []string{model.AssignmentStatusAssigned})
	if err != nil {
		t.Fatalf("ListAssignedForUser 失败: %v", err)
	}
	if len(got) != 1 || got[0].ShiftID != shifts[0].ShiftID {
		t.Errorf("期望仅返回 assigned 班次，实际 %d 条", len(got))
	}

	got, _ = repo.Shift.ListAssignedForUser(ctx, f.Staff.UserID, f.Location.LocationID,
		monday, monday.AddDate(0, 0, 7), []string{model.AssignmentStatusAssigned, model.AssignmentStatusAccepted})
	if len(got) != 2 {
		t.Errorf("期望 assigned+accepted 共 2 条，实际 %d", len(got))
	}

	got, _ = repo.Shift.ListAssignedForUser(ctx, f.Staff.UserID, f.Location.LocationID,
		monday, monday.AddDate(0, 0, 1), []string{model.AssignmentStatusAssigned, model.AssignmentStatusAccepted})
	if len(got) != 1 {
		t.Errorf("期望周期外班次被排除，实际 %d", len(got))
	}
}

func TestShiftAssignmentRepo_DuplicateRejected(t *testing.T) {
	db := repotest.NewDB(t)
	f := repotest.Seed(t, db, "acme")
	repo := repository.NewRepository(db)
	ctx := context.Background()

	rota := newRota(f, monday)
	_, _ = repo.Rota.CreateIfAbsent(ctx, rota)
	shifts := []model.Shift{newShift(rota, monday.Add(9*time.Hour))}
	if err := repo.Shift.BatchCreate(ctx, shifts); err != nil {
		t.Fatalf("BatchCreate 失败: %v", err)
	}

	a := &model.ShiftAssignment{OrgID: f.Org.OrgID, ShiftID: shifts[0].ShiftID, UserID: f.Staff.UserID, Status: model.AssignmentStatusProposed}
	if err := repo.ShiftAssignment.Create(ctx, a); err != nil {
		t.Fatalf("创建指派失败: %v", err)
	}
	dup := &model.ShiftAssignment{OrgID: f.Org.OrgID, ShiftID: shifts[0].ShiftID, UserID: f.Staff.UserID, Status: model.AssignmentStatusAssigned}
	if err := repo.ShiftAssignment.Create(ctx, dup); !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Errorf("重复指派应返回 ErrDuplicatedKey，实际: %v", err)
	}
}

// ── ClockEvent ──

func TestClockEventRepo_ListForUser_HalfOpenRange(t *testing.T) {
	db := repotest.NewDB(t)
	f := repotest.Seed(t, db, "acme")
	repo := repository.NewRepository(db)
	ctx := context.Background()

	times := []time.Time{
		monday.Add(-time.Minute),
		monday,
		monday.Add(9 * time.Hour),
		monday.AddDate(0, 0, 1),
	}
	for _, at := range times {
		e := &model.TimeClockEvent{
			OrgID: f.Org.OrgID, LocationID: f.Location.LocationID, UserID: f.Staff.UserID,
			Kind: model.ClockIn, OccurredAt: at, Source: "app",
		}
		if err := repo.ClockEvent.Create(ctx, e); err != nil {
			t.Fatalf("创建打卡失败: %v", err)
		}
	}

	events, err := repo.ClockEvent.ListForUser(ctx, f.Staff.UserID, f.Location.LocationID, monday, monday.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("ListForUser 失败: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("期望 [from, to) 内 2 条，实际 %d", len(events))
	}
	if !events[0].OccurredAt.Equal(monday) {
		t.Errorf("期望按时间升序，首条为 %v", events[0].OccurredAt)
	}
}

// ── Timesheet ──

func newTimesheet(f *repotest.Fixture) *model.Timesheet {
	return &model.Timesheet{
		OrgID:       f.Org.OrgID,
		UserID:      f.Staff.UserID,
		LocationID:  f.Location.LocationID,
		PeriodStart: datatypes.Date(monday),
		PeriodEnd:   datatypes.Date(monday.AddDate(0, 0, 6)),
		Totals:      datatypes.NewJSONType(model.TimesheetTotals{RegularMinutes: 480}),
		Status:      model.TimesheetStatusDraft,
	}
}

func tsKey(f *repotest.Fixture) repository.TimesheetKey {
	return repository.TimesheetKey{
		UserID:      f.Staff.UserID,
		LocationID:  f.Location.LocationID,
		PeriodStart: monday,
		PeriodEnd:   monday.AddDate(0, 0, 6),
	}
}

func TestTimesheetRepo_CreateIfAbsentAndGetByKey(t *testing.T) {
	db := repotest.NewDB(t)
	f := repotest.Seed(t, db, "acme")
	repo := repository.NewRepository(db)
	ctx := context.Background()

	ts := newTimesheet(f)
	created, err := repo.Timesheet.CreateIfAbsent(ctx, ts)
	if err != nil || !created {
		t.Fatalf("首次插入应成功: created=%v err=%v", created, err)
	}

	created, err = repo.Timesheet.CreateIfAbsent(ctx, newTimesheet(f))
	if err != nil || created {
		t.Fatalf("重复键应跳过插入: created=%v err=%v", created, err)
	}

	got, err := repo.Timesheet.GetByKey(ctx, tsKey(f), true)
	if err != nil {
		t.Fatalf("GetByKey 失败: %v", err)
	}
	if got.TimesheetID != ts.TimesheetID {
		t.Errorf("期望 %s，实际 %s", ts.TimesheetID, got.TimesheetID)
	}
	if got.Totals.Data().RegularMinutes != 480 {
		t.Errorf("totals 读回错误: %+v", got.Totals.Data())
	}
}

func TestTimesheetRepo_UpdateTotalsResetsApproval(t *testing.T) {
	db := repotest.NewDB(t)
	f := repotest.Seed(t, db, "acme")
	repo := repository.NewRepository(db)
	ctx := context.Background()

	ts := newTimesheet(f)
	if _, err := repo.Timesheet.CreateIfAbsent(ctx, ts); err != nil {
		t.Fatalf("插入失败: %v", err)
	}

	now := time.Now().UTC()
	ts.Status = model.TimesheetStatusApproved
	ts.ApprovedBy = &f.Manager.UserID
	ts.ApprovedAt = &now
	if err := repo.Timesheet.UpdateStatus(ctx, ts, model.TimesheetStatusDraft); err != nil {
		t.Fatalf("审批失败: %v", err)
	}

	ts.Totals = datatypes.NewJSONType(model.TimesheetTotals{RegularMinutes: 500})
	if err := repo.Timesheet.UpdateTotals(ctx, ts); err != nil {
		t.Fatalf("UpdateTotals 失败: %v", err)
	}

	got, _ := repo.Timesheet.GetByID(ctx, ts.TimesheetID)
	if got.Status != model.TimesheetStatusDraft {
		t.Errorf("期望状态重置为 draft，实际 %s", got.Status)
	}
	if got.ApprovedBy != nil || got.ApprovedAt != nil {
		t.Error("审批信息应被清除")
	}
	if got.Totals.Data().RegularMinutes != 500 {
		t.Errorf("totals 未更新: %+v", got.Totals.Data())
	}
}

func TestTimesheetRepo_UpdateStatus_CompareAndSet(t *testing.T) {
	db := repotest.NewDB(t)
	f := repotest.Seed(t, db, "acme")
	repo := repository.NewRepository(db)
	ctx := context.Background()

	ts := newTimesheet(f)
	_, _ = repo.Timesheet.CreateIfAbsent(ctx, ts)

	ts.Status = model.TimesheetStatusLocked
	err := repo.Timesheet.UpdateStatus(ctx, ts, model.TimesheetStatusApproved)
	if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
		t.Errorf("当前状态不符时应返回 ErrOptimisticLock，实际: %v", err)
	}
}

func TestTimesheetRepo_ListFilters(t *testing.T) {
	db := repotest.NewDB(t)
	f := repotest.Seed(t, db, "acme")
	other := repotest.Seed(t, db, "globex")
	repo := repository.NewRepository(db)
	ctx := context.Background()

	a := newTimesheet(f)
	b := newTimesheet(f)
	b.PeriodStart = datatypes.Date(monday.AddDate(0, 0, 7))
	b.PeriodEnd = datatypes.Date(monday.AddDate(0, 0, 13))
	b.Status = model.TimesheetStatusApproved
	c := newTimesheet(other)
	for _, ts := range []*model.Timesheet{a, b, c} {
		if _, err := repo.Timesheet.CreateIfAbsent(ctx, ts); err != nil {
			t.Fatalf("插入失败: %v", err)
		}
	}

	_, total, err := repo.Timesheet.List(ctx, repository.TimesheetFilter{OrgID: f.Org.OrgID}, 0, 20)
	if err != nil {
		t.Fatalf("List 失败: %v", err)
	}
	if total != 2 {
		t.Errorf("租户隔离：期望 2 条，实际 %d", total)
	}

	_, total, _ = repo.Timesheet.List(ctx, repository.TimesheetFilter{OrgID: f.Org.OrgID, Status: model.TimesheetStatusApproved}, 0, 20)
	if total != 1 {
		t.Errorf("按状态筛选期望 1 条，实际 %d", total)
	}

	end := monday.AddDate(0, 0, 6)
	list, total, _ := repo.Timesheet.List(ctx, repository.TimesheetFilter{OrgID: f.Org.OrgID, PeriodEnd: &end}, 0, 20)
	if total != 1 || list[0].TimesheetID != a.TimesheetID {
		t.Errorf("按周期筛选期望仅返回第一周，实际 %d", total)
	}
}
