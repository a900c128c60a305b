package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"

	"hospitality-ops/backend/internal/dto"
	"hospitality-ops/backend/internal/model"
)

func setupTestCalendarExport(now time.Time) (*exportService, *mockStore) {
	st, repo := newMockStore()
	st.seed()
	svc := NewExportService(repo, zap.NewNop()).(*exportService)
	svc.now = func() time.Time { return now }
	return svc, st
}

func TestExportShiftCalendar_OnlyOwnAssignedShifts(t *testing.T) {
	svc, st := setupTestCalendarExport(at(8, 12, 0))
	seedWorkday(st, model.AssignmentStatusAssigned)

	// 同周另一个班次已拒绝，不应出现在日历中
	_ = st.shifts.BatchCreate(context.Background(), []model.Shift{{
		ShiftID: "shift-2", OrgID: testOrgID, LocationID: testLocationID, RotaID: "rota-w1",
		StartAt: at(7, 9, 0), EndAt: at(7, 17, 0),
	}})
	_ = st.assignments.Create(context.Background(), &model.ShiftAssignment{
		OrgID: testOrgID, ShiftID: "shift-2", UserID: testStaffID, Status: model.AssignmentStatusDeclined,
	})

	body, filename, err := svc.ExportShiftCalendar(context.Background(), staffActor, &dto.ShiftCalendarRequest{
		LocationID: testLocationID, From: "2025-01-06", To: "2025-01-12",
	})
	if err != nil {
		t.Fatalf("ExportShiftCalendar 应成功: %v", err)
	}
	if filename != "shifts_2025-01-06_2025-01-12.ics" {
		t.Errorf("文件名错误: %s", filename)
	}

	cal, err := ics.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		t.Fatalf("输出不是有效的 iCalendar: %v", err)
	}
	events := cal.Events()
	if len(events) != 1 {
		t.Fatalf("期望 1 个事件，实际 %d", len(events))
	}
	if events[0].Id() != "shift-1@hospitality-ops" {
		t.Errorf("UID 错误: %s", events[0].Id())
	}
	start, err := events[0].GetStartAt()
	if err != nil || !start.Equal(at(6, 9, 0)) {
		t.Errorf("DTSTART 错误: %v (%v)", start, err)
	}
	if !strings.Contains(string(body), "Soho") {
		t.Error("日历名称应包含门店名")
	}
}

func TestExportShiftCalendar_DefaultRangeStartsThisWeek(t *testing.T) {
	// 周三调用，默认区间从本周一起 4 周
	svc, st := setupTestCalendarExport(at(8, 12, 0))
	seedWorkday(st, model.AssignmentStatusAccepted)

	body, filename, err := svc.ExportShiftCalendar(context.Background(), staffActor, &dto.ShiftCalendarRequest{LocationID: testLocationID})
	if err != nil {
		t.Fatalf("ExportShiftCalendar 应成功: %v", err)
	}
	if filename != "shifts_2025-01-06_2025-02-02.ics" {
		t.Errorf("默认区间错误: %s", filename)
	}
	if strings.Count(string(body), "BEGIN:VEVENT") != 1 {
		t.Error("accepted 班次应出现在日历中")
	}
}

func TestExportShiftCalendar_InvalidRange(t *testing.T) {
	svc, _ := setupTestCalendarExport(at(8, 12, 0))

	tests := []struct {
		name     string
		from, to string
	}{
		{"Reversed", "2025-01-12", "2025-01-06"},
		{"TooLong", "2025-01-01", "2025-06-30"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.ExportShiftCalendar(context.Background(), staffActor, &dto.ShiftCalendarRequest{
				LocationID: testLocationID, From: tt.from, To: tt.to,
			})
			if !errors.Is(err, ErrInvalidCalendarRange) {
				t.Errorf("期望 ErrInvalidCalendarRange，实际: %v", err)
			}
		})
	}
}

func TestExportShiftCalendar_OtherTenantLocation(t *testing.T) {
	svc, _ := setupTestCalendarExport(at(8, 12, 0))

	_, _, err := svc.ExportShiftCalendar(context.Background(), outsider, &dto.ShiftCalendarRequest{LocationID: testLocationID})
	if !errors.Is(err, ErrLocationNotFound) {
		t.Errorf("跨租户门店应按不存在处理，实际: %v", err)
	}
}
