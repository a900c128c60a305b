package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"hospitality-ops/backend/internal/dto"
	"hospitality-ops/backend/internal/model"
)

func setupTestAssignmentService() (AssignmentService, *mockStore) {
	st, repo := newMockStore()
	st.seed()
	st.addRota("rota-w1", week1, model.RotaStatusDraft)
	_ = st.shifts.BatchCreate(context.Background(), []model.Shift{{
		ShiftID: "shift-1", OrgID: testOrgID, LocationID: testLocationID, RotaID: "rota-w1",
		StartAt: week1.Add(9 * time.Hour), EndAt: week1.Add(17 * time.Hour),
	}})
	return NewAssignmentService(repo, zap.NewNop()), st
}

func TestAssignmentCreate(t *testing.T) {
	svc, _ := setupTestAssignmentService()

	resp, err := svc.Create(context.Background(), managerActor, "shift-1", &dto.CreateAssignmentRequest{UserID: testStaffID})
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if resp.Status != model.AssignmentStatusProposed {
		t.Errorf("默认状态应为 proposed，实际 %s", resp.Status)
	}

	_, err = svc.Create(context.Background(), managerActor, "shift-1", &dto.CreateAssignmentRequest{UserID: testStaffID})
	if !errors.Is(err, ErrAssignmentExists) {
		t.Errorf("重复指派期望 ErrAssignmentExists，实际: %v", err)
	}
}

func TestAssignmentCreate_Rejections(t *testing.T) {
	svc, st := setupTestAssignmentService()

	if _, err := svc.Create(context.Background(), managerActor, "shift-missing", &dto.CreateAssignmentRequest{UserID: testStaffID}); !errors.Is(err, ErrShiftNotFound) {
		t.Errorf("期望 ErrShiftNotFound，实际: %v", err)
	}
	if _, err := svc.Create(context.Background(), managerActor, "shift-1", &dto.CreateAssignmentRequest{UserID: "user-missing"}); !errors.Is(err, ErrAssignmentUserNotFound) {
		t.Errorf("期望 ErrAssignmentUserNotFound，实际: %v", err)
	}
	if _, err := svc.Create(context.Background(), outsider, "shift-1", &dto.CreateAssignmentRequest{UserID: testStaffID}); !errors.Is(err, ErrShiftNotFound) {
		t.Errorf("跨租户应视为不存在，实际: %v", err)
	}

	st.rotas.rotas["rota-w1"].Status = model.RotaStatusLocked
	if _, err := svc.Create(context.Background(), managerActor, "shift-1", &dto.CreateAssignmentRequest{UserID: testStaffID}); !errors.Is(err, ErrRotaLocked) {
		t.Errorf("期望 ErrRotaLocked，实际: %v", err)
	}
}

func TestAssignmentUpdateStatus_StaffPermissions(t *testing.T) {
	svc, st := setupTestAssignmentService()

	created, err := svc.Create(context.Background(), managerActor, "shift-1", &dto.CreateAssignmentRequest{
		UserID: testStaffID, Status: model.AssignmentStatusAssigned,
	})
	if err != nil {
		t.Fatalf("Create 失败: %v", err)
	}

	// 员工不能把自己的指派改为 assigned
	_, err = svc.UpdateStatus(context.Background(), staffActor, created.ID, &dto.UpdateAssignmentStatusRequest{Status: model.AssignmentStatusAssigned})
	if !errors.Is(err, ErrAssignmentForbidden) {
		t.Errorf("期望 ErrAssignmentForbidden，实际: %v", err)
	}

	resp, err := svc.UpdateStatus(context.Background(), staffActor, created.ID, &dto.UpdateAssignmentStatusRequest{Status: model.AssignmentStatusAccepted})
	if err != nil {
		t.Fatalf("员工接受自己的指派应成功: %v", err)
	}
	if resp.Status != model.AssignmentStatusAccepted || st.assignments.items[created.ID].Status != model.AssignmentStatusAccepted {
		t.Error("状态应更新为 accepted")
	}

	// 其他员工不能操作
	other := Actor{UserID: "user-other", OrgID: testOrgID, Role: model.RoleStaff}
	_, err = svc.UpdateStatus(context.Background(), other, created.ID, &dto.UpdateAssignmentStatusRequest{Status: model.AssignmentStatusDeclined})
	if !errors.Is(err, ErrAssignmentForbidden) {
		t.Errorf("期望 ErrAssignmentForbidden，实际: %v", err)
	}
}
