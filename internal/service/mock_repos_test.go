package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"hospitality-ops/backend/internal/model"
	"hospitality-ops/backend/internal/repository"
	pkgerrors "hospitality-ops/backend/pkg/errors"
)

// ── Mock OrgRepository ──

type mockOrgRepo struct {
	orgs map[string]*model.Org
}

func newMockOrgRepo() *mockOrgRepo {
	return &mockOrgRepo{orgs: make(map[string]*model.Org)}
}

func (m *mockOrgRepo) Create(_ context.Context, org *model.Org) error {
	if org.OrgID == "" {
		org.OrgID = fmt.Sprintf("org-%d", len(m.orgs)+1)
	}
	m.orgs[org.OrgID] = org
	return nil
}

func (m *mockOrgRepo) GetByID(_ context.Context, id string) (*model.Org, error) {
	if o, ok := m.orgs[id]; ok {
		return o, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock LocationRepository ──

type mockLocationRepo struct {
	locations map[string]*model.Location
}

func newMockLocationRepo() *mockLocationRepo {
	return &mockLocationRepo{locations: make(map[string]*model.Location)}
}

func (m *mockLocationRepo) Create(_ context.Context, loc *model.Location) error {
	if loc.LocationID == "" {
		loc.LocationID = fmt.Sprintf("loc-%d", len(m.locations)+1)
	}
	m.locations[loc.LocationID] = loc
	return nil
}

func (m *mockLocationRepo) GetByID(_ context.Context, id string) (*model.Location, error) {
	if l, ok := m.locations[id]; ok {
		return l, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockLocationRepo) ListByOrg(_ context.Context, orgID string) ([]model.Location, error) {
	var result []model.Location
	for _, l := range m.locations {
		if l.OrgID == orgID {
			result = append(result, *l)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		user.UserID = fmt.Sprintf("user-%d", len(m.users)+1)
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock JobTagRepository ──

type mockJobTagRepo struct {
	tags map[string]*model.JobTag
}

func newMockJobTagRepo() *mockJobTagRepo {
	return &mockJobTagRepo{tags: make(map[string]*model.JobTag)}
}

func (m *mockJobTagRepo) Create(_ context.Context, tag *model.JobTag) error {
	if tag.JobTagID == "" {
		tag.JobTagID = fmt.Sprintf("tag-%d", len(m.tags)+1)
	}
	m.tags[tag.JobTagID] = tag
	return nil
}

func (m *mockJobTagRepo) GetByID(_ context.Context, id string) (*model.JobTag, error) {
	if t, ok := m.tags[id]; ok {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock RotaRepository ──

type mockRotaRepo struct {
	rotas map[string]*model.Rota
	// beforeInsert 在 CreateIfAbsent 写入前调用，用于模拟并发插入
	beforeInsert func()
	createCalls  int
}

func newMockRotaRepo() *mockRotaRepo {
	return &mockRotaRepo{rotas: make(map[string]*model.Rota)}
}

func (m *mockRotaRepo) GetByID(_ context.Context, id string) (*model.Rota, error) {
	if r, ok := m.rotas[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRotaRepo) GetWithShifts(ctx context.Context, id string) (*model.Rota, error) {
	return m.GetByID(ctx, id)
}

func (m *mockRotaRepo) GetByLocationAndWeek(_ context.Context, locationID string, weekStart time.Time) (*model.Rota, error) {
	for _, r := range m.rotas {
		if r.LocationID == locationID && r.WeekStart().Equal(weekStart) {
			cp := *r
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRotaRepo) CreateIfAbsent(ctx context.Context, rota *model.Rota) (bool, error) {
	m.createCalls++
	if m.beforeInsert != nil {
		m.beforeInsert()
	}
	if _, err := m.GetByLocationAndWeek(ctx, rota.LocationID, rota.WeekStart()); err == nil {
		return false, nil
	}
	if rota.RotaID == "" {
		rota.RotaID = fmt.Sprintf("rota-%d", len(m.rotas)+1)
	}
	cp := *rota
	m.rotas[rota.RotaID] = &cp
	return true, nil
}

func (m *mockRotaRepo) List(_ context.Context, filter repository.RotaFilter, offset, limit int) ([]model.Rota, int64, error) {
	var result []model.Rota
	for _, r := range m.rotas {
		if r.OrgID != filter.OrgID {
			continue
		}
		if filter.LocationID != "" && r.LocationID != filter.LocationID {
			continue
		}
		if filter.WeekStart != nil && !r.WeekStart().Equal(*filter.WeekStart) {
			continue
		}
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		result = append(result, *r)
	}
	return page(result, offset, limit), int64(len(result)), nil
}

func (m *mockRotaRepo) UpdateStatus(_ context.Context, rota *model.Rota, status string, updatedBy string) error {
	stored, ok := m.rotas[rota.RotaID]
	if !ok || stored.Version != rota.Version {
		return pkgerrors.ErrOptimisticLock
	}
	stored.Status = status
	stored.Version++
	stored.UpdatedBy = model.StrPtr(updatedBy)
	rota.Status = status
	rota.Version = stored.Version
	return nil
}

// ── Mock ShiftRepository ──

type mockShiftRepo struct {
	shifts      map[string]*model.Shift
	assignments *mockAssignmentRepo
	batchErr    error
	batchCalls  int
}

func newMockShiftRepo(assignments *mockAssignmentRepo) *mockShiftRepo {
	return &mockShiftRepo{shifts: make(map[string]*model.Shift), assignments: assignments}
}

func (m *mockShiftRepo) BatchCreate(_ context.Context, shifts []model.Shift) error {
	m.batchCalls++
	if m.batchErr != nil {
		return m.batchErr
	}
	for i := range shifts {
		if shifts[i].ShiftID == "" {
			shifts[i].ShiftID = fmt.Sprintf("shift-%d", len(m.shifts)+1)
		}
		cp := shifts[i]
		m.shifts[cp.ShiftID] = &cp
	}
	return nil
}

func (m *mockShiftRepo) GetByID(_ context.Context, id string) (*model.Shift, error) {
	if s, ok := m.shifts[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockShiftRepo) ListByRota(_ context.Context, rotaID string) ([]model.Shift, error) {
	var result []model.Shift
	for _, s := range m.shifts {
		if s.RotaID == rotaID {
			result = append(result, *s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartAt.Before(result[j].StartAt) })
	return result, nil
}

func (m *mockShiftRepo) ListAssignedForUser(_ context.Context, userID, locationID string, from, to time.Time, statuses []string) ([]model.Shift, error) {
	m.assignments.mu.Lock()
	defer m.assignments.mu.Unlock()

	var result []model.Shift
	for _, a := range m.assignments.items {
		if a.UserID != userID || !containsString(statuses, a.Status) {
			continue
		}
		s, ok := m.shifts[a.ShiftID]
		if !ok || s.LocationID != locationID {
			continue
		}
		if s.StartAt.Before(from) || !s.StartAt.Before(to) {
			continue
		}
		result = append(result, *s)
	}
	return result, nil
}

// ── Mock ShiftAssignmentRepository ──

type mockAssignmentRepo struct {
	mu    sync.Mutex
	items map[string]*model.ShiftAssignment
}

func newMockAssignmentRepo() *mockAssignmentRepo {
	return &mockAssignmentRepo{items: make(map[string]*model.ShiftAssignment)}
}

func (m *mockAssignmentRepo) Create(_ context.Context, a *model.ShiftAssignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.items {
		if existing.ShiftID == a.ShiftID && existing.UserID == a.UserID {
			return gorm.ErrDuplicatedKey
		}
	}
	if a.AssignmentID == "" {
		a.AssignmentID = fmt.Sprintf("asg-%d", len(m.items)+1)
	}
	cp := *a
	m.items[a.AssignmentID] = &cp
	return nil
}

func (m *mockAssignmentRepo) GetByID(_ context.Context, id string) (*model.ShiftAssignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.items[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAssignmentRepo) UpdateStatus(_ context.Context, id, status, updatedBy string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.items[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	a.Status = status
	a.UpdatedBy = model.StrPtr(updatedBy)
	return nil
}

// ── Mock ClockEventRepository ──

type mockClockEventRepo struct {
	events  []model.TimeClockEvent
	listErr error
}

func newMockClockEventRepo() *mockClockEventRepo {
	return &mockClockEventRepo{}
}

func (m *mockClockEventRepo) Create(_ context.Context, e *model.TimeClockEvent) error {
	if e.EventID == "" {
		e.EventID = fmt.Sprintf("evt-%d", len(m.events)+1)
	}
	m.events = append(m.events, *e)
	return nil
}

func (m *mockClockEventRepo) ListForUser(_ context.Context, userID, locationID string, from, to time.Time) ([]model.TimeClockEvent, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var result []model.TimeClockEvent
	for _, e := range m.events {
		if e.UserID != userID || e.LocationID != locationID {
			continue
		}
		if e.OccurredAt.Before(from) || !e.OccurredAt.Before(to) {
			continue
		}
		result = append(result, e)
	}
	return result, nil
}

func (m *mockClockEventRepo) List(_ context.Context, filter repository.ClockEventFilter, offset, limit int) ([]model.TimeClockEvent, int64, error) {
	var result []model.TimeClockEvent
	for _, e := range m.events {
		if e.OrgID != filter.OrgID {
			continue
		}
		if filter.UserID != "" && e.UserID != filter.UserID {
			continue
		}
		if filter.LocationID != "" && e.LocationID != filter.LocationID {
			continue
		}
		if filter.From != nil && e.OccurredAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && !e.OccurredAt.Before(*filter.To) {
			continue
		}
		result = append(result, e)
	}
	return page(result, offset, limit), int64(len(result)), nil
}

// ── Mock TimesheetRepository ──

type mockTimesheetRepo struct {
	sheets map[string]*model.Timesheet
	// beforeInsert 在 CreateIfAbsent 写入前调用，用于模拟并发插入
	beforeInsert func()
	updateCalls  int
}

func newMockTimesheetRepo() *mockTimesheetRepo {
	return &mockTimesheetRepo{sheets: make(map[string]*model.Timesheet)}
}

func (m *mockTimesheetRepo) GetByID(_ context.Context, id string) (*model.Timesheet, error) {
	if ts, ok := m.sheets[id]; ok {
		cp := *ts
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTimesheetRepo) GetByKey(_ context.Context, key repository.TimesheetKey, _ bool) (*model.Timesheet, error) {
	for _, ts := range m.sheets {
		if ts.UserID == key.UserID && ts.LocationID == key.LocationID &&
			time.Time(ts.PeriodStart).Equal(key.PeriodStart) && time.Time(ts.PeriodEnd).Equal(key.PeriodEnd) {
			cp := *ts
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTimesheetRepo) CreateIfAbsent(ctx context.Context, ts *model.Timesheet) (bool, error) {
	if m.beforeInsert != nil {
		m.beforeInsert()
	}
	key := repository.TimesheetKey{
		UserID:      ts.UserID,
		LocationID:  ts.LocationID,
		PeriodStart: time.Time(ts.PeriodStart),
		PeriodEnd:   time.Time(ts.PeriodEnd),
	}
	if _, err := m.GetByKey(ctx, key, false); err == nil {
		return false, nil
	}
	if ts.TimesheetID == "" {
		ts.TimesheetID = fmt.Sprintf("ts-%d", len(m.sheets)+1)
	}
	cp := *ts
	m.sheets[ts.TimesheetID] = &cp
	return true, nil
}

func (m *mockTimesheetRepo) UpdateTotals(_ context.Context, ts *model.Timesheet) error {
	m.updateCalls++
	stored, ok := m.sheets[ts.TimesheetID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.Totals = ts.Totals
	stored.Status = model.TimesheetStatusDraft
	stored.ApprovedBy = nil
	stored.ApprovedAt = nil
	stored.UpdatedBy = ts.UpdatedBy
	ts.Status = model.TimesheetStatusDraft
	ts.ApprovedBy = nil
	ts.ApprovedAt = nil
	return nil
}

func (m *mockTimesheetRepo) UpdateStatus(_ context.Context, ts *model.Timesheet, fromStatus string) error {
	stored, ok := m.sheets[ts.TimesheetID]
	if !ok || stored.Status != fromStatus {
		return pkgerrors.ErrOptimisticLock
	}
	stored.Status = ts.Status
	stored.ApprovedBy = ts.ApprovedBy
	stored.ApprovedAt = ts.ApprovedAt
	stored.UpdatedBy = ts.UpdatedBy
	return nil
}

func (m *mockTimesheetRepo) List(_ context.Context, filter repository.TimesheetFilter, offset, limit int) ([]model.Timesheet, int64, error) {
	var result []model.Timesheet
	for _, ts := range m.sheets {
		if ts.OrgID != filter.OrgID {
			continue
		}
		if filter.LocationID != "" && ts.LocationID != filter.LocationID {
			continue
		}
		if filter.UserID != "" && ts.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && ts.Status != filter.Status {
			continue
		}
		if filter.PeriodStart != nil && time.Time(ts.PeriodStart).Before(*filter.PeriodStart) {
			continue
		}
		if filter.PeriodEnd != nil && time.Time(ts.PeriodEnd).After(*filter.PeriodEnd) {
			continue
		}
		result = append(result, *ts)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].TimesheetID < result[j].TimesheetID })
	return page(result, offset, limit), int64(len(result)), nil
}

// ── 通用辅助 ──

func page[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// ── 测试夹具 ──

const (
	testOrgID      = "org-1"
	testOtherOrgID = "org-2"
	testLocationID = "loc-1"
	testManagerID  = "user-manager"
	testStaffID    = "user-staff"
)

// mockStore 聚合所有 mock，便于在测试中直接操作数据
type mockStore struct {
	orgs        *mockOrgRepo
	locations   *mockLocationRepo
	users       *mockUserRepo
	jobTags     *mockJobTagRepo
	rotas       *mockRotaRepo
	shifts      *mockShiftRepo
	assignments *mockAssignmentRepo
	events      *mockClockEventRepo
	timesheets  *mockTimesheetRepo
}

func newMockStore() (*mockStore, *repository.Repository) {
	assignments := newMockAssignmentRepo()
	st := &mockStore{
		orgs:        newMockOrgRepo(),
		locations:   newMockLocationRepo(),
		users:       newMockUserRepo(),
		jobTags:     newMockJobTagRepo(),
		rotas:       newMockRotaRepo(),
		shifts:      newMockShiftRepo(assignments),
		assignments: assignments,
		events:      newMockClockEventRepo(),
		timesheets:  newMockTimesheetRepo(),
	}
	repo := &repository.Repository{
		Org:             st.orgs,
		Location:        st.locations,
		User:            st.users,
		JobTag:          st.jobTags,
		Rota:            st.rotas,
		Shift:           st.shifts,
		ShiftAssignment: st.assignments,
		ClockEvent:      st.events,
		Timesheet:       st.timesheets,
	}
	return st, repo
}

// seed 写入一个组织、一家门店（UTC）、一名经理和一名员工
func (st *mockStore) seed() {
	_ = st.orgs.Create(context.Background(), &model.Org{OrgID: testOrgID, Name: "The Crown"})
	_ = st.locations.Create(context.Background(), &model.Location{
		LocationID: testLocationID, OrgID: testOrgID, Name: "Soho", Timezone: "UTC", IsActive: true,
	})
	_ = st.users.Create(context.Background(), &model.User{
		UserID: testManagerID, OrgID: testOrgID, Name: "Mara", Email: "mara@crown.test", Role: model.RoleManager, IsActive: true,
	})
	_ = st.users.Create(context.Background(), &model.User{
		UserID: testStaffID, OrgID: testOrgID, Name: "Sam", Email: "sam@crown.test", Role: model.RoleStaff, IsActive: true,
	})
}

func (st *mockStore) addRota(id string, weekStart time.Time, status string) *model.Rota {
	r := &model.Rota{
		RotaID:        id,
		OrgID:         testOrgID,
		LocationID:    testLocationID,
		WeekStartDate: datatypes.Date(weekStart),
		Status:        status,
		Version:       1,
	}
	st.rotas.rotas[id] = r
	return r
}

var (
	managerActor = Actor{UserID: testManagerID, OrgID: testOrgID, Role: model.RoleManager}
	staffActor   = Actor{UserID: testStaffID, OrgID: testOrgID, Role: model.RoleStaff}
	outsider     = Actor{UserID: "user-outsider", OrgID: testOtherOrgID, Role: model.RoleManager}
)
