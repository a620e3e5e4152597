package workflow

import (
	"database/sql"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/sysu-ecnc-dev/shift-flow/backend/internal/domain"
)

// memStore 是测试用的内存实现，语义和数据库实现保持一致：
// 版本号固定加一、组级转换只触碰合法状态的行、每次成功操作追加一条审计记录
type memStore struct {
	nextID    int64
	shifts    map[int64]*domain.Shift
	revisions []*domain.ShiftRevision
	auditLogs []*domain.AuditLog
}

func newMemStore() *memStore {
	return &memStore{
		nextID: 1,
		shifts: make(map[int64]*domain.Shift),
	}
}

func (m *memStore) addShift(groupID string, userID int64, status domain.ShiftStatus) *domain.Shift {
	shift := &domain.Shift{
		ID:        m.nextID,
		GroupID:   groupID,
		UserID:    userID,
		Date:      time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC),
		StartTime: "08:00:00",
		EndTime:   "12:00:00",
		Status:    status,
		Version:   1,
	}
	m.nextID++
	m.shifts[shift.ID] = shift
	return shift
}

func (m *memStore) GetShiftByID(id int64) (*domain.Shift, error) {
	shift, exists := m.shifts[id]
	if !exists {
		return nil, sql.ErrNoRows
	}
	return shift, nil
}

func (m *memStore) InsertDraftShifts(shifts []*domain.Shift, entry *domain.AuditLog) error {
	for _, shift := range shifts {
		shift.ID = m.nextID
		shift.Version = 1
		m.nextID++
		m.shifts[shift.ID] = shift
	}
	m.auditLogs = append(m.auditLogs, entry)
	return nil
}

func (m *memStore) transition(groupID string, eligible []domain.ShiftStatus, target domain.ShiftStatus, entry *domain.AuditLog, apply func(*domain.Shift)) (int64, error) {
	var affected int64
	for _, shift := range m.shifts {
		if shift.GroupID != groupID || !slices.Contains(eligible, shift.Status) {
			continue
		}
		shift.Status = target
		if apply != nil {
			apply(shift)
		}
		affected++
	}
	m.auditLogs = append(m.auditLogs, entry)
	return affected, nil
}

func (m *memStore) StartGroupAdjustment(groupID string, entry *domain.AuditLog) (int64, error) {
	return m.transition(groupID, []domain.ShiftStatus{domain.ShiftStatusDraft}, domain.ShiftStatusAdjusting, entry, nil)
}

func (m *memStore) AdjustShift(shift *domain.Shift, revisions []*domain.ShiftRevision, entry *domain.AuditLog) error {
	stored, exists := m.shifts[shift.ID]
	if !exists || stored.Version != shift.Version {
		return sql.ErrNoRows
	}
	shift.Version++
	m.shifts[shift.ID] = shift
	m.revisions = append(m.revisions, revisions...)
	m.auditLogs = append(m.auditLogs, entry)
	return nil
}

func (m *memStore) ApproveGroup(groupID string, approverID int64, entry *domain.AuditLog) (int64, error) {
	return m.transition(groupID, domain.ApprovableStatuses, domain.ShiftStatusApproved, entry, func(shift *domain.Shift) {
		shift.ApprovedBy = &approverID
	})
}

func (m *memStore) PublishGroup(groupID string, publisherID int64, entry *domain.AuditLog) (int64, error) {
	return m.transition(groupID, domain.PublishableStatuses, domain.ShiftStatusPublished, entry, func(shift *domain.Shift) {
		shift.PublishedBy = &publisherID
	})
}

func (m *memStore) RejectGroup(groupID string, rejecterID int64, reason string, entry *domain.AuditLog) (int64, error) {
	return m.transition(groupID, domain.RejectableStatuses, domain.ShiftStatusDraft, entry, func(shift *domain.Shift) {
		shift.RejectedBy = &rejecterID
		shift.RejectionReason = &reason
	})
}

func (m *memStore) InsertAuditLog(entry *domain.AuditLog) error {
	m.auditLogs = append(m.auditLogs, entry)
	return nil
}

func ptrInt64(v int64) *int64 { return &v }

func ptrString(v string) *string { return &v }

func TestCreateDraft(t *testing.T) {
	store := newMemStore()
	service := NewService(store)

	shifts := []*domain.Shift{
		{GroupID: "grp_1", UserID: 1},
		{GroupID: "grp_1", UserID: 2},
	}

	res := service.CreateDraft(shifts, 99)
	if !res.OK {
		t.Fatalf("CreateDraft 失败: %v", res.Err)
	}
	if res.Affected != 2 {
		t.Errorf("res.Affected = %d, want 2", res.Affected)
	}
	for _, shift := range shifts {
		if shift.Status != domain.ShiftStatusDraft {
			t.Errorf("shift.Status = %q, want %q", shift.Status, domain.ShiftStatusDraft)
		}
		if shift.CreatedBy != 99 {
			t.Errorf("shift.CreatedBy = %d, want 99", shift.CreatedBy)
		}
	}
	if len(store.auditLogs) != 1 {
		t.Fatalf("len(auditLogs) = %d, want 1", len(store.auditLogs))
	}
	if store.auditLogs[0].Action != ActionCreateDraft {
		t.Errorf("audit action = %q, want %q", store.auditLogs[0].Action, ActionCreateDraft)
	}
}

func TestStartAdjustmentOnlyTouchesDrafts(t *testing.T) {
	store := newMemStore()
	service := NewService(store)

	draft := store.addShift("grp_1", 1, domain.ShiftStatusDraft)
	published := store.addShift("grp_1", 2, domain.ShiftStatusPublished)
	otherGroup := store.addShift("grp_2", 3, domain.ShiftStatusDraft)

	res := service.StartAdjustment("grp_1", 99)
	if !res.OK {
		t.Fatalf("StartAdjustment 失败: %v", res.Err)
	}
	if res.Affected != 1 {
		t.Errorf("res.Affected = %d, want 1", res.Affected)
	}
	if draft.Status != domain.ShiftStatusAdjusting {
		t.Errorf("draft.Status = %q, want %q", draft.Status, domain.ShiftStatusAdjusting)
	}
	if published.Status != domain.ShiftStatusPublished {
		t.Errorf("已发布的班次不应该被触碰，got %q", published.Status)
	}
	if otherGroup.Status != domain.ShiftStatusDraft {
		t.Errorf("其他组的班次不应该被触碰，got %q", otherGroup.Status)
	}
}

func TestAdjustRecordsRevisions(t *testing.T) {
	store := newMemStore()
	service := NewService(store)

	shift := store.addShift("grp_1", 1, domain.ShiftStatusAdjusting)

	res := service.Adjust(shift.ID, &AdjustRequest{
		UserID:    ptrInt64(2),
		StartTime: ptrString("09:00:00"),
		Reason:    ptrString("换人"),
	}, 99)
	if !res.OK {
		t.Fatalf("Adjust 失败: %v", res.Err)
	}
	if res.Affected != 2 {
		t.Errorf("res.Affected = %d, want 2", res.Affected)
	}
	if len(store.revisions) != 2 {
		t.Fatalf("len(revisions) = %d, want 2", len(store.revisions))
	}

	fields := []string{store.revisions[0].FieldName, store.revisions[1].FieldName}
	if !slices.Contains(fields, "user_id") || !slices.Contains(fields, "start_time") {
		t.Errorf("revisions 应记录 user_id 和 start_time，got %v", fields)
	}
	for _, revision := range store.revisions {
		if revision.FieldName == "user_id" {
			if revision.OldValue != "1" || revision.NewValue != "2" {
				t.Errorf("user_id 变更记录 = %q -> %q, want 1 -> 2", revision.OldValue, revision.NewValue)
			}
		}
	}

	if shift.Status != domain.ShiftStatusAdjusted {
		t.Errorf("shift.Status = %q, want %q", shift.Status, domain.ShiftStatusAdjusted)
	}
	if shift.Version != 2 {
		t.Errorf("shift.Version = %d, want 2", shift.Version)
	}
	if shift.UserID != 2 || shift.StartTime != "09:00:00" {
		t.Errorf("调整后的字段没有生效: userID=%d startTime=%q", shift.UserID, shift.StartTime)
	}
}

func TestAdjustWithoutChangesStillBumpsVersion(t *testing.T) {
	store := newMemStore()
	service := NewService(store)

	shift := store.addShift("grp_1", 1, domain.ShiftStatusAdjusting)

	// 传入的值和现状完全一致
	res := service.Adjust(shift.ID, &AdjustRequest{
		UserID:    ptrInt64(1),
		StartTime: ptrString("08:00:00"),
	}, 99)
	if !res.OK {
		t.Fatalf("Adjust 失败: %v", res.Err)
	}
	if res.Affected != 0 {
		t.Errorf("res.Affected = %d, want 0", res.Affected)
	}
	if len(store.revisions) != 0 {
		t.Errorf("没有字段变化时不应该写入变更历史，got %d 条", len(store.revisions))
	}
	if shift.Version != 2 {
		t.Errorf("即使没有变化版本号也应该加一，got %d", shift.Version)
	}
}

func TestAdjustRejectsIneligibleStatus(t *testing.T) {
	store := newMemStore()
	service := NewService(store)

	shift := store.addShift("grp_1", 1, domain.ShiftStatusPublished)

	res := service.Adjust(shift.ID, &AdjustRequest{UserID: ptrInt64(2)}, 99)
	if res.OK {
		t.Fatal("已发布的班次不应该允许调整")
	}
	if !errors.Is(res.Err, ErrShiftNotEditable) {
		t.Errorf("res.Err = %v, want ErrShiftNotEditable", res.Err)
	}
	if shift.UserID != 1 {
		t.Errorf("失败的调整不应该修改班次，got UserID = %d", shift.UserID)
	}
	if len(store.auditLogs) != 0 {
		t.Errorf("状态守卫失败是空操作，不应该写入审计日志，got %d 条", len(store.auditLogs))
	}
}

func TestAdjustMissingShift(t *testing.T) {
	store := newMemStore()
	service := NewService(store)

	res := service.Adjust(42, &AdjustRequest{UserID: ptrInt64(2)}, 99)
	if res.OK {
		t.Fatal("不存在的班次应该返回失败")
	}
}

func TestApproveAndPublishFlow(t *testing.T) {
	store := newMemStore()
	service := NewService(store)

	adjusted := store.addShift("grp_1", 1, domain.ShiftStatusAdjusted)
	pending := store.addShift("grp_1", 2, domain.ShiftStatusPending)
	draft := store.addShift("grp_1", 3, domain.ShiftStatusDraft)

	res := service.Approve("grp_1", 88)
	if !res.OK || res.Affected != 2 {
		t.Fatalf("Approve: OK=%v Affected=%d, want OK affected 2", res.OK, res.Affected)
	}
	if adjusted.Status != domain.ShiftStatusApproved || pending.Status != domain.ShiftStatusApproved {
		t.Errorf("adjusted/pending 都应该被审批通过")
	}
	if draft.Status != domain.ShiftStatusDraft {
		t.Errorf("draft 不应该被审批，got %q", draft.Status)
	}
	if adjusted.ApprovedBy == nil || *adjusted.ApprovedBy != 88 {
		t.Errorf("审批人没有记录")
	}

	res = service.Publish("grp_1", 88)
	if !res.OK || res.Affected != 2 {
		t.Fatalf("Publish: OK=%v Affected=%d, want OK affected 2", res.OK, res.Affected)
	}

	// 重复发布是无影响的空操作
	res = service.Publish("grp_1", 88)
	if !res.OK {
		t.Fatalf("重复发布不应该报错: %v", res.Err)
	}
	if res.Affected != 0 {
		t.Errorf("重复发布的 Affected = %d, want 0", res.Affected)
	}
}

func TestRejectResetsEligibleShifts(t *testing.T) {
	store := newMemStore()
	service := NewService(store)

	adjusted := store.addShift("grp_1", 1, domain.ShiftStatusAdjusted)
	published := store.addShift("grp_1", 2, domain.ShiftStatusPublished)
	draft := store.addShift("grp_1", 3, domain.ShiftStatusDraft)

	res := service.Reject("grp_1", 88, "人手安排不合理")
	if !res.OK {
		t.Fatalf("Reject 失败: %v", res.Err)
	}
	if res.Affected != 1 {
		t.Errorf("res.Affected = %d, want 1", res.Affected)
	}
	if adjusted.Status != domain.ShiftStatusDraft {
		t.Errorf("被驳回的班次应该退回草稿，got %q", adjusted.Status)
	}
	if adjusted.RejectionReason == nil || *adjusted.RejectionReason != "人手安排不合理" {
		t.Errorf("驳回理由没有记录")
	}
	if published.Status != domain.ShiftStatusPublished {
		t.Errorf("已发布的班次不应该被驳回，got %q", published.Status)
	}
	if draft.Status != domain.ShiftStatusDraft {
		t.Errorf("草稿不在可驳回状态中，不应该被触碰")
	}
}

func TestRejectRequiresReason(t *testing.T) {
	store := newMemStore()
	service := NewService(store)

	store.addShift("grp_1", 1, domain.ShiftStatusAdjusted)

	res := service.Reject("grp_1", 88, "")
	if res.OK {
		t.Fatal("没有理由的驳回应该失败")
	}
	if !errors.Is(res.Err, ErrReasonRequired) {
		t.Errorf("res.Err = %v, want ErrReasonRequired", res.Err)
	}
	if len(store.auditLogs) != 0 {
		t.Errorf("参数校验失败不应该写入审计日志，got %d 条", len(store.auditLogs))
	}
}
