package workflow

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/sysu-ecnc-dev/shift-flow/backend/internal/domain"
)

// 工作流操作的动作名，写入审计日志
const (
	ActionCreateDraft     = "CREATE_DRAFT_SHIFTS"
	ActionStartAdjustment = "START_ADJUSTMENT"
	ActionAdjustShift     = "ADJUST_SHIFT"
	ActionApproveShifts   = "APPROVE_SHIFTS"
	ActionPublishShifts   = "PUBLISH_SHIFTS"
	ActionRejectShifts    = "REJECT_SHIFTS"
)

const resourceTypeShift = "SHIFT"

var (
	ErrShiftNotFound    = errors.New("班次不存在")
	ErrShiftNotEditable = errors.New("班次当前状态不允许调整")
	ErrReasonRequired   = errors.New("驳回时必须填写理由")
)

// Result 是每个工作流操作的显式结果
// 非法状态下的操作不是异常，而是一次报告失败的空操作，调用方必须检查 OK
type Result struct {
	OK       bool  `json:"ok"`
	Affected int64 `json:"affected"`
	Err      error `json:"-"`
}

func success(affected int64) Result {
	return Result{OK: true, Affected: affected}
}

func failure(err error) Result {
	return Result{OK: false, Err: err}
}

// Store 是工作流依赖的持久化能力
// 每个方法都必须把行变更和传入的审计记录放在同一个事务中提交
type Store interface {
	GetShiftByID(id int64) (*domain.Shift, error)
	InsertDraftShifts(shifts []*domain.Shift, entry *domain.AuditLog) error
	StartGroupAdjustment(groupID string, entry *domain.AuditLog) (int64, error)
	AdjustShift(shift *domain.Shift, revisions []*domain.ShiftRevision, entry *domain.AuditLog) error
	ApproveGroup(groupID string, approverID int64, entry *domain.AuditLog) (int64, error)
	PublishGroup(groupID string, publisherID int64, entry *domain.AuditLog) (int64, error)
	RejectGroup(groupID string, rejecterID int64, reason string, entry *domain.AuditLog) (int64, error)
	InsertAuditLog(entry *domain.AuditLog) error
}

// Service 实现班次组的审批工作流状态机
// draft → adjusting → adjusted → pending → approved → published，
// 驳回把组内可驳回的班次重置回 draft，循环可以重复进行
//
// 状态机本身不做权限检查，权限由调用层把关；
// 同一个组上的转换需要调用方串行化，核心不提供组级别的锁
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{
		store: store,
	}
}

// AdjustRequest 是一次调整中允许修改的字段，nil 表示不修改
type AdjustRequest struct {
	UserID    *int64
	StartTime *string
	EndTime   *string
	Reason    *string
}

// CreateDraft 把优化器产出的班次以草稿状态落库
func (s *Service) CreateDraft(shifts []*domain.Shift, actorID int64) Result {
	for _, shift := range shifts {
		shift.Status = domain.ShiftStatusDraft
		shift.CreatedBy = actorID
	}

	entry := s.newAuditLog(ActionCreateDraft, actorID, fmt.Sprintf("%d 个班次已创建", len(shifts)))
	if err := s.store.InsertDraftShifts(shifts, entry); err != nil {
		s.logFailure(ActionCreateDraft, actorID, err)
		return failure(err)
	}

	return success(int64(len(shifts)))
}

// StartAdjustment 把组内处于 draft 的班次全部转入 adjusting
// 不在 draft 状态的班次保持原样，不算错误
func (s *Service) StartAdjustment(groupID string, actorID int64) Result {
	entry := s.newAuditLog(ActionStartAdjustment, actorID, fmt.Sprintf("group_id=%s", groupID))
	affected, err := s.store.StartGroupAdjustment(groupID, entry)
	if err != nil {
		s.logFailure(ActionStartAdjustment, actorID, err)
		return failure(err)
	}

	return success(affected)
}

// Adjust 调整单个班次的负责人或起止时间
// 每个实际发生变化的字段追加一条变更历史；即使没有任何字段变化，
// 版本号也固定加一，但不会写入任何变更历史
func (s *Service) Adjust(shiftID int64, req *AdjustRequest, actorID int64) Result {
	shift, err := s.store.GetShiftByID(shiftID)
	if err != nil {
		s.logFailure(ActionAdjustShift, actorID, err)
		return failure(err)
	}
	if shift == nil {
		return failure(ErrShiftNotFound)
	}

	if !shift.CanEdit() {
		return failure(ErrShiftNotEditable)
	}

	revisions := make([]*domain.ShiftRevision, 0)

	if req.UserID != nil && *req.UserID != shift.UserID {
		revisions = append(revisions, &domain.ShiftRevision{
			ShiftID:      shiftID,
			FieldName:    "user_id",
			OldValue:     strconv.FormatInt(shift.UserID, 10),
			NewValue:     strconv.FormatInt(*req.UserID, 10),
			ChangedBy:    actorID,
			ChangeReason: req.Reason,
		})
		shift.UserID = *req.UserID
	}

	if req.StartTime != nil && *req.StartTime != shift.StartTime {
		revisions = append(revisions, &domain.ShiftRevision{
			ShiftID:      shiftID,
			FieldName:    "start_time",
			OldValue:     shift.StartTime,
			NewValue:     *req.StartTime,
			ChangedBy:    actorID,
			ChangeReason: req.Reason,
		})
		shift.StartTime = *req.StartTime
	}

	if req.EndTime != nil && *req.EndTime != shift.EndTime {
		revisions = append(revisions, &domain.ShiftRevision{
			ShiftID:      shiftID,
			FieldName:    "end_time",
			OldValue:     shift.EndTime,
			NewValue:     *req.EndTime,
			ChangedBy:    actorID,
			ChangeReason: req.Reason,
		})
		shift.EndTime = *req.EndTime
	}

	shift.Status = domain.ShiftStatusAdjusted
	adjustedBy := actorID
	shift.AdjustedBy = &adjustedBy

	entry := s.newAuditLog(ActionAdjustShift, actorID, fmt.Sprintf("%d 个字段发生变化", len(revisions)))
	entry.ResourceID = &shiftID

	if err := s.store.AdjustShift(shift, revisions, entry); err != nil {
		s.logFailure(ActionAdjustShift, actorID, err)
		return failure(err)
	}

	return success(int64(len(revisions)))
}

// Approve 审批组内处于 adjusted 或 pending 的班次
func (s *Service) Approve(groupID string, approverID int64) Result {
	entry := s.newAuditLog(ActionApproveShifts, approverID, fmt.Sprintf("group_id=%s", groupID))
	affected, err := s.store.ApproveGroup(groupID, approverID, entry)
	if err != nil {
		s.logFailure(ActionApproveShifts, approverID, err)
		return failure(err)
	}

	return success(affected)
}

// Publish 发布组内已审批的班次，已发布的班次不受二次发布影响
func (s *Service) Publish(groupID string, publisherID int64) Result {
	entry := s.newAuditLog(ActionPublishShifts, publisherID, fmt.Sprintf("group_id=%s", groupID))
	affected, err := s.store.PublishGroup(groupID, publisherID, entry)
	if err != nil {
		s.logFailure(ActionPublishShifts, publisherID, err)
		return failure(err)
	}

	return success(affected)
}

// Reject 驳回组内可驳回的班次并重置回 draft，必须填写理由
// 驳回不删除班次，只记录驳回人、时间和理由
func (s *Service) Reject(groupID string, rejecterID int64, reason string) Result {
	if reason == "" {
		return failure(ErrReasonRequired)
	}

	entry := s.newAuditLog(ActionRejectShifts, rejecterID, fmt.Sprintf("group_id=%s: %s", groupID, reason))
	affected, err := s.store.RejectGroup(groupID, rejecterID, reason, entry)
	if err != nil {
		s.logFailure(ActionRejectShifts, rejecterID, err)
		return failure(err)
	}

	return success(affected)
}

func (s *Service) newAuditLog(action string, actorID int64, dataAccessed string) *domain.AuditLog {
	return &domain.AuditLog{
		Action:       action,
		ActorID:      actorID,
		ResourceType: resourceTypeShift,
		DataAccessed: dataAccessed,
		Result:       domain.AuditResultSuccess,
	}
}

// logFailure 尽力记录失败的审计日志，记录失败本身不会影响操作结果
func (s *Service) logFailure(action string, actorID int64, opErr error) {
	errorMessage := opErr.Error()
	_ = s.store.InsertAuditLog(&domain.AuditLog{
		Action:       action,
		ActorID:      actorID,
		ResourceType: resourceTypeShift,
		Result:       domain.AuditResultFailure,
		ErrorMessage: &errorMessage,
	})
}
