package handler

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sysu-ecnc-dev/shift-flow/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-flow/backend/internal/labor"
	"github.com/sysu-ecnc-dev/shift-flow/backend/internal/optimizer"
	"github.com/sysu-ecnc-dev/shift-flow/backend/internal/utils"
	"github.com/sysu-ecnc-dev/shift-flow/backend/internal/workflow"
)

const generationLockKey = "shift_generation_lock"

func (h *Handler) currentUserID(r *http.Request) (int64, error) {
	subString := r.Context().Value(SubCtxKey).(string)
	return strconv.ParseInt(subString, 10, 64)
}

// workflowError 把工作流的失败结果映射成对应的响应
func (h *Handler) workflowError(w http.ResponseWriter, r *http.Request, res workflow.Result) {
	switch {
	case errors.Is(res.Err, workflow.ErrShiftNotFound),
		errors.Is(res.Err, workflow.ErrShiftNotEditable),
		errors.Is(res.Err, workflow.ErrReasonRequired):
		h.errorResponse(w, r, res.Err.Error())
	case errors.Is(res.Err, sql.ErrNoRows):
		h.errorResponse(w, r, "班次已被他人修改，请重试")
	default:
		h.internalServerError(w, r, res.Err)
	}
}

func (h *Handler) GenerateShifts(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StartDate string `json:"startDate" validate:"omitempty,datetime=2006-01-02"`
		EndDate   string `json:"endDate" validate:"omitempty,datetime=2006-01-02"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 日期缺省时从明天开始排未来一段时间
	now := time.Now()
	startDate := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, time.UTC)
	if req.StartDate != "" {
		startDate, _ = time.Parse("2006-01-02", req.StartDate)
	}
	endDate := startDate.AddDate(0, 0, h.config.Shift.GenerationLookaheadDays-1)
	if req.EndDate != "" {
		endDate, _ = time.Parse("2006-01-02", req.EndDate)
	}

	if endDate.Before(startDate) {
		h.errorResponse(w, r, "结束日期不能早于开始日期")
		return
	}

	actorID, err := h.currentUserID(r)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// 生成是排他操作，用 redis 锁防止并发生成互相干扰
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.Redis.OperationExpiration)*time.Second)
	defer cancel()

	locked, err := h.redisClient.SetNX(ctx, generationLockKey, actorID, time.Duration(h.config.Shift.GenerationLockTTL)*time.Second).Result()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if !locked {
		h.errorResponse(w, r, "已有排班生成任务正在进行，请稍后再试")
		return
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.Redis.OperationExpiration)*time.Second)
		defer cancel()
		if err := h.redisClient.Del(ctx, generationLockKey).Err(); err != nil {
			slog.Warn("释放排班生成锁失败", "error", err)
		}
	}()

	// 收集待处理的意愿和在职员工
	requests, err := h.repository.GetPendingRequestsInRange(startDate, endDate)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if len(requests) == 0 {
		h.errorResponse(w, r, "该时间段内没有待处理的排班意愿")
		return
	}

	users, err := h.repository.GetActiveUsers()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// 求解
	groupID := utils.GenerateGroupID(startDate)
	o := optimizer.New(&optimizer.Parameters{
		MinStaffPerShift: h.config.Shift.MinStaffPerShift,
		MaxStaffPerShift: h.config.Shift.MaxStaffPerShift,
		MaxWeeklyHours:   h.config.Labor.MaxWorkHoursPerWeek,
	})

	shifts := o.Generate(startDate, endDate, requests, users, groupID, actorID)
	if len(shifts) == 0 {
		h.errorResponse(w, r, "无法生成满足人数约束的排班，请调整意愿或约束后重试")
		return
	}

	// 求解器保证了同一员工同一天至多一个班，这里再兜底校验一次
	if err := utils.ValidateNoDoubleBooking(shifts); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// 以草稿状态落库
	if res := h.workflow.CreateDraft(shifts, actorID); !res.OK {
		h.workflowError(w, r, res)
		return
	}

	// 标记意愿的采用结果
	acceptedIDs, rejectedIDs := utils.MatchRequestOutcomes(shifts, requests)
	if err := h.repository.MarkRequestOutcomes(acceptedIDs, rejectedIDs); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// 对生成结果做合规检查，有违规时把报告发给操作者
	stats := optimizer.Validate(shifts, h.checker)
	report := labor.FormatForDisplay(stats.Violations)

	if len(stats.Violations) > 0 {
		actor, err := h.repository.GetUserByID(actorID)
		if err == nil {
			err = h.publishNotify(domain.NotifyMessage{
				Type: "violation_report",
				To:   actor.Email,
				Data: domain.ViolationReportNotifyData{
					GroupID: groupID,
					Report:  report,
				},
			})
		}
		if err != nil {
			slog.Warn("发送合规报告失败", "groupID", groupID, "error", err)
		}
	}

	h.successResponse(w, r, "排班生成成功", map[string]any{
		"groupID": groupID,
		"shifts":  shifts,
		"stats":   stats,
		"report":  report,
	})
}

func (h *Handler) GetGroupShifts(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")

	statuses := []domain.ShiftStatus{
		domain.ShiftStatusDraft,
		domain.ShiftStatusAdjusting,
		domain.ShiftStatusAdjusted,
		domain.ShiftStatusPending,
		domain.ShiftStatusApproved,
		domain.ShiftStatusPublished,
	}

	shifts, err := h.repository.GetShiftsByGroupID(groupID, statuses)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取排班组成功", shifts)
}

func (h *Handler) GetShift(w http.ResponseWriter, r *http.Request) {
	shift := r.Context().Value(ShiftCtx).(*domain.Shift)
	h.successResponse(w, r, "获取班次成功", shift)
}

func (h *Handler) StartAdjustment(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")

	actorID, err := h.currentUserID(r)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	res := h.workflow.StartAdjustment(groupID, actorID)
	if !res.OK {
		h.workflowError(w, r, res)
		return
	}

	h.successResponse(w, r, "已进入调整状态", map[string]any{"affected": res.Affected})
}

func (h *Handler) AdjustShift(w http.ResponseWriter, r *http.Request) {
	shift := r.Context().Value(ShiftCtx).(*domain.Shift)

	var req struct {
		UserID    *int64  `json:"userID"`
		StartTime *string `json:"startTime" validate:"omitempty,datetime=15:04:05"`
		EndTime   *string `json:"endTime" validate:"omitempty,datetime=15:04:05"`
		Reason    *string `json:"reason"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if req.StartTime != nil || req.EndTime != nil {
		startTime := shift.StartTime
		if req.StartTime != nil {
			startTime = *req.StartTime
		}
		endTime := shift.EndTime
		if req.EndTime != nil {
			endTime = *req.EndTime
		}
		if err := utils.ValidateShiftTimes(startTime, endTime); err != nil {
			h.errorResponse(w, r, err.Error())
			return
		}
	}

	// 换人时检查新负责人当天是否已经有班
	if req.UserID != nil && *req.UserID != shift.UserID {
		groupShifts, err := h.repository.GetShiftsByGroupID(shift.GroupID, []domain.ShiftStatus{
			domain.ShiftStatusDraft,
			domain.ShiftStatusAdjusting,
			domain.ShiftStatusAdjusted,
			domain.ShiftStatusPending,
			domain.ShiftStatusApproved,
			domain.ShiftStatusPublished,
		})
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}
		for _, other := range groupShifts {
			if other.ID != shift.ID && other.UserID == *req.UserID && other.Date.Equal(shift.Date) {
				h.errorResponse(w, r, "该员工当天已有班次，不能重复排班")
				return
			}
		}
	}

	actorID, err := h.currentUserID(r)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	res := h.workflow.Adjust(shift.ID, &workflow.AdjustRequest{
		UserID:    req.UserID,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Reason:    req.Reason,
	}, actorID)
	if !res.OK {
		h.workflowError(w, r, res)
		return
	}

	h.successResponse(w, r, "班次调整成功", map[string]any{"changedFields": res.Affected})
}

func (h *Handler) GetShiftRevisions(w http.ResponseWriter, r *http.Request) {
	shift := r.Context().Value(ShiftCtx).(*domain.Shift)

	revisions, err := h.repository.GetRevisionsByShiftID(shift.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取变更历史成功", revisions)
}

func (h *Handler) ApproveShifts(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")

	actorID, err := h.currentUserID(r)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	res := h.workflow.Approve(groupID, actorID)
	if !res.OK {
		h.workflowError(w, r, res)
		return
	}

	h.successResponse(w, r, "审批成功", map[string]any{"affected": res.Affected})
}

func (h *Handler) PublishShifts(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")

	actorID, err := h.currentUserID(r)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	res := h.workflow.Publish(groupID, actorID)
	if !res.OK {
		h.workflowError(w, r, res)
		return
	}

	// 给每个被排班的员工发一封通知邮件，发送失败不影响发布结果
	if res.Affected > 0 {
		h.notifyPublishedShifts(groupID)
	}

	h.successResponse(w, r, "发布成功", map[string]any{"affected": res.Affected})
}

func (h *Handler) notifyPublishedShifts(groupID string) {
	shifts, err := h.repository.GetShiftsByGroupID(groupID, []domain.ShiftStatus{domain.ShiftStatusPublished})
	if err != nil {
		slog.Warn("获取已发布班次失败", "groupID", groupID, "error", err)
		return
	}

	countByUser := make(map[int64]int)
	for _, shift := range shifts {
		countByUser[shift.UserID]++
	}

	for userID, count := range countByUser {
		user, err := h.repository.GetUserByID(userID)
		if err != nil {
			slog.Warn("获取员工信息失败", "userID", userID, "error", err)
			continue
		}

		if err := h.publishNotify(domain.NotifyMessage{
			Type: "shifts_published",
			To:   user.Email,
			Data: domain.ShiftsPublishedNotifyData{
				GroupID:   groupID,
				FullName:  user.FullName,
				Published: count,
			},
		}); err != nil {
			slog.Warn("发送排班通知失败", "userID", userID, "error", err)
		}
	}
}

func (h *Handler) RejectShifts(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")

	var req struct {
		Reason string `json:"reason" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	actorID, err := h.currentUserID(r)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	res := h.workflow.Reject(groupID, actorID, req.Reason)
	if !res.OK {
		h.workflowError(w, r, res)
		return
	}

	h.successResponse(w, r, "已驳回，相关班次已退回草稿状态", map[string]any{"affected": res.Affected})
}
