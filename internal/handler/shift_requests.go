package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sysu-ecnc-dev/shift-flow/backend/internal/domain"
)

func (h *Handler) CreateShiftRequest(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	var req struct {
		Date      string `json:"date" validate:"required,datetime=2006-01-02"`
		StartTime string `json:"startTime" validate:"required,datetime=15:04:05"`
		EndTime   string `json:"endTime" validate:"required,datetime=15:04:05"`
		Priority  int32  `json:"priority" validate:"required,min=1,max=3"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	date, _ := time.Parse("2006-01-02", req.Date)

	request := &domain.ShiftRequest{
		UserID:    myInfo.ID,
		Date:      date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Priority:  req.Priority,
	}

	if request.GetDurationHours() <= 0 {
		h.errorResponse(w, r, "结束时间必须晚于开始时间")
		return
	}

	if err := h.repository.CreateShiftRequest(request); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "排班意愿提交成功", request)
}

func (h *Handler) GetMyShiftRequests(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	requests, err := h.repository.GetShiftRequestsByUserID(myInfo.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取排班意愿成功", requests)
}

// CancelShiftRequest 取消自己的待处理意愿，已被处理过的意愿不能取消
func (h *Handler) CancelShiftRequest(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	requestIDParam := chi.URLParam(r, "id")
	requestID, err := strconv.ParseInt(requestIDParam, 10, 64)
	if err != nil {
		h.errorResponse(w, r, "意愿ID无效")
		return
	}

	affected, err := h.repository.CancelShiftRequest(requestID, myInfo.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if affected == 0 {
		h.errorResponse(w, r, "意愿不存在或已被处理，无法取消")
		return
	}

	h.successResponse(w, r, "已取消排班意愿", nil)
}

func (h *Handler) GetMyPublishedShifts(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	// 缺省展示从今天开始未来一段时间的班表
	now := time.Now()
	startDate := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	endDate := startDate.AddDate(0, 0, h.config.Shift.GenerationLookaheadDays)

	if param := r.URL.Query().Get("start"); param != "" {
		parsed, err := time.Parse("2006-01-02", param)
		if err != nil {
			h.errorResponse(w, r, "开始日期无效")
			return
		}
		startDate = parsed
	}
	if param := r.URL.Query().Get("end"); param != "" {
		parsed, err := time.Parse("2006-01-02", param)
		if err != nil {
			h.errorResponse(w, r, "结束日期无效")
			return
		}
		endDate = parsed
	}

	shifts, err := h.repository.GetPublishedShiftsByUser(myInfo.ID, startDate, endDate)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取个人班表成功", shifts)
}
