package domain

import (
	"slices"
	"time"
)

type ShiftStatus string

const (
	ShiftStatusDraft     ShiftStatus = "draft"     // 草稿（仅管理层可见）
	ShiftStatusAdjusting ShiftStatus = "adjusting" // 调整中
	ShiftStatusAdjusted  ShiftStatus = "adjusted"  // 调整完成
	ShiftStatusPending   ShiftStatus = "pending"   // 待审批
	ShiftStatusApproved  ShiftStatus = "approved"  // 已审批（未发布）
	ShiftStatusPublished ShiftStatus = "published" // 已发布
)

var (
	// 各个工作流操作合法的源状态集合
	EditableStatuses    = []ShiftStatus{ShiftStatusDraft, ShiftStatusAdjusting, ShiftStatusAdjusted}
	ApprovableStatuses  = []ShiftStatus{ShiftStatusAdjusted, ShiftStatusPending}
	PublishableStatuses = []ShiftStatus{ShiftStatusApproved}
	RejectableStatuses  = []ShiftStatus{ShiftStatusAdjusting, ShiftStatusAdjusted, ShiftStatusPending, ShiftStatusApproved}
)

type Shift struct {
	ID           int64       `json:"id"`
	GroupID      string      `json:"groupID"`
	UserID       int64       `json:"userID"`
	UserFullName string      `json:"userFullName,omitempty"`
	Date         time.Time   `json:"date"`
	StartTime    string      `json:"startTime"`
	EndTime      string      `json:"endTime"`
	Status       ShiftStatus `json:"status"`
	Version      int32       `json:"version"`

	CreatedBy int64     `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`

	AdjustedBy *int64     `json:"adjustedBy"`
	AdjustedAt *time.Time `json:"adjustedAt"`

	ApprovedBy *int64     `json:"approvedBy"`
	ApprovedAt *time.Time `json:"approvedAt"`

	PublishedBy *int64     `json:"publishedBy"`
	PublishedAt *time.Time `json:"publishedAt"`

	RejectedBy      *int64     `json:"rejectedBy"`
	RejectedAt      *time.Time `json:"rejectedAt"`
	RejectionReason *string    `json:"rejectionReason"`
}

func (s *Shift) CanEdit() bool {
	return slices.Contains(EditableStatuses, s.Status)
}

func (s *Shift) CanApprove() bool {
	return slices.Contains(ApprovableStatuses, s.Status)
}

func (s *Shift) CanPublish() bool {
	return slices.Contains(PublishableStatuses, s.Status)
}

func (s *Shift) CanReject() bool {
	return slices.Contains(RejectableStatuses, s.Status)
}

func (s *Shift) IsPublished() bool {
	return s.Status == ShiftStatusPublished
}

// GetDurationHours 计算班次时长（小时）
// 结束时间早于开始时间时视为跨天，加 24 小时后再相减
func (s *Shift) GetDurationHours() float64 {
	return durationHours(s.StartTime, s.EndTime)
}

func durationHours(startTime string, endTime string) float64 {
	start, err := time.Parse("15:04:05", startTime)
	if err != nil {
		return 0
	}
	end, err := time.Parse("15:04:05", endTime)
	if err != nil {
		return 0
	}

	startMinutes := start.Hour()*60 + start.Minute()
	endMinutes := end.Hour()*60 + end.Minute()

	if endMinutes < startMinutes {
		endMinutes += 24 * 60
	}

	return float64(endMinutes-startMinutes) / 60.0
}
