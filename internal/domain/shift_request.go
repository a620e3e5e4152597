package domain

import "time"

type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "pending"   // 已受理（未处理）
	RequestStatusAccepted  RequestStatus = "accepted"  // 已采用
	RequestStatusRejected  RequestStatus = "rejected"  // 未采用
	RequestStatusCancelled RequestStatus = "cancelled" // 员工自行取消
)

// ShiftRequest 是员工提交的排班意愿：希望在某天的某个时间段上班
// 优先级 1 最强，3 最弱
type ShiftRequest struct {
	ID        int64         `json:"id"`
	UserID    int64         `json:"userID"`
	Date      time.Time     `json:"date"`
	StartTime string        `json:"startTime"`
	EndTime   string        `json:"endTime"`
	Priority  int32         `json:"priority"`
	Status    RequestStatus `json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
	Version   int32         `json:"-"`
}

func (r *ShiftRequest) IsPending() bool {
	return r.Status == RequestStatusPending
}

func (r *ShiftRequest) IsAccepted() bool {
	return r.Status == RequestStatusAccepted
}

func (r *ShiftRequest) GetDurationHours() float64 {
	return durationHours(r.StartTime, r.EndTime)
}

var priorityLabels = map[int32]string{
	1: "希望",
	2: "尽量",
	3: "可以",
}

func (r *ShiftRequest) GetPriorityLabel() string {
	if label, exists := priorityLabels[r.Priority]; exists {
		return label
	}
	return "未知"
}
