package domain

import "time"

// ShiftRevision 记录一次调整中单个字段的变更，只追加，不修改不删除
type ShiftRevision struct {
	ID           int64     `json:"id"`
	ShiftID      int64     `json:"shiftID"`
	FieldName    string    `json:"fieldName"`
	OldValue     string    `json:"oldValue"`
	NewValue     string    `json:"newValue"`
	ChangedBy    int64     `json:"changedBy"`
	ChangeReason *string   `json:"changeReason"`
	ChangedAt    time.Time `json:"changedAt"`
}
