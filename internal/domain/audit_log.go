package domain

import "time"

const (
	AuditResultSuccess = "SUCCESS"
	AuditResultFailure = "FAILURE"
)

// AuditLog 是工作流操作的审计记录，和变更历史（ShiftRevision）是两条独立的链路
type AuditLog struct {
	ID           int64     `json:"id"`
	Action       string    `json:"action"`
	ActorID      int64     `json:"actorID"`
	ResourceType string    `json:"resourceType"`
	ResourceID   *int64    `json:"resourceID"`
	DataAccessed string    `json:"dataAccessed"`
	Result       string    `json:"result"`
	ErrorMessage *string   `json:"errorMessage"`
	CreatedAt    time.Time `json:"createdAt"`
}
