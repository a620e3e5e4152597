package domain

type ViolationType string

const (
	ViolationDailyHoursExceeded      ViolationType = "daily_hours_exceeded"
	ViolationWeeklyHoursExceeded     ViolationType = "weekly_hours_exceeded"
	ViolationConsecutiveDaysExceeded ViolationType = "consecutive_days_exceeded"
	ViolationRestTimeRequired        ViolationType = "rest_time_required"
)

type ViolationSeverity string

const (
	SeverityCritical ViolationSeverity = "critical"
	SeverityWarning  ViolationSeverity = "warning"
	SeverityInfo     ViolationSeverity = "info"
)

// ComplianceViolation 是合规检查产生的提示信息
// 它不是错误：即使存在 critical 违规，管理者仍可以选择继续审批
type ComplianceViolation struct {
	UserID       int64             `json:"userID"`
	UserFullName string            `json:"userFullName"`
	Type         ViolationType     `json:"type"`
	Details      string            `json:"details"`
	Severity     ViolationSeverity `json:"severity"`
}
