package domain

import (
	"slices"
	"time"
)

type Role string

const (
	RoleStaff      Role = "普通员工"
	RoleEvaluator  Role = "评估员"
	RoleSubManager Role = "副经理"
	RoleManager    Role = "经理"
	RoleAdmin      Role = "管理员"
)

type Permission string

const (
	PermissionViewOwnShift  Permission = "view_own_shift"
	PermissionViewAllShifts Permission = "view_all_shifts"
	PermissionRequestShift  Permission = "request_shift"
	PermissionEvaluateStaff Permission = "evaluate_staff"
	PermissionCreateDraft   Permission = "create_draft_shift"
	PermissionAdjustShift   Permission = "adjust_shift"
	PermissionApproveShift  Permission = "approve_shift"
	PermissionPublishShift  Permission = "publish_shift"
	PermissionRejectShift   Permission = "reject_shift"
	PermissionViewAnalytics Permission = "view_analytics"
	PermissionViewAuditLogs Permission = "view_audit_logs"
)

// RolePermissions 是角色到权限集合的封闭映射
// 工作流状态机本身不感知权限，权限检查只发生在调用层
var RolePermissions = map[Role][]Permission{
	RoleStaff: {
		PermissionViewOwnShift,
		PermissionRequestShift,
	},
	RoleEvaluator: {
		PermissionViewOwnShift,
		PermissionRequestShift,
		PermissionEvaluateStaff,
		PermissionViewAllShifts,
	},
	RoleSubManager: {
		PermissionViewOwnShift,
		PermissionRequestShift,
		PermissionViewAllShifts,
		PermissionCreateDraft,
		PermissionAdjustShift,
		PermissionRejectShift,
		PermissionViewAnalytics,
	},
	RoleManager: {
		PermissionViewOwnShift,
		PermissionViewAllShifts,
		PermissionRequestShift,
		PermissionEvaluateStaff,
		PermissionCreateDraft,
		PermissionAdjustShift,
		PermissionApproveShift,
		PermissionPublishShift,
		PermissionRejectShift,
		PermissionViewAnalytics,
		PermissionViewAuditLogs,
	},
	RoleAdmin: {
		PermissionViewOwnShift,
		PermissionViewAllShifts,
		PermissionRequestShift,
		PermissionEvaluateStaff,
		PermissionCreateDraft,
		PermissionAdjustShift,
		PermissionApproveShift,
		PermissionPublishShift,
		PermissionRejectShift,
		PermissionViewAnalytics,
		PermissionViewAuditLogs,
	},
}

func RoleHasPermission(role Role, permission Permission) bool {
	return slices.Contains(RolePermissions[role], permission)
}

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"fullName"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	Version      int32     `json:"-"`
}

func (u *User) HasPermission(permission Permission) bool {
	return RoleHasPermission(u.Role, permission)
}

func (u *User) CanAdjustShifts() bool {
	return u.HasPermission(PermissionAdjustShift)
}

func (u *User) CanApproveShifts() bool {
	return u.HasPermission(PermissionApproveShift)
}

func (u *User) CanViewAllShifts() bool {
	return u.HasPermission(PermissionViewAllShifts)
}
