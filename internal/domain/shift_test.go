package domain

import "testing"

func TestGetDurationHours(t *testing.T) {
	cases := []struct {
		name      string
		startTime string
		endTime   string
		want      float64
	}{
		{"普通白班", "09:00:00", "17:00:00", 8.0},
		{"半小时粒度", "08:00:00", "12:30:00", 4.5},
		{"跨天夜班", "22:00:00", "02:00:00", 4.0},
		{"起止相同", "08:00:00", "08:00:00", 0.0},
		{"格式错误", "abc", "17:00:00", 0.0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			shift := &Shift{StartTime: tc.startTime, EndTime: tc.endTime}
			if got := shift.GetDurationHours(); got != tc.want {
				t.Errorf("GetDurationHours() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestShiftStatusGuards(t *testing.T) {
	cases := []struct {
		status     ShiftStatus
		canEdit    bool
		canApprove bool
		canPublish bool
		canReject  bool
	}{
		{ShiftStatusDraft, true, false, false, false},
		{ShiftStatusAdjusting, true, false, false, true},
		{ShiftStatusAdjusted, true, true, false, true},
		{ShiftStatusPending, false, true, false, true},
		{ShiftStatusApproved, false, false, true, true},
		{ShiftStatusPublished, false, false, false, false},
	}

	for _, tc := range cases {
		t.Run(string(tc.status), func(t *testing.T) {
			shift := &Shift{Status: tc.status}
			if got := shift.CanEdit(); got != tc.canEdit {
				t.Errorf("CanEdit() = %v, want %v", got, tc.canEdit)
			}
			if got := shift.CanApprove(); got != tc.canApprove {
				t.Errorf("CanApprove() = %v, want %v", got, tc.canApprove)
			}
			if got := shift.CanPublish(); got != tc.canPublish {
				t.Errorf("CanPublish() = %v, want %v", got, tc.canPublish)
			}
			if got := shift.CanReject(); got != tc.canReject {
				t.Errorf("CanReject() = %v, want %v", got, tc.canReject)
			}
		})
	}
}

func TestRoleHasPermission(t *testing.T) {
	if !RoleHasPermission(RoleManager, PermissionApproveShift) {
		t.Error("经理应该具备审批权限")
	}
	if RoleHasPermission(RoleStaff, PermissionApproveShift) {
		t.Error("普通员工不应该具备审批权限")
	}
	if RoleHasPermission(RoleSubManager, PermissionApproveShift) {
		t.Error("副经理不应该具备审批权限")
	}
	if !RoleHasPermission(RoleSubManager, PermissionAdjustShift) {
		t.Error("副经理应该具备调整权限")
	}
	if RoleHasPermission(Role("不存在的角色"), PermissionViewOwnShift) {
		t.Error("未知角色不应该具备任何权限")
	}
}

func TestGetPriorityLabel(t *testing.T) {
	cases := []struct {
		priority int32
		want     string
	}{
		{1, "希望"},
		{2, "尽量"},
		{3, "可以"},
		{9, "未知"},
	}

	for _, tc := range cases {
		request := &ShiftRequest{Priority: tc.priority}
		if got := request.GetPriorityLabel(); got != tc.want {
			t.Errorf("GetPriorityLabel(%d) = %q, want %q", tc.priority, got, tc.want)
		}
	}
}
