package optimizer

import (
	"fmt"
	"testing"
	"time"

	"github.com/sysu-ecnc-dev/shift-flow/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-flow/backend/internal/labor"
)

func date(value string) time.Time {
	parsed, _ := time.Parse("2006-01-02", value)
	return parsed
}

func newUser(id int64, name string) *domain.User {
	return &domain.User{ID: id, FullName: name, IsActive: true}
}

func newRequest(userID int64, day string, startTime string, endTime string, priority int32) *domain.ShiftRequest {
	return &domain.ShiftRequest{
		UserID:    userID,
		Date:      date(day),
		StartTime: startTime,
		EndTime:   endTime,
		Priority:  priority,
		Status:    domain.RequestStatusPending,
	}
}

func TestGenerateBasic(t *testing.T) {
	o := New(&Parameters{MinStaffPerShift: 2, MaxStaffPerShift: 10, MaxWeeklyHours: 40})

	users := []*domain.User{newUser(1, "张伟"), newUser(2, "李芳")}
	requests := []*domain.ShiftRequest{
		newRequest(1, "2026-09-07", "08:00:00", "12:00:00", 1),
		newRequest(2, "2026-09-07", "12:00:00", "18:00:00", 2),
	}

	shifts := o.Generate(date("2026-09-07"), date("2026-09-07"), requests, users, "grp_test", 99)
	if len(shifts) != 2 {
		t.Fatalf("len(shifts) = %d, want 2", len(shifts))
	}

	for _, shift := range shifts {
		if shift.Status != domain.ShiftStatusDraft {
			t.Errorf("shift.Status = %q, want %q", shift.Status, domain.ShiftStatusDraft)
		}
		if shift.GroupID != "grp_test" {
			t.Errorf("shift.GroupID = %q, want %q", shift.GroupID, "grp_test")
		}
		if shift.CreatedBy != 99 {
			t.Errorf("shift.CreatedBy = %d, want 99", shift.CreatedBy)
		}
	}
}

func TestGenerateInfeasible(t *testing.T) {
	o := New(&Parameters{MinStaffPerShift: 2, MaxStaffPerShift: 10, MaxWeeklyHours: 40})

	// 只有一个候选人，凑不够最小人数
	users := []*domain.User{newUser(1, "张伟")}
	requests := []*domain.ShiftRequest{
		newRequest(1, "2026-09-07", "08:00:00", "12:00:00", 1),
	}

	shifts := o.Generate(date("2026-09-07"), date("2026-09-07"), requests, users, "grp_test", 99)
	if len(shifts) != 0 {
		t.Fatalf("无法满足最小人数时应该返回空列表，got %d 个班次", len(shifts))
	}
}

func TestGenerateOneShiftPerDay(t *testing.T) {
	o := New(&Parameters{MinStaffPerShift: 1, MaxStaffPerShift: 10, MaxWeeklyHours: 40})

	// 同一个员工同一天提交了两个意愿，至多采用一个
	users := []*domain.User{newUser(1, "张伟")}
	requests := []*domain.ShiftRequest{
		newRequest(1, "2026-09-07", "08:00:00", "12:00:00", 2),
		newRequest(1, "2026-09-07", "14:00:00", "18:00:00", 1),
	}

	shifts := o.Generate(date("2026-09-07"), date("2026-09-07"), requests, users, "grp_test", 99)
	if len(shifts) != 1 {
		t.Fatalf("len(shifts) = %d, want 1", len(shifts))
	}
	// 优先级 1 的意愿权重更高
	if shifts[0].StartTime != "14:00:00" {
		t.Errorf("应采用优先级更高的意愿，got StartTime = %q", shifts[0].StartTime)
	}
}

func TestGeneratePrefersHighPriority(t *testing.T) {
	o := New(&Parameters{MinStaffPerShift: 1, MaxStaffPerShift: 1, MaxWeeklyHours: 40})

	users := []*domain.User{newUser(1, "张伟"), newUser(2, "李芳")}
	requests := []*domain.ShiftRequest{
		newRequest(1, "2026-09-07", "08:00:00", "12:00:00", 1),
		newRequest(2, "2026-09-07", "08:00:00", "12:00:00", 3),
	}

	shifts := o.Generate(date("2026-09-07"), date("2026-09-07"), requests, users, "grp_test", 99)
	if len(shifts) != 1 {
		t.Fatalf("len(shifts) = %d, want 1", len(shifts))
	}
	if shifts[0].UserID != 1 {
		t.Errorf("名额只有一个时应该采用优先级更高的员工，got UserID = %d", shifts[0].UserID)
	}
}

func TestGenerateWeeklyCap(t *testing.T) {
	// 每周上限 16 小时，按 8 小时一班折算每周至多 2 天
	o := New(&Parameters{MinStaffPerShift: 0, MaxStaffPerShift: 10, MaxWeeklyHours: 16})

	users := []*domain.User{newUser(1, "张伟")}
	requests := []*domain.ShiftRequest{
		newRequest(1, "2026-09-07", "08:00:00", "16:00:00", 1),
		newRequest(1, "2026-09-08", "08:00:00", "16:00:00", 1),
		newRequest(1, "2026-09-09", "08:00:00", "16:00:00", 1),
	}

	shifts := o.Generate(date("2026-09-07"), date("2026-09-09"), requests, users, "grp_test", 99)
	if len(shifts) != 2 {
		t.Fatalf("每周至多 2 天，len(shifts) = %d, want 2", len(shifts))
	}
}

func TestGenerateSkipsInactiveUsers(t *testing.T) {
	o := New(&Parameters{MinStaffPerShift: 1, MaxStaffPerShift: 10, MaxWeeklyHours: 40})

	leaved := newUser(1, "张伟")
	leaved.IsActive = false
	users := []*domain.User{leaved, newUser(2, "李芳")}
	requests := []*domain.ShiftRequest{
		newRequest(1, "2026-09-07", "08:00:00", "12:00:00", 1),
		newRequest(2, "2026-09-07", "08:00:00", "12:00:00", 1),
	}

	shifts := o.Generate(date("2026-09-07"), date("2026-09-07"), requests, users, "grp_test", 99)
	if len(shifts) != 1 {
		t.Fatalf("len(shifts) = %d, want 1", len(shifts))
	}
	if shifts[0].UserID != 2 {
		t.Errorf("离职员工不应该被排班，got UserID = %d", shifts[0].UserID)
	}
}

func TestGenerateEndToEnd(t *testing.T) {
	o := New(&Parameters{MinStaffPerShift: 2, MaxStaffPerShift: 10, MaxWeeklyHours: 40})

	users := []*domain.User{newUser(1, "张伟"), newUser(2, "李芳"), newUser(3, "王敏")}
	requests := []*domain.ShiftRequest{
		newRequest(1, "2026-09-07", "08:00:00", "12:00:00", 1),
		newRequest(2, "2026-09-07", "08:00:00", "12:00:00", 2),
		newRequest(3, "2026-09-07", "12:00:00", "18:00:00", 1),
		newRequest(1, "2026-09-08", "08:00:00", "12:00:00", 1),
		newRequest(2, "2026-09-08", "12:00:00", "18:00:00", 1),
	}

	shifts := o.Generate(date("2026-09-07"), date("2026-09-08"), requests, users, "grp_test", 99)
	if len(shifts) == 0 {
		t.Fatal("应该能生成可行解")
	}

	// 人数约束和每天一班约束
	byDate := make(map[string]int)
	byUserDate := make(map[string]int)
	for _, shift := range shifts {
		key := shift.Date.Format("2006-01-02")
		byDate[key]++
		byUserDate[fmt.Sprintf("%d_%s", shift.UserID, key)]++
	}
	for key, count := range byDate {
		if count < 2 || count > 10 {
			t.Errorf("日期 %s 的人数 %d 不在 [2, 10] 内", key, count)
		}
	}
	for key, count := range byUserDate {
		if count > 1 {
			t.Errorf("%s 存在重复排班", key)
		}
	}
}

func TestValidate(t *testing.T) {
	checker := labor.NewChecker(labor.Limits{
		MaxHoursPerDay:     8,
		MaxHoursPerWeek:    40,
		MaxConsecutiveDays: 6,
		MinRestAfter6H:     45,
		MinRestAfter8H:     60,
	})

	shifts := []*domain.Shift{
		{UserID: 1, UserFullName: "张伟", Date: date("2026-09-07"), StartTime: "08:00:00", EndTime: "12:00:00"},
		{UserID: 2, UserFullName: "李芳", Date: date("2026-09-08"), StartTime: "08:00:00", EndTime: "17:00:00"},
	}

	stats := Validate(shifts, checker)
	if stats.TotalShifts != 2 {
		t.Errorf("stats.TotalShifts = %d, want 2", stats.TotalShifts)
	}
	if stats.UniqueUsers != 2 {
		t.Errorf("stats.UniqueUsers = %d, want 2", stats.UniqueUsers)
	}
	if stats.DateRange.Start == nil || !stats.DateRange.Start.Equal(date("2026-09-07")) {
		t.Errorf("stats.DateRange.Start = %v, want 2026-09-07", stats.DateRange.Start)
	}
	if stats.DateRange.End == nil || !stats.DateRange.End.Equal(date("2026-09-08")) {
		t.Errorf("stats.DateRange.End = %v, want 2026-09-08", stats.DateRange.End)
	}
	// 李芳的 9 小时班触发单日违规和休息提醒
	if len(stats.Violations) != 2 {
		t.Errorf("len(stats.Violations) = %d, want 2", len(stats.Violations))
	}
}
