package labor

import (
	"strings"
	"testing"
	"time"

	"github.com/sysu-ecnc-dev/shift-flow/backend/internal/domain"
)

var testLimits = Limits{
	MaxHoursPerDay:     8,
	MaxHoursPerWeek:    40,
	MaxConsecutiveDays: 6,
	MinRestAfter6H:     45,
	MinRestAfter8H:     60,
}

func newShift(userID int64, userName string, date string, startTime string, endTime string) *domain.Shift {
	parsed, _ := time.Parse("2006-01-02", date)
	return &domain.Shift{
		UserID:       userID,
		UserFullName: userName,
		Date:         parsed,
		StartTime:    startTime,
		EndTime:      endTime,
	}
}

func TestCheckDailyWorkHours(t *testing.T) {
	checker := NewChecker(testLimits)

	t.Run("单日超时", func(t *testing.T) {
		shifts := []*domain.Shift{
			newShift(1, "张伟", "2026-09-07", "08:00:00", "13:00:00"),
			newShift(1, "张伟", "2026-09-07", "14:00:00", "18:00:00"),
		}

		violation := checker.CheckDailyWorkHours(shifts, 1, "张伟")
		if violation == nil {
			t.Fatal("9 小时应该触发单日超时违规")
		}
		if violation.Type != domain.ViolationDailyHoursExceeded {
			t.Errorf("violation.Type = %q, want %q", violation.Type, domain.ViolationDailyHoursExceeded)
		}
		if violation.Severity != domain.SeverityCritical {
			t.Errorf("violation.Severity = %q, want %q", violation.Severity, domain.SeverityCritical)
		}
	})

	t.Run("刚好到达上限不算违规", func(t *testing.T) {
		shifts := []*domain.Shift{
			newShift(1, "张伟", "2026-09-07", "08:00:00", "16:00:00"),
		}
		if violation := checker.CheckDailyWorkHours(shifts, 1, "张伟"); violation != nil {
			t.Errorf("8 小时不应该触发违规，got %+v", violation)
		}
	})

	t.Run("只统计指定员工", func(t *testing.T) {
		shifts := []*domain.Shift{
			newShift(2, "李芳", "2026-09-07", "08:00:00", "20:00:00"),
		}
		if violation := checker.CheckDailyWorkHours(shifts, 1, "张伟"); violation != nil {
			t.Errorf("其他员工的班次不应该影响检查结果，got %+v", violation)
		}
	})
}

func TestCheckWeeklyWorkHours(t *testing.T) {
	checker := NewChecker(testLimits)

	// 2026-09-07 是周一，整周都落在同一个 ISO 周内
	shifts := []*domain.Shift{
		newShift(1, "张伟", "2026-09-07", "08:00:00", "15:00:00"),
		newShift(1, "张伟", "2026-09-08", "08:00:00", "15:00:00"),
		newShift(1, "张伟", "2026-09-09", "08:00:00", "15:00:00"),
		newShift(1, "张伟", "2026-09-10", "08:00:00", "15:00:00"),
		newShift(1, "张伟", "2026-09-11", "08:00:00", "15:00:00"),
		newShift(1, "张伟", "2026-09-12", "08:00:00", "15:00:00"),
	}

	violation := checker.CheckWeeklyWorkHours(shifts, 1, "张伟")
	if violation == nil {
		t.Fatal("单周 42 小时应该触发违规")
	}
	if violation.Type != domain.ViolationWeeklyHoursExceeded {
		t.Errorf("violation.Type = %q, want %q", violation.Type, domain.ViolationWeeklyHoursExceeded)
	}

	// 去掉一天后是 35 小时，不应该再违规
	if violation := checker.CheckWeeklyWorkHours(shifts[:5], 1, "张伟"); violation != nil {
		t.Errorf("单周 35 小时不应该触发违规，got %+v", violation)
	}
}

func TestCheckConsecutiveWorkDays(t *testing.T) {
	checker := NewChecker(testLimits)

	makeRun := func(start string, days int) []*domain.Shift {
		first, _ := time.Parse("2006-01-02", start)
		shifts := make([]*domain.Shift, 0, days)
		for i := 0; i < days; i++ {
			date := first.AddDate(0, 0, i)
			shifts = append(shifts, newShift(1, "张伟", date.Format("2006-01-02"), "08:00:00", "12:00:00"))
		}
		return shifts
	}

	t.Run("连续七天违规", func(t *testing.T) {
		violation := checker.CheckConsecutiveWorkDays(makeRun("2026-09-07", 7), 1, "张伟")
		if violation == nil {
			t.Fatal("连续 7 天应该触发违规")
		}
		if violation.Type != domain.ViolationConsecutiveDaysExceeded {
			t.Errorf("violation.Type = %q, want %q", violation.Type, domain.ViolationConsecutiveDaysExceeded)
		}
	})

	t.Run("连续六天合规", func(t *testing.T) {
		if violation := checker.CheckConsecutiveWorkDays(makeRun("2026-09-07", 6), 1, "张伟"); violation != nil {
			t.Errorf("连续 6 天不应该触发违规，got %+v", violation)
		}
	})

	t.Run("中间休息重置计数", func(t *testing.T) {
		shifts := append(makeRun("2026-09-07", 4), makeRun("2026-09-12", 4)...)
		if violation := checker.CheckConsecutiveWorkDays(shifts, 1, "张伟"); violation != nil {
			t.Errorf("中间休息一天后重新计数，不应该触发违规，got %+v", violation)
		}
	})
}

func TestCheckRestTime(t *testing.T) {
	checker := NewChecker(testLimits)

	cases := []struct {
		name      string
		startTime string
		endTime   string
		wantNil   bool
		wantWord  string
	}{
		{"短班无需提醒", "08:00:00", "12:00:00", true, ""},
		{"七小时提醒45分钟", "08:00:00", "15:00:00", false, "45 分钟"},
		{"九小时提醒60分钟", "08:00:00", "17:00:00", false, "60 分钟"},
		{"八小时整提醒45分钟", "08:00:00", "16:00:00", false, "45 分钟"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			shift := newShift(1, "张伟", "2026-09-07", tc.startTime, tc.endTime)
			violation := checker.CheckRestTime(shift)
			if tc.wantNil {
				if violation != nil {
					t.Fatalf("不应该触发提醒，got %+v", violation)
				}
				return
			}
			if violation == nil {
				t.Fatal("应该触发休息时间提醒")
			}
			if violation.Severity != domain.SeverityWarning {
				t.Errorf("violation.Severity = %q, want %q", violation.Severity, domain.SeverityWarning)
			}
			if !strings.Contains(violation.Details, tc.wantWord) {
				t.Errorf("violation.Details = %q，应包含 %q", violation.Details, tc.wantWord)
			}
		})
	}
}

func TestCheckAll(t *testing.T) {
	checker := NewChecker(testLimits)

	shifts := []*domain.Shift{
		// 张伟单日 9 小时，既触发单日违规又触发休息提醒
		newShift(1, "张伟", "2026-09-07", "08:00:00", "17:00:00"),
		// 李芳完全合规
		newShift(2, "李芳", "2026-09-07", "08:00:00", "12:00:00"),
	}

	violations := checker.CheckAll(shifts)
	if len(violations) != 2 {
		t.Fatalf("len(violations) = %d, want 2", len(violations))
	}

	// 按员工的重大违规在前，按班次的休息提醒在后
	if violations[0].Type != domain.ViolationDailyHoursExceeded {
		t.Errorf("violations[0].Type = %q, want %q", violations[0].Type, domain.ViolationDailyHoursExceeded)
	}
	if violations[1].Type != domain.ViolationRestTimeRequired {
		t.Errorf("violations[1].Type = %q, want %q", violations[1].Type, domain.ViolationRestTimeRequired)
	}
}

func TestFormatForDisplay(t *testing.T) {
	t.Run("无违规", func(t *testing.T) {
		if got := FormatForDisplay(nil); got != NoViolationMessage {
			t.Errorf("FormatForDisplay(nil) = %q, want %q", got, NoViolationMessage)
		}
	})

	t.Run("重大违规在提醒之前", func(t *testing.T) {
		violations := []*domain.ComplianceViolation{
			{UserFullName: "李芳", Details: "工作 7 小时", Severity: domain.SeverityWarning},
			{UserFullName: "张伟", Details: "2026-09-07: 9.0 小时", Severity: domain.SeverityCritical},
		}

		got := FormatForDisplay(violations)
		criticalIdx := strings.Index(got, "🚨 重大违规")
		warningIdx := strings.Index(got, "⚠️ 需要确认")
		if criticalIdx < 0 || warningIdx < 0 {
			t.Fatalf("输出缺少分组标题：%q", got)
		}
		if criticalIdx > warningIdx {
			t.Errorf("重大违规应该排在提醒之前：%q", got)
		}
		if !strings.Contains(got, "张伟") || !strings.Contains(got, "李芳") {
			t.Errorf("输出应包含所有相关员工：%q", got)
		}
	})
}
