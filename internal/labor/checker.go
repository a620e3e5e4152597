package labor

import (
	"fmt"
	"sort"

	"github.com/sysu-ecnc-dev/shift-flow/backend/internal/domain"
)

// Limits 是劳动法检查所用的阈值，全部由调用方注入
type Limits struct {
	MaxHoursPerDay     float64
	MaxHoursPerWeek    float64
	MaxConsecutiveDays int
	MinRestAfter6H     int // 分钟
	MinRestAfter8H     int // 分钟
}

// Checker 对内存中的一组班次做纯计算的合规检查，不访问任何存储
type Checker struct {
	limits Limits
}

func NewChecker(limits Limits) *Checker {
	return &Checker{limits: limits}
}

// CheckDailyWorkHours 检查单日工作时长
// 按日期累加该员工的班次时长，超过日上限时返回第一个违规的日期
func (c *Checker) CheckDailyWorkHours(shifts []*domain.Shift, userID int64, userName string) *domain.ComplianceViolation {
	dailyHours := make(map[string]float64)
	dateKeys := make([]string, 0)

	for _, shift := range shifts {
		if shift.UserID != userID {
			continue
		}

		key := shift.Date.Format("2006-01-02")
		if _, exists := dailyHours[key]; !exists {
			dateKeys = append(dateKeys, key)
		}
		dailyHours[key] += shift.GetDurationHours()
	}

	for _, key := range dateKeys {
		if dailyHours[key] > c.limits.MaxHoursPerDay {
			return &domain.ComplianceViolation{
				UserID:       userID,
				UserFullName: userName,
				Type:         domain.ViolationDailyHoursExceeded,
				Details:      fmt.Sprintf("%s: %.1f 小时（上限 %.0f 小时）", key, dailyHours[key], c.limits.MaxHoursPerDay),
				Severity:     domain.SeverityCritical,
			}
		}
	}

	return nil
}

// CheckWeeklyWorkHours 检查单周工作时长
// 周的键为「年-ISO 周号」，和生成侧按周一分桶的近似算法是两套口径
func (c *Checker) CheckWeeklyWorkHours(shifts []*domain.Shift, userID int64, userName string) *domain.ComplianceViolation {
	weeklyHours := make(map[string]float64)
	weekKeys := make([]string, 0)

	for _, shift := range shifts {
		if shift.UserID != userID {
			continue
		}

		_, week := shift.Date.ISOWeek()
		key := fmt.Sprintf("%d-W%02d", shift.Date.Year(), week)
		if _, exists := weeklyHours[key]; !exists {
			weekKeys = append(weekKeys, key)
		}
		weeklyHours[key] += shift.GetDurationHours()
	}

	for _, key := range weekKeys {
		if weeklyHours[key] > c.limits.MaxHoursPerWeek {
			return &domain.ComplianceViolation{
				UserID:       userID,
				UserFullName: userName,
				Type:         domain.ViolationWeeklyHoursExceeded,
				Details:      fmt.Sprintf("%s: %.1f 小时（上限 %.0f 小时）", key, weeklyHours[key], c.limits.MaxHoursPerWeek),
				Severity:     domain.SeverityCritical,
			}
		}
	}

	return nil
}

// CheckConsecutiveWorkDays 检查连续工作天数
// 日期差正好为一天时连续天数加一，其余情况重置为 1
func (c *Checker) CheckConsecutiveWorkDays(shifts []*domain.Shift, userID int64, userName string) *domain.ComplianceViolation {
	userShifts := make([]*domain.Shift, 0)
	for _, shift := range shifts {
		if shift.UserID == userID {
			userShifts = append(userShifts, shift)
		}
	}

	if len(userShifts) == 0 {
		return nil
	}

	sort.Slice(userShifts, func(i, j int) bool {
		return userShifts[i].Date.Before(userShifts[j].Date)
	})

	consecutiveDays := 1
	prevDate := userShifts[0].Date

	for _, shift := range userShifts[1:] {
		if shift.Date.Equal(prevDate.AddDate(0, 0, 1)) {
			consecutiveDays++

			if consecutiveDays > c.limits.MaxConsecutiveDays {
				return &domain.ComplianceViolation{
					UserID:       userID,
					UserFullName: userName,
					Type:         domain.ViolationConsecutiveDaysExceeded,
					Details:      fmt.Sprintf("连续工作 %d 天（上限 %d 天）", consecutiveDays, c.limits.MaxConsecutiveDays),
					Severity:     domain.SeverityCritical,
				}
			}
		} else {
			consecutiveDays = 1
		}

		prevDate = shift.Date
	}

	return nil
}

// CheckRestTime 检查单个班次的休息时间
// 休息时间没有单独的字段记录，这里只能根据班次时长给出提醒，不能作为硬性判断
func (c *Checker) CheckRestTime(shift *domain.Shift) *domain.ComplianceViolation {
	duration := shift.GetDurationHours()

	userName := shift.UserFullName
	if userName == "" {
		userName = "未知"
	}

	switch {
	case duration > 6 && duration <= 8:
		return &domain.ComplianceViolation{
			UserID:       shift.UserID,
			UserFullName: userName,
			Type:         domain.ViolationRestTimeRequired,
			Details:      fmt.Sprintf("%s: 工作 %.1f 小时（需要 %d 分钟以上的休息）", shift.Date.Format("2006-01-02"), duration, c.limits.MinRestAfter6H),
			Severity:     domain.SeverityWarning,
		}
	case duration > 8:
		return &domain.ComplianceViolation{
			UserID:       shift.UserID,
			UserFullName: userName,
			Type:         domain.ViolationRestTimeRequired,
			Details:      fmt.Sprintf("%s: 工作 %.1f 小时（需要 %d 分钟以上的休息）", shift.Date.Format("2006-01-02"), duration, c.limits.MinRestAfter8H),
			Severity:     domain.SeverityWarning,
		}
	}

	return nil
}

// CheckAll 对一组班次执行所有的合规检查
// 前三条规则按员工各执行一次，休息时间规则按班次逐个执行
func (c *Checker) CheckAll(shifts []*domain.Shift) []*domain.ComplianceViolation {
	violations := make([]*domain.ComplianceViolation, 0)

	userIDs := make([]int64, 0)
	userNames := make(map[int64]string)
	for _, shift := range shifts {
		if _, exists := userNames[shift.UserID]; !exists {
			userIDs = append(userIDs, shift.UserID)

			name := shift.UserFullName
			if name == "" {
				name = "未知"
			}
			userNames[shift.UserID] = name
		}
	}

	for _, userID := range userIDs {
		if violation := c.CheckDailyWorkHours(shifts, userID, userNames[userID]); violation != nil {
			violations = append(violations, violation)
		}
		if violation := c.CheckWeeklyWorkHours(shifts, userID, userNames[userID]); violation != nil {
			violations = append(violations, violation)
		}
		if violation := c.CheckConsecutiveWorkDays(shifts, userID, userNames[userID]); violation != nil {
			violations = append(violations, violation)
		}
	}

	for _, shift := range shifts {
		if violation := c.CheckRestTime(shift); violation != nil {
			violations = append(violations, violation)
		}
	}

	return violations
}
