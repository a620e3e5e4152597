package optimizer

import (
	"fmt"
	"time"

	"github.com/sysu-ecnc-dev/shift-flow/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-flow/backend/internal/labor"
)

// 求解参数，每次调用时传入，优化器本身不持有任何全局状态
type Parameters struct {
	MinStaffPerShift int
	MaxStaffPerShift int
	MaxWeeklyHours   float64
}

type Optimizer struct {
	parameters *Parameters
}

func New(parameters *Parameters) *Optimizer {
	return &Optimizer{
		parameters: parameters,
	}
}

// Generate 从排班希望中求解出一组草稿班次
//
// 模型：每个 (在职员工, 日期, 该员工当天的希望) 是一个 0-1 变量，
// 目标最大化 Σ (4 - priority) × x。约束：
//  1. 有候选人的日期，在岗人数落在 [MinStaffPerShift, MaxStaffPerShift] 内；
//     没有任何候选人的日期不生成约束，避免强加一个不可能满足的下界
//  2. 每个员工每天至多采用一个希望
//  3. 每个员工每个自然周（以周一为起点）至多排 MaxWeeklyHours/8 天，
//     即把每个班次近似看作 8 小时工作日；这是有意保留的简化口径，
//     和合规检查里按实际时长累加的算法并不一致
//
// 无最优解时返回空列表，调用方负责持久化结果并更新被采用希望的状态
func (o *Optimizer) Generate(
	startDate time.Time,
	endDate time.Time,
	requests []*domain.ShiftRequest,
	users []*domain.User,
	groupID string,
	createdBy int64,
) []*domain.Shift {
	dateRange := generateDateRange(startDate, endDate)

	prob := &problem{
		groups:     make([]*choiceGroup, 0),
		dateBounds: make([]staffBounds, 0),
		weekCaps:   make([]int, 0),
	}

	maxDaysPerWeek := int(o.parameters.MaxWeeklyHours / 8)

	dateIdxMap := make(map[string]int)
	weekIdxMap := make(map[string]int)

	for _, user := range users {
		if !user.IsActive {
			continue
		}

		for _, date := range dateRange {
			vars := make([]*variable, 0)
			for _, request := range requests {
				if request.UserID != user.ID || !normalizeDate(request.Date).Equal(date) {
					continue
				}

				vars = append(vars, &variable{
					request: request,
					userID:  user.ID,
					weight:  4 - request.Priority,
				})
			}

			if len(vars) == 0 {
				continue
			}

			dateKey := date.Format("2006-01-02")
			if _, exists := dateIdxMap[dateKey]; !exists {
				dateIdxMap[dateKey] = len(prob.dateBounds)
				prob.dateBounds = append(prob.dateBounds, staffBounds{
					min: o.parameters.MinStaffPerShift,
					max: o.parameters.MaxStaffPerShift,
				})
			}

			weekKey := fmt.Sprintf("%d_%s", user.ID, weekMonday(date).Format("2006-01-02"))
			if _, exists := weekIdxMap[weekKey]; !exists {
				weekIdxMap[weekKey] = len(prob.weekCaps)
				prob.weekCaps = append(prob.weekCaps, maxDaysPerWeek)
			}

			prob.groups = append(prob.groups, &choiceGroup{
				vars:    vars,
				dateIdx: dateIdxMap[dateKey],
				weekIdx: weekIdxMap[weekKey],
			})
		}
	}

	result := prob.solve()
	if result.status != statusOptimal {
		return []*domain.Shift{}
	}

	shifts := make([]*domain.Shift, 0)
	for i, varIdx := range result.selected {
		if varIdx < 0 {
			continue
		}

		request := prob.groups[i].vars[varIdx].request
		shifts = append(shifts, &domain.Shift{
			GroupID:   groupID,
			UserID:    request.UserID,
			Date:      normalizeDate(request.Date),
			StartTime: request.StartTime,
			EndTime:   request.EndTime,
			Status:    domain.ShiftStatusDraft,
			Version:   1,
			CreatedBy: createdBy,
			CreatedAt: time.Now(),
		})
	}

	return shifts
}

type StatsDateRange struct {
	Start *time.Time `json:"start"`
	End   *time.Time `json:"end"`
}

type Stats struct {
	TotalShifts int                           `json:"totalShifts"`
	UniqueUsers int                           `json:"uniqueUsers"`
	DateRange   StatsDateRange                `json:"dateRange"`
	Violations  []*domain.ComplianceViolation `json:"violations"`
}

// Validate 对一组班次做只读的统计和合规检查，不做任何修改
func Validate(shifts []*domain.Shift, checker *labor.Checker) *Stats {
	stats := &Stats{
		TotalShifts: len(shifts),
		Violations:  checker.CheckAll(shifts),
	}

	seen := make(map[int64]bool)
	for _, shift := range shifts {
		if !seen[shift.UserID] {
			seen[shift.UserID] = true
			stats.UniqueUsers++
		}

		if stats.DateRange.Start == nil || shift.Date.Before(*stats.DateRange.Start) {
			start := shift.Date
			stats.DateRange.Start = &start
		}
		if stats.DateRange.End == nil || shift.Date.After(*stats.DateRange.End) {
			end := shift.Date
			stats.DateRange.End = &end
		}
	}

	return stats
}
