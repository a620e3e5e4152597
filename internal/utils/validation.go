package utils

import (
	"fmt"
	"time"

	"github.com/sysu-ecnc-dev/shift-flow/backend/internal/domain"
)

// ValidateShiftTimes 检查起止时间的格式，跨越午夜的班次是合法的，
// 但起止时间相同说明时长为零，不允许
func ValidateShiftTimes(startTime string, endTime string) error {
	if _, err := time.Parse("15:04:05", startTime); err != nil {
		return fmt.Errorf("开始时间格式错误")
	}
	if _, err := time.Parse("15:04:05", endTime); err != nil {
		return fmt.Errorf("结束时间格式错误")
	}
	if startTime == endTime {
		return fmt.Errorf("结束时间不能等于开始时间")
	}
	return nil
}

// MatchRequestOutcomes 根据生成的班次把意愿分成已采用和未采用两组
// 按 (员工, 日期, 起止时间) 匹配，每个班次至多消耗一条意愿：
// 同一员工对同一时间段重复提交的意愿只有一条会被标记为已采用
func MatchRequestOutcomes(shifts []*domain.Shift, requests []*domain.ShiftRequest) (acceptedIDs []int64, rejectedIDs []int64) {
	remaining := make(map[string]int)
	for _, shift := range shifts {
		key := fmt.Sprintf("%d_%s_%s_%s", shift.UserID, shift.Date.Format("2006-01-02"), shift.StartTime, shift.EndTime)
		remaining[key]++
	}

	acceptedIDs = make([]int64, 0)
	rejectedIDs = make([]int64, 0)
	for _, request := range requests {
		key := fmt.Sprintf("%d_%s_%s_%s", request.UserID, request.Date.UTC().Format("2006-01-02"), request.StartTime, request.EndTime)
		if remaining[key] > 0 {
			remaining[key]--
			acceptedIDs = append(acceptedIDs, request.ID)
		} else {
			rejectedIDs = append(rejectedIDs, request.ID)
		}
	}

	return acceptedIDs, rejectedIDs
}

// ValidateNoDoubleBooking 检查一组班次中是否有员工在同一天被排了两个班
func ValidateNoDoubleBooking(shifts []*domain.Shift) error {
	seen := make(map[string]bool)
	for _, shift := range shifts {
		key := fmt.Sprintf("%d_%s", shift.UserID, shift.Date.Format("2006-01-02"))
		if seen[key] {
			return fmt.Errorf("员工 %d 在 %s 被重复排班", shift.UserID, shift.Date.Format("2006-01-02"))
		}
		seen[key] = true
	}
	return nil
}
