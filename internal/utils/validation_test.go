package utils

import (
	"slices"
	"testing"
	"time"

	"github.com/sysu-ecnc-dev/shift-flow/backend/internal/domain"
)

func date(value string) time.Time {
	parsed, _ := time.Parse("2006-01-02", value)
	return parsed
}

func TestValidateShiftTimes(t *testing.T) {
	cases := []struct {
		name      string
		startTime string
		endTime   string
		wantErr   bool
	}{
		{"正常时段", "08:00:00", "12:00:00", false},
		{"跨天时段合法", "22:00:00", "02:00:00", false},
		{"起止时间相同", "08:00:00", "08:00:00", true},
		{"开始时间格式错误", "8点", "12:00:00", true},
		{"结束时间格式错误", "08:00:00", "晚上", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateShiftTimes(tc.startTime, tc.endTime)
			if (err != nil) != tc.wantErr {
				t.Errorf("ValidateShiftTimes(%q, %q) = %v, wantErr %v", tc.startTime, tc.endTime, err, tc.wantErr)
			}
		})
	}
}

func TestValidateNoDoubleBooking(t *testing.T) {
	shifts := []*domain.Shift{
		{UserID: 1, Date: date("2026-09-07"), StartTime: "08:00:00", EndTime: "12:00:00"},
		{UserID: 2, Date: date("2026-09-07"), StartTime: "08:00:00", EndTime: "12:00:00"},
		{UserID: 1, Date: date("2026-09-08"), StartTime: "08:00:00", EndTime: "12:00:00"},
	}
	if err := ValidateNoDoubleBooking(shifts); err != nil {
		t.Errorf("不同员工或不同日期不算重复排班，got %v", err)
	}

	shifts = append(shifts, &domain.Shift{UserID: 1, Date: date("2026-09-07"), StartTime: "14:00:00", EndTime: "18:00:00"})
	if err := ValidateNoDoubleBooking(shifts); err == nil {
		t.Error("同一员工同一天两个班次应该报错")
	}
}

func TestMatchRequestOutcomes(t *testing.T) {
	newRequest := func(id int64, userID int64, day string, startTime string, endTime string) *domain.ShiftRequest {
		return &domain.ShiftRequest{ID: id, UserID: userID, Date: date(day), StartTime: startTime, EndTime: endTime}
	}

	t.Run("按员工和时段匹配", func(t *testing.T) {
		shifts := []*domain.Shift{
			{UserID: 1, Date: date("2026-09-07"), StartTime: "08:00:00", EndTime: "12:00:00"},
		}
		requests := []*domain.ShiftRequest{
			newRequest(10, 1, "2026-09-07", "08:00:00", "12:00:00"),
			newRequest(11, 1, "2026-09-07", "14:00:00", "18:00:00"),
			newRequest(12, 2, "2026-09-07", "08:00:00", "12:00:00"),
		}

		acceptedIDs, rejectedIDs := MatchRequestOutcomes(shifts, requests)
		if !slices.Equal(acceptedIDs, []int64{10}) {
			t.Errorf("acceptedIDs = %v, want [10]", acceptedIDs)
		}
		if !slices.Equal(rejectedIDs, []int64{11, 12}) {
			t.Errorf("rejectedIDs = %v, want [11 12]", rejectedIDs)
		}
	})

	t.Run("重复意愿只采用一条", func(t *testing.T) {
		// 同一员工对同一时间段提交了两条一样的意愿，但只生成了一个班次
		shifts := []*domain.Shift{
			{UserID: 1, Date: date("2026-09-07"), StartTime: "08:00:00", EndTime: "12:00:00"},
		}
		requests := []*domain.ShiftRequest{
			newRequest(10, 1, "2026-09-07", "08:00:00", "12:00:00"),
			newRequest(11, 1, "2026-09-07", "08:00:00", "12:00:00"),
		}

		acceptedIDs, rejectedIDs := MatchRequestOutcomes(shifts, requests)
		if len(acceptedIDs) != 1 {
			t.Fatalf("len(acceptedIDs) = %d, want 1", len(acceptedIDs))
		}
		if acceptedIDs[0] != 10 {
			t.Errorf("acceptedIDs[0] = %d, want 10", acceptedIDs[0])
		}
		if !slices.Equal(rejectedIDs, []int64{11}) {
			t.Errorf("重复的意愿应标记为未采用，rejectedIDs = %v, want [11]", rejectedIDs)
		}
	})

	t.Run("没有班次时全部未采用", func(t *testing.T) {
		requests := []*domain.ShiftRequest{
			newRequest(10, 1, "2026-09-07", "08:00:00", "12:00:00"),
		}

		acceptedIDs, rejectedIDs := MatchRequestOutcomes(nil, requests)
		if len(acceptedIDs) != 0 {
			t.Errorf("acceptedIDs = %v, want 空", acceptedIDs)
		}
		if !slices.Equal(rejectedIDs, []int64{10}) {
			t.Errorf("rejectedIDs = %v, want [10]", rejectedIDs)
		}
	})
}
