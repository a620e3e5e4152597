package optimizer

import "time"

// normalizeDate 抹掉时分秒，只保留日期部分
func normalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// generateDateRange 生成闭区间内的所有日期
func generateDateRange(startDate time.Time, endDate time.Time) []time.Time {
	dates := make([]time.Time, 0)

	current := normalizeDate(startDate)
	end := normalizeDate(endDate)
	for !current.After(end) {
		dates = append(dates, current)
		current = current.AddDate(0, 0, 1)
	}

	return dates
}

// weekMonday 返回日期所在周的周一，周以周一为起点
func weekMonday(date time.Time) time.Time {
	offset := (int(date.Weekday()) + 6) % 7
	return date.AddDate(0, 0, -offset)
}
