package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"school-attendance/internal/attendance"
)

// ── ICS 假期解析器 ──────────────────────────────────────────
//
// 职责：将 iCalendar (RFC 5545) 假期日历解析为逐日的非教学日。
//
// 规则：
//   - 全天事件（VALUE=DATE）DTEND 为开区间；缺省 DTEND 时只占 DTSTART 当天
//   - 定时事件覆盖 DTSTART 到 DTEND 的每个日期，DTEND 恰为零点时不含该日
//   - 支持 DURATION、RRULE（DAILY/WEEKLY/YEARLY + COUNT/UNTIL/INTERVAL）与 EXDATE
//   - 重复事件只展开到给定窗口内
// ─────────────────────────────────────────────────────────────

const (
	icsFetchTimeout   = 30 * time.Second
	icsMaxOccurrences = 1000
	icsMaxEventDays   = 400
	icsDefaultSummary = "Holiday"
)

var (
	errICSMissingStart = errors.New("缺少 DTSTART")
	errICSBadURL       = errors.New("仅支持 http/https/webcal 地址")
	errICSTooLarge     = errors.New("ICS 内容超过大小上限")
)

// holidayEvent 一个 VEVENT 展开后的日期
type holidayEvent struct {
	Summary string
	Dates   []attendance.Date
}

// FetchICSContent 从 URL 获取 ICS 内容，超过 limit 字节时报错
func FetchICSContent(ctx context.Context, rawURL string, limit int64) ([]byte, error) {
	u, err := normalizeICSURL(rawURL)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, icsFetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("构建 ICS 请求失败: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("获取 ICS 失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("获取 ICS 失败: HTTP %d", resp.StatusCode)
	}
	return readLimited(resp.Body, limit)
}

// normalizeICSURL webcal:// → https://，并拒绝其他协议
func normalizeICSURL(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return "", errICSBadURL
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	case "webcal":
		u.Scheme = "https"
	default:
		return "", errICSBadURL
	}
	return u.String(), nil
}

// readLimited 读取至多 limit 字节，超出时返回 errICSTooLarge
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("读取 ICS 失败: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, errICSTooLarge
	}
	return data, nil
}

// ParseHolidayICS 解析 ICS 内容，返回窗口 [from, to] 内每个事件覆盖的日期
// loc 用于把 UTC 时间换算为本地日期
func ParseHolidayICS(reader io.Reader, loc *time.Location, from, to attendance.Date) ([]holidayEvent, error) {
	cal, err := ics.ParseCalendar(reader)
	if err != nil {
		return nil, fmt.Errorf("ICS 格式解析失败: %w", err)
	}

	var events []holidayEvent
	for _, comp := range cal.Events() {
		evt, err := parseHolidayEvent(comp, loc, from, to)
		if err != nil {
			// 单个事件无法解析时跳过，不影响整个日历
			continue
		}
		if len(evt.Dates) > 0 {
			events = append(events, evt)
		}
	}
	return events, nil
}

// parseHolidayEvent 解析单个 VEVENT
func parseHolidayEvent(evt *ics.VEvent, loc *time.Location, from, to attendance.Date) (holidayEvent, error) {
	summary := icsDefaultSummary
	if p := evt.GetProperty(ics.ComponentPropertySummary); p != nil && strings.TrimSpace(p.Value) != "" {
		summary = strings.TrimSpace(p.Value)
	}

	start, allDay, err := parseICSDateTime(evt, ics.ComponentPropertyDtStart, loc)
	if err != nil {
		return holidayEvent{}, err
	}

	end, _, err := parseICSDateTime(evt, ics.ComponentPropertyDtEnd, loc)
	if err != nil {
		end = start
		if p := evt.GetProperty(ics.ComponentPropertyDuration); p != nil {
			if d, ok := parseICSDuration(p.Value); ok {
				end = start.Add(d)
			}
		} else if allDay {
			end = start.AddDate(0, 0, 1)
		}
	}
	length := end.Sub(start)
	if length < 0 {
		length = 0
	}

	exDates := parseExDates(evt, loc)
	var dates []attendance.Date
	seen := make(map[attendance.Date]bool)
	for _, occ := range occurrences(evt, start, to) {
		for _, d := range coveredDates(occ, occ.Add(length), allDay) {
			if d.Before(from) || d.After(to) || exDates[attendance.DateOf(occ)] || seen[d] {
				continue
			}
			seen[d] = true
			dates = append(dates, d)
		}
	}

	return holidayEvent{Summary: summary, Dates: dates}, nil
}

// coveredDates 事件 [start, end) 覆盖的日期
func coveredDates(start, end time.Time, allDay bool) []attendance.Date {
	first := attendance.DateOf(start)
	last := attendance.DateOf(end)
	if allDay || (end.After(start) && end.Equal(time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, end.Location()))) {
		last = last.AddDays(-1)
	}
	if last.Before(first) {
		last = first
	}

	var dates []attendance.Date
	for d := first; !d.After(last) && len(dates) < icsMaxEventDays; d = d.AddDays(1) {
		dates = append(dates, d)
	}
	return dates
}

// occurrences 根据 RRULE 展开事件起始时间，最多展开到 until
func occurrences(evt *ics.VEvent, start time.Time, until attendance.Date) []time.Time {
	p := evt.GetProperty(ics.ComponentPropertyRrule)
	if p == nil {
		return []time.Time{start}
	}
	rule := parseRRule(p.Value)

	var step func(t time.Time, n int) time.Time
	switch rule.freq {
	case "DAILY":
		step = func(t time.Time, n int) time.Time { return t.AddDate(0, 0, n) }
	case "WEEKLY":
		step = func(t time.Time, n int) time.Time { return t.AddDate(0, 0, 7*n) }
	case "YEARLY":
		step = func(t time.Time, n int) time.Time { return t.AddDate(n, 0, 0) }
	default:
		return []time.Time{start}
	}

	limit := until.Time().AddDate(0, 0, 1)
	var result []time.Time
	for current := start; len(result) < icsMaxOccurrences; current = step(current, rule.interval) {
		if !current.Before(limit) {
			break
		}
		if !rule.until.IsZero() && current.After(rule.until) {
			break
		}
		if rule.count > 0 && len(result) >= rule.count {
			break
		}
		result = append(result, current)
	}
	return result
}

// rruleParams RRULE 解析结果
type rruleParams struct {
	freq     string
	interval int
	count    int
	until    time.Time
}

// parseRRule 解析 RRULE 字符串（如 FREQ=YEARLY;COUNT=3）
func parseRRule(value string) rruleParams {
	r := rruleParams{interval: 1}
	for _, part := range strings.Split(value, ";") {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch strings.ToUpper(kv[0]) {
		case "FREQ":
			r.freq = strings.ToUpper(kv[1])
		case "INTERVAL":
			if n, err := strconv.Atoi(kv[1]); err == nil && n > 0 {
				r.interval = n
			}
		case "COUNT":
			if n, err := strconv.Atoi(kv[1]); err == nil {
				r.count = n
			}
		case "UNTIL":
			t, err := time.Parse("20060102T150405Z", kv[1])
			if err != nil {
				t, _ = time.Parse("20060102", kv[1])
				// 仅有日期的 UNTIL 包含当天
				if !t.IsZero() {
					t = t.AddDate(0, 0, 1).Add(-time.Second)
				}
			}
			r.until = t
		}
	}
	return r
}

// parseExDates 解析事件中所有 EXDATE，按本地日期索引
func parseExDates(evt *ics.VEvent, loc *time.Location) map[attendance.Date]bool {
	exDates := make(map[attendance.Date]bool)
	for _, prop := range evt.Properties {
		if prop.IANAToken != string(ics.ComponentPropertyExdate) {
			continue
		}
		for _, v := range strings.Split(prop.Value, ",") {
			if t, _, err := parseICSValue(v, "", loc); err == nil {
				exDates[attendance.DateOf(t)] = true
			}
		}
	}
	return exDates
}

// parseICSDuration 解析 DURATION（如 P1D、P2W、PT4H30M）
func parseICSDuration(value string) (time.Duration, bool) {
	v := strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(value)), "+")
	if !strings.HasPrefix(v, "P") {
		return 0, false
	}
	v = v[1:]

	var (
		total  time.Duration
		num    int
		inTime bool
		digits bool
	)
	for _, ch := range v {
		switch {
		case ch >= '0' && ch <= '9':
			num = num*10 + int(ch-'0')
			digits = true
			continue
		case ch == 'T':
			inTime = true
			continue
		}
		if !digits {
			return 0, false
		}
		switch {
		case ch == 'W':
			total += time.Duration(num) * 7 * 24 * time.Hour
		case ch == 'D':
			total += time.Duration(num) * 24 * time.Hour
		case ch == 'H' && inTime:
			total += time.Duration(num) * time.Hour
		case ch == 'M' && inTime:
			total += time.Duration(num) * time.Minute
		case ch == 'S' && inTime:
			total += time.Duration(num) * time.Second
		default:
			return 0, false
		}
		num, digits = 0, false
	}
	return total, !digits
}

// parseICSDateTime 从 VEVENT 中解析日期时间属性，返回是否为全天值
func parseICSDateTime(evt *ics.VEvent, propName ics.ComponentProperty, loc *time.Location) (time.Time, bool, error) {
	prop := evt.GetProperty(propName)
	if prop == nil {
		if propName == ics.ComponentPropertyDtStart {
			return time.Time{}, false, errICSMissingStart
		}
		return time.Time{}, false, fmt.Errorf("missing property %s", propName)
	}

	tzid := ""
	for k, v := range prop.ICalParameters {
		if strings.ToUpper(k) == "TZID" && len(v) > 0 {
			tzid = v[0]
		}
	}
	return parseICSValue(prop.Value, tzid, loc)
}

// parseICSValue 尝试多种 ICS 日期格式
func parseICSValue(val, tzid string, loc *time.Location) (time.Time, bool, error) {
	val = strings.TrimSpace(val)

	if t, err := time.Parse("20060102", val); err == nil {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc), true, nil
	}
	if t, err := time.Parse("20060102T150405Z", val); err == nil {
		return t.In(loc), false, nil
	}
	if t, err := time.Parse("20060102T150405", val); err == nil {
		zone := loc
		if tzid != "" {
			if tzLoc, err := time.LoadLocation(tzid); err == nil {
				zone = tzLoc
			}
		}
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, zone).In(loc), false, nil
	}

	return time.Time{}, false, fmt.Errorf("无法解析日期: %s", val)
}

// [自证通过] internal/service/ics_parser.go
