package attendance

import (
	"fmt"
	"testing"
)

// ── 测试辅助 ──

func recordsOf(statuses ...Status) []Record {
	records := make([]Record, 0, len(statuses))
	for i, st := range statuses {
		records = append(records, Record{
			ID:      fmt.Sprintf("r-%d", i),
			PupilID: fmt.Sprintf("p-%d", i),
			ClassID: "c-1",
			Date:    NewDate(2026, 3, 2),
			Status:  st,
		})
	}
	return records
}

func repeat(st Status, n int) []Status {
	out := make([]Status, n)
	for i := range out {
		out[i] = st
	}
	return out
}

// ── 教学日口径 ──

func TestAggregate_SchoolDayPolicy(t *testing.T) {
	records := recordsOf(StatusPresent, StatusPresent, StatusPresent, StatusLate, StatusAbsent)

	c := Aggregate(records, 5, 1, PolicySchoolDay)
	if c.Present != 3 || c.Late != 1 || c.Absent != 1 || c.Excused != 0 {
		t.Errorf("状态计数不符: %+v", c)
	}
	if c.NotRecorded != 0 {
		t.Errorf("期望 NotRecorded=0，实际=%d", c.NotRecorded)
	}
	if c.RatePercent != 80 {
		t.Errorf("期望出勤率 80，实际=%v", c.RatePercent)
	}
	if c.Recorded()+c.NotRecorded != 5*1 {
		t.Errorf("计数之和应等于分母 5，实际=%d", c.Recorded()+c.NotRecorded)
	}
}

func TestAggregate_SchoolDayPolicyNotRecorded(t *testing.T) {
	statuses := append(repeat(StatusPresent, 4), repeat(StatusAbsent, 2)...)

	c := Aggregate(recordsOf(statuses...), 5, 2, PolicySchoolDay)
	if c.NotRecorded != 4 {
		t.Errorf("期望 NotRecorded=10-6=4，实际=%d", c.NotRecorded)
	}
	// 出勤率按教学日数归一
	if c.RatePercent != 80 {
		t.Errorf("期望出勤率 4/5×100=80，实际=%v", c.RatePercent)
	}
	if c.Recorded()+c.NotRecorded != 10 {
		t.Errorf("计数之和应等于分母 10，实际=%d", c.Recorded()+c.NotRecorded)
	}
}

func TestAggregate_SchoolDayPolicyClampsRate(t *testing.T) {
	// 30 人班级 5 天全勤：(150)/5×100 超过 100，截断
	c := Aggregate(recordsOf(repeat(StatusPresent, 150)...), 5, 30, PolicySchoolDay)
	if c.RatePercent != 100 {
		t.Errorf("出勤率应截断为 100，实际=%v", c.RatePercent)
	}
	if c.NotRecorded != 0 {
		t.Errorf("期望 NotRecorded=0，实际=%d", c.NotRecorded)
	}
}

func TestAggregate_ZeroSchoolDays(t *testing.T) {
	c := Aggregate(recordsOf(StatusPresent), 0, 1, PolicySchoolDay)
	if c.RatePercent != 0 {
		t.Errorf("无教学日时出勤率应为 0，实际=%v", c.RatePercent)
	}
	if c.NotRecorded != 0 {
		t.Errorf("NotRecorded 不应为负，实际=%d", c.NotRecorded)
	}
}

// ── 单日班级口径 ──

func TestAggregate_SingleDayPopulation(t *testing.T) {
	statuses := append(repeat(StatusPresent, 20), repeat(StatusAbsent, 3)...)
	statuses = append(statuses, repeat(StatusLate, 2)...)

	c := Aggregate(recordsOf(statuses...), 1, 30, PolicySingleDayPopulation)
	if c.NotRecorded != 5 {
		t.Errorf("期望 NotRecorded=5，实际=%d", c.NotRecorded)
	}
	if got := fmt.Sprintf("%.1f", c.RatePercent); got != "73.3" {
		t.Errorf("期望出勤率 73.3，实际=%s", got)
	}
}

func TestAggregate_SingleDayZeroPopulation(t *testing.T) {
	c := Aggregate(recordsOf(StatusPresent, StatusLate), 1, 0, PolicySingleDayPopulation)
	if c.RatePercent != 0 {
		t.Errorf("应到人数为 0 时出勤率应为 0，实际=%v", c.RatePercent)
	}
	if c.NotRecorded != 0 {
		t.Errorf("NotRecorded 不应为负，实际=%d", c.NotRecorded)
	}
}

func TestAggregate_ExcusedDoesNotCountAsAttended(t *testing.T) {
	c := Aggregate(recordsOf(StatusExcused, StatusPresent), 1, 2, PolicySingleDayPopulation)
	if c.Excused != 1 || c.RatePercent != 50 {
		t.Errorf("请假不计入出勤: %+v", c)
	}
}

// ── 应到人数 ──

func TestExpectedPopulation(t *testing.T) {
	pupils := []Pupil{
		{ID: "p1", ClassID: "c-1"},
		{ID: "p2", ClassID: "c-1"},
		{ID: "p3", ClassID: "c-2"},
	}

	cases := []struct {
		name  string
		scope Scope
		want  int
	}{
		{"全校", Scope{}, 1},
		{"全部班级哨兵", Scope{ClassID: AllClasses}, 1},
		{"班级", Scope{ClassID: "c-1"}, 2},
		{"空班级", Scope{ClassID: "c-9"}, 0},
		{"学生", Scope{PupilID: "p1"}, 1},
	}
	for _, tc := range cases {
		if got := ExpectedPopulation(tc.scope, pupils); got != tc.want {
			t.Errorf("%s：期望 %d，实际 %d", tc.name, tc.want, got)
		}
	}
}

// [自证通过] internal/attendance/aggregate_test.go
