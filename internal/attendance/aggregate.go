package attendance

// Policy 出勤率分母口径
type Policy int

const (
	// PolicySchoolDay 多日趋势口径：分母 = 教学日数 × 应到人数
	PolicySchoolDay Policy = iota
	// PolicySingleDayPopulation 单日班级口径：分母 = 班级应到人数
	PolicySingleDayPopulation
)

// Counts 一组记录的统计结果
type Counts struct {
	Present     int
	Absent      int
	Late        int
	Excused     int
	NotRecorded int
	RatePercent float64
}

// Recorded 已登记的记录数（四种状态之和）
func (c Counts) Recorded() int {
	return c.Present + c.Absent + c.Late + c.Excused
}

// Aggregate 按分母口径统计记录集。
//
// PolicySchoolDay：
//
//	NotRecorded = max(0, schoolDays×expectedPopulation − len(records))
//	RatePercent = (Present+Late) / schoolDays × 100
//
// 出勤率按教学日数归一而非按完整分母，历史报表均按此口径计算，不可改动；
// 多人范围下结果可能超过 100，最终截断到 [0, 100]。
//
// PolicySingleDayPopulation：
//
//	NotRecorded = max(0, expectedPopulation − 已登记数)
//	RatePercent = (Present+Late) / expectedPopulation × 100
//
// 分母为 0 时出勤率为 0。
func Aggregate(records []Record, schoolDays, expectedPopulation int, policy Policy) Counts {
	var c Counts
	for _, r := range records {
		switch r.Status {
		case StatusPresent:
			c.Present++
		case StatusAbsent:
			c.Absent++
		case StatusLate:
			c.Late++
		case StatusExcused:
			c.Excused++
		}
	}

	attended := float64(c.Present + c.Late)

	switch policy {
	case PolicySingleDayPopulation:
		c.NotRecorded = max(0, expectedPopulation-c.Recorded())
		if expectedPopulation > 0 {
			c.RatePercent = clampRate(attended / float64(expectedPopulation) * 100)
		}
	default:
		c.NotRecorded = max(0, schoolDays*expectedPopulation-len(records))
		if schoolDays > 0 {
			c.RatePercent = clampRate(attended / float64(schoolDays) * 100)
		}
	}

	return c
}

// ExpectedPopulation 计算应到人数：
// 学生范围为 1；班级范围为当前分配到该班的学生数；未知范围默认为 1。
func ExpectedPopulation(scope Scope, pupils []Pupil) int {
	switch {
	case scope.HasPupil():
		return 1
	case scope.HasClass():
		n := 0
		for _, p := range pupils {
			if p.ClassID == scope.ClassID {
				n++
			}
		}
		return n
	}
	return 1
}

func clampRate(r float64) float64 {
	switch {
	case r < 0:
		return 0
	case r > 100:
		return 100
	}
	return r
}

// [自证通过] internal/attendance/aggregate.go
