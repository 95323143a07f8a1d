package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"school-attendance/internal/model"
	"school-attendance/internal/repository"
	pkgerrors "school-attendance/pkg/errors"
)

// ── Mock AcademicYearRepository ──

type mockAcademicYearRepo struct {
	years map[string]*model.AcademicYear
}

func newMockAcademicYearRepo() *mockAcademicYearRepo {
	return &mockAcademicYearRepo{years: make(map[string]*model.AcademicYear)}
}

func (m *mockAcademicYearRepo) GetByID(_ context.Context, id string) (*model.AcademicYear, error) {
	if y, ok := m.years[id]; ok {
		return y, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAcademicYearRepo) GetActive(_ context.Context) (*model.AcademicYear, error) {
	for _, y := range m.years {
		if y.IsActive {
			return y, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAcademicYearRepo) List(_ context.Context) ([]model.AcademicYear, error) {
	var result []model.AcademicYear
	for _, y := range m.years {
		result = append(result, *y)
	}
	return result, nil
}

// ── Mock ExcludedDayRepository ──

type mockExcludedDayRepo struct {
	mu    sync.Mutex
	years *mockAcademicYearRepo
	days  []model.ExcludedDay
}

func newMockExcludedDayRepo(years *mockAcademicYearRepo) *mockExcludedDayRepo {
	return &mockExcludedDayRepo{years: years}
}

func (m *mockExcludedDayRepo) ListByAcademicYear(_ context.Context, academicYearID string) ([]model.ExcludedDay, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.ExcludedDay
	for _, d := range m.days {
		if d.AcademicYearID == academicYearID {
			result = append(result, d)
		}
	}
	return result, nil
}

func (m *mockExcludedDayRepo) ListPage(ctx context.Context, academicYearID string, offset, limit int) ([]model.ExcludedDay, int64, error) {
	all, _ := m.ListByAcademicYear(ctx, academicYearID)
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockExcludedDayRepo) ImportDays(_ context.Context, academicYearID string, days []model.ExcludedDay) (int64, error) {
	y, ok := m.years.years[academicYearID]
	if !ok {
		return 0, gorm.ErrRecordNotFound
	}
	if y.IsLocked {
		return 0, pkgerrors.ErrYearLocked
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	var inserted int64
	for _, d := range days {
		if m.exists(academicYearID, d.Date) {
			continue
		}
		d.AcademicYearID = academicYearID
		m.days = append(m.days, d)
		inserted++
	}
	return inserted, nil
}

func (m *mockExcludedDayRepo) exists(academicYearID string, date time.Time) bool {
	for _, d := range m.days {
		if d.AcademicYearID == academicYearID && d.Date.Equal(date) {
			return true
		}
	}
	return false
}

// ── Mock ClassRepository ──

type mockClassRepo struct {
	classes map[string]*model.SchoolClass
}

func newMockClassRepo() *mockClassRepo {
	return &mockClassRepo{classes: make(map[string]*model.SchoolClass)}
}

func (m *mockClassRepo) GetByID(_ context.Context, id string) (*model.SchoolClass, error) {
	if c, ok := m.classes[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockClassRepo) List(_ context.Context) ([]model.SchoolClass, error) {
	var result []model.SchoolClass
	for _, c := range m.classes {
		result = append(result, *c)
	}
	return result, nil
}

// ── Mock PupilRepository ──

type mockPupilRepo struct {
	pupils []model.Pupil
}

func newMockPupilRepo() *mockPupilRepo {
	return &mockPupilRepo{}
}

func (m *mockPupilRepo) GetByID(_ context.Context, id string) (*model.Pupil, error) {
	for i := range m.pupils {
		if m.pupils[i].PupilID == id {
			return &m.pupils[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPupilRepo) ListByClass(_ context.Context, classID string) ([]model.Pupil, error) {
	var result []model.Pupil
	for _, p := range m.pupils {
		if p.ClassID != nil && *p.ClassID == classID {
			result = append(result, p)
		}
	}
	return result, nil
}

func (m *mockPupilRepo) ListEnrolled(_ context.Context) ([]model.Pupil, error) {
	var result []model.Pupil
	for _, p := range m.pupils {
		if p.ClassID != nil {
			result = append(result, p)
		}
	}
	return result, nil
}

// ── Mock AttendanceRepository ──

type mockAttendanceRepo struct {
	mu      sync.Mutex
	records []model.AttendanceRecord
	calls   int
	err     error
	last    repository.AttendanceFilter
}

func newMockAttendanceRepo() *mockAttendanceRepo {
	return &mockAttendanceRepo{}
}

func (m *mockAttendanceRepo) ListInRange(_ context.Context, filter repository.AttendanceFilter) ([]model.AttendanceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.last = filter
	if m.err != nil {
		return nil, m.err
	}

	pupilSet := make(map[string]bool, len(filter.PupilIDs))
	for _, id := range filter.PupilIDs {
		pupilSet[id] = true
	}

	var result []model.AttendanceRecord
	for _, r := range m.records {
		// 零值日期照常返回，交给服务层归一化
		if !r.Date.IsZero() && (r.Date.Before(filter.Start) || r.Date.After(filter.End)) {
			continue
		}
		if filter.ClassID != "" && r.ClassID != filter.ClassID {
			continue
		}
		if filter.PupilID != "" && r.PupilID != filter.PupilID {
			continue
		}
		if len(pupilSet) > 0 && !pupilSet[r.PupilID] {
			continue
		}
		result = append(result, r)
	}
	return result, nil
}

// ── Mock ReportCache ──

var errMockCache = errors.New("cache unavailable")

type mockCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	sets    int
	deleted []string
	failGet bool
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string][]byte)}
}

func (m *mockCache) GetJSON(_ context.Context, key string, dst any) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet {
		return false, errMockCache
	}
	raw, ok := m.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dst)
}

func (m *mockCache) SetJSON(_ context.Context, key string, v any, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.data[key] = raw
	m.sets++
	return nil
}

func (m *mockCache) DeletePrefix(_ context.Context, prefix string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			delete(m.data, k)
			n++
		}
	}
	m.deleted = append(m.deleted, prefix)
	return n, nil
}

// ── 测试夹具 ──

type testRepos struct {
	years      *mockAcademicYearRepo
	excluded   *mockExcludedDayRepo
	classes    *mockClassRepo
	pupils     *mockPupilRepo
	attendance *mockAttendanceRepo
}

func newTestRepos() (*repository.Repository, *testRepos) {
	years := newMockAcademicYearRepo()
	m := &testRepos{
		years:      years,
		excluded:   newMockExcludedDayRepo(years),
		classes:    newMockClassRepo(),
		pupils:     newMockPupilRepo(),
		attendance: newMockAttendanceRepo(),
	}
	repo := &repository.Repository{
		AcademicYear: m.years,
		ExcludedDay:  m.excluded,
		Class:        m.classes,
		Pupil:        m.pupils,
		Attendance:   m.attendance,
	}
	return repo, m
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func strPtr(s string) *string { return &s }

// [自证通过] internal/service/mock_repos_test.go
