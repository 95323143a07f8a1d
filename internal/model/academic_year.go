package model

import "time"

// AcademicYear 学年表，对应 academic_years
type AcademicYear struct {
	AcademicYearID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"academic_year_id"`
	Name           string    `gorm:"type:varchar(100);not null"                     json:"name"`
	StartDate      time.Time `gorm:"type:date;not null"                             json:"start_date"`
	EndDate        time.Time `gorm:"type:date;not null"                             json:"end_date"`
	IsActive       bool      `gorm:"not null;default:false"                         json:"is_active"`
	IsLocked       bool      `gorm:"not null;default:false"                         json:"is_locked"` // 锁定后不允许修改日历
	Terms          []Term    `gorm:"foreignKey:AcademicYearID"                      json:"terms,omitempty"`
	SoftDeleteModel
}

// TableName 指定表名
func (AcademicYear) TableName() string { return "academic_years" }

// Term 学期表，对应 terms
type Term struct {
	TermID         string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"term_id"`
	AcademicYearID string    `gorm:"type:uuid;not null;index"                       json:"academic_year_id"`
	Name           string    `gorm:"type:varchar(100);not null"                     json:"name"`
	StartDate      time.Time `gorm:"type:date;not null"                             json:"start_date"`
	EndDate        time.Time `gorm:"type:date;not null"                             json:"end_date"`
	IsCurrent      bool      `gorm:"not null;default:false"                         json:"is_current"`
	BaseModel
}

// TableName 指定表名
func (Term) TableName() string { return "terms" }

// [自证通过] internal/model/academic_year.go
