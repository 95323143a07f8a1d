package dto

// ── 考勤报表 DTO ──
// 日期一律为 "2006-01-02"

// TrendReportRequest 汇总趋势报表请求
// 指定 term_id 时区间取学期边界（与 start/end 同时给出时取交集）；term_id=all 表示整个学年的学期跨度
type TrendReportRequest struct {
	StartDate      string `form:"start_date"       binding:"omitempty,date"`
	EndDate        string `form:"end_date"         binding:"omitempty,date"`
	Granularity    string `form:"granularity"      binding:"required,oneof=daily weekly monthly termly"`
	AcademicYearID string `form:"academic_year_id" binding:"omitempty,uuid"`
	TermID         string `form:"term_id"          binding:"omitempty,max=64"`
	ClassID        string `form:"class_id"         binding:"omitempty,max=64"` // all 或班级 ID
	PupilID        string `form:"pupil_id"         binding:"omitempty,uuid"`
}

// PupilMatrixRequest 班级学生矩阵请求
type PupilMatrixRequest struct {
	StartDate      string `form:"start_date"       binding:"omitempty,date"`
	EndDate        string `form:"end_date"         binding:"omitempty,date"`
	Granularity    string `form:"granularity"      binding:"required,oneof=daily weekly monthly termly"`
	AcademicYearID string `form:"academic_year_id" binding:"omitempty,uuid"`
	TermID         string `form:"term_id"          binding:"omitempty,max=64"`
	ClassID        string `form:"class_id"         binding:"required,uuid"`
}

// DailySnapshotRequest 单日全校快照请求
// date 为空时取报表时区的今天
type DailySnapshotRequest struct {
	Date    string `form:"date"     binding:"omitempty,date"`
	ClassID string `form:"class_id" binding:"omitempty,uuid"`
}

// ValidateRangeRequest 日期区间预校验请求
type ValidateRangeRequest struct {
	StartDate      string `form:"start_date"       binding:"required,date"`
	EndDate        string `form:"end_date"         binding:"required,date"`
	AcademicYearID string `form:"academic_year_id" binding:"omitempty,uuid"`
}

// TermsRequest 学期查询请求，给出区间时只返回与区间重叠的学期
type TermsRequest struct {
	StartDate string `form:"start_date" binding:"omitempty,date"`
	EndDate   string `form:"end_date"   binding:"omitempty,date"`
}

// PeriodStatsResponse 单个统计区间
type PeriodStatsResponse struct {
	Label          string  `json:"label"`
	StartDate      string  `json:"start_date"`
	EndDate        string  `json:"end_date"`
	SchoolDays     int     `json:"school_days"`
	Present        int     `json:"present"`
	Absent         int     `json:"absent"`
	Late           int     `json:"late"`
	Excused        int     `json:"excused"`
	NotRecorded    int     `json:"not_recorded"`
	AttendanceRate float64 `json:"attendance_rate"`
	Trend          string  `json:"trend"`
}

// TrendReportResponse 汇总趋势报表响应
// valid=false 时 periods 为空数组，warning 给出原因
type TrendReportResponse struct {
	Valid              bool                  `json:"valid"`
	Warning            string                `json:"warning,omitempty"`
	StartDate          string                `json:"start_date"`
	EndDate            string                `json:"end_date"`
	Granularity        string                `json:"granularity"`
	AcademicYearID     string                `json:"academic_year_id,omitempty"`
	ClassID            string                `json:"class_id,omitempty"`
	PupilID            string                `json:"pupil_id,omitempty"`
	ExpectedPopulation int                   `json:"expected_population"`
	RejectedRecords    int                   `json:"rejected_records"`
	Periods            []PeriodStatsResponse `json:"periods"`
}

// PupilTrendResponse 单个学生的趋势
type PupilTrendResponse struct {
	PupilID         string                `json:"pupil_id"`
	Name            string                `json:"name"`
	AdmissionNumber string                `json:"admission_number,omitempty"`
	Periods         []PeriodStatsResponse `json:"periods"`
}

// PupilMatrixResponse 班级学生矩阵响应
type PupilMatrixResponse struct {
	Valid          bool                 `json:"valid"`
	Warning        string               `json:"warning,omitempty"`
	StartDate      string               `json:"start_date"`
	EndDate        string               `json:"end_date"`
	Granularity    string               `json:"granularity"`
	AcademicYearID string               `json:"academic_year_id,omitempty"`
	ClassID        string               `json:"class_id"`
	ClassName      string               `json:"class_name"`
	Pupils         []PupilTrendResponse `json:"pupils"`
}

// PupilBrief 学生简要信息
type PupilBrief struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	AdmissionNumber string `json:"admission_number,omitempty"`
}

// SnapshotCounts 单日计数
type SnapshotCounts struct {
	TotalPupils    int     `json:"total_pupils"`
	Present        int     `json:"present"`
	Absent         int     `json:"absent"`
	Late           int     `json:"late"`
	Excused        int     `json:"excused"`
	NotRecorded    int     `json:"not_recorded"`
	AttendanceRate float64 `json:"attendance_rate"`
}

// ClassSnapshotResponse 单个班级的当日情况
type ClassSnapshotResponse struct {
	ClassID   string `json:"class_id"`
	ClassName string `json:"class_name"`
	SnapshotCounts
	PupilsByStatus    map[string][]PupilBrief `json:"pupils_by_status"`
	NotRecordedPupils []PupilBrief            `json:"not_recorded_pupils"`
}

// DailySnapshotResponse 单日全校快照响应
type DailySnapshotResponse struct {
	Date         string                  `json:"date"`
	IsSchoolDay  bool                    `json:"is_school_day"`
	School       SnapshotCounts          `json:"school"`
	Classes      []ClassSnapshotResponse `json:"classes"`
	SkippedCount int                     `json:"skipped_records"`
}

// ValidateRangeResponse 日期区间预校验响应
type ValidateRangeResponse struct {
	Valid      bool           `json:"valid"`
	Warning    string         `json:"warning,omitempty"`
	SchoolDays int            `json:"school_days"`
	Terms      []TermResponse `json:"terms"`
}

// [自证通过] internal/dto/report.go
