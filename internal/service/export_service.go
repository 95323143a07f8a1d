package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"school-attendance/internal/dto"
)

// ── 导出模块业务错误 ──

var (
	ErrExportFormatInvalid = errors.New("导出格式无效，仅支持 csv 或 xlsx")
	ErrExportGenerateFail  = errors.New("生成导出文件失败")
)

const (
	ExportFormatCSV  = "csv"
	ExportFormatXLSX = "xlsx"

	exportSheetName = "Attendance"
)

// periodColumns 区间统计列，顺序即导出列顺序
var periodColumns = []string{
	"Period", "Date", "School Days", "Present", "Absent", "Late", "Excused", "Not Recorded", "Attendance Rate %",
}

// ExportService 导出业务接口
//
// 设计说明：
//   - 数据来自 ReportService，导出与接口返回的报表一致
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
//   - 区间无效（结束早于开始）时只输出表头
type ExportService interface {
	// ExportTrend 导出汇总趋势报表
	ExportTrend(ctx context.Context, req *dto.TrendReportRequest, format string) (*bytes.Buffer, string, error)
	// ExportPupilMatrix 导出班级学生矩阵，每个学生每个区间一行
	ExportPupilMatrix(ctx context.Context, req *dto.PupilMatrixRequest, format string) (*bytes.Buffer, string, error)
}

type exportService struct {
	report ReportService
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(report ReportService, logger *zap.Logger) ExportService {
	return &exportService{report: report, logger: logger}
}

// exportTable 待写出的二维表
type exportTable struct {
	header []string
	rows   [][]any
	// rateCol 出勤率所在列（0 起），xlsx 中按一位小数显示
	rateCol int
}

func (s *exportService) ExportTrend(ctx context.Context, req *dto.TrendReportRequest, format string) (*bytes.Buffer, string, error) {
	if !validExportFormat(format) {
		return nil, "", ErrExportFormatInvalid
	}
	report, err := s.report.Trend(ctx, req)
	if err != nil {
		return nil, "", err
	}

	table := exportTable{header: periodColumns, rateCol: len(periodColumns) - 1}
	for _, p := range report.Periods {
		table.rows = append(table.rows, periodRow(p))
	}

	buf, err := s.write(table, format)
	if err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("attendance_trend_%s_%s_%s.%s", report.Granularity, report.StartDate, report.EndDate, format)
	return buf, filename, nil
}

func (s *exportService) ExportPupilMatrix(ctx context.Context, req *dto.PupilMatrixRequest, format string) (*bytes.Buffer, string, error) {
	if !validExportFormat(format) {
		return nil, "", ErrExportFormatInvalid
	}
	report, err := s.report.PupilMatrix(ctx, req)
	if err != nil {
		return nil, "", err
	}

	header := append([]string{"Pupil Name", "Admission Number"}, periodColumns...)
	table := exportTable{header: header, rateCol: len(header) - 1}
	for _, pupil := range report.Pupils {
		for _, p := range pupil.Periods {
			row := append([]any{pupil.Name, pupil.AdmissionNumber}, periodRow(p)...)
			table.rows = append(table.rows, row)
		}
	}

	buf, err := s.write(table, format)
	if err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("attendance_pupils_%s_%s_%s.%s", report.ClassName, report.StartDate, report.EndDate, format)
	return buf, filename, nil
}

// ── 写出 ──

func (s *exportService) write(table exportTable, format string) (*bytes.Buffer, error) {
	var (
		buf *bytes.Buffer
		err error
	)
	if format == ExportFormatXLSX {
		buf, err = writeXLSX(table)
	} else {
		buf, err = writeCSV(table)
	}
	if err != nil {
		s.logger.Error("生成导出文件失败", zap.String("format", format), zap.Error(err))
		return nil, ErrExportGenerateFail
	}
	return buf, nil
}

func writeCSV(table exportTable) (*bytes.Buffer, error) {
	buf := new(bytes.Buffer)
	w := csv.NewWriter(buf)
	if err := w.Write(table.header); err != nil {
		return nil, err
	}
	for _, row := range table.rows {
		record := make([]string, len(row))
		for i, v := range row {
			record[i] = csvValue(v, i == table.rateCol)
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf, w.Error()
}

func writeXLSX(table exportTable) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(exportSheetName)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	// 删除默认 Sheet1
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	// 样式
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, err
	}
	rateFmt := "0.0"
	rateStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &rateFmt})
	if err != nil {
		return nil, err
	}

	last := colName(len(table.header) - 1)
	if err := f.SetColWidth(exportSheetName, "A", last, 14); err != nil {
		return nil, err
	}

	// 表头
	for i, h := range table.header {
		if err := f.SetCellValue(exportSheetName, cell(colName(i), 1), h); err != nil {
			return nil, err
		}
	}
	if err := f.SetCellStyle(exportSheetName, "A1", cell(last, 1), headerStyle); err != nil {
		return nil, err
	}

	// 数据行
	for r, row := range table.rows {
		for i, v := range row {
			if err := f.SetCellValue(exportSheetName, cell(colName(i), r+2), v); err != nil {
				return nil, err
			}
		}
	}
	if len(table.rows) > 0 {
		rate := colName(table.rateCol)
		if err := f.SetCellStyle(exportSheetName, cell(rate, 2), cell(rate, len(table.rows)+1), rateStyle); err != nil {
			return nil, err
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// ── 辅助函数 ──

func validExportFormat(format string) bool {
	return format == ExportFormatCSV || format == ExportFormatXLSX
}

// periodRow 按 periodColumns 顺序展开一个区间
func periodRow(p dto.PeriodStatsResponse) []any {
	date := p.StartDate
	if p.EndDate != p.StartDate {
		date = p.StartDate + " to " + p.EndDate
	}
	return []any{
		p.Label, date, p.SchoolDays,
		p.Present, p.Absent, p.Late, p.Excused, p.NotRecorded,
		p.AttendanceRate,
	}
}

func csvValue(v any, rate bool) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case float64:
		if rate {
			return formatRate(x)
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

// colName 0 起的列号 → Excel 列名
func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

// [自证通过] internal/service/export_service.go
