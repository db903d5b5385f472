package middleware

import (
	"eduassess_backend/internal/model"
	"strconv"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators 注册请求体自定义校验规则，重复调用无副作用
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	if err := v.RegisterValidation("birthdate", validateBirthDate); err != nil {
		return err
	}
	return v.RegisterValidation("qtype", validateQuestionType)
}

// validateBirthDate YYMMDD 六位数字，月日须合法
func validateBirthDate(fl validator.FieldLevel) bool {
	return IsBirthDate(fl.Field().String())
}

func IsBirthDate(s string) bool {
	if len(s) != 6 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	month, _ := strconv.Atoi(s[2:4])
	day, _ := strconv.Atoi(s[4:6])
	if month < 1 || month > 12 || day < 1 {
		return false
	}
	return day <= daysIn[month-1]
}

// 二月按 29 天处理，两位年份无法判断闰年
var daysIn = [12]int{31, 29, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

func validateQuestionType(fl validator.FieldLevel) bool {
	switch model.QuestionType(fl.Field().String()) {
	case model.MultipleChoice, model.Descriptive:
		return true
	}
	return false
}
