package validator

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var usernameRe = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// Username 校验用户名字符集：字母、数字、_ . -
func Username(fl validator.FieldLevel) bool {
	return usernameRe.MatchString(fl.Field().String())
}

// New 返回注册了自定义规则的 validator
func New() *validator.Validate {
	v := validator.New()
	register(v)
	return v
}

// RegisterGin 把自定义规则注册到 gin 的绑定校验器
func RegisterGin() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		register(v)
	}
}

func register(v *validator.Validate) {
	_ = v.RegisterValidation("username", Username)
}
