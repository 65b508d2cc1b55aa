package handler

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
)

// Trans 全局翻译器，HandleParamError 使用
var Trans ut.Translator

const roomIdMaxLen = 128

// InitTrans 初始化 validator 翻译器并注册 roomid 校验
// locale 为 "zh" 或 "en"，其他值按英文处理
func InitTrans(locale string) (err error) {
	// Gin v1.9+ 中 binding.Validator 可能为 nil
	if binding.Validator == nil {
		binding.Validator = &defaultValidator{validator: validator.New()}
	}

	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}

	// 报错字段使用 json tag（roomId）而不是结构体字段名（RoomId）
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err = v.RegisterValidation("roomid", validRoomId); err != nil {
		return err
	}

	enT := en.New()
	uni := ut.New(enT, zh.New(), enT)
	Trans, ok = uni.GetTranslator(locale)
	if !ok {
		return fmt.Errorf("uni.GetTranslator(%s) failed", locale)
	}

	switch locale {
	case "zh":
		err = zh_translations.RegisterDefaultTranslations(v, Trans)
	default:
		err = en_translations.RegisterDefaultTranslations(v, Trans)
	}
	if err != nil {
		return err
	}
	return v.RegisterTranslation("roomid", Trans,
		func(t ut.Translator) error {
			return t.Add("roomid", "{0} must be a non-blank id without spaces", true)
		},
		func(t ut.Translator, fe validator.FieldError) string {
			msg, _ := t.T("roomid", fe.Field())
			return msg
		},
	)
}

// validRoomId 房间 ID 非空、不含空白且不超过上限
func validRoomId(fl validator.FieldLevel) bool {
	id := fl.Field().String()
	if id == "" || len(id) > roomIdMaxLen {
		return false
	}
	return strings.IndexFunc(id, unicode.IsSpace) < 0
}

// RemoveTopStruct 去除提示信息中的结构体名前缀（UpsertRoomRequest.roomId -> roomId）
func RemoveTopStruct(fields map[string]string) map[string]string {
	res := make(map[string]string)
	for field, err := range fields {
		res[field[strings.Index(field, ".")+1:]] = err
	}
	return res
}

// defaultValidator 实现 binding.StructValidator
type defaultValidator struct {
	validator *validator.Validate
}

func (v *defaultValidator) ValidateStruct(obj interface{}) error {
	return v.validator.Struct(obj)
}

func (v *defaultValidator) Engine() interface{} {
	return v.validator
}
