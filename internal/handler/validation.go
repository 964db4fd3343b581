package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

const notBlankTag = "notblank"

var (
	validatorOnce sync.Once
	translator    ut.Translator
)

// SetupValidator настраивает валидатор gin: английские сообщения,
// имена полей из json-тегов и тег notblank. Повторные вызовы ничего не делают
func SetupValidator() {
	validatorOnce.Do(func() {
		_en := en.New()
		uni := ut.New(_en, _en)
		translator, _ = uni.GetTranslator("en")

		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = en_translations.RegisterDefaultTranslations(v, translator)

		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		_ = v.RegisterValidation(notBlankTag, func(fl validator.FieldLevel) bool {
			if str, ok := fl.Field().Interface().(string); ok {
				return strings.TrimSpace(str) != ""
			}
			return false
		})
		// Стандартная регистрация переводов уже выполнена, поэтому registerFn пустая
		_ = v.RegisterTranslation(notBlankTag, translator,
			func(ut.Translator) error { return nil },
			func(_ ut.Translator, fe validator.FieldError) string {
				return fe.Field() + " cannot be blank"
			})
	})
}

// bindJSON разбирает тело запроса и при ошибке сразу отвечает 400 validation_error
func bindJSON(c *gin.Context, req interface{}) bool {
	SetupValidator()
	if err := c.ShouldBindJSON(req); err != nil {
		respondValidationError(c, err)
		return false
	}
	return true
}

// respondValidationError отдает 400 с картой поле -> сообщение
func respondValidationError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			if translator != nil {
				details[fieldPath(fe)] = fe.Translate(translator)
			} else {
				details[fieldPath(fe)] = fe.Error()
			}
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "Validation failed",
			"error_type": "validation_error",
			"details":    details,
		})
		return
	}

	c.JSON(http.StatusBadRequest, gin.H{
		"error":      "Invalid request body",
		"error_type": "validation_error",
	})
}

// fieldPath возвращает путь поля без имени корневой структуры: answers[0].selected_answer
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		ns = ns[i+1:]
	}
	if ns == "" {
		return fe.Field()
	}
	return ns
}
