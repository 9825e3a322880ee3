package validator

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	govalidator "github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/stemsi/exam-engine/internal/model"
)

// BodyField is the field key used when the body itself cannot be decoded.
const BodyField = "body"

// trans is the singleton English translator for validation errors.
var (
	trans     ut.Translator
	setupOnce sync.Once
)

// Setup registers the validator with English translations on Gin's binding engine.
// Safe to call more than once.
func Setup() {
	setupOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*govalidator.Validate)
		if !ok {
			return
		}

		// Use JSON tag name for field names in error messages.
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		enLocale := en.New()
		uni := ut.New(enLocale, enLocale)
		trans, _ = uni.GetTranslator("en")
		_ = en_translations.RegisterDefaultTranslations(v, trans)
	})
}

// TranslateErrors takes a binding/validation error and returns a map of
// field path → human-readable error message. If the error is not a
// validation error, it returns a single-key map with "body".
func TranslateErrors(err error) map[string]string {
	fields := make(map[string]string)

	var ve govalidator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			msg := fe.Error()
			if trans != nil {
				msg = fe.Translate(trans)
			}
			fields[fieldPath(fe.Namespace())] = msg
		}
		return fields
	}

	// JSON syntax or type errors; the raw decoder message is not echoed.
	fields[BodyField] = "must be a valid JSON object"
	return fields
}

// fieldPath drops the root struct name: "SubmitExamRequest.answers[0].question_id"
// becomes "answers[0].question_id".
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

// Bind binds and validates the request body into dst.
// Returns nil on success or a translated field error map on failure.
func Bind(c *gin.Context, dst interface{}) map[string]string {
	if err := c.ShouldBindJSON(dst); err != nil {
		return TranslateErrors(err)
	}
	return nil
}

// ParseID validates an identifier taken from a path, query or body field.
// On failure it returns a field map naming field.
func ParseID(field, raw string) (model.ID, map[string]string) {
	id, err := model.ParseID(strings.TrimSpace(raw))
	if err != nil {
		return model.ID{}, map[string]string{field: field + " must be a valid identifier"}
	}
	return id, nil
}
