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

	"github.com/stemsi/onlinexam-backend/internal/model"
)

// tagAnswerInOptions marks a question whose answer is not one of its options.
const tagAnswerInOptions = "answer_in_options"

var (
	// trans is the singleton English translator for validation errors.
	trans     ut.Translator
	setupOnce sync.Once
)

// Setup registers the validator with English translations and the custom
// question rule on Gin's binding engine. Safe to call more than once.
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

		v.RegisterStructValidation(questionAnswerInOptions,
			model.CreateQuestionRequest{}, model.UpdateQuestionRequest{})
		_ = v.RegisterTranslation(tagAnswerInOptions, trans,
			func(t ut.Translator) error {
				return t.Add(tagAnswerInOptions, "{0} must exactly match one of the options", true)
			},
			func(t ut.Translator, fe govalidator.FieldError) string {
				msg, _ := t.T(tagAnswerInOptions, fe.Field())
				return msg
			},
		)
	})
}

// questionAnswerInOptions requires the answer to equal exactly one option.
func questionAnswerInOptions(sl govalidator.StructLevel) {
	var answer string
	var options []string

	switch req := sl.Current().Interface().(type) {
	case model.CreateQuestionRequest:
		answer, options = req.Answer, req.Options
	case model.UpdateQuestionRequest:
		answer, options = req.Answer, req.Options
	default:
		return
	}

	// An empty answer is reported by "required".
	if answer == "" {
		return
	}
	matches := 0
	for _, opt := range options {
		if opt == answer {
			matches++
		}
	}
	if matches != 1 {
		sl.ReportError(answer, "answer", "Answer", tagAnswerInOptions, "")
	}
}

// TranslateErrors takes a binding/validation error and returns a map of
// field name to human-readable error message. If the error is not a
// validation error, it returns a single-key map with "detail".
func TranslateErrors(err error) map[string]string {
	fields := make(map[string]string)

	var ve govalidator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			if trans == nil {
				fields[fe.Field()] = fe.Error()
				continue
			}
			fields[fe.Field()] = fe.Translate(trans)
		}
		return fields
	}

	// Not a validation error (e.g., JSON syntax error).
	fields["detail"] = err.Error()
	return fields
}

// Bind binds and validates the request body into dst.
// Returns nil on success or a translated field error map on failure.
func Bind(c *gin.Context, dst interface{}) map[string]string {
	if err := c.ShouldBindJSON(dst); err != nil {
		return TranslateErrors(err)
	}
	return nil
}
