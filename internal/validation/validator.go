package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/training-management-api/internal/models"
)

// DateLayout is the layout of calendar dates in request bodies
const DateLayout = "2006-01-02"

// FieldError represents a single validation error
type FieldError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

func (e *FieldError) Error() string {
	return e.Message
}

var registerOnce sync.Once

// RegisterJSONTagNames makes gin's validator report json field names
// ("requestedDate") instead of Go field names ("RequestedDate").
func RegisterJSONTagNames() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(jsonFieldName)
	})
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}

// Message turns a binding error into a single client-facing message naming
// the first offending field.
func Message(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return fieldMessage(verrs[0])
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return "request body must be valid JSON"
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return fmt.Sprintf("%s must be of type %s", typeErr.Field, typeErr.Type.String())
	}

	return "invalid request body"
}

func fieldMessage(fe validator.FieldError) string {
	field := fieldPath(fe)
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "datetime":
		return fmt.Sprintf("%s must match the format %s", field, humanLayout(fe.Param()))
	case "min":
		if isCollection(fe.Kind()) {
			return fmt.Sprintf("%s must contain at least %s items", field, fe.Param())
		}
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must not be empty", field)
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if isCollection(fe.Kind()) {
			return fmt.Sprintf("%s must contain at most %s items", field, fe.Param())
		}
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// fieldPath drops the top-level struct name from the namespace so nested
// fields read "questions[0].text".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func isCollection(k reflect.Kind) bool {
	return k == reflect.Slice || k == reflect.Map || k == reflect.Array
}

func humanLayout(layout string) string {
	switch layout {
	case DateLayout:
		return "YYYY-MM-DD"
	case "15:04":
		return "HH:MM"
	}
	return layout
}

// ParseDate parses a YYYY-MM-DD date
func ParseDate(field, value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, &FieldError{Field: field, Message: field + " must match the format YYYY-MM-DD", Value: value}
	}
	return t, nil
}

// ValidatePeriod checks an inclusive date range and returns it with the day count
func ValidatePeriod(from, to string) (models.Period, error) {
	start, err := ParseDate("from", from)
	if err != nil {
		return models.Period{}, err
	}
	end, err := ParseDate("to", to)
	if err != nil {
		return models.Period{}, err
	}
	if end.Before(start) {
		return models.Period{}, &FieldError{Field: "to", Message: "to must not be before from", Value: to}
	}

	days := int(end.Sub(start).Hours()/24) + 1
	return models.Period{From: from, To: to, Days: days}, nil
}

// ValidateQuestions checks the parts of a question set tags cannot express
func ValidateQuestions(questions []models.Question) error {
	if len(questions) == 0 {
		return &FieldError{Field: "questions", Message: "questions must contain at least 1 items"}
	}

	seen := make(map[string]bool, len(questions))
	for i, q := range questions {
		field := fmt.Sprintf("questions[%d]", i)
		if strings.TrimSpace(q.Text) == "" {
			return &FieldError{Field: field + ".text", Message: field + ".text is required"}
		}
		if len(q.Options) < 2 {
			return &FieldError{Field: field + ".options", Message: field + ".options must contain at least 2 items"}
		}
		if q.CorrectOption < 0 || q.CorrectOption >= len(q.Options) {
			return &FieldError{
				Field:   field + ".correctOption",
				Message: fmt.Sprintf("%s.correctOption must reference one of the %d options", field, len(q.Options)),
				Value:   q.CorrectOption,
			}
		}
		if q.ID != "" {
			if seen[q.ID] {
				return &FieldError{Field: field + ".id", Message: "duplicate question id", Value: q.ID}
			}
			seen[q.ID] = true
		}
	}
	return nil
}
