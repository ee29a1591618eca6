package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/valter-silva-au/taskdesk/pkg/models"
)

// MinTitleLength is the minimum number of characters in a task title. It
// must match the min tag on TaskInput.Title.
const MinTitleLength = 3

// ValidationError reports the first rule a task payload violates.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func newValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// TaskInput is the body of a create or update request. A nil field was
// absent (or null) in the payload. Unknown keys, including any id, are
// dropped by the decoder.
type TaskInput struct {
	Title       *string `json:"title" validate:"required,min=3"`
	Description *string `json:"description" validate:"omitempty,min=1"`
	Completed   *bool   `json:"completed"`

	// mistyped maps a field name to the JSON type it should have had.
	mistyped map[string]string
}

// taskFields is the order in which fields are checked.
var taskFields = []string{"title", "description", "completed"}

var taskValidator = newTaskValidator()

func newTaskValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		return name
	})
	return v
}

// Patch converts the input to a store patch.
func (in TaskInput) Patch() models.TaskPatch {
	return models.TaskPatch{
		Title:       in.Title,
		Description: in.Description,
		Completed:   in.Completed,
	}
}

// Task converts the input to a new task, applying defaults for absent
// optional fields.
func (in TaskInput) Task() models.Task {
	var t models.Task
	in.Patch().Apply(&t)
	return t
}

func errNotObject() *ValidationError {
	return newValidationError("", `"value" must be of type object`)
}

// DecodeTaskInput reads a JSON object from r. A body that is not a single
// JSON object is a *ValidationError. Fields of the wrong JSON type are
// remembered and reported by ValidateTaskInput in field order.
func DecodeTaskInput(r io.Reader) (TaskInput, error) {
	var raw map[string]json.RawMessage

	dec := json.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			// An empty body is an empty object.
			return TaskInput{}, nil
		}
		return TaskInput{}, errNotObject()
	}
	// A literal null decodes into a nil map.
	if raw == nil || dec.More() {
		return TaskInput{}, errNotObject()
	}

	var in TaskInput
	in.Title = decodeField[string](&in, raw, "title", "string")
	in.Description = decodeField[string](&in, raw, "description", "string")
	in.Completed = decodeField[bool](&in, raw, "completed", "boolean")
	return in, nil
}

func decodeField[T any](in *TaskInput, raw map[string]json.RawMessage, name, kind string) *T {
	msg, ok := raw[name]
	if !ok || bytes.Equal(bytes.TrimSpace(msg), []byte("null")) {
		return nil
	}
	var v T
	if err := json.Unmarshal(msg, &v); err != nil {
		if in.mistyped == nil {
			in.mistyped = make(map[string]string)
		}
		in.mistyped[name] = kind
		return nil
	}
	return &v
}

// ValidateTaskInput applies the task schema to a create or update payload
// and returns the first violation, checking title, then description, then
// completed. For each field a wrong JSON type is reported before any other
// rule.
func ValidateTaskInput(in TaskInput) error {
	failed := make(map[string]validator.FieldError)
	if err := taskValidator.Struct(in); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("validating task input: %w", err)
		}
		for _, fe := range fieldErrs {
			if _, seen := failed[fe.Field()]; !seen {
				failed[fe.Field()] = fe
			}
		}
	}

	for _, field := range taskFields {
		if kind, ok := in.mistyped[field]; ok {
			return newValidationError(field, "%q must be a %s", field, kind)
		}
		if fe, ok := failed[field]; ok {
			return fieldViolation(fe)
		}
	}
	return nil
}

func fieldViolation(fe validator.FieldError) *ValidationError {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return newValidationError(field, "%q is required", field)
	case "min":
		if s, ok := fe.Value().(string); ok && s == "" {
			return newValidationError(field, "%q is not allowed to be empty", field)
		}
		return newValidationError(field, "%q length must be at least %s characters long", field, fe.Param())
	default:
		return newValidationError(field, "%q failed the %s rule", field, fe.Tag())
	}
}
