package services

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("access denied")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrDuplicate          = errors.New("already exists")
)

// ValidationError содержит сообщения по полям запроса
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// fieldError создает ValidationError для одного поля
func fieldError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

var validate = newValidator()

// newValidator называет поля в сообщениях так же, как в JSON
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// validateStruct проверяет DTO и переводит теги валидатора в сообщения по полям
func validateStruct(dto interface{}) error {
	err := validate.Struct(dto)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	fields := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		name := e.Field()
		switch e.Tag() {
		case "required":
			fields[name] = name + " is required"
		case "gt":
			fields[name] = fmt.Sprintf("%s must be greater than %s", name, e.Param())
		case "gte":
			fields[name] = fmt.Sprintf("%s must be at least %s", name, e.Param())
		case "min":
			fields[name] = fmt.Sprintf("%s must be at least %s characters", name, e.Param())
		case "max":
			fields[name] = fmt.Sprintf("%s must be at most %s characters", name, e.Param())
		case "oneof":
			fields[name] = fmt.Sprintf("%s must be one of: %s", name, e.Param())
		case "email":
			fields[name] = name + " must be a valid email"
		case "datetime":
			fields[name] = name + " must be a date in YYYY-MM-DD format"
		default:
			fields[name] = name + " is invalid"
		}
	}
	return &ValidationError{Fields: fields}
}

// notFoundOr переводит gorm.ErrRecordNotFound в ErrNotFound, дубликат ключа в ErrDuplicate
func notFoundOr(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	}
	return err
}
