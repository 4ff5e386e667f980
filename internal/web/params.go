package web

// params.go binds and validates path and query parameters.

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/JonMunkholm/enrollview/internal/core"
)

// courseParams identifies one course.
type courseParams struct {
	Subject string `param:"subject" validate:"required,max=128,printable"`
	Num     string `param:"num" validate:"required,max=128,printable"`
}

func (p courseParams) key() core.CourseKey {
	return core.CourseKey{Subject: p.Subject, Num: p.Num}
}

// subjectParams identifies one subject.
type subjectParams struct {
	Subject string `param:"subject" validate:"required,max=128,printable"`
}

// sectionParams identifies one section by class number.
type sectionParams struct {
	ClassNbr string `param:"classNbr" validate:"required,max=128,printable"`
}

// groupingParams selects how location aggregates are keyed.
type groupingParams struct {
	By string `param:"by" validate:"omitempty,oneof=location campus"`
}

func (p groupingParams) byCampus() bool {
	return p.By == "campus"
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if name := fld.Tag.Get("param"); name != "" {
			return name
		}
		return fld.Name
	})
	// Registration only fails on an empty tag or nil func.
	_ = v.RegisterValidation("printable", isPrintable)
	return v
}

// isPrintable accepts any text made of printable Unicode runes, so accented
// subjects read from the dataset pass.
func isPrintable(fl validator.FieldLevel) bool {
	for _, r := range fl.Field().String() {
		if !unicode.IsPrint(r) {
			return false
		}
	}
	return true
}

// validateParams returns the first failed rule as a core.ValidationError.
func (s *Server) validateParams(params any) error {
	err := s.validate.Struct(params)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}

	fe := fieldErrs[0]
	return core.ValidationError{
		Field:   fe.Field(),
		Value:   fmt.Sprint(fe.Value()),
		Message: validationMessage(fe),
	}
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "printable":
		return "contains unsupported characters"
	default:
		return fmt.Sprintf("failed %s check", fe.Tag())
	}
}

// pathParam returns the trimmed chi URL parameter, decoded exactly once.
// chi matches against RawPath when the request has one, so only those
// segments are still escaped.
func pathParam(r *http.Request, name string) string {
	v := chi.URLParam(r, name)
	if r.URL.RawPath != "" {
		if unescaped, err := url.PathUnescape(v); err == nil {
			v = unescaped
		}
	}
	return strings.TrimSpace(v)
}

// queryParam returns the trimmed query parameter.
func queryParam(r *http.Request, name string) string {
	return strings.TrimSpace(r.URL.Query().Get(name))
}
