// Package form binds and validates submitted HTML forms.
//
// Binding goes through gin with go-playground/validator; failures are turned
// into per-field messages that templates render next to the inputs. A form
// with errors is never persisted.
package form

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// NonFieldErrors 不属于具体字段的错误
const NonFieldErrors = "__all__"

var usernameRe = regexp.MustCompile(`^[\w.@+-]+$`)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("notblank", validators.NotBlank)
		_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			return usernameRe.MatchString(fl.Field().String())
		})
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	}
}

// Errors 字段名 -> 错误信息
type Errors map[string][]string

func (e Errors) Add(field, msg string) { e[field] = append(e[field], msg) }

func (e Errors) Has(field string) bool { return len(e[field]) > 0 }

func (e Errors) Get(field string) []string { return e[field] }

func (e Errors) Empty() bool { return len(e) == 0 }

// collect 把 binding 错误拆成字段错误
func (e Errors) collect(err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		e.Add(NonFieldErrors, err.Error())
		return
	}
	for _, fe := range verrs {
		e.Add(fe.Field(), message(fe))
	}
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "min":
		return fmt.Sprintf("Ensure this value has at least %s characters.", fe.Param())
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
	case "eqfield":
		return "The two password fields didn't match."
	case "numeric":
		return "Select a valid choice."
	case "username":
		return "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	}
	return "Enter a valid value."
}
