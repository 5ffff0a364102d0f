package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerTagNames sync.Once

// useWireFieldNames makes validator report fields by their json or form
// name instead of the Go field name.
func useWireFieldNames() {
	registerTagNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return f.Name
		})
	})
}

// bindingErrors converts a gin binding error into field-keyed messages.
func bindingErrors(err error) map[string][]string {
	fields := map[string][]string{}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			name := fe.Field()
			fields[name] = append(fields[name], fieldMessage(fe))
		}
		return fields
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		name := typeErr.Field
		fields[name] = append(fields[name], fmt.Sprintf("The %s field must be %s.", humanize(name), article(typeErr.Type.Kind())))
		return fields
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		fields["body"] = []string{"The request body must be valid JSON."}
		return fields
	}

	fields["request"] = []string{err.Error()}
	return fields
}

func fieldMessage(fe validator.FieldError) string {
	name := humanize(fe.Field())
	numeric := false
	switch fe.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		numeric = true
	}

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", name)
	case "email":
		return fmt.Sprintf("The %s field must be a valid email address.", name)
	case "max":
		if numeric {
			return fmt.Sprintf("The %s field must not be greater than %s.", name, fe.Param())
		}
		return fmt.Sprintf("The %s field must not be greater than %s characters.", name, fe.Param())
	case "min":
		if numeric {
			return fmt.Sprintf("The %s field must be at least %s.", name, fe.Param())
		}
		return fmt.Sprintf("The %s field must be at least %s characters.", name, fe.Param())
	case "oneof":
		return fmt.Sprintf("The selected %s is invalid.", name)
	case "datetime":
		return fmt.Sprintf("The %s field must match the format YYYY-MM-DD.", name)
	}
	return fmt.Sprintf("The %s field is invalid.", name)
}

func humanize(field string) string {
	return strings.ReplaceAll(field, "_", " ")
}

func article(k reflect.Kind) string {
	switch k {
	case reflect.Map, reflect.Struct:
		return "an object"
	case reflect.Slice, reflect.Array:
		return "an array"
	case reflect.String:
		return "a string"
	case reflect.Bool:
		return "true or false"
	}
	return "a number"
}
