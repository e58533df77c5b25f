package api

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"alcyxob/gym-tracker/internal/domain"
)

var registerOnce sync.Once

// RegisterValidators adds the domain enum checks to gin's validator and makes field errors
// use JSON names. Safe to call more than once.
func RegisterValidators() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = errors.New("gin validator engine is not go-playground/validator")
			return
		}
		v.RegisterTagNameFunc(jsonFieldName)

		enums := map[string]validator.Func{
			"body_part": func(fl validator.FieldLevel) bool {
				return domain.BodyPart(fl.Field().String()).Valid()
			},
			"exercise_type": func(fl validator.FieldLevel) bool {
				return domain.ExerciseType(fl.Field().String()).Valid()
			},
			"difficulty": func(fl validator.FieldLevel) bool {
				return domain.Difficulty(fl.Field().String()).Valid()
			},
		}
		for tag, fn := range enums {
			if err = v.RegisterValidation(tag, fn); err != nil {
				return
			}
		}
	})
	return err
}

func jsonFieldName(field reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name := strings.SplitN(field.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return field.Name
}

// fieldMessage renders "exercises[0].sets: must be greater than 0" style details.
func fieldMessage(fe validator.FieldError) string {
	path := fe.Namespace()
	if i := strings.IndexByte(path, '.'); i >= 0 {
		path = path[i+1:]
	}

	switch fe.Tag() {
	case "required":
		return path + ": is required"
	case "email":
		return path + ": must be a valid email address"
	case "min":
		if k := fe.Kind(); k == reflect.Slice || k == reflect.Array || k == reflect.Map {
			return fmt.Sprintf("%s: must contain at least %s item(s)", path, fe.Param())
		}
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s: must be at least %s characters", path, fe.Param())
		}
		return fmt.Sprintf("%s: must be %s or greater", path, fe.Param())
	case "max":
		return fmt.Sprintf("%s: must be at most %s", path, fe.Param())
	case "gt":
		return fmt.Sprintf("%s: must be greater than %s", path, fe.Param())
	case "gte":
		return fmt.Sprintf("%s: must be %s or greater", path, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s: must be one of [%s]", path, fe.Param())
	case "body_part":
		return path + ": must be a valid body part"
	case "exercise_type":
		return path + ": must be a valid exercise type"
	case "difficulty":
		return path + ": must be beginner, intermediate or advanced"
	default:
		return fmt.Sprintf("%s: failed %s validation", path, fe.Tag())
	}
}
