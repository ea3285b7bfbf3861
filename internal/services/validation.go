package services

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/physiocare-api/internal/apperr"
	"github.com/harentsoaR/physiocare-api/internal/models"
)

var (
	insuranceRe = regexp.MustCompile(`^[a-zA-Z0-9]{9}$`)
	licenseRe   = regexp.MustCompile(`^[A-Z]\d{7}$`)

	validate = newValidator()
)

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	must := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(err)
		}
	}
	must("insurance", func(fl validator.FieldLevel) bool {
		return insuranceRe.MatchString(fl.Field().String())
	})
	must("license", func(fl validator.FieldLevel) bool {
		return licenseRe.MatchString(fl.Field().String())
	})
	must("specialty", func(fl validator.FieldLevel) bool {
		return models.IsSpecialty(fl.Field().String())
	})
	return v
}

// check validates a model and turns the first failing rule into a 400.
func check(what string, v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return apperr.Validation(fmt.Sprintf("Invalid %s: field '%s' failed rule '%s'.", what, fe.Field(), fe.Tag()), err)
	}
	return apperr.Validation(fmt.Sprintf("Invalid %s.", what), err)
}

// parseID turns a path or body value into an ObjectID, reporting 400 on failure.
func parseID(s, what string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return primitive.NilObjectID, apperr.Validation(fmt.Sprintf("Invalid %s id.", what), err)
	}
	return id, nil
}

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

// parseDate accepts a calendar date or an RFC 3339 timestamp.
func parseDate(s, field string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, apperr.Validation(fmt.Sprintf("Invalid %s: use YYYY-MM-DD or RFC 3339.", field), nil)
}
