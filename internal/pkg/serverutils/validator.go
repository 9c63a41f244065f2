package serverutils

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"fisiqia-be/internal/pkg/apperror"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// Report fields by their JSON name so messages match the request body.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// ValidateRequest checks the validate tags of req and returns an apperror
// validation error naming the offending fields.
func ValidateRequest(req interface{}) error {
	err := getValidator().Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperror.Wrap(apperror.KindValidation, "Requisição inválida.", err)
	}

	fields := make([]string, 0, len(verrs))
	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
		messages = append(messages, fieldMessage(fe))
	}

	return apperror.Validation(strings.Join(messages, " ")).WithDetail("campos", fields)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("O campo '%s' é obrigatório.", fe.Field())
	case "max":
		return fmt.Sprintf("O campo '%s' excede o tamanho máximo de %s.", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("O campo '%s' é inválido (%s).", fe.Field(), fe.Tag())
	}
}
