package validators

import (
	"crmsync/cmd/internal/utils"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// New returns a validator that reports fields by their json name and knows
// the custom tags used across the API.
func New() *validator.Validate {
	validate := validator.New()
	validate.RegisterTagNameFunc(jsonFieldName)
	_ = validate.RegisterValidation("cnpj", CNPJ)
	return validate
}

// CNPJ accepts masked or digits-only CNPJs with valid check digits.
func CNPJ(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.String {
		return false
	}
	return utils.IsCNPJValid(utils.NormalizeCNPJ(field.String()))
}

func jsonFieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}
