package apierror

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIErrorJSON(t *testing.T) {
	raw, err := json.Marshal(NoDataError)
	require.NoError(t, err)

	assert.JSONEq(t, `{"error":"Nenhum dado recebido."}`, string(raw))
	assert.Equal(t, 400, NoDataError.Code())
	assert.Equal(t, 500, CompanyCreateFailedError.Code())
	assert.Equal(t, 500, ContactCreateFailedError.Code())
}

func TestFromValidationError(t *testing.T) {
	req := struct {
		Name string `validate:"required"`
		Code string `validate:"oneof=a b"`
	}{Code: "c"}

	serr := FromValidationError(validator.New().Struct(&req), MissingFieldsMessage)
	require.NotNil(t, serr)

	assert.Equal(t, 400, serr.Code())
	assert.Equal(t, MissingFieldsMessage, serr.Message)
	assert.Equal(t, []string{"Campo obrigatório"}, serr.Fields["Name"])
	assert.Equal(t, []string{"Valor inválido"}, serr.Fields["Code"])
}

func TestFromValidationErrorIgnoresOtherErrors(t *testing.T) {
	assert.Nil(t, FromValidationError(errors.New("boom"), "x"))
}
