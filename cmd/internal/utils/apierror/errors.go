package apierror

import (
	"errors"
	"fmt"
	"github.com/go-playground/validator/v10"
	"net/http"
)

// ErrorResponse abstracts all API error responses to the user.
//
// This interface does not implement `error`, since its only purpose
// is to be used for API responses and not for logging circumstances.
//
// In general, the whole ErrorResponse can be sent for serialization.
type ErrorResponse interface {
	// Code is the HTTP status code to be returned.
	Code() int
}

type APIError struct {
	Message string `json:"error"`
	Status  int    `json:"-"`
}

func (a *APIError) Code() int {
	return a.Status
}

// StructuredError is an APIError that also lists what is wrong with each field.
type StructuredError struct {
	Message string              `json:"error"`
	Fields  map[string][]string `json:"fields"`
	Status  int                 `json:"-"`
}

func (s *StructuredError) Code() int {
	return s.Status
}

func (s *StructuredError) Add(field, problem string) {
	s.Fields[field] = append(s.Fields[field], problem)
}

var (
	NoDataError         = NewSimple(400, "Nenhum dado recebido.")
	MalformedBodyError  = NewSimple(400, "Corpo da requisição não é um objeto JSON válido.")
	InvalidCNPJError    = NewSimple(400, "CNPJ inválido.")
	InternalServerError = NewSimple(500, "Erro interno do servidor.")

	CompanyCreateFailedError = NewSimple(500, "Falha ao criar ou encontrar empresa.")
	ContactCreateFailedError = NewSimple(500, "Falha ao criar ou encontrar contato.")

	TooManyRequestsError = NewSimple(429, "Muitas requisições. Tente novamente em instantes.")
)

const MissingFieldsMessage = "Dados mínimos (CNPJ, nome, email) não fornecidos."

// FromValidationError maps validator failures onto a StructuredError carrying msg.
// It returns nil when err did not come from the validator.
func FromValidationError(err error, msg string) *StructuredError {
	var ve validator.ValidationErrors
	ok := errors.As(err, &ve)
	if !ok {
		return nil
	}

	serr := NewStructured(http.StatusBadRequest, msg)
	for _, fe := range ve {
		field := fe.Field()

		switch fe.Tag() {
		case "required":
			serr.Add(field, "Campo obrigatório")
		case "cnpj":
			serr.Add(field, "CNPJ inválido")

		default:
			serr.Add(field, "Valor inválido")
		}
	}
	return serr
}

func NewSimple(status int, msg string, args ...any) *APIError {
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	return &APIError{Status: status, Message: msg}
}

func NewStructured(code int, msg string) *StructuredError {
	return &StructuredError{
		Message: msg,
		Fields:  make(map[string][]string),
		Status:  code,
	}
}
