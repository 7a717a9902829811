package handler

import (
	"bytes"
	"context"
	"crmsync/cmd/internal/contract"
	"crmsync/cmd/internal/utils/apierror"
	"encoding/json"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

type FormService interface {
	ProcessForm(ctx context.Context, req *contract.FormRequest) (*contract.FormResponse, apierror.ErrorResponse)
}

type DefaultFormRoute struct {
	FormService FormService
}

func NewFormRoute(formService FormService) *DefaultFormRoute {
	return &DefaultFormRoute{FormService: formService}
}

func (f *DefaultFormRoute) ProcessForm(c echo.Context) error {
	req, apierr := bindForm(c)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	// The CRM writes run to completion even if the submitter goes away.
	ctx := context.WithoutCancel(c.Request().Context())
	resp, apierr := f.FormService.ProcessForm(ctx, req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, resp)
}

// bindForm decodes the body by hand because empty or falsy JSON values ("null",
// "{}", "[]", "\"\"", "0", "false") must be told apart from a malformed body.
func bindForm(c echo.Context) (*contract.FormRequest, apierror.ErrorResponse) {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		log.Warnf("failed to read form body: %v", err)
		return nil, apierror.MalformedBodyError
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return nil, apierror.NoDataError
	}

	var data any
	if err = json.Unmarshal(body, &data); err != nil {
		return nil, apierror.MalformedBodyError
	}

	if isEmptyJSON(data) {
		return nil, apierror.NoDataError
	}

	if _, ok := data.(map[string]any); !ok {
		return nil, apierror.MalformedBodyError
	}

	var req contract.FormRequest
	if err = json.Unmarshal(body, &req); err != nil {
		return nil, apierror.MalformedBodyError
	}
	return &req, nil
}

func isEmptyJSON(v any) bool {
	switch d := v.(type) {
	case nil:
		return true
	case map[string]any:
		return len(d) == 0
	case []any:
		return len(d) == 0
	case string:
		return d == ""
	case float64:
		return d == 0
	case bool:
		return !d
	default:
		return false
	}
}
