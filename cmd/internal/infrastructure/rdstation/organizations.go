package rdstation

import (
	"context"
	"crmsync/cmd/internal/domain/entity"
	"errors"
	"net/http"
	"strconv"
)

var ErrEmptyRecord = errors.New("crm returned a record without id")

// FindCompanyByCNPJ scans a single page of organizations for one whose CNPJ
// custom field equals cnpj. The CRM cannot filter on custom fields, so companies
// beyond the first scanLimit records are never seen.
//
// A nil company with a nil error means no match.
func (c *Client) FindCompanyByCNPJ(ctx context.Context, cnpj string) (*entity.Company, error) {
	var resp organizationsResponse
	params := map[string]string{"limit": strconv.Itoa(c.scanLimit)}
	if err := c.Do(ctx, http.MethodGet, "organizations", params, &resp); err != nil {
		return nil, err
	}

	for _, company := range resp.Organizations {
		if company != nil && company.HasCustomValue(c.companyFieldID, cnpj) {
			return company, nil
		}
	}
	return nil, nil
}

// CreateCompany creates an organization carrying the CNPJ in its custom field.
func (c *Client) CreateCompany(ctx context.Context, name, cnpj string) (*entity.Company, error) {
	req := &organizationRequest{
		Name: name,
		CustomFields: []entity.CustomField{
			{CustomFieldID: c.companyFieldID, Value: cnpj},
		},
	}

	var company entity.Company
	if err := c.Do(ctx, http.MethodPost, "organizations", req, &company); err != nil {
		return nil, err
	}

	if company.ID == "" {
		return nil, ErrEmptyRecord
	}
	return &company, nil
}
