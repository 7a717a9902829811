package rdstation

import (
	"context"
	"crmsync/cmd/internal/domain/entity"
	"net/http"
	"net/url"
	"strconv"

	"github.com/labstack/gommon/log"
)

const emailTypeWork = "work"

// FindContactByCNPJOrEmail looks the contact up by email first (the only
// server-side filter the CRM offers) and then falls back to scanning a single
// page of contacts for the CNPJ custom field.
//
// A failed email lookup does not stop the CNPJ scan; the error is only
// returned when no step could find anything and the last step failed.
func (c *Client) FindContactByCNPJOrEmail(ctx context.Context, cnpj, email string) (*entity.Contact, error) {
	var lastErr error

	if email != "" {
		var resp contactsResponse
		err := c.Do(ctx, http.MethodGet, "contacts", map[string]string{"email": email}, &resp)
		if err == nil && len(resp.Contacts) > 0 && resp.Contacts[0] != nil {
			return resp.Contacts[0], nil
		}
		lastErr = err
	}

	if cnpj == "" {
		return nil, lastErr
	}

	var resp contactsResponse
	params := map[string]string{"limit": strconv.Itoa(c.scanLimit)}
	if err := c.Do(ctx, http.MethodGet, "contacts", params, &resp); err != nil {
		return nil, err
	}

	for _, contact := range resp.Contacts {
		if contact != nil && contact.HasCustomValue(c.contactFieldID, cnpj) {
			return contact, nil
		}
	}
	return nil, nil
}

// CreateContact creates a contact with a work email and the CNPJ custom field,
// linked to organizationID when one is given.
func (c *Client) CreateContact(ctx context.Context, name, email, cnpj, organizationID string) (*entity.Contact, error) {
	req := &contactRequest{
		Name:  name,
		Email: entity.ContactEmail{Email: email, Type: emailTypeWork},
		CustomFields: []entity.CustomField{
			{CustomFieldID: c.contactFieldID, Value: cnpj},
		},
		OrganizationID: organizationID,
	}

	var contact entity.Contact
	if err := c.Do(ctx, http.MethodPost, "contacts", req, &contact); err != nil {
		return nil, err
	}

	if contact.ID == "" {
		return nil, ErrEmptyRecord
	}
	return &contact, nil
}

// UpdateContactOrganization moves an existing contact to organizationID.
func (c *Client) UpdateContactOrganization(ctx context.Context, contactID, organizationID string) (*entity.Contact, error) {
	endpoint := "contacts/" + url.PathEscape(contactID)

	var contact entity.Contact
	err := c.Do(ctx, http.MethodPut, endpoint, &contactUpdateRequest{OrganizationID: organizationID}, &contact)
	if err != nil {
		return nil, err
	}

	if contact.ID == "" {
		log.Debugf("crm PUT %s answered without a record, assuming the link was applied", endpoint)
		contact.ID = contactID
	}
	contact.OrganizationID = organizationID
	return &contact, nil
}
