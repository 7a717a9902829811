package rdstation

import "crmsync/cmd/internal/domain/entity"

type organizationsResponse struct {
	Organizations []*entity.Company `json:"organizations"`
}

type contactsResponse struct {
	Contacts []*entity.Contact `json:"contacts"`
}

type organizationRequest struct {
	Name         string               `json:"name"`
	CustomFields []entity.CustomField `json:"organization_custom_fields"`
}

type contactRequest struct {
	Name           string               `json:"name"`
	Email          entity.ContactEmail  `json:"email"`
	CustomFields   []entity.CustomField `json:"contact_custom_fields"`
	OrganizationID string               `json:"organization_id,omitempty"`
}

type contactUpdateRequest struct {
	OrganizationID string `json:"organization_id"`
}
