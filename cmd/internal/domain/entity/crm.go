package entity

// CustomField is a CRM-defined attribute attached to a company or contact.
// Value is kept untyped because multi-select fields come back as arrays.
type CustomField struct {
	CustomFieldID string `json:"custom_field_id"`
	Value         any    `json:"value"`
}

// Matches reports whether the field is fieldID and holds exactly value.
func (f *CustomField) Matches(fieldID, value string) bool {
	if f.CustomFieldID != fieldID {
		return false
	}
	v, ok := f.Value.(string)
	return ok && v == value
}

// Company is a CRM "organization".
type Company struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	CustomFields []CustomField `json:"organization_custom_fields"`
}

func (c *Company) HasCustomValue(fieldID, value string) bool {
	for i := range c.CustomFields {
		if c.CustomFields[i].Matches(fieldID, value) {
			return true
		}
	}
	return false
}

type ContactEmail struct {
	Email string `json:"email"`
	Type  string `json:"type,omitempty"`
}

// Contact is a CRM "contact". OrganizationID links it to a Company.
type Contact struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Emails         []ContactEmail `json:"emails,omitempty"`
	OrganizationID string         `json:"organization_id,omitempty"`
	CustomFields   []CustomField  `json:"contact_custom_fields"`
}

func (c *Contact) HasCustomValue(fieldID, value string) bool {
	for i := range c.CustomFields {
		if c.CustomFields[i].Matches(fieldID, value) {
			return true
		}
	}
	return false
}
