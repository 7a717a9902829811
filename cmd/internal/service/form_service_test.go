package service

import (
	"context"
	"crmsync/cmd/internal/contract"
	"crmsync/cmd/internal/domain/entity"
	"crmsync/cmd/internal/utils/apierror"
	"crmsync/cmd/internal/utils/validators"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type createdCompany struct{ Name, CNPJ string }

type createdContact struct{ Name, Email, CNPJ, OrganizationID string }

// fakeCRM keeps the canned lookups and records every write.
type fakeCRM struct {
	company    *entity.Company
	companyErr error
	contact    *entity.Contact
	contactErr error

	createCompanyErr error
	createContactErr error
	updateErr        error

	lookups          int
	companiesCreated []createdCompany
	contactsCreated  []createdContact
	relinks          [][2]string
}

func (f *fakeCRM) FindCompanyByCNPJ(_ context.Context, _ string) (*entity.Company, error) {
	f.lookups++
	return f.company, f.companyErr
}

func (f *fakeCRM) CreateCompany(_ context.Context, name, cnpj string) (*entity.Company, error) {
	f.companiesCreated = append(f.companiesCreated, createdCompany{name, cnpj})
	if f.createCompanyErr != nil {
		return nil, f.createCompanyErr
	}
	return &entity.Company{ID: "new-company", Name: name}, nil
}

func (f *fakeCRM) FindContactByCNPJOrEmail(_ context.Context, _, _ string) (*entity.Contact, error) {
	f.lookups++
	return f.contact, f.contactErr
}

func (f *fakeCRM) CreateContact(_ context.Context, name, email, cnpj, organizationID string) (*entity.Contact, error) {
	f.contactsCreated = append(f.contactsCreated, createdContact{name, email, cnpj, organizationID})
	if f.createContactErr != nil {
		return nil, f.createContactErr
	}
	return &entity.Contact{ID: "new-contact", Name: name, OrganizationID: organizationID}, nil
}

func (f *fakeCRM) UpdateContactOrganization(_ context.Context, contactID, organizationID string) (*entity.Contact, error) {
	f.relinks = append(f.relinks, [2]string{contactID, organizationID})
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return &entity.Contact{ID: contactID, OrganizationID: organizationID}, nil
}

type fakeRegistry struct {
	company *entity.RegistryCompany
	err     error
	calls   []string
}

func (r *fakeRegistry) GetByCNPJ(_ context.Context, cnpj string) (*entity.RegistryCompany, error) {
	r.calls = append(r.calls, cnpj)
	return r.company, r.err
}

func newService(crm *fakeCRM, opts FormOptions) *FormService {
	return NewFormService(crm, nil, validators.New(), opts)
}

func anaRequest() *contract.FormRequest {
	return &contract.FormRequest{
		CNPJ:  "11.111.111/0001-11",
		Name:  "Ana",
		Email: "ana@x.com",
	}
}

func strPtr(s string) *string { return &s }

func TestProcessFormMissingFields(t *testing.T) {
	cases := map[string]*contract.FormRequest{
		"cnpj":  {Name: "Ana", Email: "ana@x.com"},
		"name":  {CNPJ: "1", Email: "ana@x.com"},
		"email": {CNPJ: "1", Name: "Ana"},
		"blank": {CNPJ: "  ", Name: "Ana", Email: "ana@x.com"},
	}

	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			crm := &fakeCRM{}

			resp, apierr := newService(crm, FormOptions{}).ProcessForm(context.Background(), req)
			assert.Nil(t, resp)
			require.NotNil(t, apierr)
			assert.Equal(t, 400, apierr.Code())

			serr, ok := apierr.(*apierror.StructuredError)
			require.True(t, ok)
			assert.Equal(t, apierror.MissingFieldsMessage, serr.Message)

			assert.Zero(t, crm.lookups)
			assert.Empty(t, crm.companiesCreated)
			assert.Empty(t, crm.contactsCreated)
		})
	}
}

func TestProcessFormCreatesEverything(t *testing.T) {
	crm := &fakeCRM{}

	resp, apierr := newService(crm, FormOptions{}).ProcessForm(context.Background(), anaRequest())
	require.Nil(t, apierr)

	assert.Equal(t, contract.FormProcessedMessage, resp.Message)
	assert.Equal(t, "new-company", resp.CompanyID)
	assert.Equal(t, "new-contact", resp.ContactID)

	assert.Equal(t, []createdCompany{{"Empresa do Ana", "11.111.111/0001-11"}}, crm.companiesCreated)
	assert.Equal(t, []createdContact{{"Ana", "ana@x.com", "11.111.111/0001-11", "new-company"}}, crm.contactsCreated)
}

func TestProcessFormUsesSuppliedCompanyName(t *testing.T) {
	crm := &fakeCRM{}
	req := anaRequest()
	req.CompanyName = strPtr("  ACME Ltda ")

	_, apierr := newService(crm, FormOptions{}).ProcessForm(context.Background(), req)
	require.Nil(t, apierr)

	require.Len(t, crm.companiesCreated, 1)
	assert.Equal(t, "ACME Ltda", crm.companiesCreated[0].Name)
}

func TestProcessFormBlankCompanyNameFallsBack(t *testing.T) {
	crm := &fakeCRM{}
	req := anaRequest()
	req.CompanyName = strPtr("   ")

	_, apierr := newService(crm, FormOptions{}).ProcessForm(context.Background(), req)
	require.Nil(t, apierr)
	assert.Equal(t, "Empresa do Ana", crm.companiesCreated[0].Name)
}

func TestProcessFormReusesExistingCompany(t *testing.T) {
	crm := &fakeCRM{company: &entity.Company{ID: "existing"}}

	resp, apierr := newService(crm, FormOptions{}).ProcessForm(context.Background(), anaRequest())
	require.Nil(t, apierr)

	assert.Equal(t, "existing", resp.CompanyID)
	assert.Empty(t, crm.companiesCreated)
	require.Len(t, crm.contactsCreated, 1)
	assert.Equal(t, "existing", crm.contactsCreated[0].OrganizationID)
}

func TestProcessFormCompanyLookupFailureCreates(t *testing.T) {
	crm := &fakeCRM{companyErr: errors.New("crm down")}

	resp, apierr := newService(crm, FormOptions{}).ProcessForm(context.Background(), anaRequest())
	require.Nil(t, apierr)
	assert.Equal(t, "new-company", resp.CompanyID)
	assert.Len(t, crm.companiesCreated, 1)
}

func TestProcessFormCompanyCreateFails(t *testing.T) {
	crm := &fakeCRM{createCompanyErr: errors.New("422")}

	resp, apierr := newService(crm, FormOptions{}).ProcessForm(context.Background(), anaRequest())
	assert.Nil(t, resp)
	assert.Equal(t, apierror.CompanyCreateFailedError, apierr)
	assert.Empty(t, crm.contactsCreated)
}

func TestProcessFormReusesExistingContact(t *testing.T) {
	crm := &fakeCRM{
		company: &entity.Company{ID: "o1"},
		contact: &entity.Contact{ID: "c1", OrganizationID: "o1"},
	}

	resp, apierr := newService(crm, FormOptions{}).ProcessForm(context.Background(), anaRequest())
	require.Nil(t, apierr)

	assert.Equal(t, "c1", resp.ContactID)
	assert.Empty(t, crm.contactsCreated)
	assert.Empty(t, crm.relinks)
}

func TestProcessFormContactCreateFails(t *testing.T) {
	crm := &fakeCRM{createContactErr: errors.New("500")}

	resp, apierr := newService(crm, FormOptions{}).ProcessForm(context.Background(), anaRequest())
	assert.Nil(t, resp)
	assert.Equal(t, apierror.ContactCreateFailedError, apierr)

	// The company stays created.
	assert.Len(t, crm.companiesCreated, 1)
}

func TestProcessFormMismatchIsLeftAlone(t *testing.T) {
	contact := &entity.Contact{ID: "c1", OrganizationID: "other"}
	crm := &fakeCRM{company: &entity.Company{ID: "o1"}, contact: contact}

	resp, apierr := newService(crm, FormOptions{}).ProcessForm(context.Background(), anaRequest())
	require.Nil(t, apierr)

	assert.Equal(t, "c1", resp.ContactID)
	assert.Equal(t, "o1", resp.CompanyID)
	assert.Equal(t, "other", contact.OrganizationID)
	assert.Empty(t, crm.relinks)
}

func TestProcessFormRelinksWhenEnabled(t *testing.T) {
	crm := &fakeCRM{
		company: &entity.Company{ID: "o1"},
		contact: &entity.Contact{ID: "c1", OrganizationID: "other"},
	}

	resp, apierr := newService(crm, FormOptions{RelinkContacts: true}).ProcessForm(context.Background(), anaRequest())
	require.Nil(t, apierr)

	assert.Equal(t, "c1", resp.ContactID)
	assert.Equal(t, [][2]string{{"c1", "o1"}}, crm.relinks)
}

func TestProcessFormRelinkFailureStillSucceeds(t *testing.T) {
	crm := &fakeCRM{
		company:   &entity.Company{ID: "o1"},
		contact:   &entity.Contact{ID: "c1"},
		updateErr: errors.New("timeout"),
	}

	resp, apierr := newService(crm, FormOptions{RelinkContacts: true}).ProcessForm(context.Background(), anaRequest())
	require.Nil(t, apierr)
	assert.Equal(t, "c1", resp.ContactID)
	assert.Len(t, crm.relinks, 1)
}

func TestProcessFormStrictCNPJ(t *testing.T) {
	crm := &fakeCRM{}
	svc := newService(crm, FormOptions{StrictCNPJ: true})

	_, apierr := svc.ProcessForm(context.Background(), anaRequest())
	assert.Equal(t, apierror.InvalidCNPJError, apierr)
	assert.Zero(t, crm.lookups)

	req := anaRequest()
	req.CNPJ = "11.222.333/0001-81"
	_, apierr = svc.ProcessForm(context.Background(), req)
	assert.Nil(t, apierr)
}

func TestProcessFormRegistryName(t *testing.T) {
	crm := &fakeCRM{}
	registry := &fakeRegistry{company: &entity.RegistryCompany{LegalName: "ACME COMERCIO LTDA", TradeName: "ACME"}}
	svc := NewFormService(crm, registry, validators.New(), FormOptions{})

	req := anaRequest()
	req.CNPJ = "11.222.333/0001-81"
	_, apierr := svc.ProcessForm(context.Background(), req)
	require.Nil(t, apierr)

	assert.Equal(t, []string{"11222333000181"}, registry.calls)
	assert.Equal(t, "ACME", crm.companiesCreated[0].Name)
	assert.Equal(t, "11.222.333/0001-81", crm.companiesCreated[0].CNPJ)
}

func TestProcessFormRegistryFallbacks(t *testing.T) {
	t.Run("registry error", func(t *testing.T) {
		crm := &fakeCRM{}
		registry := &fakeRegistry{err: errors.New("not found")}
		req := anaRequest()
		req.CNPJ = "11222333000181"

		_, apierr := NewFormService(crm, registry, validators.New(), FormOptions{}).ProcessForm(context.Background(), req)
		require.Nil(t, apierr)
		assert.Equal(t, "Empresa do Ana", crm.companiesCreated[0].Name)
	})

	t.Run("invalid cnpj skips registry", func(t *testing.T) {
		crm := &fakeCRM{}
		registry := &fakeRegistry{}

		_, apierr := NewFormService(crm, registry, validators.New(), FormOptions{}).ProcessForm(context.Background(), anaRequest())
		require.Nil(t, apierr)
		assert.Empty(t, registry.calls)
		assert.Equal(t, "Empresa do Ana", crm.companiesCreated[0].Name)
	})

	t.Run("supplied name wins", func(t *testing.T) {
		crm := &fakeCRM{}
		registry := &fakeRegistry{}
		req := anaRequest()
		req.CNPJ = "11222333000181"
		req.CompanyName = strPtr("Minha Empresa")

		_, apierr := NewFormService(crm, registry, validators.New(), FormOptions{}).ProcessForm(context.Background(), req)
		require.Nil(t, apierr)
		assert.Empty(t, registry.calls)
		assert.Equal(t, "Minha Empresa", crm.companiesCreated[0].Name)
	})
}
