package service

import (
	"context"
	"crmsync/cmd/internal/contract"
	"crmsync/cmd/internal/domain/entity"
	"crmsync/cmd/internal/utils"
	"crmsync/cmd/internal/utils/apierror"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"
)

type CRMClient interface {
	FindCompanyByCNPJ(ctx context.Context, cnpj string) (*entity.Company, error)
	CreateCompany(ctx context.Context, name, cnpj string) (*entity.Company, error)
	FindContactByCNPJOrEmail(ctx context.Context, cnpj, email string) (*entity.Contact, error)
	CreateContact(ctx context.Context, name, email, cnpj, organizationID string) (*entity.Contact, error)
	UpdateContactOrganization(ctx context.Context, contactID, organizationID string) (*entity.Contact, error)
}

type RegistryClient interface {
	GetByCNPJ(ctx context.Context, cnpj string) (*entity.RegistryCompany, error)
}

type FormOptions struct {
	// StrictCNPJ rejects submissions whose CNPJ has invalid check digits.
	StrictCNPJ bool
	// RelinkContacts moves an existing contact to the resolved company when
	// they disagree. When false the mismatch is only logged.
	RelinkContacts bool
}

type FormService struct {
	CRM      CRMClient
	Registry RegistryClient // optional
	Validate *validator.Validate
	Options  FormOptions
}

func NewFormService(crm CRMClient, registry RegistryClient, validate *validator.Validate, opts FormOptions) *FormService {
	return &FormService{
		CRM:      crm,
		Registry: registry,
		Validate: validate,
		Options:  opts,
	}
}

// ProcessForm finds or creates the company and the contact for a form submission
// and makes sure a newly created contact is linked to the company.
//
// Lookup failures are treated as "not found" and the record is created; only a
// failed creation aborts the request. Nothing is rolled back: a company created
// before a failed contact creation stays in the CRM.
func (f *FormService) ProcessForm(ctx context.Context, req *contract.FormRequest) (*contract.FormResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if err := f.Validate.Struct(req); err != nil {
		if serr := apierror.FromValidationError(err, apierror.MissingFieldsMessage); serr != nil {
			return nil, serr
		}
		log.Errorf("failed to validate form: %v", err)
		return nil, apierror.InternalServerError
	}

	if f.Options.StrictCNPJ {
		if err := f.Validate.Var(req.CNPJ, "cnpj"); err != nil {
			return nil, apierror.InvalidCNPJError
		}
	}

	company, apierr := f.resolveCompany(ctx, req)
	if apierr != nil {
		return nil, apierr
	}

	contact, apierr := f.resolveContact(ctx, req, company)
	if apierr != nil {
		return nil, apierr
	}

	return &contract.FormResponse{
		Message:   contract.FormProcessedMessage,
		ContactID: contact.ID,
		CompanyID: company.ID,
	}, nil
}

func (f *FormService) resolveCompany(ctx context.Context, req *contract.FormRequest) (*entity.Company, apierror.ErrorResponse) {
	company, err := f.CRM.FindCompanyByCNPJ(ctx, req.CNPJ)
	if err != nil {
		log.Warnf("company lookup for CNPJ %s failed, creating a new one: %v", req.CNPJ, err)
	}

	if company != nil {
		return company, nil
	}

	name := f.companyName(ctx, req)
	company, err = f.CRM.CreateCompany(ctx, name, req.CNPJ)
	if err != nil || company == nil {
		log.Errorf("failed to create company %q (CNPJ %s): %v", name, req.CNPJ, err)
		return nil, apierror.CompanyCreateFailedError
	}

	log.Infof("created company %s (%q) for CNPJ %s", company.ID, name, req.CNPJ)
	return company, nil
}

func (f *FormService) resolveContact(ctx context.Context, req *contract.FormRequest, company *entity.Company) (*entity.Contact, apierror.ErrorResponse) {
	contact, err := f.CRM.FindContactByCNPJOrEmail(ctx, req.CNPJ, req.Email)
	if err != nil {
		log.Warnf("contact lookup for %s failed, creating a new one: %v", req.Email, err)
	}

	if contact == nil {
		contact, err = f.CRM.CreateContact(ctx, req.Name, req.Email, req.CNPJ, company.ID)
		if err != nil || contact == nil {
			log.Errorf("failed to create contact %s (CNPJ %s): %v", req.Email, req.CNPJ, err)
			return nil, apierror.ContactCreateFailedError
		}

		log.Infof("created contact %s linked to company %s", contact.ID, company.ID)
		return contact, nil
	}

	if contact.OrganizationID != company.ID {
		return f.relink(ctx, contact, company), nil
	}
	return contact, nil
}

// relink handles an existing contact that points to another company (or none).
// It never fails the request.
func (f *FormService) relink(ctx context.Context, contact *entity.Contact, company *entity.Company) *entity.Contact {
	if !f.Options.RelinkContacts {
		log.Infof("contact %s is linked to %q instead of company %s, leaving it as is",
			contact.ID, contact.OrganizationID, company.ID)
		return contact
	}

	updated, err := f.CRM.UpdateContactOrganization(ctx, contact.ID, company.ID)
	if err != nil || updated == nil {
		log.Errorf("failed to relink contact %s to company %s: %v", contact.ID, company.ID, err)
		return contact
	}

	log.Infof("relinked contact %s from %q to company %s", contact.ID, contact.OrganizationID, company.ID)
	return updated
}

// companyName picks the name for a company that does not exist yet: the one typed
// in the form, then the registry name (when a registry is configured), then a
// name derived from the contact.
func (f *FormService) companyName(ctx context.Context, req *contract.FormRequest) string {
	if req.CompanyName != nil && *req.CompanyName != "" {
		return *req.CompanyName
	}

	if name, err := f.registryName(ctx, req.CNPJ); err != nil {
		log.Warnf("registry lookup for CNPJ %s failed: %v", req.CNPJ, err)
	} else if name != "" {
		return name
	}
	return DefaultCompanyName(req.Name)
}

var errInvalidRegistryCNPJ = errors.New("cnpj is not valid for registry lookup")

func (f *FormService) registryName(ctx context.Context, cnpj string) (string, error) {
	if f.Registry == nil {
		return "", nil
	}

	digits := utils.NormalizeCNPJ(cnpj)
	if !utils.IsCNPJValid(digits) {
		return "", errInvalidRegistryCNPJ
	}

	company, err := f.Registry.GetByCNPJ(ctx, digits)
	if err != nil {
		return "", err
	}

	log.Debugf("registry: CNPJ %s is %q (%s)", digits, company.DisplayName(), company.RegStatus)
	return company.DisplayName(), nil
}

func DefaultCompanyName(contactName string) string {
	return fmt.Sprintf("Empresa do %s", contactName)
}
