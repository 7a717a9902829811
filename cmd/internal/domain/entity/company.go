package entity

type RegStatus string

const (
	StatusActive    RegStatus = "ACTIVE"
	StatusClosed    RegStatus = "CLOSED"
	StatusSuspended RegStatus = "SUSPENDED"
	StatusUnfit     RegStatus = "UNFIT"
	StatusUnknown   RegStatus = "UNKNOWN"
)

// RegistryCompany is the public registry (Receita Federal) view of a CNPJ.
// It is only read to suggest a name for companies created in the CRM.
type RegistryCompany struct {
	CNPJ        string
	LegalName   string
	TradeName   string
	LegalNature string
	RegStatus   RegStatus
}

// DisplayName prefers the trade name, since that is what people type in forms.
func (r *RegistryCompany) DisplayName() string {
	if r.TradeName != "" {
		return r.TradeName
	}
	return r.LegalName
}
