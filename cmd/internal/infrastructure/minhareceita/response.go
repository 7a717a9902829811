package minhareceita

import (
	"crmsync/cmd/internal/domain/entity"
	"strings"
)

type companyResponse struct {
	CNPJ               string `json:"cnpj"`
	LegalName          string `json:"razao_social"`
	TradeName          string `json:"nome_fantasia"`
	LegalNature        string `json:"natureza_juridica"`
	RegistrationStatus string `json:"descricao_situacao_cadastral"`
}

func (c *companyResponse) ToDomain() *entity.RegistryCompany {
	return &entity.RegistryCompany{
		CNPJ:        c.CNPJ,
		LegalName:   strings.TrimSpace(c.LegalName),
		TradeName:   strings.TrimSpace(c.TradeName),
		LegalNature: c.LegalNature,
		RegStatus:   translateStatus(c.RegistrationStatus),
	}
}

func translateStatus(status string) entity.RegStatus {
	switch strings.ToUpper(status) {
	case "ATIVA":
		return entity.StatusActive
	case "BAIXADA":
		return entity.StatusClosed
	case "SUSPENSA":
		return entity.StatusSuspended
	case "INAPTA":
		return entity.StatusUnfit
	default:
		return entity.StatusUnknown
	}
}
