package contract

// FormRequest is the web form submission.
type FormRequest struct {
	CNPJ        string  `json:"cnpj_contato" validate:"required"`
	Name        string  `json:"nome_contato" validate:"required"`
	Email       string  `json:"email_contato" validate:"required"`
	CompanyName *string `json:"nome_empresa"`
}

type FormResponse struct {
	Message   string `json:"message"`
	ContactID string `json:"contact_id"`
	CompanyID string `json:"company_id"`
}

const FormProcessedMessage = "Formulário processado com sucesso! Contato e empresa vinculados."
