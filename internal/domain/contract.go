package domain

import "time"

type ContractStatus string

const (
	ContractStatusNegotiating       ContractStatus = "negociando"
	ContractStatusReadyForSignature ContractStatus = "pronto_para_assinatura"
	ContractStatusSigned            ContractStatus = "assinado"
)

// Editable reports whether terms may still change.
func (s ContractStatus) Editable() bool {
	return s == ContractStatusNegotiating
}

// Signable reports whether the driver may sign. Signing straight from
// negotiation is accepted.
func (s ContractStatus) Signable() bool {
	return s == ContractStatusNegotiating || s == ContractStatusReadyForSignature
}

type Contract struct {
	ID           int32            `json:"id"`
	RentalID     int32            `json:"aluguel_id"`
	RequestID    int32            `json:"solicitacao_id"`
	DriverID     int32            `json:"motorista_id"`
	VehicleID    int32            `json:"veiculo_id"`
	Status       ContractStatus   `json:"status"`
	Terms        ContractSnapshot `json:"dados_json"`
	Document     string           `json:"arquivo_html,omitempty"`
	SignedAt     *time.Time       `json:"assinatura_data"`
	SignatureIP  *string          `json:"assinatura_ip"`
	SeenByDriver bool             `json:"visto_por_motorista"`
	SeenByOwner  bool             `json:"visto_por_proprietario"`
	CreatedAt    time.Time        `json:"criado_em"`
	UpdatedAt    time.Time        `json:"atualizado_em"`
	Vehicle      *VehicleSummary  `json:"veiculo,omitempty"`
}

type RevisionAction string

const (
	RevisionActionEdit    RevisionAction = "editar"
	RevisionActionPublish RevisionAction = "publicar"
)

// ContractRevision records one change to a contract's terms.
type ContractRevision struct {
	ID         int32            `json:"id"`
	ContractID int32            `json:"contrato_id"`
	AuthorID   int32            `json:"autor_id"`
	AuthorRole Role             `json:"autor_role"`
	Action     RevisionAction   `json:"acao"`
	Previous   ContractSnapshot `json:"dados_json_anterior"`
	Current    ContractSnapshot `json:"dados_json_novo"`
	CreatedAt  time.Time        `json:"criado_em"`
}

// SignatureEvidence is what the server records when the driver signs.
type SignatureEvidence struct {
	At time.Time
	IP string
}
