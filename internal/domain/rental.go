package domain

type RentalStatus string

const (
	RentalStatusApproved          RentalStatus = "aprovado"
	RentalStatusReadyForSignature RentalStatus = "pronto_para_assinatura"
	RentalStatusSigned            RentalStatus = "assinado"
	RentalStatusInProgress        RentalStatus = "em_andamento"
	RentalStatusFinished          RentalStatus = "finalizado"
	RentalStatusCancelled         RentalStatus = "cancelado"
)

// ActiveRentalStatuses are the statuses that block the vehicle's calendar.
var ActiveRentalStatuses = []RentalStatus{
	RentalStatusApproved,
	RentalStatusReadyForSignature,
	RentalStatusSigned,
	RentalStatusInProgress,
}

// Rental is the confirmed booking created when a request is approved.
// Dates are calendar days formatted as yyyy-mm-dd.
type Rental struct {
	ID          int32        `json:"id"`
	DriverID    int32        `json:"motorista_id"`
	VehicleID   int32        `json:"veiculo_id"`
	RequestID   int32        `json:"solicitacao_id"`
	StartDate   string       `json:"data_inicio"`
	EndDate     string       `json:"data_fim"`
	DailyRate   float64      `json:"valor_por_dia"`
	TotalAmount float64      `json:"valor_total"`
	Status      RentalStatus `json:"status"`
	CreatedAt   string       `json:"criado_em"`
}

type RentalRequestStatus string

const (
	RequestStatusPending  RentalRequestStatus = "pendente"
	RequestStatusApproved RentalRequestStatus = "aprovado"
	RequestStatusRefused  RentalRequestStatus = "recusado"
)

type RentalRequest struct {
	ID            int32               `json:"id"`
	DriverID      int32               `json:"motorista_id"`
	VehicleID     int32               `json:"veiculo_id"`
	StartDate     string              `json:"data_inicio"`
	EndDate       string              `json:"data_fim"`
	Status        RentalRequestStatus `json:"status"`
	RefusalReason *string             `json:"motivo_recusa"`
	SeenByDriver  bool                `json:"visto_por_motorista"`
	SeenByOwner   bool                `json:"visto_por_proprietario"`
	CreatedAt     string              `json:"criado_em"`
	Vehicle       *VehicleSummary     `json:"veiculo,omitempty"`
}

// ApprovalTerms are the commercial terms the owner sets when approving a
// request, plus optional legal data for each party.
type ApprovalTerms struct {
	DailyRate      *float64      `json:"valor_por_dia"`
	PaymentMethod  string        `json:"forma_pagamento"`
	PickupLocation string        `json:"local_retirada"`
	ReturnLocation string        `json:"local_devolucao"`
	DriverLegal    *LegalProfile `json:"dados_legais,omitempty"`
	OwnerLegal     *LegalProfile `json:"dados_legais_proprietario,omitempty"`
}

// Validate checks presence only. Rate sign and date parsing are checked
// inside the approval transaction and surface as ErrUnprocessable.
func (t ApprovalTerms) Validate() error {
	if t.DailyRate == nil {
		return &ErrValidation{Field: "valor_por_dia", Message: "is required"}
	}
	if t.PaymentMethod == "" {
		return &ErrValidation{Field: "forma_pagamento", Message: "is required"}
	}
	if t.PickupLocation == "" {
		return &ErrValidation{Field: "local_retirada", Message: "is required"}
	}
	if t.ReturnLocation == "" {
		return &ErrValidation{Field: "local_devolucao", Message: "is required"}
	}
	return nil
}

// ApprovalResult identifies the rows created by an approval.
type ApprovalResult struct {
	RentalID   int32 `json:"aluguel_id"`
	ContractID int32 `json:"contrato_id"`
}
