package domain

type VehicleStatus string

const (
	VehicleStatusAvailable   VehicleStatus = "disponivel"
	VehicleStatusRented      VehicleStatus = "alugado"
	VehicleStatusMaintenance VehicleStatus = "manutencao"
	VehicleStatusInactive    VehicleStatus = "inativo"
)

type Vehicle struct {
	ID      int32         `json:"id"`
	OwnerID *int32        `json:"proprietario_id,omitempty"`
	Marca   string        `json:"marca"`
	Modelo  string        `json:"modelo"`
	Ano     int32         `json:"ano"`
	Placa   string        `json:"placa"`
	Renavam string        `json:"renavam"`
	Cor     string        `json:"cor"`
	Status  VehicleStatus `json:"status"`
}

// VehicleSummary is the vehicle excerpt joined into request and contract
// listings.
type VehicleSummary struct {
	Marca  string `json:"marca"`
	Modelo string `json:"modelo"`
	Placa  string `json:"placa"`
}

// Party identity as registered at signup. CPF carries the owner's CPF or CNPJ.
type PartyIdentity struct {
	ID       int32  `json:"id"`
	Nome     string `json:"nome"`
	Email    string `json:"email"`
	CPF      string `json:"cpf"`
	Telefone string `json:"telefone"`
}
