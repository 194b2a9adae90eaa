package domain

// ContractSnapshot is the authoritative record of a contract's terms. The
// rendered document is always regenerated from it.
type ContractSnapshot struct {
	Aluguel    SnapshotRental   `json:"aluguel"`
	Locador    SnapshotParty    `json:"locador"`
	Motorista  SnapshotParty    `json:"motorista"`
	Veiculo    SnapshotVehicle  `json:"veiculo"`
	Pagamento  SnapshotPayment  `json:"pagamento"`
	Plataforma SnapshotPlatform `json:"plataforma"`
}

// SnapshotRental holds the rental period and the figures derived from it.
// Dias and ValorTotal are always computed server side.
type SnapshotRental struct {
	ID             int32   `json:"id"`
	DataInicio     string  `json:"data_inicio"`
	DataFim        string  `json:"data_fim"`
	Dias           int     `json:"dias"`
	ValorTotal     float64 `json:"valor_total"`
	LocalRetirada  string  `json:"local_retirada"`
	LocalDevolucao string  `json:"local_devolucao"`
}

type SnapshotParty struct {
	ID       int32  `json:"id"`
	Nome     string `json:"nome"`
	CPF      string `json:"cpf"`
	Email    string `json:"email"`
	Telefone string `json:"telefone"`
	Endereco string `json:"endereco"`
	LegalProfile
}

type SnapshotVehicle struct {
	ID      int32  `json:"id"`
	Ano     int32  `json:"ano"`
	Marca   string `json:"marca"`
	Modelo  string `json:"modelo"`
	Placa   string `json:"placa"`
	Renavam string `json:"renavam"`
	Cor     string `json:"cor"`
}

type SnapshotPayment struct {
	Forma       string  `json:"forma"`
	ValorPorDia float64 `json:"valor_por_dia"`
}

// SnapshotPlatform carries the platform details printed on every contract.
type SnapshotPlatform struct {
	Nome     string `json:"nome"`
	CNPJ     string `json:"cnpj"`
	Banco    string `json:"banco"`
	Agencia  string `json:"agencia"`
	Conta    string `json:"conta"`
	ChavePix string `json:"chave_pix"`
	Foro     string `json:"foro"`
}

type PaymentPatch struct {
	ValorPorDia *float64 `json:"valor_por_dia,omitempty"`
}

type LocationPatch struct {
	LocalRetirada  *string `json:"local_retirada,omitempty"`
	LocalDevolucao *string `json:"local_devolucao,omitempty"`
}

// EditPatch is the whitelist accepted while negotiating. Dates are not
// patchable.
type EditPatch struct {
	Pagamento *PaymentPatch  `json:"pagamento,omitempty"`
	Aluguel   *LocationPatch `json:"aluguel,omitempty"`
}

// PublishPatch is the whitelist accepted when publishing: last-minute
// location changes and, optionally, the daily rate.
type PublishPatch struct {
	Aluguel   *LocationPatch `json:"aluguel,omitempty"`
	Pagamento *PaymentPatch  `json:"pagamento,omitempty"`
}

// ApplyEdit merges p onto s. Leaves present in the patch win.
func (s *ContractSnapshot) ApplyEdit(p EditPatch) {
	s.applyPayment(p.Pagamento)
	s.applyLocations(p.Aluguel)
}

// ApplyPublish merges p onto s. Leaves present in the patch win.
func (s *ContractSnapshot) ApplyPublish(p PublishPatch) {
	s.applyLocations(p.Aluguel)
	s.applyPayment(p.Pagamento)
}

func (s *ContractSnapshot) applyPayment(p *PaymentPatch) {
	if p == nil {
		return
	}
	if p.ValorPorDia != nil {
		s.Pagamento.ValorPorDia = *p.ValorPorDia
	}
}

func (s *ContractSnapshot) applyLocations(p *LocationPatch) {
	if p == nil {
		return
	}
	if p.LocalRetirada != nil {
		s.Aluguel.LocalRetirada = *p.LocalRetirada
	}
	if p.LocalDevolucao != nil {
		s.Aluguel.LocalDevolucao = *p.LocalDevolucao
	}
}
