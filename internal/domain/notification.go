package domain

// UnreadCount is the badge shown to a principal: unseen requests plus unseen
// contracts on their side.
type UnreadCount struct {
	Total     int `json:"total_nao_lidas"`
	Requests  int `json:"solicitacoes"`
	Contracts int `json:"contratos"`
}
