package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"driverent-backend/internal/metrics"
	"driverent-backend/internal/security"
	"driverent-backend/internal/service"
)

// Deps are the collaborators the router wires into its handlers.
type Deps struct {
	Requests     service.RentalRequestService
	Contracts    service.ContractService
	Badges       service.BadgeService
	TokenManager security.TokenManager
	Metrics      *metrics.Metrics
	DB           Pinger
	ClientIP     *ClientIPResolver
	Production   bool
}

// NewRouter registers every route behind the request id, access log and auth
// middlewares.
func NewRouter(d Deps) *mux.Router {
	router := mux.NewRouter()
	router.Use(RequestIDMiddleware, AccessLogMiddleware(d.Metrics), NewAuthMiddleware(d.TokenManager, d.Production).Handler)

	health := NewHealthHandler(d.DB)
	router.HandleFunc("/healthz", health.Healthz).Methods(http.MethodGet)
	if d.Metrics != nil {
		router.Handle("/metrics", promhttp.HandlerFor(d.Metrics.Registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	RegisterRentalRequestRoutes(router, NewRentalRequestHandler(d.Requests, d.Production))
	RegisterContractRoutes(router, NewContractHandler(d.Contracts, d.ClientIP, d.Production))

	notifications := NewNotificationHandler(d.Badges, d.Production)
	router.HandleFunc("/notificacoes/contador", notifications.UnreadCount).Methods(http.MethodGet).Name(badgeRoute)

	return router
}

func RegisterRentalRequestRoutes(router *mux.Router, h *RentalRequestHandler) {
	router.HandleFunc("/solicitacoes", h.Create).Methods(http.MethodPost)
	router.HandleFunc("/solicitacoes/minhas", h.ListMine).Methods(http.MethodGet)
	router.HandleFunc("/solicitacoes/recebidas", h.ListReceived).Methods(http.MethodGet)
	router.HandleFunc("/solicitacoes/{id}/aprovar", h.Approve).Methods(http.MethodPut)
	router.HandleFunc("/solicitacoes/{id}/recusar", h.Refuse).Methods(http.MethodPut)
	router.HandleFunc("/solicitacoes/{id}/mark-read/{party}", h.MarkRead).Methods(http.MethodPatch).Name(badgeRoute + ":solicitacao")
}

func RegisterContractRoutes(router *mux.Router, h *ContractHandler) {
	router.HandleFunc("/contratos/minhas", h.ListMine).Methods(http.MethodGet)
	router.HandleFunc("/contratos/recebidos", h.ListReceived).Methods(http.MethodGet)
	router.HandleFunc("/contratos/{id}", h.Get).Methods(http.MethodGet)
	router.HandleFunc("/contratos/{id}", h.Edit).Methods(http.MethodPut)
	router.HandleFunc("/contratos/{id}/documento", h.Document).Methods(http.MethodGet)
	router.HandleFunc("/contratos/{id}/revisoes", h.Revisions).Methods(http.MethodGet)
	router.HandleFunc("/contratos/{id}/publicar", h.Publish).Methods(http.MethodPost)
	router.HandleFunc("/contratos/{id}/assinar", h.Sign).Methods(http.MethodPost)
	router.HandleFunc("/contratos/{id}/mark-read/{party}", h.MarkRead).Methods(http.MethodPatch).Name(badgeRoute + ":contrato")
}
