package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"driverent-backend/internal/domain"
	"driverent-backend/internal/logger"
)

type errorResponse struct {
	Error    string   `json:"error"`
	Detalhes string   `json:"detalhes,omitempty"`
	Faltando []string `json:"campos_faltando,omitempty"`
}

// badgeErrorResponse is the error body of the badge and mark-read endpoints.
type badgeErrorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

// classify maps an error to its HTTP status and a stable code.
func classify(err error) (int, string) {
	var (
		validation    *domain.ErrValidation
		unprocessable *domain.ErrUnprocessable
		unauthorized  *domain.ErrUnauthorized
		forbidden     *domain.ErrForbidden
		notFound      *domain.ErrNotFound
		conflict      *domain.ErrConflict
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest, "invalid_request"
	case errors.As(err, &unprocessable):
		return http.StatusUnprocessableEntity, "unprocessable"
	case errors.As(err, &unauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.As(err, &forbidden):
		return http.StatusForbidden, "forbidden"
	case errors.As(err, &notFound):
		return http.StatusNotFound, "not_found"
	case errors.As(err, &conflict):
		return http.StatusConflict, "conflict"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

var publicMessages = map[int]string{
	http.StatusBadRequest:          "Requisicao invalida",
	http.StatusUnprocessableEntity: "Dados invalidos para o contrato",
	http.StatusUnauthorized:        "Nao autenticado",
	http.StatusForbidden:           "Acesso negado",
	http.StatusNotFound:            "Recurso nao encontrado",
	http.StatusConflict:            "Operacao incompativel com o estado atual",
	http.StatusInternalServerError: "Erro interno",
}

// errorWriter renders errors for the JSON endpoints. Details are withheld in
// production.
type errorWriter struct {
	production bool
}

func (ew errorWriter) write(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	if status == http.StatusInternalServerError {
		logger.FromContext(r.Context()).Error("Request failed", "path", r.URL.Path, "error", err)
	} else {
		logger.FromContext(r.Context()).Debug("Request rejected", "path", r.URL.Path, "status", status, "code", code, "error", err)
	}

	body := errorResponse{Error: publicMessages[status]}
	if !ew.production {
		body.Detalhes = err.Error()
	}
	var unprocessable *domain.ErrUnprocessable
	if errors.As(err, &unprocessable) {
		body.Faltando = unprocessable.Missing
	}
	writeJSON(w, status, body)
}

func (ew errorWriter) writeBadge(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	if status == http.StatusInternalServerError {
		logger.FromContext(r.Context()).Error("Request failed", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, badgeErrorResponse{OK: false, Error: code})
}
