package http

import (
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"driverent-backend/internal/domain"
	"driverent-backend/internal/logger"
	"driverent-backend/internal/service"
)

// ContractHandler serves the /contratos routes.
type ContractHandler struct {
	svc    service.ContractService
	ips    *ClientIPResolver
	errors errorWriter
}

func NewContractHandler(svc service.ContractService, ips *ClientIPResolver, production bool) *ContractHandler {
	return &ContractHandler{svc: svc, ips: ips, errors: errorWriter{production: production}}
}

// principalAndID resolves the caller and the {id} path variable, writing the
// error response itself when either is missing.
func (h *ContractHandler) principalAndID(w http.ResponseWriter, r *http.Request) (domain.Principal, int32, bool) {
	p, err := PrincipalFromContext(r.Context())
	if err != nil {
		h.errors.write(w, r, err)
		return p, 0, false
	}
	id, err := pathID(r, "id")
	if err != nil {
		h.errors.write(w, r, err)
		return p, 0, false
	}
	return p, id, true
}

func (h *ContractHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	p, err := PrincipalFromContext(r.Context())
	if err != nil {
		h.errors.write(w, r, err)
		return
	}
	list, err := h.svc.ListMyContracts(r.Context(), p, unreadOnly(r))
	if err != nil {
		h.errors.write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *ContractHandler) ListReceived(w http.ResponseWriter, r *http.Request) {
	p, err := PrincipalFromContext(r.Context())
	if err != nil {
		h.errors.write(w, r, err)
		return
	}
	list, err := h.svc.ListReceivedContracts(r.Context(), p, unreadOnly(r))
	if err != nil {
		h.errors.write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *ContractHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, id, ok := h.principalAndID(w, r)
	if !ok {
		return
	}
	c, err := h.svc.GetContract(r.Context(), p, id)
	if err != nil {
		h.errors.write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *ContractHandler) Document(w http.ResponseWriter, r *http.Request) {
	p, id, ok := h.principalAndID(w, r)
	if !ok {
		return
	}
	doc, err := h.svc.GetDocument(r.Context(), p, id)
	if err != nil {
		h.errors.write(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := io.WriteString(w, doc); err != nil {
		logger.FromContext(r.Context()).Warn("Failed to write contract document", "contractID", id, "error", err)
	}
}

func (h *ContractHandler) Revisions(w http.ResponseWriter, r *http.Request) {
	p, id, ok := h.principalAndID(w, r)
	if !ok {
		return
	}
	list, err := h.svc.ListRevisions(r.Context(), p, id)
	if err != nil {
		h.errors.write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *ContractHandler) Edit(w http.ResponseWriter, r *http.Request) {
	p, id, ok := h.principalAndID(w, r)
	if !ok {
		return
	}
	var patch domain.EditPatch
	if err := decodeJSON(w, r, &patch, false); err != nil {
		h.errors.write(w, r, err)
		return
	}
	c, err := h.svc.EditContract(r.Context(), p, id, patch)
	if err != nil {
		h.errors.write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *ContractHandler) Publish(w http.ResponseWriter, r *http.Request) {
	p, id, ok := h.principalAndID(w, r)
	if !ok {
		return
	}
	var patch domain.PublishPatch
	if err := decodeJSON(w, r, &patch, true); err != nil {
		h.errors.write(w, r, err)
		return
	}
	c, err := h.svc.PublishContract(r.Context(), p, id, patch)
	if err != nil {
		h.errors.write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *ContractHandler) Sign(w http.ResponseWriter, r *http.Request) {
	p, id, ok := h.principalAndID(w, r)
	if !ok {
		return
	}
	c, err := h.svc.SignContract(r.Context(), p, id, h.ips.ClientIP(r))
	if err != nil {
		h.errors.write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *ContractHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	p, err := PrincipalFromContext(r.Context())
	if err != nil {
		h.errors.writeBadge(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		h.errors.writeBadge(w, r, err)
		return
	}
	party, err := domain.ParseParty(mux.Vars(r)["party"])
	if err != nil {
		h.errors.writeBadge(w, r, err)
		return
	}

	if err := h.svc.MarkContractRead(r.Context(), p, id, party); err != nil {
		h.errors.writeBadge(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
