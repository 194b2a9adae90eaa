package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"driverent-backend/internal/domain"
	"driverent-backend/internal/service"
)

type createRequestBody struct {
	VehicleID int32  `json:"veiculo_id"`
	StartDate string `json:"data_inicio"`
	EndDate   string `json:"data_fim"`
}

type refuseRequestBody struct {
	Reason string `json:"motivo"`
}

// RentalRequestHandler serves the /solicitacoes routes.
type RentalRequestHandler struct {
	svc    service.RentalRequestService
	errors errorWriter
}

func NewRentalRequestHandler(svc service.RentalRequestService, production bool) *RentalRequestHandler {
	return &RentalRequestHandler{svc: svc, errors: errorWriter{production: production}}
}

func (h *RentalRequestHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, err := PrincipalFromContext(r.Context())
	if err != nil {
		h.errors.write(w, r, err)
		return
	}
	var body createRequestBody
	if err := decodeJSON(w, r, &body, false); err != nil {
		h.errors.write(w, r, err)
		return
	}

	rq, err := h.svc.CreateRequest(r.Context(), p, body.VehicleID, body.StartDate, body.EndDate)
	if err != nil {
		h.errors.write(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rq)
}

func (h *RentalRequestHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	p, err := PrincipalFromContext(r.Context())
	if err != nil {
		h.errors.write(w, r, err)
		return
	}
	list, err := h.svc.ListMyRequests(r.Context(), p, unreadOnly(r))
	if err != nil {
		h.errors.write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *RentalRequestHandler) ListReceived(w http.ResponseWriter, r *http.Request) {
	p, err := PrincipalFromContext(r.Context())
	if err != nil {
		h.errors.write(w, r, err)
		return
	}
	list, err := h.svc.ListReceivedRequests(r.Context(), p, unreadOnly(r))
	if err != nil {
		h.errors.write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *RentalRequestHandler) Approve(w http.ResponseWriter, r *http.Request) {
	p, err := PrincipalFromContext(r.Context())
	if err != nil {
		h.errors.write(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		h.errors.write(w, r, err)
		return
	}
	var terms domain.ApprovalTerms
	if err := decodeJSON(w, r, &terms, false); err != nil {
		h.errors.write(w, r, err)
		return
	}

	res, err := h.svc.ApproveRequest(r.Context(), p, id, terms)
	if err != nil {
		h.errors.write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *RentalRequestHandler) Refuse(w http.ResponseWriter, r *http.Request) {
	p, err := PrincipalFromContext(r.Context())
	if err != nil {
		h.errors.write(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		h.errors.write(w, r, err)
		return
	}
	var body refuseRequestBody
	if err := decodeJSON(w, r, &body, true); err != nil {
		h.errors.write(w, r, err)
		return
	}

	rq, err := h.svc.RefuseRequest(r.Context(), p, id, body.Reason)
	if err != nil {
		h.errors.write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rq)
}

func (h *RentalRequestHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
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

	if err := h.svc.MarkRequestRead(r.Context(), p, id, party); err != nil {
		h.errors.writeBadge(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
