package handler

import (
	"net/http"
	"slices"

	"github.com/mcoot/tallyledger/internal/api/middleware"
	"github.com/mcoot/tallyledger/internal/api/request"
	"github.com/mcoot/tallyledger/internal/api/response"
	"github.com/mcoot/tallyledger/internal/services/ledger"
)

// SessionHandler handles PIN and public-device session endpoints
type SessionHandler struct {
	ledger *ledger.Service
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(ledgerService *ledger.Service) *SessionHandler {
	return &SessionHandler{ledger: ledgerService}
}

// SetPin handles POST /api/v1/pins
func (h *SessionHandler) SetPin(w http.ResponseWriter, r *http.Request) {
	var req request.PinRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if req.User == "" {
		WriteError(w, NewInvalidRequestError("user is required"))
		return
	}

	if err := h.ledger.SetPin(r.Context(), middleware.MustGetActor(r.Context()), req.User, req.Pin); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}

// Login handles POST /api/v1/sessions/login. A wrong PIN is reported as
// success=false, not as an error.
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if req.User == "" {
		WriteError(w, NewInvalidRequestError("user is required"))
		return
	}

	actor := middleware.MustGetActor(r.Context())
	ok, err := h.ledger.Login(actor.Identity, req.User, req.Pin)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.Login{Success: ok})
}

// Logout handles POST /api/v1/sessions/logout
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.ledger.Logout(middleware.MustGetActor(r.Context()).Identity)
	response.NoContent(w)
}

// PublicDevice handles GET /api/v1/public-devices/me
func (h *SessionHandler) PublicDevice(w http.ResponseWriter, r *http.Request) {
	actor := middleware.MustGetActor(r.Context())
	public := slices.Contains(h.ledger.Settings().PublicDevices, actor.Name)
	response.JSON(w, http.StatusOK, response.PublicDevice{Name: actor.Name, Public: public})
}
