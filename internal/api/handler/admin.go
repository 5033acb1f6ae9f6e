package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/tallyledger/internal/api/apierr"
	"github.com/mcoot/tallyledger/internal/api/middleware"
	"github.com/mcoot/tallyledger/internal/api/request"
	"github.com/mcoot/tallyledger/internal/api/response"
	"github.com/mcoot/tallyledger/internal/services/backup"
	"github.com/mcoot/tallyledger/internal/services/ledger"
)

// AdminHandler handles catalog, settings, role and maintenance endpoints
type AdminHandler struct {
	ledger   *ledger.Service
	exporter *backup.Exporter
	policies backup.Policies
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(ledgerService *ledger.Service, exporter *backup.Exporter, policies backup.Policies) *AdminHandler {
	return &AdminHandler{
		ledger:   ledgerService,
		exporter: exporter,
		policies: policies,
	}
}

// Catalog handles GET /api/v1/catalog
func (h *AdminHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.CatalogFromModel(h.ledger.Catalog()))
}

// SetPrice handles PUT /api/v1/catalog/{drink}
func (h *AdminHandler) SetPrice(w http.ResponseWriter, r *http.Request) {
	var req request.PriceRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	change, err := h.ledger.SetPrice(r.Context(), middleware.MustGetActor(r.Context()), mux.Vars(r)["drink"], req.Price, req.Icon)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PriceChange{
		Change: change.Kind.String(),
		Drink:  response.Drink{Name: change.New.Name, Price: change.New.Price, Icon: change.New.Icon},
	})
}

// DeleteDrink handles DELETE /api/v1/catalog/{drink}
func (h *AdminHandler) DeleteDrink(w http.ResponseWriter, r *http.Request) {
	if err := h.ledger.DeleteDrink(r.Context(), middleware.MustGetActor(r.Context()), mux.Vars(r)["drink"]); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}

// Settings handles GET /api/v1/settings
func (h *AdminHandler) Settings(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.SettingsFromModel(h.ledger.Settings()))
}

// SetFreeAmount handles PUT /api/v1/settings/free-amount
func (h *AdminHandler) SetFreeAmount(w http.ResponseWriter, r *http.Request) {
	var req request.AmountRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	if err := h.ledger.SetFreeAmount(r.Context(), middleware.MustGetActor(r.Context()), req.Amount); err != nil {
		WriteError(w, err)
		return
	}

	h.Settings(w, r)
}

// SetCurrency handles PUT /api/v1/settings/currency
func (h *AdminHandler) SetCurrency(w http.ResponseWriter, r *http.Request) {
	var req request.CurrencyRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if req.Currency == "" {
		WriteError(w, NewInvalidRequestError("currency is required"))
		return
	}

	if err := h.ledger.SetCurrency(r.Context(), middleware.MustGetActor(r.Context()), req.Currency); err != nil {
		WriteError(w, err)
		return
	}

	h.Settings(w, r)
}

// SetFreeDrinks handles PUT /api/v1/settings/free-drinks
func (h *AdminHandler) SetFreeDrinks(w http.ResponseWriter, r *http.Request) {
	var req request.FreeDrinksRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	err := h.ledger.SetFreeDrinksEnabled(r.Context(), middleware.MustGetActor(r.Context()), req.Enabled, req.Confirmation)
	if err != nil {
		WriteError(w, err)
		return
	}

	h.Settings(w, r)
}

// Admins handles GET /api/v1/admins
func (h *AdminHandler) Admins(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.Admins{Admins: response.SettingsFromModel(h.ledger.Settings()).Admins})
}

// GrantAdmin handles PUT /api/v1/admins/{name}
func (h *AdminHandler) GrantAdmin(w http.ResponseWriter, r *http.Request) {
	h.setAdmin(w, r, true)
}

// RevokeAdmin handles DELETE /api/v1/admins/{name}
func (h *AdminHandler) RevokeAdmin(w http.ResponseWriter, r *http.Request) {
	h.setAdmin(w, r, false)
}

func (h *AdminHandler) setAdmin(w http.ResponseWriter, r *http.Request, admin bool) {
	if err := h.ledger.SetAdmin(r.Context(), middleware.MustGetActor(r.Context()), mux.Vars(r)["name"], admin); err != nil {
		WriteError(w, err)
		return
	}
	response.NoContent(w)
}

// AddPublicDevice handles PUT /api/v1/public-devices/{name}
func (h *AdminHandler) AddPublicDevice(w http.ResponseWriter, r *http.Request) {
	h.setPublicDevice(w, r, true)
}

// RemovePublicDevice handles DELETE /api/v1/public-devices/{name}
func (h *AdminHandler) RemovePublicDevice(w http.ResponseWriter, r *http.Request) {
	h.setPublicDevice(w, r, false)
}

func (h *AdminHandler) setPublicDevice(w http.ResponseWriter, r *http.Request, public bool) {
	if err := h.ledger.SetPublicDevice(r.Context(), middleware.MustGetActor(r.Context()), mux.Vars(r)["name"], public); err != nil {
		WriteError(w, err)
		return
	}
	response.NoContent(w)
}

// Purge handles POST /api/v1/purge
func (h *AdminHandler) Purge(w http.ResponseWriter, r *http.Request) {
	var req request.ConfirmRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	if err := h.ledger.PurgeAll(r.Context(), middleware.MustGetActor(r.Context()), req.Confirmation); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}

// Export handles POST /api/v1/export
func (h *AdminHandler) Export(w http.ResponseWriter, r *http.Request) {
	var req request.ExportRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	cadence := backup.Manual
	if req.Cadence != "" {
		c, err := backup.ParseCadence(req.Cadence)
		if err != nil {
			WriteError(w, NewInvalidRequestError(err.Error()))
			return
		}
		cadence = c
	}
	if req.Interval < 0 || req.Keep < 0 {
		WriteError(w, NewInvalidRequestError("interval and keep must not be negative"))
		return
	}

	// An explicit export always writes; interval and keep override the
	// configured policy of the cadence.
	policy := h.policies.For(cadence)
	policy.Enabled = true
	if req.Interval > 0 {
		policy.Interval = req.Interval
	}
	if req.Keep > 0 {
		policy.Keep = req.Keep
	}

	result, err := h.exporter.ExportCsv(r.Context(), middleware.MustGetActor(r.Context()), cadence, policy)
	if err != nil {
		// A zero result means the run was rejected before touching disk.
		if result.Cadence == "" {
			WriteError(w, err)
		} else {
			WriteError(w, apierr.NewInternalError())
		}
		return
	}

	response.JSON(w, http.StatusOK, response.ExportFromResult(result))
}
