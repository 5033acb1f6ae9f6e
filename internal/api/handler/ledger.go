package handler

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/mcoot/tallyledger/internal/api/middleware"
	"github.com/mcoot/tallyledger/internal/api/request"
	"github.com/mcoot/tallyledger/internal/api/response"
	"github.com/mcoot/tallyledger/internal/model"
	"github.com/mcoot/tallyledger/internal/services/ledger"
)

// LedgerHandler handles drink, credit and user endpoints
type LedgerHandler struct {
	ledger *ledger.Service
}

// NewLedgerHandler creates a new ledger handler
func NewLedgerHandler(ledgerService *ledger.Service) *LedgerHandler {
	return &LedgerHandler{ledger: ledgerService}
}

func decodeBooking(r *http.Request) (model.BookingRequest, error) {
	var req request.BookingRequest
	if err := decode(r, &req); err != nil {
		return model.BookingRequest{}, err
	}
	if req.User == "" {
		return model.BookingRequest{}, NewInvalidRequestError("user is required")
	}
	if req.Drink == "" {
		return model.BookingRequest{}, NewInvalidRequestError("drink is required")
	}
	if req.Count < 0 {
		return model.BookingRequest{}, NewInvalidRequestError("count must not be negative")
	}
	return model.BookingRequest{
		User:    req.User,
		Drink:   req.Drink,
		Count:   req.Count,
		Free:    req.Free,
		Comment: req.Comment,
	}, nil
}

// AddDrink handles POST /api/v1/drinks/add
func (h *LedgerHandler) AddDrink(w http.ResponseWriter, r *http.Request) {
	req, err := decodeBooking(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	result, err := h.ledger.AddDrink(r.Context(), middleware.MustGetActor(r.Context()), req)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.BookingFromModel(result))
}

// RemoveDrink handles POST /api/v1/drinks/remove
func (h *LedgerHandler) RemoveDrink(w http.ResponseWriter, r *http.Request) {
	req, err := decodeBooking(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	result, err := h.ledger.RemoveDrink(r.Context(), middleware.MustGetActor(r.Context()), req)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.BookingFromModel(result))
}

// AdjustCount handles POST /api/v1/drinks/adjust
func (h *LedgerHandler) AdjustCount(w http.ResponseWriter, r *http.Request) {
	var req request.AdjustRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if req.User == "" || req.Drink == "" {
		WriteError(w, NewInvalidRequestError("user and drink are required"))
		return
	}
	if req.Count < 0 {
		WriteError(w, NewInvalidRequestError("count must not be negative"))
		return
	}

	result, err := h.ledger.AdjustCount(r.Context(), middleware.MustGetActor(r.Context()), req.User, req.Drink, req.Count)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.BookingFromModel(result))
}

// ResetCounters handles POST /api/v1/counters/reset
func (h *LedgerHandler) ResetCounters(w http.ResponseWriter, r *http.Request) {
	var req request.ResetRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	if err := h.ledger.ResetCounters(r.Context(), middleware.MustGetActor(r.Context()), req.User); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}

// AddCredit handles POST /api/v1/credit/add
func (h *LedgerHandler) AddCredit(w http.ResponseWriter, r *http.Request) {
	h.credit(w, r, h.ledger.AddCredit)
}

// RemoveCredit handles POST /api/v1/credit/remove
func (h *LedgerHandler) RemoveCredit(w http.ResponseWriter, r *http.Request) {
	h.credit(w, r, h.ledger.RemoveCredit)
}

// SetCredit handles POST /api/v1/credit/set
func (h *LedgerHandler) SetCredit(w http.ResponseWriter, r *http.Request) {
	h.credit(w, r, h.ledger.SetCredit)
}

type creditFunc func(ctx context.Context, actor model.Actor, user string, amount decimal.Decimal) (decimal.Decimal, error)

func (h *LedgerHandler) credit(w http.ResponseWriter, r *http.Request, fn creditFunc) {
	var req request.CreditRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if req.User == "" {
		WriteError(w, NewInvalidRequestError("user is required"))
		return
	}

	credit, err := fn(r.Context(), middleware.MustGetActor(r.Context()), req.User, req.Amount)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.Credit{User: req.User, Credit: credit})
}

// ListUsers handles GET /api/v1/users
func (h *LedgerHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.UsersFromModel(h.ledger.AmountsDue()))
}

// GetUser handles GET /api/v1/users/{name}
func (h *LedgerHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	account, err := h.ledger.Account(name)
	if err != nil {
		WriteError(w, err)
		return
	}
	due, err := h.ledger.AmountDue(name)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.AccountFromModel(account, h.ledger.RoleOf(name), due))
}

// AddUser handles POST /api/v1/users
func (h *LedgerHandler) AddUser(w http.ResponseWriter, r *http.Request) {
	var req request.UserRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		WriteError(w, NewInvalidRequestError("name is required"))
		return
	}

	if err := h.ledger.AddUser(r.Context(), middleware.MustGetActor(r.Context()), req.Name); err != nil {
		WriteError(w, err)
		return
	}

	account, err := h.ledger.Account(req.Name)
	if err != nil {
		WriteError(w, err)
		return
	}
	due, _ := h.ledger.AmountDue(req.Name)
	response.Created(w, "/api/v1/users/"+url.PathEscape(account.Name),
		response.AccountFromModel(account, h.ledger.RoleOf(account.Name), due))
}

// RemoveUser handles DELETE /api/v1/users/{name}
func (h *LedgerHandler) RemoveUser(w http.ResponseWriter, r *http.Request) {
	if err := h.ledger.RemoveUser(r.Context(), middleware.MustGetActor(r.Context()), mux.Vars(r)["name"]); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}
