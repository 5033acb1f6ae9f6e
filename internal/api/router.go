package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/tallyledger/internal/api/handler"
	"github.com/mcoot/tallyledger/internal/api/middleware"
	"github.com/mcoot/tallyledger/internal/api/response"
	basemw "github.com/mcoot/tallyledger/internal/middleware"
	"github.com/mcoot/tallyledger/internal/services/backup"
	"github.com/mcoot/tallyledger/internal/services/ledger"
	"github.com/mcoot/tallyledger/internal/web/sse"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger         *slog.Logger
	Directory      middleware.Resolver
	Ledger         *ledger.Service
	Exporter       *backup.Exporter
	BackupPolicies backup.Policies
	Hub            *sse.Hub
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	ledgerHandler := handler.NewLedgerHandler(cfg.Ledger)
	sessionHandler := handler.NewSessionHandler(cfg.Ledger)
	adminHandler := handler.NewAdminHandler(cfg.Ledger, cfg.Exporter, cfg.BackupPolicies)
	eventsHandler := handler.NewEventsHandler(cfg.Hub)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(basemw.RequestID)
	api.Use(middleware.Recovery(cfg.Logger))
	api.Use(middleware.Logging(cfg.Logger))

	// No identity needed
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	authed := api.NewRoute().Subrouter()
	authed.Use(middleware.Identity(cfg.Directory))

	// Display refresh
	authed.HandleFunc("/events", eventsHandler.Stream).Methods(http.MethodGet)

	// Bookings
	authed.HandleFunc("/drinks/add", ledgerHandler.AddDrink).Methods(http.MethodPost)
	authed.HandleFunc("/drinks/remove", ledgerHandler.RemoveDrink).Methods(http.MethodPost)
	authed.HandleFunc("/drinks/adjust", ledgerHandler.AdjustCount).Methods(http.MethodPost)
	authed.HandleFunc("/counters/reset", ledgerHandler.ResetCounters).Methods(http.MethodPost)

	// Credit
	authed.HandleFunc("/credit/add", ledgerHandler.AddCredit).Methods(http.MethodPost)
	authed.HandleFunc("/credit/remove", ledgerHandler.RemoveCredit).Methods(http.MethodPost)
	authed.HandleFunc("/credit/set", ledgerHandler.SetCredit).Methods(http.MethodPost)

	// Users
	authed.HandleFunc("/users", ledgerHandler.ListUsers).Methods(http.MethodGet)
	authed.HandleFunc("/users", ledgerHandler.AddUser).Methods(http.MethodPost)
	authed.HandleFunc("/users/{name}", ledgerHandler.GetUser).Methods(http.MethodGet)
	authed.HandleFunc("/users/{name}", ledgerHandler.RemoveUser).Methods(http.MethodDelete)

	// PINs and public-device sessions
	authed.HandleFunc("/pins", sessionHandler.SetPin).Methods(http.MethodPost)
	authed.HandleFunc("/sessions/login", sessionHandler.Login).Methods(http.MethodPost)
	authed.HandleFunc("/sessions/logout", sessionHandler.Logout).Methods(http.MethodPost)
	authed.HandleFunc("/public-devices/me", sessionHandler.PublicDevice).Methods(http.MethodGet)

	// Catalog
	authed.HandleFunc("/catalog", adminHandler.Catalog).Methods(http.MethodGet)
	authed.HandleFunc("/catalog/{drink}", adminHandler.SetPrice).Methods(http.MethodPut)
	authed.HandleFunc("/catalog/{drink}", adminHandler.DeleteDrink).Methods(http.MethodDelete)

	// Settings and roles
	authed.HandleFunc("/settings", adminHandler.Settings).Methods(http.MethodGet)
	authed.HandleFunc("/settings/free-amount", adminHandler.SetFreeAmount).Methods(http.MethodPut)
	authed.HandleFunc("/settings/currency", adminHandler.SetCurrency).Methods(http.MethodPut)
	authed.HandleFunc("/settings/free-drinks", adminHandler.SetFreeDrinks).Methods(http.MethodPut)
	authed.HandleFunc("/admins", adminHandler.Admins).Methods(http.MethodGet)
	authed.HandleFunc("/admins/{name}", adminHandler.GrantAdmin).Methods(http.MethodPut)
	authed.HandleFunc("/admins/{name}", adminHandler.RevokeAdmin).Methods(http.MethodDelete)
	authed.HandleFunc("/public-devices/{name}", adminHandler.AddPublicDevice).Methods(http.MethodPut)
	authed.HandleFunc("/public-devices/{name}", adminHandler.RemovePublicDevice).Methods(http.MethodDelete)

	// Maintenance
	authed.HandleFunc("/purge", adminHandler.Purge).Methods(http.MethodPost)
	authed.HandleFunc("/export", adminHandler.Export).Methods(http.MethodPost)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.Health{Status: "ok"})
}
