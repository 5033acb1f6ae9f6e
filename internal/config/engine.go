package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/shopspring/decimal"

	"github.com/mcoot/tallyledger/internal/model"
	"github.com/mcoot/tallyledger/internal/services/backup"
	"github.com/mcoot/tallyledger/internal/services/directory"
	"github.com/mcoot/tallyledger/internal/services/ledger"
)

// Engine is the initial ledger setup read from the JSON file named by
// TALLY_CONFIG. Runtime changes made through the API are persisted in the
// ledger snapshot and win over this file after the first restart.
type Engine struct {
	Persons           []directory.Entry `json:"persons"`
	Users             []string          `json:"users"`
	Drinks            []model.DrinkType `json:"drinks"`
	Admins            []string          `json:"admins"`
	PublicDevices     []string          `json:"public_devices"`
	Currency          string            `json:"currency"`
	FreeAmount        decimal.Decimal   `json:"free_amount"`
	FreeDrinksEnabled bool              `json:"free_drinks_enabled"`
	CashUserName      string            `json:"cash_user_name"`
	PriceListUserName string            `json:"price_list_user_name"`
	PinIterations     int               `json:"pin_iterations"`
	Backups           *backup.Policies  `json:"backups"`
}

// LoadEngine reads an engine file. An empty path yields an empty engine.
func LoadEngine(path string) (Engine, error) {
	var e Engine
	if path == "" {
		return e, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return e, fmt.Errorf("read engine config: %w", err)
	}
	if err := json.Unmarshal(data, &e); err != nil {
		return e, fmt.Errorf("parse engine config %s: %w", path, err)
	}
	return e, nil
}

// Ledger returns the ledger configuration described by the engine
func (e Engine) Ledger() ledger.Config {
	cfg := ledger.DefaultConfig()
	cfg.Users = e.Users
	if e.Currency != "" {
		cfg.Settings.Currency = e.Currency
	}
	if e.CashUserName != "" {
		cfg.Settings.CashUserName = e.CashUserName
	}
	if e.PriceListUserName != "" {
		cfg.Settings.PriceListUserName = e.PriceListUserName
	}
	cfg.Settings.FreeAmount = e.FreeAmount
	cfg.Settings.FreeDrinksEnabled = e.FreeDrinksEnabled
	cfg.Settings.Admins = e.Admins
	cfg.Settings.PublicDevices = e.PublicDevices
	return cfg
}

// BackupPolicies returns the configured policies or the defaults
func (e Engine) BackupPolicies() backup.Policies {
	if e.Backups == nil {
		return backup.DefaultPolicies()
	}
	return *e.Backups
}
