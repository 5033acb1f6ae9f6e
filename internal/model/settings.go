package model

import "github.com/shopspring/decimal"

// Settings holds engine-wide configuration that admins may change at runtime
type Settings struct {
	Currency          string          `json:"currency"`
	FreeAmount        decimal.Decimal `json:"free_amount"`
	FreeDrinksEnabled bool            `json:"free_drinks_enabled"`
	CashUserName      string          `json:"cash_user_name"`
	PriceListUserName string          `json:"price_list_user_name"`
	Admins            []string        `json:"admins"`
	PublicDevices     []string        `json:"public_devices"`
}

// DefaultSettings returns settings with default names and currency
func DefaultSettings() Settings {
	return Settings{
		Currency:          "€",
		CashUserName:      "Kasse",
		PriceListUserName: "Preisliste",
	}
}

// LedgerSnapshot is the persisted restore image of the ledger
type LedgerSnapshot struct {
	Accounts []*Account                `json:"accounts"`
	FreeLots map[string][]FreeDrinkLot `json:"free_lots"`
	Drinks   []DrinkType               `json:"drinks"`
	Settings Settings                  `json:"settings"`
}
