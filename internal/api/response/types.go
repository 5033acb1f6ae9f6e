package response

import (
	"github.com/shopspring/decimal"

	"github.com/mcoot/tallyledger/internal/model"
	"github.com/mcoot/tallyledger/internal/services/backup"
)

// Booking is the result of a drink command
type Booking struct {
	User   string          `json:"user"`
	Drink  string          `json:"drink"`
	Count  int             `json:"count"`
	Total  int             `json:"total"`
	Refund decimal.Decimal `json:"refund"`
}

// BookingFromModel converts model.BookingResult
func BookingFromModel(r model.BookingResult) Booking {
	return Booking{
		User:   r.User,
		Drink:  r.Drink,
		Count:  r.Count,
		Total:  r.Total,
		Refund: r.Refund,
	}
}

// Credit is the balance after a credit command
type Credit struct {
	User   string          `json:"user"`
	Credit decimal.Decimal `json:"credit"`
}

// Account is the ledger state of one user
type Account struct {
	Name      string          `json:"name"`
	Role      string          `json:"role"`
	Counts    map[string]int  `json:"counts"`
	Credit    decimal.Decimal `json:"credit"`
	AmountDue decimal.Decimal `json:"amount_due"`
}

// AccountFromModel converts model.Account
func AccountFromModel(a *model.Account, role model.Role, due decimal.Decimal) Account {
	counts := a.Counts
	if counts == nil {
		counts = map[string]int{}
	}
	return Account{
		Name:      a.Name,
		Role:      string(role),
		Counts:    counts,
		Credit:    a.Credit,
		AmountDue: due,
	}
}

// UserSummary is one row of the user list
type UserSummary struct {
	Name      string          `json:"name"`
	Role      string          `json:"role"`
	AmountDue decimal.Decimal `json:"amount_due"`
}

// Users is the user list
type Users struct {
	Users []UserSummary `json:"users"`
}

// UsersFromModel converts the amounts due of all users
func UsersFromModel(dues []model.AmountDue) Users {
	users := make([]UserSummary, len(dues))
	for i, d := range dues {
		users[i] = UserSummary{Name: d.Name, Role: string(d.Role), AmountDue: d.Amount}
	}
	return Users{Users: users}
}

// Drink is a catalog entry
type Drink struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Icon  string          `json:"icon,omitempty"`
}

// Catalog is the price list
type Catalog struct {
	Drinks []Drink `json:"drinks"`
}

// CatalogFromModel converts catalog entries
func CatalogFromModel(drinks []model.DrinkType) Catalog {
	out := make([]Drink, len(drinks))
	for i, d := range drinks {
		out[i] = Drink{Name: d.Name, Price: d.Price, Icon: d.Icon}
	}
	return Catalog{Drinks: out}
}

// PriceChange reports the effect of a price command
type PriceChange struct {
	Change string `json:"change"`
	Drink  Drink  `json:"drink"`
}

// Settings are the runtime settings
type Settings struct {
	Currency          string          `json:"currency"`
	FreeAmount        decimal.Decimal `json:"free_amount"`
	FreeDrinksEnabled bool            `json:"free_drinks_enabled"`
	CashUserName      string          `json:"cash_user_name"`
	PriceListUserName string          `json:"price_list_user_name"`
	Admins            []string        `json:"admins"`
	PublicDevices     []string        `json:"public_devices"`
}

// SettingsFromModel converts model.Settings
func SettingsFromModel(s model.Settings) Settings {
	return Settings{
		Currency:          s.Currency,
		FreeAmount:        s.FreeAmount,
		FreeDrinksEnabled: s.FreeDrinksEnabled,
		CashUserName:      s.CashUserName,
		PriceListUserName: s.PriceListUserName,
		Admins:            nonNil(s.Admins),
		PublicDevices:     nonNil(s.PublicDevices),
	}
}

// Admins is the admin list
type Admins struct {
	Admins []string `json:"admins"`
}

// PublicDevice reports whether the caller is a public device
type PublicDevice struct {
	Name   string `json:"name"`
	Public bool   `json:"public"`
}

// Login is the result of a public-device login
type Login struct {
	Success bool `json:"success"`
}

// Export is the result of an export run
type Export struct {
	Cadence string   `json:"cadence"`
	Path    string   `json:"path,omitempty"`
	Written bool     `json:"written"`
	Removed []string `json:"removed"`
}

// ExportFromResult converts backup.Result
func ExportFromResult(r backup.Result) Export {
	return Export{
		Cadence: string(r.Cadence),
		Path:    r.Path,
		Written: r.Written,
		Removed: nonNil(r.Removed),
	}
}

// Health is the health check response
type Health struct {
	Status string `json:"status"`
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
