package request

import "github.com/shopspring/decimal"

// BookingRequest is the request body for adding or removing drinks
type BookingRequest struct {
	User    string `json:"user"`
	Drink   string `json:"drink"`
	Count   int    `json:"count,omitempty"`
	Free    bool   `json:"free,omitempty"`
	Comment string `json:"comment,omitempty"`
}

// AdjustRequest is the request body for setting a count directly
type AdjustRequest struct {
	User  string `json:"user"`
	Drink string `json:"drink"`
	Count int    `json:"count"`
}

// ResetRequest is the request body for resetting counters. An empty user
// resets everyone.
type ResetRequest struct {
	User string `json:"user,omitempty"`
}

// CreditRequest is the request body for the credit commands
type CreditRequest struct {
	User   string          `json:"user"`
	Amount decimal.Decimal `json:"amount"`
}

// PinRequest is the request body for setting a PIN. An empty pin clears it.
type PinRequest struct {
	User string `json:"user"`
	Pin  string `json:"pin"`
}

// LoginRequest is the request body for a public-device login
type LoginRequest struct {
	User string `json:"user"`
	Pin  string `json:"pin"`
}

// ExportRequest is the request body for an export. Zero values fall back
// to the configured policy of the cadence.
type ExportRequest struct {
	Cadence  string `json:"cadence,omitempty"`
	Interval int    `json:"interval,omitempty"`
	Keep     int    `json:"keep,omitempty"`
}

// PriceRequest is the request body for adding or editing a drink
type PriceRequest struct {
	Price decimal.Decimal `json:"price"`
	Icon  string          `json:"icon,omitempty"`
}

// UserRequest is the request body for adding a user
type UserRequest struct {
	Name string `json:"name"`
}

// AmountRequest is the request body for the free amount
type AmountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// CurrencyRequest is the request body for the currency symbol
type CurrencyRequest struct {
	Currency string `json:"currency"`
}

// FreeDrinksRequest is the request body for switching free drinks
type FreeDrinksRequest struct {
	Enabled      bool   `json:"enabled"`
	Confirmation string `json:"confirmation,omitempty"`
}

// ConfirmRequest is the request body for destructive commands
type ConfirmRequest struct {
	Confirmation string `json:"confirmation"`
}
