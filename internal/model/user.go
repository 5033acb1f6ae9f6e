package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Role classifies a user name
type Role string

const (
	RoleRegular   Role = "regular"
	RoleAdmin     Role = "admin"
	RolePriceList Role = "price_list"
	RoleCash      Role = "cash"
)

// Identity is the host identity issuing a command.
// ID is the host user or device id, Name the person it resolves to.
type Identity struct {
	ID   string
	Name string
}

// Actor is an Identity plus per-call authorisation context
type Actor struct {
	Identity
	PIN    string // optional, used by public devices
	System bool   // internal callers such as the scheduler
}

// SystemActor returns the actor used for internal calls
func SystemActor(name string) Actor {
	return Actor{Identity: Identity{ID: "system", Name: name}, System: true}
}

// Account is the ledger state of a single user
type Account struct {
	Name   string          `json:"name"`
	Counts map[string]int  `json:"counts"`
	Credit decimal.Decimal `json:"credit"`
}

// NewAccount creates an empty account
func NewAccount(name string) *Account {
	return &Account{Name: name, Counts: make(map[string]int)}
}

// Clone returns a deep copy of the account
func (a *Account) Clone() *Account {
	c := &Account{Name: a.Name, Counts: make(map[string]int, len(a.Counts)), Credit: a.Credit}
	for k, v := range a.Counts {
		c.Counts[k] = v
	}
	return c
}

// AmountDue is a computed read-model row
type AmountDue struct {
	Name   string          `json:"name"`
	Role   Role            `json:"role"`
	Amount decimal.Decimal `json:"amount"`
}

// ConfirmationPhrases are accepted for destructive admin actions
var ConfirmationPhrases = []string{"JA ICH WILL", "YES I WANT"}

// IsConfirmed reports whether the phrase matches one of ConfirmationPhrases
func IsConfirmed(phrase string) bool {
	p := strings.ToUpper(strings.TrimSpace(phrase))
	for _, c := range ConfirmationPhrases {
		if p == c {
			return true
		}
	}
	return false
}
