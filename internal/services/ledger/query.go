package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/mcoot/tallyledger/internal/model"
)

// AmountDue computes what user owes:
//
//	total = Σ count × price
//	total -= free allowance, floored at 0   (not for the cash user)
//	total -= credit
//
// Credit is subtracted after the floor, so it can push the result below 0.
func (s *Service) AmountDue(user string) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, err := s.accountLocked(user)
	if err != nil {
		return decimal.Zero, err
	}
	return s.amountDueLocked(account), nil
}

func (s *Service) amountDueLocked(account *model.Account) decimal.Decimal {
	total := s.catalog.Value(account.Counts)
	if account.Name != s.settings.CashUserName {
		total = total.Sub(s.settings.FreeAmount)
		if total.IsNegative() {
			total = decimal.Zero
		}
	}
	return total.Sub(account.Credit).Round(2)
}

// AmountsDue returns the amount due of every user, sorted case-insensitively
func (s *Service) AmountsDue() []model.AmountDue {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.AmountDue, 0, len(s.accounts))
	for _, name := range s.sortedUsersLocked() {
		out = append(out, model.AmountDue{
			Name:   name,
			Role:   s.roleLocked(name),
			Amount: s.amountDueLocked(s.accounts[name]),
		})
	}
	return out
}

// Account returns a copy of the ledger state of user
func (s *Service) Account(user string) (*model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, err := s.accountLocked(user)
	if err != nil {
		return nil, err
	}
	return account.Clone(), nil
}

// Users returns all user names sorted case-insensitively
func (s *Service) Users() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedUsersLocked()
}

// FreeLots returns a copy of the lot queue of drink
func (s *Service) FreeLots(drink string) []model.FreeDrinkLot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.FreeDrinkLot(nil), s.freeLots[drink]...)
}

// Settings returns the current runtime settings including role lists
func (s *Service) Settings() model.Settings {
	s.mu.Lock()
	settings := s.settings
	s.mu.Unlock()
	settings.Admins = s.gate.Admins()
	settings.PublicDevices = s.gate.PublicDevices()
	return settings
}

// RoleOf classifies name
func (s *Service) RoleOf(name string) model.Role {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roleLocked(name)
}

func (s *Service) roleLocked(name string) model.Role {
	switch {
	case name == s.settings.CashUserName:
		return model.RoleCash
	case name == s.settings.PriceListUserName:
		return model.RolePriceList
	case s.gate.IsAdmin(name):
		return model.RoleAdmin
	default:
		return model.RoleRegular
	}
}

// Catalog returns the drinks currently on the price list
func (s *Service) Catalog() []model.DrinkType {
	return s.catalog.Drinks()
}
