package ledger

import (
	"context"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mcoot/tallyledger/internal/model"
	"github.com/mcoot/tallyledger/internal/services/auditlog"
	"github.com/mcoot/tallyledger/internal/services/catalog"
)

// Users

// AddUser creates an empty tally for name. Admin only.
func (s *Service) AddUser(ctx context.Context, actor model.Actor, name string) error {
	if err := s.gate.Check(actor, ""); err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return model.ErrUserUnknown
	}

	s.mu.Lock()
	if name == s.settings.PriceListUserName {
		s.mu.Unlock()
		return model.ErrReservedUserName
	}
	if _, ok := s.accounts[name]; ok {
		s.mu.Unlock()
		return model.ErrUserExists
	}
	s.accounts[name] = model.NewAccount(name)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.Info("user added", slog.String("actor", actor.Name), slog.String("user", name))
	s.commit(ctx, changeRecord(actor, auditlog.ActionAddUser, name), snap, ledgerEvent(name))
	return nil
}

// RemoveUser deletes user together with its ledger state, PIN and sessions.
// Admin only.
func (s *Service) RemoveUser(ctx context.Context, actor model.Actor, name string) error {
	if err := s.gate.Check(actor, ""); err != nil {
		return err
	}

	s.mu.Lock()
	if _, err := s.accountLocked(name); err != nil {
		s.mu.Unlock()
		return err
	}
	delete(s.accounts, name)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if err := s.pins.Remove(ctx, name); err != nil {
		s.logger.Error("failed to remove pin", slog.String("user", name), slog.String("error", err.Error()))
	}
	s.gate.DropUser(name)

	s.logger.Info("user removed", slog.String("actor", actor.Name), slog.String("user", name))
	s.commit(ctx, changeRecord(actor, auditlog.ActionRemoveUser, name), snap, ledgerEvent(name))
	return nil
}

// PurgeAll deletes every user and all free-drink lots. Requires a
// confirmation phrase. Admin only.
func (s *Service) PurgeAll(ctx context.Context, actor model.Actor, confirmation string) error {
	if err := s.gate.Check(actor, ""); err != nil {
		return err
	}
	if !model.IsConfirmed(confirmation) {
		return model.ErrConfirmationRequired
	}

	s.mu.Lock()
	names := s.sortedUsersLocked()
	s.accounts = make(map[string]*model.Account)
	s.freeLots = make(map[string][]model.FreeDrinkLot)
	if s.settings.FreeDrinksEnabled {
		s.ensureCashAccountLocked()
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	for _, name := range names {
		if err := s.pins.Remove(ctx, name); err != nil {
			s.logger.Error("failed to remove pin", slog.String("user", name), slog.String("error", err.Error()))
		}
		s.gate.DropUser(name)
	}

	rec := changeRecord(actor, auditlog.ActionPurge, "*")
	rec.clearBookings = true
	s.logger.Warn("ledger purged", slog.String("actor", actor.Name), slog.Int("users", len(names)))
	s.commit(ctx, rec, snap, ledgerEvent())
	return nil
}

// PINs

// SetPin sets or clears the PIN of user. Users may set their own PIN.
func (s *Service) SetPin(ctx context.Context, actor model.Actor, user, pin string) error {
	if err := s.gate.Check(actor, user); err != nil {
		return err
	}
	s.mu.Lock()
	_, err := s.accountLocked(user)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	if err := s.pins.SetPin(ctx, user, pin); err != nil {
		return err
	}
	// Sessions authenticated with the old PIN end with it
	s.gate.DropUser(user)

	action := "set"
	if pin == "" {
		action = "cleared"
	}
	_ = s.audit.LogChange(auditlog.Change{Actor: actor.Name, Action: auditlog.ActionSetPin, Detail: user + ":" + action})
	return nil
}

// Login authenticates a public device as user
func (s *Service) Login(device model.Identity, user, pin string) (bool, error) {
	return s.gate.Login(device, user, pin)
}

// Logout ends the session of device
func (s *Service) Logout(device model.Identity) {
	s.gate.Logout(device)
}

// Catalog

// SetPrice adds or edits a drink. Admin only. Unchanged prices are not logged.
func (s *Service) SetPrice(ctx context.Context, actor model.Actor, drink string, price decimal.Decimal, icon string) (catalog.Change, error) {
	if err := s.gate.Check(actor, ""); err != nil {
		return catalog.Change{}, err
	}

	s.mu.Lock()
	change, err := s.catalog.SetPrice(drink, price, icon)
	if err != nil || change.Kind == catalog.ChangeNone {
		s.mu.Unlock()
		return change, err
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	var rec record
	switch change.Kind {
	case catalog.ChangeAdded:
		rec = changeRecord(actor, auditlog.ActionNewDrink, change.New.Name+":"+change.New.Price.String())
	default:
		rec = changeRecord(actor, auditlog.ActionEditDrink,
			change.New.Name+":"+change.Old.Price.String()+"->"+change.New.Price.String())
	}
	s.commit(ctx, rec, snap, model.Event{Type: model.EventCatalogUpdated})
	return change, nil
}

// DeleteDrink removes a drink from the price list. Existing counts and lots
// are kept. Admin only.
func (s *Service) DeleteDrink(ctx context.Context, actor model.Actor, drink string) error {
	if err := s.gate.Check(actor, ""); err != nil {
		return err
	}

	s.mu.Lock()
	if _, err := s.catalog.RemoveDrink(drink); err != nil {
		s.mu.Unlock()
		return err
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.commit(ctx, changeRecord(actor, auditlog.ActionDeleteDrink, drink), snap, model.Event{Type: model.EventCatalogUpdated})
	return nil
}

// Settings

// SetFreeAmount sets the allowance subtracted from every regular user. Admin only.
func (s *Service) SetFreeAmount(ctx context.Context, actor model.Actor, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return model.ErrNegativePrice
	}
	return s.updateSettings(ctx, actor, auditlog.ActionSetFreeAmount, func(st *model.Settings) (string, bool, error) {
		if st.FreeAmount.Equal(amount) {
			return "", false, nil
		}
		detail := st.FreeAmount.String() + "->" + amount.String()
		st.FreeAmount = amount
		return detail, true, nil
	})
}

// SetCurrency sets the currency symbol used in exports. Admin only.
func (s *Service) SetCurrency(ctx context.Context, actor model.Actor, currency string) error {
	currency = strings.TrimSpace(currency)
	return s.updateSettings(ctx, actor, auditlog.ActionSetCurrency, func(st *model.Settings) (string, bool, error) {
		if currency == "" || st.Currency == currency {
			return "", false, nil
		}
		detail := st.Currency + "->" + currency
		st.Currency = currency
		return detail, true, nil
	})
}

// SetFreeDrinksEnabled switches the free-drink feature. Turning it off
// requires a confirmation phrase; turning it on creates the cash user.
// Admin only.
func (s *Service) SetFreeDrinksEnabled(ctx context.Context, actor model.Actor, enabled bool, confirmation string) error {
	return s.updateSettings(ctx, actor, auditlog.ActionFreeDrinks, func(st *model.Settings) (string, bool, error) {
		if st.FreeDrinksEnabled == enabled {
			return "", false, nil
		}
		if !enabled && !model.IsConfirmed(confirmation) {
			return "", false, model.ErrConfirmationRequired
		}
		st.FreeDrinksEnabled = enabled
		if enabled {
			s.ensureCashAccountLocked()
			return "on", true, nil
		}
		return "off", true, nil
	})
}

// SetAdmin grants or revokes override rights for name. Admin only.
func (s *Service) SetAdmin(ctx context.Context, actor model.Actor, name string, admin bool) error {
	action := auditlog.ActionAddAdmin
	if !admin {
		action = auditlog.ActionRemoveAdmin
	}
	return s.updateSettings(ctx, actor, action, func(*model.Settings) (string, bool, error) {
		return name, s.gate.SetAdmin(name, admin), nil
	})
}

// SetPublicDevice registers or unregisters name as a public device. Admin only.
func (s *Service) SetPublicDevice(ctx context.Context, actor model.Actor, name string, public bool) error {
	action := auditlog.ActionAddPublicDevice
	if !public {
		action = auditlog.ActionRemovePublic
	}
	return s.updateSettings(ctx, actor, action, func(*model.Settings) (string, bool, error) {
		return name, s.gate.SetPublicDevice(name, public), nil
	})
}

// updateSettings applies fn under the ledger lock. fn reports the audit
// detail and whether anything changed; unchanged settings are not logged.
// An error from fn must leave the settings untouched.
func (s *Service) updateSettings(ctx context.Context, actor model.Actor, action string, fn func(*model.Settings) (string, bool, error)) error {
	if err := s.gate.Check(actor, ""); err != nil {
		return err
	}

	s.mu.Lock()
	detail, changed, err := fn(&s.settings)
	if err != nil || !changed {
		s.mu.Unlock()
		return err
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.Info("settings changed",
		slog.String("actor", actor.Name),
		slog.String("action", action),
		slog.String("detail", detail))
	s.commit(ctx, changeRecord(actor, action, detail), snap, model.Event{Type: model.EventSettingsUpdated})
	return nil
}

func changeRecord(actor model.Actor, action, detail string) record {
	return record{change: &auditlog.Change{Actor: actor.Name, Action: action, Detail: detail}}
}
