package ledger

import (
	"github.com/mcoot/tallyledger/internal/model"
	"github.com/mcoot/tallyledger/internal/services/catalog"
	"github.com/mcoot/tallyledger/internal/testutil"
)

func (s *LedgerSuite) lastChange() []string {
	rows := s.changeRows()
	return rows[len(rows)-1]
}

// Users

func (s *LedgerSuite) TestAddUser() {
	s.Require().NoError(s.svc.AddUser(s.ctx, s.admin, " Carol "))
	s.Contains(s.svc.Users(), "Carol")
	s.Equal([]string{"2025-09-14T01:09", "Admin", "add_user", "Carol"}, s.lastChange())

	s.ErrorIs(s.svc.AddUser(s.ctx, s.admin, "Carol"), model.ErrUserExists)
	s.ErrorIs(s.svc.AddUser(s.ctx, s.admin, "Preisliste"), model.ErrReservedUserName)
	s.ErrorIs(s.svc.AddUser(s.ctx, s.alice, "Dave"), model.ErrUnauthorized)
}

func (s *LedgerSuite) TestRemoveUserDropsStateAndPin() {
	s.Require().NoError(s.pins.SetPin(s.ctx, "Bob", "1234"))
	_, _ = s.svc.AddDrink(s.ctx, s.bob, s.book("Bob", "Bier", 2))

	s.Require().NoError(s.svc.RemoveUser(s.ctx, s.admin, "Bob"))

	_, err := s.svc.Account("Bob")
	s.ErrorIs(err, model.ErrUserUnknown)
	s.False(s.pins.HasPin("Bob"))
	s.ErrorIs(s.svc.RemoveUser(s.ctx, s.admin, "Bob"), model.ErrUserUnknown)
}

func (s *LedgerSuite) TestPurgeAllRequiresConfirmation() {
	_, _ = s.svc.AddDrink(s.ctx, s.alice, s.book("Alice", "Bier", 2))

	s.ErrorIs(s.svc.PurgeAll(s.ctx, s.admin, "yes"), model.ErrConfirmationRequired)
	s.Equal(2, s.count("Alice", "Bier"))

	s.Require().NoError(s.svc.PurgeAll(s.ctx, s.admin, " ja ich will "))
	s.Equal([]string{"Kasse"}, s.svc.Users())
}

// Catalog

func (s *LedgerSuite) TestSetPriceLogsEdit() {
	change, err := s.svc.SetPrice(s.ctx, s.admin, "Bier", testutil.Dec("1.7"), "")
	s.Require().NoError(err)
	s.Equal(catalog.ChangeEdited, change.Kind)
	s.Equal([]string{"2025-09-14T01:09", "Admin", "edit_drink", "Bier:1.6->1.7"}, s.lastChange())
}

func (s *LedgerSuite) TestSetPriceUnchangedNotLogged() {
	_, err := s.svc.SetPrice(s.ctx, s.admin, "Bier", testutil.Dec("1.6"), "")
	s.Require().NoError(err)
	s.NoFileExists(s.audit.ChangePath(2025))
	s.Equal(0, s.notifier.count())
}

func (s *LedgerSuite) TestSetPriceNewDrink() {
	_, err := s.svc.SetPrice(s.ctx, s.admin, "Mate", testutil.Dec("2"), "mdi:bottle")
	s.Require().NoError(err)
	s.Equal("Mate:2", s.lastChange()[3])
	s.Equal("new_drink", s.lastChange()[2])
}

func (s *LedgerSuite) TestSetPriceRequiresAdmin() {
	_, err := s.svc.SetPrice(s.ctx, s.alice, "Bier", testutil.Dec("0.1"), "")
	s.ErrorIs(err, model.ErrUnauthorized)
}

func (s *LedgerSuite) TestDeleteDrinkKeepsCounts() {
	_, _ = s.svc.AddDrink(s.ctx, s.alice, s.book("Alice", "Limo", 3))

	s.Require().NoError(s.svc.DeleteDrink(s.ctx, s.admin, "Limo"))

	s.Equal(3, s.count("Alice", "Limo"))
	due, _ := s.svc.AmountDue("Alice")
	s.True(due.IsZero())
	s.ErrorIs(s.svc.DeleteDrink(s.ctx, s.admin, "Limo"), model.ErrDrinkUnknown)
	s.Equal("delete_drink", s.lastChange()[2])
}

// Settings

func (s *LedgerSuite) TestSetFreeAmount() {
	s.Require().NoError(s.svc.SetFreeAmount(s.ctx, s.admin, testutil.Dec("0")))
	_, _ = s.svc.AddDrink(s.ctx, s.alice, s.book("Alice", "Bier", 2))

	due, _ := s.svc.AmountDue("Alice")
	s.True(due.Equal(testutil.Dec("3.2")))
	s.ErrorIs(s.svc.SetFreeAmount(s.ctx, s.admin, testutil.Dec("-1")), model.ErrNegativePrice)
}

func (s *LedgerSuite) TestSetCurrency() {
	s.Require().NoError(s.svc.SetCurrency(s.ctx, s.admin, "CHF"))
	s.Equal("CHF", s.svc.Settings().Currency)
	s.Equal("€->CHF", s.lastChange()[3])
}

func (s *LedgerSuite) TestDisableFreeDrinksNeedsConfirmation() {
	s.ErrorIs(s.svc.SetFreeDrinksEnabled(s.ctx, s.admin, false, ""), model.ErrConfirmationRequired)
	s.True(s.svc.Settings().FreeDrinksEnabled)

	s.Require().NoError(s.svc.SetFreeDrinksEnabled(s.ctx, s.admin, false, "JA ICH WILL"))
	s.False(s.svc.Settings().FreeDrinksEnabled)

	// Enabling needs no confirmation
	s.Require().NoError(s.svc.SetFreeDrinksEnabled(s.ctx, s.admin, true, ""))
	s.True(s.svc.Settings().FreeDrinksEnabled)
}

func (s *LedgerSuite) TestDisableFreeDrinksRejectionNotLogged() {
	s.Require().NoError(s.svc.SetFreeDrinksEnabled(s.ctx, s.admin, false, "JA ICH WILL"))
	// Already off: nothing to confirm
	s.NoError(s.svc.SetFreeDrinksEnabled(s.ctx, s.admin, false, ""))
	s.False(s.svc.Settings().FreeDrinksEnabled)

	s.Require().NoError(s.svc.SetFreeDrinksEnabled(s.ctx, s.admin, true, ""))
	before := s.changeRows()
	s.ErrorIs(s.svc.SetFreeDrinksEnabled(s.ctx, s.admin, false, "nein"), model.ErrConfirmationRequired)
	s.Equal(before, s.changeRows())
	s.True(s.svc.Settings().FreeDrinksEnabled)
}

func (s *LedgerSuite) TestEnableFreeDrinksCreatesCashUser() {
	s.Require().NoError(s.svc.SetFreeDrinksEnabled(s.ctx, s.admin, false, "YES I WANT"))
	s.Require().NoError(s.svc.RemoveUser(s.ctx, s.admin, "Kasse"))

	s.Require().NoError(s.svc.SetFreeDrinksEnabled(s.ctx, s.admin, true, ""))
	s.Contains(s.svc.Users(), "Kasse")
}

func (s *LedgerSuite) TestSetAdminAndPublicDevice() {
	s.Require().NoError(s.svc.SetAdmin(s.ctx, s.admin, "Alice", true))
	s.Equal(model.RoleAdmin, s.svc.RoleOf("Alice"))
	s.Equal([]string{"2025-09-14T01:09", "Admin", "add_admin", "Alice"}, s.lastChange())

	// Alice may now book for Bob
	_, err := s.svc.AddDrink(s.ctx, s.alice, s.book("Bob", "Bier", 1))
	s.NoError(err)

	s.Require().NoError(s.svc.SetPublicDevice(s.ctx, s.admin, "Kiosk", false))
	s.NotContains(s.svc.Settings().PublicDevices, "Kiosk")

	s.ErrorIs(s.svc.SetAdmin(s.ctx, s.bob, "Bob", true), model.ErrUnauthorized)
}

func (s *LedgerSuite) TestRoles() {
	s.Equal(model.RoleCash, s.svc.RoleOf("Kasse"))
	s.Equal(model.RolePriceList, s.svc.RoleOf("Preisliste"))
	s.Equal(model.RoleRegular, s.svc.RoleOf("Bob"))
}
