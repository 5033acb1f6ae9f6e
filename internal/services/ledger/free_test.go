package ledger

import (
	"strings"

	"github.com/mcoot/tallyledger/internal/model"
	"github.com/mcoot/tallyledger/internal/testutil"
)

func (s *LedgerSuite) seedLots() {
	_, err := s.svc.SetPrice(s.ctx, s.admin, "Bier", testutil.Dec("1.0"), "")
	s.Require().NoError(err)
	_, err = s.svc.AddDrink(s.ctx, s.admin, s.free("Bier", 2))
	s.Require().NoError(err)
	_, err = s.svc.SetPrice(s.ctx, s.admin, "Bier", testutil.Dec("1.5"), "")
	s.Require().NoError(err)
	_, err = s.svc.AddDrink(s.ctx, s.admin, s.free("Bier", 3))
	s.Require().NoError(err)
}

func (s *LedgerSuite) TestFreeDrinkBookedOnCashUser() {
	result, err := s.svc.AddDrink(s.ctx, s.admin, s.free("Bier", 2))
	s.Require().NoError(err)
	s.Equal("Kasse", result.User)
	s.Equal(2, s.count("Kasse", "Bier"))
	s.Equal(0, s.count("Admin", "Bier"))

	lots := s.svc.FreeLots("Bier")
	s.Require().Len(lots, 1)
	s.Equal(2, lots[0].Count)
	s.True(lots[0].Price.Equal(testutil.Dec("1.6")))
}

func (s *LedgerSuite) TestFreeDrinkLogsBooking() {
	_, err := s.svc.AddDrink(s.ctx, s.admin, s.free("Bier", 2))
	s.Require().NoError(err)

	rows := s.bookingRows()
	s.Require().Len(rows, 2)
	s.Equal([]string{"2025-09-14T01:09", "Admin", "Bier ×2", "Geburtstag"}, rows[1])
}

func (s *LedgerSuite) TestFifoConsumption() {
	s.seedLots()

	result, err := s.svc.RemoveDrink(s.ctx, s.admin, s.free("Bier", 4))
	s.Require().NoError(err)
	s.True(result.Refund.Equal(testutil.Dec("5.0")), result.Refund.String())

	lots := s.svc.FreeLots("Bier")
	s.Require().Len(lots, 1)
	s.Equal(1, lots[0].Count)
	s.True(lots[0].Price.Equal(testutil.Dec("1.5")))
	s.Equal(1, s.count("Kasse", "Bier"))
}

func (s *LedgerSuite) TestFifoExactLotRemovesLot() {
	s.seedLots()

	result, err := s.svc.RemoveDrink(s.ctx, s.admin, s.free("Bier", 2))
	s.Require().NoError(err)
	s.True(result.Refund.Equal(testutil.Dec("2")))
	s.Len(s.svc.FreeLots("Bier"), 1)

	_, err = s.svc.RemoveDrink(s.ctx, s.admin, s.free("Bier", 3))
	s.Require().NoError(err)
	s.Empty(s.svc.FreeLots("Bier"))
}

func (s *LedgerSuite) TestFifoInsufficientLeavesStateUnchanged() {
	s.seedLots()
	before := s.svc.FreeLots("Bier")
	beforeCount := s.count("Kasse", "Bier")
	events := s.notifier.count()

	_, err := s.svc.RemoveDrink(s.ctx, s.admin, s.free("Bier", 6))
	s.ErrorIs(err, model.ErrCannotRemoveCount)

	s.Equal(before, s.svc.FreeLots("Bier"))
	s.Equal(beforeCount, s.count("Kasse", "Bier"))
	s.Equal(events, s.notifier.count())
}

func (s *LedgerSuite) TestRemoveFreeWithoutLots() {
	_, err := s.svc.RemoveDrink(s.ctx, s.admin, s.free("Limo", 1))
	s.ErrorIs(err, model.ErrCannotRemoveCount)
}

func (s *LedgerSuite) TestFreeDrinkDisabled() {
	s.Require().NoError(s.svc.SetFreeDrinksEnabled(s.ctx, s.admin, false, "yes i want"))

	_, err := s.svc.AddDrink(s.ctx, s.admin, s.free("Bier", 1))
	s.ErrorIs(err, model.ErrFreeDrinksDisabled)
	_, err = s.svc.RemoveDrink(s.ctx, s.admin, s.free("Bier", 1))
	s.ErrorIs(err, model.ErrFreeDrinksDisabled)
}

func (s *LedgerSuite) TestFreeDrinkUnknownDrink() {
	_, err := s.svc.AddDrink(s.ctx, s.admin, s.free("Mate", 1))
	s.ErrorIs(err, model.ErrDrinkUnknown)
}

func (s *LedgerSuite) TestFreeDrinkComment() {
	req := s.free("Bier", 1)
	for _, comment := range []string{"", "ab", "  ab  ", strings.Repeat("x", 201)} {
		req.Comment = comment
		_, err := s.svc.AddDrink(s.ctx, s.admin, req)
		s.ErrorIs(err, model.ErrCommentRequired, comment)
	}

	req.Comment = strings.Repeat("ü", 200)
	_, err := s.svc.AddDrink(s.ctx, s.admin, req)
	s.NoError(err)
}

func (s *LedgerSuite) TestFreeDrinkCashUserMissing() {
	s.Require().NoError(s.svc.RemoveUser(s.ctx, s.admin, "Kasse"))

	_, err := s.svc.AddDrink(s.ctx, s.admin, s.free("Bier", 1))
	s.ErrorIs(err, model.ErrCashUserMissing)
}

func (s *LedgerSuite) TestFreeDrinkRemovedFromCatalogStillReversible() {
	_, _ = s.svc.AddDrink(s.ctx, s.admin, s.free("Limo", 2))
	s.Require().NoError(s.svc.DeleteDrink(s.ctx, s.admin, "Limo"))

	result, err := s.svc.RemoveDrink(s.ctx, s.admin, s.free("Limo", 2))
	s.Require().NoError(err)
	s.True(result.Refund.Equal(testutil.Dec("2.4")))
}

func (s *LedgerSuite) TestFreeReversalMergesIntoBookingRow() {
	_, _ = s.svc.AddDrink(s.ctx, s.admin, s.free("Bier", 2))
	_, _ = s.svc.RemoveDrink(s.ctx, s.admin, s.free("Bier", 1))

	rows := s.bookingRows()
	s.Require().Len(rows, 2)
	s.Equal("Bier ×1", rows[1][2])
}
