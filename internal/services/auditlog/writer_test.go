package auditlog

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/tallyledger/internal/dependencies/mocks"
	"github.com/mcoot/tallyledger/internal/testutil"
)

type WriterSuite struct {
	suite.Suite
	dir    string
	clock  *mocks.MockClock
	writer *Writer
}

func TestWriterSuite(t *testing.T) {
	suite.Run(t, new(WriterSuite))
}

func (s *WriterSuite) SetupTest() {
	s.dir = s.T().TempDir()
	loc := testutil.Berlin(s.T())
	s.clock = mocks.NewMockClock(time.Date(2025, 9, 14, 1, 9, 30, 0, loc))
	s.writer = New(Config{Dir: s.dir, Location: loc}, s.clock, testutil.NopLogger())
}

func (s *WriterSuite) changeRows() [][]string {
	rows, err := ReadRows(filepath.Join(s.dir, "price_list", "price_list_2025.csv"))
	s.Require().NoError(err)
	return rows
}

func (s *WriterSuite) bookingRows() [][]string {
	rows, err := ReadRows(filepath.Join(s.dir, "free_drinks", "free_drinks_2025.csv"))
	s.Require().NoError(err)
	return rows
}

func userDrink(user, drink string, delta int) Change {
	return Change{
		Actor:   user,
		Action:  ActionAddDrink,
		Subject: user,
		Items:   []Item{{Name: drink, Delta: delta}},
	}
}

// Change log

func (s *WriterSuite) TestGroupDrinksSameMinute() {
	s.Require().NoError(s.writer.LogChange(userDrink("Robin Zimmermann", "Bier", 1)))
	s.Require().NoError(s.writer.LogChange(userDrink("Robin Zimmermann", "Limo", 1)))
	s.Require().NoError(s.writer.LogChange(userDrink("Robin Zimmermann", "Wasser", 1)))

	rows := s.changeRows()
	s.Require().Len(rows, 2)
	s.Equal([]string{"Time", "User", "Action", "Details"}, rows[0])
	s.Equal([]string{
		"2025-09-14T01:09",
		"Robin Zimmermann",
		"add_drink",
		"Robin Zimmermann:Bier+1,Limo+1,Wasser+1",
	}, rows[1])
}

func (s *WriterSuite) TestAggregateSameDrink() {
	for i := 0; i < 4; i++ {
		s.Require().NoError(s.writer.LogChange(userDrink("Robin Zimmermann", "Bier", 1)))
	}

	rows := s.changeRows()
	s.Require().Len(rows, 2)
	s.Equal("Robin Zimmermann:Bier+4", rows[1][3])
}

func (s *WriterSuite) TestSignsKeptSeparate() {
	s.Require().NoError(s.writer.LogChange(userDrink("Alice", "Bier", 2)))
	s.Require().NoError(s.writer.LogChange(userDrink("Alice", "Bier", -1)))

	s.Equal("Alice:Bier+2,Bier-1", s.changeRows()[1][3])
}

func (s *WriterSuite) TestDifferentActionNewRow() {
	s.Require().NoError(s.writer.LogChange(userDrink("Robin Zimmermann", "Bier", 1)))
	c := userDrink("Robin Zimmermann", "Bier", 1)
	c.Action = ActionRemoveDrink
	s.Require().NoError(s.writer.LogChange(c))

	rows := s.changeRows()
	s.Require().Len(rows, 3)
	s.Equal("add_drink", rows[1][2])
	s.Equal("remove_drink", rows[2][2])
}

func (s *WriterSuite) TestNextMinuteNewRow() {
	s.Require().NoError(s.writer.LogChange(userDrink("Alice", "Bier", 1)))
	s.clock.Advance(time.Minute)
	s.Require().NoError(s.writer.LogChange(userDrink("Alice", "Bier", 1)))

	rows := s.changeRows()
	s.Require().Len(rows, 3)
	s.Equal("2025-09-14T01:09", rows[1][0])
	s.Equal("2025-09-14T01:10", rows[2][0])
}

func (s *WriterSuite) TestOnlyLastRowMerges() {
	s.Require().NoError(s.writer.LogChange(userDrink("Alice", "Bier", 1)))
	s.Require().NoError(s.writer.LogChange(userDrink("Bob", "Bier", 1)))
	s.Require().NoError(s.writer.LogChange(userDrink("Alice", "Limo", 1)))

	rows := s.changeRows()
	s.Require().Len(rows, 4)
	s.Equal("Alice:Limo+1", rows[3][3])
}

func (s *WriterSuite) TestDifferentPrefixConcatenates() {
	s.Require().NoError(s.writer.LogChange(Change{Actor: "Admin", Action: ActionEditDrink, Detail: "Bier:1.6->1.7"}))
	s.Require().NoError(s.writer.LogChange(Change{Actor: "Admin", Action: ActionEditDrink, Detail: "Limo:1.2->1.3"}))

	rows := s.changeRows()
	s.Require().Len(rows, 2)
	s.Equal("Bier:1.6->1.7,Limo:1.2->1.3", rows[1][3])
}

func (s *WriterSuite) TestUnparsableSamePrefixConcatenates() {
	s.Require().NoError(s.writer.LogChange(Change{Actor: "Admin", Action: ActionEditDrink, Detail: "Bier:1.6->1.7"}))
	s.Require().NoError(s.writer.LogChange(Change{Actor: "Admin", Action: ActionEditDrink, Detail: "Bier:1.7->1.8"}))

	s.Equal("Bier:1.6->1.7,Bier:1.7->1.8", s.changeRows()[1][3])
}

func (s *WriterSuite) TestYearlyFiles() {
	s.Require().NoError(s.writer.LogChange(userDrink("Alice", "Bier", 1)))
	s.clock.Set(time.Date(2026, 1, 1, 0, 0, 0, 0, testutil.Berlin(s.T())))
	s.Require().NoError(s.writer.LogChange(userDrink("Alice", "Bier", 1)))

	_, err := os.Stat(filepath.Join(s.dir, "price_list", "price_list_2026.csv"))
	s.NoError(err)
	s.Len(s.changeRows(), 2)
}

func (s *WriterSuite) TestTimestampUsesConfiguredZone() {
	s.clock.Set(time.Date(2025, 9, 13, 23, 9, 59, 0, time.UTC))
	s.Require().NoError(s.writer.LogChange(userDrink("Alice", "Bier", 1)))

	s.Equal("2025-09-14T01:09", s.changeRows()[1][0])
}

func (s *WriterSuite) TestFileFormat() {
	s.Require().NoError(s.writer.LogChange(userDrink("Alice", "Bier", 1)))

	data, err := os.ReadFile(filepath.Join(s.dir, "price_list", "price_list_2025.csv"))
	s.Require().NoError(err)
	s.Equal("Time;User;Action;Details\r\n2025-09-14T01:09;Alice;add_drink;Alice:Bier+1\r\n", string(data))
}

func (s *WriterSuite) TestConcurrentWritesNotLost() {
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.writer.LogChange(userDrink("Alice", "Bier", 1))
		}()
	}
	wg.Wait()

	rows := s.changeRows()
	s.Require().Len(rows, 2)
	s.Equal("Alice:Bier+20", rows[1][3])
}

// Booking log

func (s *WriterSuite) TestBookingHeaderAndRow() {
	err := s.writer.LogBooking(Booking{Actor: "Alice", Items: []Item{{Name: "Bier", Delta: 2}}, Comment: "Geburtstag"})
	s.Require().NoError(err)

	rows := s.bookingRows()
	s.Require().Len(rows, 2)
	s.Equal([]string{"Uhrzeit", "Name", "Getränke mit Anzahl", "Kommentar"}, rows[0])
	s.Equal([]string{"2025-09-14T01:09", "Alice", "Bier ×2", "Geburtstag"}, rows[1])
}

func (s *WriterSuite) TestBookingMergeSortsByDrink() {
	_ = s.writer.LogBooking(Booking{Actor: "Alice", Items: []Item{{Name: "Limo", Delta: 1}}, Comment: "Feier"})
	_ = s.writer.LogBooking(Booking{Actor: "Alice", Items: []Item{{Name: "Bier", Delta: 2}}, Comment: "Feier"})
	_ = s.writer.LogBooking(Booking{Actor: "Alice", Items: []Item{{Name: "Bier", Delta: 1}}, Comment: "Feier"})

	rows := s.bookingRows()
	s.Require().Len(rows, 2)
	s.Equal("Bier ×3, Limo ×1", rows[1][2])
}

func (s *WriterSuite) TestBookingMergeDropsZeroEntries() {
	_ = s.writer.LogBooking(Booking{Actor: "Alice", Items: []Item{{Name: "Bier", Delta: 2}, {Name: "Limo", Delta: 1}}, Comment: "Feier"})
	_ = s.writer.LogBooking(Booking{Actor: "Alice", Items: []Item{{Name: "Limo", Delta: -1}}, Comment: "Feier"})

	rows := s.bookingRows()
	s.Require().Len(rows, 2)
	s.Equal("Bier ×2", rows[1][2])
}

func (s *WriterSuite) TestBookingFullyReversedRemovesRow() {
	_ = s.writer.LogBooking(Booking{Actor: "Alice", Items: []Item{{Name: "Bier", Delta: 1}}, Comment: "Feier"})
	_ = s.writer.LogBooking(Booking{Actor: "Alice", Items: []Item{{Name: "Bier", Delta: -1}}, Comment: "Feier"})

	rows := s.bookingRows()
	s.Len(rows, 1)
}

func (s *WriterSuite) TestBookingEditedRowNotMerged() {
	_ = s.writer.LogBooking(Booking{Actor: "Alice", Items: []Item{{Name: "Bier", Delta: 2}}, Comment: "Feier"})
	path := s.writer.BookingPath(2025)
	raw, err := os.ReadFile(path)
	s.Require().NoError(err)
	edited := strings.Replace(string(raw), "Bier ×2", "Bier ×2, zwei Limo", 1)
	s.Require().NoError(os.WriteFile(path, []byte(edited), 0o644))

	s.Require().NoError(s.writer.LogBooking(Booking{Actor: "Alice", Items: []Item{{Name: "Bier", Delta: 1}}, Comment: "Feier"}))

	rows := s.bookingRows()
	s.Require().Len(rows, 3)
	s.Equal("Bier ×2, zwei Limo", rows[1][2])
	s.Equal("Bier ×1", rows[2][2])
}

func (s *WriterSuite) TestBookingDifferentCommentNewRow() {
	_ = s.writer.LogBooking(Booking{Actor: "Alice", Items: []Item{{Name: "Bier", Delta: 1}}, Comment: "Feier"})
	_ = s.writer.LogBooking(Booking{Actor: "Alice", Items: []Item{{Name: "Bier", Delta: 1}}, Comment: "Grillen"})

	s.Len(s.bookingRows(), 3)
}

func (s *WriterSuite) TestBookingUnmatchedRemovalAppendsNegative() {
	_ = s.writer.LogBooking(Booking{Actor: "Alice", Items: []Item{{Name: "Bier", Delta: 1}}, Comment: "Feier"})
	s.clock.Advance(time.Minute)
	_ = s.writer.LogBooking(Booking{Actor: "Alice", Items: []Item{{Name: "Bier", Delta: -1}}, Comment: "Feier"})

	rows := s.bookingRows()
	s.Require().Len(rows, 3)
	s.Equal("Bier ×-1", rows[2][2])
}

func (s *WriterSuite) TestCommentWithDelimiterIsQuoted() {
	_ = s.writer.LogBooking(Booking{Actor: "Alice", Items: []Item{{Name: "Bier", Delta: 1}}, Comment: "a;b"})
	_ = s.writer.LogBooking(Booking{Actor: "Alice", Items: []Item{{Name: "Bier", Delta: 1}}, Comment: "a;b"})

	rows := s.bookingRows()
	s.Require().Len(rows, 2)
	s.Equal("a;b", rows[1][3])
	s.Equal("Bier ×2", rows[1][2])
}

func (s *WriterSuite) TestClearBookings() {
	_ = s.writer.LogBooking(Booking{Actor: "Alice", Items: []Item{{Name: "Bier", Delta: 1}}, Comment: "Feier"})
	_ = s.writer.LogChange(userDrink("Alice", "Bier", 1))

	s.Require().NoError(s.writer.ClearBookings())

	_, err := os.Stat(s.writer.BookingPath(2025))
	s.True(os.IsNotExist(err))
	_, err = os.Stat(s.writer.ChangePath(2025))
	s.NoError(err)
}

func (s *WriterSuite) TestClearBookingsWithoutDirectory() {
	s.NoError(s.writer.ClearBookings())
}

func (s *WriterSuite) TestUnwritableDirectoryReturnsError() {
	blocker := filepath.Join(s.dir, "blocked")
	s.Require().NoError(os.WriteFile(blocker, []byte("x"), 0o644))
	w := New(Config{Dir: blocker, Location: testutil.Berlin(s.T())}, s.clock, testutil.NopLogger())

	s.Error(w.LogChange(userDrink("Alice", "Bier", 1)))
}
