package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/mcoot/tallyledger/internal/model"
	"github.com/mcoot/tallyledger/internal/services/auditlog"
)

// AddDrink books count drinks for req.User. Free drinks are booked against
// the cash user and queued as a lot at the current price.
func (s *Service) AddDrink(ctx context.Context, actor model.Actor, req model.BookingRequest) (model.BookingResult, error) {
	if err := s.gate.Check(actor, req.User); err != nil {
		return model.BookingResult{}, err
	}
	count := max(req.Count, 1)

	s.mu.Lock()
	var (
		result model.BookingResult
		rec    record
		err    error
	)
	if req.Free {
		result, rec, err = s.addFreeLocked(actor, req, count)
	} else {
		result, rec, err = s.addLocked(actor, req, count)
	}
	if err != nil {
		s.mu.Unlock()
		return model.BookingResult{}, err
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.Info("drink added",
		slog.String("actor", actor.Name),
		slog.String("user", result.User),
		slog.String("drink", req.Drink),
		slog.Int("count", count),
		slog.Bool("free", req.Free))
	s.commit(ctx, rec, snap, ledgerEvent(result.User))
	return result, nil
}

func (s *Service) addLocked(actor model.Actor, req model.BookingRequest, count int) (model.BookingResult, record, error) {
	account, err := s.accountLocked(req.User)
	if err != nil {
		return model.BookingResult{}, record{}, err
	}
	account.Counts[req.Drink] += count

	rec := record{change: &auditlog.Change{
		Actor:   actor.Name,
		Action:  auditlog.ActionAddDrink,
		Subject: req.User,
		Items:   []auditlog.Item{{Name: req.Drink, Delta: count}},
	}}
	return model.BookingResult{
		User:  req.User,
		Drink: req.Drink,
		Count: count,
		Total: account.Counts[req.Drink],
	}, rec, nil
}

func (s *Service) addFreeLocked(actor model.Actor, req model.BookingRequest, count int) (model.BookingResult, record, error) {
	if _, err := s.accountLocked(req.User); err != nil {
		return model.BookingResult{}, record{}, err
	}
	if !s.settings.FreeDrinksEnabled {
		return model.BookingResult{}, record{}, model.ErrFreeDrinksDisabled
	}
	price, ok := s.catalog.Price(req.Drink)
	if !ok {
		return model.BookingResult{}, record{}, model.ErrDrinkUnknown
	}
	comment, err := s.checkComment(req.Comment)
	if err != nil {
		return model.BookingResult{}, record{}, err
	}
	cash, ok := s.accounts[s.settings.CashUserName]
	if !ok {
		return model.BookingResult{}, record{}, model.ErrCashUserMissing
	}

	s.freeLots[req.Drink] = append(s.freeLots[req.Drink], model.FreeDrinkLot{Price: price, Count: count})
	cash.Counts[req.Drink] += count

	rec := record{booking: &auditlog.Booking{
		Actor:   actor.Name,
		Items:   []auditlog.Item{{Name: req.Drink, Delta: count}},
		Comment: comment,
	}}
	return model.BookingResult{
		User:  cash.Name,
		Drink: req.Drink,
		Count: count,
		Total: cash.Counts[req.Drink],
	}, rec, nil
}

// RemoveDrink reverses count drinks. Regular removals floor at zero; free
// removals consume the oldest lots first and fail without changes when not
// enough units were booked.
func (s *Service) RemoveDrink(ctx context.Context, actor model.Actor, req model.BookingRequest) (model.BookingResult, error) {
	if err := s.gate.Check(actor, req.User); err != nil {
		return model.BookingResult{}, err
	}
	count := max(req.Count, 1)

	s.mu.Lock()
	var (
		result model.BookingResult
		rec    record
		err    error
	)
	if req.Free {
		result, rec, err = s.removeFreeLocked(actor, req, count)
	} else {
		result, rec, err = s.removeLocked(actor, req, count)
	}
	if err != nil {
		s.mu.Unlock()
		return model.BookingResult{}, err
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.Info("drink removed",
		slog.String("actor", actor.Name),
		slog.String("user", result.User),
		slog.String("drink", req.Drink),
		slog.Int("count", count),
		slog.Bool("free", req.Free),
		slog.String("refund", result.Refund.StringFixed(2)))
	s.commit(ctx, rec, snap, ledgerEvent(result.User))
	return result, nil
}

func (s *Service) removeLocked(actor model.Actor, req model.BookingRequest, count int) (model.BookingResult, record, error) {
	account, err := s.accountLocked(req.User)
	if err != nil {
		return model.BookingResult{}, record{}, err
	}
	account.Counts[req.Drink] = max(account.Counts[req.Drink]-count, 0)

	rec := record{change: &auditlog.Change{
		Actor:   actor.Name,
		Action:  auditlog.ActionRemoveDrink,
		Subject: req.User,
		Items:   []auditlog.Item{{Name: req.Drink, Delta: -count}},
	}}
	return model.BookingResult{
		User:  req.User,
		Drink: req.Drink,
		Count: count,
		Total: account.Counts[req.Drink],
	}, rec, nil
}

func (s *Service) removeFreeLocked(actor model.Actor, req model.BookingRequest, count int) (model.BookingResult, record, error) {
	if _, err := s.accountLocked(req.User); err != nil {
		return model.BookingResult{}, record{}, err
	}
	if !s.settings.FreeDrinksEnabled {
		return model.BookingResult{}, record{}, model.ErrFreeDrinksDisabled
	}
	lots, queued := s.freeLots[req.Drink]
	if !queued && !s.catalog.Has(req.Drink) {
		return model.BookingResult{}, record{}, model.ErrDrinkUnknown
	}
	comment, err := s.checkComment(req.Comment)
	if err != nil {
		return model.BookingResult{}, record{}, err
	}
	cash, ok := s.accounts[s.settings.CashUserName]
	if !ok {
		return model.BookingResult{}, record{}, model.ErrCashUserMissing
	}

	remaining, refund, err := consumeLots(lots, count)
	if err != nil {
		return model.BookingResult{}, record{}, err
	}

	if len(remaining) == 0 {
		delete(s.freeLots, req.Drink)
	} else {
		s.freeLots[req.Drink] = remaining
	}
	cash.Counts[req.Drink] = max(cash.Counts[req.Drink]-count, 0)

	rec := record{booking: &auditlog.Booking{
		Actor:   actor.Name,
		Items:   []auditlog.Item{{Name: req.Drink, Delta: -count}},
		Comment: comment,
	}}
	return model.BookingResult{
		User:   cash.Name,
		Drink:  req.Drink,
		Count:  count,
		Total:  cash.Counts[req.Drink],
		Refund: refund,
	}, rec, nil
}

func (s *Service) checkComment(comment string) (string, error) {
	comment = strings.TrimSpace(comment)
	n := utf8.RuneCountInString(comment)
	if n < s.cfg.CommentMinLength || n > s.cfg.CommentMaxLength {
		return "", model.ErrCommentRequired
	}
	return comment, nil
}

// AdjustCount sets the absolute count of drink for user, floored at zero
func (s *Service) AdjustCount(ctx context.Context, actor model.Actor, user, drink string, count int) (model.BookingResult, error) {
	if err := s.gate.Check(actor, user); err != nil {
		return model.BookingResult{}, err
	}
	count = max(count, 0)

	s.mu.Lock()
	account, err := s.accountLocked(user)
	if err != nil {
		s.mu.Unlock()
		return model.BookingResult{}, err
	}
	previous := account.Counts[drink]
	account.Counts[drink] = count
	snap := s.snapshotLocked()
	s.mu.Unlock()

	rec := record{change: &auditlog.Change{
		Actor:  actor.Name,
		Action: auditlog.ActionAdjustCount,
		Detail: fmt.Sprintf("%s:%s=%d", user, drink, count),
	}}
	s.logger.Info("count adjusted",
		slog.String("actor", actor.Name),
		slog.String("user", user),
		slog.String("drink", drink),
		slog.Int("from", previous),
		slog.Int("to", count))
	s.commit(ctx, rec, snap, ledgerEvent(user))
	return model.BookingResult{User: user, Drink: drink, Count: count, Total: count}, nil
}

// ResetCounters zeroes counts and credit of user, or of every user when user
// is empty. Resetting everyone or the cash user also clears the free-drink
// lots and the drink-booking log.
func (s *Service) ResetCounters(ctx context.Context, actor model.Actor, user string) error {
	if err := s.gate.Check(actor, user); err != nil {
		return err
	}

	s.mu.Lock()
	var targets []string
	if user == "" {
		targets = s.sortedUsersLocked()
	} else {
		if _, err := s.accountLocked(user); err != nil {
			s.mu.Unlock()
			return err
		}
		targets = []string{user}
	}
	for _, name := range targets {
		a := s.accounts[name]
		a.Counts = make(map[string]int)
		a.Credit = decimal.Zero
	}
	clearFree := user == "" || user == s.settings.CashUserName
	if clearFree {
		s.freeLots = make(map[string][]model.FreeDrinkLot)
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	detail := user
	if detail == "" {
		detail = "*"
	}
	rec := record{
		change:        &auditlog.Change{Actor: actor.Name, Action: auditlog.ActionResetCounters, Detail: detail},
		clearBookings: clearFree,
	}
	s.logger.Info("counters reset",
		slog.String("actor", actor.Name),
		slog.String("user", detail),
		slog.Bool("free_drinks_cleared", clearFree))
	s.commit(ctx, rec, snap, ledgerEvent(targets...))
	return nil
}
