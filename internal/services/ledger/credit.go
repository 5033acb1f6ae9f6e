package ledger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/mcoot/tallyledger/internal/model"
	"github.com/mcoot/tallyledger/internal/services/auditlog"
)

// AddCredit adds amount to the credit of user. Admin only.
func (s *Service) AddCredit(ctx context.Context, actor model.Actor, user string, amount decimal.Decimal) (decimal.Decimal, error) {
	return s.updateCredit(ctx, actor, user, auditlog.ActionAddCredit, func(c decimal.Decimal) decimal.Decimal {
		return c.Add(amount)
	})
}

// RemoveCredit subtracts amount from the credit of user. Admin only.
func (s *Service) RemoveCredit(ctx context.Context, actor model.Actor, user string, amount decimal.Decimal) (decimal.Decimal, error) {
	return s.updateCredit(ctx, actor, user, auditlog.ActionRemoveCredit, func(c decimal.Decimal) decimal.Decimal {
		return c.Sub(amount)
	})
}

// SetCredit sets the credit of user. Admin only.
func (s *Service) SetCredit(ctx context.Context, actor model.Actor, user string, amount decimal.Decimal) (decimal.Decimal, error) {
	return s.updateCredit(ctx, actor, user, auditlog.ActionSetCredit, func(decimal.Decimal) decimal.Decimal {
		return amount
	})
}

// updateCredit applies fn to the credit of user. Credit is unbounded.
func (s *Service) updateCredit(ctx context.Context, actor model.Actor, user, action string, fn func(decimal.Decimal) decimal.Decimal) (decimal.Decimal, error) {
	if err := s.gate.Check(actor, ""); err != nil {
		return decimal.Zero, err
	}

	s.mu.Lock()
	account, err := s.accountLocked(user)
	if err != nil {
		s.mu.Unlock()
		return decimal.Zero, err
	}
	previous := account.Credit
	account.Credit = fn(previous)
	credit := account.Credit
	snap := s.snapshotLocked()
	s.mu.Unlock()

	rec := record{change: &auditlog.Change{
		Actor:  actor.Name,
		Action: action,
		Detail: fmt.Sprintf("%s:%s->%s", user, previous.StringFixed(2), credit.StringFixed(2)),
	}}
	s.logger.Info("credit updated",
		slog.String("actor", actor.Name),
		slog.String("user", user),
		slog.String("action", action),
		slog.String("credit", credit.StringFixed(2)))
	s.commit(ctx, rec, snap, ledgerEvent(user))
	return credit, nil
}
