package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/mcoot/tallyledger/internal/model"
)

// consumeLots removes count units from the head of lots, oldest first.
// It works on a copy; lots is never modified. When fewer than count units
// are available it returns ErrCannotRemoveCount.
func consumeLots(lots []model.FreeDrinkLot, count int) ([]model.FreeDrinkLot, decimal.Decimal, error) {
	available := 0
	for _, lot := range lots {
		available += lot.Count
	}
	if available < count {
		return nil, decimal.Zero, model.ErrCannotRemoveCount
	}

	remaining := append([]model.FreeDrinkLot(nil), lots...)
	refund := decimal.Zero
	need := count
	for need > 0 && len(remaining) > 0 {
		head := &remaining[0]
		used := min(need, head.Count)
		refund = refund.Add(head.Price.Mul(decimal.NewFromInt(int64(used))))
		head.Count -= used
		need -= used
		if head.Count == 0 {
			remaining = remaining[1:]
		}
	}
	return remaining, refund, nil
}
