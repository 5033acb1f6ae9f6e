package catalog

import (
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/mcoot/tallyledger/internal/model"
)

// ChangeKind describes what SetPrice did
type ChangeKind int

const (
	ChangeNone ChangeKind = iota
	ChangeAdded
	ChangeEdited
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeAdded:
		return "added"
	case ChangeEdited:
		return "edited"
	default:
		return "none"
	}
}

// Change reports the effect of SetPrice
type Change struct {
	Kind ChangeKind
	Old  model.DrinkType
	New  model.DrinkType
}

// Catalog maps drink names to prices. Prices are looked up at read time,
// so edits apply to all valuations immediately.
type Catalog struct {
	logger *slog.Logger

	mu     sync.RWMutex
	drinks map[string]model.DrinkType
}

// New creates a catalog seeded with drinks
func New(drinks []model.DrinkType, logger *slog.Logger) *Catalog {
	c := &Catalog{
		logger: logger,
		drinks: make(map[string]model.DrinkType, len(drinks)),
	}
	for _, d := range drinks {
		d.Name = strings.TrimSpace(d.Name)
		if d.Name == "" || d.Price.IsNegative() {
			logger.Warn("skipping invalid drink", slog.String("drink", d.Name))
			continue
		}
		c.drinks[d.Name] = d
	}
	return c
}

// SetPrice adds drink or updates its price and icon
func (c *Catalog) SetPrice(drink string, price decimal.Decimal, icon string) (Change, error) {
	drink = strings.TrimSpace(drink)
	if drink == "" {
		return Change{}, model.ErrInvalidDrinkName
	}
	if price.IsNegative() {
		return Change{}, model.ErrNegativePrice
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	next := model.DrinkType{Name: drink, Price: price, Icon: icon}
	prev, ok := c.drinks[drink]
	if !ok {
		c.drinks[drink] = next
		c.logger.Info("drink added", slog.String("drink", drink), slog.String("price", price.StringFixed(2)))
		return Change{Kind: ChangeAdded, New: next}, nil
	}
	if prev.Price.Equal(price) && prev.Icon == icon {
		return Change{Kind: ChangeNone, Old: prev, New: prev}, nil
	}
	c.drinks[drink] = next
	c.logger.Info("drink edited",
		slog.String("drink", drink),
		slog.String("old_price", prev.Price.String()),
		slog.String("new_price", price.String()))
	return Change{Kind: ChangeEdited, Old: prev, New: next}, nil
}

// RemoveDrink removes drink from future valuation. Existing counts and
// free-drink lots are untouched.
func (c *Catalog) RemoveDrink(drink string) (model.DrinkType, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	d, ok := c.drinks[drink]
	if !ok {
		return model.DrinkType{}, model.ErrDrinkUnknown
	}
	delete(c.drinks, drink)
	c.logger.Info("drink removed", slog.String("drink", drink))
	return d, nil
}

// Price returns the current price of drink
func (c *Catalog) Price(drink string) (decimal.Decimal, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.drinks[drink]
	return d.Price, ok
}

// Has reports whether drink is in the catalog
func (c *Catalog) Has(drink string) bool {
	_, ok := c.Price(drink)
	return ok
}

// Drinks returns all drinks sorted by name
func (c *Catalog) Drinks() []model.DrinkType {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]model.DrinkType, 0, len(c.drinks))
	for _, d := range c.drinks {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Value returns Σ count × price over drinks in the catalog.
// Drinks not in the catalog are valued at 0.
func (c *Catalog) Value(counts map[string]int) decimal.Decimal {
	c.mu.RLock()
	defer c.mu.RUnlock()
	total := decimal.Zero
	for drink, count := range counts {
		if d, ok := c.drinks[drink]; ok {
			total = total.Add(d.Price.Mul(decimal.NewFromInt(int64(count))))
		}
	}
	return total
}

// Replace swaps the whole catalog, used when restoring a snapshot
func (c *Catalog) Replace(drinks []model.DrinkType) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.drinks = make(map[string]model.DrinkType, len(drinks))
	for _, d := range drinks {
		c.drinks[d.Name] = d
	}
}
