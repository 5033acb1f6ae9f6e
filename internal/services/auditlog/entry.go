package auditlog

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Item is a per-name count delta
type Item struct {
	Name  string
	Delta int
}

// Booking is a row of the drink-booking log
type Booking struct {
	Actor   string
	Items   []Item
	Comment string
}

// Change is a row of the price/settings-change log. Subject and Items are
// rendered as "<subject>:<name>±<count>,..."; Detail is used verbatim when
// Items is empty.
type Change struct {
	Actor   string
	Action  string
	Subject string
	Items   []Item
	Detail  string
}

// Actions written to the change log
const (
	ActionAddDrink        = "add_drink"
	ActionRemoveDrink     = "remove_drink"
	ActionAdjustCount     = "adjust_count"
	ActionResetCounters   = "reset_counters"
	ActionAddCredit       = "add_credit"
	ActionRemoveCredit    = "remove_credit"
	ActionSetCredit       = "set_credit"
	ActionEditDrink       = "edit_drink"
	ActionNewDrink        = "new_drink"
	ActionDeleteDrink     = "delete_drink"
	ActionSetFreeAmount   = "set_free_amount"
	ActionSetCurrency     = "set_currency"
	ActionFreeDrinks      = "free_drinks"
	ActionAddAdmin        = "add_admin"
	ActionRemoveAdmin     = "remove_admin"
	ActionAddPublicDevice = "add_public_device"
	ActionRemovePublic    = "remove_public_device"
	ActionAddUser         = "add_user"
	ActionRemoveUser      = "remove_user"
	ActionPurge           = "purge"
	ActionSetPin          = "set_pin"
)

// Drink-booking log details: "Bier ×2, Limo ×1"

const bookingSep = ", "

var bookingItemPattern = regexp.MustCompile(`^(.+) ×(-?\d+)$`)

func formatBookingItems(items []Item) string {
	sorted := append([]Item(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	parts := make([]string, 0, len(sorted))
	for _, it := range sorted {
		parts = append(parts, fmt.Sprintf("%s ×%d", it.Name, it.Delta))
	}
	return strings.Join(parts, bookingSep)
}

// parseBookingItems reports false when any fragment of details is not a
// "<drink> ×<count>" item, e.g. after a manual edit of the log.
func parseBookingItems(details string) ([]Item, bool) {
	if strings.TrimSpace(details) == "" {
		return nil, true
	}
	var items []Item
	for _, part := range strings.Split(details, bookingSep) {
		m := bookingItemPattern.FindStringSubmatch(strings.TrimSpace(part))
		if m == nil {
			return nil, false
		}
		n, err := strconv.Atoi(m[2])
		if err != nil {
			return nil, false
		}
		items = append(items, Item{Name: m[1], Delta: n})
	}
	return items, true
}

// mergeBookingItems adds delta per drink and drops drinks whose net count is 0
func mergeBookingItems(existing, delta []Item) []Item {
	totals := make(map[string]int)
	var order []string
	for _, it := range append(append([]Item(nil), existing...), delta...) {
		if _, ok := totals[it.Name]; !ok {
			order = append(order, it.Name)
		}
		totals[it.Name] += it.Delta
	}
	out := make([]Item, 0, len(order))
	for _, name := range order {
		if totals[name] != 0 {
			out = append(out, Item{Name: name, Delta: totals[name]})
		}
	}
	return out
}

// Change log details: "<subject>:Bier+1,Limo-2"

var changeTokenPattern = regexp.MustCompile(`^(.+?)([+-])(\d+)$`)

type changeToken struct {
	name  string
	sign  byte
	count int
}

func formatChangeTokens(tokens []changeToken) string {
	parts := make([]string, 0, len(tokens))
	for _, t := range tokens {
		parts = append(parts, fmt.Sprintf("%s%c%d", t.name, t.sign, t.count))
	}
	return strings.Join(parts, ",")
}

func itemsToTokens(items []Item) []changeToken {
	tokens := make([]changeToken, 0, len(items))
	for _, it := range items {
		t := changeToken{name: it.Name, sign: '+', count: it.Delta}
		if it.Delta < 0 {
			t.sign = '-'
			t.count = -it.Delta
		}
		tokens = append(tokens, t)
	}
	return tokens
}

func (c Change) details() string {
	if len(c.Items) == 0 {
		return c.Detail
	}
	body := formatChangeTokens(itemsToTokens(c.Items))
	if c.Subject == "" {
		return body
	}
	return c.Subject + ":" + body
}

func parseChangeTokens(body string) ([]changeToken, bool) {
	var tokens []changeToken
	for _, part := range strings.Split(body, ",") {
		m := changeTokenPattern.FindStringSubmatch(strings.TrimSpace(part))
		if m == nil {
			return nil, false
		}
		n, err := strconv.Atoi(m[3])
		if err != nil {
			return nil, false
		}
		tokens = append(tokens, changeToken{name: m[1], sign: m[2][0], count: n})
	}
	return tokens, len(tokens) > 0
}

// mergeChangeDetails merges two detail strings sharing a "<user>:" prefix by
// summing counts per (name, sign) in first-seen order. Anything else is
// joined with a comma.
func mergeChangeDetails(existing, next string) string {
	fallback := existing + "," + next

	prefixA, bodyA, okA := strings.Cut(existing, ":")
	prefixB, bodyB, okB := strings.Cut(next, ":")
	if !okA || !okB || prefixA != prefixB {
		return fallback
	}
	a, ok := parseChangeTokens(bodyA)
	if !ok {
		return fallback
	}
	b, ok := parseChangeTokens(bodyB)
	if !ok {
		return fallback
	}

	type key struct {
		name string
		sign byte
	}
	idx := make(map[key]int)
	var merged []changeToken
	for _, t := range append(a, b...) {
		k := key{t.name, t.sign}
		if i, seen := idx[k]; seen {
			merged[i].count += t.count
			continue
		}
		idx[k] = len(merged)
		merged = append(merged, t)
	}
	return prefixA + ":" + formatChangeTokens(merged)
}
