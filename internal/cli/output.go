package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/mcoot/tallyledger/internal/api/response"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case response.Booking:
		o.printBooking(v)
	case response.Credit:
		fmt.Fprintf(o.w, "Credit of %s: %s\n", v.User, v.Credit.StringFixed(2))
	case response.Account:
		o.printAccount(v)
	case response.Users:
		o.printUsers(v)
	case response.Catalog:
		o.printCatalog(v)
	case response.PriceChange:
		fmt.Fprintf(o.w, "Drink %s %s: %s\n", v.Drink.Name, v.Change, v.Drink.Price.StringFixed(2))
	case response.Settings:
		o.printSettings(v)
	case response.Admins:
		fmt.Fprintf(o.w, "Admins: %s\n", strings.Join(v.Admins, ", "))
	case response.Login:
		if v.Success {
			fmt.Fprintln(o.w, "Logged in")
		} else {
			fmt.Fprintln(o.w, "Wrong PIN")
		}
	case response.Export:
		o.printExport(v)
	case response.Health:
		fmt.Fprintf(o.w, "Status: %s\n", v.Status)
	default:
		o.printJSON(data)
	}
}

func (o *Output) printBooking(b response.Booking) {
	fmt.Fprintf(o.w, "%s: %d x %s (now %d)\n", b.User, b.Count, b.Drink, b.Total)
	if b.Refund.IsPositive() {
		fmt.Fprintf(o.w, "Refund: %s\n", b.Refund.StringFixed(2))
	}
}

func (o *Output) printAccount(a response.Account) {
	fmt.Fprintf(o.w, "User: %s (%s)\n", a.Name, a.Role)
	fmt.Fprintf(o.w, "Credit: %s\n", a.Credit.StringFixed(2))
	fmt.Fprintf(o.w, "Amount due: %s\n", a.AmountDue.StringFixed(2))

	drinks := make([]string, 0, len(a.Counts))
	for d := range a.Counts {
		drinks = append(drinks, d)
	}
	sort.Strings(drinks)
	for _, d := range drinks {
		fmt.Fprintf(o.w, "  %s: %d\n", d, a.Counts[d])
	}
}

func (o *Output) printUsers(u response.Users) {
	tw := tabwriter.NewWriter(o.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tROLE\tDUE")
	for _, user := range u.Users {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", user.Name, user.Role, user.AmountDue.StringFixed(2))
	}
	_ = tw.Flush()
}

func (o *Output) printCatalog(c response.Catalog) {
	tw := tabwriter.NewWriter(o.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DRINK\tPRICE\tICON")
	for _, d := range c.Drinks {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", d.Name, d.Price.StringFixed(2), d.Icon)
	}
	_ = tw.Flush()
}

func (o *Output) printSettings(s response.Settings) {
	fmt.Fprintf(o.w, "Currency: %s\n", s.Currency)
	fmt.Fprintf(o.w, "Free drinks: %t\n", s.FreeDrinksEnabled)
	fmt.Fprintf(o.w, "Free amount: %s\n", s.FreeAmount.StringFixed(2))
	fmt.Fprintf(o.w, "Cash user: %s\n", s.CashUserName)
	fmt.Fprintf(o.w, "Admins: %s\n", strings.Join(s.Admins, ", "))
	fmt.Fprintf(o.w, "Public devices: %s\n", strings.Join(s.PublicDevices, ", "))
}

func (o *Output) printExport(e response.Export) {
	if e.Written {
		fmt.Fprintf(o.w, "Wrote %s backup: %s\n", e.Cadence, e.Path)
	} else {
		fmt.Fprintf(o.w, "No %s backup due\n", e.Cadence)
	}
	for _, r := range e.Removed {
		fmt.Fprintf(o.w, "Removed: %s\n", r)
	}
}
