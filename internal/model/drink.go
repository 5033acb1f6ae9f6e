package model

import "github.com/shopspring/decimal"

// DrinkType is a catalog entry
type DrinkType struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Icon  string          `json:"icon,omitempty"`
}

// FreeDrinkLot is a sponsored booking at the price in effect when it was made
type FreeDrinkLot struct {
	Price decimal.Decimal `json:"price"`
	Count int             `json:"count"`
}

// CloneLots copies a lot queue map
func CloneLots(lots map[string][]FreeDrinkLot) map[string][]FreeDrinkLot {
	out := make(map[string][]FreeDrinkLot, len(lots))
	for drink, queue := range lots {
		out[drink] = append([]FreeDrinkLot(nil), queue...)
	}
	return out
}

// BookingRequest describes an AddDrink or RemoveDrink call
type BookingRequest struct {
	User    string
	Drink   string
	Count   int
	Free    bool
	Comment string
}

// BookingResult reports the effect of a booking
type BookingResult struct {
	User   string          `json:"user"`
	Drink  string          `json:"drink"`
	Count  int             `json:"count"`
	Total  int             `json:"total"`
	Refund decimal.Decimal `json:"refund"`
}
