package model

import "time"

// EventType identifies the type of event
type EventType string

const (
	EventLedgerUpdated   EventType = "ledger_updated"
	EventCatalogUpdated  EventType = "catalog_updated"
	EventSettingsUpdated EventType = "settings_updated"
)

// Event is broadcast to display subscribers after a mutation
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Users     []string  `json:"users,omitempty"` // affected users, empty means all
}
