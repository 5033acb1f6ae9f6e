package model

import "errors"

// Common errors used across the application
var (
	// Permission errors
	ErrUnauthorized         = errors.New("not authorized for this user")
	ErrConfirmationRequired = errors.New("confirmation phrase required")
	ErrIdentityUnknown      = errors.New("identity unknown")

	// Ledger errors
	ErrUserUnknown        = errors.New("user unknown")
	ErrUserExists         = errors.New("user already exists")
	ErrReservedUserName   = errors.New("user name is reserved")
	ErrDrinkUnknown       = errors.New("drink unknown")
	ErrFreeDrinksDisabled = errors.New("free drinks are disabled")
	ErrCommentRequired    = errors.New("comment must be between 3 and 200 characters")
	ErrCashUserMissing    = errors.New("cash user missing")
	ErrCannotRemoveCount  = errors.New("cannot remove more free drinks than booked")

	// Catalog errors
	ErrInvalidDrinkName = errors.New("drink name must not be empty")
	ErrNegativePrice    = errors.New("price must not be negative")

	// Credential errors
	ErrInvalidPin    = errors.New("pin must be exactly 4 digits")
	ErrPinSaveFailed = errors.New("failed to save pin")

	// Storage errors
	ErrSnapshotNotFound = errors.New("ledger snapshot not found")
)
