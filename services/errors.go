package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a keyed record does not exist
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyRevoked is returned when removing a staff login that has already been removed
	ErrAlreadyRevoked = errors.New("record already removed from system")
	// ErrAlreadyGivenAway is returned when a food donation has already gone to a recipient
	ErrAlreadyGivenAway = errors.New("food item already given away")
)

// DuplicateKeyError represents a primary key collision on insert; the caller may resubmit with a fresh key
type DuplicateKeyError struct {
	Table string
	Key   string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("%s already holds key %s, please try again", e.Table, e.Key)
}

// ReferentialIntegrityError represents a delete refused because other tables still reference the key
type ReferentialIntegrityError struct {
	Table        string
	Key          string
	ReferencedBy []string
}

func (e *ReferentialIntegrityError) Error() string {
	return fmt.Sprintf("%s %s is in use by other tables (%s)", e.Table, e.Key, strings.Join(e.ReferencedBy, ", "))
}

// Authentication failure codes
const (
	AuthNotFound           = "NOT_FOUND"
	AuthRevoked            = "REVOKED"
	AuthBadCredential      = "BAD_CREDENTIAL"
	AuthInsufficientAccess = "INSUFFICIENT_ACCESS"
)

// AuthError represents a failed authentication or authorization
type AuthError struct {
	Code string
}

var (
	ErrUnknownStaff       = &AuthError{Code: AuthNotFound}
	ErrRevoked            = &AuthError{Code: AuthRevoked}
	ErrBadCredential      = &AuthError{Code: AuthBadCredential}
	ErrInsufficientAccess = &AuthError{Code: AuthInsufficientAccess}
)

func (e *AuthError) Error() string {
	return "authentication failed: " + strings.ToLower(e.Code)
}

// Is matches any AuthError with the same code
func (e *AuthError) Is(target error) bool {
	t, ok := target.(*AuthError)
	return ok && t.Code == e.Code
}

// UserMessage is the text shown to the person at the keyboard. Unknown IDs and wrong
// passwords read the same so the message does not reveal which one was wrong.
func (e *AuthError) UserMessage() string {
	switch e.Code {
	case AuthRevoked:
		return "User has no access rights"
	case AuthInsufficientAccess:
		return "Insufficient access level"
	default:
		return "Incorrect username or password"
	}
}

// StockUnavailableError represents an attempt to take more units of an item than are in stock
type StockUnavailableError struct {
	ItemID    string
	Requested int
	Available int
}

func (e *StockUnavailableError) Error() string {
	return fmt.Sprintf("item %s not in stock: requested %d, available %d", e.ItemID, e.Requested, e.Available)
}

// isDuplicateKey checks for a unique violation (works with both PostgreSQL and SQLite)
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "duplicate") ||
		strings.Contains(errMsg, "unique constraint")
}
