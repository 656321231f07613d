package services

import (
	"strings"

	"github.com/google/uuid"
)

// Two-letter prefixes identifying the record type of a generated ID
const (
	PrefixStaff        = "ST"
	PrefixDonor        = "DO"
	PrefixCustomer     = "CU"
	PrefixRecipient    = "RE"
	PrefixSupplier     = "SU"
	PrefixItem         = "IT"
	PrefixDonation     = "DN"
	PrefixFoodDonation = "FD"
	PrefixOrder        = "ON"
	PrefixExpenditure  = "EX"
)

const idSuffixLength = 10

// IDGenerator produces prefixed record IDs
type IDGenerator func(prefix string) string

// NewID returns prefix followed by ten upper-case hex digits of a random UUID
func NewID(prefix string) string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + strings.ToUpper(raw[:idSuffixLength])
}
