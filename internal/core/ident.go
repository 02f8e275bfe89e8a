package core

import (
	"fmt"

	"github.com/google/uuid"
)

// NewID returns a globally unique transaction identifier. IDs are opaque and
// immutable once assigned.
func NewID() string {
	return uuid.NewString()
}

// TransactionCode builds the human-readable "TRX-YYMMDD-NNN" code from the
// creation date and a 1-based ordinal. The date part is the creation day, not
// the attributed sale date. The ordinal is zero-padded to three digits and
// grows unbounded past 999.
//
// The caller derives the ordinal from the collection size at creation time,
// so codes are display labels, not identity: a delete-then-add cycle on the
// same day can repeat a code. The ID is the only identity key.
func TransactionCode(ordinal int, createdAt Date) string {
	return fmt.Sprintf("TRX-%s-%03d", createdAt.Format("060102"), ordinal)
}
