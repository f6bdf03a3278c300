package domain

import (
	"strings"
	"time"
)

// DuplicateField identifies which uniqueness constraint an insert violated.
type DuplicateField string

const (
	DuplicateCallerID DuplicateField = "caller_id"
	DuplicatePhone    DuplicateField = "phone"
	// DuplicateUnknown is used when the storage backend reports a
	// uniqueness violation without naming the offending index.
	DuplicateUnknown DuplicateField = "unknown"
)

// DuplicateError reports a storage-level uniqueness violation during insert.
// Callers recover by re-querying the store and answering with whichever
// record actually won.
type DuplicateError struct {
	Field DuplicateField
}

func (e *DuplicateError) Error() string {
	return "participant already exists: duplicate " + string(e.Field)
}

// Participant is one committed registration record. Records are created
// exactly once, never updated, and destroyed only by a full wipe.
type Participant struct {
	// Number is the externally visible participant number: sequential,
	// gap-free within an epoch, reset to 1 by a full wipe.
	Number       int64     `json:"number" bson:"_id"`
	CallerID     int64     `json:"caller_id" bson:"caller_id"`
	Phone        string    `json:"phone" bson:"phone"`
	FirstName    string    `json:"first_name" bson:"first_name"`
	LastName     string    `json:"last_name" bson:"last_name"`
	Consent      bool      `json:"consent" bson:"consent"`
	RegisteredAt time.Time `json:"registered_at" bson:"registered_at"`
}

// FullName returns "FirstName LastName" for list previews and taken-phone
// messages.
func (p Participant) FullName() string {
	return p.FirstName + " " + p.LastName
}

// NormalizePhone strips surrounding and inner whitespace from a raw phone
// payload. Uniqueness is enforced on the normalized form.
func NormalizePhone(raw string) string {
	return strings.ReplaceAll(strings.TrimSpace(raw), " ", "")
}
