package audit

import "time"

// Event is an immutable, append-only journal record of a call snapshot write.
//
// Invariants:
// - Events are never updated or deleted.
// - call_id is always a real call id.
// - actor and ip capture are best-effort; do not block call writes on audit failures.
type Event struct {
	ID   string    `json:"id" db:"id"`
	Type EventType `json:"type" db:"type"`

	// OperatorID is the authenticated operator causing the event.
	OperatorID string `json:"operator_id,omitempty" db:"operator_id"`
	Role       string `json:"role,omitempty" db:"role"`
	IPAddress  string `json:"ip_address,omitempty" db:"ip_address"`

	CallID int `json:"call_id" db:"call_id"`
	// State and DisconnectCause are labels, copied so the journal stays readable
	// even if the record is later overwritten.
	State           string `json:"state,omitempty" db:"state"`
	DisconnectCause string `json:"disconnect_cause,omitempty" db:"disconnect_cause"`

	Message   string    `json:"message,omitempty" db:"message"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type EventType string

const (
	EventTypeCallSaved     EventType = "call_saved"
	EventTypeParcelDecoded EventType = "parcel_decoded"
)
