package calls

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// InvalidCallID marks a record whose id has not been assigned.
const InvalidCallID = -1

var (
	// ErrDecode is wrapped by every parcel decoding failure.
	ErrDecode = errors.New("calls: decode failed")

	ErrUnknownDisconnectCause = fmt.Errorf("%w: unknown disconnect cause", ErrDecode)
	ErrInvalidState           = fmt.Errorf("%w: invalid call state", ErrDecode)
	ErrInvalidPresentation    = fmt.Errorf("%w: invalid presentation", ErrDecode)
	ErrShortParcel            = fmt.Errorf("%w: short parcel", ErrDecode)

	ErrNotFound = errors.New("calls: record not found")
)

// Record describes a single call and its observable state.
//
// A Record is a flat value owned by whatever layer tracks calls; it performs no
// transition checks and is not safe for concurrent mutation.
type Record struct {
	callID               int
	number               string
	state                State
	numberPresentation   Presentation
	cnapNamePresentation Presentation
	cnapName             string
	disconnectCause      DisconnectCause
}

// NewRecord returns a record for callID with every other field at its default.
func NewRecord(callID int) *Record {
	return &Record{
		callID:               callID,
		state:                StateInvalid,
		numberPresentation:   PresentationAllowed,
		cnapNamePresentation: PresentationAllowed,
		disconnectCause:      CauseNotDisconnected,
	}
}

func (r *Record) CallID() int { return r.callID }

func (r *Record) Number() string     { return r.number }
func (r *Record) SetNumber(n string) { r.number = n }

func (r *Record) State() State { return r.state }

// SetState assigns unconditionally; ordering of states is the owner's concern.
func (r *Record) SetState(s State) { r.state = s }

func (r *Record) NumberPresentation() Presentation     { return r.numberPresentation }
func (r *Record) SetNumberPresentation(p Presentation) { r.numberPresentation = p }

func (r *Record) CnapNamePresentation() Presentation     { return r.cnapNamePresentation }
func (r *Record) SetCnapNamePresentation(p Presentation) { r.cnapNamePresentation = p }

func (r *Record) CnapName() string     { return r.cnapName }
func (r *Record) SetCnapName(n string) { r.cnapName = n }

// DisconnectCause returns the stored cause only while the call is DISCONNECTED
// or IDLE. In every other state it reports CauseNotDisconnected, whatever was stored.
func (r *Record) DisconnectCause() DisconnectCause {
	if r.state == StateDisconnected || r.state == StateIdle {
		return r.disconnectCause
	}
	return CauseNotDisconnected
}

func (r *Record) SetDisconnectCause(c DisconnectCause) { r.disconnectCause = c }

// Equal compares the logical content of two records, using the projected cause.
func (r *Record) Equal(o *Record) bool {
	if r == nil || o == nil {
		return r == o
	}
	return r.callID == o.callID &&
		r.number == o.number &&
		r.state == o.state &&
		r.numberPresentation == o.numberPresentation &&
		r.cnapNamePresentation == o.cnapNamePresentation &&
		r.cnapName == o.cnapName &&
		r.DisconnectCause() == o.DisconnectCause()
}

func (r *Record) String() string {
	var b strings.Builder
	b.WriteString("callId: ")
	b.WriteString(strconv.Itoa(r.callID))
	b.WriteString(", state: ")
	b.WriteString(r.state.String())
	b.WriteString(", disconnect_cause: ")
	b.WriteString(r.DisconnectCause().String())
	return b.String()
}

// View is the JSON shape of a Record. Enum fields marshal by name, so decoding a
// View rejects anything outside the enumerated sets.
type View struct {
	CallID               int             `json:"call_id" db:"call_id"`
	Number               string          `json:"number" db:"number"`
	State                State           `json:"state" db:"state"`
	NumberPresentation   Presentation    `json:"number_presentation" db:"number_presentation"`
	CnapNamePresentation Presentation    `json:"cnap_name_presentation" db:"cnap_name_presentation"`
	CnapName             string          `json:"cnap_name" db:"cnap_name"`
	DisconnectCause      DisconnectCause `json:"disconnect_cause" db:"disconnect_cause"`

	Display string `json:"display,omitempty" db:"-"`
}

// View snapshots r with the projected disconnect cause.
func (r *Record) View() View {
	return View{
		CallID:               r.callID,
		Number:               r.number,
		State:                r.state,
		NumberPresentation:   r.numberPresentation,
		CnapNamePresentation: r.cnapNamePresentation,
		CnapName:             r.cnapName,
		DisconnectCause:      r.DisconnectCause(),
		Display:              r.String(),
	}
}

// Record builds a record from v. Zero presentations fall back to ALLOWED.
func (v View) Record() *Record {
	r := NewRecord(v.CallID)
	r.number = v.Number
	r.state = v.State
	if v.NumberPresentation != 0 {
		r.numberPresentation = v.NumberPresentation
	}
	if v.CnapNamePresentation != 0 {
		r.cnapNamePresentation = v.CnapNamePresentation
	}
	r.cnapName = v.CnapName
	r.disconnectCause = v.DisconnectCause
	return r
}
