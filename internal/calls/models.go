package calls

import (
	"fmt"
	"strconv"
)

// State is the observable state of a single call.
//
// The integer values are part of the parcel wire format; do not renumber.
type State int32

const (
	StateInvalid      State = 0
	StateIdle         State = 1
	StateActive       State = 2
	StateIncoming     State = 3
	StateCallWaiting  State = 4
	StateDialing      State = 5
	StateOnHold       State = 6
	StateDisconnected State = 7
)

var stateLabels = map[State]string{
	StateInvalid:      "INVALID",
	StateIdle:         "IDLE",
	StateActive:       "ACTIVE",
	StateIncoming:     "INCOMING",
	StateCallWaiting:  "CALL_WAITING",
	StateDialing:      "DIALING",
	StateOnHold:       "ONHOLD",
	StateDisconnected: "DISCONNECTED",
}

func (s State) String() string {
	if l, ok := stateLabels[s]; ok {
		return l
	}
	return "State(" + strconv.Itoa(int(s)) + ")"
}

// Valid reports whether s is one of the enumerated states.
func (s State) Valid() bool {
	_, ok := stateLabels[s]
	return ok
}

// StateFromInt converts a wire integer into a State, rejecting unknown values.
func StateFromInt(n int32) (State, error) {
	s := State(n)
	if !s.Valid() {
		return StateInvalid, fmt.Errorf("%w: %d", ErrInvalidState, n)
	}
	return s, nil
}

// ParseState looks a state up by its label.
func ParseState(label string) (State, error) {
	for s, l := range stateLabels {
		if l == label {
			return s, nil
		}
	}
	return StateInvalid, fmt.Errorf("%w: %q", ErrInvalidState, label)
}

func (s State) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidState, int32(s))
	}
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(b []byte) error {
	v, err := ParseState(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Presentation controls whether caller-id information may be displayed.
// Values mirror the radio layer presentation codes.
type Presentation int32

const (
	PresentationAllowed    Presentation = 1 // normal
	PresentationRestricted Presentation = 2 // blocked by user
	PresentationUnknown    Presentation = 3 // not specified or unknown by network
	PresentationPayphone   Presentation = 4
)

var presentationLabels = map[Presentation]string{
	PresentationAllowed:    "ALLOWED",
	PresentationRestricted: "RESTRICTED",
	PresentationUnknown:    "UNKNOWN",
	PresentationPayphone:   "PAYPHONE",
}

func (p Presentation) String() string {
	if l, ok := presentationLabels[p]; ok {
		return l
	}
	return "Presentation(" + strconv.Itoa(int(p)) + ")"
}

func (p Presentation) Valid() bool {
	_, ok := presentationLabels[p]
	return ok
}

// PresentationFromInt converts a wire integer into a Presentation, rejecting unknown values.
func PresentationFromInt(n int32) (Presentation, error) {
	p := Presentation(n)
	if !p.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidPresentation, n)
	}
	return p, nil
}

func ParsePresentation(label string) (Presentation, error) {
	for p, l := range presentationLabels {
		if l == label {
			return p, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidPresentation, label)
}

func (p Presentation) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPresentation, int32(p))
	}
	return []byte(p.String()), nil
}

func (p *Presentation) UnmarshalText(b []byte) error {
	v, err := ParsePresentation(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// DisconnectCause is the reason a call ended, as reported by the radio or network layer.
//
// Causes travel over the wire by name, so the declaration order is free to change
// but names are not.
type DisconnectCause int

const (
	CauseNotDisconnected           DisconnectCause = iota // has not yet disconnected
	CauseIncomingMissed                                   // incoming call never answered
	CauseNormal                                           // remote hangup
	CauseLocal                                            // local hangup
	CauseBusy                                             // outgoing call to busy line
	CauseCongestion                                       // outgoing call to congested network
	CauseMMI                                              // not presently used
	CauseInvalidNumber                                    // invalid dial string
	CauseNumberUnreachable                                // cannot reach the peer
	CauseServerUnreachable                                // cannot reach the server
	CauseInvalidCredentials                               // invalid credentials
	CauseOutOfNetwork                                     // calling from out of network is not allowed
	CauseServerError                                      // server error
	CauseTimedOut                                         // client timed out
	CauseLostSignal                                       // lost radio signal
	CauseLimitExceeded                                    // eg GSM ACM limit exceeded
	CauseIncomingRejected                                 // incoming call rejected
	CausePowerOff                                         // radio turned off explicitly
	CauseOutOfService                                     // out of service
	CauseICCError                                         // no ICC, ICC locked, or other ICC error
	CauseCallBarred                                       // blocked by call barring
	CauseFDNBlocked                                       // blocked by fixed dial number
	CauseCSRestricted                                     // restricted all voice access
	CauseCSRestrictedNormal                               // restricted normal voice access
	CauseCSRestrictedEmergency                            // restricted emergency voice access
	CauseUnobtainableNumber                               // unassigned number (3GPP TS 24.008 table 10.5.123)
	CauseCDMALockedUntilPowerCycle                        // MS locked until next power cycle
	CauseCDMADrop                                         // CDMA call dropped
	CauseCDMAIntercept                                    // INTERCEPT order received, MS state idle entered
	CauseCDMAReorder                                      // MS redirected, call cancelled
	CauseCDMASOReject                                     // service option rejection
	CauseCDMARetryOrder                                   // requested service rejected, retry delay set
	CauseCDMAAccessFailure                                // CDMA access attempt failed
	CauseCDMAPreempted                                    // CDMA call preempted
	CauseCDMANotEmergency                                 // not an emergency call
	CauseCDMAAccessBlocked                                // access blocked by CDMA network
	CauseErrorUnspecified                                 // unspecified radio error
	CauseUnknown                                          // does not map to any of the above

	numDisconnectCauses
)

var causeNames = [numDisconnectCauses]string{
	CauseNotDisconnected:           "NOT_DISCONNECTED",
	CauseIncomingMissed:            "INCOMING_MISSED",
	CauseNormal:                    "NORMAL",
	CauseLocal:                     "LOCAL",
	CauseBusy:                      "BUSY",
	CauseCongestion:                "CONGESTION",
	CauseMMI:                       "MMI",
	CauseInvalidNumber:             "INVALID_NUMBER",
	CauseNumberUnreachable:         "NUMBER_UNREACHABLE",
	CauseServerUnreachable:         "SERVER_UNREACHABLE",
	CauseInvalidCredentials:        "INVALID_CREDENTIALS",
	CauseOutOfNetwork:              "OUT_OF_NETWORK",
	CauseServerError:               "SERVER_ERROR",
	CauseTimedOut:                  "TIMED_OUT",
	CauseLostSignal:                "LOST_SIGNAL",
	CauseLimitExceeded:             "LIMIT_EXCEEDED",
	CauseIncomingRejected:          "INCOMING_REJECTED",
	CausePowerOff:                  "POWER_OFF",
	CauseOutOfService:              "OUT_OF_SERVICE",
	CauseICCError:                  "ICC_ERROR",
	CauseCallBarred:                "CALL_BARRED",
	CauseFDNBlocked:                "FDN_BLOCKED",
	CauseCSRestricted:              "CS_RESTRICTED",
	CauseCSRestrictedNormal:        "CS_RESTRICTED_NORMAL",
	CauseCSRestrictedEmergency:     "CS_RESTRICTED_EMERGENCY",
	CauseUnobtainableNumber:        "UNOBTAINABLE_NUMBER",
	CauseCDMALockedUntilPowerCycle: "CDMA_LOCKED_UNTIL_POWER_CYCLE",
	CauseCDMADrop:                  "CDMA_DROP",
	CauseCDMAIntercept:             "CDMA_INTERCEPT",
	CauseCDMAReorder:               "CDMA_REORDER",
	CauseCDMASOReject:              "CDMA_SO_REJECT",
	CauseCDMARetryOrder:            "CDMA_RETRY_ORDER",
	CauseCDMAAccessFailure:         "CDMA_ACCESS_FAILURE",
	CauseCDMAPreempted:             "CDMA_PREEMPTED",
	CauseCDMANotEmergency:          "CDMA_NOT_EMERGENCY",
	CauseCDMAAccessBlocked:         "CDMA_ACCESS_BLOCKED",
	CauseErrorUnspecified:          "ERROR_UNSPECIFIED",
	CauseUnknown:                   "UNKNOWN",
}

// DisconnectCauses returns every enumerated cause in declaration order.
func DisconnectCauses() []DisconnectCause {
	out := make([]DisconnectCause, 0, numDisconnectCauses)
	for c := DisconnectCause(0); c < numDisconnectCauses; c++ {
		out = append(out, c)
	}
	return out
}

func (c DisconnectCause) Valid() bool { return c >= 0 && c < numDisconnectCauses }

func (c DisconnectCause) String() string {
	if !c.Valid() {
		return "DisconnectCause(" + strconv.Itoa(int(c)) + ")"
	}
	return causeNames[c]
}

// ParseDisconnectCause resolves a cause by exact, case-sensitive name.
func ParseDisconnectCause(name string) (DisconnectCause, error) {
	for i, n := range causeNames {
		if n == name {
			return DisconnectCause(i), nil
		}
	}
	return CauseNotDisconnected, fmt.Errorf("%w: %q", ErrUnknownDisconnectCause, name)
}

func (c DisconnectCause) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownDisconnectCause, int(c))
	}
	return []byte(causeNames[c]), nil
}

func (c *DisconnectCause) UnmarshalText(b []byte) error {
	v, err := ParseDisconnectCause(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}
