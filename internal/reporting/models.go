package reporting

// CallsSummaryRequest narrows a summary to calls in the given states.
// An empty States slice selects every call.
type CallsSummaryRequest struct {
	States []string `json:"states,omitempty"`
}

// CallsSummary aggregates the latest stored snapshot of each call.
// Disconnect causes are counted after projection, so calls that are still
// live never contribute a cause other than NOT_DISCONNECTED.
type CallsSummary struct {
	TotalCalls int `json:"total_calls"`

	// LiveCalls are DIALING, INCOMING, CALL_WAITING, ACTIVE or ONHOLD.
	LiveCalls  int `json:"live_calls"`
	EndedCalls int `json:"ended_calls"`

	MissedCalls   int `json:"missed_calls"`
	RejectedCalls int `json:"rejected_calls"`
	BusyCalls     int `json:"busy_calls"`
	// DroppedCalls were lost mid-call to signal, service or network preemption.
	DroppedCalls int `json:"dropped_calls"`
	// FailedCalls ended for any other non-hangup reason, such as a barred or
	// invalid number.
	FailedCalls int `json:"failed_calls"`

	ByState map[string]int `json:"by_state"`
	ByCause map[string]int `json:"by_cause"`

	RestrictedNumbers int `json:"restricted_numbers"`
}
