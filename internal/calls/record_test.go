package calls

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allStates() []State {
	return []State{
		StateInvalid, StateIdle, StateActive, StateIncoming,
		StateCallWaiting, StateDialing, StateOnHold, StateDisconnected,
	}
}

func TestNewRecord_Defaults(t *testing.T) {
	r := NewRecord(InvalidCallID)
	assert.Equal(t, -1, r.CallID())
	assert.Equal(t, "", r.Number())
	assert.Equal(t, StateInvalid, r.State())
	assert.Equal(t, PresentationAllowed, r.NumberPresentation())
	assert.Equal(t, PresentationAllowed, r.CnapNamePresentation())
	assert.Equal(t, "", r.CnapName())
	assert.Equal(t, CauseNotDisconnected, r.DisconnectCause())
}

func TestDisconnectCause_ProjectedOutsideTerminalStates(t *testing.T) {
	for _, s := range allStates() {
		for _, c := range DisconnectCauses() {
			r := NewRecord(1)
			r.SetDisconnectCause(c)
			r.SetState(s)

			want := CauseNotDisconnected
			if s == StateDisconnected || s == StateIdle {
				want = c
			}
			require.Equal(t, want, r.DisconnectCause(), "state=%s cause=%s", s, c)
		}
	}
}

func TestSetState_AcceptsAnyValue(t *testing.T) {
	r := NewRecord(1)
	r.SetState(State(42))
	assert.Equal(t, State(42), r.State())
	assert.False(t, r.State().Valid())
	assert.Equal(t, "callId: 1, state: State(42), disconnect_cause: NOT_DISCONNECTED", r.String())
}

func TestRecord_String(t *testing.T) {
	r := NewRecord(3)
	r.SetState(StateDisconnected)
	r.SetDisconnectCause(CauseBusy)
	assert.Equal(t, "callId: 3, state: DISCONNECTED, disconnect_cause: BUSY", r.String())

	r.SetState(StateOnHold)
	assert.Equal(t, "callId: 3, state: ONHOLD, disconnect_cause: NOT_DISCONNECTED", r.String())
}

func TestStateLabels_CoverEveryState(t *testing.T) {
	want := []string{"INVALID", "IDLE", "ACTIVE", "INCOMING", "CALL_WAITING", "DIALING", "ONHOLD", "DISCONNECTED"}
	for i, s := range allStates() {
		assert.Equal(t, int32(i), int32(s))
		assert.Equal(t, want[i], s.String())
		parsed, err := ParseState(want[i])
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}
}

func TestDisconnectCauses_NamesAreUniqueAndParse(t *testing.T) {
	causes := DisconnectCauses()
	require.Len(t, causes, 38)
	assert.Equal(t, "NOT_DISCONNECTED", causes[0].String())
	assert.Equal(t, "UNKNOWN", causes[len(causes)-1].String())

	seen := map[string]bool{}
	for _, c := range causes {
		name := c.String()
		require.False(t, seen[name], "duplicate name %s", name)
		seen[name] = true

		got, err := ParseDisconnectCause(name)
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}
}

func TestParseDisconnectCause_IsExact(t *testing.T) {
	for _, name := range []string{"busy", "Busy", " BUSY", "BUSY ", "", "HUNG_UP"} {
		_, err := ParseDisconnectCause(name)
		require.Error(t, err, name)
		assert.ErrorIs(t, err, ErrUnknownDisconnectCause)
		assert.ErrorIs(t, err, ErrDecode)
	}
}

func TestFromInt_RejectsOutOfRange(t *testing.T) {
	_, err := StateFromInt(8)
	assert.ErrorIs(t, err, ErrInvalidState)
	_, err = StateFromInt(-1)
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = PresentationFromInt(0)
	assert.ErrorIs(t, err, ErrInvalidPresentation)
	_, err = PresentationFromInt(5)
	assert.ErrorIs(t, err, ErrInvalidPresentation)

	p, err := PresentationFromInt(4)
	require.NoError(t, err)
	assert.Equal(t, PresentationPayphone, p)
}

func TestView_JSONUsesNames(t *testing.T) {
	r := NewRecord(7)
	r.SetNumber("+15551234567")
	r.SetState(StateIdle)
	r.SetNumberPresentation(PresentationRestricted)
	r.SetDisconnectCause(CauseCDMADrop)

	b, err := json.Marshal(r.View())
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"call_id": 7,
		"number": "+15551234567",
		"state": "IDLE",
		"number_presentation": "RESTRICTED",
		"cnap_name_presentation": "ALLOWED",
		"cnap_name": "",
		"disconnect_cause": "CDMA_DROP",
		"display": "callId: 7, state: IDLE, disconnect_cause: CDMA_DROP"
	}`, string(b))

	var v View
	require.NoError(t, json.Unmarshal(b, &v))
	assert.True(t, r.Equal(v.Record()))
}

func TestView_JSONRejectsUnknownNames(t *testing.T) {
	var v View
	assert.Error(t, json.Unmarshal([]byte(`{"call_id":1,"state":"RINGING"}`), &v))
	assert.Error(t, json.Unmarshal([]byte(`{"call_id":1,"disconnect_cause":"HUNG_UP"}`), &v))
	assert.Error(t, json.Unmarshal([]byte(`{"call_id":1,"number_presentation":"HIDDEN"}`), &v))
}

func TestView_MissingPresentationsDefaultToAllowed(t *testing.T) {
	var v View
	require.NoError(t, json.Unmarshal([]byte(`{"call_id":2,"state":"ACTIVE"}`), &v))
	r := v.Record()
	assert.Equal(t, PresentationAllowed, r.NumberPresentation())
	assert.Equal(t, PresentationAllowed, r.CnapNamePresentation())
	assert.Equal(t, StateActive, r.State())
}
