package softphone

// Session states. One session manages one softphone device registration and
// at most one call attempt at a time.
type State string

const (
	StateIdle      State = "idle"
	StateStarting  State = "starting"
	StateReady     State = "ready"
	StateRinging   State = "ringing"
	StateConnected State = "connected"
	StateError     State = "error"
)

// EventKind identifies a state-machine input. User actions and device
// callbacks both enter the machine through Dispatch with one of these.
type EventKind string

const (
	eventRegistered  EventKind = "registered"
	eventStartFailed EventKind = "start_failed"
	eventIncoming    EventKind = "incoming"
	eventAccept      EventKind = "accept"
	eventReject      EventKind = "reject"
	eventCancel      EventKind = "cancel"
	eventDisconnect  EventKind = "disconnect"
	eventEndCall     EventKind = "end_call"
	eventDeviceError EventKind = "device_error"
	eventStop        EventKind = "stop"
)

// effect is a declarative side effect attached to a transition. Effects are
// data, not closures, so the transition table is independently testable.
type effect int

const (
	effectRecordCall effect = iota
	effectClearCall
	effectAcceptCall
	effectRejectCall
	effectDisconnectAll
	effectStartTimer
	effectStopTimer
	effectResetDuration
	effectReleaseMic
	effectRecordError
	effectRollbackStarted
	effectReportReady
	effectReportInCall
	effectReportError
	effectReportOffline
)

type transition struct {
	next    State
	effects []effect
}

// transitions is the complete table. An event with no entry for the current
// state is dropped (logged at debug): a second incoming call while ringing
// or connected is deliberately a no-op rather than undefined behavior.
var transitions = map[State]map[EventKind]transition{
	StateStarting: {
		eventRegistered:  {next: StateReady, effects: []effect{effectReleaseMic, effectReportReady}},
		eventStartFailed: {next: StateError, effects: []effect{effectReleaseMic, effectRecordError, effectRollbackStarted}},
		eventDeviceError: {next: StateError, effects: errorEffects},
		eventStop:        {next: StateIdle, effects: stopEffects},
	},
	StateReady: {
		eventIncoming:    {next: StateRinging, effects: []effect{effectRecordCall}},
		eventDeviceError: {next: StateError, effects: errorEffects},
		eventStop:        {next: StateIdle, effects: stopEffects},
	},
	StateRinging: {
		eventAccept: {next: StateConnected, effects: []effect{effectAcceptCall, effectReportInCall, effectStartTimer}},
		// Reject clears the pending call without a presence report; only
		// accept/disconnect paths report.
		eventReject:      {next: StateReady, effects: []effect{effectRejectCall, effectClearCall}},
		eventCancel:      {next: StateReady, effects: []effect{effectClearCall}},
		eventDeviceError: {next: StateError, effects: errorEffects},
		eventStop:        {next: StateIdle, effects: stopEffects},
	},
	StateConnected: {
		eventDisconnect:  {next: StateReady, effects: []effect{effectStopTimer, effectResetDuration, effectClearCall, effectReportReady}},
		eventEndCall:     {next: StateReady, effects: []effect{effectDisconnectAll, effectStopTimer, effectResetDuration, effectClearCall, effectReportReady}},
		eventDeviceError: {next: StateError, effects: errorEffects},
		eventStop:        {next: StateIdle, effects: stopEffects},
	},
	StateError: {
		eventStop: {next: StateIdle, effects: stopEffects},
	},
	StateIdle: {},
}

// Device-level errors can fire in any active state; the timer and mic grant
// must be torn down no matter where the machine was.
var errorEffects = []effect{
	effectStopTimer,
	effectReleaseMic,
	effectClearCall,
	effectRecordError,
	effectRollbackStarted,
	effectReportError,
}

var stopEffects = []effect{
	effectDisconnectAll,
	effectStopTimer,
	effectResetDuration,
	effectReleaseMic,
	effectClearCall,
	effectReportOffline,
}
