package core

// CallState is a step of the call lifecycle:
//
//	unknown -> executing -> retrieving -> archived
//
// Each step may end in its failed state instead. A call can be canceled
// while executing.
type CallState int

const (
	CallStateUnknown CallState = iota
	CallStateExecuting
	CallStateExecutingFailed
	CallStateRetrieving
	CallStateRetrievingFailed
	CallStateArchived
	CallStateArchiveFailed
	CallStateCanceled
)

var callStateNames = map[CallState]string{
	CallStateUnknown:          "unknown",
	CallStateExecuting:        "executing",
	CallStateExecutingFailed:  "executing_failed",
	CallStateRetrieving:       "retrieving",
	CallStateRetrievingFailed: "retrieving_failed",
	CallStateArchived:         "archived",
	CallStateArchiveFailed:    "archive_failed",
	CallStateCanceled:         "canceled",
}

// CallStateFromString is the inverse of CallState.String. Unknown names map
// to CallStateUnknown.
func CallStateFromString(s string) CallState {
	for state, name := range callStateNames {
		if name == s {
			return state
		}
	}
	return CallStateUnknown
}

func (s CallState) String() string {
	name, ok := callStateNames[s]
	if !ok {
		return callStateNames[CallStateUnknown]
	}
	return name
}

// isFailure reports whether the call ended without a result.
func (s CallState) isFailure() bool {
	switch s {
	case CallStateExecutingFailed, CallStateRetrievingFailed, CallStateArchiveFailed, CallStateCanceled:
		return true
	default:
		return false
	}
}
