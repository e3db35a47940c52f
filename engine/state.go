package engine

// FrameState identifies where the frame loop currently is in the per-frame
// lifecycle. The loop moves Idle → Acquiring → Recording → Submitting →
// Presented → Idle on the happy path. Suspended is entered on a zero-area
// resize and left on the next non-zero resize. Terminated is entered exactly
// once, from any state, when the loop shuts down.
type FrameState int

const (
	// StateIdle means no frame work is in progress. Resize and close requests
	// are applied here, at the loop boundary.
	StateIdle FrameState = iota

	// StateAcquiring means the loop is waiting for the next presentable frame.
	StateAcquiring

	// StateRecording means draw commands are being encoded for the acquired frame.
	StateRecording

	// StateSubmitting means the recorded commands are being submitted to the device queue.
	StateSubmitting

	// StatePresented means the frame was handed to the surface for display.
	StatePresented

	// StateSuspended means drawing is paused because the drawable area has zero
	// size. No acquisition is attempted until a non-zero resize arrives.
	StateSuspended

	// StateTerminated means the loop has shut down and resources are released.
	// Terminal; no transitions leave this state.
	StateTerminated
)

// String returns the human-readable name of the frame state.
//
// Returns:
//   - string: the state name
func (s FrameState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateAcquiring:
		return "Acquiring"
	case StateRecording:
		return "Recording"
	case StateSubmitting:
		return "Submitting"
	case StatePresented:
		return "Presented"
	case StateSuspended:
		return "Suspended"
	case StateTerminated:
		return "Terminated"
	default:
		return "Unknown"
	}
}
