package renderer

import "errors"

// Fatal startup errors. None of these are retryable: they indicate an
// environment that cannot render at all.
var (
	// ErrNoCompatibleAdapter indicates that no GPU adapter/backend supports
	// presentation to the target surface.
	ErrNoCompatibleAdapter = errors.New("no compatible adapter supports presentation to the surface")

	// ErrDeviceCreationFailed indicates the driver rejected the logical device request.
	ErrDeviceCreationFailed = errors.New("device creation failed")

	// ErrShaderCompilation indicates the shader compiler collaborator reported a
	// compile error. The wrapped error carries the compiler diagnostics.
	ErrShaderCompilation = errors.New("shader compilation failed")

	// ErrPipelineRejected indicates the device refused the assembled render
	// pipeline description (e.g. unsupported vertex format).
	ErrPipelineRejected = errors.New("pipeline rejected by device")

	// ErrOutOfDeviceMemory indicates a GPU buffer allocation failed.
	ErrOutOfDeviceMemory = errors.New("out of device memory")
)

// Recoverable per-frame and per-surface errors. These are classified at the
// frame loop boundary and never crash the loop on their own.
var (
	// ErrAcquireTimeout indicates no presentable frame became available within
	// the surface's internal timeout. Recoverable: skip the current tick.
	ErrAcquireTimeout = errors.New("frame acquisition timed out")

	// ErrSurfaceLost indicates the surface was invalidated (e.g. by an external
	// device reset). Recoverable only by a full surface reconfiguration.
	ErrSurfaceLost = errors.New("surface lost")

	// ErrSurfaceSuspended indicates drawing is suspended because the window has
	// zero drawable size. Cleared by the next non-zero resize.
	ErrSurfaceSuspended = errors.New("surface suspended, awaiting non-zero resize")

	// ErrFrameInFlight indicates a frame was acquired while the previous frame's
	// handle was still outstanding. At most one frame handle may exist at a time.
	ErrFrameInFlight = errors.New("previous frame surface not yet presented")
)
