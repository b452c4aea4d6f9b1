package gpu

import "github.com/pkg/errors"

var (
	// ErrAdapterUnavailable is returned when no adapter can drive the surface.
	ErrAdapterUnavailable = errors.New("gpu: adapter unavailable")

	// ErrDeviceUnavailable is returned when the adapter refuses a device.
	ErrDeviceUnavailable = errors.New("gpu: device unavailable")

	// ErrSurfaceLost means the surface must be reconfigured before the next acquire.
	ErrSurfaceLost = errors.New("gpu: surface lost")

	// ErrSurfaceOutdated means the surface no longer matches the window.
	ErrSurfaceOutdated = errors.New("gpu: surface outdated")

	// ErrSurfaceTimeout means no image became available in time.
	ErrSurfaceTimeout = errors.New("gpu: surface acquire timeout")

	// ErrOutOfMemory is unrecoverable.
	ErrOutOfMemory = errors.New("gpu: out of memory")
)

// IsFatal reports whether err must terminate the process.
func IsFatal(err error) bool {
	return errors.Is(err, ErrAdapterUnavailable) ||
		errors.Is(err, ErrDeviceUnavailable) ||
		errors.Is(err, ErrOutOfMemory)
}
