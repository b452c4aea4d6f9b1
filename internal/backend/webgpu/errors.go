package webgpu

import (
	"strings"

	"github.com/pkg/errors"

	"realtime/internal/gpu"
)

// classifyAcquire maps a swap chain error to a gpu sentinel. go-webgpu
// reports surface status as an untyped error carrying the native message.
// An image left acquired by an earlier frame is treated as lost, so the
// swap chain gets recreated.
func classifyAcquire(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "out of memory"), strings.Contains(msg, "outofmemory"):
		return errors.Wrap(gpu.ErrOutOfMemory, err.Error())
	case strings.Contains(msg, "lost"), strings.Contains(msg, "already acquired"):
		return errors.Wrap(gpu.ErrSurfaceLost, err.Error())
	case strings.Contains(msg, "outdated"):
		return errors.Wrap(gpu.ErrSurfaceOutdated, err.Error())
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "timed out"):
		return errors.Wrap(gpu.ErrSurfaceTimeout, err.Error())
	}
	return errors.Wrap(err, "acquire surface texture")
}
