//go:build linux && !wayland

package app

import (
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/pkg/errors"
	"github.com/rajveermalviya/go-webgpu/wgpu"
)

// surfaceDescriptor describes the window's X11 drawable.
func surfaceDescriptor(window *glfw.Window) (*wgpu.SurfaceDescriptor, error) {
	display := glfw.GetX11Display()
	if display == nil {
		return nil, errors.New("no X11 display")
	}

	return &wgpu.SurfaceDescriptor{
		Label: "main_surface",
		XlibWindow: &wgpu.SurfaceDescriptorFromXlibWindow{
			Display: unsafe.Pointer(display),
			Window:  uint32(window.GetX11Window()),
		},
	}, nil
}
