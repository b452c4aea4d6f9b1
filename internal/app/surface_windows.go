package app

/*
#include <windows.h>
*/
import "C"

import (
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/pkg/errors"
	"github.com/rajveermalviya/go-webgpu/wgpu"
)

// surfaceDescriptor describes the window's Win32 handle.
func surfaceDescriptor(window *glfw.Window) (*wgpu.SurfaceDescriptor, error) {
	hwnd := window.GetWin32Window()
	if hwnd == nil {
		return nil, errors.New("GetWin32Window returned nil")
	}

	return &wgpu.SurfaceDescriptor{
		Label: "main_surface",
		WindowsHWND: &wgpu.SurfaceDescriptorFromWindowsHWND{
			Hwnd:      unsafe.Pointer(hwnd),
			Hinstance: unsafe.Pointer(C.GetModuleHandleW(nil)),
		},
	}, nil
}
