// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Device errors.
var (
	// ErrNilDevice is returned when a GPU renderer gets no device handle.
	ErrNilDevice = errors.New("render: nil device handle")

	// ErrUnsupportedDevice is returned when the handle does not expose a
	// HAL device and queue.
	ErrUnsupportedDevice = errors.New("render: device handle does not expose a HAL device")
)

// DeviceHandle provides GPU device access from the host application.
//
// The renderer RECEIVES the device from the host, it does NOT create one.
// DeviceHandle is an alias for gpucontext.DeviceProvider so any host that
// already speaks gpucontext can hand its device over unchanged.
type DeviceHandle = gpucontext.DeviceProvider

// HALDeviceHandle adapts an opened HAL device and queue to DeviceHandle.
// Hosts that drive wgpu/hal directly (and tests using the noop backend)
// use it to feed a GPURenderer.
type HALDeviceHandle struct {
	device hal.Device
	queue  hal.Queue
	format gputypes.TextureFormat
	info   gpucontext.AdapterInfo
}

// NewHALDeviceHandle wraps an opened device. format is the preferred
// surface format; use gputypes.TextureFormatUndefined when headless.
func NewHALDeviceHandle(open hal.OpenDevice, format gputypes.TextureFormat, info gpucontext.AdapterInfo) *HALDeviceHandle {
	return &HALDeviceHandle{
		device: open.Device,
		queue:  open.Queue,
		format: format,
		info:   info,
	}
}

// Device returns the HAL device.
func (h *HALDeviceHandle) Device() gpucontext.Device { return h.device }

// Queue returns the HAL queue.
func (h *HALDeviceHandle) Queue() gpucontext.Queue { return h.queue }

// Adapter returns nil; the adapter is not retained.
func (h *HALDeviceHandle) Adapter() gpucontext.Adapter { return nil }

// SurfaceFormat returns the preferred surface format.
func (h *HALDeviceHandle) SurfaceFormat() gputypes.TextureFormat { return h.format }

// AdapterInfo returns the adapter metadata given at construction.
func (h *HALDeviceHandle) AdapterInfo() gpucontext.AdapterInfo { return h.info }

// halDevice extracts the HAL device and queue from a handle.
func halDevice(handle DeviceHandle) (hal.Device, hal.Queue, error) {
	if handle == nil {
		return nil, nil, ErrNilDevice
	}
	device, ok := handle.Device().(hal.Device)
	if !ok || device == nil {
		return nil, nil, fmt.Errorf("%w: device is %T", ErrUnsupportedDevice, handle.Device())
	}
	queue, ok := handle.Queue().(hal.Queue)
	if !ok || queue == nil {
		return nil, nil, fmt.Errorf("%w: queue is %T", ErrUnsupportedDevice, handle.Queue())
	}
	return device, queue, nil
}

// NullDeviceHandle is a DeviceHandle that provides nil implementations.
// Used for CPU-only rendering where no GPU is available.
type NullDeviceHandle struct{}

// Device returns nil for the null device.
func (NullDeviceHandle) Device() gpucontext.Device { return nil }

// Queue returns nil for the null device.
func (NullDeviceHandle) Queue() gpucontext.Queue { return nil }

// Adapter returns nil for the null device.
func (NullDeviceHandle) Adapter() gpucontext.Adapter { return nil }

// SurfaceFormat returns undefined format for the null device.
func (NullDeviceHandle) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatUndefined
}

// AdapterInfo reports an unknown adapter.
func (NullDeviceHandle) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{Name: "null", Type: gpucontext.AdapterTypeUnknown}
}

var (
	_ DeviceHandle = (*HALDeviceHandle)(nil)
	_ DeviceHandle = NullDeviceHandle{}
)
