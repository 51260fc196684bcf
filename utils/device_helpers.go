package utils

import (
	"fmt"
	"strings"

	"github.com/notargets/gocca"
)

// DeviceProps returns the OCCA device properties for a backend name
func DeviceProps(mode string) (string, error) {
	switch strings.ToLower(mode) {
	case "serial":
		return `{"mode": "Serial"}`, nil
	case "openmp":
		return `{"mode": "OpenMP"}`, nil
	case "cuda":
		return `{"mode": "CUDA", "device_id": 0}`, nil
	case "opencl":
		return `{"mode": "OpenCL", "platform_id": 0, "device_id": 0}`, nil
	default:
		return "", fmt.Errorf("unknown device mode %q", mode)
	}
}

// NewDevice creates a device for the named backend
func NewDevice(mode string) (*gocca.OCCADevice, error) {
	props, err := DeviceProps(mode)
	if err != nil {
		return nil, err
	}
	device, err := gocca.NewDevice(props)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s device: %w", mode, err)
	}
	return device, nil
}

// CreateTestDevice creates a Device for testing, preferring parallel backends
func CreateTestDevice() *gocca.OCCADevice {
	// OpenMP, then CUDA, then fall back to Serial
	for _, mode := range []string{"OpenMP", "CUDA", "Serial"} {
		device, err := NewDevice(mode)
		if err == nil {
			fmt.Printf("Created %s Device\n", device.Mode())
			return device
		}
	}

	// Should not reach here
	panic("Failed to create any Device")
}
