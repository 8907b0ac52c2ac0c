// Package device picks the compute device for local embedding and vision models.
package device

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/vragkit/vrag/config"
)

// Device names a compute backend.
type Device string

const (
	CUDA Device = "cuda"
	MPS  Device = "mps"
	CPU  Device = "cpu"
)

// ErrUnknown is returned by Parse for unrecognized device names.
var ErrUnknown = errors.New("unknown device")

// ExecutionProvider maps the device to the ONNX Runtime execution provider name.
func (d Device) ExecutionProvider() string {
	switch d {
	case CUDA:
		return "cuda"
	case MPS:
		return "coreml"
	default:
		return "cpu"
	}
}

func (d Device) String() string { return string(d) }

// Parse converts a device name such as "CUDA" or "cpu" into a Device.
func Parse(s string) (Device, error) {
	switch d := Device(strings.ToLower(strings.TrimSpace(s))); d {
	case CUDA, MPS, CPU:
		return d, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknown, s)
	}
}

// Prober reports which accelerators are usable on this host.
type Prober interface {
	CUDAAvailable() bool
	MPSAvailable() bool
}

// BestDevice prefers CUDA, then Apple MPS, then CPU.
func BestDevice(p Prober) Device {
	switch {
	case p.CUDAAvailable():
		return CUDA
	case p.MPSAvailable():
		return MPS
	default:
		return CPU
	}
}

// ImageBindDevice prefers CUDA and otherwise uses CPU. MPS is skipped even when
// present because ImageBind relies on Conv3D, which MPS does not implement.
func ImageBindDevice(p Prober) Device {
	if p.CUDAAvailable() {
		return CUDA
	}
	return CPU
}

// Resolve honors cfg.Force when set and falls back to BestDevice otherwise.
func Resolve(cfg config.DeviceConfig, p Prober) (Device, error) {
	if cfg.Force == "" {
		return BestDevice(p), nil
	}
	return Parse(cfg.Force)
}
