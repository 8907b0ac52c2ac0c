package device

import (
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// nvidiaDriverProc exists on Linux hosts with a loaded NVIDIA kernel driver.
const nvidiaDriverProc = "/proc/driver/nvidia/version"

// SystemProber inspects the running host.
type SystemProber struct{}

// CUDAAvailable reports whether an NVIDIA driver is present and devices are not
// hidden with CUDA_VISIBLE_DEVICES=-1 (or an empty value).
func (SystemProber) CUDAAvailable() bool {
	if v, set := os.LookupEnv("CUDA_VISIBLE_DEVICES"); set {
		v = strings.TrimSpace(v)
		if v == "" || v == "-1" {
			return false
		}
	}
	if _, err := os.Stat(nvidiaDriverProc); err == nil {
		return true
	}
	_, err := exec.LookPath("nvidia-smi")
	return err == nil
}

// MPSAvailable reports Apple silicon.
func (SystemProber) MPSAvailable() bool {
	return runtime.GOOS == "darwin" && runtime.GOARCH == "arm64"
}

var _ Prober = SystemProber{}
