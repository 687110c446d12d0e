package device

import (
	"os"
	"runtime"
	"strings"

	"validascan/internal/entity"
)

// IsIOS reports whether the user agent belongs to an iOS device.
func IsIOS(userAgent string) bool {
	for _, marker := range []string{"iPad", "iPhone", "iPod"} {
		if strings.Contains(userAgent, marker) {
			return true
		}
	}
	return false
}

// IsSafari reports whether the user agent is Safari proper, excluding the
// browsers that merely embed "Safari" in their UA string.
func IsSafari(userAgent string) bool {
	ua := strings.ToLower(userAgent)
	if !strings.Contains(ua, "safari") {
		return false
	}
	return !strings.Contains(ua, "chrome") && !strings.Contains(ua, "android")
}

// SupportsCameraCapture is the capability flag behind the disabled camera
// affordance on iOS: direct capture is unreliable there, gallery picks work.
func SupportsCameraCapture(userAgent string) bool {
	return !IsIOS(userAgent)
}

// Capabilities bundles the flags derived from one user agent string.
func Capabilities(userAgent string) entity.CapabilityFlags {
	return entity.CapabilityFlags{
		IsIOS:         IsIOS(userAgent),
		IsSafari:      IsSafari(userAgent),
		CameraCapture: SupportsCameraCapture(userAgent),
	}
}

// TakeSnapshot collects the process environment once, for diagnostics only.
func TakeSnapshot() entity.RuntimeSnapshot {
	hostname, _ := os.Hostname()
	return entity.RuntimeSnapshot{
		Hostname:  hostname,
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
		NumCPU:    runtime.NumCPU(),
		PID:       os.Getpid(),
	}
}
