package capture

import (
	"fmt"
	"runtime"
)

// Platform selects the capture transports used when building commands.
type Platform string

const (
	// PlatformLinux records through alsa, v4l2 and x11grab.
	PlatformLinux Platform = "linux"
	// PlatformDarwin records through avfoundation.
	PlatformDarwin Platform = "darwin"
	// PlatformWindows records through dshow and gdigrab.
	PlatformWindows Platform = "windows"
)

var platforms = map[Platform]struct{}{
	PlatformLinux:   {},
	PlatformDarwin:  {},
	PlatformWindows: {},
}

// Valid reports whether the platform is one of the supported tags.
func (p Platform) Valid() bool {
	_, ok := platforms[p]
	return ok
}

func (p Platform) String() string {
	return string(p)
}

// DetectPlatform maps the running OS onto a capture platform.
func DetectPlatform() (Platform, error) {
	p := Platform(runtime.GOOS)
	if !p.Valid() {
		return "", fmt.Errorf("unsupported capture platform %q", runtime.GOOS)
	}
	return p, nil
}
