package utils

import (
	"runtime"
	"strings"
)

// ExecutableName appends the platform executable suffix to base
func ExecutableName(base string) string {
	return executableName(base, runtime.GOOS)
}

func executableName(base, goos string) string {
	if goos == "windows" && !strings.HasSuffix(strings.ToLower(base), ".exe") {
		return base + ".exe"
	}

	return base
}
