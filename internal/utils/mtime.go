package utils

import (
	"os"
)

// UpToDate reports whether target exists and its modification time is not
// older than any of inputs. A missing input counts as out of date so the
// compiler gets a chance to report it.
func UpToDate(target string, inputs []string) bool {
	info, err := os.Stat(target)
	if err != nil || info.IsDir() {
		return false
	}

	built := info.ModTime()
	for _, input := range inputs {
		in, err := os.Stat(input)
		if err != nil {
			return false
		}

		if built.Before(in.ModTime()) {
			return false
		}
	}

	return true
}
